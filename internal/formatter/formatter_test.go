package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
	th "github.com/desertthunder/spt/internal/testing"
)

func testExport() *models.PlaylistExport {
	return &models.PlaylistExport{
		Playlist: models.Playlist{
			ID:          "test123",
			Name:        "Test Playlist",
			Description: "A test playlist",
			TrackCount:  2,
			Public:      true,
		},
		Tracks: []models.Track{
			{
				ID:       "track1",
				URI:      "spotify:track:track1",
				Title:    "Song One",
				Artist:   "Artist One",
				Album:    "Album One",
				Duration: 180,
				ISRC:     "USRC12345678",
			},
			{
				ID:       "track2",
				URI:      "spotify:track:track2",
				Title:    "Song | Two",
				Artist:   "Artist Two",
				Album:    "Album Two",
				Duration: 3725,
				ISRC:     "USRC87654321",
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"text", FormatText},
		{"TXT", FormatText},
		{"csv", FormatCSV},
		{"md", FormatMarkdown},
		{"Markdown", FormatMarkdown},
		{" json ", FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}

		if len(records) != 3 {
			t.Fatalf("expected header and 2 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "Position,URI,Title,Artist,Album,Duration,ISRC" {
			t.Errorf("unexpected headers %v", records[0])
		}
		if records[2][0] != "1" || records[2][1] != "spotify:track:track2" || records[2][5] != "3725" {
			t.Errorf("unexpected row %v", records[2])
		}
	})

	t.Run("ExportToCSV empty", func(t *testing.T) {
		export := testExport()
		export.Tracks = nil

		data, err := ExportToCSV(export)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if strings.Count(string(data), "\n") != 1 {
			t.Errorf("expected only headers, got %q", data)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		export := testExport()
		export.Playlist.Collaborative = true

		data, err := ExportToMarkdown(export)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Test Playlist",
			"A test playlist",
			"**Tracks**: 2",
			"**Visibility**: Public",
			"**Collaborative**: yes",
			"| 0 | Song One | Artist One | Album One | 3:00 |",
			`Song \| Two`,
			"1:02:05",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"Playlist: Test Playlist", "Tracks: 2", "0. Artist One - Song One [3:00]", "spotify:track:track2"} {
			if !strings.Contains(output, want) {
				t.Errorf("text missing %q, got:\n%s", want, output)
			}
		}
	})
}

func TestRender(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		var buf strings.Builder
		if err := Render(&buf, FormatJSON, testExport()); err != nil {
			t.Fatalf("Render failed: %v", err)
		}

		var decoded models.PlaylistExport
		if err := json.Unmarshal([]byte(buf.String()), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Playlist.ID != "test123" || len(decoded.Tracks) != 2 {
			t.Errorf("unexpected decoded export %+v", decoded)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		var buf strings.Builder
		if err := Render(&buf, Format("xml"), testExport()); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("write error", func(t *testing.T) {
		if err := Render(&th.FWriter{}, FormatText, testExport()); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestWriteFile(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "tracks.md")

		written, err := WriteFile(path, FormatMarkdown, testExport())
		if err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}

		th.AssertFileExists(t, path)
		if !strings.Contains(th.MustReadFile(t, path), "# Test Playlist") {
			t.Error("file missing markdown heading")
		}
	})

	t.Run("default path", func(t *testing.T) {
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, t.TempDir())
		defer th.MustChdir(t, originalDir)

		written, err := WriteFile("", FormatCSV, testExport())
		if err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if written != "test123_tracks.csv" {
			t.Errorf("unexpected default path %s", written)
		}
		th.AssertFileExists(t, written)
	})
}
