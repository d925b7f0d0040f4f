// package formatter renders playlists and their tracks as CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
)

// Format is an output format accepted by `playlists tracks --format`.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatText, FormatCSV, FormatMarkdown, FormatJSON}

// ParseFormat resolves a format name. "md" and "txt" are accepted as aliases; empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// Extension returns the file extension used by [WriteFile] for f.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Render writes export to w in format f.
func Render(w io.Writer, f Format, export *models.PlaylistExport) error {
	var (
		data []byte
		err  error
	)

	switch f {
	case FormatCSV:
		data, err = ExportToCSV(export)
	case FormatMarkdown:
		data, err = ExportToMarkdown(export)
	case FormatJSON:
		data, err = shared.MarshalJSON(export, true)
		data = append(data, '\n')
	case FormatText:
		data, err = ExportToText(export)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// ExportToCSV converts a PlaylistExport to CSV format with columns: Position, URI, Title, Artist, Album, Duration, ISRC
//
// Position is the track's zero-based index, which `playlists remove --track uri:pos` expects.
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "URI", "Title", "Artist", "Album", "Duration", "ISRC"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range export.Tracks {
		record := []string{
			strconv.Itoa(i),
			track.URI,
			track.Title,
			track.Artist,
			track.Album,
			strconv.Itoa(track.Duration),
			track.ISRC,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a PlaylistExport to a Markdown document with a track table.
func ExportToMarkdown(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	p := export.Playlist

	fmt.Fprintf(&buf, "# %s\n\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&buf, "%s\n\n", p.Description)
	}

	fmt.Fprintf(&buf, "- **Tracks**: %d\n", len(export.Tracks))
	fmt.Fprintf(&buf, "- **Visibility**: %s\n", shared.VisibilityString(p.Public))
	if p.Collaborative {
		buf.WriteString("- **Collaborative**: yes\n")
	}
	buf.WriteString("\n")

	buf.WriteString("| # | Title | Artist | Album | Length |\n")
	buf.WriteString("|---|-------|--------|-------|--------|\n")
	for i, track := range export.Tracks {
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s |\n",
			i, escapeCell(track.Title), escapeCell(track.Artist), escapeCell(track.Album), shared.FormatDuration(track.Duration))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text format
func ExportToText(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Playlist.Name)
	if export.Playlist.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", export.Playlist.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(export.Tracks))

	for i, track := range export.Tracks {
		fmt.Fprintf(&buf, "%3d. %s - %s [%s]\n", i, track.Artist, track.Title, shared.FormatDuration(track.Duration))
		if track.URI != "" {
			fmt.Fprintf(&buf, "     %s\n", track.URI)
		}
	}

	return buf.Bytes(), nil
}

// WriteFile renders export in format f into path. An empty path defaults to {playlist.ID}_tracks with the format's extension.
//
// Returns the path written.
func WriteFile(path string, f Format, export *models.PlaylistExport) (string, error) {
	if path == "" {
		path = export.Playlist.ID + "_tracks" + f.Extension()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := Render(&buf, f, export); err != nil {
		return "", err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
