package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/spt/internal/shared"
)

func TestIsNewer(t *testing.T) {
	tests := []struct {
		latest, current string
		want            bool
	}{
		{"v1.2.0", "v1.1.0", true},
		{"v1.2.0", "1.2.0", false},
		{"1.2.0", "v1.2.0", false},
		{"", "v1.0.0", false},
		{"v2.0.0", "", true},
		{" v1.0.0 ", "v1.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.latest+"/"+tt.current, func(t *testing.T) {
			if got := IsNewer(tt.latest, tt.current); got != tt.want {
				t.Errorf("IsNewer(%q, %q) = %v, want %v", tt.latest, tt.current, got, tt.want)
			}
		})
	}
}

func TestUpdateChecker(t *testing.T) {
	ctx := context.Background()

	newServer := func(t *testing.T, status int, body string) *httptest.Server {
		t.Helper()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		t.Cleanup(server.Close)
		return server
	}

	t.Run("update available", func(t *testing.T) {
		server := newServer(t, http.StatusOK, `{"tag_name":"v0.2.0","html_url":"https://github.com/desertthunder/spt/releases/tag/v0.2.0"}`)

		result, err := NewUpdateChecker(server.Client(), server.URL, "v0.1.0").Check(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !result.Available || result.Release.TagName != "v0.2.0" || result.Release.URL == "" {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("up to date", func(t *testing.T) {
		server := newServer(t, http.StatusOK, `{"tag_name":"v0.1.0"}`)

		result, err := NewUpdateChecker(server.Client(), server.URL, "v0.1.0").Check(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Available {
			t.Error("expected no update")
		}
	})

	t.Run("empty tag", func(t *testing.T) {
		server := newServer(t, http.StatusOK, `{}`)

		result, err := NewUpdateChecker(server.Client(), server.URL, "v0.1.0").Check(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Available {
			t.Error("empty tag should not count as an update")
		}
	})

	t.Run("http error", func(t *testing.T) {
		server := newServer(t, http.StatusForbidden, `rate limited`)

		_, err := NewUpdateChecker(server.Client(), server.URL, "v0.1.0").Check(ctx)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		u := NewUpdateChecker(nil, "", "v1.0.0")
		if u.url != DefaultReleasesURL || u.client == nil {
			t.Errorf("unexpected defaults %+v", u)
		}
	})
}
