package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
	"golang.org/x/oauth2"
)

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			credentials := map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
				"redirect_uri":  "http://localhost:9000/callback",
			}

			srv, err := NewSpotifyService(credentials)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv == nil {
				t.Fatal("expected service to be created")
			}

			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			credentials := map[string]string{
				"client_secret": "test_client_secret",
			}

			_, err := NewSpotifyService(credentials)
			if err == nil {
				t.Error("expected error for missing client_id")
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			credentials := map[string]string{
				"client_id": "test_client_id",
			}

			_, err := NewSpotifyService(credentials)
			if err == nil {
				t.Error("expected error for missing client_secret")
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			credentials := map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
			}

			srv, err := NewSpotifyService(credentials)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.config.RedirectURL != DefaultRedirectURI {
				t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		credentials := map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		}

		srv, err := NewSpotifyService(credentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")
		if authURL == "" {
			t.Error("expected auth URL to be generated")
		}

		if !strings.Contains(authURL, "accounts.spotify.com") {
			t.Error("auth URL should contain Spotify domain")
		}
		if !strings.Contains(authURL, "test_client_id") {
			t.Error("auth URL should contain client_id")
		}
		if !strings.Contains(authURL, "test_state") {
			t.Error("auth URL should contain state")
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		credentials := map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		}

		srv, err := NewSpotifyService(credentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("WithAccessToken", func(t *testing.T) {
			authCreds := map[string]string{
				"access_token": "test_access_token",
			}

			err := srv.Authenticate(context.Background(), authCreds)
			if err != nil {
				t.Errorf("expected no error with access token, got %v", err)
			}

			if srv.token == nil {
				t.Error("expected token to be set")
			}

			if srv.token.AccessToken != "test_access_token" {
				t.Errorf("expected access token to be 'test_access_token', got %s", srv.token.AccessToken)
			}
		})

		t.Run("Missing Credentials", func(t *testing.T) {
			authCreds := map[string]string{}

			err := srv.Authenticate(context.Background(), authCreds)
			if err == nil {
				t.Error("expected error for missing credentials")
			}
		})
	})

	t.Run("Service Interface", func(t *testing.T) {
		credentials := map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		}

		srv, err := NewSpotifyService(credentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		var _ Service = srv
	})

	t.Run("SetTokenRefreshCallback", func(t *testing.T) {
		credentials := map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		}

		srv, err := NewSpotifyService(credentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("sets callback successfully", func(t *testing.T) {
			srv.SetTokenRefreshCallback(func(token *oauth2.Token) {
				// Callback set for testing
			})

			if srv.onTokenRefresh == nil {
				t.Error("expected callback to be set")
			}
		})

		t.Run("can set nil callback", func(t *testing.T) {
			srv.SetTokenRefreshCallback(nil)
			if srv.onTokenRefresh != nil {
				t.Error("expected callback to be nil")
			}
		})

		t.Run("callback can be replaced", func(t *testing.T) {
			srv.SetTokenRefreshCallback(func(token *oauth2.Token) {
				// First callback
			})

			srv.SetTokenRefreshCallback(func(token *oauth2.Token) {
				// Second callback
			})

			if srv.onTokenRefresh == nil {
				t.Error("expected callback to be set")
			}
		})
	})

	t.Run("refreshableTokenSource", func(t *testing.T) {
		t.Run("calls callback on first token fetch", func(t *testing.T) {
			callbackCalled := false
			var capturedToken *oauth2.Token

			mockSource := &mockTokenSource{
				token: &oauth2.Token{AccessToken: "test_token"},
			}

			source := &refreshableTokenSource{
				source: mockSource,
				callback: func(token *oauth2.Token) {
					callbackCalled = true
					capturedToken = token
				},
			}

			token, err := source.Token()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if !callbackCalled {
				t.Error("expected callback to be called on first fetch")
			}
			if capturedToken == nil {
				t.Error("expected token to be captured")
			}
			if capturedToken.AccessToken != "test_token" {
				t.Errorf("expected captured token to be 'test_token', got %s", capturedToken.AccessToken)
			}
			if token.AccessToken != "test_token" {
				t.Errorf("expected returned token to be 'test_token', got %s", token.AccessToken)
			}
		})

		t.Run("calls callback when token changes", func(t *testing.T) {
			callCount := 0
			var capturedTokens []*oauth2.Token

			mockSource := &mockTokenSource{
				token: &oauth2.Token{AccessToken: "token1"},
			}

			source := &refreshableTokenSource{
				source: mockSource,
				callback: func(token *oauth2.Token) {
					callCount++
					capturedTokens = append(capturedTokens, token)
				},
			}

			_, _ = source.Token()
			if callCount != 1 {
				t.Errorf("expected callback called once, got %d", callCount)
			}

			mockSource.token = &oauth2.Token{AccessToken: "token2"}
			token2, _ := source.Token()

			if callCount != 2 {
				t.Errorf("expected callback called twice, got %d", callCount)
			}
			if len(capturedTokens) != 2 {
				t.Errorf("expected 2 captured tokens, got %d", len(capturedTokens))
			}
			if token2.AccessToken != "token2" {
				t.Errorf("expected new token, got %s", token2.AccessToken)
			}
		})

		t.Run("doesn't call callback when token unchanged", func(t *testing.T) {
			callCount := 0

			mockSource := &mockTokenSource{
				token: &oauth2.Token{AccessToken: "same_token"},
			}

			source := &refreshableTokenSource{
				source: mockSource,
				callback: func(token *oauth2.Token) {
					callCount++
				},
			}

			source.Token()
			source.Token()
			source.Token()

			if callCount != 1 {
				t.Errorf("expected callback called once, got %d", callCount)
			}
		})

		t.Run("handles nil callback gracefully", func(t *testing.T) {
			mockSource := &mockTokenSource{
				token: &oauth2.Token{AccessToken: "test_token"},
			}

			source := &refreshableTokenSource{
				source:   mockSource,
				callback: nil,
			}

			token, err := source.Token()
			if err != nil {
				t.Fatalf("expected no error with nil callback, got %v", err)
			}
			if token.AccessToken != "test_token" {
				t.Error("expected token to be returned despite nil callback")
			}
		})

		t.Run("propagates source errors", func(t *testing.T) {
			mockSource := &mockTokenSource{
				err: errors.New("token source error"),
			}

			source := &refreshableTokenSource{
				source: mockSource,
				callback: func(token *oauth2.Token) {
					t.Error("callback should not be called on error")
				},
			}

			token, err := source.Token()
			if err == nil {
				t.Fatal("expected error from source")
			}
			if !strings.Contains(err.Error(), "token source error") {
				t.Errorf("expected source error, got %v", err)
			}
			if token != nil {
				t.Error("expected nil token on error")
			}
		})

		t.Run("handles callback panic gracefully", func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Error("expected panic to be contained within callback")
				}
			}()

			mockSource := &mockTokenSource{
				token: &oauth2.Token{AccessToken: "test_token"},
			}

			source := &refreshableTokenSource{
				source: mockSource,
				callback: func(token *oauth2.Token) {
					panic("callback panic")
				},
			}

			func() {
				defer func() {
					_ = recover()
				}()
				source.Token()
			}()
		})
	})
}

// mockTokenSource implements [oauth2.TokenSource] for testing
type mockTokenSource struct {
	token *oauth2.Token
	err   error
}

func (m *mockTokenSource) Token() (*oauth2.Token, error) {
	return m.token, m.err
}

// newTestService returns an authenticated [SpotifyService] whose API root is an [httptest.Server] running handler.
func newTestService(t *testing.T, handler http.HandlerFunc) (*SpotifyService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := NewSpotifyService(
		map[string]string{"client_id": "id", "client_secret": "secret"},
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if err := srv.OAuthenticate(context.Background(), &oauth2.Token{AccessToken: "test_token"}); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	return srv, server
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	body := map[string]any{}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("failed to decode body %q: %v", data, err)
	}
	return body
}

func TestSpotifyEndpoints(t *testing.T) {
	ctx := context.Background()

	t.Run("sends bearer token", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test_token" {
				t.Errorf("expected bearer token, got %q", got)
			}
			writeJSON(t, w, map[string]any{"id": "user1", "display_name": "User One", "product": "premium"})
		})

		user, err := srv.CurrentUser(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != "user1" || user.DisplayName != "User One" || user.Product != "premium" {
			t.Errorf("unexpected user %+v", user)
		}
	})

	t.Run("Playlists follows pagination", func(t *testing.T) {
		var server *httptest.Server
		calls := 0
		srv, server := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			if r.URL.Path != "/me/playlists" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("limit") != "50" {
				t.Errorf("expected limit=50, got %s", r.URL.RawQuery)
			}

			if r.URL.Query().Get("offset") == "" {
				next := server.URL + "/me/playlists?offset=1&limit=50"
				writeJSON(t, w, map[string]any{
					"items": []map[string]any{{"id": "p1", "name": "First", "public": true, "tracks": map[string]any{"total": 3}}},
					"total": 2, "limit": 1, "offset": 0, "next": next,
				})
				return
			}
			writeJSON(t, w, map[string]any{
				"items": []map[string]any{{"id": "p2", "name": "Second", "public": nil, "collaborative": true}},
				"total": 2, "limit": 1, "offset": 1, "next": nil,
			})
		})
		_ = server

		playlists, err := srv.Playlists(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if calls != 2 {
			t.Errorf("expected 2 requests, got %d", calls)
		}
		if len(playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(playlists))
		}
		if !playlists[0].Public || playlists[0].TrackCount != 3 {
			t.Errorf("unexpected first playlist %+v", playlists[0])
		}
		if playlists[1].Public || !playlists[1].Collaborative {
			t.Errorf("unexpected second playlist %+v", playlists[1])
		}
	})

	t.Run("Playlist", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/playlists/abc" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			writeJSON(t, w, map[string]any{"id": "abc", "name": "Mix", "snapshot_id": "snap", "owner": map[string]any{"id": "me"}})
		})

		p, err := srv.Playlist(ctx, "abc")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.SnapshotID != "snap" || p.OwnerID != "me" {
			t.Errorf("unexpected playlist %+v", p)
		}

		if _, err := srv.Playlist(ctx, ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("CreatePlaylist sends only set fields", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/me/playlists" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected json content type, got %q", ct)
			}

			body := decodeBody(t, r)
			if body["name"] != "Road Trip" || body["public"] != false {
				t.Errorf("unexpected body %v", body)
			}
			if _, ok := body["description"]; ok {
				t.Error("description should be omitted")
			}
			w.WriteHeader(http.StatusCreated)
			writeJSON(t, w, map[string]any{"id": "new", "name": "Road Trip"})
		})

		public := false
		p, err := srv.CreatePlaylist(ctx, "Road Trip", models.PlaylistDetails{Public: &public})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.ID != "new" {
			t.Errorf("expected created playlist id, got %s", p.ID)
		}

		if _, err := srv.CreatePlaylist(ctx, "  ", models.PlaylistDetails{}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("EditPlaylist", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut || r.URL.Path != "/playlists/abc" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			body := decodeBody(t, r)
			if body["description"] != "new description" || len(body) != 1 {
				t.Errorf("unexpected body %v", body)
			}
			w.WriteHeader(http.StatusOK)
		})

		desc := "new description"
		if err := srv.EditPlaylist(ctx, "abc", models.PlaylistDetails{Description: &desc}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if err := srv.EditPlaylist(ctx, "abc", models.PlaylistDetails{}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument for empty details, got %v", err)
		}
	})

	t.Run("PlaylistTracks skips missing tracks", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/playlists/abc/tracks" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("market") != "from_token" {
				t.Errorf("expected market=from_token, got %s", r.URL.RawQuery)
			}
			writeJSON(t, w, map[string]any{
				"items": []map[string]any{
					{"added_at": "2024-05-01T10:00:00Z", "track": map[string]any{
						"id": "t1", "uri": "spotify:track:t1", "name": "Song", "duration_ms": 185000,
						"artists":      []map[string]any{{"name": "A"}, {"name": "B"}},
						"album":        map[string]any{"name": "Album"},
						"external_ids": map[string]any{"isrc": "USRC1"},
					}},
					{"added_at": "2024-05-02T10:00:00Z", "track": nil},
				},
				"total": 2, "next": nil,
			})
		})

		tracks, err := srv.PlaylistTracks(ctx, "abc")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 1 {
			t.Fatalf("expected 1 track, got %d", len(tracks))
		}

		track := tracks[0]
		if track.Artist != "A, B" || track.Duration != 185 || track.ISRC != "USRC1" || track.Album != "Album" {
			t.Errorf("unexpected track %+v", track)
		}
		if track.AddedAt.IsZero() {
			t.Error("expected added_at to be parsed")
		}
	})

	t.Run("PlaylistTracksPager", func(t *testing.T) {
		var server *httptest.Server
		srv, server := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("offset") == "" {
				writeJSON(t, w, map[string]any{
					"items": []map[string]any{{"track": map[string]any{"id": "t1"}}},
					"total": 2, "offset": 0, "next": server.URL + "/playlists/abc/tracks?offset=1",
				})
				return
			}
			writeJSON(t, w, map[string]any{
				"items": []map[string]any{{"track": map[string]any{"id": "t2"}}},
				"total": 2, "offset": 1, "next": nil,
			})
		})
		_ = server

		pager := srv.PlaylistTracksPager("abc")
		first, err := pager.Next(ctx)
		if err != nil || len(first) != 1 || first[0].ID != "t1" {
			t.Fatalf("unexpected first page %v, %v", first, err)
		}
		if pager.Done() {
			t.Error("pager should not be done after first page")
		}

		second, err := pager.Next(ctx)
		if err != nil || len(second) != 1 || second[0].ID != "t2" {
			t.Fatalf("unexpected second page %v, %v", second, err)
		}
		if !pager.Done() || pager.Offset() != 2 || pager.Total() != 2 {
			t.Errorf("unexpected pager state done=%v offset=%d total=%d", pager.Done(), pager.Offset(), pager.Total())
		}

		if _, err := pager.Next(ctx); err != io.EOF {
			t.Errorf("expected io.EOF, got %v", err)
		}
	})

	t.Run("PlaylistTracksPager counts removed tracks", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{
				"items": []map[string]any{{"track": nil}, {"track": map[string]any{"id": "t2"}}},
				"total": 2, "offset": 0, "next": nil,
			})
		})

		pager := srv.PlaylistTracksPager("abc")
		tracks, err := pager.Next(ctx)
		if err != nil || len(tracks) != 1 {
			t.Fatalf("unexpected page %v, %v", tracks, err)
		}
		if pager.Offset() != pager.Total() {
			t.Errorf("expected offset %d, got %d", pager.Total(), pager.Offset())
		}
	})

	t.Run("AddToPlaylist joins uris in query", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/playlists/abc/tracks" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if got := r.URL.Query().Get("uris"); got != "spotify:track:a,spotify:track:b" {
				t.Errorf("unexpected uris %q", got)
			}
			w.WriteHeader(http.StatusCreated)
			writeJSON(t, w, map[string]any{"snapshot_id": "snap2"})
		})

		snapshot, err := srv.AddToPlaylist(ctx, "abc", []string{"spotify:track:a", "spotify:track:b"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if snapshot != "snap2" {
			t.Errorf("expected snapshot snap2, got %s", snapshot)
		}

		if _, err := srv.AddToPlaylist(ctx, "abc", nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}

		tooMany := make([]string, maxTracksPerRequest+1)
		if _, err := srv.AddToPlaylist(ctx, "abc", tooMany); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("RemoveFromPlaylist sends positions", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete || r.URL.Path != "/playlists/abc/tracks" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}

			var body struct {
				Tracks []struct {
					URI       string `json:"uri"`
					Positions []int  `json:"positions"`
				} `json:"tracks"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if len(body.Tracks) != 2 || body.Tracks[1].URI != "spotify:track:b" || body.Tracks[1].Positions[0] != 4 {
				t.Errorf("unexpected body %+v", body)
			}
			writeJSON(t, w, map[string]any{"snapshot_id": "snap3"})
		})

		snapshot, err := srv.RemoveFromPlaylist(ctx, "abc", []models.TrackRef{
			{URI: "spotify:track:a", Position: 0},
			{URI: "spotify:track:b", Position: 4},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if snapshot != "snap3" {
			t.Errorf("expected snapshot snap3, got %s", snapshot)
		}

		if _, err := srv.RemoveFromPlaylist(ctx, "abc", []models.TrackRef{{URI: "x", Position: -1}}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Devices", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me/player/devices" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			writeJSON(t, w, map[string]any{"devices": []map[string]any{
				{"id": "d1", "name": "Laptop", "type": "Computer", "is_active": true, "volume_percent": 40},
				{"id": nil, "name": "Restricted", "type": "Speaker", "is_restricted": true, "volume_percent": nil},
			}})
		})

		devices, err := srv.Devices(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(devices) != 2 {
			t.Fatalf("expected 2 devices, got %d", len(devices))
		}
		if !devices[0].Active || devices[0].VolumePercent != 40 {
			t.Errorf("unexpected device %+v", devices[0])
		}
		if devices[1].ID != "" || !devices[1].Restricted {
			t.Errorf("unexpected device %+v", devices[1])
		}
	})

	t.Run("SetDevice", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut || r.URL.Path != "/me/player" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			body := decodeBody(t, r)
			ids, ok := body["device_ids"].([]any)
			if !ok || len(ids) != 1 || ids[0] != "d1" {
				t.Errorf("unexpected body %v", body)
			}
			w.WriteHeader(http.StatusNoContent)
		})

		if err := srv.SetDevice(ctx, "d1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := srv.SetDevice(ctx, ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestSpotifyErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		status int
		body   string
		target error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"status":401,"message":"The access token expired"}}`, target: shared.ErrTokenExpired},
		{name: "not found", status: http.StatusNotFound, body: `{"error":{"status":404,"message":"Not found."}}`, target: shared.ErrNotFound},
		{name: "server error", status: http.StatusBadGateway, body: `bad gateway`, target: shared.ErrAPIRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := srv.Playlist(ctx, "abc")
			if !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected every API error to match ErrAPIRequest, got %v", err)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.status {
				t.Errorf("expected *APIError with status %d, got %v", tt.status, err)
			}
		})
	}

	t.Run("message from error body", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"error":{"status":403,"message":"Player command failed: Restriction violated"}}`)
		})

		err := srv.SetDevice(ctx, "d1")
		if err == nil || !strings.Contains(err.Error(), "Restriction violated") {
			t.Errorf("expected message in error, got %v", err)
		}
	})

	t.Run("not authenticated", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{"client_id": "id", "client_secret": "secret"})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		if _, err := srv.Playlists(ctx); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if err := srv.OAuthenticate(ctx, &oauth2.Token{}); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated for empty token, got %v", err)
		}
	})
}
