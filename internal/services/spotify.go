// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// DefaultRedirectURI is used when the credentials carry no redirect_uri.
	DefaultRedirectURI = "http://127.0.0.1:8888/callback"

	maxTracksPerRequest = 100
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Product     string `json:"product"` // premium, free, etc.
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       SpotifyAlbum    `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	ExternalIDs externalIDs     `json:"external_ids"`
	URI         string          `json:"uri"`
	IsLocal     bool            `json:"is_local"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTracksRef struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a playlist object, as returned by both list and detail endpoints.
//
// Public is a pointer because Spotify returns null for playlists whose visibility is unknown.
type SpotifyPlaylist struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Owner         Owner             `json:"owner"`
	Public        *bool             `json:"public"`
	Collaborative bool              `json:"collaborative"`
	SnapshotID    string            `json:"snapshot_id"`
	Tracks        playlistTracksRef `json:"tracks"`
	URI           string            `json:"uri"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
//
// Track is nil for entries that were removed from the catalog.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyDevice represents a Spotify Connect device.
type SpotifyDevice struct {
	ID            *string `json:"id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	IsActive      bool    `json:"is_active"`
	IsRestricted  bool    `json:"is_restricted"`
	VolumePercent *int    `json:"volume_percent"`
}

// SpotifyPaging is the envelope of every paginated collection.
type SpotifyPaging[T any] struct {
	Items    []T     `json:"items"`
	Total    int     `json:"total"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

type snapshotResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

type errorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIError is a non-2xx response from the Web API.
//
// It matches [shared.ErrAPIRequest] and, depending on the status, [shared.ErrTokenExpired] or [shared.ErrNotFound].
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("spotify API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("spotify API error: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() []error {
	errs := []error{shared.ErrAPIRequest}
	switch e.StatusCode {
	case http.StatusUnauthorized:
		errs = append(errs, shared.ErrTokenExpired)
	case http.StatusNotFound:
		errs = append(errs, shared.ErrNotFound)
	}
	return errs
}

// Option configures a [SpotifyService].
type Option func(*SpotifyService)

// WithBaseURL points the client at another API root (used by tests).
func WithBaseURL(u string) Option {
	return func(s *SpotifyService) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the client whose transport carries the OAuth2 transport.
func WithHTTPClient(c *http.Client) Option {
	return func(s *SpotifyService) { s.baseClient = c }
}

// WithRateLimit paces requests to rps per second. Zero or less disables pacing.
func WithRateLimit(rps float64) Option {
	return func(s *SpotifyService) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// SpotifyService implements the Service interface for Spotify API interactions.
// Uses [oauth2] for authentication and provides methods for playlist, track and device operations.
type SpotifyService struct {
	config         *oauth2.Config
	token          *oauth2.Token
	httpClient     *http.Client
	baseClient     *http.Client
	baseURL        string
	limiter        *rate.Limiter
	credentials    map[string]string
	mu             sync.RWMutex
	onTokenRefresh func(*oauth2.Token)
}

var _ OAuthService = (*SpotifyService)(nil)

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string, opts ...Option) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id in credentials", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret in credentials", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-read-email",
			"playlist-read-private",
			"playlist-read-collaborative",
			"playlist-modify-public",
			"playlist-modify-private",
			"user-read-playback-state",
			"user-modify-playback-state",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	s := &SpotifyService{
		config:      config,
		baseURL:     spotifyBaseURL,
		credentials: credentials,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the OAuth2 configuration.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// SetTokenRefreshCallback registers fn to be called when the OAuth2 transport obtains a new access token.
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTokenRefresh = fn
}

func (s *SpotifyService) notifyRefresh(token *oauth2.Token) {
	s.mu.RLock()
	fn := s.onTokenRefresh
	s.mu.RUnlock()
	if fn != nil {
		fn(token)
	}
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		return s.OAuthenticate(ctx, &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
		})
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(s.clientContext(ctx), authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code in credentials", shared.ErrMissingCredentials)
}

// OAuthenticate installs token and builds an HTTP client that refreshes it when it expires.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || (token.AccessToken == "" && token.RefreshToken == "") {
		return fmt.Errorf("%w: empty token", shared.ErrNotAuthenticated)
	}

	ctx = s.clientContext(ctx)
	source := &refreshableTokenSource{
		source:   s.config.TokenSource(ctx, token),
		callback: s.notifyRefresh,
		current:  token.AccessToken,
	}

	s.mu.Lock()
	s.token = token
	s.httpClient = oauth2.NewClient(ctx, source)
	s.mu.Unlock()
	return nil
}

// clientContext carries the configured base client into oauth2 so token refreshes use the same transport.
func (s *SpotifyService) clientContext(ctx context.Context) context.Context {
	if s.baseClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, s.baseClient)
}

// refreshableTokenSource reports every new access token to callback.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)
	mu       sync.Mutex
	current  string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.current
	r.current = token.AccessToken
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(token)
	}
	return token, nil
}

func (s *SpotifyService) client() *http.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.httpClient
}

func (s *SpotifyService) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return s.baseURL + "/" + strings.TrimPrefix(endpoint, "/")
}

// doRequest performs an authenticated HTTP request to the Spotify API.
//
// endpoint is relative to the API root unless it is an absolute URL (pagination cursors).
// A nil body sends no payload; a nil result discards the response body.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	client := s.client()
	if client == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.resolve(endpoint), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(data, &er) == nil {
			apiErr.Message = er.Error.Message
		}
		return apiErr
	}

	if result == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// pageFetcher adapts a paginated endpoint of S items into a [PageFunc] of T items.
//
// Items for which convert returns false are dropped.
func pageFetcher[S, T any](s *SpotifyService, convert func(S) (T, bool)) PageFunc[T] {
	return func(ctx context.Context, url string) (*models.Page[T], error) {
		var resp SpotifyPaging[S]
		if err := s.doRequest(ctx, http.MethodGet, url, nil, &resp); err != nil {
			return nil, err
		}

		items := make([]T, 0, len(resp.Items))
		for _, raw := range resp.Items {
			if item, ok := convert(raw); ok {
				items = append(items, item)
			}
		}

		page := &models.Page[T]{
			Items:  items,
			Total:  resp.Total,
			Limit:  resp.Limit,
			Offset: resp.Offset,
			Count:  len(resp.Items),
		}
		if resp.Next != nil {
			page.Next = *resp.Next
		}
		return page, nil
	}
}

// getItems follows every page of url and returns the converted items.
func getItems[S, T any](ctx context.Context, s *SpotifyService, url string, convert func(S) (T, bool)) ([]T, error) {
	return NewPaginator(url, pageFetcher(s, convert)).All(ctx)
}

func playlistTracksURL(playlistID string) string {
	return fmt.Sprintf("playlists/%s/tracks?market=from_token&limit=50", url.PathEscape(playlistID))
}

// CurrentUser retrieves the current authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*models.User, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "me", nil, &user); err != nil {
		return nil, err
	}
	return &models.User{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
	}, nil
}

// CreatePlaylist creates a playlist for the current user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name string, details models.PlaylistDetails) (*models.Playlist, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}
	details.Name = &name

	var sp SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodPost, "me/playlists", details, &sp); err != nil {
		return nil, err
	}

	playlist, _ := toPlaylist(sp)
	return &playlist, nil
}

// Playlists retrieves all playlists for the authenticated user.
func (s *SpotifyService) Playlists(ctx context.Context) ([]models.Playlist, error) {
	return getItems(ctx, s, "me/playlists?limit=50", toPlaylist)
}

// Playlist retrieves a playlist by ID.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	var sp SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodGet, "playlists/"+url.PathEscape(playlistID), nil, &sp); err != nil {
		return nil, err
	}

	playlist, _ := toPlaylist(sp)
	return &playlist, nil
}

// EditPlaylist changes a playlist's details.
func (s *SpotifyService) EditPlaylist(ctx context.Context, playlistID string, details models.PlaylistDetails) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if details.Empty() {
		return fmt.Errorf("%w: nothing to change", shared.ErrMissingArgument)
	}
	return s.doRequest(ctx, http.MethodPut, "playlists/"+url.PathEscape(playlistID), details, nil)
}

// PlaylistTracks retrieves every track of a playlist.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	return getItems(ctx, s, playlistTracksURL(playlistID), toTrack)
}

// PlaylistTracksPager returns a [Paginator] over a playlist's tracks.
func (s *SpotifyService) PlaylistTracksPager(playlistID string) *Paginator[models.Track] {
	return NewPaginator(playlistTracksURL(playlistID), pageFetcher(s, toTrack))
}

// AddToPlaylist appends tracks to a playlist. The URIs travel in the query string.
func (s *SpotifyService) AddToPlaylist(ctx context.Context, playlistID string, uris []string) (string, error) {
	if playlistID == "" {
		return "", fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if len(uris) == 0 {
		return "", fmt.Errorf("%w: track uris", shared.ErrMissingArgument)
	}
	if len(uris) > maxTracksPerRequest {
		return "", fmt.Errorf("%w: at most %d tracks per request", shared.ErrInvalidArgument, maxTracksPerRequest)
	}

	endpoint := fmt.Sprintf("playlists/%s/tracks?uris=%s", url.PathEscape(playlistID), url.QueryEscape(strings.Join(uris, ",")))

	var resp snapshotResponse
	if err := s.doRequest(ctx, http.MethodPost, endpoint, nil, &resp); err != nil {
		return "", err
	}
	return resp.SnapshotID, nil
}

type removeTrack struct {
	URI       string `json:"uri"`
	Positions []int  `json:"positions"`
}

type removeTracksBody struct {
	Tracks []removeTrack `json:"tracks"`
}

// RemoveFromPlaylist removes the referenced occurrences of tracks from a playlist.
func (s *SpotifyService) RemoveFromPlaylist(ctx context.Context, playlistID string, refs []models.TrackRef) (string, error) {
	if playlistID == "" {
		return "", fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if len(refs) == 0 {
		return "", fmt.Errorf("%w: tracks to remove", shared.ErrMissingArgument)
	}
	if len(refs) > maxTracksPerRequest {
		return "", fmt.Errorf("%w: at most %d tracks per request", shared.ErrInvalidArgument, maxTracksPerRequest)
	}

	body := removeTracksBody{Tracks: make([]removeTrack, 0, len(refs))}
	for _, ref := range refs {
		if ref.URI == "" || ref.Position < 0 {
			return "", fmt.Errorf("%w: track reference %+v", shared.ErrInvalidArgument, ref)
		}
		body.Tracks = append(body.Tracks, removeTrack{URI: ref.URI, Positions: []int{ref.Position}})
	}

	var resp snapshotResponse
	endpoint := fmt.Sprintf("playlists/%s/tracks", url.PathEscape(playlistID))
	if err := s.doRequest(ctx, http.MethodDelete, endpoint, body, &resp); err != nil {
		return "", err
	}
	return resp.SnapshotID, nil
}

// Devices lists the user's available playback devices.
func (s *SpotifyService) Devices(ctx context.Context) ([]models.Device, error) {
	var resp struct {
		Devices []SpotifyDevice `json:"devices"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "me/player/devices", nil, &resp); err != nil {
		return nil, err
	}

	devices := make([]models.Device, 0, len(resp.Devices))
	for _, d := range resp.Devices {
		device := models.Device{
			Name:       d.Name,
			Type:       d.Type,
			Active:     d.IsActive,
			Restricted: d.IsRestricted,
		}
		if d.ID != nil {
			device.ID = *d.ID
		}
		if d.VolumePercent != nil {
			device.VolumePercent = *d.VolumePercent
		}
		devices = append(devices, device)
	}
	return devices, nil
}

// SetDevice transfers playback to deviceID.
func (s *SpotifyService) SetDevice(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return fmt.Errorf("%w: device id", shared.ErrMissingArgument)
	}
	body := struct {
		DeviceIDs []string `json:"device_ids"`
	}{DeviceIDs: []string{deviceID}}
	return s.doRequest(ctx, http.MethodPut, "me/player", body, nil)
}

func toPlaylist(sp SpotifyPlaylist) (models.Playlist, bool) {
	p := models.Playlist{
		ID:            sp.ID,
		Name:          sp.Name,
		Description:   sp.Description,
		Collaborative: sp.Collaborative,
		TrackCount:    sp.Tracks.Total,
		OwnerID:       sp.Owner.ID,
		SnapshotID:    sp.SnapshotID,
	}
	if sp.Public != nil {
		p.Public = *sp.Public
	}
	return p, sp.ID != ""
}

func toTrack(item SpotifyPlaylistTrack) (models.Track, bool) {
	if item.Track == nil {
		return models.Track{}, false
	}

	t := item.Track
	track := models.Track{
		ID:       t.ID,
		URI:      t.URI,
		Title:    t.Name,
		Album:    t.Album.Name,
		Duration: t.DurationMS / 1000,
		ISRC:     t.ExternalIDs.ISRC,
	}

	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	track.Artist = strings.Join(names, ", ")

	if item.AddedAt != "" {
		if added, err := time.Parse(time.RFC3339, item.AddedAt); err == nil {
			track.AddedAt = added
		}
	}
	return track, true
}
