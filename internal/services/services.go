// package services defines the interfaces for interacting with the Spotify Web API
// and implements them over HTTP
package services

import (
	"context"

	"github.com/desertthunder/spt/internal/models"
	"golang.org/x/oauth2"
)

// PlaylistService covers the playlist endpoints of the Web API.
type PlaylistService interface {
	// Playlists retrieves every playlist of the authenticated user, following pagination.
	Playlists(ctx context.Context) ([]models.Playlist, error)

	// Playlist retrieves a specific playlist by ID.
	Playlist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// CreatePlaylist creates a playlist owned by the current user.
	// Only the non-nil fields of details are sent.
	CreatePlaylist(ctx context.Context, name string, details models.PlaylistDetails) (*models.Playlist, error)

	// EditPlaylist changes a playlist's details. Only the non-nil fields of details are sent.
	EditPlaylist(ctx context.Context, playlistID string, details models.PlaylistDetails) error

	// PlaylistTracks retrieves every track of a playlist, following pagination.
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// PlaylistTracksPager returns a cursor over the tracks of a playlist, one page per call.
	PlaylistTracksPager(playlistID string) *Paginator[models.Track]

	// AddToPlaylist appends tracks by URI and returns the new snapshot ID.
	AddToPlaylist(ctx context.Context, playlistID string, uris []string) (string, error)

	// RemoveFromPlaylist removes the tracks at the given positions and returns the new snapshot ID.
	RemoveFromPlaylist(ctx context.Context, playlistID string, refs []models.TrackRef) (string, error)
}

// PlayerService covers device selection.
type PlayerService interface {
	// Devices lists the user's available Spotify Connect devices.
	Devices(ctx context.Context) ([]models.Device, error)

	// SetDevice transfers playback to the device with the given ID.
	SetDevice(ctx context.Context, deviceID string) error
}

// Service is the full client surface used by the CLI and the TUI.
type Service interface {
	PlaylistService
	PlayerService

	// CurrentUser retrieves the authenticated user's profile.
	CurrentUser(ctx context.Context) (*models.User, error)

	// Name returns the name of the service
	Name() string
}

// OAuthService extends [Service] with the authorization code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the URL the user visits to grant access.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying config so the callback handler can exchange codes.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate installs a token obtained elsewhere (config file, callback).
	OAuthenticate(ctx context.Context, token *oauth2.Token) error

	// SetTokenRefreshCallback registers fn to be called whenever the access token changes.
	SetTokenRefreshCallback(fn func(*oauth2.Token))
}
