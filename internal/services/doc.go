// Package services defines the [Service] interface for the Spotify Web API and implements it over HTTP.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh.
// The [oauth2.Client] refreshes expired tokens with the refresh token and
// [SpotifyService.SetTokenRefreshCallback] reports the new token so callers can persist it.
//
// Requests are optionally paced by a [rate.Limiter] (see [WithRateLimit]).
//
// # Pagination
//
// Collection endpoints return one page at a time. [Paginator] follows the next URL of each page
// until it is empty, rejecting cursors that point back at an already visited page.
// [SpotifyService.Playlists] and [SpotifyService.PlaylistTracks] drain every page;
// [SpotifyService.PlaylistTracksPager] hands the cursor to the caller.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : the API answered 401, reauthorization needed
//   - [shared.ErrNotFound] : the API answered 404
//   - [shared.ErrAPIRequest] : HTTP request failed or the API answered with a non-2xx status
//   - [shared.ErrMissingArgument] : an ID, name or URI list was empty
//
// Non-2xx responses are returned as [*APIError], which exposes the status code and message.
//
// # API Mappings
//
// Responses are converted to the models package:
//   - [SpotifyPlaylist] → [models.Playlist]
//   - [SpotifyPlaylistTrack] → [models.Track] with ISRC from external_ids; entries without a track are skipped
//   - [SpotifyDevice] → [models.Device]
//
// # Updates
//
// [UpdateChecker] compares the running version with the latest GitHub release.
package services
