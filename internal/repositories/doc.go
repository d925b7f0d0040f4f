// Package repositories implements SQLite persistence for the playlist cache.
//
// The cache keeps the last playlist listing fetched from Spotify so `spt cache playlists`
// can show it offline and the TUI can fall back to it when the API is unreachable.
// Rows are soft-deleted via deleted_at timestamps and excluded from queries by default.
//
// Key Implementations:
//   - [PlaylistRepository] : Playlist caching keyed by Spotify ID, with [PlaylistRepository.Sync] replacing a whole listing
//
// Sequence numbers preserve the listing order independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
