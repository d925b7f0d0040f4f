// Package models defines domain entities for the spt Spotify client.
//
// Data Transfer Objects mirror the parts of the Spotify Web API the client uses:
//   - [Playlist] : Playlist metadata (visibility, collaborative flag, track count)
//   - [PlaylistDetails] : Optional fields sent when creating or editing a playlist
//   - [Track] : Song metadata with the URI needed for playlist edits
//   - [TrackRef] : A URI plus playlist position, used when removing tracks
//   - [Device] : A Spotify Connect device, refreshed every time the device menu opens
//   - [Page] : One page of a paginated collection
//
// [PersistedPlaylist] is the only database-backed entity. It caches the last playlist listing.
// IDs issued by Spotify are opaque strings and are never parsed.
package models
