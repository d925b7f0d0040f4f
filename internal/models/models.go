// package models defines the data model shared by the Spotify client, the CLI and the TUI
package models

import (
	"time"
)

// Playlist represents a Spotify playlist.
type Playlist struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Public        bool   `json:"public"`
	Collaborative bool   `json:"collaborative"`
	TrackCount    int    `json:"track_count"`
	OwnerID       string `json:"owner_id,omitempty"`
	SnapshotID    string `json:"snapshot_id,omitempty"`
}

// PlaylistDetails holds the optional fields used to create or edit a playlist.
//
// Nil fields are left out of the request body.
type PlaylistDetails struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	Public        *bool   `json:"public,omitempty"`
	Collaborative *bool   `json:"collaborative,omitempty"`
}

// Empty reports whether no field is set.
func (d PlaylistDetails) Empty() bool {
	return d.Name == nil && d.Description == nil && d.Public == nil && d.Collaborative == nil
}

// PlaylistExport is a playlist together with its tracks.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []Track  `json:"tracks"`
}

// Track represents a track within a playlist.
type Track struct {
	ID       string    `json:"id"`
	URI      string    `json:"uri"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	Album    string    `json:"album"`
	Duration int       `json:"duration"` // Duration in seconds
	ISRC     string    `json:"isrc,omitempty"`
	AddedAt  time.Time `json:"added_at,omitzero"`
}

// TrackRef points at one occurrence of a track in a playlist.
type TrackRef struct {
	URI      string `json:"uri"`
	Position int    `json:"position"`
}

// Device is a Spotify Connect playback device.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Active        bool   `json:"is_active"`
	Restricted    bool   `json:"is_restricted"`
	VolumePercent int    `json:"volume_percent"`
}

// User is the authenticated Spotify account.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Product     string `json:"product"`
}

// Page is one page of a paginated collection.
type Page[T any] struct {
	Items  []T
	Total  int
	Limit  int
	Offset int
	Next   string // empty when this is the last page

	// Count is how many entries the page covered upstream, including ones dropped from Items.
	// Zero means len(Items).
	Count int
}

// Release is the latest published version of the application.
type Release struct {
	TagName string `json:"tag_name"`
	URL     string `json:"html_url"`
}
