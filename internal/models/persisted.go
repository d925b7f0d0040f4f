package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

var _ Model = (*PersistedPlaylist)(nil)

// PersistedPlaylist is a cached copy of a [Playlist] keyed by its Spotify ID.
type PersistedPlaylist struct {
	id        string
	sequence  int
	playlist  Playlist
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedPlaylist wraps a playlist DTO for storage.
func NewPersistedPlaylist(sequence int, p Playlist) *PersistedPlaylist {
	now := time.Now()
	return &PersistedPlaylist{
		sequence:  sequence,
		playlist:  p,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *PersistedPlaylist) ID() string            { return p.id }
func (p *PersistedPlaylist) Sequence() int         { return p.sequence }
func (p *PersistedPlaylist) ServiceID() string     { return p.playlist.ID }
func (p *PersistedPlaylist) Playlist() Playlist    { return p.playlist }
func (p *PersistedPlaylist) CreatedAt() time.Time  { return p.createdAt }
func (p *PersistedPlaylist) UpdatedAt() time.Time  { return p.updatedAt }
func (p *PersistedPlaylist) DeletedAt() *time.Time { return p.deletedAt }

func (p *PersistedPlaylist) SetID(id string) {
	p.id = id
}

func (p *PersistedPlaylist) SetPlaylist(pl Playlist) {
	p.playlist = pl
}

func (p *PersistedPlaylist) SetCreatedAt(t time.Time) {
	p.createdAt = t
}

func (p *PersistedPlaylist) SetUpdatedAt(t time.Time) {
	p.updatedAt = t
}

func (p *PersistedPlaylist) SetDeletedAt(t *time.Time) {
	p.deletedAt = t
}

// Validate checks that the playlist can be stored.
func (p *PersistedPlaylist) Validate() error {
	if p.playlist.ID == "" {
		return fmt.Errorf("playlist service id is required")
	}
	if p.playlist.Name == "" {
		return fmt.Errorf("playlist name is required")
	}
	return nil
}
