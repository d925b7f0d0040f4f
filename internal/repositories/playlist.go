package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
)

const playlistColumns = `id, sequence, service_id, owner_id, name, description, track_count, public, collaborative, snapshot_id, created_at, updated_at, deleted_at`

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// PlaylistRepository implements models.Repository[*models.PersistedPlaylist] for playlist caching.
//
// Handles playlist CRUD operations with soft delete support and Spotify ID lookups.
type PlaylistRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.PersistedPlaylist] = (*PlaylistRepository)(nil)

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist into the database with generated ID and sequence
func (r *PlaylistRepository) Create(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	p := playlist.Playlist()

	query := `
		INSERT INTO playlists (id, sequence, service_id, owner_id, name, description, track_count, public, collaborative, snapshot_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		p.ID,
		p.OwnerID,
		p.Name,
		p.Description,
		p.TrackCount,
		p.Public,
		p.Collaborative,
		p.SnapshotID,
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	playlist.SetID(id)
	return nil
}

// Get retrieves a playlist by ID, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(id string) (*models.PersistedPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// GetByServiceID retrieves a playlist by its Spotify ID
func (r *PlaylistRepository) GetByServiceID(serviceID string) (*models.PersistedPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE service_id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, serviceID))
}

// Update modifies an existing playlist in the database
func (r *PlaylistRepository) Update(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	now := time.Now()
	p := playlist.Playlist()

	query := `
		UPDATE playlists
		SET owner_id = ?, name = ?, description = ?, track_count = ?, public = ?, collaborative = ?, snapshot_id = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		p.OwnerID,
		p.Name,
		p.Description,
		p.TrackCount,
		p.Public,
		p.Collaborative,
		p.SnapshotID,
		now,
		playlist.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	if err := requireRow(result, playlist.ID()); err != nil {
		return err
	}

	playlist.SetUpdatedAt(now)
	return nil
}

// Upsert stores p, updating the cached row with the same Spotify ID if there is one.
//
// A soft-deleted row is revived.
func (r *PlaylistRepository) Upsert(p models.Playlist) (*models.PersistedPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE service_id = ?`
	existing, err := r.scan(r.db.QueryRow(query, p.ID))
	switch {
	case errors.Is(err, shared.ErrNotFound):
		playlist := models.NewPersistedPlaylist(0, p)
		if err := r.Create(playlist); err != nil {
			return nil, err
		}
		return r.Get(playlist.ID())
	case err != nil:
		return nil, err
	}

	if existing.DeletedAt() != nil {
		if _, err := r.db.Exec(`UPDATE playlists SET deleted_at = NULL WHERE id = ?`, existing.ID()); err != nil {
			return nil, fmt.Errorf("failed to restore playlist: %w", err)
		}
		existing.SetDeletedAt(nil)
	}

	existing.SetPlaylist(p)
	if err := r.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Sync replaces the cached listing with playlists: each is upserted and cached rows missing from it are soft-deleted.
func (r *PlaylistRepository) Sync(playlists []models.Playlist) ([]*models.PersistedPlaylist, error) {
	keep := make(map[string]struct{}, len(playlists))
	stored := make([]*models.PersistedPlaylist, 0, len(playlists))
	for _, p := range playlists {
		persisted, err := r.Upsert(p)
		if err != nil {
			return nil, fmt.Errorf("failed to cache playlist %s: %w", p.ID, err)
		}
		keep[p.ID] = struct{}{}
		stored = append(stored, persisted)
	}

	cached, err := r.List(nil)
	if err != nil {
		return nil, err
	}
	for _, c := range cached {
		if _, ok := keep[c.ServiceID()]; ok {
			continue
		}
		if err := r.Delete(c.ID()); err != nil {
			return nil, err
		}
	}
	return stored, nil
}

// Delete soft-deletes a playlist by ID
func (r *PlaylistRepository) Delete(id string) error {
	query := `
		UPDATE playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return requireRow(result, id)
}

// List retrieves all playlists matching the given criteria, excluding soft-deleted playlists
//
// Supported criteria: "owner_id" (string) and "public" (bool).
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.PersistedPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE deleted_at IS NULL`
	args := []any{}

	if ownerID, ok := criteria["owner_id"].(string); ok && ownerID != "" {
		query += " AND owner_id = ?"
		args = append(args, ownerID)
	}

	if public, ok := criteria["public"].(bool); ok {
		query += " AND public = ?"
		args = append(args, public)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.PersistedPlaylist
	for rows.Next() {
		playlist, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// Playlists returns the cached DTOs in listing order.
func (r *PlaylistRepository) Playlists() ([]models.Playlist, error) {
	cached, err := r.List(nil)
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(cached))
	for _, c := range cached {
		playlists = append(playlists, c.Playlist())
	}
	return playlists, nil
}

// scan reads a single row into a [models.PersistedPlaylist]
func (r *PlaylistRepository) scan(row scanner) (*models.PersistedPlaylist, error) {
	var (
		id        string
		sequence  int
		p         models.Playlist
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &p.ID, &p.OwnerID, &p.Name, &p.Description, &p.TrackCount, &p.Public, &p.Collaborative, &p.SnapshotID, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: playlist", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	playlist := models.NewPersistedPlaylist(sequence, p)
	playlist.SetID(id)
	playlist.SetCreatedAt(createdAt)
	playlist.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		playlist.SetDeletedAt(&deletedAt.Time)
	}

	return playlist, nil
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: playlist %s not found or already deleted", shared.ErrNotFound, id)
	}
	return nil
}
