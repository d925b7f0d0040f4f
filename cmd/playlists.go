package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/spt/internal/formatter"
	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/repositories"
	"github.com/desertthunder/spt/internal/services"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistsList lists the user's playlists with an optional limit, caching them with --cache.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	r.logger.Debugf("listing spotify playlists with limit %v", limit)

	var playlists []models.Playlist
	err := r.call(ctx, func(svc services.Service) error {
		var err error
		playlists, err = svc.Playlists(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if cmd.Bool("cache") {
		if err := r.cachePlaylists(playlists); err != nil {
			r.logger.Warn("failed to cache playlists", "error", err)
		}
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlaylist(i+1, p)
		r.writePlain("\n")
	}
	return nil
}

func (r *Runner) writePlaylist(n int, p models.Playlist) {
	r.writePlain("%d. %s\n", n, p.Name)
	if p.Description != "" {
		r.writePlain("   Description: %s\n", p.Description)
	}
	r.writePlain("   ID: %s\n", p.ID)
	r.writePlain("   Tracks: %d\n", p.TrackCount)
	r.writePlain("   Visibility: %s\n", shared.VisibilityString(p.Public))
	if p.Collaborative {
		r.writePlain("   Collaborative: yes\n")
	}
}

// cachePlaylists replaces the cached listing with playlists.
func (r *Runner) cachePlaylists(playlists []models.Playlist) error {
	db, err := shared.OpenCache(r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	stored, err := repositories.NewPlaylistRepository(db).Sync(playlists)
	if err != nil {
		return err
	}
	r.logger.Info("playlists cached", "count", len(stored), "path", r.config.Database.Path)
	return nil
}

// PlaylistsShow prints the details of one playlist.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if id == "" {
		return fmt.Errorf("%w: --id flag is required", shared.ErrMissingArgument)
	}

	var playlist *models.Playlist
	err := r.call(ctx, func(svc services.Service) error {
		var err error
		playlist, err = svc.Playlist(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlist, cmd.Bool("pretty"))
	}

	r.writePlainHeader(playlist.Name)
	if playlist.Description != "" {
		r.writePlain("Description: %s\n", playlist.Description)
	}
	r.writePlain("ID: %s\n", playlist.ID)
	if playlist.OwnerID != "" {
		r.writePlain("Owner: %s\n", playlist.OwnerID)
	}
	r.writePlain("Tracks: %d\n", playlist.TrackCount)
	r.writePlain("Visibility: %s\n", shared.VisibilityString(playlist.Public))
	r.writePlain("Collaborative: %t\n", playlist.Collaborative)
	if playlist.SnapshotID != "" {
		r.writePlain("Snapshot: %s\n", playlist.SnapshotID)
	}
	return nil
}

// playlistDetails collects the optional playlist fields whose flags were given on the command line.
func playlistDetails(cmd *cli.Command) models.PlaylistDetails {
	var d models.PlaylistDetails
	if cmd.IsSet("name") {
		v := cmd.String("name")
		d.Name = &v
	}
	if cmd.IsSet("description") {
		v := cmd.String("description")
		d.Description = &v
	}
	if cmd.IsSet("public") {
		v := cmd.Bool("public")
		d.Public = &v
	}
	if cmd.IsSet("collaborative") {
		v := cmd.Bool("collaborative")
		d.Collaborative = &v
	}
	return d
}

// PlaylistsCreate creates a playlist owned by the current user.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}
	details := playlistDetails(cmd)

	var playlist *models.Playlist
	err := r.call(ctx, func(svc services.Service) error {
		var err error
		playlist, err = svc.CreatePlaylist(ctx, name, details)
		return err
	})
	if err != nil {
		return err
	}

	r.logger.Info("playlist created", "id", playlist.ID, "name", playlist.Name)
	if cmd.Bool("json") {
		return r.writeJSON(playlist, true)
	}
	return r.writePlain("✓ Created playlist %s (%s)\n", playlist.Name, playlist.ID)
}

// PlaylistsEdit changes the details of a playlist; only flags that were set are sent.
func (r *Runner) PlaylistsEdit(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if id == "" {
		return fmt.Errorf("%w: --id flag is required", shared.ErrMissingArgument)
	}

	details := playlistDetails(cmd)
	if details.Empty() {
		return fmt.Errorf("%w: nothing to change, pass --name, --description, --public or --collaborative", shared.ErrMissingArgument)
	}

	if err := r.call(ctx, func(svc services.Service) error {
		return svc.EditPlaylist(ctx, id, details)
	}); err != nil {
		return err
	}
	return r.writePlain("✓ Updated playlist %s\n", id)
}

// PlaylistsTracks renders every track of a playlist in the requested format.
func (r *Runner) PlaylistsTracks(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if id == "" {
		return fmt.Errorf("%w: --id flag is required", shared.ErrMissingArgument)
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	export := &models.PlaylistExport{}
	err = r.call(ctx, func(svc services.Service) error {
		playlist, err := svc.Playlist(ctx, id)
		if err != nil {
			return err
		}
		tracks, err := svc.PlaylistTracks(ctx, id)
		if err != nil {
			return err
		}
		export.Playlist = *playlist
		export.Tracks = tracks
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Debugf("fetched %d tracks of %v", len(export.Tracks), id)

	if output := cmd.String("output"); output != "" || cmd.Bool("save") {
		path, err := formatter.WriteFile(output, format, export)
		if err != nil {
			return err
		}
		r.logger.Infof("playlist exported to %v with %v tracks", path, len(export.Tracks))
		r.writePlain("✓ Playlist exported to %s\n", path)
		r.writePlain("  Playlist: %s\n", export.Playlist.Name)
		r.writePlain("  Tracks: %d\n", len(export.Tracks))
		return nil
	}

	return formatter.Render(r.output, format, export)
}

// PlaylistsAdd appends tracks by URI.
func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	uris := cmd.StringSlice("uri")
	if id == "" {
		return fmt.Errorf("%w: --id flag is required", shared.ErrMissingArgument)
	}
	if len(uris) == 0 {
		return fmt.Errorf("%w: at least one --uri is required", shared.ErrMissingArgument)
	}

	var snapshot string
	if err := r.call(ctx, func(svc services.Service) error {
		var err error
		snapshot, err = svc.AddToPlaylist(ctx, id, uris)
		return err
	}); err != nil {
		return err
	}

	r.writePlain("✓ Added %d tracks to %s\n", len(uris), id)
	r.writePlain("  Snapshot: %s\n", snapshot)
	return nil
}

// PlaylistsRemove removes track occurrences given as uri:position.
func (r *Runner) PlaylistsRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	values := cmd.StringSlice("track")
	if id == "" {
		return fmt.Errorf("%w: --id flag is required", shared.ErrMissingArgument)
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: at least one --track uri:position is required", shared.ErrMissingArgument)
	}

	refs := make([]models.TrackRef, 0, len(values))
	for _, v := range values {
		ref, err := parseTrackRef(v)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}

	var snapshot string
	if err := r.call(ctx, func(svc services.Service) error {
		var err error
		snapshot, err = svc.RemoveFromPlaylist(ctx, id, refs)
		return err
	}); err != nil {
		return err
	}

	r.writePlain("✓ Removed %d tracks from %s\n", len(refs), id)
	r.writePlain("  Snapshot: %s\n", snapshot)
	return nil
}

// parseTrackRef splits "spotify:track:abc:3" at the last colon into a URI and a position.
func parseTrackRef(s string) (models.TrackRef, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return models.TrackRef{}, fmt.Errorf("%w: %q is not uri:position", shared.ErrInvalidArgument, s)
	}

	pos, err := strconv.Atoi(s[i+1:])
	if err != nil || pos < 0 {
		return models.TrackRef{}, fmt.Errorf("%w: invalid position in %q", shared.ErrInvalidArgument, s)
	}
	return models.TrackRef{URI: s[:i], Position: pos}, nil
}
