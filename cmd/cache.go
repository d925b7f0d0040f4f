package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/repositories"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/urfave/cli/v3"
)

// CachePlaylists lists the playlists stored by the last cached listing.
func (r *Runner) CachePlaylists(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.OpenCache(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer db.Close()

	criteria := map[string]any{}
	if owner := cmd.String("owner"); owner != "" {
		criteria["owner_id"] = owner
	}
	if cmd.IsSet("public") {
		criteria["public"] = cmd.Bool("public")
	}

	cached, err := repositories.NewPlaylistRepository(db).List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list cached playlists: %w", err)
	}

	if cmd.Bool("json") {
		playlists := make([]models.Playlist, 0, len(cached))
		for _, p := range cached {
			playlists = append(playlists, p.Playlist())
		}
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(cached) == 0 {
		return r.writePlain("No cached playlists, run 'spt playlists list --cache' first\n")
	}

	r.writePlain("Cached playlists (%d):\n\n", len(cached))
	for i, p := range cached {
		r.writePlaylist(i+1, p.Playlist())
		r.writePlain("   Cached: %s\n\n", p.UpdatedAt().Local().Format(time.DateTime))
	}
	return nil
}

// cacheCommand handles the local playlist cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the local playlist cache",
		Commands: []*cli.Command{
			{
				Name:  "playlists",
				Usage: "List cached playlists",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "owner",
						Usage: "Only playlists owned by this user id",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Filter by visibility (--public or --public=false)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.CachePlaylists,
			},
		},
	}
}
