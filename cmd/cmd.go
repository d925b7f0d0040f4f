// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/spt/internal/formatter"
	"github.com/urfave/cli/v3"
)

// playlistsCommand handles playlist operations
func playlistsCommand(r *Runner) *cli.Command {
	idFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:     "id",
			Usage:    "Playlist ID",
			Required: true,
		}
	}
	detailFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:  "description",
				Usage: "Playlist description",
			},
			&cli.BoolFlag{
				Name:  "public",
				Usage: "Make the playlist public (--public=false for private)",
			},
			&cli.BoolFlag{
				Name:  "collaborative",
				Usage: "Let others edit the playlist",
			},
		}
	}

	formats := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		formats[i] = string(f)
	}

	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Spotify playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your playlists",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to print",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
					&cli.BoolFlag{
						Name:  "cache",
						Usage: "Store the listing in the local cache",
					},
				},
				Action: r.PlaylistsList,
			},
			{
				Name:  "show",
				Usage: "Show playlist details",
				Flags: []cli.Flag{
					idFlag(),
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
				Action: r.PlaylistsShow,
			},
			{
				Name:  "create",
				Usage: "Create a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: append(detailFlags(), &cli.BoolFlag{
					Name:  "json",
					Usage: "Output raw JSON",
				}),
				Action: r.PlaylistsCreate,
			},
			{
				Name:  "edit",
				Usage: "Change playlist details; only the given flags are sent",
				Flags: append([]cli.Flag{
					idFlag(),
					&cli.StringFlag{
						Name:  "name",
						Usage: "New playlist name",
					},
				}, detailFlags()...),
				Action: r.PlaylistsEdit,
			},
			{
				Name:  "tracks",
				Usage: "Print or export the tracks of a playlist",
				Flags: []cli.Flag{
					idFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (" + strings.Join(formats, ", ") + ")",
						Value:   string(formatter.FormatText),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Write to {id}_tracks.{ext} in the current directory",
					},
				},
				Action: r.PlaylistsTracks,
			},
			{
				Name:  "add",
				Usage: "Add tracks to a playlist",
				Flags: []cli.Flag{
					idFlag(),
					&cli.StringSliceFlag{
						Name:     "uri",
						Usage:    "Track URI, repeatable (spotify:track:...)",
						Required: true,
					},
				},
				Action: r.PlaylistsAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove tracks from a playlist",
				Flags: []cli.Flag{
					idFlag(),
					&cli.StringSliceFlag{
						Name:     "track",
						Usage:    "Track to remove as uri:position, repeatable",
						Required: true,
					},
				},
				Action: r.PlaylistsRemove,
			},
		},
	}
}

// devicesCommand handles playback device selection
func devicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "Spotify Connect devices",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List available devices",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.DevicesList,
			},
			{
				Name:  "set",
				Usage: "Transfer playback to a device (defaults to the last selected one)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.DevicesSet,
			},
		},
	}
}

// updateCommand handles release checks
func updateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Release information",
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Check GitHub for a newer release",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.UpdateCheck,
			},
		},
	}
}

// menuCommand returns the top-level command for the interactive menu.
func menuCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "menu",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive menu",
		Action:  r.TUI,
	}
}
