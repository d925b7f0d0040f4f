package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spt/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file from the template when missing, then initializes the cache database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}

		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return fmt.Errorf("failed to load created config: %w", err)
		}
		r.config = config
		r.writePlain("✓ Config file created at %s\n", r.configPath)
	} else {
		r.writePlain("✓ Using config file %s\n", r.configPath)
	}

	if cmd.Bool("skip-database") {
		return nil
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	db, err := shared.OpenCache(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)

	if !r.config.HasClient() {
		r.writePlainln("Next steps:")
		r.writePlain("1. Create an application at https://developer.spotify.com/dashboard\n")
		r.writePlain("2. Add %s to its redirect URIs\n", r.config.Spotify.RedirectURI)
		r.writePlain("3. Set spotify.client_id and spotify.client_secret in %s\n", r.configPath)
		r.writePlain("4. Run 'spt auth login'\n")
	}
	return nil
}

// setupCommand creates the config file and the cache database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize the cache database",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "skip-database",
				Usage: "Only create the config file",
			},
		},
		Action: r.Setup,
	}
}
