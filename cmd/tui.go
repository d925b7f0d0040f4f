package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spt/internal/repositories"
	"github.com/desertthunder/spt/internal/services"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/desertthunder/spt/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// TUI launches the interactive menu.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.App.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	svc, err := r.service(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := ui.Options{
		Context:    ctx,
		Service:    svc,
		Config:     r.config,
		ConfigPath: r.configPath,
		Logger:     shared.WithLogger(r.logger, "component", "menu"),
		Version:    r.version,
		OpenURL:    r.openURL,
		Tokens:     r.forwardRefreshes(ctx, svc),
	}
	if r.config.App.CheckUpdates {
		opts.Updates = r.updateChecker()
	}

	if db, err := shared.OpenCache(r.config.Database); err != nil {
		r.logger.Warn("playlist cache unavailable", "error", err)
	} else {
		defer db.Close()
		opts.Cache = repositories.NewPlaylistRepository(db)
	}

	if err := ui.Run(opts); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// forwardRefreshes reroutes refreshed tokens from svc to the returned channel so the menu's update loop
// is the only writer of the config. Sends give up once ctx is done.
func (r *Runner) forwardRefreshes(ctx context.Context, svc services.Service) <-chan *oauth2.Token {
	oauthSrv, ok := svc.(services.OAuthService)
	if !ok {
		return nil
	}

	tokens := make(chan *oauth2.Token)
	oauthSrv.SetTokenRefreshCallback(func(t *oauth2.Token) {
		select {
		case tokens <- t:
		case <-ctx.Done():
			r.logger.Debug("dropping refreshed token after the menu closed")
		}
	})
	return tokens
}
