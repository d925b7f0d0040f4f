package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/server"
	"github.com/desertthunder/spt/internal/services"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin performs the OAuth2 authorization code flow and stores the tokens.
//
// Starts a local HTTP server, opens the browser for user authorization, and exchanges the code for tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if !r.config.HasClient() {
		return fmt.Errorf("%w: spotify.client_id and spotify.client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	oauthSrv, err := r.oauthService()
	if err != nil {
		return err
	}

	token, err := r.authorize(ctx, oauthSrv, "authorization")
	if err != nil {
		return err
	}
	if err := r.saveTokens(token); err != nil {
		return err
	}
	if err := oauthSrv.OAuthenticate(ctx, token); err != nil {
		return err
	}
	r.spotify = oauthSrv

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	r.writePlain("You can now use: spt playlists list\n")
	return nil
}

// AuthStatus reports whether tokens are stored and who they belong to.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if !r.config.HasTokens() {
		return r.writePlain("✗ Not logged in\n")
	}

	var user *models.User
	err := r.call(ctx, func(svc services.Service) error {
		var err error
		user, err = svc.CurrentUser(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	name := user.DisplayName
	if name == "" {
		name = user.ID
	}
	r.writePlain("✓ Logged in as %s (%s)\n", name, user.ID)
	if user.Product != "" {
		r.writePlain("  Plan: %s\n", user.Product)
	}
	if expiry := r.config.Spotify.Token.Expiry; !expiry.IsZero() {
		r.writePlain("  Token expires: %s\n", expiry.Local().Format(time.DateTime))
	}
	return nil
}

// AuthLogout removes the stored tokens, and the client registration with --all.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	all := cmd.Bool("all")

	r.config.RemoveTokens()
	if all {
		r.config.RemoveClient()
	}
	if err := r.saveConfig(); err != nil {
		return err
	}
	r.logger.Info("logged out", "cleared_client", all)

	if all {
		return r.writePlain("✓ Logged out and application credentials cleared\n")
	}
	return r.writePlain("✓ Logged out\n")
}

// oauthService returns the injected client when it supports the OAuth flow, or a new Spotify client.
func (r *Runner) oauthService() (services.OAuthService, error) {
	if srv, ok := r.spotify.(services.OAuthService); ok {
		return srv, nil
	}
	svc, err := r.newSpotify()
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify service: %w", err)
	}
	return svc, nil
}

// authorize executes the OAuth2 authorization flow with a local HTTP server.
func (r *Runner) authorize(ctx context.Context, oauthSrv services.OAuthService, purpose string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	handler := server.NewOAuthHandler(oauthSrv.GetOAuthConfig(), state).WithHTTPClient(r.httpClient)
	addr := net.JoinHostPort(r.config.Server.Host, strconv.Itoa(r.config.Server.Port))
	callback := server.NewCallbackServer(addr, handler, r.logger)
	if err := callback.Start(); err != nil {
		return nil, err
	}
	r.logger.Infof("started OAuth server for %s at %v", purpose, callback.Addr())

	authURL := oauthSrv.GetAuthURL(state)
	r.writePlain("→ Opening browser for Spotify %s...\n", purpose)
	if err := r.openURL(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%v timeout)...\n", r.authTimeout)
	token, err := callback.Wait(ctx, r.authTimeout)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	return token, nil
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify login",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with Spotify using OAuth2",
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Show the logged in account",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.AuthStatus,
			},
			{
				Name:  "logout",
				Usage: "Remove stored tokens",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Also clear the application client id and secret",
					},
				},
				Action: r.AuthLogout,
			},
		},
	}
}
