package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spt/internal/services"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	spotify     services.Service
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	version     string
	releasesURL string
	openURL     func(string) error
	authTimeout time.Duration
	mu          sync.Mutex
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Spotify     services.Service
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	Version     string
	ReleasesURL string
	OpenURL     func(string) error
	AuthTimeout time.Duration
}

// NewRunner creates a new Runner with the provided configuration.
//
// A nil Config is loaded from the --config path when a command runs.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}
	if opts.AuthTimeout <= 0 {
		opts.AuthTimeout = 2 * time.Minute
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		spotify:     opts.Spotify,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		version:     opts.Version,
		releasesURL: opts.ReleasesURL,
		openURL:     opts.OpenURL,
		authTimeout: opts.AuthTimeout,
	}
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "spt",
		Usage:   "Manage Spotify playlists and playback devices",
		Version: r.version,
		Writer:  r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (default: $SPT_CONFIG or the user config directory)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

// before loads .env and the settings file and applies the log level.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := shared.LoadEnv(); err != nil {
		r.logger.Warn("failed to load .env", "error", err)
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if r.configPath == "" {
		r.configPath = shared.DefaultConfigPath()
	}

	if r.config == nil {
		config, err := shared.LoadOrDefault(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	level := shared.ParseLogLevel(r.config.App.LogLevel)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)
	r.logger.Debug("loaded configuration", "path", r.configPath)
	return ctx, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistsCommand, devicesCommand, updateCommand, cacheCommand, menuCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, used by the TUI to move output off the screen.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) newSpotify() (*services.SpotifyService, error) {
	return services.NewSpotifyService(
		r.config.Spotify.Map(),
		services.WithHTTPClient(r.httpClient),
		services.WithRateLimit(r.config.Spotify.RequestsPerSecond),
	)
}

// service returns the authenticated Spotify client, creating it from the stored tokens on first use.
//
// Tokens refreshed by the client are written back to the settings file.
func (r *Runner) service(ctx context.Context) (services.Service, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}
	if !r.config.HasClient() {
		return nil, fmt.Errorf("%w: set spotify.client_id and spotify.client_secret in %s", shared.ErrMissingCredentials, r.configPath)
	}

	token := r.config.Spotify.OAuthToken()
	if token == nil {
		return nil, fmt.Errorf("%w: run 'spt auth login' first", shared.ErrNotAuthenticated)
	}

	svc, err := r.newSpotify()
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify service: %w", err)
	}
	svc.SetTokenRefreshCallback(func(t *oauth2.Token) {
		r.logger.Debug("access token refreshed", "expiry", t.Expiry)
		if err := r.saveTokens(t); err != nil {
			r.logger.Warn("failed to persist refreshed token", "error", err)
		}
	})
	if err := svc.OAuthenticate(ctx, token); err != nil {
		return nil, err
	}

	r.spotify = svc
	return svc, nil
}

// call runs fn against the service, reauthorizing once when the token has expired for good.
func (r *Runner) call(ctx context.Context, fn func(services.Service) error) error {
	svc, err := r.service(ctx)
	if err != nil {
		return err
	}

	err = fn(svc)
	if !errors.Is(err, shared.ErrTokenExpired) {
		return err
	}

	oauthSrv, ok := svc.(services.OAuthService)
	if !ok {
		return err
	}

	r.writePlainln("⚠ Authentication token expired. Starting reauthorization...")
	token, authErr := r.authorize(ctx, oauthSrv, "reauthorization")
	if authErr != nil {
		return fmt.Errorf("reauthorization failed: %w", authErr)
	}
	if err := r.saveTokens(token); err != nil {
		return err
	}
	if err := oauthSrv.OAuthenticate(ctx, token); err != nil {
		return fmt.Errorf("failed to authenticate with new tokens: %w", err)
	}

	r.writePlain("✓ Successfully reauthenticated. Retrying operation...\n\n")
	return fn(svc)
}

// saveTokens stores token in the config and writes it when a config path is known.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrMissingConfig)
	}
	if err := r.config.Spotify.UpdateToken(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// saveConfig writes the current settings to the config path.
func (r *Runner) saveConfig() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.configPath == "" {
		return fmt.Errorf("%w: no config path", shared.ErrMissingConfig)
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
