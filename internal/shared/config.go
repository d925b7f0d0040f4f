package shared

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application settings loaded from a TOML file.
//
// It holds the client registration, the user's tokens and UI preferences for the lifetime of the session.
type Config struct {
	App      AppConfig      `toml:"app"`
	Spotify  SpotifyConfig  `toml:"spotify"`
	Playback PlaybackConfig `toml:"playback"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
}

// AppConfig contains UI and logging preferences.
type AppConfig struct {
	CheckUpdates  bool   `toml:"check_updates"`
	DeveloperMode bool   `toml:"developer_mode"`
	LogLevel      string `toml:"log_level"`
	LogFile       string `toml:"log_file"`
}

// SpotifyConfig contains the Spotify application registration and the user's tokens.
type SpotifyConfig struct {
	ClientID          string      `toml:"client_id"`
	ClientSecret      string      `toml:"client_secret"`
	RedirectURI       string      `toml:"redirect_uri"`
	RequestsPerSecond float64     `toml:"requests_per_second"`
	Token             TokenConfig `toml:"token"`
}

// TokenConfig holds a persisted [oauth2.Token].
type TokenConfig struct {
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token"`
	TokenType    string    `toml:"token_type"`
	Expiry       time.Time `toml:"expiry"`
}

// PlaybackConfig remembers the last selected device.
type PlaybackConfig struct {
	DeviceID string `toml:"device_id"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the local OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Map returns the credentials in the shape expected by services.NewSpotifyService.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// OAuthToken converts the persisted token into an [oauth2.Token], nil when no token is stored.
func (s SpotifyConfig) OAuthToken() *oauth2.Token {
	if s.Token.AccessToken == "" && s.Token.RefreshToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.Token.AccessToken,
		RefreshToken: s.Token.RefreshToken,
		TokenType:    s.Token.TokenType,
		Expiry:       s.Token.Expiry,
	}
}

// UpdateToken stores token, keeping the previous refresh token when the new one omits it.
func (s *SpotifyConfig) UpdateToken(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidArgument)
	}

	refresh := token.RefreshToken
	if refresh == "" {
		refresh = s.Token.RefreshToken
	}

	s.Token = TokenConfig{
		AccessToken:  token.AccessToken,
		RefreshToken: refresh,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}
	return nil
}

// HasClient reports whether an application registration is configured.
func (c *Config) HasClient() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// HasTokens reports whether the user is logged in.
func (c *Config) HasTokens() bool {
	return c.Spotify.Token.AccessToken != "" || c.Spotify.Token.RefreshToken != ""
}

// RemoveClient clears the application registration (client id and secret).
func (c *Config) RemoveClient() {
	c.Spotify.ClientID = ""
	c.Spotify.ClientSecret = ""
}

// RemoveTokens clears the user's login, keeping the client registration.
func (c *Config) RemoveTokens() {
	c.Spotify.Token = TokenConfig{}
	c.Playback.DeviceID = ""
}

// DefaultConfigPath returns $SPT_CONFIG, or config.toml under the user config directory.
func DefaultConfigPath() string {
	if p := os.Getenv("SPT_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "spt", "config.toml")
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their defaults and environment overrides are applied last.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	ApplyEnv(config)
	return config, nil
}

// LoadOrDefault loads the config at path, falling back to defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if err == nil {
		return config, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		config = DefaultConfig()
		ApplyEnv(config)
		return config, nil
	}
	return nil, err
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// LoadEnv loads .env files into the process environment. Missing files are ignored.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides client registration values with SPOTIFY_* environment variables.
func ApplyEnv(c *Config) {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URI"); v != "" {
		c.Spotify.RedirectURI = v
	}
}

// SaveConfig writes config to path with owner-only permissions, creating parent directories.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
