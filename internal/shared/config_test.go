package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./spt.db" {
			t.Errorf("expected database path ./spt.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8888 {
			t.Errorf("expected server port 8888, got %d", config.Server.Port)
		}

		if config.Spotify.RedirectURI != "http://127.0.0.1:8888/callback" {
			t.Errorf("unexpected redirect URI %s", config.Spotify.RedirectURI)
		}

		if !config.App.CheckUpdates {
			t.Error("expected update checks to be enabled by default")
		}

		if config.HasClient() || config.HasTokens() {
			t.Error("default config should have no client or tokens")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "nested", "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[app]
developer_mode = true

[spotify]
client_id = "test_client_id"
client_secret = "test_secret"

[spotify.token]
access_token = "access"
refresh_token = "refresh"
token_type = "Bearer"
expiry = 2030-01-02T03:04:05Z

[playback]
device_id = "device-1"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if !config.App.DeveloperMode {
			t.Error("expected developer mode")
		}
		if !config.App.CheckUpdates {
			t.Error("keys missing from the file should keep defaults")
		}
		if config.Server.Port != 8888 {
			t.Errorf("expected default port, got %d", config.Server.Port)
		}
		if !config.HasClient() || !config.HasTokens() {
			t.Error("expected client and tokens")
		}

		token := config.Spotify.OAuthToken()
		if token == nil || token.RefreshToken != "refresh" {
			t.Fatalf("unexpected token %+v", token)
		}
		if !token.Expiry.Equal(time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)) {
			t.Errorf("unexpected expiry %v", token.Expiry)
		}
	})

	t.Run("LoadConfig invalid toml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[app\nbroken"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadOrDefault missing file", func(t *testing.T) {
		config, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
		if err != nil {
			t.Fatalf("expected defaults, got %v", err)
		}
		if config.Database.Path != "./spt.db" {
			t.Errorf("expected default config")
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "dir", "config.toml")

		config := DefaultConfig()
		config.Spotify.ClientID = "id"
		config.Spotify.ClientSecret = "secret"
		config.Playback.DeviceID = "dev"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		info, err := os.Stat(configPath)
		if err != nil {
			t.Fatalf("config file should exist: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Spotify.ClientID != "id" || loaded.Playback.DeviceID != "dev" {
			t.Errorf("values did not survive the round trip: %+v", loaded.Spotify)
		}
	})

	t.Run("SaveConfig nil", func(t *testing.T) {
		if err := SaveConfig(filepath.Join(t.TempDir(), "c.toml"), nil); err == nil {
			t.Error("expected error for nil config")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "env_id")
		t.Setenv("SPOTIFY_CLIENT_SECRET", "env_secret")

		config := DefaultConfig()
		ApplyEnv(config)

		if config.Spotify.ClientID != "env_id" || config.Spotify.ClientSecret != "env_secret" {
			t.Errorf("expected env overrides, got %+v", config.Spotify)
		}
	})

	t.Run("LoadEnv", func(t *testing.T) {
		dir := t.TempDir()
		envPath := filepath.Join(dir, ".env")
		if err := os.WriteFile(envPath, []byte("SPT_TEST_ENV_VALUE=loaded\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("SPT_TEST_ENV_VALUE") })

		if err := LoadEnv(envPath, filepath.Join(dir, "missing.env")); err != nil {
			t.Fatalf("expected missing files to be ignored, got %v", err)
		}
		if os.Getenv("SPT_TEST_ENV_VALUE") != "loaded" {
			t.Error("expected .env value in environment")
		}
	})
}

func TestSettingsMutations(t *testing.T) {
	newLoggedIn := func() *Config {
		c := DefaultConfig()
		c.Spotify.ClientID = "id"
		c.Spotify.ClientSecret = "secret"
		c.Spotify.Token = TokenConfig{AccessToken: "a", RefreshToken: "r"}
		c.Playback.DeviceID = "dev"
		return c
	}

	t.Run("RemoveTokens keeps client", func(t *testing.T) {
		c := newLoggedIn()
		c.RemoveTokens()

		if c.HasTokens() {
			t.Error("expected tokens to be removed")
		}
		if !c.HasClient() {
			t.Error("expected client registration to remain")
		}
		if c.Playback.DeviceID != "" {
			t.Error("expected device selection to be cleared")
		}
	})

	t.Run("RemoveClient keeps tokens", func(t *testing.T) {
		c := newLoggedIn()
		c.RemoveClient()

		if c.HasClient() {
			t.Error("expected client to be removed")
		}
		if !c.HasTokens() {
			t.Error("expected tokens to remain")
		}
	})

	t.Run("UpdateToken keeps previous refresh token", func(t *testing.T) {
		c := newLoggedIn()
		if err := c.Spotify.UpdateToken(&oauth2.Token{AccessToken: "new"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if c.Spotify.Token.AccessToken != "new" || c.Spotify.Token.RefreshToken != "r" {
			t.Errorf("unexpected token %+v", c.Spotify.Token)
		}
	})

	t.Run("UpdateToken rejects empty", func(t *testing.T) {
		c := newLoggedIn()
		if err := c.Spotify.UpdateToken(&oauth2.Token{}); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("OAuthToken nil when logged out", func(t *testing.T) {
		if DefaultConfig().Spotify.OAuthToken() != nil {
			t.Error("expected nil token")
		}
	})
}
