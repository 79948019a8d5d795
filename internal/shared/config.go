package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Plex     PlexConfig     `toml:"plex"`
	Sync     SyncConfig     `toml:"sync"`
	Sources  SourcesConfig  `toml:"sources"`
	Database DatabaseConfig `toml:"database"`
}

// PlexConfig contains connection settings for the Plex server.
type PlexConfig struct {
	URL            string `toml:"url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	BackoffSeconds int    `toml:"backoff_seconds"`
	// MaxConnectAttempts bounds the connection acquire loop. 0 retries
	// forever, which matches the sidecar deployment the tool was built for
	// but can stall a sync pass indefinitely if the server never comes up.
	MaxConnectAttempts int     `toml:"max_connect_attempts"`
	SearchesPerSecond  float64 `toml:"searches_per_second"`
}

// SyncConfig contains the per-run reconciliation policy.
type SyncConfig struct {
	AppendInsteadOfSync    bool   `toml:"append_instead_of_sync"`
	WriteMissingAsCSV      bool   `toml:"write_missing_as_csv"`
	AddPlaylistDescription bool   `toml:"add_playlist_description"`
	AddPlaylistPoster      bool   `toml:"add_playlist_poster"`
	DataDir                string `toml:"data_dir"`
	IntervalSeconds        int    `toml:"interval_seconds"`
}

// SourcesConfig contains source-service credentials and selections.
type SourcesConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Deezer  DeezerConfig  `toml:"deezer"`
}

// SpotifyConfig contains Spotify API credentials and persisted OAuth tokens.
type SpotifyConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	UserID       string    `toml:"user_id"`
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token"`
	TokenExpiry  time.Time `toml:"token_expiry"`
}

// Update stores the OAuth token fields for persistence via [SaveConfig].
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty oauth token", ErrInvalidInput)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	s.TokenExpiry = token.Expiry
	return nil
}

// Token reconstructs the persisted OAuth token, or nil when absent.
func (s *SpotifyConfig) Token() *oauth2.Token {
	if s.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		Expiry:       s.TokenExpiry,
	}
}

// DeezerConfig selects public Deezer playlists to sync.
type DeezerConfig struct {
	PlaylistIDs []string `toml:"playlist_ids"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified
// path, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.ApplyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the
// embedded example config, with environment overrides applied.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.ApplyEnv()
	return &config
}

// ApplyEnv overrides config values from environment variables. The container
// deployment configures everything through the environment, so env wins over
// the file.
func (c *Config) ApplyEnv() {
	setString(&c.Plex.URL, "PLEX_URL")
	setString(&c.Plex.Token, "PLEX_TOKEN")
	setString(&c.Sync.DataDir, "SYNC_DATA_DIR")
	setString(&c.Sources.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	setString(&c.Sources.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")
	setString(&c.Sources.Spotify.UserID, "SPOTIFY_USER_ID")
	setBool(&c.Sync.AppendInsteadOfSync, "APPEND_INSTEAD_OF_SYNC")
	setBool(&c.Sync.WriteMissingAsCSV, "WRITE_MISSING_AS_CSV")
	setBool(&c.Sync.AddPlaylistDescription, "ADD_PLAYLIST_DESCRIPTION")
	setBool(&c.Sync.AddPlaylistPoster, "ADD_PLAYLIST_POSTER")
	setInt(&c.Sync.IntervalSeconds, "SECONDS_TO_WAIT")

	if ids := os.Getenv("DEEZER_PLAYLIST_IDS"); ids != "" {
		c.Sources.Deezer.PlaylistIDs = strings.Fields(ids)
	}
}

// Validate checks the parts of the config the sync engine cannot run without.
func (c *Config) Validate() error {
	if c.Plex.URL == "" {
		return fmt.Errorf("%w: plex.url is required", ErrInvalidConfig)
	}
	if c.Plex.Token == "" {
		return fmt.Errorf("%w: plex.token is required", ErrInvalidConfig)
	}
	return nil
}

// SaveConfig writes the configuration back to a TOML file, preserving tokens
// stored by the auth flow.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
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

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
