package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("Parses TOML", func(t *testing.T) {
		path := writeConfig(t, `
[plex]
url = "http://plex.local:32400"
token = "secret"
timeout_seconds = 30
searches_per_second = 2.5

[sync]
append_instead_of_sync = true
write_missing_as_csv = true
data_dir = "/data"

[sources.spotify]
client_id = "cid"
client_secret = "csec"

[sources.deezer]
playlist_ids = ["123", "456"]

[database]
path = "/data/sync.db"
`)

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected config, got %v", err)
		}
		if config.Plex.URL != "http://plex.local:32400" || config.Plex.Token != "secret" {
			t.Errorf("unexpected plex config %+v", config.Plex)
		}
		if config.Plex.SearchesPerSecond != 2.5 {
			t.Errorf("unexpected rate %v", config.Plex.SearchesPerSecond)
		}
		if !config.Sync.AppendInsteadOfSync || !config.Sync.WriteMissingAsCSV {
			t.Errorf("unexpected sync policy %+v", config.Sync)
		}
		if len(config.Sources.Deezer.PlaylistIDs) != 2 {
			t.Errorf("unexpected deezer ids %v", config.Sources.Deezer.PlaylistIDs)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("Malformed TOML", func(t *testing.T) {
		path := writeConfig(t, "[plex\nurl = broken")
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("Environment Overrides File", func(t *testing.T) {
		path := writeConfig(t, `
[plex]
url = "http://from-file:32400"
token = "file-token"
`)
		t.Setenv("PLEX_URL", "http://from-env:32400")
		t.Setenv("APPEND_INSTEAD_OF_SYNC", "true")
		t.Setenv("SECONDS_TO_WAIT", "3600")
		t.Setenv("DEEZER_PLAYLIST_IDS", "111 222 333")

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected config, got %v", err)
		}
		if config.Plex.URL != "http://from-env:32400" {
			t.Errorf("expected env override, got %s", config.Plex.URL)
		}
		if config.Plex.Token != "file-token" {
			t.Errorf("unset env must not clobber file value, got %s", config.Plex.Token)
		}
		if !config.Sync.AppendInsteadOfSync {
			t.Error("expected bool env override")
		}
		if config.Sync.IntervalSeconds != 3600 {
			t.Errorf("expected interval 3600, got %d", config.Sync.IntervalSeconds)
		}
		if len(config.Sources.Deezer.PlaylistIDs) != 3 {
			t.Errorf("expected 3 deezer ids, got %v", config.Sources.Deezer.PlaylistIDs)
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("PLEX_TOKEN", "")

	config := DefaultConfig()
	if config == nil {
		t.Fatal("expected default config")
	}
	// The embedded example ships placeholders, never live credentials.
	if config.Plex.Token != "" {
		t.Errorf("default config must not carry a token, got %q", config.Plex.Token)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("Complete", func(t *testing.T) {
		config := &Config{Plex: PlexConfig{URL: "http://plex:32400", Token: "tok"}}
		if err := config.Validate(); err != nil {
			t.Errorf("expected valid, got %v", err)
		}
	})

	t.Run("Missing URL", func(t *testing.T) {
		config := &Config{Plex: PlexConfig{Token: "tok"}}
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Missing Token", func(t *testing.T) {
		config := &Config{Plex: PlexConfig{URL: "http://plex:32400"}}
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestSaveConfig(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		original := &Config{
			Plex: PlexConfig{URL: "http://plex:32400", Token: "tok", TimeoutSeconds: 90},
			Sync: SyncConfig{WriteMissingAsCSV: true, DataDir: "/data"},
		}
		original.Sources.Spotify.AccessToken = "at"
		original.Sources.Spotify.RefreshToken = "rt"

		if err := SaveConfig(path, original); err != nil {
			t.Fatalf("expected save to succeed, got %v", err)
		}

		loaded, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected reload, got %v", err)
		}
		if loaded.Plex.URL != original.Plex.URL || loaded.Plex.TimeoutSeconds != 90 {
			t.Errorf("unexpected plex config %+v", loaded.Plex)
		}
		if loaded.Sources.Spotify.AccessToken != "at" || loaded.Sources.Spotify.RefreshToken != "rt" {
			t.Errorf("tokens not preserved: %+v", loaded.Sources.Spotify)
		}
	})

	t.Run("Restrictive Permissions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := SaveConfig(path, &Config{}); err != nil {
			t.Fatalf("expected save to succeed, got %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("config with tokens must be 0600, got %o", perm)
		}
	})
}

func TestCreateConfigFile(t *testing.T) {
	t.Run("Creates From Example", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected create to succeed, got %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if !strings.Contains(string(data), "[plex]") {
			t.Errorf("expected example content, got %q", string(data))
		}
	})

	t.Run("Refuses To Overwrite", func(t *testing.T) {
		path := writeConfig(t, "# existing")
		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error for existing file")
		}
	})
}

func TestSpotifyTokenPersistence(t *testing.T) {
	t.Run("Update Stores Token Fields", func(t *testing.T) {
		var cfg SpotifyConfig
		expiry := time.Now().Add(time.Hour).Truncate(time.Second)
		err := cfg.Update(&oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: expiry})
		if err != nil {
			t.Fatalf("expected update to succeed, got %v", err)
		}
		if cfg.AccessToken != "at" || cfg.RefreshToken != "rt" || !cfg.TokenExpiry.Equal(expiry) {
			t.Errorf("unexpected stored token %+v", cfg)
		}
	})

	t.Run("Update Keeps Refresh Token When Absent", func(t *testing.T) {
		cfg := SpotifyConfig{RefreshToken: "old-rt"}
		if err := cfg.Update(&oauth2.Token{AccessToken: "at"}); err != nil {
			t.Fatalf("expected update to succeed, got %v", err)
		}
		if cfg.RefreshToken != "old-rt" {
			t.Errorf("refresh token must survive refresh-less exchanges, got %q", cfg.RefreshToken)
		}
	})

	t.Run("Update Rejects Empty Token", func(t *testing.T) {
		var cfg SpotifyConfig
		if err := cfg.Update(nil); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for nil, got %v", err)
		}
		if err := cfg.Update(&oauth2.Token{}); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty, got %v", err)
		}
	})

	t.Run("Token Reconstructs Persisted Token", func(t *testing.T) {
		cfg := SpotifyConfig{AccessToken: "at", RefreshToken: "rt"}
		token := cfg.Token()
		if token == nil || token.AccessToken != "at" || token.RefreshToken != "rt" {
			t.Errorf("unexpected token %+v", token)
		}
	})

	t.Run("Token Is Nil When Absent", func(t *testing.T) {
		var cfg SpotifyConfig
		if token := cfg.Token(); token != nil {
			t.Errorf("expected nil token, got %+v", token)
		}
	})
}
