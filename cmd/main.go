package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Llewe/plex-playlist-sync/internal/services"
	"github.com/Llewe/plex-playlist-sync/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var spotifyService services.Service
	if config.Sources.Spotify.ClientID != "" && config.Sources.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Sources.Spotify); err == nil {
			if token := config.Sources.Spotify.Token(); token != nil {
				if err := svc.AuthenticateToken(ctx, token); err != nil {
					logger.Warn("stored spotify token rejected, run 'auth spotify'", "error", err)
				}
			}
			spotifyService = svc
		}
	}

	var deezerService services.Service
	if len(config.Sources.Deezer.PlaylistIDs) > 0 {
		deezerService = services.NewDeezerService(config.Sources.Deezer)
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Spotify: spotifyService,
		Deezer:  deezerService,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "plex-playlist-sync",
		Usage:    "Mirror Spotify & Deezer playlists into a Plex music library",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
