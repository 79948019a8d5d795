package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Llewe/plex-playlist-sync/internal/formatter"
	"github.com/Llewe/plex-playlist-sync/internal/match"
	"github.com/Llewe/plex-playlist-sync/internal/plex"
	"github.com/Llewe/plex-playlist-sync/internal/repositories"
	"github.com/Llewe/plex-playlist-sync/internal/services"
	"github.com/Llewe/plex-playlist-sync/internal/shared"
	"github.com/Llewe/plex-playlist-sync/internal/tasks"
	"github.com/charmbracelet/log"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	spotify services.Service
	deezer  services.Service
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Spotify services.Service
	Deezer  services.Service
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:  opts.Config,
		spotify: opts.Spotify,
		deezer:  opts.Deezer,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

// SetLogger swaps the logger, for commands that need logs off the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// source returns the configured service for a source name.
func (r *Runner) source(name string) (services.Service, error) {
	switch name {
	case "spotify":
		if r.spotify == nil {
			return nil, fmt.Errorf("%w: Spotify service not initialized, check credentials", shared.ErrServiceUnavailable)
		}
		return r.spotify, nil
	case "deezer":
		if r.deezer == nil {
			return nil, fmt.Errorf("%w: Deezer service not initialized", shared.ErrServiceUnavailable)
		}
		return r.deezer, nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q (expected spotify or deezer)", shared.ErrInvalidArgument, name)
	}
}

// dialPlex blocks until the Plex server accepts a connection, honoring the
// configured timeout, backoff and attempt bound.
func (r *Runner) dialPlex(ctx context.Context) (*plex.Conn, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	return plex.Dial(ctx, plex.ConnOptions{
		URL:         r.config.Plex.URL,
		Token:       r.config.Plex.Token,
		Timeout:     time.Duration(r.config.Plex.TimeoutSeconds) * time.Second,
		Backoff:     time.Duration(r.config.Plex.BackoffSeconds) * time.Second,
		MaxAttempts: r.config.Plex.MaxConnectAttempts,
	}, r.logger)
}

// buildEngine assembles the sync engine around a live Plex connection.
func (r *Runner) buildEngine(conn *plex.Conn) (*tasks.Reconciler, error) {
	missing, err := formatter.NewCSVSink(r.config.Sync.DataDir)
	if err != nil {
		return nil, err
	}

	var history tasks.RunRecorder
	if db, err := shared.NewDatabase(r.config.Database.Path); err != nil {
		r.logger.Warn("run history disabled", "error", err)
	} else {
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		history = repositories.NewSyncRunRepository(db)
	}

	catalog := tasks.ConnCatalog{Conn: conn}
	resolver := match.NewResolver(catalog, r.logger)

	return tasks.NewReconciler(tasks.ReconcilerOpts{
		Catalog:           catalog,
		Resolver:          resolver,
		Missing:           missing,
		History:           history,
		SearchesPerSecond: r.config.Plex.SearchesPerSecond,
		Logger:            r.logger,
	}), nil
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
