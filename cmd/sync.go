package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Llewe/plex-playlist-sync/internal/formatter"
	"github.com/Llewe/plex-playlist-sync/internal/repositories"
	"github.com/Llewe/plex-playlist-sync/internal/shared"
	"github.com/Llewe/plex-playlist-sync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Playlists lists the playlists a source service exposes.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")

	svc, err := r.source(cmd.String("source"))
	if err != nil {
		return err
	}

	r.logger.Infof("listing %v playlists", svc.Name())

	playlists, err := svc.GetPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			r.writePlain("   Description: %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n\n", p.TrackCount)
	}

	return nil
}

// Sync reconciles every configured source playlist against the Plex library.
//
// With --interval > 0 the sync repeats until the context is canceled,
// mirroring the long-running container deployment.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	sources := cmd.StringSlice("source")

	policy := r.config.Sync
	if cmd.Bool("append") {
		policy.AppendInsteadOfSync = true
	}

	interval := policy.IntervalSeconds
	if cmd.IsSet("interval") {
		interval = cmd.Int("interval")
	}

	r.writePlain("Connecting to Plex at %s...\n", r.config.Plex.URL)

	conn, err := r.dialPlex(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to plex: %w", err)
	}

	engine, err := r.buildEngine(conn)
	if err != nil {
		return err
	}

	for {
		if err := r.syncPass(ctx, engine, sources, policy); err != nil {
			return err
		}

		if interval <= 0 {
			return nil
		}

		r.logger.Info("sync pass complete, waiting", "seconds", interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(interval) * time.Second):
		}
	}
}

// syncPass runs one reconciliation pass over all requested sources.
func (r *Runner) syncPass(ctx context.Context, engine tasks.SyncEngine, sources []string, policy shared.SyncConfig) error {
	var results []*tasks.ReconcileResult

	for _, name := range sources {
		svc, err := r.source(name)
		if err != nil {
			r.logger.Warn("skipping source", "source", name, "error", err)
			continue
		}

		r.writePlain("\nSyncing %s playlists...\n", svc.Name())

		progressCh := make(chan tasks.ProgressUpdate, 50)
		drained := make(chan struct{})
		go func() {
			defer close(drained)
			for update := range progressCh {
				switch update.Phase {
				case tasks.FetchSource:
					r.writePlain("📥 %s\n", update.Message)
				case tasks.ResolveTracks:
					if update.Step > 0 {
						r.writePlain("   %s\n", update.Message)
					}
				case tasks.UpdatePlaylist, tasks.CreatePlaylistPhase, tasks.SkipPlaylist:
					r.writePlain("\n📝 %s\n", update.Message)
				}
			}
		}()

		sourceResults, err := engine.Run(ctx, progressCh, svc, policy)
		close(progressCh)
		<-drained
		results = append(results, sourceResults...)

		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			r.logger.Error("source sync failed", "source", name, "error", err)
		}
	}

	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("Sync Complete!\n")
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%s", formatter.FormatResults(results))

	return nil
}

// History shows recorded sync runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := repositories.NewSyncRunRepository(db)

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if playlist := cmd.String("playlist"); playlist != "" {
		criteria["playlist"] = playlist
	}

	runs, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list sync runs: %w", err)
	}

	if len(runs) == 0 {
		r.writePlain("No sync runs recorded yet. Run 'setup database' first, then 'sync'.\n")
		return nil
	}

	r.writePlain("Recorded sync runs:\n\n")
	for _, run := range runs {
		r.writePlain("%s  %-30s %-8s found=%d missing=%d\n",
			run.CreatedAt().Format(time.RFC3339),
			run.Playlist(),
			run.State(),
			run.Resolved(),
			run.Missing(),
		)
	}

	return nil
}
