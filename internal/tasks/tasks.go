// package tasks implements playlist reconciliation against the Plex library.
//
// The core abstraction is SyncEngine, which resolves source tracks, applies
// the update policy to the remote playlist, and keeps the missing-tracks
// record current. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/Llewe/plex-playlist-sync/internal/models"
	"github.com/Llewe/plex-playlist-sync/internal/plex"
	"github.com/Llewe/plex-playlist-sync/internal/services"
	"github.com/Llewe/plex-playlist-sync/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// PlaylistHandle is a remote playlist the engine can mutate.
type PlaylistHandle interface {
	Items(ctx context.Context) ([]plex.Track, error)
	AddItems(ctx context.Context, items []plex.Track) error
	RemoveItems(ctx context.Context, items []plex.Track) error
	Edit(ctx context.Context, summary string) error
	UploadPoster(ctx context.Context, url string) error
}

// Catalog is the Plex capability the engine consumes.
type Catalog interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]plex.Track, error)
	PlaylistByName(ctx context.Context, name string) (PlaylistHandle, error)
	CreatePlaylist(ctx context.Context, title string, items []plex.Track) (PlaylistHandle, error)
}

// TrackResolver resolves one source track descriptor against the library.
type TrackResolver interface {
	Resolve(ctx context.Context, track models.Track) (*plex.Track, error)
}

// MissingSink persists and clears per-playlist missing-track records.
type MissingSink interface {
	Write(name string, tracks []models.Track) error
	Delete(name string) error
}

// RunRecorder persists sync run history. Optional; recording failures never
// fail a reconciliation.
type RunRecorder interface {
	Record(playlist string, resolved, missing int, state string) error
}

// ReconcileResult contains the outcome of reconciling one playlist.
type ReconcileResult struct {
	Playlist string         // Source playlist name
	Resolved []plex.Track   // Library tracks that will be in the playlist
	Missing  []models.Track // Source tracks not found in the library
	State    string         // models.RunStateUpdated, Created or Skipped
}

// SyncEngine defines reconciliation operations against the Plex library.
type SyncEngine interface {
	// Reconcile resolves every track of the export and applies the policy
	// to the remote playlist. The returned error is non-nil only when the
	// context is canceled; every remote failure degrades to a logged skip.
	Reconcile(ctx context.Context, progress chan<- ProgressUpdate, export *models.PlaylistExport, policy shared.SyncConfig) (*ReconcileResult, error)

	// Run reconciles every playlist of the given source service.
	Run(ctx context.Context, progress chan<- ProgressUpdate, svc services.Service, policy shared.SyncConfig) ([]*ReconcileResult, error)
}

// Reconciler implements SyncEngine.
type Reconciler struct {
	catalog  Catalog
	resolver TrackResolver
	missing  MissingSink
	history  RunRecorder
	limiter  *rate.Limiter
	logger   *log.Logger
}

// ReconcilerOpts contains the dependencies for creating a Reconciler.
type ReconcilerOpts struct {
	Catalog  Catalog
	Resolver TrackResolver
	Missing  MissingSink
	History  RunRecorder // may be nil
	// SearchesPerSecond paces catalog searches. <= 0 disables pacing.
	SearchesPerSecond float64
	Logger            *log.Logger
}

// NewReconciler creates a Reconciler with the provided dependencies.
func NewReconciler(opts ReconcilerOpts) *Reconciler {
	var limiter *rate.Limiter
	if opts.SearchesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.SearchesPerSecond), 1)
	}
	return &Reconciler{
		catalog:  opts.Catalog,
		resolver: opts.Resolver,
		missing:  opts.Missing,
		history:  opts.History,
		limiter:  limiter,
		logger:   opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Reconciler) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Reconcile resolves every track of the export sequentially and applies the
// policy to the remote playlist named after the source playlist.
//
// Every source track ends up in exactly one of Resolved or Missing.
func (e *Reconciler) Reconcile(ctx context.Context, progress chan<- ProgressUpdate, export *models.PlaylistExport, policy shared.SyncConfig) (*ReconcileResult, error) {
	if e.catalog == nil || e.resolver == nil {
		return nil, fmt.Errorf("%w: reconciler not initialized", shared.ErrServiceUnavailable)
	}

	name := export.Playlist.Name
	total := len(export.Tracks)
	result := &ReconcileResult{Playlist: name, State: models.RunStateSkipped}

	e.sendProgress(progress, resolveTrackUpdate(0, total, nil))

	for i, track := range export.Tracks {
		e.sendProgress(progress, resolveTrackUpdate(i+1, total, &track))

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		found, err := e.resolver.Resolve(ctx, track)
		switch {
		case err == nil:
			result.Resolved = append(result.Resolved, *found)
		case errors.Is(err, shared.ErrTrackNotFound):
			result.Missing = append(result.Missing, track)
		default:
			// Only context cancellation reaches here; connectivity
			// failures are absorbed below this layer.
			return nil, err
		}
	}

	if len(result.Resolved) > 0 {
		result.State = e.applyPlaylist(ctx, progress, export, result.Resolved, policy)
	} else {
		e.logger.Info("no tracks found on plex, skipping playlist", "playlist", name)
		e.sendProgress(progress, skipPlaylistUpdate(name))
	}

	if policy.WriteMissingAsCSV {
		e.reconcileMissingRecord(progress, name, result.Missing)
	}

	e.recordRun(result)
	return result, nil
}

// applyPlaylist updates or creates the remote playlist and applies optional
// metadata. Returns the resulting run state.
func (e *Reconciler) applyPlaylist(ctx context.Context, progress chan<- ProgressUpdate, export *models.PlaylistExport, resolved []plex.Track, policy shared.SyncConfig) string {
	name := export.Playlist.Name

	handle, err := e.catalog.PlaylistByName(ctx, name)
	state := models.RunStateUpdated

	switch {
	case err == nil:
		e.sendProgress(progress, updatePlaylistUpdate(name, len(resolved)))
		if !policy.AppendInsteadOfSync {
			if err := e.clearPlaylist(ctx, handle); err != nil {
				e.logger.Error("failed to clear playlist", "playlist", name, "error", err)
				return models.RunStateSkipped
			}
		}
		if err := handle.AddItems(ctx, resolved); err != nil {
			e.logger.Error("failed to add tracks to playlist", "playlist", name, "error", err)
			return models.RunStateSkipped
		}
		e.logger.Info("updated playlist", "playlist", name, "tracks", len(resolved))

	case errors.Is(err, shared.ErrPlaylistNotFound):
		e.sendProgress(progress, createPlaylistUpdate(name, len(resolved)))
		handle, err = e.catalog.CreatePlaylist(ctx, name, resolved)
		if err != nil {
			e.logger.Error("failed to create playlist", "playlist", name, "error", err)
			return models.RunStateSkipped
		}
		state = models.RunStateCreated
		e.logger.Info("created playlist", "playlist", name, "tracks", len(resolved))

	default:
		e.logger.Error("failed to look up playlist", "playlist", name, "error", err)
		return models.RunStateSkipped
	}

	e.applyMetadata(ctx, progress, handle, export.Playlist, policy)
	return state
}

// clearPlaylist removes every current item so the add that follows replaces
// the playlist contents.
func (e *Reconciler) clearPlaylist(ctx context.Context, handle PlaylistHandle) error {
	items, err := handle.Items(ctx)
	if err != nil {
		return err
	}
	return handle.RemoveItems(ctx, items)
}

// applyMetadata sets the playlist description and poster when the policy
// asks for them. Failures here are logged and non-fatal: the playlist
// content update already succeeded.
func (e *Reconciler) applyMetadata(ctx context.Context, progress chan<- ProgressUpdate, handle PlaylistHandle, playlist models.Playlist, policy shared.SyncConfig) {
	wantDescription := policy.AddPlaylistDescription && playlist.Description != ""
	wantPoster := policy.AddPlaylistPoster && playlist.Poster != ""
	if !wantDescription && !wantPoster {
		return
	}

	e.sendProgress(progress, applyMetadataUpdate(playlist.Name))

	if wantDescription {
		if err := handle.Edit(ctx, playlist.Description); err != nil {
			e.logger.Warn("failed to update playlist description", "playlist", playlist.Name, "error", err)
		}
	}
	if wantPoster {
		if err := handle.UploadPoster(ctx, playlist.Poster); err != nil {
			e.logger.Warn("failed to update playlist poster", "playlist", playlist.Name, "error", err)
		}
	}
}

// reconcileMissingRecord writes the missing-tracks record, or deletes a
// stale one from a prior run once everything resolves.
func (e *Reconciler) reconcileMissingRecord(progress chan<- ProgressUpdate, name string, missing []models.Track) {
	e.sendProgress(progress, missingRecordUpdate(name, len(missing)))

	if len(missing) > 0 {
		if err := e.missing.Write(name, missing); err != nil {
			e.logger.Warn("failed to write missing tracks record", "playlist", name, "error", err)
		} else {
			e.logger.Info("missing tracks recorded", "playlist", name, "count", len(missing))
		}
		return
	}

	if err := e.missing.Delete(name); err != nil {
		e.logger.Warn("failed to delete missing tracks record", "playlist", name, "error", err)
	}
}

// recordRun persists the run outcome for the history command.
func (e *Reconciler) recordRun(result *ReconcileResult) {
	if e.history == nil {
		return
	}
	if err := e.history.Record(result.Playlist, len(result.Resolved), len(result.Missing), result.State); err != nil {
		e.logger.Warn("failed to record sync run", "playlist", result.Playlist, "error", err)
	}
}

// Run reconciles every playlist the source service exposes, sequentially.
func (e *Reconciler) Run(ctx context.Context, progress chan<- ProgressUpdate, svc services.Service, policy shared.SyncConfig) ([]*ReconcileResult, error) {
	if svc == nil {
		return nil, fmt.Errorf("%w: source service not initialized", shared.ErrServiceUnavailable)
	}

	playlists, err := svc.GetPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list playlists: %v", shared.ErrAPIRequest, err)
	}

	results := make([]*ReconcileResult, 0, len(playlists))
	for i, playlist := range playlists {
		e.sendProgress(progress, fetchSourceUpdate(i+1, len(playlists), playlist.Name))

		export, err := svc.ExportPlaylist(ctx, playlist.ID)
		if err != nil {
			e.logger.Error("failed to export source playlist", "playlist", playlist.Name, "error", err)
			continue
		}

		result, err := e.Reconcile(ctx, progress, export, policy)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	return results, nil
}

// ConnCatalog adapts [plex.Conn] to the [Catalog] interface.
type ConnCatalog struct {
	Conn *plex.Conn
}

func (c ConnCatalog) SearchTracks(ctx context.Context, query string, limit int) ([]plex.Track, error) {
	return c.Conn.SearchTracks(ctx, query, limit)
}

func (c ConnCatalog) PlaylistByName(ctx context.Context, name string) (PlaylistHandle, error) {
	pl, err := c.Conn.PlaylistByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return pl, nil
}

func (c ConnCatalog) CreatePlaylist(ctx context.Context, title string, items []plex.Track) (PlaylistHandle, error) {
	pl, err := c.Conn.CreatePlaylist(ctx, title, items)
	if err != nil {
		return nil, err
	}
	return pl, nil
}
