package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/Llewe/plex-playlist-sync/internal/models"
	"github.com/Llewe/plex-playlist-sync/internal/services"
	"github.com/Llewe/plex-playlist-sync/internal/shared"
	"github.com/Llewe/plex-playlist-sync/internal/tasks"
	mocks "github.com/Llewe/plex-playlist-sync/internal/testing"
	"github.com/charmbracelet/log"
)

// fakeEngine emits a fixed stream of progress updates before returning.
type fakeEngine struct {
	updates []tasks.ProgressUpdate
	results []*tasks.ReconcileResult
	err     error
}

func (e *fakeEngine) Reconcile(ctx context.Context, progress chan<- tasks.ProgressUpdate, export *models.PlaylistExport, policy shared.SyncConfig) (*tasks.ReconcileResult, error) {
	return nil, e.err
}

func (e *fakeEngine) Run(ctx context.Context, progress chan<- tasks.ProgressUpdate, svc services.Service, policy shared.SyncConfig) ([]*tasks.ReconcileResult, error) {
	for _, update := range e.updates {
		progress <- update
	}
	return e.results, e.err
}

func TestSyncPass(t *testing.T) {
	t.Run("Drains Progress Before Summary", func(t *testing.T) {
		engine := &fakeEngine{
			results: []*tasks.ReconcileResult{
				{Playlist: "Mix", State: models.RunStateUpdated},
			},
		}
		for i := 1; i <= 40; i++ {
			engine.updates = append(engine.updates, tasks.ProgressUpdate{
				Phase:   tasks.UpdatePlaylist,
				Message: fmt.Sprintf("playlist %d", i),
			})
		}

		var buf bytes.Buffer
		runner := NewRunner(RunnerOpts{
			Config:  &shared.Config{},
			Spotify: &mocks.MockService{},
			Output:  &buf,
			Logger:  log.New(io.Discard),
		})

		if err := runner.syncPass(context.Background(), engine, []string{"spotify"}, shared.SyncConfig{}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := buf.String()
		summary := strings.Index(out, "Sync Complete!")
		if summary < 0 {
			t.Fatalf("expected summary in output, got %q", out)
		}
		for i := 1; i <= 40; i++ {
			line := fmt.Sprintf("playlist %d\n", i)
			pos := strings.Index(out, line)
			if pos < 0 {
				t.Fatalf("expected progress line %q in output", line)
			}
			if pos > summary {
				t.Errorf("progress line %q written after the summary", line)
			}
		}
		if !strings.Contains(out, "Mix") {
			t.Errorf("expected result summary for Mix, got %q", out)
		}
	})

	t.Run("Skips Unknown Sources", func(t *testing.T) {
		var buf bytes.Buffer
		runner := NewRunner(RunnerOpts{
			Config: &shared.Config{},
			Output: &buf,
			Logger: log.New(io.Discard),
		})

		engine := &fakeEngine{}
		if err := runner.syncPass(context.Background(), engine, []string{"tidal"}, shared.SyncConfig{}); err != nil {
			t.Fatalf("expected unknown source to be skipped, got %v", err)
		}
		if !strings.Contains(buf.String(), "Sync Complete!") {
			t.Errorf("expected summary even without sources, got %q", buf.String())
		}
	})
}
