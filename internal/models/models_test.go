package models

import (
	"testing"
	"time"
)

func TestSyncRunValidate(t *testing.T) {
	t.Run("Valid States", func(t *testing.T) {
		for _, state := range []string{RunStateUpdated, RunStateCreated, RunStateSkipped} {
			run := NewSyncRun(1, "Mix", 10, 2, state)
			if err := run.Validate(); err != nil {
				t.Errorf("state %s: expected valid, got %v", state, err)
			}
		}
	})

	t.Run("Missing Playlist Name", func(t *testing.T) {
		run := NewSyncRun(1, "", 10, 2, RunStateUpdated)
		if err := run.Validate(); err == nil {
			t.Error("expected error for empty playlist")
		}
	})

	t.Run("Unknown State", func(t *testing.T) {
		run := NewSyncRun(1, "Mix", 10, 2, "vanished")
		if err := run.Validate(); err == nil {
			t.Error("expected error for unknown state")
		}
	})

	t.Run("Negative Counts", func(t *testing.T) {
		run := NewSyncRun(1, "Mix", -1, 0, RunStateUpdated)
		if err := run.Validate(); err == nil {
			t.Error("expected error for negative resolved count")
		}
	})
}

func TestNewSyncRun(t *testing.T) {
	before := time.Now()
	run := NewSyncRun(7, "Mix", 10, 2, RunStateCreated)

	if run.Sequence() != 7 || run.Playlist() != "Mix" || run.Resolved() != 10 || run.Missing() != 2 {
		t.Errorf("unexpected run %d %s %d/%d", run.Sequence(), run.Playlist(), run.Resolved(), run.Missing())
	}
	if run.ID() != "" {
		t.Errorf("id is assigned by the repository, got %q", run.ID())
	}
	if run.CreatedAt().Before(before) || !run.CreatedAt().Equal(run.UpdatedAt()) {
		t.Errorf("unexpected timestamps %v %v", run.CreatedAt(), run.UpdatedAt())
	}
	if run.DeletedAt() != nil {
		t.Error("new run must not be deleted")
	}
}
