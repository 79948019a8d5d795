package tasks

import (
	"fmt"

	"github.com/Llewe/plex-playlist-sync/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	ResolveTracks
	UpdatePlaylist
	CreatePlaylistPhase
	SkipPlaylist
	ApplyMetadata
	MissingRecord
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case ResolveTracks:
		return "resolve_tracks"
	case UpdatePlaylist:
		return "update_playlist"
	case CreatePlaylistPhase:
		return "create_playlist"
	case SkipPlaylist:
		return "skip_playlist"
	case ApplyMetadata:
		return "apply_metadata"
	case MissingRecord:
		return "missing_record"
	default:
		return ""
	}
}

func fetchSourceUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching source playlist (%s)...", name),
	}
}

func resolveTrackUpdate(step, total int, tr *models.Track) ProgressUpdate {
	if tr == nil {
		return ProgressUpdate{
			Phase:   ResolveTracks,
			Step:    step,
			Total:   total,
			Message: "Searching for tracks on Plex...",
		}
	}
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, tr.Artist, tr.Title),
	}
}

func updatePlaylistUpdate(name string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UpdatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Updating playlist %s with %d tracks...", name, count),
	}
}

func createPlaylistUpdate(name string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylistPhase,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %s with %d tracks...", name, count),
	}
}

func skipPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SkipPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("No tracks for %s found on Plex, skipping playlist", name),
	}
}

func applyMetadataUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyMetadata,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Applying description and poster for %s...", name),
	}
}

func missingRecordUpdate(name string, count int) ProgressUpdate {
	if count == 0 {
		return ProgressUpdate{
			Phase:   MissingRecord,
			Step:    1,
			Total:   1,
			Message: fmt.Sprintf("No missing tracks for %s, clearing record", name),
		}
	}
	return ProgressUpdate{
		Phase:   MissingRecord,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Recording %d missing tracks for %s", count, name),
	}
}
