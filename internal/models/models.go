package models

import (
	"fmt"
	"time"
)

// Track describes a track from a source playlist.
//
// Matching against the Plex library is fuzzy, so Track carries no Plex
// identifiers. URL points back at the source service.
type Track struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	URL    string `json:"url"`
}

// Playlist describes a source playlist to reconcile against Plex.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Poster      string `json:"poster,omitempty"`
	TrackCount  int    `json:"track_count"`
}

// PlaylistExport is a playlist with its full ordered track list.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []Track  `json:"tracks"`
}

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Sync run outcomes.
const (
	RunStateUpdated = "updated"
	RunStateCreated = "created"
	RunStateSkipped = "skipped"
)

// SyncRun records the outcome of one playlist reconciliation pass.
type SyncRun struct {
	id        string
	sequence  int
	playlist  string
	resolved  int
	missing   int
	state     string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewSyncRun creates a SyncRun for the given playlist and outcome.
func NewSyncRun(sequence int, playlist string, resolved, missing int, state string) *SyncRun {
	now := time.Now()
	return &SyncRun{
		sequence:  sequence,
		playlist:  playlist,
		resolved:  resolved,
		missing:   missing,
		state:     state,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *SyncRun) ID() string            { return r.id }
func (r *SyncRun) Sequence() int         { return r.sequence }
func (r *SyncRun) Playlist() string      { return r.playlist }
func (r *SyncRun) Resolved() int         { return r.resolved }
func (r *SyncRun) Missing() int          { return r.missing }
func (r *SyncRun) State() string         { return r.state }
func (r *SyncRun) CreatedAt() time.Time  { return r.createdAt }
func (r *SyncRun) UpdatedAt() time.Time  { return r.updatedAt }
func (r *SyncRun) DeletedAt() *time.Time { return r.deletedAt }

func (r *SyncRun) SetID(id string)           { r.id = id }
func (r *SyncRun) SetCreatedAt(t time.Time)  { r.createdAt = t }
func (r *SyncRun) SetUpdatedAt(t time.Time)  { r.updatedAt = t }
func (r *SyncRun) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// Validate checks the run has a playlist name, a known state and sane counts.
func (r *SyncRun) Validate() error {
	if r.playlist == "" {
		return fmt.Errorf("sync run requires a playlist name")
	}
	switch r.state {
	case RunStateUpdated, RunStateCreated, RunStateSkipped:
	default:
		return fmt.Errorf("unknown sync run state: %q", r.state)
	}
	if r.resolved < 0 || r.missing < 0 {
		return fmt.Errorf("sync run counts must be non-negative")
	}
	return nil
}
