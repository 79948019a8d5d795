// package formatter renders sync results and maintains per-playlist
// missing-track CSV records
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Llewe/plex-playlist-sync/internal/models"
	"github.com/Llewe/plex-playlist-sync/internal/tasks"
)

// MissingToCSV converts missing tracks to CSV with columns: Title, Artist, Album, URL
func MissingToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Title", "Artist", "Album", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.Title,
			track.Artist,
			track.Album,
			track.URL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// CSVSink writes one missing-tracks CSV per playlist into a data directory.
// The file for a playlist is removed once every track of a later run
// resolves.
type CSVSink struct {
	dir string
}

// NewCSVSink creates a sink rooted at dir, creating it when absent.
func NewCSVSink(dir string) (*CSVSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &CSVSink{dir: dir}, nil
}

// Path returns the record path for a playlist name.
func (s *CSVSink) Path(name string) string {
	// Playlist names come from external services and may contain path
	// separators.
	safe := strings.ReplaceAll(name, string(os.PathSeparator), "-")
	return filepath.Join(s.dir, safe+".csv")
}

// Write replaces the playlist's record with the given tracks.
func (s *CSVSink) Write(name string, tracks []models.Track) error {
	data, err := MissingToCSV(tracks)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.Path(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}

// Delete removes the playlist's record. A record that never existed is not
// an error.
func (s *CSVSink) Delete(name string) error {
	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete CSV file: %w", err)
	}
	return nil
}

// FormatResult renders a one-line summary for a single playlist outcome.
func FormatResult(result *tasks.ReconcileResult) string {
	return fmt.Sprintf("%s: %s (%d found, %d missing)",
		result.Playlist, result.State, len(result.Resolved), len(result.Missing))
}

// FormatResults renders a multi-line run summary with totals.
func FormatResults(results []*tasks.ReconcileResult) string {
	var buf bytes.Buffer

	resolved, missing := 0, 0
	for i, result := range results {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, FormatResult(result)))
		resolved += len(result.Resolved)
		missing += len(result.Missing)
	}

	buf.WriteString(fmt.Sprintf("\nPlaylists: %d | Tracks found: %d | Tracks missing: %d\n",
		len(results), resolved, missing))

	return buf.String()
}
