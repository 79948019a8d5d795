package match

import (
	"context"
	"fmt"
	"strings"

	"github.com/Llewe/plex-playlist-sync/internal/models"
	"github.com/Llewe/plex-playlist-sync/internal/plex"
	"github.com/Llewe/plex-playlist-sync/internal/shared"
	"github.com/charmbracelet/log"
)

const (
	// searchLimit caps candidates per query; Plex relevance ordering makes
	// deeper results rarely useful.
	searchLimit = 5

	// matchThreshold is the similarity cutoff for accepting a candidate.
	// High enough to reject unrelated tracks, loose enough to absorb
	// punctuation and casing noise.
	matchThreshold = 0.9
)

// Searcher is the catalog capability the resolver needs.
type Searcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]plex.Track, error)
}

// Resolver maps one source track descriptor to zero or one library track.
type Resolver struct {
	catalog Searcher
	logger  *log.Logger
}

// NewResolver creates a Resolver backed by the given catalog.
func NewResolver(catalog Searcher, logger *log.Logger) *Resolver {
	return &Resolver{catalog: catalog, logger: logger}
}

// Resolve searches the library for the given descriptor and returns the
// first candidate whose artist or album clears the similarity threshold.
// Returns [shared.ErrTrackNotFound] when no candidate is acceptable.
func (r *Resolver) Resolve(ctx context.Context, track models.Track) (*plex.Track, error) {
	candidates, err := r.search(ctx, track.Title)
	if err != nil {
		return nil, err
	}

	// Plex's literal search is brittle against "(feat. X)" and "(Remix)"
	// annotations; retry with the prefix before the first parenthesis.
	// This also fires on legitimately parenthesized titles, which is
	// accepted: the candidate scan below filters false hits.
	if len(candidates) == 0 || strings.Contains(track.Title, "(") {
		prefix := strings.SplitN(track.Title, "(", 2)[0]
		r.logger.Info("retrying search with relaxed query", "title", track.Title, "query", prefix)
		more, err := r.search(ctx, prefix)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, more...)
	}

	// First acceptable candidate wins, in the relevance order Plex
	// returned. No re-ranking across the full list.
	for _, candidate := range candidates {
		artist, err := candidate.ArtistName()
		if err != nil {
			r.logger.Info("skipping candidate with unreadable metadata", "title", track.Title, "error", err)
			continue
		}
		if QuickRatio(artist, track.Artist) >= matchThreshold {
			return &candidate, nil
		}

		album, err := candidate.AlbumName()
		if err != nil {
			r.logger.Info("skipping candidate with unreadable metadata", "title", track.Title, "error", err)
			continue
		}
		// Album fallback catches remixes and compilations where the
		// artist field diverges but the album still lines up.
		if QuickRatio(album, track.Album) >= matchThreshold {
			return &candidate, nil
		}
	}

	return nil, fmt.Errorf("%w: %s - %s", shared.ErrTrackNotFound, track.Artist, track.Title)
}

// search queries the catalog, treating a rejected query as zero candidates.
func (r *Resolver) search(ctx context.Context, query string) ([]plex.Track, error) {
	results, err := r.catalog.SearchTracks(ctx, query, searchLimit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Bad query: permanent for this query string, not a connectivity
		// failure. Resolution continues with no candidates from it.
		return nil, nil
	}
	return results, nil
}
