// Deezer API implementation of [Service]
//
// Uses the public Deezer API, which needs no authentication for public
// playlists: https://developers.deezer.com/api
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Llewe/plex-playlist-sync/internal/models"
	"github.com/Llewe/plex-playlist-sync/internal/shared"
)

const deezerBaseURL = "https://api.deezer.com"

type deezerArtist struct {
	Name string `json:"name"`
}

type deezerAlbum struct {
	Title string `json:"title"`
}

// DeezerTrack represents a Deezer track.
type DeezerTrack struct {
	ID     int64        `json:"id"`
	Title  string       `json:"title"`
	Link   string       `json:"link"`
	Artist deezerArtist `json:"artist"`
	Album  deezerAlbum  `json:"album"`
}

// DeezerTrackPage represents one page of playlist tracks.
type DeezerTrackPage struct {
	Data  []DeezerTrack `json:"data"`
	Total int           `json:"total"`
	Next  string        `json:"next"`
}

// DeezerPlaylist represents a Deezer playlist.
type DeezerPlaylist struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Public      bool            `json:"public"`
	NBTracks    int             `json:"nb_tracks"`
	PictureBig  string          `json:"picture_big"`
	Tracks      DeezerTrackPage `json:"tracks"`
}

type deezerError struct {
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// DeezerService implements the Service interface for the public Deezer API.
// Only the playlists configured by ID are visible through it.
type DeezerService struct {
	playlistIDs []string
	httpClient  *http.Client
}

// NewDeezerService creates a Deezer service for the configured playlist IDs.
func NewDeezerService(cfg shared.DeezerConfig) *DeezerService {
	return &DeezerService{
		playlistIDs: cfg.PlaylistIDs,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Authenticate is a no-op; the public API needs no credentials.
func (s *DeezerService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (s *DeezerService) Name() string {
	return "Deezer"
}

// doRequest performs a GET request against the public API. Deezer reports
// errors as a JSON error object with HTTP 200, so the body is checked for
// one before decoding into the result.
func (s *DeezerService) doRequest(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, deezerBaseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: deezer status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	var apiErr deezerError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error != nil {
		return fmt.Errorf("%w: deezer %s (code %d)", shared.ErrAPIRequest, apiErr.Error.Message, apiErr.Error.Code)
	}

	if result != nil {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Playlist retrieves a playlist by ID.
func (s *DeezerService) Playlist(ctx context.Context, playlistID string) (*DeezerPlaylist, error) {
	var playlist DeezerPlaylist
	if err := s.doRequest(ctx, "/playlist/"+playlistID, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// PlaylistTracks retrieves one page of a playlist's tracks.
func (s *DeezerService) PlaylistTracks(ctx context.Context, playlistID string, index int) (*DeezerTrackPage, error) {
	endpoint := fmt.Sprintf("/playlist/%s/tracks?index=%d", playlistID, index)

	var page DeezerTrackPage
	if err := s.doRequest(ctx, endpoint, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (dp *DeezerPlaylist) toModel() models.Playlist {
	return models.Playlist{
		ID:          strconv.FormatInt(dp.ID, 10),
		Name:        dp.Title,
		Description: dp.Description,
		Poster:      dp.PictureBig,
		TrackCount:  dp.NBTracks,
	}
}

// Service interface implementation

// GetPlaylists retrieves the configured playlists.
func (s *DeezerService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	playlists := make([]models.Playlist, 0, len(s.playlistIDs))
	for _, id := range s.playlistIDs {
		dp, err := s.Playlist(ctx, id)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, dp.toModel())
	}
	return playlists, nil
}

// GetPlaylist retrieves a specific playlist by ID.
func (s *DeezerService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	dp, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	playlist := dp.toModel()
	return &playlist, nil
}

// ExportPlaylist exports a playlist with all its tracks, paginating past the
// first embedded page when the playlist is longer.
func (s *DeezerService) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	dp, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	var tracks []models.Track
	appendPage := func(page DeezerTrackPage) {
		for _, dt := range page.Data {
			tracks = append(tracks, models.Track{
				Title:  dt.Title,
				Artist: dt.Artist.Name,
				Album:  dt.Album.Title,
				URL:    dt.Link,
			})
		}
	}

	appendPage(dp.Tracks)
	for dp.Tracks.Total > len(tracks) {
		page, err := s.PlaylistTracks(ctx, playlistID, len(tracks))
		if err != nil {
			return nil, err
		}
		if len(page.Data) == 0 {
			break
		}
		appendPage(*page)
	}

	return &models.PlaylistExport{
		Playlist: dp.toModel(),
		Tracks:   tracks,
	}, nil
}
