package plex

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Llewe/plex-playlist-sync/internal/shared"
)

// Plex metadata type codes used by the search API.
const (
	typeArtist = "8"
	typeAlbum  = "9"
	typeTrack  = "10"
)

// Track is a music track in the Plex library.
//
// Plex reports the artist as grandparentTitle and the album as parentTitle.
// Either can be absent when the server has mismatched or partial metadata;
// the accessor methods surface that as an error so callers can skip the
// entry instead of matching against an empty string.
type Track struct {
	RatingKey        string `xml:"ratingKey,attr"`
	PlaylistItemID   string `xml:"playlistItemID,attr"`
	Title            string `xml:"title,attr"`
	GrandparentTitle string `xml:"grandparentTitle,attr"`
	ParentTitle      string `xml:"parentTitle,attr"`
	Duration         int    `xml:"duration,attr"`
}

// ArtistName returns the track's artist name.
func (t Track) ArtistName() (string, error) {
	if t.GrandparentTitle == "" {
		return "", fmt.Errorf("%w: track %q has no artist", shared.ErrTrackMetadata, t.Title)
	}
	return t.GrandparentTitle, nil
}

// AlbumName returns the track's album name.
func (t Track) AlbumName() (string, error) {
	if t.ParentTitle == "" {
		return "", fmt.Errorf("%w: track %q has no album", shared.ErrTrackMetadata, t.Title)
	}
	return t.ParentTitle, nil
}

// mediaContainer is the envelope of every Plex XML response.
type mediaContainer struct {
	XMLName           xml.Name       `xml:"MediaContainer"`
	MachineIdentifier string         `xml:"machineIdentifier,attr"`
	Tracks            []Track        `xml:"Track"`
	Playlists         []playlistMeta `xml:"Playlist"`
}

type playlistMeta struct {
	RatingKey string `xml:"ratingKey,attr"`
	Title     string `xml:"title,attr"`
	Summary   string `xml:"summary,attr"`
	LeafCount int    `xml:"leafCount,attr"`
}

// Server is a client for one Plex Media Server.
type Server struct {
	baseURL    string
	token      string
	machineID  string
	httpClient *http.Client
}

// NewServer creates a Plex client for the given base URL and token. The
// timeout applies to every request made through this server.
func NewServer(baseURL, token string, timeout time.Duration) *Server {
	return &Server{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Connect verifies the server is reachable and records its machine
// identifier, which playlist item URIs are built from.
func (s *Server) Connect(ctx context.Context) error {
	var container mediaContainer
	if err := s.get(ctx, "/", nil, &container); err != nil {
		return fmt.Errorf("failed to reach plex server: %w", err)
	}
	if container.MachineIdentifier == "" {
		return fmt.Errorf("plex server returned no machine identifier")
	}
	s.machineID = container.MachineIdentifier
	return nil
}

// Search queries the whole library for items of the given media type
// ("track", "album", "artist"). A query the server rejects as malformed
// returns [shared.ErrBadQuery].
func (s *Server) Search(ctx context.Context, query, mediaType string, limit int) ([]Track, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", fmt.Sprint(limit))
	switch mediaType {
	case "artist":
		params.Set("type", typeArtist)
	case "album":
		params.Set("type", typeAlbum)
	default:
		params.Set("type", typeTrack)
	}

	var container mediaContainer
	if err := s.get(ctx, "/search", params, &container); err != nil {
		return nil, err
	}
	return container.Tracks, nil
}

// PlaylistByName finds a playlist by exact title. Returns
// [shared.ErrPlaylistNotFound] when no playlist with that name exists.
func (s *Server) PlaylistByName(ctx context.Context, name string) (*Playlist, error) {
	var container mediaContainer
	if err := s.get(ctx, "/playlists", nil, &container); err != nil {
		return nil, err
	}

	for _, meta := range container.Playlists {
		if meta.Title == name {
			return &Playlist{srv: s, RatingKey: meta.RatingKey, Title: meta.Title, LeafCount: meta.LeafCount}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
}

// CreatePlaylist creates a new audio playlist seeded with the given items.
func (s *Server) CreatePlaylist(ctx context.Context, title string, items []Track) (*Playlist, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cannot create empty playlist", shared.ErrInvalidArgument)
	}

	params := url.Values{}
	params.Set("type", "audio")
	params.Set("title", title)
	params.Set("smart", "0")
	params.Set("uri", s.itemURI(items))

	var container mediaContainer
	if err := s.request(ctx, http.MethodPost, "/playlists", params, &container); err != nil {
		return nil, fmt.Errorf("failed to create playlist %q: %w", title, err)
	}
	if len(container.Playlists) == 0 {
		return nil, fmt.Errorf("plex returned no playlist for %q", title)
	}

	meta := container.Playlists[0]
	return &Playlist{srv: s, RatingKey: meta.RatingKey, Title: meta.Title, LeafCount: meta.LeafCount}, nil
}

// itemURI builds the server:// URI addressing the given tracks.
func (s *Server) itemURI(items []Track) string {
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = item.RatingKey
	}
	return fmt.Sprintf("server://%s/com.plexapp.plugins.library/library/metadata/%s",
		s.machineID, strings.Join(keys, ","))
}

// get issues a GET request and decodes the XML response into out.
func (s *Server) get(ctx context.Context, path string, params url.Values, out *mediaContainer) error {
	return s.request(ctx, http.MethodGet, path, params, out)
}

// request issues an HTTP request with token auth and decodes the XML
// response. A 400 response maps to [shared.ErrBadQuery].
func (s *Server) request(ctx context.Context, method, path string, params url.Values, out *mediaContainer) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("X-Plex-Token", s.token)

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: plex rejected %s %s", shared.ErrBadQuery, method, path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("plex returned status %d for %s %s: %s", resp.StatusCode, method, path, string(body))
	}

	if out != nil {
		if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	} else {
		io.Copy(io.Discard, resp.Body)
	}
	return nil
}

// Playlist is a handle on a playlist that lives on the Plex server.
type Playlist struct {
	srv       *Server
	RatingKey string
	Title     string
	LeafCount int
}

// Items returns the playlist's current tracks in playlist order.
func (p *Playlist) Items(ctx context.Context) ([]Track, error) {
	var container mediaContainer
	if err := p.srv.get(ctx, "/playlists/"+p.RatingKey+"/items", nil, &container); err != nil {
		return nil, fmt.Errorf("failed to fetch playlist items: %w", err)
	}
	return container.Tracks, nil
}

// AddItems appends the given tracks to the playlist.
func (p *Playlist) AddItems(ctx context.Context, items []Track) error {
	if len(items) == 0 {
		return nil
	}
	params := url.Values{}
	params.Set("uri", p.srv.itemURI(items))
	if err := p.srv.request(ctx, http.MethodPut, "/playlists/"+p.RatingKey+"/items", params, nil); err != nil {
		return fmt.Errorf("failed to add items to playlist %q: %w", p.Title, err)
	}
	return nil
}

// RemoveItems removes the given tracks from the playlist. Plex deletes
// playlist entries one at a time by playlist item ID.
func (p *Playlist) RemoveItems(ctx context.Context, items []Track) error {
	for _, item := range items {
		if item.PlaylistItemID == "" {
			continue
		}
		path := "/playlists/" + p.RatingKey + "/items/" + item.PlaylistItemID
		if err := p.srv.request(ctx, http.MethodDelete, path, nil, nil); err != nil {
			return fmt.Errorf("failed to remove item from playlist %q: %w", p.Title, err)
		}
	}
	return nil
}

// Edit updates the playlist's summary.
func (p *Playlist) Edit(ctx context.Context, summary string) error {
	params := url.Values{}
	params.Set("summary", summary)
	if err := p.srv.request(ctx, http.MethodPut, "/playlists/"+p.RatingKey, params, nil); err != nil {
		return fmt.Errorf("failed to edit playlist %q: %w", p.Title, err)
	}
	return nil
}

// UploadPoster sets the playlist poster from a remote image URL.
func (p *Playlist) UploadPoster(ctx context.Context, posterURL string) error {
	params := url.Values{}
	params.Set("url", posterURL)
	path := "/library/metadata/" + p.RatingKey + "/posters"
	if err := p.srv.request(ctx, http.MethodPost, path, params, nil); err != nil {
		return fmt.Errorf("failed to upload poster for playlist %q: %w", p.Title, err)
	}
	return nil
}
