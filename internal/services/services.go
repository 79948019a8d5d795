// package services defines interface Service for source music providers.
//
// Spotify (OAuth), Deezer (public API)
package services

import (
	"context"

	"github.com/Llewe/plex-playlist-sync/internal/models"
	"golang.org/x/oauth2"
)

// Service defines the interface for source music providers whose playlists
// are mirrored into the Plex library.
type Service interface {
	// Authenticate performs OAuth or API key authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// GetPlaylists retrieves the playlists selected for syncing.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// GetPlaylist retrieves a specific playlist by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// ExportPlaylist exports a playlist with all its tracks.
	ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error)

	// Name returns the name of the service (e.g., "Spotify", "Deezer")
	Name() string
}

// OAuthService extends Service for providers using the OAuth2 authorization
// code flow. Used by the CLI to run the browser-based login.
type OAuthService interface {
	Service

	// GetAuthURL returns the authorization URL for the given CSRF state token.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying OAuth2 configuration for the
	// callback handler's code exchange.
	GetOAuthConfig() *oauth2.Config
}
