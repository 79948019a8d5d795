// Package services defines the [Service] interface for source music providers and implements it for Spotify and Deezer.
//
// # Service Interface
//
// All source providers implement a common abstraction, enabling the sync
// engine to mirror playlists uniformly regardless of where they come from.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh.
//
// The [oauth2.Config] client automatically refreshes expired tokens using the refresh token.
// Playlists are read for the configured user and exported with full item pagination.
//
// # Deezer Implementation
//
// [DeezerService] uses the public Deezer API, which requires no credentials
// for public playlists. Only the playlist IDs listed in the configuration are
// visible through it. Deezer reports API errors inside an HTTP 200 body, so
// responses are checked for an error object before decoding.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrMissingCredentials] : required credentials absent
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrAuthFailed] : OAuth exchange rejected
//   - [shared.ErrAPIRequest] : HTTP request failed
//
// # API Mappings
//
// Both services convert provider-specific JSON responses to models.Playlist
// and models.Track. The first listed artist becomes the track artist, and the
// largest playlist image becomes the poster URL.
package services
