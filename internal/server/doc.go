// Package server provides the loopback HTTP server used by CLI OAuth flows.
//
// # Router Infrastructure
//
// [Router] wraps [http.ServeMux] with method filtering and [Middleware]
// support. Middleware wraps handlers in reverse order (last added executes
// first), following the standard Go pattern. [Logging] provides request
// logging through the injected application logger.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the
// authorization code for tokens, and sends the result through a channel.
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user runs `auth spotify`, a temporary HTTP server starts on
// localhost, the browser opens the authorization URL, the handler receives
// the callback, and the server shuts down after delivering the token.
package server
