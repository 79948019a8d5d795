package plex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Llewe/plex-playlist-sync/internal/shared"
	"github.com/charmbracelet/log"
)

// ConnOptions configures the resilient connection.
type ConnOptions struct {
	URL     string
	Token   string
	Timeout time.Duration // per-attempt request timeout
	Backoff time.Duration // sleep between failed connection attempts
	// MaxAttempts bounds the acquire loop. 0 means retry forever, which is
	// the behavior unattended sync deployments rely on, at the cost of a
	// pass that can block indefinitely while the server is down.
	MaxAttempts int
}

func (o *ConnOptions) defaults() {
	if o.Timeout <= 0 {
		o.Timeout = 90 * time.Second
	}
	if o.Backoff <= 0 {
		o.Backoff = 5 * time.Second
	}
}

// Conn owns a live [Server] and re-establishes it on failure. All methods
// are safe for use from a single reconciliation pass; the underlying server
// is guarded by a mutex and swapped wholesale on reconnect.
type Conn struct {
	mu     sync.Mutex
	srv    *Server
	opts   ConnOptions
	logger *log.Logger
}

// Dial connects to the Plex server, blocking through connection failures
// until a connection is established, the attempt budget is exhausted, or
// the context is canceled.
func Dial(ctx context.Context, opts ConnOptions, logger *log.Logger) (*Conn, error) {
	opts.defaults()
	c := &Conn{opts: opts, logger: logger}

	srv, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	c.srv = srv
	return c, nil
}

// acquire attempts to open a connection until one succeeds. Failures are
// logged and retried after a fixed backoff.
func (c *Conn) acquire(ctx context.Context) (*Server, error) {
	for attempt := 1; ; attempt++ {
		srv := NewServer(c.opts.URL, c.opts.Token, c.opts.Timeout)
		err := srv.Connect(ctx)
		if err == nil {
			if attempt > 1 {
				c.logger.Info("plex connection established", "attempt", attempt)
			}
			return srv, nil
		}

		c.logger.Warn("failed to connect to plex, retrying", "attempt", attempt, "error", err)

		if c.opts.MaxAttempts > 0 && attempt >= c.opts.MaxAttempts {
			return nil, fmt.Errorf("plex unreachable after %d attempts: %w", attempt, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.opts.Backoff):
		}
	}
}

// server returns the current live server.
func (c *Conn) server() *Server {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.srv
}

// reconnect replaces the owned server with a freshly acquired one.
func (c *Conn) reconnect(ctx context.Context) error {
	srv, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.srv = srv
	c.mu.Unlock()
	return nil
}

// SearchTracks searches the library for tracks matching the query.
//
// A malformed query returns (nil, [shared.ErrBadQuery]) without touching the
// connection: retrying it would fail the same way. Any other failure is
// treated as a lost connection; the Conn reacquires and retries the same
// query until it gets an answer or the context is canceled.
func (c *Conn) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	for {
		results, err := c.server().Search(ctx, query, "track", limit)
		if err == nil {
			return results, nil
		}
		if errors.Is(err, shared.ErrBadQuery) {
			c.logger.Info("search rejected by plex", "query", query)
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.logger.Warn("search failed, reconnecting", "query", query, "error", err)
		if err := c.reconnect(ctx); err != nil {
			return nil, err
		}
	}
}

// PlaylistByName finds a playlist by exact title on the live server.
func (c *Conn) PlaylistByName(ctx context.Context, name string) (*Playlist, error) {
	return c.server().PlaylistByName(ctx, name)
}

// CreatePlaylist creates a playlist seeded with items on the live server.
func (c *Conn) CreatePlaylist(ctx context.Context, title string, items []Track) (*Playlist, error) {
	return c.server().CreatePlaylist(ctx, title, items)
}
