// Package plex is an HTTP client for the Plex Media Server API, scoped to
// what playlist reconciliation needs: global track search and playlist CRUD.
//
// # Server
//
// [Server] talks to one Plex server with token auth (X-Plex-Token query
// parameter) and XML MediaContainer responses. A search that the server
// rejects as malformed surfaces as [shared.ErrBadQuery] so callers can tell
// a broken query from a broken connection.
//
// # Conn
//
// [Conn] wraps a Server with the reconnect behavior long-running sync jobs
// need: [Dial] blocks until a connection is established (the Plex server may
// start after this process), and [Conn.SearchTracks] transparently reacquires
// the connection and retries when a search fails with anything other than a
// bad query. The live Server is owned by the Conn and guarded by a mutex, so
// callers never hold or thread a connection handle themselves.
package plex
