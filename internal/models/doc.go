// Package models defines the shared data model for playlist reconciliation.
//
// Track and Playlist are immutable descriptors produced by source services
// (Spotify, Deezer) and consumed by the reconciliation engine. They carry no
// Plex identifiers: resolution against the Plex library is fuzzy and happens
// per sync pass.
//
// SyncRun is the persisted record of one reconciliation pass, stored through
// [Repository] implementations in the repositories package.
package models
