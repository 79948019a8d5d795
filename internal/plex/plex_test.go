package plex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Llewe/plex-playlist-sync/internal/shared"
)

const machineID = "abc123machine"

func containerXML(body string) string {
	return fmt.Sprintf(`<MediaContainer machineIdentifier=%q size="1">%s</MediaContainer>`, machineID, body)
}

func connectedServer(t *testing.T, handler http.HandlerFunc) (*Server, *httptest.Server) {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			fmt.Fprint(w, containerXML(""))
			return
		}
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	srv := NewServer(ts.URL, "test-token", 5*time.Second)
	if err := srv.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	return srv, ts
}

func TestServer(t *testing.T) {
	ctx := context.Background()

	t.Run("Connect", func(t *testing.T) {
		t.Run("Stores Machine Identifier", func(t *testing.T) {
			var gotToken string
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotToken = r.URL.Query().Get("X-Plex-Token")
				fmt.Fprint(w, containerXML(""))
			}))
			defer ts.Close()

			srv := NewServer(ts.URL, "test-token", 5*time.Second)
			if err := srv.Connect(ctx); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.machineID != machineID {
				t.Errorf("expected machine id %q, got %q", machineID, srv.machineID)
			}
			if gotToken != "test-token" {
				t.Errorf("expected token query param, got %q", gotToken)
			}
		})

		t.Run("Missing Machine Identifier", func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `<MediaContainer size="0"></MediaContainer>`)
			}))
			defer ts.Close()

			srv := NewServer(ts.URL, "test-token", 5*time.Second)
			if err := srv.Connect(ctx); err == nil {
				t.Error("expected error for missing machine identifier")
			}
		})

		t.Run("Unreachable Server", func(t *testing.T) {
			srv := NewServer("http://127.0.0.1:1", "test-token", time.Second)
			if err := srv.Connect(ctx); err == nil {
				t.Error("expected error for unreachable server")
			}
		})
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("Returns Tracks", func(t *testing.T) {
			srv, _ := connectedServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/search" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				q := r.URL.Query()
				if q.Get("type") != typeTrack {
					t.Errorf("expected type=%s, got %s", typeTrack, q.Get("type"))
				}
				if q.Get("limit") != "5" {
					t.Errorf("expected limit=5, got %s", q.Get("limit"))
				}
				if q.Get("query") != "One More Time" {
					t.Errorf("unexpected query %s", q.Get("query"))
				}
				fmt.Fprint(w, containerXML(
					`<Track ratingKey="101" title="One More Time" grandparentTitle="Daft Punk" parentTitle="Discovery" duration="320000"/>`,
				))
			})

			tracks, err := srv.Search(ctx, "One More Time", "track", 5)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 1 {
				t.Fatalf("expected 1 track, got %d", len(tracks))
			}
			if tracks[0].RatingKey != "101" || tracks[0].GrandparentTitle != "Daft Punk" || tracks[0].ParentTitle != "Discovery" {
				t.Errorf("unexpected track %+v", tracks[0])
			}
		})

		t.Run("Bad Request Maps To ErrBadQuery", func(t *testing.T) {
			srv, _ := connectedServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			})

			_, err := srv.Search(ctx, "???", "track", 5)
			if !errors.Is(err, shared.ErrBadQuery) {
				t.Fatalf("expected ErrBadQuery, got %v", err)
			}
		})

		t.Run("Server Error Is Not ErrBadQuery", func(t *testing.T) {
			srv, _ := connectedServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			})

			_, err := srv.Search(ctx, "anything", "track", 5)
			if err == nil {
				t.Fatal("expected error for 500 response")
			}
			if errors.Is(err, shared.ErrBadQuery) {
				t.Error("500 must not map to ErrBadQuery")
			}
		})
	})

	t.Run("PlaylistByName", func(t *testing.T) {
		playlistsXML := containerXML(
			`<Playlist ratingKey="77" title="Discover Weekly" leafCount="30"/>` +
				`<Playlist ratingKey="78" title="Release Radar" leafCount="25"/>`,
		)

		t.Run("Exact Title Match", func(t *testing.T) {
			srv, _ := connectedServer(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, playlistsXML)
			})

			pl, err := srv.PlaylistByName(ctx, "Release Radar")
			if err != nil {
				t.Fatalf("expected playlist, got %v", err)
			}
			if pl.RatingKey != "78" || pl.LeafCount != 25 {
				t.Errorf("unexpected playlist %+v", pl)
			}
		})

		t.Run("Not Found", func(t *testing.T) {
			srv, _ := connectedServer(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, playlistsXML)
			})

			_, err := srv.PlaylistByName(ctx, "discover weekly")
			if !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Fatalf("expected ErrPlaylistNotFound for case mismatch, got %v", err)
			}
		})
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		t.Run("Builds Item URI", func(t *testing.T) {
			var gotURI string
			srv, _ := connectedServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				gotURI = r.URL.Query().Get("uri")
				fmt.Fprint(w, containerXML(`<Playlist ratingKey="90" title="New Mix" leafCount="2"/>`))
			})

			items := []Track{{RatingKey: "1"}, {RatingKey: "2"}}
			pl, err := srv.CreatePlaylist(ctx, "New Mix", items)
			if err != nil {
				t.Fatalf("expected playlist, got %v", err)
			}
			if pl.RatingKey != "90" {
				t.Errorf("unexpected rating key %s", pl.RatingKey)
			}

			wantURI := fmt.Sprintf("server://%s/com.plexapp.plugins.library/library/metadata/1,2", machineID)
			if gotURI != wantURI {
				t.Errorf("expected uri %q, got %q", wantURI, gotURI)
			}
		})

		t.Run("Rejects Empty Items", func(t *testing.T) {
			srv, _ := connectedServer(t, func(w http.ResponseWriter, r *http.Request) {
				t.Error("no request expected for empty playlist")
			})

			_, err := srv.CreatePlaylist(ctx, "Empty", nil)
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})

	t.Run("Playlist", func(t *testing.T) {
		t.Run("Items", func(t *testing.T) {
			srv, _ := connectedServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/playlists/77/items" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				fmt.Fprint(w, containerXML(
					`<Track ratingKey="1" playlistItemID="500" title="A"/>`+
						`<Track ratingKey="2" playlistItemID="501" title="B"/>`,
				))
			})

			pl := &Playlist{srv: srv, RatingKey: "77", Title: "Mix"}
			items, err := pl.Items(ctx)
			if err != nil {
				t.Fatalf("expected items, got %v", err)
			}
			if len(items) != 2 || items[1].PlaylistItemID != "501" {
				t.Errorf("unexpected items %+v", items)
			}
		})

		t.Run("RemoveItems Deletes Each Entry", func(t *testing.T) {
			var paths []string
			srv, _ := connectedServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Errorf("expected DELETE, got %s", r.Method)
				}
				paths = append(paths, r.URL.Path)
				fmt.Fprint(w, containerXML(""))
			})

			pl := &Playlist{srv: srv, RatingKey: "77", Title: "Mix"}
			items := []Track{
				{RatingKey: "1", PlaylistItemID: "500"},
				{RatingKey: "2"}, // no item id, skipped
				{RatingKey: "3", PlaylistItemID: "502"},
			}
			if err := pl.RemoveItems(ctx, items); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			want := []string{"/playlists/77/items/500", "/playlists/77/items/502"}
			if len(paths) != len(want) {
				t.Fatalf("expected %d deletes, got %v", len(want), paths)
			}
			for i := range want {
				if paths[i] != want[i] {
					t.Errorf("delete %d: expected %s, got %s", i, want[i], paths[i])
				}
			}
		})

		t.Run("Edit Sets Summary", func(t *testing.T) {
			var gotSummary string
			srv, _ := connectedServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPut {
					t.Errorf("expected PUT, got %s", r.Method)
				}
				gotSummary = r.URL.Query().Get("summary")
				fmt.Fprint(w, containerXML(""))
			})

			pl := &Playlist{srv: srv, RatingKey: "77", Title: "Mix"}
			if err := pl.Edit(ctx, "synced from spotify"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if gotSummary != "synced from spotify" {
				t.Errorf("unexpected summary %q", gotSummary)
			}
		})

		t.Run("UploadPoster Posts URL", func(t *testing.T) {
			var gotPath, gotURL string
			srv, _ := connectedServer(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotURL = r.URL.Query().Get("url")
				fmt.Fprint(w, containerXML(""))
			})

			pl := &Playlist{srv: srv, RatingKey: "77", Title: "Mix"}
			if err := pl.UploadPoster(ctx, "https://img.example.com/cover.jpg"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if gotPath != "/library/metadata/77/posters" {
				t.Errorf("unexpected path %s", gotPath)
			}
			if !strings.Contains(gotURL, "cover.jpg") {
				t.Errorf("unexpected poster url %q", gotURL)
			}
		})
	})

	t.Run("TrackMetadata", func(t *testing.T) {
		t.Run("Missing Artist", func(t *testing.T) {
			track := Track{Title: "Orphan", ParentTitle: "Album"}
			if _, err := track.ArtistName(); !errors.Is(err, shared.ErrTrackMetadata) {
				t.Errorf("expected ErrTrackMetadata, got %v", err)
			}
		})

		t.Run("Missing Album", func(t *testing.T) {
			track := Track{Title: "Orphan", GrandparentTitle: "Artist"}
			if _, err := track.AlbumName(); !errors.Is(err, shared.ErrTrackMetadata) {
				t.Errorf("expected ErrTrackMetadata, got %v", err)
			}
		})

		t.Run("Present", func(t *testing.T) {
			track := Track{Title: "T", GrandparentTitle: "Artist", ParentTitle: "Album"}
			if name, err := track.ArtistName(); err != nil || name != "Artist" {
				t.Errorf("expected artist, got %q %v", name, err)
			}
			if name, err := track.AlbumName(); err != nil || name != "Album" {
				t.Errorf("expected album, got %q %v", name, err)
			}
		})
	})
}
