package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"golang.org/x/oauth2"
)

func TestAllPlaylistTracksFollowsCursor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/playlists/p1", func(w http.ResponseWriter, r *http.Request) {
		next := "http://" + r.Host + "/v1/playlists/p1/tracks?offset=100"
		_ = json.NewEncoder(w).Encode(Playlist{
			ID:   "p1",
			Name: "Mix",
			Tracks: PlaylistTrackPage{
				Items: []PlaylistItem{
					{Track: &Track{ID: "t1", Name: "One"}},
					{Track: nil}, // deleted track
					{Track: &Track{ID: "t2", Name: "Two"}},
				},
				Next:  &next,
				Total: 5,
			},
		})
	})
	mux.HandleFunc("/v1/playlists/p1/tracks", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(PlaylistTrackPage{
			Items: []PlaylistItem{
				{Track: &Track{ID: "t3", Name: "Three"}},
				{Track: &Track{ID: "t4", Name: "Four"}},
			},
			Next: nil,
		})
	})

	client, _ := newTestClient(t, mux)
	client.SetToken(&oauth2.Token{AccessToken: "tok"})

	playlist, tracks, err := client.AllPlaylistTracks(context.Background(), "p1")
	if err != nil {
		t.Fatalf("AllPlaylistTracks() error = %v", err)
	}
	if playlist.Name != "Mix" {
		t.Errorf("playlist.Name = %q, want Mix", playlist.Name)
	}

	want := []string{"t1", "t2", "t3", "t4"}
	if len(tracks) != len(want) {
		t.Fatalf("len(tracks) = %d, want %d", len(tracks), len(want))
	}
	for i, id := range want {
		if tracks[i].ID != id {
			t.Errorf("tracks[%d].ID = %q, want %q", i, tracks[i].ID, id)
		}
	}
}

func TestTrackPagerSinglePage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/playlists/p2/tracks", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(PlaylistTrackPage{
			Items: []PlaylistItem{{Track: &Track{ID: "t1"}}},
		})
	})

	client, _ := newTestClient(t, mux)
	client.SetToken(&oauth2.Token{AccessToken: "tok"})

	pager := client.PlaylistTracks("p2")
	if !pager.More() {
		t.Fatal("More() = false before first page")
	}

	tracks, err := pager.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if len(tracks) != 1 || tracks[0].ID != "t1" {
		t.Errorf("tracks = %v", tracks)
	}
	if pager.More() {
		t.Error("More() = true after final page")
	}
}
