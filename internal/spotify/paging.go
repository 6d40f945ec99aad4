package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// TrackPager lazily walks the pages of a playlist's tracks by following
// the upstream's "next" cursor. It is finite and non-restartable: once
// More reports false the sequence is exhausted.
type TrackPager struct {
	client *Client
	next   string
	done   bool
}

// PlaylistTracks returns a pager positioned at the first page of the
// playlist's tracks.
func (c *Client) PlaylistTracks(playlistID string) *TrackPager {
	params := url.Values{"limit": {strconv.Itoa(100)}}
	return &TrackPager{
		client: c,
		next:   c.baseURL + "/playlists/" + url.PathEscape(playlistID) + "/tracks?" + params.Encode(),
	}
}

// pagerFor resumes pagination from an embedded first page, as returned
// inside a full playlist object.
func (c *Client) pagerFor(page PlaylistTrackPage) *TrackPager {
	p := &TrackPager{client: c}
	if page.Next != nil {
		p.next = *page.Next
	} else {
		p.done = true
	}
	return p
}

// More reports whether another page remains.
func (p *TrackPager) More() bool {
	return !p.done
}

// Next fetches the next page and returns its tracks. Null items
// (deleted or regionally unavailable tracks) are skipped without
// aborting pagination.
func (p *TrackPager) Next(ctx context.Context) ([]Track, error) {
	if p.done {
		return nil, nil
	}

	var page PlaylistTrackPage
	if err := p.client.getURL(ctx, p.next, &page); err != nil {
		p.done = true
		return nil, fmt.Errorf("fetching playlist page: %w", err)
	}

	if page.Next != nil {
		p.next = *page.Next
	} else {
		p.done = true
	}

	return collectTracks(page.Items), nil
}

// collectTracks extracts the non-null tracks from a page's items.
func collectTracks(items []PlaylistItem) []Track {
	tracks := make([]Track, 0, len(items))
	for _, item := range items {
		if item.Track == nil {
			continue
		}
		tracks = append(tracks, *item.Track)
	}
	return tracks
}

// AllPlaylistTracks drains the pager for a playlist, returning the
// playlist metadata and every available track.
func (c *Client) AllPlaylistTracks(ctx context.Context, playlistID string) (*Playlist, []Track, error) {
	playlist, err := c.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, nil, err
	}

	tracks := collectTracks(playlist.Tracks.Items)

	pager := c.pagerFor(playlist.Tracks)
	for pager.More() {
		page, err := pager.Next(ctx)
		if err != nil {
			return nil, nil, err
		}
		tracks = append(tracks, page...)
	}

	return playlist, tracks, nil
}
