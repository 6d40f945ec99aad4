package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// CurrentUser returns the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/me", nil, &user); err != nil {
		return nil, fmt.Errorf("fetching current user: %w", err)
	}
	return &user, nil
}

// CurrentUserPlaylists returns one page of the user's playlists.
func (c *Client) CurrentUserPlaylists(ctx context.Context, limit, offset int) (*PlaylistPage, error) {
	params := url.Values{
		"limit":  {strconv.Itoa(clampLimit(limit, 20, 50))},
		"offset": {strconv.Itoa(max(offset, 0))},
	}

	var page PlaylistPage
	if err := c.get(ctx, "/me/playlists", params, &page); err != nil {
		return nil, fmt.Errorf("fetching playlists: %w", err)
	}
	return &page, nil
}

// GetPlaylist returns a playlist with its first page of tracks.
func (c *Client) GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	var playlist Playlist
	if err := c.get(ctx, "/playlists/"+url.PathEscape(playlistID), nil, &playlist); err != nil {
		return nil, fmt.Errorf("fetching playlist %s: %w", playlistID, err)
	}
	return &playlist, nil
}

// GetArtist returns a full artist record.
func (c *Client) GetArtist(ctx context.Context, artistID string) (*Artist, error) {
	var artist Artist
	if err := c.get(ctx, "/artists/"+url.PathEscape(artistID), nil, &artist); err != nil {
		return nil, fmt.Errorf("fetching artist %s: %w", artistID, err)
	}
	return &artist, nil
}

// GetRecentlyPlayed returns the user's recently played tracks.
func (c *Client) GetRecentlyPlayed(ctx context.Context, limit int) (*RecentlyPlayed, error) {
	params := url.Values{"limit": {strconv.Itoa(clampLimit(limit, 20, 50))}}

	var recent RecentlyPlayed
	if err := c.get(ctx, "/me/player/recently-played", params, &recent); err != nil {
		return nil, fmt.Errorf("fetching recently played: %w", err)
	}
	return &recent, nil
}

// GetTopArtists returns the user's top artists for the given time
// range ("short_term", "medium_term" or "long_term").
func (c *Client) GetTopArtists(ctx context.Context, limit int, timeRange string) (*TopArtists, error) {
	if timeRange == "" {
		timeRange = "medium_term"
	}
	params := url.Values{
		"limit":      {strconv.Itoa(clampLimit(limit, 20, 50))},
		"time_range": {timeRange},
	}

	var top TopArtists
	if err := c.get(ctx, "/me/top/artists", params, &top); err != nil {
		return nil, fmt.Errorf("fetching top artists: %w", err)
	}
	return &top, nil
}

// GetRecommendations returns recommended tracks for the given seeds.
// At most 5 seeds are sent per category, per the upstream limit.
func (c *Client) GetRecommendations(ctx context.Context, seedGenres, seedArtists, seedTracks []string, limit int) (*Recommendations, error) {
	params := url.Values{"limit": {strconv.Itoa(clampLimit(limit, 20, 100))}}
	if len(seedGenres) > 0 {
		params.Set("seed_genres", strings.Join(capSeeds(seedGenres), ","))
	}
	if len(seedArtists) > 0 {
		params.Set("seed_artists", strings.Join(capSeeds(seedArtists), ","))
	}
	if len(seedTracks) > 0 {
		params.Set("seed_tracks", strings.Join(capSeeds(seedTracks), ","))
	}

	var recs Recommendations
	if err := c.get(ctx, "/recommendations", params, &recs); err != nil {
		return nil, fmt.Errorf("fetching recommendations: %w", err)
	}
	return &recs, nil
}

// GetNewReleases returns newly released albums.
func (c *Client) GetNewReleases(ctx context.Context, limit int) (*NewReleases, error) {
	params := url.Values{"limit": {strconv.Itoa(clampLimit(limit, 20, 50))}}

	var releases NewReleases
	if err := c.get(ctx, "/browse/new-releases", params, &releases); err != nil {
		return nil, fmt.Errorf("fetching new releases: %w", err)
	}
	return &releases, nil
}

func capSeeds(seeds []string) []string {
	if len(seeds) > 5 {
		return seeds[:5]
	}
	return seeds
}

func clampLimit(limit, fallback, ceiling int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}
