package spotify

// Wire types for the subset of the Spotify Web API this service
// consumes. Field sets follow the documented response shapes; anything
// we never read is left out.

// User is the current user's profile.
type User struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email"`
	Images      []Image `json:"images"`
}

// Image is an image resource attached to users, artists and albums.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// ArtistRef is the lightweight artist object embedded in tracks and albums.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Artist is a full artist record.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
	Images     []Image  `json:"images"`
}

// Album carries the release metadata the analysis pipeline reads.
type Album struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ReleaseDate string      `json:"release_date"`
	Artists     []ArtistRef `json:"artists"`
	Images      []Image     `json:"images"`
}

// Track is a full track record.
type Track struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Artists    []ArtistRef `json:"artists"`
	Album      Album       `json:"album"`
	DurationMS int64       `json:"duration_ms"`
	Popularity int         `json:"popularity"`
}

// AudioFeatures is the fixed numeric descriptor vector for one track.
// Key is a pitch class in [0..11]; Mode is 1 for major, 0 for minor.
type AudioFeatures struct {
	ID               string  `json:"id"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Key              int     `json:"key"`
	Mode             int     `json:"mode"`
	Loudness         float64 `json:"loudness"`
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	TimeSignature    int     `json:"time_signature"`
}

// Playlist is a playlist with its first page of tracks embedded.
type Playlist struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Owner  PlaylistOwner     `json:"owner"`
	Images []Image           `json:"images"`
	Tracks PlaylistTrackPage `json:"tracks"`
}

// PlaylistOwner identifies the owning user.
type PlaylistOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// PlaylistItem wraps a track inside a playlist. Track is nil for
// deleted or unavailable items.
type PlaylistItem struct {
	Track *Track `json:"track"`
}

// PlaylistTrackPage is one page of a playlist's tracks.
type PlaylistTrackPage struct {
	Items []PlaylistItem `json:"items"`
	Next  *string        `json:"next"`
	Total int            `json:"total"`
}

// SimplePlaylist is the playlist object returned by list endpoints.
type SimplePlaylist struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

// PlaylistPage is one page of the current user's playlists.
type PlaylistPage struct {
	Items []SimplePlaylist `json:"items"`
	Next  *string          `json:"next"`
	Total int              `json:"total"`
}

// PlayHistoryItem is one entry of the recently-played feed.
type PlayHistoryItem struct {
	Track    *Track `json:"track"`
	PlayedAt string `json:"played_at"`
}

// RecentlyPlayed is the recently-played response.
type RecentlyPlayed struct {
	Items []PlayHistoryItem `json:"items"`
}

// TopArtists is the top-artists response.
type TopArtists struct {
	Items []Artist `json:"items"`
}

// Recommendations is the recommendations response.
type Recommendations struct {
	Tracks []Track `json:"tracks"`
}

// NewReleases is the new-releases response.
type NewReleases struct {
	Albums struct {
		Items []Album `json:"items"`
		Next  *string `json:"next"`
	} `json:"albums"`
}
