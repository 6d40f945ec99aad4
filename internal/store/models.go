package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User is a Spotify user known to this service.
type User struct {
	ID             string
	DisplayName    string
	Email          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastAnalyzedAt *time.Time // nullable
}

// Session is an authenticated web session carrying the user's OAuth
// tokens. TokenExpiry is an absolute timestamp.
type Session struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// PlaylistAnalysis is one stored analysis. At most one row exists per
// (playlist_id, user_id); a repeat analysis overwrites in place.
type PlaylistAnalysis struct {
	PlaylistID      string
	UserID          string
	Name            string
	AnalysisData    json.RawMessage
	TrackCount      int
	TotalDurationMS int64
	LastUpdated     time.Time
	CreatedAt       time.Time
}

// TrendSnapshot is one stored public trend payload. At most one row per
// trend type is active at any time.
type TrendSnapshot struct {
	ID         uuid.UUID
	TrendType  string
	TrendData  json.RawMessage
	CreatedAt  time.Time
	ValidUntil time.Time
	IsActive   bool
}
