package web

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/soundlens/spotify-pulse/internal/analytics"
	"github.com/soundlens/spotify-pulse/internal/spotify"
	"github.com/soundlens/spotify-pulse/internal/store"
	"github.com/soundlens/spotify-pulse/internal/trends"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	clientID     string
	clientSecret string
	redirectURI  string

	sessions  SessionManager
	users     *store.UserRepository
	analytics *analytics.Service
	trends    *trends.Service
	appClient *spotify.Client
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg ServerConfig, sessions SessionManager, users *store.UserRepository, analyticsSvc *analytics.Service, trendsSvc *trends.Service, appClient *spotify.Client, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		sessions:     sessions,
		users:        users,
		analytics:    analyticsSvc,
		trends:       trendsSvc,
		appClient:    appClient,
		logger:       logger,
	}
}

// userClient builds a Spotify client bound to one session's token.
// Tokens refreshed during the request are written back to the session.
func (h *Handlers) userClient(session *Session) (*spotify.Client, error) {
	client, err := spotify.New(spotify.Config{
		ClientID:     h.clientID,
		ClientSecret: h.clientSecret,
		Saver:        &sessionTokenSaver{sessions: h.sessions, sessionID: session.ID},
		Logger:       h.logger,
	})
	if err != nil {
		return nil, err
	}
	client.SetToken(session.Token)
	return client, nil
}

// Trends serves the public trend payload (GET /api/trends). It never
// hard-fails: a cached snapshot, a fresh synthesis, or the hardcoded
// fallback payload, in that order of preference.
func (h *Handlers) Trends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// The synthesizer runs under app-level credentials; without a token
	// every section simply falls back.
	if h.appClient.Token() == nil {
		if err := h.appClient.AcquireClientCredentials(ctx); err != nil {
			h.logger.Warn("app token acquisition failed", zap.Error(err))
		}
	}

	data, err := h.trends.Current(ctx)
	if err != nil {
		h.logger.Error("trend synthesis failed, serving fallback payload", zap.Error(err))
		respondJSON(w, http.StatusOK, trends.FallbackPayload())
		return
	}
	respondRawJSON(w, http.StatusOK, data)
}

// Analytics serves the personalized dashboard payload
// (GET /api/analytics). The response shape is fixed and the status is
// always 200; failed sections come back empty.
func (h *Handlers) Analytics(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		overview := analytics.EmptyOverview()
		overview.Error = "not authenticated"
		respondJSON(w, http.StatusOK, overview)
		return
	}

	client, err := h.userClient(session)
	if err != nil {
		h.logger.Error("building user client failed", zap.Error(err))
		overview := analytics.EmptyOverview()
		overview.Error = "service unavailable"
		respondJSON(w, http.StatusOK, overview)
		return
	}

	respondJSON(w, http.StatusOK, h.analytics.PersonalizedOverview(r.Context(), client))
}

// AggregateAnalytics rolls every stored playlist analysis for the user
// into one summary (GET /api/analytics/aggregate).
func (h *Handlers) AggregateAnalytics(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	agg, err := h.analytics.AggregateForUser(r.Context(), session.UserID)
	if err != nil {
		h.logger.Error("aggregate failed", zap.String("user_id", session.UserID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "aggregation failed")
		return
	}
	respondJSON(w, http.StatusOK, agg)
}

// RefreshPlaylist runs a fresh analysis for one playlist
// (POST /api/playlists/{playlistID}/refresh).
func (h *Handlers) RefreshPlaylist(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	playlistID := chi.URLParam(r, "playlistID")
	if playlistID == "" {
		respondError(w, http.StatusBadRequest, "playlist id required")
		return
	}

	client, err := h.userClient(session)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "service unavailable")
		return
	}

	result, err := h.analytics.RefreshPlaylistAnalysis(r.Context(), client, session.UserID, playlistID)
	if err != nil {
		var authErr *spotify.AuthError
		if errors.As(err, &authErr) {
			respondError(w, http.StatusUnauthorized, "spotify session expired")
			return
		}
		h.logger.Error("playlist refresh failed",
			zap.String("playlist_id", playlistID),
			zap.Error(err))
		respondError(w, http.StatusBadGateway, "playlist analysis failed")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// PlaylistAnalysis serves a previously stored analysis
// (GET /api/playlists/{playlistID}/analysis).
func (h *Handlers) PlaylistAnalysis(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	playlistID := chi.URLParam(r, "playlistID")

	result, err := h.analytics.StoredAnalysis(r.Context(), session.UserID, playlistID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "playlist not analyzed yet")
		return
	}
	if err != nil {
		h.logger.Error("stored analysis lookup failed",
			zap.String("playlist_id", playlistID),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "analysis lookup failed")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Me returns the authenticated user's identity (GET /api/me).
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"id":   session.UserID,
		"name": session.UserName,
	})
}

// Login initiates the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateOAuthState()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate state")
		return
	}

	// State cookie is validated on callback.
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})

	client, err := spotify.New(spotify.Config{
		ClientID:     h.clientID,
		ClientSecret: h.clientSecret,
		Logger:       h.logger,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "service unavailable")
		return
	}
	http.Redirect(w, r, client.AuthCodeURL(h.redirectURI, state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing state cookie")
		return
	}
	if state := r.URL.Query().Get("state"); state != stateCookie.Value {
		respondError(w, http.StatusBadRequest, "state mismatch")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("spotify auth error: %s", errMsg))
		return
	}

	client, err := spotify.New(spotify.Config{
		ClientID:     h.clientID,
		ClientSecret: h.clientSecret,
		Logger:       h.logger,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "service unavailable")
		return
	}

	token, err := client.ExchangeCode(r.Context(), r.URL.Query().Get("code"), h.redirectURI)
	if err != nil {
		h.logger.Error("code exchange failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to get token")
		return
	}

	user, err := client.CurrentUser(r.Context())
	if err != nil {
		h.logger.Error("fetching user profile failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to get user info")
		return
	}

	if err := h.users.Upsert(r.Context(), &store.User{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	}); err != nil {
		h.logger.Error("storing user failed", zap.String("user_id", user.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to store user")
		return
	}

	session, err := h.sessions.Create(r.Context(), token, user.ID, user.DisplayName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	h.sessions.SetCookie(w, session)

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Logout clears the session (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessions.GetFromRequest(r); session != nil {
		h.sessions.Delete(r.Context(), session.ID)
	}
	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// generateOAuthState creates a random state string for OAuth.
func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ============================================================================
// Response Helpers
// ============================================================================

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondRawJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
