// Package spotify is a resilient client for the Spotify Web API.
//
// It owns the full token lifecycle (client-credentials, authorization
// code and refresh grants), and wraps every resource call in a uniform
// recovery contract: an expired token is refreshed exactly once per
// originating request, transient failures are retried within a small
// fixed budget, and batch lookups degrade to positional placeholders
// instead of errors. Higher layers only ever see terminal auth
// failures.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Spotify endpoints.
const (
	DefaultAuthURL  = "https://accounts.spotify.com/authorize"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	DefaultBaseURL  = "https://api.spotify.com/v1"
)

// Scopes requested during user authorization.
var Scopes = []string{
	"user-read-private",
	"user-read-email",
	"playlist-read-private",
	"playlist-read-collaborative",
	"user-top-read",
	"user-read-recently-played",
	"user-library-read",
}

const (
	defaultTimeout = 10 * time.Second

	// transientAttempts is the total attempt budget for a transient
	// failure: one try plus one retry.
	transientAttempts = 2

	// defaultRequestsPerSecond throttles outbound calls well below the
	// upstream rate limit.
	defaultRequestsPerSecond = 10
)

// TokenSaver persists a refreshed token so the session survives the
// process. The web session store implements it; nil disables saving.
type TokenSaver interface {
	SaveToken(ctx context.Context, token *oauth2.Token) error
}

// Config configures a Client.
type Config struct {
	ClientID     string
	ClientSecret string

	// HTTPClient defaults to a client with a 10s timeout.
	HTTPClient *http.Client

	// TokenURL and BaseURL override the Spotify endpoints, for tests.
	TokenURL string
	BaseURL  string

	// Saver, if set, is called after every successful refresh.
	Saver TokenSaver

	// RequestsPerSecond caps outbound request rate. Zero uses the default.
	RequestsPerSecond float64

	Logger *zap.Logger
}

// Client is an authenticated Spotify API session. A Client is owned by
// one caller context (one user, or the app-level client-credentials
// context); its token is mutated only by the refresh path, which is
// serialized internally.
type Client struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
	tokenURL     string
	baseURL      string
	saver        TokenSaver
	limiter      *rate.Limiter
	logger       *zap.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

// New creates a Client. The returned client holds no token; call
// AcquireClientCredentials, ExchangeCode or SetToken before making
// resource requests.
func New(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify: client id and secret are required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient,
		tokenURL:     tokenURL,
		baseURL:      baseURL,
		saver:        cfg.Saver,
		limiter:      rate.NewLimiter(rate.Limit(rps), 1),
		logger:       logger.Named("spotify"),
	}, nil
}

// SetToken installs an existing session token.
func (c *Client) SetToken(token *oauth2.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns a copy of the current session token, or nil.
func (c *Client) Token() *oauth2.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == nil {
		return nil
	}
	tok := *c.token
	return &tok
}

func (c *Client) currentToken() *oauth2.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// get performs an authenticated GET against a path relative to the API
// base, decoding the JSON response into out. Transient failures are
// retried once; a 401/403 triggers exactly one refresh-and-retry.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}
	return c.getURL(ctx, fullURL, out)
}

// getURL is get for absolute URLs, used when following pagination
// cursors returned by the upstream.
func (c *Client) getURL(ctx context.Context, fullURL string, out any) error {
	return c.withRetry(ctx, transientAttempts, func() error {
		return c.authorizedGet(ctx, fullURL, out)
	})
}

// authorizedGet performs one GET, allowing a single refresh-and-retry
// on an auth failure. A second auth failure is terminal: it surfaces as
// an AuthError and is never retried again, which keeps an invalid
// refresh token from looping.
func (c *Client) authorizedGet(ctx context.Context, fullURL string, out any) error {
	tok := c.currentToken()
	if tok == nil {
		return ErrNotAuthenticated
	}

	err := c.doGet(ctx, fullURL, tok.AccessToken, out)
	if !isAuthStatus(err) {
		return err
	}

	c.logger.Debug("auth failure, refreshing token once", zap.String("url", fullURL))
	refreshed, rerr := c.refreshAfter(ctx, tok)
	if rerr != nil {
		return rerr
	}

	err = c.doGet(ctx, fullURL, refreshed.AccessToken, out)
	if isAuthStatus(err) {
		var se *StatusError
		errors.As(err, &se)
		return &AuthError{Op: "request", Status: se.Status, Detail: "request rejected after token refresh"}
	}
	return err
}

// doGet performs a single HTTP round trip with the given bearer token.
func (c *Client) doGet(ctx context.Context, fullURL, accessToken string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{Status: resp.StatusCode, Path: req.URL.Path}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", req.URL.Path, err)
	}
	return nil
}

// withRetry runs fn up to attempts times, retrying only transient
// failures. When the budget is spent it returns the last error wrapped
// in ErrRetriesExhausted so callers can substitute placeholders.
func (c *Client) withRetry(ctx context.Context, attempts int, fn func() error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}
		c.logger.Warn("transient upstream failure",
			zap.Int("attempt", i+1),
			zap.Int("budget", attempts),
			zap.Error(lastErr))
	}
	return fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
}

// isAuthStatus reports whether err is a 401/403 resource response.
func isAuthStatus(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden
}
