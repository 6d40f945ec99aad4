package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// tokenResponse is the token endpoint's response for every grant type.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// Endpoint is the oauth2 endpoint pair for Spotify.
var Endpoint = oauth2.Endpoint{
	AuthURL:  DefaultAuthURL,
	TokenURL: DefaultTokenURL,
}

// AuthCodeURL builds the user authorization URL for the given redirect
// URI and CSRF state.
func (c *Client) AuthCodeURL(redirectURI, state string) string {
	conf := &oauth2.Config{
		ClientID:    c.clientID,
		RedirectURL: redirectURI,
		Scopes:      Scopes,
		Endpoint:    Endpoint,
	}
	return conf.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// AcquireClientCredentials exchanges the client id/secret for an
// app-level bearer token suitable for public catalog data. The
// resulting session has no refresh token.
func (c *Client) AcquireClientCredentials(ctx context.Context) error {
	form := url.Values{"grant_type": {"client_credentials"}}

	tr, err := c.postToken(ctx, "client_credentials", form)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.token = tr.toToken("")
	c.mu.Unlock()

	c.logger.Debug("acquired client-credentials token")
	return nil
}

// ExchangeCode exchanges a one-time authorization code for access and
// refresh tokens and installs them as the client's session.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}

	tr, err := c.postToken(ctx, "exchange_code", form)
	if err != nil {
		return nil, err
	}

	token := tr.toToken("")
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	c.logger.Debug("exchanged authorization code",
		zap.Bool("has_refresh_token", token.RefreshToken != ""))
	return token, nil
}

// Refresh obtains a new access token using the stored refresh token.
// Failure here is terminal for the session: a rejected refresh token is
// never retried.
func (c *Client) Refresh(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

// refreshAfter serializes refresh attempts for the session. If another
// in-flight request already replaced the token used by the failed
// request, the new token is reused instead of refreshing again.
func (c *Client) refreshAfter(ctx context.Context, used *oauth2.Token) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && c.token.AccessToken != used.AccessToken {
		return c.token, nil
	}
	return c.refreshLocked(ctx)
}

// refreshLocked performs the refresh grant. Callers hold c.mu.
func (c *Client) refreshLocked(ctx context.Context) (*oauth2.Token, error) {
	if c.token == nil || c.token.RefreshToken == "" {
		return nil, &AuthError{Op: "refresh", Detail: "no refresh token held", Err: ErrNoRefreshToken}
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.token.RefreshToken},
	}

	tr, err := c.postToken(ctx, "refresh", form)
	if err != nil {
		return nil, err
	}

	// The upstream may rotate the refresh token; when it does, the new
	// one replaces the old one.
	token := tr.toToken(c.token.RefreshToken)
	c.token = token

	if c.saver != nil {
		if serr := c.saver.SaveToken(ctx, token); serr != nil {
			c.logger.Warn("persisting refreshed token failed", zap.Error(serr))
		}
	}

	c.logger.Info("refreshed access token",
		zap.Time("expires_at", token.Expiry),
		zap.Bool("rotated_refresh_token", tr.RefreshToken != ""))
	return token, nil
}

// postToken POSTs a form to the token endpoint with HTTP Basic
// credentials. Any non-200 response is an AuthError.
func (c *Client) postToken(ctx context.Context, op string, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{Op: op, Status: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, &AuthError{Op: op, Detail: "token response missing access_token"}
	}
	return &tr, nil
}

// toToken converts the wire response into an oauth2.Token with an
// absolute expiry. fallbackRefresh is kept when the upstream does not
// rotate the refresh token.
func (tr *tokenResponse) toToken(fallbackRefresh string) *oauth2.Token {
	refresh := tr.RefreshToken
	if refresh == "" {
		refresh = fallbackRefresh
	}

	var expiry time.Time
	if tr.ExpiresIn > 0 {
		expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	return &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: refresh,
		Expiry:       expiry,
	}
}
