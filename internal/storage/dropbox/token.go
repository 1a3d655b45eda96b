package dropbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"casedesk/internal/config"
)

const tokenURL = "https://api.dropboxapi.com/oauth2/token"

// expirySkew refreshes tokens slightly before the provider-reported expiry.
const expirySkew = 2 * time.Minute

// tokenSource hands out a valid access token, refreshing via the OAuth token
// endpoint when the cached one is near expiry. All state lives behind the
// mutex; there is no module-level token.
type tokenSource struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time // zero for static tokens

	appKey       string
	appSecret    string
	refreshToken string
	endpoint     string
	client       *http.Client
}

func newTokenSource(cfg *config.DropboxConfig, client *http.Client) *tokenSource {
	return &tokenSource{
		token:        cfg.AccessToken,
		appKey:       cfg.AppKey,
		appSecret:    cfg.AppSecret,
		refreshToken: cfg.RefreshToken,
		endpoint:     tokenURL,
		client:       client,
	}
}

// Token returns a valid access token, refreshing if needed.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.refreshToken == "" {
		if ts.token == "" {
			return "", fmt.Errorf("dropbox: no access token or refresh token configured")
		}
		return ts.token, nil
	}

	if ts.token != "" && time.Now().Before(ts.expiresAt.Add(-expirySkew)) {
		return ts.token, nil
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {ts.refreshToken},
		"client_id":     {ts.appKey},
		"client_secret": {ts.appSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("refreshing dropbox token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dropbox token endpoint error (status %d): %s", resp.StatusCode, string(body))
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("dropbox token endpoint returned empty access token")
	}

	ts.token = tr.AccessToken
	ts.expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return ts.token, nil
}
