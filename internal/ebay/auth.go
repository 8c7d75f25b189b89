package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	tokenPath = "/identity/v1/oauth2/token"
	apiScope  = "https://api.ebay.com/oauth/api_scope"

	// refreshBuffer re-issues a token this long before it expires.
	refreshBuffer = 5 * time.Minute
)

// OAuthConfig holds eBay OAuth configuration
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	Sandbox      bool
	BaseURL      string // overrides the API host, for tests
	HTTPClient   *http.Client
}

// OAuthToken represents an eBay OAuth token
type OAuthToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int       `json:"expires_in"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"-"`
}

// TokenSource issues application tokens with the client credentials grant.
// A token is requested on first use and again when it is within five
// minutes of expiry. It is safe for concurrent use.
type TokenSource struct {
	config     OAuthConfig
	tokenURL   string
	httpClient *http.Client
	now        func() time.Time

	mu    sync.Mutex
	token *OAuthToken
}

// NewTokenSource creates a token source. No request is made until Token.
func NewTokenSource(config OAuthConfig) *TokenSource {
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &TokenSource{
		config:     config,
		tokenURL:   apiBaseURL(config.Sandbox, config.BaseURL) + tokenPath,
		httpClient: client,
		now:        time.Now,
	}
}

// Configured reports whether credentials are present.
func (s *TokenSource) Configured() bool {
	return s != nil && s.config.ClientID != "" && s.config.ClientSecret != ""
}

// Token returns a valid access token, requesting a new one if necessary.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && s.now().Add(refreshBuffer).Before(s.token.ExpiresAt) {
		return s.token.AccessToken, nil
	}

	token, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	return token.AccessToken, nil
}

// Invalidate drops the cached token so the next call re-issues one.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
}

func (s *TokenSource) fetch(ctx context.Context) (*OAuthToken, error) {
	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("scope", apiScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	auth := base64.StdEncoding.EncodeToString([]byte(s.config.ClientID + ":" + s.config.ClientSecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token request failed (%d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	var token OAuthToken
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response has no access_token")
	}

	token.ExpiresAt = s.now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return &token, nil
}

func apiBaseURL(sandbox bool, override string) string {
	if override != "" {
		return strings.TrimRight(override, "/")
	}
	if sandbox {
		return "https://api.sandbox.ebay.com"
	}
	return "https://api.ebay.com"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
