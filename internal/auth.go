package internal

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

	pkgerrs "github.com/jamesprial/go-reddit-mcp/pkg/errors"
)

const (
	defaultTokenEndpointPath = "api/v1/access_token"

	GrantClientCredentials = "client_credentials"
	GrantRefreshToken      = "refresh_token"

	// tokenExpirySkew renews tokens slightly before Reddit expires them.
	tokenExpirySkew = 60 * time.Second
)

// Authenticator retrieves and caches OAuth2 access tokens from Reddit.
type Authenticator struct {
	client       *http.Client
	clientID     string
	clientSecret string
	userAgent    string
	BaseURL      *url.URL
	tokenURL     *url.URL
	formData     url.Values

	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

// NewAuthenticator creates a new authenticator. A non-empty refreshToken
// selects the refresh_token grant; otherwise the client_credentials grant is
// used. The tokenPath parameter can be empty to use Reddit's token endpoint.
func NewAuthenticator(httpClient *http.Client, clientID, clientSecret, refreshToken, userAgent, baseURL, tokenPath string) (*Authenticator, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &pkgerrs.AuthError{Message: "failed to parse base URL", Err: err}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	if tokenPath == "" {
		tokenPath = defaultTokenEndpointPath
	}

	resolvedTokenURL, err := parsedURL.Parse(tokenPath)
	if err != nil {
		return nil, &pkgerrs.AuthError{Message: "failed to parse token endpoint path", Err: err}
	}

	form := url.Values{}
	if refreshToken != "" {
		form.Set("grant_type", GrantRefreshToken)
		form.Set("refresh_token", refreshToken)
	} else {
		form.Set("grant_type", GrantClientCredentials)
	}

	return &Authenticator{
		client:       httpClient,
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		BaseURL:      parsedURL,
		tokenURL:     resolvedTokenURL,
		formData:     form,
		now:          time.Now,
	}, nil
}

// GrantType reports the OAuth2 grant the authenticator uses.
func (a *Authenticator) GrantType() string {
	return a.formData.Get("grant_type")
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// GetToken returns a cached access token, requesting a new one when none is
// cached or the cached one is about to expire.
func (a *Authenticator) GetToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && a.now().Before(a.expires) {
		return a.token, nil
	}

	token, expiresIn, err := a.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	a.token = token
	a.expires = a.now().Add(tokenLifetime(expiresIn))
	return token, nil
}

// tokenLifetime is how long a token is reused. The skew only applies to
// lifetimes long enough to absorb it; a missing expires_in gets one skew
// period so the token is still reused.
func tokenLifetime(expiresIn int) time.Duration {
	lifetime := time.Duration(expiresIn) * time.Second
	switch {
	case lifetime <= 0:
		return tokenExpirySkew
	case lifetime > 2*tokenExpirySkew:
		return lifetime - tokenExpirySkew
	default:
		return lifetime
	}
}

func (a *Authenticator) fetchToken(ctx context.Context) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL.String(), strings.NewReader(a.formData.Encode()))
	if err != nil {
		return "", 0, &pkgerrs.AuthError{Message: "failed to create token request", Err: err}
	}

	req.SetBasicAuth(a.clientID, a.clientSecret)
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", 0, &pkgerrs.AuthError{Message: "failed to execute token request", Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Message:    "failed to read response body",
			Err:        err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return "", 0, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
		}
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(bodyBytes, &tokenResp); err != nil {
		return "", 0, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
			Message:    "failed to unmarshal token response",
			Err:        err,
		}
	}

	// Reddit reports grant failures with a 200 and an "error" field.
	if tokenResp.AccessToken == "" {
		return "", 0, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
			Err:        fmt.Errorf("access token was empty in response"),
		}
	}

	return tokenResp.AccessToken, tokenResp.ExpiresIn, nil
}

// StaticToken is a TokenSource for a pre-issued bearer token.
type StaticToken string

// GetToken returns the token unchanged.
func (s StaticToken) GetToken(context.Context) (string, error) {
	return string(s), nil
}
