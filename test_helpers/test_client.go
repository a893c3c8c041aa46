package test_helpers

import (
	"testing"

	redditmcp "github.com/jamesprial/go-reddit-mcp"
)

// NewTestClient creates a Reddit client pointed at ms. Authenticated modes
// use ms for both the API and the token endpoint; the anonymous mode uses it
// as the public site. The rate limiter is opened up so tests never wait.
func NewTestClient(t testing.TB, ms *MockServer, creds redditmcp.Credentials) *redditmcp.Client {
	t.Helper()

	client, err := redditmcp.NewClient(&redditmcp.Config{
		Credentials: creds,
		UserAgent:   "test-client/1.0",
		BaseURL:     ms.URL(),
		AuthURL:     ms.URL(),
		PublicURL:   ms.URL(),
		HTTPClient:  ms.Client(),
		RateLimit:   redditmcp.RateLimitConfig{RequestsPerMinute: 1e6, Burst: 1000},
	})
	if err != nil {
		t.Fatalf("failed to create reddit client: %v", err)
	}
	return client
}

// AppCredentials are client-credentials grant values for tests.
func AppCredentials() redditmcp.Credentials {
	return redditmcp.Credentials{ClientID: "test_client_id", ClientSecret: "test_client_secret"}
}
