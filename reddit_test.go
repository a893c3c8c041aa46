package redditmcp_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	redditmcp "github.com/jamesprial/go-reddit-mcp"
	"github.com/jamesprial/go-reddit-mcp/internal"
	pkgerrs "github.com/jamesprial/go-reddit-mcp/pkg/errors"
	"github.com/jamesprial/go-reddit-mcp/pkg/query"
	"github.com/jamesprial/go-reddit-mcp/pkg/types"
	"github.com/jamesprial/go-reddit-mcp/test_helpers"
)

func TestCredentialsFrom(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		want     redditmcp.Credentials
		wantMode redditmcp.AuthMode
		wantErr  bool
	}{
		{
			name:     "none",
			values:   []string{"", "", ""},
			wantMode: redditmcp.AuthAnonymous,
		},
		{
			name:     "single value is a bearer token",
			values:   []string{"", "tok", ""},
			want:     redditmcp.Credentials{AccessToken: "tok"},
			wantMode: redditmcp.AuthStaticToken,
		},
		{
			name:     "two values are client credentials",
			values:   []string{"id", "secret", ""},
			want:     redditmcp.Credentials{ClientID: "id", ClientSecret: "secret"},
			wantMode: redditmcp.AuthClientCredentials,
		},
		{
			name:     "gaps are closed positionally",
			values:   []string{"id", "", "refresh"},
			want:     redditmcp.Credentials{ClientID: "id", ClientSecret: "refresh"},
			wantMode: redditmcp.AuthClientCredentials,
		},
		{
			name:     "three values use the refresh grant",
			values:   []string{"id", "secret", "refresh"},
			want:     redditmcp.Credentials{ClientID: "id", ClientSecret: "secret", RefreshToken: "refresh"},
			wantMode: redditmcp.AuthRefreshToken,
		},
		{
			name:    "too many values",
			values:  []string{"a", "b", "c", "d"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := redditmcp.CredentialsFrom(tt.values...)
			if tt.wantErr {
				var configErr *pkgerrs.ConfigError
				if !errors.As(err, &configErr) {
					t.Fatalf("expected ConfigError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CredentialsFrom() = %+v, want %+v", got, tt.want)
			}
			if got.Mode() != tt.wantMode {
				t.Errorf("Mode() = %v, want %v", got.Mode(), tt.wantMode)
			}
		})
	}
}

func TestAuthModeString(t *testing.T) {
	tests := map[redditmcp.AuthMode]string{
		redditmcp.AuthAnonymous:         "anonymous",
		redditmcp.AuthStaticToken:       "static_token",
		redditmcp.AuthClientCredentials: "client_credentials",
		redditmcp.AuthRefreshToken:      "refresh_token",
	}
	for mode, want := range tests {
		if got := mode.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", mode, got, want)
		}
	}
}

func TestNewClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config *redditmcp.Config
	}{
		{name: "nil config", config: nil},
		{name: "header injection in user agent", config: &redditmcp.Config{UserAgent: "a\nb"}},
		{name: "bad public url", config: &redditmcp.Config{PublicURL: "://bad"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := redditmcp.NewClient(tt.config)
			var configErr *pkgerrs.ConfigError
			if !errors.As(err, &configErr) {
				t.Errorf("expected ConfigError, got %v", err)
			}
		})
	}
}

func TestNewClient_DoesNotMutateConfig(t *testing.T) {
	cfg := &redditmcp.Config{}
	if _, err := redditmcp.NewClient(cfg); err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if cfg.UserAgent != "" || cfg.BaseURL != "" || cfg.HTTPClient != nil {
		t.Errorf("caller's config was modified: %+v", cfg)
	}
}

func TestClient_HotAuthenticated(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.SetJSON("/r/golang/hot", test_helpers.Listing("",
		test_helpers.PostThing(map[string]any{"id": "a", "title": "First", "score": 10}),
		test_helpers.PostThing(map[string]any{"id": "b", "title": "Second", "score": 5}),
	))

	client := test_helpers.NewTestClient(t, ms, test_helpers.AppCredentials())
	if client.Mode() != redditmcp.AuthClientCredentials {
		t.Fatalf("Mode() = %v", client.Mode())
	}

	posts, err := internal.Collect(client.Hot(context.Background(), "golang", 10))
	if err != nil {
		t.Fatalf("Hot returned error: %v", err)
	}
	if len(posts) != 2 || posts[0].Title != "First" || posts[1].Title != "Second" {
		t.Fatalf("unexpected posts: %+v", posts)
	}

	req, err := ms.LastRequest("/r/golang/hot")
	if err != nil {
		t.Fatal(err)
	}
	if got := req.Headers.Get("Authorization"); got != "Bearer mock_token" {
		t.Errorf("Authorization = %q", got)
	}
	if got := req.Query.Get("limit"); got != "10" {
		t.Errorf("limit = %q, want 10", got)
	}
	if got := req.Query.Get("raw_json"); got != "1" {
		t.Errorf("raw_json = %q, want 1", got)
	}
	if got := ms.CallCount(test_helpers.TokenPath); got != 1 {
		t.Errorf("token requests = %d, want 1", got)
	}
	if !client.IsConnected() {
		t.Error("client should be connected after a successful request")
	}
}

func TestClient_HotPaginates(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()

	ms.SetResponseFunc("/r/golang/hot", func(r *http.Request) *test_helpers.MockResponse {
		start := 0
		if after := r.URL.Query().Get("after"); after != "" {
			fmt.Sscanf(after, "t3_p%d", &start)
			start++
		}
		var children []string
		var last int
		for i := start; i < start+100 && i < 150; i++ {
			children = append(children, test_helpers.PostThing(map[string]any{"id": fmt.Sprintf("p%d", i)}))
			last = i
		}
		after := ""
		if last < 149 {
			after = fmt.Sprintf("t3_p%d", last)
		}
		return &test_helpers.MockResponse{Status: http.StatusOK, Body: test_helpers.Listing(after, children...)}
	})

	client := test_helpers.NewTestClient(t, ms, test_helpers.AppCredentials())
	posts, err := internal.Collect(client.Hot(context.Background(), "golang", 120))
	if err != nil {
		t.Fatalf("Hot returned error: %v", err)
	}
	if len(posts) != 120 {
		t.Fatalf("posts = %d, want 120", len(posts))
	}
	if posts[119].ID != "p119" {
		t.Errorf("last post = %s, want p119", posts[119].ID)
	}

	reqs := ms.Requests("/r/golang/hot")
	if len(reqs) != 2 {
		t.Fatalf("page requests = %d, want 2", len(reqs))
	}
	if reqs[1].Query.Get("after") != "t3_p99" || reqs[1].Query.Get("limit") != "20" {
		t.Errorf("second page query = %v", reqs[1].Query)
	}
}

func TestClient_Anonymous(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.SetJSON("/r/golang/hot.json", test_helpers.Listing("",
		test_helpers.PostThing(map[string]any{"id": "a", "title": "Public"}),
	))

	client := test_helpers.NewTestClient(t, ms, redditmcp.Credentials{})
	if client.Mode() != redditmcp.AuthAnonymous {
		t.Fatalf("Mode() = %v", client.Mode())
	}

	posts, err := internal.Collect(client.Hot(context.Background(), "golang", 5))
	if err != nil {
		t.Fatalf("Hot returned error: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("posts = %d", len(posts))
	}

	req, _ := ms.LastRequest("/r/golang/hot.json")
	if req.Headers.Get("Authorization") != "" {
		t.Error("anonymous request carried an Authorization header")
	}
	if ms.CallCount(test_helpers.TokenPath) != 0 {
		t.Error("anonymous client requested a token")
	}
}

func TestClient_StaticToken(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.SetJSON("/subreddits/popular", test_helpers.Listing(""))

	client := test_helpers.NewTestClient(t, ms, redditmcp.Credentials{AccessToken: "preissued"})
	if _, err := internal.Collect(client.PopularSubreddits(context.Background(), 3)); err != nil {
		t.Fatalf("PopularSubreddits returned error: %v", err)
	}

	req, _ := ms.LastRequest("/subreddits/popular")
	if got := req.Headers.Get("Authorization"); got != "Bearer preissued" {
		t.Errorf("Authorization = %q", got)
	}
	if ms.CallCount(test_helpers.TokenPath) != 0 {
		t.Error("static token client requested a token")
	}
}

func TestClient_RefreshTokenGrant(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()

	client := test_helpers.NewTestClient(t, ms, redditmcp.Credentials{
		ClientID: "id", ClientSecret: "secret", RefreshToken: "refresh-me",
	})
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}

	req, err := ms.LastRequest(test_helpers.TokenPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(req.Body, "grant_type=refresh_token") || !strings.Contains(req.Body, "refresh_token=refresh-me") {
		t.Errorf("unexpected token form: %q", req.Body)
	}
}

func TestClient_ConnectRetriesAfterAuthFailure(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()

	var fail atomic.Bool
	fail.Store(true)
	ms.SetResponseFunc(test_helpers.TokenPath, func(r *http.Request) *test_helpers.MockResponse {
		if fail.Load() {
			return &test_helpers.MockResponse{Status: http.StatusUnauthorized, Body: `{"error":"invalid_client"}`}
		}
		return &test_helpers.MockResponse{Status: http.StatusOK, Body: `{"access_token":"late","expires_in":3600}`}
	})

	client := test_helpers.NewTestClient(t, ms, test_helpers.AppCredentials())
	err := client.Connect(context.Background())
	var authErr *pkgerrs.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if client.IsConnected() {
		t.Fatal("client reports connected after a failed token request")
	}

	fail.Store(false)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect returned error: %v", err)
	}
	if !client.IsConnected() {
		t.Error("client should be connected")
	}
}

func TestClient_Submission(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()

	ms.SetResponseFunc("/api/info", func(r *http.Request) *test_helpers.MockResponse {
		if r.URL.Query().Get("id") != "t3_abc" {
			return &test_helpers.MockResponse{Status: http.StatusOK, Body: test_helpers.Listing("")}
		}
		return &test_helpers.MockResponse{Status: http.StatusOK, Body: test_helpers.Listing("",
			test_helpers.PostThing(map[string]any{"id": "abc", "title": "Found it", "is_self": true, "selftext": "hi"}),
		)}
	})

	client := test_helpers.NewTestClient(t, ms, test_helpers.AppCredentials())

	post, err := client.Submission(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Submission returned error: %v", err)
	}
	if post.Title != "Found it" || !post.IsSelf {
		t.Errorf("unexpected post: %+v", post)
	}

	_, err = client.Submission(context.Background(), "missing")
	var notFound *pkgerrs.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.ID != "missing" {
		t.Errorf("NotFoundError.ID = %q", notFound.ID)
	}
}

func TestClient_RejectsBadArgumentsWithoutRequests(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	client := test_helpers.NewTestClient(t, ms, test_helpers.AppCredentials())
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"submission id", func() error { _, err := client.Submission(ctx, "../x"); return err }},
		{"comment tree id", func() error { _, err := client.CommentTree(ctx, "", "best", 10); return err }},
		{"hot subreddit", func() error { _, err := internal.Collect(client.Hot(ctx, "r/golang", 5)); return err }},
		{"search scope", func() error {
			_, err := internal.Collect(client.Search(ctx, query.Call{Subreddit: "a+", Query: "x", Limit: 5}))
			return err
		}},
		{"username", func() error { _, err := internal.Collect(client.UserComments(ctx, "u/spez", 5)); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var configErr *pkgerrs.ConfigError
			if !errors.As(err, &configErr) {
				t.Errorf("expected ConfigError, got %v", err)
			}
		})
	}
	if n := len(ms.Requests("")); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestClient_CommentTree(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.SetJSON("/comments/abc", test_helpers.CommentsResponse(
		test_helpers.PostThing(map[string]any{"id": "abc"}),
		test_helpers.CommentThing(map[string]any{"id": "c1", "author": "alice", "body": "top", "score": 3},
			test_helpers.CommentThing(map[string]any{"id": "c2", "author": "bob", "body": "reply", "score": 1}),
			test_helpers.MoreThing("c9"),
		),
		test_helpers.CommentThing(map[string]any{"id": "c3", "author": "[deleted]", "body": "[removed]"}),
	))

	client := test_helpers.NewTestClient(t, ms, test_helpers.AppCredentials())
	tree, err := client.CommentTree(context.Background(), "abc", "top", 50)
	if err != nil {
		t.Fatalf("CommentTree returned error: %v", err)
	}
	if tree.Count() != 3 || tree.Depth() != 2 {
		t.Errorf("Count=%d Depth=%d, want 3 and 2", tree.Count(), tree.Depth())
	}

	req, _ := ms.LastRequest("/comments/abc")
	if req.Query.Get("sort") != "top" || req.Query.Get("limit") != "50" {
		t.Errorf("query = %v", req.Query)
	}
}

func TestClient_CommentTreeMalformed(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.SetJSON("/comments/abc", `{"kind":"Listing"}`)

	client := test_helpers.NewTestClient(t, ms, test_helpers.AppCredentials())
	_, err := client.CommentTree(context.Background(), "abc", "", 0)
	var parseErr *pkgerrs.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestClient_Search(t *testing.T) {
	tests := []struct {
		name           string
		call           query.Call
		wantPath       string
		wantRestrictSR string
	}{
		{
			name:     "unscoped",
			call:     query.Call{Query: "golang generics", Sort: "relevance", Time: "all", Limit: 25},
			wantPath: "/search",
		},
		{
			name:           "single subreddit",
			call:           query.Call{Subreddit: "golang", Query: "generics", Sort: "hot", Time: "week", Limit: 25},
			wantPath:       "/r/golang/search",
			wantRestrictSR: "1",
		},
		{
			name:           "subreddit set",
			call:           query.Call{Subreddit: "golang+rust", Query: "async", Sort: "top", Time: "month", Limit: 5},
			wantPath:       "/r/golang+rust/search",
			wantRestrictSR: "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := test_helpers.NewMockServer()
			defer ms.Close()
			ms.SetJSON(tt.wantPath, test_helpers.Listing("",
				test_helpers.PostThing(map[string]any{"id": "s1", "title": "hit"}),
			))

			client := test_helpers.NewTestClient(t, ms, test_helpers.AppCredentials())
			posts, err := internal.Collect(client.Search(context.Background(), tt.call))
			if err != nil {
				t.Fatalf("Search returned error: %v", err)
			}
			if len(posts) != 1 {
				t.Fatalf("posts = %d", len(posts))
			}

			req, err := ms.LastRequest(tt.wantPath)
			if err != nil {
				t.Fatal(err)
			}
			q := req.Query
			if q.Get("q") != tt.call.Query || q.Get("sort") != tt.call.Sort || q.Get("t") != tt.call.Time {
				t.Errorf("query = %v", q)
			}
			if q.Get("type") != "link" {
				t.Errorf("type = %q, want link", q.Get("type"))
			}
			if q.Get("restrict_sr") != tt.wantRestrictSR {
				t.Errorf("restrict_sr = %q, want %q", q.Get("restrict_sr"), tt.wantRestrictSR)
			}
			if q.Get("limit") != fmt.Sprint(tt.call.Limit) {
				t.Errorf("limit = %q", q.Get("limit"))
			}
		})
	}
}

func TestClient_UserContent(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.SetJSON("/user/spez/submitted", test_helpers.Listing("",
		test_helpers.PostThing(map[string]any{"id": "p1", "title": "announcement"}),
	))
	ms.SetJSON("/user/spez/comments", test_helpers.Listing("",
		test_helpers.CommentThing(map[string]any{"id": "c1", "body": "hello", "link_id": "t3_p1"}),
		test_helpers.CommentThing(map[string]any{"id": "c2", "body": "again", "link_id": "t3_p2"}),
	))

	client := test_helpers.NewTestClient(t, ms, test_helpers.AppCredentials())
	ctx := context.Background()

	posts, err := internal.Collect(client.UserSubmitted(ctx, "spez", 25))
	if err != nil || len(posts) != 1 {
		t.Fatalf("UserSubmitted = %v, %v", posts, err)
	}

	comments, err := internal.Collect(client.UserComments(ctx, "spez", 25))
	if err != nil {
		t.Fatalf("UserComments returned error: %v", err)
	}
	if len(comments) != 2 || comments[1].LinkID != "t3_p2" {
		t.Errorf("unexpected comments: %+v", comments)
	}
}

func TestClient_PopularSubreddits(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.SetJSON("/subreddits/popular", test_helpers.Listing("t5_x",
		test_helpers.SubredditThing("AskReddit"),
		test_helpers.SubredditThing("funny"),
		test_helpers.SubredditThing("gaming"),
	))

	client := test_helpers.NewTestClient(t, ms, test_helpers.AppCredentials())
	subs, err := internal.Collect(client.PopularSubreddits(context.Background(), 2))
	if err != nil {
		t.Fatalf("PopularSubreddits returned error: %v", err)
	}
	if len(subs) != 2 || subs[0].DisplayName != "AskReddit" || subs[1].DisplayName != "funny" {
		t.Errorf("unexpected subreddits: %+v", subs)
	}
	if ms.CallCount("/subreddits/popular") != 1 {
		t.Errorf("expected a single page request once the limit was reached")
	}
}

func TestClient_APIError(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()
	ms.SetResponse("/r/private/hot", &test_helpers.MockResponse{
		Status: http.StatusForbidden,
		Body:   `{"reason":"private","message":"Forbidden","error":403}`,
	})

	client := test_helpers.NewTestClient(t, ms, test_helpers.AppCredentials())
	it := client.Hot(context.Background(), "private", 10)
	if !it.HasNext() {
		t.Fatal("HasNext should report the pending error")
	}
	_, err := it.Next()

	var apiErr *pkgerrs.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden || apiErr.ErrorCode != "private" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
	if !pkgerrs.IsUpstream(err) {
		t.Error("API errors are upstream errors")
	}
}

func TestClient_ZeroLimitMakesNoRequest(t *testing.T) {
	ms := test_helpers.NewMockServer()
	defer ms.Close()

	client := test_helpers.NewTestClient(t, ms, test_helpers.AppCredentials())
	var it types.Iterator[*types.Post] = client.Hot(context.Background(), "golang", 0)
	if it.HasNext() {
		t.Error("zero limit should yield nothing")
	}
	if n := len(ms.Requests("")); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}
