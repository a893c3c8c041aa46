package test_helpers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"
)

// TokenPath is the OAuth token endpoint served by every mock server.
const TokenPath = "/api/v1/access_token"

// MockServer provides a configurable mock Reddit API server for testing
type MockServer struct {
	server *httptest.Server

	mu         sync.RWMutex
	responses  map[string]ResponseFunc
	fallback   *MockResponse
	requestLog []RequestEntry
}

// RequestEntry logs incoming requests for assertions
type RequestEntry struct {
	Method    string
	Path      string
	Query     url.Values
	Headers   http.Header
	Body      string
	Timestamp time.Time
}

// MockResponse defines a mock API response
type MockResponse struct {
	Status  int
	Body    string
	Headers map[string]string
	Delay   time.Duration
}

// ResponseFunc picks a response for a request, allowing per-page answers.
type ResponseFunc func(r *http.Request) *MockResponse

// NewMockServer creates a mock server that answers token requests and 404s
// every other path until configured.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]ResponseFunc),
		fallback: &MockResponse{
			Status: http.StatusNotFound,
			Body:   `{"message": "Not Found", "error": 404}`,
		},
	}
	ms.server = httptest.NewServer(ms)
	ms.SetResponse(TokenPath, &MockResponse{
		Status: http.StatusOK,
		Body:   `{"access_token":"mock_token","token_type":"bearer","expires_in":3600,"scope":"*"}`,
	})
	return ms
}

// URL returns the base URL of the mock server
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Client returns an HTTP client for the mock server
func (ms *MockServer) Client() *http.Client {
	return ms.server.Client()
}

// Close shuts down the mock server
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse configures a fixed response for a path
func (ms *MockServer) SetResponse(path string, response *MockResponse) {
	ms.SetResponseFunc(path, func(*http.Request) *MockResponse { return response })
}

// SetJSON configures a 200 response with a JSON body for a path
func (ms *MockServer) SetJSON(path, body string) {
	ms.SetResponse(path, &MockResponse{Status: http.StatusOK, Body: body})
}

// SetResponseFunc configures a dynamic response for a path
func (ms *MockServer) SetResponseFunc(path string, fn ResponseFunc) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[path] = fn
}

// Requests returns the logged requests, optionally filtered by path
func (ms *MockServer) Requests(path string) []RequestEntry {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var out []RequestEntry
	for _, e := range ms.requestLog {
		if path == "" || e.Path == path {
			out = append(out, e)
		}
	}
	return out
}

// CallCount returns the number of requests made to a path
func (ms *MockServer) CallCount(path string) int {
	return len(ms.Requests(path))
}

// LastRequest returns the last request made to a specific path
func (ms *MockServer) LastRequest(path string) (*RequestEntry, error) {
	reqs := ms.Requests(path)
	if len(reqs) == 0 {
		return nil, fmt.Errorf("no requests found for path: %s", path)
	}
	return &reqs[len(reqs)-1], nil
}

// ServeHTTP implements http.Handler
func (ms *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if r.Method == http.MethodPost {
		// Make the form readable by response funcs after the body was consumed.
		r.Body = io.NopCloser(strings.NewReader(string(body)))
	}

	ms.mu.Lock()
	ms.requestLog = append(ms.requestLog, RequestEntry{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.Query(),
		Headers:   r.Header.Clone(),
		Body:      string(body),
		Timestamp: time.Now(),
	})
	fn, ok := ms.responses[r.URL.Path]
	fallback := ms.fallback
	ms.mu.Unlock()

	response := fallback
	if ok {
		if resp := fn(r); resp != nil {
			response = resp
		}
	}

	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	status := response.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(response.Body))
}

// Listing renders a Listing thing holding the given child things.
func Listing(after string, children ...string) string {
	afterJSON := "null"
	if after != "" {
		afterJSON = mustJSON(after)
	}
	return `{"kind":"Listing","data":{"after":` + afterJSON + `,"before":null,"children":[` +
		strings.Join(children, ",") + `]}}`
}

// PostThing renders a t3 thing from its data fields.
func PostThing(data map[string]any) string {
	return thing("t3", data)
}

// SubredditThing renders a t5 thing for a subreddit name.
func SubredditThing(name string) string {
	return thing("t5", map[string]any{"display_name": name, "name": "t5_" + strings.ToLower(name)})
}

// CommentThing renders a t1 thing whose replies are the given comment things.
func CommentThing(data map[string]any, replies ...string) string {
	fields := make(map[string]any, len(data)+1)
	for k, v := range data {
		fields[k] = v
	}
	if len(replies) == 0 {
		fields["replies"] = ""
	} else {
		fields["replies"] = json.RawMessage(Listing("", replies...))
	}
	return thing("t1", fields)
}

// MoreThing renders a "more" placeholder.
func MoreThing(ids ...string) string {
	return thing("more", map[string]any{"id": "more", "children": ids})
}

// CommentsResponse renders the [post_listing, comment_listing] pair served by
// the comments endpoint.
func CommentsResponse(post string, comments ...string) string {
	posts := []string{}
	if post != "" {
		posts = append(posts, post)
	}
	return "[" + Listing("", posts...) + "," + Listing("", comments...) + "]"
}

func thing(kind string, data map[string]any) string {
	return `{"kind":"` + kind + `","data":` + mustJSON(data) + `}`
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("test_helpers: marshal fixture: %v", err))
	}
	return string(b)
}
