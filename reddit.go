package redditmcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jamesprial/go-reddit-mcp/internal"
	pkgerrs "github.com/jamesprial/go-reddit-mcp/pkg/errors"
	"github.com/jamesprial/go-reddit-mcp/pkg/query"
	"github.com/jamesprial/go-reddit-mcp/pkg/types"
)

const (
	// DefaultBaseURL is the Reddit API base URL for authenticated requests
	DefaultBaseURL = "https://oauth.reddit.com/"
	// DefaultAuthURL is the default Reddit OAuth base URL
	DefaultAuthURL = "https://www.reddit.com/"
	// DefaultPublicURL serves the public JSON listings used without credentials
	DefaultPublicURL = "https://www.reddit.com/"
	// DefaultUserAgent is the default user agent string
	DefaultUserAgent = "go-reddit-mcp/0.1"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
)

// AuthMode is how the client authenticates, decided by credential count.
type AuthMode int

const (
	// AuthAnonymous sends unauthenticated requests to the public site.
	AuthAnonymous AuthMode = iota
	// AuthStaticToken uses a single pre-issued bearer token as-is.
	AuthStaticToken
	// AuthClientCredentials uses the application-only OAuth2 grant.
	AuthClientCredentials
	// AuthRefreshToken exchanges a refresh token for user-scoped access.
	AuthRefreshToken
)

func (m AuthMode) String() string {
	switch m {
	case AuthStaticToken:
		return "static_token"
	case AuthClientCredentials:
		return "client_credentials"
	case AuthRefreshToken:
		return "refresh_token"
	default:
		return "anonymous"
	}
}

// Credentials holds the values used to authenticate with Reddit.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	// AccessToken is a pre-issued bearer token, used when it is the only
	// credential supplied.
	AccessToken string
}

// CredentialsFrom builds Credentials from positional values, dropping empty
// ones first. The number of remaining values decides their meaning:
//
//   - 0: anonymous access
//   - 1: a bearer access token
//   - 2: client ID and client secret
//   - 3: client ID, client secret and refresh token
//
// There is no check that a given combination is sufficient for Reddit; a bad
// combination surfaces as an authentication error on first use.
func CredentialsFrom(values ...string) (Credentials, error) {
	present := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			present = append(present, v)
		}
	}

	switch len(present) {
	case 0:
		return Credentials{}, nil
	case 1:
		return Credentials{AccessToken: present[0]}, nil
	case 2:
		return Credentials{ClientID: present[0], ClientSecret: present[1]}, nil
	case 3:
		return Credentials{ClientID: present[0], ClientSecret: present[1], RefreshToken: present[2]}, nil
	default:
		return Credentials{}, &pkgerrs.ConfigError{
			Field:   "Credentials",
			Message: "expected at most 3 credential values, got " + strconv.Itoa(len(present)),
		}
	}
}

// Mode returns the authentication mode these credentials select.
func (c Credentials) Mode() AuthMode {
	switch {
	case c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != "":
		return AuthRefreshToken
	case c.ClientID != "" && c.ClientSecret != "":
		return AuthClientCredentials
	case c.AccessToken != "":
		return AuthStaticToken
	default:
		return AuthAnonymous
	}
}

// RateLimitConfig controls client-side request throttling.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 60 if zero.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 10 if zero.
	Burst int
}

// Config holds the configuration for the Reddit client.
//
// Only Credentials is commonly set; everything else has a working default.
//
// Example for app-only auth:
//
//	config := &Config{
//		Credentials: Credentials{ClientID: "id", ClientSecret: "secret"},
//		UserAgent:   "web:myapp:1.0 (by /u/yourusername)",
//	}
type Config struct {
	Credentials

	// UserAgent string to identify your application to Reddit.
	// Should follow format: "platform:app-name:version (by /u/username)"
	UserAgent string

	// BaseURL for authenticated API requests.
	// Defaults to DefaultBaseURL if not specified.
	BaseURL string

	// AuthURL for Reddit OAuth token requests.
	// Defaults to DefaultAuthURL if not specified.
	AuthURL string

	// PublicURL is used instead of BaseURL when no credentials are supplied.
	// Defaults to DefaultPublicURL if not specified.
	PublicURL string

	// HTTPClient to use for requests.
	// Defaults to a client with DefaultTimeout if not specified.
	HTTPClient *http.Client

	// RateLimit tunes client-side throttling. Zero values use the defaults.
	RateLimit RateLimitConfig

	// Logger for structured diagnostics.
	// Optional. If provided, debug information will be logged during API calls.
	Logger *slog.Logger
}

// Client is a read-only Reddit content source.
// It is safe for concurrent use; all calls share one rate limiter and one
// token cache.
type Client struct {
	client    *internal.Client
	auth      internal.TokenSource
	mode      AuthMode
	parser    *internal.Parser
	validator *internal.Validator
	conn      *internal.ConnectionManager
	logger    *slog.Logger
}

// NewClient creates a new Reddit client with the provided configuration.
//
// The function will:
//   - Set default values for optional fields
//   - Validate the user agent
//   - Pick the authentication mode from the supplied credentials
//
// Returns an error if:
//   - config is nil
//   - the user agent or one of the URLs is invalid
//
// NewClient performs no network I/O. Credentials are verified on the first
// request, or earlier by calling Connect.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}
	cfg := *config

	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = DefaultPublicURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}

	validator := internal.NewValidator()
	if err := validator.ValidateUserAgent(cfg.UserAgent); err != nil {
		return nil, err
	}

	mode := cfg.Credentials.Mode()
	var tokens internal.TokenSource
	baseURL := cfg.BaseURL

	switch mode {
	case AuthAnonymous:
		baseURL = cfg.PublicURL
	case AuthStaticToken:
		tokens = internal.StaticToken(cfg.AccessToken)
	case AuthClientCredentials, AuthRefreshToken:
		auth, err := internal.NewAuthenticator(
			cfg.HTTPClient,
			cfg.ClientID,
			cfg.ClientSecret,
			cfg.RefreshToken,
			cfg.UserAgent,
			cfg.AuthURL,
			"",
		)
		if err != nil {
			return nil, err
		}
		tokens = auth
	}

	client, err := internal.NewClient(
		cfg.HTTPClient,
		tokens,
		baseURL,
		cfg.UserAgent,
		&internal.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			Burst:             cfg.RateLimit.Burst,
		},
		cfg.Logger,
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		client:    client,
		auth:      tokens,
		mode:      mode,
		parser:    internal.NewParser(),
		validator: validator,
		conn:      internal.NewConnectionManager(),
		logger:    cfg.Logger,
	}, nil
}

// Mode reports the authentication mode selected at construction.
func (c *Client) Mode() AuthMode {
	return c.mode
}

// Connect verifies the credentials by obtaining a first access token.
// It is safe to call Connect multiple times; once it has succeeded later
// calls return immediately. A failed attempt is retried on the next call.
// Anonymous clients have nothing to verify and always succeed.
func (c *Client) Connect(ctx context.Context) error {
	return c.conn.Initialize(ctx, c.initialize)
}

func (c *Client) initialize(ctx context.Context) error {
	if c.auth != nil {
		if _, err := c.auth.GetToken(ctx); err != nil {
			return err
		}
	}
	if c.logger != nil {
		c.logger.Info("reddit client initialized", "mode", c.mode.String(), "base_url", c.client.BaseURL.String())
	}
	return nil
}

// IsConnected returns true once Connect, or any request, has succeeded in
// verifying the credentials.
func (c *Client) IsConnected() bool {
	return c.conn.IsInitialized()
}

// Hot returns an iterator over the hot listing of a subreddit.
//
// Parameters:
//   - subreddit: the subreddit name without the "r/" prefix (e.g., "golang")
//   - limit: the maximum number of posts to yield; zero or less yields none
func (c *Client) Hot(ctx context.Context, subreddit string, limit int) types.Iterator[*types.Post] {
	if err := c.validator.ValidateSubredditName(subreddit); err != nil {
		return failedIterator[*types.Post](err)
	}
	return listing(ctx, c, "r/"+subreddit+"/hot", nil, limit, c.parser.ExtractPosts)
}

// Submission retrieves a single submission by its ID, without the "t3_" prefix.
//
// Returns a *errors.NotFoundError when Reddit knows no such submission.
func (c *Client) Submission(ctx context.Context, id string) (*types.Post, error) {
	if err := c.validator.ValidatePostID(id); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("id", "t3_"+id)
	thing, err := c.getThing(ctx, "api/info", params)
	if err != nil {
		return nil, err
	}

	posts, _, err := c.parser.ExtractPosts(thing)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, &pkgerrs.NotFoundError{Kind: "submission", ID: id}
	}
	return posts[0], nil
}

// CommentTree retrieves the comment tree of a submission.
//
// Parameters:
//   - postID: the submission ID without the "t3_" prefix
//   - sort: Reddit comment sort such as "best", "top" or "new"; empty uses Reddit's default
//   - limit: maximum number of comments Reddit should return; zero or less omits the parameter
//
// Placeholders for comments Reddit did not expand ("load more") are not
// fetched and do not appear in the tree.
func (c *Client) CommentTree(ctx context.Context, postID, sort string, limit int) (*types.CommentTree, error) {
	if err := c.validator.ValidatePostID(postID); err != nil {
		return nil, err
	}

	params := url.Values{}
	if sort != "" {
		params.Set("sort", sort)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.getRaw(ctx, "comments/"+postID, params)
	if err != nil {
		return nil, err
	}

	var response []*types.Thing
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &pkgerrs.ParseError{Operation: "comments/" + postID, Err: err}
	}

	_, tree, err := c.parser.ExtractCommentTree(response)
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// Search returns an iterator over submissions matching call. An unscoped
// call searches all of Reddit; a scoped one is restricted to the subreddit
// token, which may join several names with "+".
func (c *Client) Search(ctx context.Context, call query.Call) types.Iterator[*types.Post] {
	path := "search"
	params := url.Values{}
	if call.Scoped() {
		if err := c.validator.ValidateSubredditToken(call.Subreddit); err != nil {
			return failedIterator[*types.Post](err)
		}
		path = "r/" + call.Subreddit + "/search"
		params.Set("restrict_sr", "1")
	}

	params.Set("q", call.Query)
	params.Set("type", "link")
	if call.Sort != "" {
		params.Set("sort", call.Sort)
	}
	if call.Time != "" {
		params.Set("t", call.Time)
	}

	return listing(ctx, c, path, params, call.Limit, c.parser.ExtractPosts)
}

// UserSubmitted returns an iterator over the submissions of a user.
func (c *Client) UserSubmitted(ctx context.Context, username string, limit int) types.Iterator[*types.Post] {
	if err := c.validator.ValidateUsername(username); err != nil {
		return failedIterator[*types.Post](err)
	}
	return listing(ctx, c, "user/"+username+"/submitted", nil, limit, c.parser.ExtractPosts)
}

// UserComments returns an iterator over the comment history of a user.
func (c *Client) UserComments(ctx context.Context, username string, limit int) types.Iterator[*types.Comment] {
	if err := c.validator.ValidateUsername(username); err != nil {
		return failedIterator[*types.Comment](err)
	}
	return listing(ctx, c, "user/"+username+"/comments", nil, limit, c.parser.ExtractComments)
}

// PopularSubreddits returns an iterator over Reddit's popular subreddits.
func (c *Client) PopularSubreddits(ctx context.Context, limit int) types.Iterator[*types.Subreddit] {
	return listing(ctx, c, "subreddits/popular", nil, limit, c.parser.ExtractSubreddits)
}

// ensureConnected lazily verifies credentials before handling a request.
func (c *Client) ensureConnected(ctx context.Context) error {
	return c.Connect(ctx)
}

func (c *Client) getRaw(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}
	req, err := c.client.NewRequest(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return c.client.DoRaw(req)
}

func (c *Client) getThing(ctx context.Context, path string, params url.Values) (*types.Thing, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}
	req, err := c.client.NewRequest(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return c.client.DoThing(req)
}
