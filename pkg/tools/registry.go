package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	pkgerrs "github.com/jamesprial/go-reddit-mcp/pkg/errors"
)

// Tool names as exposed to agents.
const (
	ToolFetchHotThreads          = "fetch_reddit_hot_threads"
	ToolGetPostDetails           = "get_post_details"
	ToolSearchPosts              = "search_posts"
	ToolSearchSubreddit          = "search_subreddit"
	ToolGetUserContent           = "get_user_content"
	ToolGetTrendingSubreddits    = "get_trending_subreddits"
	ToolSearchMultipleSubreddits = "search_multiple_subreddits"
)

// ErrUnknownTool is returned by Invoke for names not in Definitions.
var ErrUnknownTool = errors.New("unknown tool")

// ParamType is the JSON type of a tool parameter.
type ParamType string

const (
	ParamString      ParamType = "string"
	ParamNumber      ParamType = "number"
	ParamStringArray ParamType = "array"
)

// Param describes one tool parameter.
type Param struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description"`
	Required    bool      `json:"required"`
	Default     any       `json:"default,omitempty"`
}

// Definition describes a tool for hosts that advertise a tool list.
type Definition struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"parameters"`
}

const (
	sortDescription = `How to sort the results (e.g., "relevance", "hot", "top", "new").`
	timeDescription = `Filter results by time (e.g., "hour", "day", "week", "month", "year", "all").`
)

// Definitions lists every tool in a stable order.
var Definitions = []Definition{
	{
		Name:        ToolFetchHotThreads,
		Description: "Fetch hot threads from a subreddit.",
		Params: []Param{
			{Name: "subreddit", Type: ParamString, Required: true, Description: "Name of the subreddit."},
			{Name: "limit", Type: ParamNumber, Default: DefaultHotLimit, Description: "Number of posts to fetch."},
		},
	},
	{
		Name:        ToolGetPostDetails,
		Description: "Get post details with full comments.",
		Params: []Param{
			{Name: "post_id", Type: ParamString, Required: true, Description: "Reddit post ID."},
			{Name: "comment_limit", Type: ParamNumber, Default: DefaultCommentLimit, Description: "Number of comments to fetch."},
			{Name: "comment_sort", Type: ParamString, Default: DefaultCommentSort,
				Description: `How to sort comments (e.g., "best", "top", "new", "controversial", "old", "qa").`},
		},
	},
	{
		Name:        ToolSearchPosts,
		Description: "Search Reddit posts.",
		Params: []Param{
			{Name: "query", Type: ParamString, Required: true, Description: "The search query string."},
			{Name: "subreddit", Type: ParamString, Description: "Optional name of the subreddit to search within."},
			{Name: "sort", Type: ParamString, Default: "relevance", Description: sortDescription},
			{Name: "time_filter", Type: ParamString, Default: "all", Description: timeDescription},
			{Name: "limit", Type: ParamNumber, Default: DefaultSearchLimit, Description: "Number of posts to fetch."},
		},
	},
	{
		Name:        ToolSearchSubreddit,
		Description: "Search within a specific subreddit.",
		Params: []Param{
			{Name: "subreddit", Type: ParamString, Required: true, Description: "The name of the subreddit to search within."},
			{Name: "query", Type: ParamString, Required: true, Description: "The search query string."},
			{Name: "sort", Type: ParamString, Default: "hot", Description: sortDescription},
			{Name: "time_filter", Type: ParamString, Default: "week", Description: timeDescription},
			{Name: "limit", Type: ParamNumber, Default: DefaultSearchLimit, Description: "Number of posts to fetch."},
		},
	},
	{
		Name:        ToolGetUserContent,
		Description: "Get a user's posts or comments.",
		Params: []Param{
			{Name: "username", Type: ParamString, Required: true, Description: "The Reddit username."},
			{Name: "content_type", Type: ParamString, Default: ContentTypePosts, Description: `Type of content to fetch ("posts" or "comments").`},
			{Name: "limit", Type: ParamNumber, Default: DefaultUserLimit, Description: "Number of items to fetch."},
		},
	},
	{
		Name:        ToolGetTrendingSubreddits,
		Description: "Get trending subreddits.",
		Params: []Param{
			{Name: "limit", Type: ParamNumber, Default: DefaultTrendingLimit, Description: "Number of subreddits to fetch."},
		},
	},
	{
		Name:        ToolSearchMultipleSubreddits,
		Description: "Search several subreddits at once.",
		Params: []Param{
			{Name: "subreddits", Type: ParamStringArray, Required: true, Description: "Subreddit names to search within."},
			{Name: "query", Type: ParamString, Required: true, Description: "The search query string."},
			{Name: "sort", Type: ParamString, Default: "relevance", Description: sortDescription},
			{Name: "time_filter", Type: ParamString, Default: "all", Description: timeDescription},
			{Name: "limit", Type: ParamNumber, Default: DefaultSearchLimit, Description: "Number of posts to fetch."},
		},
	},
}

// Lookup returns the definition of the named tool.
func Lookup(name string) (Definition, bool) {
	for _, d := range Definitions {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Args holds loosely typed tool arguments as decoded from JSON.
type Args map[string]any

// String returns the named string argument, or "" when absent or null.
func (a Args) String(name string) (string, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", invalidArg(name, "must be a string")
	}
	return s, nil
}

// Int returns the named integer argument, or 0 when absent or null. JSON
// numbers and numeric strings are accepted.
func (a Args) Int(name string) (int, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return 0, nil
	}

	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		return n, nil
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, invalidArg(name, "must be a number")
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, invalidArg(name, "must be a number")
		}
		f = parsed
	default:
		return 0, invalidArg(name, "must be a number")
	}

	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, invalidArg(name, "must be an integer")
	}
	return int(f), nil
}

// Strings returns the named string-array argument, or nil when absent.
func (a Args) Strings(name string) ([]string, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return nil, nil
	}

	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, invalidArg(name, "must be an array of strings")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, invalidArg(name, "must be an array of strings")
	}
}

func invalidArg(name, problem string) error {
	return &pkgerrs.InvalidArgumentError{Argument: name, Message: fmt.Sprintf("argument %q %s", name, problem)}
}

// argReader collects the first decoding error so dispatch stays linear.
type argReader struct {
	args Args
	err  error
}

func (r *argReader) str(name string, required bool) string {
	if r.err != nil {
		return ""
	}
	if required {
		if _, ok := r.args[name]; !ok {
			r.err = invalidArg(name, "is required")
			return ""
		}
	}
	s, err := r.args.String(name)
	r.err = err
	return s
}

func (r *argReader) num(name string) int {
	if r.err != nil {
		return 0
	}
	n, err := r.args.Int(name)
	r.err = err
	return n
}

func (r *argReader) strs(name string, required bool) []string {
	if r.err != nil {
		return nil
	}
	if required {
		if _, ok := r.args[name]; !ok {
			r.err = invalidArg(name, "is required")
			return nil
		}
	}
	s, err := r.args.Strings(name)
	r.err = err
	return s
}

// Invoke decodes args for the named tool and runs it. The returned error is
// ErrUnknownTool (wrapped) or an *errors.InvalidArgumentError for arguments
// that cannot be decoded; failures while running the tool are part of the
// returned text.
func (t *Toolset) Invoke(ctx context.Context, name string, args Args) (string, error) {
	r := &argReader{args: args}
	var run func() string

	switch name {
	case ToolFetchHotThreads:
		sub, limit := r.str("subreddit", true), r.num("limit")
		run = func() string { return t.FetchHotThreads(ctx, sub, limit) }

	case ToolGetPostDetails:
		id, limit, sort := r.str("post_id", true), r.num("comment_limit"), r.str("comment_sort", false)
		run = func() string { return t.GetPostDetails(ctx, id, limit, sort) }

	case ToolSearchPosts:
		p := SearchPostsParams{
			Query:      r.str("query", true),
			Subreddit:  r.str("subreddit", false),
			Sort:       r.str("sort", false),
			TimeFilter: r.str("time_filter", false),
			Limit:      r.num("limit"),
		}
		run = func() string { return t.SearchPosts(ctx, p) }

	case ToolSearchSubreddit:
		p := SearchSubredditParams{
			Subreddit:  r.str("subreddit", true),
			Query:      r.str("query", true),
			Sort:       r.str("sort", false),
			TimeFilter: r.str("time_filter", false),
			Limit:      r.num("limit"),
		}
		run = func() string { return t.SearchSubreddit(ctx, p) }

	case ToolGetUserContent:
		user, kind, limit := r.str("username", true), r.str("content_type", false), r.num("limit")
		run = func() string { return t.GetUserContent(ctx, user, kind, limit) }

	case ToolGetTrendingSubreddits:
		limit := r.num("limit")
		run = func() string { return t.GetTrendingSubreddits(ctx, limit) }

	case ToolSearchMultipleSubreddits:
		p := SearchMultipleParams{
			Subreddits: r.strs("subreddits", true),
			Query:      r.str("query", true),
			Sort:       r.str("sort", false),
			TimeFilter: r.str("time_filter", false),
			Limit:      r.num("limit"),
		}
		run = func() string { return t.SearchMultipleSubreddits(ctx, p) }

	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if r.err != nil {
		return "", r.err
	}
	return run(), nil
}
