// Package tools implements the Reddit agent tools on top of a ContentSource.
//
// Every operation returns a single human-readable string. Failures never
// escape as Go errors or panics: upstream errors are rendered as
// "An error occurred: <detail>" and rejected arguments as their message.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jamesprial/go-reddit-mcp/internal"
	"github.com/jamesprial/go-reddit-mcp/internal/format"
	pkgerrs "github.com/jamesprial/go-reddit-mcp/pkg/errors"
	"github.com/jamesprial/go-reddit-mcp/pkg/query"
	"github.com/jamesprial/go-reddit-mcp/pkg/types"
)

// Argument defaults applied when a tool is called without them.
const (
	DefaultHotLimit      = 10
	DefaultCommentLimit  = 100
	DefaultCommentSort   = "best"
	DefaultSearchLimit   = 25
	DefaultUserLimit     = 25
	DefaultTrendingLimit = 10
)

// Accepted content_type values for get_user_content.
const (
	ContentTypePosts    = "posts"
	ContentTypeComments = "comments"
)

const (
	// ErrorPrefix starts every message reporting an upstream failure.
	ErrorPrefix = "An error occurred: "

	// InvalidContentTypeMessage is returned verbatim for an unknown content_type.
	InvalidContentTypeMessage = "Invalid content_type. Must be 'posts' or 'comments'."
)

// ContentSource supplies Reddit content to the tools. *redditmcp.Client
// implements it.
type ContentSource interface {
	Hot(ctx context.Context, subreddit string, limit int) types.Iterator[*types.Post]
	Submission(ctx context.Context, id string) (*types.Post, error)
	CommentTree(ctx context.Context, postID, sort string, limit int) (*types.CommentTree, error)
	Search(ctx context.Context, call query.Call) types.Iterator[*types.Post]
	UserSubmitted(ctx context.Context, username string, limit int) types.Iterator[*types.Post]
	UserComments(ctx context.Context, username string, limit int) types.Iterator[*types.Comment]
	PopularSubreddits(ctx context.Context, limit int) types.Iterator[*types.Subreddit]
}

// Toolset dispatches tool calls to a ContentSource and renders the results.
// It holds no per-call state and is safe for concurrent use.
type Toolset struct {
	source ContentSource
	logger *slog.Logger
	newID  func() string
}

// Option configures a Toolset.
type Option func(*Toolset)

// WithLogger sets the logger used for per-call diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Toolset) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New returns a Toolset backed by source.
func New(source ContentSource, opts ...Option) *Toolset {
	t := &Toolset{
		source: source,
		logger: slog.New(slog.DiscardHandler),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SearchPostsParams are the arguments of search_posts. An empty Subreddit
// searches all of Reddit.
type SearchPostsParams struct {
	Query      string
	Subreddit  string
	Sort       string
	TimeFilter string
	Limit      int
}

// SearchSubredditParams are the arguments of search_subreddit.
type SearchSubredditParams struct {
	Subreddit  string
	Query      string
	Sort       string
	TimeFilter string
	Limit      int
}

// SearchMultipleParams are the arguments of search_multiple_subreddits.
type SearchMultipleParams struct {
	Subreddits []string
	Query      string
	Sort       string
	TimeFilter string
	Limit      int
}

// FetchHotThreads lists the hot posts of a subreddit.
func (t *Toolset) FetchHotThreads(ctx context.Context, subreddit string, limit int) string {
	limit = orDefault(limit, DefaultHotLimit)
	return t.run(ctx, ToolFetchHotThreads, []any{"subreddit", subreddit, "limit", limit},
		func(ctx context.Context, log *slog.Logger) (string, error) {
			posts, err := internal.Collect(t.source.Hot(ctx, subreddit, limit))
			if err != nil {
				return "", err
			}
			log.Debug("fetched hot posts", "count", len(posts))
			if len(posts) == 0 {
				return fmt.Sprintf("No hot threads found in r/%s.", subreddit), nil
			}
			return format.Listing(posts, true), nil
		})
}

// GetPostDetails renders a post followed by its comment tree.
func (t *Toolset) GetPostDetails(ctx context.Context, postID string, commentLimit int, commentSort string) string {
	commentLimit = orDefault(commentLimit, DefaultCommentLimit)
	if commentSort == "" {
		commentSort = DefaultCommentSort
	}
	id := strings.TrimPrefix(postID, "t3_")

	return t.run(ctx, ToolGetPostDetails, []any{"post_id", id, "comment_limit", commentLimit, "comment_sort", commentSort},
		func(ctx context.Context, log *slog.Logger) (string, error) {
			post, err := t.source.Submission(ctx, id)
			if err != nil {
				return "", err
			}
			tree, err := t.source.CommentTree(ctx, id, commentSort, commentLimit)
			if err != nil {
				return "", err
			}

			content := format.PostDetail(post)
			if tree == nil || len(tree.Children) == 0 {
				log.Debug("post has no comments", "hidden", tree.Hidden())
				return content + "\nNo comments found.", nil
			}
			log.Debug("fetched comment tree", "top_level", len(tree.Children), "total", tree.Count(),
				"depth", tree.Depth(), "hidden", tree.Hidden())
			return content + "\nComments:\n" + format.RenderTree(tree), nil
		})
}

// SearchPosts searches all of Reddit, or one subreddit when Subreddit is set.
func (t *Toolset) SearchPosts(ctx context.Context, p SearchPostsParams) string {
	scope := query.Unscoped()
	if p.Subreddit != "" {
		scope = query.Subreddit(p.Subreddit)
	}
	spec := query.Spec{
		Query: p.Query,
		Scope: scope,
		Sort:  p.Sort,
		Time:  p.TimeFilter,
		Limit: orDefault(p.Limit, DefaultSearchLimit),
	}.WithDefaults(query.GlobalDefaults)

	return t.search(ctx, ToolSearchPosts, spec, "No posts found matching your criteria.")
}

// SearchSubreddit searches within a single subreddit.
func (t *Toolset) SearchSubreddit(ctx context.Context, p SearchSubredditParams) string {
	spec := query.Spec{
		Query: p.Query,
		Scope: query.Subreddit(p.Subreddit),
		Sort:  p.Sort,
		Time:  p.TimeFilter,
		Limit: orDefault(p.Limit, DefaultSearchLimit),
	}.WithDefaults(query.SubredditDefaults)

	return t.search(ctx, ToolSearchSubreddit, spec,
		fmt.Sprintf("No posts found in r/%s matching your criteria.", p.Subreddit))
}

// SearchMultipleSubreddits searches several subreddits in one request.
func (t *Toolset) SearchMultipleSubreddits(ctx context.Context, p SearchMultipleParams) string {
	spec := query.Spec{
		Query: p.Query,
		Scope: query.Subreddits(p.Subreddits...),
		Sort:  p.Sort,
		Time:  p.TimeFilter,
		Limit: orDefault(p.Limit, DefaultSearchLimit),
	}.WithDefaults(query.GlobalDefaults)

	return t.search(ctx, ToolSearchMultipleSubreddits, spec,
		fmt.Sprintf("No posts found in subreddits %s matching your criteria.", strings.Join(p.Subreddits, ", ")))
}

func (t *Toolset) search(ctx context.Context, tool string, spec query.Spec, emptyMessage string) string {
	call := query.Translate(spec)
	return t.run(ctx, tool, []any{"query", call.Query, "subreddit", call.Subreddit, "sort", call.Sort, "time_filter", call.Time, "limit", call.Limit},
		func(ctx context.Context, log *slog.Logger) (string, error) {
			posts, err := internal.Collect(t.source.Search(ctx, call))
			if err != nil {
				return "", err
			}
			log.Debug("search returned", "count", len(posts))
			if len(posts) == 0 {
				return emptyMessage, nil
			}
			return format.Listing(posts, true), nil
		})
}

// GetUserContent lists a user's posts or comments.
func (t *Toolset) GetUserContent(ctx context.Context, username, contentType string, limit int) string {
	if contentType == "" {
		contentType = ContentTypePosts
	}
	limit = orDefault(limit, DefaultUserLimit)

	return t.run(ctx, ToolGetUserContent, []any{"username", username, "content_type", contentType, "limit", limit},
		func(ctx context.Context, log *slog.Logger) (string, error) {
			switch contentType {
			case ContentTypePosts:
				posts, err := internal.Collect(t.source.UserSubmitted(ctx, username, limit))
				if err != nil {
					return "", err
				}
				if len(posts) == 0 {
					return fmt.Sprintf("No posts found for user u/%s.", username), nil
				}
				return fmt.Sprintf("Posts by u/%s:\n\n", username) + format.Listing(posts, false), nil

			case ContentTypeComments:
				comments, err := internal.Collect(t.source.UserComments(ctx, username, limit))
				if err != nil {
					return "", err
				}
				if len(comments) == 0 {
					return fmt.Sprintf("No comments found for user u/%s.", username), nil
				}
				return fmt.Sprintf("Comments by u/%s:\n\n", username) + format.UserComments(comments), nil

			default:
				return "", &pkgerrs.InvalidArgumentError{Argument: "content_type", Message: InvalidContentTypeMessage}
			}
		})
}

// GetTrendingSubreddits lists the names of popular subreddits.
func (t *Toolset) GetTrendingSubreddits(ctx context.Context, limit int) string {
	limit = orDefault(limit, DefaultTrendingLimit)
	return t.run(ctx, ToolGetTrendingSubreddits, []any{"limit", limit},
		func(ctx context.Context, log *slog.Logger) (string, error) {
			subs, err := internal.Collect(t.source.PopularSubreddits(ctx, limit))
			if err != nil {
				return "", err
			}
			names := make([]string, 0, len(subs))
			for _, s := range subs {
				if s != nil {
					names = append(names, s.DisplayName)
				}
			}
			if len(names) == 0 {
				return "No trending subreddits found.", nil
			}
			return "Trending Subreddits:\n" + strings.Join(names, "\n"), nil
		})
}

// run executes one tool call with its own call id, converting errors and
// panics into the string result.
func (t *Toolset) run(ctx context.Context, tool string, args []any, fn func(context.Context, *slog.Logger) (string, error)) (result string) {
	log := t.logger.With("tool", tool, "call_id", t.newID())
	log.Info("tool called", args...)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error("tool panicked", "panic", r, "stack", string(debug.Stack()))
			result = ErrorPrefix + fmt.Sprint(r)
		}
	}()

	out, err := fn(ctx, log)
	if err != nil {
		if !pkgerrs.IsUpstream(err) {
			log.Warn("invalid argument", "error", err)
			return err.Error()
		}
		log.Error("tool failed", "error", err, "elapsed", time.Since(start))
		return ErrorPrefix + err.Error()
	}

	log.Info("tool completed", "elapsed", time.Since(start), "bytes", len(out))
	return out
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
