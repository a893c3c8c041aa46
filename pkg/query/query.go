// Package query maps tool search parameters onto the call shapes the content
// source understands.
package query

import "strings"

// ScopeKind says how a search is restricted to subreddits.
type ScopeKind int

const (
	// ScopeNone searches all of Reddit.
	ScopeNone ScopeKind = iota
	// ScopeSubreddit searches a single subreddit.
	ScopeSubreddit
	// ScopeSubredditSet searches several subreddits at once.
	ScopeSubredditSet
)

// Scope is the subreddit restriction of a search.
type Scope struct {
	kind  ScopeKind
	names []string
}

// Unscoped returns a scope covering all of Reddit.
func Unscoped() Scope {
	return Scope{kind: ScopeNone}
}

// Subreddit returns a scope restricted to name.
func Subreddit(name string) Scope {
	return Scope{kind: ScopeSubreddit, names: []string{name}}
}

// Subreddits returns a scope restricted to every subreddit in names.
func Subreddits(names ...string) Scope {
	return Scope{kind: ScopeSubredditSet, names: append([]string(nil), names...)}
}

// Kind reports the scope kind.
func (s Scope) Kind() ScopeKind {
	return s.kind
}

// Token is the subreddit path segment for the scope: empty when unscoped, the
// name for a single subreddit, and the names joined with "+" for a set.
func (s Scope) Token() string {
	switch s.kind {
	case ScopeSubreddit:
		return s.names[0]
	case ScopeSubredditSet:
		return strings.Join(s.names, "+")
	default:
		return ""
	}
}

// Defaults holds the sort and time filter used when a caller leaves them empty.
type Defaults struct {
	Sort string
	Time string
}

var (
	// GlobalDefaults apply to site-wide and multi-subreddit search.
	GlobalDefaults = Defaults{Sort: "relevance", Time: "all"}
	// SubredditDefaults apply to single-subreddit search.
	SubredditDefaults = Defaults{Sort: "hot", Time: "week"}
)

// Spec is one search request as expressed by a tool.
type Spec struct {
	Query string
	Scope Scope
	Sort  string
	Time  string
	Limit int
}

// WithDefaults returns a copy of s with empty Sort and Time taken from d.
func (s Spec) WithDefaults(d Defaults) Spec {
	if s.Sort == "" {
		s.Sort = d.Sort
	}
	if s.Time == "" {
		s.Time = d.Time
	}
	return s
}

// Call is the search request handed to the content source. An empty
// Subreddit selects site-wide search; any other value, including a combined
// "a+b" token, selects subreddit search restricted to it.
type Call struct {
	Subreddit string
	Query     string
	Sort      string
	Time      string
	Limit     int
}

// Scoped reports whether the call targets subreddit search.
func (c Call) Scoped() bool {
	return c.Subreddit != ""
}

// Translate converts spec into a content source call. Sort and time values
// are passed through unchecked.
func Translate(spec Spec) Call {
	return Call{
		Subreddit: spec.Scope.Token(),
		Query:     spec.Query,
		Sort:      spec.Sort,
		Time:      spec.Time,
		Limit:     spec.Limit,
	}
}
