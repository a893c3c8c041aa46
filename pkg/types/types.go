package types

import (
	"encoding/json"
	"strings"

	"github.com/guregu/null/v6"
)

// DeletedAuthor is the placeholder Reddit uses for removed accounts.
const DeletedAuthor = "[deleted]"

// ThingData holds the common fields for Reddit objects.
// It can be embedded into specific types like Post and Comment.
type ThingData struct {
	ID   string `json:"id"`   // ID (without prefix)
	Name string `json:"name"` // Full name (e.g., "t3_abc123")
}

// Thing is the envelope Reddit wraps every object in. Data is decoded
// according to Kind by the parser.
type Thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// ListingData contains the data for a Listing, which is used for pagination.
type ListingData struct {
	BeforeFullname string   `json:"before"` // Reddit fullname for pagination (previous page)
	AfterFullname  string   `json:"after"`  // Reddit fullname for pagination (next page)
	Children       []*Thing `json:"children"`
}

// Pagination captures the shared pagination behaviour for Reddit listing endpoints.
// Reddit uses "fullnames" for pagination, which are strings like "t3_abc123" where
// "t3" indicates the type (link/post) and "abc123" is the item ID.
type Pagination struct {
	// Limit specifies the number of items to retrieve.
	// Reddit enforces a maximum of 100 items per request.
	Limit int

	// After specifies the Reddit fullname after which to get items.
	After string
}

// Author is an optional account name. Reddit reports removed accounts as
// "[deleted]" and some listings omit the field; both decode as invalid.
type Author struct {
	null.String
}

// AuthorFrom returns a valid Author for name, or an invalid one when name is
// empty or the deleted placeholder.
func AuthorFrom(name string) Author {
	if name == "" || name == DeletedAuthor {
		return Author{}
	}
	return Author{null.StringFrom(name)}
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Author) UnmarshalJSON(data []byte) error {
	var s null.String
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = AuthorFrom(strings.TrimSpace(s.ValueOrZero()))
	return nil
}

// DisplayName returns the account name or the deleted placeholder.
func (a Author) DisplayName() string {
	if !a.Valid {
		return DeletedAuthor
	}
	return a.ValueOrZero()
}

// Variant is the shape of a submission.
type Variant int

const (
	VariantUnknown Variant = iota
	VariantLink
	VariantText
	VariantGallery
)

// String returns the lower-case label used in rendered listings.
func (v Variant) String() string {
	switch v {
	case VariantLink:
		return "link"
	case VariantText:
		return "text"
	case VariantGallery:
		return "gallery"
	default:
		return "unknown"
	}
}

// Post represents a Reddit submission (kind t3).
type Post struct {
	ThingData
	Author      Author `json:"author"`
	IsGallery   bool   `json:"is_gallery"`
	IsSelf      bool   `json:"is_self"`
	NumComments int    `json:"num_comments"`
	Over18      bool   `json:"over_18"`
	Permalink   string `json:"permalink"`
	Score       int    `json:"score"`
	SelfText    string `json:"selftext"`
	Subreddit   string `json:"subreddit"`
	Title       string `json:"title"`
	URL         string `json:"url"`
}

// Comment represents a Reddit comment (kind t1) and, once parsed, its replies
// in the order Reddit returned them.
type Comment struct {
	ThingData
	Author    Author     `json:"author"`
	Body      string     `json:"body"`
	LinkID    string     `json:"link_id"`
	ParentID  string     `json:"parent_id"`
	Permalink string     `json:"permalink"`
	Score     int        `json:"score"`
	Subreddit string     `json:"subreddit"`
	Replies   []*Comment `json:"-"`
	More      int        `json:"-"` // replies withheld behind "more" placeholders
}

// CommentTree is the synthetic root of a post's comment tree.
type CommentTree struct {
	Children []*Comment
	// More counts top-level comments left behind "more" placeholders.
	More int
}

// Count returns the total number of comments in the tree.
func (t *CommentTree) Count() int {
	if t == nil {
		return 0
	}
	return countComments(t.Children)
}

func countComments(comments []*Comment) int {
	n := 0
	for _, c := range comments {
		if c == nil {
			continue
		}
		n += 1 + countComments(c.Replies)
	}
	return n
}

// Hidden returns how many comments, at any level, Reddit withheld behind
// "more" placeholders.
func (t *CommentTree) Hidden() int {
	if t == nil {
		return 0
	}
	return t.More + hiddenReplies(t.Children)
}

func hiddenReplies(comments []*Comment) int {
	n := 0
	for _, c := range comments {
		if c == nil {
			continue
		}
		n += c.More + hiddenReplies(c.Replies)
	}
	return n
}

// Depth returns the number of levels in the tree; 0 for an empty tree.
func (t *CommentTree) Depth() int {
	if t == nil {
		return 0
	}
	return depthOf(t.Children)
}

func depthOf(comments []*Comment) int {
	maxDepth := 0
	for _, c := range comments {
		if c == nil {
			continue
		}
		if d := 1 + depthOf(c.Replies); d > maxDepth {
			maxDepth = d
		}
	}
	return maxDepth
}

// Subreddit contains the data for a subreddit (kind t5).
type Subreddit struct {
	ThingData
	DisplayName string `json:"display_name"`
	Over18      bool   `json:"over18"`
	Subscribers int64  `json:"subscribers"`
	Title       string `json:"title"`
}

// MoreData represents a "more" object, used for comment pagination.
type MoreData struct {
	ThingData
	Count    int      `json:"count"`
	Children []string `json:"children"`
}

// Hidden returns the number of comments the placeholder stands for. Reddit's
// count covers the whole collapsed subtree; the child ids are the fallback.
func (m *MoreData) Hidden() int {
	if m == nil {
		return 0
	}
	if m.Count > len(m.Children) {
		return m.Count
	}
	return len(m.Children)
}

// Iterator walks a sequence fetched lazily from Reddit.
//
// HasNext may perform a network request. When that request fails HasNext
// reports true and the following Next returns the error; iteration ends after
// an error has been returned.
type Iterator[T any] interface {
	HasNext() bool
	Next() (T, error)
}
