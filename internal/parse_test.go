package internal

import (
	"encoding/json"
	"errors"
	"testing"

	pkgerrs "github.com/jamesprial/go-reddit-mcp/pkg/errors"
	"github.com/jamesprial/go-reddit-mcp/pkg/types"
)

func listingThing(t *testing.T, after string, children ...string) *types.Thing {
	t.Helper()
	raw := `{"after":` + quoteOrNull(after) + `,"children":[`
	for i, c := range children {
		if i > 0 {
			raw += ","
		}
		raw += c
	}
	raw += `]}`
	if !json.Valid([]byte(raw)) {
		t.Fatalf("invalid listing fixture: %s", raw)
	}
	return &types.Thing{Kind: KindListing, Data: json.RawMessage(raw)}
}

func quoteOrNull(s string) string {
	if s == "" {
		return "null"
	}
	b, _ := json.Marshal(s)
	return string(b)
}

func TestNewParser(t *testing.T) {
	parser := NewParser()
	if parser == nil {
		t.Fatal("NewParser returned nil")
	}
}

func TestParseKindMismatch(t *testing.T) {
	parser := NewParser()
	wrong := &types.Thing{Kind: "t2", Data: json.RawMessage(`{}`)}

	tests := []struct {
		name string
		fn   func(*types.Thing) error
	}{
		{"listing", func(th *types.Thing) error { _, err := parser.ParseListing(th); return err }},
		{"post", func(th *types.Thing) error { _, err := parser.ParsePost(th); return err }},
		{"comment", func(th *types.Thing) error { _, err := parser.ParseComment(th); return err }},
		{"subreddit", func(th *types.Thing) error { _, err := parser.ParseSubreddit(th); return err }},
		{"more", func(th *types.Thing) error { _, err := parser.ParseMore(th); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, th := range []*types.Thing{nil, wrong} {
				err := tt.fn(th)
				var parseErr *pkgerrs.ParseError
				if !errors.As(err, &parseErr) {
					t.Errorf("expected ParseError for %v, got %v", th, err)
				}
			}
		})
	}
}

func TestParsePost(t *testing.T) {
	parser := NewParser()
	thing := &types.Thing{
		Kind: KindLink,
		Data: json.RawMessage(`{"id":"abc","name":"t3_abc","author":"gopher","title":"Go 1.25",
			"score":42,"num_comments":7,"is_self":true,"selftext":"body",
			"permalink":"/r/golang/comments/abc/go_125/","subreddit":"golang","url":"https://www.reddit.com/r/golang/comments/abc/go_125/"}`),
	}

	post, err := parser.ParsePost(thing)
	if err != nil {
		t.Fatalf("ParsePost returned error: %v", err)
	}
	if post.ID != "abc" || post.Name != "t3_abc" {
		t.Errorf("unexpected ids %q %q", post.ID, post.Name)
	}
	if post.Author.DisplayName() != "gopher" {
		t.Errorf("author = %q", post.Author.DisplayName())
	}
	if !post.IsSelf || post.SelfText != "body" || post.Score != 42 || post.NumComments != 7 {
		t.Errorf("unexpected post fields: %+v", post)
	}
}

func TestParsePost_MalformedData(t *testing.T) {
	parser := NewParser()
	_, err := parser.ParsePost(&types.Thing{Kind: KindLink, Data: json.RawMessage(`{"score":"many"}`)})
	var parseErr *pkgerrs.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseComment_Replies(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name        string
		replies     string
		wantReplies int
	}{
		{name: "empty string", replies: `""`, wantReplies: 0},
		{name: "null", replies: `null`, wantReplies: 0},
		{name: "missing", replies: ``, wantReplies: 0},
		{
			name: "nested listing with more",
			replies: `{"kind":"Listing","data":{"children":[
				{"kind":"t1","data":{"id":"c2","author":"b","body":"reply","score":1,"replies":""}},
				{"kind":"more","data":{"id":"m1","children":["c9"]}}
			]}}`,
			wantReplies: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := `{"id":"c1","author":"a","body":"top","score":3`
			if tt.replies != "" {
				data += `,"replies":` + tt.replies
			}
			data += `}`

			comment, err := parser.ParseComment(&types.Thing{Kind: KindComment, Data: json.RawMessage(data)})
			if err != nil {
				t.Fatalf("ParseComment returned error: %v", err)
			}
			if got := len(comment.Replies); got != tt.wantReplies {
				t.Fatalf("replies = %d, want %d", got, tt.wantReplies)
			}
			if tt.wantReplies > 0 && comment.Replies[0].Body != "reply" {
				t.Errorf("reply body = %q", comment.Replies[0].Body)
			}
		})
	}
}

func TestParseComment_InvalidReplies(t *testing.T) {
	parser := NewParser()
	_, err := parser.ParseComment(&types.Thing{
		Kind: KindComment,
		Data: json.RawMessage(`{"id":"c1","body":"x","replies":{"kind":"t3","data":{}}}`),
	})
	if err == nil {
		t.Fatal("expected error for replies that are not a listing")
	}
}

func TestParseSubredditAndMore(t *testing.T) {
	parser := NewParser()

	sub, err := parser.ParseSubreddit(&types.Thing{
		Kind: KindSubreddit,
		Data: json.RawMessage(`{"id":"2qh1i","name":"t5_2qh1i","display_name":"AskReddit","subscribers":45000000,"over18":false}`),
	})
	if err != nil {
		t.Fatalf("ParseSubreddit returned error: %v", err)
	}
	if sub.DisplayName != "AskReddit" || sub.Subscribers != 45000000 {
		t.Errorf("unexpected subreddit: %+v", sub)
	}

	more, err := parser.ParseMore(&types.Thing{
		Kind: KindMore,
		Data: json.RawMessage(`{"id":"m","children":["a","b"]}`),
	})
	if err != nil {
		t.Fatalf("ParseMore returned error: %v", err)
	}
	if len(more.Children) != 2 {
		t.Errorf("more children = %v", more.Children)
	}
}

func TestExtractPosts(t *testing.T) {
	parser := NewParser()
	listing := listingThing(t, "t3_b",
		`{"kind":"t3","data":{"id":"a","title":"first"}}`,
		`{"kind":"t1","data":{"id":"x","body":"stray"}}`,
		`{"kind":"t3","data":{"id":"b","title":"second"}}`,
	)

	posts, after, err := parser.ExtractPosts(listing)
	if err != nil {
		t.Fatalf("ExtractPosts returned error: %v", err)
	}
	if after != "t3_b" {
		t.Errorf("after = %q, want t3_b", after)
	}
	if len(posts) != 2 || posts[0].Title != "first" || posts[1].Title != "second" {
		t.Errorf("unexpected posts: %+v", posts)
	}
}

func TestExtractPosts_NotAListing(t *testing.T) {
	parser := NewParser()
	_, _, err := parser.ExtractPosts(&types.Thing{Kind: KindLink, Data: json.RawMessage(`{}`)})
	if err == nil {
		t.Fatal("expected error for non-listing")
	}
}

func TestExtractComments(t *testing.T) {
	parser := NewParser()
	listing := listingThing(t, "",
		`{"kind":"t1","data":{"id":"c1","body":"one","link_id":"t3_p","replies":""}}`,
		`{"kind":"more","data":{"id":"m","children":["c3"]}}`,
		`{"kind":"t1","data":{"id":"c2","body":"two","link_id":"t3_p","replies":""}}`,
	)

	comments, after, err := parser.ExtractComments(listing)
	if err != nil {
		t.Fatalf("ExtractComments returned error: %v", err)
	}
	if after != "" {
		t.Errorf("after = %q, want empty", after)
	}
	if len(comments) != 2 || comments[0].Body != "one" || comments[1].Body != "two" {
		t.Errorf("unexpected comments: %+v", comments)
	}
}

func TestExtractSubreddits(t *testing.T) {
	parser := NewParser()
	listing := listingThing(t, "t5_z",
		`{"kind":"t5","data":{"display_name":"golang"}}`,
		`{"kind":"t5","data":{"display_name":"rust"}}`,
	)

	subs, after, err := parser.ExtractSubreddits(listing)
	if err != nil {
		t.Fatalf("ExtractSubreddits returned error: %v", err)
	}
	if after != "t5_z" || len(subs) != 2 || subs[1].DisplayName != "rust" {
		t.Errorf("unexpected result: %q %+v", after, subs)
	}
}

func TestExtractCommentTree(t *testing.T) {
	parser := NewParser()
	postListing := listingThing(t, "", `{"kind":"t3","data":{"id":"p","title":"Post"}}`)
	commentListing := listingThing(t, "",
		`{"kind":"t1","data":{"id":"a","author":"alice","body":"A","replies":{"kind":"Listing","data":{"children":[
			{"kind":"t1","data":{"id":"b","author":"bob","body":"B","replies":{"kind":"Listing","data":{"children":[
				{"kind":"t1","data":{"id":"d","author":"dan","body":"D","replies":""}}
			]}}}},
			{"kind":"more","data":{"id":"m","children":["z"]}}
		]}}}}`,
		`{"kind":"t1","data":{"id":"c","author":"[deleted]","body":"C","replies":""}}`,
		`{"kind":"more","data":{"id":"m2","children":["y"]}}`,
	)

	post, tree, err := parser.ExtractCommentTree([]*types.Thing{postListing, commentListing})
	if err != nil {
		t.Fatalf("ExtractCommentTree returned error: %v", err)
	}
	if post == nil || post.Title != "Post" {
		t.Fatalf("unexpected post: %+v", post)
	}
	if got := tree.Count(); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}
	if got := tree.Depth(); got != 3 {
		t.Errorf("Depth() = %d, want 3", got)
	}
	if got := tree.Hidden(); got != 2 {
		t.Errorf("Hidden() = %d, want 2", got)
	}
	if tree.More != 1 || tree.Children[0].More != 1 {
		t.Errorf("placeholders not attributed to their level: root %d, a %d", tree.More, tree.Children[0].More)
	}
	if tree.Children[0].ID != "a" || tree.Children[1].ID != "c" {
		t.Errorf("top-level order changed: %s, %s", tree.Children[0].ID, tree.Children[1].ID)
	}
	if tree.Children[1].Author.Valid {
		t.Error("deleted author should decode as invalid")
	}
}

func TestExtractCommentTree_MoreCount(t *testing.T) {
	parser := NewParser()
	commentListing := listingThing(t, "",
		`{"kind":"t1","data":{"id":"a","body":"A","replies":""}}`,
		`{"kind":"more","data":{"id":"m","count":37,"children":["x","y"]}}`,
	)

	_, tree, err := parser.ExtractCommentTree([]*types.Thing{listingThing(t, ""), commentListing})
	if err != nil {
		t.Fatalf("ExtractCommentTree returned error: %v", err)
	}
	if got := tree.Hidden(); got != 37 {
		t.Errorf("Hidden() = %d, want the placeholder count 37", got)
	}

	bad := listingThing(t, "", `{"kind":"more","data":{"children":"x"}}`)
	_, _, err = parser.ExtractCommentTree([]*types.Thing{listingThing(t, ""), bad})
	var parseErr *pkgerrs.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("malformed placeholder: expected ParseError, got %v", err)
	}
}

func TestExtractCommentTree_Errors(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		response []*types.Thing
	}{
		{name: "empty", response: nil},
		{name: "single listing", response: []*types.Thing{listingThing(t, "")}},
		{
			name: "comments not a listing",
			response: []*types.Thing{
				listingThing(t, ""),
				{Kind: KindComment, Data: json.RawMessage(`{}`)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parser.ExtractCommentTree(tt.response)
			var parseErr *pkgerrs.ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("expected ParseError, got %v", err)
			}
		})
	}
}

func TestExtractCommentTree_EmptyComments(t *testing.T) {
	parser := NewParser()
	post, tree, err := parser.ExtractCommentTree([]*types.Thing{listingThing(t, ""), listingThing(t, "")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post != nil {
		t.Errorf("expected nil post, got %+v", post)
	}
	if tree.Count() != 0 {
		t.Errorf("expected empty tree, got %d comments", tree.Count())
	}
}
