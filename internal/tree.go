package internal

import (
	"bytes"
	"encoding/json"

	pkgerrs "github.com/jamesprial/go-reddit-mcp/pkg/errors"
	"github.com/jamesprial/go-reddit-mcp/pkg/types"
)

// ExtractCommentTree parses the [post_listing, comments_listing] pair returned
// by the comments endpoint. The post is nil when the first listing is empty.
// "more" placeholders are not expanded: the tree holds only comments Reddit
// actually returned, in the order it returned them, and records how many
// replies each placeholder stood for.
func (p *Parser) ExtractCommentTree(response []*types.Thing) (*types.Post, *types.CommentTree, error) {
	if len(response) < 2 {
		return nil, nil, &pkgerrs.ParseError{
			Operation: "extract comment tree",
			Message:   "expected post and comment listings",
		}
	}

	var post *types.Post
	posts, _, err := p.ExtractPosts(response[0])
	if err != nil {
		return nil, nil, err
	}
	if len(posts) > 0 {
		post = posts[0]
	}

	listing, err := p.ParseListing(response[1])
	if err != nil {
		return post, nil, err
	}
	children, more, err := p.commentChildren(listing)
	if err != nil {
		return post, nil, err
	}
	return post, &types.CommentTree{Children: children, More: more}, nil
}

// parseReplies decodes the "replies" field of a comment. Reddit sends an empty
// string when a comment has no replies and a Listing otherwise. The int is the
// number of replies left behind "more" placeholders.
func (p *Parser) parseReplies(data json.RawMessage) ([]*types.Comment, int, error) {
	var raw struct {
		Replies json.RawMessage `json:"replies"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, &pkgerrs.ParseError{Operation: "parse replies", Err: err}
	}

	r := bytes.TrimSpace(raw.Replies)
	if len(r) == 0 || bytes.Equal(r, []byte(`""`)) || bytes.Equal(r, []byte("null")) {
		return nil, 0, nil
	}

	var thing types.Thing
	if err := json.Unmarshal(r, &thing); err != nil {
		return nil, 0, &pkgerrs.ParseError{Operation: "parse replies", Err: err}
	}
	listing, err := p.ParseListing(&thing)
	if err != nil {
		return nil, 0, err
	}
	return p.commentChildren(listing)
}

func (p *Parser) commentChildren(listing *types.ListingData) ([]*types.Comment, int, error) {
	var comments []*types.Comment
	more := 0
	for _, child := range listing.Children {
		if child == nil {
			continue
		}
		switch child.Kind {
		case KindComment:
			c, err := p.ParseComment(child)
			if err != nil {
				return nil, 0, err
			}
			comments = append(comments, c)
		case KindMore:
			m, err := p.ParseMore(child)
			if err != nil {
				return nil, 0, err
			}
			more += m.Hidden()
		}
	}
	return comments, more, nil
}
