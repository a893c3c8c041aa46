package internal

import (
	"encoding/json"
	"fmt"

	pkgerrs "github.com/jamesprial/go-reddit-mcp/pkg/errors"
	"github.com/jamesprial/go-reddit-mcp/pkg/types"
)

const (
	KindListing   = "Listing"
	KindComment   = "t1"
	KindLink      = "t3"
	KindSubreddit = "t5"
	KindMore      = "more"
)

// Parser handles parsing of Reddit API responses
type Parser struct{}

// NewParser creates a new parser instance
func NewParser() *Parser {
	return &Parser{}
}

func expectKind(thing *types.Thing, kind, op string) error {
	if thing == nil {
		return &pkgerrs.ParseError{Operation: op, Message: "thing is nil"}
	}
	if thing.Kind != kind {
		return &pkgerrs.ParseError{Operation: op, Message: fmt.Sprintf("expected %s, got %s", kind, thing.Kind)}
	}
	return nil
}

// ParseListing extracts a ListingData from a Thing of kind "Listing".
func (p *Parser) ParseListing(thing *types.Thing) (*types.ListingData, error) {
	if err := expectKind(thing, KindListing, "parse listing"); err != nil {
		return nil, err
	}

	var listing types.ListingData
	if err := json.Unmarshal(thing.Data, &listing); err != nil {
		return nil, &pkgerrs.ParseError{Operation: "parse listing", Err: err}
	}
	return &listing, nil
}

// ParsePost extracts a Post from a Thing of kind "t3".
func (p *Parser) ParsePost(thing *types.Thing) (*types.Post, error) {
	if err := expectKind(thing, KindLink, "parse post"); err != nil {
		return nil, err
	}

	var post types.Post
	if err := json.Unmarshal(thing.Data, &post); err != nil {
		return nil, &pkgerrs.ParseError{Operation: "parse post", Err: err}
	}
	return &post, nil
}

// ParseComment extracts a Comment from a Thing of kind "t1", including its
// nested replies.
func (p *Parser) ParseComment(thing *types.Thing) (*types.Comment, error) {
	if err := expectKind(thing, KindComment, "parse comment"); err != nil {
		return nil, err
	}

	var comment types.Comment
	if err := json.Unmarshal(thing.Data, &comment); err != nil {
		return nil, &pkgerrs.ParseError{Operation: "parse comment", Err: err}
	}

	replies, more, err := p.parseReplies(thing.Data)
	if err != nil {
		return nil, err
	}
	comment.Replies = replies
	comment.More = more
	return &comment, nil
}

// ParseSubreddit extracts a Subreddit from a Thing of kind "t5".
func (p *Parser) ParseSubreddit(thing *types.Thing) (*types.Subreddit, error) {
	if err := expectKind(thing, KindSubreddit, "parse subreddit"); err != nil {
		return nil, err
	}

	var subreddit types.Subreddit
	if err := json.Unmarshal(thing.Data, &subreddit); err != nil {
		return nil, &pkgerrs.ParseError{Operation: "parse subreddit", Err: err}
	}
	return &subreddit, nil
}

// ParseMore extracts the placeholder Reddit leaves where it truncated a
// comment listing.
func (p *Parser) ParseMore(thing *types.Thing) (*types.MoreData, error) {
	if err := expectKind(thing, KindMore, "parse more"); err != nil {
		return nil, err
	}

	var more types.MoreData
	if err := json.Unmarshal(thing.Data, &more); err != nil {
		return nil, &pkgerrs.ParseError{Operation: "parse more", Err: err}
	}
	return &more, nil
}

// ExtractPosts extracts all Post objects from a listing Thing along with the
// cursor for the next page.
func (p *Parser) ExtractPosts(listing *types.Thing) ([]*types.Post, string, error) {
	listingData, err := p.ParseListing(listing)
	if err != nil {
		return nil, "", err
	}

	posts := make([]*types.Post, 0, len(listingData.Children))
	for _, child := range listingData.Children {
		if child == nil || child.Kind != KindLink {
			continue
		}
		post, err := p.ParsePost(child)
		if err != nil {
			return nil, "", err
		}
		posts = append(posts, post)
	}
	return posts, listingData.AfterFullname, nil
}

// ExtractComments extracts the comments of a flat listing such as a user's
// comment history. "more" placeholders are skipped.
func (p *Parser) ExtractComments(listing *types.Thing) ([]*types.Comment, string, error) {
	listingData, err := p.ParseListing(listing)
	if err != nil {
		return nil, "", err
	}

	comments := make([]*types.Comment, 0, len(listingData.Children))
	for _, child := range listingData.Children {
		if child == nil || child.Kind != KindComment {
			continue
		}
		comment, err := p.ParseComment(child)
		if err != nil {
			return nil, "", err
		}
		comments = append(comments, comment)
	}
	return comments, listingData.AfterFullname, nil
}

// ExtractSubreddits extracts all Subreddit objects from a listing Thing.
func (p *Parser) ExtractSubreddits(listing *types.Thing) ([]*types.Subreddit, string, error) {
	listingData, err := p.ParseListing(listing)
	if err != nil {
		return nil, "", err
	}

	subs := make([]*types.Subreddit, 0, len(listingData.Children))
	for _, child := range listingData.Children {
		if child == nil || child.Kind != KindSubreddit {
			continue
		}
		sub, err := p.ParseSubreddit(child)
		if err != nil {
			return nil, "", err
		}
		subs = append(subs, sub)
	}
	return subs, listingData.AfterFullname, nil
}
