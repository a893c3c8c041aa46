package test_generators

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/jamesprial/go-reddit-mcp/pkg/types"
	"github.com/jamesprial/go-reddit-mcp/test_helpers"
)

// GeneratedPost is a post fixture together with the values a renderer should
// produce for it.
type GeneratedPost struct {
	Thing   string
	ID      string
	Title   string
	Variant types.Variant
	Content string
}

// PostGenerator generates Reddit submissions of every shape for testing
type PostGenerator struct {
	rand           *rand.Rand
	seq            int
	titleTemplates []string
	topics         []string
	subreddits     []string
	users          []string
}

// NewPostGenerator creates a generator; equal seeds give equal output.
func NewPostGenerator(seed int64) *PostGenerator {
	return &PostGenerator{
		rand: rand.New(rand.NewSource(seed)),
		titleTemplates: []string{
			"Ask r/%s: %s",
			"[Discussion] %s",
			"PSA: %s",
			"TIL about %s",
			"Analysis: %s",
		},
		topics: []string{
			"generics", "error wrapping", "context cancellation", "rate limiting",
			"structured logging", "table-driven tests", "goroutine leaks",
		},
		subreddits: []string{"golang", "programming", "technology", "science", "askreddit"},
		users:      []string{"tech_enthusiast", "casual_redditor", "expert_analyst", "curious_mind", "[deleted]"},
	}
}

// Post generates a submission of the given variant.
func (pg *PostGenerator) Post(variant types.Variant) GeneratedPost {
	pg.seq++
	id := fmt.Sprintf("p%d", pg.seq)
	sub := pg.pick(pg.subreddits)
	title := pg.title(sub)

	data := map[string]any{
		"id":           id,
		"name":         "t3_" + id,
		"title":        title,
		"author":       pg.pick(pg.users),
		"score":        pg.rand.Intn(5000) - 100,
		"num_comments": pg.rand.Intn(300),
		"subreddit":    sub,
		"permalink":    fmt.Sprintf("/r/%s/comments/%s/%s/", sub, id, slug(title)),
	}

	gp := GeneratedPost{ID: id, Title: title, Variant: variant}
	switch variant {
	case types.VariantText:
		body := fmt.Sprintf("Thoughts on %s?", pg.pick(pg.topics))
		data["is_self"] = true
		data["selftext"] = body
		data["url"] = "https://www.reddit.com" + data["permalink"].(string)
		gp.Content = body
	case types.VariantLink:
		data["url"] = fmt.Sprintf("https://example.com/articles/%s", id)
		gp.Content = data["permalink"].(string)
	case types.VariantGallery:
		link := "https://www.reddit.com/gallery/" + id
		data["is_gallery"] = true
		data["url"] = link
		gp.Content = link
	default:
		gp.Content = "None"
	}

	gp.Thing = test_helpers.PostThing(data)
	return gp
}

// Posts generates n submissions cycling through the text, link and gallery
// variants.
func (pg *PostGenerator) Posts(n int) []GeneratedPost {
	variants := []types.Variant{types.VariantText, types.VariantLink, types.VariantGallery}
	out := make([]GeneratedPost, n)
	for i := range out {
		out[i] = pg.Post(variants[i%len(variants)])
	}
	return out
}

// Things returns the JSON things of posts, ready for test_helpers.Listing.
func Things(posts []GeneratedPost) []string {
	things := make([]string, len(posts))
	for i, p := range posts {
		things[i] = p.Thing
	}
	return things
}

func (pg *PostGenerator) title(sub string) string {
	tmpl := pg.pick(pg.titleTemplates)
	topic := pg.pick(pg.topics)
	if strings.Count(tmpl, "%s") == 2 {
		return fmt.Sprintf(tmpl, sub, topic)
	}
	return fmt.Sprintf(tmpl, topic)
}

func (pg *PostGenerator) pick(options []string) string {
	return options[pg.rand.Intn(len(options))]
}

func slug(title string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
