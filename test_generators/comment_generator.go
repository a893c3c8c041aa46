package test_generators

import (
	"fmt"
	"math/rand"

	"github.com/jamesprial/go-reddit-mcp/test_helpers"
)

// GeneratedThread is a comment thing with the shape of the tree it encodes.
type GeneratedThread struct {
	Thing string
	// Count is the number of comments in the thread, root included.
	Count int
	// Depth is the number of levels, 1 for a comment without replies.
	Depth int
	// Order lists comment bodies in pre-order.
	Order []string
}

// CommentGenerator generates Reddit comment trees for testing
type CommentGenerator struct {
	rand    *rand.Rand
	seq     int
	replies []string
	users   []string
}

// NewCommentGenerator creates a generator; equal seeds give equal output.
func NewCommentGenerator(seed int64) *CommentGenerator {
	return &CommentGenerator{
		rand: rand.New(rand.NewSource(seed)),
		replies: []string{
			"You're absolutely right!",
			"I see what you mean, but...",
			"Interesting perspective!",
			"Could you provide more details?",
			"I respectfully disagree.",
		},
		users: []string{
			"thoughtful_commenter", "expert_analyst", "casual_observer",
			"helpful_explainer", "skeptic_user", "[deleted]",
		},
	}
}

// Thread generates a random tree of at most maxDepth levels where each
// comment has up to maxReplies replies.
func (cg *CommentGenerator) Thread(maxDepth, maxReplies int) GeneratedThread {
	return cg.thread(1, maxDepth, maxReplies)
}

func (cg *CommentGenerator) thread(level, maxDepth, maxReplies int) GeneratedThread {
	data := cg.commentData()
	out := GeneratedThread{Count: 1, Depth: 1, Order: []string{data["body"].(string)}}

	var replies []string
	if level < maxDepth && maxReplies > 0 {
		for i := cg.rand.Intn(maxReplies + 1); i > 0; i-- {
			child := cg.thread(level+1, maxDepth, maxReplies)
			replies = append(replies, child.Thing)
			out.Count += child.Count
			out.Order = append(out.Order, child.Order...)
			if child.Depth+1 > out.Depth {
				out.Depth = child.Depth + 1
			}
		}
	}

	out.Thing = test_helpers.CommentThing(data, replies...)
	return out
}

// Chain generates a single line of depth nested replies.
func (cg *CommentGenerator) Chain(depth int) GeneratedThread {
	if depth <= 0 {
		return GeneratedThread{}
	}
	data := cg.commentData()
	if depth == 1 {
		return GeneratedThread{Thing: test_helpers.CommentThing(data), Count: 1, Depth: 1, Order: []string{data["body"].(string)}}
	}
	child := cg.Chain(depth - 1)
	return GeneratedThread{
		Thing: test_helpers.CommentThing(data, child.Thing),
		Count: child.Count + 1,
		Depth: child.Depth + 1,
		Order: append([]string{data["body"].(string)}, child.Order...),
	}
}

func (cg *CommentGenerator) commentData() map[string]any {
	cg.seq++
	id := fmt.Sprintf("c%d", cg.seq)
	return map[string]any{
		"id":     id,
		"name":   "t1_" + id,
		"author": cg.users[cg.rand.Intn(len(cg.users))],
		// The sequence number keeps bodies unique so order can be checked.
		"body":  fmt.Sprintf("%s (#%d)", cg.replies[cg.rand.Intn(len(cg.replies))], cg.seq),
		"score": cg.rand.Intn(200) - 20,
	}
}
