package format

import (
	"fmt"
	"strings"

	"github.com/jamesprial/go-reddit-mcp/pkg/types"
)

const (
	// LinkBase is prepended to Reddit permalinks.
	LinkBase = "https://reddit.com"
	// Separator closes every listing block.
	Separator = "---"
	// NoContent stands in for the content of posts whose shape is unknown.
	NoContent = "None"
)

// Listing renders posts as blocks separated by blank lines. The author line
// is included only when authored is set. Callers handle the empty case.
func Listing(posts []*types.Post, authored bool) string {
	blocks := make([]string, 0, len(posts))
	for _, post := range posts {
		if post == nil {
			continue
		}
		blocks = append(blocks, postBlock(post, authored))
	}
	return strings.Join(blocks, "\n\n")
}

func postBlock(post *types.Post, authored bool) string {
	variant, content := Classify(post)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", post.Title)
	fmt.Fprintf(&sb, "Score: %d\n", post.Score)
	fmt.Fprintf(&sb, "Comments: %d\n", post.NumComments)
	if authored {
		fmt.Fprintf(&sb, "Author: %s\n", post.Author.DisplayName())
	}
	fmt.Fprintf(&sb, "Type: %s\n", variant)
	fmt.Fprintf(&sb, "Content: %s\n", contentText(content.Valid, content.ValueOrZero()))
	fmt.Fprintf(&sb, "Link: %s\n", Permalink(post.Permalink))
	sb.WriteString(Separator)
	return sb.String()
}

// PostDetail renders the header shown above a post's comment tree. It ends
// with a newline and carries no comment count or separator.
func PostDetail(post *types.Post) string {
	variant, content := Classify(post)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", post.Title)
	fmt.Fprintf(&sb, "Score: %d\n", post.Score)
	fmt.Fprintf(&sb, "Author: %s\n", post.Author.DisplayName())
	fmt.Fprintf(&sb, "Type: %s\n", variant)
	fmt.Fprintf(&sb, "Content: %s\n", contentText(content.Valid, content.ValueOrZero()))
	fmt.Fprintf(&sb, "Link: %s\n", Permalink(post.Permalink))
	return sb.String()
}

// UserComments renders a user's comments as blocks separated by blank lines.
func UserComments(comments []*types.Comment) string {
	blocks := make([]string, 0, len(comments))
	for _, c := range comments {
		if c == nil {
			continue
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Post ID: %s\n", strings.TrimPrefix(c.LinkID, "t3_"))
		fmt.Fprintf(&sb, "Score: %d\n", c.Score)
		fmt.Fprintf(&sb, "Content: %s\n", c.Body)
		fmt.Fprintf(&sb, "Link: %s\n", Permalink(c.Permalink))
		sb.WriteString(Separator)
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n\n")
}

// Permalink turns a Reddit-relative permalink into an absolute link.
func Permalink(path string) string {
	return LinkBase + path
}

func contentText(valid bool, s string) string {
	if !valid {
		return NoContent
	}
	return s
}
