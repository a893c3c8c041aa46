package format

import (
	"strconv"
	"strings"

	"github.com/jamesprial/go-reddit-mcp/pkg/types"
)

// IndentUnit is repeated once per nesting level in front of every comment line.
const IndentUnit = "-- "

// RenderComment renders c and all of its replies, depth first, in the order
// the replies were supplied. depth controls the indentation of c itself.
func RenderComment(c *types.Comment, depth int) string {
	var sb strings.Builder
	writeComment(&sb, c, depth)
	return sb.String()
}

func writeComment(sb *strings.Builder, c *types.Comment, depth int) {
	if c == nil {
		return
	}
	indent := strings.Repeat(IndentUnit, depth)

	sb.WriteString(indent)
	sb.WriteString("* Author: ")
	sb.WriteString(c.Author.DisplayName())
	sb.WriteString("\n")

	sb.WriteString(indent)
	sb.WriteString("  Score: ")
	sb.WriteString(strconv.Itoa(c.Score))
	sb.WriteString("\n")

	sb.WriteString(indent)
	sb.WriteString("  ")
	sb.WriteString(c.Body)
	sb.WriteString("\n")

	for _, reply := range c.Replies {
		if reply == nil {
			continue
		}
		sb.WriteString("\n")
		writeComment(sb, reply, depth+1)
	}
}

// RenderTree renders every top-level comment of tree at depth zero, each
// preceded by a blank line.
func RenderTree(tree *types.CommentTree) string {
	if tree == nil {
		return ""
	}
	var sb strings.Builder
	for _, c := range tree.Children {
		if c == nil {
			continue
		}
		sb.WriteString("\n")
		writeComment(&sb, c, 0)
	}
	return sb.String()
}
