// Package format renders Reddit posts, comment trees and listings as the
// plain text returned by the tools.
package format

import (
	"strings"

	"github.com/guregu/null/v6"

	"github.com/jamesprial/go-reddit-mcp/pkg/types"
)

const galleryURLPrefix = "https://www.reddit.com/gallery/"

// VariantOf reports the shape of a submission. Self posts are text, gallery
// posts are galleries, and anything else carrying a URL is a link.
func VariantOf(post *types.Post) types.Variant {
	switch {
	case post == nil:
		return types.VariantUnknown
	case post.IsSelf:
		return types.VariantText
	case post.IsGallery:
		return types.VariantGallery
	case post.URL != "":
		return types.VariantLink
	default:
		return types.VariantUnknown
	}
}

// Classify returns the variant of post and the content that goes with it.
// Link posts yield their permalink path, not the external URL. Content is
// invalid only for unknown posts; an empty self post yields a valid empty
// string.
func Classify(post *types.Post) (types.Variant, null.String) {
	variant := VariantOf(post)
	switch variant {
	case types.VariantLink:
		return variant, null.StringFrom(post.Permalink)
	case types.VariantText:
		return variant, null.StringFrom(post.SelfText)
	case types.VariantGallery:
		return variant, null.StringFrom(galleryLink(post))
	case types.VariantUnknown:
		return variant, null.String{}
	}
	return types.VariantUnknown, null.String{}
}

func galleryLink(post *types.Post) string {
	if strings.Contains(post.URL, "/gallery/") {
		return post.URL
	}
	return galleryURLPrefix + post.ID
}
