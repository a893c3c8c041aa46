package helpers

import (
	"strings"

	"github.com/jamesprial/go-reddit-mcp/test_helpers"
)

// Payload is a hostile or unusual response body. Fails reports whether the
// tool rendering it must report an error rather than an empty result.
type Payload struct {
	Name  string
	Body  string
	Fails bool
}

// JSONGenerator creates malformed and edge-case Reddit responses for testing
type JSONGenerator struct{}

// NewJSONGenerator creates a new JSON generator
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

// ListingPayloads are bodies for listing endpoints such as r/<sub>/hot.
func (g *JSONGenerator) ListingPayloads() []Payload {
	return []Payload{
		{Name: "just opening brace", Body: `{`, Fails: true},
		{Name: "top-level array", Body: `[]`, Fails: true},
		{Name: "missing kind", Body: `{"data": {"children": []}}`, Fails: true},
		{Name: "wrong kind", Body: `{"kind": "t3", "data": {"id": "x"}}`, Fails: true},
		{Name: "kind as number", Body: `{"kind": 123, "data": {}}`, Fails: true},
		{Name: "children as object", Body: `{"kind": "Listing", "data": {"children": {"test": "invalid"}}}`, Fails: true},
		{Name: "children as string", Body: `{"kind": "Listing", "data": {"children": "invalid"}}`, Fails: true},
		{Name: "child as string", Body: `{"kind": "Listing", "data": {"children": ["invalid"]}}`, Fails: true},
		{Name: "post data as string", Body: `{"kind": "Listing", "data": {"children": [{"kind": "t3", "data": "oops"}]}}`, Fails: true},
		{Name: "score as string", Body: `{"kind": "Listing", "data": {"children": [{"kind": "t3", "data": {"score": "high"}}]}}`, Fails: true},
		{Name: "after as number", Body: `{"kind": "Listing", "data": {"after": 12345, "children": []}}`, Fails: true},

		{Name: "null data", Body: `{"kind": "Listing", "data": null}`},
		{Name: "null children", Body: `{"kind": "Listing", "data": {"children": null}}`},
		{Name: "missing children", Body: `{"kind": "Listing", "data": {}}`},
		{Name: "null child", Body: `{"kind": "Listing", "data": {"children": [null]}}`},
		{Name: "foreign kinds only", Body: `{"kind": "Listing", "data": {"children": [{"kind": "t1", "data": {}}, {"kind": "t5", "data": {}}]}}`},
	}
}

// CommentPayloads are bodies for the comments/<id> endpoint.
func (g *JSONGenerator) CommentPayloads() []Payload {
	post := test_helpers.PostThing(map[string]any{"id": "abc", "title": "t", "is_self": true})
	postListing := test_helpers.Listing("", post)

	return []Payload{
		{Name: "object instead of pair", Body: `{"kind": "Listing"}`, Fails: true},
		{Name: "empty array", Body: `[]`, Fails: true},
		{Name: "single listing", Body: "[" + postListing + "]", Fails: true},
		{Name: "null listings", Body: `[null, null]`, Fails: true},
		{Name: "comment instead of listing", Body: "[" + postListing + `, {"kind": "t1", "data": {}}]`, Fails: true},
		{Name: "replies as number", Body: pair(postListing, `{"kind": "t1", "data": {"body": "x", "replies": 5}}`), Fails: true},
		{Name: "replies of wrong kind", Body: pair(postListing, `{"kind": "t1", "data": {"body": "x", "replies": {"kind": "t3", "data": {}}}}`), Fails: true},
		{Name: "body as number", Body: pair(postListing, `{"kind": "t1", "data": {"body": 5, "replies": ""}}`), Fails: true},

		{Name: "only more placeholders", Body: pair(postListing, test_helpers.MoreThing("a", "b"))},
		{Name: "null replies", Body: pair(postListing, `{"kind": "t1", "data": {"body": "x", "replies": null}}`)},
		{Name: "missing author", Body: pair(postListing, `{"kind": "t1", "data": {"body": "x"}}`)},
	}
}

// TokenPayloads are 200 responses from the token endpoint that carry no
// usable token.
func (g *JSONGenerator) TokenPayloads() []Payload {
	return []Payload{
		{Name: "empty object", Body: `{}`, Fails: true},
		{Name: "grant error", Body: `{"error": "invalid_grant"}`, Fails: true},
		{Name: "empty token", Body: `{"access_token": ""}`, Fails: true},
		{Name: "token as number", Body: `{"access_token": 123}`, Fails: true},
		{Name: "expiry as string", Body: `{"access_token": "x", "expires_in": "soon"}`, Fails: true},
		{Name: "not json", Body: `access_token=x`, Fails: true},
	}
}

// LargeListing builds a listing of n minimal posts.
func (g *JSONGenerator) LargeListing(n int) string {
	things := make([]string, n)
	for i := range things {
		things[i] = test_helpers.PostThing(map[string]any{"title": strings.Repeat("x", 10), "is_self": true})
	}
	return test_helpers.Listing("", things...)
}

func pair(postListing, comment string) string {
	return "[" + postListing + "," + test_helpers.Listing("", comment) + "]"
}
