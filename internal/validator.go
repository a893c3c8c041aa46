package internal

import (
	"fmt"
	"strings"

	pkgerrs "github.com/jamesprial/go-reddit-mcp/pkg/errors"
)

const (
	// Subreddit name constraints
	maxSubredditLength = 21

	// Username constraints
	maxUsernameLength = 20

	// Reddit IDs are short base36 strings
	maxIDLength = 16

	// User agent constraints
	maxUserAgentLength = 256
)

// Validator checks values before they are interpolated into request paths.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSubredditName checks a single subreddit name. Names such as "all"
// and "popular" are accepted; Reddit itself decides whether they exist.
func (v *Validator) ValidateSubredditName(name string) error {
	if name == "" {
		return &pkgerrs.ConfigError{Field: "subreddit", Message: "subreddit name cannot be empty"}
	}
	if len(name) > maxSubredditLength {
		return &pkgerrs.ConfigError{Field: "subreddit", Message: fmt.Sprintf("subreddit name cannot exceed %d characters", maxSubredditLength)}
	}
	for i, ch := range name {
		if !isAlnum(ch) && ch != '_' {
			return &pkgerrs.ConfigError{Field: "subreddit", Message: fmt.Sprintf("subreddit name contains invalid character '%c' at position %d", ch, i)}
		}
	}
	return nil
}

// ValidateSubredditToken checks a "+"-joined set of subreddit names.
func (v *Validator) ValidateSubredditToken(token string) error {
	for _, name := range strings.Split(token, "+") {
		if err := v.ValidateSubredditName(name); err != nil {
			return err
		}
	}
	return nil
}

// ValidateUsername checks a Reddit account name.
func (v *Validator) ValidateUsername(name string) error {
	if name == "" {
		return &pkgerrs.ConfigError{Field: "username", Message: "username cannot be empty"}
	}
	if len(name) > maxUsernameLength {
		return &pkgerrs.ConfigError{Field: "username", Message: fmt.Sprintf("username cannot exceed %d characters", maxUsernameLength)}
	}
	for i, ch := range name {
		if !isAlnum(ch) && ch != '_' && ch != '-' {
			return &pkgerrs.ConfigError{Field: "username", Message: fmt.Sprintf("username contains invalid character '%c' at position %d", ch, i)}
		}
	}
	return nil
}

// ValidatePostID checks a submission ID without its "t3_" prefix.
func (v *Validator) ValidatePostID(id string) error {
	if id == "" {
		return &pkgerrs.ConfigError{Field: "post_id", Message: "post ID cannot be empty"}
	}
	if len(id) > maxIDLength {
		return &pkgerrs.ConfigError{Field: "post_id", Message: fmt.Sprintf("post ID too long (max %d characters)", maxIDLength)}
	}
	for _, ch := range id {
		if !isAlnum(ch) {
			return &pkgerrs.ConfigError{Field: "post_id", Message: fmt.Sprintf("post ID contains invalid character: %c (only alphanumeric allowed)", ch)}
		}
	}
	return nil
}

// ValidateUserAgent validates the User-Agent string to prevent header injection attacks.
func (v *Validator) ValidateUserAgent(ua string) error {
	if len(ua) == 0 {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "user agent cannot be empty"}
	}
	if strings.ContainsAny(ua, "\r\n") {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "user agent cannot contain newline characters"}
	}
	if len(ua) > maxUserAgentLength {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: fmt.Sprintf("user agent too long (max %d characters)", maxUserAgentLength)}
	}
	return nil
}

func isAlnum(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
