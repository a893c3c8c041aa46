// Package redditmcp provides a read-only Reddit content source for agent tools.
//
// # Overview
//
// The Client fetches the content behind the tools in pkg/tools: hot listings,
// single submissions with their comment trees, search results, user history
// and popular subreddits. It never writes to Reddit.
//
// # Features
//
//   - Authentication mode chosen from the credentials supplied
//   - OAuth2 token caching with renewal shortly before expiry
//   - Built-in rate limiting that also honours Reddit's rate-limit headers
//   - Lazy listing iterators that page with the "after" cursor
//   - Structured logging support via Go's slog package
//
// # Quick Start
//
//	creds, err := redditmcp.CredentialsFrom(
//		os.Getenv("REDDIT_CLIENT_ID"),
//		os.Getenv("REDDIT_CLIENT_SECRET"),
//		os.Getenv("REDDIT_REFRESH_TOKEN"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := redditmcp.NewClient(&redditmcp.Config{
//		Credentials: creds,
//		UserAgent:   "web:myapp:1.0 (by /u/yourusername)",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Authentication Modes
//
// CredentialsFrom drops empty values and interprets the rest by count:
//
//   - none: anonymous requests to the public www.reddit.com JSON endpoints
//   - one: a bearer token sent as-is
//   - two: client ID and secret, using the client_credentials grant
//   - three: client ID, secret and refresh token, using the refresh_token grant
//
// # Connection Lifecycle
//
// NewClient performs no network I/O. The first request, or an explicit call
// to Connect, obtains an access token. If that fails the error is returned
// and the next request tries again.
//
// # Iterators
//
// Listing methods return a types.Iterator. HasNext may perform a request;
// when it fails HasNext still reports true and the following Next returns the
// error:
//
//	it := client.Hot(ctx, "golang", 25)
//	for it.HasNext() {
//		post, err := it.Next()
//		if err != nil {
//			return err
//		}
//		fmt.Println(post.Title)
//	}
//
// Pages are requested with at most 100 items each and iteration stops once
// the limit passed to the method has been reached. A limit of zero or less
// yields nothing.
//
// # Error Handling
//
// Errors are values from pkg/errors and can be inspected with errors.As:
//
//   - *errors.ConfigError: invalid configuration or a rejected name or ID
//   - *errors.AuthError: the token endpoint refused the credentials
//   - *errors.RequestError: the request could not be sent
//   - *errors.APIError: Reddit answered with a non-2xx status
//   - *errors.ParseError: the response could not be decoded
//   - *errors.NotFoundError: a submission does not exist
//
// # Rate Limiting
//
// Requests pass through a token bucket (60 per minute with a burst of 10 by
// default). When Reddit reports an exhausted quota or sends Retry-After, all
// requests wait until the reset time.
package redditmcp
