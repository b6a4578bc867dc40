// Package server provides HTTP routing, middleware, and OAuth handling for the pulse web service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally and registers method-qualified patterns
// such as "POST /profile/picture". Routes may carry their own middleware, e.g. [RequireSession].
//
// # Middleware
//
//   - [RequestLogger] logs method, path, status and duration.
//   - [Recover] converts handler panics into 500 responses.
//   - [RateLimit] applies a per-client token bucket from a [ClientLimiter].
//   - [RequireSession] and [LoadSession] put the signed-in identity into the request context.
//
// # OAuth Handler
//
// [OAuthHandler] implements the OAuth2 authorization code flow for a web user. The connect step stores a random
// state in a short-lived cookie and redirects to the provider; the callback step checks the state (CSRF protection),
// exchanges the code for a token, and passes it to a completion callback.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
