// Package server provides HTTP routing, middleware and the auth endpoints of the likeswap API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging], [Recover] and [Instrument] are provided.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # API
//
// [NewAPI] assembles the router served by `likeswap serve`:
//
//	GET /              service banner
//	GET /auth/login    {"auth_url": ...}
//	GET /auth/status   {"authenticated": bool, "user": ...} for the session_id cookie
//	GET /auth/callback completes a login and sets the session_id cookie
//	GET /metrics       Prometheus exposition
//
// # CLI Callback Handler
//
// [OAuthHandler] serves the redirect of `likeswap auth login`. It processes exactly one callback,
// completes the login through a [LoginCompleter] and reports the result on a channel. A temporary
// server runs on the redirect URI's host and shuts down once the result arrives.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
