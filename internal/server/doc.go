// Package server provides HTTP routing, middleware and the server lifecycle for the midias API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers; with [Chain] and [ChiRouter.Use] the first middleware given is the outermost.
//
// The [ChiRouter] implementation uses chi internally, which gives path parameters ([Param]) and
// pluggable handlers for unknown paths and disallowed methods, so those responses can share the
// API's error envelope.
//
// # Handler Interface
//
// Endpoint groups implement the [Handler] interface and describe their routes as [Route] values.
// Each route may carry its own middleware, which is how authentication gates are attached.
//
// # Middleware
//
//   - [RequestID] : correlation id and a request-scoped logger in the context
//   - [Logging] : one log line per request
//   - [Recover] : panics become internal errors
//   - [CORS] : credentialed cross-origin access for configured origins (go-chi/cors)
//   - [MaxBody] : request body cap
//   - [Throttle] : per-client token buckets (golang.org/x/time/rate), used on login
//
// # Lifecycle
//
// [Server] serves until its context is cancelled and then shuts down gracefully.
package server
