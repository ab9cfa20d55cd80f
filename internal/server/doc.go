// Package server provides HTTP routing, middleware, and handlers for the backend-for-frontend.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns.
//
// # Middleware
//
//   - [RequestID] : assigns X-Request-ID and forwards it to the backend
//   - [Logging] : one charm log line per request with status, size and duration
//   - [RateLimit] : shared token bucket, 429 when exhausted
//   - [NoStore] : Cache-Control: no-store on /api/
//   - [RouteGuard] : /profile needs an accessToken cookie; /auth/login and /auth/register redirect home with one
//
// # API Routes
//
//	GET  /api/health                       → [Health], always 200, {"status":"waking-up"} when the backend is asleep
//	POST /api/auth/google/confirm-oauth    → [ConfirmOAuth], 400 without a code, then proxied
//	*    /api/...                          → [Proxy], cookies forwarded, Set-Cookie relayed, 502 when unreachable
//
// # Pages
//
//	GET /google-callback                   → [GoogleCallback], confirms the code and redirects
//	GET / /profile /auth/login /auth/register → [Pages], server-rendered shell
//
// # OAuth Callback Handler
//
// [OAuthHandler] serves a single Google callback for the terminal client. It hands the code to a
// [CodeExchange], sends the result through a channel and rejects any later callback. [ServeCallback] runs it on
// a temporary listener.
package server
