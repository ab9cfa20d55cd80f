// Package services implements the HTTP client for the travel-stories backend API.
//
// # APIService
//
// [APIService] issues raw requests relative to a base URL (e.g. http://localhost:4000/api) and returns an
// [APIResponse] for any status code. Cookies reach the backend in one of two ways:
//   - server side, [APIService.WithCookies] returns a copy that attaches the incoming request's cookies
//   - client side, the [http.Client] carries a cookie jar
//
// # Typed Endpoints
//
// Every endpoint the client consumes has a helper: [APIService.GoogleAuthURL], [APIService.ConfirmGoogle],
// [APIService.Login], [APIService.Register], [APIService.Logout], [APIService.Refresh], [APIService.Me],
// [APIService.MeProfile], [APIService.GetTheme] and [APIService.SaveTheme].
//
// # Error Handling
//
// Non-2xx responses and transport failures are classified so callers can branch with [errors.Is]:
//   - [ErrTransient] : connection refused, timeout, 502/503/504
//   - [ErrUnauthenticated] : 401/403/404 on session endpoints (/users/me, /auth/refresh, /theme)
//   - [shared.ErrAuthFailed] : 4xx on login, register and OAuth confirmation
//   - [shared.ErrAPIRequest] : any other non-2xx
//   - [models.ErrInvalidProfile] : a 2xx user payload without an id
//
// [IsTransient] is the single predicate background synchronizers use to decide whether to keep prior state.
package services
