// Package theme keeps the light/dark preference consistent across the cookie, the local store, the backend and
// the rendered document.
//
// A [Synchronizer] moves through Uninitialized, Resolving and Ready. Resolution waits for the session bootstrapper
// to finish, then picks one value:
//
//  1. the static fallback (light)
//  2. a valid cookie value
//  3. a valid local value, which supersedes the cookie
//  4. for an authenticated session, the backend value, which supersedes both
//
// When an authenticated session has no backend value the resolved one is written there. The result is applied to
// the document and written back to the cookie and the local store so all three agree.
//
// In Ready, [Synchronizer.SetTheme] applies a value immediately and saves it to the backend in the background when
// authenticated. Backend failures are logged once and never undo the local change.
package theme
