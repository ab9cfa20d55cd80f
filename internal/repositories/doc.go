// Package repositories implements SQLite persistence for the terminal client's profile.
//
// The terminal client plays the browser's role for the BFF and backend, so it needs the two pieces of state a
// browser keeps between visits:
//   - [LocalStorage] : a string key/value store standing in for window.localStorage ("theme", "auth-storage")
//   - [CookieStore] : an [http.CookieJar] whose cookies survive restarts in the cookies table
//
// Both share the profile database opened by shared.OpenProfile.
package repositories
