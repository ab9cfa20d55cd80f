// Package models defines the client-side data model shared by the BFF server and the terminal client.
//
// # UserProfile
//
// The backend returns the current user under several shapes depending on the endpoint:
// a bare user object, a { status, message, data } envelope, or an object nesting the user under "user".
// The id arrives as "_id" or "id". [NormalizeUser] is the only place these shapes are recognised; everything
// downstream works with the canonical [UserProfile] whose ID is never empty.
//
// # Session
//
// [Session] is a value snapshot of the client's belief about who is signed in. IsAuthenticated is derived from
// User and is never stored independently.
//
// # Theme
//
// [Theme] is the light/dark preference. [ParseTheme] accepts exactly "light" and "dark"; anything else is treated
// as absent so the next source in the precedence chain applies.
package models
