// Package session owns the client's belief about who is signed in.
//
// # Store
//
// [Store] is the single process-wide session container. Every mutation goes through its setters
// ([Store.SetUser], [Store.Clear], [Store.SetLoading], [Store.MarkSynchronized], [Store.Reset]) so the
// bootstrapper and the theme synchronizer cannot lose each other's updates. When a [Persister] is attached the
// user is mirrored under the "auth-storage" key as { user, isAuthenticated }.
//
// # Bootstrapper
//
// [Bootstrapper] resolves the session once per process:
//
//  1. a server-supplied candidate user, when present, is normalized and accepted (or cleared when it has no id)
//  2. otherwise GET /users/me
//  3. on an explicit "no user", POST /auth/refresh followed by one more GET /users/me whose result is final
//  4. an explicit "no session" outcome clears the store
//  5. a transient failure leaves the store exactly as it was
//
// Its guard is a named state ([Uninitialized], [Resolving], [Ready]); a second [Bootstrapper.Run] returns
// [Skipped] without touching the network. [Bootstrapper.Done] closes once Ready is reached.
//
// # Auth
//
// [Auth] performs the explicit user actions (login, register, Google confirmation, logout). Unlike the
// bootstrapper these return errors to the caller.
package session
