// Package session holds the per-process authentication state: the bearer token and the signed-in member.
//
// # Token Store
//
// [TokenStore] persists one token per [shared.Environment]. [MemoryStore] keeps tokens in process memory;
// repositories.TokenRepository persists them in SQLite so they survive between CLI invocations.
//
// # Session
//
// A [Session] binds a store to one environment and is injected into the HTTP client and the auth manager.
// It is the only shared mutable resource of the client. It is read-mostly and written on
// login, logout and token expiry.
//
// A session holds at most one member identity. Switching identity requires [Session.Clear] first;
// [Session.SetMember] with a different member ID returns [shared.ErrIdentityConflict].
package session
