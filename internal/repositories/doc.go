// Package repositories implements SQLite persistence for the client's local state.
//
// Key Implementations:
//   - [TokenRepository] : bearer tokens keyed by environment; implements session.TokenStore
//   - [PreferenceRepository] : key/value preferences such as the UI locale
//
// Tables are created by the embedded migrations in the shared package.
package repositories
