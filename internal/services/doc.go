// Package services talks to the cataloguing REST backend.
//
// # Client
//
// [Client] is the single place requests are built. It resolves the bearer token from the
// injected [session.Session], attaches it for Auth requests and maps every non-2xx status to a
// [*shared.HTTPError]. Auth requests without a usable token fail with [shared.ErrNotAuthenticated]
// before any network call. A 401/403 answer to an Auth request expires the session, so the next
// Auth request fails fast instead of replaying a stale token.
//
// Optional client-side rate limiting ([golang.org/x/time/rate]) and a circuit breaker
// ([github.com/sony/gobreaker/v2]) are configured through [ClientOpts]. Requests are never retried.
//
// # Backend
//
// [Backend] wraps the client with one typed method per endpoint:
//   - auth: [Backend.Login], [Backend.VerifyToken], password reset
//   - member: [Backend.Me], [Backend.MemberByHandle], [Backend.UpdateMember], [Backend.Register]
//   - favorites: [Backend.IsFavorite], [Backend.AddFavorite], [Backend.RemoveFavorite], [Backend.Favorites]
//   - followers: [Backend.IsFollowing], [Backend.Follow], [Backend.Unfollow], lists and counts
//   - reviews: [Backend.Reviews], [Backend.ReviewAverage], [Backend.CreateReview], [Backend.MemberReviews]
//   - media: lookups and search for movies, series and albums
//
// Inputs are validated with [shared.ValidateStruct] before a request is sent.
//
// # Errors
//
//   - [shared.ErrNotAuthenticated] : no session token
//   - [shared.ErrUnauthorized], [shared.ErrForbidden] : token rejected, session cleared
//   - [shared.ErrNotFound], [shared.ErrServerError], [shared.ErrAPIRequest] : other statuses
//   - [shared.ErrTransport] : network failure
//   - [shared.ErrMalformedPayload] : body could not be decoded
//   - [shared.ErrCircuitOpen] : breaker is open
//   - [shared.ErrInvalidInput] : client-side validation failed
//
// Cancelled requests satisfy [shared.IsAborted] and mean "no result".
package services
