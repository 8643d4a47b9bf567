// Package models defines the domain records exchanged with the cataloguing backend.
//
// Records fall into three groups:
//
//  1. Identity: [Member] and the inputs that change it ([MemberUpdate], [Registration], [Credentials]).
//  2. Media: [MediaType] with its [MediaRef] identifier, plus [Movie], [Series] and [Album] summaries.
//  3. Social: [Review], [ReviewAverage], [FollowCounts] and [FollowEdge].
//
// Movie and series identifiers are numeric (TMDB); album identifiers are opaque strings (Spotify).
// [MediaRef] keeps both behind one comparable key so caches and event topics can use it directly.
package models
