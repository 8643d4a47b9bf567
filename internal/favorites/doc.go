// Package favorites keeps a view's favorite toggle in sync with the backend.
//
// A [Tracker] owns the status of one media item for one mounted view: [Tracker.Mount] queries it,
// [Tracker.Toggle] flips it and only changes local state after the backend confirms, and
// [Tracker.Unmount] cancels in-flight work so late results are dropped. Concurrent toggles are not
// sequenced; the last response to arrive wins.
//
// [CheckMany] resolves the status of a whole carousel at once over a rate-limited worker pool.
//
// [Cache] is opt-in. Trackers sharing a cache see each other's confirmed changes through
// [events.KindFavorite] events on the bus; trackers without one behave independently.
package favorites
