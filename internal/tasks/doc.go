// Package tasks synchronizes a user's liked songs with their top tracks.
//
// # Core Operations
//
// [LibraryEngine] exposes:
//
//  1. [LibraryEngine.Replace] : make liked songs equal to top tracks
//     - FETCH_TARGET: read every top track for the time range
//     - dry run stops here and reports the plan
//     - CLEAR: remove every current liked song in batches
//     - POPULATE: add the target set in batches
//
//  2. [LibraryEngine.TopTracks] and [LibraryEngine.LikedSongs] : read-only listings
//
//  3. [LibraryEngine.AddLiked] and [LibraryEngine.ClearLiked] : raw batched mutations
//
// Replace is not atomic. See its documentation for what a failure leaves behind.
//
// # Pacing
//
// [Fetcher] spaces page requests with a [rate.Limiter]. [Mutator] waits through a [Waiter]
// between batches and backs off longer after a failed batch. Both honour context cancellation
// at page and batch boundaries.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
//
// # Top Track History
//
// The optional [TopTrackRecorder] stores every fetched target set.
// Recording errors are ignored so they never disrupt a run.
package tasks
