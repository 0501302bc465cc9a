// Package repositories implements SQLite persistence for the login lifecycle and track history.
//
// Key Implementations:
//   - [UserRepository] : Spotify accounts with their OAuth credentials
//   - [SessionRepository] : opaque login sessions; expiry is evaluated in SQL against SQLite's clock
//   - [TrackRepository] : a track catalog and timestamped top-track snapshots
//   - [TopTrackAdapter] : records the target set of each sync run for one user
//
// All timestamps are stored as INTEGER unix seconds.
package repositories
