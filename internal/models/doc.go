// Package models defines domain entities for the likeswap sync service.
//
// The package contains two categories of types:
//
// 1. Projections: plain structs produced fresh for each operation
//   - [TrackRecord] : one entry of a fetched top-tracks or liked-songs listing
//   - [BatchRunResult] : success and error counts of one batched mutation
//   - [PendingAuthorization] : an issued OAuth state awaiting its callback
//
// 2. Persistent Entities: database-backed models exposed through accessors
//   - [User] : a Spotify account with its stored credentials
//   - [Session] : an opaque, expiring login bound to a [User]
//
// Persistent entities implement the [Model] interface.
package models
