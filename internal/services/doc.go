// Package services wraps the Spotify Web API behind two capability interfaces.
//
// # Library
//
// [Library] covers what the sync engine needs: paged reads of top tracks and
// liked songs, and batched writes to the liked-songs collection. Pages hold at
// most [MaxPageSize] items and writes accept at most [MaxPageSize] ids.
//
// # OAuth
//
// [OAuthProvider] covers the authorization-code flow: building the consent
// URL, exchanging the code and fetching the account profile.
//
// [SpotifyService] implements both. [SpotifyService.WithToken] returns a copy
// bound to one user's token; the underlying [oauth2.Client] refreshes expired
// tokens and reports each new one to a callback so it can be persisted.
//
// # Error Handling
//
// HTTP status codes map onto sentinel errors from the shared package:
//   - [shared.ErrNotAuthenticated] : no token attached
//   - [shared.ErrTokenExpired] : 401, reauthorization needed
//   - [shared.ErrRateLimited] : 429
//   - [shared.ErrServiceUnavailable] : 503
//   - [shared.ErrAPIRequest] : any other failure
package services
