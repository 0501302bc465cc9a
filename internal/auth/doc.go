// Package auth implements the OAuth login lifecycle.
//
// An [Exchanger] issues single-use state tokens, exchanges the authorization
// code returned to the callback, stores the account and opens a session.
// Pending states live only in process memory in a [StateStore] and expire
// after a TTL. A [SessionRegistry] resolves opaque session ids to users and
// prunes expired sessions.
//
// Callback failures are reported as [*AuthError] values whose Code is one of
// the machine-readable strings returned to HTTP clients.
package auth
