package auth

import (
	"fmt"

	"github.com/desertthunder/likeswap/internal/shared"
)

// Error codes reported to callback clients.
const (
	CodeMissingState  = "missing_state"
	CodeInvalidState  = "invalid_state"
	CodeTokenExchange = "token_error"
	CodeUserFetch     = "user_error"
)

var messages = map[string]string{
	CodeMissingState:  "State parameter is missing",
	CodeInvalidState:  "State parameter is invalid or has expired",
	CodeTokenExchange: "Failed to retrieve access token from Spotify",
	CodeUserFetch:     "Failed to retrieve user info from Spotify",
}

// AuthError is a failed callback. It matches [shared.ErrAuthFailed] with [errors.Is].
type AuthError struct {
	Code    string
	Message string
	Err     error
}

func newAuthError(code string, err error) *AuthError {
	return &AuthError{Code: code, Message: messages[code], Err: err}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool { return target == shared.ErrAuthFailed }
