package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/likeswap/internal/auth"
	"github.com/desertthunder/likeswap/internal/shared"
)

// LoginCompleter finishes a login from a callback code and state. [auth.Exchanger] implements it.
type LoginCompleter interface {
	Complete(ctx context.Context, code, state string) (*auth.LoginResult, error)
}

// OAuthResult contains the result of a CLI login.
type OAuthResult struct {
	Login *auth.LoginResult
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler handles the single OAuth callback of a CLI login.
// Implements the Handler interface for registration with a Router.
type OAuthHandler struct {
	completer   LoginCompleter
	path        string
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewOAuthHandler creates a callback handler serving path.
func NewOAuthHandler(completer LoginCompleter, path string) *OAuthHandler {
	if path == "" {
		path = "/auth/callback"
	}
	return &OAuthHandler{
		completer:  completer,
		path:       path,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP handles the OAuth callback request.
//
// Only the first request is processed; later ones are rejected so a code is never exchanged twice.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		err := fmt.Errorf("%w: %s: %s", shared.ErrAuthFailed, e, q.Get("error_description"))
		h.Send(OAuthResult{err: err})
		http.Error(w, "Authorization denied", http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.Send(OAuthResult{err: fmt.Errorf("%w: missing_code", shared.ErrAuthFailed)})
		http.Error(w, "No authorization code received", http.StatusBadRequest)
		return
	}

	login, err := h.completer.Complete(r.Context(), code, q.Get("state"))
	if err != nil {
		h.Send(OAuthResult{err: err})
		status := http.StatusInternalServerError
		var authErr *auth.AuthError
		if errors.As(err, &authErr) {
			status = http.StatusBadRequest
		}
		http.Error(w, "Login failed", status)
		return
	}

	h.Send(OAuthResult{Login: login})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

// Wait blocks until the callback has been handled or ctx is done.
func (h *OAuthHandler) Wait(ctx context.Context) (*auth.LoginResult, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for authorization: %v", shared.ErrTimeout, ctx.Err())
	case res := <-h.resultChan:
		if res.err != nil {
			return nil, res.err
		}
		return res.Login, nil
	}
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Logged in to likeswap</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
