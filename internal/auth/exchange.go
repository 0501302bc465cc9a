package auth

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/services"
	"github.com/desertthunder/likeswap/internal/shared"
	"golang.org/x/oauth2"
)

// Credentials is the result of a successful code exchange.
type Credentials struct {
	Token   *oauth2.Token
	Profile *services.SpotifyUser
}

// LoginResult is a stored user with a new session.
type LoginResult struct {
	Session *models.Session
	User    *models.User
}

// Exchanger drives the authorization-code flow.
type Exchanger struct {
	provider services.OAuthProvider
	states   *StateStore
	users    UserStore
	sessions *SessionRegistry
	logger   *log.Logger
}

// NewExchanger creates an Exchanger.
func NewExchanger(provider services.OAuthProvider, states *StateStore, users UserStore, sessions *SessionRegistry, logger *log.Logger) *Exchanger {
	return &Exchanger{provider: provider, states: states, users: users, sessions: sessions, logger: logger}
}

// AuthorizationURL issues a new pending state and returns the consent URL carrying it.
func (e *Exchanger) AuthorizationURL() (authURL, state string, err error) {
	state, err = shared.GenerateState()
	if err != nil {
		return "", "", err
	}

	if _, err := e.states.Put(state); err != nil {
		return "", "", err
	}

	return e.provider.GetAuthURL(state), state, nil
}

// ExchangeCode validates state and trades code for a token and the account profile.
//
// The state is consumed before the token request, so a failed exchange cannot be retried with it.
func (e *Exchanger) ExchangeCode(ctx context.Context, code, state string) (*Credentials, error) {
	if state == "" {
		return nil, newAuthError(CodeMissingState, nil)
	}

	if _, ok := e.states.Take(state); !ok {
		return nil, newAuthError(CodeInvalidState, nil)
	}

	token, err := e.provider.Exchange(ctx, code)
	if err != nil {
		e.logger.Warn("token exchange failed", "error", err)
		return nil, newAuthError(CodeTokenExchange, err)
	}
	if token == nil || token.AccessToken == "" {
		return nil, newAuthError(CodeTokenExchange, fmt.Errorf("empty access token"))
	}

	profile, err := e.provider.Profile(ctx, token)
	if err != nil {
		e.logger.Warn("profile lookup failed", "error", err)
		return nil, newAuthError(CodeUserFetch, err)
	}
	if profile == nil || profile.ID == "" {
		return nil, newAuthError(CodeUserFetch, fmt.Errorf("empty profile"))
	}

	return &Credentials{Token: token, Profile: profile}, nil
}

// Complete runs [Exchanger.ExchangeCode], stores the user and opens a session.
func (e *Exchanger) Complete(ctx context.Context, code, state string) (*LoginResult, error) {
	creds, err := e.ExchangeCode(ctx, code, state)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(creds.Profile.ID, creds.Profile.ToProfile(), models.Credentials{
		AccessToken:  creds.Token.AccessToken,
		RefreshToken: creds.Token.RefreshToken,
		ExpiresAt:    creds.Token.Expiry,
	})

	stored, err := e.users.Upsert(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to store user: %w", err)
	}

	session, err := e.sessions.Create(ctx, stored.ID())
	if err != nil {
		return nil, err
	}

	e.logger.Info("login complete", "user", stored.ID())
	return &LoginResult{Session: session, User: stored}, nil
}

// PurgeExpiredStates drops pending states that were never used.
func (e *Exchanger) PurgeExpiredStates() {
	e.states.PurgeExpired()
}
