package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/desertthunder/likeswap/internal/server"
	"github.com/desertthunder/likeswap/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the OAuth authorization-code flow against a one-shot local callback server
// and stores the resulting session id in the session file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	exchanger, _, err := r.exchanger()
	if err != nil {
		return err
	}

	redirect, err := url.Parse(r.config.Credentials.Spotify.RedirectURI)
	if err != nil {
		return fmt.Errorf("%w: redirect_uri: %v", shared.ErrInvalidConfig, err)
	}
	addr := redirect.Host
	if redirect.Port() == "" {
		addr = fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	}

	authURL, _, err := exchanger.AuthorizationURL()
	if err != nil {
		return err
	}

	handler := server.NewOAuthHandler(exchanger, redirect.Path)
	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	router.Handler(handler)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen for the OAuth callback on %s: %w", addr, err)
	}

	serveCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()

	served := make(chan error, 1)
	go func() { served <- server.ServeListener(serveCtx, ln, router, r.logger) }()

	r.logger.Info("waiting for OAuth callback", "addr", addr, "path", redirect.Path)

	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL to authorize likeswap:\n%s\n", authURL)
	} else if err := r.openBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
		r.writePlain("Please open this URL in your browser:\n%s\n", authURL)
	} else {
		r.writePlain("🌐 Opened your browser to authorize likeswap...\n")
	}

	waitCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	login, err := handler.Wait(waitCtx)

	stopServer()
	if serr := <-served; serr != nil {
		r.logger.Warn("callback server stopped with error", "error", serr)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := r.writeSession(login.Session.ID()); err != nil {
		return err
	}

	r.logger.Debug("session stored", "user", login.User.ID())
	r.writePlain("✓ Logged in as %s\n", login.User.DisplayName())
	return nil
}

// AuthStatus reports the account bound to the stored session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	user, err := r.currentUser(ctx)
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrSessionNotFound):
		r.writePlain("Not logged in. Run 'likeswap auth login'.\n")
		return nil
	case err != nil:
		return err
	}

	r.writePlainHeader("Spotify account")
	r.writePlain("Name:  %s\n", user.DisplayName())
	r.writePlain("ID:    %s\n", user.ID())
	if email := user.Email(); email != "" {
		r.writePlain("Email: %s\n", email)
	}
	return nil
}

// AuthLogout revokes the stored session and removes the session file.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	id, err := r.readSession()
	if errors.Is(err, shared.ErrNotAuthenticated) {
		r.writePlain("Not logged in.\n")
		return nil
	}
	if err != nil {
		return err
	}

	registry, err := r.sessionRegistry()
	if err != nil {
		return err
	}
	if err := registry.Revoke(ctx, id); err != nil && !errors.Is(err, shared.ErrSessionNotFound) {
		return err
	}

	if err := r.clearSession(); err != nil {
		return err
	}
	r.writePlain("✓ Logged out\n")
	return nil
}

// AuthPrune deletes expired sessions.
func (r *Runner) AuthPrune(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.sessionRegistry()
	if err != nil {
		return err
	}

	n, err := registry.Prune(ctx)
	if err != nil {
		return err
	}
	r.writePlain("Removed %d expired session(s)\n", n)
	return nil
}
