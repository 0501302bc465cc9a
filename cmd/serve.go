package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/likeswap/internal/server"
	"github.com/desertthunder/likeswap/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the login API until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	exchanger, registry, err := r.exchanger()
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	}

	api := server.NewAPI(server.APIOpts{
		Auth:     exchanger,
		Sessions: registry,
		Logger:   shared.WithLogger(r.logger, "component", "http"),
		Registry: r.registry,
		Secure:   cmd.Bool("secure"),
	})

	for _, route := range api.Routes() {
		r.logger.Debug("route registered", "route", route)
	}

	go r.janitor(ctx, cmd.Duration("prune-interval"), func(ctx context.Context) {
		exchanger.PurgeExpiredStates()
		if _, err := registry.Prune(ctx); err != nil {
			r.logger.Warn("failed to prune sessions", "error", err)
		}
	})

	r.logger.Info("starting server", "addr", addr)
	return server.Serve(ctx, addr, api, r.logger)
}

// janitor calls sweep every interval until ctx is done.
func (r *Runner) janitor(ctx context.Context, interval time.Duration, sweep func(context.Context)) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(ctx)
		}
	}
}
