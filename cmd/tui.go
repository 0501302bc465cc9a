package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/likeswap/internal/shared"
	"github.com/desertthunder/likeswap/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for replacing liked songs.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	user, err := r.currentUser(ctx)
	if err != nil {
		return err
	}

	flags, err := r.parseSyncFlags(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	lib, err := r.libraryFor(ctx, user)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, r.newEngine(lib, user.ID(), flags.batchSize), flags.limit)
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	result, err := model.Result()
	if result != nil && !result.DryRun && err == nil && result.Added.OK() {
		r.writePlain("✓ Replaced liked songs with %d top tracks\n", result.Added.SuccessCount)
	}
	return err
}
