package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/likeswap/internal/formatter"
	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/services"
	"github.com/desertthunder/likeswap/internal/shared"
	"github.com/desertthunder/likeswap/internal/tasks"
	"github.com/urfave/cli/v3"
)

// likedPreviewSize is how many liked songs the text listing shows.
const likedPreviewSize = 20

// replaceSummary is the JSON document printed by a replace run.
type replaceSummary struct {
	User      string               `json:"user"`
	DryRun    bool                 `json:"dry_run"`
	TimeRange string               `json:"time_range"`
	Target    []models.TrackRecord `json:"target"`
	Liked     int                  `json:"liked_before"`
	Cleared   batchSummary         `json:"cleared"`
	Added     batchSummary         `json:"added"`
	Error     string               `json:"error,omitempty"`
}

type batchSummary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func summarizeBatch(b models.BatchRunResult) batchSummary {
	return batchSummary{Succeeded: b.SuccessCount, Failed: b.ErrorCount}
}

// syncFlags holds the parsed root flags shared by the replace and listing actions.
type syncFlags struct {
	timeRange services.TimeRange
	format    formatter.Format
	limit     int
	batchSize int
}

func (r *Runner) parseSyncFlags(cmd *cli.Command) (syncFlags, error) {
	var f syncFlags
	var err error

	if f.timeRange, err = services.ParseTimeRange(cmd.String("time-range")); err != nil {
		return f, err
	}
	if f.format, err = formatter.ParseFormat(cmd.String("format")); err != nil {
		return f, err
	}

	f.limit = cmd.Int("limit")
	if !cmd.IsSet("limit") && r.config.Sync.PageSize > 0 {
		f.limit = r.config.Sync.PageSize
	}
	if f.limit < 1 || f.limit > services.MaxPageSize {
		return f, fmt.Errorf("%w: --limit must be between 1 and %d", shared.ErrInvalidFlag, services.MaxPageSize)
	}

	f.batchSize = cmd.Int("batch-size")
	if f.batchSize < 0 || f.batchSize > services.MaxPageSize {
		return f, fmt.Errorf("%w: --batch-size must be between 1 and %d", shared.ErrInvalidFlag, services.MaxPageSize)
	}
	return f, nil
}

// Replace is the root action: it lists or replaces liked songs depending on the flags.
func (r *Runner) Replace(ctx context.Context, cmd *cli.Command) error {
	flags, err := r.parseSyncFlags(cmd)
	if err != nil {
		return err
	}

	user, err := r.currentUser(ctx)
	if err != nil {
		return err
	}

	lib, err := r.libraryFor(ctx, user)
	if err != nil {
		return err
	}

	engine := r.newEngine(lib, user.ID(), flags.batchSize)
	text := flags.format == formatter.Text

	if text {
		r.writePlain("🔐 Connected as %s\n", user.DisplayName())
	}

	showTop, showLiked := cmd.Bool("show-top"), cmd.Bool("show-liked")
	if showTop || showLiked {
		if showTop {
			if err := r.showTop(ctx, engine, flags); err != nil {
				return err
			}
		}
		if showLiked {
			return r.showLiked(ctx, engine, flags)
		}
		return nil
	}

	opts := tasks.ReplaceOptions{TimeRange: flags.timeRange, Limit: flags.limit, DryRun: cmd.Bool("dry-run")}

	var result *tasks.ReplaceResult
	if text {
		result, err = r.replaceWithProgress(ctx, engine, opts)
	} else {
		result, err = engine.Replace(ctx, nil, opts)
	}

	switch flags.format {
	case formatter.Text:
		r.reportReplace(result, err)
	case formatter.JSON:
		summary := replaceSummary{User: user.ID()}
		if result != nil {
			summary.DryRun = result.DryRun
			summary.TimeRange = string(result.TimeRange)
			summary.Target = result.Target
			summary.Liked = len(result.Liked)
			summary.Cleared = summarizeBatch(result.Cleared)
			summary.Added = summarizeBatch(result.Added)
		}
		if err != nil {
			summary.Error = err.Error()
		}
		if werr := r.writeJSON(summary, true); werr != nil {
			return werr
		}
	default:
		if result != nil && len(result.Target) > 0 {
			title := fmt.Sprintf("Top tracks (%s)", flags.timeRange.Short())
			if werr := formatter.Write(r.output, formatter.Listing{Title: title, Records: result.Target}, flags.format); werr != nil {
				return werr
			}
		}
	}

	return err
}

// replaceWithProgress runs a replace while printing each progress message as it arrives.
func (r *Runner) replaceWithProgress(ctx context.Context, engine *tasks.LibraryEngine, opts tasks.ReplaceOptions) (*tasks.ReplaceResult, error) {
	progress := make(chan tasks.ProgressUpdate, 64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			if update.Message != "" {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	result, err := engine.Replace(ctx, progress, opts)
	close(progress)
	wg.Wait()

	return result, err
}

func (r *Runner) reportReplace(result *tasks.ReplaceResult, err error) {
	if result == nil {
		result = &tasks.ReplaceResult{}
	}

	var wfErr *tasks.WorkflowError
	switch {
	case errors.As(err, &wfErr) && wfErr.Code == tasks.CodeEmptyTargetSet:
		r.writePlain("❌ No top tracks found for %s\n", result.TimeRange)
		return
	case result.DryRun && err == nil:
		r.writePlainln("🔍 DRY RUN - Would replace liked songs with these %d tracks:", len(result.Target))
		r.output.Write(formatter.ToText(formatter.Listing{Records: result.Target, Limit: tasks.PreviewSize}))
		return
	}

	r.writePlainHeader("Replace summary")
	r.writePlain("Liked songs found:  %d\n", len(result.Liked))
	r.writePlain("Removed:            %d (%d failed)\n", result.Cleared.SuccessCount, result.Cleared.ErrorCount)
	r.writePlain("Added:              %d (%d failed)\n", result.Added.SuccessCount, result.Added.ErrorCount)

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			r.writePlainln("❌ %v", err)
		}
		return
	}
	r.writePlainln("✅ Successfully replaced liked songs with top tracks!")
}

func (r *Runner) showTop(ctx context.Context, engine *tasks.LibraryEngine, flags syncFlags) error {
	records, err := engine.TopTracks(ctx, nil, flags.timeRange, flags.limit)
	if err != nil {
		return fmt.Errorf("failed to fetch top tracks: %w", err)
	}

	listing := formatter.Listing{
		Title:   fmt.Sprintf("📈 Your Top %d Tracks (%s):", len(records), flags.timeRange.Short()),
		Records: records,
	}
	return formatter.Write(r.output, listing, flags.format)
}

func (r *Runner) showLiked(ctx context.Context, engine *tasks.LibraryEngine, flags syncFlags) error {
	records, err := engine.LikedSongs(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch liked songs: %w", err)
	}

	listing := formatter.Listing{
		Title:   fmt.Sprintf("❤️  Your %d Liked Songs:", len(records)),
		Records: records,
	}
	if flags.format == formatter.Text {
		listing.Limit = likedPreviewSize
	}
	return formatter.Write(r.output, listing, flags.format)
}
