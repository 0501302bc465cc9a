// package tasks implements the liked-songs sync engine.
//
// The core abstraction is [LibraryEngine], which reads listings with a [Fetcher] and writes with a [Mutator].
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/services"
)

// PreviewSize is the number of target tracks included in a [ReplaceResult] preview.
const PreviewSize = 10

// Workflow error codes.
const (
	CodeEmptyTargetSet = "empty_target_set"
	CodeClearFailed    = "clear_failed"
	CodePopulateFailed = "populate_failed"
)

// WorkflowError reports why a replace run stopped.
type WorkflowError struct {
	Code    string
	Message string
	Err     error
}

func (e *WorkflowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *WorkflowError) Unwrap() error { return e.Err }

// TopTrackRecorder stores each fetched target set. Errors are logged and otherwise ignored.
type TopTrackRecorder interface {
	RecordTopTracks(ctx context.Context, timeRange string, records []models.TrackRecord) error
}

// ReplaceOptions configures [LibraryEngine.Replace].
type ReplaceOptions struct {
	TimeRange services.TimeRange
	Limit     int // page size for the top-tracks listing
	DryRun    bool
}

// ReplaceResult describes a replace run, complete or not.
type ReplaceResult struct {
	DryRun    bool
	TimeRange services.TimeRange
	Target    []models.TrackRecord // top tracks that become the liked songs
	Preview   []models.TrackRecord // first [PreviewSize] of Target
	Liked     []models.TrackRecord // liked songs found before clearing
	Cleared   models.BatchRunResult
	Added     models.BatchRunResult
}

// EngineOpts configures a [LibraryEngine].
type EngineOpts struct {
	Fetch    FetcherOpts
	Mutate   MutatorOpts
	Recorder TopTrackRecorder // optional
	Logger   *log.Logger
	Metrics  *Metrics
}

// LibraryEngine runs listing and replace operations for one authenticated user.
type LibraryEngine struct {
	fetcher  *Fetcher
	mutator  *Mutator
	recorder TopTrackRecorder
	logger   *log.Logger
}

// NewLibraryEngine creates a LibraryEngine over lib.
func NewLibraryEngine(lib services.Library, opts EngineOpts) *LibraryEngine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	if opts.Fetch.Logger == nil {
		opts.Fetch.Logger = logger.With("component", "fetcher")
	}
	if opts.Mutate.Logger == nil {
		opts.Mutate.Logger = logger.With("component", "mutator")
	}
	if opts.Fetch.Metrics == nil {
		opts.Fetch.Metrics = opts.Metrics
	}
	if opts.Mutate.Metrics == nil {
		opts.Mutate.Metrics = opts.Metrics
	}

	return &LibraryEngine{
		fetcher:  NewFetcher(lib, opts.Fetch),
		mutator:  NewMutator(lib, opts.Mutate),
		recorder: opts.Recorder,
		logger:   logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *LibraryEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// TopTracks fetches the user's top tracks.
func (e *LibraryEngine) TopTracks(ctx context.Context, progress chan<- ProgressUpdate, timeRange services.TimeRange, limit int) ([]models.TrackRecord, error) {
	e.sendProgress(progress, fetchingTargetUpdate(timeRange.Short()))
	records, err := e.fetcher.TopTracks(ctx, timeRange, limit)
	e.sendProgress(progress, fetchedTargetUpdate(records))
	return records, err
}

// LikedSongs fetches the user's liked songs.
func (e *LibraryEngine) LikedSongs(ctx context.Context, progress chan<- ProgressUpdate) ([]models.TrackRecord, error) {
	e.sendProgress(progress, fetchingLikedUpdate())
	records, err := e.fetcher.LikedSongs(ctx)
	e.sendProgress(progress, fetchedLikedUpdate(records))
	return records, err
}

// AddLiked saves ids to liked songs in batches.
func (e *LibraryEngine) AddLiked(ctx context.Context, progress chan<- ProgressUpdate, ids []string) (models.BatchRunResult, error) {
	return e.mutator.ApplyFunc(ctx, ids, OpAdd, e.batchProgress(progress, AddLiked))
}

// ClearLiked removes ids from liked songs in batches. A nil ids removes every liked song.
func (e *LibraryEngine) ClearLiked(ctx context.Context, progress chan<- ProgressUpdate, ids []string) (models.BatchRunResult, error) {
	if ids == nil {
		liked, err := e.LikedSongs(ctx, progress)
		if err != nil {
			return models.BatchRunResult{}, err
		}
		ids = models.TrackIDs(liked)
	}
	return e.mutator.ApplyFunc(ctx, ids, OpRemove, e.batchProgress(progress, ClearLiked))
}

// Replace makes the user's liked songs equal to their top tracks.
//
// The run fetches the target set, then removes every current liked song, then adds the target set.
// It is not atomic: a failure while clearing stops the run before anything is added, and a failure
// while adding leaves the collection partially populated with no attempt to restore it. In both cases
// the returned [ReplaceResult] carries the counts so far alongside a [*WorkflowError].
//
// A dry run stops after fetching the target set and never mutates the collection.
func (e *LibraryEngine) Replace(ctx context.Context, progress chan<- ProgressUpdate, opts ReplaceOptions) (*ReplaceResult, error) {
	result := &ReplaceResult{DryRun: opts.DryRun, TimeRange: opts.TimeRange}

	target, err := e.TopTracks(ctx, progress, opts.TimeRange, opts.Limit)
	result.Target = target
	if err != nil {
		return result, err
	}
	if len(target) == 0 {
		return result, &WorkflowError{Code: CodeEmptyTargetSet, Message: "no top tracks found"}
	}

	result.Preview = target[:min(PreviewSize, len(target))]

	if opts.DryRun {
		e.sendProgress(progress, planUpdate(result))
		return result, nil
	}

	e.record(ctx, opts.TimeRange, target)

	liked, err := e.LikedSongs(ctx, progress)
	result.Liked = liked
	if err != nil {
		return result, err
	}

	result.Cleared, err = e.mutator.ApplyFunc(ctx, models.TrackIDs(liked), OpRemove, e.batchProgress(progress, ClearLiked))
	if err != nil {
		return result, err
	}
	if !result.Cleared.OK() {
		return result, &WorkflowError{
			Code:    CodeClearFailed,
			Message: fmt.Sprintf("%d of %d liked songs could not be removed", result.Cleared.ErrorCount, len(liked)),
		}
	}

	result.Added, err = e.mutator.ApplyFunc(ctx, models.TrackIDs(target), OpAdd, e.batchProgress(progress, AddLiked))
	if err != nil {
		return result, err
	}
	if !result.Added.OK() {
		return result, &WorkflowError{
			Code:    CodePopulateFailed,
			Message: fmt.Sprintf("%d of %d top tracks could not be added", result.Added.ErrorCount, len(target)),
		}
	}

	e.logger.Info("liked songs replaced", "removed", result.Cleared.SuccessCount, "added", result.Added.SuccessCount)
	e.sendProgress(progress, doneUpdate(result))
	return result, nil
}

func (e *LibraryEngine) record(ctx context.Context, timeRange services.TimeRange, target []models.TrackRecord) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordTopTracks(ctx, string(timeRange), target); err != nil {
		e.logger.Debug("failed to record top tracks", "error", err)
	}
}

func (e *LibraryEngine) batchProgress(progress chan<- ProgressUpdate, phase Phase) BatchFunc {
	if progress == nil {
		return nil
	}
	return func(batch, batches, done, total int, err error) {
		e.sendProgress(progress, batchUpdate(phase, batch, batches, done, total, err))
	}
}
