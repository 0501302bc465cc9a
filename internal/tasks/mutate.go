package tasks

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/services"
)

const (
	DefaultBatchSize         = 20
	DefaultInterBatchDelay   = 500 * time.Millisecond
	DefaultErrorBackoffDelay = 60 * time.Second
)

// Op is a mutation of the liked-songs collection.
type Op int

const (
	OpAdd Op = iota
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	default:
		return ""
	}
}

// MutatorOpts configures a [Mutator]. Zero values use the package defaults.
type MutatorOpts struct {
	BatchSize         int
	InterBatchDelay   time.Duration
	ErrorBackoffDelay time.Duration
	Waiter            Waiter
	Logger            *log.Logger
	Metrics           *Metrics
}

// BatchFunc observes each finished batch. done counts ids sent so far, err is the batch's error.
type BatchFunc func(batch, batches, done, total int, err error)

// Mutator applies add or remove operations in fixed-size batches.
//
// Batches run in order. A successful batch is followed by the inter-batch delay and a failed one by the
// error backoff, but only when more batches remain. Failed batches are counted and never retried.
type Mutator struct {
	lib       services.Library
	batchSize int
	delay     time.Duration
	backoff   time.Duration
	waiter    Waiter
	logger    *log.Logger
	metrics   *Metrics
}

// NewMutator creates a Mutator over lib. Batch sizes above 50 are clamped to 50.
func NewMutator(lib services.Library, opts MutatorOpts) *Mutator {
	m := &Mutator{
		lib:       lib,
		batchSize: opts.BatchSize,
		delay:     opts.InterBatchDelay,
		backoff:   opts.ErrorBackoffDelay,
		waiter:    opts.Waiter,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}

	if m.batchSize <= 0 {
		m.batchSize = DefaultBatchSize
	}
	if m.batchSize > services.MaxPageSize {
		m.batchSize = services.MaxPageSize
	}
	if m.delay == 0 {
		m.delay = DefaultInterBatchDelay
	}
	if m.backoff == 0 {
		m.backoff = DefaultErrorBackoffDelay
	}
	if m.waiter == nil {
		m.waiter = TimerWaiter{}
	}
	if m.logger == nil {
		m.logger = log.New(io.Discard)
	}
	return m
}

// BatchSize returns the effective batch size.
func (m *Mutator) BatchSize() int { return m.batchSize }

// Apply sends ids in batches. See [Mutator.ApplyFunc].
func (m *Mutator) Apply(ctx context.Context, ids []string, op Op) (models.BatchRunResult, error) {
	return m.ApplyFunc(ctx, ids, op, nil)
}

// ApplyFunc sends ids in batches and calls onBatch, if non-nil, after each one.
//
// Batch failures are reported in the result, not as an error. Every failed batch, the last included, is
// followed by the error backoff. The returned error is non-nil only when ctx is cancelled. Cancellation is
// observed between batches and never interrupts a batch in flight; the partial result is returned.
func (m *Mutator) ApplyFunc(ctx context.Context, ids []string, op Op, onBatch BatchFunc) (models.BatchRunResult, error) {
	var result models.BatchRunResult
	if len(ids) == 0 {
		return result, nil
	}

	call := m.lib.SaveTracks
	if op == OpRemove {
		call = m.lib.RemoveSavedTracks
	}

	total := len(ids)
	batches := (total + m.batchSize - 1) / m.batchSize
	logger := m.logger.With("op", op.String())

	for i := range batches {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		lo := i * m.batchSize
		hi := min(lo+m.batchSize, total)
		batch := ids[lo:hi]

		// a batch in flight always runs to completion
		err := call(context.WithoutCancel(ctx), batch)
		result.Batches++
		m.metrics.RecordBatch(op, len(batch), err)

		if err != nil {
			result.ErrorCount += len(batch)
			logger.Error("batch failed", "batch", i+1, "of", batches, "size", len(batch), "error", err)
		} else {
			result.SuccessCount += len(batch)
			logger.Debug("batch applied", "batch", i+1, "of", batches, "size", len(batch))
		}

		if onBatch != nil {
			onBatch(i+1, batches, hi, total, err)
		}

		var pause time.Duration
		switch {
		case err != nil:
			pause = m.backoff
			logger.Warn("backing off after failed batch", "delay", pause)
		case i < batches-1:
			pause = m.delay
		default:
			continue
		}

		if werr := m.waiter.Wait(ctx, pause); werr != nil {
			return result, werr
		}
	}

	return result, ctx.Err()
}
