package tasks

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/services"
	"golang.org/x/time/rate"
)

const (
	DefaultPageSize  = services.MaxPageSize
	DefaultPageDelay = 500 * time.Millisecond
)

// FetcherOpts configures a [Fetcher].
type FetcherOpts struct {
	// PageDelay is the minimum spacing between page requests. Zero uses [DefaultPageDelay]; negative disables pacing.
	PageDelay time.Duration
	Logger    *log.Logger
	Metrics   *Metrics
}

// Fetcher reads complete listings from a paginated [services.Library].
//
// Pages are requested strictly in order. A listing ends at the first page shorter than the page size
// or the first page without a next link.
type Fetcher struct {
	lib     services.Library
	limiter *rate.Limiter
	logger  *log.Logger
	metrics *Metrics
}

// NewFetcher creates a Fetcher over lib.
func NewFetcher(lib services.Library, opts FetcherOpts) *Fetcher {
	delay := opts.PageDelay
	if delay == 0 {
		delay = DefaultPageDelay
	}

	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Fetcher{
		lib:     lib,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// TopTracks returns the user's top tracks for timeRange, requesting pageSize items per page.
//
// pageSize is clamped to 1..50; zero means 50. A failed page ends the listing and the records
// gathered so far are returned with a nil error. Cancellation returns the partial records with ctx.Err().
func (f *Fetcher) TopTracks(ctx context.Context, timeRange services.TimeRange, pageSize int) ([]models.TrackRecord, error) {
	size := clampPageSize(pageSize)
	var records []models.TrackRecord

	err := f.paginate(ctx, "top_tracks", size, func(ctx context.Context, offset int) (int, bool, error) {
		page, err := f.lib.TopTracks(ctx, timeRange, size, offset)
		if err != nil {
			return 0, false, err
		}
		for _, t := range page.Items {
			records = append(records, models.TrackRecord{
				Index:      len(records) + 1,
				ID:         t.ID,
				Name:       t.Name,
				Artists:    t.ArtistNames(),
				Popularity: t.Popularity,
			})
		}
		return len(page.Items), page.HasNext(), nil
	})

	return records, err
}

// LikedSongs returns the user's liked songs, newest first.
//
// Entries whose track is null are skipped and do not consume an index.
// Error handling matches [Fetcher.TopTracks].
func (f *Fetcher) LikedSongs(ctx context.Context) ([]models.TrackRecord, error) {
	size := DefaultPageSize
	var records []models.TrackRecord

	err := f.paginate(ctx, "liked_songs", size, func(ctx context.Context, offset int) (int, bool, error) {
		page, err := f.lib.SavedTracks(ctx, size, offset)
		if err != nil {
			return 0, false, err
		}
		for _, item := range page.Items {
			if item.Track == nil {
				continue
			}
			addedAt, perr := time.Parse(time.RFC3339, item.AddedAt)
			if perr != nil {
				f.logger.Debug("unparseable added_at", "track", item.Track.ID, "added_at", item.AddedAt, "error", perr)
			}
			records = append(records, models.TrackRecord{
				Index:      len(records) + 1,
				ID:         item.Track.ID,
				Name:       item.Track.Name,
				Artists:    item.Track.ArtistNames(),
				Popularity: item.Track.Popularity,
				AddedAt:    addedAt,
			})
		}
		return len(page.Items), page.HasNext(), nil
	})

	return records, err
}

// pageFunc fetches the page at offset and reports its raw item count and whether a next page exists.
type pageFunc func(ctx context.Context, offset int) (n int, hasNext bool, err error)

func (f *Fetcher) paginate(ctx context.Context, listing string, size int, fetch pageFunc) error {
	logger := f.logger.With("listing", listing)

	for offset := 0; ; offset += size {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := f.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}

		n, hasNext, err := fetch(ctx, offset)
		f.metrics.RecordPage(listing, err)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logger.Warn("page request failed, returning partial listing", "offset", offset, "error", err)
			return nil
		}

		logger.Debug("page fetched", "offset", offset, "items", n)

		if n < size || !hasNext {
			return nil
		}
	}
}

func clampPageSize(n int) int {
	if n <= 0 || n > services.MaxPageSize {
		return services.MaxPageSize
	}
	return n
}
