package repositories

import (
	"context"

	"github.com/desertthunder/likeswap/internal/models"
)

// TopTrackAdapter implements tasks.TopTrackRecorder for one user using [TrackRepository].
type TopTrackAdapter struct {
	repo   *TrackRepository
	userID string
}

// NewTopTrackAdapter creates a new TopTrackAdapter recording snapshots for userID
func NewTopTrackAdapter(repo *TrackRepository, userID string) *TopTrackAdapter {
	return &TopTrackAdapter{repo: repo, userID: userID}
}

// RecordTopTracks stores records as the latest snapshot for timeRange. Empty sets are not recorded.
func (a *TopTrackAdapter) RecordTopTracks(ctx context.Context, timeRange string, records []models.TrackRecord) error {
	if len(records) == 0 {
		return nil
	}
	return a.repo.SaveTopTracks(ctx, a.userID, timeRange, records)
}
