package tasks

import (
	"fmt"

	"github.com/desertthunder/likeswap/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchTarget Phase = iota
	FetchLiked
	ReportPlan
	ClearLiked
	AddLiked
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchTarget:
		return "fetch_target"
	case FetchLiked:
		return "fetch_liked"
	case ReportPlan:
		return "report_plan"
	case ClearLiked:
		return "clear_liked"
	case AddLiked:
		return "add_liked"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchingTargetUpdate(timeRange string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTarget,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching top tracks (%s)...", timeRange),
	}
}

func fetchedTargetUpdate(records []models.TrackRecord) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTarget,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d top tracks", len(records)),
		Data:    records,
	}
}

func fetchingLikedUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLiked,
		Step:    0,
		Total:   1,
		Message: "Fetching liked songs...",
	}
}

func fetchedLikedUpdate(records []models.TrackRecord) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLiked,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d liked songs", len(records)),
		Data:    records,
	}
}

func planUpdate(result *ReplaceResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReportPlan,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Dry run: would replace liked songs with %d top tracks", len(result.Target)),
		Data:    result,
	}
}

func batchUpdate(phase Phase, batch, batches, done, total int, err error) ProgressUpdate {
	verb := "Adding"
	if phase == ClearLiked {
		verb = "Removing"
	}

	msg := fmt.Sprintf("[%d/%d] %s songs (%d/%d)", batch, batches, verb, done, total)
	if err != nil {
		msg = fmt.Sprintf("[%d/%d] ✗ batch failed: %v", batch, batches, err)
	}

	return ProgressUpdate{
		Phase:   phase,
		Step:    done,
		Total:   total,
		Message: msg,
	}
}

func doneUpdate(result *ReplaceResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Replaced liked songs: removed %d, added %d", result.Cleared.SuccessCount, result.Added.SuccessCount),
		Data:    result,
	}
}
