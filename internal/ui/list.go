package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/services"
)

var (
	_ list.Item = rangeItem{}
	_ list.Item = trackItem{}
)

// rangeItem wraps [services.TimeRange] to implement [list.Item].
type rangeItem struct {
	timeRange services.TimeRange
}

func (i rangeItem) FilterValue() string { return i.timeRange.Short() }
func (i rangeItem) Title() string       { return i.timeRange.Short() }
func (i rangeItem) Description() string {
	switch i.timeRange {
	case services.ShortTerm:
		return "about the last four weeks"
	case services.MediumTerm:
		return "about the last six months"
	case services.LongTerm:
		return "several years of listening"
	default:
		return string(i.timeRange)
	}
}

// trackItem wraps [models.TrackRecord] to implement [list.Item].
type trackItem struct {
	track models.TrackRecord
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return fmt.Sprintf("%d. %s", i.track.Index, i.track.Name) }
func (i trackItem) Description() string { return i.track.Artists }

func rangeItems() []list.Item {
	return []list.Item{
		rangeItem{services.ShortTerm},
		rangeItem{services.MediumTerm},
		rangeItem{services.LongTerm},
	}
}

func trackItems(records []models.TrackRecord) []list.Item {
	items := make([]list.Item, len(records))
	for i, r := range records {
		items[i] = trackItem{track: r}
	}
	return items
}
