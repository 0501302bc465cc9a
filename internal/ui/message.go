package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgTopTracksFetched MsgKind = iota
	MsgProgressUpdate
	MsgReplaceComplete
)

type topTracksData struct {
	records []models.TrackRecord
	err     error
}

type replaceData struct {
	result *tasks.ReplaceResult
	err    error
}

// topTracksFetchedMsg is the constructor for [MsgTopTracksFetched]
func topTracksFetchedMsg(records []models.TrackRecord, err error) Msg {
	return Msg{kind: MsgTopTracksFetched, data: topTracksData{records, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// replaceCompleteMsg is the constructor for [MsgReplaceComplete]
func replaceCompleteMsg(result *tasks.ReplaceResult, err error) Msg {
	return Msg{kind: MsgReplaceComplete, data: replaceData{result, err}}
}
