package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/services"
	"github.com/desertthunder/likeswap/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RangeView ViewState = iota
	PreviewView
	ConfirmView
	ReplaceView
	ResultView
)

// logLines is the number of recent progress messages kept on screen.
const logLines = 6

// Engine is the part of [tasks.LibraryEngine] the TUI drives.
type Engine interface {
	TopTracks(ctx context.Context, progress chan<- tasks.ProgressUpdate, timeRange services.TimeRange, limit int) ([]models.TrackRecord, error)
	Replace(ctx context.Context, progress chan<- tasks.ProgressUpdate, opts tasks.ReplaceOptions) (*tasks.ReplaceResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	view         ViewState
	engine       Engine
	limit        int
	timeRange    services.TimeRange
	width        int
	height       int
	rangeList    list.Model
	trackList    list.Model
	records      []models.TrackRecord
	loading      bool
	spinner      spinner.Model
	progressChan chan tasks.ProgressUpdate
	resultChan   chan Msg
	progress     tasks.ProgressUpdate
	log          []string
	result       *tasks.ReplaceResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model. limit is the top-tracks page size.
func NewModel(ctx context.Context, engine Engine, limit int) *Model {
	rangeList := list.New(rangeItems(), list.NewDefaultDelegate(), 0, 0)
	rangeList.Title = "Replace liked songs with top tracks from..."
	rangeList.SetShowHelp(false)

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &Model{
		ctx:       ctx,
		view:      RangeView,
		engine:    engine,
		limit:     limit,
		rangeList: rangeList,
		spinner:   s,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts the spinner; nothing is fetched until a time range is chosen.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// State returns the current view.
func (m *Model) State() ViewState { return m.view }

// Result returns the last replace result, if any.
func (m *Model) Result() (*tasks.ReplaceResult, error) { return m.result, m.err }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rangeList.SetSize(msg.Width-4, msg.Height-8)
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case RangeView:
			return m.handleRangeKeys(msg)
		case PreviewView:
			return m.handlePreviewKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ReplaceView:
			return m.handleReplaceKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTopTracksFetched:
		data := msg.data.(topTracksData)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.records = data.records
		m.trackList = list.New(trackItems(data.records), list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = fmt.Sprintf("Top %d tracks (%s)", len(data.records), m.timeRange.Short())
		m.trackList.SetShowHelp(false)
		m.trackList.SetSize(m.width-4, m.height-8)
		m.view = PreviewView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		m.log = append(m.log, m.progress.Message)
		if len(m.log) > logLines {
			m.log = m.log[len(m.log)-logLines:]
		}
		return m, m.waitForProgress()

	case MsgReplaceComplete:
		data := msg.data.(replaceData)
		m.result = data.result
		m.err = data.err
		m.progressChan = nil
		m.resultChan = nil
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case RangeView:
		return m.renderRange()
	case PreviewView:
		return m.renderPreview()
	case ConfirmView:
		return m.renderConfirm()
	case ReplaceView:
		return m.renderReplace()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleRangeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if m.loading {
			return m, nil
		}
		if item, ok := m.rangeList.SelectedItem().(rangeItem); ok {
			m.timeRange = item.timeRange
			m.loading = true
			m.err = nil
			return m, m.fetchTopTracks()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.rangeList, cmd = m.rangeList.Update(msg)
	return m, cmd
}

func (m *Model) handlePreviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = RangeView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if len(m.records) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = PreviewView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = ReplaceView
		return m, m.startReplace()
	}
	return m, nil
}

func (m *Model) handleReplaceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) && m.cancel != nil {
		m.cancel()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = RangeView
		m.records = nil
		m.result = nil
		m.err = nil
		m.log = nil
		m.progress = tasks.ProgressUpdate{}
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case RangeView:
		m.rangeList, cmd = m.rangeList.Update(msg)
	case PreviewView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchTopTracks() tea.Cmd {
	ctx, timeRange, limit := m.ctx, m.timeRange, m.limit
	return func() tea.Msg {
		records, err := m.engine.TopTracks(ctx, nil, timeRange, limit)
		return topTracksFetchedMsg(records, err)
	}
}

// startReplace runs the replace workflow in the background. The goroutine owns both channels:
// progress is closed when the run ends and the final message is sent on resultChan.
func (m *Model) startReplace() tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.log = nil

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan Msg, 1)
	m.progressChan = progress
	m.resultChan = done

	opts := tasks.ReplaceOptions{TimeRange: m.timeRange, Limit: m.limit}
	go func() {
		result, err := m.engine.Replace(ctx, progress, opts)
		close(progress)
		done <- replaceCompleteMsg(result, err)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.resultChan
	return func() tea.Msg {
		if progress == nil {
			return nil
		}
		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderRange() string {
	var status string
	switch {
	case m.loading:
		status = fmt.Sprintf("\n%s Fetching top tracks (%s)...", m.spinner.View(), m.timeRange.Short())
	case m.err != nil:
		status = "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s%s\n\n%s", m.rangeList.View(), status, helpView)
}

func (m *Model) renderPreview() string {
	if len(m.records) == 0 {
		msg := styles.warn.Render(fmt.Sprintf("No top tracks found for %s.", m.timeRange.Short()))
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
		return fmt.Sprintf("%s\n\n%s", msg, helpView)
	}

	replaceKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "replace liked songs"))
	helpView := m.help.ShortHelpView([]key.Binding{replaceKey, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Replace your liked songs?")
	info := fmt.Sprintf(
		"\nEvery liked song will be removed, then these %d top tracks (%s) will be added.\n%s\n",
		len(m.records), m.timeRange.Short(),
		styles.warn.Render("This is not atomic: a failure part way leaves your liked songs partially replaced."),
	)

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderReplace() string {
	title := styles.title.Render("Replacing liked songs")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchTarget:
		phase = "Fetching top tracks..."
	case tasks.FetchLiked:
		phase = "Fetching liked songs..."
	case tasks.ClearLiked:
		phase = fmt.Sprintf("Removing liked songs (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.AddLiked:
		phase = fmt.Sprintf("Adding top tracks (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	recent := styles.help.Render(strings.Join(m.log, "\n"))
	return fmt.Sprintf("%s\n\n%s %s\n\n%s\n\n%s", title, m.spinner.View(), phase, recent, styles.help.Render("ctrl+c to stop after the current batch"))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		msg := fmt.Sprintf("Replace failed: %v", m.err)
		if errors.Is(m.err, context.Canceled) {
			msg = "Replace cancelled."
		}

		var counts string
		if r := m.result; r != nil && (r.Cleared.Batches > 0 || r.Added.Batches > 0) {
			counts = fmt.Sprintf("\nRemoved %d (%d failed), added %d (%d failed) before stopping.",
				r.Cleared.SuccessCount, r.Cleared.ErrorCount, r.Added.SuccessCount, r.Added.ErrorCount)
		}
		return fmt.Sprintf("%s%s\n\n%s", styles.err.Render(msg), counts, helpView)
	}

	if m.result == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	title := styles.ok.Render("✓ Liked songs replaced!")
	info := fmt.Sprintf("\nTime range: %s\nRemoved: %d\nAdded: %d",
		m.result.TimeRange.Short(), m.result.Cleared.SuccessCount, m.result.Added.SuccessCount)

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
