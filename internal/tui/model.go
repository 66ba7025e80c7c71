// Package tui provides the terminal dashboard for briefdeck.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/briefdeck/briefdeck/internal/feed"
	"github.com/briefdeck/briefdeck/internal/layout"
	"github.com/briefdeck/briefdeck/internal/model"
	"github.com/briefdeck/briefdeck/internal/store"
)

// flashDuration is how long footer notifications stay visible.
const flashDuration = 3 * time.Second

// ViewMode selects the screen layout.
type ViewMode int

const (
	ViewDashboard ViewMode = iota
	ViewNewspaper
	ViewMasonry
	numViews
)

func (v ViewMode) String() string {
	switch v {
	case ViewDashboard:
		return "dashboard"
	case ViewNewspaper:
		return "newspaper"
	case ViewMasonry:
		return "masonry"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// Title is the name shown in the title bar.
func (v ViewMode) Title() string {
	switch v {
	case ViewDashboard:
		return "Dashboard"
	case ViewNewspaper:
		return "Newspaper"
	case ViewMasonry:
		return "Masonry"
	default:
		return v.String()
	}
}

// Next returns the following view, wrapping around.
func (v ViewMode) Next() ViewMode { return (v + 1) % numViews }

// Prev returns the preceding view, wrapping around.
func (v ViewMode) Prev() ViewMode { return (v + numViews - 1) % numViews }

// ParseViewMode parses a view name as used in the config file.
func ParseViewMode(s string) (ViewMode, error) {
	for v := ViewDashboard; v < numViews; v++ {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown view %q (want dashboard, newspaper or masonry)", s)
}

// Insights supplies the dashboard analytics. It is satisfied by
// *remote.Client.
type Insights interface {
	AnalyticsOverview(ctx context.Context) (model.Blob, error)
	GetDailySummary(ctx context.Context, date *time.Time) (*model.DailySummary, error)
}

// Options configures the TUI.
type Options struct {
	Context   context.Context // Bounds backend calls; default Background
	Insights  Insights        // Optional; the dashboard omits analytics when nil
	View      ViewMode
	Sort      feed.SortKey
	PxPerCell int // Layout pixels per terminal cell; 0 uses layout.DefaultPxPerCell
	Version   string
}

// layoutState is shared by every copy of the Model. The viewport watcher
// writes columns; the engine memoizes the masonry plan.
type layoutState struct {
	viewport *layout.Viewport
	sub      *layout.Subscription
	engine   layout.Engine
	columns  int
	resizes  int
}

// Model is the main TUI model following the Elm architecture.
type Model struct {
	ctx      context.Context
	store    *store.Store
	insights Insights
	bridge   *Bridge
	layout   *layoutState

	version   string
	pxPerCell int

	// Snapshot of the store, replaced on every stateMsg.
	state store.State

	view   ViewMode
	sort   feed.SortKey
	filter string

	cursor    int
	rowOffset int // First visible list row or masonry row

	overview    *overviewStats
	summary     *model.DailySummary
	insightsErr error

	analyzing    string // Email ID with an analysis in flight
	flashMessage string
	flashID      int

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	width  int
	height int

	mounted  bool
	quitting bool
}

// New creates a model over s. The model subscribes to the store
// immediately; the subscription is released when the user quits.
func New(s *store.Store, opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ls := &layoutState{viewport: layout.NewViewport(0)}
	ls.columns = ls.viewport.Columns()
	ls.sub = ls.viewport.Watch(func(cols int) {
		ls.columns = cols
		ls.resizes++
	})

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))

	return Model{
		ctx:       ctx,
		store:     s,
		insights:  opts.Insights,
		bridge:    NewBridge(s),
		layout:    ls,
		version:   opts.Version,
		pxPerCell: opts.PxPerCell,
		state:     s.Get(),
		view:      opts.View,
		sort:      opts.Sort,
		filter:    feed.AllCategories,
		keys:      defaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		mounted:   true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.bridge.Wait(),
		m.refresh(),
		m.loadInsights(),
		m.spinner.Tick,
	)
}

// overviewStats is the subset of the analytics overview the dashboard shows.
type overviewStats struct {
	TotalEmails          int     `json:"total_emails"`
	ProcessedEmails      int     `json:"processed_emails"`
	ProcessingRate       float64 `json:"processing_rate"`
	EmailsThisWeek       int     `json:"emails_this_week"`
	CategoryDistribution []struct {
		Category string `json:"category"`
		Color    string `json:"color"`
		Count    int    `json:"count"`
	} `json:"category_distribution"`
}

// insightsLoadedMsg is sent when dashboard analytics arrive.
type insightsLoadedMsg struct {
	overview *overviewStats
	summary  *model.DailySummary
	err      error
}

// actionDoneMsg is sent when a backend action started from a key finishes.
type actionDoneMsg struct {
	action  string
	emailID string
	err     error
}

type flashClearMsg struct {
	id int
}

// loadInsights fetches the analytics overview and today's summary.
func (m Model) loadInsights() tea.Cmd {
	if m.insights == nil {
		return nil
	}
	ctx, in := m.ctx, m.insights
	return func() tea.Msg {
		var msg insightsLoadedMsg
		blob, err := in.AnalyticsOverview(ctx)
		if err != nil {
			msg.err = fmt.Errorf("load overview: %w", err)
			return msg
		}
		var ov overviewStats
		if err := blob.Decode(&ov); err != nil {
			msg.err = fmt.Errorf("decode overview: %w", err)
			return msg
		}
		msg.overview = &ov
		// The summary is optional; a failure leaves the overview usable.
		if sum, err := in.GetDailySummary(ctx, nil); err == nil {
			msg.summary = sum
		}
		return msg
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.mounted {
			return m, nil
		}
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 0)
		m.height = max(msg.Height, 0)
		m.help.Width = max(m.width-2, 0)
		if m.mounted {
			m.layout.viewport.Resize(layout.CellsToPixels(m.width, m.pxPerCell))
		}
		m.clampCursor()
		return m, nil

	case stateMsg:
		// Late snapshots after quitting belong to a discarded view.
		if !m.mounted {
			return m, nil
		}
		m.state = msg.state
		m.clampCursor()
		return m, m.bridge.Wait()

	case insightsLoadedMsg:
		if !m.mounted {
			return m, nil
		}
		m.insightsErr = msg.err
		if msg.err == nil {
			m.overview = msg.overview
			m.summary = msg.summary
		}
		return m, nil

	case actionDoneMsg:
		if !m.mounted {
			return m, nil
		}
		var cmds []tea.Cmd
		if msg.action == "analyze" {
			m.analyzing = ""
			if msg.err == nil {
				cmds = append(cmds, m.loadInsights())
			}
		}
		next, flash := m.showFlash(actionFlash(msg))
		return next, tea.Batch(append(cmds, flash)...)

	case flashClearMsg:
		if msg.id == m.flashID {
			m.flashMessage = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.mounted {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// unmount releases the store subscription and the resize watcher. After
// unmount the model ignores store and backend results.
func (m *Model) unmount() {
	if !m.mounted {
		return
	}
	m.mounted = false
	m.bridge.Close()
	m.layout.sub.Close()
}

// Close releases the model's subscriptions. The program calls it through
// the quit key; callers that stop the program another way should call it
// on the final model.
func (m Model) Close() {
	m.unmount()
}

// items returns the projected content for the feed views.
func (m Model) items() []model.ContentItem {
	return feed.Project(m.state.Items(), m.sort, m.filter)
}

// newspaperItems returns the feed in newspaper reading order: headlines,
// then the remaining items grouped by category.
func (m Model) newspaperItems() (headlines []model.ContentItem, groups []feed.Group) {
	items := m.items()
	headlines = feed.Headlines(items, 2)
	taken := make(map[string]bool, len(headlines))
	for _, h := range headlines {
		taken[h.ID] = true
	}
	rest := make([]model.ContentItem, 0, len(items))
	for _, it := range items {
		if !taken[it.ID] {
			rest = append(rest, it)
		}
	}
	return headlines, feed.GroupByCategory(rest)
}

// cursorIDs lists, in cursor order, the IDs the current view navigates:
// email IDs on the dashboard, content IDs elsewhere.
func (m Model) cursorIDs() []string {
	var ids []string
	switch m.view {
	case ViewDashboard:
		for _, e := range m.state.Emails {
			ids = append(ids, e.ID)
		}
	case ViewNewspaper:
		headlines, groups := m.newspaperItems()
		for _, h := range headlines {
			ids = append(ids, h.ID)
		}
		for _, g := range groups {
			for _, it := range g.Items {
				ids = append(ids, it.ID)
			}
		}
	default:
		for _, it := range m.items() {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

// currentEmailID returns the email behind the cursor.
func (m Model) currentEmailID() (string, bool) {
	ids := m.cursorIDs()
	if m.cursor < 0 || m.cursor >= len(ids) {
		return "", false
	}
	if m.view == ViewDashboard {
		return ids[m.cursor], true
	}
	for _, c := range m.state.Content {
		if c.ID == ids[m.cursor] {
			return c.EmailID, true
		}
	}
	return "", false
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) resetCursor() {
	m.cursor = 0
	m.rowOffset = 0
}

// clampCursor keeps the cursor on an existing entry and scrolls so it
// stays visible.
func (m *Model) clampCursor() {
	n := len(m.cursorIDs())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	row, visible := m.cursor, m.listRows()
	if m.view == ViewMasonry {
		row, visible = m.cursor/max(m.layout.columns, 1), masonryVisibleRows
	}
	if row < m.rowOffset {
		m.rowOffset = row
	}
	if row >= m.rowOffset+visible {
		m.rowOffset = row - visible + 1
	}
	if m.rowOffset < 0 {
		m.rowOffset = 0
	}
}

// loading reports whether the store has a fetch in flight.
func (m Model) loading() bool {
	return m.state.Loading() || m.analyzing != ""
}
