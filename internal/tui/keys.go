package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/briefdeck/briefdeck/internal/feed"
	"github.com/briefdeck/briefdeck/internal/store"
)

type keyMap struct {
	NextView key.Binding
	PrevView key.Binding
	Up       key.Binding
	Down     key.Binding
	Sort     key.Binding
	Filter   key.Binding
	Refresh  key.Binding
	Select   key.Binding
	Clear    key.Binding
	Analyze  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextView: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		PrevView: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Clear:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Analyze:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "analyze")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextView, k.Sort, k.Filter, k.Refresh, k.Analyze, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextView, k.PrevView, k.Up, k.Down},
		{k.Select, k.Clear, k.Analyze},
		{k.Sort, k.Filter, k.Refresh},
		{k.Help, k.Quit},
	}
}

// handleKeyPress dispatches a key press for the current view.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.unmount()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextView):
		m.view = m.view.Next()
		m.resetCursor()
		return m, nil

	case key.Matches(msg, m.keys.PrevView):
		m.view = m.view.Prev()
		m.resetCursor()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Sort):
		m.sort = m.sort.Next()
		m.resetCursor()
		return m.showFlash("Sort: " + m.sort.Label())

	case key.Matches(msg, m.keys.Filter):
		m.filter = nextFilter(feed.Categories(m.state.Items()), m.filter)
		m.resetCursor()
		label := m.filter
		if label == feed.AllCategories {
			label = "All categories"
		}
		return m.showFlash("Filter: " + label)

	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(m.refresh(), m.loadInsights())

	case key.Matches(msg, m.keys.Select):
		return m.selectCurrent()

	case key.Matches(msg, m.keys.Clear):
		m.store.SelectEmail(nil)
		return m, nil

	case key.Matches(msg, m.keys.Analyze):
		return m.analyzeCurrent()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

// nextFilter returns the choice after current, wrapping to the first. A
// filter that is no longer offered resets to the first choice.
func nextFilter(choices []string, current string) string {
	for i, c := range choices {
		if c == current {
			return choices[(i+1)%len(choices)]
		}
	}
	return choices[0]
}

// selectCurrent makes the email under the cursor the store's selection.
func (m Model) selectCurrent() (tea.Model, tea.Cmd) {
	id, ok := m.currentEmailID()
	if !ok {
		return m, nil
	}
	e, ok := m.state.EmailByID(id)
	if !ok {
		return m.showFlash("Email is not loaded")
	}
	m.store.SelectEmail(&e)
	return m, nil
}

// analyzeCurrent requests analysis of the email under the cursor.
func (m Model) analyzeCurrent() (tea.Model, tea.Cmd) {
	id, ok := m.currentEmailID()
	if !ok {
		return m, nil
	}
	if m.analyzing != "" {
		return m.showFlash("Analysis already in progress")
	}
	m.analyzing = id
	ctx, s := m.ctx, m.store
	return m, func() tea.Msg {
		return actionDoneMsg{action: "analyze", emailID: id, err: s.AnalyzeEmail(ctx, id)}
	}
}

// refresh refetches every store collection.
func (m Model) refresh() tea.Cmd {
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		return actionDoneMsg{action: "refresh", err: s.Dispatch(ctx, store.Action{Kind: store.ActionFetchAll})}
	}
}

// showFlash displays a temporary message in the footer.
func (m Model) showFlash(message string) (tea.Model, tea.Cmd) {
	m.flashID++
	m.flashMessage = message
	id := m.flashID
	return m, tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashClearMsg{id: id}
	})
}

// actionFlash summarizes a finished action.
func actionFlash(msg actionDoneMsg) string {
	switch {
	case msg.err != nil && msg.action == "analyze":
		return fmt.Sprintf("Analyze failed: %v", msg.err)
	case msg.err != nil:
		return fmt.Sprintf("Refresh failed: %v", msg.err)
	case msg.action == "analyze":
		return "Analysis complete"
	default:
		return "Refreshed"
	}
}
