package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/briefdeck/briefdeck/internal/feed"
	"github.com/briefdeck/briefdeck/internal/model"
	"github.com/briefdeck/briefdeck/internal/store"
)

func TestViewModeCycle(t *testing.T) {
	m, _, _ := newBuilder().build(t)

	var got []ViewMode
	for range 3 {
		m = press(t, m, "tab")
		got = append(got, m.view)
	}
	want := []ViewMode{ViewNewspaper, ViewMasonry, ViewDashboard}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tab cycle (-want +got):\n%s", diff)
	}

	m = press(t, m, "shift+tab")
	if m.view != ViewMasonry {
		t.Errorf("shift+tab from dashboard = %v, want masonry", m.view)
	}
}

func TestParseViewMode(t *testing.T) {
	for _, v := range []ViewMode{ViewDashboard, ViewNewspaper, ViewMasonry} {
		got, err := ParseViewMode(v.String())
		if err != nil || got != v {
			t.Errorf("ParseViewMode(%q) = %v, %v", v.String(), got, err)
		}
	}
	if _, err := ParseViewMode("homepage"); err == nil {
		t.Error("ParseViewMode(homepage) should fail")
	}
}

func TestWindowSizeDrivesColumns(t *testing.T) {
	m, _, _ := newBuilder().withSize(120, 40).build(t)
	if m.layout.columns != 2 {
		t.Fatalf("columns at 120 cells = %d, want 2", m.layout.columns)
	}
	base := m.layout.resizes

	steps := []struct {
		cells   int
		columns int
	}{
		{130, 3}, // 1040px
		{140, 3}, // same class, no notification
		{200, 4}, // 1600px
		{60, 1},  // 480px
	}
	for _, s := range steps {
		m, _ = update(t, m, tea.WindowSizeMsg{Width: s.cells, Height: 40})
		if m.layout.columns != s.columns {
			t.Errorf("columns at %d cells = %d, want %d", s.cells, m.layout.columns, s.columns)
		}
	}
	if got := m.layout.resizes - base; got != 3 {
		t.Errorf("column change notifications = %d, want 3", got)
	}
}

func TestStoreChangesReachModel(t *testing.T) {
	m, s, _ := newBuilder().build(t)

	e := testEmails()[1]
	s.SelectEmail(&e)
	m = syncState(t, m)

	if m.state.SelectedEmail == nil || m.state.SelectedEmail.ID != "e2" {
		t.Errorf("SelectedEmail = %+v, want e2", m.state.SelectedEmail)
	}
}

func TestBridgeKeepsLatestSnapshot(t *testing.T) {
	m, s, _ := newBuilder().build(t)

	for _, e := range testEmails() {
		s.SelectEmail(&e)
	}
	m = syncState(t, m)
	if got := m.state.SelectedEmail; got == nil || got.ID != "e4" {
		t.Errorf("SelectedEmail = %+v, want the last selection e4", got)
	}
	if m.state.Version != s.Get().Version {
		t.Errorf("Version = %d, want %d", m.state.Version, s.Get().Version)
	}
}

func TestQuitUnmounts(t *testing.T) {
	m, s, _ := newBuilder().build(t)
	columns := m.layout.columns
	version := m.state.Version

	m, cmd := update(t, m, keyMsg("q"))
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command did not produce tea.QuitMsg")
	}
	if !m.quitting || m.View() != "" {
		t.Error("model not quitting after q")
	}
	if n := m.layout.viewport.Listeners(); n != 0 {
		t.Errorf("viewport listeners after quit = %d, want 0", n)
	}
	if msg := m.bridge.Wait()(); msg != nil {
		t.Errorf("bridge delivered %T after quit, want nil", msg)
	}

	// Late results are dropped.
	e := testEmails()[0]
	s.SelectEmail(&e)
	m, cmd = update(t, m, stateMsg{state: s.Get()})
	if cmd != nil || m.state.Version != version {
		t.Error("state applied after unmount")
	}
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 40})
	if m.layout.columns != columns {
		t.Errorf("columns changed after unmount: %d -> %d", columns, m.layout.columns)
	}
	m, _ = update(t, m, actionDoneMsg{action: "refresh"})
	if m.flashMessage != "" {
		t.Error("action result applied after unmount")
	}
}

func TestCursorMovementClamps(t *testing.T) {
	m, _, _ := newBuilder().build(t)

	m = press(t, m, "up")
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up at top, want 0", m.cursor)
	}
	m = press(t, m, "down", "j", "down", "down", "down")
	if m.cursor != 3 {
		t.Errorf("cursor = %d, want 3 (last email)", m.cursor)
	}
	m = press(t, m, "k")
	if m.cursor != 2 {
		t.Errorf("cursor = %d after k, want 2", m.cursor)
	}
	m = press(t, m, "tab")
	if m.cursor != 0 {
		t.Errorf("cursor = %d after view change, want 0", m.cursor)
	}
}

func TestSelectKey(t *testing.T) {
	tests := []struct {
		name   string
		view   ViewMode
		keys   []string
		wantID string
	}{
		{"dashboard second email", ViewDashboard, []string{"down", "enter"}, "e2"},
		// Masonry orders by importance: c1 (e1), c3 (e3), c2 (e2).
		{"masonry second card", ViewMasonry, []string{"down", "enter"}, "e3"},
		// Newspaper headlines are c1 and c3; c2 follows in its group.
		{"newspaper first grouped story", ViewNewspaper, []string{"down", "down", "enter"}, "e2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s, _ := newBuilder().withView(tt.view).build(t)
			press(t, m, tt.keys...)
			sel := s.Get().SelectedEmail
			if sel == nil || sel.ID != tt.wantID {
				t.Errorf("selected = %+v, want %s", sel, tt.wantID)
			}
		})
	}
}

func TestClearSelection(t *testing.T) {
	m, s, _ := newBuilder().build(t)
	m = press(t, m, "enter")
	if s.Get().SelectedEmail == nil {
		t.Fatal("enter did not select")
	}
	press(t, m, "esc")
	if s.Get().SelectedEmail != nil {
		t.Error("esc did not clear the selection")
	}
}

func TestSortKeyCycles(t *testing.T) {
	m, _, _ := newBuilder().withView(ViewMasonry).build(t)
	if m.sort != feed.SortImportance {
		t.Fatalf("initial sort = %v", m.sort)
	}

	m = press(t, m, "s")
	if m.sort != feed.SortRecent {
		t.Errorf("sort after s = %v, want recent", m.sort)
	}
	if !strings.Contains(m.flashMessage, "Most Recent") {
		t.Errorf("flash = %q", m.flashMessage)
	}
	var ids []string
	for _, it := range m.items() {
		ids = append(ids, it.ID)
	}
	if diff := cmp.Diff([]string{"c1", "c2", "c3"}, ids); diff != "" {
		t.Errorf("recent order (-want +got):\n%s", diff)
	}
}

func TestFilterKeyCycles(t *testing.T) {
	m, _, _ := newBuilder().withView(ViewMasonry).build(t)

	var filters []string
	for range 4 {
		m = press(t, m, "f")
		filters = append(filters, m.filter)
	}
	want := []string{"AI News", "Finance", "Tech", feed.AllCategories}
	if diff := cmp.Diff(want, filters); diff != "" {
		t.Errorf("filter cycle (-want +got):\n%s", diff)
	}

	m = press(t, m, "f", "f")
	items := m.items()
	if len(items) != 1 || items[0].Category != "Finance" {
		t.Errorf("filtered items = %+v, want the Finance story", items)
	}
}

func TestNextFilterResetsUnknown(t *testing.T) {
	if got := nextFilter([]string{"all", "Tech"}, "Gone"); got != "all" {
		t.Errorf("nextFilter = %q, want all", got)
	}
}

func TestAnalyzeKey(t *testing.T) {
	m, _, gw := newBuilder().build(t)
	m = press(t, m, "down", "down", "down")

	m, cmd := update(t, m, keyMsg("a"))
	if m.analyzing != "e4" {
		t.Fatalf("analyzing = %q, want e4", m.analyzing)
	}
	m, _ = update(t, m, keyMsg("a"))
	if !strings.Contains(m.flashMessage, "already in progress") {
		t.Errorf("flash = %q, want in-progress notice", m.flashMessage)
	}

	m = runCmd(t, m, cmd)
	if m.analyzing != "" {
		t.Error("analyzing not cleared after completion")
	}
	if m.flashMessage != "Analysis complete" {
		t.Errorf("flash = %q, want Analysis complete", m.flashMessage)
	}
	if diff := cmp.Diff([]string{"e4"}, gw.analyzed); diff != "" {
		t.Errorf("analyzed (-want +got):\n%s", diff)
	}
}

func TestAnalyzeFailureShowsBanner(t *testing.T) {
	m, _, gw := newBuilder().build(t)
	gw.set(func(f *fakeGateway) { f.analyzeErr = errors.New("analyzer offline") })

	m, cmd := update(t, m, keyMsg("a"))
	m = runCmd(t, m, cmd)
	if !strings.HasPrefix(m.flashMessage, "Analyze failed") {
		t.Errorf("flash = %q", m.flashMessage)
	}

	m = syncState(t, m)
	view := stripANSI(m.View())
	if !strings.Contains(view, "Failed to analyze email: analyzer offline") {
		t.Errorf("view missing analyze error banner:\n%s", view)
	}
	if !strings.Contains(view, "Weekly AI roundup") {
		t.Error("emails disappeared after a failed analysis")
	}
}

func TestRefreshKey(t *testing.T) {
	m, s, gw := newBuilder().build(t)
	gw.set(func(f *fakeGateway) {
		f.emails = append(testEmails(), model.Email{ID: "e5", Subject: "Fresh news", SenderEmail: "x@example.com"})
	})

	_, cmd := update(t, m, keyMsg("r"))
	if cmd == nil {
		t.Fatal("refresh returned no command")
	}
	// With no insights configured the batch holds only the store refresh.
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c != nil {
				c()
			}
		}
	}
	if n := len(s.Get().Emails); n != 5 {
		t.Errorf("emails after refresh = %d, want 5", n)
	}
}

func TestInsightsLoaded(t *testing.T) {
	in := &fakeInsights{
		overview: model.Blob(`{"total_emails":20,"processed_emails":10,"processing_rate":50,"emails_this_week":7,
			"category_distribution":[{"category":"AI News","color":"#6366F1","count":3}]}`),
		summary: &model.DailySummary{Date: "2026-03-09", ContentMarkdown: "# Daily Email Summary - 2026-03-09\n\n### 1. AI roundup\nbody"},
	}
	m, _, _ := newBuilder().withInsights(in).build(t)
	m = runCmd(t, m, m.loadInsights())

	view := stripANSI(m.View())
	for _, want := range []string{
		"Total 20 | Processed 10 (50.0%) | This week 7",
		"AI News 3",
		"Daily summary 2026-03-09",
		"1. AI roundup",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("dashboard missing %q:\n%s", want, view)
		}
	}
}

func TestInsightsFailure(t *testing.T) {
	in := &fakeInsights{err: errors.New("503")}
	m, _, _ := newBuilder().withInsights(in).build(t)
	m = runCmd(t, m, m.loadInsights())

	if m.insightsErr == nil {
		t.Fatal("insightsErr not set")
	}
	view := stripANSI(m.View())
	if !strings.Contains(view, "Analytics unavailable") {
		t.Errorf("view missing analytics banner:\n%s", view)
	}
	if !strings.Contains(view, "4 emails loaded, 3 processed") {
		t.Error("dashboard should fall back to store counts")
	}
}

func TestFlashClears(t *testing.T) {
	m, _, _ := newBuilder().build(t)
	m = press(t, m, "s")
	id := m.flashID

	m, _ = update(t, m, flashClearMsg{id: id - 1})
	if m.flashMessage == "" {
		t.Error("stale flash clear removed the current message")
	}
	m, _ = update(t, m, flashClearMsg{id: id})
	if m.flashMessage != "" {
		t.Error("flash not cleared")
	}
}

func TestStoreResetEmptiesView(t *testing.T) {
	m, s, _ := newBuilder().build(t)
	if err := s.Dispatch(context.Background(), store.Action{Kind: store.ActionReset}); err != nil {
		t.Fatal(err)
	}
	m = syncState(t, m)
	if len(m.state.Emails) != 0 || m.cursor != 0 {
		t.Errorf("after reset: %d emails, cursor %d", len(m.state.Emails), m.cursor)
	}
}
