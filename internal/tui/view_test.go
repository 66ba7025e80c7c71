package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/briefdeck/briefdeck/internal/layout"
	"github.com/briefdeck/briefdeck/internal/model"
)

func TestDashboardRendersEmails(t *testing.T) {
	m, _, _ := newBuilder().build(t)
	view := stripANSI(m.View())

	for _, want := range []string{
		"briefdeck [test] - Dashboard",
		"4 emails | 3 analyzed",
		"Recent emails",
		"> ● Weekly AI roundup",
		"AI Weekly",
		"billing@shop.example",
		"Mar 09 14:00",
		"○ Meetup on Thursday",
		"Press enter to select an email.",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("dashboard missing %q:\n%s", want, view)
		}
	}
}

func TestDashboardSelectedEmail(t *testing.T) {
	tests := []struct {
		name  string
		keys  []string
		wants []string
	}{
		{
			name:  "analyzed",
			keys:  []string{"enter"},
			wants: []string{"From AI Weekly", "AI News | importance 9 | 3 min read", "• New model release"},
		},
		{
			name:  "not analyzed",
			keys:  []string{"down", "down", "down", "enter"},
			wants: []string{"Meetup on Thursday", "Not analyzed yet. Press a to analyze."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newBuilder().build(t)
			m = press(t, m, tt.keys...)
			m = syncState(t, m)
			view := stripANSI(m.View())
			for _, want := range tt.wants {
				if !strings.Contains(view, want) {
					t.Errorf("view missing %q:\n%s", want, view)
				}
			}
		})
	}
}

func TestFailedFetchKeepsStaleData(t *testing.T) {
	m, s, gw := newBuilder().build(t)
	gw.set(func(f *fakeGateway) { f.emailsErr = errors.New("boom") })
	if err := s.FetchEmails(t.Context()); err == nil {
		t.Fatal("FetchEmails should fail")
	}
	m = syncState(t, m)

	view := stripANSI(m.View())
	if !strings.Contains(view, "Failed to fetch emails: boom") {
		t.Errorf("view missing error banner:\n%s", view)
	}
	if !strings.Contains(view, "Weekly AI roundup") {
		t.Error("stale emails not shown alongside the error")
	}
}

func TestLoadingPlaceholders(t *testing.T) {
	tests := []struct {
		view ViewMode
		want string
	}{
		{ViewDashboard, "Loading emails..."},
		{ViewNewspaper, "Loading stories..."},
		{ViewMasonry, "Loading stories..."},
	}
	for _, tt := range tests {
		t.Run(tt.view.String(), func(t *testing.T) {
			m, _, _ := newBuilder().withView(tt.view).withoutFetch().build(t)
			if view := stripANSI(m.View()); !strings.Contains(view, tt.want) {
				t.Errorf("view missing %q:\n%s", tt.want, view)
			}
		})
	}
}

func TestEmptyCollections(t *testing.T) {
	b := newBuilder()
	b.emails, b.content = nil, nil
	m, _, _ := b.build(t)
	if view := stripANSI(m.View()); !strings.Contains(view, "No emails yet.") {
		t.Errorf("dashboard missing empty message:\n%s", view)
	}
	m = press(t, m, "tab")
	if view := stripANSI(m.View()); !strings.Contains(view, "No stories yet.") {
		t.Errorf("newspaper missing empty message:\n%s", view)
	}
}

func TestFilteredMasonryEmpty(t *testing.T) {
	m, _, _ := newBuilder().withView(ViewMasonry).build(t)
	m.filter = "Sports"
	if view := stripANSI(m.View()); !strings.Contains(view, "No stories in this category.") {
		t.Errorf("masonry missing filter message:\n%s", view)
	}
}

func TestViewFitsTerminal(t *testing.T) {
	sizes := []struct{ w, h int }{{120, 40}, {60, 20}, {200, 50}}
	for _, sz := range sizes {
		for _, v := range []ViewMode{ViewDashboard, ViewNewspaper, ViewMasonry} {
			m, _, _ := newBuilder().withSize(sz.w, sz.h).withView(v).build(t)
			view := m.View()
			if got := lipgloss.Height(view); got != sz.h {
				t.Errorf("%s at %dx%d: height = %d", v, sz.w, sz.h, got)
			}
			for i, line := range strings.Split(view, "\n") {
				if w := lipgloss.Width(line); w > sz.w {
					t.Errorf("%s at %dx%d: line %d is %d cells wide", v, sz.w, sz.h, i, w)
				}
			}
		}
	}
}

func TestNewspaperHeadlines(t *testing.T) {
	m, _, _ := newBuilder().withView(ViewNewspaper).build(t)
	view := stripANSI(m.View())

	first := strings.Index(view, "AI roundup")
	second := strings.Index(view, "Cloud pricing")
	grouped := strings.Index(view, "Invoice ready")
	if first < 0 || second < 0 || grouped < 0 {
		t.Fatalf("newspaper missing stories:\n%s", view)
	}
	if grouped < first || grouped < second {
		t.Error("grouped story rendered before the headlines")
	}
	if !strings.Contains(view, "Finance") {
		t.Error("newspaper missing category heading")
	}
}

func TestMasonryOrder(t *testing.T) {
	// One column so cards stack in plan order.
	m, _, _ := newBuilder().withSize(60, 60).withView(ViewMasonry).build(t)
	if m.layout.columns != 1 {
		t.Fatalf("columns = %d, want 1", m.layout.columns)
	}
	view := stripANSI(m.View())
	i1, i3, i2 := strings.Index(view, "AI roundup"), strings.Index(view, "Cloud pricing"), strings.Index(view, "Invoice ready")
	if !(i1 >= 0 && i1 < i3 && i3 < i2) {
		t.Errorf("masonry order wrong (c1=%d c3=%d c2=%d):\n%s", i1, i3, i2, view)
	}
	if m.layout.engine.Computed() == 0 {
		t.Error("masonry view did not use the layout engine")
	}
}

func TestRenderCardTiers(t *testing.T) {
	it := model.ContentItem{
		ID:          "c1",
		Title:       "A long story",
		Summary:     strings.Repeat("word ", 60),
		Category:    "Tech",
		Importance:  8,
		ReadingTime: 5,
		Tags:        []string{"cloud", "ai"},
	}
	tests := []struct {
		tier   layout.Tier
		height int // title, summary lines, meta and the border
		tags   bool
	}{
		{layout.TierLarge, 1 + 4 + 1 + 2, true},
		{layout.TierMedium, 1 + 2 + 1 + 2, false},
		{layout.TierSmall, 1 + 1 + 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.tier.String(), func(t *testing.T) {
			card := renderCard(it, tt.tier, 40, false)
			if got := lipgloss.Height(card); got != tt.height {
				t.Errorf("height = %d, want %d:\n%s", got, tt.height, card)
			}
			if got := lipgloss.Width(card); got != 40 {
				t.Errorf("width = %d, want 40", got)
			}
			if got := strings.Contains(stripANSI(card), "#cloud"); got != tt.tags {
				t.Errorf("tags shown = %v, want %v", got, tt.tags)
			}
		})
	}
}

func TestCursorRowStyled(t *testing.T) {
	forceColorProfile(t)
	m, _, _ := newBuilder().build(t)

	row := m.emailRow(m.state.Emails[0], true)
	if !strings.Contains(row, ansiStart) {
		t.Error("cursor row has no styling")
	}
	plain := m.emailRow(m.state.Emails[1], false)
	if strings.Contains(plain, ansiStart) {
		t.Errorf("plain row is styled: %q", plain)
	}
	if w := lipgloss.Width(row); w != m.width {
		t.Errorf("row width = %d, want %d", w, m.width)
	}
}

func TestSummaryHighlights(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     []string
	}{
		{
			name:     "story headings",
			markdown: "# Daily\n\n### 1. First\nbody\n### 2. Second\n### 3. Third",
			want:     []string{"1. First", "2. Second"},
		},
		{
			name:     "plain fallback",
			markdown: "# Daily\n\nNo stories today.\n\nCheck back later.\nBye.",
			want:     []string{"No stories today.", "Check back later."},
		},
		{
			name:     "empty",
			markdown: "",
			want:     nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summaryHighlights(tt.markdown, 2)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("summaryHighlights = %q, want %q", got, tt.want)
			}
		})
	}
}
