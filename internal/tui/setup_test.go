package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/briefdeck/briefdeck/internal/feed"
	"github.com/briefdeck/briefdeck/internal/model"
	"github.com/briefdeck/briefdeck/internal/remote"
	"github.com/briefdeck/briefdeck/internal/store"
)

// ansiStart is the escape sequence prefix found in styled terminal output.
const ansiStart = "\x1b["

// colorProfileMu serializes tests that mutate the global lipgloss color profile.
var colorProfileMu sync.Mutex

// forceColorProfile sets lipgloss to ANSI color output for tests that assert
// on styled output and restores the original profile via t.Cleanup.
func forceColorProfile(t *testing.T) {
	t.Helper()
	colorProfileMu.Lock()
	orig := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(orig)
		colorProfileMu.Unlock()
	})
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// =============================================================================
// Fakes
// =============================================================================

// fakeGateway is an in-memory store.Gateway.
type fakeGateway struct {
	mu         sync.Mutex
	emails     []model.Email
	categories []model.Category
	content    []model.AnalyzedContent
	emailsErr  error
	analyzeErr error
	analyzed   []string
}

func (f *fakeGateway) ListEmails(ctx context.Context, filter model.EmailFilter) ([]model.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.emails, f.emailsErr
}

func (f *fakeGateway) GetEmail(ctx context.Context, id string) (*model.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.emails {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, &remote.Error{Kind: remote.ErrNotFound, Op: "get email", Status: 404}
}

func (f *fakeGateway) AnalyzeEmail(ctx context.Context, id string) (model.Blob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	f.analyzed = append(f.analyzed, id)
	return model.Blob(`{"message":"Email analysis started"}`), nil
}

func (f *fakeGateway) ListCategories(ctx context.Context) ([]model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.categories, nil
}

func (f *fakeGateway) CreateCategory(ctx context.Context, in model.CategoryInput) (*model.Category, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeGateway) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeGateway) DeleteCategory(ctx context.Context, id string) error {
	return errors.New("not implemented")
}

func (f *fakeGateway) ListContent(ctx context.Context) ([]model.AnalyzedContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content, nil
}

func (f *fakeGateway) set(fn func(*fakeGateway)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// fakeInsights returns fixed analytics.
type fakeInsights struct {
	overview model.Blob
	summary  *model.DailySummary
	err      error
}

func (f *fakeInsights) AnalyticsOverview(ctx context.Context) (model.Blob, error) {
	return f.overview, f.err
}

func (f *fakeInsights) GetDailySummary(ctx context.Context, date *time.Time) (*model.DailySummary, error) {
	if f.summary == nil {
		return nil, errors.New("no summary")
	}
	return f.summary, nil
}

// =============================================================================
// Test Fixtures
// =============================================================================

var received = time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)

func testEmails() []model.Email {
	return []model.Email{
		{ID: "e1", Subject: "Weekly AI roundup", SenderEmail: "news@ai.example", SenderName: "AI Weekly", ReceivedAt: received, Processed: true},
		{ID: "e2", Subject: "Your invoice is ready", SenderEmail: "billing@shop.example", ReceivedAt: received.Add(-time.Hour), Processed: true},
		{ID: "e3", Subject: "Cloud pricing update", SenderEmail: "cloud@tech.example", ReceivedAt: received.Add(-2 * time.Hour), Processed: true},
		{ID: "e4", Subject: "Meetup on Thursday", SenderEmail: "events@city.example", ReceivedAt: received.Add(-3 * time.Hour)},
	}
}

func testContent() []model.AnalyzedContent {
	return []model.AnalyzedContent{
		{ID: "c1", EmailID: "e1", Category: "AI News", ImportanceScore: 9, TitleOptimized: "AI roundup", Summary: "Models got better again this week.", ReadingTime: 3, Tags: []string{"ai"}, KeyPoints: []string{"New model release"}},
		{ID: "c2", EmailID: "e2", Category: "Finance", ImportanceScore: 4, TitleOptimized: "Invoice ready", Summary: "An invoice is due.", ReadingTime: 1},
		{ID: "c3", EmailID: "e3", Category: "Tech", ImportanceScore: 7, TitleOptimized: "Cloud pricing", Summary: "Prices change next month.", ReadingTime: 2},
	}
}

// modelBuilder constructs a mounted Model over a fake-backed store.
type modelBuilder struct {
	emails   []model.Email
	content  []model.AnalyzedContent
	width    int
	height   int
	view     ViewMode
	sort     feed.SortKey
	insights Insights
	noFetch  bool
}

func newBuilder() *modelBuilder {
	return &modelBuilder{
		emails:  testEmails(),
		content: testContent(),
		width:   120,
		height:  40,
	}
}

func (b *modelBuilder) withSize(w, h int) *modelBuilder       { b.width, b.height = w, h; return b }
func (b *modelBuilder) withView(v ViewMode) *modelBuilder     { b.view = v; return b }
func (b *modelBuilder) withSort(k feed.SortKey) *modelBuilder { b.sort = k; return b }
func (b *modelBuilder) withInsights(in Insights) *modelBuilder {
	b.insights = in
	return b
}

// withoutFetch leaves the store uninitialized.
func (b *modelBuilder) withoutFetch() *modelBuilder { b.noFetch = true; return b }

func (b *modelBuilder) build(t *testing.T) (Model, *store.Store, *fakeGateway) {
	t.Helper()
	gw := &fakeGateway{emails: b.emails, content: b.content}
	s := store.New(gw, store.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if !b.noFetch {
		if err := s.FetchAll(context.Background()); err != nil {
			t.Fatalf("FetchAll: %v", err)
		}
	}

	m := New(s, Options{View: b.view, Sort: b.sort, Insights: b.insights, Version: "test"})
	t.Cleanup(m.Close)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: b.width, Height: b.height})
	return m, s, gw
}

// update sends msg to m and returns the concrete model.
func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

// keyMsg builds the key message bubbletea would send for k.
func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// press sends a sequence of keys, discarding commands.
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m, _ = update(t, m, keyMsg(k))
	}
	return m
}

// syncState delivers the store's pending snapshot through the bridge.
func syncState(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.bridge.Wait()()
	sm, ok := msg.(stateMsg)
	if !ok {
		t.Fatalf("bridge delivered %T, want stateMsg", msg)
	}
	m, _ = update(t, m, sm)
	return m
}

// runCmd executes cmd and feeds its message back into m.
func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m, _ = update(t, m, cmd())
	return m
}
