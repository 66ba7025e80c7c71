package api

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/briefdeck/briefdeck/internal/model"
)

func TestSeedIsDeterministic(t *testing.T) {
	a := NewDataset().WithClock(func() time.Time { return testNow })
	b := NewDataset().WithClock(func() time.Time { return testNow })
	if err := Seed(a, 42); err != nil {
		t.Fatalf("Seed(a): %v", err)
	}
	if err := Seed(b, 42); err != nil {
		t.Fatalf("Seed(b): %v", err)
	}

	if diff := cmp.Diff(a.Emails(0, 100, nil), b.Emails(0, 100, nil)); diff != "" {
		t.Errorf("emails differ for the same seed (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(a.Content(), b.Content()); diff != "" {
		t.Errorf("content differs for the same seed (-a +b):\n%s", diff)
	}
	if got := len(a.Categories()); got != len(seedCategories) {
		t.Errorf("categories = %d, want %d", got, len(seedCategories))
	}
	if got := len(a.Emails(0, 100, nil)); got != len(seedSubjects) {
		t.Errorf("emails = %d, want %d", got, len(seedSubjects))
	}
}

func TestContentReferencesEmails(t *testing.T) {
	d := NewDataset().WithClock(func() time.Time { return testNow })
	if err := Seed(d, 9); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := model.CheckReferences(d.Emails(0, 1000, nil), d.Content()); err != nil {
		t.Errorf("CheckReferences: %v", err)
	}
	for _, ac := range d.Content() {
		e, err := d.Email(ac.EmailID)
		if err != nil {
			t.Fatalf("Email(%s): %v", ac.EmailID, err)
		}
		if !e.Processed {
			t.Errorf("email %s has content but is not processed", e.ID)
		}
		if ac.ImportanceScore < 1 || ac.ImportanceScore > 10 {
			t.Errorf("importance %d out of 1..10", ac.ImportanceScore)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"New LLM benchmark results", "AI News"},
		{"Go 1.25 release notes", "Tech"},
		{"Your invoice for October", "Finance"},
		{"Flash sale ends tonight", "Shopping"},
		{"Local meetup this Thursday", "Events"},
		{"Community newsletter", otherCategory},
		{"Said hello", otherCategory}, // "ai" only matches at a word start
	}
	for _, tt := range tests {
		if got := classify(tt.subject); got != tt.want {
			t.Errorf("classify(%q) = %q, want %q", tt.subject, got, tt.want)
		}
	}
}

func TestAnalyzeLinksKnownCategory(t *testing.T) {
	d := NewDataset().WithClock(func() time.Time { return testNow })
	cat, err := d.CreateCategory(model.CategoryInput{Name: "Finance"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	e := d.AddEmail(model.Email{Subject: "Market close report", SenderEmail: "a@example.com"})

	ac, err := d.Analyze(e.ID)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if ac.Category != "Finance" || ac.CategoryID != cat.ID {
		t.Errorf("category = %q/%q, want Finance/%s", ac.Category, ac.CategoryID, cat.ID)
	}

	if _, err := d.Analyze("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Analyze(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSummarize(t *testing.T) {
	contents := []model.AnalyzedContent{
		{Category: "Tech", ImportanceScore: 9, TitleOptimized: "A", Summary: "a", KeyPoints: []string{"p1", "p2", "p3", "p4"}},
		{Category: "Tech", ImportanceScore: 5, TitleOptimized: "B"},
		{Category: "Finance", ImportanceScore: 7, TitleOptimized: "C"},
	}

	stats, markdown := summarize("2026-03-10", 3, contents)

	tech := stats["Tech"]
	if tech.Count != 2 || tech.ImportanceTotal != 14 || tech.AverageImportance != 7 {
		t.Errorf("Tech stats = %+v", tech)
	}
	if diff := cmp.Diff([]topItem{{Title: "A", Summary: "a", Score: 9}}, tech.TopItems); diff != "" {
		t.Errorf("Tech top items (-want +got):\n%s", diff)
	}
	if len(stats["Finance"].TopItems) != 1 {
		t.Errorf("score 7 should be a top item")
	}

	for _, want := range []string{
		"# Daily Email Summary - 2026-03-10",
		"**Processed Emails:** 3",
		"### 1. A",
		"- p3",
		"- **Tech**: 2 emails",
		"Average Importance: 7.0/10",
	} {
		if !strings.Contains(markdown, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(markdown, "- p4") {
		t.Error("markdown should list at most 3 key points")
	}
	if !strings.Contains(markdown, "No summary available") {
		t.Error("content without summary should use the placeholder")
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("marshal stats: %v", err)
	}
	if avg, ok := model.Blob(raw).Field("Finance"); !ok || !strings.Contains(string(avg), `"average_importance":7`) {
		t.Errorf("Finance stats json = %s", avg)
	}
}

func TestUpdateCategoryRejectsDuplicateName(t *testing.T) {
	d := NewDataset()
	a, _ := d.CreateCategory(model.CategoryInput{Name: "A"})
	if _, err := d.CreateCategory(model.CategoryInput{Name: "B"}); err != nil {
		t.Fatalf("CreateCategory(B): %v", err)
	}

	name := "B"
	if _, err := d.UpdateCategory(a.ID, model.CategoryPatch{Name: &name}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("rename to existing name error = %v, want ErrDuplicate", err)
	}
	same := "A"
	if _, err := d.UpdateCategory(a.ID, model.CategoryPatch{Name: &same}); err != nil {
		t.Errorf("rename to own name error = %v, want nil", err)
	}
}
