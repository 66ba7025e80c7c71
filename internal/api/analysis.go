package api

import (
	"cmp"
	"fmt"
	"hash/fnv"
	"slices"
	"strings"
	"time"

	"github.com/briefdeck/briefdeck/internal/model"
)

// categoryKeywords drives the stand-in classifier. The first category whose
// keywords appear in the subject wins; otherwise the email is "Other".
var categoryKeywords = []struct {
	name     string
	keywords []string
}{
	{"AI News", []string{"ai", "model", "llm", "gpt", "neural", "agent"}},
	{"Tech", []string{"release", "kernel", "go ", "rust", "cloud", "database", "api"}},
	{"Finance", []string{"market", "invoice", "stock", "rate", "payment", "budget"}},
	{"Shopping", []string{"sale", "order", "deal", "shipped", "discount", "cart"}},
	{"Events", []string{"meetup", "conference", "webinar", "invite", "summit", "rsvp"}},
}

const otherCategory = "Other"

// classify returns the category name for a subject line.
func classify(subject string) string {
	lower := " " + strings.ToLower(subject) + " "
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lower, " "+kw) {
				return c.name
			}
		}
	}
	return otherCategory
}

// importanceOf derives a stable 1..10 score from the email identity.
func importanceOf(e model.Email) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(e.SenderEmail))
	_, _ = h.Write([]byte(e.Subject))
	return int(h.Sum32()%10) + 1
}

// analyze produces the analyzed content record for an email. The ID is
// assigned by the caller.
func analyze(e model.Email, categories []model.Category, now time.Time) model.AnalyzedContent {
	category := classify(e.Subject)
	var categoryID string
	for _, c := range categories {
		if strings.EqualFold(c.Name, category) {
			category = c.Name
			categoryID = c.ID
			break
		}
	}

	score := importanceOf(e)
	words := strings.Fields(e.Subject)
	sentiment := model.SentimentNeutral
	switch {
	case score >= 8:
		sentiment = model.SentimentPositive
	case score <= 2:
		sentiment = model.SentimentNegative
	}

	var tags []string
	for _, w := range words {
		w = strings.ToLower(strings.Trim(w, ".,:;!?\"'()"))
		if len(w) > 3 && !slices.Contains(tags, w) {
			tags = append(tags, w)
		}
		if len(tags) == 3 {
			break
		}
	}

	summary := fmt.Sprintf("%s, from %s.", e.Subject, e.DisplaySender())
	return model.AnalyzedContent{
		EmailID:         e.ID,
		Category:        category,
		CategoryID:      categoryID,
		ImportanceScore: score,
		TitleOptimized:  e.Subject,
		Summary:         summary,
		ContentMarkdown: fmt.Sprintf("## %s\n\n%s\n", e.Subject, summary),
		KeyPoints:       []string{e.Subject},
		Tags:            tags,
		Images:          []model.Image{},
		ImportantLinks:  []string{},
		ReadingTime:     1 + len(words)/5,
		Sentiment:       sentiment,
		ActionItems:     []string{},
		CreatedAt:       now,
	}
}

// topItem is one entry of a category's top_items list.
type topItem struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Score   int    `json:"score"`
}

// categoryStats is one entry of a summary's categories_summary object.
type categoryStats struct {
	Count             int       `json:"count"`
	ImportanceTotal   int       `json:"importance_total"`
	TopItems          []topItem `json:"top_items"`
	AverageImportance float64   `json:"average_importance"`
}

const (
	topItemMinScore = 7
	topItemsLimit   = 5
	topStoriesLimit = 10
)

// summarize aggregates the content of one day into per-category stats and
// the markdown digest. Stats are keyed by category name.
func summarize(day string, processed int, contents []model.AnalyzedContent) (map[string]*categoryStats, string) {
	stats := make(map[string]*categoryStats)
	var order []string
	for _, c := range contents {
		s, ok := stats[c.Category]
		if !ok {
			s = &categoryStats{TopItems: []topItem{}}
			stats[c.Category] = s
			order = append(order, c.Category)
		}
		s.Count++
		s.ImportanceTotal += c.ImportanceScore
		if c.ImportanceScore >= topItemMinScore {
			s.TopItems = append(s.TopItems, topItem{Title: c.TitleOptimized, Summary: c.Summary, Score: c.ImportanceScore})
		}
	}
	for _, s := range stats {
		slices.SortStableFunc(s.TopItems, func(a, b topItem) int { return cmp.Compare(b.Score, a.Score) })
		if len(s.TopItems) > topItemsLimit {
			s.TopItems = s.TopItems[:topItemsLimit]
		}
		s.AverageImportance = float64(s.ImportanceTotal) / float64(s.Count)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Daily Email Summary - %s\n\n", day)
	fmt.Fprintf(&b, "**Total Emails Received:** %d\n", processed)
	fmt.Fprintf(&b, "**Processed Emails:** %d\n\n", len(contents))
	b.WriteString("## Top Stories\n\n")

	top := slices.Clone(contents)
	slices.SortStableFunc(top, func(a, b model.AnalyzedContent) int {
		return cmp.Compare(b.ImportanceScore, a.ImportanceScore)
	})
	if len(top) > topStoriesLimit {
		top = top[:topStoriesLimit]
	}
	for i, c := range top {
		fmt.Fprintf(&b, "### %d. %s\n*Importance: %d/10*\n\n", i+1, c.TitleOptimized, c.ImportanceScore)
		summary := c.Summary
		if summary == "" {
			summary = "No summary available"
		}
		b.WriteString(summary + "\n\n")
		if len(c.KeyPoints) > 0 {
			b.WriteString("**Key Points:**\n")
			for _, p := range c.KeyPoints[:min(3, len(c.KeyPoints))] {
				fmt.Fprintf(&b, "- %s\n", p)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Category Distribution\n\n")
	for _, name := range order {
		s := stats[name]
		fmt.Fprintf(&b, "- **%s**: %d emails\n  Average Importance: %.1f/10\n\n", name, s.Count, s.AverageImportance)
	}
	return stats, b.String()
}
