package api

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/briefdeck/briefdeck/internal/model"
)

const dayLayout = "2006-01-02"

// Summary returns the summary for day, generating it when absent.
func (d *Dataset) Summary(day time.Time) (model.DailySummary, error) {
	key := day.Format(dayLayout)
	d.mu.RLock()
	s, ok := d.summaries[key]
	d.mu.RUnlock()
	if ok {
		return s, nil
	}
	return d.GenerateSummary(day)
}

// GenerateSummary (re)builds the summary for day from the emails received
// that day. Regeneration keeps the summary ID.
func (d *Dataset) GenerateSummary(day time.Time) (model.DailySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	key := start.Format(dayLayout)

	d.mu.Lock()
	defer d.mu.Unlock()

	var processed int
	var contents []model.AnalyzedContent
	for _, e := range d.emails {
		if e.ReceivedAt.Before(start) || !e.ReceivedAt.Before(end) {
			continue
		}
		if e.Processed {
			processed++
		}
		if ac, ok := d.content[e.ID]; ok {
			contents = append(contents, ac)
		}
	}

	stats, markdown := summarize(key, processed, contents)
	blob, err := json.Marshal(stats)
	if err != nil {
		return model.DailySummary{}, fmt.Errorf("encode categories summary: %w", err)
	}

	s, ok := d.summaries[key]
	if !ok {
		s = model.DailySummary{ID: d.newID("summary"), Date: key, CreatedAt: d.now().UTC()}
	}
	s.ContentMarkdown = markdown
	s.TotalEmails = processed
	s.CategoriesSummary = model.Blob(blob)
	d.summaries[key] = s
	return s, nil
}

type categoryCount struct {
	Category string `json:"category"`
	Color    string `json:"color"`
	Count    int    `json:"count"`
}

// Overview is the analytics overview payload.
type Overview struct {
	TotalEmails          int             `json:"total_emails"`
	ProcessedEmails      int             `json:"processed_emails"`
	ProcessingRate       float64         `json:"processing_rate"`
	EmailsThisWeek       int             `json:"emails_this_week"`
	CategoryDistribution []categoryCount `json:"category_distribution"`
	LastUpdated          time.Time       `json:"last_updated"`
}

// Overview computes aggregate counts over the whole dataset.
func (d *Dataset) Overview() Overview {
	d.mu.RLock()
	defer d.mu.RUnlock()

	now := d.now().UTC()
	weekAgo := now.AddDate(0, 0, -7)
	o := Overview{TotalEmails: len(d.emails), LastUpdated: now, CategoryDistribution: []categoryCount{}}
	for _, e := range d.emails {
		if e.Processed {
			o.ProcessedEmails++
		}
		if !e.ReceivedAt.Before(weekAgo) {
			o.EmailsThisWeek++
		}
	}
	if o.TotalEmails > 0 {
		o.ProcessingRate = float64(o.ProcessedEmails) / float64(o.TotalEmails) * 100
	}

	counts := make(map[string]int)
	for _, ac := range d.content {
		if ac.CategoryID != "" {
			counts[ac.CategoryID]++
		}
	}
	for _, c := range d.categories {
		if n := counts[c.ID]; n > 0 {
			o.CategoryDistribution = append(o.CategoryDistribution, categoryCount{Category: c.Name, Color: c.Color, Count: n})
		}
	}
	return o
}

type dayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Trends is the analytics trends payload.
type Trends struct {
	PeriodDays  int        `json:"period_days"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	DailyTrends []dayCount `json:"daily_trends"`
}

// Trends counts emails per day over the last days days, oldest first.
func (d *Dataset) Trends(days int) Trends {
	d.mu.RLock()
	defer d.mu.RUnlock()

	now := d.now().UTC()
	start := now.AddDate(0, 0, -days)
	counts := make(map[string]int)
	for _, e := range d.emails {
		if !e.ReceivedAt.Before(start) {
			counts[e.ReceivedAt.UTC().Format(dayLayout)]++
		}
	}

	t := Trends{
		PeriodDays:  days,
		StartDate:   start.Format(dayLayout),
		EndDate:     now.Format(dayLayout),
		DailyTrends: make([]dayCount, 0, len(counts)),
	}
	for day, n := range counts {
		t.DailyTrends = append(t.DailyTrends, dayCount{Date: day, Count: n})
	}
	sort.Slice(t.DailyTrends, func(i, j int) bool { return t.DailyTrends[i].Date < t.DailyTrends[j].Date })
	return t
}
