package model

import "time"

// ContentItem is the minimal projection the sort/filter pipeline and the
// layout engine operate on. Importance is integer-like but kept as float64
// so malformed values (NaN, Inf) can be carried and clamped downstream.
type ContentItem struct {
	ID          string
	Title       string
	Summary     string
	Category    string
	Importance  float64
	ReadingTime int // Minutes
	Tags        []string
	Timestamp   time.Time
}

// ItemFromContent projects analyzed content into a ContentItem.
func ItemFromContent(c AnalyzedContent) ContentItem {
	title := c.TitleOptimized
	if title == "" {
		title = c.Summary
	}
	return ContentItem{
		ID:          c.ID,
		Title:       title,
		Summary:     c.Summary,
		Category:    c.Category,
		Importance:  float64(c.ImportanceScore),
		ReadingTime: c.ReadingTime,
		Tags:        c.Tags,
		Timestamp:   c.CreatedAt,
	}
}

// ItemsFromContent projects a content collection, preserving order.
func ItemsFromContent(contents []AnalyzedContent) []ContentItem {
	items := make([]ContentItem, len(contents))
	for i, c := range contents {
		items[i] = ItemFromContent(c)
	}
	return items
}
