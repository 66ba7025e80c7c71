// Package model defines the entities exchanged with the aggregation backend
// and the view projections derived from them.
package model

import (
	"fmt"
	"time"
)

// Email is a received message as listed by the backend.
// Only Processed may change after the email has been fetched.
type Email struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	SenderEmail string    `json:"sender_email"`
	SenderName  string    `json:"sender_name,omitempty"` // Empty when the sender has no display name
	ReceivedAt  time.Time `json:"received_at"`
	Processed   bool      `json:"processed"`
}

// DisplaySender returns the sender name if known, otherwise the address.
func (e Email) DisplaySender() string {
	if e.SenderName != "" {
		return e.SenderName
	}
	return e.SenderEmail
}

// EmailFilter narrows an email listing. Nil fields are not sent.
type EmailFilter struct {
	Skip      *int
	Limit     *int
	Processed *bool
}

// Category is a user-visible grouping label for analyzed content.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"` // Opaque to the client; used for tagging only
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

// CategoryInput is the body for creating a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

// CategoryPatch is a partial category update. Nil fields are left unchanged.
type CategoryPatch struct {
	Name        *string `json:"name,omitempty"`
	Color       *string `json:"color,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Apply returns c with the non-nil patch fields applied.
func (p CategoryPatch) Apply(c Category) Category {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	return c
}

// IsEmpty reports whether the patch changes nothing.
func (p CategoryPatch) IsEmpty() bool {
	return p.Name == nil && p.Color == nil && p.Icon == nil && p.Description == nil
}

// Sentiment is the tone assigned by the analyzer.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Valid reports whether s is one of the known sentiments.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Image is an image extracted from an email during analysis.
type Image struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption,omitempty"`
}

// AnalyzedContent is the analyzer's output for exactly one email.
// It is never mutated; a new analysis replaces the record for the same email.
type AnalyzedContent struct {
	ID              string    `json:"id"`
	EmailID         string    `json:"email_id"`
	Category        string    `json:"category"`
	CategoryID      string    `json:"category_id,omitempty"`
	ImportanceScore int       `json:"importance_score"`
	TitleOptimized  string    `json:"title_optimized"`
	Summary         string    `json:"summary"`
	ContentMarkdown string    `json:"content_markdown"`
	KeyPoints       []string  `json:"key_points"`
	Tags            []string  `json:"tags"`
	Images          []Image   `json:"images"`
	ImportantLinks  []string  `json:"important_links"`
	ReadingTime     int       `json:"reading_time"` // Minutes
	Sentiment       Sentiment `json:"sentiment"`
	ActionItems     []string  `json:"action_items"`
	CreatedAt       time.Time `json:"created_at"`
}

// DailySummary is the generated digest for one day.
type DailySummary struct {
	ID                string    `json:"id"`
	Date              string    `json:"date"` // YYYY-MM-DD
	ContentMarkdown   string    `json:"content_markdown"`
	TotalEmails       int       `json:"total_emails"`
	CategoriesSummary Blob      `json:"categories_summary"`
	CreatedAt         time.Time `json:"created_at"`
}

// LayoutPreference selects the default content view.
type LayoutPreference string

const (
	LayoutNewspaper LayoutPreference = "newspaper"
	LayoutHomepage  LayoutPreference = "homepage"
)

// Theme selects the color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// UserPreference holds per-user display settings.
type UserPreference struct {
	ID                   string             `json:"id"`
	CategoryWeights      map[string]float64 `json:"category_weights"`
	LayoutPreference     LayoutPreference   `json:"layout_preference"`
	Theme                Theme              `json:"theme"`
	NotificationSettings Blob               `json:"notification_settings"`
}

// PreferencePatch is a partial preference update.
type PreferencePatch struct {
	CategoryWeights      map[string]float64 `json:"category_weights,omitempty"`
	LayoutPreference     *LayoutPreference  `json:"layout_preference,omitempty"`
	Theme                *Theme             `json:"theme,omitempty"`
	NotificationSettings Blob               `json:"notification_settings,omitempty"`
}

// Validate checks the enumerated fields of the patch.
func (p PreferencePatch) Validate() error {
	if p.LayoutPreference != nil {
		switch *p.LayoutPreference {
		case LayoutNewspaper, LayoutHomepage:
		default:
			return fmt.Errorf("layout_preference must be %q or %q, got %q",
				LayoutNewspaper, LayoutHomepage, *p.LayoutPreference)
		}
	}
	if p.Theme != nil {
		switch *p.Theme {
		case ThemeLight, ThemeDark:
		default:
			return fmt.Errorf("theme must be %q or %q, got %q", ThemeLight, ThemeDark, *p.Theme)
		}
	}
	return nil
}
