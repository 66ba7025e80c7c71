package remote

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/briefdeck/briefdeck/internal/model"
)

// Wire structs use pointers for required fields so a response missing one
// is reported as ErrDecode instead of yielding a zero value.

// emailResponse matches the API email list/detail format.
type emailResponse struct {
	ID          *string `json:"id"`
	Subject     *string `json:"subject"`
	SenderEmail *string `json:"sender_email"`
	SenderName  *string `json:"sender_name"`
	ReceivedAt  *string `json:"received_at"`
	Processed   bool    `json:"processed"`
}

// categoryResponse matches the API category format.
type categoryResponse struct {
	ID          *string `json:"id"`
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	Description *string `json:"description"`
}

// contentResponse matches the analyzed content format.
type contentResponse struct {
	ID              *string         `json:"id"`
	EmailID         *string         `json:"email_id"`
	Category        string          `json:"category"`
	CategoryID      *string         `json:"category_id"`
	ImportanceScore int             `json:"importance_score"`
	TitleOptimized  string          `json:"title_optimized"`
	Summary         string          `json:"summary"`
	ContentMarkdown string          `json:"content_markdown"`
	KeyPoints       []string        `json:"key_points"`
	Tags            []string        `json:"tags"`
	Images          []model.Image   `json:"images"`
	ImportantLinks  []string        `json:"important_links"`
	ReadingTime     int             `json:"reading_time"`
	Sentiment       model.Sentiment `json:"sentiment"`
	ActionItems     []string        `json:"action_items"`
	CreatedAt       string          `json:"created_at"`
}

// summaryResponse matches the daily summary format.
type summaryResponse struct {
	ID                *string    `json:"id"`
	Date              *string    `json:"date"`
	ContentMarkdown   string     `json:"content_markdown"`
	TotalEmails       int        `json:"total_emails"`
	CategoriesSummary model.Blob `json:"categories_summary"`
	CreatedAt         string     `json:"created_at"`
}

// preferenceResponse matches the user preference format.
type preferenceResponse struct {
	ID                   *string                `json:"id"`
	CategoryWeights      map[string]float64     `json:"category_weights"`
	LayoutPreference     model.LayoutPreference `json:"layout_preference"`
	Theme                model.Theme            `json:"theme"`
	NotificationSettings model.Blob             `json:"notification_settings"`
}

// timeLayouts are the timestamp formats the backend emits. Naive
// timestamps (no zone) are interpreted as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// parseTime parses a backend timestamp.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// parseOptionalTime is parseTime for fields that may be empty.
func parseOptionalTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseTime(s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// missing lists the names of nil required fields.
func missing(fields map[string]*string) []string {
	var names []string
	for name, v := range fields {
		if v == nil {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func shapeError(op, entity string, fields []string) error {
	return &Error{
		Kind:    ErrDecode,
		Op:      op,
		Message: fmt.Sprintf("%s missing required fields: %s", entity, strings.Join(fields, ", ")),
	}
}

// toEmail converts and validates an emailResponse.
func toEmail(op string, r emailResponse) (model.Email, error) {
	if m := missing(map[string]*string{
		"id":           r.ID,
		"subject":      r.Subject,
		"sender_email": r.SenderEmail,
		"received_at":  r.ReceivedAt,
	}); len(m) > 0 {
		return model.Email{}, shapeError(op, "email", m)
	}
	received, err := parseTime(*r.ReceivedAt)
	if err != nil {
		return model.Email{}, &Error{Kind: ErrDecode, Op: op, Message: "email received_at", Err: err}
	}
	return model.Email{
		ID:          *r.ID,
		Subject:     *r.Subject,
		SenderEmail: *r.SenderEmail,
		SenderName:  deref(r.SenderName),
		ReceivedAt:  received,
		Processed:   r.Processed,
	}, nil
}

// toCategory converts and validates a categoryResponse.
func toCategory(op string, r categoryResponse) (model.Category, error) {
	if m := missing(map[string]*string{"id": r.ID, "name": r.Name}); len(m) > 0 {
		return model.Category{}, shapeError(op, "category", m)
	}
	return model.Category{
		ID:          *r.ID,
		Name:        *r.Name,
		Color:       deref(r.Color),
		Icon:        deref(r.Icon),
		Description: deref(r.Description),
	}, nil
}

// toContent converts and validates a contentResponse.
func toContent(op string, r contentResponse) (model.AnalyzedContent, error) {
	if m := missing(map[string]*string{"id": r.ID, "email_id": r.EmailID}); len(m) > 0 {
		return model.AnalyzedContent{}, shapeError(op, "analyzed content", m)
	}
	if r.Sentiment != "" && !r.Sentiment.Valid() {
		return model.AnalyzedContent{}, &Error{
			Kind:    ErrDecode,
			Op:      op,
			Message: fmt.Sprintf("analyzed content sentiment %q", r.Sentiment),
		}
	}
	created, err := parseOptionalTime(r.CreatedAt)
	if err != nil {
		return model.AnalyzedContent{}, &Error{Kind: ErrDecode, Op: op, Message: "analyzed content created_at", Err: err}
	}
	return model.AnalyzedContent{
		ID:              *r.ID,
		EmailID:         *r.EmailID,
		Category:        r.Category,
		CategoryID:      deref(r.CategoryID),
		ImportanceScore: r.ImportanceScore,
		TitleOptimized:  r.TitleOptimized,
		Summary:         r.Summary,
		ContentMarkdown: r.ContentMarkdown,
		KeyPoints:       r.KeyPoints,
		Tags:            r.Tags,
		Images:          r.Images,
		ImportantLinks:  r.ImportantLinks,
		ReadingTime:     r.ReadingTime,
		Sentiment:       r.Sentiment,
		ActionItems:     r.ActionItems,
		CreatedAt:       created,
	}, nil
}

// toSummary converts and validates a summaryResponse.
func toSummary(op string, r summaryResponse) (*model.DailySummary, error) {
	if m := missing(map[string]*string{"id": r.ID, "date": r.Date}); len(m) > 0 {
		return nil, shapeError(op, "daily summary", m)
	}
	created, err := parseOptionalTime(r.CreatedAt)
	if err != nil {
		return nil, &Error{Kind: ErrDecode, Op: op, Message: "daily summary created_at", Err: err}
	}
	return &model.DailySummary{
		ID:                *r.ID,
		Date:              *r.Date,
		ContentMarkdown:   r.ContentMarkdown,
		TotalEmails:       r.TotalEmails,
		CategoriesSummary: r.CategoriesSummary,
		CreatedAt:         created,
	}, nil
}

// toPreference converts and validates a preferenceResponse.
func toPreference(op string, r preferenceResponse) (*model.UserPreference, error) {
	if r.ID == nil {
		return nil, shapeError(op, "preferences", []string{"id"})
	}
	return &model.UserPreference{
		ID:                   *r.ID,
		CategoryWeights:      r.CategoryWeights,
		LayoutPreference:     r.LayoutPreference,
		Theme:                r.Theme,
		NotificationSettings: r.NotificationSettings,
	}, nil
}
