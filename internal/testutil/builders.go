package testutil

import (
	"strconv"
	"time"

	"github.com/briefdeck/briefdeck/internal/model"
)

// BaseTime is the receive time builders start from.
var BaseTime = time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

// EmailBuilder provides a fluent API for constructing model.Email in tests.
type EmailBuilder struct {
	e model.Email
}

// NewEmail creates a builder with sensible defaults.
func NewEmail(id string) *EmailBuilder {
	return &EmailBuilder{
		e: model.Email{
			ID:          id,
			Subject:     "Test Subject",
			SenderEmail: "sender@example.com",
			ReceivedAt:  BaseTime,
		},
	}
}

func (b *EmailBuilder) WithSubject(s string) *EmailBuilder {
	b.e.Subject = s
	return b
}

func (b *EmailBuilder) WithSender(name, addr string) *EmailBuilder {
	b.e.SenderName = name
	b.e.SenderEmail = addr
	return b
}

func (b *EmailBuilder) WithReceivedAt(t time.Time) *EmailBuilder {
	b.e.ReceivedAt = t
	return b
}

func (b *EmailBuilder) Processed() *EmailBuilder {
	b.e.Processed = true
	return b
}

func (b *EmailBuilder) Build() model.Email {
	return b.e
}

// ContentBuilder provides a fluent API for constructing
// model.AnalyzedContent in tests.
type ContentBuilder struct {
	c model.AnalyzedContent
}

// NewContent creates a builder for the analysis of emailID.
func NewContent(id, emailID string) *ContentBuilder {
	return &ContentBuilder{
		c: model.AnalyzedContent{
			ID:              id,
			EmailID:         emailID,
			Category:        "General",
			ImportanceScore: 5,
			TitleOptimized:  "Story " + id,
			Summary:         "Summary of " + emailID,
			ReadingTime:     2,
			Sentiment:       model.SentimentNeutral,
			CreatedAt:       BaseTime,
		},
	}
}

func (b *ContentBuilder) WithCategory(c string) *ContentBuilder {
	b.c.Category = c
	return b
}

func (b *ContentBuilder) WithImportance(score int) *ContentBuilder {
	b.c.ImportanceScore = score
	return b
}

func (b *ContentBuilder) WithTitle(title string) *ContentBuilder {
	b.c.TitleOptimized = title
	return b
}

func (b *ContentBuilder) WithReadingTime(minutes int) *ContentBuilder {
	b.c.ReadingTime = minutes
	return b
}

func (b *ContentBuilder) WithTags(tags ...string) *ContentBuilder {
	b.c.Tags = tags
	return b
}

func (b *ContentBuilder) Build() model.AnalyzedContent {
	return b.c
}

// ProcessedInbox returns n processed emails e1..en, one hour apart and
// newest first, with matching content c1..cn whose importance cycles
// through scores.
func ProcessedInbox(n int, scores ...int) ([]model.Email, []model.AnalyzedContent) {
	if len(scores) == 0 {
		scores = []int{5}
	}
	emails := make([]model.Email, 0, n)
	content := make([]model.AnalyzedContent, 0, n)
	for i := range n {
		eid := "e" + strconv.Itoa(i+1)
		emails = append(emails, NewEmail(eid).
			WithSubject("Subject "+strconv.Itoa(i+1)).
			WithReceivedAt(BaseTime.Add(-time.Duration(i)*time.Hour)).
			Processed().
			Build())
		content = append(content, NewContent("c"+strconv.Itoa(i+1), eid).
			WithImportance(scores[i%len(scores)]).
			Build())
	}
	return emails, content
}
