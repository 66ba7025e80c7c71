package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/briefdeck/briefdeck/internal/model"
)

// summaryDateLayout is the format of the summary_date query parameter.
const summaryDateLayout = "2006-01-02"

func summaryQuery(date *time.Time) url.Values {
	if date == nil {
		return nil
	}
	return url.Values{"summary_date": []string{date.Format(summaryDateLayout)}}
}

// GetDailySummary fetches the summary for date, or for today when date is nil.
func (c *Client) GetDailySummary(ctx context.Context, date *time.Time) (*model.DailySummary, error) {
	const op = "get daily summary"

	var wire summaryResponse
	if err := c.call(ctx, op, http.MethodGet, "/summaries/daily", summaryQuery(date), nil, &wire); err != nil {
		return nil, err
	}
	return toSummary(op, wire)
}

// GenerateSummary triggers summary generation for date (today when nil).
func (c *Client) GenerateSummary(ctx context.Context, date *time.Time) (model.Blob, error) {
	const op = "generate summary"

	data, err := c.callRaw(ctx, op, http.MethodPost, "/summaries/generate", summaryQuery(date))
	if err != nil {
		return nil, err
	}
	return model.Blob(data), nil
}

// AnalyticsOverview fetches the aggregate overview. The payload is opaque.
func (c *Client) AnalyticsOverview(ctx context.Context) (model.Blob, error) {
	const op = "analytics overview"

	var blob model.Blob
	if err := c.call(ctx, op, http.MethodGet, "/analytics/overview", nil, nil, &blob); err != nil {
		return nil, err
	}
	return blob, nil
}

// AnalyticsTrends fetches per-day email counts for the last days days.
func (c *Client) AnalyticsTrends(ctx context.Context, days int) (model.Blob, error) {
	const op = "analytics trends"
	if days <= 0 {
		return nil, ValidationError(op, "days must be positive")
	}

	query := url.Values{"days": []string{strconv.Itoa(days)}}
	var blob model.Blob
	if err := c.call(ctx, op, http.MethodGet, "/analytics/trends", query, nil, &blob); err != nil {
		return nil, err
	}
	return blob, nil
}

// GetPreferences fetches the user's preferences.
func (c *Client) GetPreferences(ctx context.Context) (*model.UserPreference, error) {
	const op = "get preferences"

	var wire preferenceResponse
	if err := c.call(ctx, op, http.MethodGet, "/preferences", nil, nil, &wire); err != nil {
		return nil, err
	}
	return toPreference(op, wire)
}

// UpdatePreferences applies a partial preference update.
func (c *Client) UpdatePreferences(ctx context.Context, patch model.PreferencePatch) (*model.UserPreference, error) {
	const op = "update preferences"
	if err := patch.Validate(); err != nil {
		return nil, ValidationError(op, err.Error())
	}

	var wire preferenceResponse
	if err := c.call(ctx, op, http.MethodPut, "/preferences", nil, patch, &wire); err != nil {
		return nil, err
	}
	return toPreference(op, wire)
}

// ListContent fetches the analyzed content feed from the /content
// extension endpoint. Backends without the endpoint answer ErrNotFound.
func (c *Client) ListContent(ctx context.Context) ([]model.AnalyzedContent, error) {
	const op = "list content"

	var wire []contentResponse
	if err := c.call(ctx, op, http.MethodGet, "/content", nil, nil, &wire); err != nil {
		return nil, err
	}

	contents := make([]model.AnalyzedContent, len(wire))
	for i, w := range wire {
		ac, err := toContent(op, w)
		if err != nil {
			return nil, err
		}
		contents[i] = ac
	}
	return contents, nil
}
