package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/briefdeck/briefdeck/internal/model"
)

// ListEmails fetches emails, newest first as ordered by the backend.
func (c *Client) ListEmails(ctx context.Context, filter model.EmailFilter) ([]model.Email, error) {
	const op = "list emails"

	query := url.Values{}
	if filter.Skip != nil {
		if *filter.Skip < 0 {
			return nil, ValidationError(op, "skip must not be negative")
		}
		query.Set("skip", strconv.Itoa(*filter.Skip))
	}
	if filter.Limit != nil {
		if *filter.Limit <= 0 {
			return nil, ValidationError(op, "limit must be positive")
		}
		query.Set("limit", strconv.Itoa(*filter.Limit))
	}
	if filter.Processed != nil {
		query.Set("processed", strconv.FormatBool(*filter.Processed))
	}

	var wire []emailResponse
	if err := c.call(ctx, op, http.MethodGet, "/emails", query, nil, &wire); err != nil {
		return nil, err
	}

	emails := make([]model.Email, len(wire))
	for i, w := range wire {
		e, err := toEmail(op, w)
		if err != nil {
			return nil, err
		}
		emails[i] = e
	}
	return emails, nil
}

// GetEmail fetches a single email. A missing email yields ErrNotFound.
func (c *Client) GetEmail(ctx context.Context, id string) (*model.Email, error) {
	const op = "get email"
	if err := requireID(op, id); err != nil {
		return nil, err
	}

	var wire emailResponse
	if err := c.call(ctx, op, http.MethodGet, "/emails/"+pathID(id), nil, nil, &wire); err != nil {
		return nil, err
	}

	e, err := toEmail(op, wire)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// AnalyzeEmail asks the backend to analyze an email. Analysis runs
// server-side; the returned acknowledgement is opaque.
func (c *Client) AnalyzeEmail(ctx context.Context, id string) (model.Blob, error) {
	const op = "analyze email"
	if err := requireID(op, id); err != nil {
		return nil, err
	}

	data, err := c.callRaw(ctx, op, http.MethodPost, "/emails/"+pathID(id)+"/analyze", nil)
	if err != nil {
		return nil, err
	}
	return model.Blob(data), nil
}
