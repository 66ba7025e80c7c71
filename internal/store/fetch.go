package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/briefdeck/briefdeck/internal/model"
	"github.com/briefdeck/briefdeck/internal/remote"
)

// FetchEmails loads the email collection. On failure the previous emails
// are kept and the error is recorded in State.Error.
func (s *Store) FetchEmails(ctx context.Context) error {
	return fetch(s, ctx, collEmails,
		func(ctx context.Context) ([]model.Email, error) {
			return s.gw.ListEmails(ctx, s.opts.EmailFilter)
		},
		func(st *State, emails []model.Email) error {
			st.Emails = emails
			return nil
		})
}

// FetchCategories loads the category collection independently of emails.
func (s *Store) FetchCategories(ctx context.Context) error {
	return fetch(s, ctx, collCategories,
		func(ctx context.Context) ([]model.Category, error) {
			return s.gw.ListCategories(ctx)
		},
		func(st *State, categories []model.Category) error {
			st.Categories = categories
			return nil
		})
}

// FetchContent loads the analyzed content feed. A backend without a feed
// yields an empty collection. Content referring to emails the backend does
// not have is rejected with a *model.DanglingError.
func (s *Store) FetchContent(ctx context.Context) error {
	return fetch(s, ctx, collContent,
		func(ctx context.Context) ([]model.AnalyzedContent, error) {
			contents, err := s.gw.ListContent(ctx)
			if errors.Is(err, remote.ErrNotFound) {
				s.logger.Debug("backend has no content feed")
				return []model.AnalyzedContent{}, nil
			}
			if err != nil {
				return nil, err
			}
			if err := s.checkReferences(ctx, contents); err != nil {
				return nil, err
			}
			return contents, nil
		},
		func(st *State, contents []model.AnalyzedContent) error {
			st.Content = contents
			return nil
		})
}

// FetchAll loads emails and categories concurrently, then content once
// emails are present. Each fetch settles independently; the first error
// is returned.
func (s *Store) FetchAll(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		if err := s.FetchEmails(ctx); err != nil {
			return err
		}
		return s.FetchContent(ctx)
	})
	g.Go(func() error {
		return s.FetchCategories(ctx)
	})
	return g.Wait()
}

// fetch runs one generation-tagged fetch of collection c. apply installs
// the result into the state and may reject it.
func fetch[T any](s *Store, ctx context.Context, c collection,
	call func(context.Context) (T, error), apply func(*State, T) error,
) error {
	var gen uint64
	s.update(func(st *State) bool {
		gen = s.gens[c].next()
		st.setStatus(c, StatusLoading, errorText(st, c))
		return true
	})

	var result T
	err := s.withRetry(ctx, c, func() error {
		var err error
		result, err = call(ctx)
		return err
	})

	s.update(func(st *State) bool {
		g := &s.gens[c]
		if !g.accept(gen) {
			s.logger.Debug("discarding stale response",
				"collection", c.String(),
				"generation", gen,
				"applied", g.applied,
			)
			return false
		}
		if err == nil {
			err = apply(st, result)
		}

		status := StatusReady
		msg := ""
		if err != nil {
			status = StatusFailed
			msg = fmt.Sprintf("Failed to fetch %s: %v", c, err)
			s.logger.Warn("fetch failed", "collection", c.String(), "error", err)
		}
		if !g.latest(gen) {
			// A newer fetch is still in flight.
			status = StatusLoading
		}
		st.setStatus(c, status, msg)
		return true
	})
	return err
}

// errorText returns the collection's current error so it survives the
// transition to loading.
func errorText(st *State, c collection) string {
	switch c {
	case collEmails:
		return st.Error
	case collCategories:
		return st.CategoriesError
	default:
		return st.ContentError
	}
}

// withRetry runs fn, retrying network failures per the retry policy.
func (s *Store) withRetry(ctx context.Context, c collection, fn func() error) error {
	p := s.opts.Retry
	if p.MaxRetries <= 0 {
		return fn()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	b.MaxInterval = 10 * time.Second
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxRetries)), ctx)
	return backoff.RetryNotify(func() error {
		err := fn()
		if err != nil && !remote.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		s.logger.Debug("retrying fetch", "collection", c.String(), "wait", wait, "error", err)
	})
}
