package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/briefdeck/briefdeck/internal/model"
	"github.com/briefdeck/briefdeck/internal/remote"
)

// lookupLimit bounds concurrent single-email lookups.
const lookupLimit = 8

// checkReferences verifies that every content record references an email
// the backend has. Emails on the loaded page, or confirmed by an earlier
// lookup, are present; any other ID is fetched with GetEmail. Only IDs the
// backend reports as not found make content dangling. Other lookup
// failures are returned as is.
func (s *Store) checkReferences(ctx context.Context, contents []model.AnalyzedContent) error {
	unknown := s.unverified(contents)

	var (
		mu      sync.Mutex
		found   []string
		missing = make(map[string]bool)
	)
	if len(unknown) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(lookupLimit)
		for _, id := range unknown {
			g.Go(func() error {
				_, err := s.gw.GetEmail(gctx, id)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					found = append(found, id)
				case errors.Is(err, remote.ErrNotFound):
					missing[id] = true
				default:
					return fmt.Errorf("look up email %s: %w", id, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		s.mu.Lock()
		for _, id := range found {
			s.verified[id] = struct{}{}
		}
		s.mu.Unlock()
		s.logger.Debug("looked up content references", "emails", len(unknown), "missing", len(missing))
	}

	return model.CheckReferencesFunc(contents, func(id string) bool { return !missing[id] })
}

// unverified returns the distinct email IDs referenced by contents that are
// neither on the loaded page nor confirmed earlier, in first-seen order.
func (s *Store) unverified(contents []model.AnalyzedContent) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.state.Emails))
	for _, e := range s.state.Emails {
		seen[e.ID] = true
	}
	var ids []string
	for _, c := range contents {
		if c.EmailID == "" || seen[c.EmailID] {
			continue
		}
		seen[c.EmailID] = true
		if _, ok := s.verified[c.EmailID]; ok {
			continue
		}
		ids = append(ids, c.EmailID)
	}
	return ids
}
