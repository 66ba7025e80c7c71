package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/briefdeck/briefdeck/internal/model"
	"github.com/briefdeck/briefdeck/internal/remote"
)

// AnalyzeEmail asks the backend to analyze an email, then refreshes the
// emails (and the content feed, once loaded) to pick up the new processed
// flag. If the analysis call fails nothing is refetched, existing data is
// untouched and the failure is recorded in State.AnalyzeError.
func (s *Store) AnalyzeEmail(ctx context.Context, id string) error {
	if _, err := s.gw.AnalyzeEmail(ctx, id); err != nil {
		s.logger.Warn("analyze failed", "email_id", id, "error", err)
		s.update(func(st *State) bool {
			st.AnalyzeError = fmt.Sprintf("Failed to analyze email: %v", err)
			return true
		})
		return err
	}

	s.update(func(st *State) bool {
		if st.AnalyzeError == "" {
			return false
		}
		st.AnalyzeError = ""
		return true
	})

	refreshContent := s.Get().ContentStatus != StatusUninitialized
	err := s.FetchEmails(ctx)
	if refreshContent {
		err = errors.Join(err, s.FetchContent(ctx))
	}
	return err
}

// CreateCategory creates a category after checking that its name is not
// already taken, then refreshes the categories.
func (s *Store) CreateCategory(ctx context.Context, in model.CategoryInput) (*model.Category, error) {
	const op = "create category"
	if model.NameTaken(s.Get().Categories, in.Name, "") {
		return nil, remote.ValidationError(op, fmt.Sprintf("category %q already exists", in.Name))
	}

	c, err := s.gw.CreateCategory(ctx, in)
	if err != nil {
		return nil, err
	}
	s.refreshCategories(ctx, op)
	return c, nil
}

// UpdateCategory applies a partial update after the same name check, then
// refreshes the categories.
func (s *Store) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	const op = "update category"
	if patch.Name != nil && model.NameTaken(s.Get().Categories, *patch.Name, id) {
		return nil, remote.ValidationError(op, fmt.Sprintf("category %q already exists", *patch.Name))
	}

	c, err := s.gw.UpdateCategory(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.refreshCategories(ctx, op)
	return c, nil
}

// DeleteCategory deletes a category and refreshes the categories.
// Deleting an absent category succeeds.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if err := s.gw.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.refreshCategories(ctx, "delete category")
	return nil
}

// refreshCategories refetches after a successful mutation. A refetch
// failure is recorded in the state, not returned: the mutation itself
// succeeded.
func (s *Store) refreshCategories(ctx context.Context, op string) {
	if err := s.FetchCategories(ctx); err != nil {
		s.logger.Warn("category refresh failed", "after", op, "error", err)
	}
}

// ReplaceContent installs contents wholesale, as if fetched. References
// are checked the same way FetchContent checks them; on failure the state
// is untouched. Fetches in flight for content become stale.
func (s *Store) ReplaceContent(ctx context.Context, contents []model.AnalyzedContent) error {
	if err := s.checkReferences(ctx, contents); err != nil {
		return err
	}
	s.update(func(st *State) bool {
		g := &s.gens[collContent]
		g.accept(g.next())
		st.Content = append([]model.AnalyzedContent(nil), contents...)
		st.setStatus(collContent, StatusReady, "")
		return true
	})
	return nil
}
