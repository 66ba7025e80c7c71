package remote

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/briefdeck/briefdeck/internal/model"
)

// ListCategories fetches all categories.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	const op = "list categories"

	var wire []categoryResponse
	if err := c.call(ctx, op, http.MethodGet, "/categories", nil, nil, &wire); err != nil {
		return nil, err
	}

	categories := make([]model.Category, len(wire))
	for i, w := range wire {
		cat, err := toCategory(op, w)
		if err != nil {
			return nil, err
		}
		categories[i] = cat
	}
	return categories, nil
}

// CreateCategory creates a category and returns it with its assigned ID.
func (c *Client) CreateCategory(ctx context.Context, in model.CategoryInput) (*model.Category, error) {
	const op = "create category"
	if strings.TrimSpace(in.Name) == "" {
		return nil, ValidationError(op, "name is required")
	}

	var wire categoryResponse
	if err := c.call(ctx, op, http.MethodPost, "/categories", nil, in, &wire); err != nil {
		return nil, err
	}

	cat, err := toCategory(op, wire)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// UpdateCategory applies a partial update to a category.
func (c *Client) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	const op = "update category"
	if err := requireID(op, id); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, ValidationError(op, "nothing to update")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, ValidationError(op, "name must not be empty")
	}

	var wire categoryResponse
	if err := c.call(ctx, op, http.MethodPut, "/categories/"+pathID(id), nil, patch, &wire); err != nil {
		return nil, err
	}

	cat, err := toCategory(op, wire)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory deletes a category. Deleting an absent category is not an
// error: the backend answers 404, which is treated as already deleted.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	const op = "delete category"
	if err := requireID(op, id); err != nil {
		return err
	}

	err := c.call(ctx, op, http.MethodDelete, "/categories/"+pathID(id), nil, nil, nil)
	if errors.Is(err, ErrNotFound) {
		c.logger.Debug("category already absent", "id", id)
		return nil
	}
	return err
}
