package api

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/briefdeck/briefdeck/internal/model"
)

// Dataset errors, mapped to HTTP statuses by the handlers.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
	ErrInvalid   = errors.New("invalid")
)

// Dataset is the in-memory state behind the server. All methods are safe
// for concurrent use and return copies, never internal slices.
type Dataset struct {
	mu         sync.RWMutex
	emails     []model.Email // newest first
	categories []model.Category
	content    map[string]model.AnalyzedContent // by email ID
	summaries  map[string]model.DailySummary    // by YYYY-MM-DD
	prefs      model.UserPreference
	nextID     int
	now        func() time.Time

	// AnalyzeHook, when set, runs before an analysis and can fail it.
	AnalyzeHook func(emailID string) error
}

// NewDataset returns an empty dataset with default preferences.
func NewDataset() *Dataset {
	return &Dataset{
		content:   make(map[string]model.AnalyzedContent),
		summaries: make(map[string]model.DailySummary),
		prefs: model.UserPreference{
			ID:                   "pref-1",
			CategoryWeights:      map[string]float64{},
			LayoutPreference:     model.LayoutNewspaper,
			Theme:                model.ThemeLight,
			NotificationSettings: model.Blob(`{}`),
		},
		now: time.Now,
	}
}

// WithClock replaces the dataset's time source.
func (d *Dataset) WithClock(now func() time.Time) *Dataset {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.now = now
	return d
}

// Now returns the dataset's current time in UTC.
func (d *Dataset) Now() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.now().UTC()
}

func (d *Dataset) newID(prefix string) string {
	d.nextID++
	return fmt.Sprintf("%s-%d", prefix, d.nextID)
}

// AddEmail inserts an email, keeping newest-first order.
// An empty ID is assigned.
func (d *Dataset) AddEmail(e model.Email) model.Email {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e.ID == "" {
		e.ID = d.newID("email")
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = d.now().UTC()
	}
	d.emails = append(d.emails, e)
	sort.SliceStable(d.emails, func(i, j int) bool {
		return d.emails[i].ReceivedAt.After(d.emails[j].ReceivedAt)
	})
	return e
}

// Emails returns a page of emails, optionally filtered by processed state.
func (d *Dataset) Emails(skip, limit int, processed *bool) []model.Email {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var matched []model.Email
	for _, e := range d.emails {
		if processed != nil && e.Processed != *processed {
			continue
		}
		matched = append(matched, e)
	}
	if skip >= len(matched) {
		return []model.Email{}
	}
	matched = matched[skip:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return slices.Clone(matched)
}

// Email returns one email by ID.
func (d *Dataset) Email(id string) (model.Email, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, e := range d.emails {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Email{}, fmt.Errorf("email %s: %w", id, ErrNotFound)
}

// Analyze marks an email processed and records its analyzed content.
// Re-analysis overwrites the previous record for the email.
func (d *Dataset) Analyze(id string) (model.AnalyzedContent, error) {
	if d.AnalyzeHook != nil {
		if err := d.AnalyzeHook(id); err != nil {
			return model.AnalyzedContent{}, err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.emails {
		if d.emails[i].ID != id {
			continue
		}
		d.emails[i].Processed = true
		ac := analyze(d.emails[i], d.categories, d.now().UTC())
		if prev, ok := d.content[id]; ok {
			ac.ID = prev.ID
		} else {
			ac.ID = d.newID("content")
		}
		d.content[id] = ac
		return ac, nil
	}
	return model.AnalyzedContent{}, fmt.Errorf("email %s: %w", id, ErrNotFound)
}

// Content returns analyzed content in email order (newest email first).
func (d *Dataset) Content() []model.AnalyzedContent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.AnalyzedContent, 0, len(d.content))
	for _, e := range d.emails {
		if ac, ok := d.content[e.ID]; ok {
			out = append(out, ac)
		}
	}
	return out
}

// Categories returns all categories in creation order.
func (d *Dataset) Categories() []model.Category {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Category{}, d.categories...)
}

// CreateCategory adds a category. Names must be unique.
func (d *Dataset) CreateCategory(in model.CategoryInput) (model.Category, error) {
	if err := validateCategory(in.Name, in.Color); err != nil {
		return model.Category{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if model.NameTaken(d.categories, in.Name, "") {
		return model.Category{}, fmt.Errorf("category %q: %w", in.Name, ErrDuplicate)
	}
	c := model.Category{
		ID:          d.newID("cat"),
		Name:        in.Name,
		Color:       in.Color,
		Icon:        in.Icon,
		Description: in.Description,
	}
	d.categories = append(d.categories, c)
	return c, nil
}

// UpdateCategory applies a patch to a category.
func (d *Dataset) UpdateCategory(id string, patch model.CategoryPatch) (model.Category, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.categories {
		if d.categories[i].ID != id {
			continue
		}
		updated := patch.Apply(d.categories[i])
		if err := validateCategory(updated.Name, updated.Color); err != nil {
			return model.Category{}, err
		}
		if model.NameTaken(d.categories, updated.Name, id) {
			return model.Category{}, fmt.Errorf("category %q: %w", updated.Name, ErrDuplicate)
		}
		d.categories[i] = updated
		return updated, nil
	}
	return model.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
}

// DeleteCategory removes a category.
func (d *Dataset) DeleteCategory(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.categories {
		if d.categories[i].ID == id {
			d.categories = slices.Delete(d.categories, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("category %s: %w", id, ErrNotFound)
}

func validateCategory(name, color string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required: %w", ErrInvalid)
	}
	if len(name) > 100 {
		return fmt.Errorf("name longer than 100 characters: %w", ErrInvalid)
	}
	if color != "" && !isHexColor(color) {
		return fmt.Errorf("color %q must look like #RRGGBB: %w", color, ErrInvalid)
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

// Preferences returns the single preference record.
func (d *Dataset) Preferences() model.UserPreference {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.prefs
}

// UpdatePreferences applies a partial update to the preference record.
func (d *Dataset) UpdatePreferences(patch model.PreferencePatch) (model.UserPreference, error) {
	if err := patch.Validate(); err != nil {
		return model.UserPreference{}, fmt.Errorf("%v: %w", err, ErrInvalid)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if patch.CategoryWeights != nil {
		d.prefs.CategoryWeights = patch.CategoryWeights
	}
	if patch.LayoutPreference != nil {
		d.prefs.LayoutPreference = *patch.LayoutPreference
	}
	if patch.Theme != nil {
		d.prefs.Theme = *patch.Theme
	}
	if !patch.NotificationSettings.IsZero() {
		d.prefs.NotificationSettings = patch.NotificationSettings
	}
	return d.prefs, nil
}
