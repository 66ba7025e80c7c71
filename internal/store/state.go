package store

import (
	"time"

	"github.com/briefdeck/briefdeck/internal/model"
)

// Status is the lifecycle of one collection in the store.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "error"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of the store. A new State replaces the old
// one on every change; slices are never modified after publication, so
// readers must treat them as read-only.
type State struct {
	Emails        []model.Email
	Categories    []model.Category
	Content       []model.AnalyzedContent
	SelectedEmail *model.Email

	EmailsStatus     Status
	CategoriesStatus Status
	ContentStatus    Status

	Error           string // Last email fetch failure; empty after a success
	CategoriesError string
	ContentError    string
	AnalyzeError    string // Last failed analysis; cleared by the next success

	UpdatedAt time.Time
	Version   uint64 // Incremented on every published change
}

// Loading reports whether any collection has a fetch in flight.
func (s State) Loading() bool {
	return s.EmailsStatus == StatusLoading ||
		s.CategoriesStatus == StatusLoading ||
		s.ContentStatus == StatusLoading
}

// Items projects the analyzed content for the feed and layout packages.
func (s State) Items() []model.ContentItem {
	return model.ItemsFromContent(s.Content)
}

// EmailByID returns the email with the given ID, if loaded.
func (s State) EmailByID(id string) (model.Email, bool) {
	for _, e := range s.Emails {
		if e.ID == id {
			return e, true
		}
	}
	return model.Email{}, false
}

// collection names one independently fetched part of the state.
type collection int

const (
	collEmails collection = iota
	collCategories
	collContent
	numCollections
)

func (c collection) String() string {
	switch c {
	case collEmails:
		return "emails"
	case collCategories:
		return "categories"
	case collContent:
		return "content"
	default:
		return "unknown"
	}
}

// setStatus records the outcome of a fetch for c. errMsg is empty on success.
func (s *State) setStatus(c collection, status Status, errMsg string) {
	switch c {
	case collEmails:
		s.EmailsStatus = status
		s.Error = errMsg
	case collCategories:
		s.CategoriesStatus = status
		s.CategoriesError = errMsg
	case collContent:
		s.ContentStatus = status
		s.ContentError = errMsg
	}
}

// generation orders the fetches of one collection. Each fetch takes the
// next issued number; a response is applied only if it is not older than
// the last applied one.
type generation struct {
	issued  uint64
	applied uint64
}

func (g *generation) next() uint64 {
	g.issued++
	return g.issued
}

func (g *generation) accept(gen uint64) bool {
	if gen < g.applied {
		return false
	}
	g.applied = gen
	return true
}

func (g *generation) latest(gen uint64) bool {
	return gen == g.issued
}

// invalidate makes every issued generation stale.
func (g *generation) invalidate() {
	g.applied = g.issued + 1
}
