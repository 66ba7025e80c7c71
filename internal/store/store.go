// Package store holds the client's shared content state: emails,
// categories and analyzed content, each with its own fetch lifecycle.
// A Store is an explicit instance; construct one per process or per test.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/briefdeck/briefdeck/internal/model"
)

// Gateway is the subset of the remote client the store needs.
type Gateway interface {
	ListEmails(ctx context.Context, filter model.EmailFilter) ([]model.Email, error)
	GetEmail(ctx context.Context, id string) (*model.Email, error)
	AnalyzeEmail(ctx context.Context, id string) (model.Blob, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, in model.CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ListContent(ctx context.Context) ([]model.AnalyzedContent, error)
}

// RetryPolicy bounds retries of failed fetches. Only network failures are
// retried; mutations never are.
type RetryPolicy struct {
	MaxRetries      int           // 0 disables retry
	InitialInterval time.Duration // First delay; 0 means 500ms
	MaxInterval     time.Duration // Delay cap; 0 means 10s
}

// Options configures a Store.
type Options struct {
	Retry       RetryPolicy
	EmailFilter model.EmailFilter // Applied to every email fetch
	Logger      *slog.Logger
	Now         func() time.Time
}

// Listener receives each published snapshot.
type Listener func(State)

type subscriber struct {
	id int
	fn Listener
}

// Store is the state container. All methods are safe for concurrent use.
type Store struct {
	gw     Gateway
	opts   Options
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	state  State
	gens   [numCollections]generation
	subs   []subscriber
	nextID int

	// verified holds email IDs confirmed by a lookup although not on the
	// loaded page.
	verified map[string]struct{}

	// notifyMu serializes publication so listeners observe snapshots in
	// version order.
	notifyMu sync.Mutex
}

// New creates a store over gw with an empty state.
func New(gw Gateway, opts Options) *Store {
	s := &Store{
		gw:       gw,
		opts:     opts,
		logger:   opts.Logger,
		now:      opts.Now,
		verified: make(map[string]struct{}),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Get returns the current snapshot.
func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to receive every published snapshot. Listeners run
// synchronously, in registration order, on the goroutine that changed the
// state; they may call Get but must not call mutating methods. The returned
// function removes the listener and is safe to call more than once.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// update applies fn to a copy of the state and publishes the result if fn
// returns true.
func (s *Store) update(fn func(*State) bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	next := s.state
	if !fn(&next) {
		s.mu.Unlock()
		return
	}
	next.Version = s.state.Version + 1
	next.UpdatedAt = s.now()
	s.state = next
	subs := s.subs
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(next)
	}
}

// SelectEmail sets the selected email; nil clears the selection.
func (s *Store) SelectEmail(e *model.Email) {
	s.update(func(st *State) bool {
		if e == nil {
			st.SelectedEmail = nil
			return true
		}
		cp := *e
		st.SelectedEmail = &cp
		return true
	})
}

// Reset returns the store to its initial empty state. Responses to fetches
// issued before the reset are discarded.
func (s *Store) Reset() {
	s.update(func(st *State) bool {
		for i := range s.gens {
			s.gens[i].invalidate()
		}
		*st = State{}
		clear(s.verified)
		return true
	})
}

// ActionKind enumerates Dispatch actions.
type ActionKind int

const (
	ActionFetchEmails ActionKind = iota + 1
	ActionFetchCategories
	ActionFetchContent
	ActionFetchAll
	ActionSelectEmail
	ActionAnalyzeEmail
	ActionReset
)

func (k ActionKind) String() string {
	switch k {
	case ActionFetchEmails:
		return "fetch-emails"
	case ActionFetchCategories:
		return "fetch-categories"
	case ActionFetchContent:
		return "fetch-content"
	case ActionFetchAll:
		return "fetch-all"
	case ActionSelectEmail:
		return "select-email"
	case ActionAnalyzeEmail:
		return "analyze-email"
	case ActionReset:
		return "reset"
	default:
		return fmt.Sprintf("action(%d)", int(k))
	}
}

// Action is a request to change the store.
type Action struct {
	Kind    ActionKind
	Email   *model.Email // ActionSelectEmail
	EmailID string       // ActionAnalyzeEmail
}

// Dispatch performs an action. It blocks for actions that call the backend.
func (s *Store) Dispatch(ctx context.Context, a Action) error {
	switch a.Kind {
	case ActionFetchEmails:
		return s.FetchEmails(ctx)
	case ActionFetchCategories:
		return s.FetchCategories(ctx)
	case ActionFetchContent:
		return s.FetchContent(ctx)
	case ActionFetchAll:
		return s.FetchAll(ctx)
	case ActionSelectEmail:
		s.SelectEmail(a.Email)
		return nil
	case ActionAnalyzeEmail:
		return s.AnalyzeEmail(ctx, a.EmailID)
	case ActionReset:
		s.Reset()
		return nil
	default:
		return fmt.Errorf("unknown action %v", a.Kind)
	}
}
