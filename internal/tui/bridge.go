package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/briefdeck/briefdeck/internal/store"
)

// stateMsg carries a store snapshot into the bubbletea event loop.
type stateMsg struct {
	state store.State
}

// Bridge forwards store snapshots to the program as messages. It holds at
// most one pending snapshot; a newer one replaces it, so a slow UI only
// ever sees the latest state.
type Bridge struct {
	slot        chan store.State
	done        chan struct{}
	unsubscribe func()
	once        sync.Once
}

// NewBridge subscribes to s. Close must be called to release the
// subscription.
func NewBridge(s *store.Store) *Bridge {
	b := &Bridge{
		slot: make(chan store.State, 1),
		done: make(chan struct{}),
	}
	b.unsubscribe = s.Subscribe(b.offer)
	return b
}

// offer stores st as the pending snapshot. Store listeners are called one
// at a time, so there is a single producer.
func (b *Bridge) offer(st store.State) {
	select {
	case b.slot <- st:
		return
	default:
	}
	select {
	case <-b.slot:
	default:
	}
	select {
	case b.slot <- st:
	default:
	}
}

// Wait returns a command that delivers the next snapshot, or nothing once
// the bridge is closed.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case st := <-b.slot:
			return stateMsg{state: st}
		case <-b.done:
			return nil
		}
	}
}

// Close unsubscribes from the store and releases pending waits. It is safe
// to call more than once.
func (b *Bridge) Close() {
	b.once.Do(func() {
		b.unsubscribe()
		close(b.done)
	})
}
