package tui

import (
	"io"
	"log/slog"
	"testing"

	"github.com/briefdeck/briefdeck/internal/model"
	"github.com/briefdeck/briefdeck/internal/store"
)

func newTestStore() *store.Store {
	return store.New(&fakeGateway{}, store.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func TestBridgeDeliversLatest(t *testing.T) {
	s := newTestStore()
	b := NewBridge(s)
	defer b.Close()

	for _, id := range []string{"e1", "e2", "e3"} {
		s.SelectEmail(&model.Email{ID: id})
	}

	msg, ok := b.Wait()().(stateMsg)
	if !ok {
		t.Fatal("Wait did not deliver a stateMsg")
	}
	if got := msg.state.SelectedEmail; got == nil || got.ID != "e3" {
		t.Errorf("SelectedEmail = %+v, want e3", got)
	}
	if msg.state.Version != s.Get().Version {
		t.Errorf("Version = %d, want %d", msg.state.Version, s.Get().Version)
	}
}

func TestBridgeClose(t *testing.T) {
	s := newTestStore()
	b := NewBridge(s)

	b.Close()
	b.Close()

	s.SelectEmail(&model.Email{ID: "e1"})
	if msg := b.Wait()(); msg != nil {
		t.Errorf("Wait after Close delivered %T", msg)
	}
}

func TestBridgeCloseReleasesWait(t *testing.T) {
	b := NewBridge(newTestStore())
	done := make(chan any)
	go func() { done <- b.Wait()() }()
	b.Close()
	if msg := <-done; msg != nil {
		t.Errorf("released Wait delivered %T", msg)
	}
}
