package testutil

import (
	"strings"
	"testing"
)

// MustNoErr fails the test immediately if err is non-nil.
// Use this for setup operations where failure means the test cannot proceed.
func MustNoErr(t testing.TB, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

// AssertIDs compares the IDs of items, in order, against want.
func AssertIDs[T any](t testing.TB, items []T, id func(T) string, want ...string) {
	t.Helper()
	got := make([]string, len(items))
	for i, it := range items {
		got[i] = id(it)
	}
	if len(got) != len(want) {
		t.Errorf("got %d items %q, want %q", len(got), got, want)
		return
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("at index %d: got %q, want %q (all: %q)", i, got[i], want[i], got)
		}
	}
}

// AssertContainsAll asserts that got contains every substring in subs.
func AssertContainsAll(t testing.TB, got string, subs ...string) {
	t.Helper()
	for _, sub := range subs {
		if !strings.Contains(got, sub) {
			t.Errorf("output should contain %q, got:\n%s", sub, got)
		}
	}
}
