// Package testutil provides test helpers for briefdeck tests.
//
// The package is organized into focused files:
//   - assert.go: assertion helpers (MustNoErr, AssertIDs, etc.)
//   - builders.go: email and analyzed content builders
//   - backend.go: a seeded mock backend on an httptest server
package testutil
