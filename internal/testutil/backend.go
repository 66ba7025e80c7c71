package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/briefdeck/briefdeck/internal/api"
)

// BackendNow is the mock backend's clock in tests.
var BackendNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// Backend is a seeded mock backend served over httptest.
type Backend struct {
	URL  string
	Data *api.Dataset
}

// NewBackend starts the mock backend with the demo dataset for seed and
// stops it when the test ends. apiKey may be empty to disable auth.
func NewBackend(t testing.TB, seed uint64, apiKey string) *Backend {
	t.Helper()
	data := api.NewDataset().WithClock(func() time.Time { return BackendNow })
	MustNoErr(t, api.Seed(data, seed), "seed dataset")

	srv := api.NewServer(api.Options{APIKey: apiKey}, data, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &Backend{URL: ts.URL, Data: data}
}
