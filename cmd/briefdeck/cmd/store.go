package cmd

import (
	"github.com/briefdeck/briefdeck/internal/remote"
	"github.com/briefdeck/briefdeck/internal/store"
)

// newStore creates a content store over c with the configured retry policy.
func newStore(c *remote.Client) (*store.Store, error) {
	interval, err := cfg.RetryInterval()
	if err != nil {
		return nil, err
	}
	return store.New(c, store.Options{
		Retry: store.RetryPolicy{
			MaxRetries:      cfg.Retry.MaxRetries,
			InitialInterval: interval,
		},
		Logger: logger,
	}), nil
}
