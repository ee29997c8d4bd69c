// Package resilient wraps a snapshot backend in a circuit breaker so a dead
// database fails fast instead of holding every request for the full store
// timeout.
package resilient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/landslide-risk-engine/internal/store"
	"github.com/sony/gobreaker/v2"
)

// Settings tunes the breaker. Zero values take the defaults below.
type Settings struct {
	// FailureThreshold is the number of consecutive failures that opens the
	// breaker. Default 5.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing. Default 30s.
	OpenTimeout time.Duration
	// OnStateChange, when set, is called after each transition.
	OnStateChange func(name string, from, to gobreaker.State)
}

type result struct {
	data  []byte
	found bool
}

// BlobStore is a store.BlobStore guarded by a circuit breaker.
type BlobStore struct {
	next    store.BlobStore
	breaker *gobreaker.CircuitBreaker[result]
}

// New wraps next in a breaker called name.
func New(next store.BlobStore, name string, settings Settings, logger *slog.Logger) *BlobStore {
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	openTimeout := settings.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[result](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A caller giving up is not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("snapshot backend breaker changed state",
				"breaker", name, "from", from.String(), "to", to.String())
			if settings.OnStateChange != nil {
				settings.OnStateChange(name, from, to)
			}
		},
	})

	return &BlobStore{next: next, breaker: cb}
}

func (b *BlobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	r, err := b.breaker.Execute(func() (result, error) {
		data, found, err := b.next.Get(ctx, key)
		return result{data: data, found: found}, err
	})
	if err != nil {
		return nil, false, err
	}
	return r.data, r.found, nil
}

func (b *BlobStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := b.breaker.Execute(func() (result, error) {
		return result{}, b.next.Put(ctx, key, data)
	})
	return err
}

// State reports the breaker state.
func (b *BlobStore) State() gobreaker.State {
	return b.breaker.State()
}

// Close closes the wrapped backend when it is an io.Closer.
func (b *BlobStore) Close() error {
	if c, ok := b.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
