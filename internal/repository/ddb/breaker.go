package ddb

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"talkboard-backend/internal/repository"
)

// BreakerConfig tunes the circuit breaker wrapped around a store.
type BreakerConfig struct {
	Name                string
	ConsecutiveFailures uint32        // Failures before the circuit opens
	OpenTimeout         time.Duration // Time in open state before probing
	HalfOpenMaxCalls    uint32        // Probe budget in half-open state
}

// DefaultBreakerConfig returns conservative breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                "ddb-store",
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
		HalfOpenMaxCalls:    3,
	}
}

// BreakerStore decorates a Store with a circuit breaker for callers that
// prefer failing fast during a sustained store outage over queueing retries.
// Only infrastructure failures count against the circuit; terminal kinds
// like a failed condition check are successful interactions with the store.
type BreakerStore struct {
	store *Store
	cb    *gobreaker.CircuitBreaker
}

// WithBreaker wraps a store in a circuit breaker.
func WithBreaker(store *Store, config BreakerConfig, logger *zap.Logger) *BreakerStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("breaker")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.HalfOpenMaxCalls,
		Timeout:     config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			_, retryable := repository.Classify(err)
			return !retryable
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &BreakerStore{store: store, cb: cb}
}

func (b *BreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	return b.cb.Execute(fn)
}

// Get is Store.Get behind the circuit.
func (b *BreakerStore) Get(ctx context.Context, key repository.Key, consistent bool) (*repository.Item, error) {
	out, err := b.execute(func() (interface{}, error) {
		return b.store.Get(ctx, key, consistent)
	})
	if err != nil {
		return nil, err
	}
	return out.(*repository.Item), nil
}

// Put is Store.Put behind the circuit.
func (b *BreakerStore) Put(ctx context.Context, item *repository.Item, condition string) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.store.Put(ctx, item, condition)
	})
	return err
}

// Update is Store.Update behind the circuit.
func (b *BreakerStore) Update(ctx context.Context, key repository.Key, spec repository.UpdateSpec) (*repository.Item, error) {
	out, err := b.execute(func() (interface{}, error) {
		return b.store.Update(ctx, key, spec)
	})
	if err != nil {
		return nil, err
	}
	return out.(*repository.Item), nil
}

// Delete is Store.Delete behind the circuit.
func (b *BreakerStore) Delete(ctx context.Context, key repository.Key, condition string) (*repository.Item, error) {
	out, err := b.execute(func() (interface{}, error) {
		return b.store.Delete(ctx, key, condition)
	})
	if err != nil {
		return nil, err
	}
	return out.(*repository.Item), nil
}

// Query is Store.Query behind the circuit.
func (b *BreakerStore) Query(ctx context.Context, spec repository.QuerySpec) (*QueryResult, error) {
	out, err := b.execute(func() (interface{}, error) {
		return b.store.Query(ctx, spec)
	})
	if err != nil {
		return nil, err
	}
	return out.(*QueryResult), nil
}

// Scan is Store.Scan behind the circuit.
func (b *BreakerStore) Scan(ctx context.Context, spec repository.ScanSpec) (*QueryResult, error) {
	out, err := b.execute(func() (interface{}, error) {
		return b.store.Scan(ctx, spec)
	})
	if err != nil {
		return nil, err
	}
	return out.(*QueryResult), nil
}

// BatchGet is Store.BatchGet behind the circuit.
func (b *BreakerStore) BatchGet(ctx context.Context, keys []repository.Key, consistent bool) ([]repository.Item, error) {
	out, err := b.execute(func() (interface{}, error) {
		return b.store.BatchGet(ctx, keys, consistent)
	})
	if err != nil {
		return nil, err
	}
	return out.([]repository.Item), nil
}

// BatchWrite is Store.BatchWrite behind the circuit.
func (b *BreakerStore) BatchWrite(ctx context.Context, puts []repository.Item, deletes []repository.Key) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.store.BatchWrite(ctx, puts, deletes)
	})
	return err
}

// TransactWrite is Store.TransactWrite behind the circuit.
func (b *BreakerStore) TransactWrite(ctx context.Context, items []repository.TransactionItem) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.store.TransactWrite(ctx, items)
	})
	return err
}

// TransactGet is Store.TransactGet behind the circuit.
func (b *BreakerStore) TransactGet(ctx context.Context, keys []repository.Key) ([]repository.Item, error) {
	out, err := b.execute(func() (interface{}, error) {
		return b.store.TransactGet(ctx, keys)
	})
	if err != nil {
		return nil, err
	}
	return out.([]repository.Item), nil
}

// State reports the circuit's current state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}
