// Package live provides subscribe/notify access to whole collections.
//
// A Feed loads the full current state and pushes it to every subscriber, once when it
// subscribes and again each time Notify is called after a committed change.
//
// Loads and deliveries on one feed are serialized: subscribers observe states in commit
// order, and a change committed while a subscriber is registering is never missed.
// Callbacks must therefore not call Subscribe or Notify on the feed that invoked them.
package live

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// LoadFunc returns the full current state behind a feed.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Feed is a live view of one loadable state, usually a collection.
type Feed[T any] struct {
	name   string
	load   LoadFunc[T]
	logger *zap.Logger

	// notifyMu is held across load and delivery.
	notifyMu sync.Mutex

	mu     sync.Mutex
	nextID int
	subs   map[int]func(T)
}

// NewFeed creates a feed with the given name.
func NewFeed[T any](name string, load LoadFunc[T], logger *zap.Logger) *Feed[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed[T]{
		name:   name,
		load:   load,
		logger: logger.With(zap.String("feed", name)),
		subs:   make(map[int]func(T)),
	}
}

// Name returns the feed name.
func (f *Feed[T]) Name() string {
	return f.name
}

// Load returns the current state without notifying anyone.
func (f *Feed[T]) Load(ctx context.Context) (T, error) {
	return f.load(ctx)
}

// Subscribe registers onChange and immediately delivers the current state to it.
// The returned function releases the subscription; calling it more than once is a no-op.
// If the initial load fails, nothing is registered.
func (f *Feed[T]) Subscribe(ctx context.Context, onChange func(T)) (func(), error) {
	f.notifyMu.Lock()
	defer f.notifyMu.Unlock()

	state, err := f.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", f.name, err)
	}

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = onChange
	f.mu.Unlock()

	onChange(state)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
	return unsubscribe, nil
}

// Notify reloads the state and delivers it to every subscriber.
// A load failure is logged and leaves subscribers with the last delivered state.
func (f *Feed[T]) Notify(ctx context.Context) {
	f.notifyMu.Lock()
	defer f.notifyMu.Unlock()

	listeners := f.listeners()
	if len(listeners) == 0 {
		return
	}

	state, err := f.load(ctx)
	if err != nil {
		f.logger.Warn("failed to reload feed", zap.Error(err))
		return
	}

	for _, fn := range listeners {
		fn(state)
	}
}

// Subscribers returns the number of active subscriptions.
func (f *Feed[T]) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Feed[T]) listeners() []func(T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]func(T), 0, len(f.subs))
	for _, fn := range f.subs {
		out = append(out, fn)
	}
	return out
}
