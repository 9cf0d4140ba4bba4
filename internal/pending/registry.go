package pending

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hollowpoint-games/accountsync/internal/dependencies/clock"
	"github.com/hollowpoint-games/accountsync/internal/model"
)

// Registry tracks at most one outstanding asynchronous operation per
// operation kind. It is the sole synchronization surface between the call
// stack that starts a bridged operation and the host call stack that later
// completes it.
type Registry struct {
	clock  clock.Clock
	logger *slog.Logger

	mu    sync.Mutex
	slots map[model.OpKind]*slot
}

type slot struct {
	future    *Future
	startedAt time.Time
}

// NewRegistry creates a new pending-operation registry
func NewRegistry(clk clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		clock:  clk,
		logger: logger,
		slots:  make(map[model.OpKind]*slot),
	}
}

// Begin creates the slot for the given kind and returns its future.
//
// A second Begin for a kind whose slot is still unresolved is rejected with
// model.ErrOperationInFlight rather than overwriting the slot: overwriting
// would orphan the first caller's future forever.
func (r *Registry) Begin(kind model.OpKind) (*Future, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.slots[kind]; exists {
		return nil, model.ErrOperationInFlight
	}

	fut := newFuture(kind)
	r.slots[kind] = &slot{
		future:    fut,
		startedAt: r.clock.Now(),
	}
	return fut, nil
}

// Resolve fulfills the current slot for the kind and clears it. Returns
// false if no slot exists, in which case the result is dropped with a
// logged warning; a late host completion after a timeout lands here.
func (r *Registry) Resolve(kind model.OpKind, payload *model.CompletionPayload) bool {
	fut := r.take(kind)
	if fut == nil {
		r.logger.Warn("dropping completion with no pending operation",
			slog.String("op_kind", string(kind)))
		return false
	}
	fut.fulfill(payload, nil)
	return true
}

// Fail resolves the current slot for the kind with an error and clears it.
// Returns false if no slot exists.
func (r *Registry) Fail(kind model.OpKind, err error) bool {
	fut := r.take(kind)
	if fut == nil {
		return false
	}
	fut.fulfill(nil, err)
	return true
}

// Pending reports whether an operation of the given kind is in flight.
func (r *Registry) Pending(kind model.OpKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.slots[kind]
	return exists
}

// StartedAt returns when the pending operation of the given kind began, or
// false if none is in flight.
func (r *Registry) StartedAt(kind model.OpKind) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, exists := r.slots[kind]
	if !exists {
		return time.Time{}, false
	}
	return s.startedAt, true
}

// take removes and returns the slot's future, or nil if absent. Removal and
// fulfilment are separate steps; fulfil happens outside the lock but before
// any awaiting caller can observe the result, because observation waits on
// the future's own done channel.
func (r *Registry) take(kind model.OpKind) *Future {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, exists := r.slots[kind]
	if !exists {
		return nil
	}
	delete(r.slots, kind)
	return s.future
}
