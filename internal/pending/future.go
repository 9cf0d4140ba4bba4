package pending

import (
	"context"
	"sync"
	"time"

	"github.com/hollowpoint-games/accountsync/internal/model"
)

// Future represents the eventual result of an account operation. The slot is
// fulfilled at most once; all fields are written before done is closed, so
// an awaiting caller never observes a partially filled result.
type Future struct {
	kind model.OpKind

	once    sync.Once
	done    chan struct{}
	payload *model.CompletionPayload
	err     error
}

func newFuture(kind model.OpKind) *Future {
	return &Future{
		kind: kind,
		done: make(chan struct{}),
	}
}

// Kind returns the operation kind this future belongs to.
func (f *Future) Kind() model.OpKind {
	return f.kind
}

// fulfill resolves the future exactly once.
func (f *Future) fulfill(payload *model.CompletionPayload, err error) {
	f.once.Do(func() {
		f.payload = payload
		f.err = err
		close(f.done)
	})
}

// Await blocks until the operation completes or the context is cancelled.
func (f *Future) Await(ctx context.Context) (*model.CompletionPayload, error) {
	select {
	case <-f.done:
		return f.payload, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AwaitTimeout blocks until the operation completes or the timeout elapses,
// in which case it returns model.ErrTimeout. The future itself is not
// resolved on timeout; clearing the slot is the registry's job.
func (f *Future) AwaitTimeout(d time.Duration) (*model.CompletionPayload, error) {
	select {
	case <-f.done:
		return f.payload, f.err
	case <-time.After(d):
		return nil, model.ErrTimeout
	}
}

// Done returns a channel closed when the operation completes.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Complete checks if the operation has completed without blocking.
func (f *Future) Complete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
