package transport

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hollowpoint-games/accountsync/internal/model"
	"github.com/hollowpoint-games/accountsync/internal/pending"
)

// Host is the embedding environment a bridged backend issues one-way
// requests into. Send must not block on the operation's outcome; the host
// reports the outcome later through the backend's Complete entry point, on
// whatever call stack it likes.
type Host interface {
	Send(kind model.OpKind, payload model.RequestPayload) error
}

// BridgedConfig holds configuration for the bridged backend
type BridgedConfig struct {
	// Timeout is how long Execute waits for a host completion before the
	// operation resolves to a timeout and its slot is cleared.
	Timeout time.Duration
}

// DefaultBridgedConfig returns default bridged backend configuration
func DefaultBridgedConfig() BridgedConfig {
	return BridgedConfig{
		Timeout: 10 * time.Second,
	}
}

// Bridged executes operations across an embedding boundary that cannot be
// awaited in the caller's control flow. Each Execute registers a future,
// fires a one-way request at the host, and parks on the future until the
// host's completion callback resolves it.
type Bridged struct {
	host     Host
	registry *pending.Registry
	logger   *slog.Logger
	cfg      BridgedConfig
}

// Ensure Bridged implements the interface
var _ Backend = (*Bridged)(nil)

// NewBridged creates a bridged backend over a host channel
func NewBridged(host Host, registry *pending.Registry, logger *slog.Logger, cfg BridgedConfig) *Bridged {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultBridgedConfig().Timeout
	}
	return &Bridged{
		host:     host,
		registry: registry,
		logger:   logger,
		cfg:      cfg,
	}
}

// Execute runs the operation and waits for the host completion, up to the
// configured timeout. On timeout the slot is cleared so a completion that
// arrives afterwards is dropped rather than delivered to nobody.
func (b *Bridged) Execute(ctx context.Context, kind model.OpKind, payload model.RequestPayload) (*model.CompletionPayload, error) {
	fut, err := b.Dispatch(ctx, kind, payload)
	if err != nil {
		return nil, err
	}

	result, err := fut.AwaitTimeout(b.cfg.Timeout)
	if err != nil {
		// Clear the slot; if the host won the race and already resolved
		// it, take the resolved result instead.
		if !b.registry.Fail(kind, err) && fut.Complete() {
			return fut.Await(ctx)
		}
		b.logger.Warn("bridged operation timed out",
			slog.String("op_kind", string(kind)),
			slog.Duration("timeout", b.cfg.Timeout))
		return nil, err
	}
	return result, nil
}

// Dispatch registers the slot and fires the one-way host request.
func (b *Bridged) Dispatch(_ context.Context, kind model.OpKind, payload model.RequestPayload) (*pending.Future, error) {
	fut, err := b.registry.Begin(kind)
	if err != nil {
		return nil, err
	}

	if err := b.host.Send(kind, payload); err != nil {
		wrapped := fmt.Errorf("%w: host send failed: %v", model.ErrTransport, err)
		b.registry.Fail(kind, wrapped)
		// The future carries the same error; callers that already hold it
		// see a resolved failure rather than a hang.
		return nil, wrapped
	}

	return fut, nil
}

// Cancel fails the pending slot for the kind, if any. A host completion
// arriving afterwards finds no slot and is dropped with a warning.
func (b *Bridged) Cancel(kind model.OpKind, err error) bool {
	return b.registry.Fail(kind, err)
}

// Complete is the host-invoked completion entry point. It may be called from
// a call stack unrelated to the one that started the operation; the registry
// is the sole synchronization surface between the two. Completions for
// unknown or already-cleared slots are dropped with a logged warning.
func (b *Bridged) Complete(kind model.OpKind, payload *model.CompletionPayload) {
	b.registry.Resolve(kind, payload)
}

// Supports reports true for every operation kind; the host environment is
// the only path that can serve provider sign-in.
func (b *Bridged) Supports(model.OpKind) bool {
	return true
}
