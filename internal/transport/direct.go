package transport

import (
	"context"

	"github.com/hollowpoint-games/accountsync/internal/model"
	"github.com/hollowpoint-games/accountsync/internal/pending"
)

// Direct executes remote calls and awaits their results in the caller's
// control flow. It still books every operation through the pending registry
// so the at-most-one-in-flight rule holds identically across both variants.
type Direct struct {
	client   Client
	registry *pending.Registry
}

// Ensure Direct implements the interface
var _ Backend = (*Direct)(nil)

// NewDirect creates a direct backend over an account client
func NewDirect(client Client, registry *pending.Registry) *Direct {
	return &Direct{
		client:   client,
		registry: registry,
	}
}

// Execute runs the operation and waits for its completion.
func (d *Direct) Execute(ctx context.Context, kind model.OpKind, payload model.RequestPayload) (*model.CompletionPayload, error) {
	fut, err := d.Dispatch(ctx, kind, payload)
	if err != nil {
		return nil, err
	}
	return fut.Await(ctx)
}

// Dispatch starts the remote call on its own goroutine and resolves the
// registry slot when it returns.
func (d *Direct) Dispatch(ctx context.Context, kind model.OpKind, payload model.RequestPayload) (*pending.Future, error) {
	if !d.Supports(kind) {
		return nil, model.ErrUnsupportedOperation
	}

	fut, err := d.registry.Begin(kind)
	if err != nil {
		return nil, err
	}

	go func() {
		result := call(ctx, d.client, kind, payload)
		d.registry.Resolve(kind, result)
	}()

	return fut, nil
}

// Cancel fails the pending slot for the kind, if any. The in-flight call's
// eventual completion finds no slot and is dropped with a warning.
func (d *Direct) Cancel(kind model.OpKind, err error) bool {
	return d.registry.Fail(kind, err)
}

// Supports reports the operation kinds the direct path can serve. Provider
// sign-in needs a host environment and fails fast here.
func (d *Direct) Supports(kind model.OpKind) bool {
	return kind != model.OpProviderSignIn
}
