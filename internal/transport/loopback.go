package transport

import (
	"context"
	"log/slog"

	"github.com/hollowpoint-games/accountsync/internal/model"
)

// Completer receives host completions. Satisfied by *Bridged.
type Completer interface {
	Complete(kind model.OpKind, payload *model.CompletionPayload)
}

// LoopbackHost serves bridged requests by calling the account service on a
// separate goroutine and feeding the result back through the completion
// entry point. It stands in for a real embedding host so the bridged path
// can run end to end against a live server in tests and tooling.
type LoopbackHost struct {
	client    Client
	logger    *slog.Logger
	completer Completer
}

// Ensure LoopbackHost implements the interface
var _ Host = (*LoopbackHost)(nil)

// NewLoopbackHost creates a loopback host over an account client
func NewLoopbackHost(client Client, logger *slog.Logger) *LoopbackHost {
	return &LoopbackHost{
		client: client,
		logger: logger,
	}
}

// Bind attaches the completion sink. Must be called before the first Send;
// the backend and host reference each other, so one side binds late.
func (h *LoopbackHost) Bind(completer Completer) {
	h.completer = completer
}

// Send fires the remote call on its own goroutine and reports the result
// via the completer, mimicking a host callback from an unrelated stack.
func (h *LoopbackHost) Send(kind model.OpKind, payload model.RequestPayload) error {
	if h.completer == nil {
		h.logger.Error("loopback host used before Bind", slog.String("op_kind", string(kind)))
		return model.ErrTransport
	}

	go func() {
		result := call(context.Background(), h.client, kind, payload)
		h.completer.Complete(kind, result)
	}()
	return nil
}
