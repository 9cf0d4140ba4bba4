package transport

import (
	"context"

	"github.com/hollowpoint-games/accountsync/internal/model"
	"github.com/hollowpoint-games/accountsync/internal/pending"
	"github.com/hollowpoint-games/accountsync/internal/remote"
)

// Client is the account service surface the backends need. *remote.Client
// satisfies it; tests substitute fakes.
type Client interface {
	Register(ctx context.Context, email, password, username string) (*remote.AuthResult, error)
	Login(ctx context.Context, email, password string) (*remote.AuthResult, error)
	FetchSession(ctx context.Context, accessToken string) (*remote.AuthResult, error)
	FetchProfile(ctx context.Context, accessToken string, id model.UserID) (*model.PlayerProfile, error)
	PushProfile(ctx context.Context, accessToken string, p *model.PlayerProfile) (*model.PlayerProfile, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Ensure the HTTP client satisfies the interface
var _ Client = (*remote.Client)(nil)

type authResult = remote.AuthResult

// Backend executes account operations against the remote service. The two
// variants give callers an identical asynchronous contract: Direct awaits
// the remote call in the caller's control flow, Bridged issues a one-way
// request into a host environment and completes via an out-of-band callback.
type Backend interface {
	// Execute runs the operation and blocks until its completion arrives.
	Execute(ctx context.Context, kind model.OpKind, payload model.RequestPayload) (*model.CompletionPayload, error)

	// Dispatch starts the operation and returns the pending future without
	// waiting. Used by restore polling, which watches the future alongside
	// the profile store instead of blocking on it.
	Dispatch(ctx context.Context, kind model.OpKind, payload model.RequestPayload) (*pending.Future, error)

	// Cancel resolves a dispatched operation with the error and clears its
	// slot, so an abandoned future cannot block later operations of the same
	// kind and a late completion is dropped rather than delivered. Reports
	// whether a slot was still pending.
	Cancel(kind model.OpKind, err error) bool

	// Supports reports whether the backend can execute the operation kind.
	Supports(kind model.OpKind) bool
}

// call routes a request payload to the matching client method and wraps the
// outcome as a completion payload. Shared by the direct backend and the
// loopback host, which differ only in which call stack awaits the result.
func call(ctx context.Context, client Client, kind model.OpKind, payload model.RequestPayload) *model.CompletionPayload {
	switch kind {
	case model.OpRegister:
		res, err := client.Register(ctx, payload.Email, payload.Password, payload.Username)
		return completionFromAuth(res, err)
	case model.OpLogin, model.OpProviderSignIn:
		res, err := client.Login(ctx, payload.Email, payload.Password)
		return completionFromAuth(res, err)
	case model.OpSessionProbe:
		res, err := client.FetchSession(ctx, payload.AccessToken)
		return completionFromAuth(res, err)
	case model.OpSignOut:
		if err := client.SignOut(ctx, payload.AccessToken); err != nil {
			return model.FailurePayload(err)
		}
		return model.SuccessPayload(nil, nil)
	case model.OpProfileFetch:
		profile, err := client.FetchProfile(ctx, payload.AccessToken, payload.UserID)
		if err != nil {
			return model.FailurePayload(err)
		}
		return model.SuccessPayload(nil, profile)
	case model.OpProfilePush:
		profile, err := client.PushProfile(ctx, payload.AccessToken, payload.Profile)
		if err != nil {
			return model.FailurePayload(err)
		}
		return model.SuccessPayload(nil, profile)
	default:
		return model.FailurePayload(model.ErrUnsupportedOperation)
	}
}

func completionFromAuth(res *authResult, err error) *model.CompletionPayload {
	if err != nil {
		return model.FailurePayload(err)
	}
	session := res.Session
	return model.SuccessPayload(&session, res.Profile)
}
