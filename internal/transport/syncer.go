package transport

import (
	"context"

	"github.com/hollowpoint-games/accountsync/internal/model"
)

// BackendSyncer adapts a Backend into the profile store's remote sync
// surface, so profile fetches and pushes cross whichever transport variant
// is active and inherit its in-flight bookkeeping.
type BackendSyncer struct {
	backend Backend
}

// NewBackendSyncer creates a syncer over a backend
func NewBackendSyncer(backend Backend) *BackendSyncer {
	return &BackendSyncer{backend: backend}
}

// FetchProfile fetches the remote profile record through the backend.
func (s *BackendSyncer) FetchProfile(ctx context.Context, accessToken string, id model.UserID) (*model.PlayerProfile, error) {
	res, err := s.backend.Execute(ctx, model.OpProfileFetch, model.RequestPayload{
		AccessToken: accessToken,
		UserID:      id,
	})
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Profile, nil
}

// PushProfile writes the full profile through the backend and returns the
// stored record.
func (s *BackendSyncer) PushProfile(ctx context.Context, accessToken string, p *model.PlayerProfile) (*model.PlayerProfile, error) {
	res, err := s.backend.Execute(ctx, model.OpProfilePush, model.RequestPayload{
		AccessToken: accessToken,
		Profile:     p,
	})
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Profile, nil
}
