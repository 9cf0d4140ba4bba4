package transport

import (
	"context"
	"sync"
	"time"

	"github.com/hollowpoint-games/accountsync/internal/model"
	"github.com/hollowpoint-games/accountsync/internal/remote"
)

// fakeClient is a scriptable account client for backend tests.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	authResult *remote.AuthResult
	profile    *model.PlayerProfile
	err        error

	// delay stalls each call, for timeout tests
	delay time.Duration
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		authResult: &remote.AuthResult{
			Session: model.Session{
				UserID:       "u_fake",
				AccessToken:  "access-token",
				RefreshToken: "refresh-token",
			},
			Profile: &model.PlayerProfile{
				UserID:            "u_fake",
				Email:             "fake@example.com",
				DisplayName:       "Fake",
				LevelsUnlocked:    model.DefaultLevelsUnlocked,
				UnlockedCosmetics: []string{},
			},
		},
		profile: &model.PlayerProfile{
			UserID:            "u_fake",
			DisplayName:       "Fake",
			LevelsUnlocked:    model.DefaultLevelsUnlocked,
			UnlockedCosmetics: []string{},
		},
	}
}

func (c *fakeClient) record(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, name)
}

func (c *fakeClient) callNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *fakeClient) stall() {
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
}

func (c *fakeClient) Register(context.Context, string, string, string) (*remote.AuthResult, error) {
	c.record("register")
	c.stall()
	return c.authResult, c.err
}

func (c *fakeClient) Login(context.Context, string, string) (*remote.AuthResult, error) {
	c.record("login")
	c.stall()
	return c.authResult, c.err
}

func (c *fakeClient) FetchSession(context.Context, string) (*remote.AuthResult, error) {
	c.record("fetch_session")
	c.stall()
	return c.authResult, c.err
}

func (c *fakeClient) FetchProfile(context.Context, string, model.UserID) (*model.PlayerProfile, error) {
	c.record("fetch_profile")
	c.stall()
	return c.profile, c.err
}

func (c *fakeClient) PushProfile(_ context.Context, _ string, p *model.PlayerProfile) (*model.PlayerProfile, error) {
	c.record("push_profile")
	c.stall()
	if c.err != nil {
		return nil, c.err
	}
	return p.Clone(), nil
}

func (c *fakeClient) SignOut(context.Context, string) error {
	c.record("sign_out")
	c.stall()
	return c.err
}

// fakeHost captures one-way sends without serving them, so tests control
// exactly when and whether a completion arrives.
type fakeHost struct {
	mu      sync.Mutex
	sends   []model.OpKind
	sendErr error
}

func (h *fakeHost) Send(kind model.OpKind, _ model.RequestPayload) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sendErr != nil {
		return h.sendErr
	}
	h.sends = append(h.sends, kind)
	return nil
}

func (h *fakeHost) sent() []model.OpKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]model.OpKind(nil), h.sends...)
}
