package factory

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/hollowpoint-games/accountsync/internal/cache"
	"github.com/hollowpoint-games/accountsync/internal/config"
	"github.com/hollowpoint-games/accountsync/internal/dependencies/mocks"
	"github.com/hollowpoint-games/accountsync/internal/model"
	"github.com/hollowpoint-games/accountsync/internal/remote/server"
	"github.com/hollowpoint-games/accountsync/internal/testutil"
)

// FactorySuite runs the assembled client against a live instance of the
// account service, covering the full sign-in, progression, logout and
// restore lifecycle end to end.
type FactorySuite struct {
	suite.Suite
	srv *httptest.Server
	app *TestApp
	ctx context.Context
}

func TestFactorySuite(t *testing.T) {
	suite.Run(t, new(FactorySuite))
}

func (s *FactorySuite) SetupTest() {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	svc := server.New(server.NewStore(), clk, testutil.NopLogger(), server.DefaultConfig())
	s.srv = httptest.NewServer(svc.Router())

	var err error
	s.app, err = NewTestApp(s.srv.URL)
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func (s *FactorySuite) TearDownTest() {
	s.srv.Close()
}

func (s *FactorySuite) register() *model.Session {
	session, err := s.app.Sessions.Register(s.ctx, model.Credentials{
		Email:           "alice@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		Username:        "Alice",
	})
	s.Require().NoError(err)
	return session
}

func (s *FactorySuite) TestRegisteredPlayerLifecycle() {
	// Register and make some progress
	s.register()
	s.Require().NoError(s.app.Profiles.AdvanceLevel(s.ctx))
	s.Require().NoError(s.app.Profiles.UnlockCosmetic(s.ctx, "hat_red"))
	s.Require().NoError(s.app.Profiles.GrantMoney(s.ctx, 300))

	p := s.app.Profiles.Current()
	s.Equal(2, p.LevelsUnlocked)
	s.Equal(300, p.Money)
	s.True(p.HasCosmetic("hat_red"))

	// Log out: everything local is gone
	s.app.Sessions.Logout(s.ctx)
	s.Nil(s.app.Sessions.CurrentSession())
	s.Nil(s.app.Profiles.Current())

	// The next restore is suppressed exactly once
	restored, err := s.app.Sessions.RestoreSession(s.ctx)
	s.Require().NoError(err)
	s.Nil(restored)

	// Logging back in recovers the remote progression
	session, err := s.app.Sessions.Login(s.ctx, model.Credentials{
		Email:    "alice@example.com",
		Password: "password123",
	})
	s.Require().NoError(err)
	s.NotNil(session)

	p = s.app.Profiles.Current()
	s.Require().NotNil(p)
	s.Equal(2, p.LevelsUnlocked)
	s.Equal(300, p.Money)
	s.True(p.HasCosmetic("hat_red"))
}

func (s *FactorySuite) TestGuestLifecycleStaysLocal() {
	session, err := s.app.Sessions.LoginAsGuest(s.ctx)
	s.Require().NoError(err)
	s.True(session.IsGuest())

	s.Require().NoError(s.app.Profiles.AdvanceLevel(s.ctx))
	s.Require().NoError(s.app.Profiles.UnlockCosmetic(s.ctx, "hat_blue"))

	p := s.app.Profiles.Current()
	s.Equal(2, p.LevelsUnlocked)
	s.True(p.HasCosmetic("hat_blue"))
	s.True(p.IsGuest)
}

func (s *FactorySuite) TestLoginReplacesGuestProgress() {
	// A guest makes local progress first
	_, err := s.app.Sessions.LoginAsGuest(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.app.Profiles.GrantMoney(s.ctx, 999))
	s.app.Sessions.Logout(s.ctx)

	// A registered login afterwards adopts the remote record wholesale
	s.register()
	p := s.app.Profiles.Current()
	s.Equal(0, p.Money)
	s.False(p.IsGuest)
}

func (s *FactorySuite) TestProviderSignInUnsupportedOnDirect() {
	_, err := s.app.Sessions.SignInWithProvider(s.ctx)
	s.ErrorIs(err, model.ErrUnsupportedOperation)
}

func (s *FactorySuite) TestDirectAppHasNoBridge() {
	s.Nil(s.app.Bridge)
}

func (s *FactorySuite) TestBridgedLoginViaLoopback() {
	s.register()
	s.app.Sessions.Logout(s.ctx)

	bridged, err := NewTestAppWithConfig(config.Config{
		ServerURL:       s.srv.URL,
		Transport:       config.TransportBridged,
		CacheBackend:    config.CacheMemory,
		RestoreAttempts: 5,
		RestoreInterval: 5 * time.Millisecond,
		BridgeTimeout:   2 * time.Second,
	})
	s.Require().NoError(err)
	s.Require().NotNil(bridged.Bridge)

	session, err := bridged.Sessions.Login(s.ctx, model.Credentials{
		Email:    "alice@example.com",
		Password: "password123",
	})
	s.Require().NoError(err)
	s.NotNil(session)
	s.NotEmpty(session.AccessToken)
	s.Equal("Alice", bridged.Profiles.Current().DisplayName)

	// Progression syncs across the bridge too
	s.Require().NoError(bridged.Profiles.AdvanceLevel(s.ctx))
	s.Equal(2, bridged.Profiles.Current().LevelsUnlocked)
}

func (s *FactorySuite) TestRestoreAcrossRestartWithFileCache() {
	dir := s.T().TempDir()
	cfg := config.Config{
		ServerURL:       s.srv.URL,
		Transport:       config.TransportDirect,
		CacheBackend:    config.CacheFile,
		CachePath:       filepath.Join(dir, "cache.json"),
		RestoreAttempts: 5,
		RestoreInterval: 5 * time.Millisecond,
	}

	first, err := NewTestAppWithConfig(cfg)
	s.Require().NoError(err)

	session, err := first.Sessions.Register(s.ctx, model.Credentials{
		Email:           "bob@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		Username:        "Bob",
	})
	s.Require().NoError(err)
	s.Require().NoError(first.Profiles.GrantMoney(s.ctx, 50))

	// "Restart": a second app over the same cache file, with the token the
	// host kept hold of
	second, err := NewTestAppWithConfig(cfg)
	s.Require().NoError(err)
	second.Sessions.SetProbeToken(session.AccessToken)

	restored, err := second.Sessions.RestoreSession(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(restored)
	s.Equal(session.UserID, restored.UserID)
	s.Equal(50, second.Profiles.Current().Money)
}

func (s *FactorySuite) TestRestoreAcrossRestartWithoutToken() {
	dir := s.T().TempDir()
	cfg := config.Config{
		ServerURL:       s.srv.URL,
		Transport:       config.TransportDirect,
		CacheBackend:    config.CacheFile,
		CachePath:       filepath.Join(dir, "cache.json"),
		RestoreAttempts: 3,
		RestoreInterval: 5 * time.Millisecond,
	}

	first, err := NewTestAppWithConfig(cfg)
	s.Require().NoError(err)
	_, err = first.Sessions.Register(s.ctx, model.Credentials{
		Email:           "carol@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		Username:        "Carol",
	})
	s.Require().NoError(err)

	// Without a token the probe cannot authenticate; restore resolves to
	// no-session rather than erroring
	second, err := NewTestAppWithConfig(cfg)
	s.Require().NoError(err)

	restored, err := second.Sessions.RestoreSession(s.ctx)
	s.Require().NoError(err)
	s.Nil(restored)
}

func (s *FactorySuite) TestGuestRestoreAcrossRestart() {
	dir := s.T().TempDir()
	cfg := config.Config{
		ServerURL:       s.srv.URL,
		Transport:       config.TransportDirect,
		CacheBackend:    config.CacheFile,
		CachePath:       filepath.Join(dir, "cache.json"),
		RestoreAttempts: 3,
		RestoreInterval: 5 * time.Millisecond,
	}

	first, err := NewTestAppWithConfig(cfg)
	s.Require().NoError(err)
	guest, err := first.Sessions.LoginAsGuest(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(first.Profiles.GrantMoney(s.ctx, 75))

	second, err := NewTestAppWithConfig(cfg)
	s.Require().NoError(err)

	restored, err := second.Sessions.RestoreSession(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(restored)
	s.Equal(guest.UserID, restored.UserID)
	s.True(restored.IsGuest())
	s.Equal(75, second.Profiles.Current().Money)
}

func (s *FactorySuite) TestUnknownCacheBackendRejected() {
	_, err := New(config.Config{
		ServerURL:    s.srv.URL,
		Transport:    config.TransportDirect,
		CacheBackend: "floppy",
	}, testutil.NopLogger())
	s.Error(err)
}

func (s *FactorySuite) TestDefaultCacheKeysWrittenOnRegister() {
	s.register()

	c := s.app.Cache
	s.True(c.GetBool(cache.KeyAuthenticated, false))
	s.Equal("Alice", c.GetString(cache.KeyUsername, ""))
	s.Equal("alice@example.com", c.GetString(cache.KeyEmail, ""))
}
