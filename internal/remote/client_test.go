package remote_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/hollowpoint-games/accountsync/internal/dependencies/mocks"
	"github.com/hollowpoint-games/accountsync/internal/model"
	"github.com/hollowpoint-games/accountsync/internal/remote"
	"github.com/hollowpoint-games/accountsync/internal/remote/server"
	"github.com/hollowpoint-games/accountsync/internal/testutil"
)

// ClientSuite exercises the HTTP client against a live instance of the
// account service, so the wire contract is tested from both ends at once.
type ClientSuite struct {
	suite.Suite
	clock  *mocks.MockClock
	srv    *httptest.Server
	client *remote.Client
	ctx    context.Context
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	svc := server.New(server.NewStore(), s.clock, testutil.NopLogger(), server.DefaultConfig())
	s.srv = httptest.NewServer(svc.Router())
	s.client = remote.NewClient(s.srv.URL)
	s.ctx = context.Background()
}

func (s *ClientSuite) TearDownTest() {
	s.srv.Close()
}

func (s *ClientSuite) register() *remote.AuthResult {
	res, err := s.client.Register(s.ctx, "alice@example.com", "password123", "Alice")
	s.Require().NoError(err)
	return res
}

// Register tests

func (s *ClientSuite) TestRegisterReturnsSessionAndProfile() {
	res := s.register()

	s.NotEmpty(res.Session.UserID)
	s.NotEmpty(res.Session.AccessToken)
	s.NotEmpty(res.Session.RefreshToken)
	s.NotEqual(res.Session.AccessToken, res.Session.RefreshToken)

	s.Equal(res.Session.UserID, res.Profile.UserID)
	s.Equal("alice@example.com", res.Profile.Email)
	s.Equal("Alice", res.Profile.DisplayName)
	s.Equal(model.DefaultLevelsUnlocked, res.Profile.LevelsUnlocked)
	s.Equal(0, res.Profile.Money)
	s.Empty(res.Profile.UnlockedCosmetics)
}

func (s *ClientSuite) TestRegisterDuplicateEmail() {
	s.register()

	_, err := s.client.Register(s.ctx, "alice@example.com", "otherpass", "Alice2")
	s.ErrorIs(err, model.ErrEmailExists)
}

func (s *ClientSuite) TestRegisterEmailCaseInsensitive() {
	s.register()

	_, err := s.client.Register(s.ctx, "ALICE@example.com", "otherpass", "Alice2")
	s.ErrorIs(err, model.ErrEmailExists)
}

func (s *ClientSuite) TestRegisterMissingFields() {
	_, err := s.client.Register(s.ctx, "alice@example.com", "", "Alice")
	s.ErrorIs(err, model.ErrValidation)
}

// Login tests

func (s *ClientSuite) TestLoginReturnsSameAccount() {
	created := s.register()

	res, err := s.client.Login(s.ctx, "alice@example.com", "password123")
	s.Require().NoError(err)
	s.Equal(created.Session.UserID, res.Session.UserID)
	s.Equal("Alice", res.Profile.DisplayName)
}

func (s *ClientSuite) TestLoginWrongPassword() {
	s.register()

	_, err := s.client.Login(s.ctx, "alice@example.com", "wrong")
	s.ErrorIs(err, model.ErrAuth)
}

func (s *ClientSuite) TestLoginUnknownEmail() {
	_, err := s.client.Login(s.ctx, "nobody@example.com", "password123")
	s.ErrorIs(err, model.ErrAuth)
}

// Session probe tests

func (s *ClientSuite) TestFetchSessionWithValidToken() {
	created := s.register()

	res, err := s.client.FetchSession(s.ctx, created.Session.AccessToken)
	s.Require().NoError(err)
	s.Equal(created.Session.UserID, res.Session.UserID)
	s.NotEmpty(res.Session.AccessToken)
}

func (s *ClientSuite) TestFetchSessionWithGarbageToken() {
	_, err := s.client.FetchSession(s.ctx, "not-a-jwt")
	s.ErrorIs(err, model.ErrAuth)
}

func (s *ClientSuite) TestFetchSessionWithEmptyToken() {
	_, err := s.client.FetchSession(s.ctx, "")
	s.ErrorIs(err, model.ErrAuth)
}

func (s *ClientSuite) TestFetchSessionWithExpiredToken() {
	created := s.register()

	s.clock.Advance(2 * time.Hour)
	_, err := s.client.FetchSession(s.ctx, created.Session.AccessToken)
	s.ErrorIs(err, model.ErrAuth)
}

func (s *ClientSuite) TestFetchSessionRejectsRefreshToken() {
	created := s.register()

	_, err := s.client.FetchSession(s.ctx, created.Session.RefreshToken)
	s.ErrorIs(err, model.ErrAuth)
}

// Profile tests

func (s *ClientSuite) TestFetchProfile() {
	created := s.register()

	p, err := s.client.FetchProfile(s.ctx, created.Session.AccessToken, created.Session.UserID)
	s.Require().NoError(err)
	s.Equal(created.Session.UserID, p.UserID)
	s.Equal("Alice", p.DisplayName)
}

func (s *ClientSuite) TestFetchProfileForOtherUser() {
	created := s.register()

	_, err := s.client.FetchProfile(s.ctx, created.Session.AccessToken, "u_someone-else")
	s.ErrorIs(err, model.ErrAuth)
}

func (s *ClientSuite) TestPushProfileStoresProgression() {
	created := s.register()

	p := created.Profile.Clone()
	p.LevelsUnlocked = 5
	p.Money = 300
	p.UnlockedCosmetics = []string{"hat_red"}

	stored, err := s.client.PushProfile(s.ctx, created.Session.AccessToken, p)
	s.Require().NoError(err)
	s.Equal(5, stored.LevelsUnlocked)
	s.Equal(300, stored.Money)
	s.Equal([]string{"hat_red"}, stored.UnlockedCosmetics)

	fetched, err := s.client.FetchProfile(s.ctx, created.Session.AccessToken, created.Session.UserID)
	s.Require().NoError(err)
	s.Equal(5, fetched.LevelsUnlocked)
}

func (s *ClientSuite) TestPushProfileCannotChangeIdentity() {
	created := s.register()

	p := created.Profile.Clone()
	p.Email = "evil@example.com"
	createdAt := p.CreatedAt

	stored, err := s.client.PushProfile(s.ctx, created.Session.AccessToken, p)
	s.Require().NoError(err)
	s.Equal("alice@example.com", stored.Email)
	s.True(stored.CreatedAt.Equal(createdAt))
}

func (s *ClientSuite) TestPushProfileUpdatedAtStrictlyIncreases() {
	created := s.register()
	p := created.Profile.Clone()

	// Two writes with an unmoved server clock still order strictly
	first, err := s.client.PushProfile(s.ctx, created.Session.AccessToken, p)
	s.Require().NoError(err)
	second, err := s.client.PushProfile(s.ctx, created.Session.AccessToken, first)
	s.Require().NoError(err)

	s.True(second.UpdatedAt.After(first.UpdatedAt))
}

// Sign-out tests

func (s *ClientSuite) TestSignOutRevokesToken() {
	created := s.register()

	s.Require().NoError(s.client.SignOut(s.ctx, created.Session.AccessToken))

	_, err := s.client.FetchSession(s.ctx, created.Session.AccessToken)
	s.ErrorIs(err, model.ErrAuth)
}

func (s *ClientSuite) TestSignOutWithoutToken() {
	err := s.client.SignOut(s.ctx, "")
	s.ErrorIs(err, model.ErrAuth)
}

// Transport failure tests

func (s *ClientSuite) TestUnreachableServer() {
	dead := remote.NewClient("http://127.0.0.1:1")
	_, err := dead.Login(s.ctx, "alice@example.com", "password123")
	s.ErrorIs(err, model.ErrTransport)
}
