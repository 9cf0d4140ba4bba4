package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hollowpoint-games/accountsync/internal/cache"
	"github.com/hollowpoint-games/accountsync/internal/dependencies/clock"
	"github.com/hollowpoint-games/accountsync/internal/dependencies/random"
	"github.com/hollowpoint-games/accountsync/internal/model"
	"github.com/hollowpoint-games/accountsync/internal/profile"
	"github.com/hollowpoint-games/accountsync/internal/transport"
)

// State is the session-level lifecycle state
type State string

const (
	StateNoSession      State = "no_session"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateLoggingOut     State = "logging_out"
)

const guestIDLength = 20

// Config holds configuration for the session manager
type Config struct {
	// RestoreAttempts caps the bridged restore poll loop
	RestoreAttempts int

	// RestoreInterval is the fixed delay between restore poll attempts
	RestoreInterval time.Duration
}

// DefaultConfig returns default session manager configuration
func DefaultConfig() Config {
	return Config{
		RestoreAttempts: 10,
		RestoreInterval: 500 * time.Millisecond,
	}
}

// Manager orchestrates authentication and session lifecycle. It owns the
// Session for its lifetime, drives the profile store on every auth event,
// and guarantees the sign-in operations are mutually exclusive: only one
// may be authenticating at a time.
type Manager struct {
	backend  transport.Backend
	profiles *profile.Store
	cache    cache.Cache
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
	cfg      Config

	mu         sync.Mutex
	state      State
	session    *model.Session
	probeToken string
}

// New creates a session manager
func New(
	backend transport.Backend,
	profiles *profile.Store,
	localCache cache.Cache,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
	cfg Config,
) *Manager {
	if cfg.RestoreAttempts == 0 {
		cfg.RestoreAttempts = DefaultConfig().RestoreAttempts
	}
	if cfg.RestoreInterval == 0 {
		cfg.RestoreInterval = DefaultConfig().RestoreInterval
	}
	return &Manager{
		backend:  backend,
		profiles: profiles,
		cache:    localCache,
		clock:    clk,
		random:   rnd,
		logger:   logger,
		cfg:      cfg,
		state:    StateNoSession,
	}
}

// Register creates a new remote account. On success the profile store
// creates the fresh local profile; on remote failure no local state is
// touched.
func (m *Manager) Register(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", model.ErrValidation)
	}
	if creds.Password != creds.ConfirmPassword {
		return nil, fmt.Errorf("%w: passwords do not match", model.ErrValidation)
	}
	if creds.Username == "" {
		return nil, fmt.Errorf("%w: username is required", model.ErrValidation)
	}

	if err := m.beginAuthenticating(); err != nil {
		return nil, err
	}

	result, err := m.backend.Execute(ctx, model.OpRegister, model.RequestPayload{
		Email:    creds.Email,
		Password: creds.Password,
		Username: creds.Username,
	})
	if err := signInError(result, err); err != nil {
		m.failAuthenticating()
		return nil, err
	}

	session := m.adoptSession(result.Session)
	m.profiles.Create(session.UserID, creds.Email, creds.Username)
	m.saveFlags(false)

	m.logger.Info("registered new account", slog.String("user_id", string(session.UserID)))
	return session, nil
}

// Login authenticates existing credentials. On success the remote profile
// record wins wholesale over anything cached locally.
func (m *Manager) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", model.ErrValidation)
	}

	if err := m.beginAuthenticating(); err != nil {
		return nil, err
	}

	result, err := m.backend.Execute(ctx, model.OpLogin, model.RequestPayload{
		Email:    creds.Email,
		Password: creds.Password,
	})
	if err := signInError(result, err); err != nil {
		m.failAuthenticating()
		return nil, err
	}

	session := m.adoptSession(result.Session)
	if err := m.adoptProfile(ctx, result); err != nil {
		m.teardown()
		return nil, err
	}
	m.saveFlags(false)

	m.logger.Info("logged in", slog.String("user_id", string(session.UserID)))
	return session, nil
}

// LoginAsGuest creates a local guest identity without touching the
// transport. Guest profiles stay on this device.
func (m *Manager) LoginAsGuest(ctx context.Context) (*model.Session, error) {
	if err := m.beginAuthenticating(); err != nil {
		return nil, err
	}

	id := m.random.String(guestIDLength, random.IDAlphabet)
	if id == "" {
		m.failAuthenticating()
		return nil, fmt.Errorf("%w: guest id generation failed", model.ErrValidation)
	}

	guest := model.GuestIdentity{
		ID:          model.UserID("guest_" + id),
		DisplayName: "Guest",
	}

	session := m.adoptSession(&model.Session{UserID: guest.ID})
	m.profiles.CreateGuest(guest)
	m.saveFlags(true)

	m.logger.Info("created guest identity", slog.String("guest_id", string(guest.ID)))
	return session, nil
}

// SignInWithProvider signs in through the host environment's platform
// provider. Only meaningful under a bridged backend; fails fast elsewhere.
func (m *Manager) SignInWithProvider(ctx context.Context) (*model.Session, error) {
	if !m.backend.Supports(model.OpProviderSignIn) {
		return nil, model.ErrUnsupportedOperation
	}

	if err := m.beginAuthenticating(); err != nil {
		return nil, err
	}

	result, err := m.backend.Execute(ctx, model.OpProviderSignIn, model.RequestPayload{})
	if err := signInError(result, err); err != nil {
		m.failAuthenticating()
		return nil, err
	}

	session := m.adoptSession(result.Session)
	if err := m.adoptProfile(ctx, result); err != nil {
		m.teardown()
		return nil, err
	}
	m.saveFlags(false)

	m.logger.Info("signed in with provider", slog.String("user_id", string(session.UserID)))
	return session, nil
}

// Logout signs out remotely on a best-effort basis, then tears down local
// state unconditionally: a stuck "still logged in" device is worse than an
// un-synced remote sign-out. The just-logged-out flag suppresses auto-login
// on the next restore.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	session := m.session
	m.state = StateLoggingOut
	m.mu.Unlock()

	if session != nil && !session.IsGuest() {
		_, err := m.backend.Execute(ctx, model.OpSignOut, model.RequestPayload{
			AccessToken: session.AccessToken,
		})
		if err != nil {
			m.logger.Warn("remote sign-out failed, proceeding with local teardown",
				slog.String("error", err.Error()))
		}
	}

	m.teardown()
	m.cache.SetBool(cache.KeyJustLoggedOut, true)
	if err := m.cache.Save(); err != nil {
		m.logger.Warn("failed to save logout flag", slog.String("error", err.Error()))
	}

	m.logger.Info("logged out")
}

// RestoreSession discovers a still-valid session after a process restart.
// Returns (nil, nil) when there is no session to restore; that is a normal
// outcome, not an error.
func (m *Manager) RestoreSession(ctx context.Context) (*model.Session, error) {
	// A logout in the previous run suppresses auto-login exactly once.
	if m.cache.GetBool(cache.KeyJustLoggedOut, false) {
		m.cache.Delete(cache.KeyJustLoggedOut)
		if err := m.cache.Save(); err != nil {
			m.logger.Warn("failed to clear logout flag", slog.String("error", err.Error()))
		}
		m.logger.Info("skipping session restore after logout")
		return nil, nil
	}

	// Guest identities are authoritative locally; no remote probe.
	if m.cache.GetBool(cache.KeyGuest, false) {
		return m.restoreGuest()
	}

	if !m.cache.GetBool(cache.KeyAuthenticated, false) {
		return nil, nil
	}

	if err := m.beginAuthenticating(); err != nil {
		return nil, err
	}

	fut, err := m.backend.Dispatch(ctx, model.OpSessionProbe, model.RequestPayload{
		AccessToken: m.currentProbeToken(),
	})
	if err != nil {
		m.failAuthenticating()
		return nil, err
	}

	for attempt := 0; attempt < m.cfg.RestoreAttempts; attempt++ {
		select {
		case <-fut.Done():
			result, err := fut.Await(ctx)
			if err := signInError(result, err); err != nil {
				m.failAuthenticating()
				// An invalid or expired session is a normal no-session
				// outcome; only transport faults surface.
				if isNoSession(err) {
					return nil, nil
				}
				return nil, err
			}

			session := m.adoptSession(result.Session)
			if err := m.adoptProfile(ctx, result); err != nil {
				m.teardown()
				return nil, err
			}
			m.logger.Info("restored session", slog.String("user_id", string(session.UserID)))
			return session, nil
		case <-ctx.Done():
			m.backend.Cancel(model.OpSessionProbe, ctx.Err())
			m.failAuthenticating()
			return nil, ctx.Err()
		case <-time.After(m.cfg.RestoreInterval):
			// Hosts may hydrate the profile store out of band before the
			// probe completion lands; a populated store ends the wait.
			if p := m.profiles.Current(); p != nil && !p.IsGuest {
				m.backend.Cancel(model.OpSessionProbe, model.ErrTimeout)
				session := m.adoptSession(&model.Session{UserID: p.UserID})
				m.logger.Info("restored session from hydrated profile",
					slog.String("user_id", string(p.UserID)))
				return session, nil
			}
		}
	}

	// Exhausting the attempt cap is the normal "no session" outcome. The
	// abandoned probe slot is cleared so a later restore can dispatch again.
	m.backend.Cancel(model.OpSessionProbe, model.ErrTimeout)
	m.failAuthenticating()
	m.logger.Info("session restore exhausted attempts",
		slog.Int("attempts", m.cfg.RestoreAttempts))
	return nil, nil
}

// CurrentSession returns the active session, or nil.
func (m *Manager) CurrentSession() *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	cp := *m.session
	return &cp
}

// State returns the current session lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// restoreGuest rebuilds a guest session from the local cache. It enters the
// authenticating state like every other sign-in path, so a restore cannot
// race a concurrent sign-in.
func (m *Manager) restoreGuest() (*model.Session, error) {
	if err := m.beginAuthenticating(); err != nil {
		return nil, err
	}
	p := m.profiles.LoadCached()
	if p == nil {
		m.failAuthenticating()
		return nil, nil
	}
	session := m.adoptSession(&model.Session{UserID: p.UserID})
	m.logger.Info("restored guest session", slog.String("guest_id", string(p.UserID)))
	return session, nil
}

// SetProbeToken supplies an externally persisted access token for the next
// RestoreSession probe. Hosts that keep their own token store call this
// before restoring; bridged hosts that own the session ignore the token.
func (m *Manager) SetProbeToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probeToken = token
}

// currentProbeToken returns the access token to probe with, if any.
func (m *Manager) currentProbeToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil && m.session.AccessToken != "" {
		return m.session.AccessToken
	}
	return m.probeToken
}

// beginAuthenticating enforces mutual exclusion of sign-in operations.
func (m *Manager) beginAuthenticating() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateAuthenticating {
		return model.ErrOperationInFlight
	}
	m.state = StateAuthenticating
	return nil
}

func (m *Manager) failAuthenticating() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateAuthenticating {
		m.state = StateNoSession
	}
}

// adoptSession installs the session and enters the authenticated state.
func (m *Manager) adoptSession(session *model.Session) *model.Session {
	s := *session
	s.CreatedAt = m.clock.Now()

	m.mu.Lock()
	m.session = &s
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.profiles.SetAccessToken(s.AccessToken)
	cp := s
	return &cp
}

// adoptProfile installs the profile from a completion payload, falling back
// to a remote fetch when the payload carries none.
func (m *Manager) adoptProfile(ctx context.Context, result *model.CompletionPayload) error {
	if result.Profile != nil {
		m.profiles.AdoptRemote(result.Profile)
		return nil
	}
	_, err := m.profiles.LoadFromRemote(ctx, result.Session.UserID)
	return err
}

// teardown clears all local session state.
func (m *Manager) teardown() {
	m.mu.Lock()
	m.session = nil
	m.probeToken = ""
	m.state = StateNoSession
	m.mu.Unlock()

	m.profiles.Clear()
}

// saveFlags records the authenticated/guest flags after a sign-in.
func (m *Manager) saveFlags(guest bool) {
	m.cache.SetBool(cache.KeyAuthenticated, !guest)
	m.cache.SetBool(cache.KeyGuest, guest)
	m.cache.Delete(cache.KeyJustLoggedOut)
	if err := m.cache.Save(); err != nil {
		m.logger.Warn("failed to save session flags", slog.String("error", err.Error()))
	}
}

// signInError surfaces the transport error, the payload's typed failure, or
// a malformed success completion. The host completion channel is external
// input; a success that carries no session cannot be adopted.
func signInError(result *model.CompletionPayload, err error) error {
	if err != nil {
		return err
	}
	if err := result.Err(); err != nil {
		return err
	}
	if result.Session == nil {
		return fmt.Errorf("%w: completion payload carries no session", model.ErrTransport)
	}
	return nil
}

// isNoSession reports whether a restore failure means "no valid session"
// rather than a fault worth surfacing.
func isNoSession(err error) bool {
	return errors.Is(err, model.ErrAuth) || errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrTimeout)
}
