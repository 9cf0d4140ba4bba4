package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hollowpoint-games/accountsync/internal/cache"
	"github.com/hollowpoint-games/accountsync/internal/dependencies/clock"
	"github.com/hollowpoint-games/accountsync/internal/model"
)

// Syncer is the remote surface the store reconciles against. Satisfied by
// transport.BackendSyncer, so pushes and fetches cross whichever transport
// variant is active.
type Syncer interface {
	FetchProfile(ctx context.Context, accessToken string, id model.UserID) (*model.PlayerProfile, error)
	PushProfile(ctx context.Context, accessToken string, p *model.PlayerProfile) (*model.PlayerProfile, error)
}

// Store owns the single authoritative in-memory PlayerProfile and keeps it
// consistent between the local cache and the remote account service.
type Store struct {
	cache  cache.Cache
	sync   Syncer
	clock  clock.Clock
	logger *slog.Logger

	mu          sync.RWMutex
	current     *model.PlayerProfile
	accessToken string
}

// NewStore creates a profile store
func NewStore(localCache cache.Cache, syncer Syncer, clk clock.Clock, logger *slog.Logger) *Store {
	return &Store{
		cache:  localCache,
		sync:   syncer,
		clock:  clk,
		logger: logger,
	}
}

// SetAccessToken sets the token used for remote profile calls. The session
// manager owns the session lifetime and updates this on login and logout.
func (s *Store) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

// Create builds a fresh profile in its first-unlock state, persists it to
// the local cache and installs it as the live profile.
func (s *Store) Create(id model.UserID, email, username string) *model.PlayerProfile {
	p := model.NewProfile(id, email, username, s.clock.Now())

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()

	s.writeToCache(p, false)
	return p.Clone()
}

// CreateGuest is Create for a locally generated guest identity. Guest
// profiles are flagged non-syncing and never reach the remote service.
func (s *Store) CreateGuest(guest model.GuestIdentity) *model.PlayerProfile {
	p := model.NewProfile(guest.ID, "", guest.DisplayName, s.clock.Now())
	p.IsGuest = true

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()

	s.writeToCache(p, true)
	return p.Clone()
}

// LoadFromRemote fetches the remote record for the user. The remote record
// wins wholesale over any stale local cache.
func (s *Store) LoadFromRemote(ctx context.Context, id model.UserID) (*model.PlayerProfile, error) {
	s.mu.RLock()
	token := s.accessToken
	s.mu.RUnlock()

	remote, err := s.sync.FetchProfile(ctx, token, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return s.AdoptRemote(remote), nil
}

// AdoptRemote installs a remote record as the live profile and mirrors it to
// the local cache, overwriting whatever was cached before. Used by
// LoadFromRemote and by login flows whose completion payload already
// carries the profile.
func (s *Store) AdoptRemote(remote *model.PlayerProfile) *model.PlayerProfile {
	p := remote.Clone()

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()

	s.writeToCache(p, false)
	return p.Clone()
}

// Persist pushes the full profile to the remote service, then mirrors the
// stored record to the local cache only on remote success, so the cache
// never shows progression the remote does not have. Guest profiles skip the
// remote entirely.
func (s *Store) Persist(ctx context.Context, p *model.PlayerProfile) error {
	if p.IsGuest {
		updated := p.Clone()
		updated.UpdatedAt = s.clock.Now()

		s.mu.Lock()
		s.current = updated
		s.mu.Unlock()

		s.writeToCache(updated, true)
		return nil
	}

	s.mu.RLock()
	token := s.accessToken
	s.mu.RUnlock()

	stored, err := s.sync.PushProfile(ctx, token, p)
	if err != nil {
		return fmt.Errorf("failed to persist profile: %w", err)
	}

	s.mu.Lock()
	s.current = stored.Clone()
	s.mu.Unlock()

	s.writeToCache(stored, false)
	return nil
}

// UnlockCosmetic adds a cosmetic id to the live profile and persists it.
// Already-unlocked ids are a no-op, so a replayed unlock event cannot
// duplicate progress.
func (s *Store) UnlockCosmetic(ctx context.Context, cosmeticID string) error {
	p, err := s.snapshot()
	if err != nil {
		return err
	}
	if p.HasCosmetic(cosmeticID) {
		return nil
	}
	p.UnlockedCosmetics = append(p.UnlockedCosmetics, cosmeticID)
	return s.Persist(ctx, p)
}

// AdvanceLevel bumps the progression counter and persists it.
func (s *Store) AdvanceLevel(ctx context.Context) error {
	p, err := s.snapshot()
	if err != nil {
		return err
	}
	p.LevelsUnlocked++
	return s.Persist(ctx, p)
}

// GrantMoney adjusts the currency balance and persists it.
func (s *Store) GrantMoney(ctx context.Context, delta int) error {
	p, err := s.snapshot()
	if err != nil {
		return err
	}
	p.Money += delta
	return s.Persist(ctx, p)
}

// Current returns a copy of the live profile, or nil if none.
func (s *Store) Current() *model.PlayerProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	return s.current.Clone()
}

// Clear drops the live profile and its cache keys. Used by logout.
func (s *Store) Clear() {
	s.mu.Lock()
	s.current = nil
	s.accessToken = ""
	s.mu.Unlock()

	for _, key := range cache.ProfileKeys {
		s.cache.Delete(key)
	}
	if err := s.cache.Save(); err != nil {
		s.logger.Warn("failed to save cache on clear", slog.String("error", err.Error()))
	}
}

// LoadCached rebuilds a profile from the local cache, or nil if the cache
// holds none. Guest restores treat this as authoritative; authenticated
// restores only use it until the remote fetch overwrites it.
func (s *Store) LoadCached() *model.PlayerProfile {
	id := s.cache.GetString(cache.KeyUserID, "")
	if id == "" {
		return nil
	}

	p := &model.PlayerProfile{
		UserID:            model.UserID(id),
		Email:             s.cache.GetString(cache.KeyEmail, ""),
		DisplayName:       s.cache.GetString(cache.KeyUsername, ""),
		LevelsUnlocked:    s.cache.GetInt(cache.KeyLevelsUnlocked, model.DefaultLevelsUnlocked),
		Money:             s.cache.GetInt(cache.KeyMoney, 0),
		UnlockedCosmetics: decodeCosmetics(s.cache.GetString(cache.KeyCosmetics, "[]")),
		IsGuest:           s.cache.GetBool(cache.KeyGuest, false),
	}
	if ts := s.cache.GetString(cache.KeyCreatedAt, ""); ts != "" {
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, ts)
	}
	if ts := s.cache.GetString(cache.KeyUpdatedAt, ""); ts != "" {
		p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, ts)
	}

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	return p.Clone()
}

// snapshot returns a mutable copy of the live profile for an update cycle.
func (s *Store) snapshot() (*model.PlayerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, model.ErrNoSession
	}
	return s.current.Clone(), nil
}

// writeToCache mirrors the profile fields into the local cache.
func (s *Store) writeToCache(p *model.PlayerProfile, guest bool) {
	s.cache.SetBool(cache.KeyAuthenticated, !guest)
	s.cache.SetBool(cache.KeyGuest, guest)
	if guest {
		s.cache.SetString(cache.KeyGuestID, string(p.UserID))
	}
	s.cache.SetString(cache.KeyUserID, string(p.UserID))
	s.cache.SetString(cache.KeyUsername, p.DisplayName)
	s.cache.SetString(cache.KeyEmail, p.Email)
	s.cache.SetInt(cache.KeyLevelsUnlocked, p.LevelsUnlocked)
	s.cache.SetInt(cache.KeyMoney, p.Money)
	s.cache.SetString(cache.KeyCosmetics, encodeCosmetics(p.UnlockedCosmetics))
	s.cache.SetString(cache.KeyCreatedAt, p.CreatedAt.Format(time.RFC3339Nano))
	s.cache.SetString(cache.KeyUpdatedAt, p.UpdatedAt.Format(time.RFC3339Nano))

	if err := s.cache.Save(); err != nil {
		s.logger.Warn("failed to save cache", slog.String("error", err.Error()))
	}
}

func encodeCosmetics(ids []string) string {
	if ids == nil {
		ids = []string{}
	}
	data, _ := json.Marshal(ids)
	return string(data)
}

func decodeCosmetics(raw string) []string {
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil || ids == nil {
		return []string{}
	}
	return ids
}
