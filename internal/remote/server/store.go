package server

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hollowpoint-games/accountsync/internal/model"
)

// account pairs a stored profile with its credential hash
type account struct {
	profile      *model.PlayerProfile
	passwordHash string
}

// Store is the account service's in-memory record store, keyed by user id
// with an email index for login.
type Store struct {
	mu         sync.RWMutex
	accounts   map[model.UserID]*account
	emailIndex map[string]model.UserID
}

// NewStore creates an empty account store
func NewStore() *Store {
	return &Store{
		accounts:   make(map[model.UserID]*account),
		emailIndex: make(map[string]model.UserID),
	}
}

// CreateAccount registers a new account and returns its fresh profile.
func (s *Store) CreateAccount(email, password, username string, now time.Time) (*model.PlayerProfile, error) {
	normalized := strings.ToLower(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emailIndex[normalized]; exists {
		return nil, model.ErrEmailExists
	}

	id := model.UserID("u_" + uuid.NewString())
	profile := model.NewProfile(id, email, username, now)

	s.accounts[id] = &account{
		profile:      profile,
		passwordHash: string(hash),
	}
	s.emailIndex[normalized] = id
	return profile.Clone(), nil
}

// Authenticate verifies credentials and returns the account's profile.
func (s *Store) Authenticate(email, password string) (*model.PlayerProfile, error) {
	s.mu.RLock()
	id, ok := s.emailIndex[strings.ToLower(email)]
	var acct *account
	if ok {
		acct = s.accounts[id]
	}
	s.mu.RUnlock()

	if acct == nil {
		return nil, model.ErrAuth
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.passwordHash), []byte(password)); err != nil {
		return nil, model.ErrAuth
	}
	return acct.profile.Clone(), nil
}

// GetProfile fetches a profile by user id.
func (s *Store) GetProfile(id model.UserID) (*model.PlayerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return acct.profile.Clone(), nil
}

// UpdateProfile replaces the stored record with the incoming one. The user
// id and creation time are immutable; the update timestamp strictly
// increases even if the server clock has not moved since the last write.
func (s *Store) UpdateProfile(p *model.PlayerProfile, now time.Time) (*model.PlayerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[p.UserID]
	if !ok {
		return nil, model.ErrNotFound
	}

	updated := p.Clone()
	updated.UserID = acct.profile.UserID
	updated.Email = acct.profile.Email
	updated.CreatedAt = acct.profile.CreatedAt
	updated.UpdatedAt = now
	if !updated.UpdatedAt.After(acct.profile.UpdatedAt) {
		updated.UpdatedAt = acct.profile.UpdatedAt.Add(time.Millisecond)
	}

	acct.profile = updated
	return updated.Clone(), nil
}
