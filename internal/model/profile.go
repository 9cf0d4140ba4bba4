package model

import (
	"slices"
	"time"
)

// UserID uniquely identifies a player across the system.
// Remote accounts use "u_" prefixed ids; guest identities use "guest_".
type UserID string

// IsGuestID reports whether an id belongs to a locally generated guest.
func (id UserID) IsGuestID() bool {
	return len(id) > 6 && id[:6] == "guest_"
}

// DefaultLevelsUnlocked is the progression a fresh profile starts with.
const DefaultLevelsUnlocked = 1

// PlayerProfile is the authoritative record of a player's identity and
// progression. Exactly one profile is live in memory at a time, owned by the
// profile store. UserID is immutable once assigned; UpdatedAt strictly
// increases on every successful remote write.
type PlayerProfile struct {
	UserID            UserID    `json:"user_id"`
	Email             string    `json:"email"`
	DisplayName       string    `json:"display_name"`
	LevelsUnlocked    int       `json:"levels_unlocked"`
	Money             int       `json:"money"`
	UnlockedCosmetics []string  `json:"unlocked_cosmetics"`
	IsGuest           bool      `json:"is_guest"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewProfile builds a fresh profile in its first-unlock state.
func NewProfile(id UserID, email, displayName string, now time.Time) *PlayerProfile {
	return &PlayerProfile{
		UserID:            id,
		Email:             email,
		DisplayName:       displayName,
		LevelsUnlocked:    DefaultLevelsUnlocked,
		Money:             0,
		UnlockedCosmetics: []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// HasCosmetic reports whether the given cosmetic id is unlocked.
func (p *PlayerProfile) HasCosmetic(id string) bool {
	return slices.Contains(p.UnlockedCosmetics, id)
}

// Clone returns a deep copy of the profile.
func (p *PlayerProfile) Clone() *PlayerProfile {
	cp := *p
	cp.UnlockedCosmetics = slices.Clone(p.UnlockedCosmetics)
	return &cp
}

// Credentials carries user-supplied sign-in input. Ephemeral; never persisted.
type Credentials struct {
	Email           string
	Password        string
	ConfirmPassword string
	Username        string
}

// GuestIdentity is a locally generated identity used when no remote account
// is desired. Never synced to the remote service.
type GuestIdentity struct {
	ID          UserID
	DisplayName string
}
