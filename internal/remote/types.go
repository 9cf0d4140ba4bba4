package remote

import (
	"time"

	"github.com/hollowpoint-games/accountsync/internal/model"
)

// RegisterRequest is the body for POST /v1/register
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// LoginRequest is the body for POST /v1/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile represents a player profile in API payloads
type Profile struct {
	UserID            string    `json:"user_id"`
	Email             string    `json:"email"`
	DisplayName       string    `json:"display_name"`
	LevelsUnlocked    int       `json:"levels_unlocked"`
	Money             int       `json:"money"`
	UnlockedCosmetics []string  `json:"unlocked_cosmetics"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ProfileFromModel converts a model.PlayerProfile to an API Profile
func ProfileFromModel(p *model.PlayerProfile) Profile {
	cosmetics := p.UnlockedCosmetics
	if cosmetics == nil {
		cosmetics = []string{}
	}
	return Profile{
		UserID:            string(p.UserID),
		Email:             p.Email,
		DisplayName:       p.DisplayName,
		LevelsUnlocked:    p.LevelsUnlocked,
		Money:             p.Money,
		UnlockedCosmetics: cosmetics,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ToModel converts an API Profile to a model.PlayerProfile
func (p Profile) ToModel() *model.PlayerProfile {
	return &model.PlayerProfile{
		UserID:            model.UserID(p.UserID),
		Email:             p.Email,
		DisplayName:       p.DisplayName,
		LevelsUnlocked:    p.LevelsUnlocked,
		Money:             p.Money,
		UnlockedCosmetics: p.UnlockedCosmetics,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// AuthResponse is the response for register, login and session endpoints
type AuthResponse struct {
	UserID       string  `json:"user_id"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	Profile      Profile `json:"profile"`
}

// ProfileResponse is the response for profile fetch/update endpoints
type ProfileResponse struct {
	Profile Profile `json:"profile"`
}

// APIError represents an error response from the account service
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// AuthResult pairs the session and profile a successful auth call returns.
type AuthResult struct {
	Session model.Session
	Profile *model.PlayerProfile
}

// ToAuthResult converts an AuthResponse into domain types.
func (r *AuthResponse) ToAuthResult() *AuthResult {
	return &AuthResult{
		Session: model.Session{
			UserID:       model.UserID(r.UserID),
			AccessToken:  r.AccessToken,
			RefreshToken: r.RefreshToken,
		},
		Profile: r.Profile.ToModel(),
	}
}
