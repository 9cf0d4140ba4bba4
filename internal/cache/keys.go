package cache

// Keys written by the session and profile layers. Collaborators must not
// write these directly.
const (
	KeyAuthenticated  = "auth.authenticated"
	KeyGuest          = "auth.guest"
	KeyGuestID        = "auth.guest_id"
	KeyJustLoggedOut  = "auth.just_logged_out"
	KeyUserID         = "profile.user_id"
	KeyUsername       = "profile.username"
	KeyEmail          = "profile.email"
	KeyLevelsUnlocked = "profile.levels_unlocked"
	KeyMoney          = "profile.money"
	KeyCosmetics      = "profile.cosmetics"
	KeyCreatedAt      = "profile.created_at"
	KeyUpdatedAt      = "profile.updated_at"
)

// ProfileKeys lists every key cleared on logout.
var ProfileKeys = []string{
	KeyAuthenticated,
	KeyGuest,
	KeyGuestID,
	KeyUserID,
	KeyUsername,
	KeyEmail,
	KeyLevelsUnlocked,
	KeyMoney,
	KeyCosmetics,
	KeyCreatedAt,
	KeyUpdatedAt,
}
