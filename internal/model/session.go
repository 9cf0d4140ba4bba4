package model

import "time"

// Session is an authenticated identity's token pair. Guest sessions carry
// empty tokens; they are authoritative locally and never validated remotely.
type Session struct {
	UserID       UserID
	AccessToken  string
	RefreshToken string
	CreatedAt    time.Time
}

// IsGuest reports whether the session belongs to a local guest identity.
func (s *Session) IsGuest() bool {
	return s.UserID.IsGuestID()
}

// OpKind identifies a kind of asynchronous account operation. The pending
// registry tracks at most one in-flight operation per kind.
type OpKind string

const (
	OpRegister       OpKind = "register"
	OpLogin          OpKind = "login"
	OpGuestSignIn    OpKind = "guest_sign_in"
	OpProviderSignIn OpKind = "provider_sign_in"
	OpSessionProbe   OpKind = "session_probe"
	OpSignOut        OpKind = "sign_out"
	OpProfileFetch   OpKind = "profile_fetch"
	OpProfilePush    OpKind = "profile_push"
)

// RequestPayload carries the inputs of an account operation across a
// transport backend. Only the fields relevant to the operation kind are set.
type RequestPayload struct {
	Email       string         `json:"email,omitempty"`
	Password    string         `json:"password,omitempty"`
	Username    string         `json:"username,omitempty"`
	AccessToken string         `json:"access_token,omitempty"`
	UserID      UserID         `json:"user_id,omitempty"`
	Profile     *PlayerProfile `json:"profile,omitempty"`
}

// CompletionPayload is the structured success/failure record a transport
// backend produces for an operation, either directly or via the host
// completion channel.
type CompletionPayload struct {
	OK           bool           `json:"ok"`
	ErrorCode    string         `json:"error_code,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Session      *Session       `json:"session,omitempty"`
	Profile      *PlayerProfile `json:"profile,omitempty"`
}

// SuccessPayload builds a completion for a succeeded operation.
func SuccessPayload(session *Session, profile *PlayerProfile) *CompletionPayload {
	return &CompletionPayload{OK: true, Session: session, Profile: profile}
}

// FailurePayload builds a completion for a failed operation.
func FailurePayload(err error) *CompletionPayload {
	return &CompletionPayload{
		OK:           false,
		ErrorCode:    CodeForError(err),
		ErrorMessage: err.Error(),
	}
}

// Err converts a failure payload back into a typed error. Returns nil for
// successful payloads.
func (p *CompletionPayload) Err() error {
	if p.OK {
		return nil
	}
	return ErrorForCode(p.ErrorCode, p.ErrorMessage)
}
