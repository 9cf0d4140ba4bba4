package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/hollowpoint-games/accountsync/internal/dependencies/clock"
	"github.com/hollowpoint-games/accountsync/internal/model"
	"github.com/hollowpoint-games/accountsync/internal/remote"
)

type contextKey string

const userContextKey contextKey = "user"

// Config holds configuration for the account service
type Config struct {
	SigningKey []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// DefaultConfig returns default account service configuration
func DefaultConfig() Config {
	return Config{
		SigningKey: []byte("dev-signing-key-do-not-use-in-prod"),
		AccessTTL:  time.Hour,
		RefreshTTL: 30 * 24 * time.Hour,
	}
}

// Server is the reference account service: account create/fetch/update by
// user id behind a JSON API the direct backend can await and the loopback
// host can bridge.
type Server struct {
	store  *Store
	clock  clock.Clock
	logger *slog.Logger
	cfg    Config

	mu      sync.Mutex
	revoked map[string]struct{}
}

// New creates a new account service
func New(store *Store, clk clock.Clock, logger *slog.Logger, cfg Config) *Server {
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultConfig().AccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultConfig().RefreshTTL
	}
	if len(cfg.SigningKey) == 0 {
		cfg.SigningKey = DefaultConfig().SigningKey
	}
	return &Server{
		store:   store,
		clock:   clk,
		logger:  logger,
		cfg:     cfg,
		revoked: make(map[string]struct{}),
	}
}

// Router creates the HTTP router with all routes configured
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(s.recovery)

	v1.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	v1.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	protected := v1.NewRoute().Subrouter()
	protected.Use(s.auth)
	protected.HandleFunc("/session", s.handleSession).Methods(http.MethodGet)
	protected.HandleFunc("/profile/{id}", s.handleGetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/profile/{id}", s.handlePutProfile).Methods(http.MethodPut)
	protected.HandleFunc("/signout", s.handleSignOut).Methods(http.MethodPost)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req remote.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.ErrValidation)
		return
	}
	if req.Email == "" || req.Password == "" || req.Username == "" {
		writeError(w, model.ErrValidation)
		return
	}

	profile, err := s.store.CreateAccount(req.Email, req.Password, req.Username, s.clock.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	s.writeAuthResponse(w, profile)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req remote.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.ErrValidation)
		return
	}

	profile, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	s.writeAuthResponse(w, profile)
}

// handleSession resolves the probing client's still-valid session. The
// token has already passed the auth middleware, so this re-issues the
// response the original login produced.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	userID := userFromContext(r.Context())
	profile, err := s.store.GetProfile(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeAuthResponse(w, profile)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := model.UserID(mux.Vars(r)["id"])
	if id != userFromContext(r.Context()) {
		writeError(w, model.ErrAuth)
		return
	}

	profile, err := s.store.GetProfile(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, remote.ProfileResponse{Profile: remote.ProfileFromModel(profile)})
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	id := model.UserID(mux.Vars(r)["id"])
	if id != userFromContext(r.Context()) {
		writeError(w, model.ErrAuth)
		return
	}

	var req remote.Profile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.ErrValidation)
		return
	}

	incoming := req.ToModel()
	incoming.UserID = id
	updated, err := s.store.UpdateProfile(incoming, s.clock.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, remote.ProfileResponse{Profile: remote.ProfileFromModel(updated)})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	s.mu.Lock()
	s.revoked[token] = struct{}{}
	s.mu.Unlock()

	s.logger.Info("session signed out", slog.String("user_id", string(userFromContext(r.Context()))))
	w.WriteHeader(http.StatusNoContent)
}

// writeAuthResponse mints a fresh token pair for the profile's account
func (s *Server) writeAuthResponse(w http.ResponseWriter, profile *model.PlayerProfile) {
	now := s.clock.Now()
	access, err := mintToken(profile.UserID, "access", s.cfg.SigningKey, now, s.cfg.AccessTTL)
	if err != nil {
		writeError(w, err)
		return
	}
	refresh, err := mintToken(profile.UserID, "refresh", s.cfg.SigningKey, now, s.cfg.RefreshTTL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, remote.AuthResponse{
		UserID:       string(profile.UserID),
		AccessToken:  access,
		RefreshToken: refresh,
		Profile:      remote.ProfileFromModel(profile),
	})
}

// auth is bearer-token middleware for the protected routes
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeError(w, model.ErrAuth)
			return
		}

		s.mu.Lock()
		_, isRevoked := s.revoked[token]
		s.mu.Unlock()
		if isRevoked {
			writeError(w, model.ErrAuth)
			return
		}

		userID, err := parseAccessToken(token, s.cfg.SigningKey, s.clock.Now())
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// recovery returns JSON error responses on panic
func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in handler",
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec))
				writeError(w, errors.New("internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func userFromContext(ctx context.Context) model.UserID {
	id, _ := ctx.Value(userContextKey).(model.UserID)
	return id
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError maps a typed error onto its status code and wire shape
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrAuth):
		status = http.StatusUnauthorized
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrEmailExists):
		status = http.StatusConflict
	}

	writeJSON(w, status, remote.ErrorResponse{
		Error: remote.APIError{
			Code:    model.CodeForError(err),
			Message: err.Error(),
		},
	})
}
