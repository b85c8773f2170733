package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskhive/internal/apperr"
	"taskhive/internal/model"
	"taskhive/internal/repository"
	"taskhive/internal/token"
	"taskhive/internal/utils"
)

// AuthService is the orchestrator over identity and session state.
// It is the sole writer of session rows. Per refresh token the states
// are: absent -> live -> consumed (rotation), revoked (logout) or
// expired-detected (lazy delete on use); no transition goes back.
type AuthService struct {
	users      UserStore
	sessions   SessionStore
	codec      *token.Codec
	bcryptCost int
	now        func() time.Time
	log        *logrus.Logger
}

// NewAuthService wires the orchestrator. The clock defaults to UTC
// time.Now and is overridable for expiry tests.
func NewAuthService(users UserStore, sessions SessionStore, codec *token.Codec, bcryptCost int, log *logrus.Logger) *AuthService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		codec:      codec,
		bcryptCost: bcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
		log:        log,
	}
}

// TokenPair is a freshly issued access/refresh pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult bundles the authenticated user with their token pair.
type LoginResult struct {
	User   *model.User
	Tokens TokenPair
}

// Register creates a user with the USER role. Email uniqueness is
// checked before username uniqueness; when a payload collides on both,
// the email conflict wins. That ordering is part of the contract.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	emailTaken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, apperr.Internal("register failed", err)
	}
	if emailTaken {
		return nil, apperr.Conflict("Email already registered")
	}
	usernameTaken, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return nil, apperr.Internal("register failed", err)
	}
	if usernameTaken {
		return nil, apperr.Conflict("Username already taken")
	}

	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal("register failed", err)
	}

	now := s.now()
	u := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// Exists-checks above race with concurrent registrations; the
		// unique constraint is the final arbiter.
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, apperr.Conflict("Email already registered")
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, apperr.Conflict("Username already taken")
		}
		return nil, apperr.Internal("register failed", err)
	}
	return u, nil
}

// Login verifies credentials and opens a session. The message for an
// unknown email and for a wrong password is byte-identical so callers
// cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, apperr.Internal("login failed", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	tokens, err := s.openSession(ctx, u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, Tokens: tokens}, nil
}

// Refresh rotates a refresh token: the presented token is consumed and
// a new pair is issued. Rotation is single-use; of two concurrent
// calls presenting the same token, exactly one wins the delete and the
// other observes the row missing.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	if _, err := s.codec.VerifyRefresh(presented); err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	rec, err := s.sessions.FindByToken(ctx, presented)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("Refresh token not found")
	}
	if err != nil {
		return nil, apperr.Internal("refresh failed", err)
	}

	if !s.now().Before(rec.ExpiresAt) {
		// Lazy expiry: the stale row is removed as a side effect before
		// the error goes back. Delete-if-exists, so a racing sweep is fine.
		if _, err := s.sessions.Delete(ctx, presented); err != nil {
			s.log.WithError(err).Warn("auth: deleting expired refresh token failed")
		}
		return nil, apperr.Unauthorized("Refresh token expired")
	}

	deleted, err := s.sessions.Delete(ctx, presented)
	if err != nil {
		return nil, apperr.Internal("refresh failed", err)
	}
	if !deleted {
		// Lost the rotation race; the winner already consumed the token.
		return nil, apperr.Unauthorized("Refresh token not found")
	}

	u, err := s.users.FindByID(ctx, rec.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}
	if err != nil {
		return nil, apperr.Internal("refresh failed", err)
	}

	tokens, err := s.openSession(ctx, u)
	if err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Logout revokes one session. Presenting an unknown or already revoked
// token fails; the second logout with the same token is an error by
// design, not a silent success.
func (s *AuthService) Logout(ctx context.Context, presented string) error {
	deleted, err := s.sessions.Delete(ctx, presented)
	if err != nil {
		return apperr.Internal("logout failed", err)
	}
	if !deleted {
		return apperr.Unauthorized("Refresh token not found or already invalidated")
	}
	return nil
}

// LogoutAll revokes every session of a user.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.sessions.DeleteAllByUser(ctx, userID); err != nil {
		return apperr.Internal("logout failed", err)
	}
	return nil
}

// Profile projects an already-verified access claim. No store access:
// the claim is authoritative for the token's lifetime, a deliberate
// staleness/perf tradeoff.
func (s *AuthService) Profile(cl token.Claims) token.Claims { return cl }

func (s *AuthService) openSession(ctx context.Context, u *model.User) (TokenPair, error) {
	cl := token.Claims{UserID: u.ID, Email: u.Email, Role: u.Role}
	access, err := s.codec.IssueAccess(cl)
	if err != nil {
		return TokenPair{}, apperr.Internal("issue access token failed", err)
	}
	refresh, err := s.codec.IssueRefresh(cl)
	if err != nil {
		return TokenPair{}, apperr.Internal("issue refresh token failed", err)
	}
	now := s.now()
	rec := &model.RefreshToken{
		Token:     refresh,
		UserID:    u.ID,
		ExpiresAt: now.Add(s.codec.RefreshTTL()),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, rec); err != nil {
		return TokenPair{}, apperr.Internal("persist session failed", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
