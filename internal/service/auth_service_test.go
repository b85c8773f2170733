package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskhive/internal/apperr"
	"taskhive/internal/model"
	"taskhive/internal/token"
	"taskhive/internal/utils"
)

func newAuthFixture(t *testing.T) (*AuthService, *memUsers, *memSessions) {
	t.Helper()
	users := newMemUsers()
	sessions := newMemSessions()
	codec := token.NewCodec("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	return NewAuthService(users, sessions, codec, bcrypt.MinCost, nil), users, sessions
}

func seedUser(t *testing.T, users *memUsers, id, username, email, password string) {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	users.add(&model.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	})
}

func assertKind(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err))
	assert.EqualError(t, err, msg)
}

func TestRegister(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	u, err := svc.Register(context.Background(), "alice", "Alice@Example.com", "Password1")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email, "email is normalized to lower case")
	assert.Equal(t, model.RoleUser, u.Role, "registration never grants ADMIN")
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "Password1"))
	assert.NotEqual(t, "Password1", u.PasswordHash)
}

func TestRegisterEmailConflict(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	seedUser(t, users, "u-1", "alice", "alice@example.com", "Password1")

	_, err := svc.Register(context.Background(), "someone", "alice@example.com", "Password1")
	assertKind(t, err, apperr.KindConflict, "Email already registered")
}

func TestRegisterUsernameConflict(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	seedUser(t, users, "u-1", "alice", "alice@example.com", "Password1")

	_, err := svc.Register(context.Background(), "alice", "new@example.com", "Password1")
	assertKind(t, err, apperr.KindConflict, "Username already taken")
}

// When a payload collides on both email and username, the email
// conflict is reported.
func TestRegisterEmailConflictWinsOverUsername(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	seedUser(t, users, "u-1", "alice", "alice@example.com", "Password1")

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "Password1")
	assertKind(t, err, apperr.KindConflict, "Email already registered")
}

// blindUsers answers both exists-checks negatively so the insert's
// unique constraint is the first thing that sees the collision.
type blindUsers struct{ *memUsers }

func (b blindUsers) EmailExists(context.Context, string) (bool, error)    { return false, nil }
func (b blindUsers) UsernameExists(context.Context, string) (bool, error) { return false, nil }

func TestRegisterInsertRaceMapsConstraintError(t *testing.T) {
	users := newMemUsers()
	seedUser(t, users, "u-1", "alice", "alice@example.com", "Password1")
	codec := token.NewCodec("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	svc := NewAuthService(blindUsers{users}, newMemSessions(), codec, bcrypt.MinCost, nil)

	_, err := svc.Register(context.Background(), "bob", "alice@example.com", "Password1")
	assertKind(t, err, apperr.KindConflict, "Email already registered")

	_, err = svc.Register(context.Background(), "alice", "bob@example.com", "Password1")
	assertKind(t, err, apperr.KindConflict, "Username already taken")
}

func TestLogin(t *testing.T) {
	svc, users, sessions := newAuthFixture(t)
	seedUser(t, users, "u-1", "alice", "alice@example.com", "Password1")

	res, err := svc.Login(context.Background(), "Alice@Example.com", "Password1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", res.User.ID)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
	assert.Equal(t, 1, sessions.count(), "login persists exactly one session")
}

// Unknown email and wrong password must be indistinguishable.
func TestLoginFailuresAreUniform(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	seedUser(t, users, "u-1", "alice", "alice@example.com", "Password1")

	_, errUnknown := svc.Login(context.Background(), "nobody@example.com", "Password1")
	_, errWrongPw := svc.Login(context.Background(), "alice@example.com", "WrongPassword1")

	assertKind(t, errUnknown, apperr.KindUnauthorized, "Invalid credentials")
	assertKind(t, errWrongPw, apperr.KindUnauthorized, "Invalid credentials")
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, users, sessions := newAuthFixture(t)
	seedUser(t, users, "u-1", "alice", "alice@example.com", "Password1")
	res, err := svc.Login(context.Background(), "alice@example.com", "Password1")
	require.NoError(t, err)
	old := res.Tokens.RefreshToken

	pair, err := svc.Refresh(context.Background(), old)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 1, sessions.count(), "rotation replaces the session, never accumulates")

	// The consumed token is dead for good.
	_, err = svc.Refresh(context.Background(), old)
	assertKind(t, err, apperr.KindUnauthorized, "Refresh token not found")

	// The replacement works.
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsMalformedToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assertKind(t, err, apperr.KindUnauthorized, "Invalid refresh token")
}

// A verifiable token with no session row means the session was revoked
// or never opened here.
func TestRefreshRejectsUnknownSession(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	codec := token.NewCodec("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	raw, err := codec.IssueRefresh(token.Claims{UserID: "u-1", Email: "a@example.com", Role: model.RoleUser})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), raw)
	assertKind(t, err, apperr.KindUnauthorized, "Refresh token not found")
}

// An expired session row is deleted lazily when presented.
func TestRefreshExpiredSessionIsLazilyDeleted(t *testing.T) {
	svc, users, sessions := newAuthFixture(t)
	seedUser(t, users, "u-1", "alice", "alice@example.com", "Password1")

	codec := token.NewCodec("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	raw, err := codec.IssueRefresh(token.Claims{UserID: "u-1", Email: "alice@example.com", Role: model.RoleUser})
	require.NoError(t, err)
	require.NoError(t, sessions.Create(context.Background(), &model.RefreshToken{
		Token:     raw,
		UserID:    "u-1",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}))

	_, err = svc.Refresh(context.Background(), raw)
	assertKind(t, err, apperr.KindUnauthorized, "Refresh token expired")
	assert.Equal(t, 0, sessions.count(), "the stale row is removed as a side effect")

	// Presenting it again hits the absent-row path, not the expiry one.
	_, err = svc.Refresh(context.Background(), raw)
	assertKind(t, err, apperr.KindUnauthorized, "Refresh token not found")
}

// Of N concurrent rotations of the same token, exactly one wins.
func TestRefreshConcurrentRotationSingleWinner(t *testing.T) {
	svc, users, sessions := newAuthFixture(t)
	seedUser(t, users, "u-1", "alice", "alice@example.com", "Password1")
	res, err := svc.Login(context.Background(), "alice@example.com", "Password1")
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Refresh(context.Background(), res.Tokens.RefreshToken); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else {
				assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "rotation is single-use even under contention")
	assert.Equal(t, 1, sessions.count())
}

func TestLogout(t *testing.T) {
	svc, users, sessions := newAuthFixture(t)
	seedUser(t, users, "u-1", "alice", "alice@example.com", "Password1")
	res, err := svc.Login(context.Background(), "alice@example.com", "Password1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), res.Tokens.RefreshToken))
	assert.Equal(t, 0, sessions.count())

	// The second logout with the same token is an error, not a no-op.
	err = svc.Logout(context.Background(), res.Tokens.RefreshToken)
	assertKind(t, err, apperr.KindUnauthorized, "Refresh token not found or already invalidated")
}

func TestLogoutAll(t *testing.T) {
	svc, users, sessions := newAuthFixture(t)
	seedUser(t, users, "u-1", "alice", "alice@example.com", "Password1")
	seedUser(t, users, "u-2", "bob", "bob@example.com", "Password1")

	for i := 0; i < 3; i++ {
		_, err := svc.Login(context.Background(), "alice@example.com", "Password1")
		require.NoError(t, err)
	}
	other, err := svc.Login(context.Background(), "bob@example.com", "Password1")
	require.NoError(t, err)
	require.Equal(t, 4, sessions.count())

	require.NoError(t, svc.LogoutAll(context.Background(), "u-1"))
	assert.Equal(t, 1, sessions.count(), "only the other user's session survives")

	_, err = svc.Refresh(context.Background(), other.Tokens.RefreshToken)
	assert.NoError(t, err)
}

// A rotated token's claims keep identifying the same user.
func TestRefreshPreservesIdentity(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	seedUser(t, users, "u-1", "alice", "alice@example.com", "Password1")
	res, err := svc.Login(context.Background(), "alice@example.com", "Password1")
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), res.Tokens.RefreshToken)
	require.NoError(t, err)

	codec := token.NewCodec("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	cl, err := codec.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", cl.UserID)
	assert.Equal(t, "alice@example.com", cl.Email)
	assert.Equal(t, model.RoleUser, cl.Role)
}
