package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec() *Codec {
	return NewCodec("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	c := testCodec()
	in := Claims{UserID: "user-1", Email: "a@example.com", Role: "USER"}

	raw, err := c.IssueAccess(in)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	out, err := c.VerifyAccess(raw)
	require.NoError(t, err)
	assert.Equal(t, in.UserID, out.UserID)
	assert.Equal(t, in.Email, out.Email)
	assert.Equal(t, in.Role, out.Role)
	assert.False(t, out.ExpiresAt.IsZero())
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	c := testCodec()
	raw, err := c.IssueRefresh(Claims{UserID: "user-2", Email: "b@example.com", Role: "ADMIN"})
	require.NoError(t, err)

	out, err := c.VerifyRefresh(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-2", out.UserID)
	assert.Equal(t, "ADMIN", out.Role)
}

func TestTokenClassesAreNotInterchangeable(t *testing.T) {
	c := testCodec()
	cl := Claims{UserID: "user-1", Email: "a@example.com", Role: "USER"}

	access, err := c.IssueAccess(cl)
	require.NoError(t, err)
	refresh, err := c.IssueRefresh(cl)
	require.NoError(t, err)

	_, err = c.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = c.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	c := testCodec()
	other := NewCodec("other-secret", "other-refresh", 15*time.Minute, 7*24*time.Hour)

	raw, err := other.IssueAccess(Claims{UserID: "user-1", Role: "USER"})
	require.NoError(t, err)

	_, err = c.VerifyAccess(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	c := testCodec()
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := c.VerifyAccess(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	c := testCodec()
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	c.now = func() time.Time { return issued }
	raw, err := c.IssueAccess(Claims{UserID: "user-1", Role: "USER"})
	require.NoError(t, err)

	// Still valid one minute before expiry.
	c.now = func() time.Time { return issued.Add(14 * time.Minute) }
	_, err = c.VerifyAccess(raw)
	require.NoError(t, err)

	// Rejected once the lifetime has passed.
	c.now = func() time.Time { return issued.Add(16 * time.Minute) }
	_, err = c.VerifyAccess(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMissingIdentity(t *testing.T) {
	c := testCodec()
	raw, err := c.IssueAccess(Claims{UserID: "", Role: "USER"})
	require.NoError(t, err)

	_, err = c.VerifyAccess(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTTL(t *testing.T) {
	cases := []struct {
		spec string
		want time.Duration
		ok   bool
	}{
		{"30s", 30 * time.Second, true},
		{"15m", 15 * time.Minute, true},
		{"2h", 2 * time.Hour, true},
		{"7d", 7 * 24 * time.Hour, true},
		{"0s", 0, true},
		{"", 0, false},
		{"15", 0, false},
		{"m15", 0, false},
		{"15w", 0, false},
		{"1.5h", 0, false},
		{"-5m", 0, false},
		{"15 m", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseTTL(tc.spec)
		if tc.ok {
			require.NoError(t, err, "spec %q", tc.spec)
			assert.Equal(t, tc.want, got, "spec %q", tc.spec)
		} else {
			assert.ErrorIs(t, err, ErrBadDuration, "spec %q", tc.spec)
		}
	}
}

func TestExpiryFrom(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	got, err := ExpiryFrom("7d", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(7*24*time.Hour), got)

	_, err = ExpiryFrom("never", now)
	assert.ErrorIs(t, err, ErrBadDuration)
}
