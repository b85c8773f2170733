// Package token signs and verifies the two bearer token classes used
// by the API: short-lived access tokens and long-lived refresh tokens.
// Both are HS256 JWTs carrying the same identity payload but signed
// with distinct secrets.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the single error returned for every verification
// failure: bad signature, malformed structure or expiry. Collapsing
// them avoids leaking which check rejected the token.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded payload of a verified token.
type Claims struct {
	UserID    string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec issues and verifies access and refresh tokens. The clock is a
// field so tests can pin time; it defaults to time.Now.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewCodec builds a codec from the two signing secrets and the token
// lifetimes. Secrets must be non-empty; the caller enforces that at
// process start.
func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RefreshTTL returns the configured refresh token lifetime. The auth
// orchestrator uses it to stamp the persisted session row.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// IssueAccess signs a short-lived access token for cl.
func (c *Codec) IssueAccess(cl Claims) (string, error) {
	return c.sign(cl, c.accessSecret, c.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for cl.
func (c *Codec) IssueRefresh(cl Claims) (string, error) {
	return c.sign(cl, c.refreshSecret, c.refreshTTL)
}

// VerifyAccess verifies an access token and returns its claims.
func (c *Codec) VerifyAccess(raw string) (Claims, error) {
	return c.verify(raw, c.accessSecret)
}

// VerifyRefresh verifies a refresh token and returns its claims.
func (c *Codec) VerifyRefresh(raw string) (Claims, error) {
	return c.verify(raw, c.refreshSecret)
}

func (c *Codec) sign(cl Claims, secret []byte, ttl time.Duration) (string, error) {
	now := c.now()
	// jti makes every issued token unique even when two are signed
	// within the same second for the same identity. Sessions are keyed
	// by the token string, so uniqueness matters.
	claims := jwt.MapClaims{
		"sub":   cl.UserID,
		"email": cl.Email,
		"role":  cl.Role,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func (c *Codec) verify(raw string, secret []byte) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	email, _ := mc["email"].(string)
	role, _ := mc["role"].(string)
	if sub == "" || role == "" {
		return Claims{}, ErrInvalidToken
	}
	cl := Claims{UserID: sub, Email: email, Role: role}
	if iat, ok := mc["iat"].(float64); ok {
		cl.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	if exp, ok := mc["exp"].(float64); ok {
		cl.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return cl, nil
}
