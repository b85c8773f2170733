package model

import "time"

// Role values stored in users.role.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an application user record as stored in the
// `users` table. Handlers define separate response types with JSON
// tags; the password hash never leaves this layer.
//
// Fields:
//  ID           – primary key (UUID string).
//  Username     – unique handle, 3–20 chars, letters/digits/underscore.
//  Email        – unique email address, normalized lowercase.
//  PasswordHash – bcrypt hashed password.
//  Role         – USER or ADMIN.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models a row in the `refresh_tokens` table. A row that
// exists is a live session; rotation, logout and lazy expiry all remove
// the row rather than flagging it.
//
// Fields:
//  Token     – the signed refresh token string (unique key).
//  UserID    – owner of the session.
//  ExpiresAt – expiration timestamp.
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	Token     string    // refresh_tokens.token
	UserID    string    // refresh_tokens.user_id
	ExpiresAt time.Time // refresh_tokens.expires_at
	CreatedAt time.Time // refresh_tokens.created_at
}
