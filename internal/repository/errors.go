// Package repository implements the persisted stores over MySQL. Each
// repo is a thin struct around *sql.DB issuing single-row statements;
// there are no cross-row transactions in this layer.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a uniquely-keyed lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique constraint
// and no more specific sentinel applies.
var ErrDuplicate = errors.New("duplicate record")

// ErrEmailExists and ErrUsernameExists split the users-table unique
// violations so the orchestrator can report which field collided.
var (
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
)

// isDuplicate reports whether err is a MySQL duplicate-entry error
// (code 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
