// Package utils holds small helpers shared across services.
package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt digest of plain at the given cost.
// The cost is configurable so tests can run at bcrypt.MinCost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored digest.
// Both a wrong password and a malformed digest come back false; the
// caller treats every failure as the same invalid-credentials outcome.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
