package repository

// Scope selects whose tasks a list/stat query covers. It is a closed
// two-variant type: either the rows owned by one user, or every row
// (the administrator bypass). There is no implicit "no filter"
// sentinel; callers must pick a variant.
type Scope struct {
	all    bool
	userID string
}

// OwnedBy scopes a query to tasks owned by userID.
func OwnedBy(userID string) Scope { return Scope{userID: userID} }

// AllOwners scopes a query across every owner.
func AllOwners() Scope { return Scope{all: true} }

// All reports whether the scope bypasses ownership filtering.
func (s Scope) All() bool { return s.all }

// UserID returns the owning user for an owned scope, "" otherwise.
func (s Scope) UserID() string { return s.userID }

// CacheKey returns the scope segment used in cache keys.
func (s Scope) CacheKey() string {
	if s.all {
		return "all"
	}
	return s.userID
}
