package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Key layout:
//
//	task:detail:<taskID>
//	task:list:<scope>:<fingerprint>
//	task:stats:<scope>
//
// scope is the owning user id, or "all" for the admin bypass.

// DetailKey returns the cache key for a single task.
func DetailKey(taskID string) string {
	return "task:detail:" + taskID
}

// ListKey returns the cache key for a filtered, paginated task list.
// fingerprint must come from Fingerprint so identical queries always
// collide on the same key.
func ListKey(scope, fingerprint string) string {
	return "task:list:" + scope + ":" + fingerprint
}

// ListPattern matches every list entry for a scope.
func ListPattern(scope string) string {
	return "task:list:" + scope + ":*"
}

// StatsKey returns the cache key for per-scope task statistics.
func StatsKey(scope string) string {
	return "task:stats:" + scope
}

// Fingerprint hashes the query parts into a short stable key segment.
// Callers pass the filter and pagination fields in a fixed order, so
// two queries that differ only in construction order hash identically.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%s\x00", p)
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}
