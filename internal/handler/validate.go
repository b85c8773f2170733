package handler

import (
	"regexp"
	"strings"
	"time"
)

// Request validation rules. These mirror the API contract; the service
// layer assumes its inputs already passed them.

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	upperRe    = regexp.MustCompile(`[A-Z]`)
	lowerRe    = regexp.MustCompile(`[a-z]`)
	digitRe    = regexp.MustCompile(`[0-9]`)
)

func validateUsername(username string) string {
	if len(username) < 3 {
		return "Username must be at least 3 characters"
	}
	if len(username) > 20 {
		return "Username must not exceed 20 characters"
	}
	if !usernameRe.MatchString(username) {
		return "Username can only contain letters, numbers, and underscores"
	}
	return ""
}

func validateEmail(email string) string {
	if !emailRe.MatchString(email) {
		return "Invalid email format"
	}
	return ""
}

func validatePassword(password string) string {
	if len(password) < 8 {
		return "Password must be at least 8 characters"
	}
	if !upperRe.MatchString(password) {
		return "Password must contain at least one uppercase letter"
	}
	if !lowerRe.MatchString(password) {
		return "Password must contain at least one lowercase letter"
	}
	if !digitRe.MatchString(password) {
		return "Password must contain at least one number"
	}
	return ""
}

func validateTitle(title string, required bool) string {
	title = strings.TrimSpace(title)
	if title == "" {
		if required {
			return "Title is required"
		}
		return "Title cannot be empty"
	}
	if len(title) > 200 {
		return "Title must not exceed 200 characters"
	}
	return ""
}

// parseDate accepts RFC3339 timestamps.
func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
