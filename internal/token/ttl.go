package token

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

// ErrBadDuration is returned when a lifetime spec does not match
// <integer><unit> with unit one of s, m, h, d.
var ErrBadDuration = errors.New("invalid duration format")

var durationRe = regexp.MustCompile(`^(\d+)([smhd])$`)

// ParseTTL parses a lifetime spec such as "15m" or "7d" into a
// duration. Day is the only unit time.ParseDuration lacks, so the
// whole grammar is kept deliberately small.
func ParseTTL(spec string) (time.Duration, error) {
	m := durationRe.FindStringSubmatch(spec)
	if m == nil {
		return 0, ErrBadDuration
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, ErrBadDuration
	}
	switch m[2] {
	case "s":
		return time.Duration(n) * time.Second, nil
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return 0, ErrBadDuration
}

// ExpiryFrom returns now plus the parsed lifetime spec.
func ExpiryFrom(spec string, now time.Time) (time.Time, error) {
	d, err := ParseTTL(spec)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(d), nil
}
