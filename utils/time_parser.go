package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedDuration is returned for duration strings that cannot be parsed.
var ErrMalformedDuration = errors.New("malformed duration")

const maxDays = math.MaxInt64 / int64(24*time.Hour)

// ParseDuration extends time.ParseDuration to support days (d).
func ParseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		daysStr := strings.TrimSuffix(s, "d")
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid day value: %s", ErrMalformedDuration, daysStr)
		}
		if days < 0 || int64(days) > maxDays {
			return 0, fmt.Errorf("%w: day value out of range: %s", ErrMalformedDuration, daysStr)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedDuration, err)
	}
	return d, nil
}

// IsPermanentDuration reports whether s is one of the "never expires" sentinels.
func IsPermanentDuration(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forever", "permanent":
		return true
	}
	return false
}

// ParseSanctionDuration parses a sanction duration. permanent is true for "forever"
// and "permanent"; otherwise the duration must be strictly positive.
func ParseSanctionDuration(s string) (d time.Duration, permanent bool, err error) {
	if IsPermanentDuration(s) {
		return 0, true, nil
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false, fmt.Errorf("%w: empty duration", ErrMalformedDuration)
	}
	d, err = ParseDuration(s)
	if err != nil {
		return 0, false, err
	}
	if d <= 0 {
		return 0, false, fmt.Errorf("%w: duration must be positive: %s", ErrMalformedDuration, s)
	}
	return d, false, nil
}
