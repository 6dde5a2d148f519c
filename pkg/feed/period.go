package feed

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPeriod is returned for a period code the providers don't know.
var ErrInvalidPeriod = errors.New("invalid period")

// ParsePeriod resolves a Yahoo-style range code ("5d", "1wk", "3mo", "1y",
// "ytd", "max") to the first calendar day it covers, relative to now. The
// zero time means no lower bound.
func ParsePeriod(period string, now time.Time) (time.Time, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case "max":
		return time.Time{}, nil
	case "ytd":
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), nil
	}

	for _, unit := range []string{"wk", "mo", "d", "y"} {
		if !strings.HasSuffix(p, unit) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(p, unit))
		if err != nil || n <= 0 {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
		}
		switch unit {
		case "d":
			return today.AddDate(0, 0, -n), nil
		case "wk":
			return today.AddDate(0, 0, -7*n), nil
		case "mo":
			return today.AddDate(0, -n, 0), nil
		default:
			return today.AddDate(-n, 0, 0), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
}

// trimToPeriod keeps bars dated on or after start.
func trimToPeriod[T any](items []T, start time.Time, date func(T) time.Time) []T {
	if start.IsZero() {
		return items
	}
	out := items[:0]
	for _, it := range items {
		if !date(it).Before(start) {
			out = append(out, it)
		}
	}
	return out
}
