package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Name uniquely identifies a player account. Keys are case-insensitive;
// use NormalizeName before handing a Name to any store or index.
type Name string

// Account is a snapshot of a single ledger entry. Balance is never negative.
type Account struct {
	Name    Name      `json:"name"`
	Balance int64     `json:"balance"`
	Updated time.Time `json:"updated"`
}

// AddSafe adds delta to base ensuring no signed overflow occurs.
func AddSafe(base int64, delta int64) (int64, error) {
	if (delta > 0 && base > math.MaxInt64-delta) || (delta < 0 && base < math.MinInt64-delta) {
		return 0, errors.New("integer overflow in AddSafe")
	}
	return base + delta, nil
}

// NormalizeName trims and lowercases player names.
func NormalizeName(n Name) (Name, error) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return "", errors.New("empty player name")
	}
	return Name(strings.ToLower(s)), nil
}

// ValidateName ensures a non-empty name with a simple charset check.
func ValidateName(n Name) error {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return errors.New("empty player name")
	}
	// simple check: alnum, dash, underscore, dot
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '.' {
			continue
		}
		return errors.New("invalid player name")
	}
	return nil
}
