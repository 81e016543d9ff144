// Package ints provides strict integer parsing for delimited-text cells.
//
// Unlike strconv.ParseInt, a cell is only accepted when it consists solely of
// ASCII digits: signs, underscores, decimal points, exponents and inner
// whitespace are all rejected. Callers trim surrounding whitespace first.
package ints

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrEmpty is returned for an empty cell.
	ErrEmpty = errors.New("empty value")
	// ErrNotDigits is returned when a cell contains a non-digit byte.
	ErrNotDigits = errors.New("not a digit string")
	// ErrRange is returned when the digits overflow int64.
	ErrRange = errors.New("value out of range")
)

// IsDigits reports whether s is non-empty and made only of '0'..'9'.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseDigits parses s as a non-negative base-10 integer. Leading zeros are
// allowed ("007" is 7).
func ParseDigits(s string) (int64, error) {
	if s == "" {
		return 0, ErrEmpty
	}
	if !IsDigits(s) {
		return 0, fmt.Errorf("%q: %w", s, ErrNotDigits)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrRange)
	}
	return n, nil
}
