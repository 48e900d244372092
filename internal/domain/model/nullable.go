package model

import (
	"fmt"
	"strconv"
)

// Nullable is an optional float column. The zero value is absent.
// Arithmetic must go through Get so an absent value is never read as NaN or 0.
type Nullable struct {
	value float64
	valid bool
}

// Some returns a present value.
func Some(v float64) Nullable { return Nullable{value: v, valid: true} }

// None returns an absent value.
func None() Nullable { return Nullable{} }

// Get returns the value and whether it is present.
func (n Nullable) Get() (float64, bool) { return n.value, n.valid }

// Valid reports whether the value is present.
func (n Nullable) Valid() bool { return n.valid }

// Or returns the value if present, else fallback.
func (n Nullable) Or(fallback float64) float64 {
	if n.valid {
		return n.value
	}
	return fallback
}

// Render formats the value with verb, or returns placeholder when absent.
func (n Nullable) Render(verb, placeholder string) string {
	if !n.valid {
		return placeholder
	}
	return fmt.Sprintf(verb, n.value)
}

// String renders the value for tabular persistence; absent is the empty string.
func (n Nullable) String() string {
	if !n.valid {
		return ""
	}
	return strconv.FormatFloat(n.value, 'g', -1, 64)
}

// ParseNullable parses a tabular cell; an empty cell is absent.
func ParseNullable(s string) (Nullable, error) {
	if s == "" {
		return None(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return None(), err
	}
	return Some(v), nil
}
