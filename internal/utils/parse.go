// Package utils holds small parsing helpers shared by the HTTP layer.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or invalid.
//
//	utils.AtoiDefault("42", 0) // 42
//	utils.AtoiDefault("", 10)  // 10
//	utils.AtoiDefault("x", 5)  // 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// IntInRange parses s and returns it when it lies in [lo, hi]; otherwise,
// including for empty or malformed input, it returns def.
func IntInRange(s string, lo, hi, def int) int {
	n := AtoiDefault(s, def)
	if n < lo || n > hi {
		return def
	}
	return n
}
