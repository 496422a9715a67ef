// Package utils holds small parsing and paging helpers shared by handlers
// and services.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault parses s as a base-10 int, returning def when s is blank or
// malformed. Input is not trimmed.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// ParsePage reads 1-based page and page-size query values. Missing or
// malformed values fall back to page 1 and defSize; the size is bounded to
// [1, maxSize].
func ParsePage(page, size string, defSize, maxSize int) (int, int) {
	p := AtoiDefault(page, 1)
	if p < 1 {
		p = 1
	}
	return p, Clamp(AtoiDefault(size, defSize), 1, maxSize)
}

// Offset is the row offset of a 1-based page.
func Offset(page, size int) int {
	if page < 1 || size < 1 {
		return 0
	}
	return (page - 1) * size
}

// TotalPages is ceil(total/size); zero when either is non-positive.
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// ParseBoolDefault parses form-style booleans ("true", "1", "on", "yes",
// case-insensitive, and their negations). Blank or unrecognized input
// yields def.
func ParseBoolDefault(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "on", "yes", "y":
		return true
	case "0", "f", "false", "off", "no", "n":
		return false
	}
	return def
}
