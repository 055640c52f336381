package hockeydb

import (
	"strconv"
	"strings"
)

// placeholder marks an explicitly absent statistic in the HockeyDB text dump
const placeholder = "--"

// isPlaceholder reports whether a token carries no value at all
func isPlaceholder(token string) bool {
	token = strings.TrimSpace(token)
	return token == "" || token == placeholder
}

// CoerceInt parses token as an integer. Empty, "--" and malformed tokens yield def.
func CoerceInt(token string, def int) int {
	if isPlaceholder(token) {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return def
	}
	return v
}

// CoerceFloat parses token as a float64 with the same rules as CoerceInt.
func CoerceFloat(token string, def float64) float64 {
	if isPlaceholder(token) {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
	if err != nil {
		return def
	}
	return v
}

// tokenAt returns tokens[idx] or "" when the row is too short
func tokenAt(tokens []string, idx int) string {
	if idx < 0 || idx >= len(tokens) {
		return ""
	}
	return tokens[idx]
}
