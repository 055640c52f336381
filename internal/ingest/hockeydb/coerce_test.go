package hockeydb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		def      int
		expected int
	}{
		{"placeholder", "--", 0, 0},
		{"empty", "", 0, 0},
		{"plain", "42", 0, 42},
		{"negative", "-13", 0, -13},
		{"padded", " 12 ", 0, 12},
		{"garbage uses default", "abc", 7, 7},
		{"placeholder uses default", "--", 5, 5},
		{"float is not an int", "2.14", -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CoerceInt(tt.token, tt.def))
		})
	}
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		def      float64
		expected float64
	}{
		{"placeholder", "--", 0, 0},
		{"empty", "", 0, 0},
		{"gaa", "2.14", 0, 2.14},
		{"save pct", ".926", 0, 0.926},
		{"integer", "3", 0, 3},
		{"garbage uses default", "n/a", 1.5, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CoerceFloat(tt.token, tt.def), 1e-9)
		})
	}
}
