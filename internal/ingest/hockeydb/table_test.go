package hockeydb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeKeepsBlankCells(t *testing.T) {
	tokens := tokenize("2012-13\tTampa Bay Lightning\tNHL\t48\t\t28\t 57 ")

	assert.Equal(t, []string{"2012-13", "Tampa Bay Lightning", "NHL", "48", "", "28", "57"}, tokens)
	assert.Equal(t, 6, filled(tokens))
}

func TestTokenizeWhitespaceFallback(t *testing.T) {
	assert.Equal(t, []string{"2012-13", "Tampa", "Bay", "NHL", "48"}, tokenize("2012-13  Tampa Bay   NHL 48"))
}
