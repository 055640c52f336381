package hockeydb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const savedPage = `<html><head><script>var x = 1;</script></head><body>
<h1>Steven Stamkos</h1>
<div>Center -- shoots R</div>
<div>Born Feb 7 1990 -- Markham, ONT</div>
<table>
  <tr><th>Season</th><th>Team</th><th>Lge</th><th>GP</th><th>G</th><th>A</th><th>Pts</th><th>PIM</th><th>+/-</th></tr>
  <tr><td>2008-09</td><td>Tampa Bay   Lightning</td><td>NHL</td><td>79</td><td>23</td><td>23</td><td>46</td><td>39</td><td>-13</td></tr>
</table>
</body></html>`

func TestExtractText(t *testing.T) {
	text, err := ExtractText(savedPage)
	require.NoError(t, err)

	assert.NotContains(t, text, "var x")
	assert.Contains(t, text, "2008-09\tTampa Bay Lightning\tNHL\t79\t23\t23\t46\t39\t-13")

	data := ParsePlayerData(text)
	assert.Equal(t, "Steven Stamkos", data.Name)
	assert.Equal(t, "Center -- shoots R", data.Position)
	require.Len(t, data.Seasons, 1)
	assert.Equal(t, "Tampa Bay Lightning", data.Seasons[0].Team)
	assert.Equal(t, 46, data.Seasons[0].Pts)
}

func TestCollapseSpace(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  \n ", " "},
		{"a   b", "a b"},
		{"  a b\n", " a b "},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, collapseSpace(tt.in), "input %q", tt.in)
	}
}

func TestPlayerURL(t *testing.T) {
	c := &Client{baseURL: BaseURL}
	assert.Equal(t, BaseURL+"?pid=85115", c.PlayerURL(85115))
}
