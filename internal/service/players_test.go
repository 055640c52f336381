package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/hockeygame/internal/store"
)

func roster(names ...string) []*store.Player {
	players := make([]*store.Player, len(names))
	for i, n := range names {
		players[i] = &store.Player{PlayerID: i + 1, Name: n}
	}
	return players
}

func names(players []*store.Player) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.Name
	}
	return out
}

func TestRankByName(t *testing.T) {
	players := roster("Steve Yzerman", "Steven Stamkos", "Jacob Fowler", "Brayden Point")

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"surname", "stamkos", []string{"Steven Stamkos"}},
		{"case insensitive", "FOWLER", []string{"Jacob Fowler"}},
		{"closer full name first", "steve", []string{"Steve Yzerman", "Steven Stamkos"}},
		{"typo in surname", "stamkso", []string{"Steven Stamkos"}},
		{"no match", "gretzky", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(RankByName(tt.query, players, 10)))
		})
	}
}

func TestRankByNameLimit(t *testing.T) {
	players := roster("Sam A", "Sam B", "Sam C")
	assert.Len(t, RankByName("sam", players, 2), 2)
}

type pageCall struct {
	league        string
	limit, offset int
}

type fakePlayerReader struct {
	players []*store.Player
	calls   []pageCall
}

func (f *fakePlayerReader) GetByID(context.Context, int) (*store.Player, error) {
	return nil, nil
}

func (f *fakePlayerReader) GetByName(context.Context, string) ([]*store.Player, error) {
	return nil, nil
}

func (f *fakePlayerReader) GetByLeague(_ context.Context, league string, limit, offset int) ([]*store.Player, error) {
	f.calls = append(f.calls, pageCall{league, limit, offset})
	return page(f.players, limit, offset), nil
}

func (f *fakePlayerReader) GetAll(_ context.Context, limit, offset int) ([]*store.Player, error) {
	f.calls = append(f.calls, pageCall{"", limit, offset})
	return page(f.players, limit, offset), nil
}

func page(players []*store.Player, limit, offset int) []*store.Player {
	if offset >= len(players) {
		return nil
	}
	end := offset + limit
	if end > len(players) {
		end = len(players)
	}
	return players[offset:end]
}

func TestListPlayersPagesLeagueFilter(t *testing.T) {
	reader := &fakePlayerReader{players: roster("A", "B", "C", "D", "E")}
	svc := &PlayerService{playerRepo: reader}

	players, err := svc.ListPlayers(context.Background(), "nhl", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "D"}, names(players))

	players, err = svc.ListPlayers(context.Background(), "", 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, names(players))

	assert.Equal(t, []pageCall{{"NHL", 2, 2}, {"", 3, 0}}, reader.calls)
}
