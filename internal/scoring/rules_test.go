package scoring_test

import (
	"testing"

	"github.com/mauv0809/volley-tournament/internal/model"
	"github.com/mauv0809/volley-tournament/internal/scoring"
	"github.com/stretchr/testify/assert"
)

func TestTargetScore(t *testing.T) {
	testCases := []struct {
		setNumber, format, expected int
	}{
		{1, 3, 25},
		{2, 3, 25},
		{3, 3, 15},
		{3, 5, 25},
		{4, 5, 25},
		{5, 5, 15},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, scoring.TargetScore(tc.setNumber, tc.format), "set %d of best-of-%d", tc.setNumber, tc.format)
	}
	assert.Equal(t, 2, scoring.SetsToWin(3))
	assert.Equal(t, 3, scoring.SetsToWin(5))
}

func TestSetWinner(t *testing.T) {
	testCases := []struct {
		name           string
		score1, score2 int
		target         int
		expected       model.Side
	}{
		{"open", 24, 20, 25, ""},
		{"clean win", 25, 0, 25, model.SideTeam1},
		{"no two point lead", 25, 24, 25, ""},
		{"extended", 27, 29, 25, model.SideTeam2},
		{"decisive", 15, 13, 15, model.SideTeam1},
		{"decisive open", 15, 14, 15, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, scoring.SetWinner(tc.score1, tc.score2, tc.target))
		})
	}
}

func TestMatchTallies(t *testing.T) {
	match := model.Match{Team1ID: "a", Team2ID: "b", WinnerID: "b", Format: 3}
	sets := []model.Set{
		{Number: 1, ScoreTeam1: 25, ScoreTeam2: 20, Winner: model.SideTeam1},
		{Number: 2, ScoreTeam1: 18, ScoreTeam2: 25, Winner: model.SideTeam2},
		{Number: 3, ScoreTeam1: 10, ScoreTeam2: 15, Winner: model.SideTeam2},
	}
	team1, team2 := scoring.MatchTallies(match, sets)
	assert.Equal(t, model.Tally{Losses: 1, SetsWon: 1, SetsLost: 2, PointsWon: 53, PointsLost: 60}, team1)
	assert.Equal(t, model.Tally{Wins: 1, SetsWon: 2, SetsLost: 1, PointsWon: 60, PointsLost: 53}, team2)
}
