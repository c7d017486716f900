package scoring

import (
	"fmt"

	"github.com/mauv0809/volley-tournament/internal/model"
	"github.com/mauv0809/volley-tournament/internal/store"
)

// MatchTallies returns the tally contribution of a completed match for the
// team on each side.
func MatchTallies(match model.Match, sets []model.Set) (team1, team2 model.Tally) {
	for _, set := range sets {
		team1.PointsWon += set.ScoreTeam1
		team1.PointsLost += set.ScoreTeam2
		switch set.Winner {
		case model.SideTeam1:
			team1.SetsWon++
		case model.SideTeam2:
			team1.SetsLost++
		}
	}
	if WinningSide(match) == model.SideTeam1 {
		team1.Wins = 1
	} else {
		team1.Losses = 1
	}

	team2 = model.Tally{
		Wins:       team1.Losses,
		Losses:     team1.Wins,
		SetsWon:    team1.SetsLost,
		SetsLost:   team1.SetsWon,
		PointsWon:  team1.PointsLost,
		PointsLost: team1.PointsWon,
	}
	return team1, team2
}

// applyMatchResult adds a completed match to both teams' tallies and marks
// the match so that it is never counted twice. The caller persists match.
func applyMatchResult(tx store.Store, match *model.Match, sets []model.Set) error {
	if match.Status != model.MatchCompleted || match.TallyApplied {
		return nil
	}
	team1, team2 := MatchTallies(*match, sets)
	if err := tx.ApplyTally(match.Team1ID, team1); err != nil {
		return fmt.Errorf("apply tally for %s: %w", match.Team1ID, err)
	}
	if err := tx.ApplyTally(match.Team2ID, team2); err != nil {
		return fmt.Errorf("apply tally for %s: %w", match.Team2ID, err)
	}
	match.TallyApplied = true
	return nil
}

// retractMatchResult subtracts exactly what applyMatchResult added. sets
// must be the sets of the match as they were at completion.
func retractMatchResult(tx store.Store, match *model.Match, sets []model.Set) error {
	if !match.TallyApplied {
		return nil
	}
	team1, team2 := MatchTallies(*match, sets)
	if err := tx.ApplyTally(match.Team1ID, team1.Negate()); err != nil {
		return fmt.Errorf("retract tally for %s: %w", match.Team1ID, err)
	}
	if err := tx.ApplyTally(match.Team2ID, team2.Negate()); err != nil {
		return fmt.Errorf("retract tally for %s: %w", match.Team2ID, err)
	}
	match.TallyApplied = false
	return nil
}
