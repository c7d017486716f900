// Package scoring implements volleyball rally scoring: set and match win
// detection, point recording and undo, and the team tally update that
// follows a completed match.
package scoring

import (
	"time"

	"github.com/mauv0809/volley-tournament/internal/model"
)

const (
	// RegularSetTarget is the score a regular set is played to.
	RegularSetTarget = 25
	// DecisiveSetTarget is the score of the last possible set of a match.
	DecisiveSetTarget = 15
	// MinLead is the margin needed to take a set.
	MinLead = 2
)

// SetsToWin is the number of sets that decides a best-of-format match.
func SetsToWin(format int) int {
	return (format + 1) / 2
}

// IsDecisive reports whether setNumber is the last set a match can have.
func IsDecisive(setNumber, format int) bool {
	return setNumber == format
}

// TargetScore is the score a set must reach: 15 in the decisive set, 25 otherwise.
func TargetScore(setNumber, format int) int {
	if IsDecisive(setNumber, format) {
		return DecisiveSetTarget
	}
	return RegularSetTarget
}

// SetWinner returns the side that has won a set with the given score, or
// an empty side while the set is still open.
func SetWinner(score1, score2, target int) model.Side {
	switch {
	case score1 >= target && score1-score2 >= MinLead:
		return model.SideTeam1
	case score2 >= target && score2-score1 >= MinLead:
		return model.SideTeam2
	}
	return ""
}

// DeriveSet recomputes score, winner and completion time of set from its
// points alone. points must belong to the set and be in point order.
func DeriveSet(set model.Set, points []model.Point, format int) model.Set {
	set.ScoreTeam1, set.ScoreTeam2 = 0, 0
	for _, p := range points {
		if p.Scorer == model.SideTeam1 {
			set.ScoreTeam1++
		} else {
			set.ScoreTeam2++
		}
	}

	set.Winner = SetWinner(set.ScoreTeam1, set.ScoreTeam2, TargetScore(set.Number, format))
	set.CompletedAt = nil
	if set.Winner != "" {
		decidedAt := points[len(points)-1].RecordedAt
		set.CompletedAt = &decidedAt
	}
	return set
}

// DeriveMatch recomputes the set counters, status, winner and completion
// time of match from its sets. hasPoints tells whether any point remains
// in the match; without points an unfinished match falls back to pending.
func DeriveMatch(match model.Match, sets []model.Set, hasPoints bool) model.Match {
	match.SetsTeam1, match.SetsTeam2 = 0, 0
	var lastDecided *time.Time
	for _, set := range sets {
		switch set.Winner {
		case model.SideTeam1:
			match.SetsTeam1++
		case model.SideTeam2:
			match.SetsTeam2++
		default:
			continue
		}
		lastDecided = set.CompletedAt
	}

	match.WinnerID = ""
	match.CompletedAt = nil
	need := SetsToWin(match.Format)
	switch {
	case match.SetsTeam1 >= need:
		match.Status = model.MatchCompleted
		match.WinnerID = match.Team1ID
		match.CompletedAt = lastDecided
	case match.SetsTeam2 >= need:
		match.Status = model.MatchCompleted
		match.WinnerID = match.Team2ID
		match.CompletedAt = lastDecided
	case hasPoints:
		match.Status = model.MatchLive
	default:
		match.Status = model.MatchPending
		match.StartedAt = nil
	}
	return match
}

// WinningSide returns the side that won a completed match.
func WinningSide(match model.Match) model.Side {
	if match.WinnerID == match.Team1ID {
		return model.SideTeam1
	}
	return model.SideTeam2
}
