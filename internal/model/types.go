package model

import (
	"strings"
	"time"
)

// Side identifies one of the two teams of a match.
type Side string

const (
	SideTeam1 Side = "team1"
	SideTeam2 Side = "team2"
)

// ParseSide accepts the scorer tokens sent by clients.
func ParseSide(value string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(value))) {
	case SideTeam1:
		return SideTeam1, nil
	case SideTeam2:
		return SideTeam2, nil
	}
	return "", ErrInvalidScorer
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideTeam1 {
		return SideTeam2
	}
	return SideTeam1
}

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
)

// Supported best-of formats.
const (
	FormatBestOf3 = 3
	FormatBestOf5 = 5
)

// ValidFormat reports whether format is a supported best-of series length.
func ValidFormat(format int) bool {
	return format == FormatBestOf3 || format == FormatBestOf5
}

// Tally holds a team's cumulative results. It only changes when a match completes.
type Tally struct {
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	SetsWon    int `json:"sets_won"`
	SetsLost   int `json:"sets_lost"`
	PointsWon  int `json:"points_won"`
	PointsLost int `json:"points_lost"`
}

// Add returns the field-wise sum of both tallies.
func (t Tally) Add(other Tally) Tally {
	return Tally{
		Wins:       t.Wins + other.Wins,
		Losses:     t.Losses + other.Losses,
		SetsWon:    t.SetsWon + other.SetsWon,
		SetsLost:   t.SetsLost + other.SetsLost,
		PointsWon:  t.PointsWon + other.PointsWon,
		PointsLost: t.PointsLost + other.PointsLost,
	}
}

// Negate returns the tally with every field sign-flipped.
func (t Tally) Negate() Tally {
	return Tally{
		Wins:       -t.Wins,
		Losses:     -t.Losses,
		SetsWon:    -t.SetsWon,
		SetsLost:   -t.SetsLost,
		PointsWon:  -t.PointsWon,
		PointsLost: -t.PointsLost,
	}
}

// Team is a tournament participant.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Tally
}

// Match is one pairing of the round-robin schedule.
type Match struct {
	ID           string      `json:"id"`
	Team1ID      string      `json:"team1_id"`
	Team2ID      string      `json:"team2_id"`
	Order        int         `json:"match_order"`
	Format       int         `json:"match_format"`
	Status       MatchStatus `json:"status"`
	SetsTeam1    int         `json:"sets_team1"`
	SetsTeam2    int         `json:"sets_team2"`
	WinnerID     string      `json:"winner_id,omitempty"`
	StartedAt    *time.Time  `json:"started_at,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
	TallyApplied bool        `json:"-"`
}

// TeamID returns the id of the team playing on the given side.
func (m Match) TeamID(side Side) string {
	if side == SideTeam1 {
		return m.Team1ID
	}
	return m.Team2ID
}

// SetsFor returns the number of sets won by side.
func (m Match) SetsFor(side Side) int {
	if side == SideTeam1 {
		return m.SetsTeam1
	}
	return m.SetsTeam2
}

// CurrentSetNumber is the number of the set being played next.
func (m Match) CurrentSetNumber() int {
	return m.SetsTeam1 + m.SetsTeam2 + 1
}

// Set is one set of a match. Winner is empty while the set is in progress.
type Set struct {
	ID          string     `json:"id"`
	MatchID     string     `json:"match_id"`
	Number      int        `json:"set_number"`
	ScoreTeam1  int        `json:"score_team1"`
	ScoreTeam2  int        `json:"score_team2"`
	Winner      Side       `json:"winner,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Score returns the set score of side.
func (s Set) Score(side Side) int {
	if side == SideTeam1 {
		return s.ScoreTeam1
	}
	return s.ScoreTeam2
}

// Point is one rally. Scores are the running set score after the rally.
type Point struct {
	ID         string    `json:"id"`
	MatchID    string    `json:"match_id"`
	SetNumber  int       `json:"set_number"`
	Number     int       `json:"point_number"`
	Scorer     Side      `json:"scorer"`
	ScoreTeam1 int       `json:"score_team1"`
	ScoreTeam2 int       `json:"score_team2"`
	RecordedAt time.Time `json:"recorded_at"`
}
