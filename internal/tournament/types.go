package tournament

import (
	"github.com/mauv0809/volley-tournament/internal/model"
)

// Caller identifies who issues a command. Mutating operations require Admin.
type Caller struct {
	Name  string
	Admin bool
}

// AdminCaller returns a caller holding the admin capability.
func AdminCaller(name string) Caller {
	return Caller{Name: name, Admin: true}
}

// Anonymous is a read-only caller.
var Anonymous = Caller{Name: "anonymous"}

func (c Caller) requireAdmin() error {
	if !c.Admin {
		return model.ErrForbidden
	}
	return nil
}

// MatchView is a match with its team names resolved.
type MatchView struct {
	model.Match
	Team1Name  string `json:"team1_name"`
	Team2Name  string `json:"team2_name"`
	WinnerName string `json:"winner_name,omitempty"`
}

// MatchDetail is everything known about one match.
type MatchDetail struct {
	Match  MatchView     `json:"match"`
	Sets   []model.Set   `json:"sets"`
	Points []model.Point `json:"points"`
}

// ScheduleResult is the outcome of a schedule regeneration.
type ScheduleResult struct {
	Matches             []MatchView `json:"matches"`
	ConstraintSatisfied bool        `json:"constraint_satisfied"`
	Warning             string      `json:"warning,omitempty"`
}

// Summary gives tournament-wide figures.
type Summary struct {
	Teams            int            `json:"teams"`
	Matches          int            `json:"matches"`
	PendingMatches   int            `json:"pending_matches"`
	LiveMatches      int            `json:"live_matches"`
	CompletedMatches int            `json:"completed_matches"`
	PointsPlayed     int            `json:"points_played"`
	Activity         map[string]int `json:"activity,omitempty"`
}
