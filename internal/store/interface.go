// Package store persists teams, matches, sets and points.
package store

import "github.com/mauv0809/volley-tournament/internal/model"

// Store is the persistence boundary of the tournament. Lookups of missing
// rows return model.ErrTeamNotFound or model.ErrMatchNotFound; every other
// failure is a model.Persistence error.
type Store interface {
	// LoadTeams returns all teams in creation order.
	LoadTeams() ([]model.Team, error)
	GetTeam(id string) (model.Team, error)
	// SaveTeam inserts the team or renames an existing one. Names are unique
	// case-insensitively.
	SaveTeam(team model.Team) error
	// DeleteTeam removes the team with its matches, sets and points, then
	// renumbers the remaining matches 1..n keeping their relative order.
	DeleteTeam(id string) error
	ApplyTally(teamID string, delta model.Tally) error
	ResetTallies() error

	LoadMatch(id string) (model.Match, error)
	// ListMatches returns matches ordered by match_order.
	ListMatches() ([]model.Match, error)
	// ReplaceAllMatches wipes every match, set and point and inserts matches.
	ReplaceAllMatches(matches []model.Match) error
	// UpdateMatch writes the scoring state of a match. match_order, teams and
	// format are left untouched.
	UpdateMatch(match model.Match) error
	// ReorderMatch moves a match to newOrder, clamped to [1, n], shifting the
	// matches in between by one.
	ReorderMatch(id string, newOrder int) error

	// ListSets returns the sets of a match ordered by set number.
	ListSets(matchID string) ([]model.Set, error)
	UpsertSet(set model.Set) error
	DeleteSet(id string) error

	// ListPoints returns the points of one set, or of the whole match when
	// setNumber is 0, ordered by set number then point number.
	ListPoints(matchID string, setNumber int) ([]model.Point, error)
	InsertPoint(point model.Point) error
	DeletePoint(id string) error

	// RunInTx runs fn against a transactional view of the store. Everything
	// fn writes is committed together, or discarded when fn returns an error.
	RunInTx(fn func(tx Store) error) error
}

// clampOrder limits a requested match position to [1, count].
func clampOrder(order, count int) int {
	if order < 1 {
		return 1
	}
	if order > count {
		return count
	}
	return order
}
