package scoring

import (
	"time"

	"github.com/google/uuid"
	"github.com/mauv0809/volley-tournament/internal/model"
	"github.com/mauv0809/volley-tournament/internal/store"
)

// Engine drives the scoring lifecycle of matches. Each operation runs in a
// single store transaction. Callers serialize operations on the same match.
type Engine struct {
	store store.Store
	now   func() time.Time
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces the generator of set and point ids.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine creates an Engine working on s.
func NewEngine(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: s,
		now:   func() time.Time { return time.Now().UTC().Round(0) },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PointResult describes the state after a recorded point.
type PointResult struct {
	Match          model.Match `json:"match"`
	Set            model.Set   `json:"set"`
	Point          model.Point `json:"point"`
	SetCompleted   bool        `json:"set_completed"`
	MatchCompleted bool        `json:"match_completed"`
}

// UndoResult describes the state after a point was removed.
type UndoResult struct {
	Match   model.Match `json:"match"`
	Removed model.Point `json:"removed"`
	// SetRemoved is true when the removed point was the only one of its set.
	SetRemoved bool `json:"set_removed"`
}

// Start moves a pending match to live. Starting a live match is a no-op.
func (e *Engine) Start(matchID string) (model.Match, error) {
	var match model.Match
	err := e.store.RunInTx(func(tx store.Store) error {
		var err error
		match, err = tx.LoadMatch(matchID)
		if err != nil {
			return err
		}
		switch match.Status {
		case model.MatchCompleted:
			return model.ErrAlreadyCompleted
		case model.MatchLive:
			return nil
		}
		e.markLive(&match)
		return tx.UpdateMatch(match)
	})
	return match, err
}

func (e *Engine) markLive(match *model.Match) {
	match.Status = model.MatchLive
	if match.StartedAt == nil {
		startedAt := e.now()
		match.StartedAt = &startedAt
	}
}

// RecordPoint adds one rally won by scorer to the current set of a match,
// closing the set and the match when their thresholds are reached. A
// pending match goes live first.
func (e *Engine) RecordPoint(matchID string, scorer model.Side) (PointResult, error) {
	if scorer != model.SideTeam1 && scorer != model.SideTeam2 {
		return PointResult{}, model.ErrInvalidScorer
	}

	var result PointResult
	err := e.store.RunInTx(func(tx store.Store) error {
		match, err := tx.LoadMatch(matchID)
		if err != nil {
			return err
		}
		if match.Status == model.MatchCompleted {
			return model.ErrMatchCompleted
		}
		if match.Status == model.MatchPending {
			e.markLive(&match)
		}

		sets, err := tx.ListSets(matchID)
		if err != nil {
			return err
		}
		number := match.CurrentSetNumber()
		idx := indexOfSet(sets, number)
		if idx < 0 {
			sets = append(sets, model.Set{ID: e.newID(), MatchID: matchID, Number: number})
			idx = len(sets) - 1
		}

		points, err := tx.ListPoints(matchID, number)
		if err != nil {
			return err
		}
		point := model.Point{
			ID:         e.newID(),
			MatchID:    matchID,
			SetNumber:  number,
			Number:     len(points) + 1,
			Scorer:     scorer,
			ScoreTeam1: sets[idx].ScoreTeam1,
			ScoreTeam2: sets[idx].ScoreTeam2,
			RecordedAt: e.now(),
		}
		if scorer == model.SideTeam1 {
			point.ScoreTeam1++
		} else {
			point.ScoreTeam2++
		}
		if err := tx.InsertPoint(point); err != nil {
			return err
		}

		sets[idx] = DeriveSet(sets[idx], append(points, point), match.Format)
		if err := tx.UpsertSet(sets[idx]); err != nil {
			return err
		}

		match = DeriveMatch(match, sets, true)
		if err := applyMatchResult(tx, &match, sets); err != nil {
			return err
		}
		if err := tx.UpdateMatch(match); err != nil {
			return err
		}

		result = PointResult{
			Match:          match,
			Set:            sets[idx],
			Point:          point,
			SetCompleted:   sets[idx].Winner != "",
			MatchCompleted: match.Status == model.MatchCompleted,
		}
		return nil
	})
	if err != nil {
		return PointResult{}, err
	}
	return result, nil
}

// UndoLastPoint removes the most recent point of a match and re-derives the
// set and match state from what remains. Completed matches are not editable.
func (e *Engine) UndoLastPoint(matchID string) (UndoResult, error) {
	var result UndoResult
	err := e.store.RunInTx(func(tx store.Store) error {
		match, err := tx.LoadMatch(matchID)
		if err != nil {
			return err
		}
		if match.Status == model.MatchCompleted {
			return model.ErrMatchCompleted
		}
		result, err = removeLastPoint(tx, match)
		return err
	})
	if err != nil {
		return UndoResult{}, err
	}
	return result, nil
}

// Reopen takes a completed match back to live: its result is withdrawn from
// both teams' tallies and the match-winning point is removed.
func (e *Engine) Reopen(matchID string) (UndoResult, error) {
	var result UndoResult
	err := e.store.RunInTx(func(tx store.Store) error {
		match, err := tx.LoadMatch(matchID)
		if err != nil {
			return err
		}
		if match.Status != model.MatchCompleted {
			return model.ErrNotCompleted
		}
		sets, err := tx.ListSets(matchID)
		if err != nil {
			return err
		}
		if err := retractMatchResult(tx, &match, sets); err != nil {
			return err
		}
		result, err = removeLastPoint(tx, match)
		return err
	})
	if err != nil {
		return UndoResult{}, err
	}
	return result, nil
}

func removeLastPoint(tx store.Store, match model.Match) (UndoResult, error) {
	points, err := tx.ListPoints(match.ID, 0)
	if err != nil {
		return UndoResult{}, err
	}
	if len(points) == 0 {
		return UndoResult{}, model.ErrNothingToUndo
	}
	last := points[len(points)-1]
	if err := tx.DeletePoint(last.ID); err != nil {
		return UndoResult{}, err
	}

	var remaining []model.Point
	for _, p := range points[:len(points)-1] {
		if p.SetNumber == last.SetNumber {
			remaining = append(remaining, p)
		}
	}

	sets, err := tx.ListSets(match.ID)
	if err != nil {
		return UndoResult{}, err
	}
	setRemoved := false
	if idx := indexOfSet(sets, last.SetNumber); idx >= 0 {
		if len(remaining) == 0 {
			if err := tx.DeleteSet(sets[idx].ID); err != nil {
				return UndoResult{}, err
			}
			sets = append(sets[:idx], sets[idx+1:]...)
			setRemoved = true
		} else {
			sets[idx] = DeriveSet(sets[idx], remaining, match.Format)
			if err := tx.UpsertSet(sets[idx]); err != nil {
				return UndoResult{}, err
			}
		}
	}

	match = DeriveMatch(match, sets, len(points) > 1)
	if err := tx.UpdateMatch(match); err != nil {
		return UndoResult{}, err
	}
	return UndoResult{Match: match, Removed: last, SetRemoved: setRemoved}, nil
}

func indexOfSet(sets []model.Set, number int) int {
	for i, set := range sets {
		if set.Number == number {
			return i
		}
	}
	return -1
}
