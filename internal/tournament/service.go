// Package tournament orchestrates schedule generation, match scoring and
// standings on top of the store.
package tournament

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mauv0809/volley-tournament/internal/metrics"
	"github.com/mauv0809/volley-tournament/internal/model"
	"github.com/mauv0809/volley-tournament/internal/pubsub"
	"github.com/mauv0809/volley-tournament/internal/schedule"
	"github.com/mauv0809/volley-tournament/internal/scoring"
	"github.com/mauv0809/volley-tournament/internal/standings"
	"github.com/mauv0809/volley-tournament/internal/store"
)

// Service is the entry point for every tournament operation.
//
// Scoring commands hold regen shared plus the lock of their match, so
// different matches are scored in parallel. Operations that rewrite the
// schedule hold regen exclusively.
type Service struct {
	store         store.Store
	engine        *scoring.Engine
	ranker        *standings.Ranker
	metrics       metrics.Metrics
	counters      metrics.MetricsStore
	pubsub        pubsub.PubSubClient
	defaultFormat int
	now           func() time.Time
	newID         func() string

	regen sync.RWMutex
	locks *lockArena
}

// Option configures a Service.
type Option func(*Service)

// WithLocale sets the locale used to order team names in the standings.
func WithLocale(locale string) Option {
	return func(s *Service) { s.ranker = standings.NewRanker(locale) }
}

// WithDefaultFormat sets the format used when a schedule request omits one.
func WithDefaultFormat(format int) Option {
	return func(s *Service) { s.defaultFormat = format }
}

// WithCounters persists activity counters in addition to Prometheus.
func WithCounters(counters metrics.MetricsStore) Option {
	return func(s *Service) { s.counters = counters }
}

// WithClock replaces the wall clock for the service and its engine.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the id generator for the service and its engine.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService wires a Service. ps may be a no-op client.
func NewService(st store.Store, m metrics.Metrics, ps pubsub.PubSubClient, opts ...Option) *Service {
	s := &Service{
		store:         st,
		ranker:        standings.NewRanker("ro"),
		metrics:       m,
		pubsub:        ps,
		defaultFormat: model.FormatBestOf3,
		now:           func() time.Time { return time.Now().UTC().Round(0) },
		newID:         uuid.NewString,
		locks:         newLockArena(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = scoring.NewEngine(st, scoring.WithClock(s.now), scoring.WithIDGenerator(s.newID))
	return s
}

// AddTeam registers a new team with an empty tally.
func (s *Service) AddTeam(caller Caller, name string) (model.Team, error) {
	if err := caller.requireAdmin(); err != nil {
		return model.Team{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Team{}, model.ErrEmptyTeamName
	}

	team := model.Team{ID: s.newID(), Name: name, CreatedAt: s.now()}
	if err := s.store.SaveTeam(team); err != nil {
		return model.Team{}, err
	}
	log.Info("Added team", "teamID", team.ID, "name", team.Name, "by", caller.Name)
	return team, nil
}

// DeleteTeam removes a team together with every match it plays in.
func (s *Service) DeleteTeam(caller Caller, teamID string) error {
	if err := caller.requireAdmin(); err != nil {
		return err
	}
	s.regen.Lock()
	defer s.regen.Unlock()

	if err := s.store.DeleteTeam(teamID); err != nil {
		return err
	}
	log.Info("Deleted team", "teamID", teamID, "by", caller.Name)
	return nil
}

// ListTeams returns all teams in creation order.
func (s *Service) ListTeams() ([]model.Team, error) {
	return s.store.LoadTeams()
}

// FindTeams fuzzy-matches query against team names, best match first.
func (s *Service) FindTeams(query string) ([]model.Team, error) {
	teams, err := s.store.LoadTeams()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(teams))
	for i, t := range teams {
		names[i] = t.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(strings.TrimSpace(query), names)
	sort.Sort(ranks)
	found := make([]model.Team, 0, len(ranks))
	for _, r := range ranks {
		found = append(found, teams[r.OriginalIndex])
	}
	log.Debug("Searched teams", "query", query, "found", len(found))
	return found, nil
}

// GenerateSchedule replaces the whole schedule with a round robin between
// teamIDs, or between all teams when teamIDs is empty. Every tally is reset.
// A format of 0 selects the default format.
func (s *Service) GenerateSchedule(caller Caller, teamIDs []string, format int) (ScheduleResult, error) {
	if err := caller.requireAdmin(); err != nil {
		return ScheduleResult{}, err
	}
	if format == 0 {
		format = s.defaultFormat
	}
	if !model.ValidFormat(format) {
		return ScheduleResult{}, model.ErrInvalidFormat
	}

	s.regen.Lock()
	defer s.regen.Unlock()

	teams, err := s.store.LoadTeams()
	if err != nil {
		return ScheduleResult{}, err
	}
	participants, err := selectTeams(teams, teamIDs)
	if err != nil {
		return ScheduleResult{}, err
	}

	built, err := schedule.Build(participants)
	if err != nil {
		return ScheduleResult{}, err
	}

	matches := make([]model.Match, len(built.Pairings))
	for i, p := range built.Pairings {
		matches[i] = model.Match{
			ID:      s.newID(),
			Team1ID: p.Team1,
			Team2ID: p.Team2,
			Order:   i + 1,
			Format:  format,
			Status:  model.MatchPending,
		}
	}

	err = s.store.RunInTx(func(tx store.Store) error {
		if err := tx.ResetTallies(); err != nil {
			return err
		}
		return tx.ReplaceAllMatches(matches)
	})
	if err != nil {
		return ScheduleResult{}, err
	}
	s.locks.reset()

	result := ScheduleResult{
		Matches:             s.views(matches, teams),
		ConstraintSatisfied: built.RestSatisfied,
	}
	s.metrics.IncSchedulesGenerated()
	s.count(metrics.KeySchedulesGenerated)
	if !built.RestSatisfied {
		result.Warning = schedule.WarningText(len(participants))
		s.metrics.IncScheduleRestWarnings()
		log.Warn("Schedule has back-to-back matches", "teams", len(participants))
	}
	log.Info("Generated schedule", "teams", len(participants), "matches", len(matches), "format", format, "by", caller.Name)

	s.publish(pubsub.EventScheduleGenerated, pubsub.ScheduleEvent{
		TeamCount:     len(participants),
		MatchCount:    len(matches),
		Format:        format,
		RestSatisfied: built.RestSatisfied,
		Warning:       result.Warning,
		OccurredAt:    s.now(),
	})
	return result, nil
}

func selectTeams(teams []model.Team, teamIDs []string) ([]string, error) {
	if len(teamIDs) == 0 {
		ids := make([]string, len(teams))
		for i, t := range teams {
			ids[i] = t.ID
		}
		return ids, nil
	}

	known := make(map[string]bool, len(teams))
	for _, t := range teams {
		known[t.ID] = true
	}
	seen := make(map[string]bool, len(teamIDs))
	for _, id := range teamIDs {
		if !known[id] {
			return nil, model.ErrTeamNotFound.WithMessage("team %s not found", id)
		}
		if seen[id] {
			return nil, model.ErrDuplicateTeamInSchedule.WithMessage("team %s listed more than once", id)
		}
		seen[id] = true
	}
	return teamIDs, nil
}

// ListMatches returns the schedule in playing order.
func (s *Service) ListMatches() ([]MatchView, error) {
	matches, err := s.store.ListMatches()
	if err != nil {
		return nil, err
	}
	teams, err := s.store.LoadTeams()
	if err != nil {
		return nil, err
	}
	return s.views(matches, teams), nil
}

// ReorderMatch moves a match to newOrder; positions past the end are clamped.
func (s *Service) ReorderMatch(caller Caller, matchID string, newOrder int) error {
	if err := caller.requireAdmin(); err != nil {
		return err
	}
	if newOrder < 1 {
		return model.ErrInvalidOrder
	}
	s.regen.Lock()
	defer s.regen.Unlock()

	if err := s.store.ReorderMatch(matchID, newOrder); err != nil {
		return err
	}
	log.Info("Reordered match", "matchID", matchID, "order", newOrder, "by", caller.Name)
	return nil
}

// StartMatch moves a pending match to live.
func (s *Service) StartMatch(caller Caller, matchID string) (model.Match, error) {
	if err := caller.requireAdmin(); err != nil {
		return model.Match{}, err
	}
	unlock, err := s.lockMatch(matchID)
	if err != nil {
		return model.Match{}, err
	}
	defer unlock()

	match, err := s.engine.Start(matchID)
	if err != nil {
		return model.Match{}, err
	}
	log.Info("Started match", "matchID", matchID, "by", caller.Name)
	return match, nil
}

// RecordPoint scores one rally for scorer ("team1" or "team2").
func (s *Service) RecordPoint(caller Caller, matchID string, scorer string) (scoring.PointResult, error) {
	if err := caller.requireAdmin(); err != nil {
		return scoring.PointResult{}, err
	}
	side, err := model.ParseSide(scorer)
	if err != nil {
		return scoring.PointResult{}, err
	}
	unlock, err := s.lockMatch(matchID)
	if err != nil {
		return scoring.PointResult{}, err
	}
	result, err := s.engine.RecordPoint(matchID, side)
	unlock()
	if err != nil {
		return scoring.PointResult{}, err
	}

	s.metrics.IncPointsRecorded()
	s.count(metrics.KeyPointsRecorded)
	log.Debug("Recorded point", "matchID", matchID, "scorer", side, "set", result.Set.Number,
		"score", fmt.Sprintf("%d-%d", result.Set.ScoreTeam1, result.Set.ScoreTeam2))

	event := s.matchEvent(result.Match, result.Set)
	event.Scorer = string(side)
	s.publish(pubsub.EventPointRecorded, event)
	if result.SetCompleted {
		log.Info("Set completed", "matchID", matchID, "set", result.Set.Number, "winner", result.Set.Winner)
		s.publish(pubsub.EventSetCompleted, event)
	}
	if result.MatchCompleted {
		s.metrics.IncMatchesCompleted()
		s.count(metrics.KeyMatchesCompleted)
		log.Info("Match completed", "matchID", matchID, "winnerID", result.Match.WinnerID,
			"sets", fmt.Sprintf("%d-%d", result.Match.SetsTeam1, result.Match.SetsTeam2))
		s.publish(pubsub.EventMatchCompleted, s.withSetScores(event))
	}
	return result, nil
}

// UndoLastPoint removes the latest point of a match that is not completed.
func (s *Service) UndoLastPoint(caller Caller, matchID string) (scoring.UndoResult, error) {
	if err := caller.requireAdmin(); err != nil {
		return scoring.UndoResult{}, err
	}
	unlock, err := s.lockMatch(matchID)
	if err != nil {
		return scoring.UndoResult{}, err
	}
	result, err := s.engine.UndoLastPoint(matchID)
	unlock()
	if err != nil {
		return scoring.UndoResult{}, err
	}

	s.metrics.IncPointsUndone()
	s.count(metrics.KeyPointsUndone)
	log.Info("Undid point", "matchID", matchID, "set", result.Removed.SetNumber, "point", result.Removed.Number, "by", caller.Name)
	return result, nil
}

// ReopenMatch takes a completed match back to live, withdrawing its result
// from the standings and removing the match-winning point.
func (s *Service) ReopenMatch(caller Caller, matchID string) (scoring.UndoResult, error) {
	if err := caller.requireAdmin(); err != nil {
		return scoring.UndoResult{}, err
	}
	unlock, err := s.lockMatch(matchID)
	if err != nil {
		return scoring.UndoResult{}, err
	}
	result, err := s.engine.Reopen(matchID)
	unlock()
	if err != nil {
		return scoring.UndoResult{}, err
	}

	s.metrics.IncMatchesReopened()
	s.count(metrics.KeyMatchesReopened)
	log.Info("Reopened match", "matchID", matchID, "by", caller.Name)
	s.publish(pubsub.EventMatchReopened, s.matchEvent(result.Match, model.Set{Number: result.Removed.SetNumber,
		ScoreTeam1: result.Removed.ScoreTeam1, ScoreTeam2: result.Removed.ScoreTeam2}))
	return result, nil
}

// GetMatchDetail returns a match with its sets and points, read from one
// consistent snapshot.
func (s *Service) GetMatchDetail(matchID string) (MatchDetail, error) {
	var (
		detail MatchDetail
		match  model.Match
		teams  []model.Team
	)
	err := s.store.RunInTx(func(tx store.Store) error {
		var err error
		if match, err = tx.LoadMatch(matchID); err != nil {
			return err
		}
		if detail.Sets, err = tx.ListSets(matchID); err != nil {
			return err
		}
		if detail.Points, err = tx.ListPoints(matchID, 0); err != nil {
			return err
		}
		teams, err = tx.LoadTeams()
		return err
	})
	if err != nil {
		return MatchDetail{}, err
	}
	detail.Match = s.views([]model.Match{match}, teams)[0]
	if detail.Sets == nil {
		detail.Sets = []model.Set{}
	}
	if detail.Points == nil {
		detail.Points = []model.Point{}
	}
	return detail, nil
}

// GetStandings ranks all teams by their current tallies.
func (s *Service) GetStandings() ([]standings.RankedTeam, error) {
	start := time.Now()
	teams, err := s.store.LoadTeams()
	if err != nil {
		return nil, err
	}
	ranked := s.ranker.Rank(teams)
	s.metrics.ObserveStandingsDuration(time.Since(start).Seconds())
	return ranked, nil
}

// Summary counts teams, matches by status and rallies played.
func (s *Service) Summary() (Summary, error) {
	var summary Summary
	err := s.store.RunInTx(func(tx store.Store) error {
		teams, err := tx.LoadTeams()
		if err != nil {
			return err
		}
		summary.Teams = len(teams)

		matches, err := tx.ListMatches()
		if err != nil {
			return err
		}
		summary.Matches = len(matches)
		for _, m := range matches {
			switch m.Status {
			case model.MatchPending:
				summary.PendingMatches++
			case model.MatchLive:
				summary.LiveMatches++
			case model.MatchCompleted:
				summary.CompletedMatches++
			}
			if m.Status == model.MatchPending {
				continue
			}
			sets, err := tx.ListSets(m.ID)
			if err != nil {
				return err
			}
			for _, set := range sets {
				summary.PointsPlayed += set.ScoreTeam1 + set.ScoreTeam2
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	if s.counters != nil {
		activity, err := s.counters.GetAll()
		if err != nil {
			log.Warn("Failed to read activity counters", "error", err)
		} else {
			summary.Activity = activity
		}
	}
	return summary, nil
}

// lockMatch serializes commands on one match and keeps regeneration out
// while they run. Unknown ids fail before a lock is allocated for them.
func (s *Service) lockMatch(matchID string) (func(), error) {
	s.regen.RLock()
	if _, err := s.store.LoadMatch(matchID); err != nil {
		s.regen.RUnlock()
		return nil, err
	}
	unlock := s.locks.lock(matchID)
	return func() {
		unlock()
		s.regen.RUnlock()
	}, nil
}

func (s *Service) views(matches []model.Match, teams []model.Team) []MatchView {
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	views := make([]MatchView, len(matches))
	for i, m := range matches {
		views[i] = MatchView{
			Match:      m,
			Team1Name:  names[m.Team1ID],
			Team2Name:  names[m.Team2ID],
			WinnerName: names[m.WinnerID],
		}
	}
	return views
}

func (s *Service) count(key string) {
	if s.counters != nil {
		s.counters.Increment(key)
	}
}
