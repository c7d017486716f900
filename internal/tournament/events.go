package tournament

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/volley-tournament/internal/model"
	"github.com/mauv0809/volley-tournament/internal/pubsub"
)

// publish sends an event after the state change committed. Delivery
// problems never fail the command that caused them.
func (s *Service) publish(topic pubsub.EventType, data any) {
	if err := s.pubsub.SendMessage(topic, data); err != nil {
		log.Warn("Failed to publish event", "topic", topic, "error", err)
	}
}

func (s *Service) matchEvent(match model.Match, set model.Set) pubsub.MatchEvent {
	event := pubsub.MatchEvent{
		MatchID:    match.ID,
		MatchOrder: match.Order,
		Team1ID:    match.Team1ID,
		Team2ID:    match.Team2ID,
		SetNumber:  set.Number,
		ScoreTeam1: set.ScoreTeam1,
		ScoreTeam2: set.ScoreTeam2,
		SetsTeam1:  match.SetsTeam1,
		SetsTeam2:  match.SetsTeam2,
		WinnerID:   match.WinnerID,
		OccurredAt: s.now(),
	}
	teams, err := s.store.LoadTeams()
	if err != nil {
		log.Warn("Failed to resolve team names for event", "matchID", match.ID, "error", err)
		return event
	}
	for _, t := range teams {
		switch t.ID {
		case match.Team1ID:
			event.Team1Name = t.Name
		case match.Team2ID:
			event.Team2Name = t.Name
		}
		if t.ID == match.WinnerID {
			event.WinnerName = t.Name
		}
	}
	return event
}

func (s *Service) withSetScores(event pubsub.MatchEvent) pubsub.MatchEvent {
	sets, err := s.store.ListSets(event.MatchID)
	if err != nil {
		log.Warn("Failed to load sets for event", "matchID", event.MatchID, "error", err)
		return event
	}
	for _, set := range sets {
		event.SetScores = append(event.SetScores, fmt.Sprintf("%d-%d", set.ScoreTeam1, set.ScoreTeam2))
	}
	return event
}
