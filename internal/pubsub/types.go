package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub. It is
// also the topic name.
type EventType string

const (
	EventPointRecorded     EventType = "point-recorded"
	EventSetCompleted      EventType = "set-completed"
	EventMatchCompleted    EventType = "match-completed"
	EventMatchReopened     EventType = "match-reopened"
	EventScheduleGenerated EventType = "schedule-generated"
)

// MatchEvent is the payload of every match-scoped event.
type MatchEvent struct {
	MatchID    string    `msgpack:"match_id" json:"match_id"`
	MatchOrder int       `msgpack:"match_order" json:"match_order"`
	Team1ID    string    `msgpack:"team1_id" json:"team1_id"`
	Team1Name  string    `msgpack:"team1_name" json:"team1_name"`
	Team2ID    string    `msgpack:"team2_id" json:"team2_id"`
	Team2Name  string    `msgpack:"team2_name" json:"team2_name"`
	SetNumber  int       `msgpack:"set_number" json:"set_number"`
	ScoreTeam1 int       `msgpack:"score_team1" json:"score_team1"`
	ScoreTeam2 int       `msgpack:"score_team2" json:"score_team2"`
	SetsTeam1  int       `msgpack:"sets_team1" json:"sets_team1"`
	SetsTeam2  int       `msgpack:"sets_team2" json:"sets_team2"`
	Scorer     string    `msgpack:"scorer,omitempty" json:"scorer,omitempty"`
	WinnerID   string    `msgpack:"winner_id,omitempty" json:"winner_id,omitempty"`
	WinnerName string    `msgpack:"winner_name,omitempty" json:"winner_name,omitempty"`
	SetScores  []string  `msgpack:"set_scores,omitempty" json:"set_scores,omitempty"`
	OccurredAt time.Time `msgpack:"occurred_at" json:"occurred_at"`
}

// ScheduleEvent is published after a schedule regeneration.
type ScheduleEvent struct {
	TeamCount     int       `msgpack:"team_count" json:"team_count"`
	MatchCount    int       `msgpack:"match_count" json:"match_count"`
	Format        int       `msgpack:"format" json:"format"`
	RestSatisfied bool      `msgpack:"rest_satisfied" json:"rest_satisfied"`
	Warning       string    `msgpack:"warning,omitempty" json:"warning,omitempty"`
	OccurredAt    time.Time `msgpack:"occurred_at" json:"occurred_at"`
}

// PushRequest is the JSON body Pub/Sub push subscriptions POST to us.
type PushRequest struct {
	Subscription string `json:"subscription"`
	Message      struct {
		ID   string `json:"messageId"`
		Data string `json:"data"` // base64-encoded msgpack
	} `json:"message"`
}
