package pubsub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchEventRoundTripsThroughMsgpack(t *testing.T) {
	event := MatchEvent{
		MatchID:    "m1",
		Team1Name:  "Sharks",
		Team2Name:  "Eagles",
		SetsTeam1:  2,
		WinnerName: "Sharks",
		SetScores:  []string{"25-20", "25-18"},
		OccurredAt: time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
	}
	data, err := Encode(event)
	require.NoError(t, err)

	var decoded MatchEvent
	require.NoError(t, NewNoop().ProcessMessage(data, &decoded))
	assert.Equal(t, event.MatchID, decoded.MatchID)
	assert.Equal(t, event.SetScores, decoded.SetScores)
	assert.True(t, event.OccurredAt.Equal(decoded.OccurredAt))
}

func TestNoopRejectsUnencodablePayload(t *testing.T) {
	assert.NoError(t, NewNoop().SendMessage(EventScheduleGenerated, ScheduleEvent{TeamCount: 4}))
	assert.Error(t, NewNoop().SendMessage(EventScheduleGenerated, make(chan int)))
}

func TestMockRecordsCalls(t *testing.T) {
	mock := NewMock()
	require.NoError(t, mock.SendMessage(EventPointRecorded, MatchEvent{MatchID: "m1"}))
	require.NoError(t, mock.SendMessage(EventMatchCompleted, MatchEvent{MatchID: "m1"}))
	assert.Equal(t, []EventType{EventPointRecorded, EventMatchCompleted}, mock.Topics())

	mock.Reset()
	assert.Empty(t, mock.Topics())
}
