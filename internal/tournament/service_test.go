package tournament

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mauv0809/volley-tournament/internal/metrics"
	"github.com/mauv0809/volley-tournament/internal/model"
	"github.com/mauv0809/volley-tournament/internal/pubsub"
	"github.com/mauv0809/volley-tournament/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin = AdminCaller("referee")
	clock = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc     *Service
	store   *store.MemoryStore
	metrics *metrics.Mock
	pubsub  *pubsub.MockPubSubClient
}

func setupService(t *testing.T) fixture {
	t.Helper()

	f := fixture{
		store:   store.NewMemoryStore(),
		metrics: metrics.NewMock(),
		pubsub:  pubsub.NewMock(),
	}
	var ids atomic.Int64
	f.svc = NewService(f.store, f.metrics, f.pubsub,
		WithClock(func() time.Time { return clock }),
		WithIDGenerator(func() string { return fmt.Sprintf("id-%d", ids.Add(1)) }),
	)
	return f
}

func addTeams(t *testing.T, svc *Service, names ...string) []model.Team {
	t.Helper()
	teams := make([]model.Team, len(names))
	for i, name := range names {
		team, err := svc.AddTeam(admin, name)
		require.NoError(t, err)
		teams[i] = team
	}
	return teams
}

func playMatch(t *testing.T, svc *Service, matchID string, winner model.Side, sets int) {
	t.Helper()
	for s := 0; s < sets; s++ {
		for p := 0; p < 25; p++ {
			_, err := svc.RecordPoint(admin, matchID, string(winner))
			require.NoError(t, err)
		}
	}
}

func TestAddTeamValidation(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.AddTeam(admin, "   ")
	assert.ErrorIs(t, err, model.ErrEmptyTeamName)

	team, err := f.svc.AddTeam(admin, "  Sharks ")
	require.NoError(t, err)
	assert.Equal(t, "Sharks", team.Name)

	_, err = f.svc.AddTeam(admin, "SHARKS")
	assert.ErrorIs(t, err, model.ErrDuplicateTeam)

	_, err = f.svc.AddTeam(Anonymous, "Eagles")
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestMutationsRequireAdmin(t *testing.T) {
	f := setupService(t)
	addTeams(t, f.svc, "A", "B")

	_, err := f.svc.GenerateSchedule(Anonymous, nil, 3)
	assert.ErrorIs(t, err, model.ErrForbidden)
	_, err = f.svc.StartMatch(Anonymous, "m")
	assert.ErrorIs(t, err, model.ErrForbidden)
	_, err = f.svc.RecordPoint(Anonymous, "m", "team1")
	assert.ErrorIs(t, err, model.ErrForbidden)
	_, err = f.svc.UndoLastPoint(Anonymous, "m")
	assert.ErrorIs(t, err, model.ErrForbidden)
	_, err = f.svc.ReopenMatch(Anonymous, "m")
	assert.ErrorIs(t, err, model.ErrForbidden)
	assert.ErrorIs(t, f.svc.ReorderMatch(Anonymous, "m", 1), model.ErrForbidden)
	assert.ErrorIs(t, f.svc.DeleteTeam(Anonymous, "m"), model.ErrForbidden)
}

func TestGenerateSchedule(t *testing.T) {
	f := setupService(t)
	teams := addTeams(t, f.svc, "A", "B", "C", "D", "E", "F")

	result, err := f.svc.GenerateSchedule(admin, nil, 0)
	require.NoError(t, err)
	assert.True(t, result.ConstraintSatisfied)
	assert.Empty(t, result.Warning)
	require.Len(t, result.Matches, 15)
	for i, m := range result.Matches {
		assert.Equal(t, i+1, m.Order)
		assert.Equal(t, model.FormatBestOf3, m.Format)
		assert.Equal(t, model.MatchPending, m.Status)
		assert.NotEmpty(t, m.Team1Name)
		assert.NotEmpty(t, m.Team2Name)
	}
	assert.Equal(t, 1, f.metrics.SchedulesGenerated())
	assert.Equal(t, []pubsub.EventType{pubsub.EventScheduleGenerated}, f.pubsub.Topics())

	subset, err := f.svc.GenerateSchedule(admin, []string{teams[0].ID, teams[1].ID, teams[2].ID}, 5)
	require.NoError(t, err)
	assert.False(t, subset.ConstraintSatisfied)
	assert.Contains(t, subset.Warning, "fewer than 5 teams")
	require.Len(t, subset.Matches, 3)
	assert.Equal(t, 5, subset.Matches[0].Format)
	assert.Equal(t, 1, f.metrics.ScheduleWarnings())

	matches, err := f.svc.ListMatches()
	require.NoError(t, err)
	assert.Len(t, matches, 3, "regeneration replaces the previous schedule")
}

func TestGenerateScheduleValidation(t *testing.T) {
	f := setupService(t)
	teams := addTeams(t, f.svc, "A", "B")

	_, err := f.svc.GenerateSchedule(admin, []string{teams[0].ID}, 3)
	assert.ErrorIs(t, err, model.ErrTooFewTeams)
	_, err = f.svc.GenerateSchedule(admin, []string{teams[0].ID, "ghost"}, 3)
	assert.ErrorIs(t, err, model.ErrTeamNotFound)
	_, err = f.svc.GenerateSchedule(admin, []string{teams[0].ID, teams[0].ID}, 3)
	assert.ErrorIs(t, err, model.ErrDuplicateTeamInSchedule)
	_, err = f.svc.GenerateSchedule(admin, nil, 4)
	assert.ErrorIs(t, err, model.ErrInvalidFormat)
	assert.Equal(t, model.KindValidation, model.KindOf(err))
}

func TestRegenerationResetsTallies(t *testing.T) {
	f := setupService(t)
	addTeams(t, f.svc, "A", "B")

	result, err := f.svc.GenerateSchedule(admin, nil, 3)
	require.NoError(t, err)
	playMatch(t, f.svc, result.Matches[0].ID, model.SideTeam1, 2)

	table, err := f.svc.GetStandings()
	require.NoError(t, err)
	assert.Equal(t, 1, table[0].Wins)

	_, err = f.svc.GenerateSchedule(admin, nil, 3)
	require.NoError(t, err)
	table, err = f.svc.GetStandings()
	require.NoError(t, err)
	for _, row := range table {
		assert.Equal(t, model.Tally{}, row.Tally)
	}
}

func TestScoringFlowAndEvents(t *testing.T) {
	f := setupService(t)
	addTeams(t, f.svc, "Sharks", "Eagles")
	result, err := f.svc.GenerateSchedule(admin, nil, 3)
	require.NoError(t, err)
	matchID := result.Matches[0].ID
	f.pubsub.Reset()

	_, err = f.svc.RecordPoint(admin, matchID, "team3")
	assert.ErrorIs(t, err, model.ErrInvalidScorer)
	_, err = f.svc.RecordPoint(admin, "ghost", "team1")
	assert.ErrorIs(t, err, model.ErrMatchNotFound)

	started, err := f.svc.StartMatch(admin, matchID)
	require.NoError(t, err)
	assert.Equal(t, model.MatchLive, started.Status)

	playMatch(t, f.svc, matchID, model.SideTeam2, 2)
	assert.Equal(t, 50, f.metrics.PointsRecorded())
	assert.Equal(t, 1, f.metrics.MatchesCompleted())

	topics := f.pubsub.Topics()
	assert.Len(t, topics, 53, "50 points, 2 sets, 1 match")
	assert.Equal(t, pubsub.EventMatchCompleted, topics[len(topics)-1])

	last := f.pubsub.SendMessageCalls[len(f.pubsub.SendMessageCalls)-1].Data.(pubsub.MatchEvent)
	assert.Equal(t, "Eagles", last.WinnerName)
	assert.Equal(t, []string{"0-25", "0-25"}, last.SetScores)

	detail, err := f.svc.GetMatchDetail(matchID)
	require.NoError(t, err)
	assert.Equal(t, model.MatchCompleted, detail.Match.Status)
	assert.Equal(t, "Eagles", detail.Match.WinnerName)
	assert.Len(t, detail.Sets, 2)
	assert.Len(t, detail.Points, 50)
}

func TestRepeatedReadsNeverReapplyTally(t *testing.T) {
	f := setupService(t)
	addTeams(t, f.svc, "A", "B")
	result, err := f.svc.GenerateSchedule(admin, nil, 3)
	require.NoError(t, err)
	matchID := result.Matches[0].ID
	playMatch(t, f.svc, matchID, model.SideTeam1, 2)

	first, err := f.svc.GetStandings()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := f.svc.GetMatchDetail(matchID)
		require.NoError(t, err)
	}
	second, err := f.svc.GetStandings()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, second[0].Wins)
	assert.Equal(t, 1, second[1].Losses)
}

func TestUndoAndReopen(t *testing.T) {
	f := setupService(t)
	addTeams(t, f.svc, "A", "B")
	result, err := f.svc.GenerateSchedule(admin, nil, 3)
	require.NoError(t, err)
	matchID := result.Matches[0].ID

	_, err = f.svc.RecordPoint(admin, matchID, "team1")
	require.NoError(t, err)
	undo, err := f.svc.UndoLastPoint(admin, matchID)
	require.NoError(t, err)
	assert.Equal(t, model.MatchPending, undo.Match.Status)
	assert.Equal(t, 1, f.metrics.PointsUndone())

	_, err = f.svc.ReopenMatch(admin, matchID)
	assert.ErrorIs(t, err, model.ErrNotCompleted)

	playMatch(t, f.svc, matchID, model.SideTeam1, 2)
	_, err = f.svc.UndoLastPoint(admin, matchID)
	assert.ErrorIs(t, err, model.ErrMatchCompleted)
	assert.Equal(t, model.KindIllegalState, model.KindOf(err))

	reopened, err := f.svc.ReopenMatch(admin, matchID)
	require.NoError(t, err)
	assert.Equal(t, model.MatchLive, reopened.Match.Status)
	assert.Equal(t, 1, f.metrics.MatchesReopened())

	table, err := f.svc.GetStandings()
	require.NoError(t, err)
	for _, row := range table {
		assert.Equal(t, model.Tally{}, row.Tally)
	}
}

func TestReorderAndDeleteTeam(t *testing.T) {
	f := setupService(t)
	teams := addTeams(t, f.svc, "A", "B", "C")
	result, err := f.svc.GenerateSchedule(admin, nil, 3)
	require.NoError(t, err)
	require.Len(t, result.Matches, 3)

	assert.ErrorIs(t, f.svc.ReorderMatch(admin, result.Matches[0].ID, 0), model.ErrInvalidOrder)
	require.NoError(t, f.svc.ReorderMatch(admin, result.Matches[0].ID, 10))

	matches, err := f.svc.ListMatches()
	require.NoError(t, err)
	assert.Equal(t, result.Matches[0].ID, matches[2].ID)
	assert.Equal(t, result.Matches[1].ID, matches[0].ID)

	require.NoError(t, f.svc.DeleteTeam(admin, teams[0].ID))
	matches, err = f.svc.ListMatches()
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].Order)
	assert.NotEqual(t, teams[0].ID, matches[0].Team1ID)
	assert.NotEqual(t, teams[0].ID, matches[0].Team2ID)
}

func TestFindTeams(t *testing.T) {
	f := setupService(t)
	addTeams(t, f.svc, "Sharks", "Shark Attack", "Eagles")

	found, err := f.svc.FindTeams("shark")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Sharks", found[0].Name)

	found, err = f.svc.FindTeams("zebra")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSummary(t *testing.T) {
	f := setupService(t)
	addTeams(t, f.svc, "A", "B", "C")
	result, err := f.svc.GenerateSchedule(admin, nil, 3)
	require.NoError(t, err)

	playMatch(t, f.svc, result.Matches[0].ID, model.SideTeam1, 2)
	_, err = f.svc.RecordPoint(admin, result.Matches[1].ID, "team2")
	require.NoError(t, err)

	summary, err := f.svc.Summary()
	require.NoError(t, err)
	assert.Equal(t, Summary{
		Teams:            3,
		Matches:          3,
		PendingMatches:   1,
		LiveMatches:      1,
		CompletedMatches: 1,
		PointsPlayed:     51,
	}, summary)
}

func TestTeamsAddedInSameInstantListInCreationOrder(t *testing.T) {
	f := setupService(t)
	addTeams(t, f.svc, "Sharks", "Eagles")

	teams, err := f.svc.ListTeams()
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "Sharks", teams[0].Name)
	assert.Equal(t, "Eagles", teams[1].Name)

	result, err := f.svc.GenerateSchedule(admin, nil, 3)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, teams[0].ID, result.Matches[0].Team1ID)
	assert.Equal(t, teams[1].ID, result.Matches[0].Team2ID)
}

func TestUnknownMatchAllocatesNoLock(t *testing.T) {
	f := setupService(t)
	addTeams(t, f.svc, "Sharks", "Eagles")
	_, err := f.svc.GenerateSchedule(admin, nil, 3)
	require.NoError(t, err)

	_, err = f.svc.StartMatch(admin, "ghost")
	assert.ErrorIs(t, err, model.ErrMatchNotFound)
	_, err = f.svc.RecordPoint(admin, "ghost", "team1")
	assert.ErrorIs(t, err, model.ErrMatchNotFound)
	_, err = f.svc.UndoLastPoint(admin, "ghost")
	assert.ErrorIs(t, err, model.ErrMatchNotFound)
	_, err = f.svc.ReopenMatch(admin, "ghost")
	assert.ErrorIs(t, err, model.ErrMatchNotFound)

	assert.Equal(t, 0, f.svc.locks.size())

	// The regeneration lock must have been released on every failure.
	_, err = f.svc.GenerateSchedule(admin, nil, 3)
	require.NoError(t, err)
}

func TestConcurrentScoringAcrossMatches(t *testing.T) {
	f := setupService(t)
	addTeams(t, f.svc, "A", "B", "C", "D", "E", "F")
	result, err := f.svc.GenerateSchedule(admin, nil, 3)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, m := range result.Matches[:6] {
		for _, side := range []string{"team1", "team2"} {
			wg.Add(1)
			go func(matchID, side string) {
				defer wg.Done()
				for i := 0; i < 10; i++ {
					_, err := f.svc.RecordPoint(admin, matchID, side)
					assert.NoError(t, err)
				}
			}(m.ID, side)
		}
	}
	wg.Wait()

	for _, m := range result.Matches[:6] {
		detail, err := f.svc.GetMatchDetail(m.ID)
		require.NoError(t, err)
		require.Len(t, detail.Points, 20)
		require.Len(t, detail.Sets, 1)
		assert.Equal(t, 10, detail.Sets[0].ScoreTeam1)
		assert.Equal(t, 10, detail.Sets[0].ScoreTeam2)
		for i, p := range detail.Points {
			assert.Equal(t, i+1, p.Number, "points must be numbered without gaps")
		}
	}
	assert.Equal(t, 6, f.svc.locks.size())

	_, err = f.svc.GenerateSchedule(admin, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, f.svc.locks.size(), "regeneration drops the match locks")
}
