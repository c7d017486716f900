package store_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mauv0809/volley-tournament/internal/database"
	"github.com/mauv0809/volley-tournament/internal/model"
	"github.com/mauv0809/volley-tournament/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// forEachStore runs test against a migrated in-memory SQLite database and
// against the map-backed store.
func forEachStore(t *testing.T, test func(t *testing.T, s store.Store)) {
	t.Helper()

	t.Run("sqlite", func(t *testing.T) {
		db, teardown, err := database.InitDB(":memory:", "", "")
		require.NoError(t, err)
		defer teardown()
		test(t, store.New(db))
	})
	t.Run("memory", func(t *testing.T) {
		test(t, store.NewMemoryStore())
	})
}

var epoch = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func seedTeams(t *testing.T, s store.Store, names ...string) []model.Team {
	t.Helper()
	teams := make([]model.Team, len(names))
	for i, name := range names {
		teams[i] = model.Team{ID: fmt.Sprintf("t%d", i+1), Name: name, CreatedAt: epoch.Add(time.Duration(i) * time.Second)}
		require.NoError(t, s.SaveTeam(teams[i]))
	}
	return teams
}

func seedMatches(t *testing.T, s store.Store, pairs ...[2]string) []model.Match {
	t.Helper()
	matches := make([]model.Match, len(pairs))
	for i, p := range pairs {
		matches[i] = model.Match{
			ID:      fmt.Sprintf("m%d", i+1),
			Team1ID: p[0],
			Team2ID: p[1],
			Order:   i + 1,
			Format:  model.FormatBestOf3,
			Status:  model.MatchPending,
		}
	}
	require.NoError(t, s.ReplaceAllMatches(matches))
	return matches
}

func orderOf(t *testing.T, s store.Store) []string {
	t.Helper()
	matches, err := s.ListMatches()
	require.NoError(t, err)
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
		assert.Equal(t, i+1, m.Order, "match %s", m.ID)
	}
	return ids
}

func TestTeams(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		seedTeams(t, s, "Sharks", "Eagles")

		teams, err := s.LoadTeams()
		require.NoError(t, err)
		require.Len(t, teams, 2)
		assert.Equal(t, "Sharks", teams[0].Name)
		assert.Equal(t, "Eagles", teams[1].Name)
		assert.True(t, epoch.Equal(teams[0].CreatedAt))

		err = s.SaveTeam(model.Team{ID: "t3", Name: "sharks", CreatedAt: epoch})
		assert.ErrorIs(t, err, model.ErrDuplicateTeam)

		_, err = s.GetTeam("missing")
		assert.ErrorIs(t, err, model.ErrTeamNotFound)
	})
}

func TestTeamsSharingTimestampKeepInsertionOrder(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		for i, name := range []string{"Sharks", "Eagles", "Bears"} {
			team := model.Team{ID: fmt.Sprintf("t%d", i+1), Name: name, CreatedAt: epoch}
			require.NoError(t, s.SaveTeam(team))
		}

		teams, err := s.LoadTeams()
		require.NoError(t, err)
		require.Len(t, teams, 3)
		assert.Equal(t, "Sharks", teams[0].Name)
		assert.Equal(t, "Eagles", teams[1].Name)
		assert.Equal(t, "Bears", teams[2].Name)

		require.NoError(t, s.SaveTeam(model.Team{ID: "t1", Name: "Great Sharks", CreatedAt: epoch}))
		teams, err = s.LoadTeams()
		require.NoError(t, err)
		assert.Equal(t, "Great Sharks", teams[0].Name, "renaming keeps the original position")
	})
}

func TestApplyAndResetTallies(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		seedTeams(t, s, "Sharks")

		delta := model.Tally{Wins: 1, SetsWon: 2, SetsLost: 1, PointsWon: 70, PointsLost: 60}
		require.NoError(t, s.ApplyTally("t1", delta))
		require.NoError(t, s.ApplyTally("t1", delta))

		team, err := s.GetTeam("t1")
		require.NoError(t, err)
		assert.Equal(t, delta.Add(delta), team.Tally)

		require.NoError(t, s.ApplyTally("t1", delta.Negate()))
		team, err = s.GetTeam("t1")
		require.NoError(t, err)
		assert.Equal(t, delta, team.Tally)

		require.NoError(t, s.ResetTallies())
		team, err = s.GetTeam("t1")
		require.NoError(t, err)
		assert.Equal(t, model.Tally{}, team.Tally)

		assert.ErrorIs(t, s.ApplyTally("missing", delta), model.ErrTeamNotFound)
	})
}

func TestMatchesSetsAndPoints(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		seedTeams(t, s, "A", "B", "C")
		seedMatches(t, s, [2]string{"t1", "t2"}, [2]string{"t2", "t3"})

		_, err := s.LoadMatch("missing")
		assert.ErrorIs(t, err, model.ErrMatchNotFound)

		started := epoch.Add(time.Minute)
		match, err := s.LoadMatch("m1")
		require.NoError(t, err)
		match.Status = model.MatchLive
		match.StartedAt = &started
		match.Order = 99
		require.NoError(t, s.UpdateMatch(match))

		match, err = s.LoadMatch("m1")
		require.NoError(t, err)
		assert.Equal(t, model.MatchLive, match.Status)
		assert.Equal(t, 1, match.Order, "UpdateMatch must not move the match")
		require.NotNil(t, match.StartedAt)
		assert.True(t, started.Equal(*match.StartedAt))

		set := model.Set{ID: "s1", MatchID: "m1", Number: 1, ScoreTeam1: 1}
		require.NoError(t, s.UpsertSet(set))
		set.ScoreTeam1 = 2
		require.NoError(t, s.UpsertSet(set))
		require.NoError(t, s.UpsertSet(model.Set{ID: "s2", MatchID: "m1", Number: 2}))

		sets, err := s.ListSets("m1")
		require.NoError(t, err)
		require.Len(t, sets, 2)
		assert.Equal(t, 2, sets[0].ScoreTeam1)
		assert.Equal(t, 2, sets[1].Number)

		for i, p := range []model.Point{
			{ID: "p3", SetNumber: 2, Number: 1, Scorer: model.SideTeam2, ScoreTeam2: 1},
			{ID: "p1", SetNumber: 1, Number: 1, Scorer: model.SideTeam1, ScoreTeam1: 1},
			{ID: "p2", SetNumber: 1, Number: 2, Scorer: model.SideTeam1, ScoreTeam1: 2},
		} {
			p.MatchID = "m1"
			p.RecordedAt = epoch.Add(time.Duration(i) * time.Second)
			require.NoError(t, s.InsertPoint(p))
		}

		points, err := s.ListPoints("m1", 0)
		require.NoError(t, err)
		require.Len(t, points, 3)
		assert.Equal(t, []string{"p1", "p2", "p3"}, []string{points[0].ID, points[1].ID, points[2].ID})

		points, err = s.ListPoints("m1", 1)
		require.NoError(t, err)
		assert.Len(t, points, 2)

		require.NoError(t, s.DeletePoint("p3"))
		require.NoError(t, s.DeleteSet("s2"))
		points, err = s.ListPoints("m1", 0)
		require.NoError(t, err)
		assert.Len(t, points, 2)
		sets, err = s.ListSets("m1")
		require.NoError(t, err)
		assert.Len(t, sets, 1)

		// Regeneration wipes everything below the matches.
		seedMatches(t, s, [2]string{"t1", "t3"})
		sets, err = s.ListSets("m1")
		require.NoError(t, err)
		assert.Empty(t, sets)
		points, err = s.ListPoints("m1", 0)
		require.NoError(t, err)
		assert.Empty(t, points)
		match, err = s.LoadMatch("m1")
		require.NoError(t, err)
		assert.Equal(t, "t3", match.Team2ID)
		assert.Equal(t, model.MatchPending, match.Status)
	})
}

func TestReorderMatch(t *testing.T) {
	testCases := []struct {
		name     string
		id       string
		newOrder int
		expected []string
	}{
		{"move later", "m1", 3, []string{"m2", "m3", "m1", "m4"}},
		{"move earlier", "m4", 2, []string{"m1", "m4", "m2", "m3"}},
		{"same position", "m2", 2, []string{"m1", "m2", "m3", "m4"}},
		{"clamped high", "m2", 40, []string{"m1", "m3", "m4", "m2"}},
		{"clamped low", "m3", -5, []string{"m3", "m1", "m2", "m4"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			forEachStore(t, func(t *testing.T, s store.Store) {
				seedTeams(t, s, "A", "B", "C", "D")
				seedMatches(t, s,
					[2]string{"t1", "t2"}, [2]string{"t3", "t4"},
					[2]string{"t1", "t3"}, [2]string{"t2", "t4"})

				require.NoError(t, s.ReorderMatch(tc.id, tc.newOrder))
				assert.Equal(t, tc.expected, orderOf(t, s))
			})
		})
	}

	forEachStore(t, func(t *testing.T, s store.Store) {
		assert.ErrorIs(t, s.ReorderMatch("missing", 1), model.ErrMatchNotFound)
	})
}

func TestDeleteTeamCascadesAndCompacts(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		seedTeams(t, s, "A", "B", "C")
		seedMatches(t, s, [2]string{"t1", "t2"}, [2]string{"t2", "t3"}, [2]string{"t1", "t3"})
		require.NoError(t, s.UpsertSet(model.Set{ID: "s1", MatchID: "m1", Number: 1}))
		require.NoError(t, s.InsertPoint(model.Point{ID: "p1", MatchID: "m1", SetNumber: 1, Number: 1, Scorer: model.SideTeam1, ScoreTeam1: 1, RecordedAt: epoch}))

		require.NoError(t, s.DeleteTeam("t2"))

		assert.Equal(t, []string{"m3"}, orderOf(t, s))
		sets, err := s.ListSets("m1")
		require.NoError(t, err)
		assert.Empty(t, sets)
		points, err := s.ListPoints("m1", 0)
		require.NoError(t, err)
		assert.Empty(t, points)

		assert.ErrorIs(t, s.DeleteTeam("t2"), model.ErrTeamNotFound)
	})
}

func TestRunInTxRollsBack(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		seedTeams(t, s, "A")
		boom := errors.New("boom")

		err := s.RunInTx(func(tx store.Store) error {
			require.NoError(t, tx.ApplyTally("t1", model.Tally{Wins: 1}))
			require.NoError(t, tx.SaveTeam(model.Team{ID: "t2", Name: "B", CreatedAt: epoch}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		teams, err := s.LoadTeams()
		require.NoError(t, err)
		require.Len(t, teams, 1)
		assert.Equal(t, model.Tally{}, teams[0].Tally)

		err = s.RunInTx(func(tx store.Store) error {
			return tx.ApplyTally("t1", model.Tally{Wins: 1})
		})
		require.NoError(t, err)
		team, err := s.GetTeam("t1")
		require.NoError(t, err)
		assert.Equal(t, 1, team.Wins)
	})
}
