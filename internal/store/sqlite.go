package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-sqlite3"
	"github.com/mauv0809/volley-tournament/internal/model"
)

// querier is the subset shared by *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// store handles all database operations of the tournament.
type store struct {
	db   *sql.DB
	q    querier
	mu   *sync.RWMutex
	inTx bool
}

// New creates a Store backed by db. The schema must already be migrated.
func New(db *sql.DB) Store {
	return &store{
		db: db,
		q:  db,
		mu: &sync.RWMutex{},
	}
}

func (s *store) rlock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// RunInTx holds the write lock for the whole transaction, so readers only
// ever observe committed state.
func (s *store) RunInTx(fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return model.Persistence(fmt.Errorf("begin transaction: %w", err))
	}
	txStore := &store{db: s.db, q: tx, mu: s.mu, inTx: true}
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return model.Persistence(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// LoadTeams returns all teams in creation order.
func (s *store) LoadTeams() ([]model.Team, error) {
	defer s.rlock()()

	rows, err := s.q.Query(`
		SELECT id, name, created_at, wins, losses, sets_won, sets_lost, points_won, points_lost
		FROM teams
		ORDER BY created_at, rowid`)
	if err != nil {
		return nil, model.Persistence(fmt.Errorf("query teams: %w", err))
	}
	defer rows.Close()

	var teams []model.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, model.Persistence(fmt.Errorf("scan team: %w", err))
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Persistence(err)
	}
	return teams, nil
}

func (s *store) GetTeam(id string) (model.Team, error) {
	defer s.rlock()()

	row := s.q.QueryRow(`
		SELECT id, name, created_at, wins, losses, sets_won, sets_lost, points_won, points_lost
		FROM teams WHERE id = ?`, id)
	team, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Team{}, model.ErrTeamNotFound
	}
	if err != nil {
		return model.Team{}, model.Persistence(fmt.Errorf("get team %s: %w", id, err))
	}
	return team, nil
}

func (s *store) SaveTeam(team model.Team) error {
	defer s.lock()()

	_, err := s.q.Exec(`
		INSERT INTO teams (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		team.ID, team.Name, team.CreatedAt.UnixNano())
	if isUniqueViolation(err) {
		return model.ErrDuplicateTeam.WithMessage("team %q already exists", team.Name)
	}
	if err != nil {
		return model.Persistence(fmt.Errorf("save team %s: %w", team.ID, err))
	}
	log.Debug("Saved team", "teamID", team.ID, "name", team.Name)
	return nil
}

func (s *store) DeleteTeam(id string) error {
	return s.RunInTx(func(tx Store) error {
		t := tx.(*store)
		const teamMatches = `SELECT id FROM matches WHERE team1_id = ? OR team2_id = ?`
		for _, stmt := range []string{
			`DELETE FROM match_points WHERE match_id IN (` + teamMatches + `)`,
			`DELETE FROM match_sets WHERE match_id IN (` + teamMatches + `)`,
			`DELETE FROM matches WHERE id IN (` + teamMatches + `)`,
		} {
			if _, err := t.q.Exec(stmt, id, id); err != nil {
				return model.Persistence(fmt.Errorf("delete matches of team %s: %w", id, err))
			}
		}
		res, err := t.q.Exec(`DELETE FROM teams WHERE id = ?`, id)
		if err != nil {
			return model.Persistence(fmt.Errorf("delete team %s: %w", id, err))
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return model.ErrTeamNotFound
		}
		return t.compactOrder()
	})
}

// compactOrder renumbers matches 1..n keeping their relative order.
func (s *store) compactOrder() error {
	rows, err := s.q.Query(`SELECT id FROM matches ORDER BY match_order, id`)
	if err != nil {
		return model.Persistence(fmt.Errorf("query match order: %w", err))
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return model.Persistence(fmt.Errorf("scan match id: %w", err))
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return model.Persistence(err)
	}

	for i, id := range ids {
		if _, err := s.q.Exec(`UPDATE matches SET match_order = ? WHERE id = ?`, i+1, id); err != nil {
			return model.Persistence(fmt.Errorf("renumber match %s: %w", id, err))
		}
	}
	return nil
}

func (s *store) ApplyTally(teamID string, delta model.Tally) error {
	defer s.lock()()

	res, err := s.q.Exec(`
		UPDATE teams SET
			wins = wins + ?, losses = losses + ?,
			sets_won = sets_won + ?, sets_lost = sets_lost + ?,
			points_won = points_won + ?, points_lost = points_lost + ?
		WHERE id = ?`,
		delta.Wins, delta.Losses, delta.SetsWon, delta.SetsLost, delta.PointsWon, delta.PointsLost, teamID)
	if err != nil {
		return model.Persistence(fmt.Errorf("apply tally to %s: %w", teamID, err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrTeamNotFound
	}
	return nil
}

func (s *store) ResetTallies() error {
	defer s.lock()()

	_, err := s.q.Exec(`UPDATE teams SET wins = 0, losses = 0, sets_won = 0, sets_lost = 0, points_won = 0, points_lost = 0`)
	if err != nil {
		return model.Persistence(fmt.Errorf("reset tallies: %w", err))
	}
	return nil
}

const matchColumns = `id, team1_id, team2_id, match_order, match_format, status, sets_team1, sets_team2, winner_id, started_at, completed_at, tally_applied`

func (s *store) LoadMatch(id string) (model.Match, error) {
	defer s.rlock()()

	match, err := scanMatch(s.q.QueryRow(`SELECT `+matchColumns+` FROM matches WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Match{}, model.ErrMatchNotFound
	}
	if err != nil {
		return model.Match{}, model.Persistence(fmt.Errorf("load match %s: %w", id, err))
	}
	return match, nil
}

func (s *store) ListMatches() ([]model.Match, error) {
	defer s.rlock()()

	rows, err := s.q.Query(`SELECT ` + matchColumns + ` FROM matches ORDER BY match_order, id`)
	if err != nil {
		return nil, model.Persistence(fmt.Errorf("query matches: %w", err))
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, model.Persistence(fmt.Errorf("scan match: %w", err))
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Persistence(err)
	}
	return matches, nil
}

func (s *store) ReplaceAllMatches(matches []model.Match) error {
	return s.RunInTx(func(tx Store) error {
		t := tx.(*store)
		for _, table := range []string{"match_points", "match_sets", "matches"} {
			if _, err := t.q.Exec(`DELETE FROM ` + table); err != nil {
				return model.Persistence(fmt.Errorf("wipe %s: %w", table, err))
			}
		}
		for _, m := range matches {
			_, err := t.q.Exec(`INSERT INTO matches (`+matchColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				m.ID, m.Team1ID, m.Team2ID, m.Order, m.Format, string(m.Status), m.SetsTeam1, m.SetsTeam2,
				nullString(m.WinnerID), nullTime(m.StartedAt), nullTime(m.CompletedAt), m.TallyApplied)
			if err != nil {
				return model.Persistence(fmt.Errorf("insert match %s: %w", m.ID, err))
			}
		}
		log.Debug("Replaced all matches", "count", len(matches))
		return nil
	})
}

func (s *store) UpdateMatch(m model.Match) error {
	defer s.lock()()

	res, err := s.q.Exec(`
		UPDATE matches SET
			status = ?, sets_team1 = ?, sets_team2 = ?, winner_id = ?,
			started_at = ?, completed_at = ?, tally_applied = ?
		WHERE id = ?`,
		string(m.Status), m.SetsTeam1, m.SetsTeam2, nullString(m.WinnerID),
		nullTime(m.StartedAt), nullTime(m.CompletedAt), m.TallyApplied, m.ID)
	if err != nil {
		return model.Persistence(fmt.Errorf("update match %s: %w", m.ID, err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrMatchNotFound
	}
	return nil
}

func (s *store) ReorderMatch(id string, newOrder int) error {
	return s.RunInTx(func(tx Store) error {
		t := tx.(*store)
		var oldOrder, count int
		err := t.q.QueryRow(`SELECT match_order, (SELECT COUNT(*) FROM matches) FROM matches WHERE id = ?`, id).Scan(&oldOrder, &count)
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrMatchNotFound
		}
		if err != nil {
			return model.Persistence(fmt.Errorf("load order of match %s: %w", id, err))
		}

		newOrder = clampOrder(newOrder, count)
		switch {
		case newOrder > oldOrder:
			_, err = t.q.Exec(`UPDATE matches SET match_order = match_order - 1 WHERE match_order > ? AND match_order <= ?`, oldOrder, newOrder)
		case newOrder < oldOrder:
			_, err = t.q.Exec(`UPDATE matches SET match_order = match_order + 1 WHERE match_order >= ? AND match_order < ?`, newOrder, oldOrder)
		default:
			return nil
		}
		if err != nil {
			return model.Persistence(fmt.Errorf("shift matches: %w", err))
		}
		if _, err = t.q.Exec(`UPDATE matches SET match_order = ? WHERE id = ?`, newOrder, id); err != nil {
			return model.Persistence(fmt.Errorf("move match %s: %w", id, err))
		}
		return nil
	})
}

func (s *store) ListSets(matchID string) ([]model.Set, error) {
	defer s.rlock()()

	rows, err := s.q.Query(`
		SELECT id, match_id, set_number, score_team1, score_team2, winner, completed_at
		FROM match_sets WHERE match_id = ? ORDER BY set_number`, matchID)
	if err != nil {
		return nil, model.Persistence(fmt.Errorf("query sets of %s: %w", matchID, err))
	}
	defer rows.Close()

	var sets []model.Set
	for rows.Next() {
		var (
			set         model.Set
			winner      sql.NullString
			completedAt sql.NullInt64
		)
		if err := rows.Scan(&set.ID, &set.MatchID, &set.Number, &set.ScoreTeam1, &set.ScoreTeam2, &winner, &completedAt); err != nil {
			return nil, model.Persistence(fmt.Errorf("scan set: %w", err))
		}
		set.Winner = model.Side(winner.String)
		set.CompletedAt = timeFromNull(completedAt)
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Persistence(err)
	}
	return sets, nil
}

func (s *store) UpsertSet(set model.Set) error {
	defer s.lock()()

	_, err := s.q.Exec(`
		INSERT INTO match_sets (id, match_id, set_number, score_team1, score_team2, winner, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			score_team1 = excluded.score_team1,
			score_team2 = excluded.score_team2,
			winner = excluded.winner,
			completed_at = excluded.completed_at`,
		set.ID, set.MatchID, set.Number, set.ScoreTeam1, set.ScoreTeam2, nullString(string(set.Winner)), nullTime(set.CompletedAt))
	if err != nil {
		return model.Persistence(fmt.Errorf("upsert set %d of %s: %w", set.Number, set.MatchID, err))
	}
	return nil
}

func (s *store) DeleteSet(id string) error {
	defer s.lock()()

	if _, err := s.q.Exec(`DELETE FROM match_sets WHERE id = ?`, id); err != nil {
		return model.Persistence(fmt.Errorf("delete set %s: %w", id, err))
	}
	return nil
}

func (s *store) ListPoints(matchID string, setNumber int) ([]model.Point, error) {
	defer s.rlock()()

	query := `
		SELECT id, match_id, set_number, point_number, scorer, score_team1, score_team2, recorded_at
		FROM match_points WHERE match_id = ?`
	args := []any{matchID}
	if setNumber > 0 {
		query += ` AND set_number = ?`
		args = append(args, setNumber)
	}
	query += ` ORDER BY set_number, point_number`

	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, model.Persistence(fmt.Errorf("query points of %s: %w", matchID, err))
	}
	defer rows.Close()

	var points []model.Point
	for rows.Next() {
		var (
			p          model.Point
			scorer     string
			recordedAt int64
		)
		if err := rows.Scan(&p.ID, &p.MatchID, &p.SetNumber, &p.Number, &scorer, &p.ScoreTeam1, &p.ScoreTeam2, &recordedAt); err != nil {
			return nil, model.Persistence(fmt.Errorf("scan point: %w", err))
		}
		p.Scorer = model.Side(scorer)
		p.RecordedAt = time.Unix(0, recordedAt).UTC()
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Persistence(err)
	}
	return points, nil
}

func (s *store) InsertPoint(p model.Point) error {
	defer s.lock()()

	_, err := s.q.Exec(`
		INSERT INTO match_points (id, match_id, set_number, point_number, scorer, score_team1, score_team2, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.MatchID, p.SetNumber, p.Number, string(p.Scorer), p.ScoreTeam1, p.ScoreTeam2, p.RecordedAt.UnixNano())
	if err != nil {
		return model.Persistence(fmt.Errorf("insert point %d of set %d: %w", p.Number, p.SetNumber, err))
	}
	return nil
}

func (s *store) DeletePoint(id string) error {
	defer s.lock()()

	if _, err := s.q.Exec(`DELETE FROM match_points WHERE id = ?`, id); err != nil {
		return model.Persistence(fmt.Errorf("delete point %s: %w", id, err))
	}
	return nil
}

func scanTeam(scanner interface{ Scan(...any) error }) (model.Team, error) {
	var (
		team      model.Team
		createdAt int64
	)
	err := scanner.Scan(&team.ID, &team.Name, &createdAt,
		&team.Wins, &team.Losses, &team.SetsWon, &team.SetsLost, &team.PointsWon, &team.PointsLost)
	if err != nil {
		return model.Team{}, err
	}
	team.CreatedAt = time.Unix(0, createdAt).UTC()
	return team, nil
}

func scanMatch(scanner interface{ Scan(...any) error }) (model.Match, error) {
	var (
		m                      model.Match
		status                 string
		winnerID               sql.NullString
		startedAt, completedAt sql.NullInt64
	)
	err := scanner.Scan(&m.ID, &m.Team1ID, &m.Team2ID, &m.Order, &m.Format, &status,
		&m.SetsTeam1, &m.SetsTeam2, &winnerID, &startedAt, &completedAt, &m.TallyApplied)
	if err != nil {
		return model.Match{}, err
	}
	m.Status = model.MatchStatus(status)
	m.WinnerID = winnerID.String
	m.StartedAt = timeFromNull(startedAt)
	m.CompletedAt = timeFromNull(completedAt)
	return m, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	// libSQL reports constraint failures as plain text.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func timeFromNull(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(0, v.Int64).UTC()
	return &t
}
