package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/mauv0809/volley-tournament/internal/model"
)

type memoryData struct {
	teams   map[string]model.Team
	matches map[string]model.Match
	sets    map[string]model.Set
	points  map[string]model.Point
	// teamSeq records insertion order for teams sharing a timestamp.
	teamSeq map[string]uint64
	nextSeq uint64
}

func newMemoryData() *memoryData {
	return &memoryData{
		teams:   make(map[string]model.Team),
		matches: make(map[string]model.Match),
		sets:    make(map[string]model.Set),
		points:  make(map[string]model.Point),
		teamSeq: make(map[string]uint64),
	}
}

func (d *memoryData) clone() *memoryData {
	cp := newMemoryData()
	for k, v := range d.teams {
		cp.teams[k] = v
	}
	for k, v := range d.matches {
		cp.matches[k] = v
	}
	for k, v := range d.sets {
		cp.sets[k] = v
	}
	for k, v := range d.points {
		cp.points[k] = v
	}
	for k, v := range d.teamSeq {
		cp.teamSeq[k] = v
	}
	cp.nextSeq = d.nextSeq
	return cp
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps the tournament in maps. Transactions work on a copy
// that replaces the live data on commit.
type MemoryStore struct {
	mu   *sync.RWMutex
	data *memoryData
	inTx bool
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu:   &sync.RWMutex{},
		data: newMemoryData(),
	}
}

func (s *MemoryStore) rlock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) RunInTx(fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &MemoryStore{mu: s.mu, data: s.data.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *MemoryStore) LoadTeams() ([]model.Team, error) {
	defer s.rlock()()

	teams := make([]model.Team, 0, len(s.data.teams))
	for _, t := range s.data.teams {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool {
		if !teams[i].CreatedAt.Equal(teams[j].CreatedAt) {
			return teams[i].CreatedAt.Before(teams[j].CreatedAt)
		}
		return s.data.teamSeq[teams[i].ID] < s.data.teamSeq[teams[j].ID]
	})
	return teams, nil
}

func (s *MemoryStore) GetTeam(id string) (model.Team, error) {
	defer s.rlock()()

	t, ok := s.data.teams[id]
	if !ok {
		return model.Team{}, model.ErrTeamNotFound
	}
	return t, nil
}

func (s *MemoryStore) SaveTeam(team model.Team) error {
	defer s.lock()()

	for _, t := range s.data.teams {
		if t.ID != team.ID && strings.EqualFold(t.Name, team.Name) {
			return model.ErrDuplicateTeam.WithMessage("team %q already exists", team.Name)
		}
	}
	if existing, ok := s.data.teams[team.ID]; ok {
		existing.Name = team.Name
		s.data.teams[team.ID] = existing
		return nil
	}
	// Tallies only change through ApplyTally.
	team.Tally = model.Tally{}
	s.data.teams[team.ID] = team
	s.data.nextSeq++
	s.data.teamSeq[team.ID] = s.data.nextSeq
	return nil
}

func (s *MemoryStore) DeleteTeam(id string) error {
	return s.RunInTx(func(tx Store) error {
		d := tx.(*MemoryStore).data
		if _, ok := d.teams[id]; !ok {
			return model.ErrTeamNotFound
		}
		delete(d.teams, id)
		delete(d.teamSeq, id)
		for matchID, m := range d.matches {
			if m.Team1ID == id || m.Team2ID == id {
				d.deleteMatch(matchID)
			}
		}
		for i, m := range d.orderedMatches() {
			m.Order = i + 1
			d.matches[m.ID] = m
		}
		return nil
	})
}

func (s *MemoryStore) ApplyTally(teamID string, delta model.Tally) error {
	defer s.lock()()

	t, ok := s.data.teams[teamID]
	if !ok {
		return model.ErrTeamNotFound
	}
	t.Tally = t.Tally.Add(delta)
	s.data.teams[teamID] = t
	return nil
}

func (s *MemoryStore) ResetTallies() error {
	defer s.lock()()

	for id, t := range s.data.teams {
		t.Tally = model.Tally{}
		s.data.teams[id] = t
	}
	return nil
}

func (s *MemoryStore) LoadMatch(id string) (model.Match, error) {
	defer s.rlock()()

	m, ok := s.data.matches[id]
	if !ok {
		return model.Match{}, model.ErrMatchNotFound
	}
	return m, nil
}

func (s *MemoryStore) ListMatches() ([]model.Match, error) {
	defer s.rlock()()

	return s.data.orderedMatches(), nil
}

func (s *MemoryStore) ReplaceAllMatches(matches []model.Match) error {
	return s.RunInTx(func(tx Store) error {
		d := tx.(*MemoryStore).data
		d.matches = make(map[string]model.Match, len(matches))
		d.sets = make(map[string]model.Set)
		d.points = make(map[string]model.Point)
		for _, m := range matches {
			d.matches[m.ID] = m
		}
		return nil
	})
}

func (s *MemoryStore) UpdateMatch(match model.Match) error {
	defer s.lock()()

	existing, ok := s.data.matches[match.ID]
	if !ok {
		return model.ErrMatchNotFound
	}
	existing.Status = match.Status
	existing.SetsTeam1 = match.SetsTeam1
	existing.SetsTeam2 = match.SetsTeam2
	existing.WinnerID = match.WinnerID
	existing.StartedAt = match.StartedAt
	existing.CompletedAt = match.CompletedAt
	existing.TallyApplied = match.TallyApplied
	s.data.matches[match.ID] = existing
	return nil
}

func (s *MemoryStore) ReorderMatch(id string, newOrder int) error {
	return s.RunInTx(func(tx Store) error {
		d := tx.(*MemoryStore).data
		target, ok := d.matches[id]
		if !ok {
			return model.ErrMatchNotFound
		}
		oldOrder := target.Order
		newOrder = clampOrder(newOrder, len(d.matches))
		for matchID, m := range d.matches {
			switch {
			case newOrder > oldOrder && m.Order > oldOrder && m.Order <= newOrder:
				m.Order--
			case newOrder < oldOrder && m.Order >= newOrder && m.Order < oldOrder:
				m.Order++
			default:
				continue
			}
			d.matches[matchID] = m
		}
		target.Order = newOrder
		d.matches[id] = target
		return nil
	})
}

func (s *MemoryStore) ListSets(matchID string) ([]model.Set, error) {
	defer s.rlock()()

	var sets []model.Set
	for _, set := range s.data.sets {
		if set.MatchID == matchID {
			sets = append(sets, set)
		}
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].Number < sets[j].Number })
	return sets, nil
}

func (s *MemoryStore) UpsertSet(set model.Set) error {
	defer s.lock()()

	s.data.sets[set.ID] = set
	return nil
}

func (s *MemoryStore) DeleteSet(id string) error {
	defer s.lock()()

	delete(s.data.sets, id)
	return nil
}

func (s *MemoryStore) ListPoints(matchID string, setNumber int) ([]model.Point, error) {
	defer s.rlock()()

	var points []model.Point
	for _, p := range s.data.points {
		if p.MatchID == matchID && (setNumber == 0 || p.SetNumber == setNumber) {
			points = append(points, p)
		}
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].SetNumber != points[j].SetNumber {
			return points[i].SetNumber < points[j].SetNumber
		}
		return points[i].Number < points[j].Number
	})
	return points, nil
}

func (s *MemoryStore) InsertPoint(point model.Point) error {
	defer s.lock()()

	s.data.points[point.ID] = point
	return nil
}

func (s *MemoryStore) DeletePoint(id string) error {
	defer s.lock()()

	delete(s.data.points, id)
	return nil
}

func (d *memoryData) orderedMatches() []model.Match {
	matches := make([]model.Match, 0, len(d.matches))
	for _, m := range d.matches {
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Order != matches[j].Order {
			return matches[i].Order < matches[j].Order
		}
		return matches[i].ID < matches[j].ID
	})
	return matches
}

func (d *memoryData) deleteMatch(id string) {
	delete(d.matches, id)
	for setID, set := range d.sets {
		if set.MatchID == id {
			delete(d.sets, setID)
		}
	}
	for pointID, p := range d.points {
		if p.MatchID == id {
			delete(d.points, pointID)
		}
	}
}
