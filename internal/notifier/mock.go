package notifier

import (
	"sync"

	"github.com/mauv0809/volley-tournament/internal/pubsub"
	"github.com/mauv0809/volley-tournament/internal/standings"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendMatchResultCalls []pubsub.MatchEvent
	SendStandingsCalls   [][]standings.RankedTeam

	// Spies
	SendMatchResultFunc func(event pubsub.MatchEvent, dryRun bool) error
	SendStandingsFunc   func(table []standings.RankedTeam, dryRun bool) error

	FormatStandingsResponseFunc    func(table []standings.RankedTeam) (any, error)
	FormatTeamStandingResponseFunc func(row standings.RankedTeam, query string) (any, error)
	FormatTeamNotFoundResponseFunc func(query string) (any, error)

	// Last responses handed out by the format functions
	LastStandingsResponse    []standings.RankedTeam
	LastTeamStandingQuery    string
	LastTeamNotFoundResponse string
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchResultCalls = nil
	m.SendStandingsCalls = nil
	m.LastStandingsResponse = nil
	m.LastTeamStandingQuery = ""
	m.LastTeamNotFoundResponse = ""
}

func (m *Mock) SendMatchResult(event pubsub.MatchEvent, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchResultCalls = append(m.SendMatchResultCalls, event)
	if m.SendMatchResultFunc != nil {
		return m.SendMatchResultFunc(event, dryRun)
	}
	return nil
}

func (m *Mock) SendStandings(table []standings.RankedTeam, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStandingsCalls = append(m.SendStandingsCalls, table)
	if m.SendStandingsFunc != nil {
		return m.SendStandingsFunc(table, dryRun)
	}
	return nil
}

func (m *Mock) FormatStandingsResponse(table []standings.RankedTeam) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastStandingsResponse = table
	if m.FormatStandingsResponseFunc != nil {
		return m.FormatStandingsResponseFunc(table)
	}
	return "formatted_standings", nil
}

func (m *Mock) FormatTeamStandingResponse(row standings.RankedTeam, query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastTeamStandingQuery = query
	if m.FormatTeamStandingResponseFunc != nil {
		return m.FormatTeamStandingResponseFunc(row, query)
	}
	return "formatted_team_standing", nil
}

func (m *Mock) FormatTeamNotFoundResponse(query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastTeamNotFoundResponse = query
	if m.FormatTeamNotFoundResponseFunc != nil {
		return m.FormatTeamNotFoundResponseFunc(query)
	}
	return "formatted_team_not_found", nil
}
