package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	pointsRecorded     int
	pointsUndone       int
	matchesCompleted   int
	matchesReopened    int
	schedulesGenerated int
	scheduleWarnings   int
	standingsDurations []float64
	slackNotifSent     int
	slackNotifFailed   int
	startupTime        float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		standingsDurations: make([]float64, 0),
	}
}

func (m *Mock) IncPointsRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pointsRecorded++
}

func (m *Mock) IncPointsUndone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pointsUndone++
}

func (m *Mock) IncMatchesCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCompleted++
}

func (m *Mock) IncMatchesReopened() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesReopened++
}

func (m *Mock) IncSchedulesGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedulesGenerated++
}

func (m *Mock) IncScheduleRestWarnings() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduleWarnings++
}

func (m *Mock) ObserveStandingsDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.standingsDurations = append(m.standingsDurations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// PointsRecorded returns the number of times IncPointsRecorded was called.
func (m *Mock) PointsRecorded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pointsRecorded
}

// PointsUndone returns the number of times IncPointsUndone was called.
func (m *Mock) PointsUndone() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pointsUndone
}

// MatchesCompleted returns the number of times IncMatchesCompleted was called.
func (m *Mock) MatchesCompleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCompleted
}

func (m *Mock) MatchesReopened() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesReopened
}

func (m *Mock) SchedulesGenerated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.schedulesGenerated
}

func (m *Mock) ScheduleWarnings() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scheduleWarnings
}

// StandingsObservations returns how many standings durations were observed.
func (m *Mock) StandingsObservations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.standingsDurations)
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
