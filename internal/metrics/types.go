package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	PointsRecorded     prometheus.Counter
	PointsUndone       prometheus.Counter
	MatchesCompleted   prometheus.Counter
	MatchesReopened    prometheus.Counter
	SchedulesGenerated prometheus.Counter
	ScheduleWarnings   prometheus.Counter
	StandingsDuration  prometheus.Histogram
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}

// Keys of the persisted activity counters.
const (
	KeyPointsRecorded     = "points_recorded"
	KeyPointsUndone       = "points_undone"
	KeyMatchesCompleted   = "matches_completed"
	KeyMatchesReopened    = "matches_reopened"
	KeySchedulesGenerated = "schedules_generated"
)
