package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		PointsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "volley_points_recorded_total",
			Help: "The total number of rallies recorded.",
		}),
		PointsUndone: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "volley_points_undone_total",
			Help: "The total number of recorded rallies that were undone.",
		}),
		MatchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "volley_matches_completed_total",
			Help: "The total number of matches that reached a winner.",
		}),
		MatchesReopened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "volley_matches_reopened_total",
			Help: "The total number of completed matches taken back to live.",
		}),
		SchedulesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "volley_schedules_generated_total",
			Help: "The total number of schedule regenerations.",
		}),
		ScheduleWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "volley_schedule_rest_warnings_total",
			Help: "The total number of schedules with back-to-back matches.",
		}),
		StandingsDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "volley_standings_duration_seconds",
			Help:    "The duration of a standings computation.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "volley_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "volley_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "volley_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.PointsRecorded,
		s.PointsUndone,
		s.MatchesCompleted,
		s.MatchesReopened,
		s.SchedulesGenerated,
		s.ScheduleWarnings,
		s.StandingsDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncPointsRecorded() {
	s.PointsRecorded.Inc()
}

func (s *Service) IncPointsUndone() {
	s.PointsUndone.Inc()
}

func (s *Service) IncMatchesCompleted() {
	s.MatchesCompleted.Inc()
}

func (s *Service) IncMatchesReopened() {
	s.MatchesReopened.Inc()
}

func (s *Service) IncSchedulesGenerated() {
	s.SchedulesGenerated.Inc()
}

func (s *Service) IncScheduleRestWarnings() {
	s.ScheduleWarnings.Inc()
}

func (s *Service) ObserveStandingsDuration(duration float64) {
	s.StandingsDuration.Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
