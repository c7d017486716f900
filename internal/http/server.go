package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/volley-tournament/internal/config"
	"github.com/mauv0809/volley-tournament/internal/http/handlers"
	"github.com/mauv0809/volley-tournament/internal/metrics"
	"github.com/mauv0809/volley-tournament/internal/notifier"
	"github.com/mauv0809/volley-tournament/internal/pubsub"
)

func NewServer(svc handlers.TournamentService, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Service:        svc,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         chi.NewRouter(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	r := s.Router
	auth := authMiddleware(s.Cfg.AdminPasswordHash)

	r.Handle("/metrics", s.MetricsHandler)
	r.Handle("/health", Chain(handlers.HealthCheckHandler(), paramsMiddleware))

	r.Group(func(r chi.Router) {
		r.Use(paramsMiddleware, auth)

		r.Get("/teams", handlers.ListTeamsHandler(s.Service))
		r.Post("/teams", handlers.AddTeamHandler(s.Service))
		r.Get("/teams/search", handlers.SearchTeamsHandler(s.Service))
		r.Delete("/teams/{teamID}", handlers.DeleteTeamHandler(s.Service))

		r.Post("/schedule", handlers.GenerateScheduleHandler(s.Service))

		r.Get("/matches", handlers.ListMatchesHandler(s.Service))
		r.Get("/matches/{matchID}", handlers.GetMatchHandler(s.Service))
		r.Post("/matches/{matchID}/start", handlers.StartMatchHandler(s.Service))
		r.Post("/matches/{matchID}/points", handlers.RecordPointHandler(s.Service))
		r.Post("/matches/{matchID}/undo", handlers.UndoPointHandler(s.Service))
		r.Post("/matches/{matchID}/reopen", handlers.ReopenMatchHandler(s.Service))
		r.Post("/matches/{matchID}/order", handlers.ReorderMatchHandler(s.Service))

		r.Get("/standings", handlers.StandingsHandler(s.Service))
		r.Get("/stats", handlers.SummaryHandler(s.Service))
	})

	r.Method(http.MethodPost, "/slack/command/standings",
		Chain(handlers.StandingsCommandHandler(s.Service, s.Notifier), paramsMiddleware, slackVerifyMiddleware(s.Cfg.Slack.SigningSecret)))
	r.Method(http.MethodPost, "/pubsub/match-completed",
		Chain(handlers.MatchCompletedHandler(s.Service, s.Notifier, s.pubsub), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
