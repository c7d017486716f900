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

type Server struct {
	Service        handlers.TournamentService
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *chi.Mux
	pubsub         pubsub.PubSubClient
}
