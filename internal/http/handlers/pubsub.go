package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/volley-tournament/internal/notifier"
	"github.com/mauv0809/volley-tournament/internal/pubsub"
)

// MatchCompletedHandler is the push endpoint of the match-completed
// subscription. It posts the result and the fresh standings to Slack.
func MatchCompletedHandler(svc TournamentService, notifier notifier.Notifier, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received match completed message", "body", string(bodyBytes))

		var push pubsub.PushRequest
		if err := json.Unmarshal(bodyBytes, &push); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(push.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var event pubsub.MatchEvent
		if err := pubsubClient.ProcessMessage(rawData, &event); err != nil {
			log.Error("Failed to decode match event", "error", err, "messageID", push.Message.ID)
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}

		isDryRun := IsDryRunFromContext(r)
		if err := notifier.SendMatchResult(event, isDryRun); err != nil {
			log.Error("Failed to notify result", "error", err, "matchID", event.MatchID)
			http.Error(w, "Failed to notify result", http.StatusInternalServerError)
			return
		}

		table, err := svc.GetStandings()
		if err != nil {
			log.Error("Failed to get standings", "error", err)
			http.Error(w, "Failed to get standings", http.StatusInternalServerError)
			return
		}
		if err := notifier.SendStandings(table, isDryRun); err != nil {
			log.Error("Failed to notify standings", "error", err)
			http.Error(w, "Failed to notify standings", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
