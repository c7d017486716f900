package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/volley-tournament/internal/notifier"
	"github.com/mauv0809/volley-tournament/internal/standings"
	"github.com/slack-go/slack"
)

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// StandingsCommandHandler answers the /standings slash command. Without text
// it returns the whole table; with text it shows the best matching team.
func StandingsCommandHandler(svc TournamentService, notifier notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := slack.SlashCommandParse(r)
		if err != nil {
			log.Error("Failed to parse slash command", "error", err)
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		query := strings.TrimSpace(cmd.Text)
		log.Info("Received standings command", "user", cmd.UserName, "query", query)

		table, err := svc.GetStandings()
		if err != nil {
			http.Error(w, "Failed to get standings", http.StatusInternalServerError)
			log.Error("Failed to get standings", "error", err)
			return
		}

		var msg any
		if query == "" {
			msg, err = notifier.FormatStandingsResponse(table)
		} else {
			msg, err = teamStandingResponse(svc, notifier, table, query)
		}
		if err != nil {
			http.Error(w, "Failed to format standings", http.StatusInternalServerError)
			log.Error("Failed to format standings", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}

func teamStandingResponse(svc TournamentService, notifier notifier.Notifier, table []standings.RankedTeam, query string) (any, error) {
	matches, err := svc.FindTeams(query)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		log.Info("No team matched standings query", "query", query)
		return notifier.FormatTeamNotFoundResponse(query)
	}
	for _, row := range table {
		if row.ID == matches[0].ID {
			return notifier.FormatTeamStandingResponse(row, query)
		}
	}
	return notifier.FormatTeamNotFoundResponse(query)
}
