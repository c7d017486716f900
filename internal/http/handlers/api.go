package handlers

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
)

func ListTeamsHandler(svc TournamentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := svc.ListTeams()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, teams)
	}
}

func AddTeamHandler(svc TournamentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		if err := decodeBody(r, &body); err != nil {
			respondError(w, err)
			return
		}
		team, err := svc.AddTeam(CallerFromContext(r), body.Name)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, team)
	}
}

func DeleteTeamHandler(svc TournamentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID := chi.URLParam(r, "teamID")
		if err := svc.DeleteTeam(CallerFromContext(r), teamID); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func SearchTeamsHandler(svc TournamentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			http.Error(w, "Query parameter q is required.", http.StatusBadRequest)
			return
		}
		teams, err := svc.FindTeams(query)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, teams)
	}
}

func GenerateScheduleHandler(svc TournamentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TeamIDs []string `json:"team_ids"`
			Format  int      `json:"format"`
		}
		if err := decodeBody(r, &body); err != nil {
			respondError(w, err)
			return
		}
		result, err := svc.GenerateSchedule(CallerFromContext(r), body.TeamIDs, body.Format)
		if err != nil {
			respondError(w, err)
			return
		}
		if !result.ConstraintSatisfied {
			log.Warn("Schedule generated with back-to-back matches", "matches", len(result.Matches))
		}
		respondJSON(w, http.StatusCreated, result)
	}
}

func ListMatchesHandler(svc TournamentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := svc.ListMatches()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

func GetMatchHandler(svc TournamentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := svc.GetMatchDetail(chi.URLParam(r, "matchID"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, detail)
	}
}

func StartMatchHandler(svc TournamentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match, err := svc.StartMatch(CallerFromContext(r), chi.URLParam(r, "matchID"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, match)
	}
}

func RecordPointHandler(svc TournamentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Scorer string `json:"scorer"`
		}
		if err := decodeBody(r, &body); err != nil {
			respondError(w, err)
			return
		}
		result, err := svc.RecordPoint(CallerFromContext(r), chi.URLParam(r, "matchID"), body.Scorer)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func UndoPointHandler(svc TournamentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.UndoLastPoint(CallerFromContext(r), chi.URLParam(r, "matchID"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func ReopenMatchHandler(svc TournamentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.ReopenMatch(CallerFromContext(r), chi.URLParam(r, "matchID"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func ReorderMatchHandler(svc TournamentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Order int `json:"order"`
		}
		if err := decodeBody(r, &body); err != nil {
			respondError(w, err)
			return
		}
		if err := svc.ReorderMatch(CallerFromContext(r), chi.URLParam(r, "matchID"), body.Order); err != nil {
			respondError(w, err)
			return
		}
		matches, err := svc.ListMatches()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

func StandingsHandler(svc TournamentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table, err := svc.GetStandings()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, table)
	}
}

func SummaryHandler(svc TournamentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, summary)
	}
}
