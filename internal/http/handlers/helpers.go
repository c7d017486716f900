package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/volley-tournament/internal/model"
	"github.com/mauv0809/volley-tournament/internal/scoring"
	"github.com/mauv0809/volley-tournament/internal/standings"
	"github.com/mauv0809/volley-tournament/internal/tournament"
)

// TournamentService is the part of tournament.Service the handlers drive.
type TournamentService interface {
	AddTeam(caller tournament.Caller, name string) (model.Team, error)
	DeleteTeam(caller tournament.Caller, teamID string) error
	ListTeams() ([]model.Team, error)
	FindTeams(query string) ([]model.Team, error)
	GenerateSchedule(caller tournament.Caller, teamIDs []string, format int) (tournament.ScheduleResult, error)
	ListMatches() ([]tournament.MatchView, error)
	GetMatchDetail(matchID string) (tournament.MatchDetail, error)
	ReorderMatch(caller tournament.Caller, matchID string, newOrder int) error
	StartMatch(caller tournament.Caller, matchID string) (model.Match, error)
	RecordPoint(caller tournament.Caller, matchID string, scorer string) (scoring.PointResult, error)
	UndoLastPoint(caller tournament.Caller, matchID string) (scoring.UndoResult, error)
	ReopenMatch(caller tournament.Caller, matchID string) (scoring.UndoResult, error)
	GetStandings() ([]standings.RankedTeam, error)
	Summary() (tournament.Summary, error)
}

var _ TournamentService = (*tournament.Service)(nil)

// ContextKey is a custom type to avoid key collisions in context.
type ContextKey string

const (
	DryRunKey ContextKey = "dryRun"
	CallerKey ContextKey = "caller"
)

// IsDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func IsDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(DryRunKey).(bool)
	return ok && dryRun
}

// WithCaller stores the authenticated caller in ctx.
func WithCaller(ctx context.Context, caller tournament.Caller) context.Context {
	return context.WithValue(ctx, CallerKey, caller)
}

// CallerFromContext returns the caller set by the auth middleware, or the
// anonymous read-only caller.
func CallerFromContext(r *http.Request) tournament.Caller {
	caller, ok := r.Context().Value(CallerKey).(tournament.Caller)
	if !ok {
		return tournament.Anonymous
	}
	return caller
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch model.KindOf(err) {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindIllegalState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	var typed *model.Error
	if errors.As(err, &typed) {
		resp.Code = typed.Code
	}
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
		resp.Error = "internal error"
	} else {
		log.Debug("Request rejected", "status", status, "error", err)
	}
	respondJSON(w, status, resp)
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &model.Error{Kind: model.KindValidation, Code: "invalid_body", Message: "invalid JSON body", Err: err}
	}
	return nil
}
