package model

import (
	"errors"
	"fmt"
)

// Kind classifies errors returned by the tournament core.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindIllegalState Kind = "illegal_state"
	KindForbidden    Kind = "forbidden"
	KindPersistence  Kind = "persistence"
)

// Error is the typed error returned by the core. Two errors match under
// errors.Is when their codes are equal, so callers compare against the
// sentinels below even when a message was attached.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

var (
	ErrInvalidScorer           = &Error{Kind: KindValidation, Code: "invalid_scorer", Message: "scorer must be team1 or team2"}
	ErrEmptyTeamName           = &Error{Kind: KindValidation, Code: "empty_team_name", Message: "team name is required"}
	ErrDuplicateTeam           = &Error{Kind: KindValidation, Code: "duplicate_team", Message: "team name already exists"}
	ErrTooFewTeams             = &Error{Kind: KindValidation, Code: "too_few_teams", Message: "at least 2 teams are required"}
	ErrInvalidFormat           = &Error{Kind: KindValidation, Code: "invalid_format", Message: "match format must be 3 or 5"}
	ErrDuplicateTeamInSchedule = &Error{Kind: KindValidation, Code: "duplicate_team_in_schedule", Message: "team listed more than once"}
	ErrInvalidOrder            = &Error{Kind: KindValidation, Code: "invalid_order", Message: "match order must be positive"}

	ErrTeamNotFound  = &Error{Kind: KindNotFound, Code: "team_not_found", Message: "team not found"}
	ErrMatchNotFound = &Error{Kind: KindNotFound, Code: "match_not_found", Message: "match not found"}

	ErrAlreadyCompleted = &Error{Kind: KindIllegalState, Code: "already_completed", Message: "match is already completed"}
	ErrMatchCompleted   = &Error{Kind: KindIllegalState, Code: "match_completed", Message: "match is completed"}
	ErrNothingToUndo    = &Error{Kind: KindIllegalState, Code: "nothing_to_undo", Message: "no point to undo"}
	ErrNotCompleted     = &Error{Kind: KindIllegalState, Code: "not_completed", Message: "match is not completed"}

	ErrForbidden = &Error{Kind: KindForbidden, Code: "forbidden", Message: "admin capability required"}

	errPersistence = &Error{Kind: KindPersistence, Code: "persistence", Message: "persistence failure"}
)

// ErrPersistence matches every error produced by Persistence.
var ErrPersistence error = errPersistence

// Persistence wraps a storage failure without altering it.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	cp := *errPersistence
	cp.Err = err
	return &cp
}

// KindOf returns the kind of err, or an empty kind for foreign errors.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return ""
}
