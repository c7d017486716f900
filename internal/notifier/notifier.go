package notifier

import (
	"github.com/mauv0809/volley-tournament/internal/pubsub"
	"github.com/mauv0809/volley-tournament/internal/standings"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For completed matches
	SendMatchResult(event pubsub.MatchEvent, dryRun bool) error
	SendStandings(table []standings.RankedTeam, dryRun bool) error

	// For formatting responses for slash commands
	FormatStandingsResponse(table []standings.RankedTeam) (any, error)
	FormatTeamStandingResponse(row standings.RankedTeam, query string) (any, error)
	FormatTeamNotFoundResponse(query string) (any, error)
}
