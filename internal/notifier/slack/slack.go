package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/volley-tournament/internal/metrics"
	"github.com/mauv0809/volley-tournament/internal/notifier"
	"github.com/mauv0809/volley-tournament/internal/pubsub"
	"github.com/mauv0809/volley-tournament/internal/standings"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier. Without a token every message is
// only logged, as in a dry run.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	var api slackClient
	if token != "" {
		api = slack.New(token)
	}
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun || s.api == nil {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendMatchResult(event pubsub.MatchEvent, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatMatchResult(event), dryRun)
	return err
}

func (s *Notifier) SendStandings(table []standings.RankedTeam, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatStandings(table), dryRun)
	return err
}

// FormatStandingsResponse formats the standings table for a slash command response.
func (s *Notifier) FormatStandingsResponse(table []standings.RankedTeam) (any, error) {
	return s.formatStandings(table), nil
}

// FormatTeamStandingResponse formats one team's standing for a slash command response.
func (s *Notifier) FormatTeamStandingResponse(row standings.RankedTeam, query string) (any, error) {
	return s.formatTeamStanding(row, query), nil
}

// FormatTeamNotFoundResponse formats a team not found message for a slash command response.
func (s *Notifier) FormatTeamNotFoundResponse(query string) (any, error) {
	return s.formatTeamNotFound(query), nil
}

func plainSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil)
}

// formatMatchResult creates the Slack message announcing a finished match.
func (s *Notifier) formatMatchResult(event pubsub.MatchEvent) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏐 Match finished! 🏐", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("Match #%d: %s vs %s", event.MatchOrder, event.Team1Name, event.Team2Name)
	blocks = append(blocks, plainSection(detailsText))

	resultHeader := fmt.Sprintf("Result: %d-%d", event.SetsTeam1, event.SetsTeam2)
	if event.WinnerName != "" {
		resultHeader = fmt.Sprintf("Result: %s won %d-%d! 🏆", event.WinnerName,
			max(event.SetsTeam1, event.SetsTeam2), min(event.SetsTeam1, event.SetsTeam2))
	}

	var setFields []*slack.TextBlockObject
	for i, score := range event.SetScores {
		setFields = append(setFields, slack.NewTextBlockObject("plain_text", fmt.Sprintf("Set %d\n%s", i+1, score), true, false))
	}
	if len(setFields) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultHeader, true, false), setFields, nil))
	} else {
		blocks = append(blocks, plainSection(resultHeader))
	}

	return slack.NewBlockMessage(blocks...)
}

func medal(position int) string {
	switch position {
	case 1:
		return "🥇 "
	case 2:
		return "🥈 "
	case 3:
		return "🥉 "
	}
	return ""
}

func standingLine(row standings.RankedTeam) string {
	return fmt.Sprintf("> Points: %d | W-L: %d-%d | Sets: %d-%d (%s) | Rallies: %d-%d (%s)",
		row.RankingPoints,
		row.Wins, row.Losses,
		row.SetsWon, row.SetsLost, row.SetRatioDisplay,
		row.PointsWon, row.PointsLost, row.PointRatioDisplay,
	)
}

// formatStandings creates a Slack message with the full standings table.
func (s *Notifier) formatStandings(table []standings.RankedTeam) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Standings 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(table) == 0 {
		blocks = append(blocks, plainSection("No teams registered yet."))
		return slack.NewBlockMessage(blocks...)
	}

	for _, row := range table {
		text := fmt.Sprintf("%d. %s%s\n%s", row.Position, medal(row.Position), row.Name, standingLine(row))
		blocks = append(blocks, plainSection(text))
	}
	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatTeamStanding(row standings.RankedTeam, query string) slack.Message {
	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("📊 %s", row.Name), true, false)
	blocks := []slack.Block{slack.NewHeaderBlock(headerText)}

	text := fmt.Sprintf("Position %d %s\n%s", row.Position, strings.TrimSpace(medal(row.Position)), standingLine(row))
	blocks = append(blocks, plainSection(text))
	if !strings.EqualFold(strings.TrimSpace(query), row.Name) {
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", fmt.Sprintf("Best match for %q", query), false, false)))
	}
	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatTeamNotFound(query string) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a team matching *%s*. Try a different name.", query)
	return slack.NewBlockMessage(plainSection(text))
}
