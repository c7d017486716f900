package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

var scheduleFormat int

func init() {
	generateCmd.Flags().IntVar(&scheduleFormat, "format", 0, "Match format, 3 or 5 sets (server default when omitted)")

	teamCmd.AddCommand(teamAddCmd, teamDeleteCmd, teamSearchCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(teamsCmd, teamCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(matchesCmd, matchCmd, startCmd, pointCmd, undoCmd, reopenCmd, reorderCmd)
	rootCmd.AddCommand(standingsCmd, statsCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List the registered teams",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/teams", nil)
	},
}

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage teams",
}

var teamAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a team",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/teams", map[string]string{"name": args[0]})
	},
}

var teamDeleteCmd = &cobra.Command{
	Use:   "delete <team-id>",
	Short: "Delete a team and every match it plays in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/teams/"+url.PathEscape(args[0]), nil)
	},
}

var teamSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search teams by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/teams/search?q="+url.QueryEscape(args[0]), nil)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate [team-id...]",
	Short: "Replace the schedule with a round robin between the given teams (all teams when none are given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/schedule", map[string]any{"team_ids": args, "format": scheduleFormat})
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the schedule in playing order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/matches", nil)
	},
}

var matchCmd = &cobra.Command{
	Use:   "match <match-id>",
	Short: "Show a match with its sets and points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, matchPath(args[0], ""), nil)
	},
}

var startCmd = &cobra.Command{
	Use:   "start <match-id>",
	Short: "Start a pending match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, matchPath(args[0], "/start"), nil)
	},
}

var pointCmd = &cobra.Command{
	Use:       "point <match-id> <team1|team2>",
	Short:     "Record a rally won by team1 or team2",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"team1", "team2"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, matchPath(args[0], "/points"), map[string]string{"scorer": args[1]})
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo <match-id>",
	Short: "Remove the last recorded point",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, matchPath(args[0], "/undo"), nil)
	},
}

var reopenCmd = &cobra.Command{
	Use:   "reopen <match-id>",
	Short: "Reopen a completed match, withdrawing its result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, matchPath(args[0], "/reopen"), nil)
	},
}

var reorderCmd = &cobra.Command{
	Use:   "reorder <match-id> <position>",
	Short: "Move a match to another position in the schedule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("position must be a number: %w", err)
		}
		return performRequest(http.MethodPost, matchPath(args[0], "/order"), map[string]int{"order": order})
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Show the standings table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/standings", nil)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show tournament-wide figures",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/stats", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

func matchPath(matchID, action string) string {
	return "/matches/" + url.PathEscape(matchID) + action
}

func performRequest(method, endpoint string, payload any) error {
	target := host + endpoint
	fmt.Printf("Making request to %s %s\n", method, target)

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && password != "" {
		req.SetBasicAuth(user, password)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
