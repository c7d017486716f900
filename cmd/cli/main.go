package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host     string
	user     string
	password string
)

var rootCmd = &cobra.Command{
	Use:   "volley-cli",
	Short: "A CLI to run a volleyball tournament",
	Long: `A command-line interface for the volley-tournament server: manage teams,
generate the round-robin schedule, score matches and read the standings.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&user, "user", "admin", "Admin user name")
	rootCmd.PersistentFlags().StringVar(&password, "password", os.Getenv("VOLLEY_ADMIN_PASSWORD"), "Admin password (defaults to $VOLLEY_ADMIN_PASSWORD)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
