package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/outlierline/internal/external/statsapi"
	"github.com/wonny/outlierline/internal/render"
)

// gamesCmd represents the games command
var gamesCmd = &cobra.Command{
	Use:   "games [team]",
	Short: "List a team's games",
	Long: `List the games of a team, most recent first.
Without an argument, print the team directory.

Example:
  go run ./cmd/outlierline games
  go run ./cmd/outlierline games LAL`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGames,
}

func init() {
	rootCmd.AddCommand(gamesCmd)
}

func runGames(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		teams := statsapi.Teams()
		PrintHeader("Teams")
		widths := []int{6, 12}
		PrintTableHeader([]string{"ABBR", "TEAM ID"}, widths)
		for _, t := range teams {
			PrintTableRow([]string{t.Abbr, t.ID}, widths)
		}
		return nil
	}

	d, err := newDeps(false)
	if err != nil {
		return err
	}
	defer d.Close()

	team := strings.ToUpper(args[0])
	games, err := d.upstream.ListGames(context.Background(), team)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintHeader(fmt.Sprintf("%s games (%d)", team, len(games)))
	return render.GameTable(os.Stdout, games)
}
