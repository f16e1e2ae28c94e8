package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/outlierline/internal/contracts"
	"github.com/wonny/outlierline/internal/render"
	"github.com/wonny/outlierline/internal/viewstate"
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a game's outlier timeline in the terminal",
	Long: `Select a team and one of its games, load the outliers and draw the
positive and negative bar columns.

Without --game the team's most recent game is used.

Example:
  go run ./cmd/outlierline render --team LAL
  go run ./cmd/outlierline render --team LAL --game 0022400101 --pinned
  go run ./cmd/outlierline render --team BOS --json`,
	RunE: runRender,
}

var (
	renderTeam    string
	renderGame    string
	renderPinned  bool
	renderImages  bool
	renderJSON    bool
	renderWidth   int
	renderTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderTeam, "team", "", "team abbreviation (required)")
	renderCmd.Flags().StringVar(&renderGame, "game", "", "game id (default: most recent)")
	renderCmd.Flags().BoolVar(&renderPinned, "pinned", false, "show every label")
	renderCmd.Flags().BoolVar(&renderImages, "images", false, "print image references")
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "print the timeline as JSON")
	renderCmd.Flags().IntVar(&renderWidth, "width", 40, "columns of the tallest bar")
	renderCmd.Flags().DurationVar(&renderTimeout, "timeout", 30*time.Second, "give up after")
	_ = renderCmd.MarkFlagRequired("team")
}

func runRender(cmd *cobra.Command, args []string) error {
	d, err := newDeps(false)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
	defer cancel()

	session := viewstate.NewSession(d.upstream, d.builder, d.log)
	defer session.Close()

	if renderPinned {
		session.TogglePins()
	}

	if err := session.SelectTeam(ctx, strings.ToUpper(renderTeam)); err != nil {
		PrintError(err.Error())
		return err
	}

	gameID := renderGame
	if gameID == "" {
		gameID = latestGame(session.View())
		if gameID == "" {
			return fmt.Errorf("no games for %s", renderTeam)
		}
	}

	if err := session.SelectGame(gameID); err != nil {
		return err
	}

	view, err := waitLoaded(ctx, session)
	if err != nil {
		return err
	}

	if renderJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view.Timeline)
	}

	return render.NewTerminal(os.Stdout, d.builder.Heights().MaxHeight()).
		WithWidth(renderWidth).
		WithImages(renderImages).
		Render(*view.Timeline)
}

// waitLoaded follows the session updates until the request settles
func waitLoaded(ctx context.Context, session *viewstate.Session) (viewstate.ViewModel, error) {
	for {
		select {
		case <-ctx.Done():
			return viewstate.ViewModel{}, fmt.Errorf("waiting for outliers: %w", ctx.Err())
		case view, ok := <-session.Updates():
			if !ok {
				return viewstate.ViewModel{}, fmt.Errorf("session closed")
			}
			switch view.State {
			case viewstate.StateOutliersLoaded:
				return view, nil
			case viewstate.StateLoadFailed:
				PrintError(view.Error)
				return view, fmt.Errorf("load outliers for %s: %s", view.GameID, view.Error)
			}
		}
	}
}

// latestGame picks the most recent game by date
func latestGame(view viewstate.ViewModel) string {
	var best *contracts.GameSummary
	for i := range view.Games {
		if best == nil || view.Games[i].PlayedAfter(*best) {
			best = &view.Games[i]
		}
	}
	if best == nil {
		return ""
	}
	return best.GameID
}
