package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/outlierline/internal/scheduler"
	"github.com/wonny/outlierline/internal/scheduler/jobs"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Archive finished games as they end",
	Long: `Poll the scoreboard on WATCHER_SCHEDULE and, for each newly finished
game, fetch its outliers, archive the payload and build its timeline.

Example:
  go run ./cmd/outlierline watch
  go run ./cmd/outlierline watch --once`,
	RunE: runWatch,
}

var watchOnce bool

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run a single pass and exit")
}

func runWatch(cmd *cobra.Command, args []string) error {
	d, err := newDeps(true)
	if err != nil {
		return err
	}
	defer d.Close()

	watcher := jobs.NewGameWatcherJob(d.upstream, archiveOrNil(d), d.builder, nil, d.cfg.Watcher.Schedule, d.log)

	if watchOnce {
		summary, err := watcher.Process(context.Background())
		printSummary(summary)
		return err
	}

	sched := scheduler.New(d.log)
	if err := sched.AddJob(watcher); err != nil {
		return fmt.Errorf("schedule watcher: %w", err)
	}
	sched.Start()

	PrintSuccess(fmt.Sprintf("Game watcher started (%s)", watcher.Schedule()))
	if d.archive == nil {
		PrintWarning("ARCHIVE_ENABLED is false: processed games are only remembered until exit")
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down watcher...")
	sched.Stop()

	if history, err := sched.History(watcher.Name(), 1); err == nil && len(history) == 1 {
		PrintKeyValue("last run", history[0].StartTime.Format("2006-01-02 15:04:05"), 10)
	}
	return nil
}

func printSummary(s jobs.Summary) {
	PrintHeader("Game watcher")
	PrintKeyValue("finished", fmt.Sprint(s.Finished), 10)
	PrintKeyValue("skipped", fmt.Sprint(s.Skipped), 10)
	PrintKeyValue("processed", fmt.Sprint(len(s.Processed)), 10)
	PrintKeyValue("rejected", fmt.Sprint(s.Rejected), 10)
	if len(s.Processed) > 0 {
		PrintList(s.Processed)
	}
	if len(s.Failed) > 0 {
		PrintWarning(fmt.Sprintf("%d game(s) failed and will be retried", len(s.Failed)))
		PrintList(s.Failed)
	}
}
