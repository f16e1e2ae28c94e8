package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/outlierline/internal/api"
	"github.com/wonny/outlierline/internal/api/handlers"
	"github.com/wonny/outlierline/internal/realtime/cache"
	"github.com/wonny/outlierline/internal/realtime/hub"
	"github.com/wonny/outlierline/internal/scheduler"
	"github.com/wonny/outlierline/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the HTTP API and the timeline websocket.

With WATCHER_ENABLED=true (or --watch) the finished-game watcher runs
in the same process and pushes every new timeline to websocket
subscribers.

Endpoints:
  GET  /health                     - Health check
  GET  /api/teams                  - Team directory
  GET  /api/games/{team}           - A team's games
  GET  /api/outliers/{gameID}      - Validated outlier payload
  GET  /api/timeline/{gameID}      - Ranked bar timeline (?pinned=true)
  GET  /api/archive                - Recently archived games
  GET  /api/status                 - Websocket and job statistics
  GET  /ws/timelines               - Timeline push (?team=LAL)

Example:
  go run ./cmd/outlierline serve
  go run ./cmd/outlierline serve --port 9090 --watch`,
	RunE: runServe,
}

var (
	servePort  string
	serveWatch bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default PORT)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "run the game watcher in-process")
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := newDeps(true)
	if err != nil {
		return err
	}
	defer d.Close()

	cfg, log := d.cfg, d.log
	if servePort != "" {
		cfg.Port = servePort
	}

	recent := cache.NewTimelineCache(cfg.Watcher.ReplayTTL, log)
	timelines := hub.New(log).WithCache(recent)
	defer timelines.Close()

	var sched *scheduler.Scheduler
	if serveWatch || cfg.Watcher.Enabled {
		sched = scheduler.New(log)
		watcher := jobs.NewGameWatcherJob(d.upstream, archiveOrNil(d), d.builder, timelines, cfg.Watcher.Schedule, log)
		for _, job := range []scheduler.Job{watcher, jobs.NewCacheCleanupJob(recent, log)} {
			if err := sched.AddJob(job); err != nil {
				return fmt.Errorf("schedule %s: %w", job.Name(), err)
			}
		}
		sched.Start()
		defer sched.Stop()
	}

	// nil archive must stay a nil interface
	var payloads handlers.PayloadArchive
	if d.archive != nil {
		payloads = d.archive
	}

	router := api.NewRouter(api.Routes{
		Outliers: handlers.NewOutliersHandler(d.upstream, payloads, d.builder, log),
		Status:   handlers.NewStatusHandler("outlierline-api", d.db, timelines, sched),
		Timeline: timelines,
	}, cfg.CORSOrigins, log)

	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	if sched != nil {
		fmt.Printf("   Game watcher scheduled: %s\n", cfg.Watcher.Schedule)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// archiveOrNil keeps a disabled archive a nil interface
func archiveOrNil(d *deps) jobs.Archive {
	if d.archive == nil {
		return nil
	}
	return d.archive
}
