package main

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/gol-board/logger"
	"github.com/sheikhrachel/gol-board/metrics"
	"github.com/sheikhrachel/gol-board/model"
	"github.com/sheikhrachel/gol-board/scheduler"
	"github.com/sheikhrachel/gol-board/server"
	"github.com/sheikhrachel/gol-board/utils"
)

const shutdownTimeout = 5 * time.Second

// game bundles the board, its run loop and the server in front of them
type game struct {
	board   *scheduler.Scheduler
	hub     *server.Hub
	http    *http.Server
	metrics *metrics.Collector
	log     *logger.Logger
}

// initializeGame sets up the initial game state
func initializeGame(config utils.Config, log *logger.Logger) *game {
	collector := metrics.NewCollector()

	board := scheduler.New(
		model.NewGrid(config.Size),
		config,
		scheduler.WithLogger(log),
		scheduler.WithMetrics(collector),
	)
	hub := server.NewHub(log, collector)
	board.Subscribe(hub.Broadcast)

	return &game{
		board: board,
		hub:   hub,
		http: &http.Server{
			Addr:              config.Addr,
			Handler:           server.New(board, hub, log, collector).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		metrics: collector,
		log:     log,
	}
}

// displayGameInfo shows the initial game information
func displayGameInfo(config utils.Config, g *game, log *logger.Logger) {
	log.Infof("Grid: %dx%d | Tick rate: %.2fs in [%.2f, %.2f] step %.2f",
		config.Size, config.Size, g.board.TickRate(), config.TickMin, config.TickMax, config.TickDelta)
	log.Infof("Serving board on http://%s (Ctrl+C to exit gracefully)", displayAddr(config.Addr))
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

// run serves until ctx is cancelled or the listener fails
func (g *game) run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		g.hub.Run(ctx)
		return nil
	})

	eg.Go(func() error {
		if err := g.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "[run] failed to listen on %s", g.http.Addr)
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		g.log.Infof("Shutting down gracefully...")
		g.board.Pause()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Wrap(g.http.Shutdown(shutdownCtx), "[run] shutdown")
	})

	return eg.Wait()
}

// displayFinalStats logs a summary of the session
func displayFinalStats(g *game, log *logger.Logger) {
	snap := g.board.Snapshot()
	log.Infof("Final stats: %d generations in %.1f seconds | %.1f gen/sec | %.1f avg population",
		snap.Generation, time.Since(g.metrics.StartTime).Seconds(),
		snap.Stats.GenerationsPerSecond, snap.Stats.AveragePopulation)
}
