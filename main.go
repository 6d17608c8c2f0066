package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sheikhrachel/gol-board/logger"
	"github.com/sheikhrachel/gol-board/utils"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON configuration file")
	flag.Parse()

	// Load configuration - fallback to defaults if file doesn't exist
	config, err := utils.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Using default configuration (%v)\n", err)
		config = utils.DefaultConfig()
	}

	log := logger.NewLogger(config.Debug)

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	game := initializeGame(config, log)
	displayGameInfo(config, game, log)

	if err := game.run(ctx); err != nil {
		log.Errorf("server stopped: %+v", err)
		os.Exit(1)
	}
	displayFinalStats(game, log)
}
