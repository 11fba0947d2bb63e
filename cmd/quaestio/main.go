package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/common"
	"github.com/ternarybob/quaestio/internal/server"
)

var (
	configFile  = flag.String("config", "", "Configuration file path")
	serverPort  = flag.Int("port", 0, "Server port (overrides config)")
	serverHost  = flag.String("host", "", "Server host (overrides config)")
	showVersion = flag.Bool("version", false, "Print version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Quaestio version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Auto-discover config file if not specified
	configPath := *configFile
	if configPath == "" {
		if _, err := os.Stat("quaestio.toml"); err == nil {
			configPath = "quaestio.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	// CLI flags take highest priority
	if *serverPort != 0 {
		config.Server.Port = *serverPort
	}
	if *serverHost != "" {
		config.Server.Host = *serverHost
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Str("config_file", configPath).
		Int("port", config.Server.Port).
		Str("host", config.Server.Host).
		Str("provider", string(config.LLM.DefaultProvider)).
		Msg("Application configuration loaded")

	app, err := server.NewApp(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start scheduler")
		os.Exit(1)
	}

	srv := server.New(app)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
			os.Exit(1)
		}
	}()

	// Give goroutine a moment to start
	time.Sleep(100 * time.Millisecond)
	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Msg("Server ready - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("Interrupt signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
	logger.Info().Msg("Server stopped")
}
