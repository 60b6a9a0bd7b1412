package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"parley/internal/config"
	"parley/internal/logx"
	"parley/internal/server"
)

func main() {
	var (
		configPath string
		listenAddr string
	)
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&listenAddr, "addr", "", "TCP listen address (overrides config)")
	flag.Parse()

	bootLog := logx.New("info")
	cfg, err := config.LoadServer(bootLog, configPath)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("load config")
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	logger := logx.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := server.NewApp(cfg, logger)
	if err := app.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
	logger.Info().Msg("server stopped")
}
