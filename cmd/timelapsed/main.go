package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"timelapse/internal/config"
	"timelapse/internal/daemon"
	"timelapse/internal/logging"
)

func main() {
	configFlag := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, path, loaded, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	if loaded {
		logger.Info("configuration loaded", logging.String(logging.FieldPath, path))
	} else {
		logger.Info("no configuration file found, using defaults")
	}

	d, err := daemon.New(cfg, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.Warn("close daemon", logging.Error(err))
		}
	}()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("timelapsed shutting down")
	d.Stop()
}
