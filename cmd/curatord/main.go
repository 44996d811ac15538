package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"curator/internal/config"
	"curator/internal/daemon"
	"curator/internal/ipc"
	"curator/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, s, notifier, err := buildSyncer(cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", logging.Args(logging.Error(err))...)
		os.Exit(1)
	}

	d, err := daemon.New(cfg, store, s, notifier, logger)
	if err != nil {
		logger.Error("create daemon", logging.Args(logging.Error(err))...)
		os.Exit(1)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Args(logging.Error(err))...)
		os.Exit(1)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Args(logging.Error(err))...)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("curatord shutting down")
}
