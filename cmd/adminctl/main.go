package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"cabbooking/internal/apiclient"
	"cabbooking/internal/config"
	"cabbooking/internal/console"
	"cabbooking/internal/keepalive"
	"cabbooking/internal/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConsole()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	level := cfg.LogLevel
	if level == "" {
		level = "warn"
	}
	log, err := logger.New("cabbooking-adminctl", cfg.AppEnv, level)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	client, err := apiclient.New(cfg.APIBaseURL, apiclient.WithLogger(log.Named("api")))
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr := console.NewSessionManager(client, log.Named("session"))
	if err := mgr.Start(ctx); err != nil {
		log.Warn("could not restore session", zap.Error(err))
	}
	defer mgr.Close()

	probe := keepalive.NewProbe("api", client.Health, cfg.KeepAliveInterval, log.Named("keepalive"))
	probe.Start(ctx)
	defer probe.Stop()

	sh := newShell(mgr, console.NewBookingDesk(client, mgr.Store()), client, os.Stdout)
	stopWatch := sh.watch()
	defer stopWatch()

	fmt.Fprintf(os.Stdout, "cab booking admin console (%s). Type help for commands.\n", cfg.APIBaseURL)
	return sh.run(ctx, os.Stdin)
}
