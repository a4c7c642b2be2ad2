package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/omochice/line-chat/internal/chat"
	"github.com/omochice/line-chat/internal/config"
	"github.com/omochice/line-chat/internal/logger"
	"github.com/omochice/line-chat/internal/metrics"
	"github.com/omochice/line-chat/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (default: ./config.yaml if present)")
	address := flag.String("address", "", "Address to listen on for both TCP and WebSocket, overrides server.address (e.g., :1300)")
	metricsAddress := flag.String("metrics", "", "Address for the Prometheus /metrics endpoint, overrides server.metrics_address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Server.Address = *address
	}
	if *metricsAddress != "" {
		cfg.Server.MetricsAddress = *metricsAddress
	}

	log := logger.New(cfg.Log.Level, "line-chat-server")

	if err := run(cfg, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server exited")
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.Server.Address, chat.NewHub(log), server.WithLogger(log))
	if err := srv.Listen(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(); !errors.Is(err, server.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.Server.MetricsAddress != "" {
		g.Go(func() error {
			return metrics.ListenAndServe(ctx, cfg.Server.MetricsAddress, log)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		srv.Stop()
		return nil
	})

	return g.Wait()
}
