package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"jarfin/internal/backend"
	"jarfin/internal/cli"
	"jarfin/internal/events"
	"jarfin/internal/repository"
	"jarfin/internal/services"
	"jarfin/internal/sweep"
	"jarfin/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if !cfg.AutoSweep {
		logger.Info("AUTO_SWEEP disabled, sweep-worker will only report buffer status")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := backend.Create(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	}()

	var publisher services.Publisher
	var consumer *events.Client
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without eventing", "error", err)
		} else {
			publisher = client
			consumer = client
		}
	}

	repo := repository.New(result.Store)
	svc := services.NewTransactionService(repo, publisher)
	defer svc.Close()

	sw := worker.NewSweepWorker(svc, sweep.New(svc))

	logger.Info("Sweep worker configured",
		"interval", cfg.SweepCheckInterval,
		"auto_sweep", cfg.AutoSweep,
		"backend", cfg.DataBackend)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SweepCheckInterval)
		defer ticker.Stop()

		runCheck(ctx, logger, sw, cfg.AutoSweep)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				runCheck(ctx, logger, sw, cfg.AutoSweep)
			}
		}
	})

	// Transaction events short-circuit the ticker: a change may complete a
	// month's picture, so the buffer is re-checked as soon as one arrives.
	if consumer != nil {
		g.Go(func() error {
			return consumer.Consume(ctx, func(evt *events.TransactionEvent) error {
				logger.Info("Transaction event received",
					"id", evt.ID,
					"action", evt.Action)
				runCheck(ctx, logger, sw, cfg.AutoSweep)
				return nil
			})
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Sweep worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Sweep worker stopped")
}

func runCheck(ctx context.Context, logger *slog.Logger, sw *worker.SweepWorker, autoSweep bool) {
	if !autoSweep {
		logger.Info("Skipping sweep (AUTO_SWEEP disabled)")
		return
	}
	swept, err := sw.RunOnce(ctx)
	if err != nil {
		logger.Error("Sweep check failed", "error", err)
		return
	}
	if swept {
		logger.Info("Sweep performed")
	}
}
