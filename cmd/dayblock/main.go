package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/dayblock/adapter/cli"
	"github.com/felixgeelhaar/dayblock/adapter/cli/block"
	cliCalendar "github.com/felixgeelhaar/dayblock/adapter/cli/calendar"
	cliProgress "github.com/felixgeelhaar/dayblock/adapter/cli/progress"
	"github.com/felixgeelhaar/dayblock/internal/app"
	"github.com/felixgeelhaar/dayblock/pkg/config"
	"github.com/felixgeelhaar/dayblock/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	// Drain staged events while the command runs. Anything left over is
	// picked up by the next invocation or the worker.
	if cfg.OutboxProcessorEnabled {
		if err := container.OutboxProcessor.Start(ctx); err != nil {
			logger.Warn("outbox processor failed to start", "error", err)
		}
		defer container.OutboxProcessor.Stop()
	}

	cli.SetApp(&cli.App{
		Schedule:          container.ScheduleService,
		Coordinator:       container.Coordinator,
		DefaultCalendarID: cfg.CalendarID,
	})

	cli.AddCommand(block.Cmd)
	cli.AddCommand(cliProgress.Cmd)
	cli.AddCommand(cliCalendar.Cmd)

	cli.Execute()
}
