package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/symptom-finder/config"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/bootstrap"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/logging"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/metrics"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/service"
)

const usage = "usage: worker load [seedPath] | worker lookup <symptom...>"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run returns the process exit code. Deferred cleanup always runs before
// main exits.
func run(args []string, out io.Writer) int {
	if len(args) < 1 {
		log.Println(usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}
	logger, err := logging.Init(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Printf("logger: %v", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	cmd, ok := commands[args[0]]
	if !ok {
		logger.Error("unknown command", zap.String("command", args[0]), zap.String("usage", usage))
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg.Store)
	if err != nil {
		logger.Error("open store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
		return 1
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}()

	svc, err := bootstrap.NewLookupService(cfg, store, metrics.Default())
	if err != nil {
		logger.Error("lookup service", zap.Error(err))
		return 1
	}

	if err := cmd(ctx, svc, cfg, args[1:], out); err != nil {
		logger.Error(args[0], zap.Error(err))
		return 1
	}
	return 0
}

type command func(ctx context.Context, svc *service.LookupService, cfg *config.Config, args []string, out io.Writer) error

var commands = map[string]command{
	"load": func(ctx context.Context, svc *service.LookupService, cfg *config.Config, args []string, out io.Writer) error {
		return runLoad(ctx, svc, cfg.Seed.Path, args, out)
	},
	"lookup": func(ctx context.Context, svc *service.LookupService, _ *config.Config, args []string, out io.Writer) error {
		return runLookup(ctx, svc, args, out)
	},
}

