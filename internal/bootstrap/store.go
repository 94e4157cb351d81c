package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/symptom-finder/config"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/logging"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/metrics"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/domain"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/fallback"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/repository"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/seed"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/service"
)

const connectTimeout = 10 * time.Second

// OpenStore connects the backend named by cfg.Store.Backend and makes sure
// its schema exists.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (repository.Store, error) {
	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.Backend {
	case config.BackendNeo4j:
		driver, err := repository.OpenNeo4j(cctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
		if err != nil {
			return nil, err
		}
		store := repository.NewNeo4jStore(driver, "")
		if err := store.EnsureSchema(cctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		return store, nil

	case config.BackendPostgres:
		pool, err := OpenDB(cctx, DBOptions{DSN: cfg.PostgresDSN})
		if err != nil {
			return nil, domain.NewStoreError("connect", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err))
		}
		store := repository.NewPostgresStore(pool)
		if err := store.EnsureSchema(cctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		return store, nil

	case config.BackendRedis:
		client := repository.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		store := repository.NewRedisStore(client, "")
		if err := store.Ping(cctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		return store, nil

	case config.BackendMemory:
		return repository.NewMemoryStore(), nil
	}

	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

// NewLookupService wires the store, the optional fallback client and the
// metrics collector into a LookupService.
func NewLookupService(cfg *config.Config, store repository.Store, m *metrics.Collector) (*service.LookupService, error) {
	opts := service.Options{
		Metrics:      m,
		StoreTimeout: cfg.Store.Timeout,
	}

	// leave opts.Fallback as a nil interface when disabled
	if cfg.Fallback.Enabled() {
		client, err := fallback.New(fallback.Options{
			Endpoint:      cfg.Fallback.URL,
			Credential:    cfg.Fallback.APIKey,
			Timeout:       cfg.Fallback.Timeout,
			RatePerSecond: cfg.Fallback.RatePerSecond,
			Metrics:       m,
		})
		if err != nil {
			return nil, fmt.Errorf("fallback client: %w", err)
		}
		opts.Fallback = client
	}

	return service.NewLookupService(store, opts), nil
}

// SeedStore loads the configured seed file, or the embedded table when no
// path is set.
func SeedStore(ctx context.Context, svc *service.LookupService, path string) (int, error) {
	rows, err := seed.Load(path)
	if err != nil {
		return 0, fmt.Errorf("read seed: %w", err)
	}
	if err := svc.Reload(ctx, rows); err != nil {
		return 0, err
	}
	logging.L().Info("seed loaded", zap.Int("rows", len(rows)), zap.String("path", path))
	return len(rows), nil
}
