package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/symptom-finder/internal/logging"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/metrics"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/domain"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/fallback"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/repository"
)

const DefaultStoreTimeout = 5 * time.Second

// LookupService answers symptom queries from the store and, when the store
// has nothing, from the optional fallback API.
type LookupService struct {
	store        repository.Store
	fallback     fallback.Client
	metrics      *metrics.Collector
	storeTimeout time.Duration
}

type Options struct {
	// Fallback may be nil to disable the external lookup.
	Fallback     fallback.Client
	Metrics      *metrics.Collector
	StoreTimeout time.Duration
}

func NewLookupService(store repository.Store, opts Options) *LookupService {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}
	return &LookupService{
		store:        store,
		fallback:     opts.Fallback,
		metrics:      opts.Metrics,
		storeTimeout: opts.StoreTimeout,
	}
}

// Lookup runs at most one store query and one fallback call, in that order.
// A store error aborts the request without consulting the fallback.
func (s *LookupService) Lookup(ctx context.Context, symptom string) (*domain.LookupResult, error) {
	logger := logging.NewLogger(ctx)
	if strings.TrimSpace(symptom) == "" {
		return nil, domain.ErrEmptySymptom
	}
	normalized := domain.NormalizeSymptom(symptom)

	qctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	results, err := s.store.FindDiseases(qctx, normalized)
	cancel()
	if err != nil {
		err = domain.NewStoreError("find_diseases", err)
		logger.LogError("lookup", err, zap.String("symptom", normalized))
		s.countStoreError("find_diseases")
		return nil, err
	}

	if len(results) > 0 {
		logger.LogInfo("lookup", "store hit", zap.String("symptom", normalized), zap.Int("diseases", len(results)))
		return s.result(normalized, domain.SourceStore, results), nil
	}

	if s.fallback != nil {
		if fb, ok := s.fallback.Lookup(ctx, normalized); ok && len(fb) > 0 {
			logger.LogInfo("lookup", "fallback hit", zap.String("symptom", normalized), zap.Int("diseases", len(fb)))
			return s.result(normalized, domain.SourceFallback, fb), nil
		}
	}

	logger.LogInfo("lookup", "no match", zap.String("symptom", normalized))
	return s.result(normalized, domain.SourceNone, []domain.Diagnosis{}), nil
}

// Reload replaces the store contents with rows.
func (s *LookupService) Reload(ctx context.Context, rows []domain.Row) error {
	logger := logging.NewLogger(ctx)
	if err := s.store.Load(ctx, rows); err != nil {
		logger.LogError("reload", err, zap.Int("rows", len(rows)))
		if domain.IsStoreError(err) {
			s.countStoreError("load")
		}
		return err
	}
	if s.metrics != nil {
		s.metrics.SeedRows.Set(float64(len(rows)))
	}
	logger.LogInfo("reload", "graph loaded", zap.Int("rows", len(rows)))
	return nil
}

// Ping reports store connectivity.
func (s *LookupService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *LookupService) result(symptom, source string, results []domain.Diagnosis) *domain.LookupResult {
	if s.metrics != nil {
		s.metrics.Lookups.WithLabelValues(source).Inc()
	}
	r := &domain.LookupResult{Symptom: symptom, Source: source, Results: results}
	if source == domain.SourceNone {
		r.Message = domain.NotFoundMessage
	}
	return r
}

func (s *LookupService) countStoreError(op string) {
	if s.metrics != nil {
		s.metrics.StoreErrors.WithLabelValues(op).Inc()
	}
}
