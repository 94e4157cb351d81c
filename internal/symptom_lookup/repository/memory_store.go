package repository

import (
	"context"
	"sync"

	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/domain"
)

// MemoryStore keeps the graph in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	graph *domain.Graph
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{graph: domain.NewGraph()}
}

func (s *MemoryStore) Load(ctx context.Context, rows []domain.Row) error {
	g, err := domain.BuildGraph(rows)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domain.NewStoreError(opLoad, err)
	}
	s.mu.Lock()
	s.graph = g
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) FindDiseases(ctx context.Context, symptom string) ([]domain.Diagnosis, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError(opFindDiseases, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.FindDiseases(domain.NormalizeSymptom(symptom)), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return domain.NewStoreError(opPing, ctx.Err())
}

func (s *MemoryStore) Close(context.Context) error { return nil }
