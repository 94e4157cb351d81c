package repository

import (
	"context"

	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/domain"
)

const (
	opLoad         = "load"
	opFindDiseases = "find_diseases"
	opPing         = "ping"
)

// Store is the lookup graph. Implementations must run Load as a single
// clear-then-merge transaction and must never mutate state in FindDiseases.
type Store interface {
	// Load replaces the whole graph with rows.
	Load(ctx context.Context, rows []domain.Row) error
	// FindDiseases returns diseases indicated by the symptom, ordered by
	// disease name. No match is an empty slice and a nil error.
	FindDiseases(ctx context.Context, symptom string) ([]domain.Diagnosis, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
