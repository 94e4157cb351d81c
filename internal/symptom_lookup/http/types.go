package http

import (
	"context"

	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/domain"
)

// LookupService is what the handlers need from service.LookupService.
type LookupService interface {
	Lookup(ctx context.Context, symptom string) (*domain.LookupResult, error)
	Reload(ctx context.Context, rows []domain.Row) error
}

// Handler handles HTTP requests for symptom lookups
type Handler struct {
	svc      LookupService
	seedPath string
}

// New creates a Handler. seedPath is reloaded when POST /seed has no body;
// empty means the embedded table.
func New(svc LookupService, seedPath string) *Handler {
	return &Handler{svc: svc, seedPath: seedPath}
}

type errorResponse struct {
	Error string `json:"error"`
}

type seedResponse struct {
	Rows int `json:"rows"`
}
