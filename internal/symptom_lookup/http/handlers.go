package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/domain"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/seed"
)

const (
	emptySymptomMessage = "Please enter a symptom."
	maxSeedBytes        = 4 << 20
)

// FindDiseases looks up diseases and medicines for ?symptom=
func (h *Handler) FindDiseases(c *gin.Context) {
	symptom := c.Query("symptom")
	if strings.TrimSpace(symptom) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: emptySymptomMessage})
		return
	}

	res, err := h.svc.Lookup(c.Request.Context(), symptom)
	if err != nil {
		if errors.Is(err, domain.ErrEmptySymptom) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: emptySymptomMessage})
			return
		}
		if domain.IsStoreError(err) {
			c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "symptom database is unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, res)
}

// ReloadSeed replaces the lookup graph. The body may be a CSV or YAML table;
// an empty body reloads the configured seed.
func (h *Handler) ReloadSeed(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSeedBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
		return
	}

	var rows []domain.Row
	switch {
	case len(bytes.TrimSpace(body)) == 0:
		rows, err = seed.Load(h.seedPath)
	case isYAML(c.ContentType()):
		rows, err = seed.ReadYAML(bytes.NewReader(body))
	default:
		rows, err = seed.ReadCSV(bytes.NewReader(body))
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := h.svc.Reload(c.Request.Context(), rows); err != nil {
		if domain.IsStoreError(err) {
			c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "symptom database is unavailable"})
			return
		}
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, seedResponse{Rows: len(rows)})
}

func isYAML(contentType string) bool {
	switch contentType {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return true
	}
	return false
}
