package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	c := NewCollector("test")
	c.Lookups.WithLabelValues("store").Inc()
	c.Lookups.WithLabelValues("store").Inc()
	c.StoreErrors.WithLabelValues("load").Inc()
	c.SeedRows.Set(20)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Lookups.WithLabelValues("store")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreErrors.WithLabelValues("load")))
	assert.Equal(t, 20.0, testutil.ToFloat64(c.SeedRows))

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "test_lookups_total")
}

func TestDefault_IsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
