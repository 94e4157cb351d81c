package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GoSim-25-26J-441/symptom-finder/internal/logging"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/metrics"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/domain"
)

const (
	DefaultTimeout = 5 * time.Second
	DefaultRPS     = 5.0
	maxBodyBytes   = 1 << 20
)

// Client is the best-effort external lookup. The bool is false for any
// failure; callers treat that the same as an empty result.
type Client interface {
	Lookup(ctx context.Context, symptom string) ([]domain.Diagnosis, bool)
}

type Options struct {
	Endpoint   string
	Credential string
	Timeout    time.Duration
	// RatePerSecond caps outgoing calls; zero uses DefaultRPS.
	RatePerSecond float64
	Metrics       *metrics.Collector
}

// HTTPClient calls GET <endpoint>?symptom=<lowercase symptom> with a bearer
// credential.
type HTTPClient struct {
	endpoint   *url.URL
	credential string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	metrics    *metrics.Collector
}

type statusError struct {
	code int
}

func (e *statusError) Error() string { return fmt.Sprintf("fallback api status %d", e.code) }

type apiItem struct {
	Disease   string   `json:"disease"`
	Medicines []string `json:"medicines"`
}

func New(opts Options) (*HTTPClient, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("fallback endpoint is required")
	}
	u, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid fallback url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid fallback url: %q", opts.Endpoint)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = DefaultRPS
	}

	c := &HTTPClient{
		endpoint:   u,
		credential: opts.Credential,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1),
		metrics:    opts.Metrics,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "fallback-api",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.L().Warn("circuit breaker state changed",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
		// 4xx answers mean the API is up; only transport errors and 5xx count.
		IsSuccessful: func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.code < 500
			}
			return err == nil
		},
	})
	return c, nil
}

func (c *HTTPClient) Lookup(ctx context.Context, symptom string) ([]domain.Diagnosis, bool) {
	logger := logging.NewLogger(ctx)
	q := domain.NormalizeSymptom(symptom)
	if q == "" {
		return nil, false
	}

	if err := c.limiter.Wait(ctx); err != nil {
		logger.LogWarn("fallback_lookup", "rate limiter wait aborted", zap.Error(err))
		c.record("rate_limited", 0)
		return nil, false
	}

	start := time.Now()
	res, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx, q)
	})
	elapsed := time.Since(start)
	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			outcome = "circuit_open"
		default:
			var se *statusError
			if errors.As(err, &se) {
				outcome = "non_200"
			}
		}
		logger.LogWarn("fallback_lookup", "fallback api unavailable",
			zap.String("symptom", q), zap.String("outcome", outcome), zap.Error(err))
		c.record(outcome, elapsed)
		return nil, false
	}

	c.record("ok", elapsed)
	return res.([]domain.Diagnosis), true
}

func (c *HTTPClient) fetch(ctx context.Context, symptom string) ([]domain.Diagnosis, error) {
	u := *c.endpoint
	q := u.Query()
	q.Set("symptom", symptom)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.credential)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fallback request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &statusError{code: resp.StatusCode}
	}

	var items []apiItem
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	out := make([]domain.Diagnosis, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Disease) == "" {
			continue
		}
		out = append(out, domain.NewDiagnosis(it.Disease, it.Medicines))
	}
	domain.SortDiagnoses(out)
	return out, nil
}

func (c *HTTPClient) record(outcome string, d time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.FallbackRequests.WithLabelValues(outcome).Inc()
	if d > 0 {
		c.metrics.FallbackDuration.Observe(d.Seconds())
	}
}
