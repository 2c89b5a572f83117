package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/feral-file/gamebot/internal/adapter"
	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/logger"
)

const (
	// RevisionHeader is the header an upstream mirror may use to report its commit
	RevisionHeader  = "X-Source-Revision"
	requestIDHeader = "X-Request-ID"
)

// HTTPConfig configures the HTTP source
type HTTPConfig struct {
	BaseURL string
	// Timeout bounds one fetch including all of its retries
	Timeout time.Duration
	// MaxFailures is the number of consecutive failures that opens the breaker
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before letting a trial request through
	OpenTimeout time.Duration
}

type httpSource struct {
	cfg     HTTPConfig
	client  adapter.HTTPClient
	clock   adapter.Clock
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPSource creates a source reading <base_url>/<dataset>.csv
func NewHTTPSource(cfg HTTPConfig, client adapter.HTTPClient, clock adapter.Clock) Source {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "upstream-source",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		// Only transport failures count against the upstream
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, domain.ErrUpstreamUnreachable)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &httpSource{
		cfg:     cfg,
		client:  client,
		clock:   clock,
		breaker: breaker,
	}
}

// Fetch downloads the dataset extract through the circuit breaker
func (s *httpSource) Fetch(ctx context.Context, dataset string) (*Extract, error) {
	url := fmt.Sprintf("%s/%s.csv", s.cfg.BaseURL, dataset)

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.fetch(ctx, dataset, url)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstreamUnreachable, dataset, err)
		}
		return nil, err
	}

	return result.(*Extract), nil
}

func (s *httpSource) fetch(ctx context.Context, dataset string, url string) (*Extract, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	requestID := uuid.New().String()
	header := http.Header{}
	header.Set(requestIDHeader, requestID)
	header.Set("Accept", "text/csv")

	logger.DebugCtx(ctx, "fetching upstream extract",
		zap.String("dataset", dataset),
		zap.String("url", url),
		zap.String("request_id", requestID))

	resp, err := s.client.GetResponse(ctx, url, header)
	if err != nil {
		if errors.Is(err, adapter.ErrHTTPStatus) {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedExtract, dataset, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstreamUnreachable, dataset, err)
	}

	return &Extract{
		Dataset:   dataset,
		Body:      resp.Body,
		Revision:  revisionFromHeader(resp.Header),
		FetchedAt: s.clock.Now(),
	}, nil
}

func revisionFromHeader(h http.Header) string {
	if rev := h.Get(RevisionHeader); rev != "" {
		return rev
	}
	if etag := h.Get("ETag"); etag != "" {
		return strings.Trim(strings.TrimPrefix(etag, "W/"), `"`)
	}
	return h.Get("Last-Modified")
}
