package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	appconfig "sanaflow/config"
	"sanaflow/logger"
)

// Payload is one successfully fetched and decoded API response. Body keeps
// the verbatim bytes for raw persistence; Data is the decoded document with
// numbers kept as json.Number so large IRR values survive untouched.
type Payload struct {
	Endpoint  string
	Body      []byte
	Data      any
	FetchedAt time.Time
}

// Fetcher pulls the SANA payload over HTTP with retry, backoff and rate
// limiting. It owns the only network surface of the system; the organizer
// downstream is pure.
type Fetcher struct {
	config  *appconfig.Config
	client  *resty.Client
	limiter *rate.Limiter
	log     *logger.Log
}

// New creates a Fetcher from the source and retry configuration. Retries
// fire on transport errors, 429 and 5xx responses with exponential backoff
// between base_delay and max_delay.
func New(cfg *appconfig.Config) *Fetcher {
	log := logger.GetLogger()

	retryCfg := cfg.Fetcher.Retry

	client := resty.New().
		SetTimeout(cfg.Source.Timeout).
		SetRetryCount(retryCfg.MaxAttempts - 1).
		SetRetryWaitTime(retryCfg.BaseDelay).
		SetRetryMaxWaitTime(retryCfg.MaxDelay).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == 429 || r.StatusCode() >= 500
		}).
		SetRetryAfter(func(c *resty.Client, r *resty.Response) (time.Duration, error) {
			delay := retryCfg.BaseDelay
			for i := 1; i < r.Request.Attempt; i++ {
				delay *= time.Duration(retryCfg.BackoffMultiplier)
			}
			if delay > retryCfg.MaxDelay {
				delay = retryCfg.MaxDelay
			}
			return delay, nil
		})

	for k, v := range cfg.Source.Headers {
		client.SetHeader(k, v)
	}

	rps := cfg.Fetcher.RateLimit.RequestsPerSecond
	if rps < 1 {
		rps = 1
	}
	burst := cfg.Fetcher.RateLimit.BurstSize
	if burst < 1 {
		burst = 1
	}

	f := &Fetcher{
		config:  cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		log:     log,
	}

	log.WithComponent("fetcher").WithFields(logger.Fields{
		"url":          cfg.Source.URL,
		"timeout":      cfg.Source.Timeout,
		"max_attempts": retryCfg.MaxAttempts,
	}).Info("fetcher initialized")

	return f
}

// Fetch retrieves the main SANA payload.
func (f *Fetcher) Fetch(ctx context.Context) (*Payload, error) {
	return f.fetchEndpoint(ctx, f.config.Source.URL)
}

// FetchHistorical probes the configured historical endpoints after a main
// fetch. Endpoints that fail or return the same document as the main
// payload are skipped; each distinct successful payload is returned.
func (f *Fetcher) FetchHistorical(ctx context.Context, main *Payload) []*Payload {
	log := f.log.WithComponent("fetcher")

	if !f.config.Source.Historical.Enabled {
		return nil
	}

	var extra []*Payload
	for _, endpoint := range f.config.Source.Historical.Endpoints {
		p, err := f.fetchEndpoint(ctx, endpoint)
		if err != nil {
			log.WithError(err).WithFields(logger.Fields{"endpoint": endpoint}).Warn("historical endpoint failed")
			continue
		}
		if main != nil && bytes.Equal(p.Body, main.Body) {
			log.WithFields(logger.Fields{"endpoint": endpoint}).Debug("historical endpoint returned main payload, skipping")
			continue
		}
		extra = append(extra, p)
	}
	return extra
}

func (f *Fetcher) fetchEndpoint(ctx context.Context, endpoint string) (*Payload, error) {
	log := f.log.WithComponent("fetcher").WithFields(logger.Fields{
		"endpoint":  endpoint,
		"operation": "fetch",
	})

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	resp, err := f.client.R().SetContext(ctx).Get(endpoint)
	duration := time.Since(start)
	logger.IncrementFetch()

	if err != nil {
		log.WithError(err).Warn("request failed")
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		log.WithFields(logger.Fields{"status": resp.StatusCode()}).Warn("unexpected status")
		return nil, fmt.Errorf("fetch %s: unexpected status %d", endpoint, resp.StatusCode())
	}

	logger.LogPerformanceEntry(log, "fetcher", "api_request", duration, logger.Fields{
		"status":   resp.StatusCode(),
		"attempts": resp.Request.Attempt,
		"bytes":    len(resp.Body()),
	})

	body := resp.Body()

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		log.WithError(err).Warn("failed to decode response body")
		return nil, fmt.Errorf("decode %s: %w", endpoint, err)
	}

	return &Payload{
		Endpoint:  endpoint,
		Body:      body,
		Data:      data,
		FetchedAt: time.Now().UTC(),
	}, nil
}
