package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/optrader/optrader/internal/chain"
	"github.com/optrader/optrader/internal/observ"
)

// HTTPConfig holds configuration for the chain API client.
type HTTPConfig struct {
	BaseURL            string
	APIKey             string
	RateLimitPerMinute int
	TimeoutSeconds     int
}

// HTTP fetches option chains over the vendor's REST API. All calls share one
// rate limiter so parallel batch fetches stay inside the vendor's quota.
type HTTP struct {
	cfg         HTTPConfig
	client      *http.Client
	rateLimiter *rate.Limiter
}

func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("provider base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("provider API key is required")
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 120
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 10
	}
	return &HTTP{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(float64(cfg.RateLimitPerMinute)/60), 1),
	}, nil
}

// OptionChain fetches one ticker's chain out to maxExpiration with at most
// strikeCount strikes per side.
func (h *HTTP) OptionChain(ctx context.Context, ticker, maxExpiration string, strikeCount int) (*chain.Chain, error) {
	if err := h.rateLimiter.Wait(ctx); err != nil {
		return nil, &RequestError{Ticker: ticker, Message: "rate limit wait cancelled", Cause: err}
	}

	params := url.Values{
		"apikey":        {h.cfg.APIKey},
		"symbol":        {ticker},
		"toDate":        {maxExpiration},
		"strikeCount":   {strconv.Itoa(strikeCount)},
		"includeQuotes": {"FALSE"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &RequestError{Ticker: ticker, Message: "failed to create request", Cause: err}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		observ.QuoteRequests.WithLabelValues("error").Inc()
		return nil, &RequestError{Ticker: ticker, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		observ.QuoteRequests.WithLabelValues("rate_limited").Inc()
		return nil, &RequestError{Ticker: ticker, Message: "vendor rate limit exceeded"}
	}
	if resp.StatusCode != http.StatusOK {
		observ.QuoteRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &RequestError{Ticker: ticker,
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body))}
	}

	var ch chain.Chain
	if err := json.NewDecoder(resp.Body).Decode(&ch); err != nil {
		observ.QuoteRequests.WithLabelValues("error").Inc()
		return nil, &RequestError{Ticker: ticker, Message: "failed to parse chain", Cause: err}
	}
	if ch.Symbol == "" {
		ch.Symbol = ticker
	}
	observ.QuoteRequests.WithLabelValues("ok").Inc()
	return &ch, nil
}
