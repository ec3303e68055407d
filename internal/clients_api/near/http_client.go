package near

// Package near contains the client for NEAR Protocol data sources.
// This file holds the base HTTP transport shared by the RPC (balance) and
// NearBlocks (transaction history) endpoints. It knows nothing about the
// watchlist, it only sends requests and returns raw responses.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"near-monitor/internal/infra/log"
	"near-monitor/internal/infra/retry"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// MainnetRPCURL is the default NEAR JSON-RPC endpoint.
	MainnetRPCURL = "https://rpc.mainnet.near.org"
	// NearblocksAPIURL is the default NearBlocks REST API base.
	NearblocksAPIURL = "https://api.nearblocks.io/v1"
)

// Options configures a Client. Zero fields fall back to defaults.
type Options struct {
	RPCURL         string
	NearblocksURL  string
	RequestTimeout time.Duration
	MaxRetries     int
}

// Client talks to the NEAR RPC and the NearBlocks API with client-side
// rate limiting, a circuit breaker and bounded retries.
type Client struct {
	rpcURL          string
	nearblocksURL   string
	httpClient      *http.Client
	rateLimiter     *rate.Limiter
	circuitBreaker  *gobreaker.CircuitBreaker
	maxRetries      int
	maxResponseSize int64
}

// NewClient builds a ready-to-use Client.
func NewClient(opts Options) *Client {
	if opts.RPCURL == "" {
		opts.RPCURL = MainnetRPCURL
	}
	if opts.NearblocksURL == "" {
		opts.NearblocksURL = NearblocksAPIURL
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	circuitBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "NearAPI",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		rpcURL:          opts.RPCURL,
		nearblocksURL:   opts.NearblocksURL,
		rateLimiter:     rate.NewLimiter(rate.Limit(10), 20),
		circuitBreaker:  circuitBreaker,
		maxRetries:      opts.MaxRetries,
		maxResponseSize: 10 * 1024 * 1024,
		httpClient: &http.Client{
			Timeout: opts.RequestTimeout,
			Transport: &http.Transport{
				DisableKeepAlives: false,
				MaxIdleConns:      10,
				IdleConnTimeout:   90 * time.Second,
			},
		},
	}
}

// makeRequest performs one HTTP exchange with rate limiting, circuit
// breaking and retries for transient upstream errors. body may be nil.
func (c *Client) makeRequest(ctx context.Context, method, url string, body interface{}) ([]byte, error) {
	requestID := log.GenerateRequestID()
	startTime := time.Now()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var respBody []byte
	err := retry.Do(ctx, retry.Options{MaxRetries: c.maxRetries}, func() error {
		_, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			b, err := c.doRequest(ctx, requestID, method, url, body, startTime)
			if err != nil {
				return nil, err
			}
			respBody = b
			return b, nil
		})
		return err
	})
	if err != nil {
		log.LogError("Request failed",
			zap.String("request_id", requestID), zap.String("endpoint", url), zap.Error(err))
		return nil, err
	}

	return respBody, nil
}

func (c *Client) doRequest(ctx context.Context, requestID, method, url string, body interface{}, startTime time.Time) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log.LogRequest(requestID, method, url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		duration := time.Since(startTime).Milliseconds()
		log.LogResponse(requestID, 0, duration, zap.String("endpoint", url), zap.Error(err))
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize))
	if err != nil {
		duration := time.Since(startTime).Milliseconds()
		log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", url), zap.Error(err))
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	duration := time.Since(startTime).Milliseconds()
	log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", url))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	return respBody, nil
}
