// Package kanjialive is a small SDK for the Kanji Alive API on RapidAPI.
//
// It owns the outbound HTTP layer: one long-lived client, bounded
// retry-with-backoff for transient failures, client-side rate limiting, and
// translation of every failure into a classified, user-safe error. The MCP
// tool wrappers in internal/tools stay thin on top of it.
package kanjialive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/roelfdiedericks/kanjiclaw/internal/config"
	. "github.com/roelfdiedericks/kanjiclaw/internal/logging"
)

const userAgent = "kanjiclaw/1.0 (+https://github.com/roelfdiedericks/kanjiclaw)"

// Outbound request budget. RapidAPI free tier is generous enough that a
// small steady rate with a burst covers interactive tool use.
const (
	requestsPerSecond = 2
	requestBurst      = 4
)

// HTTPClient is the transport interface; *http.Client satisfies it.
// Tests substitute a scripted transport.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestInfo is metadata about the attempt that succeeded. Returned
// alongside the payload so tool responses can report what was asked and when.
type RequestInfo struct {
	Endpoint  string
	Params    map[string]string
	Timestamp time.Time
}

// Client talks to the Kanji Alive API. One instance lives for the whole
// process; it holds no per-call state, so concurrent calls are safe.
type Client struct {
	apiKey     string
	host       string
	baseURL    string
	httpClient HTTPClient
	limiter    *rate.Limiter

	// sleep and jitter are injection points for retry-timing tests.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() float64
}

// New creates a client from the API configuration.
func New(cfg config.APIConfig) *Client {
	return &Client{
		apiKey:  cfg.Key,
		host:    cfg.Host,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		sleep:   sleepCtx,
		jitter:  jitterSource(),
	}
}

// Get fetches {baseURL}/{endpoint} with optional query parameters, retrying
// transient failures, and returns the decoded JSON payload plus request
// metadata. Any path-embedded characters in endpoint must already be
// URL-escaped by the caller.
//
// Retryable: HTTP 429, any 5xx, and transport-level failures. Everything
// else fails on first occurrence. After the final attempt the last
// classified failure is returned.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (any, RequestInfo, error) {
	reqURL := c.baseURL + "/" + endpoint

	backoff := initialBackoff
	var lastErr *Error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, RequestInfo{}, classifyTransport(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, RequestInfo{}, ClassifyUnexpected(err)
		}
		if len(params) > 0 {
			req.URL.RawQuery = params.Encode()
		}
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
		req.Header.Set("X-RapidAPI-Host", c.host)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = classifyTransport(err)
			if attempt < maxAttempts {
				delay := jitteredDelay(backoff, maxBackoff, c.jitter)
				L_warn("kanjialive: transport error, retrying",
					"kind", lastErr.Kind, "delay", delay, "attempt", attempt, "max", maxAttempts)
				if serr := c.sleep(ctx, delay); serr != nil {
					return nil, RequestInfo{}, classifyTransport(serr)
				}
				backoff = nextBackoff(backoff, maxBackoff)
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = classifyTransport(readErr)
			if attempt < maxAttempts {
				delay := jitteredDelay(backoff, maxBackoff, c.jitter)
				L_warn("kanjialive: failed reading response, retrying",
					"delay", delay, "attempt", attempt, "max", maxAttempts)
				if serr := c.sleep(ctx, delay); serr != nil {
					return nil, RequestInfo{}, classifyTransport(serr)
				}
				backoff = nextBackoff(backoff, maxBackoff)
			}
			continue
		}

		status := resp.StatusCode
		if status == http.StatusTooManyRequests || (status >= 500 && status <= 599) {
			lastErr = classifyStatus(status, body)
			if attempt < maxAttempts {
				delay := c.retryDelay(status, resp.Header, backoff, attempt)
				if serr := c.sleep(ctx, delay); serr != nil {
					return nil, RequestInfo{}, classifyTransport(serr)
				}
				// The backoff keeps doubling even when Retry-After
				// dictated this delay.
				backoff = nextBackoff(backoff, maxBackoff)
			}
			continue
		}

		if status != http.StatusOK {
			return nil, RequestInfo{}, classifyStatus(status, body)
		}

		var payload any
		if err := json.Unmarshal(body, &payload); err != nil {
			L_error("kanjialive: undecodable response body",
				"endpoint", endpoint, "error", err, "body", truncate(body))
			return nil, RequestInfo{}, &Error{
				Kind:    KindUpstreamError,
				Message: "The API returned a response that could not be decoded. Please try again later.",
				detail:  err.Error(),
				err:     err,
			}
		}

		if verr := validateShape(payload, endpoint); verr != nil {
			return nil, RequestInfo{}, verr
		}

		info := RequestInfo{
			Endpoint:  endpoint,
			Params:    flattenParams(params),
			Timestamp: time.Now(),
		}
		return payload, info, nil
	}

	if lastErr != nil {
		return nil, RequestInfo{}, lastErr
	}
	// Unreachable in practice: every failed attempt records a failure.
	return nil, RequestInfo{}, &Error{
		Kind:    KindUpstreamError,
		Message: fmt.Sprintf("Request failed after %d attempts. Please try again later.", maxAttempts),
	}
}

// retryDelay picks the sleep before the next attempt and logs it. A 429
// carrying a non-negative integer Retry-After header wins over the computed
// backoff, capped at the same maximum.
func (c *Client) retryDelay(status int, header http.Header, backoff time.Duration, attempt int) time.Duration {
	if status == http.StatusTooManyRequests {
		if s := header.Get("Retry-After"); s != "" {
			if sec, err := strconv.Atoi(s); err == nil && sec >= 0 {
				delay := time.Duration(sec) * time.Second
				if delay > maxBackoff {
					delay = maxBackoff
				}
				L_warn("kanjialive: rate limited, honoring Retry-After",
					"retry-after", s, "delay", delay, "attempt", attempt, "max", maxAttempts)
				return delay
			}
		}
		delay := jitteredDelay(backoff, maxBackoff, c.jitter)
		L_warn("kanjialive: rate limited, backing off",
			"delay", delay, "attempt", attempt, "max", maxAttempts)
		return delay
	}

	delay := jitteredDelay(backoff, maxBackoff, c.jitter)
	L_warn("kanjialive: server error, retrying",
		"status", status, "delay", delay, "attempt", attempt, "max", maxAttempts)
	return delay
}

// validateShape checks the payload container against the endpoint class:
// search endpoints return an array of objects, kanji endpoints return one
// object. A missing "kanji" key is logged but tolerated; the wrong
// container kind is a malformed upstream response and is not retried.
func validateShape(payload any, endpoint string) *Error {
	switch {
	case strings.HasPrefix(endpoint, "search"):
		list, ok := payload.([]any)
		if !ok {
			L_error("kanjialive: unexpected search payload shape",
				"endpoint", endpoint, "type", fmt.Sprintf("%T", payload))
			return &Error{
				Kind:    KindUpstreamError,
				Message: "The API returned an unexpected format for search. Expected a list of results.",
			}
		}
		for i, item := range list {
			entry, ok := item.(map[string]any)
			if !ok {
				L_error("kanjialive: search result is not an object",
					"endpoint", endpoint, "index", i, "type", fmt.Sprintf("%T", item))
				return &Error{
					Kind:    KindUpstreamError,
					Message: "The API returned an unexpected format for search results.",
				}
			}
			if _, ok := entry["kanji"]; !ok {
				L_warn("kanjialive: search result missing kanji field", "index", i)
			}
		}
	case strings.HasPrefix(endpoint, "kanji"):
		obj, ok := payload.(map[string]any)
		if !ok {
			L_error("kanjialive: unexpected detail payload shape",
				"endpoint", endpoint, "type", fmt.Sprintf("%T", payload))
			return &Error{
				Kind:    KindUpstreamError,
				Message: "The API returned an unexpected format for kanji details.",
			}
		}
		if len(obj) > 0 {
			if _, ok := obj["kanji"]; !ok {
				L_warn("kanjialive: detail response missing kanji field", "endpoint", endpoint)
			}
		}
	}
	return nil
}

func flattenParams(params url.Values) map[string]string {
	out := make(map[string]string, len(params))
	for k := range params {
		out[k] = params.Get(k)
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
