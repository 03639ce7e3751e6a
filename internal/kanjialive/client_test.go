package kanjialive

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/roelfdiedericks/kanjiclaw/internal/logging"
)

func init() {
	logging.Init(logging.DefaultConfig())
}

type scriptedResponse struct {
	status int
	body   string
	header http.Header
	err    error
}

// scriptedTransport plays back a fixed sequence of responses and records
// every request it saw.
type scriptedTransport struct {
	responses []scriptedResponse
	requests  []*http.Request
}

func (s *scriptedTransport) Do(req *http.Request) (*http.Response, error) {
	s.requests = append(s.requests, req)
	if len(s.requests) > len(s.responses) {
		return nil, errors.New("scripted transport exhausted")
	}
	r := s.responses[len(s.requests)-1]
	if r.err != nil {
		return nil, r.err
	}
	header := r.header
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: r.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(r.body)),
	}, nil
}

// newTestClient wires a client to the scripted transport with zero jitter,
// no real rate limiting, and a sleep that only records its durations.
func newTestClient(t *testing.T, transport *scriptedTransport) (*Client, *[]time.Duration) {
	t.Helper()

	sleeps := &[]time.Duration{}
	c := &Client{
		apiKey:     "test-key",
		host:       "kanjialive-api.p.rapidapi.com",
		baseURL:    "https://kanjialive-api.p.rapidapi.com/api/public",
		httpClient: transport,
		limiter:    rate.NewLimiter(rate.Inf, 0),
		sleep: func(ctx context.Context, d time.Duration) error {
			*sleeps = append(*sleeps, d)
			return nil
		},
		jitter: func() float64 { return 0 },
	}
	return c, sleeps
}

func requireKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	ce, ok := AsError(err)
	if !ok {
		t.Fatalf("expected classified error, got %T: %v", err, err)
	}
	if ce.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%s)", kind, ce.Kind, ce.Message)
	}
	return ce
}

func TestGetSuccessFirstAttempt(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 200, body: `[{"kanji":{"character":"親"}}]`},
	}}
	c, sleeps := newTestClient(t, transport)

	payload, info, err := c.Get(context.Background(), "search/parent", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, ok := payload.([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("expected 1-element list, got %#v", payload)
	}
	if len(transport.requests) != 1 {
		t.Errorf("expected 1 request, got %d", len(transport.requests))
	}
	if len(*sleeps) != 0 {
		t.Errorf("expected no sleeps, got %v", *sleeps)
	}
	if info.Endpoint != "search/parent" {
		t.Errorf("expected endpoint in info, got %q", info.Endpoint)
	}
	if info.Timestamp.IsZero() {
		t.Error("expected a timestamp on success")
	}
}

func TestGetSetsHeadersAndQuery(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 200, body: `[]`},
	}}
	c, _ := newTestClient(t, transport)

	params := url.Values{}
	params.Set("ks", "7")
	params.Set("grade", "2")
	if _, _, err := c.Get(context.Background(), "search/advanced", params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := transport.requests[0]
	if got := req.Header.Get("X-RapidAPI-Key"); got != "test-key" {
		t.Errorf("X-RapidAPI-Key = %q", got)
	}
	if got := req.Header.Get("X-RapidAPI-Host"); got != "kanjialive-api.p.rapidapi.com" {
		t.Errorf("X-RapidAPI-Host = %q", got)
	}
	if got := req.Header.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q", got)
	}
	if got := req.Header.Get("User-Agent"); got == "" {
		t.Error("User-Agent not set")
	}
	q := req.URL.Query()
	if q.Get("ks") != "7" || q.Get("grade") != "2" {
		t.Errorf("query not encoded: %s", req.URL.RawQuery)
	}
}

func TestGetRetriesServerErrorThenSucceeds(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 500, body: `{"message":"boom"}`},
		{status: 200, body: `[]`},
	}}
	c, sleeps := newTestClient(t, transport)

	if _, _, err := c.Get(context.Background(), "search/parent", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(transport.requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(transport.requests))
	}
	// Zero jitter: first retry waits exactly the initial backoff.
	if len(*sleeps) != 1 || (*sleeps)[0] != 500*time.Millisecond {
		t.Errorf("expected one 500ms sleep, got %v", *sleeps)
	}
}

func TestGetExhaustsRetriesOnServerError(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 503, body: ``},
		{status: 503, body: ``},
		{status: 503, body: ``},
	}}
	c, sleeps := newTestClient(t, transport)

	_, _, err := c.Get(context.Background(), "search/parent", nil)
	requireKind(t, err, KindUpstreamUnavailable)

	if len(transport.requests) != maxAttempts {
		t.Errorf("expected %d requests, got %d", maxAttempts, len(transport.requests))
	}
	// Backoff doubles between attempts: 500ms, then 1s. No sleep after the
	// final attempt.
	want := []time.Duration{500 * time.Millisecond, time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), *sleeps)
	}
	for i, d := range want {
		if (*sleeps)[i] != d {
			t.Errorf("sleep %d = %v, want %v", i, (*sleeps)[i], d)
		}
	}
}

func TestGetHonorsRetryAfter(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 429, header: http.Header{"Retry-After": []string{"5"}}},
		{status: 200, body: `[]`},
	}}
	c, sleeps := newTestClient(t, transport)

	if _, _, err := c.Get(context.Background(), "search/parent", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != 5*time.Second {
		t.Errorf("expected exactly one 5s sleep for Retry-After: 5, got %v", *sleeps)
	}
}

func TestGetCapsRetryAfter(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 429, header: http.Header{"Retry-After": []string{"120"}}},
		{status: 200, body: `[]`},
	}}
	c, sleeps := newTestClient(t, transport)

	if _, _, err := c.Get(context.Background(), "search/parent", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != maxBackoff {
		t.Errorf("expected Retry-After capped at %v, got %v", maxBackoff, *sleeps)
	}
}

func TestGetIgnoresMalformedRetryAfter(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 429, header: http.Header{"Retry-After": []string{"soon"}}},
		{status: 200, body: `[]`},
	}}
	c, sleeps := newTestClient(t, transport)

	if _, _, err := c.Get(context.Background(), "search/parent", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Malformed header falls back to computed backoff.
	if len(*sleeps) != 1 || (*sleeps)[0] != 500*time.Millisecond {
		t.Errorf("expected 500ms fallback sleep, got %v", *sleeps)
	}
}

func TestGetBackoffKeepsDoublingPastRetryAfter(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 429, header: http.Header{"Retry-After": []string{"2"}}},
		{status: 429},
		{status: 200, body: `[]`},
	}}
	c, sleeps := newTestClient(t, transport)

	if _, _, err := c.Get(context.Background(), "search/parent", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// First delay comes from the header; the schedule still advanced, so the
	// second delay is the doubled backoff, not the initial one.
	want := []time.Duration{2 * time.Second, time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), *sleeps)
	}
	for i, d := range want {
		if (*sleeps)[i] != d {
			t.Errorf("sleep %d = %v, want %v", i, (*sleeps)[i], d)
		}
	}
}

func TestGetRateLimitExhaustion(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 429}, {status: 429}, {status: 429},
	}}
	c, _ := newTestClient(t, transport)

	_, _, err := c.Get(context.Background(), "search/parent", nil)
	requireKind(t, err, KindRateLimited)
	if len(transport.requests) != maxAttempts {
		t.Errorf("expected %d requests, got %d", maxAttempts, len(transport.requests))
	}
}

func TestGetNotFoundIsNotRetried(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 404, body: `{"error":"not found"}`},
	}}
	c, sleeps := newTestClient(t, transport)

	_, _, err := c.Get(context.Background(), "kanji/%E9%BE%9C", nil)
	ce := requireKind(t, err, KindNotFound)

	if len(transport.requests) != 1 {
		t.Errorf("404 must not be retried, got %d requests", len(transport.requests))
	}
	if len(*sleeps) != 0 {
		t.Errorf("404 must not sleep, got %v", *sleeps)
	}
	if !strings.Contains(ce.Message, "1,235 kanji") {
		t.Errorf("not-found message should describe the dataset scope, got %q", ce.Message)
	}
	if strings.Contains(ce.Message, "not found\"") {
		t.Errorf("response body leaked into message: %q", ce.Message)
	}
}

func TestGetBadRequestIsNotRetried(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 400, body: `bad`},
	}}
	c, _ := newTestClient(t, transport)

	_, _, err := c.Get(context.Background(), "search/advanced", nil)
	requireKind(t, err, KindBadRequest)
	if len(transport.requests) != 1 {
		t.Errorf("400 must not be retried, got %d requests", len(transport.requests))
	}
}

func TestGetUnexpectedStatus(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 418, body: `teapot`},
	}}
	c, _ := newTestClient(t, transport)

	_, _, err := c.Get(context.Background(), "search/parent", nil)
	ce := requireKind(t, err, KindUpstreamError)
	if !strings.Contains(ce.Message, "418") {
		t.Errorf("message should name the status, got %q", ce.Message)
	}
	if len(transport.requests) != 1 {
		t.Errorf("unexpected status must not be retried, got %d requests", len(transport.requests))
	}
}

func TestGetRetriesTransportError(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
	}}
	c, sleeps := newTestClient(t, transport)

	_, _, err := c.Get(context.Background(), "search/parent", nil)
	requireKind(t, err, KindNetwork)
	if len(transport.requests) != maxAttempts {
		t.Errorf("expected %d attempts, got %d", maxAttempts, len(transport.requests))
	}
	if len(*sleeps) != maxAttempts-1 {
		t.Errorf("expected %d sleeps, got %v", maxAttempts-1, *sleeps)
	}
}

func TestGetClassifiesTimeout(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{err: &url.Error{Op: "Get", URL: "https://example", Err: context.DeadlineExceeded}},
		{err: &url.Error{Op: "Get", URL: "https://example", Err: context.DeadlineExceeded}},
		{err: &url.Error{Op: "Get", URL: "https://example", Err: context.DeadlineExceeded}},
	}}
	c, _ := newTestClient(t, transport)

	_, _, err := c.Get(context.Background(), "kanji/%E8%A6%AA", nil)
	requireKind(t, err, KindTimeout)
}

func TestGetUndecodableBodyIsTerminal(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 200, body: `<html>not json</html>`},
	}}
	c, sleeps := newTestClient(t, transport)

	_, _, err := c.Get(context.Background(), "search/parent", nil)
	requireKind(t, err, KindUpstreamError)
	if len(transport.requests) != 1 {
		t.Errorf("decode failure must not be retried, got %d requests", len(transport.requests))
	}
	if len(*sleeps) != 0 {
		t.Errorf("decode failure must not sleep, got %v", *sleeps)
	}
}

func TestGetRejectsWrongSearchShape(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 200, body: `{"message":"welcome"}`},
	}}
	c, _ := newTestClient(t, transport)

	_, _, err := c.Get(context.Background(), "search/parent", nil)
	ce := requireKind(t, err, KindUpstreamError)
	if !strings.Contains(ce.Message, "list") {
		t.Errorf("message should mention the expected list shape, got %q", ce.Message)
	}
	if len(transport.requests) != 1 {
		t.Errorf("shape failure must not be retried, got %d requests", len(transport.requests))
	}
}

func TestGetRejectsNonObjectSearchElement(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 200, body: `[{"kanji":{}}, "stray"]`},
	}}
	c, _ := newTestClient(t, transport)

	_, _, err := c.Get(context.Background(), "search/parent", nil)
	requireKind(t, err, KindUpstreamError)
}

func TestGetRejectsWrongDetailShape(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 200, body: `["not","an","object"]`},
	}}
	c, _ := newTestClient(t, transport)

	_, _, err := c.Get(context.Background(), "kanji/%E8%A6%AA", nil)
	requireKind(t, err, KindUpstreamError)
}

func TestGetToleratesMissingKanjiField(t *testing.T) {
	// Missing "kanji" keys are logged but the payload still flows through.
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 200, body: `[{"radical":{"character":"⾒"}}]`},
	}}
	c, _ := newTestClient(t, transport)

	payload, _, err := c.Get(context.Background(), "search/parent", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list, ok := payload.([]any); !ok || len(list) != 1 {
		t.Fatalf("expected payload to survive, got %#v", payload)
	}
}

func TestGetCancelledContextStopsRetries(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 503},
		{status: 200, body: `[]`},
	}}
	c, _ := newTestClient(t, transport)
	c.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	_, _, err := c.Get(context.Background(), "search/parent", nil)
	requireKind(t, err, KindNetwork)
	if len(transport.requests) != 1 {
		t.Errorf("expected retries to stop after cancelled sleep, got %d requests", len(transport.requests))
	}
}
