package kanjialive

import (
	"context"
	"errors"
	"fmt"
	"net"

	. "github.com/roelfdiedericks/kanjiclaw/internal/logging"
)

// ErrorKind categorizes upstream failures for user messaging decisions.
// The caller only ever sees the kind and the safe message; raw bodies and
// transport errors stay in the logs.
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation-error"
	KindNotFound            ErrorKind = "not-found"
	KindBadRequest          ErrorKind = "bad-request"
	KindRateLimited         ErrorKind = "rate-limited"
	KindUpstreamUnavailable ErrorKind = "upstream-unavailable"
	KindUpstreamError       ErrorKind = "upstream-error"
	KindTimeout             ErrorKind = "timeout"
	KindNetwork             ErrorKind = "network-error"
	KindInternal            ErrorKind = "internal-error"
	KindConfiguration       ErrorKind = "configuration-error"
)

// Error is a classified failure. Message is safe to show to the caller;
// internal detail is carried separately and only reaches the log sink.
type Error struct {
	Kind    ErrorKind
	Message string
	detail  string
	err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.err }

// Detail returns the internal diagnostic string (may be empty).
func (e *Error) Detail() string { return e.detail }

// AsError unwraps err into a classified *Error if it is one.
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// Upstream dataset scope, quoted in not-found messages so the model can
// self-correct instead of retrying out-of-scope lookups.
const datasetScope = "Kanji Alive supports 1,235 kanji comprising those taught in " +
	"Japanese elementary schools up to Grade 6 and those taught up to the level of N2 " +
	"of the Japanese Language Proficiency Test conducted by the Japan Foundation."

const bodyLogLimit = 500

// classifyStatus maps a non-2xx HTTP status to a classified error.
// The response body never reaches the caller; for unrecognized statuses a
// truncated copy goes to the log.
func classifyStatus(status int, body []byte) *Error {
	switch {
	case status == 404:
		return &Error{
			Kind: KindNotFound,
			Message: "Resource not found. The kanji may not be in the database, " +
				"or the search parameters didn't match any results. " + datasetScope,
			detail: truncate(body),
		}
	case status == 400:
		return &Error{
			Kind: KindBadRequest,
			Message: "Invalid request. Please check that your search parameters are correct. " +
				"For readings, use romaji or appropriate Japanese characters.",
			detail: truncate(body),
		}
	case status == 429:
		return &Error{
			Kind:    KindRateLimited,
			Message: "Rate limit exceeded. Please wait a moment before making more requests.",
			detail:  truncate(body),
		}
	case status >= 500 && status <= 599:
		return &Error{
			Kind:    KindUpstreamUnavailable,
			Message: "Kanji Alive server error. Please try again later.",
			detail:  truncate(body),
		}
	default:
		L_warn("kanjialive: unexpected API status", "status", status, "body", truncate(body))
		return &Error{
			Kind: KindUpstreamError,
			Message: fmt.Sprintf("API request failed with status %d. "+
				"Please check your request parameters and try again.", status),
			detail: truncate(body),
		}
	}
}

// classifyTransport maps a failed round trip (no HTTP status available)
// to timeout or network-error.
func classifyTransport(err error) *Error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &Error{
			Kind: KindTimeout,
			Message: "Request timed out. The Kanji Alive API may be experiencing issues. " +
				"Please try again.",
			detail: err.Error(),
			err:    err,
		}
	}
	return &Error{
		Kind:    KindNetwork,
		Message: "Network error. Please check your internet connection.",
		detail:  err.Error(),
		err:     err,
	}
}

// ClassifyUnexpected is the terminal catch for tool handlers: anything that
// is not already classified becomes a generic internal error, with the full
// detail logged here and never shown to the caller.
func ClassifyUnexpected(err error) *Error {
	if ce, ok := AsError(err); ok {
		return ce
	}
	L_error("kanjialive: unexpected error", "error", err)
	return &Error{
		Kind: KindInternal,
		Message: "An unexpected error occurred while processing your request. " +
			"Please try again. If the problem persists, check the server logs for details.",
		detail: err.Error(),
		err:    err,
	}
}

// CheckNotEmpty validates that a successful payload actually carries data.
// An empty array is a legitimate "no matches" search outcome; an empty
// object from a detail lookup means the kanji is not in the dataset, and a
// null payload means the upstream response was malformed.
func CheckNotEmpty(payload any, queryInfo string) *Error {
	switch v := payload.(type) {
	case []any:
		if len(v) == 0 {
			L_debug("kanjialive: empty result set", "query", queryInfo)
		}
		return nil
	case map[string]any:
		if len(v) == 0 {
			return &Error{
				Kind: KindNotFound,
				Message: fmt.Sprintf("The API returned no data for %s. "+
					"The kanji may not exist in the database. ", queryInfo) + datasetScope,
			}
		}
		return nil
	case nil:
		return &Error{
			Kind: KindUpstreamError,
			Message: fmt.Sprintf("The API returned an empty response for %s. "+
				"This may indicate a server error.", queryInfo),
		}
	default:
		return nil
	}
}

func truncate(body []byte) string {
	if len(body) > bodyLogLimit {
		return string(body[:bodyLogLimit])
	}
	return string(body)
}
