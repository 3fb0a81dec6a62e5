package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrInvalidProxyAddress is returned when the proxy address is not in
	// "host:port" form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrEmptyURL is returned when Fetch is called without a URL.
	ErrEmptyURL = errors.New("empty URL")

	// ErrBodyTooLarge is wrapped by the error of a response exceeding the
	// body size limit. A truncated page is never returned.
	ErrBodyTooLarge = errors.New("response body too large")
)

// ErrorKind classifies a fetch failure.
type ErrorKind int

const (
	// KindNetwork covers connection, DNS, TLS and read failures.
	KindNetwork ErrorKind = iota

	// KindTimeout means the request did not finish within its deadline.
	KindTimeout

	// KindHTTPStatus means the server answered with a non-2xx status.
	KindHTTPStatus
)

// String returns the name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	default:
		return "unknown"
	}
}

// Error is a failed fetch. It aborts only the request it belongs to.
type Error struct {
	Kind ErrorKind
	URL  string

	// StatusCode is set for KindHTTPStatus.
	StatusCode int

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("fetch %s: http status %d", e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a fetch timeout.
func IsTimeout(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == KindTimeout
}

// classify wraps a transport error into an *Error.
func classify(rawURL string, err error) *Error {
	kind := KindNetwork
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, URL: rawURL, Err: err}
}
