package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/net/proxy"
)

// Fetcher retrieves the raw HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Default request settings.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultMaxBodySize    = 10 * 1024 * 1024
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "es-ES,es;q=0.9,en;q=0.8"
	defaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	maxRedirects          = 10
)

// HTTPFetcher fetches pages over HTTP.
type HTTPFetcher struct {
	client      *http.Client
	maxBodySize int64
	logger      *slog.Logger
}

// Option configures an HTTPFetcher.
type Option func(*options)

type options struct {
	timeout     time.Duration
	maxBodySize int64
	headers     map[string]string
	cookie      string
	proxyAddr   string
	transport   http.RoundTripper
	logger      *slog.Logger
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithMaxBodySize limits how many bytes of a response are read.
func WithMaxBodySize(n int64) Option {
	return func(o *options) {
		o.maxBodySize = n
	}
}

// WithHeader sets a header sent with every request. Setting an empty value
// removes a default header.
func WithHeader(key, value string) Option {
	return func(o *options) {
		o.headers[http.CanonicalHeaderKey(key)] = value
	}
}

// WithHeaders sets several headers at once.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		for k, v := range headers {
			o.headers[http.CanonicalHeaderKey(k)] = v
		}
	}
}

// WithCookie sets a raw Cookie header value such as "session=abc".
func WithCookie(cookie string) Option {
	return func(o *options) {
		o.cookie = cookie
	}
}

// WithProxy routes requests through a SOCKS5 proxy at "host:port".
func WithProxy(addr string) Option {
	return func(o *options) {
		o.proxyAddr = addr
	}
}

// WithTransport replaces the base transport. Used by tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates an HTTPFetcher.
//
// Design decision: Identifying headers are injected by a RoundTripper
// wrapper rather than set per request because:
//  1. Redirect follow-ups carry the same identity
//  2. Callers never pass headers around; configuration owns them
//  3. The same wrapper works over a direct or proxied transport
func New(opts ...Option) (*HTTPFetcher, error) {
	o := &options{
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
		headers: map[string]string{
			"User-Agent":      DefaultUserAgent,
			"Accept":          defaultAccept,
			"Accept-Language": DefaultAcceptLanguage,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	base := o.transport
	if base == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.MaxIdleConnsPerHost = 2
		t.IdleConnTimeout = 30 * time.Second
		if o.proxyAddr != "" {
			if !isValidProxyAddress(o.proxyAddr) {
				return nil, ErrInvalidProxyAddress
			}
			dialer, err := proxy.SOCKS5("tcp", o.proxyAddr, nil, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
			}
			t.Proxy = nil
			t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				if cd, ok := dialer.(proxy.ContextDialer); ok {
					return cd.DialContext(ctx, network, addr)
				}
				return dialer.Dial(network, addr)
			}
		}
		base = t
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	client := &http.Client{
		Transport: &headerInjectingTransport{
			base:    base,
			cookie:  o.cookie,
			headers: o.headers,
		},
		Timeout: o.timeout,
		Jar:     jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	return &HTTPFetcher{
		client:      client,
		maxBodySize: o.maxBodySize,
		logger:      o.logger,
	}, nil
}

// Fetch returns the UTF-8 body of rawURL.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrEmptyURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(rawURL, err)
	}
	defer resp.Body.Close()

	f.logger.Debug("fetched page",
		"url", rawURL,
		"status", resp.StatusCode,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // best effort
		return nil, &Error{Kind: KindHTTPStatus, URL: rawURL, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, classify(rawURL, err)
	}
	if int64(len(raw)) > f.maxBodySize {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, f.maxBodySize)}
	}

	utf8Body, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		// Unknown charset label; fall back to the raw bytes.
		return raw, nil
	}
	data, err := io.ReadAll(utf8Body)
	if err != nil {
		return nil, classify(rawURL, err)
	}
	return data, nil
}

// headerInjectingTransport wraps an http.RoundTripper to inject the
// configured headers and cookie into every request.
type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	for k, v := range t.headers {
		if v == "" {
			clone.Header.Del(k)
			continue
		}
		if clone.Header.Get(k) == "" {
			clone.Header.Set(k, v)
		}
	}
	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}
	return t.base.RoundTrip(clone)
}

// isValidProxyAddress checks that address is "host:port" with a port in
// 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}
