// pkg/transport/transport.go
package transport

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	utls "github.com/refraction-networking/utls"
	"github.com/rs/zerolog/log"
	proxy "golang.org/x/net/proxy"
)

// Fingerprints without ALPN keep the server on HTTP/1.1, which is all
// http.Transport can speak over a custom TLS dialer.
var clientHelloIDs = []utls.ClientHelloID{
	utls.HelloRandomizedNoALPN,
	utls.HelloGolang,
}

// StatusError is returned for a final non-2xx response
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

type ProxyRotator struct {
	parsedURLs []*url.URL
	currentIdx uint32
}

func NewProxyRotator(proxyURLs []string) (*ProxyRotator, error) {
	rotator := &ProxyRotator{}

	for _, rawURL := range proxyURLs {
		if rawURL == "" {
			continue
		}
		parsedURL, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse proxy URL %s: %w", MaskProxyURL(rawURL), err)
		}
		rotator.parsedURLs = append(rotator.parsedURLs, parsedURL)
	}

	return rotator, nil
}

// NextProxy returns the next proxy in round-robin order, or nil when the
// rotator is empty and connections go direct.
func (r *ProxyRotator) NextProxy() *url.URL {
	if len(r.parsedURLs) == 0 {
		return nil
	}

	idx := atomic.AddUint32(&r.currentIdx, 1) % uint32(len(r.parsedURLs))
	return r.parsedURLs[idx]
}

func (r *ProxyRotator) Len() int {
	return len(r.parsedURLs)
}

type FingerprintingDialer struct {
	proxyURL *url.URL
}

func NewFingerprintingDialer(proxyURL *url.URL) *FingerprintingDialer {
	return &FingerprintingDialer{proxyURL: proxyURL}
}

func (d *FingerprintingDialer) DialTLSContext(ctx context.Context, network, addr string) (net.Conn, error) {
	var conn net.Conn
	var err error

	if d.proxyURL == nil {
		var dialer net.Dialer
		conn, err = dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, fmt.Errorf("direct dial: %w", err)
		}
	} else {
		conn, err = d.dialThroughProxy(ctx, network, addr)
		if err != nil {
			return nil, fmt.Errorf("proxy dial: %w", err)
		}
	}

	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}

	helloID := clientHelloIDs[rand.Intn(len(clientHelloIDs))]
	uconn := utls.UClient(conn, &utls.Config{ServerName: host}, helloID)
	if err := uconn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("uTLS handshake: %w", err)
	}

	return uconn, nil
}

func (d *FingerprintingDialer) dialThroughProxy(ctx context.Context, network, addr string) (net.Conn, error) {
	switch d.proxyURL.Scheme {
	case "http", "https":
		var dialer net.Dialer
		conn, err := dialer.DialContext(ctx, "tcp", d.proxyURL.Host)
		if err != nil {
			return nil, fmt.Errorf("dial HTTP proxy: %w", err)
		}

		req := &http.Request{
			Method: http.MethodConnect,
			URL:    &url.URL{Opaque: addr},
			Host:   addr,
			Header: make(http.Header),
		}
		if d.proxyURL.User != nil {
			if password, ok := d.proxyURL.User.Password(); ok {
				req.SetBasicAuth(d.proxyURL.User.Username(), password)
				req.Header.Set("Proxy-Authorization", req.Header.Get("Authorization"))
				req.Header.Del("Authorization")
			}
		}
		if err := req.Write(conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("write CONNECT: %w", err)
		}

		resp, err := http.ReadResponse(bufio.NewReader(conn), req)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("read CONNECT response: %w", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			conn.Close()
			return nil, fmt.Errorf("proxy CONNECT: status %d", resp.StatusCode)
		}

		return conn, nil

	case "socks5":
		auth := &proxy.Auth{}
		if d.proxyURL.User != nil {
			auth.User = d.proxyURL.User.Username()
			if password, ok := d.proxyURL.User.Password(); ok {
				auth.Password = password
			}
		}

		dialer, err := proxy.SOCKS5("tcp", d.proxyURL.Host, auth, &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("create SOCKS5 dialer: %w", err)
		}

		if cd, ok := dialer.(proxy.ContextDialer); ok {
			conn, err := cd.DialContext(ctx, network, addr)
			if err != nil {
				return nil, fmt.Errorf("dial via SOCKS5 proxy: %w", err)
			}
			return conn, nil
		}

		conn, err := dialer.Dial(network, addr)
		if err != nil {
			return nil, fmt.Errorf("dial via SOCKS5 proxy: %w", err)
		}
		return conn, nil

	default:
		return nil, fmt.Errorf("unsupported proxy scheme: %s", d.proxyURL.Scheme)
	}
}

// TLSFingerprintingTransport keeps one http.Transport per proxy so idle
// connections are never reused across proxies.
type TLSFingerprintingTransport struct {
	proxyRotator *ProxyRotator
	mu           sync.Mutex
	transports   map[string]*http.Transport
}

func NewTLSFingerprintingTransport(rotator *ProxyRotator) *TLSFingerprintingTransport {
	return &TLSFingerprintingTransport{
		proxyRotator: rotator,
		transports:   make(map[string]*http.Transport),
	}
}

func (t *TLSFingerprintingTransport) transportFor(proxyURL *url.URL) *http.Transport {
	key := ""
	if proxyURL != nil {
		key = proxyURL.String()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if tr, ok := t.transports[key]; ok {
		return tr
	}

	tr := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     false,
		DialTLSContext:        NewFingerprintingDialer(proxyURL).DialTLSContext,
	}
	if proxyURL != nil {
		tr.Proxy = http.ProxyURL(proxyURL)
	}
	t.transports[key] = tr
	return tr
}

func (t *TLSFingerprintingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.transportFor(t.proxyRotator.NextProxy()).RoundTrip(req)
}

func MaskProxyURL(proxyURL string) string {
	if !strings.Contains(proxyURL, "@") {
		return proxyURL
	}

	parsedURL, err := url.Parse(proxyURL)
	if err != nil || parsedURL.User == nil {
		return "[masked]"
	}

	username := parsedURL.User.Username()
	return strings.Replace(proxyURL, parsedURL.User.String(), username+":****", 1)
}

type RetryableClient struct {
	client     *http.Client
	maxRetries int
	userAgent  string
	baseDelay  time.Duration
}

// Options configures a RetryableClient
type Options struct {
	ProxyURLs  []string
	MaxRetries int
	UserAgent  string
	Timeout    time.Duration
	// BaseDelay is the first backoff step; it doubles on every retry.
	BaseDelay time.Duration
	// Transport overrides the fingerprinting transport, mainly for tests.
	Transport http.RoundTripper
}

func NewRetryableClient(opts Options) (*RetryableClient, error) {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.BaseDelay == 0 {
		opts.BaseDelay = time.Second
	}

	rt := opts.Transport
	if rt == nil {
		rotator, err := NewProxyRotator(opts.ProxyURLs)
		if err != nil {
			return nil, fmt.Errorf("failed to create proxy rotator: %w", err)
		}
		for i, p := range opts.ProxyURLs {
			log.Info().Int("index", i+1).Str("proxy", MaskProxyURL(p)).Msg("Registered proxy")
		}
		rt = NewTLSFingerprintingTransport(rotator)
		log.Info().Int("proxies", rotator.Len()).Msg("Created HTTP client with TLS fingerprinting")
	}

	return &RetryableClient{
		client:     &http.Client{Transport: rt, Timeout: opts.Timeout},
		maxRetries: opts.MaxRetries,
		userAgent:  opts.UserAgent,
		baseDelay:  opts.BaseDelay,
	}, nil
}

// Do sends req, retrying transport errors, 429 and 5xx responses with
// exponential backoff. The body is returned decompressed. Any other non-2xx
// status ends the attempts with a *StatusError.
//
// Requests that are not idempotent may already have taken effect when a 5xx
// or a broken connection is seen, so they are only resent after a 429 or a
// failed dial.
func (c *RetryableClient) Do(req *http.Request) (*http.Response, []byte, error) {
	if req.Header.Get("User-Agent") == "" && c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "gzip")
	}

	var reqBody []byte
	if req.Body != nil {
		var err error
		reqBody, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("reading request body: %w", err)
		}
		req.Body.Close()
	}

	var lastErr error
	var wait time.Duration
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			if wait == 0 {
				wait = c.baseDelay << uint(attempt-1)
			}
			log.Debug().Int("attempt", attempt+1).Dur("wait", wait).Str("url", req.URL.Path).Msg("Retrying request")
			if err := sleepContext(req.Context(), wait); err != nil {
				return nil, nil, err
			}
			wait = 0
		}
		if reqBody != nil {
			req.Body = io.NopCloser(bytes.NewReader(reqBody))
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, nil, req.Context().Err()
			}
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("Request error")
			lastErr = err
			if !idempotent(req.Method) && !dialFailed(err) {
				return nil, nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
			}
			continue
		}

		bodyBytes, err := readBody(resp)
		resp.Body.Close()
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("Error reading response body")
			lastErr = fmt.Errorf("reading response body: %w", err)
			if !idempotent(req.Method) {
				return nil, nil, lastErr
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := &StatusError{Code: resp.StatusCode, Body: truncate(string(bodyBytes), 200)}
			if !statusErr.Retryable() {
				return nil, nil, statusErr
			}
			if !idempotent(req.Method) && resp.StatusCode != http.StatusTooManyRequests {
				return nil, nil, statusErr
			}
			log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).Msg("Received retryable status")
			lastErr = statusErr
			wait = retryAfter(resp.Header)
			continue
		}

		resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		return resp, bodyBytes, nil
	}

	return nil, nil, fmt.Errorf("all %d attempts failed: %w", c.maxRetries, lastErr)
}

func idempotent(method string) bool {
	switch method {
	case "", http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// dialFailed reports whether err happened before any byte of the request
// was sent.
func dialFailed(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress gzip response: %w", err)
		}
		defer gr.Close()
		reader = gr
	}

	bodyBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if len(bodyBytes) > 1 && bodyBytes[0] == 0x1f && bodyBytes[1] == 0x8b {
		gr, err := gzip.NewReader(bytes.NewReader(bodyBytes))
		if err == nil {
			uncompressed, err := io.ReadAll(gr)
			gr.Close()
			if err == nil {
				bodyBytes = uncompressed
			}
		}
	}
	return bodyBytes, nil
}

// retryAfter reads Retry-After or Reddit's x-ratelimit-reset, in seconds.
func retryAfter(h http.Header) time.Duration {
	for _, key := range []string{"Retry-After", "X-Ratelimit-Reset"} {
		if v := h.Get(key); v != "" {
			if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
				return time.Duration(secs * float64(time.Second))
			}
		}
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
