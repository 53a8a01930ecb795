// internal/client/reddit_client.go
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/lionls/snoowrap/internal/config"
	"github.com/lionls/snoowrap/internal/metrics"
	"github.com/lionls/snoowrap/pkg/transport"
)

type RedditClient struct {
	client      *transport.RetryableClient
	limiter     *rate.Limiter
	userAgent   string
	accessToken string
	baseURL     string
}

// Option customizes a RedditClient
type Option func(*transport.Options)

// WithTransport replaces the fingerprinting transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *transport.Options) { o.Transport = rt }
}

// WithBaseDelay sets the first retry backoff step.
func WithBaseDelay(d time.Duration) Option {
	return func(o *transport.Options) { o.BaseDelay = d }
}

func NewRedditClient(cfg *config.Config, opts ...Option) (*RedditClient, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("REDDIT_USER_AGENT environment variable is required")
	}

	tOpts := transport.Options{
		ProxyURLs:  cfg.ProxyURLs,
		MaxRetries: cfg.MaxRetries,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.RequestTimeout,
	}
	for _, opt := range opts {
		opt(&tOpts)
	}

	httpClient, err := transport.NewRetryableClient(tOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	limit := rate.Inf
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
	}
	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}

	return &RedditClient{
		client:      httpClient,
		limiter:     rate.NewLimiter(limit, burst),
		userAgent:   cfg.UserAgent,
		accessToken: cfg.AccessToken,
		baseURL:     cfg.RedditBaseURL,
	}, nil
}

func (r *RedditClient) do(req *http.Request, endpoint string) (json.RawMessage, error) {
	if err := r.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/json")
	if r.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.accessToken)
	}

	start := time.Now()
	_, bodyBytes, err := r.client.Do(req)
	metrics.APIRequestDuration.WithLabelValues(req.Method, endpoint).Observe(time.Since(start).Seconds())
	metrics.APIRequestsTotal.WithLabelValues(req.Method, endpoint, metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("method", req.Method).
		Str("endpoint", endpoint).
		Int("bytes", len(bodyBytes)).
		Dur("took", time.Since(start)).
		Msg("Reddit request done")

	return bodyBytes, nil
}

func (r *RedditClient) FetchJSON(ctx context.Context, rawURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	body, err := r.do(req, endpointOf(req.URL))
	if err != nil {
		return nil, fmt.Errorf("fetchJSON request: %w", err)
	}
	return body, nil
}

// PostForm posts a form-encoded body to an API path such as "/api/vote".
func (r *RedditClient) PostForm(ctx context.Context, path string, form url.Values) (json.RawMessage, error) {
	if form == nil {
		form = url.Values{}
	}
	if form.Get("api_type") == "" {
		form.Set("api_type", "json")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := r.do(req, path)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	return body, nil
}

func (r *RedditClient) FetchMoreChildren(ctx context.Context, linkID string, childIDs []string) (json.RawMessage, error) {
	if len(childIDs) == 0 {
		return nil, nil
	}

	params := url.Values{
		"api_type":       {"json"},
		"link_id":        {linkID},
		"children":       {strings.Join(childIDs, ",")},
		"limit_children": {"false"},
		"raw_json":       {"1"},
	}

	log.Debug().Int("children", len(childIDs)).Str("link_id", linkID).Msg("Fetching more children")

	body, err := r.FetchJSON(ctx, r.baseURL+"/api/morechildren.json?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetchMoreChildren for %s: %w", linkID, err)
	}
	return body, nil
}

func (r *RedditClient) GetInfoURL(names ...string) string {
	params := url.Values{
		"id":       {strings.Join(names, ",")},
		"raw_json": {"1"},
	}
	return fmt.Sprintf("%s/api/info.json?%s", r.baseURL, params.Encode())
}

// GetCommentPageURL returns the comment page of a submission, focused on a
// single comment when commentID is set. Both IDs may be fullnames.
func (r *RedditClient) GetCommentPageURL(linkID, commentID string) string {
	link := stripKind(linkID)
	if commentID == "" {
		return fmt.Sprintf("%s/comments/%s.json?raw_json=1", r.baseURL, link)
	}
	return fmt.Sprintf("%s/comments/%s/_/%s.json?raw_json=1", r.baseURL, link, stripKind(commentID))
}

func stripKind(name string) string {
	if _, id, ok := strings.Cut(name, "_"); ok && len(name) > 3 && name[0] == 't' {
		return id
	}
	return name
}

// endpointOf reduces a URL to a low-cardinality metrics label.
func endpointOf(u *url.URL) string {
	path := strings.TrimSuffix(u.Path, ".json")
	if strings.HasPrefix(path, "/comments/") {
		return "/comments"
	}
	return path
}
