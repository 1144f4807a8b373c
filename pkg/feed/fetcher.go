package feed

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/umputun/podpulse/pkg/domain"
)

// DefaultUserAgent identifies podpulse to feed hosts
const DefaultUserAgent = "podpulse/1.0 (+feed health checker)"

// FetcherConfig holds HTTP fetch parameters
type FetcherConfig struct {
	UserAgent          string
	ConnectTimeout     time.Duration
	Timeout            time.Duration
	MaxRedirects       int
	MaxBodySize        int64
	InsecureSkipVerify bool // local/dev setups only
}

// HTTPFetcher downloads raw feed documents. It never retries, retry policy belongs to the scanner.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
	now       func() time.Time
}

var errTooManyRedirects = errors.New("too many redirects")

// NewHTTPFetcher creates a new feed fetcher, zero config values replaced by defaults
func NewHTTPFetcher(cfg FetcherConfig) *HTTPFetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = 5
	}
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = 20 * 1024 * 1024
	}

	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: cfg.ConnectTimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}, //nolint:gosec // opt-in for dev setups
	}

	maxRedirects := cfg.MaxRedirects
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBodySize,
		now:       time.Now,
	}
}

// Fetch downloads the feed at feedURL. The result is returned together with HTTP and empty-body
// errors, so the caller still gets the status code and response time of a failed check.
func (f *HTTPFetcher) Fetch(ctx context.Context, feedURL string) (*domain.FetchResult, error) {
	if err := ValidateURL(feedURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, http.NoBody)
	if err != nil {
		return nil, domain.NewFeedError(domain.ErrInvalidURL, fmt.Errorf("create request: %w", err))
	}
	addFeedHeaders(req, f.userAgent)

	start := f.now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.NewFeedError(domain.ErrNetwork, fmt.Errorf("fetch %s: %w", feedURL, err))
	}
	defer resp.Body.Close()

	res := &domain.FetchResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		res.Elapsed = f.now().Sub(start)
		return res, &domain.FeedError{Category: domain.ErrHTTP, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	res.Elapsed = f.now().Sub(start)
	if err != nil {
		return nil, domain.NewFeedError(domain.ErrNetwork, fmt.Errorf("read body: %w", err))
	}
	if len(body) == 0 {
		return res, domain.NewFeedError(domain.ErrEmptyResponse, errors.New("empty response body"))
	}

	res.Body = body
	return res, nil
}

// ValidateURL checks feedURL is an absolute http(s) URL
func ValidateURL(feedURL string) error {
	u, err := url.Parse(feedURL)
	if err != nil {
		return domain.NewFeedError(domain.ErrInvalidURL, fmt.Errorf("parse URL: %w", err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return domain.NewFeedError(domain.ErrInvalidURL, fmt.Errorf("unsupported scheme in %q", feedURL))
	}
	if u.Host == "" {
		return domain.NewFeedError(domain.ErrInvalidURL, fmt.Errorf("missing host in %q", feedURL))
	}
	return nil
}
