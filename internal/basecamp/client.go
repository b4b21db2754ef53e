// Package basecamp is a read-only client for the Basecamp 3/4 JSON API.
// file: internal/basecamp/client.go
package basecamp

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/logging"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout         = 20 * time.Second
	defaultRate            = 5 // requests per second; the service allows 50 per 10s.
	defaultBurst           = 10
	defaultMaxConnsPerHost = 8
	defaultMaxWait         = 30 * time.Second
	maxErrorBody           = 512
)

// MetricsRecorder receives one call per HTTP round trip.
type MetricsRecorder interface {
	RecordAPICall(latency time.Duration, err error)
}

// Client performs authenticated GET requests against one Basecamp account.
// It is safe for concurrent use.
type Client struct {
	baseURL    string // https://3.basecampapi.com/{account_id}
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	maxWait    time.Duration
	maxConns   int
	transport  *http.Transport
	metrics    MetricsRecorder
	logger     logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. The caller is responsible for
// authentication when using this option.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimit sets the request rate (per second) and burst size.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithLimiter shares an existing limiter, so clients built per call draw
// from one request budget.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithTransport shares a connection pool between clients. The transport's
// own MaxConnsPerHost is left as is.
func WithTransport(t *http.Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxWait caps the time a request may queue on the rate limiter.
func WithMaxWait(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.maxWait = d
		}
	}
}

// WithMaxConnsPerHost bounds the outbound connection pool.
func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxConns = n
		}
	}
}

// WithUserAgent sets the User-Agent header the service requires.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for accountID rooted at baseURL. Requests are
// authorized with tokens from ts unless WithHTTPClient is given.
func NewClient(baseURL, accountID string, ts oauth2.TokenSource, opts ...Option) (*Client, error) {
	if accountID == "" {
		return nil, errors.WithHint(errors.New("basecamp: account id is required"),
			"set BASECAMP_ACCOUNT_ID or pass account_id")
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/") + "/" + accountID,
		userAgent: "camptools",
		limiter:   rate.NewLimiter(defaultRate, defaultBurst),
		timeout:   defaultTimeout,
		maxWait:   defaultMaxWait,
		maxConns:  defaultMaxConnsPerHost,
		logger:    logging.GetLogger("basecamp_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		if ts == nil {
			return nil, errors.WithHint(errors.New("basecamp: no access token"),
				"set BASECAMP_ACCESS_TOKEN, send an Authorization header, or store a token with 'camptools token set'")
		}
		base := c.transport
		if base == nil {
			base = NewTransport(c.maxConns)
		}
		c.httpClient = &http.Client{
			Transport: &oauth2.Transport{Source: ts, Base: base},
			Timeout:   c.timeout + 5*time.Second,
		}
	}
	return c, nil
}

// NewTransport returns a transport whose pool holds at most maxConns
// connections per host.
func NewTransport(maxConns int) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if maxConns <= 0 {
		maxConns = defaultMaxConnsPerHost
	}
	t.MaxConnsPerHost = maxConns
	t.MaxIdleConnsPerHost = maxConns
	return t
}

// BaseURL returns the account-scoped API root.
func (c *Client) BaseURL() string { return c.baseURL }

// resolve turns a path into an absolute URL. Absolute URLs pass through so
// dock entries and Link headers can be followed as given.
func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// get fetches one page at path, decodes it into out and returns the next
// page URL, if any.
func (c *Client) get(ctx context.Context, path string, out any) (string, error) {
	target := c.resolve(path)

	if err := c.wait(ctx); err != nil {
		return "", errors.Wrapf(err, "rate limit wait for %s", target)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", errors.Wrapf(err, "creating request for %s", target)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	next, err := c.do(ctx, req, out)
	latency := time.Since(start)
	if c.metrics != nil {
		c.metrics.RecordAPICall(latency, err)
	}
	if err != nil {
		c.logger.Debug("Basecamp request failed.", "url", target, "latency", latency, "error", err)
		return "", err
	}
	c.logger.Debug("Basecamp request completed.", "url", target, "latency", latency)
	return next, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.maxWait)
		defer cancel()
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) do(ctx context.Context, req *http.Request, out any) (string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(ctx, req.URL.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			URL:        req.URL.String(),
			Body:       strings.TrimSpace(string(body)),
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			apiErr.RetryAfter = resp.Header.Get("Retry-After")
		}
		return "", apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if ctx.Err() != nil {
				return "", classifyTransportError(ctx, req.URL.String(), err)
			}
			return "", errors.Mark(errors.Wrapf(err, "decoding response from %s", req.URL.String()), ErrDecode)
		}
	}
	return nextLink(resp.Header.Get("Link")), nil
}

func classifyTransportError(ctx context.Context, target string, err error) error {
	wrapped := errors.Wrapf(err, "GET %s", target)
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return errors.Mark(wrapped, ErrTimeout)
	}
	return wrapped
}

// getAll follows Link headers until the last page and concatenates results.
func getAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	next := path
	for pages := 0; next != ""; pages++ {
		if pages >= maxPages {
			c.logger.Warn("Pagination limit reached, truncating results.", "path", path, "pages", pages)
			break
		}
		var page []T
		n, err := c.get(ctx, next, &page)
		if err != nil {
			return all, err
		}
		all = append(all, page...)
		next = n
	}
	return all, nil
}

const maxPages = 100
