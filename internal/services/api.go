package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/session"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "http://localhost:8080"

// Client issues requests to the backend on behalf of a [session.Session].
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
	logger     *log.Logger
	anonymous  bool
	locale     func() string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*APIResponse]
}

// ClientOpts configures a [Client].
type ClientOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Session    *session.Session
	Logger     *log.Logger

	// Anonymous clients never attach a bearer token, even for Auth requests.
	// They serve render paths that must not act as the member (exports, previews).
	Anonymous bool

	// Locale supplies the Accept-Language header value; empty values are omitted.
	Locale func() string

	// RateLimit is the sustained requests per second; zero disables limiting.
	RateLimit float64
	Burst     int

	Breaker *BreakerOpts
}

// BreakerOpts enables a circuit breaker in front of the backend.
//
// Only transport failures and 5xx responses count as failures.
type BreakerOpts struct {
	MaxFailures uint32
	Cooldown    time.Duration
}

// NewClient creates a new [Client].
func NewClient(opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Session == nil {
		opts.Session = session.New(session.Opts{})
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		session:    opts.Session,
		logger:     shared.WithLogger(opts.Logger, "component", "client"),
		anonymous:  opts.Anonymous,
		locale:     opts.Locale,
	}

	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	if opts.Breaker != nil {
		c.breaker = newBreaker(*opts.Breaker, c.logger)
	}

	return c
}

// ClientOptsFromConfig maps the TOML configuration onto [ClientOpts].
func ClientOptsFromConfig(cfg *shared.Config, sess *session.Session, logger *log.Logger, locale func() string) ClientOpts {
	opts := ClientOpts{
		BaseURL:    cfg.BaseURL(),
		HTTPClient: &http.Client{Timeout: cfg.Backend.Timeout.Duration},
		Session:    sess,
		Logger:     logger,
		Locale:     locale,
		RateLimit:  cfg.Backend.RateLimit,
		Burst:      cfg.Backend.Burst,
	}
	if cfg.Backend.Breaker.Enabled {
		opts.Breaker = &BreakerOpts{
			MaxFailures: cfg.Backend.Breaker.MaxFailures,
			Cooldown:    cfg.Backend.Breaker.Cooldown.Duration,
		}
	}
	return opts
}

// NewClientFromConfig builds a [Client] from the TOML configuration.
func NewClientFromConfig(cfg *shared.Config, sess *session.Session, logger *log.Logger, locale func() string) *Client {
	return NewClient(ClientOptsFromConfig(cfg, sess, logger, locale))
}

func newBreaker(opts BreakerOpts, logger *log.Logger) *gobreaker.CircuitBreaker[*APIResponse] {
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker[*APIResponse](gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Timeout:     opts.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			if err == nil || shared.IsAborted(err) {
				return true
			}
			var httpErr *shared.HTTPError
			if errors.As(err, &httpErr) {
				return httpErr.StatusCode < 500
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

// Session returns the session the client acts for.
func (c *Client) Session() *session.Session {
	return c.session
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// FetchOpts describes one backend request.
type FetchOpts struct {
	Auth    bool
	Method  string
	Headers http.Header
	Query   url.Values
	Body    any        // JSON encoded; []byte is sent as-is
	Form    url.Values // form encoded; takes precedence over Body
}

// Fetch performs a request and returns the response for any 2xx status.
//
// Non-2xx statuses return a [*shared.HTTPError]. An Auth request without a usable token fails
// with [shared.ErrNotAuthenticated] before touching the network. A 401/403 answer to an Auth
// request expires the session so later Auth requests fail fast.
func (c *Client) Fetch(ctx context.Context, path string, opts FetchOpts) (*APIResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("request aborted: %w", err)
	}

	if opts.Method == "" {
		opts.Method = http.MethodGet
	}

	var token string
	if opts.Auth && !c.anonymous {
		t, err := c.session.Token(ctx)
		if err != nil {
			return nil, err
		}
		if t == "" {
			return nil, fmt.Errorf("%w: %s %s requires a session", shared.ErrNotAuthenticated, opts.Method, path)
		}
		token = t
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("request aborted: %w", err)
		}
	}

	req, err := c.newRequest(ctx, path, opts, token)
	if err != nil {
		return nil, err
	}

	logger := c.logger.With("method", opts.Method, "path", path, "request_id", req.Header.Get("X-Request-ID"))
	logger.Debug("sending request")

	var resp *APIResponse
	if c.breaker != nil {
		resp, err = c.breaker.Execute(func() (*APIResponse, error) {
			return c.do(req, opts.Method, path)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logger.Warn("request rejected by circuit breaker")
			return nil, fmt.Errorf("%w: %v", shared.ErrCircuitOpen, err)
		}
	} else {
		resp, err = c.do(req, opts.Method, path)
	}

	if err != nil {
		if shared.IsAborted(err) {
			logger.Debug("request aborted")
			return nil, err
		}

		var httpErr *shared.HTTPError
		if errors.As(err, &httpErr) && token != "" && httpErr.IsAuthExpiry() {
			cleared, clearErr := c.session.ExpireToken(context.WithoutCancel(ctx), token, err)
			switch {
			case clearErr != nil:
				logger.Error("failed to clear rejected token", "err", clearErr)
			case cleared:
				logger.Warn("session token rejected, cleared", "status", httpErr.StatusCode)
			default:
				logger.Debug("stale token rejected", "status", httpErr.StatusCode)
			}
		} else {
			logger.Warn("request failed", "err", err)
		}
		return nil, err
	}

	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, path string, opts FetchOpts, token string) (*http.Request, error) {
	fullURL := c.baseURL + path
	if len(opts.Query) > 0 {
		fullURL += "?" + opts.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case opts.Form != nil:
		body = strings.NewReader(opts.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case opts.Body != nil:
		data, ok := opts.Body.([]byte)
		if !ok {
			var err error
			if data, err = json.Marshal(opts.Body); err != nil {
				return nil, fmt.Errorf("failed to encode request body: %w", err)
			}
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, vs := range opts.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", shared.GenerateID())
	}
	if c.locale != nil {
		if lang := c.locale(); lang != "" {
			req.Header.Set("Accept-Language", lang)
		}
	}
	if token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	return req, nil
}

// do executes req and maps the outcome to an [APIResponse] or an error.
func (c *Client) do(req *http.Request, method, path string) (*APIResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if shared.IsAborted(err) {
			return nil, fmt.Errorf("request aborted: %w", err)
		}
		return nil, fmt.Errorf("%w: request failed: %w", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if shared.IsAborted(err) {
			return nil, fmt.Errorf("request aborted: %w", err)
		}
		return nil, fmt.Errorf("%w: failed to read response: %w", shared.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &shared.HTTPError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       bytes.TrimSpace(body),
		}
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if len(body) > 0 && json.Unmarshal(body, &jsonData) == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// FetchJSON performs the request and decodes the body into out. A nil out discards the body.
func (c *Client) FetchJSON(ctx context.Context, path string, opts FetchOpts, out any) error {
	resp, err := c.Fetch(ctx, path, opts)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return fmt.Errorf("%w: empty body from %s %s", shared.ErrMalformedPayload, opts.Method, path)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrMalformedPayload, opts.Method, path, err)
	}
	return nil
}

// Get performs an unauthenticated GET and returns the raw response.
func (c *Client) Get(ctx context.Context, path string) (*APIResponse, error) {
	return c.Fetch(ctx, path, FetchOpts{})
}
