package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Endpoint paths, relative to the identity server's base address.
const (
	PathUserInfo = "manage/info"
	PathLogin    = "login?useCookies=true"
	PathRegister = "register"
	PathLogout   = "auth/logout"
)

// Fixed messages reported by failed operations.
const (
	MessageInvalidLogin    = "Invalid email or password"
	MessageRegisterUnknown = "An unknown error prevented registration"
)

// maxBodyBytes bounds how much of a response body is read or drained.
const maxBodyBytes = 1 << 20

var (
	ErrInvalidBaseURL = errors.New("invalid base url")
	ErrStatus         = errors.New("unsuccessful status")
)

// Doer sends an HTTP request. An *http.Client built by the transport package
// satisfies it, and is responsible for cookies, headers, and timeouts.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	registerer prometheus.Registerer
}

// WithLogger sets the logger swallowed failures are reported to. By default
// nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics registers operation counters with the given registerer.
func WithMetrics(registerer prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = registerer
	}
}

// Manager composes the read capability (StateCache) and the command
// capability (Coordinator) over one identity server.
type Manager struct {
	*StateCache
	*Coordinator
}

// New returns a Manager talking to the identity server at baseURL through
// doer. It fails only when baseURL is not an absolute URL or metrics cannot
// be registered.
func New(
	baseURL string,
	doer Doer,
	opts ...Option,
) (
	*Manager,
	error,
) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	m, err := newMetrics(o.registerer)
	if err != nil {
		return nil, err
	}

	c := &client{
		base:    base,
		doer:    doer,
		log:     o.logger,
		metrics: m,
	}

	cache := newStateCache(c)
	return &Manager{
		StateCache:  cache,
		Coordinator: newCoordinator(c, cache.Refresh),
	}, nil
}

// parseBaseURL requires an absolute URL and ensures its path ends in a slash,
// so relative endpoint paths resolve beneath it.
func parseBaseURL(raw string) (*url.URL, error) {
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidBaseURL, raw)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	base.RawQuery = ""
	base.Fragment = ""
	return base, nil
}

// client issues requests to the identity server's endpoints.
type client struct {
	base    *url.URL
	doer    Doer
	log     *slog.Logger
	metrics *metrics
}

func (c *client) resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		// endpoint paths are constants
		panic(fmt.Sprintf("session: bad endpoint path %q: %v", path, err))
	}
	return c.base.ResolveReference(ref).String()
}

func (c *client) get(
	ctx context.Context,
	path string,
) (
	*http.Response,
	error,
) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(path), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *client) postJSON(
	ctx context.Context,
	path string,
	body any,
) (
	*http.Response,
	error,
) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) do(req *http.Request) (*http.Response, error) {
	c.log.DebugContext(req.Context(), "identity request", "method", req.Method, "url", req.URL.String())
	res, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	return res, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}

func readBody(res *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
}

// closeBody drains what is left so the connection can be reused.
func closeBody(res *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxBodyBytes))
	_ = res.Body.Close()
}
