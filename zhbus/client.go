package zhbus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a call whose context carries no deadline.
const DefaultTimeout = 10 * time.Second

// ErrEmptyArgument is returned before any I/O when a required query argument
// is empty.
var ErrEmptyArgument = errors.New("zhbus: empty argument")

// Client queries the transit-data service. It holds no per-call state and is
// safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	locale     string
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client. Connection reuse follows
// its Transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-call timeout applied when the caller's context has
// no deadline. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLocale sends locale as Accept-Language.
func WithLocale(locale string) Option {
	return func(c *Client) { c.locale = locale }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client for the service at baseURL (scheme and host,
// optionally a path prefix in front of /api/zhbus).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}
	u.RawQuery, u.Fragment = "", ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// GetStationList returns the stations of lineID in upstream order.
func (c *Client) GetStationList(ctx context.Context, lineID string) (*StationList, error) {
	if lineID == "" {
		return nil, fmt.Errorf("%w: line id", ErrEmptyArgument)
	}
	const op = "get station list"
	u := c.buildURL(EndpointStationList, param{"id", lineID})
	body, err := c.get(ctx, op, u)
	if err != nil {
		return nil, err
	}
	list, err := decodeStationList(lineID, body)
	if err != nil {
		return nil, &QueryError{Kind: KindDecode, Op: op, URL: u, Err: err}
	}
	return list, nil
}

// GetLineDetailByName returns every line matching lineName. An ambiguous name
// yields several lines; an unknown one yields none.
func (c *Client) GetLineDetailByName(ctx context.Context, lineName string) ([]Line, error) {
	if lineName == "" {
		return nil, fmt.Errorf("%w: line name", ErrEmptyArgument)
	}
	const op = "get line detail"
	u := c.buildURL(EndpointBusQuery,
		param{"handlerName", HandlerLineListByLineName},
		param{"key", lineName},
	)
	body, err := c.get(ctx, op, u)
	if err != nil {
		return nil, err
	}
	lines, err := decodeLines(body)
	if err != nil {
		return nil, &QueryError{Kind: KindDecode, Op: op, URL: u, Err: err}
	}
	return lines, nil
}

// GetRealTimeStatus returns the live vehicles of lineName as seen from
// headStation. The result is valid only at its ReceivedAt and must not be
// cached; each call issues a new request.
func (c *Client) GetRealTimeStatus(ctx context.Context, lineName, headStation string) (*RealTimeStatus, error) {
	if lineName == "" {
		return nil, fmt.Errorf("%w: line name", ErrEmptyArgument)
	}
	if headStation == "" {
		return nil, fmt.Errorf("%w: head station", ErrEmptyArgument)
	}
	const op = "get real-time status"
	u := c.buildURL(EndpointRealTime,
		param{"id", lineName},
		param{"fromStation", headStation},
	)
	body, err := c.get(ctx, op, u)
	if err != nil {
		return nil, err
	}
	vehicles, err := decodeVehicles(body)
	if err != nil {
		return nil, &QueryError{Kind: KindDecode, Op: op, URL: u, Err: err}
	}
	return &RealTimeStatus{
		LineName:    lineName,
		HeadStation: headStation,
		Vehicles:    vehicles,
		ReceivedAt:  time.Now(),
	}, nil
}

type param struct{ key, value string }

// buildURL keeps params in the given order.
func (c *Client) buildURL(path string, params ...param) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	var q strings.Builder
	for i, p := range params {
		if i > 0 {
			q.WriteByte('&')
		}
		q.WriteString(url.QueryEscape(p.key))
		q.WriteByte('=')
		q.WriteString(url.QueryEscape(p.value))
	}
	u.RawQuery = q.String()
	return u.String()
}

// get issues one GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, op, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(ctx, op, rawURL, err)
	}
	callCtx := ctx
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &QueryError{Kind: KindNetwork, Op: op, URL: rawURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.locale != "" {
		req.Header.Set("Accept-Language", c.locale)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(ctx, op, rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &QueryError{Kind: KindHTTPStatus, Op: op, URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, op, rawURL, err)
	}
	return body, nil
}

// classify maps a transport error to Cancelled when the caller's context was
// cancelled and to Network otherwise.
func classify(callerCtx context.Context, op, rawURL string, err error) *QueryError {
	if errors.Is(callerCtx.Err(), context.Canceled) {
		return &QueryError{Kind: KindCancelled, Op: op, URL: rawURL, Err: context.Canceled}
	}
	qe := &QueryError{Kind: KindNetwork, Op: op, URL: rawURL, Err: err}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		qe.Timeout = true
	}
	return qe
}
