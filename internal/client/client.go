// Package client implements the direct-message server HTTP client.
//
// The client handles all communication with the server's REST API:
// - GET/POST /api/conversations/ - List and create/open conversations
// - GET/POST /api/conversations/{id}/messages/ - Message history and sending
// - PATCH /api/conversations/{id}/read/ - Read receipts
// - GET /api/users/?query= - Recipient search
//
// Authentication is the server's session cookie. Mutating requests carry the
// anti-forgery token found in the CSRF cookie.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/directmsg/dmc/internal/logging"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// maxResponseSize limits response body reads to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Client is the direct-message HTTP client.
type Client struct {
	origin     *url.URL
	apiPrefix  string
	httpClient *http.Client
	csrfCookie string
	csrfHeader string
	log        logging.Logger
}

// Option customizes a Client.
type Option func(*options)

type options struct {
	apiPrefix     string
	sessionName   string
	sessionValue  string
	csrfCookie    string
	csrfHeader    string
	timeout       time.Duration
	httpClient    *http.Client
	log           logging.Logger
	timeoutIsSet  bool
	sessionIsSet  bool
	clientIsGiven bool
}

// WithAPIPrefix sets the path the REST API is mounted under (default "/api").
func WithAPIPrefix(prefix string) Option {
	return func(o *options) { o.apiPrefix = prefix }
}

// WithSessionCookie seeds the cookie jar with the login session.
func WithSessionCookie(name, value string) Option {
	return func(o *options) {
		o.sessionName = name
		o.sessionValue = value
		o.sessionIsSet = true
	}
}

// WithCSRFCookieName sets the cookie the anti-forgery token is read from.
func WithCSRFCookieName(name string) Option {
	return func(o *options) { o.csrfCookie = name }
}

// WithCSRFHeader sets the header the anti-forgery token is sent in.
func WithCSRFHeader(name string) Option {
	return func(o *options) { o.csrfHeader = name }
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
		o.timeoutIsSet = true
	}
}

// WithHTTPClient replaces the underlying http.Client. A cookie jar is
// installed on it when it has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
		o.clientIsGiven = hc != nil
	}
}

// WithLogger sets the request logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// New creates a client for the server at baseURL (scheme and host, optionally
// a path the application is mounted under).
func New(baseURL string, opts ...Option) (*Client, error) {
	o := options{
		apiPrefix:  "/api",
		csrfCookie: "csrftoken",
		csrfHeader: "X-CSRFToken",
		timeout:    DefaultTimeout,
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	origin, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing server URL: %w", err)
	}
	if origin.Scheme != "http" && origin.Scheme != "https" {
		return nil, fmt.Errorf("server URL must be http or https: %q", baseURL)
	}
	if origin.Host == "" {
		return nil, fmt.Errorf("server URL has no host: %q", baseURL)
	}

	hc := o.httpClient
	if !o.clientIsGiven {
		hc = &http.Client{Timeout: o.timeout}
	} else if o.timeoutIsSet {
		hc.Timeout = o.timeout
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		hc.Jar = jar
	}
	if o.sessionIsSet && o.sessionValue != "" {
		hc.Jar.SetCookies(origin, []*http.Cookie{{Name: o.sessionName, Value: o.sessionValue, Path: "/"}})
	}

	return &Client{
		origin:     origin,
		apiPrefix:  strings.TrimRight(o.apiPrefix, "/"),
		httpClient: hc,
		csrfCookie: o.csrfCookie,
		csrfHeader: o.csrfHeader,
		log:        o.log,
	}, nil
}

// Error is a non-success HTTP response (the "request failed" error). Body is
// the raw response text; it is never decoded.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		body = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("request failed (%s %s, status %d): %s", e.Method, e.Path, e.StatusCode, body)
}

// CSRFToken returns the anti-forgery token currently held in the cookie jar.
func (c *Client) CSRFToken() string {
	for _, ck := range c.httpClient.Jar.Cookies(c.origin) {
		if ck.Name == c.csrfCookie {
			return ck.Value
		}
	}
	return ""
}

func (c *Client) apiURL(path string) string {
	return c.origin.String() + c.apiPrefix + path
}

func (c *Client) get(ctx context.Context, path string, query url.Values, respBody any) error {
	u := c.apiURL(path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, u, path, nil, respBody)
}

func (c *Client) post(ctx context.Context, path string, reqBody, respBody any) error {
	return c.do(ctx, http.MethodPost, c.apiURL(path), path, reqBody, respBody)
}

func (c *Client) patch(ctx context.Context, path string, reqBody, respBody any) error {
	return c.do(ctx, http.MethodPatch, c.apiURL(path), path, reqBody, respBody)
}

// do sends one request and decodes the JSON response into respBody.
func (c *Client) do(ctx context.Context, method, rawURL, path string, reqBody, respBody any) error {
	var body io.Reader
	mutating := method != http.MethodGet && method != http.MethodHead
	if mutating {
		if reqBody == nil {
			reqBody = struct{}{}
		}
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if mutating {
		req.Header.Set("Content-Type", "application/json")
		// Django rejects HTTPS mutations without a same-origin Referer.
		req.Header.Set("Referer", c.origin.String()+"/")
		if token := c.CSRFToken(); token != "" {
			req.Header.Set(c.csrfHeader, token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Read maxResponseSize+1 to detect oversized responses while still accepting
	// responses exactly at the limit.
	respBodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if int64(len(respBodyBytes)) > maxResponseSize {
		return fmt.Errorf("response exceeds maximum size of %d bytes", maxResponseSize)
	}

	c.log.Debug("http request",
		logging.F("method", method),
		logging.F("path", path),
		logging.F("status", resp.StatusCode),
		logging.F("request_id", requestID),
		logging.F("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(respBodyBytes),
		}
	}

	if respBody == nil {
		return nil
	}
	if err := json.Unmarshal(respBodyBytes, respBody); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
