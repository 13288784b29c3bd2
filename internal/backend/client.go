package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

// Client talks to the wish history tracker backend.
type Client struct {
	baseURL string
	resty   *resty.Client
}

const (
	defaultBaseURL   = "http://127.0.0.1:3000"
	defaultUserAgent = "wishtrack/0.1"
	defaultTimeout   = 10 * time.Second
)

// ClientOption customises NewClient.
type ClientOption func(*Client)

// WithTimeout bounds every request. Default: 10s.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.resty.SetTimeout(d)
		}
	}
}

// WithSessionCookie attaches the backend session cookie obtained from a
// browser login. raw is "name=value".
func WithSessionCookie(raw string) ClientOption {
	return func(c *Client) {
		name, value, ok := strings.Cut(strings.TrimSpace(raw), "=")
		if !ok || name == "" {
			return
		}
		c.resty.SetCookie(&http.Cookie{Name: name, Value: value})
	}
}

// NewClient builds a Client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{baseURL: base, resty: newResty(base)}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// newResty keeps cookies the backend sets (the session after login) in a jar
// scoped by public suffix.
func newResty(base string) *resty.Client {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	rc := resty.New()
	rc.SetCookieJar(jar).
		SetBaseURL(base).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", defaultUserAgent).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	return rc
}

// BaseURL returns the normalised backend root, without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// IsUnauthenticated reports whether err is a 401 or 403 from the backend.
func IsUnauthenticated(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden
}

// get issues GET path?query and decodes the JSON body into dest.
func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	req := c.resty.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return &StatusError{Path: path, Code: resp.StatusCode()}
	}
	if dest == nil {
		return nil
	}
	if err := sonic.Unmarshal(resp.Body(), dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse backend url %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("parse backend url %q: missing host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String(), nil
}
