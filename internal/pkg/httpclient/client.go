package httpclient

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds every outbound panel call.
const DefaultTimeout = 10 * time.Second

// Client wraps resty for HTTP requests to panels.
// Calls are never retried; each request is bounded by the client timeout
// and by the context passed in.
type Client struct {
	r *resty.Client
}

// New creates a client with the given timeout (DefaultTimeout when <= 0).
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	r := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)

	return &Client{r: r}
}

// WithBearerToken sets a bearer token for authentication.
func (c *Client) WithBearerToken(token string) *Client {
	c.r.SetAuthToken(token)
	return c
}

// WithHeader sets a custom header.
func (c *Client) WithHeader(key, value string) *Client {
	c.r.SetHeader(key, value)
	return c
}

// WithInsecureSkipVerify disables TLS verification. Panels commonly run
// behind self-signed certificates.
func (c *Client) WithInsecureSkipVerify() *Client {
	c.r.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	return c
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, url string) (*resty.Response, error) {
	return c.r.R().SetContext(ctx).Get(url)
}

// PostForm sends a POST request with form data.
func (c *Client) PostForm(ctx context.Context, url string, data map[string]string) (*resty.Response, error) {
	return c.r.R().SetContext(ctx).SetFormData(data).Post(url)
}
