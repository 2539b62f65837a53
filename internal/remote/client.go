// Package remote fetches catalog files over HTTP.
package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const userAgent = "ua-popup-control/1.0"

// Options tunes the client. Zero values select the defaults.
type Options struct {
	Timeout    time.Duration
	Retries    int
	MinWait    time.Duration
	MaxWait    time.Duration
	RatePerSec float64
}

// Client wraps resty with a retrying transport and a request pacer so rapid
// selection changes do not hammer the CDN.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
}

// New builds a client.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.MinWait <= 0 {
		opts.MinWait = 500 * time.Millisecond
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 5 * time.Second
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.Retries
	retryClient.RetryWaitMin = opts.MinWait
	retryClient.RetryWaitMax = opts.MaxWait
	retryClient.Logger = nil

	// retries live in the retryablehttp round tripper, which honours Retry-After
	r := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSec > 0 {
		burst := int(opts.RatePerSec)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}
	return &Client{resty: r, limiter: limiter}
}

// Get fetches url and returns the body and its content type. Non-2xx
// responses are errors.
func (c *Client) Get(ctx context.Context, url string) ([]byte, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limit: %w", err)
	}
	resp, err := c.resty.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("get %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, "", &StatusError{URL: url, Code: resp.StatusCode(), Status: resp.Status()}
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}

// StatusError reports a non-successful HTTP status.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("get %s: %s", e.URL, e.Status)
}
