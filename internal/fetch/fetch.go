// Package fetch downloads the Statcast event export over HTTP when the
// pipeline is configured with a URL instead of a local file.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Client wraps an HTTP client for CSV downloads.
type Client struct {
	rest *resty.Client
}

// New builds a client with the given request timeout.
func New(timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(30 * time.Second) // default fallback
	}
	return &Client{rest: r}
}

// Download retrieves the CSV body at url.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Accept", "text/csv").
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode())
	}

	log.Info().
		Str("url", url).
		Int("bytes", len(resp.Body())).
		Msg("Event data downloaded")

	return resp.Body(), nil
}
