// Package iohttp provides the HTTP client shared by every remote
// collaborator: a per-request timeout and a single retry after a short
// delay. Retrying more than once is deliberately not supported; a
// second failure marks the affected lookup and the run continues.
package iohttp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client wraps http.Client with retry-once semantics.
type Client struct {
	http       *http.Client
	retryDelay time.Duration
}

// New creates a Client with the given timeout and retry delay, both in
// seconds.
func New(timeoutSec, retryDelaySec int) *Client {
	return &Client{
		http: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
		retryDelay: time.Duration(retryDelaySec) * time.Second,
	}
}

// Get fetches a URL and returns the response body. A transport error
// or 5xx status is retried once; 4xx statuses fail immediately.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	})
}

// PostForm submits a form and returns the response body, with the same
// retry semantics as Get.
func (c *Client) PostForm(
	ctx context.Context,
	rawURL string,
	form url.Values,
) ([]byte, error) {
	encoded := form.Encode()
	return c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, rawURL, strings.NewReader(encoded),
		)
		if err != nil {
			return nil, err
		}
		req.Header.Set(
			"Content-Type", "application/x-www-form-urlencoded",
		)
		return req, nil
	})
}

// Download streams a URL into a file, replacing it atomically via a
// temporary file in the same directory.
func (c *Client) Download(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, rawURL, nil,
	)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf(
			"download of %s failed: %s", rawURL, resp.Status,
		)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

func (c *Client) do(
	ctx context.Context,
	newReq func() (*http.Request, error),
) ([]byte, error) {
	body, retry, err := c.attempt(newReq)
	if err == nil || !retry {
		return body, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.retryDelay):
	}

	body, _, err = c.attempt(newReq)
	return body, err
}

// attempt runs one request. The second return value reports whether a
// failure is worth retrying.
func (c *Client) attempt(
	newReq func() (*http.Request, error),
) ([]byte, bool, error) {
	req, err := newReq()
	if err != nil {
		return nil, false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	switch {
	case resp.StatusCode == http.StatusOK:
		return body, false, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, true, fmt.Errorf(
			"request to %s failed: %s", req.URL, resp.Status,
		)
	default:
		return nil, false, fmt.Errorf(
			"request to %s failed: %s", req.URL, resp.Status,
		)
	}
}
