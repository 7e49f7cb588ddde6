package scraper

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	UserAgent = "parole-stats/1.0 (github.com/pfrederiksen/parole-stats)"
	Timeout   = 30 * time.Second
)

// ErrFetchFailed is returned when a page could not be fetched with status 200
var ErrFetchFailed = errors.New("fetch failed")

// Response holds the status code and body of a fetched page
type Response struct {
	StatusCode int
	Body       string
}

// Client fetches pages from the parole statistics sites
type Client struct {
	client    *http.Client
	userAgent string
}

// New creates a new Client instance
func New() *Client {
	return &Client{
		client: &http.Client{
			Timeout: Timeout,
		},
		userAgent: UserAgent,
	}
}

// Fetch performs a GET request and returns the response body.
// A transport error or a status other than 200 is reported as ErrFetchFailed.
func (c *Client) Fetch(url string) (*Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading body: %v", ErrFetchFailed, url, err)
	}

	result := &Response{StatusCode: resp.StatusCode, Body: string(body)}
	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("%w: %s: unexpected status code: %d", ErrFetchFailed, url, resp.StatusCode)
	}

	return result, nil
}

// HeadExists reports whether a HEAD request for url returns 200.
// Connection failures are reported as false.
func (c *Client) HeadExists(url string) bool {
	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
