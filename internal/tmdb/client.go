// Package tmdb is a small client for The Movie Database API.  It performs
// the two lookups needed to add a movie: a title search and a detail fetch.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// ErrUpstream marks every failure caused by the metadata service: transport
// errors, non-success statuses and undecodable payloads.
var ErrUpstream = errors.New("movie metadata service failed")

// ErrNotFound is returned when the service answers 404 for an id.
var ErrNotFound = errors.New("movie not found upstream")

// UpstreamError carries the status of a non-success response.
type UpstreamError struct {
	StatusCode int
	URL        string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("movie metadata service returned status %d for %s", e.StatusCode, e.URL)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// Client talks to the metadata API with a bearer credential.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     hclog.Logger
}

// NewClient creates a client for baseURL (e.g. https://api.themoviedb.org/3).
// token may be given with or without the "Bearer " prefix.
func NewClient(baseURL, token string, timeout time.Duration, logger hclog.Logger) *Client {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if !strings.HasPrefix(token, "Bearer ") {
		token = "Bearer " + token
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("tmdb"),
	}
}

// SearchByTitle returns the candidates the service lists for query, in the
// order it returned them.
func (c *Client) SearchByTitle(ctx context.Context, query string) ([]Candidate, error) {
	u := c.baseURL + "/search/movie?" + url.Values{"query": {query}}.Encode()

	var resp searchResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return resp.Results, nil
}

// FetchByID returns the detail record of one movie.
func (c *Client) FetchByID(ctx context.Context, id uint64) (*Detail, error) {
	u := c.baseURL + "/movie/" + strconv.FormatUint(id, 10)

	var d Detail
	if err := c.get(ctx, u, &d); err != nil {
		return nil, fmt.Errorf("fetch movie %d: %w", id, err)
	}
	return &d, nil
}

func (c *Client) get(ctx context.Context, u string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("making TMDb API request", "url", u)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("TMDb API response", "url", u, "status", resp.StatusCode, "duration", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &UpstreamError{StatusCode: resp.StatusCode, URL: u}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: decode body: %v", ErrUpstream, err)
	}
	return nil
}
