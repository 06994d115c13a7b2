// Package catalog fetches, transforms and snapshots the CISA KEV feed.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kevwatch/kevwatch/model"
)

// DefaultFeedURL is where CISA publishes the KEV catalog as JSON.
const DefaultFeedURL = "https://www.cisa.gov/sites/default/files/feeds/known_exploited_vulnerabilities.json"

// ErrNetwork marks transport-level fetch failures (unreachable, timeout).
var ErrNetwork = errors.New("feed unreachable")

// UnexpectedStatusError reports a non-200 feed response.
type UnexpectedStatusError struct {
	Code int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected response status: %d", e.Code)
}

// ParseError reports an undecodable feed body.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse catalog payload: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Fetcher retrieves the KEV catalog from upstream with a single
// bounded-timeout request per call. Retry policy belongs to the caller.
type Fetcher struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewFetcher creates a Fetcher for the given feed URL. An empty url falls
// back to DefaultFeedURL, a non-positive timeout to 10 seconds.
func NewFetcher(url string, timeout time.Duration, logger *zap.Logger) *Fetcher {
	if url == "" {
		url = DefaultFeedURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch performs one GET against the feed URL and decodes the payload.
// Failures are typed: ErrNetwork for transport errors, UnexpectedStatusError
// for non-200 responses, ParseError for undecodable bodies.
func (f *Fetcher) Fetch(ctx context.Context) (*model.RawCatalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("Failed to fetch KEV catalog", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("Unexpected response status from KEV feed", zap.Int("status", resp.StatusCode))
		return nil, &UnexpectedStatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	raw := &model.RawCatalog{}
	if err := json.Unmarshal(body, raw); err != nil {
		f.logger.Error("Failed to parse KEV catalog payload", zap.Error(err))
		return nil, &ParseError{Err: err}
	}
	raw.Body = body

	return raw, nil
}
