package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/saronqw/uninews-bot/internal/adapters/config"
	"github.com/saronqw/uninews-bot/pkg/logger"
	"github.com/saronqw/uninews-bot/pkg/models"
)

var (
	// ErrUnavailable means the upstream could not be reached or
	// answered with a non-2xx status.
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrMalformedPayload means the upstream answered but the body
	// could not be decoded. User-visible handling is the same as
	// ErrUnavailable; it is kept separate for operator logs.
	ErrMalformedPayload = errors.New("malformed upstream payload")
)

// Client fetches news items and trend keywords from the aggregator API.
// It is stateless; one instance is shared by all sessions.
type Client struct {
	newsURL   string
	trendsURL string
	client    *http.Client
}

// NewClient creates new upstream API client
func NewClient(cfg *config.UpstreamConfig) *Client {
	return &Client{
		newsURL:   cfg.NewsURL,
		trendsURL: cfg.TrendsURL,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchNews returns news items for the given scope and interval.
// An empty slice is a valid response meaning no news in the window.
// Whether the interval boundary is inclusive is the upstream's call;
// the interval token is passed through untouched.
func (c *Client) FetchNews(ctx context.Context, scope models.Scope, interval models.Interval) ([]models.NewsRecord, error) {
	reqURL := fmt.Sprintf("%s?interval=%s&name=%s",
		c.newsURL, url.QueryEscape(string(interval)), url.QueryEscape(scope.QueryValue()))

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var records []models.NewsRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: decode news response: %v", ErrMalformedPayload, err)
	}

	logger.Debug("fetched news",
		zap.String("scope", scope.QueryValue()),
		zap.String("interval", string(interval)),
		zap.Int("count", len(records)),
	)

	return records, nil
}

// FetchKeywords returns the trend keywords from the analyzer API.
func (c *Client) FetchKeywords(ctx context.Context) ([]models.KeywordRecord, error) {
	body, err := c.get(ctx, c.trendsURL)
	if err != nil {
		return nil, err
	}

	var keywords []models.KeywordRecord
	if err := json.Unmarshal(body, &keywords); err != nil {
		return nil, fmt.Errorf("%w: decode keywords response: %v", ErrMalformedPayload, err)
	}

	logger.Debug("fetched trend keywords", zap.Int("count", len(keywords)))

	return keywords, nil
}

// Health checks that the analyzer API answers at all.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.get(ctx, c.trendsURL)
	if errors.Is(err, ErrMalformedPayload) {
		// Reachable but weird is still reachable.
		return nil
	}
	return err
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	return body, nil
}
