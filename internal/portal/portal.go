// Package portal looks up offline data items on an ArcGIS portal.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/samplekit/samplekit/internal/metadata"
)

// DefaultURL is the public ArcGIS Online portal
const DefaultURL = "https://www.arcgis.com"

// ErrItemNotFound is returned when the portal has no accessible item with the ID
var ErrItemNotFound = errors.New("portal item not found")

// Item is the subset of portal item fields used in readmes
type Item struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Type    string `json:"type"`
}

type portalError struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Options configures a Client
type Options struct {
	URL        string
	Timeout    time.Duration
	MaxRetries uint64
	// InitialInterval is the first retry delay
	InitialInterval time.Duration
	Logger          *zap.Logger
}

// Client fetches item descriptions
type Client struct {
	baseURL         string
	http            *http.Client
	maxRetries      uint64
	initialInterval time.Duration
	logger          *zap.Logger
}

// NewClient creates a client. Zero options fall back to the public portal, a
// ten second timeout and three retries.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:         strings.TrimSuffix(opts.URL, "/"),
		http:            &http.Client{Timeout: opts.Timeout},
		maxRetries:      opts.MaxRetries,
		initialInterval: opts.InitialInterval,
		logger:          opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultURL
	}
	if c.http.Timeout == 0 {
		c.http.Timeout = 10 * time.Second
	}
	if c.maxRetries == 0 {
		c.maxRetries = 3
	}
	if c.initialInterval == 0 {
		c.initialInterval = 500 * time.Millisecond
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

func (c *Client) newBackoff(ctx context.Context) backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval
	return backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx)
}

// Describe fetches the item with the given ID. Transport failures, 5xx and
// 429 responses are retried; other failures are returned immediately.
func (c *Client) Describe(ctx context.Context, id string) (Item, error) {
	endpoint := fmt.Sprintf("%s/sharing/rest/content/items/%s?f=json", c.baseURL, url.PathEscape(id))

	var item Item
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		body, retryable, err := c.get(ctx, endpoint)
		if err != nil {
			if retryable {
				c.logger.Debug("portal request failed, retrying", zap.String("item", id), zap.Int("attempt", attempt), zap.Error(err))
				return err
			}
			return backoff.Permanent(err)
		}

		var perr portalError
		if err := json.Unmarshal(body, &perr); err == nil && perr.Error != nil {
			return backoff.Permanent(fmt.Errorf("%w: %s (%d %s)", ErrItemNotFound, id, perr.Error.Code, perr.Error.Message))
		}
		if err := json.Unmarshal(body, &item); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode item %s: %w", id, err))
		}
		return nil
	}, c.newBackoff(ctx))
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("portal returned %s", resp.Status)
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%w: %s", ErrItemNotFound, endpoint)
	case resp.StatusCode >= 400:
		return nil, false, fmt.Errorf("portal returned %s", resp.Status)
	}
	return body, false, nil
}

// DescribeItem adapts Describe for readme rendering
func (c *Client) DescribeItem(ctx context.Context, id string) (metadata.Item, error) {
	item, err := c.Describe(ctx, id)
	if err != nil {
		return metadata.Item{}, err
	}
	return metadata.Item{ID: item.ID, Title: item.Title, Snippet: item.Snippet}, nil
}
