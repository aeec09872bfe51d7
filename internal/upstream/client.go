package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/tuvia-the-goat/gym-aman-admin-api/pkg/config"
	appErrors "github.com/tuvia-the-goat/gym-aman-admin-api/pkg/errors"
)

// Client is a typed HTTP client over the access-control backend's REST contracts.
// Every record this service works with is owned by that backend; the client performs a
// single attempt per call and reports failures as ErrUpstream.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	bulkPageSize int
}

// NewClient constructs a client from configuration.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	pageSize := cfg.BulkPageSize
	if pageSize <= 0 {
		pageSize = 500
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		http:         &http.Client{Timeout: cfg.Timeout},
		logger:       logger,
		bulkPageSize: pageSize,
	}
}

// PageInfo mirrors the upstream pagination metadata.
type PageInfo struct {
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func (c *Client) get(ctx context.Context, token, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, fmt.Sprintf("GET %s", path))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("upstream request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return appErrors.Clone(appErrors.ErrUpstream, fmt.Sprintf("upstream returned %d for %s", resp.StatusCode, path))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, fmt.Sprintf("decode %s response", path))
	}
	return nil
}
