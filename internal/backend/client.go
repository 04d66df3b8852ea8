// internal/backend/client.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"loan-review-console/internal/common/config"
	"loan-review-console/internal/common/errors"
	"loan-review-console/internal/common/httpclient"
	"loan-review-console/internal/common/logger"
	"loan-review-console/internal/models"
)

// wireActions maps action kinds to the slugs the status endpoint accepts.
// Older backend versions kept "needs_more" on the wire.
var wireActions = map[models.ActionKind]string{
	models.ActionApprove:         "approve",
	models.ActionReject:          "reject",
	models.ActionRequestMoreInfo: "needs_more",
}

// Client talks to the application backend of record. It makes no attempt to
// interpret payload shapes; raw records go to the normalizer as-is.
type Client struct {
	baseURL string
	http    *httpclient.Client
	logger  logger.Logger
}

func NewClient(cfg config.BackendConfig, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpclient.NewClient(time.Duration(cfg.Timeout) * time.Millisecond),
		logger:  log,
	}
}

// FetchApplication retrieves one raw application record.
func (c *Client) FetchApplication(ctx context.Context, id string) (map[string]interface{}, error) {
	endpoint := fmt.Sprintf("%s/applications/%s", c.baseURL, url.PathEscape(id))

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewFetchFailedError(id, err)
	}

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return nil, errors.NewFetchFailedError(id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NewApplicationNotFoundError(id)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewFetchFailedError(id, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewFetchFailedError(id, fmt.Errorf("decode response: %w", err))
	}

	return payload, nil
}

// SubmitTransition posts a decision action and returns the authoritative
// resulting status from the response, never the requested action name.
func (c *Client) SubmitTransition(ctx context.Context, id string, action models.ActionKind) (models.Status, error) {
	wire, ok := wireActions[action]
	if !ok {
		return "", fmt.Errorf("action %q has no wire form", action)
	}

	endpoint := fmt.Sprintf("%s/applications/%s/status", c.baseURL, url.PathEscape(id))
	body, _ := json.Marshal(map[string]string{"action": wire})

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(detail))
	}

	var result struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.Status == "" {
		return "", fmt.Errorf("transition response carried no status")
	}

	return models.ParseStatus(result.Status), nil
}

// FetchApplications retrieves the raw list payload. Filters are passed
// through to the backend query string; the caller normalizes whatever
// envelope comes back.
func (c *Client) FetchApplications(ctx context.Context, params map[string]string) (interface{}, error) {
	endpoint := fmt.Sprintf("%s/applications", c.baseURL)

	query := url.Values{}
	for key, value := range params {
		if value != "" {
			query.Set(key, value)
		}
	}
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewListFetchFailedError(err)
	}

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return nil, errors.NewListFetchFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewListFetchFailedError(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewListFetchFailedError(fmt.Errorf("decode response: %w", err))
	}

	return payload, nil
}
