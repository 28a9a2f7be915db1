// ABOUTME: HTTP client for the remote article API (list/create/update/delete)
// ABOUTME: Bearer-authenticated JSON with transport/status error classification

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/stash/internal/models"
)

// MaxResponseSize caps any single API response body.
const MaxResponseSize = 10 * 1024 * 1024 // 10MB

// Fields is a partial update payload for Update. Keys follow the wire schema
// (e.g. "title", "tags", "isFavorite", "readingProgress").
type Fields map[string]any

// StatusError is a non-2xx API response. It is not a transport error: the
// remote was reachable and answered.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// IsTransport reports whether err is a network-class failure (unreachable
// host, timeout, connection reset) rather than an API-level rejection.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return false
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Client talks to the remote article API. The bearer token is supplied by the
// auth layer; 401 responses are not special-cased and surface as StatusError.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *log.Logger
}

// New creates a client for the API at baseURL.
func New(baseURL, token string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     logger,
	}
}

// List returns all of the user's remote articles.
func (c *Client) List(ctx context.Context) ([]*models.Article, error) {
	var articles []*models.Article
	if err := c.do(ctx, http.MethodGet, "/v1/articles", nil, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// ListExcluding returns remote articles whose IDs are not in ids. The
// server-side exclusion is an optimization only; on an API-level failure of
// the filtered query it falls back to a full List, and callers must filter by
// ID themselves regardless.
func (c *Client) ListExcluding(ctx context.Context, ids []int64) ([]*models.Article, error) {
	if len(ids) == 0 {
		return c.List(ctx)
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	endpoint := "/v1/articles?exclude=" + strings.Join(parts, ",")

	var articles []*models.Article
	err := c.do(ctx, http.MethodGet, endpoint, nil, &articles)
	if err == nil {
		return articles, nil
	}

	var se *StatusError
	if errors.As(err, &se) {
		// O(full history) every sync when the backend can't filter; accepted
		// cost at current collection sizes.
		c.log.Debug("exclusion query rejected, falling back to full list", "status", se.Code)
		return c.List(ctx)
	}
	return nil, err
}

// Create saves a new article from url; the backend runs extraction and
// returns the completed record.
func (c *Client) Create(ctx context.Context, articleURL, tags string) (*models.Article, error) {
	body := map[string]string{"url": articleURL}
	if tags != "" {
		body["tags"] = tags
	}

	var article models.Article
	if err := c.do(ctx, http.MethodPost, "/v1/articles", body, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// Update applies a partial field update and returns the updated record.
func (c *Client) Update(ctx context.Context, id int64, fields Fields) (*models.Article, error) {
	var article models.Article
	endpoint := "/v1/articles/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPatch, endpoint, fields, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// Delete removes an article remotely.
func (c *Client) Delete(ctx context.Context, id int64) error {
	endpoint := "/v1/articles/" + strconv.FormatInt(id, 10)
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "stash/1.0 (read-it-later)")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if int64(len(data)) > MaxResponseSize {
		return fmt.Errorf("response too large (exceeds %d bytes)", MaxResponseSize)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
