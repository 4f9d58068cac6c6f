package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-resourceforms/pkg/resource"
	"github.com/goliatone/go-resourceforms/pkg/schema"
)

// DefaultTimeout bounds each request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// ErrUnexpectedStatus is matched by StatusError for non-2xx responses.
var ErrUnexpectedStatus = errors.New("api: unexpected status")

// StatusError records a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: %s %s: unexpected status %s", e.Method, e.URL, e.Status)
}

// Is lets errors.Is(err, ErrUnexpectedStatus) match.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout bounds every request. Zero disables the per-request deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHeader adds a header sent with every request, e.g. Authorization.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		key = strings.TrimSpace(key)
		if key == "" {
			return
		}
		c.headers.Set(key, value)
	}
}

// Client talks to the REST API exposing one endpoint per resource type.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
	headers http.Header
}

// New constructs a Client rooted at base, e.g. "http://localhost:8000/api".
// A relative base such as "/api" is accepted for clients whose transport
// rewrites hosts.
func New(base string, options ...Option) (*Client, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return nil, errors.New("api: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}

	client := &Client{
		base:    strings.TrimRight(base, "/"),
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
		headers: make(http.Header),
	}
	client.headers.Set("Accept", "application/json")
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(client)
	}
	return client, nil
}

// Base returns the API root.
func (c *Client) Base() string {
	return c.base
}

// Metadata issues OPTIONS against the resource endpoint.
func (c *Client) Metadata(ctx context.Context, typ resource.Type) (schema.Metadata, error) {
	data, err := c.do(ctx, http.MethodOptions, typ.Path(c.base), nil)
	if err != nil {
		return schema.Metadata{}, err
	}
	meta, err := schema.ParseMetadata(data)
	if err != nil {
		return schema.Metadata{}, fmt.Errorf("api: %s metadata: %w", typ, err)
	}
	return meta, nil
}

// Schema returns the create schema advertised for typ.
func (c *Client) Schema(ctx context.Context, typ resource.Type) (schema.Schema, error) {
	meta, err := c.Metadata(ctx, typ)
	if err != nil {
		return schema.Schema{}, err
	}
	post, err := meta.Post()
	if err != nil {
		return schema.Schema{}, fmt.Errorf("api: %s: %w", typ, err)
	}
	return post, nil
}

// List fetches every record of typ. Paginated envelopes ({"results": [...]})
// are unwrapped; only the first page is read.
func (c *Client) List(ctx context.Context, typ resource.Type) ([]resource.Record, error) {
	data, err := c.do(ctx, http.MethodGet, typ.Path(c.base), nil)
	if err != nil {
		return nil, err
	}
	records, err := decodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("api: %s list: %w", typ, err)
	}
	return records, nil
}

// Create posts record to the resource endpoint and returns the stored row.
func (c *Client) Create(ctx context.Context, typ resource.Type, record resource.Record) (resource.Record, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("api: encode %s record: %w", typ, err)
	}
	data, err := c.do(ctx, http.MethodPost, typ.Path(c.base), payload)
	if err != nil {
		return nil, err
	}
	var created resource.Record
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("api: decode created %s: %w", typ, err)
	}
	return created, nil
}

func (c *Client) do(ctx context.Context, method, target string, body []byte) ([]byte, error) {
	reqCtx := ctx
	var cancel context.CancelFunc
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("api: build %s %s: %w", method, target, err)
	}
	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("url", target),
			zap.Error(err),
		)
		return nil, fmt.Errorf("api: %s %s: %w", method, target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: read %s %s: %w", method, target, err)
	}
	return data, nil
}

func decodeRecords(data []byte) ([]resource.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty response body")
	}
	if trimmed[0] == '{' {
		var page struct {
			Results []resource.Record `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, err
		}
		if page.Results == nil {
			return nil, errors.New("object response without results")
		}
		return page.Results, nil
	}
	var records []resource.Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []resource.Record{}
	}
	return records, nil
}
