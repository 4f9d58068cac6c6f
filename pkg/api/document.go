package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Document reads an OpenAPI document from an http(s) URL, using the client's
// headers and timeout, or from a file path.
func (c *Client) Document(ctx context.Context, location string) ([]byte, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("api: document location is required")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return c.do(ctx, http.MethodGet, location, nil)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(strings.TrimPrefix(location, "file://"))
	if err != nil {
		return nil, fmt.Errorf("api: read document: %w", err)
	}
	return data, nil
}
