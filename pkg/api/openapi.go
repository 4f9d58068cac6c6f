package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-resourceforms/pkg/resource"
	"github.com/goliatone/go-resourceforms/pkg/schema"
)

// OpenAPIFetcher reads schemas from an OpenAPI document instead of the
// metadata endpoint. Records still come from the API.
type OpenAPIFetcher struct {
	client   *Client
	document *openapi3.T
	prefix   string
}

// NewOpenAPIFetcher pairs client with document, which is parsed once here.
// Resource paths are looked up under the path component of the client's base
// URL.
func NewOpenAPIFetcher(ctx context.Context, client *Client, document []byte) (*OpenAPIFetcher, error) {
	if client == nil {
		return nil, errors.New("api: client is required")
	}
	if len(document) == 0 {
		return nil, errors.New("api: openapi document is empty")
	}
	parsed, err := url.Parse(client.Base())
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	doc, err := schema.ParseOpenAPI(ctx, document)
	if err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}
	return &OpenAPIFetcher{
		client:   client,
		document: doc,
		prefix:   strings.TrimRight(parsed.Path, "/"),
	}, nil
}

// Schema returns the POST request body schema of the type's collection path.
func (f *OpenAPIFetcher) Schema(ctx context.Context, typ resource.Type) (schema.Schema, error) {
	if !typ.Valid() {
		return schema.Schema{}, fmt.Errorf("api: %w: %q", resource.ErrUnknownType, typ)
	}
	if err := ctx.Err(); err != nil {
		return schema.Schema{}, err
	}
	s, err := schema.FromOpenAPIDocument(f.document, f.prefix+"/"+typ.String())
	if err != nil {
		return schema.Schema{}, fmt.Errorf("api: openapi schema %s: %w", typ, err)
	}
	return s, nil
}

// List delegates to the client.
func (f *OpenAPIFetcher) List(ctx context.Context, typ resource.Type) ([]resource.Record, error) {
	return f.client.List(ctx, typ)
}
