package testsupport

import (
	"bytes"
	"context"
	"embed"
	"io"
	"path"
	"testing"

	"github.com/goliatone/go-resourceforms/pkg/resource"
	"github.com/goliatone/go-resourceforms/pkg/schema"
)

//go:embed testdata/*
var fixtures embed.FS

// Fixture returns the raw bytes of a file under testdata.
func Fixture(t *testing.T, name string) []byte {
	t.Helper()

	data, err := fixtures.ReadFile(path.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

// OptionsFixture returns the metadata payload recorded for a resource type.
func OptionsFixture(t *testing.T, typ resource.Type) []byte {
	t.Helper()
	return Fixture(t, string(typ)+".options.json")
}

// ListFixture returns the list payload recorded for a resource type.
func ListFixture(t *testing.T, typ resource.Type) []byte {
	t.Helper()
	return Fixture(t, string(typ)+".list.json")
}

// MustLoadSchema decodes the POST schema recorded for a resource type.
func MustLoadSchema(t *testing.T, typ resource.Type) schema.Schema {
	t.Helper()

	meta, err := schema.ParseMetadata(OptionsFixture(t, typ))
	if err != nil {
		t.Fatalf("parse metadata for %s: %v", typ, err)
	}
	post, err := meta.Post()
	if err != nil {
		t.Fatalf("post schema for %s: %v", typ, err)
	}
	return post
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
