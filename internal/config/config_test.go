package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-resourceforms/pkg/resource"
	"github.com/goliatone/go-resourceforms/pkg/schema"
	"github.com/goliatone/go-resourceforms/pkg/widgets"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resourceforms.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvPath, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: http://simulator:9000/api
  timeout: 2s
  headers:
    Authorization: Token abc
server:
  addr: 127.0.0.1:9090
layout:
  - type: composition
    children:
      - type: specification
widgets:
  label: textarea
log:
  level: debug
  format: console
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "http://simulator:9000/api" || cfg.API.Timeout != 2*time.Second {
		t.Fatalf("unexpected api config %+v", cfg.API)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" || cfg.Server.AssetsPrefix != "/assets" {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	want := resource.Layout{{Type: resource.Composition, Children: []resource.Group{{Type: resource.Specification}}}}
	if diff := cmp.Diff(want, cfg.Layout); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}

	widget := cfg.WidgetRegistry().Resolve(schema.Field{Name: "label", Descriptor: schema.Descriptor{Type: schema.FieldTypeString}})
	if widget.Kind != widgets.KindTextarea {
		t.Fatalf("expected override to textarea, got %s", widget.Kind)
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "api:\n  base_url: http://env/api\n")
	t.Setenv(EnvPath, path)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "http://env/api" {
		t.Fatalf("expected env config, got %s", cfg.API.BaseURL)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "api: [")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = ""
	cfg.Layout = resource.Layout{{Type: "matrix"}}
	cfg.Widgets = map[string]string{"label": "slider"}
	cfg.Server.AssetsPrefix = "assets"
	cfg.Templates.Watch = true
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"api.base_url", "layout", "widgets.label", "assets_prefix", "templates.watch", "logging"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}
