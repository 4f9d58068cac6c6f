package gotemplate

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-resourceforms/pkg/testsupport"
)

func newEngine(t *testing.T, options ...Option) *Engine {
	t.Helper()

	files := fstest.MapFS{
		"hello.tmpl":      {Data: []byte("Hello {{ name }}!")},
		"escape.tmpl":     {Data: []byte("<p>{{ value }}</p><div>{{ markup|safe }}</div>")},
		"use-global.tmpl": {Data: []byte("env={{ settings.env }}")},
		"struct.tmpl":     {Data: []byte("{{ item.display_name }}:{{ item.value }}")},
		"shout.tmpl":      {Data: []byte("{{ word|shout }}")},
	}
	engine, err := New(append([]Option{WithFS(files)}, options...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngineRenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})
	if result != "Hello Ada!" || written != result {
		t.Fatalf("unexpected output result=%q written=%q", result, written)
	}
}

func TestEngineEscapesByDefault(t *testing.T) {
	engine := newEngine(t)

	out, err := engine.RenderTemplate("escape.tmpl", map[string]any{
		"value":  `<script>alert("x")</script>`,
		"markup": `<em>ok</em>`,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected value to be escaped, got %s", out)
	}
	if !strings.Contains(out, "<div><em>ok</em></div>") {
		t.Fatalf("expected safe markup to pass through, got %s", out)
	}
}

func TestEngineGlobalContext(t *testing.T) {
	engine := newEngine(t, WithGlobalData(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}))

	out, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "env=staging" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEngineConvertsStructsThroughJSON(t *testing.T) {
	engine := newEngine(t)

	type item struct {
		DisplayName string `json:"display_name"`
		Value       string `json:"value"`
	}
	out, err := engine.RenderTemplate("struct", map[string]any{"item": item{DisplayName: "By", Value: "/"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "By:/" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEngineRegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		value, _ := input.(string)
		if value == "" {
			return nil, errors.New("empty")
		}
		return strings.ToUpper(value) + "!", nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	out, err := engine.RenderTemplate("shout", map[string]any{"word": "matrix"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "MATRIX!" {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := engine.RenderTemplate("shout", map[string]any{"word": ""}); err == nil {
		t.Fatalf("expected filter error to surface")
	}
}

func TestEngineRenderDispatch(t *testing.T) {
	engine := newEngine(t)

	out, err := engine.Render("{{ a }}-{{ b }}", map[string]any{"a": "x", "b": "y"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if out != "x-y" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEngineBaseDirShadowsAndReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.tmpl")
	if err := os.WriteFile(path, []byte("Hi {{ name }}"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	engine := newEngine(t, WithBaseDir(dir))
	out, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Hi Ada" {
		t.Fatalf("expected disk template to shadow bundle, got %q", out)
	}

	if err := os.WriteFile(path, []byte("Hey {{ name }}"), 0o644); err != nil {
		t.Fatalf("rewrite template: %v", err)
	}
	out, _ = engine.RenderTemplate("hello", map[string]any{"name": "Ada"})
	if out != "Hi Ada" {
		t.Fatalf("expected cached template before reload, got %q", out)
	}

	engine.Reload()
	out, _ = engine.RenderTemplate("hello", map[string]any{"name": "Ada"})
	if out != "Hey Ada" {
		t.Fatalf("expected reloaded template, got %q", out)
	}
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatalf("expected error without fs or base dir")
	}
}

func TestEngineStructDataAndNonObject(t *testing.T) {
	engine := newEngine(t)

	type view struct {
		Name string `json:"name"`
	}
	out, err := engine.RenderTemplate("hello", view{Name: "Grace"})
	if err != nil {
		t.Fatalf("render struct data: %v", err)
	}
	if out != "Hello Grace!" {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := engine.RenderTemplate("hello", []string{"nope"}); err == nil {
		t.Fatalf("expected error for non-object data")
	}
}
