// Package gotemplate runs page and component templates on pongo2, behind the
// same contract github.com/goliatone/go-template engines expose.
package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"
	"go.uber.org/zap"

	"github.com/goliatone/go-resourceforms/pkg/render/template"
)

const defaultExtension = ".tmpl"

// Option configures an Engine.
type Option func(*options)

type options struct {
	dir       string
	files     fs.FS
	extension string
	globals   map[string]any
	logger    *zap.Logger
}

// WithBaseDir loads templates from dir first. Files there shadow the ones in
// WithFS.
func WithBaseDir(dir string) Option {
	return func(o *options) {
		o.dir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from files.
func WithFS(files fs.FS) Option {
	return func(o *options) {
		o.files = files
	}
}

// WithExtension sets the suffix appended to template names that lack it.
func WithExtension(ext string) Option {
	return func(o *options) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		o.extension = "." + strings.TrimPrefix(ext, ".")
	}
}

// WithGlobalData seeds values every template can read.
func WithGlobalData(data map[string]any) Option {
	return func(o *options) {
		for key, value := range data {
			if o.globals == nil {
				o.globals = make(map[string]any, len(data))
			}
			o.globals[strings.TrimSpace(key)] = value
		}
	}
}

// WithLogger logs template loads and cache resets at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithGoTemplateOptions accepts go-template engine options so callers can
// share option lists between engines. They have no effect here.
func WithGoTemplateOptions(_ ...gotemplatepkg.Option) Option {
	return func(*options) {}
}

// Engine renders named templates from a pongo2 set and keeps each parsed
// template until Reload.
type Engine struct {
	set    *pongo2.TemplateSet
	ext    string
	logger *zap.Logger

	mu     sync.RWMutex
	parsed map[string]*pongo2.Template
}

var (
	_ template.TemplateRenderer = (*Engine)(nil)
	_ template.Reloader         = (*Engine)(nil)
)

// New builds an Engine. At least one of WithBaseDir or WithFS is required.
func New(opts ...Option) (*Engine, error) {
	o := options{extension: defaultExtension, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	var loaders []pongo2.TemplateLoader
	if o.dir != "" {
		local, err := pongo2.NewLocalFileSystemLoader(o.dir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: template dir %s: %w", o.dir, err)
		}
		loaders = append(loaders, local)
	}
	if o.files != nil {
		loaders = append(loaders, pongo2.NewFSLoader(o.files))
	}
	if len(loaders) == 0 {
		return nil, errors.New("gotemplate: a template dir or fs.FS is required")
	}

	e := &Engine{
		set:    pongo2.NewSet("resourceforms", loaders...),
		ext:    o.extension,
		logger: o.logger,
		parsed: make(map[string]*pongo2.Template),
	}
	if err := e.GlobalContext(o.globals); err != nil {
		return nil, err
	}
	return e, nil
}

// Render treats name as inline template source when it contains template
// tags, and as a template name otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate executes the named template. The extension is optional.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if !strings.HasSuffix(name, e.ext) {
		name += e.ext
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	return e.execute(name, tmpl, data, out)
}

// RenderString parses and executes source without caching it.
func (e *Engine) RenderString(source string, data any, out ...io.Writer) (string, error) {
	tmpl, err := e.set.FromString(source)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse inline template: %w", err)
	}
	return e.execute("inline", tmpl, data, out)
}

// RegisterFilter installs fn as a pongo2 filter, replacing any filter with
// the same name. pongo2 filters are process wide.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return errors.New("gotemplate: filter name is required")
	case fn == nil:
		return fmt.Errorf("gotemplate: filter %q has no function", name)
	}

	filter := func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		value, err := fn(in.Interface(), param.Interface())
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(value), nil
	}
	if pongo2.FilterExists(name) {
		return pongo2.ReplaceFilter(name, filter)
	}
	return pongo2.RegisterFilter(name, filter)
}

// GlobalContext merges data into the set's globals.
func (e *Engine) GlobalContext(data any) error {
	ctx, err := toContext(data)
	if err != nil {
		return fmt.Errorf("gotemplate: global context: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = pongo2.Context{}
	}
	e.set.Globals.Update(ctx)
	return nil
}

// Reload forgets every parsed template so the next render reads the sources
// again.
func (e *Engine) Reload() {
	e.mu.Lock()
	dropped := len(e.parsed)
	e.parsed = make(map[string]*pongo2.Template)
	e.mu.Unlock()

	e.logger.Debug("templates reloaded", zap.Int("dropped", dropped))
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.parsed[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.parsed[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %q: %w", name, err)
	}
	e.parsed[name] = tmpl
	e.logger.Debug("template loaded", zap.String("template", name))
	return tmpl, nil
}

func (e *Engine) execute(name string, tmpl *pongo2.Template, data any, out []io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: %s data: %w", name, err)
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %q: %w", name, err)
	}

	for _, w := range out {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// toContext turns data into a pongo2 context. Structs and typed maps go
// through encoding/json, so templates address struct fields by json name.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	if ctx, ok := data.(pongo2.Context); ok {
		data = map[string]any(ctx)
	}
	normalized, err := normalize(data)
	if err != nil {
		return nil, err
	}
	values, ok := normalized.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("template data must be an object, got %T", data)
	}

	ctx := make(pongo2.Context, len(values))
	for key, value := range values {
		if key = strings.TrimSpace(key); key != "" {
			ctx[key] = value
		}
	}
	return ctx, nil
}

func normalize(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, int64, float64:
		return v, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			converted, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for idx, item := range v {
			converted, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[idx] = converted
		}
		return out, nil
	}

	// Functions stay callable from templates.
	if reflect.ValueOf(value).Kind() == reflect.Func {
		return value, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}
