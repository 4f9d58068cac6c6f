// Package components holds the control markup the vanilla renderer emits for
// each widget kind.
package components

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/goliatone/go-resourceforms/pkg/render"
	rendertemplate "github.com/goliatone/go-resourceforms/pkg/render/template"
	"github.com/goliatone/go-resourceforms/pkg/widgets"
)

// Renderer writes the control markup for one field into buf.
type Renderer func(buf *bytes.Buffer, field render.FieldView, data ComponentData) error

// ComponentData carries helpers for component renderers. When Partial names a
// template, the component delegates to it instead of its built-in markup.
type ComponentData struct {
	Template rendertemplate.TemplateRenderer
	Partial  string
}

// Registry maps widget kinds to renderers. It is immutable; With returns an
// extended copy, so one registry can be shared by concurrent renders.
type Registry struct {
	renderers map[widgets.Kind]Renderer
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{renderers: map[widgets.Kind]Renderer{}}
}

// With returns a copy of r where kind renders with fn.
func (r *Registry) With(kind widgets.Kind, fn Renderer) (*Registry, error) {
	if kind == "" {
		return nil, fmt.Errorf("components: widget kind is required")
	}
	if fn == nil {
		return nil, fmt.Errorf("components: renderer for %q is nil", kind)
	}
	next := &Registry{renderers: maps.Clone(r.renderers)}
	next.renderers[kind] = fn
	return next, nil
}

// MustWith is With for static setup; it panics on error.
func (r *Registry) MustWith(kind widgets.Kind, fn Renderer) *Registry {
	next, err := r.With(kind, fn)
	if err != nil {
		panic(err)
	}
	return next
}

// Lookup returns the renderer for kind.
func (r *Registry) Lookup(kind widgets.Kind) (Renderer, bool) {
	fn, ok := r.renderers[kind]
	return fn, ok
}

// Kinds lists the registered widget kinds in sorted order.
func (r *Registry) Kinds() []widgets.Kind {
	return slices.Sorted(maps.Keys(r.renderers))
}
