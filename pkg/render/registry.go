package render

import (
	"errors"
	"fmt"
	"mime"
	"slices"
	"strings"
	"sync"
)

// ErrUnknownRenderer is returned when no renderer matches a name.
var ErrUnknownRenderer = errors.New("render: unknown renderer")

// Registry holds the page renderers the CLI and server choose from by name or
// by media type. The first renderer registered is the default.
type Registry struct {
	mu    sync.RWMutex
	order []Renderer
	names map[string]Renderer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: map[string]Renderer{}}
}

// Register adds renderer under its Name() and any aliases. Names are case
// insensitive and must be unique.
func (r *Registry) Register(renderer Renderer, aliases ...string) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	keys := []string{normalizeName(renderer.Name())}
	if keys[0] == "" {
		return errors.New("render: renderer name is required")
	}
	for _, alias := range aliases {
		if alias = normalizeName(alias); alias != "" {
			keys = append(keys, alias)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		if _, taken := r.names[key]; taken {
			return fmt.Errorf("render: renderer %q already registered", key)
		}
	}
	for _, key := range keys {
		r.names[key] = renderer
	}
	r.order = append(r.order, renderer)
	return nil
}

// MustRegister panics when Register fails.
func (r *Registry) MustRegister(renderer Renderer, aliases ...string) {
	if err := r.Register(renderer, aliases...); err != nil {
		panic(err)
	}
}

// Resolve returns the renderer registered as name, or the default when name
// is blank.
func (r *Registry) Resolve(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := normalizeName(name)
	if key == "" {
		if len(r.order) == 0 {
			return nil, fmt.Errorf("%w: registry is empty", ErrUnknownRenderer)
		}
		return r.order[0], nil
	}
	renderer, ok := r.names[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, name)
	}
	return renderer, nil
}

// Negotiate picks a renderer for an HTTP Accept header: the first listed
// media type some renderer produces wins, in header order. Wildcards, an
// empty header or no match give the default.
func (r *Registry) Negotiate(accept string) (Renderer, error) {
	r.mu.RLock()
	for _, part := range strings.Split(accept, ",") {
		media, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil || strings.HasSuffix(media, "/*") || media == "*/*" {
			continue
		}
		for _, renderer := range r.order {
			produced, _, err := mime.ParseMediaType(renderer.ContentType())
			if err == nil && produced == media {
				r.mu.RUnlock()
				return renderer, nil
			}
		}
	}
	r.mu.RUnlock()
	return r.Resolve("")
}

// List returns the registered names and aliases, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
