// Package form is the schema-driven form page: it loads schema and records
// for every resource type, keeps the settled snapshot as component state and
// renders the nested list of record forms.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-resourceforms/pkg/loader"
	"github.com/goliatone/go-resourceforms/pkg/render"
	"github.com/goliatone/go-resourceforms/pkg/resource"
)

// DefaultTitle is used when no title option is supplied.
const DefaultTitle = "Resources"

// ErrNotMounted is returned when rendering a page whose data never settled.
var ErrNotMounted = errors.New("form: page not mounted")

// State is a copy of the component state.
type State struct {
	// Version increments once per settled Mount.
	Version  int
	Snapshot loader.Snapshot
}

// Mounted reports whether at least one Mount settled.
func (s State) Mounted() bool {
	return s.Version > 0
}

// Option configures a Page.
type Option func(*Page)

// WithLogger sets the logger used for mount diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Page) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithLayout replaces the default group layout.
func WithLayout(layout resource.Layout) Option {
	return func(p *Page) {
		if len(layout) > 0 {
			p.layout = layout
		}
	}
}

// WithBuilder replaces the view builder.
func WithBuilder(builder *render.Builder) Option {
	return func(p *Page) {
		if builder != nil {
			p.builder = builder
		}
	}
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(p *Page) {
		if title != "" {
			p.title = title
		}
	}
}

// WithLoaderOptions forwards options to the underlying loader.
func WithLoaderOptions(options ...loader.Option) Option {
	return func(p *Page) {
		p.loaderOptions = append(p.loaderOptions, options...)
	}
}

// WithOnSettled registers a hook invoked once per Mount after every request
// completed and the snapshot was stored.
func WithOnSettled(fn func(loader.Snapshot)) Option {
	return func(p *Page) {
		p.onSettled = fn
	}
}

// Page is the form page component.
type Page struct {
	mu    sync.RWMutex
	state State

	loader        *loader.Loader
	loaderOptions []loader.Option
	layout        resource.Layout
	builder       *render.Builder
	title         string
	logger        *zap.Logger
	onSettled     func(loader.Snapshot)
}

// New builds a page fetching through fetcher.
func New(fetcher loader.Fetcher, options ...Option) (*Page, error) {
	p := &Page{
		layout:  resource.DefaultLayout(),
		builder: render.NewBuilder(),
		title:   DefaultTitle,
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	if err := p.layout.Validate(); err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}

	l, err := loader.New(fetcher, append([]loader.Option{loader.WithLogger(p.logger)}, p.loaderOptions...)...)
	if err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	p.loader = l
	return p, nil
}

// Mount loads every resource type and stores the settled snapshot. Per-type
// failures are kept in the snapshot and do not fail the mount; only a
// cancelled context does.
func (p *Page) Mount(ctx context.Context) (loader.Snapshot, error) {
	snapshot, err := p.loader.Load(ctx, p.types()...)
	if err != nil {
		return loader.Snapshot{}, fmt.Errorf("form: mount: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return loader.Snapshot{}, fmt.Errorf("form: mount: %w", err)
	}

	p.mu.Lock()
	p.state.Snapshot = snapshot
	p.state.Version++
	version := p.state.Version
	p.mu.Unlock()

	p.logger.Debug("form settled",
		zap.Int("version", version),
		zap.Int("failed", len(snapshot.Failed())),
	)

	if p.onSettled != nil {
		p.onSettled(snapshot)
	}
	return snapshot, nil
}

// types is every resource type plus anything the layout names, so types that
// are loaded but not laid out still join the settle.
func (p *Page) types() []resource.Type {
	types := resource.All()
	return append(types, p.layout.Types()...)
}

// State returns a copy of the current state.
func (p *Page) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Layout returns the group layout.
func (p *Page) Layout() resource.Layout {
	return p.layout
}

// View builds the renderer-neutral page from the current state.
func (p *Page) View() (render.Page, error) {
	state := p.State()
	if !state.Mounted() {
		return render.Page{}, ErrNotMounted
	}
	return p.builder.FormPage(p.title, state.Snapshot, p.layout), nil
}

// Render builds the view and hands it to renderer.
func (p *Page) Render(ctx context.Context, renderer render.Renderer, options render.RenderOptions) ([]byte, error) {
	if renderer == nil {
		return nil, errors.New("form: renderer is nil")
	}
	view, err := p.View()
	if err != nil {
		return nil, err
	}
	out, err := renderer.Render(ctx, view, options)
	if err != nil {
		return nil, fmt.Errorf("form: render: %w", err)
	}
	return out, nil
}
