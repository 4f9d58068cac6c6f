// Package matrix is the matrix placeholder page. It keeps the base element
// records it loads and appends one empty placeholder section per Add.
package matrix

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-resourceforms/pkg/render"
	"github.com/goliatone/go-resourceforms/pkg/resource"
)

const (
	DefaultTitle     = "Matrix"
	DefaultAddLabel  = "Add Matrix"
	DefaultAddAction = "/matrix/add"
)

// ErrNoAddHandler is returned by New when no add handler is supplied.
var ErrNoAddHandler = errors.New("matrix: add handler is required")

// Lister fetches the records of a resource type. *api.Client satisfies it.
type Lister interface {
	List(ctx context.Context, typ resource.Type) ([]resource.Record, error)
}

// Placeholder is one empty matrix section.
type Placeholder struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// AddFunc creates the next placeholder from the loaded elements and the
// placeholders that already exist.
type AddFunc func(ctx context.Context, elements []resource.Record, existing []Placeholder) (Placeholder, error)

// DefaultAddFunc names placeholders "Matrix N" with a random id.
func DefaultAddFunc(_ context.Context, _ []resource.Record, existing []Placeholder) (Placeholder, error) {
	return Placeholder{
		ID:    uuid.NewString(),
		Title: fmt.Sprintf("Matrix %d", len(existing)+1),
	}, nil
}

// State is a copy of the component state.
type State struct {
	Mounted      bool
	Elements     []resource.Record
	Placeholders []Placeholder
	Err          error
}

// Option configures a Page.
type Option func(*Page)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Page) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithAddAction sets the URL the "Add Matrix" form posts to.
func WithAddAction(action string) Option {
	return func(p *Page) {
		if action != "" {
			p.addAction = action
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

// Page is the matrix placeholder component.
type Page struct {
	lister    Lister
	onAdd     AddFunc
	logger    *zap.Logger
	addAction string
	title     string

	// addMu serializes Add so each handler call sees the placeholders
	// appended by the previous one.
	addMu sync.Mutex
	mu    sync.RWMutex
	state State
}

// New builds the page. onAdd is required.
func New(lister Lister, onAdd AddFunc, options ...Option) (*Page, error) {
	if lister == nil {
		return nil, errors.New("matrix: lister is required")
	}
	if onAdd == nil {
		return nil, ErrNoAddHandler
	}
	p := &Page{
		lister:    lister,
		onAdd:     onAdd,
		logger:    zap.NewNop(),
		addAction: DefaultAddAction,
		title:     DefaultTitle,
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Mount loads the base element records into state. A failure is kept in
// state so the page can still render.
func (p *Page) Mount(ctx context.Context) error {
	elements, err := p.lister.List(ctx, resource.BaseElement)

	p.mu.Lock()
	p.state.Mounted = true
	p.state.Err = err
	if err == nil {
		p.state.Elements = elements
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("matrix elements failed", zap.Error(err))
		return fmt.Errorf("matrix: mount: %w", err)
	}
	p.logger.Debug("matrix elements loaded", zap.Int("count", len(elements)))
	return nil
}

// Add invokes the add handler and appends the placeholder it returns.
func (p *Page) Add(ctx context.Context) (Placeholder, error) {
	p.addMu.Lock()
	defer p.addMu.Unlock()

	state := p.State()
	placeholder, err := p.onAdd(ctx, state.Elements, state.Placeholders)
	if err != nil {
		return Placeholder{}, fmt.Errorf("matrix: add: %w", err)
	}

	p.mu.Lock()
	p.state.Placeholders = append(p.state.Placeholders, placeholder)
	p.mu.Unlock()

	p.logger.Debug("matrix added", zap.String("id", placeholder.ID))
	return placeholder, nil
}

// State returns a copy of the current state.
func (p *Page) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	state := p.state
	state.Elements = slices.Clone(p.state.Elements)
	state.Placeholders = slices.Clone(p.state.Placeholders)
	return state
}

// View builds the renderer-neutral page.
func (p *Page) View() render.Page {
	state := p.State()
	view := &render.MatrixView{
		AddLabel:     DefaultAddLabel,
		AddAction:    p.addAction,
		ElementCount: len(state.Elements),
		Placeholders: make([]render.PlaceholderView, 0, len(state.Placeholders)),
	}
	if state.Err != nil {
		view.Error = state.Err.Error()
	}
	for _, placeholder := range state.Placeholders {
		view.Placeholders = append(view.Placeholders, render.PlaceholderView{
			ID:    placeholder.ID,
			Title: placeholder.Title,
		})
	}
	return render.Page{
		Kind:    render.PageMatrix,
		Title:   p.title,
		MountID: render.DefaultMountID,
		Matrix:  view,
	}
}

// Render hands the view to renderer.
func (p *Page) Render(ctx context.Context, renderer render.Renderer, options render.RenderOptions) ([]byte, error) {
	if renderer == nil {
		return nil, errors.New("matrix: renderer is nil")
	}
	out, err := renderer.Render(ctx, p.View(), options)
	if err != nil {
		return nil, fmt.Errorf("matrix: render: %w", err)
	}
	return out, nil
}
