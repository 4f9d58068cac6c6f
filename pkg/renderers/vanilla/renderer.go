package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-resourceforms/pkg/focus"
	"github.com/goliatone/go-resourceforms/pkg/render"
	rendertemplate "github.com/goliatone/go-resourceforms/pkg/render/template"
	gotemplate "github.com/goliatone/go-resourceforms/pkg/render/template/gotemplate"
	"github.com/goliatone/go-resourceforms/pkg/renderers/vanilla/components"
)

// Theme partial keys that replace the built-in page templates.
const (
	PartialLayout = "page.layout"
	PartialForm   = "page.form"
	PartialGroup  = "page.group"
	PartialMatrix = "page.matrix"
)

// StylesheetAssetKey is resolved through the theme AssetURL before falling
// back to the embedded stylesheet.
const StylesheetAssetKey = "vanilla.stylesheet"

// Option configures a Renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateDir      string
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk. Files missing
// there are still served from the embedded bundle.
func WithTemplatesDir(dir string) Option {
	return func(cfg *config) {
		cfg.templateDir = strings.TrimSpace(dir)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default control registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
	registry  *components.Registry
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithBaseDir(cfg.templateDir),
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, registry: cfg.registry}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Reload drops cached templates when the underlying engine supports it.
func (r *Renderer) Reload() {
	if reloader, ok := r.templates.(rendertemplate.Reloader); ok {
		reloader.Reload()
	}
}

func (r *Renderer) Render(ctx context.Context, page render.Page, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var partials map[string]string
	var cssVars map[string]string
	if options.Theme != nil {
		partials = options.Theme.Partials
		cssVars = options.Theme.CSSVars
	}

	mountID := page.MountID
	if mountID == "" {
		mountID = render.DefaultMountID
	}

	base := map[string]any{
		"mount_id": mountID,
		"title":    page.Title,
		"style":    inlineStyle(cssVars),
		"classes":  chromeClasses(),
	}

	var (
		content string
		err     error
	)
	switch page.Kind {
	case render.PageForm:
		content, err = r.renderForm(page, base, partials)
	case render.PageMatrix:
		content, err = r.renderMatrix(page, base, partials)
	default:
		err = fmt.Errorf("unsupported page kind %q", page.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}

	if !options.Standalone {
		return []byte(content), nil
	}

	document, err := r.templates.RenderTemplate(templateName(partials, PartialLayout, templateLayout), map[string]any{
		"title":       page.Title,
		"content":     content,
		"stylesheets": stylesheets(options),
		"scripts":     scripts(options),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render layout: %w", err)
	}
	return []byte(document), nil
}

func (r *Renderer) renderForm(page render.Page, base map[string]any, partials map[string]string) (string, error) {
	fields := newComponentRenderer(r.templates, r.registry, partials)

	groups := make([]string, 0, len(page.Groups))
	for _, group := range page.Groups {
		markup, err := r.renderGroup(group, fields, partials)
		if err != nil {
			return "", err
		}
		groups = append(groups, markup)
	}

	data := cloneData(base)
	data["groups"] = groups
	out, err := r.templates.RenderTemplate(templateName(partials, PartialForm, templateForm), data)
	if err != nil {
		return "", fmt.Errorf("render form: %w", err)
	}
	return out, nil
}

func (r *Renderer) renderGroup(group render.GroupView, fields *componentRenderer, partials map[string]string) (string, error) {
	records := make([]map[string]any, 0, len(group.Records))
	for _, record := range group.Records {
		markup, err := fields.renderRecord(record)
		if err != nil {
			return "", fmt.Errorf("render %s record %s: %w", group.Type, record.Key, err)
		}
		records = append(records, map[string]any{
			"key":  record.Key,
			"html": markup,
		})
	}

	children := make([]string, 0, len(group.Children))
	for _, child := range group.Children {
		markup, err := r.renderGroup(child, fields, partials)
		if err != nil {
			return "", err
		}
		children = append(children, markup)
	}

	out, err := r.templates.RenderTemplate(templateName(partials, PartialGroup, templateGroup), map[string]any{
		"group": map[string]any{
			"type":      group.Type.String(),
			"title":     group.Title,
			"add_label": group.AddLabel,
			"status":    string(group.Status),
			"error":     group.Error,
		},
		"records":  records,
		"children": children,
		"classes":  chromeClasses(),
	})
	if err != nil {
		return "", fmt.Errorf("render group %s: %w", group.Type, err)
	}
	return out, nil
}

func (r *Renderer) renderMatrix(page render.Page, base map[string]any, partials map[string]string) (string, error) {
	matrix := page.Matrix
	if matrix == nil {
		matrix = &render.MatrixView{}
	}

	data := cloneData(base)
	data["matrix"] = matrix
	data["element_count"] = strconv.Itoa(matrix.ElementCount)
	out, err := r.templates.RenderTemplate(templateName(partials, PartialMatrix, templateMatrix), data)
	if err != nil {
		return "", fmt.Errorf("render matrix: %w", err)
	}
	return out, nil
}

func templateName(partials map[string]string, key, fallback string) string {
	if candidate := strings.TrimSpace(partials[key]); candidate != "" {
		return candidate
	}
	return fallback
}

func inlineStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key]+";")
	}
	return strings.Join(parts, " ")
}

func stylesheets(options render.RenderOptions) []string {
	href := ""
	if options.Theme != nil && options.Theme.AssetURL != nil {
		href = options.Theme.AssetURL(StylesheetAssetKey)
	}
	if href == "" {
		href = path.Join(options.Prefix(), StylesheetName)
	}
	return append([]string{href}, options.Stylesheets...)
}

func scripts(options render.RenderOptions) []string {
	return append([]string{path.Join(options.Prefix(), focus.ScriptName)}, options.Scripts...)
}

func cloneData(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+2)
	for key, value := range in {
		out[key] = value
	}
	return out
}
