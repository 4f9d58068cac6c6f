package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-resourceforms/pkg/focus"
	"github.com/goliatone/go-resourceforms/pkg/render"
	"github.com/goliatone/go-resourceforms/pkg/render/template"
	"github.com/goliatone/go-resourceforms/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-resourceforms/pkg/widgets"
)

// componentPartialPrefix namespaces theme partials that replace a control.
const componentPartialPrefix = "forms."

type componentRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	partials  map[string]string
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, partials map[string]string) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		templates: templates,
		registry:  registry,
		partials:  partials,
	}
}

func (r *componentRenderer) render(field render.FieldView) (string, error) {
	kind := field.Widget
	if kind == "" {
		kind = widgets.KindInput
	}

	renderControl, ok := r.registry.Lookup(kind)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", kind, field.Name)
	}

	data := components.ComponentData{
		Template: r.templates,
		Partial:  r.partials[componentPartialPrefix+string(kind)],
	}

	var control bytes.Buffer
	if err := renderControl(&control, field, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", kind, field.Name, err)
	}

	return buildFieldMarkup(field, string(kind), control.String()), nil
}

func (r *componentRenderer) renderRecord(record render.RecordView) (string, error) {
	var b strings.Builder
	for _, field := range record.Fields {
		markup, err := r.render(field)
		if err != nil {
			return "", err
		}
		b.WriteString(markup)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func buildFieldMarkup(field render.FieldView, componentName, control string) string {
	var b strings.Builder
	b.WriteString(`<div class="`)
	b.WriteString(focus.WrapperClass)
	b.WriteString(`" `)
	b.WriteString(focus.Attribute)
	b.WriteString(`="`)
	b.WriteString(focus.AttributeValue(field.Focused))
	b.WriteString(`" data-component="`)
	b.WriteString(html.EscapeString(componentName))
	b.WriteString("\">\n")

	b.WriteString("    <label>")
	b.WriteString(html.EscapeString(field.Label))
	b.WriteString("</label>\n")

	b.WriteString("    ")
	b.WriteString(control)
	b.WriteString("\n")

	if field.HelpHTML != "" {
		b.WriteString(`    <small class="help-text">`)
		b.WriteString(field.HelpHTML)
		b.WriteString("</small>\n")
	}

	b.WriteString("</div>")
	return b.String()
}
