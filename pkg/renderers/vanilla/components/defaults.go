package components

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/goliatone/go-resourceforms/pkg/render"
	"github.com/goliatone/go-resourceforms/pkg/widgets"
)

// NewDefaultRegistry constructs a registry pre-populated with the built-in
// controls used by the vanilla renderer.
func NewDefaultRegistry() *Registry {
	return New().
		MustWith(widgets.KindInput, partialOr(inputRenderer)).
		MustWith(widgets.KindSelect, partialOr(selectRenderer)).
		MustWith(widgets.KindCheckbox, partialOr(inputRenderer)).
		MustWith(widgets.KindTextarea, partialOr(textareaRenderer))
}

// partialOr renders data.Partial when one is configured and falls back to the
// built-in markup otherwise.
func partialOr(builtin Renderer) Renderer {
	return func(buf *bytes.Buffer, field render.FieldView, data ComponentData) error {
		partial := strings.TrimSpace(data.Partial)
		if partial == "" {
			return builtin(buf, field, data)
		}
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", partial)
		}
		rendered, err := data.Template.RenderTemplate(partial, map[string]any{"field": field})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", partial, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

func inputRenderer(buf *bytes.Buffer, field render.FieldView, _ ComponentData) error {
	buf.WriteString(`<input name="`)
	buf.WriteString(html.EscapeString(field.Name))
	buf.WriteString(`"`)
	if field.InputType != "" {
		buf.WriteString(` type="`)
		buf.WriteString(html.EscapeString(field.InputType))
		buf.WriteString(`"`)
	}
	if field.Required {
		buf.WriteString(` required`)
	}
	if field.HasValue {
		buf.WriteString(` value="`)
		buf.WriteString(html.EscapeString(field.Value))
		buf.WriteString(`"`)
	}
	if field.Checked {
		buf.WriteString(` checked`)
	}
	if field.MaxLength > 0 {
		buf.WriteString(` maxlength="`)
		buf.WriteString(strconv.Itoa(field.MaxLength))
		buf.WriteString(`"`)
	}
	buf.WriteString(`>`)
	return nil
}

func selectRenderer(buf *bytes.Buffer, field render.FieldView, _ ComponentData) error {
	buf.WriteString(`<select name="`)
	buf.WriteString(html.EscapeString(field.Name))
	buf.WriteString(`"`)
	if field.Multiple {
		buf.WriteString(` multiple`)
	}
	if field.Required {
		buf.WriteString(` required`)
	}
	buf.WriteString(">\n")
	for _, option := range field.Options {
		buf.WriteString(`    <option value="`)
		buf.WriteString(html.EscapeString(option.Value))
		buf.WriteString(`"`)
		if option.Selected {
			buf.WriteString(` selected`)
		}
		buf.WriteString(`>`)
		buf.WriteString(html.EscapeString(option.Label))
		buf.WriteString("</option>\n")
	}
	buf.WriteString(`</select>`)
	return nil
}

func textareaRenderer(buf *bytes.Buffer, field render.FieldView, _ ComponentData) error {
	buf.WriteString(`<textarea name="`)
	buf.WriteString(html.EscapeString(field.Name))
	buf.WriteString(`"`)
	if field.Required {
		buf.WriteString(` required`)
	}
	if field.MaxLength > 0 {
		buf.WriteString(` maxlength="`)
		buf.WriteString(strconv.Itoa(field.MaxLength))
		buf.WriteString(`"`)
	}
	buf.WriteString(`>`)
	buf.WriteString(html.EscapeString(field.Value))
	buf.WriteString(`</textarea>`)
	return nil
}
