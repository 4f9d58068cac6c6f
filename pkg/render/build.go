package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-resourceforms/pkg/focus"
	"github.com/goliatone/go-resourceforms/pkg/loader"
	"github.com/goliatone/go-resourceforms/pkg/resource"
	"github.com/goliatone/go-resourceforms/pkg/schema"
	"github.com/goliatone/go-resourceforms/pkg/widgets"
)

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithWidgets swaps the widget registry used to pick controls.
func WithWidgets(registry *widgets.Registry) BuilderOption {
	return func(b *Builder) {
		if registry != nil {
			b.widgets = registry
		}
	}
}

// WithHelpPolicy swaps the sanitiser applied to help text.
func WithHelpPolicy(policy *bluemonday.Policy) BuilderOption {
	return func(b *Builder) {
		if policy != nil {
			b.help = policy
		}
	}
}

// Builder turns loaded resources into page views.
type Builder struct {
	widgets *widgets.Registry
	help    *bluemonday.Policy
}

// NewBuilder constructs a Builder with the default widget registry.
func NewBuilder(options ...BuilderOption) *Builder {
	b := &Builder{
		widgets: widgets.NewRegistry(),
		help:    defaultHelpPolicy(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

func defaultHelpPolicy() *bluemonday.Policy {
	policy := bluemonday.StrictPolicy()
	policy.AllowElements("em", "strong", "b", "i", "code", "br")
	policy.AllowStandardURLs()
	policy.AllowAttrs("href").OnElements("a")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// FormPage arranges snapshot into the groups of layout. A type missing from
// the snapshot renders as failed.
func (b *Builder) FormPage(title string, snapshot loader.Snapshot, layout resource.Layout) Page {
	return Page{
		Kind:    PageForm,
		Title:   title,
		MountID: DefaultMountID,
		Groups:  b.groups(snapshot, layout),
	}
}

func (b *Builder) groups(snapshot loader.Snapshot, groups []resource.Group) []GroupView {
	if len(groups) == 0 {
		return nil
	}
	out := make([]GroupView, 0, len(groups))
	for _, group := range groups {
		view := GroupView{
			Type:     group.Type,
			Title:    group.Type.Title(),
			AddLabel: "Add " + group.Type.Title(),
			Records:  []RecordView{},
			Children: b.groups(snapshot, group.Children),
		}

		result, ok := snapshot.Result(group.Type)
		switch {
		case !ok:
			view.Status = loader.StatusFailed
			view.Error = fmt.Sprintf("%s was not loaded", group.Type)
		case !result.Ready():
			view.Status = loader.StatusFailed
			view.Error = result.Err().Error()
		default:
			view.Status = loader.StatusReady
			view.Records = b.Records(result.Schema, result.Records)
		}
		out = append(out, view)
	}
	return out
}

// Records builds one form per record.
func (b *Builder) Records(s schema.Schema, records []resource.Record) []RecordView {
	out := make([]RecordView, 0, len(records))
	for idx, record := range records {
		key := record.ID()
		if key == "" {
			key = "new-" + strconv.Itoa(idx)
		}
		out = append(out, RecordView{
			Key:    key,
			Fields: b.Fields(s, record),
		})
	}
	return out
}

// Fields builds one field view per writable schema field, populated from
// record. A nil record yields empty controls.
func (b *Builder) Fields(s schema.Schema, record resource.Record) []FieldView {
	writable := s.Writable()
	out := make([]FieldView, 0, len(writable))
	for _, field := range writable {
		out = append(out, b.Field(field, record))
	}
	return out
}

// Field builds the view for a single schema field.
func (b *Builder) Field(field schema.Field, record resource.Record) FieldView {
	widget := b.widgets.Resolve(field)
	raw, _ := record.Value(field.Name)
	value, hasValue := FormatValue(raw)

	view := FieldView{
		Name:      field.Name,
		Label:     field.Label,
		Widget:    widget.Kind,
		InputType: widget.InputType,
		Required:  field.Required,
		Value:     value,
		HasValue:  hasValue,
		Multiple:  widget.Multiple,
		Focused:   focus.Initial(value),
	}
	if field.MaxLength != nil && *field.MaxLength > 0 {
		view.MaxLength = *field.MaxLength
	}
	if help := strings.TrimSpace(field.HelpText); help != "" {
		view.HelpHTML = strings.TrimSpace(b.help.Sanitize(help))
	}

	switch widget.Kind {
	case widgets.KindCheckbox:
		view.Checked = raw == true
		view.Value = "true"
		view.HasValue = true
		view.Focused = focus.Initial(view.Value)
	case widgets.KindSelect:
		view.Options = options(field.Choices, raw, widget.Multiple)
		view.Focused = focus.Initial(selectedValue(view.Options))
	}
	return view
}

// selectedValue is what a browser reports as the select's value: the first
// selected option, or the first option when none is marked.
func selectedValue(opts []OptionView) string {
	for _, opt := range opts {
		if opt.Selected {
			return opt.Value
		}
	}
	if len(opts) > 0 {
		return opts[0].Value
	}
	return ""
}

func options(choices []schema.Choice, current any, multiple bool) []OptionView {
	selected := make(map[string]struct{})
	hasCurrent := false
	if multiple {
		if values, ok := current.([]any); ok {
			for _, value := range values {
				formatted, _ := FormatValue(value)
				selected[formatted] = struct{}{}
			}
			hasCurrent = len(values) > 0
		}
	} else {
		formatted, ok := FormatValue(current)
		selected[formatted] = struct{}{}
		hasCurrent = ok
	}

	out := make([]OptionView, 0, len(choices))
	for _, choice := range choices {
		value, ok := FormatValue(choice.Value)
		_, match := selected[value]
		out = append(out, OptionView{
			Value:    value,
			Label:    choice.DisplayName,
			Selected: match && ok == hasCurrent,
		})
	}
	return out
}

// FormatValue renders a decoded JSON value for a value attribute. The bool
// reports whether a value was present at all.
func FormatValue(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case json.Number:
		return v.String(), true
	case map[string]any, []any:
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v), true
		}
		return string(payload), true
	default:
		return fmt.Sprint(v), true
	}
}
