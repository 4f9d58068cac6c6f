package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-resourceforms/pkg/render"
	"github.com/goliatone/go-resourceforms/pkg/resource"
	"github.com/goliatone/go-resourceforms/pkg/schema"
	"github.com/goliatone/go-resourceforms/pkg/widgets"
)

// Prompter asks for one record interactively, one prompt per writable schema
// field, and serializes the answers.
type Prompter struct {
	driver       PromptDriver
	outputFormat OutputFormat
	widgets      *widgets.Registry
	theme        Theme
}

// New constructs a Prompter with defaults (survey driver, JSON output).
func New(options ...Option) *Prompter {
	p := &Prompter{
		outputFormat: OutputFormatJSON,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	if p.driver == nil {
		p.driver = NewSurveyDriver(nil)
	}
	if p.widgets == nil {
		p.widgets = widgets.NewRegistry()
	}
	return p
}

// ContentType reports the serialization format used by Encode.
func (p *Prompter) ContentType() string {
	switch p.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Collect prompts for every writable field of s. defaults pre-fill the
// answers. Optional fields left empty are omitted from the record.
func (p *Prompter) Collect(ctx context.Context, title string, s schema.Schema, defaults resource.Record) (resource.Record, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fields := s.Writable()
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	if title != "" {
		if err := p.driver.Info(ctx, p.theme.InfoPrefix+title); err != nil {
			return nil, err
		}
	}

	record := resource.Record{}
	for _, field := range fields {
		value, ok, err := p.promptField(ctx, field, defaults)
		if err != nil {
			return nil, fmt.Errorf("tui: field %q: %w", field.Name, err)
		}
		if ok {
			record[field.Name] = value
		}
	}
	return record, nil
}

// Encode serializes record in the configured output format.
func (p *Prompter) Encode(record resource.Record) ([]byte, error) {
	values := map[string]any(record)
	switch p.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func (p *Prompter) promptField(ctx context.Context, field schema.Field, defaults resource.Record) (any, bool, error) {
	current, _ := defaults.Value(field.Name)
	widget := p.widgets.Resolve(field)

	switch widget.Kind {
	case widgets.KindSelect:
		if widget.Multiple {
			return p.promptMultiChoice(ctx, field, current)
		}
		return p.promptChoice(ctx, field, current)
	case widgets.KindCheckbox:
		def, _ := current.(bool)
		answer, err := p.driver.Confirm(ctx, ConfirmConfig{
			Message: displayLabel(field),
			Default: def,
			Help:    field.HelpText,
		})
		return answer, err == nil, err
	case widgets.KindTextarea:
		def, _ := render.FormatValue(current)
		answer, err := p.driver.TextArea(ctx, TextAreaConfig{
			Message: displayLabel(field),
			Default: def,
			Help:    field.HelpText,
		})
		if err != nil {
			return nil, false, err
		}
		return structured(answer), strings.TrimSpace(answer) != "" || field.Required, nil
	default:
		return p.promptInput(ctx, field, current)
	}
}

func (p *Prompter) promptInput(ctx context.Context, field schema.Field, current any) (any, bool, error) {
	def, _ := render.FormatValue(current)
	answer, err := p.driver.Input(ctx, InputConfig{
		Message:   displayLabel(field),
		Default:   def,
		Help:      field.HelpText,
		Validator: validator(field),
	})
	if err != nil {
		return nil, false, err
	}
	if answer == "" && !field.Required {
		return nil, false, nil
	}
	value, err := coerce(field.Type, answer)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (p *Prompter) promptChoice(ctx context.Context, field schema.Field, current any) (any, bool, error) {
	labels, values := choiceOptions(field.Choices)
	if len(labels) == 0 {
		return nil, false, nil
	}
	currentLabel, _ := render.FormatValue(current)
	def := 0
	for idx, value := range values {
		if formatted, _ := render.FormatValue(value); formatted == currentLabel {
			def = idx
			break
		}
	}
	idx, err := p.driver.Select(ctx, SelectConfig{
		Message:      displayLabel(field),
		Options:      labels,
		DefaultIndex: def,
		Help:         field.HelpText,
	})
	if err != nil {
		return nil, false, err
	}
	if idx < 0 || idx >= len(values) {
		return nil, false, fmt.Errorf("selection %d out of range", idx)
	}
	return values[idx], true, nil
}

func (p *Prompter) promptMultiChoice(ctx context.Context, field schema.Field, current any) (any, bool, error) {
	labels, values := choiceOptions(field.Choices)
	selected := map[string]struct{}{}
	if items, ok := current.([]any); ok {
		for _, item := range items {
			formatted, _ := render.FormatValue(item)
			selected[formatted] = struct{}{}
		}
	}
	var defaults []int
	for idx, value := range values {
		formatted, _ := render.FormatValue(value)
		if _, ok := selected[formatted]; ok {
			defaults = append(defaults, idx)
		}
	}

	indices, err := p.driver.MultiSelect(ctx, SelectConfig{
		Message:  displayLabel(field),
		Options:  labels,
		Defaults: defaults,
		Help:     field.HelpText,
	})
	if err != nil {
		return nil, false, err
	}
	out := make([]any, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(values) {
			out = append(out, values[idx])
		}
	}
	return out, len(out) > 0 || field.Required, nil
}

func displayLabel(field schema.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func choiceOptions(choices []schema.Choice) ([]string, []any) {
	labels := make([]string, 0, len(choices))
	values := make([]any, 0, len(choices))
	for _, choice := range choices {
		label := choice.DisplayName
		if label == "" {
			label, _ = render.FormatValue(choice.Value)
		}
		labels = append(labels, label)
		values = append(values, choice.Value)
	}
	return labels, values
}

func validator(field schema.Field) func(string) error {
	return func(raw string) error {
		if raw == "" {
			if field.Required {
				return errors.New("value is required")
			}
			return nil
		}
		if field.MaxLength != nil && len([]rune(raw)) > *field.MaxLength {
			return fmt.Errorf("at most %d characters", *field.MaxLength)
		}
		if field.MinLength != nil && len([]rune(raw)) < *field.MinLength {
			return fmt.Errorf("at least %d characters", *field.MinLength)
		}
		_, err := coerce(field.Type, raw)
		return err
	}
}

// coerce converts a typed answer into the JSON value the API expects.
// Decimals stay strings, matching how the API serializes them.
func coerce(t schema.FieldType, raw string) (any, error) {
	switch t {
	case schema.FieldTypeInteger:
		value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return value, nil
	case schema.FieldTypeFloat:
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return value, nil
	case schema.FieldTypeDecimal:
		if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
			return nil, fmt.Errorf("%q is not a decimal", raw)
		}
		return strings.TrimSpace(raw), nil
	default:
		return raw, nil
	}
}

// structured decodes JSON answers for list and nested object fields and keeps
// anything else as text.
func structured(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return decoded
		}
	}
	return raw
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flatten(next, val, out)
		}
	case []any:
		for _, val := range v {
			out.Add(prefix+"[]", fmt.Sprint(val))
		}
	case nil:
		out.Set(prefix, "")
	default:
		out.Set(prefix, fmt.Sprint(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		for _, key := range slices.Sorted(maps.Keys(v)) {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			writePretty(b, next, v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%v\n", prefix, v)
		}
	}
}
