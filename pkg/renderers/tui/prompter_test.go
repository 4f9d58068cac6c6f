package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-resourceforms/pkg/resource"
	"github.com/goliatone/go-resourceforms/pkg/schema"
	"github.com/goliatone/go-resourceforms/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	inputConfigs []InputConfig
	selectConfig []SelectConfig
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.inputConfigs = append(s.inputConfigs, cfg)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.selectConfig = append(s.selectConfig, cfg)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestCollectBaseElement(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Panel", "4.5", "kW"},
		selectIdx: []int{1},
	}
	prompter := New(WithPromptDriver(driver), WithTheme(Theme{InfoPrefix: "> "}))

	record, err := prompter.Collect(context.Background(), "New base element", testsupport.MustLoadSchema(t, resource.BaseElement), nil)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	want := resource.Record{"label": "Panel", "value": 4.5, "unit": "kW", "unit_separator": "/"}
	if diff := cmp.Diff(want, record); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"> New base element"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Null", "By"}, driver.selectConfig[0].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectUsesDefaults(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Battery", "12.5", "kWh"},
		selectIdx: []int{1},
	}
	prompter := New(WithPromptDriver(driver))
	defaults := resource.Record{"label": "Battery", "value": 12.5, "unit": "kWh", "unit_separator": "/"}

	if _, err := prompter.Collect(context.Background(), "", testsupport.MustLoadSchema(t, resource.BaseElement), defaults); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if driver.inputConfigs[0].Default != "Battery" || driver.inputConfigs[1].Default != "12.5" {
		t.Fatalf("expected defaults from record, got %+v", driver.inputConfigs)
	}
	if driver.selectConfig[0].DefaultIndex != 1 {
		t.Fatalf("expected select default index 1, got %d", driver.selectConfig[0].DefaultIndex)
	}
	if len(driver.infoMessages) != 0 {
		t.Fatalf("empty title should not print")
	}
}

func TestCollectOptionalEmptyOmitted(t *testing.T) {
	s := schema.New(
		schema.Field{Name: "name", Descriptor: schema.Descriptor{Type: schema.FieldTypeString, Required: true}},
		schema.Field{Name: "note", Descriptor: schema.Descriptor{Type: schema.FieldTypeString}},
		schema.Field{Name: "count", Descriptor: schema.Descriptor{Type: schema.FieldTypeInteger}},
		schema.Field{Name: "active", Descriptor: schema.Descriptor{Type: schema.FieldTypeBoolean}},
		schema.Field{Name: "meta", Descriptor: schema.Descriptor{Type: schema.FieldTypeNestedObject}},
		schema.Field{Name: "tags", Descriptor: schema.Descriptor{Type: schema.FieldTypeMultipleChoice, Choices: []schema.Choice{
			{Value: "a", DisplayName: "A"},
			{Value: "b", DisplayName: "B"},
		}}},
	)
	driver := &stubDriver{
		inputs:    []string{"x", "", "7"},
		confirm:   []bool{true},
		textAreas: []string{`{"k": 1}`},
		multiIdx:  [][]int{{1}},
	}

	record, err := New(WithPromptDriver(driver)).Collect(context.Background(), "", s, nil)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := resource.Record{
		"name":   "x",
		"count":  int64(7),
		"active": true,
		"meta":   map[string]any{"k": float64(1)},
		"tags":   []any{"b"},
	}
	if diff := cmp.Diff(want, record); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectNoWritableFields(t *testing.T) {
	s := schema.New(schema.Field{Name: "id", Descriptor: schema.Descriptor{Type: schema.FieldTypeInteger, ReadOnly: true}})
	if _, err := New(WithPromptDriver(&stubDriver{})).Collect(context.Background(), "", s, nil); !errors.Is(err, ErrNoFields) {
		t.Fatalf("expected ErrNoFields, got %v", err)
	}
}

func TestCollectDriverError(t *testing.T) {
	_, err := New(WithPromptDriver(&stubDriver{})).Collect(context.Background(), "", testsupport.MustLoadSchema(t, resource.BaseElement), nil)
	if err == nil || !strings.Contains(err.Error(), `field "label"`) {
		t.Fatalf("expected driver error for label, got %v", err)
	}
}

func TestValidator(t *testing.T) {
	maxLen := 3
	field := schema.Field{Name: "v", Descriptor: schema.Descriptor{Type: schema.FieldTypeFloat, Required: true}}
	check := validator(field)
	if err := check(""); err == nil {
		t.Fatalf("expected required error")
	}
	if err := check("abc"); err == nil {
		t.Fatalf("expected number error")
	}
	if err := check("1.5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := validator(schema.Field{Name: "t", Descriptor: schema.Descriptor{Type: schema.FieldTypeString, MaxLength: &maxLen}})
	if err := text("abcd"); err == nil {
		t.Fatalf("expected max length error")
	}
	if err := text(""); err != nil {
		t.Fatalf("optional empty value should pass: %v", err)
	}
}

func TestEncodeFormats(t *testing.T) {
	record := resource.Record{"label": "Panel", "value": 4.5}

	out, err := New(WithPromptDriver(&stubDriver{})).Encode(record)
	if err != nil {
		t.Fatalf("encode json: %v", err)
	}
	if string(out) != `{"label":"Panel","value":4.5}` {
		t.Fatalf("unexpected json %s", out)
	}

	pretty := New(WithPromptDriver(&stubDriver{}), WithOutputFormat(OutputFormatPrettyText))
	out, _ = pretty.Encode(record)
	if string(out) != "label=Panel\nvalue=4.5\n" {
		t.Fatalf("unexpected pretty output %q", out)
	}
	if pretty.ContentType() != "text/plain" {
		t.Fatalf("unexpected content type %s", pretty.ContentType())
	}

	form := New(WithPromptDriver(&stubDriver{}), WithOutputFormat(OutputFormatFormURLEncoded))
	out, _ = form.Encode(record)
	if string(out) != "label=Panel&value=4.5" {
		t.Fatalf("unexpected form output %q", out)
	}
}
