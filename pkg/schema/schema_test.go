package schema_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-resourceforms/pkg/resource"
	"github.com/goliatone/go-resourceforms/pkg/schema"
	"github.com/goliatone/go-resourceforms/pkg/testsupport"
)

func fieldNames(fields []schema.Field) []string {
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		names = append(names, field.Name)
	}
	return names
}

func TestParseMetadataKeepsFieldOrder(t *testing.T) {
	meta, err := schema.ParseMetadata(testsupport.OptionsFixture(t, resource.BaseElement))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta.Name != "Base Element List" {
		t.Fatalf("unexpected metadata name %q", meta.Name)
	}

	post, err := meta.Post()
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	want := []string{"id", "label", "value", "unit", "unit_separator"}
	if diff := cmp.Diff(want, fieldNames(post.Fields())); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"label", "value", "unit", "unit_separator"}, fieldNames(post.Writable())); diff != "" {
		t.Fatalf("writable fields mismatch (-want +got):\n%s", diff)
	}
}

func TestDescriptorDecoding(t *testing.T) {
	post := testsupport.MustLoadSchema(t, resource.BaseElement)

	label, ok := post.Lookup("label")
	if !ok {
		t.Fatalf("expected label field")
	}
	if label.Type != schema.FieldTypeString || !label.Required || label.ReadOnly {
		t.Fatalf("unexpected label descriptor %+v", label)
	}
	if label.MaxLength == nil || *label.MaxLength != 255 {
		t.Fatalf("expected max_length 255, got %v", label.MaxLength)
	}

	sep, _ := post.Lookup("unit_separator")
	if !sep.IsChoice() {
		t.Fatalf("expected unit_separator to be a choice field")
	}
	want := []schema.Choice{
		{Value: nil, DisplayName: "Null"},
		{Value: "/", DisplayName: "By"},
	}
	if diff := cmp.Diff(want, sep.Choices); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}
}

func TestMetadataWithoutPostAction(t *testing.T) {
	meta, err := schema.ParseMetadata([]byte(`{"name": "Read only", "actions": {"PUT": {}}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := meta.Post(); !errors.Is(err, schema.ErrNoPostAction) {
		t.Fatalf("expected ErrNoPostAction, got %v", err)
	}

	meta, err = schema.ParseMetadata([]byte(`{"name": "No actions"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := meta.Post(); !errors.Is(err, schema.ErrNoPostAction) {
		t.Fatalf("expected ErrNoPostAction, got %v", err)
	}
}

func TestParseMetadataRejectsBadPayloads(t *testing.T) {
	for _, payload := range []string{"", "   ", `{"actions": {"POST": []}}`, `not json`} {
		if _, err := schema.ParseMetadata([]byte(payload)); err == nil {
			t.Fatalf("expected error for payload %q", payload)
		}
	}
}

func TestMissingLabelIsHumanized(t *testing.T) {
	var s schema.Schema
	if err := json.Unmarshal([]byte(`{"unit_separator": {"type": "string"}}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	desc, _ := s.Lookup("unit_separator")
	if desc.Label != "Unit separator" {
		t.Fatalf("expected humanized label, got %q", desc.Label)
	}
}

func TestHumanize(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"unit_separator", "Unit separator"},
		{"max-length", "Max length"},
		{"  ", ""},
		{"élan_vital", "Élan vital"},
		{"øre", "Øre"},
		{"日本_name", "日本 name"},
	}
	for _, tc := range cases {
		if got := schema.Humanize(tc.name); got != tc.want {
			t.Fatalf("Humanize(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSchemaMarshalRoundTripKeepsOrder(t *testing.T) {
	original := schema.New(
		schema.Field{Name: "zeta", Descriptor: schema.Descriptor{Type: schema.FieldTypeString, Label: "Zeta"}},
		schema.Field{Name: "alpha", Descriptor: schema.Descriptor{Type: schema.FieldTypeFloat, Label: "Alpha"}},
	)
	payload, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded schema.Schema
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha"}, fieldNames(decoded.Fields())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestNewKeepsLastDuplicate(t *testing.T) {
	s := schema.New(
		schema.Field{Name: "a", Descriptor: schema.Descriptor{Label: "first"}},
		schema.Field{Name: "a", Descriptor: schema.Descriptor{Label: "second"}},
	)
	if s.Len() != 1 {
		t.Fatalf("expected one field, got %d", s.Len())
	}
	desc, _ := s.Lookup("a")
	if desc.Label != "second" {
		t.Fatalf("expected last descriptor to win, got %q", desc.Label)
	}
}
