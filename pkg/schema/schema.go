package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FieldType mirrors the type names reported by the API metadata endpoint.
type FieldType string

const (
	FieldTypeField          FieldType = "field"
	FieldTypeString         FieldType = "string"
	FieldTypeFloat          FieldType = "float"
	FieldTypeInteger        FieldType = "integer"
	FieldTypeDecimal        FieldType = "decimal"
	FieldTypeBoolean        FieldType = "boolean"
	FieldTypeEmail          FieldType = "email"
	FieldTypeURL            FieldType = "url"
	FieldTypeSlug           FieldType = "slug"
	FieldTypeRegex          FieldType = "regex"
	FieldTypeUUID           FieldType = "uuid"
	FieldTypeDate           FieldType = "date"
	FieldTypeDateTime       FieldType = "datetime"
	FieldTypeTime           FieldType = "time"
	FieldTypeChoice         FieldType = "choice"
	FieldTypeMultipleChoice FieldType = "multiple choice"
	FieldTypeFileUpload     FieldType = "file upload"
	FieldTypeImageUpload    FieldType = "image upload"
	FieldTypeList           FieldType = "list"
	FieldTypeNestedObject   FieldType = "nested object"
)

// ErrNoPostAction is returned when the metadata payload carries no POST
// action, which happens when the caller lacks create permission.
var ErrNoPostAction = errors.New("schema: metadata has no POST action")

// Choice is one selectable option of a choice field.
type Choice struct {
	Value       any    `json:"value"`
	DisplayName string `json:"display_name"`
}

// Descriptor describes how a single field renders.
type Descriptor struct {
	Type      FieldType `json:"type"`
	Label     string    `json:"label,omitempty"`
	Required  bool      `json:"required"`
	ReadOnly  bool      `json:"read_only"`
	HelpText  string    `json:"help_text,omitempty"`
	MaxLength *int      `json:"max_length,omitempty"`
	MinLength *int      `json:"min_length,omitempty"`
	MinValue  any       `json:"min_value,omitempty"`
	MaxValue  any       `json:"max_value,omitempty"`
	Choices   []Choice  `json:"choices,omitempty"`
}

// IsChoice reports whether the field renders as a select.
func (d Descriptor) IsChoice() bool {
	return d.Type == FieldTypeChoice || d.Type == FieldTypeMultipleChoice
}

// Field pairs a field name with its descriptor.
type Field struct {
	Name       string `json:"name"`
	Descriptor `json:"descriptor"`
}

// Schema is the ordered set of fields describing one resource. Order follows
// the key order of the metadata payload.
type Schema struct {
	fields []Field
	index  map[string]int
}

// New builds a Schema from fields, keeping the last descriptor when a name
// repeats.
func New(fields ...Field) Schema {
	var s Schema
	for _, field := range fields {
		s.set(field)
	}
	return s
}

func (s *Schema) set(field Field) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if idx, ok := s.index[field.Name]; ok {
		s.fields[idx] = field
		return
	}
	s.index[field.Name] = len(s.fields)
	s.fields = append(s.fields, field)
}

// Fields returns a copy of every field in declaration order.
func (s Schema) Fields() []Field {
	if len(s.fields) == 0 {
		return nil
	}
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Writable returns the fields that are not read-only.
func (s Schema) Writable() []Field {
	out := make([]Field, 0, len(s.fields))
	for _, field := range s.fields {
		if field.ReadOnly {
			continue
		}
		out = append(out, field)
	}
	return out
}

// Lookup returns the descriptor registered for name.
func (s Schema) Lookup(name string) (Descriptor, bool) {
	idx, ok := s.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return s.fields[idx].Descriptor, true
}

// Len returns the number of fields.
func (s Schema) Len() int {
	return len(s.fields)
}

// UnmarshalJSON decodes a field-name to descriptor object while keeping the
// key order, which encoding/json maps would discard.
func (s *Schema) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("schema: read object start: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("schema: expected object, got %v", tok)
	}

	*s = Schema{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("schema: read field name: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("schema: expected field name, got %v", tok)
		}
		var desc Descriptor
		if err := dec.Decode(&desc); err != nil {
			return fmt.Errorf("schema: decode field %q: %w", name, err)
		}
		if strings.TrimSpace(desc.Label) == "" {
			desc.Label = Humanize(name)
		}
		s.set(Field{Name: name, Descriptor: desc})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("schema: read object end: %w", err)
	}
	return nil
}

// MarshalJSON writes the schema back as an ordered object.
func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, field := range s.fields {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Descriptor)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Metadata is the body of an OPTIONS response.
type Metadata struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Actions     map[string]Schema `json:"actions"`
}

// ParseMetadata decodes an OPTIONS response body.
func ParseMetadata(data []byte) (Metadata, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Metadata{}, errors.New("schema: metadata payload is empty")
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("schema: decode metadata: %w", err)
	}
	return meta, nil
}

// Post returns the schema advertised for creating records.
func (m Metadata) Post() (Schema, error) {
	post, ok := m.Actions["POST"]
	if !ok {
		return Schema{}, ErrNoPostAction
	}
	return post, nil
}

// Humanize turns a snake_case field name into a label.
func Humanize(name string) string {
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(name))
	if len(words) == 0 {
		return ""
	}
	label := strings.Join(words, " ")
	first, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(first)) + label[size:]
}
