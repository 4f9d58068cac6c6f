package resource

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Type identifies one of the CRUD resources exposed by the API. The tag is used
// both as the API path segment and as the lookup key for schema and records.
type Type string

const (
	BaseElement           Type = "base_element"
	BaseElementValue      Type = "base_element_value"
	Specification         Type = "specification"
	PossibleSpecification Type = "possible_specification"
	Composition           Type = "composition"
)

// ErrUnknownType is returned when a tag does not name a known resource.
var ErrUnknownType = errors.New("resource: unknown type")

// All returns every resource type in load order.
func All() []Type {
	return []Type{
		BaseElement,
		BaseElementValue,
		Specification,
		PossibleSpecification,
		Composition,
	}
}

// Parse resolves a tag into a Type.
func Parse(raw string) (Type, error) {
	candidate := Type(strings.ToLower(strings.TrimSpace(raw)))
	if candidate.Valid() {
		return candidate, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, raw)
}

// Valid reports whether t is one of the known resource types.
func (t Type) Valid() bool {
	switch t {
	case BaseElement, BaseElementValue, Specification, PossibleSpecification, Composition:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	return string(t)
}

// Title is the human label used on buttons, e.g. "base element".
func (t Type) Title() string {
	return strings.ReplaceAll(string(t), "_", " ")
}

// Path joins the API base path with the resource tag.
func (t Type) Path(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	return base + "/" + string(t)
}

// Record is a single row returned by a list endpoint.
type Record map[string]any

// ID returns the record primary key rendered as a string, or "" when absent.
func (r Record) ID() string {
	value, ok := r["id"]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

// Value returns the value stored under field.
func (r Record) Value(field string) (any, bool) {
	if r == nil {
		return nil, false
	}
	value, ok := r[field]
	return value, ok
}
