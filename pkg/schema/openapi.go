package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// FromOpenAPI extracts the create schema for path from an OpenAPI 3 document.
// Callers reading several paths from one document should use ParseOpenAPI
// once and FromOpenAPIDocument per path.
func FromOpenAPI(ctx context.Context, raw []byte, path string) (Schema, error) {
	doc, err := ParseOpenAPI(ctx, raw)
	if err != nil {
		return Schema{}, err
	}
	return FromOpenAPIDocument(doc, path)
}

// ParseOpenAPI loads an OpenAPI 3 document.
func ParseOpenAPI(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("schema: openapi document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: load openapi document: %w", err)
	}
	if doc.Paths == nil {
		return nil, errors.New("schema: openapi document has no paths")
	}
	return doc, nil
}

// FromOpenAPIDocument maps the POST request body of path (or path with a
// trailing slash) onto the same descriptors the metadata endpoint reports.
// Property order is not preserved by the document model, so fields are sorted
// by name with "id" first.
func FromOpenAPIDocument(doc *openapi3.T, path string) (Schema, error) {
	if doc == nil || doc.Paths == nil {
		return Schema{}, errors.New("schema: openapi document has no paths")
	}

	item := doc.Paths.Value(path)
	if item == nil && !strings.HasSuffix(path, "/") {
		item = doc.Paths.Value(path + "/")
	}
	if item == nil {
		return Schema{}, fmt.Errorf("schema: path %q not found in openapi document", path)
	}
	if item.Post == nil {
		return Schema{}, fmt.Errorf("schema: path %q: %w", path, ErrNoPostAction)
	}

	body := item.Post.RequestBody
	if body == nil || body.Value == nil {
		return Schema{}, fmt.Errorf("schema: path %q has no request body", path)
	}
	media := body.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return Schema{}, fmt.Errorf("schema: path %q has no application/json schema", path)
	}

	return fromObjectSchema(media.Schema.Value), nil
}

func fromObjectSchema(object *openapi3.Schema) Schema {
	required := make(map[string]struct{}, len(object.Required))
	for _, name := range object.Required {
		required[name] = struct{}{}
	}

	names := make([]string, 0, len(object.Properties))
	for name := range object.Properties {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == "id" || names[j] == "id" {
			return names[i] == "id"
		}
		return names[i] < names[j]
	})

	var s Schema
	for _, name := range names {
		ref := object.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := ref.Value
		_, isRequired := required[name]

		desc := Descriptor{
			Type:     openAPIFieldType(prop),
			Label:    strings.TrimSpace(prop.Title),
			Required: isRequired,
			ReadOnly: prop.ReadOnly,
			HelpText: strings.TrimSpace(prop.Description),
		}
		if desc.Label == "" {
			desc.Label = Humanize(name)
		}
		if prop.MaxLength != nil {
			limit := int(*prop.MaxLength)
			desc.MaxLength = &limit
		}
		if prop.MinLength > 0 {
			limit := int(prop.MinLength)
			desc.MinLength = &limit
		}
		if prop.Min != nil {
			desc.MinValue = *prop.Min
		}
		if prop.Max != nil {
			desc.MaxValue = *prop.Max
		}
		for _, value := range prop.Enum {
			desc.Choices = append(desc.Choices, Choice{Value: value, DisplayName: fmt.Sprint(value)})
		}
		s.set(Field{Name: name, Descriptor: desc})
	}
	return s
}

func openAPIFieldType(prop *openapi3.Schema) FieldType {
	if len(prop.Enum) > 0 {
		return FieldTypeChoice
	}
	format := strings.ToLower(strings.TrimSpace(prop.Format))
	switch {
	case prop.Type.Is(openapi3.TypeBoolean):
		return FieldTypeBoolean
	case prop.Type.Is(openapi3.TypeInteger):
		return FieldTypeInteger
	case prop.Type.Is(openapi3.TypeNumber):
		return FieldTypeFloat
	case prop.Type.Is(openapi3.TypeArray):
		if prop.Items != nil && prop.Items.Value != nil && len(prop.Items.Value.Enum) > 0 {
			return FieldTypeMultipleChoice
		}
		return FieldTypeList
	case prop.Type.Is(openapi3.TypeObject):
		return FieldTypeNestedObject
	case prop.Type.Is(openapi3.TypeString):
		switch format {
		case "date":
			return FieldTypeDate
		case "date-time":
			return FieldTypeDateTime
		case "time":
			return FieldTypeTime
		case "email":
			return FieldTypeEmail
		case "uri", "url":
			return FieldTypeURL
		case "uuid":
			return FieldTypeUUID
		case "decimal":
			return FieldTypeDecimal
		case "binary":
			return FieldTypeFileUpload
		}
		return FieldTypeString
	}
	return FieldTypeField
}
