package widgets

import "github.com/goliatone/go-resourceforms/pkg/schema"

// FallbackInputType is used for any field type without an explicit entry.
const FallbackInputType = "text"

var inputTypes = map[schema.FieldType]string{
	schema.FieldTypeField:       "text",
	schema.FieldTypeString:      "text",
	schema.FieldTypeFloat:       "number",
	schema.FieldTypeInteger:     "number",
	schema.FieldTypeDecimal:     "number",
	schema.FieldTypeBoolean:     "checkbox",
	schema.FieldTypeEmail:       "email",
	schema.FieldTypeURL:         "url",
	schema.FieldTypeSlug:        "text",
	schema.FieldTypeRegex:       "text",
	schema.FieldTypeUUID:        "text",
	schema.FieldTypeDate:        "date",
	schema.FieldTypeDateTime:    "datetime-local",
	schema.FieldTypeTime:        "time",
	schema.FieldTypeFileUpload:  "file",
	schema.FieldTypeImageUpload: "file",
}

// InputType maps a field type onto an <input type>. Unknown types fall back
// to FallbackInputType.
func InputType(t schema.FieldType) string {
	if value, ok := inputTypes[t]; ok {
		return value
	}
	return FallbackInputType
}
