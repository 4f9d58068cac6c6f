package render

import (
	"github.com/goliatone/go-resourceforms/pkg/loader"
	"github.com/goliatone/go-resourceforms/pkg/resource"
	"github.com/goliatone/go-resourceforms/pkg/widgets"
)

// PageKind distinguishes the pages a renderer can produce.
type PageKind string

const (
	PageForm   PageKind = "form"
	PageMatrix PageKind = "matrix"
)

// DefaultMountID is the id of the element pages render into.
const DefaultMountID = "form"

// Page is the renderer-neutral view of one page.
type Page struct {
	Kind    PageKind    `json:"kind"`
	Title   string      `json:"title"`
	MountID string      `json:"mount_id"`
	Groups  []GroupView `json:"groups,omitempty"`
	Matrix  *MatrixView `json:"matrix,omitempty"`
}

// GroupView is one resource section of the form page.
type GroupView struct {
	Type     resource.Type `json:"type"`
	Title    string        `json:"title"`
	AddLabel string        `json:"add_label"`
	Status   loader.Status `json:"status"`
	Error    string        `json:"error,omitempty"`
	Records  []RecordView  `json:"records"`
	Children []GroupView   `json:"children,omitempty"`
}

// RecordView is the form for one existing record.
type RecordView struct {
	Key    string      `json:"key"`
	Fields []FieldView `json:"fields"`
}

// FieldView is one rendered control plus its label.
type FieldView struct {
	Name      string       `json:"name"`
	Label     string       `json:"label"`
	Widget    widgets.Kind `json:"widget"`
	InputType string       `json:"input_type,omitempty"`
	Required  bool         `json:"required"`
	Value     string       `json:"value,omitempty"`
	HasValue  bool         `json:"has_value"`
	Checked   bool         `json:"checked,omitempty"`
	Multiple  bool         `json:"multiple,omitempty"`
	MaxLength int          `json:"max_length,omitempty"`
	Options   []OptionView `json:"options,omitempty"`
	HelpHTML  string       `json:"help_html,omitempty"`
	Focused   bool         `json:"focused"`
}

// OptionView is one <option> of a select.
type OptionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// MatrixView is the state the matrix page renders.
type MatrixView struct {
	AddLabel     string            `json:"add_label"`
	AddAction    string            `json:"add_action"`
	ElementCount int               `json:"element_count"`
	Error        string            `json:"error,omitempty"`
	Placeholders []PlaceholderView `json:"placeholders"`
}

// PlaceholderView is one empty matrix section.
type PlaceholderView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
