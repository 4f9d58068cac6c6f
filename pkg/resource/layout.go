package resource

import (
	"fmt"
	"strings"
)

// Group is one visual section of the form page. Children render nested inside
// the parent's list.
type Group struct {
	Type     Type    `yaml:"type" json:"type"`
	Children []Group `yaml:"children,omitempty" json:"children,omitempty"`
}

// Layout is the ordered list of top-level groups.
type Layout []Group

// DefaultLayout nests four resource types into three groups, with
// specification rendered inside composition. base_element_value is loaded
// but has no section of its own.
func DefaultLayout() Layout {
	return Layout{
		{Type: BaseElement},
		{Type: PossibleSpecification},
		{Type: Composition, Children: []Group{{Type: Specification}}},
	}
}

// Types returns every type referenced by the layout in depth-first order.
func (l Layout) Types() []Type {
	var out []Type
	var walk func(groups []Group)
	walk = func(groups []Group) {
		for _, group := range groups {
			out = append(out, group.Type)
			walk(group.Children)
		}
	}
	walk(l)
	return out
}

// Validate checks that every group names a known type and that no type is
// rendered twice.
func (l Layout) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("resource: layout is empty")
	}
	seen := make(map[Type]struct{})
	for _, t := range l.Types() {
		if !t.Valid() {
			return fmt.Errorf("%w: %q in layout", ErrUnknownType, t)
		}
		if _, dup := seen[t]; dup {
			return fmt.Errorf("resource: type %q appears more than once in layout", t)
		}
		seen[t] = struct{}{}
	}
	return nil
}

// String renders the layout as a compact tree, e.g. "base_element, composition[specification]".
func (l Layout) String() string {
	parts := make([]string, 0, len(l))
	for _, group := range l {
		part := string(group.Type)
		if len(group.Children) > 0 {
			part += "[" + Layout(group.Children).String() + "]"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}
