package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-resourceforms/pkg/schema"
)

// Kind names the HTML control a field renders as.
type Kind string

// Built-in widget kinds.
const (
	KindInput    Kind = "input"
	KindSelect   Kind = "select"
	KindCheckbox Kind = "checkbox"
	KindTextarea Kind = "textarea"
)

// Widget is the resolved control for one field.
type Widget struct {
	Kind      Kind
	InputType string
	Multiple  bool
}

// Matcher decides whether a widget kind should handle the supplied field.
type Matcher func(field schema.Field) bool

type rule struct {
	kind     Kind
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on explicit overrides or
// registered matchers. Higher priority wins; ties fall back to registration
// order. Fields nothing matches render as an input.
type Registry struct {
	mu        sync.RWMutex
	rules     []rule
	overrides map[string]Kind
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher for kind. Higher priority values take precedence.
func (r *Registry) Register(kind Kind, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	kind = Kind(strings.TrimSpace(string(kind)))
	if kind == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		kind:     kind,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Override forces the widget kind for every field called name.
func (r *Registry) Override(name string, kind Kind) {
	if r == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" || kind == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.overrides == nil {
		r.overrides = make(map[string]Kind)
	}
	r.overrides[name] = kind
}

// Resolve returns the widget for field.
func (r *Registry) Resolve(field schema.Field) Widget {
	widget := Widget{
		Kind:      r.resolveKind(field),
		InputType: InputType(field.Type),
		Multiple:  field.Type == schema.FieldTypeMultipleChoice,
	}
	if widget.Kind == KindCheckbox {
		widget.InputType = "checkbox"
	}
	if widget.Kind != KindInput && widget.Kind != KindCheckbox {
		widget.InputType = ""
	}
	return widget
}

func (r *Registry) resolveKind(field schema.Field) Kind {
	if r == nil {
		return KindInput
	}
	r.mu.RLock()
	if kind, ok := r.overrides[field.Name]; ok {
		r.mu.RUnlock()
		return kind
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.kind
		}
	}
	return KindInput
}

func (r *Registry) registerBuiltins() {
	r.Register(KindSelect, 90, func(field schema.Field) bool {
		return field.IsChoice()
	})

	r.Register(KindCheckbox, 80, func(field schema.Field) bool {
		return field.Type == schema.FieldTypeBoolean
	})

	r.Register(KindTextarea, 50, func(field schema.Field) bool {
		return field.Type == schema.FieldTypeNestedObject || field.Type == schema.FieldTypeList
	})
}
