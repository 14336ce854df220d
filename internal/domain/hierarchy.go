package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Type is a concept or relation type in a hierarchy.
type Type struct {
	label   string
	supers  []*Type
	subs    []*Type
	valence int
}

// Label returns the type label
func (t *Type) Label() string { return t.label }

// Supertypes returns the immediate supertypes
func (t *Type) Supertypes() []*Type { return append([]*Type(nil), t.supers...) }

// Subtypes returns the immediate subtypes
func (t *Type) Subtypes() []*Type { return append([]*Type(nil), t.subs...) }

// Valence returns the declared argument count, or 0 when undeclared
func (t *Type) Valence() int { return t.valence }

// TypeHierarchy is an append-only DAG of types keyed by label.
type TypeHierarchy struct {
	name  string
	types map[string]*Type
	order []string
}

// NewTypeHierarchy creates an empty hierarchy
func NewTypeHierarchy(name string) *TypeHierarchy {
	return &TypeHierarchy{
		name:  name,
		types: make(map[string]*Type),
	}
}

// Name returns the hierarchy name ("concept" or "relation" by convention)
func (h *TypeHierarchy) Name() string { return h.name }

// AddType registers label if it is new and returns the type. Idempotent.
func (h *TypeHierarchy) AddType(label string) *Type {
	if t, ok := h.types[label]; ok {
		return t
	}
	t := &Type{label: label}
	h.types[label] = t
	h.order = append(h.order, label)
	return t
}

// Copy returns an independent hierarchy with the same types, links and
// valences. Types added to the copy do not reach h.
func (h *TypeHierarchy) Copy() *TypeHierarchy {
	c := NewTypeHierarchy(h.name)
	for _, label := range h.order {
		c.AddType(label).valence = h.types[label].valence
	}
	for _, label := range h.order {
		t, ct := h.types[label], c.types[label]
		for _, s := range t.supers {
			ct.supers = append(ct.supers, c.types[s.label])
		}
		for _, s := range t.subs {
			ct.subs = append(ct.subs, c.types[s.label])
		}
	}
	return c
}

// Lookup returns the type registered under label
func (h *TypeHierarchy) Lookup(label string) (*Type, bool) {
	t, ok := h.types[label]
	return t, ok
}

// Has reports whether label is registered
func (h *TypeHierarchy) Has(label string) bool {
	_, ok := h.types[label]
	return ok
}

// Len returns the number of registered types
func (h *TypeHierarchy) Len() int { return len(h.types) }

// LinkSupertype makes super an immediate supertype of sub. The supertype must
// already exist; sub is registered if new.
func (h *TypeHierarchy) LinkSupertype(sub, super string) error {
	st, ok := h.types[super]
	if !ok {
		return StructuralError("link supertype", "supertype '%s' of '%s' is not a %s type", super, sub, h.name)
	}
	if h.IsSubtypeOf(super, sub) {
		return StructuralError("link supertype", "linking '%s' under '%s' would create a cycle", sub, super)
	}
	t := h.AddType(sub)
	for _, s := range t.supers {
		if s == st {
			return nil
		}
	}
	t.supers = append(t.supers, st)
	st.subs = append(st.subs, t)
	return nil
}

// SetValence declares the argument count of a registered type.
func (h *TypeHierarchy) SetValence(label string, n int) error {
	t, ok := h.types[label]
	if !ok {
		return StructuralError("set valence", "'%s' is not a %s type", label, h.name)
	}
	if n < 0 {
		return StructuralError("set valence", "negative valence %d for '%s'", n, label)
	}
	t.valence = n
	return nil
}

// IsSubtypeOf reports whether a equals b or lies below it. Reflexive and
// transitive.
func (h *TypeHierarchy) IsSubtypeOf(a, b string) bool {
	if a == b {
		return true
	}
	t, ok := h.types[a]
	if !ok {
		return false
	}
	seen := make(map[*Type]bool)
	stack := append([]*Type(nil), t.supers...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.label == b {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, n.supers...)
	}
	return false
}

// IsProperSubtypeOf is IsSubtypeOf without reflexivity.
func (h *TypeHierarchy) IsProperSubtypeOf(a, b string) bool {
	return a != b && h.IsSubtypeOf(a, b)
}

// Labels returns all registered labels, sorted
func (h *TypeHierarchy) Labels() []string {
	labels := append([]string(nil), h.order...)
	sort.Strings(labels)
	return labels
}

// Describe renders one line per type with its immediate supertypes.
func (h *TypeHierarchy) Describe() string {
	var b strings.Builder
	for _, label := range h.order {
		t := h.types[label]
		b.WriteString(label)
		if len(t.supers) > 0 {
			names := make([]string, len(t.supers))
			for i, s := range t.supers {
				names[i] = s.label
			}
			fmt.Fprintf(&b, " < %s", strings.Join(names, ", "))
		}
		if t.valence > 0 {
			fmt.Fprintf(&b, " /%d", t.valence)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Vocabulary pairs the concept and relation hierarchies of a knowledge base.
type Vocabulary struct {
	Concepts  *TypeHierarchy
	Relations *TypeHierarchy
}

// NewVocabulary creates empty concept and relation hierarchies
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		Concepts:  NewTypeHierarchy("concept"),
		Relations: NewTypeHierarchy("relation"),
	}
}

// Copy returns a vocabulary with independent copies of both hierarchies
func (v *Vocabulary) Copy() *Vocabulary {
	return &Vocabulary{
		Concepts:  v.Concepts.Copy(),
		Relations: v.Relations.Copy(),
	}
}
