package algebra

import "pcg/internal/domain"

// CorefRecorder receives variable bindings discovered during restriction.
type CorefRecorder interface {
	RecordCoref(key string, b domain.Binding)
}

// Restrict narrows source toward target and reports whether anything changed.
//
// The type moves down to target's type when that is a proper subtype. If the
// two types are then identical and source is generic or holds a variable, the
// referent is restricted too: a bound designator on target is copied, or
// failing that a non-blank descriptor. A variable on source is recorded on
// rec (which may be nil) under its coreference key.
func Restrict(types *domain.TypeHierarchy, source, target *domain.Concept, rec CorefRecorder) bool {
	restricted := false
	if types.IsProperSubtypeOf(target.Type(), source.Type()) {
		if err := source.SetType(target.Type(), types); err == nil {
			restricted = true
		}
	}

	if source.Type() != target.Type() {
		return restricted
	}
	if !source.IsGeneric() && !source.HasVariable() {
		return restricted
	}

	key := source.VariableKey()
	switch {
	case target.HasBoundDesignator():
		b := domain.Binding{Designator: target.Designator()}
		source.Bind(b)
		if key != "" && rec != nil {
			rec.RecordCoref(key, b)
		}
		return true
	case target.HasDescriptor():
		source.Bind(domain.Binding{Descriptor: target.Descriptor()})
		if key != "" && rec != nil {
			rec.RecordCoref(key, domain.Binding{Descriptor: target.Descriptor().Copy(true)})
		}
		return true
	}
	return restricted
}
