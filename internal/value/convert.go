package value

import (
	"strings"

	"pcg/internal/domain"
)

// DesignatorValue converts the designator of c into a value. Literals keep
// their kind, except that the strings "true" and "false" read as booleans.
// Markers become "#id" strings and names their text.
func DesignatorValue(c *domain.Concept) Value {
	return designatorValue(c.Designator())
}

func designatorValue(d domain.Designator) Value {
	switch d.Kind() {
	case domain.DesignatorLiteral:
		switch lit := d.Literal().(type) {
		case float64:
			return Number(lit)
		case bool:
			return Bool(lit)
		case string:
			switch strings.ToLower(lit) {
			case "true":
				return Bool(true)
			case "false":
				return Bool(false)
			}
			return String(lit)
		}
	case domain.DesignatorMarker:
		return String("#" + d.Text())
	case domain.DesignatorName:
		return String(d.Text())
	}
	return Undefined()
}

// ToBinding converts v into a coreference binding. Strings starting with #
// become markers and those starting with a variable sigil become variable
// names; graphs bind as descriptors.
func ToBinding(v Value) (domain.Binding, error) {
	switch v.kind {
	case KindNumber:
		return domain.Binding{Designator: domain.NumberLiteral(v.num)}, nil
	case KindBoolean:
		return domain.Binding{Designator: domain.BoolLiteral(v.boolean)}, nil
	case KindString:
		switch {
		case strings.HasPrefix(v.str, "#"):
			return domain.Binding{Designator: domain.Marker(v.str[1:])}, nil
		case strings.HasPrefix(v.str, domain.DefiningSigil), strings.HasPrefix(v.str, domain.BoundSigil):
			return domain.Binding{Designator: domain.Name(v.str)}, nil
		}
		return domain.Binding{Designator: domain.StringLiteral(v.str)}, nil
	case KindGraph:
		return domain.Binding{Descriptor: v.graph}, nil
	case KindConcept:
		if d := v.concept.Designator(); !d.IsNone() {
			return domain.Binding{Designator: d}, nil
		}
		if v.concept.HasDescriptor() {
			return domain.Binding{Descriptor: v.concept.Descriptor()}, nil
		}
	}
	return domain.Binding{}, domain.IllegalOperation("bind designator", "%s value cannot be a designator", v.kind)
}

// FromBinding is the inverse of ToBinding
func FromBinding(b domain.Binding) Value {
	if b.Descriptor != nil {
		return Graph(b.Descriptor)
	}
	return designatorValue(b.Designator)
}

// SetDesignatorValue binds v onto c as its referent
func SetDesignatorValue(c *domain.Concept, v Value) error {
	b, err := ToBinding(v)
	if err != nil {
		return err
	}
	c.Bind(b)
	return nil
}

// ConceptValue returns the value a concept carries: its designator, else its
// descriptor graph, else undefined.
func ConceptValue(c *domain.Concept) Value {
	if !c.Designator().IsNone() {
		return DesignatorValue(c)
	}
	if c.HasDescriptor() {
		return Graph(c.Descriptor())
	}
	return Undefined()
}

func quantifierValue(q domain.Quantifier) Value {
	switch q.Kind() {
	case domain.QuantifierNumeric:
		return Number(float64(q.Count()))
	case domain.QuantifierGeneric:
		return String(q.Name())
	case domain.QuantifierCollection:
		members := q.Members()
		items := make([]Value, len(members))
		for i, m := range members {
			items[i] = String(m)
		}
		return ListOf(items...)
	}
	return Undefined()
}
