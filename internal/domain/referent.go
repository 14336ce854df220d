package domain

import (
	"strconv"
	"strings"
)

// DesignatorKind identifies the variant held by a Designator
type DesignatorKind int

const (
	DesignatorNone DesignatorKind = iota
	DesignatorLiteral
	DesignatorMarker
	DesignatorName
)

// Variable sigils. A name designator starting with one of these is unbound.
const (
	DefiningSigil = "*"
	BoundSigil    = "?"
)

// Designator identifies the individual a concept refers to.
// The zero value is the None designator of a generic concept.
type Designator struct {
	kind    DesignatorKind
	literal any
	text    string
}

// NumberLiteral creates a numeric literal designator
func NumberLiteral(v float64) Designator {
	return Designator{kind: DesignatorLiteral, literal: v}
}

// StringLiteral creates a string literal designator
func StringLiteral(v string) Designator {
	return Designator{kind: DesignatorLiteral, literal: v}
}

// BoolLiteral creates a boolean literal designator
func BoolLiteral(v bool) Designator {
	return Designator{kind: DesignatorLiteral, literal: v}
}

// Marker creates an individual marker designator (#id)
func Marker(id string) Designator {
	return Designator{kind: DesignatorMarker, text: id}
}

// Name creates a name designator. Names starting with * or ? are variables.
func Name(text string) Designator {
	return Designator{kind: DesignatorName, text: text}
}

// Variable creates a variable designator from a bare name.
func Variable(name string) Designator {
	return Name(DefiningSigil + name)
}

func (d Designator) Kind() DesignatorKind { return d.kind }

func (d Designator) IsNone() bool { return d.kind == DesignatorNone }

// IsVariable reports whether d is an unbound variable name
func (d Designator) IsVariable() bool {
	return d.kind == DesignatorName &&
		(strings.HasPrefix(d.text, DefiningSigil) || strings.HasPrefix(d.text, BoundSigil))
}

// IsBound reports whether d names an individual
func (d Designator) IsBound() bool {
	return d.kind != DesignatorNone && !d.IsVariable()
}

// Literal returns the literal value (float64, string or bool)
func (d Designator) Literal() any { return d.literal }

// Text returns the marker id or name text
func (d Designator) Text() string { return d.text }

// VariableKey returns the coreference key of a variable designator: the name
// with any sigil normalised to *, so that *x and ?x share one binding.
func (d Designator) VariableKey() string {
	if !d.IsVariable() {
		return ""
	}
	return DefiningSigil + d.text[1:]
}

// Equal compares kind and value
func (d Designator) Equal(o Designator) bool {
	if d.kind != o.kind {
		return false
	}
	switch d.kind {
	case DesignatorNone:
		return true
	case DesignatorLiteral:
		return d.literal == o.literal
	default:
		return d.text == o.text
	}
}

func (d Designator) String() string {
	switch d.kind {
	case DesignatorLiteral:
		switch v := d.literal.(type) {
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case string:
			return strconv.Quote(v)
		case bool:
			return strconv.FormatBool(v)
		}
	case DesignatorMarker:
		return "#" + d.text
	case DesignatorName:
		if d.IsVariable() {
			return d.text
		}
		return "'" + d.text + "'"
	}
	return ""
}

// QuantifierKind identifies the variant held by a Quantifier
type QuantifierKind int

const (
	QuantifierNone QuantifierKind = iota
	QuantifierNumeric
	QuantifierCollection
	QuantifierGeneric
)

// Quantifier is the optional macro part of a referent.
type Quantifier struct {
	kind    QuantifierKind
	count   int
	name    string
	members []string
}

// NumericQuantifier creates @n
func NumericQuantifier(n int) Quantifier {
	return Quantifier{kind: QuantifierNumeric, count: n}
}

// CollectionQuantifier creates @name{m1, m2, ...}; name may be empty
func CollectionQuantifier(name string, members []string) Quantifier {
	return Quantifier{kind: QuantifierCollection, name: name, members: append([]string(nil), members...)}
}

// GenericQuantifier creates a named macro such as @every
func GenericQuantifier(name string) Quantifier {
	return Quantifier{kind: QuantifierGeneric, name: name}
}

func (q Quantifier) Kind() QuantifierKind { return q.kind }
func (q Quantifier) IsNone() bool         { return q.kind == QuantifierNone }
func (q Quantifier) Count() int           { return q.count }
func (q Quantifier) Name() string         { return q.name }
func (q Quantifier) Members() []string    { return append([]string(nil), q.members...) }

func (q Quantifier) Equal(o Quantifier) bool {
	if q.kind != o.kind || q.count != o.count || q.name != o.name || len(q.members) != len(o.members) {
		return false
	}
	for i := range q.members {
		if q.members[i] != o.members[i] {
			return false
		}
	}
	return true
}

func (q Quantifier) String() string {
	switch q.kind {
	case QuantifierNumeric:
		return "@" + strconv.Itoa(q.count)
	case QuantifierGeneric:
		return "@" + q.name
	case QuantifierCollection:
		quoted := make([]string, len(q.members))
		for i, m := range q.members {
			quoted[i] = strconv.Quote(m)
		}
		return "@" + q.name + "{" + strings.Join(quoted, ", ") + "}"
	}
	return ""
}

// Binding is the value recorded for a coreference variable: either a bound
// designator or a descriptor graph.
type Binding struct {
	Designator Designator
	Descriptor *Graph
}

// IsDescriptor reports whether the binding carries a graph
func (b Binding) IsDescriptor() bool { return b.Descriptor != nil }

func (b Binding) String() string {
	if b.Descriptor != nil {
		return "<graph>"
	}
	return b.Designator.String()
}
