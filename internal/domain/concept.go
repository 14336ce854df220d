package domain

// Concept is a typed graph node with a referent. A concept belongs to at most
// one graph; Graph.AddConcept enforces this.
type Concept struct {
	typ        string
	quantifier Quantifier
	designator Designator
	descriptor *Graph
	graph      *Graph
}

// NewConcept creates an unowned generic concept of the given type
func NewConcept(typeLabel string) *Concept {
	return &Concept{typ: typeLabel}
}

// NewIndividual creates an unowned concept with a designator
func NewIndividual(typeLabel string, d Designator) *Concept {
	return &Concept{typ: typeLabel, designator: d}
}

func (c *Concept) Type() string               { return c.typ }
func (c *Concept) Quantifier() Quantifier     { return c.quantifier }
func (c *Concept) Designator() Designator     { return c.designator }
func (c *Concept) SetQuantifier(q Quantifier) { c.quantifier = q }
func (c *Concept) SetDesignator(d Designator) { c.designator = d }

// Descriptor returns the nested graph, or nil
func (c *Concept) Descriptor() *Graph { return c.descriptor }

// Graph returns the owning graph, or nil for an unowned concept
func (c *Concept) Graph() *Graph { return c.graph }

// SetType moves the concept to label, which must equal the current type or be
// one of its proper subtypes.
func (c *Concept) SetType(label string, h *TypeHierarchy) error {
	if label == c.typ {
		return nil
	}
	if h == nil || !h.IsProperSubtypeOf(label, c.typ) {
		return TypeError("set concept type", "'%s' is not a proper subtype of '%s'", label, c.typ)
	}
	c.typ = label
	return nil
}

// SetDescriptor installs g as the nested graph. g must not already be the
// descriptor of another concept; nil clears the descriptor.
func (c *Concept) SetDescriptor(g *Graph) error {
	if g != nil && g.parent != nil && g.parent != c {
		return StructuralError("set descriptor", "graph is already the descriptor of another concept")
	}
	if c.descriptor != nil && c.descriptor != g {
		c.descriptor.parent = nil
	}
	if g != nil {
		g.parent = c
	}
	c.descriptor = g
	return nil
}

// HasDescriptor reports whether the descriptor is present and not blank
func (c *Concept) HasDescriptor() bool {
	return c.descriptor != nil && !c.descriptor.IsBlank()
}

// IsGeneric reports a concept with neither designator nor descriptor
func (c *Concept) IsGeneric() bool {
	return c.designator.IsNone() && !c.HasDescriptor()
}

// HasVariable reports whether the designator is an unbound variable
func (c *Concept) HasVariable() bool { return c.designator.IsVariable() }

// HasBoundDesignator reports whether the designator names an individual
func (c *Concept) HasBoundDesignator() bool { return c.designator.IsBound() }

// VariableKey returns the coreference key of the variable designator, or ""
func (c *Concept) VariableKey() string { return c.designator.VariableKey() }

// Bind replaces the referent's designator with b. A descriptor binding installs
// a copy of the graph and clears the variable designator.
func (c *Concept) Bind(b Binding) {
	if b.Descriptor != nil {
		c.designator = Designator{}
		_ = c.SetDescriptor(b.Descriptor.Copy(true))
		return
	}
	c.designator = b.Designator
}

// Copy returns an unowned deep copy, descriptor included
func (c *Concept) Copy() *Concept {
	cp := &Concept{
		typ:        c.typ,
		quantifier: c.quantifier,
		designator: c.designator,
	}
	if c.descriptor != nil {
		_ = cp.SetDescriptor(c.descriptor.Copy(true))
	}
	return cp
}
