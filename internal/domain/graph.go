package domain

// CoreferenceSet names a set of concepts denoting the same individual.
type CoreferenceSet struct {
	Name     string
	Concepts []*Concept
}

// Graph owns its concepts and relations exclusively. Nodes move between
// graphs only through Copy, CopyWithMapping and Absorb.
type Graph struct {
	concepts  []*Concept
	relations []*Relation
	comments  []string
	corefs    []*CoreferenceSet
	parent    *Concept
}

// NewGraph creates a blank graph
func NewGraph() *Graph {
	return &Graph{}
}

// Concepts returns the concepts in creation order
func (g *Graph) Concepts() []*Concept { return append([]*Concept(nil), g.concepts...) }

// Relations returns all relations, actors included, in creation order
func (g *Graph) Relations() []*Relation { return append([]*Relation(nil), g.relations...) }

// Actors returns the actor relations in creation order
func (g *Graph) Actors() []*Relation {
	var out []*Relation
	for _, r := range g.relations {
		if r.actor {
			out = append(out, r)
		}
	}
	return out
}

// Comments returns the comment lines
func (g *Graph) Comments() []string { return append([]string(nil), g.comments...) }

// AddComment appends a comment line
func (g *Graph) AddComment(text string) { g.comments = append(g.comments, text) }

// CoreferenceSets returns the recorded coreference sets
func (g *Graph) CoreferenceSets() []*CoreferenceSet { return append([]*CoreferenceSet(nil), g.corefs...) }

// Parent returns the concept whose descriptor this graph is, or nil
func (g *Graph) Parent() *Concept { return g.parent }

// IsBlank reports a graph with no concepts and no relations
func (g *Graph) IsBlank() bool {
	return g == nil || (len(g.concepts) == 0 && len(g.relations) == 0)
}

// Head returns the first concept, or nil
func (g *Graph) Head() *Concept {
	if len(g.concepts) == 0 {
		return nil
	}
	return g.concepts[0]
}

// IndexOf returns the creation-order position of c, or -1
func (g *Graph) IndexOf(c *Concept) int {
	if c == nil || c.graph != g {
		return -1
	}
	for i, x := range g.concepts {
		if x == c {
			return i
		}
	}
	return -1
}

// Contains reports whether c is owned by g
func (g *Graph) Contains(c *Concept) bool { return c != nil && c.graph == g }

// AddConcept inserts an unowned concept. Re-adding a concept g already owns is
// a no-op; a concept owned by another graph is rejected.
func (g *Graph) AddConcept(c *Concept) error {
	if c == nil {
		return StructuralError("add concept", "nil concept")
	}
	if c.graph == g {
		return nil
	}
	if c.graph != nil {
		return StructuralError("add concept", "concept [%s] already belongs to another graph", c.typ)
	}
	c.graph = g
	g.concepts = append(g.concepts, c)
	return nil
}

// AddRelation inserts an unowned relation. Unowned arguments are added to g
// first; arguments owned by another graph are rejected.
func (g *Graph) AddRelation(r *Relation) error {
	if r == nil {
		return StructuralError("add relation", "nil relation")
	}
	if r.graph == g {
		return nil
	}
	if r.graph != nil {
		return StructuralError("add relation", "relation (%s) already belongs to another graph", r.typ)
	}
	for _, c := range r.args {
		if c == nil {
			return StructuralError("add relation", "relation (%s) has a nil argument", r.typ)
		}
		if c.graph != nil && c.graph != g {
			return StructuralError("add relation", "argument [%s] of (%s) belongs to another graph", c.typ, r.typ)
		}
	}
	for _, c := range r.args {
		if c.graph == nil {
			c.graph = g
			g.concepts = append(g.concepts, c)
		}
	}
	r.graph = g
	g.relations = append(g.relations, r)
	return nil
}

// AddCoreferenceSet records concepts of g that denote the same individual
func (g *Graph) AddCoreferenceSet(name string, concepts ...*Concept) error {
	for _, c := range concepts {
		if c.graph != g {
			return StructuralError("add coreference set", "concept [%s] in set '%s' is not in this graph", c.typ, name)
		}
	}
	g.corefs = append(g.corefs, &CoreferenceSet{Name: name, Concepts: append([]*Concept(nil), concepts...)})
	return nil
}

// Validate checks relation arity against declared valences.
func (g *Graph) Validate(relations *TypeHierarchy) error {
	for _, r := range g.relations {
		t, ok := relations.Lookup(r.typ)
		if !ok {
			continue
		}
		if t.valence > 0 && t.valence != len(r.args) {
			return StructuralError("validate graph", "relation (%s) has %d arguments, valence is %d", r.typ, len(r.args), t.valence)
		}
	}
	for _, c := range g.concepts {
		if c.descriptor != nil {
			if err := c.descriptor.Validate(relations); err != nil {
				return err
			}
		}
	}
	return nil
}

// Copy returns a fully independent deep copy.
func (g *Graph) Copy(includeComments bool) *Graph {
	cp, _ := g.CopyWithMapping(includeComments)
	return cp
}

// CopyWithMapping is Copy that also returns the old-to-new concept mapping.
func (g *Graph) CopyWithMapping(includeComments bool) (*Graph, map[*Concept]*Concept) {
	cp := NewGraph()
	if g == nil {
		return cp, map[*Concept]*Concept{}
	}
	mapping := make(map[*Concept]*Concept, len(g.concepts))
	for _, c := range g.concepts {
		nc := c.Copy()
		nc.graph = cp
		cp.concepts = append(cp.concepts, nc)
		mapping[c] = nc
	}
	for _, r := range g.relations {
		nr := &Relation{typ: r.typ, actor: r.actor, dirs: append([]Direction(nil), r.dirs...), graph: cp}
		nr.args = make([]*Concept, len(r.args))
		for i, a := range r.args {
			nr.args[i] = mapping[a]
		}
		cp.relations = append(cp.relations, nr)
	}
	for _, s := range g.corefs {
		ns := &CoreferenceSet{Name: s.Name}
		for _, c := range s.Concepts {
			ns.Concepts = append(ns.Concepts, mapping[c])
		}
		cp.corefs = append(cp.corefs, ns)
	}
	if includeComments {
		cp.comments = append([]string(nil), g.comments...)
	}
	return cp, mapping
}

// ArgumentsFirst reorders the concepts so relation arguments come first, in
// relation and argument order, followed by the remaining concepts in
// creation order.
func (g *Graph) ArgumentsFirst() {
	placed := make(map[*Concept]bool, len(g.concepts))
	ordered := make([]*Concept, 0, len(g.concepts))
	for _, r := range g.relations {
		for _, a := range r.args {
			if !placed[a] {
				placed[a] = true
				ordered = append(ordered, a)
			}
		}
	}
	for _, c := range g.concepts {
		if !placed[c] {
			ordered = append(ordered, c)
		}
	}
	g.concepts = ordered
}

// Absorb moves every node of other into g, leaving other blank. Concepts that
// appear as keys in replace are dropped and their arcs rewired to the mapped
// concept, which must already belong to g.
func (g *Graph) Absorb(other *Graph, replace map[*Concept]*Concept) error {
	if other == g {
		return StructuralError("absorb", "cannot absorb a graph into itself")
	}
	for from, to := range replace {
		if from.graph != other || to.graph != g {
			return StructuralError("absorb", "replacement [%s] -> [%s] crosses unrelated graphs", from.typ, to.typ)
		}
	}
	subst := func(c *Concept) *Concept {
		if to, ok := replace[c]; ok {
			return to
		}
		return c
	}
	for _, c := range other.concepts {
		if _, ok := replace[c]; ok {
			c.graph = nil
			continue
		}
		c.graph = g
		g.concepts = append(g.concepts, c)
	}
	for _, r := range other.relations {
		for i, a := range r.args {
			r.args[i] = subst(a)
		}
		r.graph = g
		g.relations = append(g.relations, r)
	}
	for _, s := range other.corefs {
		for i, c := range s.Concepts {
			s.Concepts[i] = subst(c)
		}
		g.corefs = append(g.corefs, s)
	}
	g.comments = append(g.comments, other.comments...)
	other.concepts, other.relations, other.comments, other.corefs = nil, nil, nil, nil
	return nil
}
