package domain

// Direction marks an argument arc as input or output
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == Out {
		return "out"
	}
	return "in"
}

// Relation connects concepts of the same graph. An actor relation is built
// with explicit input and output lists and is scheduled by the actor engine.
type Relation struct {
	typ   string
	args  []*Concept
	dirs  []Direction
	actor bool
	graph *Graph
}

// NewRelation creates an ordinary relation. The last argument is the output
// arc, the others are inputs.
func NewRelation(typeLabel string, args ...*Concept) *Relation {
	r := &Relation{typ: typeLabel, args: append([]*Concept(nil), args...)}
	r.dirs = make([]Direction, len(args))
	if len(args) > 0 {
		r.dirs[len(args)-1] = Out
	}
	return r
}

// NewActor creates an actor relation with the given input and output arcs.
func NewActor(typeLabel string, inputs, outputs []*Concept) *Relation {
	r := &Relation{typ: typeLabel, actor: true}
	for _, c := range inputs {
		r.args = append(r.args, c)
		r.dirs = append(r.dirs, In)
	}
	for _, c := range outputs {
		r.args = append(r.args, c)
		r.dirs = append(r.dirs, Out)
	}
	return r
}

func (r *Relation) Type() string  { return r.typ }
func (r *Relation) IsActor() bool { return r.actor }
func (r *Relation) Arity() int    { return len(r.args) }

// Graph returns the owning graph, or nil
func (r *Relation) Graph() *Graph { return r.graph }

// Args returns the arguments in arc order
func (r *Relation) Args() []*Concept { return append([]*Concept(nil), r.args...) }

// Directions returns the per-argument arc directions
func (r *Relation) Directions() []Direction { return append([]Direction(nil), r.dirs...) }

// Inputs returns the input arguments in order
func (r *Relation) Inputs() []*Concept { return r.byDirection(In) }

// Outputs returns the output arguments in order
func (r *Relation) Outputs() []*Concept { return r.byDirection(Out) }

func (r *Relation) byDirection(d Direction) []*Concept {
	var out []*Concept
	for i, c := range r.args {
		if r.dirs[i] == d {
			out = append(out, c)
		}
	}
	return out
}

// SetType narrows the relation type to a proper subtype
func (r *Relation) SetType(label string, h *TypeHierarchy) error {
	if label == r.typ {
		return nil
	}
	if h == nil || !h.IsProperSubtypeOf(label, r.typ) {
		return TypeError("set relation type", "'%s' is not a proper subtype of '%s'", label, r.typ)
	}
	r.typ = label
	return nil
}
