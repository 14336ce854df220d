package actor

import (
	"fmt"

	"pcg/internal/domain"
)

// SelfLabel names the enclosing actor inside its own body.
const SelfLabel = "_self_"

// AnonymousName is the name given to actors defined without one.
const AnonymousName = "anonymous"

// State is the execution state of one actor activation
type State int

const (
	Initialized State = iota
	Executing
	Complete
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Executing:
		return "executing"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Executor is what a sub-actor label resolves to: a function or an actor.
type Executor interface {
	ExecutorName() string
}

// Resolver looks sub-actor labels up in the enclosing scopes.
type Resolver interface {
	ResolveExecutor(label string) (Executor, bool)
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(label string) (Executor, bool)

func (f ResolverFunc) ResolveExecutor(label string) (Executor, bool) { return f(label) }

// SubActor describes one ready actor node handed to the driver.
type SubActor struct {
	Label    string
	Executor Executor
	Inputs   []*domain.Concept
	Outputs  []*domain.Concept
	Self     bool
}

// Actor is an actor definition together with the working state of one
// activation. Copy yields a fresh activation of the same definition.
type Actor struct {
	name      string
	formals   []string
	def       *domain.Graph
	body      *domain.Graph
	executors map[*domain.Relation]Executor
	runList   []*domain.Relation
	state     State
}

// New creates a named actor whose inputs bind to the *formal variables of def.
func New(name string, formals []string, def *domain.Graph) *Actor {
	return &Actor{
		name:    name,
		formals: append([]string(nil), formals...),
		def:     def,
		body:    def.Copy(true),
	}
}

// NewAnonymous creates an unnamed actor whose inputs bind positionally to the
// source concepts of def.
func NewAnonymous(def *domain.Graph) *Actor {
	return New(AnonymousName, nil, def)
}

func (a *Actor) Name() string         { return a.name }
func (a *Actor) ExecutorName() string { return a.name }
func (a *Actor) Formals() []string    { return append([]string(nil), a.formals...) }
func (a *Actor) IsAnonymous() bool    { return a.name == AnonymousName }
func (a *Actor) State() State         { return a.state }

// Definition returns the defining graph. It must not be modified.
func (a *Actor) Definition() *domain.Graph { return a.def }

// Body returns the working graph of this activation
func (a *Actor) Body() *domain.Graph { return a.body }

// Copy returns a new activation with a fresh body copied from the definition.
func (a *Actor) Copy() *Actor {
	return New(a.name, a.formals, a.def)
}

// BindParameters rewrites every *formal variable in the body with the
// actual in the same position.
func (a *Actor) BindParameters(actuals []domain.Binding) error {
	if len(actuals) != len(a.formals) {
		return domain.StructuralError("bind parameters", "'%s' expects %d arguments, got %d", a.name, len(a.formals), len(actuals))
	}
	bindings := make(map[string]domain.Binding, len(a.formals))
	for i, f := range a.formals {
		bindings[domain.DefiningSigil+f] = actuals[i]
	}
	for _, c := range a.body.Concepts() {
		if !c.HasVariable() {
			continue
		}
		if b, ok := bindings[c.VariableKey()]; ok {
			c.Bind(b)
		}
	}
	return nil
}

// BindSources binds actuals positionally onto the body's source concepts.
func (a *Actor) BindSources(actuals []domain.Binding) error {
	sources := Sources(a.body)
	if len(actuals) != len(sources) {
		return domain.StructuralError("bind sources", "'%s' has %d source concepts, got %d arguments", a.name, len(sources), len(actuals))
	}
	for i, c := range sources {
		c.Bind(actuals[i])
	}
	return nil
}

// Study checks that the body contains actors and that every sub-actor label
// other than SelfLabel resolves to an executor.
func (a *Actor) Study(r Resolver) error {
	actors := a.body.Actors()
	if len(actors) == 0 {
		return domain.StructuralError("study graph", "'%s' is not an actor", a.name)
	}
	executors := make(map[*domain.Relation]Executor, len(actors))
	for _, rel := range actors {
		label := rel.Type()
		if label == SelfLabel {
			executors[rel] = a
			continue
		}
		var exec Executor
		ok := false
		if r != nil {
			exec, ok = r.ResolveExecutor(label)
		}
		if !ok {
			return domain.StructuralError("study graph", "sub-actor '%s' does not resolve to either a function or an actor", label)
		}
		executors[rel] = exec
	}
	a.executors = executors
	return nil
}

// Init seeds the run-list with every actor node of the body.
func (a *Actor) Init() {
	a.runList = a.body.Actors()
	if len(a.runList) == 0 {
		a.state = Complete
		return
	}
	a.state = Executing
}

// IsExecutable reports whether sub-actors remain to run
func (a *Actor) IsExecutable() bool {
	return len(a.runList) > 0
}

// Next removes and returns the first run-list entry whose inputs are all
// bound. It returns false when nothing is ready.
func (a *Actor) Next() (*SubActor, bool) {
	for i, rel := range a.runList {
		if !ready(rel) {
			continue
		}
		a.runList = append(a.runList[:i:i], a.runList[i+1:]...)
		if len(a.runList) == 0 {
			a.state = Complete
		}
		label := rel.Type()
		return &SubActor{
			Label:    label,
			Executor: a.executors[rel],
			Inputs:   rel.Inputs(),
			Outputs:  rel.Outputs(),
			Self:     label == SelfLabel,
		}, true
	}
	return nil, false
}

// Pending returns the labels of the sub-actors not yet run
func (a *Actor) Pending() []string {
	labels := make([]string, len(a.runList))
	for i, rel := range a.runList {
		labels[i] = rel.Type()
	}
	return labels
}

// Sources returns the source concepts of the defining graph
func (a *Actor) Sources() []*domain.Concept { return Sources(a.def.Copy(false)) }

// Sinks returns the sink concepts of the working body
func (a *Actor) Sinks() []*domain.Concept { return Sinks(a.body) }

func ready(rel *domain.Relation) bool {
	for _, c := range rel.Inputs() {
		if c.HasVariable() {
			return false
		}
	}
	return true
}
