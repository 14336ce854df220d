// Package value is the closed set of runtime values an interpreter passes
// around: scalars, lists, graph objects, and the executables and knowledge
// bases a program can name.
//
// Operators, attributes and member functions are resolved per kind through
// explicit tables. Anything a kind does not support yields an error
// matching domain.ErrIllegalOperation.
package value

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"pcg/internal/actor"
	"pcg/internal/algebra"
	"pcg/internal/codec"
	"pcg/internal/domain"
	"pcg/internal/kb"
	"pcg/internal/process"
)

// Kind identifies the variant held by a Value
type Kind int

const (
	KindUndefined Kind = iota
	KindNumber
	KindString
	KindBoolean
	KindList
	KindConcept
	KindGraph
	KindFunction
	KindActor
	KindProcess
	KindKnowledgeBase
)

var kindNames = [...]string{
	KindUndefined:     "undefined",
	KindNumber:        "number",
	KindString:        "string",
	KindBoolean:       "boolean",
	KindList:          "list",
	KindConcept:       "concept",
	KindGraph:         "graph",
	KindFunction:      "function",
	KindActor:         "actor",
	KindProcess:       "process",
	KindKnowledgeBase: "knowledgebase",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Function is a callable an interpreter registers by name. Arity -1 accepts
// any number of arguments.
type Function struct {
	Name  string
	Arity int
	Fn    func(ctx context.Context, args []Value) (Value, error)
}

// ExecutorName lets functions stand in as sub-actor executors
func (f *Function) ExecutorName() string { return f.Name }

// Call checks the argument count and invokes the function
func (f *Function) Call(ctx context.Context, args []Value) (Value, error) {
	if f.Arity >= 0 && len(args) != f.Arity {
		return Undefined(), domain.StructuralError("call function", "'%s' expects %d arguments, got %d", f.Name, f.Arity, len(args))
	}
	return f.Fn(ctx, args)
}

// List is a mutable sequence shared by every Value that holds it
type List struct {
	Items []Value
}

// Value is a tagged union over Kind. The zero Value is undefined.
type Value struct {
	kind    Kind
	num     float64
	str     string
	boolean bool
	list    *List
	concept *domain.Concept
	graph   *domain.Graph
	fn      *Function
	actor   *actor.Actor
	proc    *process.Process
	kb      *kb.KnowledgeBase
}

func Undefined() Value            { return Value{} }
func Number(n float64) Value      { return Value{kind: KindNumber, num: n} }
func String(s string) Value       { return Value{kind: KindString, str: s} }
func Bool(b bool) Value           { return Value{kind: KindBoolean, boolean: b} }
func ListOf(items ...Value) Value { return Value{kind: KindList, list: &List{Items: items}} }

func Concept(c *domain.Concept) Value {
	if c == nil {
		return Undefined()
	}
	return Value{kind: KindConcept, concept: c}
}

func Graph(g *domain.Graph) Value {
	if g == nil {
		return Undefined()
	}
	return Value{kind: KindGraph, graph: g}
}

func FunctionValue(f *Function) Value {
	if f == nil {
		return Undefined()
	}
	return Value{kind: KindFunction, fn: f}
}

func Actor(a *actor.Actor) Value {
	if a == nil {
		return Undefined()
	}
	return Value{kind: KindActor, actor: a}
}

func Process(p *process.Process) Value {
	if p == nil {
		return Undefined()
	}
	return Value{kind: KindProcess, proc: p}
}

func KnowledgeBase(k *kb.KnowledgeBase) Value {
	if k == nil {
		return Undefined()
	}
	return Value{kind: KindKnowledgeBase, kb: k}
}

func (v Value) Kind() Kind                { return v.kind }
func (v Value) IsUndefined() bool         { return v.kind == KindUndefined }
func (v Value) Num() float64              { return v.num }
func (v Value) Str() string               { return v.str }
func (v Value) Bool() bool                { return v.boolean }
func (v Value) Concept() *domain.Concept  { return v.concept }
func (v Value) Graph() *domain.Graph      { return v.graph }
func (v Value) Function() *Function       { return v.fn }
func (v Value) Actor() *actor.Actor       { return v.actor }
func (v Value) Process() *process.Process { return v.proc }
func (v Value) KB() *kb.KnowledgeBase     { return v.kb }

// Items returns the list elements, or nil for other kinds
func (v Value) Items() []Value {
	if v.list == nil {
		return nil
	}
	return v.list.Items
}

// Executor returns the sub-actor executor held by v
func (v Value) Executor() (actor.Executor, bool) {
	switch v.kind {
	case KindFunction:
		return v.fn, true
	case KindActor:
		return v.actor, true
	}
	return nil, false
}

// Truthy reports whether v is the boolean true
func (v Value) Truthy() bool { return v.kind == KindBoolean && v.boolean }

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	case KindBoolean:
		return strconv.FormatBool(v.boolean)
	case KindList:
		parts := make([]string, len(v.list.Items))
		for i, item := range v.list.Items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindConcept:
		return codec.FormatConcept(v.concept)
	case KindGraph:
		return codec.FormatCGIF(v.graph)
	case KindFunction:
		return fmt.Sprintf("function %s; arity %d", v.fn.Name, v.fn.Arity)
	case KindActor:
		return fmt.Sprintf("actor %s; arity %d", v.actor.Name(), len(v.actor.Formals()))
	case KindProcess:
		return fmt.Sprintf("process %s; arity %d", v.proc.Name, len(v.proc.Formals))
	case KindKnowledgeBase:
		return v.kb.Describe()
	}
	return "undefined"
}

// Equal is structural for scalars, lists, concepts and graphs and identity
// for executables and knowledge bases.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined:
		return true
	case KindNumber:
		return a.num == b.num
	case KindString:
		return a.str == b.str
	case KindBoolean:
		return a.boolean == b.boolean
	case KindList:
		if len(a.list.Items) != len(b.list.Items) {
			return false
		}
		for i := range a.list.Items {
			if !Equal(a.list.Items[i], b.list.Items[i]) {
				return false
			}
		}
		return true
	case KindConcept:
		return algebra.ConceptsEqual(a.concept, b.concept)
	case KindGraph:
		return algebra.Equal(a.graph, b.graph)
	case KindFunction:
		return a.fn == b.fn
	case KindActor:
		return a.actor == b.actor
	case KindProcess:
		return a.proc == b.proc
	case KindKnowledgeBase:
		return a.kb == b.kb
	}
	return false
}
