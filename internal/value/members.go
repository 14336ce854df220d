package value

import (
	"math"
	"strconv"
	"strings"

	"pcg/internal/actor"
	"pcg/internal/algebra"
	"pcg/internal/codec"
	"pcg/internal/domain"
	"pcg/internal/kb"
)

// Env is what member functions need from the active runtime. A
// *kb.KnowledgeBase satisfies it.
type Env interface {
	Vocabulary() *domain.Vocabulary
	RecordCoref(key string, b domain.Binding)
}

type getter func(v Value) Value

type setter func(v, x Value) error

type method struct {
	min, max int
	call     func(env Env, recv Value, args []Value) (Value, error)
}

var getters = map[Kind]map[string]getter{
	KindString: {
		"length": func(v Value) Value { return Number(float64(len(v.str))) },
	},
	KindList: {
		"length": func(v Value) Value { return Number(float64(len(v.list.Items))) },
	},
	KindConcept: {
		"label":      func(v Value) Value { return String(v.concept.Type()) },
		"designator": func(v Value) Value { return DesignatorValue(v.concept) },
		"descriptor": func(v Value) Value {
			if !v.concept.HasDescriptor() {
				return Undefined()
			}
			return Graph(v.concept.Descriptor())
		},
		"quantifier": func(v Value) Value { return quantifierValue(v.concept.Quantifier()) },
		"isGeneric":  func(v Value) Value { return Bool(v.concept.IsGeneric()) },
	},
	KindGraph: {
		"concepts":  func(v Value) Value { return conceptList(v.graph.Concepts()) },
		"relations": func(v Value) Value { return relationList(v.graph.Relations()) },
		"actors":    func(v Value) Value { return relationList(v.graph.Actors()) },
	},
	KindFunction: {
		"name":     func(v Value) Value { return String(v.fn.Name) },
		"argcount": func(v Value) Value { return Number(float64(v.fn.Arity)) },
	},
	KindActor: {
		"name":     func(v Value) Value { return String(v.actor.Name()) },
		"sinks":    func(v Value) Value { return conceptList(actor.Sinks(v.actor.Definition().Copy(false))) },
		"sources":  func(v Value) Value { return conceptList(v.actor.Sources()) },
		"defgraph": func(v Value) Value { return Graph(v.actor.Definition()) },
	},
	KindProcess: {
		"name":  func(v Value) Value { return String(v.proc.Name) },
		"arity": func(v Value) Value { return Number(float64(len(v.proc.Formals))) },
	},
	KindKnowledgeBase: {
		"graphs": func(v Value) Value {
			gs := v.kb.Graphs()
			items := make([]Value, len(gs))
			for i, g := range gs {
				items[i] = Graph(g)
			}
			return ListOf(items...)
		},
		"concepttypes":  func(v Value) Value { return String(kb.DescribeTypes(v.kb.Vocabulary().Concepts)) },
		"relationtypes": func(v Value) Value { return String(kb.DescribeTypes(v.kb.Vocabulary().Relations)) },
		"corefvars": func(v Value) Value {
			vars := v.kb.CorefVars()
			items := make([]Value, len(vars))
			for i, cv := range vars {
				items[i] = ListOf(String(cv.Name), FromBinding(cv.Binding))
			}
			return ListOf(items...)
		},
	},
}

var setters = map[Kind]map[string]setter{
	KindConcept: {
		"designator": func(v, x Value) error { return SetDesignatorValue(v.concept, x) },
		"descriptor": func(v, x Value) error {
			if x.kind != KindGraph {
				return illegal("attribute [descriptor] assignment", KindConcept, x.kind)
			}
			return v.concept.SetDescriptor(x.graph.Copy(true))
		},
	},
}

// Attr reads a named attribute. Every kind has "type".
func Attr(v Value, name string) (Value, error) {
	if name == "type" {
		return String(v.kind.String()), nil
	}
	if get, ok := getters[v.kind][name]; ok {
		return get(v), nil
	}
	return Undefined(), domain.IllegalOperation("attribute ["+name+"] access", "%s has no attribute %q", v.kind, name)
}

// SetAttr assigns a named attribute
func SetAttr(v Value, name string, x Value) error {
	if set, ok := setters[v.kind][name]; ok {
		return set(v, x)
	}
	return domain.IllegalOperation("attribute ["+name+"] assignment", "%s attribute %q is not assignable", v.kind, name)
}

// Call invokes a member function of recv
func Call(env Env, recv Value, name string, args ...Value) (Value, error) {
	m, ok := methods[recv.kind][name]
	if !ok {
		return Undefined(), domain.IllegalOperation("member function "+name, "%s has no member function %q", recv.kind, name)
	}
	if len(args) < m.min || len(args) > m.max {
		return Undefined(), domain.StructuralError("member function "+name, "%s.%s takes %s arguments, got %d", recv.kind, name, arity(m), len(args))
	}
	return m.call(env, recv, args)
}

func arity(m method) string {
	if m.min == m.max {
		return strconv.Itoa(m.min)
	}
	return strconv.Itoa(m.min) + " to " + strconv.Itoa(m.max)
}

// expect checks argument kinds for a member function
func expect(name string, args []Value, kinds ...Kind) error {
	for i, k := range kinds {
		if i < len(args) && args[i].kind != k {
			return domain.IllegalOperation("member function "+name, "argument %d must be %s, got %s", i+1, k, args[i].kind)
		}
	}
	return nil
}

func numeric(fn func(float64) float64) method {
	return method{call: func(_ Env, recv Value, _ []Value) (Value, error) {
		return Number(fn(recv.num)), nil
	}}
}

var methods = map[Kind]map[string]method{
	KindNumber: {
		"pow": {min: 1, max: 1, call: func(_ Env, recv Value, args []Value) (Value, error) {
			if err := expect("pow", args, KindNumber); err != nil {
				return Undefined(), err
			}
			return Number(math.Pow(recv.num, args[0].num)), nil
		}},
		"sqrt":  numeric(math.Sqrt),
		"sin":   numeric(math.Sin),
		"cos":   numeric(math.Cos),
		"tan":   numeric(math.Tan),
		"floor": numeric(math.Floor),
		"ceil":  numeric(math.Ceil),
		"round": numeric(math.Trunc),
		"inc":   numeric(func(x float64) float64 { return x + 1 }),
		"dec":   numeric(func(x float64) float64 { return x - 1 }),
		"chr": {call: func(_ Env, recv Value, _ []Value) (Value, error) {
			return String(string([]byte{byte(int(recv.num))})), nil
		}},
	},
	KindString: {
		"substring": {min: 1, max: 2, call: substring},
		"index": {min: 1, max: 1, call: func(_ Env, recv Value, args []Value) (Value, error) {
			if err := expect("index", args, KindString); err != nil {
				return Undefined(), err
			}
			n := strings.Index(recv.str, args[0].str)
			if n >= 0 {
				n++
			}
			return Number(float64(n)), nil
		}},
		"replace": {min: 2, max: 2, call: func(_ Env, recv Value, args []Value) (Value, error) {
			if err := expect("replace", args, KindString, KindString); err != nil {
				return Undefined(), err
			}
			return String(strings.ReplaceAll(recv.str, args[0].str, args[1].str)), nil
		}},
		"toBoolean": {call: func(_ Env, recv Value, _ []Value) (Value, error) {
			return Bool(strings.EqualFold(recv.str, "true")), nil
		}},
		"toNumber": {call: func(_ Env, recv Value, _ []Value) (Value, error) {
			n, err := strconv.ParseFloat(strings.TrimSpace(recv.str), 64)
			if err != nil {
				return Undefined(), nil
			}
			return Number(n), nil
		}},
		"toGraph": {call: func(env Env, recv Value, _ []Value) (Value, error) {
			var vocab *domain.Vocabulary
			if env != nil {
				vocab = env.Vocabulary()
			}
			g, err := codec.ParseCGIF(recv.str, vocab)
			if err != nil {
				return Undefined(), err
			}
			return Graph(g), nil
		}},
	},
	KindList: {
		"hasMember": {min: 1, max: 1, call: func(_ Env, recv Value, args []Value) (Value, error) {
			for _, item := range recv.list.Items {
				if Equal(item, args[0]) {
					return Bool(true), nil
				}
			}
			return Bool(false), nil
		}},
		"member": {min: 1, max: 1, call: func(_ Env, recv Value, args []Value) (Value, error) {
			return member(recv, args[0]), nil
		}},
		"prepend": {min: 1, max: 1, call: func(_ Env, recv Value, args []Value) (Value, error) {
			recv.list.Items = append([]Value{args[0]}, recv.list.Items...)
			return recv, nil
		}},
		"append": {min: 1, max: 1, call: func(_ Env, recv Value, args []Value) (Value, error) {
			recv.list.Items = append(recv.list.Items, args[0])
			return recv, nil
		}},
		"merge": {min: 1, max: 1, call: func(_ Env, recv Value, args []Value) (Value, error) {
			if err := expect("merge", args, KindList); err != nil {
				return Undefined(), err
			}
			recv.list.Items = append(recv.list.Items, args[0].list.Items...)
			return recv, nil
		}},
	},
	KindConcept: {
		"restrict": {min: 1, max: 1, call: func(env Env, recv Value, args []Value) (Value, error) {
			if err := expect("restrict", args, KindConcept); err != nil {
				return Undefined(), err
			}
			if env == nil {
				return Undefined(), domain.StructuralError("member function restrict", "no active knowledge base")
			}
			return Bool(algebra.Restrict(env.Vocabulary().Concepts, recv.concept, args[0].concept, env)), nil
		}},
		"copy": {call: func(_ Env, recv Value, _ []Value) (Value, error) {
			return Concept(recv.concept.Copy()), nil
		}},
		"nocomments": {call: func(_ Env, recv Value, _ []Value) (Value, error) {
			cp := recv.concept.Copy()
			if d := cp.Descriptor(); d != nil {
				if err := cp.SetDescriptor(d.Copy(false)); err != nil {
					return Undefined(), err
				}
			}
			return Concept(cp), nil
		}},
		"isGeneric": {call: func(_ Env, recv Value, _ []Value) (Value, error) {
			return Bool(recv.concept.IsGeneric()), nil
		}},
		"isContext": {call: func(_ Env, recv Value, _ []Value) (Value, error) {
			return Bool(recv.concept.HasDescriptor()), nil
		}},
	},
	KindGraph: {
		"copy": {call: func(_ Env, recv Value, _ []Value) (Value, error) {
			return Graph(recv.graph.Copy(true)), nil
		}},
		"nocomments": {call: func(_ Env, recv Value, _ []Value) (Value, error) {
			return Graph(recv.graph.Copy(false)), nil
		}},
		"project": {min: 1, max: 1, call: func(env Env, recv Value, args []Value) (Value, error) {
			if err := expect("project", args, KindGraph); err != nil {
				return Undefined(), err
			}
			if env == nil {
				return Undefined(), domain.StructuralError("member function project", "no active knowledge base")
			}
			return Graph(algebra.Project(env.Vocabulary(), recv.graph, args[0].graph, env)), nil
		}},
		"join": {min: 1, max: 1, call: func(_ Env, recv Value, args []Value) (Value, error) {
			if err := expect("join", args, KindGraph); err != nil {
				return Undefined(), err
			}
			g, err := algebra.JoinOnMatch(recv.graph, args[0].graph)
			return Graph(g), err
		}},
		"joinAtHead": {min: 1, max: 1, call: func(_ Env, recv Value, args []Value) (Value, error) {
			if err := expect("joinAtHead", args, KindGraph); err != nil {
				return Undefined(), err
			}
			g, err := algebra.JoinAtHead(recv.graph, args[0].graph)
			return Graph(g), err
		}},
		"add": {min: 1, max: 1, call: func(_ Env, recv Value, args []Value) (Value, error) {
			if err := expect("add", args, KindGraph); err != nil {
				return Undefined(), err
			}
			return Graph(algebra.Add(recv.graph, args[0].graph)), nil
		}},
	},
	KindActor: {
		"copy": {call: func(_ Env, recv Value, _ []Value) (Value, error) {
			return Actor(recv.actor.Copy()), nil
		}},
	},
	KindKnowledgeBase: {
		"assert": {min: 1, max: 1, call: func(_ Env, recv Value, args []Value) (Value, error) {
			if err := expect("assert", args, KindGraph); err != nil {
				return Undefined(), err
			}
			added, err := recv.kb.Assert(args[0].graph, true)
			return Bool(added), err
		}},
		"retract": {min: 1, max: 1, call: func(_ Env, recv Value, args []Value) (Value, error) {
			if err := expect("retract", args, KindGraph); err != nil {
				return Undefined(), err
			}
			removed, err := recv.kb.Retract(args[0].graph, true)
			return Bool(removed), err
		}},
		"exactMatch": {min: 1, max: 1, call: func(_ Env, recv Value, args []Value) (Value, error) {
			if err := expect("exactMatch", args, KindGraph); err != nil {
				return Undefined(), err
			}
			return Bool(recv.kb.ExactMatch(args[0].graph)), nil
		}},
		"projectionMatch": {min: 1, max: 1, call: func(_ Env, recv Value, args []Value) (Value, error) {
			if err := expect("projectionMatch", args, KindGraph); err != nil {
				return Undefined(), err
			}
			m := recv.kb.ProjectionMatch(args[0].graph)
			if m == nil {
				return Undefined(), nil
			}
			return Graph(m.Member), nil
		}},
	},
}

// substring takes 1-based inclusive bounds; out of range yields undefined
func substring(_ Env, recv Value, args []Value) (Value, error) {
	if err := expect("substring", args, KindNumber, KindNumber); err != nil {
		return Undefined(), err
	}
	first := int(args[0].num) - 1
	last := len(recv.str)
	if len(args) == 2 {
		last = int(args[1].num)
	}
	if first < 0 || first > len(recv.str) || last < first || last > len(recv.str) {
		return Undefined(), nil
	}
	return String(recv.str[first:last]), nil
}

// member returns the innermost list holding x, searching sub-lists depth
// first, or undefined.
func member(list, x Value) Value {
	for _, item := range list.list.Items {
		if Equal(item, x) {
			return list
		}
		if item.kind == KindList {
			if found := member(item, x); found.kind == KindList {
				return found
			}
		}
	}
	return Undefined()
}

func conceptList(cs []*domain.Concept) Value {
	items := make([]Value, len(cs))
	for i, c := range cs {
		items[i] = Concept(c)
	}
	return ListOf(items...)
}

// relationList renders relations as [label, [inputs...], [outputs...]]
func relationList(rs []*domain.Relation) Value {
	items := make([]Value, len(rs))
	for i, r := range rs {
		items[i] = ListOf(String(r.Type()), conceptList(r.Inputs()), conceptList(r.Outputs()))
	}
	return ListOf(items...)
}
