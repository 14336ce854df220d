// Package runtime is the explicit execution context of a pCG program: the
// scope stack, the knowledge-base stack, and the drivers that activate
// functions, actors and processes against them.
package runtime

import (
	"context"

	"pcg/internal/actor"
	"pcg/internal/domain"
	"pcg/internal/kb"
	"pcg/internal/metrics"
	"pcg/internal/process"
	"pcg/internal/value"

	"go.uber.org/zap"
)

// Context carries all mutable interpreter state. It is not safe for
// concurrent use.
type Context struct {
	scopes  *ScopeStack
	kbs     *kb.Stack
	engine  *process.Engine
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Context
type Option func(*Context)

func WithLogger(l *zap.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Context) { c.metrics = m }
}

// WithEngine replaces the default process engine
func WithEngine(e *process.Engine) Option {
	return func(c *Context) {
		if e != nil {
			c.engine = e
		}
	}
}

// New creates a context whose KB stack is rooted at root.
func New(root *kb.KnowledgeBase, opts ...Option) *Context {
	c := &Context{
		scopes: NewScopeStack(),
		kbs:    kb.NewStack(root),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.engine == nil {
		c.engine = process.NewEngine(process.WithLogger(c.logger), process.WithMetrics(c.metrics))
	}
	return c
}

func (c *Context) Scopes() *ScopeStack { return c.scopes }
func (c *Context) KBs() *kb.Stack      { return c.kbs }

// KB returns the active knowledge base
func (c *Context) KB() *kb.KnowledgeBase { return c.kbs.Peek() }

// Register binds an executable or other value in the global scope
func (c *Context) Register(name string, v value.Value) {
	c.scopes.DefineGlobal(name, v)
}

// ResolveExecutor finds a function or actor bound to label in scope.
func (c *Context) ResolveExecutor(label string) (actor.Executor, bool) {
	v, ok := c.scopes.Lookup(label)
	if !ok {
		return nil, false
	}
	return v.Executor()
}

// CallFunction invokes f in a scope of its own
func (c *Context) CallFunction(ctx context.Context, f *value.Function, args []value.Value) (value.Value, error) {
	c.scopes.Push(f.Name)
	defer c.popScope()
	return f.Call(ctx, args)
}

// CallActor runs a fresh activation of a with args bound to its formals, or
// to its source concepts when a is anonymous, and returns the values of the
// sink concepts once every sub-actor has run.
func (c *Context) CallActor(ctx context.Context, a *actor.Actor, args []value.Value) ([]value.Value, error) {
	act := a.Copy()
	actuals, err := bindings(args)
	if err != nil {
		return nil, err
	}
	if act.IsAnonymous() {
		err = act.BindSources(actuals)
	} else {
		err = act.BindParameters(actuals)
	}
	if err != nil {
		return nil, err
	}

	c.scopes.Push(act.Name())
	defer c.popScope()

	if err := act.Study(c); err != nil {
		return nil, err
	}
	act.Init()
	c.logger.Debug("actor started", zap.String("actor", act.Name()), zap.Strings("pending", act.Pending()))

	for act.IsExecutable() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sub, ok := act.Next()
		if !ok {
			return nil, domain.StructuralError("execute actor", "'%s' cannot make progress; unbound inputs for %v", act.Name(), act.Pending())
		}
		if err := c.runSubActor(ctx, sub); err != nil {
			return nil, err
		}
	}

	sinks := act.Sinks()
	out := make([]value.Value, len(sinks))
	for i, s := range sinks {
		out[i] = value.ConceptValue(s)
	}
	c.logger.Debug("actor finished", zap.String("actor", act.Name()), zap.Int("sinks", len(out)))
	return out, nil
}

func (c *Context) runSubActor(ctx context.Context, sub *actor.SubActor) error {
	args := make([]value.Value, len(sub.Inputs))
	for i, in := range sub.Inputs {
		args[i] = value.ConceptValue(in)
	}
	c.metrics.SubActor(sub.Label)

	var results []value.Value
	switch exec := sub.Executor.(type) {
	case *value.Function:
		v, err := c.CallFunction(ctx, exec, args)
		if err != nil {
			return err
		}
		results = spread(v, len(sub.Outputs))
	case *actor.Actor:
		vs, err := c.CallActor(ctx, exec, args)
		if err != nil {
			return err
		}
		results = vs
	default:
		return domain.StructuralError("execute actor", "sub-actor '%s' is not executable", sub.Label)
	}

	if len(results) != len(sub.Outputs) {
		return domain.StructuralError("execute actor", "sub-actor '%s' produced %d values for %d outputs", sub.Label, len(results), len(sub.Outputs))
	}
	for i, out := range sub.Outputs {
		if err := value.SetDesignatorValue(out, results[i]); err != nil {
			return err
		}
	}
	return nil
}

// spread distributes a function result over n outputs; a list fans out
// element by element when there is more than one output.
func spread(v value.Value, n int) []value.Value {
	if n > 1 && v.Kind() == value.KindList {
		return v.Items()
	}
	return []value.Value{v}
}

// RunProcess activates p against the current knowledge base with args bound
// to its in formals.
func (c *Context) RunProcess(ctx context.Context, p *process.Process, args []value.Value) (*process.Result, error) {
	actuals, err := bindings(args)
	if err != nil {
		return nil, err
	}
	c.scopes.Push(p.Name)
	defer c.popScope()
	return c.engine.Run(ctx, c.kbs, p, actuals)
}

// OutputValues converts the out parameters of a process run into values
func OutputValues(res *process.Result) map[string]value.Value {
	out := make(map[string]value.Value, len(res.Outputs))
	for name, b := range res.Outputs {
		out[name] = value.FromBinding(b)
	}
	return out
}

func (c *Context) popScope() {
	if err := c.scopes.Pop(); err != nil {
		c.logger.Error("scope stack underflow", zap.Error(err))
	}
}

func bindings(args []value.Value) ([]domain.Binding, error) {
	out := make([]domain.Binding, len(args))
	for i, a := range args {
		b, err := value.ToBinding(a)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
