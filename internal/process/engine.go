package process

import (
	"context"
	"fmt"

	"pcg/internal/algebra"
	"pcg/internal/domain"
	"pcg/internal/kb"
	"pcg/internal/metrics"

	"go.uber.org/zap"
)

// DefaultMaxCycles bounds the rule passes of one process run
const DefaultMaxCycles = 1000

// Rule firing outcomes, used as metric labels
const (
	OutcomeFired      = "fired"
	OutcomeIneligible = "ineligible"
)

// Export is a mutation to apply to the enclosing knowledge base
type Export struct {
	Rule    string
	Retract bool
	Graph   *domain.Graph
}

// Outcome is the result of one rule evaluation
type Outcome struct {
	Fired   bool
	Changed bool
	Exports []Export
}

// Result summarises a process run
type Result struct {
	Process string
	Cycles  int
	Firings int
	Exports []Export
	// Outputs holds the bindings of the out parameters that were bound
	Outputs map[string]domain.Binding
	// Final is the process knowledge base as it was when the run ended
	Final *kb.KnowledgeBase
}

// Engine evaluates rules and runs processes
type Engine struct {
	logger    *zap.Logger
	metrics   *metrics.Metrics
	maxCycles int
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records rule firings and process runs on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithMaxCycles bounds the rule passes per run. Values below 1 keep the
// default.
func WithMaxCycles(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxCycles = n
		}
	}
}

// NewEngine creates an engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:    zap.NewNop(),
		maxCycles: DefaultMaxCycles,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Eligible runs the rule's precondition and evaluates its match specs in
// order, stopping at the first that does not hold.
func (e *Engine) Eligible(ctx context.Context, k *kb.KnowledgeBase, r *Rule) (bool, error) {
	if err := r.Precondition.run(ctx, k); err != nil {
		return false, fmt.Errorf("precondition of rule %s: %w", r.Name, err)
	}
	for i, m := range r.Matches {
		if m.Pattern == nil {
			return false, domain.StructuralError("match rule", "rule %s match %d has no pattern", r.Name, i+1)
		}
		found := k.ProjectionMatch(m.Pattern) != nil
		if found == m.Negated {
			return false, nil
		}
	}
	return true, nil
}

// Fire evaluates r once against k and applies its mutations if eligible.
func (e *Engine) Fire(ctx context.Context, k *kb.KnowledgeBase, r *Rule) (Outcome, error) {
	ok, err := e.Eligible(ctx, k, r)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		e.metrics.RuleFiring(r.Name, OutcomeIneligible)
		return Outcome{}, nil
	}

	if err := r.Postcondition.run(ctx, k); err != nil {
		return Outcome{}, fmt.Errorf("postcondition of rule %s: %w", r.Name, err)
	}

	out := Outcome{Fired: true}
	for i, m := range r.Mutations {
		if m.Graph == nil {
			return out, domain.StructuralError("mutate knowledge base", "rule %s mutation %d has no graph", r.Name, i+1)
		}
		g := k.BindCorefVars(m.Graph)

		var changed bool
		if m.Retract {
			changed, err = k.Retract(g, false)
		} else {
			changed, err = k.Assert(g, false)
		}
		if err != nil {
			return out, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		out.Changed = out.Changed || changed

		if m.Export || r.Export.Covers(m.Retract) {
			out.Exports = append(out.Exports, Export{Rule: r.Name, Retract: m.Retract, Graph: g})
		}
	}

	e.metrics.RuleFiring(r.Name, OutcomeFired)
	e.logger.Debug("rule fired",
		zap.String("rule", r.Name),
		zap.String("kb", k.Name()),
		zap.Bool("changed", out.Changed),
		zap.Int("exports", len(out.Exports)))
	return out, nil
}

// Run activates p on a clone of the active knowledge base of stack. The
// in parameters are recorded as coreference variables, the initial block
// runs, and then the rules are passed over in order, each eligible rule
// firing, until a pass changes nothing. The clone is popped on every exit
// path; on success the exports are applied to the knowledge base below it.
func (e *Engine) Run(ctx context.Context, stack *kb.Stack, p *Process, actuals []domain.Binding) (*Result, error) {
	res, err := e.run(ctx, stack, p, actuals)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	e.metrics.ProcessRun(p.Name, outcome)
	return res, err
}

func (e *Engine) run(ctx context.Context, stack *kb.Stack, p *Process, actuals []domain.Binding) (*Result, error) {
	inputs := p.Inputs()
	if len(actuals) != len(inputs) {
		return nil, domain.StructuralError("run process", "process %s expects %d arguments, got %d", p.Name, len(inputs), len(actuals))
	}

	parent := stack.Peek()
	active := stack.Push(parent.Clone(p.Name))
	defer func() {
		if _, err := stack.Pop(); err != nil {
			e.logger.Error("knowledge base stack underflow", zap.String("process", p.Name), zap.Error(err))
		}
	}()

	for i, name := range inputs {
		active.RecordCoref(name, actuals[i])
	}

	log := e.logger.With(zap.String("process", p.Name))
	log.Debug("process started", zap.Int("rules", len(p.Rules)), zap.Int("canon", active.Len()))

	if err := p.Initial.run(ctx, active); err != nil {
		return nil, fmt.Errorf("initial block of process %s: %w", p.Name, err)
	}

	res := &Result{Process: p.Name, Final: active}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if res.Cycles >= e.maxCycles {
			return nil, domain.StructuralError("run process", "process %s did not quiesce after %d cycles", p.Name, e.maxCycles)
		}
		res.Cycles++

		changed := false
		for _, r := range p.Rules {
			out, err := e.Fire(ctx, active, r)
			if err != nil {
				return nil, err
			}
			if out.Fired {
				res.Firings++
			}
			changed = changed || out.Changed
			for _, ex := range out.Exports {
				res.Exports = appendExport(res.Exports, ex)
			}
		}
		if !changed {
			break
		}
	}

	for _, ex := range res.Exports {
		var err error
		if ex.Retract {
			_, err = parent.Retract(ex.Graph, false)
		} else {
			_, err = parent.Assert(ex.Graph, false)
		}
		if err != nil {
			return nil, fmt.Errorf("export from process %s: %w", p.Name, err)
		}
	}

	for _, name := range p.Outputs() {
		if b, ok := active.Coref(name); ok {
			if res.Outputs == nil {
				res.Outputs = make(map[string]domain.Binding)
			}
			res.Outputs[name] = b
		}
	}

	log.Info("process finished",
		zap.Int("cycles", res.Cycles),
		zap.Int("firings", res.Firings),
		zap.Int("exports", len(res.Exports)))
	return res, nil
}

// appendExport skips ex when the last export of an equal graph already has
// the same effect, so repeated firings across passes export once.
func appendExport(exports []Export, ex Export) []Export {
	for i := len(exports) - 1; i >= 0; i-- {
		if algebra.Equal(exports[i].Graph, ex.Graph) {
			if exports[i].Retract == ex.Retract {
				return exports
			}
			break
		}
	}
	return append(exports, ex)
}
