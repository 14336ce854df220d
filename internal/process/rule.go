package process

import (
	"context"

	"pcg/internal/domain"
	"pcg/internal/kb"
)

// Block is an action supplied by the caller, run against the active
// knowledge base. A nil Block does nothing.
type Block func(ctx context.Context, k *kb.KnowledgeBase) error

func (b Block) run(ctx context.Context, k *kb.KnowledgeBase) error {
	if b == nil {
		return nil
	}
	return b(ctx, k)
}

// MatchSpec is one rule condition
type MatchSpec struct {
	Pattern *domain.Graph
	Negated bool
}

// MutateSpec is one rule action
type MutateSpec struct {
	Graph   *domain.Graph
	Retract bool
	Export  bool
}

// ExportPolicy marks mutations for export regardless of their own flag.
type ExportPolicy struct {
	All      bool
	Asserts  bool
	Retracts bool
}

// Covers reports whether the policy exports a mutation of the given kind
func (p ExportPolicy) Covers(retract bool) bool {
	if p.All {
		return true
	}
	if retract {
		return p.Retracts
	}
	return p.Asserts
}

// Rule is a guarded set of knowledge base mutations
type Rule struct {
	Name          string
	Precondition  Block
	Matches       []MatchSpec
	Postcondition Block
	Mutations     []MutateSpec
	Export        ExportPolicy
}

// Formal is a process parameter. In parameters are bound from the actuals
// before the initial block; out parameters are read back from the
// coreference variables when the process finishes.
type Formal struct {
	Name string
	Out  bool
}

// Process is a named rule set with its parameters and initial block
type Process struct {
	Name    string
	Formals []Formal
	Initial Block
	Rules   []*Rule
}

// Inputs returns the names of the in parameters in order
func (p *Process) Inputs() []string {
	var names []string
	for _, f := range p.Formals {
		if !f.Out {
			names = append(names, f.Name)
		}
	}
	return names
}

// Outputs returns the names of the out parameters in order
func (p *Process) Outputs() []string {
	var names []string
	for _, f := range p.Formals {
		if f.Out {
			names = append(names, f.Name)
		}
	}
	return names
}
