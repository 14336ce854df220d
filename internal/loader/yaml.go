package loader

import (
	"fmt"
	"os"
	"strings"

	"pcg/internal/codec"
	"pcg/internal/domain"
	"pcg/internal/kb"
	"pcg/internal/process"

	"gopkg.in/yaml.v3"
)

// KnowledgeYAML represents the YAML file structure
type KnowledgeYAML struct {
	Name          string        `yaml:"name"`
	ConceptTypes  []TypeYAML    `yaml:"concept_types,omitempty"`
	RelationTypes []TypeYAML    `yaml:"relation_types,omitempty"`
	Graphs        []string      `yaml:"graphs,omitempty"`
	Processes     []ProcessYAML `yaml:"processes,omitempty"`
}

// TypeYAML declares one type and its immediate supertypes
type TypeYAML struct {
	Label      string   `yaml:"label"`
	Supertypes []string `yaml:"supertypes,omitempty"`
	Valence    int      `yaml:"valence,omitempty"`
}

// ProcessYAML represents a process definition
type ProcessYAML struct {
	Name    string       `yaml:"name"`
	Formals []FormalYAML `yaml:"formals,omitempty"`
	Rules   []RuleYAML   `yaml:"rules"`
}

// FormalYAML is a process parameter; out parameters are read back after a run
type FormalYAML struct {
	Name string `yaml:"name"`
	Out  bool   `yaml:"out,omitempty"`
}

// RuleYAML represents one rule of a process
type RuleYAML struct {
	Name   string       `yaml:"name"`
	Export string       `yaml:"export,omitempty"` // all, asserts, retracts
	Match  []MatchYAML  `yaml:"match,omitempty"`
	Mutate []MutateYAML `yaml:"mutate,omitempty"`
}

// MatchYAML is a match spec; a negated spec holds when nothing matches
type MatchYAML struct {
	Graph   string `yaml:"graph"`
	Negated bool   `yaml:"negated,omitempty"`
}

// MutateYAML asserts or retracts a graph
type MutateYAML struct {
	Graph   string `yaml:"graph"`
	Retract bool   `yaml:"retract,omitempty"`
	Export  bool   `yaml:"export,omitempty"`
}

// Knowledge is a loaded knowledge file: a populated knowledge base and the
// processes defined against it.
type Knowledge struct {
	Name      string
	KB        *kb.KnowledgeBase
	Processes []*process.Process
}

// Process returns the process called name
func (k *Knowledge) Process(name string) (*process.Process, bool) {
	for _, p := range k.Processes {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// LoadFile loads a knowledge file from disk
func LoadFile(path string, opts ...kb.Option) (*Knowledge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.IOError("load knowledge", fmt.Errorf("failed to read file: %w", err))
	}

	return Parse(data, opts...)
}

// Parse builds knowledge from YAML bytes
func Parse(data []byte, opts ...kb.Option) (*Knowledge, error) {
	var y KnowledgeYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, domain.ParseError("load knowledge", fmt.Errorf("failed to parse YAML: %w", err))
	}

	return convertYAMLToKnowledge(&y, opts...)
}

func convertYAMLToKnowledge(y *KnowledgeYAML, opts ...kb.Option) (*Knowledge, error) {
	name := y.Name
	if name == "" {
		name = "root"
	}
	k := kb.New(name, opts...)
	vocab := k.Vocabulary()

	if err := declareTypes(vocab.Concepts, y.ConceptTypes); err != nil {
		return nil, fmt.Errorf("concept_types: %w", err)
	}
	if err := declareTypes(vocab.Relations, y.RelationTypes); err != nil {
		return nil, fmt.Errorf("relation_types: %w", err)
	}

	for i, src := range y.Graphs {
		g, err := parseGraph(src, vocab)
		if err != nil {
			return nil, fmt.Errorf("graphs[%d]: %w", i, err)
		}
		if _, err := k.Assert(g, false); err != nil {
			return nil, fmt.Errorf("graphs[%d]: %w", i, err)
		}
	}

	knowledge := &Knowledge{Name: name, KB: k}
	seen := make(map[string]bool, len(y.Processes))
	for i, py := range y.Processes {
		if py.Name == "" {
			return nil, domain.StructuralError("load knowledge", "processes[%d] has no name", i)
		}
		if seen[py.Name] {
			return nil, domain.StructuralError("load knowledge", "process %s defined twice", py.Name)
		}
		seen[py.Name] = true
		p, err := convertProcess(&py, vocab)
		if err != nil {
			return nil, fmt.Errorf("process %s: %w", py.Name, err)
		}
		knowledge.Processes = append(knowledge.Processes, p)
	}

	return knowledge, nil
}

// declareTypes registers every declared label before linking so supertypes
// may be listed in any order. A supertype that is neither declared nor
// built in is rejected.
func declareTypes(h *domain.TypeHierarchy, types []TypeYAML) error {
	for _, ty := range types {
		if ty.Label == "" {
			return domain.StructuralError("declare type", "type without a label")
		}
		h.AddType(ty.Label)
	}
	for _, ty := range types {
		for _, super := range ty.Supertypes {
			if err := h.LinkSupertype(ty.Label, super); err != nil {
				return err
			}
		}
		if ty.Valence > 0 {
			if err := h.SetValence(ty.Label, ty.Valence); err != nil {
				return err
			}
		}
	}
	return nil
}

func convertProcess(py *ProcessYAML, vocab *domain.Vocabulary) (*process.Process, error) {
	p := &process.Process{Name: py.Name}
	for _, f := range py.Formals {
		p.Formals = append(p.Formals, process.Formal{Name: f.Name, Out: f.Out})
	}

	for i, ry := range py.Rules {
		r := &process.Rule{Name: ry.Name}
		if r.Name == "" {
			r.Name = fmt.Sprintf("%s#%d", py.Name, i+1)
		}

		policy, err := parsePolicy(ry.Export)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		r.Export = policy

		for j, m := range ry.Match {
			g, err := parseGraph(m.Graph, vocab)
			if err != nil {
				return nil, fmt.Errorf("rule %s match[%d]: %w", r.Name, j, err)
			}
			r.Matches = append(r.Matches, process.MatchSpec{Pattern: g, Negated: m.Negated})
		}
		for j, m := range ry.Mutate {
			g, err := parseGraph(m.Graph, vocab)
			if err != nil {
				return nil, fmt.Errorf("rule %s mutate[%d]: %w", r.Name, j, err)
			}
			r.Mutations = append(r.Mutations, process.MutateSpec{Graph: g, Retract: m.Retract, Export: m.Export})
		}
		p.Rules = append(p.Rules, r)
	}
	return p, nil
}

func parsePolicy(s string) (process.ExportPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return process.ExportPolicy{}, nil
	case "all":
		return process.ExportPolicy{All: true}, nil
	case "asserts":
		return process.ExportPolicy{Asserts: true}, nil
	case "retracts":
		return process.ExportPolicy{Retracts: true}, nil
	}
	return process.ExportPolicy{}, domain.StructuralError("export policy", "unknown export policy %q (known: all, asserts, retracts)", s)
}

func parseGraph(src string, vocab *domain.Vocabulary) (*domain.Graph, error) {
	if strings.TrimSpace(src) == "" {
		return nil, domain.StructuralError("parse graph", "empty graph")
	}
	return codec.ParseCGIF(src, vocab)
}
