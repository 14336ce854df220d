package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pcg/internal/codec"
	"pcg/internal/domain"
	"pcg/internal/kb"
	"pcg/internal/process"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const family = `
name: family
concept_types:
  - label: Person
    supertypes: [Entity]
  - label: Entity
relation_types:
  - label: Parent
    valence: 2
  - label: Ancestor
    valence: 2
graphs:
  - "[Person *a: 'Ann'] [Person *b: 'Bob'] (Parent ?a ?b)"
  - "[Person *b: 'Bob'] [Person *c: 'Cy'] (Parent ?b ?c)"
processes:
  - name: ancestry
    formals:
      - name: who
        out: true
    rules:
      - name: derive
        match:
          - graph: "[Person *x: *p] [Person *y: *c] (Parent ?x ?y)"
        mutate:
          - graph: "[Person *x: ?p] [Person *y: ?c] (Ancestor ?x ?y)"
            export: true
      - name: orphan
        export: asserts
        match:
          - graph: "[Person *x] [Person *y] (Parent ?x ?y)"
            negated: true
`

func TestParseKnowledge(t *testing.T) {
	k, err := Parse([]byte(family))
	require.NoError(t, err)

	assert.Equal(t, "family", k.Name)
	assert.Equal(t, "family", k.KB.Name())
	assert.Equal(t, 2, k.KB.Len())

	concepts := k.KB.Vocabulary().Concepts
	assert.True(t, concepts.IsProperSubtypeOf("Person", "Entity"), "supertypes may be declared after use")
	parent, ok := k.KB.Vocabulary().Relations.Lookup("Parent")
	require.True(t, ok)
	assert.Equal(t, 2, parent.Valence())

	require.Len(t, k.Processes, 1)
	p, ok := k.Process("ancestry")
	require.True(t, ok)
	assert.Equal(t, []string{"who"}, p.Outputs())
	require.Len(t, p.Rules, 2)
	assert.Equal(t, "derive", p.Rules[0].Name)
	assert.True(t, p.Rules[0].Mutations[0].Export)
	assert.True(t, p.Rules[1].Matches[0].Negated)
	assert.Equal(t, process.ExportPolicy{Asserts: true}, p.Rules[1].Export)

	_, ok = k.Process("missing")
	assert.False(t, ok)
}

func TestLoadedProcessRuns(t *testing.T) {
	k, err := Parse([]byte(family))
	require.NoError(t, err)
	p, _ := k.Process("ancestry")

	res, err := process.NewEngine().Run(context.Background(), kb.NewStack(k.KB), p, nil)
	require.NoError(t, err)
	assert.Len(t, res.Exports, 1, "first-match projection derives one ancestor per pass")

	want, err := codec.ParseCGIF(`[Person *x: 'Ann'] [Person *y: 'Bob'] (Ancestor ?x ?y)`, k.KB.Vocabulary())
	require.NoError(t, err)
	assert.True(t, k.KB.ExactMatch(want))
}

func TestParseKnowledgeErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		kind    error
		message string
	}{
		{"bad yaml", "graphs: [", domain.ErrParse, "failed to parse YAML"},
		{"bad cgif", "graphs:\n  - \"[Person\"\n", domain.ErrParse, "graphs[0]"},
		{"valence", "relation_types:\n  - label: Parent\n    valence: 2\ngraphs:\n  - \"(Parent [A])\"\n", domain.ErrStructural, "graphs[0]"},
		{"undeclared supertype", "concept_types:\n  - label: Dog\n    supertypes: [Animl]\n", domain.ErrStructural, "supertype 'Animl' of 'Dog'"},
		{"cycle", "concept_types:\n  - label: A\n    supertypes: [B]\n  - label: B\n    supertypes: [A]\n", domain.ErrStructural, "concept_types"},
		{"unnamed process", "processes:\n  - rules: []\n", domain.ErrStructural, "has no name"},
		{"duplicate process", "processes:\n  - name: p\n  - name: p\n", domain.ErrStructural, "defined twice"},
		{"policy", "processes:\n  - name: p\n    rules:\n      - export: some\n", domain.ErrStructural, "unknown export policy"},
		{"empty pattern", "processes:\n  - name: p\n    rules:\n      - match:\n          - graph: \"\"\n", domain.ErrStructural, "p#1 match[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "family.yaml")
	require.NoError(t, os.WriteFile(path, []byte(family), 0644))

	k, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, k.KB.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, domain.ErrIO))
}
