package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"pcg/internal/algebra"
	"pcg/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roundTripSources = map[string]string{
	"literal":    `[Number *a: 3] [Number *b: 4.5] (Less ?a ?b)`,
	"string":     `[String *s: "hello \"world\""] [Person *p: 'O\'Brien'] (Name ?p ?s)`,
	"marker":     `[Person *p: #42] [Dog *d] (Owns ?p ?d)`,
	"variable":   `[Number *x: *total] [Number *y: ?total] (Same ?x ?y)`,
	"quantified": `[Cat *c: @3] [Fish *f: @every] [Dog *d: @pack{"rex", "fido"}] (Eats ?c ?f) (Chases ?d ?c)`,
	"boolean":    `[Boolean: true] [Boolean: false]`,
	"descriptor": `[Person *p: 'Tom'] [Proposition *q: [Cat *c: 'Felix'] [Mat *m] (On ?c ?m)] (Believes ?p ?q)`,
	"actor":      `[Number *a: 1] [Number *b: 2] [Number *s] <Add ?a ?b | ?s>`,
	"comments":   `;a comment; [Thing]`,
	"inline":     `(Owns [Person: 'Ann'] [Cat])`,
}

func TestCGIFRoundTrip(t *testing.T) {
	for name, src := range roundTripSources {
		t.Run(name, func(t *testing.T) {
			g, err := ParseCGIF(src, domain.NewVocabulary())
			require.NoError(t, err)

			text := FormatCGIF(g)
			again, err := ParseCGIF(text, domain.NewVocabulary())
			require.NoError(t, err, "re-parse of %q", text)

			assert.True(t, algebra.Equal(g, again), "round trip changed the graph:\n%s\n%s", src, text)
			assert.Equal(t, g.Comments(), again.Comments())
		})
	}
}

func TestParseCGIFStructure(t *testing.T) {
	vocab := domain.NewVocabulary()
	g, err := ParseCGIF(`[Person *p: 'Tom'] [Proposition *q: [Cat *c] [Mat *m] (On ?c ?m)] (Believes ?p ?q)`, vocab)
	require.NoError(t, err)

	require.Len(t, g.Concepts(), 2)
	require.Len(t, g.Relations(), 1)

	p, q := g.Concepts()[0], g.Concepts()[1]
	assert.Equal(t, "Person", p.Type())
	assert.Equal(t, domain.Name("Tom"), p.Designator())
	assert.True(t, q.HasDescriptor())
	assert.Len(t, q.Descriptor().Relations(), 1)
	assert.Same(t, q, q.Descriptor().Parent())

	rel := g.Relations()[0]
	assert.Equal(t, []*domain.Concept{p}, rel.Inputs())
	assert.Equal(t, []*domain.Concept{q}, rel.Outputs())

	for _, label := range []string{"Person", "Proposition", "Cat", "Mat"} {
		assert.True(t, vocab.Concepts.Has(label), label)
	}
	assert.True(t, vocab.Relations.Has("On"))
	assert.True(t, vocab.Relations.Has("Believes"))
}

func TestParseCGIFVariables(t *testing.T) {
	g, err := ParseCGIF(`[Number: *x] [Number: ?x]`, nil)
	require.NoError(t, err)

	def, ref := g.Concepts()[0], g.Concepts()[1]
	assert.True(t, def.HasVariable())
	assert.True(t, ref.HasVariable())
	assert.Equal(t, def.VariableKey(), ref.VariableKey())
}

func TestParseCGIFActor(t *testing.T) {
	g, err := ParseCGIF(`[Number *a: 1] [Number *b: 2] [Number *s] <Add ?a ?b | ?s>`, nil)
	require.NoError(t, err)

	actors := g.Actors()
	require.Len(t, actors, 1)
	assert.Len(t, actors[0].Inputs(), 2)
	assert.Len(t, actors[0].Outputs(), 1)
}

func TestParseCGIFErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unterminated concept", `[Cat`, "expected"},
		{"undefined label", `[Cat *c] (On ?c ?m)`, "undefined coreference label '?m'"},
		{"duplicate label", `[Cat *c] [Mat *c]`, "defined twice"},
		{"empty relation", `(On)`, "has no arguments"},
		{"unterminated comment", `;oops [Cat]`, "unterminated comment"},
		{"unterminated string", `[String: "abc]`, "unterminated"},
		{"bad quantifier", `[Cat: @1.5]`, "non-negative integer"},
		{"stray token", `]`, "unexpected"},
		{"bad character", `[Cat: $]`, "unexpected character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCGIF(tt.src, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrParse))
			assert.Contains(t, err.Error(), tt.msg)

			var syn *SyntaxError
			assert.True(t, errors.As(err, &syn))
			assert.Positive(t, syn.Line)
		})
	}
}

func TestParseCGIFValence(t *testing.T) {
	vocab := domain.NewVocabulary()
	vocab.Relations.AddType("On")
	require.NoError(t, vocab.Relations.SetValence("On", 2))

	_, err := ParseCGIF(`(On [Cat])`, vocab)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStructural))

	_, err = ParseCGIF(`(On [Cat] [Mat])`, vocab)
	assert.NoError(t, err)
}

func TestCGIFSuppressComments(t *testing.T) {
	g := MustParseCGIF(`;note; [Cat]`, nil)

	c := NewCGIFCodec()
	assert.Equal(t, ";note; [Cat]", c.FormatGraph(g))

	c.SuppressComments = true
	assert.Equal(t, "[Cat]", c.FormatGraph(g))
}

func TestCGIFCommentEscapes(t *testing.T) {
	g := MustParseCGIF(`;a\; b \\ c; [Cat]`, nil)
	require.Equal(t, []string{`a; b \ c`}, g.Comments())

	text := FormatCGIF(g)
	assert.Equal(t, `;a\; b \\ c; [Cat]`, text)
	again := MustParseCGIF(text, nil)
	assert.Equal(t, g.Comments(), again.Comments())

	_, err := ParseCGIF(`;open\; [Cat]`, nil)
	assert.Error(t, err, "an escaped delimiter does not close the comment")
}

func TestStructuredRoundTrip(t *testing.T) {
	codecs := []Codec{NewYAMLCodec(), NewJSONCodec()}

	for _, c := range codecs {
		for name, src := range roundTripSources {
			t.Run(c.Format()+"/"+name, func(t *testing.T) {
				g := MustParseCGIF(src, nil)

				var buf bytes.Buffer
				require.NoError(t, c.Export(g, &buf))

				again, err := c.Parse(&buf, domain.NewVocabulary())
				require.NoError(t, err, buf.String())
				assert.True(t, algebra.Equal(g, again), "%s round trip changed the graph:\n%s", c.Format(), buf.String())
			})
		}
	}
}

func TestJSONRoundTripKeepsDocument(t *testing.T) {
	c := NewJSONCodec()
	for name, src := range roundTripSources {
		t.Run(name, func(t *testing.T) {
			g := MustParseCGIF(src, nil)

			var buf bytes.Buffer
			require.NoError(t, c.Export(g, &buf))
			again, err := c.Parse(&buf, nil)
			require.NoError(t, err)

			if diff := cmp.Diff(toDoc(g, true), toDoc(again, true)); diff != "" {
				t.Errorf("document changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStructuredParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		msg  string
	}{
		{"unknown concept", "concepts:\n  - {id: a, type: Cat}\nrelations:\n  - {type: On, inputs: [a], outputs: [b]}\n", "unknown concept id"},
		{"missing type", "concepts:\n  - {id: a}\n", "has no type"},
		{"duplicate id", "concepts:\n  - {id: a, type: Cat}\n  - {id: a, type: Mat}\n", "duplicate concept id"},
		{"two outputs", "concepts:\n  - {id: a, type: Cat}\n  - {id: b, type: Mat}\nrelations:\n  - {type: On, outputs: [a, b]}\n", "exactly one output"},
		{"bad designator", "concepts:\n  - {id: a, type: Cat, designator: {kind: weird, value: x}}\n", "unknown designator kind"},
		{"malformed", "concepts: [", "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYAMLCodec().Parse(strings.NewReader(tt.doc), nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrParse))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestYAMLLiteralKinds(t *testing.T) {
	doc := `
concepts:
  - id: n
    type: Number
    designator: {kind: literal, value: 7}
  - id: s
    type: String
    designator: {kind: literal, value: seven}
  - id: b
    type: Boolean
    designator: {kind: literal, value: true}
`
	g, err := NewYAMLCodec().Parse(strings.NewReader(doc), nil)
	require.NoError(t, err)

	cs := g.Concepts()
	require.Len(t, cs, 3)
	assert.Equal(t, domain.NumberLiteral(7), cs[0].Designator())
	assert.Equal(t, domain.StringLiteral("seven"), cs[1].Designator())
	assert.Equal(t, domain.BoolLiteral(true), cs[2].Designator())
}

func TestByFormat(t *testing.T) {
	for _, f := range Formats() {
		c, err := ByFormat(f)
		require.NoError(t, err)
		assert.Equal(t, f, c.Format())
	}

	_, err := ByFormat("xml")
	assert.Error(t, err)
}

func TestNewAppliesCommentSuppression(t *testing.T) {
	g, err := ParseCGIF(`;note; [Person: 'Ann']`, nil)
	require.NoError(t, err)

	for _, f := range Formats() {
		c, err := New(f, true)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, c.Export(g, &buf))
		assert.NotContains(t, buf.String(), "note", f)
	}

	_, err = New("xml", false)
	assert.Error(t, err)
}
