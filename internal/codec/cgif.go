package codec

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"pcg/internal/domain"
)

// CGIFCodec reads and writes the textual graph notation:
//
//	;comment; [Type *label: @quantifier designator descriptor...]
//	(Relation ?a ?b) <Actor ?in1 ?in2 | ?out>
type CGIFCodec struct {
	// SuppressComments drops graph comments on export
	SuppressComments bool
}

// NewCGIFCodec creates a new CGIF codec
func NewCGIFCodec() *CGIFCodec {
	return &CGIFCodec{}
}

// Format returns the codec format identifier
func (c *CGIFCodec) Format() string {
	return "cgif"
}

// Parse reads one graph. Unknown type labels are registered in vocab when it
// is non-nil, and relation arities are checked against declared valences.
func (c *CGIFCodec) Parse(r io.Reader, vocab *domain.Vocabulary) (*domain.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.IOError("read cgif", err)
	}
	return ParseCGIF(string(data), vocab)
}

// Export writes g on a single line followed by a newline
func (c *CGIFCodec) Export(g *domain.Graph, w io.Writer) error {
	if _, err := io.WriteString(w, c.FormatGraph(g)+"\n"); err != nil {
		return domain.IOError("write cgif", err)
	}
	return nil
}

// FormatGraph renders g as CGIF text.
func (c *CGIFCodec) FormatGraph(g *domain.Graph) string {
	var b strings.Builder
	writeGraph(&b, g, !c.SuppressComments)
	return b.String()
}

// ParseCGIF parses src into a graph.
func ParseCGIF(src string, vocab *domain.Vocabulary) (*domain.Graph, error) {
	tokens, err := newLexer(src).scan()
	if err != nil {
		return nil, domain.ParseError("parse cgif", err)
	}
	g, err := newParser(tokens, vocab).parseGraph()
	if err != nil {
		return nil, domain.ParseError("parse cgif", err)
	}
	if vocab != nil {
		if err := g.Validate(vocab.Relations); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// MustParseCGIF is ParseCGIF that panics on error, for fixed literals.
func MustParseCGIF(src string, vocab *domain.Vocabulary) *domain.Graph {
	g, err := ParseCGIF(src, vocab)
	if err != nil {
		panic(fmt.Sprintf("cgif: %v", err))
	}
	return g
}

// FormatCGIF renders g with comments.
func FormatCGIF(g *domain.Graph) string {
	var b strings.Builder
	writeGraph(&b, g, true)
	return b.String()
}

// FormatConcept renders a single concept without a coreference label.
func FormatConcept(c *domain.Concept) string {
	return formatConcept(c, "", true)
}

func writeGraph(b *strings.Builder, g *domain.Graph, comments bool) {
	if g == nil {
		return
	}
	items := make([]string, 0)
	if comments {
		for _, text := range g.Comments() {
			items = append(items, ";"+escapeComment(text)+";")
		}
	}

	labels := labelConcepts(g)
	for _, c := range g.Concepts() {
		items = append(items, formatConcept(c, labels[c], comments))
	}
	for _, r := range g.Relations() {
		items = append(items, formatRelation(r, labels))
	}
	b.WriteString(strings.Join(items, " "))
}

// labelConcepts assigns a coreference label to every concept used as a
// relation argument, preferring names from the graph's coreference sets.
func labelConcepts(g *domain.Graph) map[*domain.Concept]string {
	used := make(map[*domain.Concept]bool)
	for _, r := range g.Relations() {
		for _, a := range r.Args() {
			used[a] = true
		}
	}

	labels := make(map[*domain.Concept]string)
	taken := make(map[string]bool)
	for _, s := range g.CoreferenceSets() {
		for _, c := range s.Concepts {
			if _, ok := labels[c]; ok || taken[s.Name] || !validLabel(s.Name) {
				continue
			}
			labels[c] = s.Name
			taken[s.Name] = true
		}
	}

	n := 0
	for _, c := range g.Concepts() {
		if !used[c] {
			continue
		}
		if _, ok := labels[c]; ok {
			continue
		}
		var name string
		for {
			n++
			name = "c" + strconv.Itoa(n)
			if !taken[name] {
				break
			}
		}
		labels[c] = name
		taken[name] = true
	}
	return labels
}

func validLabel(s string) bool {
	if s == "" || !isAlpha(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isAlphaNum(s[i]) {
			return false
		}
	}
	return true
}

func formatConcept(c *domain.Concept, label string, comments bool) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(c.Type())
	if label != "" {
		b.WriteString(" *")
		b.WriteString(label)
	}

	var parts []string
	if q := c.Quantifier(); !q.IsNone() {
		parts = append(parts, q.String())
	}
	if d := c.Designator(); !d.IsNone() {
		parts = append(parts, formatDesignator(d))
	}
	if desc := c.Descriptor(); desc != nil && (!desc.IsBlank() || (comments && len(desc.Comments()) > 0)) {
		var nested strings.Builder
		writeGraph(&nested, desc, comments)
		parts = append(parts, nested.String())
	}
	if len(parts) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(parts, " "))
	}
	b.WriteString("]")
	return b.String()
}

func formatDesignator(d domain.Designator) string {
	if d.Kind() == domain.DesignatorName && !d.IsVariable() {
		return "'" + escapeName(d.Text()) + "'"
	}
	return d.String()
}

func formatRelation(r *domain.Relation, labels map[*domain.Concept]string) string {
	ref := func(cs []*domain.Concept) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = "?" + labels[c]
		}
		return out
	}
	if r.IsActor() {
		in := strings.Join(ref(r.Inputs()), " ")
		out := strings.Join(ref(r.Outputs()), " ")
		return strings.TrimSpace("<"+r.Type()+" "+in) + " | " + out + ">"
	}
	return "(" + r.Type() + " " + strings.Join(ref(r.Args()), " ") + ")"
}
