package algebra

import (
	"strconv"
	"strings"

	"pcg/internal/domain"
)

// Equal reports structural equality. Two blank graphs are equal. Otherwise the
// relation multisets must match under the positional concept correspondence
// and every concept must equal its counterpart at the same position.
// Equal is total, reflexive and symmetric; nil is treated as blank.
func Equal(g1, g2 *domain.Graph) bool {
	if g1.IsBlank() && g2.IsBlank() {
		return true
	}
	if g1.IsBlank() != g2.IsBlank() {
		return false
	}

	c1, c2 := g1.Concepts(), g2.Concepts()
	r1, r2 := g1.Relations(), g2.Relations()
	if len(c1) != len(c2) || len(r1) != len(r2) {
		return false
	}

	if !relationsMatch(g1, r1, g2, r2) {
		return false
	}

	for i := range c1 {
		if !ConceptsEqual(c1[i], c2[i]) {
			return false
		}
	}
	return true
}

// ConceptsEqual compares type label, designator, quantifier and descriptor.
// A missing descriptor equals a blank one.
func ConceptsEqual(a, b *domain.Concept) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Type() != b.Type() {
		return false
	}
	if !a.Designator().Equal(b.Designator()) {
		return false
	}
	if !a.Quantifier().Equal(b.Quantifier()) {
		return false
	}
	return Equal(a.Descriptor(), b.Descriptor())
}

// relationsMatch pairs relations as a multiset keyed by label, actor flag and
// the positions and directions of their arguments.
func relationsMatch(g1 *domain.Graph, r1 []*domain.Relation, g2 *domain.Graph, r2 []*domain.Relation) bool {
	counts := make(map[string]int, len(r1))
	for _, r := range r1 {
		counts[signature(g1, r)]++
	}
	for _, r := range r2 {
		key := signature(g2, r)
		if counts[key] == 0 {
			return false
		}
		counts[key]--
	}
	return true
}

func signature(g *domain.Graph, r *domain.Relation) string {
	var b strings.Builder
	b.WriteString(r.Type())
	if r.IsActor() {
		b.WriteString("<>")
	}
	dirs := r.Directions()
	for i, a := range r.Args() {
		b.WriteByte(' ')
		b.WriteString(dirs[i].String())
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(g.IndexOf(a)))
	}
	return b.String()
}
