package algebra

import "pcg/internal/domain"

// Join fuses copies of g1 and g2 at the pair (c1, c2), which are presumed to
// denote the same individual. It returns nil when c1 and c2 are not
// structurally equal. Neither input is modified.
func Join(g1 *domain.Graph, c1 *domain.Concept, g2 *domain.Graph, c2 *domain.Concept) (*domain.Graph, error) {
	if g1 == nil || !g1.Contains(c1) {
		return nil, domain.StructuralError("join", "join concept is not in the first graph")
	}
	if g2 == nil || !g2.Contains(c2) {
		return nil, domain.StructuralError("join", "join concept is not in the second graph")
	}
	if !ConceptsEqual(c1, c2) {
		return nil, nil
	}

	result, m1 := g1.CopyWithMapping(true)
	other, m2 := g2.CopyWithMapping(true)
	if err := result.Absorb(other, map[*domain.Concept]*domain.Concept{m2[c2]: m1[c1]}); err != nil {
		return nil, err
	}
	return result, nil
}

// JoinOnMatch joins g1 and g2 at the first pair of structurally equal
// concepts, scanning g1 then g2 in creation order. It returns nil when no such
// pair exists.
func JoinOnMatch(g1, g2 *domain.Graph) (*domain.Graph, error) {
	if g1.IsBlank() || g2.IsBlank() {
		return nil, nil
	}
	for _, a := range g1.Concepts() {
		for _, b := range g2.Concepts() {
			if ConceptsEqual(a, b) {
				return Join(g1, a, g2, b)
			}
		}
	}
	return nil, nil
}

// JoinAtHead joins g1 and g2 at their first concepts, which must be equal.
func JoinAtHead(g1, g2 *domain.Graph) (*domain.Graph, error) {
	if g1.IsBlank() || g2.IsBlank() {
		return nil, nil
	}
	h1, h2 := g1.Head(), g2.Head()
	if h1 == nil || h2 == nil || !ConceptsEqual(h1, h2) {
		return nil, nil
	}
	return Join(g1, h1, g2, h2)
}

// Add returns a copy of g extended with a copy of extra's comments, relations
// and remaining concepts. A nil or blank extra contributes only its comments.
func Add(g, extra *domain.Graph) *domain.Graph {
	result := g.Copy(true)
	if extra == nil {
		return result
	}
	// extra's relation arguments are appended ahead of its lone concepts
	cp := extra.Copy(true)
	cp.ArgumentsFirst()
	// no replacements, so Absorb cannot fail
	_ = result.Absorb(cp, nil)
	return result
}
