package actor

import "pcg/internal/domain"

// Classification partitions the concepts of a graph by how actor relations
// use them. Sinks are produced but never consumed, sources are consumed but
// never produced, intermediates are both. Concepts no actor touches appear in
// none of the lists. Each list follows the graph's concept order.
type Classification struct {
	Sources       []*domain.Concept
	Sinks         []*domain.Concept
	Intermediates []*domain.Concept
}

type ioCounts struct {
	in, out int
}

// Classify counts actor input and output arcs per concept.
func Classify(g *domain.Graph) Classification {
	counts := make(map[*domain.Concept]*ioCounts)
	for _, c := range g.Concepts() {
		counts[c] = &ioCounts{}
	}
	for _, a := range g.Actors() {
		for _, c := range a.Inputs() {
			counts[c].in++
		}
		for _, c := range a.Outputs() {
			counts[c].out++
		}
	}

	var cl Classification
	for _, c := range g.Concepts() {
		n := counts[c]
		switch {
		case n.in == 0 && n.out >= 1:
			cl.Sinks = append(cl.Sinks, c)
		case n.in >= 1 && n.out == 0:
			cl.Sources = append(cl.Sources, c)
		case n.in >= 1 && n.out >= 1:
			cl.Intermediates = append(cl.Intermediates, c)
		}
	}
	return cl
}

// Sources returns the concepts only read by actors
func Sources(g *domain.Graph) []*domain.Concept { return Classify(g).Sources }

// Sinks returns the concepts only written by actors
func Sinks(g *domain.Graph) []*domain.Concept { return Classify(g).Sinks }
