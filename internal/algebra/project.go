package algebra

import "pcg/internal/domain"

// Project applies filter to target and returns the restricted copy of filter,
// or nil when no projection exists.
//
// Each target relation is paired with the first compatible filter relation;
// alternatives are not searched when a later restriction fails. The number of
// paired target relations must be non-zero and equal to the smaller of the two
// relation counts. Variables bound while restricting are reported to rec.
func Project(v *domain.Vocabulary, target, filter *domain.Graph, rec CorefRecorder) *domain.Graph {
	if target == nil || filter == nil {
		return nil
	}
	targetRels := target.Relations()
	filterRels := filter.Relations()

	matched := make([]int, len(targetRels))
	matches := 0
	for i, t := range targetRels {
		matched[i] = -1
		for j, f := range filterRels {
			if relationsCompatible(v, f, t) {
				matched[i] = j
				matches++
				break
			}
		}
	}

	least := min(len(targetRels), len(filterRels))
	if matches == 0 || matches != least {
		return nil
	}

	projection := filter.Copy(true)
	projRels := projection.Relations()
	for i, j := range matched {
		if j < 0 {
			continue
		}
		t, p := targetRels[i], projRels[j]
		if v.Relations.IsProperSubtypeOf(t.Type(), p.Type()) {
			if err := p.SetType(t.Type(), v.Relations); err != nil {
				return nil
			}
		}
		pArgs, tArgs := p.Args(), t.Args()
		for k := range pArgs {
			if ConceptsEqual(pArgs[k], tArgs[k]) {
				continue
			}
			if !Restrict(v.Concepts, pArgs[k], tArgs[k], rec) {
				return nil
			}
		}
	}
	return projection
}

// relationsCompatible reports whether f is the same type as or a supertype of
// t, with matching input and output signatures.
func relationsCompatible(v *domain.Vocabulary, f, t *domain.Relation) bool {
	if !v.Relations.IsSubtypeOf(t.Type(), f.Type()) {
		return false
	}
	if !conceptsCompatible(v.Concepts, f.Inputs(), t.Inputs()) {
		return false
	}
	return conceptsCompatible(v.Concepts, f.Outputs(), t.Outputs())
}

func conceptsCompatible(h *domain.TypeHierarchy, general, specific []*domain.Concept) bool {
	if len(general) != len(specific) {
		return false
	}
	for i := range general {
		if !h.IsSubtypeOf(specific[i].Type(), general[i].Type()) {
			return false
		}
	}
	return true
}
