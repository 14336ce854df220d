// Package process runs pCG processes: named sets of rules fired against a
// knowledge base until none of them changes it.
//
// A rule is eligible when every match spec holds. A match spec holds when
// its pattern projects onto some canon member, inverted for negated specs.
// Eligible rules run their postcondition and then apply their mutate specs,
// asserting or retracting graphs after substituting coreference variables
// bound during matching. Mutations flagged for export, or covered by the
// rule's export policy, are applied to the enclosing knowledge base when
// the process finishes.
package process
