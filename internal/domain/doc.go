// Package domain defines the conceptual-graph data model used by the pCG runtime.
//
// # Core Types
//
// Concept is a typed node carrying a referent: an optional quantifier, a
// designator and an optional nested descriptor graph.
//
// Relation connects concepts through input and output arcs. An actor is a
// relation built with explicit input and output lists; the actor engine
// schedules it once its inputs are bound.
//
// Graph owns its concepts and relations. A node belongs to exactly one graph at
// a time; insertion rejects nodes owned elsewhere, and Copy is the only way to
// reuse nodes across graphs.
//
// TypeHierarchy is an append-only DAG of concept or relation types answering
// subtype queries.
//
// # Designators
//
// A designator is None (generic concept), a literal number, string or boolean,
// an individual marker, or a name. Names beginning with * or ? are variables
// that matching and parameter binding replace with values.
//
// # Errors
//
// Error carries one of the kind sentinels ErrStructural, ErrType,
// ErrIllegalOperation, ErrParse or ErrIO, matched with errors.Is.
package domain
