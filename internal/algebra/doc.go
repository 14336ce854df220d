// Package algebra implements the conceptual-graph operations: structural
// equality, concept restriction, projection, join and add.
//
// Queries encode "no solution" as nil or false. Only misuse, such as joining on
// a concept that is not part of its graph, is reported as an error. Every
// operation that combines graphs works on copies, so inputs are never
// modified, with the exception of Restrict, which narrows its source concept in
// place.
package algebra
