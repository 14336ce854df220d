// Package kb implements the knowledge base a process runs against: a
// deduplicated canon of asserted graphs, the concept and relation type
// hierarchies they are typed by, and the coreference variables bound while
// matching. Stack nests knowledge bases the way activations nest.
package kb
