// Package actor schedules the actor nodes of a conceptual graph.
//
// An Actor wraps a defining graph. Each activation works on a fresh copy of
// that graph: parameters are bound onto its variable concepts, Study resolves
// every sub-actor label, Init seeds the run-list, and the driver repeatedly
// takes the next ready sub-actor with Next, runs it and binds its outputs. A
// sub-actor is ready once none of its inputs holds a variable, so execution
// follows the data flow of the graph. The driver loop itself lives in the
// runtime package.
package actor
