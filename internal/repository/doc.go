// Package repository defines the persistence interface of the pcg runtime.
//
// Two things outlive a single run: the canon of each named knowledge base
// and the log of graphs processes exported to their parents. Graphs are
// stored as CGIF text and parsed back against the caller's vocabulary, so a
// snapshot reloaded into a knowledge base with the same hierarchies compares
// equal to what was saved.
//
// The sqlite subpackage is the only implementation. It runs in WAL mode and
// migrates its schema on open; tests use in-memory databases.
package repository
