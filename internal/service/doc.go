// Package service wires the pcg runtime into something a CLI can drive.
//
// KnowledgeService owns the loaded knowledge file, runs its processes
// through a runtime.Context, renders graphs with the configured codec, and
// persists canon snapshots and the export log when a repository is present.
//
// # Event System
//
// Canon changes on the root knowledge base, graphs exported by processes,
// and process outcomes are published on an EventBus. Delivery is
// non-blocking; a slow subscriber misses events rather than stalling a run.
package service
