// Package metrics holds the prometheus counters of the pCG runtime.
//
// Every Metrics value owns a private registry so that independent runtimes
// and tests never share counters. A nil *Metrics is valid and records
// nothing.
package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pcg"

// Result label values
const (
	ResultAdded     = "added"
	ResultDuplicate = "duplicate"
	ResultRemoved   = "removed"
	ResultAbsent    = "absent"
	ResultMatch     = "match"
	ResultMiss      = "miss"
)

// Metrics groups the runtime counters.
type Metrics struct {
	registry *prometheus.Registry

	// Asserts counts canon assertions. Labels: result (added, duplicate)
	Asserts *prometheus.CounterVec

	// Retracts counts canon retractions. Labels: result (removed, absent)
	Retracts *prometheus.CounterVec

	// Projections counts projection matches against the canon.
	// Labels: result (match, miss)
	Projections *prometheus.CounterVec

	// RuleFirings counts rule evaluations. Labels: rule, outcome (fired, ineligible)
	RuleFirings *prometheus.CounterVec

	// SubActors counts sub-actor invocations. Labels: executor (function, actor, self)
	SubActors *prometheus.CounterVec

	// ProcessRuns counts process activations. Labels: process, outcome (ok, error)
	ProcessRuns *prometheus.CounterVec
}

// New creates the counters on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Asserts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kb",
			Name:      "asserts_total",
			Help:      "Graphs asserted into a knowledge base by result",
		}, []string{"result"}),
		Retracts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kb",
			Name:      "retracts_total",
			Help:      "Graphs retracted from a knowledge base by result",
		}, []string{"result"}),
		Projections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kb",
			Name:      "projections_total",
			Help:      "Projection matches against the canon by result",
		}, []string{"result"}),
		RuleFirings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "process",
			Name:      "rule_firings_total",
			Help:      "Rule evaluations by rule and outcome",
		}, []string{"rule", "outcome"}),
		SubActors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actor",
			Name:      "subactor_invocations_total",
			Help:      "Sub-actor invocations by executor kind",
		}, []string{"executor"}),
		ProcessRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "process",
			Name:      "runs_total",
			Help:      "Process activations by process and outcome",
		}, []string{"process", "outcome"}),
	}
}

// Registry returns the registry holding the counters
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Assert(result string) {
	if m != nil {
		m.Asserts.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Retract(result string) {
	if m != nil {
		m.Retracts.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Projection(result string) {
	if m != nil {
		m.Projections.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) RuleFiring(rule, outcome string) {
	if m != nil {
		m.RuleFirings.WithLabelValues(rule, outcome).Inc()
	}
}

func (m *Metrics) SubActor(executor string) {
	if m != nil {
		m.SubActors.WithLabelValues(executor).Inc()
	}
}

func (m *Metrics) ProcessRun(process, outcome string) {
	if m != nil {
		m.ProcessRuns.WithLabelValues(process, outcome).Inc()
	}
}

// Sample is one counter value with its labels flattened into the name.
type Sample struct {
	Name  string
	Value float64
}

// Snapshot gathers every non-zero counter, sorted by name.
func (m *Metrics) Snapshot() ([]Sample, error) {
	if m == nil {
		return nil, nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			name := mf.GetName()
			for _, lp := range metric.GetLabel() {
				name += "{" + lp.GetName() + "=" + lp.GetValue() + "}"
			}
			if v := metric.GetCounter().GetValue(); v != 0 {
				out = append(out, Sample{Name: name, Value: v})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
