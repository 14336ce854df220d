package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Assert(ResultAdded)
	m.Assert(ResultAdded)
	m.Assert(ResultDuplicate)
	m.RuleFiring("grow", "fired")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Asserts.WithLabelValues(ResultAdded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Asserts.WithLabelValues(ResultDuplicate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RuleFirings.WithLabelValues("grow", "fired")))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Retract(ResultRemoved)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Retracts.WithLabelValues(ResultRemoved)))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Assert(ResultAdded)
		m.Projection(ResultMiss)
		m.SubActor("function")
		m.ProcessRun("p", "ok")
	})
	samples, err := m.Snapshot()
	assert.NoError(t, err)
	assert.Nil(t, samples)
}

func TestSnapshot(t *testing.T) {
	m := New()
	m.Projection(ResultMatch)
	m.SubActor("actor")

	samples, err := m.Snapshot()
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "pcg_actor_subactor_invocations_total{executor=actor}", samples[0].Name)
	assert.Equal(t, "pcg_kb_projections_total{result=match}", samples[1].Name)
	assert.Equal(t, 1.0, samples[1].Value)
}
