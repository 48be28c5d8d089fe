package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.SessionsStartedTotal.Inc()
	a.ParamUpdatesTotal.WithLabelValues("frequency").Add(2)

	assert.InDelta(t, 1, testutil.ToFloat64(a.SessionsStartedTotal), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.SessionsStartedTotal), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(a.ParamUpdatesTotal.WithLabelValues("frequency")), 0)
}

func TestMetrics_Exposition(t *testing.T) {
	m := New()
	m.ActiveSessions.Set(1)
	m.TeardownErrorsTotal.WithLabelValues("oscillator").Inc()

	expected := `
# HELP ancsim_active_sessions Number of running interference sessions
# TYPE ancsim_active_sessions gauge
ancsim_active_sessions 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "ancsim_active_sessions"))

	n, err := testutil.GatherAndCount(m.Registry, "ancsim_teardown_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
