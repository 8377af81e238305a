package graphdb

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runQuery(t *testing.T, e *Executor, query string) (*Result, error) {
	t.Helper()
	ast, err := ParseQuery(query)
	require.NoError(t, err)
	return e.Execute(ast, nil)
}

func TestExecutor_UnknownStepIsSkipped(t *testing.T) {
	e := NewExecutor(newModernGraph(t), nil)

	result, err := runQuery(t, e, "g.V().foo('x').count()")
	require.NoError(t, err)
	assert.Equal(t, []string{"6"}, result.Lines)
	require.Len(t, result.Diagnostics, 1)
	assert.Contains(t, result.Diagnostics[0], "unknown step")
	assert.Contains(t, result.Diagnostics[0], "foo")
}

func TestExecutor_TerminalStepEndsBlock(t *testing.T) {
	e := NewExecutor(newModernGraph(t), nil)

	result, err := runQuery(t, e, "g.V(1).as('a').select('a').count()")
	require.NoError(t, err)
	assert.Equal(t, []string{"v[1]"}, result.Lines)
	require.Len(t, result.Diagnostics, 1)
	assert.Contains(t, result.Diagnostics[0], "count()")
}

func TestExecutor_RewindWithoutPrecedingStep(t *testing.T) {
	r := DefaultRegistry()
	require.NoError(t, r.Register(StepDescriptor{
		Name: "back",
		Run: func(trav *Traversal, call StepCall) (int, error) {
			return -1, nil
		},
	}))
	e := NewExecutor(newModernGraph(t), r)

	result, err := runQuery(t, e, "g.back().V(1)")
	require.NoError(t, err)
	assert.Equal(t, []string{"v[1]"}, result.Lines)
	require.Len(t, result.Diagnostics, 1)
	assert.Contains(t, result.Diagnostics[0], "no preceding step")
}

func TestExecutor_NoSeedYieldsNothing(t *testing.T) {
	e := NewExecutor(newModernGraph(t), nil)

	result, err := runQuery(t, e, "g.out().count()")
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, result.Lines)
}

func TestExecutor_ResultTraversers(t *testing.T) {
	e := NewExecutor(newModernGraph(t), nil)

	result, err := runQuery(t, e, "g.V(1).out('knows')")
	require.NoError(t, err)
	require.Len(t, result.Traversers, 2)
	assert.Equal(t, ObjectID(2), result.Traversers[0].ID())
	assert.Equal(t, []PathRef{{1, KindVertex}, {2, KindVertex}}, result.Traversers[0].Path())
	assert.Empty(t, result.Diagnostics)
}

func TestExecutor_LoopFuse(t *testing.T) {
	e := NewExecutor(newModernGraph(t), nil)
	e.SetMaxLoopIterations(1)

	_, err := runQuery(t, e, "g.V(1).repeat(out()).times(3)")
	assert.ErrorIs(t, err, ErrLoopLimitExceeded)

	result, err := runQuery(t, e, "g.V(1).repeat(out()).times(2).count()")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, result.Lines)
}

func TestExecutor_LoopFuseStopsUntil(t *testing.T) {
	// a cycle that never satisfies the predicate
	g := NewGraph()
	a, err := g.AddVertex([]string{"node"}, nil)
	require.NoError(t, err)
	b, err := g.AddVertex([]string{"node"}, nil)
	require.NoError(t, err)
	_, err = g.AddEdge(a, b, "next", nil)
	require.NoError(t, err)
	_, err = g.AddEdge(b, a, "next", nil)
	require.NoError(t, err)

	e := NewExecutor(g, nil)
	e.SetMaxLoopIterations(10)
	_, err = runQuery(t, e, "g.V(1).repeat(out()).until(has('name', 'nobody'))")
	assert.ErrorIs(t, err, ErrLoopLimitExceeded)
}

func TestExecutor_FuseCountsPerLoop(t *testing.T) {
	e := NewExecutor(newModernGraph(t), nil)
	e.SetMaxLoopIterations(1)

	// each times() has its own counter
	result, err := runQuery(t, e, "g.V(1).out().times(2).count().times(2)")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, result.Lines)
}

func TestExecutor_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	e := NewExecutor(newModernGraph(t), nil)
	e.SetMetrics(m)

	_, err = runQuery(t, e, "g.V().out().bogus().count()")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.steps.WithLabelValues("V")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.steps.WithLabelValues("out")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.steps.WithLabelValues("count")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.unknownSteps.WithLabelValues("bogus")))
}
