package graphdb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSteps_ModernGraphQueries(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all vertices", "g.V()", []string{"v[1]", "v[2]", "v[3]", "v[4]", "v[5]", "v[6]"}},
		{"vertex by id", "g.V(4, 2)", []string{"v[4]", "v[2]"}},
		{"edge by id", "g.E(7)", []string{"e[7][1-2->knows]"}},
		{"friends of marko", "g.V().has('name','marko').out('knows').values('name')", []string{"vadas", "josh"}},
		{"software languages", "g.V().hasLabel('software').values('lang')", []string{"java", "java"}},
		{"created count", "g.V(1).out('created').count()", []string{"1"}},
		{"vertex count", "g.V().count()", []string{"6"}},
		{"edge count", "g.E().count()", []string{"6"}},
		{"distinct weights into lop", "g.V(3).inE('created').values('weight').dedup()", []string{"0.4", "0.2"}},
		{"distinct created weights", "g.E().hasLabel('created').values('weight').dedup()", []string{"0.4", "1.0", "0.2"}},
		{"has is idempotent", "g.V().has('name','marko').has('name','marko').count()", []string{"1"}},
		{"has with label", "g.V().has('software','name','lop')", []string{"v[3]"}},
		{"has with label mismatch", "g.V().has('person','name','lop')", []string{}},
		{"has key only", "g.V().has('lang').count()", []string{"2"}},
		{"numeric has across types", "g.V().has('age', 29.0).values('name')", []string{"marko"}},
		{"hasLabel any of", "g.V().hasLabel('software', 'person').count()", []string{"6"}},
		{"edge label filter", "g.E().hasLabel('knows')", []string{"e[7][1-2->knows]", "e[8][1-4->knows]"}},
		{"out all labels", "g.V(1).out()", []string{"v[2]", "v[4]", "v[3]"}},
		{"in by label", "g.V(3).in('created').values('name')", []string{"marko", "josh", "peter"}},
		{"both", "g.V(4).both()", []string{"v[5]", "v[3]", "v[1]"}},
		{"outE", "g.V(4).outE()", []string{"e[10][4-5->created]", "e[11][4-3->created]"}},
		{"bothE by label", "g.V(4).bothE('knows')", []string{"e[8][1-4->knows]"}},
		{"outV", "g.E(7).outV()", []string{"v[1]"}},
		{"inV", "g.E(7).inV().values('name')", []string{"vadas"}},
		{"id", "g.V(1).out('knows').id()", []string{"2", "4"}},
		{"label", "g.V(1).label()", []string{"person"}},
		{"edge label", "g.E(9).label()", []string{"created"}},
		{"values of all keys", "g.V(1).values()", []string{"29", "marko"}},
		{"values of several keys", "g.V(3).values('name', 'lang')", []string{"lop", "java"}},
		{"missing property", "g.V(3).values('age')", []string{}},
		{"limit", "g.V().limit(2)", []string{"v[1]", "v[2]"}},
		{"next", "g.V().out().next()", []string{"v[2]"}},
		{"sum of ints", "g.V().values('age').sum()", []string{"123"}},
		{"sum of floats", "g.E().values('weight').sum()", []string{"3.5"}},
		{"sum of nothing", "g.V(3).values('age').sum()", []string{"0"}},
		{"mean", "g.V().values('age').mean()", []string{"30.75"}},
		{"mean of nothing", "g.V(3).values('age').mean()", []string{}},
		{"min", "g.V().values('age').min()", []string{"27"}},
		{"max", "g.E().values('weight').max()", []string{"1.0"}},
		{"fold", "g.V().values('age').fold()", []string{"[29, 27, 32, 35]"}},
		{"fold of nothing", "g.V(3).values('age').fold()", []string{"[]"}},
		{"count of nothing", "g.V(3).out().count()", []string{"0"}},
		{"dedup strings", "g.V().values('lang').dedup()", []string{"java"}},
		{"path", "g.V(1).out().path()", []string{"[v[1], v[2]]", "[v[1], v[4]]", "[v[1], v[3]]"}},
		{"path through edges", "g.V(6).outE().inV().path()", []string{"[v[6], e[12][6-3->created], v[3]]"}},
		{"select one label", "g.V(1).as('a').out('knows').select('a')", []string{"v[1]", "v[1]"}},
		{"select several labels", "g.V(1).as('a').out('knows').as('b').select('a','b')", []string{"[a:v[1], b:v[2]]", "[a:v[1], b:v[4]]"}},
		{"select unbound label", "g.V(1).select('a')", []string{}},
		{"select bound value", "g.V(1).values('name').as('n').select('n')", []string{"marko"}},
		{"select object and value", "g.V(1).as('v').values('name').as('n').select('v','n')", []string{"[v:v[1], n:marko]"}},
		{"addE is a no-op", "g.V(1).addE('knows').count()", []string{"1"}},
		{"branch is a no-op", "g.V().branch(out()).count()", []string{"6"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Execute(tc.query, newModernGraph(t))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSteps_LoopQueries(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"repeat without modulator runs once", "g.V(1).repeat(out()).values('name')", []string{"vadas", "josh", "lop"}},
		{"repeat times two", "g.V(1).repeat(out()).times(2).values('name')", []string{"ripple", "lop"}},
		{"repeat times one", "g.V(1).repeat(out()).times(1).count()", []string{"3"}},
		{"repeat times zero runs once", "g.V(1).repeat(out()).times(0).count()", []string{"3"}},
		{"times on a plain step", "g.V(1).out().times(2).values('name')", []string{"ripple", "lop"}},
		{"repeat with nested chain", "g.V(1).repeat(out('knows').has('age', 32)).values('name')", []string{"josh"}},
		{"repeat until", "g.V(1).repeat(out()).until(has('name','lop')).values('name')", []string{"lop", "lop"}},
		{"until already satisfied", "g.V(1).repeat(out()).until(hasLabel('person')).values('name')", []string{"vadas", "josh"}},
		{"times inside repeat path", "g.V(1).repeat(out()).times(2).path()", []string{"[v[1], v[4], v[5]]", "[v[1], v[4], v[3]]"}},
		{"two loops in one query", "g.V(1).out().times(2).count().times(1)", []string{"2"}},
		{"until heading a sub-traversal filters", "g.V(1).repeat(until(has('name','nobody'))).count()", []string{"0"}},
		{"until heading a sub-traversal keeps matches", "g.V(1).repeat(until(has('name','marko'))).values('name')", []string{"marko"}},
		{"times without a preceding step", "g.times(3).V(1)", []string{"v[1]"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Execute(tc.query, newModernGraph(t))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSteps_UntilDrainsPendingTraversers(t *testing.T) {
	// 1 -> 2 -> 3 -> 4, walking until the end of the chain
	g := NewGraph()
	for id := ObjectID(1); id <= 4; id++ {
		_, err := g.AddVertexWithID(id, []string{"node"}, map[string]interface{}{"pos": int64(id)})
		require.NoError(t, err)
	}
	for id := ObjectID(1); id < 4; id++ {
		_, err := g.AddEdge(id, id+1, "next", nil)
		require.NoError(t, err)
	}

	got, err := Execute("g.V(1).repeat(out('next')).until(has('pos', 4)).values('pos')", g)
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, got)

	got, err = Execute("g.V(1).repeat(out('next')).until(has('pos', 2)).path()", g)
	require.NoError(t, err)
	assert.Equal(t, []string{"[v[1], v[2]]"}, got)
}

func TestSteps_SelfLoop(t *testing.T) {
	g := NewGraph()
	v, err := g.AddVertex([]string{"node"}, nil)
	require.NoError(t, err)
	_, err = g.AddEdge(v, v, "self", nil)
	require.NoError(t, err)

	tests := []struct {
		query string
		want  []string
	}{
		{"g.V(1).out()", []string{"v[1]"}},
		{"g.V(1).in()", []string{"v[1]"}},
		{"g.V(1).both()", []string{"v[1]", "v[1]"}},
		{"g.V(1).bothE().count()", []string{"2"}},
	}
	for _, tc := range tests {
		got, err := Execute(tc.query, g)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.query)
	}
}

func TestSteps_SumFallsBackToFloatOnOverflow(t *testing.T) {
	g := NewGraph()
	_, err := g.AddVertex(nil, map[string]interface{}{"n": int64(math.MaxInt64)})
	require.NoError(t, err)
	_, err = g.AddVertex(nil, map[string]interface{}{"n": int64(1)})
	require.NoError(t, err)

	got, err := Execute("g.V().values('n').sum()", g)
	require.NoError(t, err)
	assert.Equal(t, []string{"9223372036854775808.0"}, got)
}

func TestSteps_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  error
	}{
		{"missing vertex", "g.V(99)", ErrVertexNotPresent},
		{"edge id is not a vertex", "g.V(7)", ErrVertexNotPresent},
		{"missing edge", "g.E(99)", ErrEdgeNotPresent},
		{"string id", "g.V('marko')", ErrInvalidArgument},
		{"has without arguments", "g.V().has()", ErrInvalidArgument},
		{"has with too many arguments", "g.V().has('a','b','c','d')", ErrInvalidArgument},
		{"has with numeric key", "g.V().has(1, 2)", ErrInvalidArgument},
		{"count with argument", "g.V().count(1)", ErrInvalidArgument},
		{"times without count", "g.V().out().times()", ErrInvalidArgument},
		{"times with string", "g.V().out().times('x')", ErrInvalidArgument},
		{"repeat with literal", "g.V().repeat('x')", ErrInvalidArgument},
		{"out with sub-traversal", "g.V().out(in())", ErrInvalidArgument},
		{"dedup of vertices", "g.V().dedup()", ErrDataTraverserExpected},
		{"sum of vertices", "g.V().sum()", ErrDataTraverserExpected},
		{"fold of vertices", "g.V().fold()", ErrDataTraverserExpected},
		{"mean of edges", "g.E().mean()", ErrDataTraverserExpected},
		{"nested error", "g.V().repeat(V(99))", ErrVertexNotPresent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Execute(tc.query, newModernGraph(t))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSteps_Mutations(t *testing.T) {
	g := newModernGraph(t)

	got, err := Execute("g.addV('person', 'coder')", g)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 7, g.VertexCount())
	assert.Equal(t, []ObjectID{13}, g.VertexIDsWithLabel("coder"))

	got, err = Execute("g.V(13).property('name', 'stephen').property('age', 41).values('name', 'age')", g)
	require.NoError(t, err)
	assert.Equal(t, []string{"stephen", "41"}, got)

	got, err = Execute("g.V(1).property('age', 30).values('age')", g)
	require.NoError(t, err)
	assert.Equal(t, []string{"30"}, got)

	got, err = Execute("g.V(3).drop()", g)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 6, g.VertexCount())
	assert.Equal(t, []ObjectID{7, 8, 10}, g.EdgeIDs())
	assertAdjacencyConsistent(t, g)

	got, err = Execute("g.E().hasLabel('knows').drop()", g)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, []ObjectID{10}, g.EdgeIDs())

	got, err = Execute("g.V(4).bothE().count()", g)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, got)

	// the second traverser finds its vertex already gone
	_, err = Execute("g.V(2, 2).drop()", g)
	require.NoError(t, err)
	assert.Equal(t, 5, g.VertexCount())

	_, err = Execute("g.V().drop()", g)
	require.NoError(t, err)
	assert.Equal(t, 0, g.VertexCount())
	assert.Equal(t, 0, g.EdgeCount())
}

func TestSteps_AddVUsesFreshIDs(t *testing.T) {
	g := newModernGraph(t)
	require.NoError(t, g.DetachAndDeleteVertex(6))

	_, err := Execute("g.addV('person')", g)
	require.NoError(t, err)
	got, err := Execute("g.V().id()", g)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "13"}, got)
}

func TestStepRegistry(t *testing.T) {
	r := DefaultRegistry()
	for _, name := range []string{"V", "E", "out", "in", "both", "has", "hasLabel", "values", "count", "dedup", "repeat", "times", "until", "select", "as", "path"} {
		_, ok := r.Lookup(name)
		assert.True(t, ok, "step %s registered", name)
	}
	assert.IsIncreasing(t, r.Names())

	err := r.Register(StepDescriptor{Name: "out", Run: stepV})
	assert.Error(t, err)

	err = r.Register(StepDescriptor{Name: "noop"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestStepRegistry_CustomStep(t *testing.T) {
	r := DefaultRegistry()
	require.NoError(t, r.Register(StepDescriptor{
		Name:    "double",
		MinArgs: 0,
		MaxArgs: 0,
		Run: func(trav *Traversal, call StepCall) (int, error) {
			trav.SetCurrent(trav.Current().FlatMap(func(tr Traverser) []Traverser {
				return []Traverser{tr, tr}
			}))
			return advance, nil
		},
	}))

	ast, err := ParseQuery("g.V(1).double().count()")
	require.NoError(t, err)
	result, err := NewExecutor(newModernGraph(t), r).Execute(ast, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, result.Lines)

	// the default catalog is unaffected
	got, err := Execute("g.V(1).double().count()", newModernGraph(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, got)
}

func TestToInt(t *testing.T) {
	n, ok := toInt(uint64(5))
	assert.True(t, ok)
	assert.Equal(t, int64(5), n)

	_, ok = toInt(uint64(math.MaxUint64))
	assert.False(t, ok)

	_, ok = toInt(2.5)
	assert.False(t, ok)

	assert.True(t, addOverflows(math.MaxInt64, 1))
	assert.True(t, addOverflows(math.MinInt64, -1))
	assert.False(t, addOverflows(math.MaxInt64, -1))
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual(29, int64(29)))
	assert.True(t, valuesEqual(int64(1), 1.0))
	assert.False(t, valuesEqual(1, "1"))
	assert.True(t, valuesEqual("java", "java"))
	assert.False(t, valuesEqual(0.4, 0.2))
}
