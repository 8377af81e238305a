package graphdb

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// StepFunc implements a step. It returns the program counter delta, normally advance.
type StepFunc func(t *Traversal, call StepCall) (int, error)

// StepDescriptor describes a registered step and its argument contract
type StepDescriptor struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for unbounded
	// Nested steps take sub-traversals as arguments instead of literals
	Nested bool
	// Materialize forces the input collection into a concrete slice first
	Materialize bool
	// Terminal steps end their block
	Terminal bool
	Run      StepFunc
}

// StepCall is a step invocation with its arguments resolved
type StepCall struct {
	Name  string
	Args  []interface{}
	Block []ASTNode
	pc    int
	depth int
	// rewindable is false when no step precedes this one in its block
	rewindable bool
}

// bind checks the invocation against the descriptor and resolves its arguments
func (d StepDescriptor) bind(node ASTNode, pc, depth int) (StepCall, error) {
	call := StepCall{Name: node.Value, pc: pc, depth: depth}
	count := 0
	for _, child := range node.Children {
		switch child.Type {
		case NodeLiteral:
			if d.Nested {
				return StepCall{}, fmt.Errorf("%s expects sub-traversals, got literal %s: %w", d.Name, child.String(), ErrInvalidArgument)
			}
			call.Args = append(call.Args, child.Literal)
			count++
		case NodeFunction:
			if !d.Nested {
				return StepCall{}, fmt.Errorf("%s expects literals, got %s: %w", d.Name, child.String(), ErrInvalidArgument)
			}
			call.Block = append(call.Block, child)
			count++
		default:
			// anonymous traversal markers such as __ carry no runtime effect
		}
	}
	if count < d.MinArgs || (d.MaxArgs >= 0 && count > d.MaxArgs) {
		return StepCall{}, fmt.Errorf("%s takes %s arguments, got %d: %w", d.Name, d.arity(), count, ErrInvalidArgument)
	}
	return call, nil
}

func (d StepDescriptor) arity() string {
	switch {
	case d.MaxArgs < 0:
		return fmt.Sprintf("at least %d", d.MinArgs)
	case d.MinArgs == d.MaxArgs:
		return strconv.Itoa(d.MinArgs)
	default:
		return fmt.Sprintf("%d to %d", d.MinArgs, d.MaxArgs)
	}
}

// String returns the i-th argument as a string
func (c StepCall) String(i int) (string, error) {
	s, ok := c.Args[i].(string)
	if !ok {
		return "", fmt.Errorf("%s argument %d must be a string, got %v: %w", c.Name, i+1, c.Args[i], ErrInvalidArgument)
	}
	return s, nil
}

// Strings returns every argument as a string
func (c StepCall) Strings() ([]string, error) {
	out := make([]string, len(c.Args))
	for i := range c.Args {
		s, err := c.String(i)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// Int returns the i-th argument as an integer
func (c StepCall) Int(i int) (int64, error) {
	n, ok := c.Args[i].(int64)
	if !ok {
		return 0, fmt.Errorf("%s argument %d must be an integer, got %v: %w", c.Name, i+1, c.Args[i], ErrInvalidArgument)
	}
	return n, nil
}

// sideEffectKey is the reserved side-effect key of this invocation
func (c StepCall) sideEffectKey() string {
	return fmt.Sprintf("~%s@%d:%d", c.Name, c.depth, c.pc)
}

// StepRegistry maps step names to descriptors
type StepRegistry struct {
	steps map[string]StepDescriptor
}

// NewStepRegistry returns an empty registry
func NewStepRegistry() *StepRegistry {
	return &StepRegistry{steps: make(map[string]StepDescriptor)}
}

// Register adds a step; names must be unique
func (r *StepRegistry) Register(d StepDescriptor) error {
	if d.Name == "" || d.Run == nil {
		return fmt.Errorf("step descriptor needs a name and a handler: %w", ErrInvalidArgument)
	}
	if _, exists := r.steps[d.Name]; exists {
		return fmt.Errorf("step %s already registered", d.Name)
	}
	r.steps[d.Name] = d
	return nil
}

// Lookup returns the descriptor registered under name
func (r *StepRegistry) Lookup(name string) (StepDescriptor, bool) {
	d, ok := r.steps[name]
	return d, ok
}

// Names returns the registered step names sorted
func (r *StepRegistry) Names() []string {
	names := make([]string, 0, len(r.steps))
	for name := range r.steps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry holding the built-in step catalog
func DefaultRegistry() *StepRegistry {
	r := NewStepRegistry()
	for _, d := range builtinSteps() {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

func builtinSteps() []StepDescriptor {
	return []StepDescriptor{
		// seeds
		{Name: "V", MinArgs: 0, MaxArgs: -1, Run: stepV},
		{Name: "E", MinArgs: 0, MaxArgs: -1, Run: stepE},

		// mutation
		{Name: "addV", MinArgs: 0, MaxArgs: -1, Run: stepAddV},
		{Name: "addE", MinArgs: 0, MaxArgs: 1, Run: stepAddE},
		{Name: "property", MinArgs: 2, MaxArgs: 2, Materialize: true, Run: stepProperty},
		{Name: "drop", MinArgs: 0, MaxArgs: 0, Materialize: true, Run: stepDrop},

		// filters
		{Name: "hasLabel", MinArgs: 1, MaxArgs: -1, Run: stepHasLabel},
		{Name: "has", MinArgs: 1, MaxArgs: 3, Run: stepHas},
		{Name: "limit", MinArgs: 1, MaxArgs: 1, Run: stepLimit},
		{Name: "next", MinArgs: 0, MaxArgs: 0, Materialize: true, Run: stepNext},

		// adjacency
		{Name: "out", MinArgs: 0, MaxArgs: -1, Run: adjacentVertices(true, false)},
		{Name: "in", MinArgs: 0, MaxArgs: -1, Run: adjacentVertices(false, true)},
		{Name: "both", MinArgs: 0, MaxArgs: -1, Run: adjacentVertices(true, true)},
		{Name: "outE", MinArgs: 0, MaxArgs: -1, Run: incidentEdges(true, false)},
		{Name: "inE", MinArgs: 0, MaxArgs: -1, Run: incidentEdges(false, true)},
		{Name: "bothE", MinArgs: 0, MaxArgs: -1, Run: incidentEdges(true, true)},
		{Name: "outV", MinArgs: 0, MaxArgs: 0, Run: edgeEndpoint(true)},
		{Name: "inV", MinArgs: 0, MaxArgs: 0, Run: edgeEndpoint(false)},

		// maps
		{Name: "values", MinArgs: 0, MaxArgs: -1, Run: stepValues},
		{Name: "id", MinArgs: 0, MaxArgs: 0, Run: stepID},
		{Name: "label", MinArgs: 0, MaxArgs: 0, Run: stepLabel},
		{Name: "path", MinArgs: 0, MaxArgs: 0, Run: stepPath},
		{Name: "as", MinArgs: 1, MaxArgs: -1, Run: stepAs},
		{Name: "select", MinArgs: 1, MaxArgs: -1, Terminal: true, Run: stepSelect},

		// folds
		{Name: "count", MinArgs: 0, MaxArgs: 0, Materialize: true, Run: stepCount},
		{Name: "dedup", MinArgs: 0, MaxArgs: 0, Materialize: true, Run: stepDedup},
		{Name: "fold", MinArgs: 0, MaxArgs: 0, Materialize: true, Run: stepFold},
		{Name: "sum", MinArgs: 0, MaxArgs: 0, Materialize: true, Run: stepSum},
		{Name: "mean", MinArgs: 0, MaxArgs: 0, Materialize: true, Run: stepMean},
		{Name: "min", MinArgs: 0, MaxArgs: 0, Materialize: true, Run: numericExtreme(func(a, b float64) bool { return a < b })},
		{Name: "max", MinArgs: 0, MaxArgs: 0, Materialize: true, Run: numericExtreme(func(a, b float64) bool { return a > b })},

		// control
		{Name: "times", MinArgs: 1, MaxArgs: 1, Materialize: true, Run: stepTimes},
		{Name: "repeat", MinArgs: 1, MaxArgs: -1, Nested: true, Run: stepRepeat},
		{Name: "until", MinArgs: 1, MaxArgs: -1, Nested: true, Materialize: true, Run: stepUntil},
		{Name: "branch", MinArgs: 0, MaxArgs: -1, Nested: true, Run: stepBranch},
	}
}

func stepV(t *Traversal, call StepCall) (int, error) {
	if len(call.Args) == 0 {
		ids := t.graph.VertexIDs()
		seeds := make([]Traverser, len(ids))
		for i, id := range ids {
			seeds[i] = NewTraverser(id, KindVertex)
		}
		t.current = NewSequence(seeds)
		return advance, nil
	}

	seeds := make([]Traverser, 0, len(call.Args))
	for i := range call.Args {
		n, err := call.Int(i)
		if err != nil {
			return 0, err
		}
		if _, err := t.graph.GetVertex(ObjectID(n)); err != nil {
			return 0, fmt.Errorf("vertex with id %d: %w", n, ErrVertexNotPresent)
		}
		seeds = append(seeds, NewTraverser(ObjectID(n), KindVertex))
	}
	t.current = NewSequence(seeds)
	return advance, nil
}

func stepE(t *Traversal, call StepCall) (int, error) {
	if len(call.Args) == 0 {
		ids := t.graph.EdgeIDs()
		seeds := make([]Traverser, len(ids))
		for i, id := range ids {
			seeds[i] = NewTraverser(id, KindEdge)
		}
		t.current = NewSequence(seeds)
		return advance, nil
	}

	seeds := make([]Traverser, 0, len(call.Args))
	for i := range call.Args {
		n, err := call.Int(i)
		if err != nil {
			return 0, err
		}
		if _, err := t.graph.GetEdge(ObjectID(n)); err != nil {
			return 0, fmt.Errorf("edge with id %d: %w", n, ErrEdgeNotPresent)
		}
		seeds = append(seeds, NewTraverser(ObjectID(n), KindEdge))
	}
	t.current = NewSequence(seeds)
	return advance, nil
}

func stepAddV(t *Traversal, call StepCall) (int, error) {
	labels, err := call.Strings()
	if err != nil {
		return 0, err
	}
	id, err := t.graph.AddVertex(labels, nil)
	if err != nil {
		return 0, err
	}
	t.log.WithField("vertex_id", id).Info("Vertex added by traversal")
	return advance, nil
}

// stepAddE is reserved until edge endpoints can be threaded through a traversal
func stepAddE(t *Traversal, call StepCall) (int, error) {
	t.log.WithField("step", call.Name).Warn("addE is not supported yet and has no effect")
	return advance, nil
}

func stepProperty(t *Traversal, call StepCall) (int, error) {
	name, err := call.String(0)
	if err != nil {
		return 0, err
	}
	value := call.Args[1]
	for _, tr := range t.current.Materialize() {
		obj, ok := t.object(tr)
		if !ok {
			continue
		}
		obj.SetProperty(name, value)
	}
	return advance, nil
}

func stepDrop(t *Traversal, call StepCall) (int, error) {
	for _, tr := range t.current.Materialize() {
		var err error
		switch tr.Kind() {
		case KindVertex:
			err = t.graph.DetachAndDeleteVertex(tr.ID())
		case KindEdge:
			err = t.graph.DeleteEdge(tr.ID())
		default:
			continue
		}
		// an edge may already be gone with a vertex dropped earlier in the same collection
		if err != nil && !isNotFound(err) {
			return 0, err
		}
	}
	t.current = NewSequence(nil)
	return advance, nil
}

func stepHasLabel(t *Traversal, call StepCall) (int, error) {
	labels, err := call.Strings()
	if err != nil {
		return 0, err
	}
	t.current = t.current.Filter(func(tr Traverser) bool {
		obj, ok := t.object(tr)
		return ok && obj.HasAnyLabel(labels...)
	})
	return advance, nil
}

func stepHas(t *Traversal, call StepCall) (int, error) {
	var label, name string
	var value interface{}
	var err error
	switch len(call.Args) {
	case 1:
		name, err = call.String(0)
	case 2:
		name, err = call.String(0)
		value = call.Args[1]
	case 3:
		if label, err = call.String(0); err == nil {
			name, err = call.String(1)
		}
		value = call.Args[2]
	}
	if err != nil {
		return 0, err
	}

	t.current = t.current.Filter(func(tr Traverser) bool {
		obj, ok := t.object(tr)
		if !ok {
			return false
		}
		if label != "" && !obj.HasAnyLabel(label) {
			return false
		}
		got, ok := obj.Property(name)
		if !ok {
			return false
		}
		return len(call.Args) == 1 || valuesEqual(got, value)
	})
	return advance, nil
}

func stepLimit(t *Traversal, call StepCall) (int, error) {
	n, err := call.Int(0)
	if err != nil {
		return 0, err
	}
	t.current = t.current.Take(int(n))
	return advance, nil
}

func stepNext(t *Traversal, call StepCall) (int, error) {
	items := t.current.Materialize()
	if len(items) > 1 {
		t.current = NewSequence(items[:1])
	}
	return advance, nil
}

// adjacentVertices follows edges to the vertex at their other end
func adjacentVertices(out, in bool) StepFunc {
	return func(t *Traversal, call StepCall) (int, error) {
		labels, err := call.Strings()
		if err != nil {
			return 0, err
		}
		t.current = t.current.FlatMap(func(tr Traverser) []Traverser {
			next := []Traverser{}
			// direction comes from the adjacency set, so a self loop yields once per side
			if out {
				for _, e := range t.incident(tr, true, false, labels) {
					next = append(next, tr.Step(e.to, KindVertex))
				}
			}
			if in {
				for _, e := range t.incident(tr, false, true, labels) {
					next = append(next, tr.Step(e.from, KindVertex))
				}
			}
			return next
		})
		return advance, nil
	}
}

// incidentEdges steps from a vertex onto its edges
func incidentEdges(out, in bool) StepFunc {
	return func(t *Traversal, call StepCall) (int, error) {
		labels, err := call.Strings()
		if err != nil {
			return 0, err
		}
		t.current = t.current.FlatMap(func(tr Traverser) []Traverser {
			next := []Traverser{}
			for _, e := range t.incident(tr, out, in, labels) {
				next = append(next, tr.Step(e.id, KindEdge))
			}
			return next
		})
		return advance, nil
	}
}

// incident returns the edges of a vertex traverser, outgoing first
func (t *Traversal) incident(tr Traverser, out, in bool, labels []string) []*Edge {
	if tr.Kind() != KindVertex {
		return nil
	}
	v, err := t.graph.GetVertex(tr.ID())
	if err != nil {
		return nil
	}
	var ids []ObjectID
	if out {
		ids = append(ids, v.OutgoingEdges()...)
	}
	if in {
		ids = append(ids, v.IncomingEdges()...)
	}
	edges := make([]*Edge, 0, len(ids))
	for _, id := range ids {
		e, err := t.graph.GetEdge(id)
		if err != nil {
			continue
		}
		if len(labels) > 0 && !e.HasAnyLabel(labels...) {
			continue
		}
		edges = append(edges, e)
	}
	return edges
}

// edgeEndpoint steps from an edge onto its source or target vertex
func edgeEndpoint(source bool) StepFunc {
	return func(t *Traversal, call StepCall) (int, error) {
		t.current = t.current.FlatMap(func(tr Traverser) []Traverser {
			if tr.Kind() != KindEdge {
				return nil
			}
			e, err := t.graph.GetEdge(tr.ID())
			if err != nil {
				return nil
			}
			if source {
				return []Traverser{tr.Step(e.from, KindVertex)}
			}
			return []Traverser{tr.Step(e.to, KindVertex)}
		})
		return advance, nil
	}
}

func stepValues(t *Traversal, call StepCall) (int, error) {
	names, err := call.Strings()
	if err != nil {
		return 0, err
	}
	t.current = t.current.FlatMap(func(tr Traverser) []Traverser {
		obj, ok := t.object(tr)
		if !ok {
			return nil
		}
		keys := names
		if len(keys) == 0 {
			keys = sortedKeys(obj.Properties())
		}
		values := []Traverser{}
		for _, key := range keys {
			if v, ok := obj.Property(key); ok {
				values = append(values, tr.WithValue(v))
			}
		}
		return values
	})
	return advance, nil
}

func stepID(t *Traversal, call StepCall) (int, error) {
	t.current = t.current.FlatMap(func(tr Traverser) []Traverser {
		if tr.IsData() {
			return nil
		}
		return []Traverser{tr.WithValue(int64(tr.ID()))}
	})
	return advance, nil
}

func stepLabel(t *Traversal, call StepCall) (int, error) {
	t.current = t.current.FlatMap(func(tr Traverser) []Traverser {
		obj, ok := t.object(tr)
		if !ok {
			return nil
		}
		return []Traverser{tr.WithValue(strings.Join(obj.Labels(), "::"))}
	})
	return advance, nil
}

func stepPath(t *Traversal, call StepCall) (int, error) {
	t.current = t.current.FlatMap(func(tr Traverser) []Traverser {
		return []Traverser{tr.WithValue(renderValue(t.graph, tr.Path()))}
	})
	return advance, nil
}

func stepAs(t *Traversal, call StepCall) (int, error) {
	labels, err := call.Strings()
	if err != nil {
		return 0, err
	}
	t.current = t.current.FlatMap(func(tr Traverser) []Traverser {
		for _, label := range labels {
			tr = tr.Bind(label)
		}
		return []Traverser{tr}
	})
	return advance, nil
}

func stepSelect(t *Traversal, call StepCall) (int, error) {
	labels, err := call.Strings()
	if err != nil {
		return 0, err
	}
	t.current = t.current.FlatMap(func(tr Traverser) []Traverser {
		selection := make(Selection, 0, len(labels))
		for _, label := range labels {
			id, kind, ok := tr.Binding(label)
			if !ok {
				return nil
			}
			value, _ := tr.BoundValue(label)
			selection = append(selection, SelectedBinding{Label: label, Ref: PathRef{ID: id, Kind: kind}, Value: value})
		}
		if len(selection) == 1 {
			if selection[0].Ref.Kind == KindData {
				return []Traverser{tr.WithValue(selection[0].Value)}
			}
			return []Traverser{tr.Step(selection[0].Ref.ID, selection[0].Ref.Kind)}
		}
		return []Traverser{tr.WithValue(selection)}
	})
	return advance, nil
}

func stepCount(t *Traversal, call StepCall) (int, error) {
	n := len(t.current.Materialize())
	t.current = NewSequence([]Traverser{NewDataTraverser(int64(n))})
	return advance, nil
}

func stepDedup(t *Traversal, call StepCall) (int, error) {
	items := t.current.Materialize()
	if _, err := dataValues(items); err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(items))
	unique := []Traverser{}
	for _, tr := range items {
		key := valueKey(tr.Value())
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, tr)
	}
	t.current = NewSequence(unique)
	return advance, nil
}

func stepFold(t *Traversal, call StepCall) (int, error) {
	values, err := dataValues(t.current.Materialize())
	if err != nil {
		return 0, err
	}
	t.current = NewSequence([]Traverser{NewDataTraverser(values)})
	return advance, nil
}

func stepSum(t *Traversal, call StepCall) (int, error) {
	values, err := dataValues(t.current.Materialize())
	if err != nil {
		return 0, err
	}
	var intSum int64
	var floatSum float64
	integral := true
	for _, v := range values {
		f, ok := toFloat(v)
		if !ok {
			continue
		}
		if n, isInt := toInt(v); isInt && integral && !addOverflows(intSum, n) {
			intSum += n
		} else {
			integral = false
		}
		floatSum += f
	}
	var sum interface{} = floatSum
	if integral {
		sum = intSum
	}
	t.current = NewSequence([]Traverser{NewDataTraverser(sum)})
	return advance, nil
}

func stepMean(t *Traversal, call StepCall) (int, error) {
	values, err := dataValues(t.current.Materialize())
	if err != nil {
		return 0, err
	}
	var total float64
	count := 0
	for _, v := range values {
		if f, ok := toFloat(v); ok {
			total += f
			count++
		}
	}
	if count == 0 {
		t.current = NewSequence(nil)
		return advance, nil
	}
	t.current = NewSequence([]Traverser{NewDataTraverser(total / float64(count))})
	return advance, nil
}

// numericExtreme keeps the value for which better holds against every other
func numericExtreme(better func(a, b float64) bool) StepFunc {
	return func(t *Traversal, call StepCall) (int, error) {
		values, err := dataValues(t.current.Materialize())
		if err != nil {
			return 0, err
		}
		var best interface{}
		var bestF float64
		for _, v := range values {
			f, ok := toFloat(v)
			if !ok {
				continue
			}
			if best == nil || better(f, bestF) {
				best, bestF = v, f
			}
		}
		if best == nil {
			t.current = NewSequence(nil)
			return advance, nil
		}
		t.current = NewSequence([]Traverser{NewDataTraverser(best)})
		return advance, nil
	}
}

// stepTimes rewinds onto the preceding step until it has run n times in total.
// The remaining count lives under a reserved side-effect key while the loop runs.
func stepTimes(t *Traversal, call StepCall) (int, error) {
	n, err := call.Int(0)
	if err != nil {
		return 0, err
	}
	key := call.sideEffectKey()
	remaining, running := t.sideEffects[key].(int64)
	if !running {
		remaining = n - 1
	}
	if remaining > 0 && call.rewindable {
		if err := t.countLoop(key); err != nil {
			delete(t.sideEffects, key)
			return 0, err
		}
		t.sideEffects[key] = remaining - 1
		return -1, nil
	}
	delete(t.sideEffects, key)
	t.resetLoop(key)
	return advance, nil
}

// object resolves the graph object of a traverser; data traversers and
// deleted objects resolve to nothing
func (t *Traversal) object(tr Traverser) (GraphObject, bool) {
	switch tr.Kind() {
	case KindVertex:
		v, err := t.graph.GetVertex(tr.ID())
		return v, err == nil
	case KindEdge:
		e, err := t.graph.GetEdge(tr.ID())
		return e, err == nil
	default:
		return nil, false
	}
}

// dataValues extracts the carried values; every traverser must be a data traverser
func dataValues(items []Traverser) ([]interface{}, error) {
	values := make([]interface{}, 0, len(items))
	for _, tr := range items {
		if !tr.IsData() {
			return nil, fmt.Errorf("got %s traverser with id %d: %w", strings.ToLower(tr.Kind().String()), tr.ID(), ErrDataTraverserExpected)
		}
		values = append(values, tr.Value())
	}
	return values, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func toInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func addOverflows(a, b int64) bool {
	return (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b)
}

// valuesEqual compares numbers by value regardless of their Go type
func valuesEqual(a, b interface{}) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// valueKey is the dedup identity of a value
func valueKey(v interface{}) string {
	if f, ok := toFloat(v); ok {
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	if s, ok := v.(string); ok {
		return "s:" + s
	}
	return fmt.Sprintf("%T:%v", v, v)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
