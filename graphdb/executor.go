package graphdb

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// advance moves the program counter to the next step
const advance = 1

// Result is the outcome of one query
type Result struct {
	QueryID     string
	Traversers  []Traverser
	Lines       []string
	Diagnostics []string
}

// Executor interprets step trees against a Graph
type Executor struct {
	graph    *Graph
	registry *StepRegistry
	metrics  *Metrics
	maxLoops int
}

// NewExecutor initializes a new Executor. A nil registry uses DefaultRegistry.
func NewExecutor(graph *Graph, registry *StepRegistry) *Executor {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Executor{
		graph:    graph,
		registry: registry,
	}
}

// SetMetrics attaches collectors; nil disables them
func (e *Executor) SetMetrics(m *Metrics) { e.metrics = m }

// SetMaxLoopIterations bounds loop rewinds per loop; 0 means unlimited
func (e *Executor) SetMaxLoopIterations(n int) { e.maxLoops = n }

// Execute runs the top-level block of a step tree and renders its output
func (e *Executor) Execute(block []ASTNode, log *logrus.Entry) (*Result, error) {
	if log == nil {
		log = logrus.WithField("component", "Executor")
	}
	t := &Traversal{
		graph:       e.graph,
		registry:    e.registry,
		current:     NewSequence(nil),
		sideEffects: make(map[string]interface{}),
		loops:       make(map[string]int),
		log:         log,
		metrics:     e.metrics,
		maxLoops:    e.maxLoops,
	}

	if err := t.runBlock(block); err != nil {
		log.WithError(err).Error("Query aborted")
		return nil, err
	}

	traversers := t.current.Materialize()
	lines := make([]string, len(traversers))
	for i, tr := range traversers {
		lines[i] = RenderTraverser(e.graph, tr)
	}
	log.WithField("result_count", len(lines)).Debug("Query executed")
	return &Result{
		Traversers:  traversers,
		Lines:       lines,
		Diagnostics: t.diagnostics,
	}, nil
}

// Traversal is the execution state of one query: the graph, the current
// traverser collection and the side effects used by loop steps.
type Traversal struct {
	graph       *Graph
	registry    *StepRegistry
	current     *Sequence
	sideEffects map[string]interface{}
	loops       map[string]int
	depth       int
	diagnostics []string
	log         *logrus.Entry
	metrics     *Metrics
	maxLoops    int
}

// Graph returns the graph the traversal runs against
func (t *Traversal) Graph() *Graph { return t.graph }

// Current returns the current traverser collection
func (t *Traversal) Current() *Sequence { return t.current }

// SetCurrent replaces the current traverser collection
func (t *Traversal) SetCurrent(s *Sequence) { t.current = s }

// Diagnose records a non-fatal diagnostic line
func (t *Traversal) Diagnose(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	t.diagnostics = append(t.diagnostics, msg)
	t.log.WithField("depth", t.depth).Warn(msg)
}

// runBlock interprets one block of step invocations with its own program counter
func (t *Traversal) runBlock(block []ASTNode) error {
	pc := 0
	for pc < len(block) {
		node := block[pc]
		if node.Type != NodeFunction {
			pc++
			continue
		}

		desc, ok := t.registry.Lookup(node.Value)
		if !ok {
			t.metrics.recordUnknownStep(node.Value)
			t.Diagnose("%v", fmt.Errorf("%w: %s", ErrUnknownStep, node.Value))
			pc++
			continue
		}

		call, err := desc.bind(node, pc, t.depth)
		if err != nil {
			return err
		}
		call.rewindable = hasStepBefore(block, pc)
		if desc.Materialize {
			t.current = NewSequence(t.current.Materialize())
		}

		t.log.WithFields(logrus.Fields{
			"step":  node.Value,
			"pc":    pc,
			"depth": t.depth,
		}).Debug("Running step")
		t.metrics.recordStep(desc.Name)

		delta, err := desc.Run(t, call)
		if err != nil {
			return fmt.Errorf("%s: %w", node.Value, err)
		}

		if desc.Terminal && pc+1 < len(block) {
			t.Diagnose("steps after terminal step %s ignored: %s", node.Value, describeBlock(block[pc+1:]))
			return nil
		}

		if delta < 0 && !call.rewindable {
			t.Diagnose("step %s has no preceding step to rewind to", node.Value)
			delta = advance
		}
		pc += delta
		if pc < 0 {
			pc = 0
		}
	}
	return nil
}

// hasStepBefore reports whether a step invocation precedes pc in block
func hasStepBefore(block []ASTNode, pc int) bool {
	for _, node := range block[:pc] {
		if node.Type == NodeFunction {
			return true
		}
	}
	return false
}

// runNested runs a sub-block against seed and returns the resulting collection.
// The current collection of the enclosing block is left untouched.
func (t *Traversal) runNested(seed *Sequence, block []ASTNode) (*Sequence, error) {
	saved := t.current
	t.current = seed
	t.depth++
	err := t.runBlock(block)
	t.depth--
	result := t.current
	t.current = saved
	if err != nil {
		return nil, err
	}
	return result, nil
}

// countLoop increments the rewind counter of a loop and enforces the fuse
func (t *Traversal) countLoop(key string) error {
	t.loops[key]++
	if t.maxLoops > 0 && t.loops[key] > t.maxLoops {
		delete(t.loops, key)
		return fmt.Errorf("more than %d iterations: %w", t.maxLoops, ErrLoopLimitExceeded)
	}
	return nil
}

func (t *Traversal) resetLoop(key string) {
	delete(t.loops, key)
}

// stepRepeat runs its sub-block once against the current collection. A
// following times() or until() rewinds to it to loop.
func stepRepeat(t *Traversal, call StepCall) (int, error) {
	result, err := t.runNested(t.current, call.Block)
	if err != nil {
		return 0, err
	}
	t.current = result
	return advance, nil
}

// stepUntil partitions the current collection with its predicate sub-block.
// Traversers for which the predicate yields anything are parked; the rest
// rewind into the preceding step. Once none remain, the parked traversers
// become the current collection.
func stepUntil(t *Traversal, call StepCall) (int, error) {
	key := call.sideEffectKey()
	done, _ := t.sideEffects[key].([]Traverser)

	// with nothing to rewind into, until only keeps what already satisfies it
	if !call.rewindable {
		kept := []Traverser{}
		for _, tr := range t.current.Materialize() {
			ok, err := t.satisfies(tr, call.Block)
			if err != nil {
				return 0, err
			}
			if ok {
				kept = append(kept, tr)
			}
		}
		t.current = NewSequence(kept)
		return advance, nil
	}

	pending := []Traverser{}
	for _, tr := range t.current.Materialize() {
		ok, err := t.satisfies(tr, call.Block)
		if err != nil {
			return 0, err
		}
		if ok {
			done = append(done, tr)
		} else {
			pending = append(pending, tr)
		}
	}

	if len(pending) > 0 {
		if err := t.countLoop(key); err != nil {
			delete(t.sideEffects, key)
			return 0, err
		}
		t.sideEffects[key] = done
		t.current = NewSequence(pending)
		return -1, nil
	}

	delete(t.sideEffects, key)
	t.resetLoop(key)
	t.current = NewSequence(done)
	return advance, nil
}

// satisfies reports whether block yields at least one traverser for tr
func (t *Traversal) satisfies(tr Traverser, block []ASTNode) (bool, error) {
	result, err := t.runNested(NewSequence([]Traverser{tr}), block)
	if err != nil {
		return false, err
	}
	for range result.All() {
		return true, nil
	}
	return false, nil
}

// stepBranch is reserved and has no effect
func stepBranch(t *Traversal, call StepCall) (int, error) {
	t.log.WithField("step", call.Name).Warn("branch is reserved and has no effect")
	return advance, nil
}

func describeBlock(block []ASTNode) string {
	parts := make([]string, 0, len(block))
	for _, node := range block {
		if node.Type == NodeFunction {
			parts = append(parts, node.String())
		}
	}
	return strings.Join(parts, ".")
}
