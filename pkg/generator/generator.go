package generator

import (
	"io"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/mbtassist/pkg/domain"
)

// Path is an ordered sequence of Transitions starting at the initial Node.
type Path []*domain.Transition

// IDs returns the transition ids of the path.
func (p Path) IDs() []string {
	ids := make([]string, len(p))
	for i, t := range p {
		ids[i] = t.ID
	}
	return ids
}

// Result bundles everything a single Generate call produced.
type Result struct {
	StartNode *domain.Node
	Paths     []Path
	TestCases []domain.TestCase

	// NoStart is set when no Node is flagged as initial. Paths and TestCases are empty.
	NoStart bool
	// Truncated is set when WithMaxPaths cut the enumeration short.
	Truncated bool
}

// Err returns domain.ErrNoStartNode when the graph had no initial state.
func (r Result) Err() error {
	if r.NoStart {
		return domain.ErrNoStartNode
	}
	return nil
}

// Generator enumerates paths over a live Graph. It holds no state between calls.
type Generator struct {
	graph    *domain.Graph
	logger   *slog.Logger
	sentinel string
	maxPaths int
	observer Observer
}

// New binds a Generator to g. The graph is read, never copied or modified.
func New(g *domain.Graph, opts ...Option) *Generator {
	gen := &Generator{
		graph:    g,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		sentinel: DefaultSentinel,
	}
	for _, opt := range opts {
		opt(gen)
	}
	return gen
}

// FindStartNode returns the Node flagged is_initial. Every node is examined;
// if several are flagged the first in insertion order wins.
func (gen *Generator) FindStartNode() (*domain.Node, bool) {
	for _, n := range gen.graph.Nodes() {
		if n.IsInitial() {
			return n, true
		}
	}
	return nil, false
}

// Walk lazily enumerates paths from the initial Node, yielding each one as
// soon as it is complete. Stopping the iteration stops the traversal. The
// sequence is empty when there is no initial Node.
//
// Walk ignores WithMaxPaths; bound it at the call site.
func (gen *Generator) Walk() iter.Seq[Path] {
	return func(yield func(Path) bool) {
		start, ok := gen.FindStartNode()
		if !ok {
			return
		}
		w := &walker{
			graph: gen.graph,
			used:  make(map[string]bool),
			yield: yield,
		}
		w.visit(start.ID)
	}
}

// GenerateAllPaths collects the paths produced by Walk, honoring WithMaxPaths.
func (gen *Generator) GenerateAllPaths() []Path {
	paths, _ := gen.collect()
	return paths
}

func (gen *Generator) collect() (paths []Path, truncated bool) {
	for p := range gen.Walk() {
		if gen.maxPaths > 0 && len(paths) == gen.maxPaths {
			return paths, true
		}
		paths = append(paths, p)
	}
	return paths, false
}

// FormatTestCases maps paths to test cases, numbered from 1 in input order.
// Missing input_data or expected_result become the sentinel. It does not
// modify the graph or the paths.
func (gen *Generator) FormatTestCases(paths []Path) []domain.TestCase {
	cases := make([]domain.TestCase, 0, len(paths))
	for i, p := range paths {
		tc := domain.TestCase{
			ID:    i + 1,
			Steps: make([]domain.Step, 0, len(p)),
		}
		for _, t := range p {
			tc.Steps = append(tc.Steps, gen.step(t))
		}
		cases = append(cases, tc)
	}
	return cases
}

func (gen *Generator) step(t *domain.Transition) domain.Step {
	s := domain.Step{
		Action:   t.Action,
		Input:    gen.sentinel,
		Expected: gen.sentinel,
	}
	if in, ok := t.InputData(); ok {
		s.Input = in
	}
	// A missing target means a dangling transition; leave the name empty.
	if target, ok := gen.graph.Node(t.TargetID); ok {
		s.TargetNode = target.Name
		if exp, ok := target.ExpectedResult(); ok {
			s.Expected = exp
		}
	}
	return s
}

// Generate finds the start node, enumerates paths and formats them.
// A graph without an initial state yields a Result with NoStart set.
func (gen *Generator) Generate() Result {
	began := time.Now()

	var res Result
	start, ok := gen.FindStartNode()
	if !ok {
		res.NoStart = true
		gen.logger.Info("no initial state flagged", "nodes", gen.graph.NodeCount())
	} else {
		res.StartNode = start
		res.Paths, res.Truncated = gen.collect()
		res.TestCases = gen.FormatTestCases(res.Paths)
		gen.logger.Debug("paths enumerated",
			"start_node", start.Name,
			"paths", len(res.Paths),
			"truncated", res.Truncated,
		)
	}

	if gen.observer != nil {
		gen.observer.ObserveGeneration(res, time.Since(began))
	}
	return res
}

// walker holds the state of one depth-first traversal. The path accumulator
// is shared across branches and restored on backtrack; used tracks the
// transitions on the active branch only.
type walker struct {
	graph   *domain.Graph
	path    Path
	used    map[string]bool
	yield   func(Path) bool
	stopped bool
}

func (w *walker) emit() bool {
	if !w.yield(slices.Clone(w.path)) {
		w.stopped = true
	}
	return !w.stopped
}

// visit explores nodeID and reports false once the consumer stopped.
func (w *walker) visit(nodeID string) bool {
	outgoing := w.graph.Outgoing(nodeID)
	if len(outgoing) == 0 {
		if len(w.path) > 0 {
			return w.emit()
		}
		return true
	}

	for _, t := range outgoing {
		if w.used[t.ID] {
			// Cycle: the path ends here, once per closing transition.
			if !w.emit() {
				return false
			}
			continue
		}

		w.used[t.ID] = true
		w.path = append(w.path, t)
		ok := w.visit(t.TargetID)
		w.path = w.path[:len(w.path)-1]
		delete(w.used, t.ID)
		if !ok {
			return false
		}
	}
	return true
}
