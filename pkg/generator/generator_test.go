package generator_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/aretw0/mbtassist/pkg/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actions(p generator.Path) []string {
	out := make([]string, len(p))
	for i, t := range p {
		out[i] = t.Action
	}
	return out
}

func allActions(paths []generator.Path) [][]string {
	out := make([][]string, len(paths))
	for i, p := range paths {
		out[i] = actions(p)
	}
	return out
}

func linearChain(t *testing.T) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	start := g.AddNode("Start")
	mid := g.AddNode("Mid")
	end := g.AddNode("End")
	require.NoError(t, g.SetInitial(start.ID))
	g.AddTransition(start, mid, "A")
	g.AddTransition(mid, end, "B")
	return g
}

func TestFindStartNode(t *testing.T) {
	t.Run("No Initial Node", func(t *testing.T) {
		g := domain.NewGraph()
		g.AddNode("A")
		g.AddNode("B")

		_, ok := generator.New(g).FindStartNode()
		assert.False(t, ok)
	})

	t.Run("Initial Node Is Not First", func(t *testing.T) {
		g := domain.NewGraph()
		g.AddNode("A")
		g.AddNode("B")
		c := g.AddNode("C")
		require.NoError(t, g.SetInitial(c.ID))

		got, ok := generator.New(g).FindStartNode()
		require.True(t, ok)
		assert.Same(t, c, got)
	})

	t.Run("Flag Set To False", func(t *testing.T) {
		g := domain.NewGraph()
		a := g.AddNode("A")
		a.Properties.Set(domain.KeyIsInitial, domain.Bool(false))

		_, ok := generator.New(g).FindStartNode()
		assert.False(t, ok)
	})
}

func TestGenerateAllPaths(t *testing.T) {
	t.Run("No Start Node Yields Nothing", func(t *testing.T) {
		g := domain.NewGraph()
		a := g.AddNode("A")
		b := g.AddNode("B")
		g.AddTransition(a, b, "go")

		assert.Empty(t, generator.New(g).GenerateAllPaths())
	})

	t.Run("Lone Start Yields Zero Paths", func(t *testing.T) {
		g := domain.NewGraph()
		s := g.AddNode("Start")
		require.NoError(t, g.SetInitial(s.ID))

		assert.Empty(t, generator.New(g).GenerateAllPaths())
	})

	t.Run("Linear Chain", func(t *testing.T) {
		paths := generator.New(linearChain(t)).GenerateAllPaths()
		assert.Equal(t, [][]string{{"A", "B"}}, allActions(paths))
	})

	t.Run("Self Loop Terminates", func(t *testing.T) {
		g := domain.NewGraph()
		s := g.AddNode("Start")
		require.NoError(t, g.SetInitial(s.ID))
		g.AddTransition(s, s, "A")

		paths := generator.New(g).GenerateAllPaths()
		assert.Equal(t, [][]string{{"A"}}, allActions(paths))
	})

	t.Run("Two Branches", func(t *testing.T) {
		g := domain.NewGraph()
		s := g.AddNode("Start")
		x := g.AddNode("X")
		y := g.AddNode("Y")
		require.NoError(t, g.SetInitial(s.ID))
		g.AddTransition(s, x, "toX")
		g.AddTransition(s, y, "toY")

		paths := generator.New(g).GenerateAllPaths()
		assert.Equal(t, [][]string{{"toX"}, {"toY"}}, allActions(paths))
	})

	t.Run("Cycle Back To Start", func(t *testing.T) {
		// Start -login-> Home -logout-> Start, Home -quit-> End
		g := domain.NewGraph()
		s := g.AddNode("Start")
		home := g.AddNode("Home")
		end := g.AddNode("End")
		require.NoError(t, g.SetInitial(s.ID))
		g.AddTransition(s, home, "login")
		g.AddTransition(home, s, "logout")
		g.AddTransition(home, end, "quit")

		paths := generator.New(g).GenerateAllPaths()
		assert.Equal(t, [][]string{
			{"login", "logout"},
			{"login", "quit"},
		}, allActions(paths))
	})

	t.Run("Each Closing Transition Records The Path", func(t *testing.T) {
		g := domain.NewGraph()
		s := g.AddNode("Start")
		require.NoError(t, g.SetInitial(s.ID))
		g.AddTransition(s, s, "A")
		g.AddTransition(s, s, "B")

		paths := generator.New(g).GenerateAllPaths()
		assert.Equal(t, [][]string{
			{"A"},
			{"A", "B"},
			{"A", "B"},
			{"B", "A"},
			{"B", "A"},
			{"B"},
		}, allActions(paths))
	})

	t.Run("Insertion Order Drives Output", func(t *testing.T) {
		g := domain.NewGraph()
		s := g.AddNode("Start")
		a := g.AddNode("A")
		b := g.AddNode("B")
		require.NoError(t, g.SetInitial(s.ID))
		g.AddTransition(s, b, "second-node-first")
		g.AddTransition(s, a, "first-node-second")

		paths := generator.New(g).GenerateAllPaths()
		assert.Equal(t, [][]string{{"second-node-first"}, {"first-node-second"}}, allActions(paths))
	})
}

func TestGenerateAllPaths_NoRepeatedTransitions(t *testing.T) {
	// Dense graph: every node links to every node, including itself.
	g := domain.NewGraph()
	nodes := []*domain.Node{g.AddNode("A"), g.AddNode("B"), g.AddNode("C")}
	require.NoError(t, g.SetInitial(nodes[0].ID))
	for _, from := range nodes {
		for _, to := range nodes {
			g.AddTransition(from, to, from.Name+to.Name)
		}
	}

	paths := generator.New(g).GenerateAllPaths()
	require.NotEmpty(t, paths)
	for _, p := range paths {
		require.NotEmpty(t, p)
		seen := make(map[string]bool)
		for _, id := range p.IDs() {
			assert.False(t, seen[id], "transition %s repeated in path %v", id, actions(p))
			seen[id] = true
		}
		assert.LessOrEqual(t, len(p), g.TransitionCount())
		assert.Equal(t, nodes[0].ID, p[0].SourceID, "paths start at the initial node")
	}
}

func TestWalk_StopsEarly(t *testing.T) {
	g := domain.NewGraph()
	s := g.AddNode("Start")
	require.NoError(t, g.SetInitial(s.ID))
	for _, name := range []string{"a", "b", "c", "d"} {
		g.AddTransition(s, g.AddNode(name), name)
	}

	var seen []string
	for p := range generator.New(g).Walk() {
		seen = append(seen, actions(p)...)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestWalk_YieldsIndependentSlices(t *testing.T) {
	g := linearChain(t)
	var paths []generator.Path
	for p := range generator.New(g).Walk() {
		paths = append(paths, p)
	}
	require.Len(t, paths, 1)
	paths[0][0] = nil

	again := generator.New(g).GenerateAllPaths()
	assert.NotNil(t, again[0][0])
}

func TestGenerate(t *testing.T) {
	t.Run("No Start", func(t *testing.T) {
		g := domain.NewGraph()
		g.AddNode("Orphan")

		res := generator.New(g).Generate()
		assert.True(t, res.NoStart)
		assert.Empty(t, res.Paths)
		assert.Empty(t, res.TestCases)
		assert.ErrorIs(t, res.Err(), domain.ErrNoStartNode)
	})

	t.Run("Max Paths", func(t *testing.T) {
		g := domain.NewGraph()
		s := g.AddNode("Start")
		require.NoError(t, g.SetInitial(s.ID))
		for _, name := range []string{"a", "b", "c"} {
			g.AddTransition(s, g.AddNode(name), name)
		}

		res := generator.New(g, generator.WithMaxPaths(2)).Generate()
		assert.True(t, res.Truncated)
		assert.Len(t, res.TestCases, 2)

		res = generator.New(g, generator.WithMaxPaths(3)).Generate()
		assert.False(t, res.Truncated, "exactly max paths is not a truncation")
		assert.Len(t, res.TestCases, 3)
	})

	t.Run("Logs And Observes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		obs := &recordingObserver{}

		res := generator.New(linearChain(t), generator.WithLogger(logger), generator.WithObserver(obs)).Generate()

		assert.NoError(t, res.Err())
		assert.Equal(t, "Start", res.StartNode.Name)
		assert.Contains(t, buf.String(), "paths=1")
		require.Len(t, obs.results, 1)
		assert.Len(t, obs.results[0].Paths, 1)
	})
}

type recordingObserver struct {
	results []generator.Result
}

func (r *recordingObserver) ObserveGeneration(res generator.Result, _ time.Duration) {
	r.results = append(r.results, res)
}
