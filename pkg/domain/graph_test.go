package domain_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() domain.GraphOption {
	n := 0
	return domain.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func TestGraph_AddNode(t *testing.T) {
	g := domain.NewGraph()

	named := g.AddNode("Login")
	unnamed := g.AddNode("")

	assert.Equal(t, "Login", named.Name)
	assert.Equal(t, domain.DefaultNodeName, unnamed.Name)
	assert.NotEmpty(t, named.ID)
	assert.NotEqual(t, named.ID, unnamed.ID)
	assert.NotNil(t, named.Properties, "properties must be writable by the editor")
	assert.Equal(t, 2, g.NodeCount())
}

func TestGraph_AddTransition(t *testing.T) {
	g := domain.NewGraph(sequentialIDs())
	a := g.AddNode("A")
	b := g.AddNode("B")

	tr := g.AddTransition(a, b, "")

	assert.Equal(t, "id-3", tr.ID)
	assert.Equal(t, a.ID, tr.SourceID)
	assert.Equal(t, b.ID, tr.TargetID)
	assert.Equal(t, domain.DefaultAction, tr.Action)
	assert.Equal(t, []*domain.Transition{tr}, g.Outgoing(a.ID))
	assert.Empty(t, g.Outgoing(b.ID))
}

func TestGraph_FindTransition_Directional(t *testing.T) {
	g := domain.NewGraph()
	a := g.AddNode("A")
	b := g.AddNode("B")
	first := g.AddTransition(a, b, "first")
	g.AddTransition(a, b, "second")

	found, ok := g.FindTransition(a, b)
	require.True(t, ok)
	assert.Same(t, first, found, "first by insertion order wins")

	_, ok = g.FindTransition(b, a)
	assert.False(t, ok, "reverse direction must not match")

	reverse := g.AddTransition(b, a, "back")
	found, ok = g.FindTransition(b, a)
	require.True(t, ok)
	assert.Same(t, reverse, found)
}

func TestGraph_ToggleTransition(t *testing.T) {
	g := domain.NewGraph()
	a := g.AddNode("A")
	b := g.AddNode("B")

	created, ok := g.ToggleTransition(a, b, "link")
	require.True(t, ok)
	require.NotNil(t, created)
	assert.Equal(t, 1, g.TransitionCount())

	removed, ok := g.ToggleTransition(a, b, "link")
	assert.False(t, ok)
	assert.Nil(t, removed)
	assert.Equal(t, 0, g.TransitionCount())
}

func TestGraph_DeleteNode_Cascades(t *testing.T) {
	g := domain.NewGraph()
	a := g.AddNode("A")
	b := g.AddNode("B")
	c := g.AddNode("C")
	g.AddTransition(a, b, "ab")
	g.AddTransition(b, c, "bc")
	g.AddTransition(b, b, "loop")
	keep := g.AddTransition(a, c, "ac")

	g.DeleteNode(b.ID)

	_, ok := g.Node(b.ID)
	assert.False(t, ok)
	assert.Equal(t, []*domain.Transition{keep}, g.Transitions())
	for _, tr := range g.Transitions() {
		assert.False(t, tr.Touches(b.ID), "transition %s still references deleted node", tr.ID)
	}
}

func TestGraph_Delete_UnknownIsNoop(t *testing.T) {
	g := domain.NewGraph()
	a := g.AddNode("A")
	g.AddTransition(a, a, "loop")

	g.DeleteNode("missing")
	g.DeleteTransition("missing")

	assert.Equal(t, 1, g.NodeCount())
	assert.Equal(t, 1, g.TransitionCount())
}

func TestGraph_DeleteTransition(t *testing.T) {
	g := domain.NewGraph()
	a := g.AddNode("A")
	b := g.AddNode("B")
	tr := g.AddTransition(a, b, "go")

	g.DeleteTransition(tr.ID)

	_, ok := g.Transition(tr.ID)
	assert.False(t, ok)
	assert.Equal(t, 2, g.NodeCount(), "nodes survive transition deletion")
}

func TestGraph_Clear(t *testing.T) {
	g := domain.NewGraph()
	a := g.AddNode("A")
	g.AddTransition(a, a, "loop")

	g.Clear()

	assert.Zero(t, g.NodeCount())
	assert.Zero(t, g.TransitionCount())
	assert.Empty(t, g.Nodes())
}

func TestGraph_SetInitial(t *testing.T) {
	g := domain.NewGraph()
	a := g.AddNode("A")
	b := g.AddNode("B")

	require.NoError(t, g.SetInitial(a.ID))
	require.NoError(t, g.SetInitial(b.ID))

	assert.False(t, a.IsInitial())
	assert.True(t, b.IsInitial())

	err := g.SetInitial("missing")
	assert.ErrorIs(t, err, domain.ErrUnknownNode)
}

func TestGraph_Restore(t *testing.T) {
	g := domain.NewGraph()

	a, err := g.RestoreNode("n-a", "A", domain.Properties{domain.KeyIsInitial: domain.Bool(true)})
	require.NoError(t, err)
	_, err = g.RestoreNode("n-b", "B", nil)
	require.NoError(t, err)

	tr, err := g.RestoreTransition("t-1", "n-a", "n-b", "go", domain.Properties{domain.KeyInputData: domain.String("x")})
	require.NoError(t, err)
	assert.Equal(t, "t-1", tr.ID)
	assert.True(t, a.IsInitial())

	t.Run("Duplicate Node", func(t *testing.T) {
		_, err := g.RestoreNode("n-a", "again", nil)
		assert.ErrorIs(t, err, domain.ErrDuplicateID)
	})

	t.Run("Empty Node ID", func(t *testing.T) {
		_, err := g.RestoreNode("", "nameless", nil)
		assert.ErrorIs(t, err, domain.ErrEmptyID)
	})

	t.Run("Duplicate Transition", func(t *testing.T) {
		_, err := g.RestoreTransition("t-1", "n-a", "n-b", "go", nil)
		assert.ErrorIs(t, err, domain.ErrDuplicateID)
	})

	t.Run("Dangling Target", func(t *testing.T) {
		_, err := g.RestoreTransition("t-2", "n-a", "ghost", "go", nil)
		assert.ErrorIs(t, err, domain.ErrUnknownNode)
	})

	t.Run("Missing Transition ID Gets Fresh One", func(t *testing.T) {
		tr, err := g.RestoreTransition("", "n-b", "n-a", "back", nil)
		require.NoError(t, err)
		assert.NotEmpty(t, tr.ID)
	})
}

func TestGraph_Clone_IsIndependent(t *testing.T) {
	g := domain.NewGraph()
	a := g.AddNode("A")
	b := g.AddNode("B")
	g.AddTransition(a, b, "go")

	c := g.Clone()
	a.Name = "renamed"
	a.Properties.Set(domain.KeyExpectedResult, domain.String("changed"))
	g.DeleteNode(b.ID)

	ca, ok := c.Node(a.ID)
	require.True(t, ok)
	assert.Equal(t, "A", ca.Name)
	_, has := ca.ExpectedResult()
	assert.False(t, has)
	assert.Equal(t, 1, c.TransitionCount())
}

func TestGraph_ZeroValueUsable(t *testing.T) {
	var g domain.Graph
	n := g.AddNode("A")
	assert.NotEmpty(t, n.ID)
}
