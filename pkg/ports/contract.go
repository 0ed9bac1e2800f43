package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/aretw0/mbtassist/pkg/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunProjectStoreContract runs a suite of tests to verify that a ProjectStore
// implementation adheres to the defined interface contract.
func RunProjectStoreContract(t *testing.T, store ProjectStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	sample := func() *project.Document {
		g := domain.NewGraph()
		start := g.AddNode("Start")
		end := g.AddNode("End")
		_ = g.SetInitial(start.ID)
		end.Properties.Set(domain.KeyExpectedResult, domain.String("done"))
		tr := g.AddTransition(start, end, "finish")
		tr.Properties.Set(domain.KeyInputData, domain.String("42"))
		return project.FromGraph(name, g, &project.Layout{
			Nodes: map[string]project.Point{start.ID: {X: 1, Y: 2}},
		})
	}

	t.Run("Save and Load", func(t *testing.T) {
		doc := sample()

		err := store.Save(ctx, name, doc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, doc.Nodes, loaded.Nodes)
		assert.Equal(t, doc.Transitions, loaded.Transitions)

		g, _, err := loaded.Graph()
		require.NoError(t, err, "loaded document must rebuild a graph")
		assert.Equal(t, 2, g.NodeCount())
	})

	t.Run("Save Isolates Caller", func(t *testing.T) {
		doc := sample()
		require.NoError(t, store.Save(ctx, name, doc))

		doc.Nodes[0].Name = "mutated after save"

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "Start", loaded.Nodes[0].Name)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, sample()))

		err := store.Delete(ctx, name)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound, "Load after Delete should return ErrProjectNotFound")

		assert.NoError(t, store.Delete(ctx, name), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		_ = store.Save(ctx, id1, sample())
		_ = store.Save(ctx, id2, sample())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
		assert.IsNonDecreasing(t, names)
	})
}
