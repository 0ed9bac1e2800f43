package dsl_test

import (
	"testing"

	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/aretw0/mbtassist/pkg/dsl"
	"github.com/aretw0/mbtassist/pkg/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	b := dsl.New()

	b.Add("Login").
		Initial().
		Go("Submit valid credentials", "Home").Input("alice / secret").
		Go("Submit empty form", "Login")

	b.Add("Home").
		Expect("Dashboard is shown").
		Go("Log out", "Login")

	g, err := b.Build()
	require.NoError(t, err)

	nodes := g.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "Login", nodes[0].Name)
	assert.True(t, nodes[0].IsInitial())
	exp, ok := nodes[1].ExpectedResult()
	require.True(t, ok)
	assert.Equal(t, "Dashboard is shown", exp)

	transitions := g.Transitions()
	require.Len(t, transitions, 3)
	assert.Equal(t, "Submit valid credentials", transitions[0].Action)
	in, ok := transitions[0].InputData()
	require.True(t, ok)
	assert.Equal(t, "alice / secret", in)
	_, ok = transitions[1].InputData()
	assert.False(t, ok, "Input applies only to the preceding Go")
	assert.Equal(t, nodes[0].ID, transitions[1].TargetID)
}

func TestBuilder_FeedsGenerator(t *testing.T) {
	b := dsl.New()
	b.Add("Start").Initial().Go("A", "Mid").
		Add("Mid").Go("B", "End").
		Add("End").Expect("done")

	gen := generator.New(b.MustBuild())
	cases := gen.FormatTestCases(gen.GenerateAllPaths())

	require.Len(t, cases, 1)
	assert.Equal(t, []domain.Step{
		{Action: "A", Input: "N/A", Expected: "N/A", TargetNode: "Mid"},
		{Action: "B", Input: "N/A", Expected: "done", TargetNode: "End"},
	}, cases[0].Steps)
}

func TestBuilder_ChainEndsWithBuild(t *testing.T) {
	g := dsl.New().
		Add("Login").Initial().Go("submit", "Home").
		Add("Home").Expect("Welcome").Go("logout", "Login").
		MustBuild()

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 2, g.TransitionCount())

	_, err := dsl.New().
		Add("A").Initial().
		Add("B").Initial().
		Build()
	assert.ErrorIs(t, err, dsl.ErrMultipleInitial)
}

func TestBuilder_MultipleInitial(t *testing.T) {
	b := dsl.New()
	b.Add("A").Initial()
	b.Add("B").Initial()

	_, err := b.Build()
	assert.ErrorIs(t, err, dsl.ErrMultipleInitial)
	assert.Panics(t, func() { b.MustBuild() })
}

func TestBuilder_InputWithoutGo(t *testing.T) {
	b := dsl.New()
	b.Add("A").Input("ignored")

	g, err := b.Build()
	require.NoError(t, err)
	assert.Zero(t, g.TransitionCount())
}
