package generator_test

import (
	"testing"

	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/aretw0/mbtassist/pkg/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTestCases_LinearChain(t *testing.T) {
	g := linearChain(t)
	gen := generator.New(g)

	cases := gen.FormatTestCases(gen.GenerateAllPaths())

	require.Len(t, cases, 1)
	assert.Equal(t, 1, cases[0].ID)
	require.Len(t, cases[0].Steps, 2)
	assert.Equal(t, "Mid", cases[0].Steps[0].TargetNode)
	assert.Equal(t, "End", cases[0].Steps[1].TargetNode)
}

func TestFormatTestCases_Properties(t *testing.T) {
	g := domain.NewGraph()
	login := g.AddNode("Login")
	home := g.AddNode("Home")
	errPage := g.AddNode("Error")
	require.NoError(t, g.SetInitial(login.ID))
	home.Properties.Set(domain.KeyExpectedResult, domain.String("Dashboard is shown"))

	ok := g.AddTransition(login, home, "Submit valid credentials")
	ok.Properties.Set(domain.KeyInputData, domain.String("admin / secret"))
	g.AddTransition(login, errPage, "Submit empty form")

	tests := []struct {
		name     string
		opts     []generator.Option
		expected []domain.TestCase
	}{
		{
			name: "Default Sentinel",
			expected: []domain.TestCase{
				{ID: 1, Steps: []domain.Step{{
					Action: "Submit valid credentials", Input: "admin / secret",
					Expected: "Dashboard is shown", TargetNode: "Home",
				}}},
				{ID: 2, Steps: []domain.Step{{
					Action: "Submit empty form", Input: "N/A",
					Expected: "N/A", TargetNode: "Error",
				}}},
			},
		},
		{
			name: "Custom Sentinel",
			opts: []generator.Option{generator.WithSentinel("-")},
			expected: []domain.TestCase{
				{ID: 1, Steps: []domain.Step{{
					Action: "Submit valid credentials", Input: "admin / secret",
					Expected: "Dashboard is shown", TargetNode: "Home",
				}}},
				{ID: 2, Steps: []domain.Step{{
					Action: "Submit empty form", Input: "-",
					Expected: "-", TargetNode: "Error",
				}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := generator.New(g, tt.opts...)
			assert.Equal(t, tt.expected, gen.FormatTestCases(gen.GenerateAllPaths()))
		})
	}
}

func TestFormatTestCases_PureAndRepeatable(t *testing.T) {
	g := linearChain(t)
	gen := generator.New(g)
	paths := gen.GenerateAllPaths()
	before := paths[0].IDs()
	nodes, transitions := g.NodeCount(), g.TransitionCount()

	first := gen.FormatTestCases(paths)
	second := gen.FormatTestCases(paths)

	assert.Equal(t, first, second)
	assert.Equal(t, before, paths[0].IDs())
	assert.Equal(t, nodes, g.NodeCount())
	assert.Equal(t, transitions, g.TransitionCount())
}

func TestFormatTestCases_Empty(t *testing.T) {
	gen := generator.New(domain.NewGraph())
	assert.Empty(t, gen.FormatTestCases(nil))
}
