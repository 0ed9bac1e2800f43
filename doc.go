/*
Package mbtassist generates test cases from an interaction model.

A model is a directed graph: states (Nodes) linked by user actions
(Transitions). One state is flagged initial. Every path from that state,
following each transition at most once per path, becomes one test case whose
steps list the action, the input data and the expected result.

# Concept

The graph lives in pkg/domain and the path enumeration in pkg/generator.
Projects are persisted through the ports.ProjectStore port, with memory,
file (JSON/YAML) and Redis adapters. The same model can be edited over HTTP
(pkg/adapters/http) or queried by AI agents over MCP (pkg/adapters/mcp).

# Usage

Build a model with the dsl package, or edit the Graph directly, then generate:

	a := mbtassist.New()
	g := a.Graph()
	login := g.AddNode("Login")
	home := g.AddNode("Home")
	_ = g.SetInitial(login.ID)
	g.AddTransition(login, home, "submit")

	res := a.Generate()
	for _, tc := range res.TestCases {
		fmt.Println(tc.ID, len(tc.Steps))
	}

A Graph without an initial state yields no test cases; Result.NoStart tells
the caller why.
*/
package mbtassist
