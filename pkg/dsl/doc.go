/*
Package dsl provides a fluent builder for interaction models.

It lets tests, examples and tools describe a state machine in Go instead of a
project file. States are referred to by name; the first reference creates
the state, and transitions keep the order in which they were declared, which
is also the order the generator explores them in.

Example usage:

	b := dsl.New()

	b.Add("Login").
		Initial().
		Go("Submit valid credentials", "Home").Input("alice / secret").
		Go("Submit empty form", "Login")

	b.Add("Home").
		Expect("Dashboard is shown")

	graph, err := b.Build()
*/
package dsl
