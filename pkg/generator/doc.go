/*
Package generator derives black-box test cases from an interaction model.

A Generator is bound to a live *domain.Graph and reads its current state on
every call. It enumerates execution paths with a depth-first walk from the
initial Node:

  - a path ends at a terminal Node (no outgoing Transitions), or
  - where following a Transition would reuse one already on the same path
    (a closed cycle).

Outgoing Transitions are tried in the Graph's insertion order, so the output
is deterministic. Each path is then formatted into a domain.TestCase whose
steps carry the action, the transition's input_data and the target's
expected_result.

# Usage

	gen := generator.New(graph, generator.WithLogger(logger))
	res := gen.Generate()
	if res.NoStart {
		// ask the user to flag an initial state
	}
	for _, tc := range res.TestCases {
		fmt.Println(tc.ID, len(tc.Steps))
	}

Walk exposes the same traversal lazily, as an iter.Seq.
*/
package generator
