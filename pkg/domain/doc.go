/*
Package domain contains the core model of an interaction model used for
model-based test design.

A Graph owns the states (Nodes) and the actions connecting them (Transitions).
Transitions reference their endpoints by id, so the Graph is the single owner of
every entity and deleting a Node cascades to the Transitions touching it. The
package is pure: no I/O, no persistence, no concurrency.

# Key Entities

  - Node: a modeled system state. Its Properties may flag it as the initial state
    (is_initial) and carry the assertion for steps ending there (expected_result).
  - Transition: a directional action between two Nodes. Its Properties may carry
    the input value for the generated step (input_data).
  - Graph: the aggregate root. All creation and deletion goes through it.
  - TestCase: the formatted, exportable form of one enumerated path.
*/
package domain
