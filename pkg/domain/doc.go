/*
Package domain contains the core value types of the journey engine.

It defines the nodes of a journey graph, the events that move a user between
them, the transition actions resolved for each (stage, event) pair and the
runtime Journey with its history stack and token encoding. This package is
kept pure and free of I/O so it can be shared by the builder, the definition
and every adapter.

# Key Entities

  - Stage: a screen the user lands on, either callable (fixed URL) or rendered.
  - DecisionStage: a transient node resolved by a read-only decider.
  - Event / ParamEvent: triggers looked up in the transition table.
  - TransitionAction: Move or Branch.
  - Journey: name plus history, serialised as name~id1-id2.
*/
package domain
