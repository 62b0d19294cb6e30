/*
Package domain contains the core value types of the Axon engine.

It is kept pure and free of I/O so every adapter can depend on it.

# Key Entities

  - Outcome: the control-flow value threaded between transitions (Next, Branch, Jump, Emit, Fault).
  - Schematic: the static node/edge graph that mirrors how a circuit was composed.
  - Timeline: the ordered enter/exit/branch events of one execution.
  - LifecycleHooks: callbacks fired around every node visit.
*/
package domain
