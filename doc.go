/*
Package axon is a typed pipeline composition engine.

An Axon is a reusable, type-checked chain of transitions that is built once and
executed many times, concurrently. Every composition call grows two things in
lock-step: the executor that runs the chain, and a Schematic that describes it.

# Concept

Each transition turns an input into an Outcome:

  - Next(value) continues with the following transition.
  - Branch, Jump and Emit stop the chain and carry an identifier plus payload.
  - Fault stops the chain with a domain error.

Once a transition produces anything other than Next, every later transition is
skipped and that outcome is returned to the caller untouched.

Transitions share a compile-time Resources bundle (R) and a per-execution Bus,
a type-indexed map for cross-cutting values such as the execution Timeline.

# Observability

When a Timeline is on the Bus, or an Exporter is configured, each node visit
records enter/exit events. After the outermost Execute, the exporter samples the
execution deterministically by Bus id, lets the adaptive policy force export of
faulting or branching runs, and persists the timeline (overwrite, append or
rotate). Lifecycle hooks and OpenTelemetry spans fire for every node visit.

# Usage

	checkout := axon.Then(
		axon.Start[Order, Inventory, error]("Checkout").Then(validate),
		reserve,
	)
	out, err := checkout.Execute(ctx, order, inventory, bus.New())
*/
package axon
