/*
Package ports defines the driven ports (interfaces) of the Axon engine.

These interfaces decouple circuit execution and inspection from concrete
backends.

# Key Interfaces

  - TimelineSink: receives every exported timeline (e.g., Redis, SQLite).
  - TimelineArchive: a sink that can also list what it received.
  - SchematicSource: anything exposing a circuit structure; every Axon satisfies it.
*/
package ports
