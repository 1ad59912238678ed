/*
Package domain contains the core domain models of the digest research pipeline.
It defines the shared execution record, the partial updates steps return, the
persisted history entries and the lifecycle events emitted by the executor.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Record: The shared, versioned state of one run (query, style, step outputs, error).
  - Update: A step's partial result, keyed by Record schema field names.
  - MemoryEntry: The subset of a finished run written to the append-only history.
  - Node/Transition: An introspection view of the pipeline graph.
*/
package domain
