/*
Package ports defines the driven ports (interfaces) of the digest pipeline.

These interfaces decouple the orchestration core from external implementations,
allowing the executor to run against real web search and LLM services, scripted
fakes in tests, or human reviewers, and the hosts to persist runs in various
backends.

# Key Interfaces

  - Step: A pipeline stage returning a partial record update.
  - Searcher, Summarizer, Editor, Approver, FeedbackCollector: Collaborators called by steps.
  - MemoryLog: The append-only history of finished runs.
  - RecordStore: Persists run records so they can be resumed.
  - DistributedLocker: Provides distributed locking for concurrent access to a stored run.
*/
package ports
