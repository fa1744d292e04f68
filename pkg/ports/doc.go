/*
Package ports defines the driven ports (interfaces) of the Tafel assistant.

These interfaces decouple the conversation core from external implementations,
allowing the assistant to work with various storage backends, mail transports
and query logs.

# Key Interfaces

  - SessionStore: Responsible for persisting and loading per-client Sessions.
  - DistributedLocker: Provides distributed locking for concurrent session access across replicas.
  - Notifier: Delivers a finalized Reservation to the restaurant staff.
  - QueryRecorder: Records questions the knowledge base could not answer.
*/
package ports
