/*
Package ports defines the driven ports (interfaces) of the assistant.

These interfaces decouple the model and the generator from storage, so a
project can live in memory, on disk or in Redis without the callers knowing.

# Key Interfaces

  - ProjectStore: persists and loads project Documents by name.
  - ProjectLocker: serializes load and save of one project across processes.
*/
package ports
