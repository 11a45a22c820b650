/*
Package ports defines the driven ports (interfaces) of the journey engine.

These interfaces decouple the manager from storage and coordination
backends.

# Key Interfaces

  - JourneyStore: persists serialised journeys per session and journey name.
  - DistributedLocker: serialises concurrent requests of one session across replicas.
*/
package ports
