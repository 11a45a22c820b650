/*
Package session coordinates access to the journeys persisted for a user
session.

Requests of the same session are serialised with a local lock and, when
configured, a distributed lock shared by all replicas. A load, fire and save
sequence run inside WithLock therefore never interleaves with another request
of the same session.
*/
package session
