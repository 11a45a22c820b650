/*
Package manager drives journeys on behalf of a request handler.

A Manager owns the definitions of every journey of the application. Each
operation takes the caller's journey token explicitly, performs the requested
move and returns an Outcome carrying the new token, the stage to show and the
back link to offer. Nothing is kept between calls: the token is the state.

Journeys can also be persisted per session through a ports.JourneyStore, so a
user may resume one later with RestoreCurrentStage.
*/
package manager
