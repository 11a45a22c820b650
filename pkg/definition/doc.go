/*
Package definition holds the validated, immutable graph of a named journey
and resolves events fired against it.

A Definition is built once at startup (usually through package dsl) and then
shared by every request. FireEvent looks up the action registered for the
current stage and event; moves resolve synchronously, while transitions that
pass through decision stages are resolved on a separate goroutine and
delivered through an EventResult.
*/
package definition
