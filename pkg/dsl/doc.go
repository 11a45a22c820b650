/*
Package dsl provides the fluent builder used to declare journeys in Go.

Stages, decisions and transitions are accumulated on a Builder and frozen
into validated definitions by BuildAll. Configuration mistakes (duplicate
stages, duplicate transitions, unregistered targets, missing actions) are
collected while building and reported together by BuildAll, so a broken
graph stops the application at startup.

Example usage:

	b := dsl.New()

	details := b.DefineStage("details", "Your details", renderDetails)
	confirm := b.DefineCallableStage("confirm", "Confirm", "/apply/confirm")
	done := b.DefineStage("done", "Application sent", renderDone)

	b.AtStage(details).OnEvent(domain.EventNext).Then(dsl.MoveTo(confirm))

	dsl.OnParamEvent(b.AtStage(confirm), answer).Branch().
		When(true, dsl.MoveTo(done)).
		When(false, dsl.BackTo(details))

	b.DefineJourney("apply", details)

	defs, err := b.BuildAll()
*/
package dsl
