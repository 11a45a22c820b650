/*
Package waypoint is a journey engine for multi-step web applications.

A journey is a static graph of stages (screens) connected by events. The
application declares its journeys once, at startup, with a fluent builder;
the engine then drives each user through the graph one request at a time.
The history of visited stages travels with every request as a compact token,
so back navigation works without server-side session affinity.

# Concept

  - Stages are either rendered by the application or callable: owned by
    another part of the site and entered through a URL.
  - Events move the user between stages. Parameterised events carry a typed
    argument that can select a branch.
  - Decision stages are invisible branch points whose outcome is computed by
    a decider function, possibly by calling a remote service.
  - The journey token ("name~id1-id2") is the whole state of a journey. It
    is carried in the ctx_journey request parameter and may also be stored
    server-side through a JourneyStore (memory, Redis or SQLite).

# Usage

	b := dsl.New()
	start := b.DefineStage("start", "Start", renderStart)
	done := b.DefineStage("done", "Done", renderDone)
	b.AtStage(start).OnEvent(domain.EventNext).Then(dsl.MoveTo(done))
	b.DefineJourney("signup", start, dsl.WithExitLink("/", "Home"))

	eng, err := waypoint.New(waypoint.WithBuilders(b))
	if err != nil {
		log.Fatal(err)
	}

	out, err := eng.StartJourney(ctx, "signup")
	// out.Token goes into the next request; out.Response is what to show.
	out, err = eng.PerformTransition(ctx, out.Token, domain.EventNext)

The same engine can be served over HTTP with Engine.Handler, or from the
command line with "waypoint serve".
*/
package waypoint
