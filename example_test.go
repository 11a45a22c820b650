package waypoint_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
	"github.com/aretw0/waypoint/pkg/manager"
)

// ExampleNew declares a small journey in memory and walks through it.
func ExampleNew() {
	b := dsl.New()
	name := b.DefineStage("name", "Your name", nil)
	age := b.DefineStage("age", "Your age", nil)
	done := b.DefineStage("done", "Finished", nil)

	b.AtStage(name).OnEvent(domain.EventNext).Then(dsl.MoveTo(age))
	b.AtStage(age).OnEvent(domain.EventNext).Then(dsl.MoveTo(done))
	b.DefineJourney("signup", name, dsl.WithExitLink("/", "Home"))

	eng, err := waypoint.New(waypoint.WithBuilders(b))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	out, err := eng.StartJourney(ctx, "signup")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out.Stage.Name, "back:", out.BackLink.Prompt)

	out, err = eng.PerformTransition(ctx, out.Token, domain.EventNext)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out.Stage.Name, "back:", out.BackLink.Prompt)

	out, err = eng.NavigateBack(ctx, out.Token)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out.Stage.Name)

	// Output:
	// name back: Home
	// age back: Your name
	// name
}

// ExampleNew_branch selects the next stage from the argument of an event.
func ExampleNew_branch() {
	b := dsl.New()
	question := b.DefineStage("question", "Do you agree?", nil)
	yes := b.DefineStage("agreed", "Agreed", nil)
	no := b.DefineCallableStage("help", "Help", "/help")
	agree := domain.NewParamEvent[bool]("agree")

	dsl.OnParamEvent(b.AtStage(question), agree).Branch().
		When(true, dsl.MoveTo(yes)).
		When(false, dsl.MoveTo(no))
	b.DefineJourney("terms", question)

	eng, err := waypoint.New(waypoint.WithBuilders(b))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	out, _ := eng.StartJourney(ctx, "terms")

	uri, err := manager.URIForParamTransition(ctx, eng.Manager, out.Token, agree, false)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(strings.HasPrefix(uri, "/help?ctx_journey=terms~"))

	out, err = manager.PerformParamTransition(ctx, eng.Manager, out.Token, agree, true)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out.Stage.Name)

	// Output:
	// true
	// agreed
}
