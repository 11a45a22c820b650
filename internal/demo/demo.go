// Package demo defines the sample export licence journeys served by the CLI.
package demo

import (
	"context"
	"strings"

	"github.com/aretw0/waypoint/pkg/definition"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
)

// Journey names.
const (
	ApplyJourney = "apply-licence"
	RenewJourney = "renew-licence"
)

// Goods categories accepted by the goods-type question.
const (
	GoodsMilitary = "military"
	GoodsDualUse  = "dual-use"
)

// Events fired by the demo journeys.
var (
	GoodsType = domain.NewParamEvent[string]("goods_type")
	Country   = domain.NewParamEvent[string]("country")
)

// Events lists every event a client may fire, for the HTTP adapter.
func Events() []domain.EventKey {
	return []domain.EventKey{
		GoodsType, Country,
		domain.EventNext, domain.EventYes, domain.EventNo, domain.EventCancel,
	}
}

// ControlListCheck reports whether dual-use goods appear on the control
// list. It stands in for a call to a remote rating service.
type ControlListCheck func(ctx context.Context) (bool, error)

type options struct {
	controlList ControlListCheck
	embargoed   map[string]bool
}

// Option configures the demo journeys.
type Option func(*options)

// WithControlListCheck replaces the control list decider.
func WithControlListCheck(fn ControlListCheck) Option {
	return func(o *options) {
		o.controlList = fn
	}
}

// WithEmbargoedCountries replaces the list of embargoed destinations.
func WithEmbargoedCountries(countries ...string) Option {
	return func(o *options) {
		o.embargoed = make(map[string]bool, len(countries))
		for _, c := range countries {
			o.embargoed[strings.ToLower(c)] = true
		}
	}
}

func page(title string) domain.RenderFunc {
	return func(context.Context) (any, error) {
		return map[string]string{"title": title}, nil
	}
}

// Builder declares the apply and renew journeys. They share the summary
// and payment stages.
func Builder(opts ...Option) *dsl.Builder {
	o := &options{
		controlList: func(context.Context) (bool, error) { return true, nil },
	}
	WithEmbargoedCountries("north-korea", "syria")(o)
	for _, opt := range opts {
		opt(o)
	}

	b := dsl.New()

	goods := b.DefineStage("goods-type", "What are you exporting?", page("What are you exporting?"))
	rating := b.DefineStage("control-rating", "Control list rating", page("Enter the control list rating"))
	noLicence := b.DefineStage("no-licence-needed", "No licence needed", page("You do not need a licence"))
	destination := b.DefineStage("destination", "Where are the goods going?", page("Where are the goods going?"))
	embargoed := b.DefineStage("embargoed", "Destination embargoed", page("This destination is under embargo"))
	summary := b.DefineStage("summary", "Check your answers", page("Check your answers"))
	payment := b.DefineCallableStage("payment", "Pay for your licence", "/payments/new?service=licence")
	reference := b.DefineStage("licence-reference", "Existing licence", page("Enter your licence reference"))

	controlled := dsl.DefineDecision(b, "control-list", func(ctx context.Context) (bool, error) {
		return o.controlList(ctx)
	})
	controlled.
		When(true, dsl.MoveTo(rating)).
		When(false, dsl.MoveTo(noLicence))

	dsl.OnParamEvent(b.AtStage(goods), GoodsType).Branch().
		When(GoodsMilitary, dsl.MoveTo(rating)).
		When(GoodsDualUse, dsl.MoveTo(controlled)).
		Otherwise(dsl.MoveTo(noLicence))

	b.AtStage(rating).OnEvent(domain.EventNext).Then(dsl.MoveTo(destination))
	b.AtStage(noLicence).OnEvent(domain.EventCancel).Then(dsl.BackTo(goods))

	dsl.BranchWith(dsl.OnParamEvent(b.AtStage(destination), Country), func(c string) bool {
		return o.embargoed[strings.ToLower(c)]
	}).
		When(true, dsl.MoveTo(embargoed)).
		When(false, dsl.MoveTo(summary))
	b.AtStage(embargoed).OnEvent(domain.EventCancel).Then(dsl.BackTo(destination))

	b.AtStage(summary).OnEvent(domain.EventYes).Then(dsl.MoveTo(payment))
	b.AtStage(summary).OnEvent(domain.EventNo).Then(dsl.BackTo(goods))

	b.AtStage(reference).OnEvent(domain.EventNext).Then(dsl.MoveTo(summary))

	b.DefineJourney(ApplyJourney, goods, dsl.WithExitLink("/dashboard", "Back to dashboard"))
	b.DefineJourney(RenewJourney, reference, dsl.WithExitLink("/dashboard", "Back to dashboard"))
	return b
}

// Definitions builds the demo journeys.
func Definitions(opts ...Option) ([]*definition.Definition, error) {
	return Builder(opts...).BuildAll()
}
