package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/definition"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/session"
	"go.uber.org/multierr"
)

// ErrNoStore is returned by persistence operations when no store is configured.
var ErrNoStore = errors.New("no journey store configured")

// Manager executes journeys. It is safe for concurrent use: definitions are
// read-only and every call works on its own copy of the journey.
type Manager struct {
	defs     map[string]*definition.Definition
	sessions *session.Manager
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	now      func() time.Time
}

// New creates a Manager serving defs. Journey names must be unique.
func New(defs []*definition.Definition, opts ...Option) (*Manager, error) {
	if len(defs) == 0 {
		return nil, domain.Definitionf("no journey definitions supplied")
	}

	m := &Manager{
		defs:   make(map[string]*definition.Definition, len(defs)),
		logger: logging.NewNop(),
		now:    time.Now,
	}

	var errs error
	for _, def := range defs {
		if _, dup := m.defs[def.Name()]; dup {
			errs = multierr.Append(errs, domain.Definitionf("journey '%s' is defined more than once", def.Name()))
			continue
		}
		m.defs[def.Name()] = def
	}
	if errs != nil {
		return nil, errs
	}

	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Definition returns the definition of the named journey.
func (m *Manager) Definition(name string) (*definition.Definition, error) {
	def, ok := m.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w '%s'", domain.ErrUnknownJourney, name)
	}
	return def, nil
}

// Journeys returns the names of all journeys, sorted.
func (m *Manager) Journeys() []string {
	names := make([]string, 0, len(m.defs))
	for name := range m.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sessions returns the session manager, nil without a store.
func (m *Manager) Sessions() *session.Manager {
	return m.sessions
}

// StartJourney begins a fresh journey at the start stage of name.
func (m *Manager) StartJourney(ctx context.Context, name string) (*Outcome, error) {
	def, err := m.Definition(name)
	if err != nil {
		return nil, err
	}

	start := def.StartStage()
	journey := domain.NewJourney(name, start.ID)

	m.logger.Debug("Journey started", "journey", name, "stage", start.Name)
	m.emit(ctx, &domain.JourneyEvent{Type: domain.HookStart, Journey: name, To: start.Name})

	return m.present(ctx, def, journey, start)
}

// PerformTransition fires event at the current stage of the journey in token.
func (m *Manager) PerformTransition(ctx context.Context, token string, event domain.Event) (*Outcome, error) {
	return m.perform(ctx, token, event, nil, false)
}

// PerformParamTransition fires a parameterised event carrying arg.
func PerformParamTransition[T domain.EventArg](ctx context.Context, m *Manager, token string, event domain.ParamEvent[T], arg T) (*Outcome, error) {
	return m.perform(ctx, token, event, arg, true)
}

// PerformEvent fires any event. Adapters decoding events from requests use
// it; hasArg must match the kind of event.
func (m *Manager) PerformEvent(ctx context.Context, token string, event domain.EventKey, arg any, hasArg bool) (*Outcome, error) {
	return m.perform(ctx, token, event, arg, hasArg)
}

func (m *Manager) perform(ctx context.Context, token string, event domain.EventKey, arg any, hasArg bool) (*Outcome, error) {
	began := m.now()

	journey, def, err := m.load(token)
	if err != nil {
		return nil, err
	}
	current, err := def.ResolveStage(journey.CurrentStageID())
	if err != nil {
		m.fail(ctx, journey.Name, journey.CurrentStageID(), event.Mnemonic(), err)
		return nil, err
	}

	res, err := def.Fire(ctx, current.ID, event, arg, hasArg)
	if err != nil {
		m.fail(ctx, journey.Name, current.Name, event.Mnemonic(), err)
		return nil, err
	}
	tr, err := res.Wait(ctx)
	if err != nil {
		m.fail(ctx, journey.Name, current.Name, event.Mnemonic(), err)
		return nil, err
	}

	m.apply(journey, tr)

	m.logger.Debug("Journey transition",
		"journey", journey.Name,
		"previous_stage", current.Name,
		"event", event.Mnemonic(),
		"new_stage", tr.Next.Name,
	)
	m.emit(ctx, &domain.JourneyEvent{
		Type:      domain.HookTransition,
		Journey:   journey.Name,
		From:      current.Name,
		To:        tr.Next.Name,
		Event:     event.Mnemonic(),
		Direction: tr.Direction,
		Decisions: tr.Decisions,
		Duration:  m.now().Sub(began),
	})

	return m.present(ctx, def, journey, tr.Next)
}

// NavigateBack returns to the previous stage of the journey. From the first
// stage it leaves through the exit link when the journey has one.
// The history is trusted as is: no transition is re-evaluated.
func (m *Manager) NavigateBack(ctx context.Context, token string) (*Outcome, error) {
	journey, def, err := m.load(token)
	if err != nil {
		return nil, err
	}
	from := journey.CurrentStageID()

	if journey.PopStage() {
		stage, err := def.ResolveStage(journey.CurrentStageID())
		if err != nil {
			return nil, err
		}
		m.emit(ctx, &domain.JourneyEvent{
			Type:      domain.HookBack,
			Journey:   journey.Name,
			From:      m.stageName(def, from),
			To:        stage.Name,
			Direction: domain.Backward,
		})
		return m.present(ctx, def, journey, stage)
	}

	if exit, ok := def.ExitLink(); ok {
		m.logger.Debug("Journey exited", "journey", journey.Name, "url", exit.URL)
		m.emit(ctx, &domain.JourneyEvent{
			Type:      domain.HookExit,
			Journey:   journey.Name,
			From:      m.stageName(def, from),
			Direction: domain.Backward,
		})
		return &Outcome{
			BackLink:    domain.SuppressedBackLink(),
			RedirectURL: exit.URL,
			Exited:      true,
		}, nil
	}

	return nil, fmt.Errorf("%w: journey '%s' is at its first stage", domain.ErrCannotGoBack, journey.Name)
}

// URIForTransition returns the entry URL of the callable stage event leads
// to, carrying the token the user will hold once there. Transitions through
// decision stages cannot be turned into URIs.
func (m *Manager) URIForTransition(ctx context.Context, token string, event domain.Event) (string, error) {
	return m.uri(ctx, token, event, nil, false)
}

// URIForParamTransition is URIForTransition for a parameterised event.
func URIForParamTransition[T domain.EventArg](ctx context.Context, m *Manager, token string, event domain.ParamEvent[T], arg T) (string, error) {
	return m.uri(ctx, token, event, arg, true)
}

func (m *Manager) uri(ctx context.Context, token string, event domain.EventKey, arg any, hasArg bool) (string, error) {
	journey, def, err := m.load(token)
	if err != nil {
		return "", err
	}
	current, err := def.ResolveStage(journey.CurrentStageID())
	if err != nil {
		return "", err
	}

	// Deciders started for a non-immediate result are abandoned.
	fireCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	res, err := def.Fire(fireCtx, current.ID, event, arg, hasArg)
	if err != nil {
		return "", err
	}

	tr, ok := res.ImmediateResult()
	if !ok {
		return "", &domain.ResolutionError{
			Stage:  current.Name,
			Event:  event.Mnemonic(),
			Reason: "cannot get a URI for a transition with decision stages",
		}
	}
	if !tr.Next.IsCallable() {
		return "", &domain.ResolutionError{
			Stage:  current.Name,
			Event:  event.Mnemonic(),
			Reason: fmt.Sprintf("%s is not callable", tr.Next),
		}
	}

	m.apply(journey, tr)
	return WithJourneyParam(tr.Next.EntryURL, journey.String())
}

// CurrentStageName returns the internal name of the current stage.
func (m *Manager) CurrentStageName(token string) (string, error) {
	journey, def, err := m.load(token)
	if err != nil {
		return "", err
	}
	stage, err := def.ResolveStage(journey.CurrentStageID())
	if err != nil {
		return "", err
	}
	return stage.Name, nil
}

// BackLinkFor computes the back link of any page holding token. Without a
// token the link is suppressed.
func (m *Manager) BackLinkFor(token string) (domain.BackLink, error) {
	if token == "" {
		return domain.SuppressedBackLink(), nil
	}
	journey, def, err := m.load(token)
	if err != nil {
		return domain.BackLink{}, err
	}
	return m.backLink(def, journey), nil
}

// load parses token and finds its definition.
func (m *Manager) load(token string) (*domain.Journey, *definition.Definition, error) {
	journey, err := domain.ParseJourney(token)
	if err != nil {
		return nil, nil, err
	}
	def, err := m.Definition(journey.Name)
	if err != nil {
		return nil, nil, err
	}
	return journey, def, nil
}

func (m *Manager) apply(journey *domain.Journey, tr domain.TransitionResult) {
	if tr.Direction == domain.Backward {
		if !journey.PopBackToStage(tr.Next.ID) {
			m.logger.Warn("Journey history depleted moving back",
				"journey", journey.Name,
				"stage", tr.Next.Name,
			)
		}
		return
	}
	journey.PushStage(tr.Next.ID)
}

// present builds the outcome of arriving at stage.
func (m *Manager) present(ctx context.Context, def *definition.Definition, journey *domain.Journey, stage *domain.Stage) (*Outcome, error) {
	out := &Outcome{
		Journey:  journey,
		Token:    journey.String(),
		Stage:    stage,
		BackLink: m.backLink(def, journey),
	}

	if stage.IsCallable() {
		u, err := WithJourneyParam(stage.EntryURL, out.Token)
		if err != nil {
			return nil, fmt.Errorf("invalid entry URL of %s: %w", stage, err)
		}
		out.RedirectURL = u
		return out, nil
	}

	if stage.Render != nil {
		resp, err := stage.Render(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", stage, err)
		}
		out.Response = resp
	}
	return out, nil
}

// backLink points to the previous stage, else the exit link, else nothing.
func (m *Manager) backLink(def *definition.Definition, journey *domain.Journey) domain.BackLink {
	if prevID, ok := journey.PreviousStageID(); ok {
		prev, err := def.ResolveStage(prevID)
		if err == nil {
			return domain.BackLink{Prompt: prev.DisplayName}
		}
		m.logger.Warn("Back link stage not found", "journey", journey.Name, "stage_id", prevID)
		return domain.SuppressedBackLink()
	}
	if exit, ok := def.ExitLink(); ok {
		return domain.BackLink{Prompt: exit.Prompt, URL: exit.URL}
	}
	return domain.SuppressedBackLink()
}

func (m *Manager) stageName(def *definition.Definition, id string) string {
	if s, err := def.ResolveStage(id); err == nil {
		return s.Name
	}
	return id
}

func (m *Manager) emit(ctx context.Context, e *domain.JourneyEvent) {
	if m.hooks.OnStage == nil {
		return
	}
	e.Timestamp = m.now()
	m.hooks.OnStage(ctx, e)
}

func (m *Manager) fail(ctx context.Context, journey, stage, event string, err error) {
	m.logger.Debug("Journey transition failed",
		"journey", journey,
		"stage", stage,
		"event", event,
		"err", err,
	)
	if m.hooks.OnFailure == nil {
		return
	}
	m.hooks.OnFailure(ctx, &domain.FailureEvent{
		Timestamp: m.now(),
		Journey:   journey,
		Stage:     stage,
		Event:     event,
		Err:       err,
	})
}
