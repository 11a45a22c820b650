package domain

import (
	"context"
	"time"
)

// HookType tells which part of the journey lifecycle produced an event.
type HookType string

const (
	HookStart      HookType = "start"
	HookTransition HookType = "transition"
	HookBack       HookType = "back"
	HookExit       HookType = "exit"
	HookRestore    HookType = "restore"
)

// JourneyEvent describes a change of the current stage of a journey.
type JourneyEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      HookType      `json:"type"`
	Journey   string        `json:"journey"`
	From      string        `json:"from,omitempty"`
	To        string        `json:"to,omitempty"`
	Event     string        `json:"event,omitempty"`
	Direction Direction     `json:"direction"`
	Decisions []string      `json:"decisions,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// FailureEvent describes a transition that could not be performed.
type FailureEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Journey   string    `json:"journey"`
	Stage     string    `json:"stage,omitempty"`
	Event     string    `json:"event,omitempty"`
	Err       error     `json:"-"`
}

// LifecycleHooks defines callbacks for journey observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnStage   func(context.Context, *JourneyEvent)
	OnFailure func(context.Context, *FailureEvent)
}

// Merge returns hooks calling h first, then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStage: func(ctx context.Context, e *JourneyEvent) {
			if h.OnStage != nil {
				h.OnStage(ctx, e)
			}
			if other.OnStage != nil {
				other.OnStage(ctx, e)
			}
		},
		OnFailure: func(ctx context.Context, e *FailureEvent) {
			if h.OnFailure != nil {
				h.OnFailure(ctx, e)
			}
			if other.OnFailure != nil {
				other.OnFailure(ctx, e)
			}
		},
	}
}
