package manager

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// SaveJourney stores journey for the session, replacing any previous copy.
func (m *Manager) SaveJourney(ctx context.Context, sessionID string, journey *domain.Journey) error {
	if m.sessions == nil {
		return ErrNoStore
	}
	return m.sessions.Save(ctx, sessionID, journey)
}

// IsJourneySerialised reports whether the named journey is stored for the session.
func (m *Manager) IsJourneySerialised(ctx context.Context, sessionID, name string) (bool, error) {
	if m.sessions == nil {
		return false, ErrNoStore
	}
	return m.sessions.Exists(ctx, sessionID, name)
}

// DiscardJourney removes the stored copy of the named journey.
func (m *Manager) DiscardJourney(ctx context.Context, sessionID, name string) error {
	if m.sessions == nil {
		return ErrNoStore
	}
	return m.sessions.Delete(ctx, sessionID, name)
}

// RestoreCurrentStage resumes the stored journey at its current stage.
func (m *Manager) RestoreCurrentStage(ctx context.Context, sessionID, name string) (*Outcome, error) {
	if m.sessions == nil {
		return nil, ErrNoStore
	}

	journey, err := m.sessions.Load(ctx, sessionID, name)
	if err != nil {
		return nil, err
	}
	def, err := m.Definition(journey.Name)
	if err != nil {
		return nil, err
	}
	stage, err := def.ResolveStage(journey.CurrentStageID())
	if err != nil {
		return nil, err
	}

	m.emit(ctx, &domain.JourneyEvent{Type: domain.HookRestore, Journey: journey.Name, To: stage.Name})
	return m.present(ctx, def, journey, stage)
}
