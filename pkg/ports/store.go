package ports

import (
	"context"
)

// JourneyStore persists serialised journeys server side, so a user can
// resume a journey without carrying its token.
// Journeys are scoped by session: one token per (session, journey name).
type JourneyStore interface {
	// Save stores the token of the named journey for the session,
	// replacing any previous one.
	Save(ctx context.Context, sessionID, journey, token string) error

	// Load returns the token stored for the named journey.
	// Returns domain.ErrJourneyNotFound if nothing is stored.
	Load(ctx context.Context, sessionID, journey string) (string, error)

	// Delete removes the named journey. Deleting a missing journey is not an error.
	Delete(ctx context.Context, sessionID, journey string) error

	// List returns the names of the journeys stored for the session.
	List(ctx context.Context, sessionID string) ([]string, error)
}
