package output

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agora/internal/domain/entities"
)

type ParticipantRepository interface {
	// Create inserts a fresh registered row. Returns domain.ErrAlreadyJoined
	// when an active row for (event, user) already exists; the storage layer
	// enforces this with a uniqueness constraint, not a read-then-write.
	Create(ctx context.Context, participant *entities.Participant) error
	// FindActive returns the current non-cancelled row for (event, user), or
	// domain.ErrParticipantNotFound when there is none.
	FindActive(ctx context.Context, eventID uuid.UUID, userID string) (*entities.Participant, error)
	FindByEventID(ctx context.Context, eventID uuid.UUID) ([]entities.Participant, error)
	// MarkAttended transitions registered -> attended with an atomic
	// compare-and-set on status. It returns the updated row, or nil when no
	// registered row matched (already attended, cancelled, or never joined).
	MarkAttended(ctx context.Context, eventID uuid.UUID, userID string, at time.Time) (*entities.Participant, error)
	// CancelActive transitions registered -> cancelled with the same
	// compare-and-set discipline. False when no registered row matched.
	CancelActive(ctx context.Context, eventID uuid.UUID, userID string, at time.Time) (bool, error)
	CountByEventIDAndStatus(ctx context.Context, eventID uuid.UUID, status string) (int64, error)
}
