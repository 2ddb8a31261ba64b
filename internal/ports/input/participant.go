package input

import (
	"context"

	"github.com/google/uuid"

	"agora/internal/domain"
	"agora/internal/domain/entities"
)

type ParticipantUseCase interface {
	Join(ctx context.Context, locale string, eventID uuid.UUID, caller domain.Caller) (string, error)
	Cancel(ctx context.Context, locale string, eventID uuid.UUID, caller domain.Caller) (string, error)
	StatusFor(ctx context.Context, eventID uuid.UUID, userID string) (domain.ParticipationStatus, error)
	// ListForEvent returns every ledger row for the event, history included
	// (admin only).
	ListForEvent(ctx context.Context, eventID uuid.UUID, caller domain.Caller) ([]entities.Participant, error)
}
