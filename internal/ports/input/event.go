package input

import (
	"context"

	"github.com/google/uuid"

	"agora/internal/domain"
	"agora/internal/domain/entities"
)

type EventUseCase interface {
	CreateEvent(ctx context.Context, event *entities.Event, caller domain.Caller) error
	GetEventByID(ctx context.Context, id uuid.UUID) (*entities.Event, error)
	ListEvents(ctx context.Context) ([]entities.Event, error)
	AttendedCount(ctx context.Context, eventID uuid.UUID) (int64, error)
}
