package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agora/internal/domain"
	"agora/internal/domain/entities"
	"agora/internal/ports/output"
)

type EventService struct {
	eventRepo       output.EventRepository
	participantRepo output.ParticipantRepository
}

func NewEventService(
	eventRepo output.EventRepository,
	participantRepo output.ParticipantRepository,
) *EventService {
	return &EventService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, event *entities.Event, caller domain.Caller) error {
	if !caller.Authenticated() {
		return domain.ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return domain.ErrForbidden
	}
	if !domain.ValidEventType(event.EventType) {
		return domain.ErrInvalidEventType
	}
	if event.StartTime.Before(time.Now()) {
		return domain.ErrDateTimeInPast
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatorID = caller.UserID
	return s.eventRepo.Create(ctx, event)
}

func (s *EventService) GetEventByID(ctx context.Context, id uuid.UUID) (*entities.Event, error) {
	return s.eventRepo.FindByID(ctx, id)
}

func (s *EventService) ListEvents(ctx context.Context) ([]entities.Event, error) {
	return s.eventRepo.List(ctx)
}

// AttendedCount returns how many participants checked in to the event.
func (s *EventService) AttendedCount(ctx context.Context, eventID uuid.UUID) (int64, error) {
	return s.participantRepo.CountByEventIDAndStatus(ctx, eventID, domain.StatusAttended)
}
