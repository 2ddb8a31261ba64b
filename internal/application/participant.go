package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agora/internal/domain"
	"agora/internal/domain/entities"
	"agora/internal/ports/output"
)

// ParticipantService is the participation ledger: it owns the
// registered/attended/cancelled lifecycle for (event, user) pairs.
type ParticipantService struct {
	participantRepo output.ParticipantRepository
	eventRepo       output.EventRepository
	translator      output.T
}

func NewParticipantService(
	participantRepo output.ParticipantRepository,
	eventRepo output.EventRepository,
	translator output.T,
) *ParticipantService {
	return &ParticipantService{
		participantRepo: participantRepo,
		eventRepo:       eventRepo,
		translator:      translator,
	}
}

// Join registers the caller for an event. Joining is blocked once the event
// has started. A user who cancelled earlier gets a fresh row with a fresh
// joined_at; the cancelled row is kept as history.
func (s *ParticipantService) Join(ctx context.Context, locale string, eventID uuid.UUID, caller domain.Caller) (string, error) {
	if !caller.Authenticated() {
		return "", domain.ErrUnauthenticated
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return "", domain.ErrEventNotFound
	}
	now := time.Now()
	if event.HasStarted(now) {
		return "", domain.ErrEventEnded
	}
	participant := &entities.Participant{
		EventID:  eventID,
		UserID:   caller.UserID,
		Status:   domain.StatusRegistered,
		JoinedAt: now,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, domain.ErrAlreadyJoined) {
			return s.translator.T(locale, "attendance.join.already", nil), domain.ErrAlreadyJoined
		}
		return "", fmt.Errorf("create participant: %w", err)
	}
	return s.translator.T(locale, "attendance.join.confirmed", nil), nil
}

// Cancel withdraws the caller's registration. Cancellation is blocked once
// the event has started, and an attended record can never be cancelled.
func (s *ParticipantService) Cancel(ctx context.Context, locale string, eventID uuid.UUID, caller domain.Caller) (string, error) {
	if !caller.Authenticated() {
		return "", domain.ErrUnauthenticated
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return "", domain.ErrEventNotFound
	}
	now := time.Now()
	if event.HasStarted(now) {
		return "", domain.ErrEventEnded
	}
	ok, err := s.participantRepo.CancelActive(ctx, eventID, caller.UserID, now)
	if err != nil {
		return "", fmt.Errorf("cancel participant: %w", err)
	}
	if !ok {
		// No registered row matched: either the user never joined (or already
		// cancelled), or attendance was recorded in the meantime.
		existing, err := s.participantRepo.FindActive(ctx, eventID, caller.UserID)
		if err == nil && existing.Status == domain.StatusAttended {
			return "", domain.ErrAlreadyAttended
		}
		return "", domain.ErrNotJoined
	}
	return s.translator.T(locale, "attendance.cancel.done", nil), nil
}

// RecordAttendance transitions the caller's registration to attended. The
// transition is a storage-level compare-and-set: under concurrent first scans
// exactly one caller performs the write, the others observe the attended row
// and get domain.ErrAlreadyAttended (which check-in treats as success).
func (s *ParticipantService) RecordAttendance(ctx context.Context, eventID uuid.UUID, userID string) (*entities.Participant, error) {
	participant, err := s.participantRepo.MarkAttended(ctx, eventID, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("mark attended: %w", err)
	}
	if participant != nil {
		return participant, nil
	}
	existing, err := s.participantRepo.FindActive(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrParticipantNotFound) {
			return nil, domain.ErrNotRegistered
		}
		return nil, fmt.Errorf("find participant: %w", err)
	}
	if existing.Status == domain.StatusAttended {
		return existing, domain.ErrAlreadyAttended
	}
	return nil, domain.ErrNotRegistered
}

// ListForEvent returns the event's full roster, cancelled rows included, for
// the admin view. Registration data is personal, so the read is admin-gated.
func (s *ParticipantService) ListForEvent(ctx context.Context, eventID uuid.UUID, caller domain.Caller) ([]entities.Participant, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, domain.ErrEventNotFound
	}
	rows, err := s.participantRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return rows, nil
}

// StatusFor is the pure read behind the front end's call-to-action.
func (s *ParticipantService) StatusFor(ctx context.Context, eventID uuid.UUID, userID string) (domain.ParticipationStatus, error) {
	existing, err := s.participantRepo.FindActive(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrParticipantNotFound) {
			return domain.ParticipationStatus{}, nil
		}
		return domain.ParticipationStatus{}, fmt.Errorf("find participant: %w", err)
	}
	return domain.ParticipationStatus{
		IsJoined:    true,
		HasAttended: existing.Status == domain.StatusAttended,
	}, nil
}
