package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"agora/internal/domain"
	"agora/internal/domain/entities"
	"agora/internal/ports/output"
	"agora/pkg/qrpayload"
)

// AttendanceService orchestrates check-in: it combines the attendance window,
// the per-event token and the participation ledger into a single accept/reject
// decision. It also owns the admin side: toggling the window and rotating the
// token.
type AttendanceService struct {
	eventRepo  output.EventRepository
	ledger     *ParticipantService
	translator output.T
	logger     *slog.Logger
}

func NewAttendanceService(
	eventRepo output.EventRepository,
	ledger *ParticipantService,
	translator output.T,
	logger *slog.Logger,
) *AttendanceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceService{
		eventRepo:  eventRepo,
		ledger:     ledger,
		translator: translator,
		logger:     logger,
	}
}

// CheckInLink handles link-mode check-in for online events. No token is
// involved; the authenticated session and the open window are the only gates.
func (s *AttendanceService) CheckInLink(ctx context.Context, locale string, eventID uuid.UUID, caller domain.Caller) (*domain.CheckInResult, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, domain.ErrEventNotFound
	}
	if !event.IsOnline() {
		return nil, domain.ErrModeMismatch
	}
	return s.complete(ctx, locale, event, caller.UserID)
}

// CheckInQR handles QR-mode check-in for offline events. The raw string comes
// straight from a scanner, an uploaded image or manual entry; payload decoding
// and token validation run before the window gate so a stale code is reported
// as such.
func (s *AttendanceService) CheckInQR(ctx context.Context, locale string, eventID uuid.UUID, raw string, caller domain.Caller) (*domain.CheckInResult, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, domain.ErrEventNotFound
	}
	if !event.IsOffline() {
		return nil, domain.ErrModeMismatch
	}
	payload := qrpayload.Decode(raw)
	if payload == nil {
		return nil, domain.ErrInvalidPayload
	}
	if payload.EventID != event.ID.String() {
		return nil, domain.ErrEventMismatch
	}
	if event.QRToken == "" || payload.Token != event.QRToken {
		return nil, domain.ErrInvalidToken
	}
	return s.complete(ctx, locale, event, caller.UserID)
}

func (s *AttendanceService) complete(ctx context.Context, locale string, event *entities.Event, userID string) (*domain.CheckInResult, error) {
	if !event.IsAttendanceOpen {
		return nil, domain.ErrAttendanceClosed
	}
	participant, err := s.ledger.RecordAttendance(ctx, event.ID, userID)
	if errors.Is(err, domain.ErrAlreadyAttended) {
		// Idempotence guarantee: a repeated scan of a valid code by the same
		// user never surfaces as an error.
		return &domain.CheckInResult{
			EventID:         event.ID,
			AlreadyRecorded: true,
			AttendanceTime:  participant.AttendanceTime,
			Message:         s.translator.T(locale, "attendance.checkin.already", nil),
		}, nil
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("attendance recorded",
		"event_id", event.ID.String(),
		"user_id", userID,
	)
	return &domain.CheckInResult{
		EventID:        event.ID,
		AttendanceTime: participant.AttendanceTime,
		Message:        s.translator.T(locale, "attendance.checkin.recorded", nil),
	}, nil
}

// SetAttendanceOpen toggles the attendance window. Opening the window of an
// offline event rotates its token in the same write, so every open cycle
// invalidates all previously distributed codes.
func (s *AttendanceService) SetAttendanceOpen(ctx context.Context, eventID uuid.UUID, open bool, caller domain.Caller) (*entities.Event, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, domain.ErrEventNotFound
	}
	var token *string
	if open && event.IsOffline() {
		t := qrpayload.GenerateSecureToken()
		token = &t
	}
	if err := s.eventRepo.SetAttendanceState(ctx, eventID, open, token); err != nil {
		return nil, fmt.Errorf("set attendance state: %w", err)
	}
	event.IsAttendanceOpen = open
	if token != nil {
		event.QRToken = *token
	}
	s.logger.Info("attendance window toggled",
		"event_id", eventID.String(),
		"open", open,
		"token_rotated", token != nil,
	)
	return event, nil
}

// QRPayload encodes the event's live token for display at the venue.
// Restricted to admins: the rendered code is the device shown on site, while
// scanning/submitting stays open to any authenticated participant.
func (s *AttendanceService) QRPayload(ctx context.Context, eventID uuid.UUID, caller domain.Caller) (string, error) {
	if !caller.Authenticated() {
		return "", domain.ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return "", domain.ErrForbidden
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return "", domain.ErrEventNotFound
	}
	if !event.IsOffline() {
		return "", domain.ErrModeMismatch
	}
	if event.QRToken == "" {
		return "", domain.ErrAttendanceClosed
	}
	return qrpayload.Encode(event.ID.String(), event.QRToken), nil
}

// ValidateToken checks a candidate token against the event's live token.
// Exact string equality; rotation immediately invalidates prior tokens.
func (s *AttendanceService) ValidateToken(ctx context.Context, eventID uuid.UUID, candidate string) (bool, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return false, domain.ErrEventNotFound
	}
	return event.QRToken != "" && candidate == event.QRToken, nil
}
