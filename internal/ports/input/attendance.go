package input

import (
	"context"

	"github.com/google/uuid"

	"agora/internal/domain"
	"agora/internal/domain/entities"
)

type AttendanceUseCase interface {
	// CheckInLink records attendance for an online event; the authenticated
	// session and the open window are the only gates.
	CheckInLink(ctx context.Context, locale string, eventID uuid.UUID, caller domain.Caller) (*domain.CheckInResult, error)
	// CheckInQR records attendance for an offline event from a raw decoded
	// QR string.
	CheckInQR(ctx context.Context, locale string, eventID uuid.UUID, raw string, caller domain.Caller) (*domain.CheckInResult, error)
	// SetAttendanceOpen toggles the attendance window (admin only). Opening
	// the window of an offline event rotates its token in the same write.
	SetAttendanceOpen(ctx context.Context, eventID uuid.UUID, open bool, caller domain.Caller) (*entities.Event, error)
	// QRPayload returns the encoded payload for the event's live token, for
	// rendering the venue QR code (admin only).
	QRPayload(ctx context.Context, eventID uuid.UUID, caller domain.Caller) (string, error)
}
