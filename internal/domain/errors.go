package domain

import "errors"

// Domain errors.
var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEventEnded          = errors.New("event has already started")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrAlreadyJoined       = errors.New("participant already joined")
	ErrNotJoined           = errors.New("participant not joined")
	ErrNotRegistered       = errors.New("participant not registered for check-in")
	ErrAlreadyAttended     = errors.New("attendance already recorded")
	ErrAttendanceClosed    = errors.New("attendance window closed")
	ErrInvalidPayload      = errors.New("invalid attendance payload")
	ErrEventMismatch       = errors.New("payload does not match this event")
	ErrInvalidToken        = errors.New("invalid attendance token")
	ErrModeMismatch        = errors.New("attendance mode does not match event type")
	ErrDateTimeInPast      = errors.New("start time must be in the future")
	ErrInvalidEventType    = errors.New("unknown event type")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrForbidden           = errors.New("caller role not permitted")
)
