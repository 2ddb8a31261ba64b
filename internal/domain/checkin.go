package domain

import (
	"time"

	"github.com/google/uuid"
)

// Caller identifies the authenticated user an operation runs on behalf of.
// It is passed explicitly; there is no ambient request-scoped session state.
type Caller struct {
	UserID string
	Role   string
}

// Authenticated reports whether the caller carries a user identity.
func (c Caller) Authenticated() bool {
	return c.UserID != ""
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Authenticated() && c.Role == RoleAdmin
}

// CheckInMode distinguishes the two attendance entry paths.
type CheckInMode string

const (
	CheckInModeLink CheckInMode = "link"
	CheckInModeQR   CheckInMode = "qr"
)

// CheckInResult is the outcome of an accepted check-in. A repeated scan of a
// valid code yields AlreadyRecorded=true with the original attendance time;
// callers must treat that as success.
type CheckInResult struct {
	EventID         uuid.UUID
	AlreadyRecorded bool
	AttendanceTime  time.Time
	Message         string
}

// ParticipationStatus is the read model the front end uses to pick the
// call-to-action for an event.
type ParticipationStatus struct {
	IsJoined    bool
	HasAttended bool
}
