package entities

import (
	"time"

	"github.com/google/uuid"

	"agora/internal/domain"
)

// Participant represents a user's registration cycle for an event.
// Cancelled rows are kept as history; a rejoin inserts a fresh row.
type Participant struct {
	ID             uint
	EventID        uuid.UUID
	UserID         string
	Status         string
	JoinedAt       time.Time
	CancelledAt    time.Time // zero unless Status is cancelled
	AttendanceTime time.Time // zero unless Status is attended
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsActive reports whether the row is the user's current registration cycle.
func (p *Participant) IsActive() bool {
	return p.Status == domain.StatusRegistered || p.Status == domain.StatusAttended
}
