package entities

import (
	"time"

	"github.com/google/uuid"

	"agora/internal/domain"
)

type Event struct {
	ID               uuid.UUID
	Title            string
	Description      string
	Location         string
	EventType        string // domain.EventTypeOnline or domain.EventTypeOffline
	StartTime        time.Time
	CreatorID        string
	IsAttendanceOpen bool
	QRToken          string // live attendance token; empty = none issued (offline events only)
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasStarted reports whether the event start time has passed.
func (e *Event) HasStarted(now time.Time) bool {
	return !now.Before(e.StartTime)
}

func (e *Event) IsOnline() bool {
	return e.EventType == domain.EventTypeOnline
}

func (e *Event) IsOffline() bool {
	return e.EventType == domain.EventTypeOffline
}
