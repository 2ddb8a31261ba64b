package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"agora/internal/domain"
	"agora/internal/domain/entities"
)

// In-memory repositories mirroring the storage guarantees of the real ones:
// the active-pair uniqueness check and the status compare-and-set both happen
// under a single lock, like a unique index and a conditional UPDATE would.

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*entities.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uuid.UUID]*entities.Event)}
}

func (r *fakeEventRepo) Create(_ context.Context, event *entities.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *fakeEventRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	cp := *event
	return &cp, nil
}

func (r *fakeEventRepo) List(_ context.Context) ([]entities.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.Event, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, *e)
	}
	return out, nil
}

// setEvent overwrites the stored row, for tests that move an event's start
// time after seeding.
func (r *fakeEventRepo) setEvent(event *entities.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *event
	r.events[event.ID] = &cp
}

func (r *fakeEventRepo) SetAttendanceState(_ context.Context, id uuid.UUID, open bool, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	event.IsAttendanceOpen = open
	if token != nil {
		event.QRToken = *token
	}
	return nil
}

type fakeParticipantRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   []*entities.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{}
}

func (r *fakeParticipantRepo) activeLocked(eventID uuid.UUID, userID string) *entities.Participant {
	for _, row := range r.rows {
		if row.EventID == eventID && row.UserID == userID && row.Status != domain.StatusCancelled {
			return row
		}
	}
	return nil
}

func (r *fakeParticipantRepo) Create(_ context.Context, participant *entities.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.activeLocked(participant.EventID, participant.UserID) != nil {
		return domain.ErrAlreadyJoined
	}
	r.nextID++
	participant.ID = r.nextID
	cp := *participant
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *fakeParticipantRepo) FindActive(_ context.Context, eventID uuid.UUID, userID string) (*entities.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := r.activeLocked(eventID, userID)
	if row == nil {
		return nil, domain.ErrParticipantNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *fakeParticipantRepo) FindByEventID(_ context.Context, eventID uuid.UUID) ([]entities.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.Participant
	for _, row := range r.rows {
		if row.EventID == eventID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeParticipantRepo) MarkAttended(_ context.Context, eventID uuid.UUID, userID string, at time.Time) (*entities.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := r.activeLocked(eventID, userID)
	if row == nil || row.Status != domain.StatusRegistered {
		return nil, nil
	}
	row.Status = domain.StatusAttended
	row.AttendanceTime = at
	cp := *row
	return &cp, nil
}

func (r *fakeParticipantRepo) CancelActive(_ context.Context, eventID uuid.UUID, userID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := r.activeLocked(eventID, userID)
	if row == nil || row.Status != domain.StatusRegistered {
		return false, nil
	}
	row.Status = domain.StatusCancelled
	row.CancelledAt = at
	return true, nil
}

func (r *fakeParticipantRepo) CountByEventIDAndStatus(_ context.Context, eventID uuid.UUID, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, row := range r.rows {
		if row.EventID == eventID && row.Status == status {
			count++
		}
	}
	return count, nil
}

// allRows returns copies of every ledger row, history included.
func (r *fakeParticipantRepo) allRows() []entities.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.Participant, len(r.rows))
	for i, row := range r.rows {
		out[i] = *row
	}
	return out
}
