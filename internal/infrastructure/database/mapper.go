package database

import (
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"agora/internal/domain/entities"
)

// pgtypeTimestamptzToTime returns t.Time when Valid, else zero time.
func pgtypeTimestamptzToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

// nullableTimestamptz maps a zero time to SQL NULL.
func nullableTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

const eventColumns = `id, title, description, location, event_type, start_time,
	creator_id, is_attendance_open, qr_token, created_at, updated_at`

func scanEvent(row pgx.Row) (*entities.Event, error) {
	var (
		e       entities.Event
		qrToken pgtype.Text
		created pgtype.Timestamptz
		updated pgtype.Timestamptz
	)
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.EventType,
		&e.StartTime, &e.CreatorID, &e.IsAttendanceOpen, &qrToken,
		&created, &updated,
	)
	if err != nil {
		return nil, err
	}
	if qrToken.Valid {
		e.QRToken = qrToken.String
	}
	e.CreatedAt = pgtypeTimestamptzToTime(created)
	e.UpdatedAt = pgtypeTimestamptzToTime(updated)
	return &e, nil
}

const participantColumns = `id, event_id, user_id, status, joined_at,
	cancelled_at, attendance_time, created_at, updated_at`

func scanParticipant(row pgx.Row) (*entities.Participant, error) {
	var (
		p          entities.Participant
		id         int64
		cancelled  pgtype.Timestamptz
		attendance pgtype.Timestamptz
		created    pgtype.Timestamptz
		updated    pgtype.Timestamptz
	)
	err := row.Scan(
		&id, &p.EventID, &p.UserID, &p.Status, &p.JoinedAt,
		&cancelled, &attendance, &created, &updated,
	)
	if err != nil {
		return nil, err
	}
	p.ID = uint(id)
	p.CancelledAt = pgtypeTimestamptzToTime(cancelled)
	p.AttendanceTime = pgtypeTimestamptzToTime(attendance)
	p.CreatedAt = pgtypeTimestamptzToTime(created)
	p.UpdatedAt = pgtypeTimestamptzToTime(updated)
	return &p, nil
}
