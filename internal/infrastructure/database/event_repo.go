package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agora/internal/domain"
	"agora/internal/domain/entities"
	"agora/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

// EventRepository implements output.EventRepository on top of pgx.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (id, title, description, location, event_type, start_time, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		event.ID, event.Title, event.Description, event.Location,
		event.EventType, event.StartTime, event.CreatorID,
	)
	if err := row.Scan(&event.CreatedAt, &event.UpdatedAt); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Event, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event by id: %w", err)
	}
	return event, nil
}

func (r *EventRepository) List(ctx context.Context) ([]entities.Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY start_time`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []entities.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

// SetAttendanceState toggles the window and, when token is non-nil, rotates
// the stored token in the same statement so a concurrent validate never
// observes a partially written pair.
func (r *EventRepository) SetAttendanceState(ctx context.Context, id uuid.UUID, open bool, token *string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE events
		SET is_attendance_open = $2,
		    qr_token = COALESCE($3, qr_token),
		    updated_at = now()
		WHERE id = $1`,
		id, open, token,
	)
	if err != nil {
		return fmt.Errorf("set attendance state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}
