package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"agora/internal/domain"
	"agora/internal/domain/entities"
	"agora/internal/ports/output"
)

var _ output.ParticipantRepository = (*ParticipantRepository)(nil)

// ParticipantRepository implements output.ParticipantRepository on top of pgx.
//
// Uniqueness of the active (event, user) pair is enforced by a partial unique
// index (status <> 'cancelled'), and the registered -> attended/cancelled
// transitions are conditional UPDATEs. No read-then-write anywhere.
type ParticipantRepository struct {
	pool *pgxpool.Pool
}

func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

const uniqueViolation = "23505"

func (r *ParticipantRepository) Create(ctx context.Context, participant *entities.Participant) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO participants (event_id, user_id, status, joined_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		participant.EventID, participant.UserID, participant.Status,
		nullableTimestamptz(participant.JoinedAt),
	)
	var id int64
	if err := row.Scan(&id, &participant.CreatedAt, &participant.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyJoined
		}
		return fmt.Errorf("create participant: %w", err)
	}
	participant.ID = uint(id)
	return nil
}

func (r *ParticipantRepository) FindActive(ctx context.Context, eventID uuid.UUID, userID string) (*entities.Participant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+participantColumns+`
		FROM participants
		WHERE event_id = $1 AND user_id = $2 AND status <> $3`,
		eventID, userID, domain.StatusCancelled,
	)
	participant, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("get active participant: %w", err)
	}
	return participant, nil
}

func (r *ParticipantRepository) FindByEventID(ctx context.Context, eventID uuid.UUID) ([]entities.Participant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+participantColumns+`
		FROM participants
		WHERE event_id = $1
		ORDER BY joined_at`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("get participants by event id: %w", err)
	}
	defer rows.Close()

	var out []entities.Participant
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, *participant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get participants by event id: %w", err)
	}
	return out, nil
}

// MarkAttended is the ledger's compare-and-set: only a row currently in
// registered state transitions, so concurrent first scans produce exactly one
// attendance_time write.
func (r *ParticipantRepository) MarkAttended(ctx context.Context, eventID uuid.UUID, userID string, at time.Time) (*entities.Participant, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE participants
		SET status = $4, attendance_time = $5, updated_at = now()
		WHERE event_id = $1 AND user_id = $2 AND status = $3
		RETURNING `+participantColumns,
		eventID, userID, domain.StatusRegistered, domain.StatusAttended,
		nullableTimestamptz(at),
	)
	participant, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("mark attended: %w", err)
	}
	return participant, nil
}

func (r *ParticipantRepository) CancelActive(ctx context.Context, eventID uuid.UUID, userID string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE participants
		SET status = $4, cancelled_at = $5, updated_at = now()
		WHERE event_id = $1 AND user_id = $2 AND status = $3`,
		eventID, userID, domain.StatusRegistered, domain.StatusCancelled,
		nullableTimestamptz(at),
	)
	if err != nil {
		return false, fmt.Errorf("cancel participant: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ParticipantRepository) CountByEventIDAndStatus(ctx context.Context, eventID uuid.UUID, status string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM participants WHERE event_id = $1 AND status = $2`,
		eventID, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return count, nil
}
