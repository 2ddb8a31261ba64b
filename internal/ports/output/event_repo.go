package output

import (
	"context"

	"github.com/google/uuid"

	"agora/internal/domain/entities"
)

type EventRepository interface {
	Create(ctx context.Context, event *entities.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Event, error)
	List(ctx context.Context) ([]entities.Event, error)
	// SetAttendanceState toggles the attendance window in a single atomic
	// write. A non-nil token overwrites the stored qr_token in the same
	// statement; nil leaves it untouched.
	SetAttendanceState(ctx context.Context, id uuid.UUID, open bool, token *string) error
}
