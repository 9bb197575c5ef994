package staff

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for staff accounts.
type Repository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	GetByEmail(ctx context.Context, email string) (*Staff, error)
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, limit, offset int) ([]*Staff, int, error)
	Update(ctx context.Context, s *Staff) error
	SetAssignedPatients(ctx context.Context, staffID uuid.UUID, patientIDs []uuid.UUID) error
}
