package visit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByPatient returns visits newest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID, filter ListFilter, limit, offset int) ([]*Record, int, error)
	// LastCompleted returns the patient's most recent completed visit of
	// type t (any type when t is empty), skipping exclude.
	LastCompleted(ctx context.Context, patientID uuid.UUID, t Type, exclude uuid.UUID) (*Record, error)
	// ListRange returns matching visits oldest first.
	ListRange(ctx context.Context, filter RangeFilter) ([]*Record, error)
}
