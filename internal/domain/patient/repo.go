package patient

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/poshable/visitlog/pkg/caldate"
)

// Repository defines the persistence interface for patients.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Patient, int, error)
	SetAssignedNurses(ctx context.Context, id uuid.UUID, nurseIDs []uuid.UUID) error
	UpdateLastVitals(ctx context.Context, id, visitID uuid.UUID, vitals json.RawMessage, date caldate.Date) error
}
