package admin

import (
	"context"

	"github.com/google/uuid"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	Update(ctx context.Context, org *Organization) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Organization, error)
}

type DayProgramRepository interface {
	Create(ctx context.Context, p *DayProgram) error
	GetByID(ctx context.Context, id uuid.UUID) (*DayProgram, error)
	Update(ctx context.Context, p *DayProgram) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*DayProgram, error)
}

type IncidentRepository interface {
	Create(ctx context.Context, r *IncidentReport) error
	// List returns reports newest first, all of them when nurseID is nil.
	List(ctx context.Context, nurseID *uuid.UUID) ([]*IncidentReport, error)
}
