package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/poshable/visitlog/internal/platform/apperr"
	"github.com/poshable/visitlog/internal/platform/db"
)

type staffRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &staffRepoPG{pool: pool}
}

func (r *staffRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const staffCols = `s.id, s.email, s.password_hash, s.full_name, s.title, s.license_number,
	s.is_admin, s.assigned_organizations, s.allowed_forms, s.created_at, s.updated_at,
	ARRAY(SELECT pa.patient_id FROM patient_assignments pa WHERE pa.staff_id = s.id ORDER BY pa.assigned_at)`

func (r *staffRepoPG) scan(row pgx.Row) (*Staff, error) {
	var s Staff
	err := row.Scan(
		&s.ID, &s.Email, &s.PasswordHash, &s.FullName, &s.Title, &s.LicenseNumber,
		&s.IsAdmin, &s.AssignedOrganizations, &s.AllowedForms, &s.CreatedAt, &s.UpdatedAt,
		&s.AssignedPatients,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Nurse")
		}
		return nil, err
	}
	return &s, nil
}

func (r *staffRepoPG) Create(ctx context.Context, s *Staff) error {
	s.ID = uuid.New()
	if s.AssignedOrganizations == nil {
		s.AssignedOrganizations = []string{}
	}
	if s.AllowedForms == nil {
		s.AllowedForms = []string{}
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO staff (id, email, password_hash, full_name, title, license_number,
			is_admin, assigned_organizations, allowed_forms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		s.ID, s.Email, s.PasswordHash, s.FullName, s.Title, s.LicenseNumber,
		s.IsAdmin, s.AssignedOrganizations, s.AllowedForms,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert staff: %w", err)
	}
	s.AssignedPatients = []uuid.UUID{}
	return nil
}

func (r *staffRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff s WHERE s.id = $1`, id))
}

func (r *staffRepoPG) GetByEmail(ctx context.Context, email string) (*Staff, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff s WHERE s.email = $1`, email))
}

func (r *staffRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff`).Scan(&n)
	return n, err
}

func (r *staffRepoPG) List(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+staffCols+` FROM staff s ORDER BY s.full_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Staff
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *staffRepoPG) Update(ctx context.Context, s *Staff) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff SET
			full_name = $2, title = $3, license_number = $4, is_admin = $5,
			assigned_organizations = $6, allowed_forms = $7, updated_at = NOW()
		WHERE id = $1`,
		s.ID, s.FullName, s.Title, s.LicenseNumber, s.IsAdmin,
		s.AssignedOrganizations, s.AllowedForms,
	)
	if err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Nurse")
	}
	return nil
}

// SetAssignedPatients replaces the staff member's patient assignments in
// one transaction.
func (r *staffRepoPG) SetAssignedPatients(ctx context.Context, staffID uuid.UUID, patientIDs []uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_assignments WHERE staff_id = $1`, staffID); err != nil {
			return fmt.Errorf("clear assignments: %w", err)
		}
		for _, pid := range patientIDs {
			if _, err := r.conn(ctx).Exec(ctx, `
				INSERT INTO patient_assignments (patient_id, staff_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING`, pid, staffID); err != nil {
				return fmt.Errorf("assign patient %s: %w", pid, err)
			}
		}
		return nil
	})
}
