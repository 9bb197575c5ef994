package patient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/poshable/visitlog/internal/platform/apperr"
	"github.com/poshable/visitlog/internal/platform/db"
	"github.com/poshable/visitlog/pkg/caldate"
)

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

// patientCols selects the stored columns plus the derived last completed
// visit (daily notes excluded) and the latest unable-to-contact record.
const patientCols = `p.id, p.full_name, p.permanent_info, p.created_by,
	p.last_vitals, p.last_vitals_date, p.last_vitals_visit, p.created_at, p.updated_at,
	ARRAY(SELECT pa.staff_id FROM patient_assignments pa WHERE pa.patient_id = p.id ORDER BY pa.assigned_at),
	lv.id, lv.visit_date,
	lu.id, lu.attempt_date, lu.individual_location, lu.payload->>'individual_location_other'`

const patientFrom = ` FROM patients p
	LEFT JOIN LATERAL (
		SELECT v.id, v.visit_date FROM visits v
		WHERE v.patient_id = p.id AND v.status = 'completed' AND v.visit_type <> 'daily_note'
		ORDER BY v.visit_date DESC, v.created_at DESC LIMIT 1
	) lv ON TRUE
	LEFT JOIN LATERAL (
		SELECT u.id, u.attempt_date, u.individual_location, u.payload FROM unable_to_contact u
		WHERE u.patient_id = p.id
		ORDER BY u.created_at DESC LIMIT 1
	) lu ON TRUE`

func (r *patientRepoPG) scan(row pgx.Row) (*Patient, error) {
	var (
		p        Patient
		info     []byte
		utcID    *uuid.UUID
		utcDate  caldate.Date
		utcLoc   *string
		utcOther *string
	)
	err := row.Scan(
		&p.ID, &p.FullName, &info, &p.CreatedBy,
		&p.LastVitals, &p.LastVitalsDate, &p.lastVitalsVisit, &p.CreatedAt, &p.UpdatedAt,
		&p.AssignedNurses,
		&p.LastVisitID, &p.LastVisitDate,
		&utcID, &utcDate, &utcLoc, &utcOther,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Patient")
		}
		return nil, err
	}
	if err := json.Unmarshal(info, &p.PermanentInfo); err != nil {
		return nil, fmt.Errorf("decode permanent_info: %w", err)
	}
	if utcID != nil {
		p.LastUTC = &LastUTC{ID: *utcID, Date: utcDate, Reason: UTCReason(deref(utcLoc), deref(utcOther))}
	}
	p.resolveLastVisit()
	return &p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	info, err := json.Marshal(p.PermanentInfo)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		err := r.conn(ctx).QueryRow(ctx, `
			INSERT INTO patients (id, full_name, permanent_info, created_by)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at, updated_at`,
			p.ID, p.FullName, info, p.CreatedBy,
		).Scan(&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert patient: %w", err)
		}
		return r.replaceAssignments(ctx, p.ID, p.AssignedNurses)
	})
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+patientFrom+` WHERE p.id = $1`, id))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	info, err := json.Marshal(p.PermanentInfo)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET full_name = $2, permanent_info = $3, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.FullName, info,
	)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Patient")
	}
	return nil
}

// Delete removes the patient and every record hanging off it in one
// transaction.
func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		for _, stmt := range []string{
			`DELETE FROM visits WHERE patient_id = $1`,
			`DELETE FROM unable_to_contact WHERE patient_id = $1`,
			`DELETE FROM interventions WHERE patient_id = $1`,
			`DELETE FROM patient_assignments WHERE patient_id = $1`,
		} {
			if _, err := r.conn(ctx).Exec(ctx, stmt, id); err != nil {
				return fmt.Errorf("cascade delete: %w", err)
			}
		}
		tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete patient: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Patient")
		}
		return nil
	})
}

func (r *patientRepoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Patient, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if filter.AssignedTo != nil {
		where += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM patient_assignments pa WHERE pa.patient_id = p.id AND pa.staff_id = $%d)`, idx)
		args = append(args, *filter.AssignedTo)
		idx++
	}
	if filter.Search != "" {
		where += fmt.Sprintf(` AND p.full_name ILIKE $%d`, idx)
		args = append(args, "%"+filter.Search+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + patientCols + patientFrom + where +
		fmt.Sprintf(` ORDER BY p.full_name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *patientRepoPG) SetAssignedNurses(ctx context.Context, id uuid.UUID, nurseIDs []uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		return r.replaceAssignments(ctx, id, nurseIDs)
	})
}

func (r *patientRepoPG) replaceAssignments(ctx context.Context, id uuid.UUID, nurseIDs []uuid.UUID) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_assignments WHERE patient_id = $1`, id); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	for _, nid := range nurseIDs {
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO patient_assignments (patient_id, staff_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, id, nid); err != nil {
			return fmt.Errorf("assign nurse %s: %w", nid, err)
		}
	}
	return nil
}

// UpdateLastVitals records vitals from a visit unless a later-dated visit
// already supplied them.
func (r *patientRepoPG) UpdateLastVitals(ctx context.Context, id, visitID uuid.UUID, vitals json.RawMessage, date caldate.Date) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET last_vitals = $2, last_vitals_date = $3, last_vitals_visit = $4, updated_at = NOW()
		WHERE id = $1 AND (last_vitals_date IS NULL OR last_vitals_date <= $3)`,
		id, vitals, date, visitID,
	)
	if err != nil {
		return fmt.Errorf("update last vitals: %w", err)
	}
	return nil
}
