package intervention

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

type interventionRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &interventionRepoPG{pool: pool}
}

func (r *interventionRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const interventionCols = `id, patient_id, nurse_id, intervention_type, intervention_date, payload, created_at, updated_at`

func (r *interventionRepoPG) scan(row pgx.Row) (*Record, error) {
	var (
		rec     Record
		payload []byte
	)
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.NurseID, &rec.Type, &rec.Date, &payload, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Intervention")
		}
		return nil, err
	}
	if err := rec.SetPayload(payload); err != nil {
		return nil, fmt.Errorf("decode intervention %s payload: %w", rec.ID, err)
	}
	return &rec, nil
}

func (r *interventionRepoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	payload, err := rec.Payload()
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO interventions (id, patient_id, nurse_id, intervention_type, intervention_date, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		rec.ID, rec.PatientID, rec.NurseID, rec.Type, rec.Date, payload,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert intervention: %w", err)
	}
	return nil
}

func (r *interventionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+interventionCols+` FROM interventions WHERE id = $1`, id))
}

func (r *interventionRepoPG) Update(ctx context.Context, rec *Record) error {
	payload, err := rec.Payload()
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, `
		UPDATE interventions SET
			intervention_type = $2, intervention_date = $3, payload = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		rec.ID, rec.Type, rec.Date, payload,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("Intervention")
		}
		return fmt.Errorf("update intervention: %w", err)
	}
	return nil
}

func (r *interventionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM interventions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete intervention: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Intervention")
	}
	return nil
}

func (r *interventionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM interventions WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+interventionCols+` FROM interventions
		WHERE patient_id = $1 ORDER BY intervention_date DESC, created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []*Record
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}
