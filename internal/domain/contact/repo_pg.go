package contact

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

type contactRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &contactRepoPG{pool: pool}
}

func (r *contactRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const contactCols = `id, patient_id, nurse_id, attempt_date, individual_location, payload, created_at`

func (r *contactRepoPG) scan(row pgx.Row) (*Record, error) {
	var (
		rec     Record
		payload []byte
	)
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.NurseID, &rec.AttemptDate, &rec.IndividualLocation, &payload, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Record")
		}
		return nil, err
	}
	if err := rec.SetPayload(payload); err != nil {
		return nil, fmt.Errorf("decode unable-to-contact %s payload: %w", rec.ID, err)
	}
	return &rec, nil
}

func (r *contactRepoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	payload, err := rec.Payload()
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO unable_to_contact (id, patient_id, nurse_id, attempt_date, individual_location, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		rec.ID, rec.PatientID, rec.NurseID, rec.AttemptDate, rec.IndividualLocation, payload,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert unable-to-contact: %w", err)
	}
	return nil
}

func (r *contactRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+contactCols+` FROM unable_to_contact WHERE id = $1`, id))
}

func (r *contactRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM unable_to_contact WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete unable-to-contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Record")
	}
	return nil
}

func (r *contactRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM unable_to_contact WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+contactCols+` FROM unable_to_contact
		WHERE patient_id = $1 ORDER BY attempt_date DESC, created_at DESC LIMIT $2 OFFSET $3`,
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
