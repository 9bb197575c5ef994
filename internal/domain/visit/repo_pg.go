package visit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/poshable/visitlog/internal/platform/apperr"
	"github.com/poshable/visitlog/internal/platform/db"
)

type visitRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &visitRepoPG{pool: pool}
}

func (r *visitRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const visitCols = `id, patient_id, nurse_id, visit_type, visit_date, status, organization,
	screening_completed_by, payload, created_at, updated_at`

func (r *visitRepoPG) scan(row pgx.Row) (*Record, error) {
	var (
		rec     Record
		payload []byte
	)
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.NurseID, &rec.Type, &rec.Date, &rec.Status,
		&rec.Organization, &rec.ScreeningCompletedBy, &payload, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Visit")
		}
		return nil, err
	}
	if err := rec.SetPayload(payload); err != nil {
		return nil, fmt.Errorf("decode visit %s payload: %w", rec.ID, err)
	}
	return &rec, nil
}

func (r *visitRepoPG) scanAll(rows pgx.Rows) ([]*Record, error) {
	defer rows.Close()
	var out []*Record
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *visitRepoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	payload, err := rec.Payload()
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO visits (id, patient_id, nurse_id, visit_type, visit_date, status, organization,
			screening_completed_by, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		rec.ID, rec.PatientID, rec.NurseID, rec.Type, rec.Date, rec.Status, rec.Organization,
		rec.ScreeningCompletedBy, payload,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}
	return nil
}

func (r *visitRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+visitCols+` FROM visits WHERE id = $1`, id))
}

func (r *visitRepoPG) Update(ctx context.Context, rec *Record) error {
	payload, err := rec.Payload()
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, `
		UPDATE visits SET
			visit_date = $2, status = $3, screening_completed_by = $4, payload = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		rec.ID, rec.Date, rec.Status, rec.ScreeningCompletedBy, payload,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("Visit")
		}
		return fmt.Errorf("update visit: %w", err)
	}
	return nil
}

func (r *visitRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM visits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete visit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Visit")
	}
	return nil
}

func (r *visitRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, filter ListFilter, limit, offset int) ([]*Record, int, error) {
	where := []string{"patient_id = $1"}
	args := []interface{}{patientID}
	idx := 2
	if filter.Type != "" {
		where = append(where, fmt.Sprintf("visit_type = $%d", idx))
		args = append(args, filter.Type)
		idx++
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", idx))
		args = append(args, filter.Status)
		idx++
	}
	if filter.NurseID != nil {
		where = append(where, fmt.Sprintf("nurse_id = $%d", idx))
		args = append(args, *filter.NurseID)
		idx++
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM visits WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+visitCols+` FROM visits WHERE %s
		ORDER BY visit_date DESC, created_at DESC LIMIT $%d OFFSET $%d`, clause, idx, idx+1)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	out, err := r.scanAll(rows)
	return out, total, err
}

func (r *visitRepoPG) LastCompleted(ctx context.Context, patientID uuid.UUID, t Type, exclude uuid.UUID) (*Record, error) {
	rec, err := r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+visitCols+` FROM visits
		WHERE patient_id = $1 AND status = 'completed' AND ($2 = '' OR visit_type = $2) AND id <> $3
		ORDER BY visit_date DESC, created_at DESC LIMIT 1`,
		patientID, string(t), exclude))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrNoPreviousVisit
	}
	return rec, err
}

func (r *visitRepoPG) ListRange(ctx context.Context, filter RangeFilter) ([]*Record, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if !filter.From.IsZero() {
		add("visit_date >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("visit_date <= $%d", filter.To)
	}
	if filter.Type != "" {
		add("visit_type = $%d", filter.Type)
	}
	if filter.PatientID != nil {
		add("patient_id = $%d", *filter.PatientID)
	}
	if filter.NurseID != nil {
		add("nurse_id = $%d", *filter.NurseID)
	}
	if filter.Organization != "" {
		add("organization = $%d", filter.Organization)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}

	query := `SELECT ` + visitCols + ` FROM visits`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY visit_date, created_at`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}
