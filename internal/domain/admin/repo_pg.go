package admin

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

// -- Organization Repository --

type orgRepoPG struct {
	pool *pgxpool.Pool
}

func NewOrganizationRepo(pool *pgxpool.Pool) OrganizationRepository {
	return &orgRepoPG{pool: pool}
}

func (r *orgRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const orgColumns = `id, name, address, contact_person, contact_phone, created_at`

func (r *orgRepoPG) scanOrg(row pgx.Row) (*Organization, error) {
	var o Organization
	err := row.Scan(&o.ID, &o.Name, &o.Address, &o.ContactPerson, &o.ContactPhone, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Organization")
		}
		return nil, err
	}
	return &o, nil
}

func (r *orgRepoPG) Create(ctx context.Context, org *Organization) error {
	org.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO organizations (id, name, address, contact_person, contact_phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		org.ID, org.Name, org.Address, org.ContactPerson, org.ContactPhone,
	).Scan(&org.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

func (r *orgRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	return r.scanOrg(r.conn(ctx).QueryRow(ctx, `SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id))
}

func (r *orgRepoPG) Update(ctx context.Context, org *Organization) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE organizations SET name = $2, address = $3, contact_person = $4, contact_phone = $5
		WHERE id = $1`,
		org.ID, org.Name, org.Address, org.ContactPerson, org.ContactPhone,
	)
	if err != nil {
		return fmt.Errorf("update organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Organization")
	}
	return nil
}

func (r *orgRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Organization")
	}
	return nil
}

func (r *orgRepoPG) List(ctx context.Context) ([]*Organization, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+orgColumns+` FROM organizations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Organization
	for rows.Next() {
		o, err := r.scanOrg(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// -- Day Program Repository --

type dayProgramRepoPG struct {
	pool *pgxpool.Pool
}

func NewDayProgramRepo(pool *pgxpool.Pool) DayProgramRepository {
	return &dayProgramRepoPG{pool: pool}
}

func (r *dayProgramRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const dayProgramColumns = `id, name, address, office_phone, contact_person, created_at`

func (r *dayProgramRepoPG) scanProgram(row pgx.Row) (*DayProgram, error) {
	var p DayProgram
	err := row.Scan(&p.ID, &p.Name, &p.Address, &p.OfficePhone, &p.ContactPerson, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Day program")
		}
		return nil, err
	}
	return &p, nil
}

func (r *dayProgramRepoPG) Create(ctx context.Context, p *DayProgram) error {
	p.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO day_programs (id, name, address, office_phone, contact_person)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		p.ID, p.Name, p.Address, p.OfficePhone, p.ContactPerson,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert day program: %w", err)
	}
	return nil
}

func (r *dayProgramRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*DayProgram, error) {
	return r.scanProgram(r.conn(ctx).QueryRow(ctx, `SELECT `+dayProgramColumns+` FROM day_programs WHERE id = $1`, id))
}

func (r *dayProgramRepoPG) Update(ctx context.Context, p *DayProgram) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE day_programs SET name = $2, address = $3, office_phone = $4, contact_person = $5
		WHERE id = $1`,
		p.ID, p.Name, p.Address, p.OfficePhone, p.ContactPerson,
	)
	if err != nil {
		return fmt.Errorf("update day program: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Day program")
	}
	return nil
}

func (r *dayProgramRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM day_programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete day program: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Day program")
	}
	return nil
}

func (r *dayProgramRepoPG) List(ctx context.Context) ([]*DayProgram, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+dayProgramColumns+` FROM day_programs ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*DayProgram
	for rows.Next() {
		p, err := r.scanProgram(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// -- Incident Report Repository --

type incidentRepoPG struct {
	pool *pgxpool.Pool
}

func NewIncidentRepo(pool *pgxpool.Pool) IncidentRepository {
	return &incidentRepoPG{pool: pool}
}

func (r *incidentRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *incidentRepoPG) Create(ctx context.Context, rep *IncidentReport) error {
	rep.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO incident_reports (id, nurse_id, payload)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		rep.ID, rep.NurseID, []byte(rep.Fields),
	).Scan(&rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert incident report: %w", err)
	}
	return nil
}

func (r *incidentRepoPG) List(ctx context.Context, nurseID *uuid.UUID) ([]*IncidentReport, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, nurse_id, payload, created_at FROM incident_reports
		WHERE $1::uuid IS NULL OR nurse_id = $1
		ORDER BY created_at DESC`, nurseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*IncidentReport
	for rows.Next() {
		var (
			rep     IncidentReport
			payload []byte
		)
		if err := rows.Scan(&rep.ID, &rep.NurseID, &payload, &rep.CreatedAt); err != nil {
			return nil, err
		}
		rep.Fields = payload
		out = append(out, &rep)
	}
	return out, rows.Err()
}
