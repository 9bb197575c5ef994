package db

import (
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const migrationsTableDDL = `
CREATE TABLE IF NOT EXISTS _migrations (
    version    INTEGER PRIMARY KEY,
    name       VARCHAR(255) NOT NULL,
    applied_at TIMESTAMPTZ DEFAULT NOW()
)`

// Migration is one numbered SQL file, e.g. "004_visits.sql" is version 4.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// MigrationStatus is a migration joined with its applied state.
type MigrationStatus struct {
	Version   int
	Name      string
	Applied   bool
	AppliedAt *time.Time
}

// Migrator applies the SQL files of an fs.FS in version order and records
// each one in _migrations.
type Migrator struct {
	pool  *pgxpool.Pool
	files fs.FS
}

// NewMigrator reads migrations from files: the embedded set or os.DirFS.
func NewMigrator(pool *pgxpool.Pool, files fs.FS) *Migrator {
	return &Migrator{pool: pool, files: files}
}

// LoadMigrations returns the .sql files at the root of the filesystem sorted
// by version. Names without a numeric "<n>_" prefix are ignored.
func (m *Migrator) LoadMigrations() ([]Migration, error) {
	names, err := fs.Glob(m.files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		version, ok := versionOf(name)
		if !ok {
			continue
		}
		body, err := fs.ReadFile(m.files, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		out = append(out, Migration{Version: version, Name: name, SQL: string(body)})
	}
	slices.SortFunc(out, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	return out, nil
}

func versionOf(name string) (int, bool) {
	prefix, _, found := strings.Cut(path.Base(name), "_")
	if !found {
		return 0, false
	}
	v, err := strconv.Atoi(prefix)
	return v, err == nil
}

// state loads the files on disk and the versions already recorded.
func (m *Migrator) state(ctx context.Context) ([]Migration, map[int]time.Time, error) {
	if _, err := m.pool.Exec(ctx, migrationsTableDDL); err != nil {
		return nil, nil, fmt.Errorf("create _migrations: %w", err)
	}
	all, err := m.LoadMigrations()
	if err != nil {
		return nil, nil, err
	}

	rows, err := m.pool.Query(ctx, `SELECT version, applied_at FROM _migrations`)
	if err != nil {
		return nil, nil, fmt.Errorf("query _migrations: %w", err)
	}
	applied := map[int]time.Time{}
	var (
		v  int
		at time.Time
	)
	_, err = pgx.ForEachRow(rows, []any{&v, &at}, func() error {
		applied[v] = at
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan _migrations: %w", err)
	}
	return all, applied, nil
}

// Up applies every pending migration, each in its own transaction, and
// returns how many ran. It stops at the first failure.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	all, applied, err := m.state(ctx)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, mig := range Pending(all, applied) {
		err := pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.SQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO _migrations (version, name) VALUES ($1, $2)`, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return n, fmt.Errorf("migration %s: %w", mig.Name, err)
		}
		n++
	}
	return n, nil
}

// Status lists every known migration with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	all, applied, err := m.state(ctx)
	if err != nil {
		return nil, err
	}
	return BuildStatus(all, applied), nil
}

// Pending drops the migrations present in applied.
func Pending(all []Migration, applied map[int]time.Time) []Migration {
	var out []Migration
	for _, mig := range all {
		if _, done := applied[mig.Version]; !done {
			out = append(out, mig)
		}
	}
	return out
}

func BuildStatus(all []Migration, applied map[int]time.Time) []MigrationStatus {
	out := make([]MigrationStatus, len(all))
	for i, mig := range all {
		out[i] = MigrationStatus{Version: mig.Version, Name: mig.Name}
		if at, ok := applied[mig.Version]; ok {
			out[i].Applied = true
			out[i].AppliedAt = &at
		}
	}
	return out
}
