package integration

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/poshable/visitlog/internal/domain/patient"
	"github.com/poshable/visitlog/internal/domain/staff"
	"github.com/poshable/visitlog/internal/platform/db"
	"github.com/poshable/visitlog/migrations"
)

// databaseURL is read once in TestMain. Tests skip when it is empty.
var databaseURL string

func TestMain(m *testing.M) {
	databaseURL = os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "TEST_DATABASE_URL not set, skipping integration tests")
	}
	os.Exit(m.Run())
}

// uniqueSchema returns a schema name that does not collide across runs.
func uniqueSchema(prefix string) string {
	short := strings.ReplaceAll(uuid.New().String()[:8], "-", "")
	return fmt.Sprintf("visitlog_%s_%s", prefix, short)
}

// newSchemaPool creates a throwaway schema, migrates it and returns a pool
// whose connections default to it. The schema is dropped when the test ends.
func newSchemaPool(t *testing.T, prefix string) *pgxpool.Pool {
	t.Helper()
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	schema := uniqueSchema(prefix)

	admin, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := admin.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema)); err != nil {
		admin.Close()
		t.Fatalf("create schema %s: %v", schema, err)
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if _, err := admin.Exec(context.Background(), fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema)); err != nil {
			t.Logf("warning: failed to drop schema %s: %v", schema, err)
		}
		admin.Close()
	})

	if _, err := db.NewMigrator(pool, migrations.FS).Up(ctx); err != nil {
		t.Fatalf("migrate %s: %v", schema, err)
	}
	return pool
}

// createTestStaff inserts a staff member with a throwaway password hash.
func createTestStaff(t *testing.T, ctx context.Context, pool *pgxpool.Pool, name, title string) *staff.Staff {
	t.Helper()
	s := &staff.Staff{
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		PasswordHash: "$2a$10$invalidinvalidinvalidinvalidinvalidinvalidinvalidinv",
		FullName:     name,
		Title:        title,
	}
	if err := staff.NewRepo(pool).Create(ctx, s); err != nil {
		t.Fatalf("create staff %s: %v", name, err)
	}
	return s
}

// createTestPatient inserts a patient assigned to the given nurses.
func createTestPatient(t *testing.T, ctx context.Context, pool *pgxpool.Pool, name, org string, nurses ...uuid.UUID) *patient.Patient {
	t.Helper()
	p := &patient.Patient{
		FullName: name,
		PermanentInfo: patient.PermanentInfo{
			Organization: org,
			DateOfBirth:  "1958-04-12",
			Height:       "5'6\"",
		},
		AssignedNurses: nurses,
	}
	if len(nurses) > 0 {
		p.CreatedBy = &nurses[0]
	}
	if err := patient.NewRepo(pool).Create(ctx, p); err != nil {
		t.Fatalf("create patient %s: %v", name, err)
	}
	return p
}

func ptrStr(s string) *string { return &s }
