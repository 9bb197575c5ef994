package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
	Healthy         bool   `json:"healthy"`
}

// GetPoolStats returns connection pool statistics.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
		Healthy:         stat.TotalConns() > 0,
	}
}

// HealthReport is the body of GET /health/db.
type HealthReport struct {
	Status            string     `json:"status"`
	Error             string     `json:"error,omitempty"`
	Pool              *PoolStats `json:"pool"`
	PendingMigrations *int       `json:"pending_migrations,omitempty"`
}

// HealthHandler pings the database and reports pool statistics. When a
// migrator is given the number of unapplied migrations is included and a
// non-zero count marks the service degraded.
func HealthHandler(pool *pgxpool.Pool, migrator *Migrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		report := HealthReport{Status: "healthy"}
		err := pool.Ping(ctx)
		report.Pool = GetPoolStats(pool)

		if err != nil {
			report.Pool.Healthy = false
			report.Status = "unhealthy"
			report.Error = err.Error()
			return c.JSON(http.StatusServiceUnavailable, report)
		}

		if migrator != nil {
			if pending, err := pendingCount(ctx, migrator); err == nil {
				report.PendingMigrations = &pending
				if pending > 0 {
					report.Status = "degraded"
				}
			}
		}

		return c.JSON(http.StatusOK, report)
	}
}

func pendingCount(ctx context.Context, m *Migrator) (int, error) {
	all, applied, err := m.state(ctx)
	if err != nil {
		return 0, err
	}
	return len(Pending(all, applied)), nil
}
