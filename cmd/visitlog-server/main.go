package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/poshable/visitlog/internal/config"
	"github.com/poshable/visitlog/internal/domain/admin"
	"github.com/poshable/visitlog/internal/domain/contact"
	"github.com/poshable/visitlog/internal/domain/intervention"
	"github.com/poshable/visitlog/internal/domain/patient"
	"github.com/poshable/visitlog/internal/domain/report"
	"github.com/poshable/visitlog/internal/domain/staff"
	"github.com/poshable/visitlog/internal/domain/visit"
	"github.com/poshable/visitlog/internal/platform/auth"
	"github.com/poshable/visitlog/internal/platform/db"
	"github.com/poshable/visitlog/internal/platform/metrics"
	"github.com/poshable/visitlog/internal/platform/middleware"
	"github.com/poshable/visitlog/internal/platform/printdoc"
	"github.com/poshable/visitlog/migrations"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "visitlog-server",
		Short: "POSH-Able Living visit record API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedDemoCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the visit record API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// migrationFiles returns the directory named by MIGRATIONS_DIR, or the
// migrations embedded in the binary when it is unset.
func migrationFiles(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return db.NewPool(ctx, db.PoolOptions{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Hour,
	})
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, migrationFiles(cfg.MigrationsDir)).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	// migrate status
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrationFiles(cfg.MigrationsDir)).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printStatus(os.Stdout, statuses)
			return nil
		},
	})

	return cmd
}

func createAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req staff.RegisterRequest
			req.Email, _ = cmd.Flags().GetString("email")
			req.Password, _ = cmd.Flags().GetString("password")
			req.FullName, _ = cmd.Flags().GetString("name")
			req.Title, _ = cmd.Flags().GetString("title")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := newLogger(cfg.Env)

			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			app := newServices(pool, cfg, time.UTC, nil, auth.NewMemoryRevocationStore(), logger)
			member, err := app.createAdmin(ctx, req)
			if err != nil {
				return err
			}
			fmt.Printf("Created admin %s (%s)\n", member.Email, member.ID)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Login email")
	cmd.Flags().String("password", "", "Initial password")
	cmd.Flags().String("name", "", "Full name")
	cmd.Flags().String("title", staff.TitleRN, "Staff title (DSP, CNA, LPN, RN, BSN)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func seedDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-demo",
		Short: "Load demo organizations, patients and visits",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := newLogger(cfg.Env)
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			app := newServices(pool, cfg, loc, nil, auth.NewMemoryRevocationStore(), logger)
			return seedDemo(ctx, app, loc, logger)
		},
	}
}

// services holds every domain service wired to one pool.
type services struct {
	tokens        *auth.TokenIssuer
	staff         *staff.Service
	patients      *patient.Service
	visits        *visit.Service
	interventions *intervention.Service
	contacts      *contact.Service
	admin         *admin.Service
	reports       *report.Service
}

func thresholds(cfg *config.Config) visit.BPThresholds {
	return visit.BPThresholds{
		SystolicLow:   cfg.BPSystolicLow,
		SystolicHigh:  cfg.BPSystolicHigh,
		DiastolicLow:  cfg.BPDiastolicLow,
		DiastolicHigh: cfg.BPDiastolicHigh,
	}
}

func newServices(pool *pgxpool.Pool, cfg *config.Config, loc *time.Location, m *metrics.Collector, revocations auth.RevocationStore, logger zerolog.Logger) *services {
	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTTTL)

	staffSvc := staff.NewService(staff.NewRepo(pool), tokens, revocations, logger)
	patientSvc := patient.NewService(patient.NewRepo(pool), logger)
	visitSvc := visit.NewService(visit.NewRepo(pool), patientSvc, thresholds(cfg), loc, m, logger)

	return &services{
		tokens:        tokens,
		staff:         staffSvc,
		patients:      patientSvc,
		visits:        visitSvc,
		interventions: intervention.NewService(intervention.NewRepo(pool), patientSvc, m, logger),
		contacts:      contact.NewService(contact.NewRepo(pool), patientSvc, staffSvc, m, logger),
		admin: admin.NewService(
			admin.NewOrganizationRepo(pool),
			admin.NewDayProgramRepo(pool),
			admin.NewIncidentRepo(pool),
			logger,
		),
		reports: report.NewService(visitSvc, patientSvc, printdoc.NewPDFRenderer(), printdoc.NewPDFMeasurer(), loc, m, logger),
	}
}

// createAdmin registers an account and promotes it when it was not the
// first one.
func (s *services) createAdmin(ctx context.Context, req staff.RegisterRequest) (*staff.Staff, error) {
	resp, err := s.staff.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Nurse.IsAdmin {
		return resp.Nurse, nil
	}
	return s.staff.SetAdmin(ctx, cliActor, resp.Nurse.ID, true)
}

// cliActor attributes command-line changes in the logs.
var cliActor = auth.Actor{FullName: "visitlog-server cli", IsAdmin: true}

func (s *services) register(api *echo.Group) {
	staff.NewHandler(s.staff).RegisterRoutes(api)
	patient.NewHandler(s.patients).RegisterRoutes(api)
	visit.NewHandler(s.visits).RegisterRoutes(api)
	intervention.NewHandler(s.interventions).RegisterRoutes(api)
	contact.NewHandler(s.contacts).RegisterRoutes(api)
	admin.NewHandler(s.admin).RegisterRoutes(api)
	report.NewHandler(s.reports).RegisterRoutes(api)
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		boot := newLogger(os.Getenv("ENV"))
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	logger := newLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid report timezone")
	}

	// Database
	ctx := context.Background()
	pool, err := openPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")
	migrator := db.NewMigrator(pool, migrationFiles(cfg.MigrationsDir))

	// Token revocation
	var revocations auth.RevocationStore
	if cfg.RedisURL != "" {
		client, err := auth.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		revocations = auth.NewRedisRevocationStore(client)
		logger.Info().Msg("using redis token revocation")
	} else {
		memory := auth.NewMemoryRevocationStore()
		defer memory.Close()
		revocations = memory
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	app := newServices(pool, cfg, loc, m, revocations, logger)

	e := newEcho(cfg, m, logger)
	e.Use(auth.JWTMiddleware(auth.JWTConfig{
		Tokens:      app.tokens,
		Resolver:    app.staff,
		Revocations: revocations,
		Skipper:     auth.AuthSkipper,
	}))

	// Audit middleware
	e.Use(middleware.Audit(logger, middleware.AuditRecorderFunc(func(entry middleware.AuditEntry) error {
		m.RecordAccessed(entry.Resource, entry.Action)
		return nil
	})))

	api := e.Group("/api")
	api.Use(middleware.RateLimit(rateLimitConfig(cfg)))
	app.register(api)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool, migrator))
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newEcho builds the server with the global middleware that runs ahead of
// authentication.
func newEcho(cfg *config.Config, m *metrics.Collector, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(m.Middleware())
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(echomw.BodyLimit("2M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))
	return e
}

func rateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rl := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rl.RequestsPerSecond <= 0 || rl.BurstSize <= 0 {
		return middleware.DefaultRateLimitConfig()
	}
	return rl
}

func printStatus(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}
