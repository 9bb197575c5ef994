package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL        string        `mapstructure:"REDIS_URL"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	JWTTTL          time.Duration `mapstructure:"JWT_TTL"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS    float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `mapstructure:"RATE_LIMIT_BURST"`
	BPSystolicLow   float64       `mapstructure:"BP_SYSTOLIC_LOW"`
	BPSystolicHigh  float64       `mapstructure:"BP_SYSTOLIC_HIGH"`
	BPDiastolicLow  float64       `mapstructure:"BP_DIASTOLIC_LOW"`
	BPDiastolicHigh float64       `mapstructure:"BP_DIASTOLIC_HIGH"`
	ReportTimezone  string        `mapstructure:"REPORT_TIMEZONE"`
	MigrationsDir   string        `mapstructure:"MIGRATIONS_DIR"`
}

// devJWTSecret signs tokens when ENV=development and no secret is configured.
const devJWTSecret = "visitlog-development-secret-change-me"

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("JWT_TTL", "168h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("BP_SYSTOLIC_LOW", 90)
	v.SetDefault("BP_SYSTOLIC_HIGH", 140)
	v.SetDefault("BP_DIASTOLIC_LOW", 60)
	v.SetDefault("BP_DIASTOLIC_HIGH", 90)
	v.SetDefault("REPORT_TIMEZONE", "America/New_York")
	v.SetDefault("MIGRATIONS_DIR", "")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "REDIS_URL",
		"JWT_SECRET", "JWT_TTL", "CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"BP_SYSTOLIC_LOW", "BP_SYSTOLIC_HIGH", "BP_DIASTOLIC_LOW", "BP_DIASTOLIC_HIGH",
		"REPORT_TIMEZONE", "MIGRATIONS_DIR",
	} {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) <= 1 {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.IsDev() {
		cfg.JWTSecret = devJWTSecret
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves REPORT_TIMEZONE. Report month boundaries and the default
// visit date are computed in this zone.
func (c *Config) Location() (*time.Location, error) {
	if c.ReportTimezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("REPORT_TIMEZONE %q: %w", c.ReportTimezone, err)
	}
	return loc, nil
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}
	if c.IsProduction() && (c.JWTSecret == devJWTSecret || len(c.JWTSecret) < 32) {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	if c.BPSystolicLow >= c.BPSystolicHigh {
		return fmt.Errorf("BP_SYSTOLIC_LOW (%v) must be below BP_SYSTOLIC_HIGH (%v)", c.BPSystolicLow, c.BPSystolicHigh)
	}
	if c.BPDiastolicLow >= c.BPDiastolicHigh {
		return fmt.Errorf("BP_DIASTOLIC_LOW (%v) must be below BP_DIASTOLIC_HIGH (%v)", c.BPDiastolicLow, c.BPDiastolicHigh)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}
