// Package config loads the service configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env  string // APP_ENV (dev, test, prod)
	Port string // APP_PORT

	DBUser    string // DB_USER
	DBPass    string // DB_PASS, may be empty
	DBHost    string // DB_HOST
	DBPort    string // DB_PORT
	DBName    string // DB_NAME
	DBMigrate bool   // DB_MIGRATE, apply embedded migrations on start

	JWTSecret      string        // JWT_SECRET
	AccessTTL      time.Duration // ACCESS_TOKEN_TTL_MIN
	RefreshTTLDays int           // REFRESH_TOKEN_TTL_DAYS
	BcryptCost     int           // BCRYPT_COST

	// Seed organizer created on start when no account with this email
	// exists.  Further organizers are registered by an organizer.
	OrganizerEmail    string // ORGANIZER_EMAIL
	OrganizerPassword string // ORGANIZER_PASSWORD

	LogLevel  string // LOG_LEVEL
	LogFormat string // LOG_FORMAT, json or console

	// RabbitMQURL enables cross-instance change events when set.
	RabbitMQURL string // RABBITMQ_URL

	CategoriesPerDiscipline int           // SCORING_CATEGORIES_PER_DISCIPLINE
	RankingTopN             int           // RANKING_TOP_N
	ExportTable             string        // EXPORT_TABLE
	LedgerRetryInterval     time.Duration // LEDGER_LOAD_RETRY
	ShutdownTimeout         time.Duration // SHUTDOWN_TIMEOUT
}

// LoadDotEnv seeds the environment from the given files, or from .env when
// none are given.  Variables that are already set win.  Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// Load reads the configuration from the environment.  Every missing or
// malformed required variable is reported in the returned error.
func Load() (Config, error) {
	var errs []error
	must := func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("missing required env var: %s", key))
		}
		return v
	}
	mustInt := func(key string) int {
		s := must(key)
		if s == "" {
			return 0
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid int for %s: %q", key, s))
		}
		return n
	}

	cfg := Config{
		Env:    must("APP_ENV"),
		Port:   must("APP_PORT"),
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		DBMigrate: envBool("DB_MIGRATE", true),

		JWTSecret:      must("JWT_SECRET"),
		AccessTTL:      time.Duration(mustInt("ACCESS_TOKEN_TTL_MIN")) * time.Minute,
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		OrganizerEmail:    strings.ToLower(strings.TrimSpace(os.Getenv("ORGANIZER_EMAIL"))),
		OrganizerPassword: os.Getenv("ORGANIZER_PASSWORD"),

		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "json"),

		RabbitMQURL: firstEnv("RABBITMQ_URL", "AMQP_URL"),

		CategoriesPerDiscipline: envInt("SCORING_CATEGORIES_PER_DISCIPLINE", 6),
		RankingTopN:             envInt("RANKING_TOP_N", 10),
		ExportTable:             envStr("EXPORT_TABLE", "bands"),
		LedgerRetryInterval:     envDur("LEDGER_LOAD_RETRY", 3*time.Second),
		ShutdownTimeout:         envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	if cfg.CategoriesPerDiscipline < 1 {
		errs = append(errs, fmt.Errorf("SCORING_CATEGORIES_PER_DISCIPLINE must be positive, got %d", cfg.CategoriesPerDiscipline))
	}
	if (cfg.OrganizerEmail == "") != (cfg.OrganizerPassword == "") {
		errs = append(errs, errors.New("ORGANIZER_EMAIL and ORGANIZER_PASSWORD must be set together"))
	}
	if cfg.RankingTopN < 1 {
		cfg.RankingTopN = 10
	}
	return cfg, errors.Join(errs...)
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
