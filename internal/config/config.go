package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                    string
	DBPath                  string
	LogLevel                string
	LogFormat               string
	OnboardingPuzzleIDs     []int64
	CandidatePoolUpperBound int64
	RatingExcludedPlayers   []string
	GlickoTau               float64
	CORSAllowedOrigins      []string
	ReportWorkerCount       int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                    envOr("ADDR", ":3000"),
		DBPath:                  envOr("DB_PATH", "file:puzzles.db"),
		LogLevel:                envOr("LOG_LEVEL", "INFO"),
		LogFormat:               envOr("LOG_FORMAT", "console"),
		OnboardingPuzzleIDs:     envIDsOr("ONBOARDING_PUZZLE_IDS", []int64{3, 15}),
		CandidatePoolUpperBound: int64(envIntOr("CANDIDATE_POOL_UPPER_BOUND", 20)),
		RatingExcludedPlayers:   envListOr("RATING_EXCLUDED_PLAYERS", []string{"Morten", "Mort2"}),
		GlickoTau:               envFloatOr("GLICKO_TAU", 0.5),
		CORSAllowedOrigins:      envListOr("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ReportWorkerCount:       envIntOr("REPORT_WORKER_COUNT", 4),
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be console or json (got %q)", c.LogFormat))
	}
	if c.CandidatePoolUpperBound < 0 {
		errs = append(errs, fmt.Errorf("CANDIDATE_POOL_UPPER_BOUND must be >= 0 (got %d)", c.CandidatePoolUpperBound))
	}
	seen := make(map[int64]bool, len(c.OnboardingPuzzleIDs))
	for _, id := range c.OnboardingPuzzleIDs {
		if id <= 0 {
			errs = append(errs, fmt.Errorf("ONBOARDING_PUZZLE_IDS must be positive (got %d)", id))
		}
		if seen[id] {
			errs = append(errs, fmt.Errorf("ONBOARDING_PUZZLE_IDS contains %d twice", id))
		}
		seen[id] = true
	}
	if c.GlickoTau <= 0 {
		errs = append(errs, fmt.Errorf("GLICKO_TAU must be > 0 (got %v)", c.GlickoTau))
	}
	if c.ReportWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("REPORT_WORKER_COUNT must be >= 1 (got %d)", c.ReportWorkerCount))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}

// envListOr splits a comma-separated variable. A variable that is set but
// empty yields an empty list, so defaults can be switched off.
func envListOr(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envIDsOr(key string, def []int64) []int64 {
	parts := envListOr(key, nil)
	if parts == nil {
		return def
	}
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			log.Printf("invalid value for %s=%q, using default %v", key, os.Getenv(key), def)
			return def
		}
		ids = append(ids, id)
	}
	return ids
}
