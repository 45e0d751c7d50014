package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the application reads from the environment. The
// timetable core itself never touches it; values are threaded into calls as
// plain inputs.
type Config struct {
	TelegramToken string
	DBDSN         string
	Environment   string

	// SemesterStart is the single source of truth for week numbering. Every
	// materialization and next-session search anchors on it.
	SemesterStart time.Time

	// WeekStart is the grid layout convention: "monday", "sunday" or
	// "saturday". Storage stays Monday-based regardless.
	WeekStart string

	// Visible hour window of the rendered week grid.
	VisibleStartHour int
	VisibleEndHour   int

	// ICSPath is the calendar sink file the sync job reconciles.
	ICSPath string

	// PeriodsFile optionally points at a YAML period table that replaces the
	// built-in one. An unloadable file keeps the built-in table in effect.
	PeriodsFile string

	// FontPath optionally points at a TTF used by the week-image renderer.
	FontPath string

	// ReminderLeadMinutes is how long before a session start the reminder
	// message fires.
	ReminderLeadMinutes int

	// SearchHorizonDays bounds the next-session forward search.
	SearchHorizonDays int

	MigrationsPath string
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		TelegramToken:       os.Getenv("TELEGRAM_TOKEN"),
		DBDSN:               os.Getenv("DB_DSN"),
		Environment:         getEnv("ENV", "development"),
		WeekStart:           getEnv("WEEK_START", "monday"),
		VisibleStartHour:    getEnvInt("VISIBLE_START_HOUR", 7),
		VisibleEndHour:      getEnvInt("VISIBLE_END_HOUR", 21),
		ICSPath:             getEnv("ICS_PATH", "timetable.ics"),
		PeriodsFile:         os.Getenv("PERIODS_FILE"),
		FontPath:            os.Getenv("FONT_PATH"),
		ReminderLeadMinutes: getEnvInt("REMINDER_LEAD_MINUTES", 10),
		SearchHorizonDays:   getEnvInt("SEARCH_HORIZON_DAYS", 14),
		MigrationsPath:      getEnv("MIGRATIONS_PATH", "migrations"),
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}

	semesterStart, err := parseSemesterStart(os.Getenv("SEMESTER_START"))
	if err != nil {
		return nil, err
	}
	cfg.SemesterStart = semesterStart

	if cfg.VisibleStartHour < 0 || cfg.VisibleEndHour > 24 || cfg.VisibleStartHour >= cfg.VisibleEndHour {
		return nil, fmt.Errorf("visible hour window %d..%d is invalid", cfg.VisibleStartHour, cfg.VisibleEndHour)
	}

	return cfg, nil
}

// parseSemesterStart parses SEMESTER_START as a local calendar date. When the
// variable is unset, today's date is used, which anchors week numbering on
// the current week so a fresh deployment still numbers weeks sensibly.
func parseSemesterStart(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("SEMESTER_START %q is not a YYYY-MM-DD date: %w", raw, err)
	}
	return parsed, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("%s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}
