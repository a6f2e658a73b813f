package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string

	// Snabb API
	SnabbBaseURL string
	SnabbTimeout time.Duration

	// Patient profile used by the assistant CLI
	PatientFullName    string
	PatientRUT         string
	PatientEmail       string
	PatientPhone       string
	PatientDateOfBirth string
	SnabbPassword      string

	// Booking flow
	SearchQuery  string
	SpecialistID string
	StartDate    string
	EndDate      string
	SuggestLimit int
	DryRun       bool

	// Mock Snabb server
	MockPort          string
	MockSessionSecret string
	MockRUT           string
	MockPassword      string
}

// LoadDotEnv loads variables from the given files (".env" when none are
// named) without overriding values already present in the environment. A
// missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	present := make([]string, 0, len(files))
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

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SnabbBaseURL: strings.TrimSpace(getEnv("SNABB_BASE_URL", "")),
		SnabbTimeout: getEnvAsDuration("SNABB_TIMEOUT", 15*time.Second),

		PatientFullName:    getEnv("PATIENT_FULL_NAME", ""),
		PatientRUT:         getEnv("PATIENT_RUT", ""),
		PatientEmail:       getEnv("PATIENT_EMAIL", ""),
		PatientPhone:       getEnv("PATIENT_PHONE", ""),
		PatientDateOfBirth: getEnv("PATIENT_DATE_OF_BIRTH", ""),
		SnabbPassword:      getEnv("SNABB_PASSWORD", ""),

		SearchQuery:  getEnv("SNABB_QUERY", "Cardiología"),
		SpecialistID: getEnv("SNABB_SPECIALIST_ID", ""),
		StartDate:    getEnv("SNABB_START_DATE", ""),
		EndDate:      getEnv("SNABB_END_DATE", ""),
		SuggestLimit: getEnvAsInt("SNABB_SUGGEST_LIMIT", 3),
		DryRun:       getEnvAsBool("SNABB_DRY_RUN", false),

		MockPort:          getEnv("MOCK_PORT", "8081"),
		MockSessionSecret: getEnv("MOCK_SESSION_SECRET", "dev-session-secret"),
		MockRUT:           getEnv("MOCK_RUT", "12.345.678-9"),
		MockPassword:      getEnv("MOCK_PASSWORD", "secret"),
	}
}

// DateRange returns the configured search window, defaulting to the next
// 30 days from now when either bound is missing.
func (c *Config) DateRange(now time.Time) (string, string) {
	start, end := c.StartDate, c.EndDate
	if start == "" {
		start = now.Format("2006-01-02")
	}
	if end == "" {
		end = now.AddDate(0, 0, 30).Format("2006-01-02")
	}
	return start, end
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
