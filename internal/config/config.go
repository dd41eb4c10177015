package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/rapidinnovation/hours-monitor-go/internal/pkg/validator"
)

// Names HR hand-picked as permanently alert-exempt. Kept in code rather than
// env so the list survives misconfigured deployments; ALERT_EXCLUDED_EMPLOYEES
// replaces it when set.
var defaultExcludedEmployees = []string{
	"Aishik Chatterjee",
	"Tirtharaj Bhoumik",
	"Vishal Kumar",
}

// ConstantHRCC is always CC'd on alert emails regardless of configuration.
const ConstantHRCC = "teamhr@rapidinnovation.dev"

type Config struct {
	TeamLogger TeamLoggerConfig
	Sheets     SheetsConfig
	SMTP       SMTPConfig
	Alerts     AlertsConfig
	App        AppConfig
}

type TeamLoggerConfig struct {
	APIURL      string
	BearerToken string
	Timeout     time.Duration
	MaxRetries  int
}

type SheetsConfig struct {
	LeaveSheetID         string
	LeaveSheetURL        string
	LeavePublishedCSVURL string
	ManagerSheetID       string
	ManagerSheetName     string
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
}

// AlertsConfig holds alerting policy knobs.
type AlertsConfig struct {
	Enabled           bool
	CCEmails          []string
	ExcludedEmployees []string
	DenyListEmployees []string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	Timezone string
	Workers  int
}

func Load() (*Config, error) {
	// Missing .env is fine in deployed environments where variables come from
	// the process environment.
	_ = godotenv.Load()

	config := &Config{}

	timeoutSecs, err := strconv.Atoi(getEnv("API_REQUEST_TIMEOUT", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_REQUEST_TIMEOUT: %w", err)
	}
	maxRetries, err := strconv.Atoi(getEnv("MAX_RETRY_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_RETRY_ATTEMPTS: %w", err)
	}

	config.TeamLogger = TeamLoggerConfig{
		APIURL:      getEnv("TEAMLOGGER_API_URL", ""),
		BearerToken: getEnv("TEAMLOGGER_BEARER_TOKEN", ""),
		Timeout:     time.Duration(timeoutSecs) * time.Second,
		MaxRetries:  maxRetries,
	}

	config.Sheets = SheetsConfig{
		LeaveSheetID:         getEnv("GOOGLE_SHEETS_ID", ""),
		LeaveSheetURL:        getEnv("GOOGLE_SHEETS_URL", ""),
		LeavePublishedCSVURL: getEnv("GOOGLE_SHEETS_PUBLISHED_CSV_URL", ""),
		ManagerSheetID:       getEnv("MANAGER_SHEET_ID", ""),
		ManagerSheetName:     getEnv("MANAGER_SHEET_NAME", "Sheet1"),
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		Port:      smtpPort,
		Username:  getEnv("SMTP_USERNAME", ""),
		Password:  getEnv("SMTP_PASSWORD", ""),
		FromEmail: getEnv("FROM_EMAIL", ""),
	}

	excluded := getEnvSlice("ALERT_EXCLUDED_EMPLOYEES")
	if len(excluded) == 0 {
		excluded = defaultExcludedEmployees
	}

	config.Alerts = AlertsConfig{
		Enabled:           getEnvBool("ENABLE_EMAIL_ALERTS", true),
		CCEmails:          getEnvSlice("ALERT_CC_EMAILS"),
		ExcludedEmployees: excluded,
		DenyListEmployees: getEnvSlice("INACTIVE_EMPLOYEES"),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	workers, err := strconv.Atoi(getEnv("WORKER_COUNT", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_COUNT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("TIMEZONE", "Asia/Kolkata"),
		Workers:  workers,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate reports every configuration problem at once rather than the first
// one found; a misconfigured deployment gets one complete error to fix.
func (c *Config) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(c.TeamLogger.APIURL) {
		errs = append(errs, validator.ValidationError{Field: "TEAMLOGGER_API_URL", Message: "is required"})
	}
	if validator.IsEmpty(c.TeamLogger.BearerToken) {
		errs = append(errs, validator.ValidationError{Field: "TEAMLOGGER_BEARER_TOKEN", Message: "is required"})
	}
	if validator.IsEmpty(c.Sheets.LeaveSheetID) && validator.IsEmpty(c.Sheets.LeaveSheetURL) {
		errs = append(errs, validator.ValidationError{Field: "GOOGLE_SHEETS_ID", Message: "is required (or GOOGLE_SHEETS_URL)"})
	}
	if c.Alerts.Enabled {
		if validator.IsEmpty(c.SMTP.Username) {
			errs = append(errs, validator.ValidationError{Field: "SMTP_USERNAME", Message: "is required when email alerts are enabled"})
		}
		if validator.IsEmpty(c.SMTP.Password) {
			errs = append(errs, validator.ValidationError{Field: "SMTP_PASSWORD", Message: "is required when email alerts are enabled"})
		}
		if validator.IsEmpty(c.SMTP.FromEmail) {
			errs = append(errs, validator.ValidationError{Field: "FROM_EMAIL", Message: "is required when email alerts are enabled"})
		} else if !validator.IsValidEmail(c.SMTP.FromEmail) {
			errs = append(errs, validator.ValidationError{Field: "FROM_EMAIL", Message: fmt.Sprintf("%q is not a valid email address", c.SMTP.FromEmail)})
		}
	}
	for _, cc := range c.Alerts.CCEmails {
		if !validator.IsValidEmail(cc) {
			errs = append(errs, validator.ValidationError{Field: "ALERT_CC_EMAILS", Message: fmt.Sprintf("contains invalid address %q", cc)})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Location resolves the configured timezone, falling back to UTC when the
// name is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.EqualFold(value, "true") || value == "1"
}

func getEnvSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
