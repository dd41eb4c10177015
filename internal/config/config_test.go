package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setMinimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TEAMLOGGER_API_URL", "https://teamlogger.example.com")
	t.Setenv("TEAMLOGGER_BEARER_TOKEN", "token-123")
	t.Setenv("GOOGLE_SHEETS_ID", "sheet-id")
	t.Setenv("ENABLE_EMAIL_ALERTS", "false")
}

func TestLoad_Defaults(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.TeamLogger.Timeout)
	assert.Equal(t, 3, cfg.TeamLogger.MaxRetries)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "Sheet1", cfg.Sheets.ManagerSheetName)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "Asia/Kolkata", cfg.App.Timezone)
	assert.Equal(t, 8, cfg.App.Workers)
	assert.Equal(t, defaultExcludedEmployees, cfg.Alerts.ExcludedEmployees)
}

func TestLoad_ExcludedListOverride(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("ALERT_EXCLUDED_EMPLOYEES", "Alice Smith, Bob Jones")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice Smith", "Bob Jones"}, cfg.Alerts.ExcludedEmployees)
}

func TestLoad_CCEmailsParsed(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("ALERT_CC_EMAILS", "ops@example.com,, lead@example.com ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"ops@example.com", "lead@example.com"}, cfg.Alerts.CCEmails)
}

func TestLoad_MissingTrackerCredentials(t *testing.T) {
	t.Setenv("TEAMLOGGER_API_URL", "")
	t.Setenv("TEAMLOGGER_BEARER_TOKEN", "")
	t.Setenv("GOOGLE_SHEETS_ID", "sheet-id")
	t.Setenv("ENABLE_EMAIL_ALERTS", "false")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEAMLOGGER_API_URL")
}

func TestLoad_SMTPRequiredWhenAlertsEnabled(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("ENABLE_EMAIL_ALERTS", "true")
	t.Setenv("SMTP_USERNAME", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_USERNAME")
}

func TestLoad_RejectsMalformedCCAddress(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("ALERT_CC_EMAILS", "ops@example.com,not-an-address")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALERT_CC_EMAILS")
	assert.Contains(t, err.Error(), "not-an-address")
}

func TestValidate_ReportsAllProblemsAtOnce(t *testing.T) {
	cfg := &Config{
		Alerts: AlertsConfig{Enabled: true},
		SMTP:   SMTPConfig{FromEmail: "bogus"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEAMLOGGER_API_URL")
	assert.Contains(t, err.Error(), "TEAMLOGGER_BEARER_TOKEN")
	assert.Contains(t, err.Error(), "GOOGLE_SHEETS_ID")
	assert.Contains(t, err.Error(), "SMTP_USERNAME")
	assert.Contains(t, err.Error(), "FROM_EMAIL")
}

func TestLoad_InvalidNumericEnv(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("SMTP_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_PORT")
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	cfg := &Config{App: AppConfig{Timezone: "Not/AZone"}}
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("FLAG_A", "TRUE")
	t.Setenv("FLAG_B", "1")
	t.Setenv("FLAG_C", "no")

	assert.True(t, getEnvBool("FLAG_A", false))
	assert.True(t, getEnvBool("FLAG_B", false))
	assert.False(t, getEnvBool("FLAG_C", true))
	assert.True(t, getEnvBool("FLAG_UNSET", true))
}
