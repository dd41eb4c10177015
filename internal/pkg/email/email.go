package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/rapidinnovation/hours-monitor-go/internal/config"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/alert"
	"github.com/rapidinnovation/hours-monitor-go/internal/pkg/validator"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// Service sends low-hours alert emails over SMTP. It implements alert.Sender.
// When SMTP credentials are missing the alert is logged as a preview instead
// of failing the run.
type Service struct {
	cfg       config.SMTPConfig
	templates *template.Template
	logger    *slog.Logger
}

func NewService(cfg config.SMTPConfig, logger *slog.Logger) (*Service, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cfg: cfg, templates: tmpl, logger: logger}, nil
}

type lowHoursEmailData struct {
	EmployeeName     string
	WeekStart        string
	WeekEnd          string
	ActualHours      float64
	RequiredHours    float64
	AcceptableHours  float64
	Shortfall        float64
	ShortfallMinutes int
	LeaveDays        float64
	HasLeave         bool
	Today            string
}

// Send delivers one low-hours alert. The recipient envelope is the employee
// plus every CC address; a partial delivery is reported as failure.
func (s *Service) Send(ctx context.Context, a alert.Alert) error {
	if !s.configured() {
		s.logger.Warn("smtp not configured, printing alert preview instead of sending",
			"to", a.ToEmail,
			"employee", a.EmployeeName,
			"actual_hours", a.ActualHours,
			"required_hours", a.RequiredHours,
			"shortfall_minutes", a.ShortfallMinutes,
		)
		return alert.ErrNotConfigured
	}
	if !validator.IsValidEmail(a.ToEmail) {
		return fmt.Errorf("%w: employee %s has no usable email address (%q)", alert.ErrSendFailed, a.EmployeeName, a.ToEmail)
	}

	data := lowHoursEmailData{
		EmployeeName:     a.EmployeeName,
		WeekStart:        a.WeekStart,
		WeekEnd:          a.WeekEnd,
		ActualHours:      a.ActualHours,
		RequiredHours:    a.RequiredHours,
		AcceptableHours:  a.AcceptableHours,
		Shortfall:        a.Shortfall,
		ShortfallMinutes: a.ShortfallMinutes,
		LeaveDays:        a.LeaveDays,
		HasLeave:         a.LeaveDays > 0,
		Today:            time.Now().Format("Monday, January 2, 2006"),
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "low_hours_alert.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	// CC entries come from hand-maintained sheets and env vars; drop the
	// malformed ones rather than failing the whole envelope.
	cc := make([]string, 0, len(a.CCEmails))
	for _, addr := range a.CCEmails {
		if validator.IsValidEmail(addr) {
			cc = append(cc, addr)
		} else if !validator.IsEmpty(addr) {
			s.logger.Warn("dropping malformed cc address", "address", addr)
		}
	}

	subject := fmt.Sprintf("Work Hours Reminder - Week of %s", a.WeekStart)
	return s.sendHTML(ctx, a.ToEmail, cc, subject, body.String())
}

func (s *Service) configured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.FromEmail != ""
}

func (s *Service) sendHTML(ctx context.Context, to string, cc []string, subject, htmlBody string) error {
	headers := fmt.Sprintf("From: %s\r\n", s.cfg.FromEmail)
	headers += fmt.Sprintf("To: %s\r\n", to)
	if len(cc) > 0 {
		headers += fmt.Sprintf("Cc: %s\r\n", strings.Join(cc, ", "))
	}
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)
	recipients := append([]string{to}, cc...)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := smtp.SendMail(addr, auth, s.cfg.FromEmail, recipients, message)
		if err == nil {
			s.logger.Info("email sent", "to", to, "cc", len(cc), "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		s.logger.Error("failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Exponential backoff: 1s, 2s.
		if attempt < maxRetries {
			select {
			case <-time.After(time.Duration(1<<(attempt-1)) * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("%w: after %d attempts: %v", alert.ErrSendFailed, maxRetries, lastErr)
}
