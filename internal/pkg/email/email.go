package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService defines the interface for sending emails
type EmailService interface {
	SendDailySummary(to []string, summary DailySummary) error
	SendLeaveNotice(to []string, notice LeaveNotice) error
}

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	sendMail  func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	backoff   time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		sendMail:  smtp.SendMail,
		backoff:   time.Second,
	}, nil
}

// SummaryLine is one row of the absent list in the daily summary.
type SummaryLine struct {
	Name string
	NIP  string
	Role string
}

type DailySummary struct {
	Date    string
	Present int
	Late    int
	Leave   int
	Absent  []SummaryLine
}

// SendDailySummary mails the end-of-day attendance recap to the head of school.
func (s *emailServiceImpl) SendDailySummary(to []string, summary DailySummary) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "daily_summary.html", summary); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, fmt.Sprintf("Rekap Absensi %s", summary.Date), body.String())
}

type LeaveNotice struct {
	Name        string
	NIP         string
	Kind        string
	Date        string
	Description string
	DocumentURL string
}

// SendLeaveNotice tells the head of school that someone requested leave today.
func (s *emailServiceImpl) SendLeaveNotice(to []string, notice LeaveNotice) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "leave_submitted.html", notice); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, fmt.Sprintf("Pengajuan %s: %s", notice.Kind, notice.Name), body.String())
}

func (s *emailServiceImpl) sendHTML(to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return nil
	}

	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", strings.Join(to, ", "))
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.sendMail(addr, auth, from, to, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Wait before retrying (exponential backoff: 1s, 2s, 4s)
		if attempt < maxRetries {
			time.Sleep(time.Duration(1<<(attempt-1)) * s.backoff)
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
