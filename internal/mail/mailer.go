// Package mail renders and dispatches transactional email. With SMTP
// configured messages go out over the wire; without it the fully rendered
// message is written to the log, which keeps local development working.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/mstepanov/dropmate/internal/config"
	"github.com/mstepanov/dropmate/internal/logging"
)

//go:embed templates/*.txt
var templateFS embed.FS

type Mailer interface {
	Send(ctx context.Context, to, subject, templateName string, data any) error
}

// NewFromConfig picks the real sender when SMTP is configured and the
// console mock otherwise.
func NewFromConfig(cfg *config.Config) (Mailer, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("mail: parse templates: %w", err)
	}

	if cfg.SMTP_HOST == "" {
		return &ConsoleMailer{templates: tpl}, nil
	}
	return &SMTPMailer{
		templates: tpl,
		addr:      cfg.SMTP_HOST + ":" + cfg.SMTP_PORT,
		host:      cfg.SMTP_HOST,
		username:  cfg.SMTP_USER,
		password:  cfg.SMTP_PASSWORD,
		from:      cfg.SMTP_FROM,
	}, nil
}

func render(tpl *template.Template, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("mail: render %s: %w", name, err)
	}
	return buf.String(), nil
}

type SMTPMailer struct {
	templates *template.Template
	addr      string
	host      string
	username  string
	password  string
	from      string
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, templateName string, data any) error {
	body, err := render(m.templates, templateName, data)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	if err := smtp.SendMail(m.addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("mail: send to %s failed: %w", to, err)
	}

	logging.FromContext(ctx).Info("email_sent", "to", to, "subject", subject, "template", templateName)
	return nil
}

// ConsoleMailer prints the rendered message instead of sending it.
type ConsoleMailer struct {
	templates *template.Template
}

func (m *ConsoleMailer) Send(ctx context.Context, to, subject, templateName string, data any) error {
	body, err := render(m.templates, templateName, data)
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("email_mock",
		"to", to,
		"subject", subject,
		"template", templateName,
		"body", body,
	)
	return nil
}

// Render exposes template rendering for tests and previews.
func (m *ConsoleMailer) Render(templateName string, data any) (string, error) {
	return render(m.templates, templateName, data)
}

var _ Mailer = (*SMTPMailer)(nil)
var _ Mailer = (*ConsoleMailer)(nil)

// NewConsoleMailer is used by tests that need a Mailer without config.
func NewConsoleMailer() (*ConsoleMailer, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, err
	}
	return &ConsoleMailer{templates: tpl}, nil
}
