package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/go-mail/mail/v2"
)

//go:embed templates/*.html
var emailTemplates embed.FS

// Mailer sends the transactional emails of the hub.
type Mailer interface {
	SendOwnerLoginLink(ctx context.Context, to, teamName, link string) error
	SendOwnershipApproved(ctx context.Context, to, teamName, link string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type EmailService struct {
	cfg       SMTPConfig
	templates *template.Template
	logger    *slog.Logger
}

func NewEmailService(cfg SMTPConfig, logger *slog.Logger) (*EmailService, error) {
	t, err := template.ParseFS(emailTemplates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга шаблонов писем: %w", err)
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &EmailService{cfg: cfg, templates: t, logger: logger}, nil
}

func (s *EmailService) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	// локальный Mailpit без TLS
	if s.cfg.Host == "localhost" || s.cfg.Host == "127.0.0.1" {
		d.TLSConfig = nil
		d.StartTLSPolicy = mail.NoStartTLS
	}

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("ошибка отправки письма на %s: %w", to, err)
	}
	s.logger.InfoContext(ctx, "email sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

func (s *EmailService) GenerateEmailBody(name string, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("ошибка выполнения шаблона %s: %w", name, err)
	}
	return body.String(), nil
}

func (s *EmailService) SendOwnerLoginLink(ctx context.Context, to, teamName, link string) error {
	body, err := s.GenerateEmailBody("owner_login.html", ownerEmailData{TeamName: teamName, Link: link})
	if err != nil {
		return err
	}
	return s.SendEmail(ctx, to, fmt.Sprintf("Вход в управление командой %s", teamName), body)
}

func (s *EmailService) SendOwnershipApproved(ctx context.Context, to, teamName, link string) error {
	body, err := s.GenerateEmailBody("ownership_approved.html", ownerEmailData{TeamName: teamName, Link: link})
	if err != nil {
		return err
	}
	return s.SendEmail(ctx, to, fmt.Sprintf("Вы назначены владельцем команды %s", teamName), body)
}

type ownerEmailData struct {
	TeamName string
	Link     string
}

// LogMailer пишет письма в лог вместо отправки (для разработки).
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendOwnerLoginLink(ctx context.Context, to, teamName, link string) error {
	m.logger.InfoContext(ctx, "owner login link", slog.String("to", to), slog.String("team", teamName), slog.String("link", link))
	return nil
}

func (m *LogMailer) SendOwnershipApproved(ctx context.Context, to, teamName, link string) error {
	m.logger.InfoContext(ctx, "ownership approved", slog.String("to", to), slog.String("team", teamName), slog.String("link", link))
	return nil
}
