package utils

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"

	"phoneshop_back_end/internal/config"
)

// SMTPMailer envoie les e-mails transactionnels via go-mail.
type SMTPMailer struct {
	cfg config.SMTPConfig
	log *slog.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, log *slog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, log: log}
}

// Send envoie un message HTML. Sans SMTP_HOST, le message est seulement journalisé.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m.cfg.Host == "" {
		m.log.Warn("⚠️ SMTP non configuré, e-mail non envoyé", "to", to, "subject", subject)
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	m.log.Info("📤 Envoi de l'e-mail", "to", to)
	return client.DialAndSendWithContext(ctx, msg)
}

var resetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Réinitialisation du mot de passe</h2>
		<p>Bonjour {{.Name}},</p>
		<p>Cliquez sur le lien ci-dessous pour choisir un nouveau mot de passe. Il expire dans {{.Minutes}} minutes.</p>
		<p><a href="{{.Link}}" style="background-color: #007bff; color: white; padding: 10px 20px; border-radius: 5px; text-decoration: none;">Réinitialiser</a></p>
		<p style="color: #555;">Si vous n'êtes pas à l'origine de cette demande, ignorez cet e-mail.</p>
	</div>
</body>
</html>`))

// PasswordResetHTML génère le corps de l'e-mail de réinitialisation.
func PasswordResetHTML(name, link string, minutes int) (string, error) {
	var b strings.Builder
	err := resetTemplate.Execute(&b, struct {
		Name    string
		Link    string
		Minutes int
	}{name, link, minutes})
	if err != nil {
		return "", fmt.Errorf("template reset: %w", err)
	}
	return b.String(), nil
}
