package di

import (
	"time"

	"menu_backend/internal/app/config"
	"menu_backend/internal/platform/mail"
)

// NewCodeSender returns a code sender backed by SMTP, or by the log when SMTP
// is disabled.
func NewCodeSender(cfg config.SMTPConfig, codeTTL time.Duration) (*mail.CodeSender, error) {
	if !cfg.Enabled {
		return mail.NewCodeSender(mail.NewLogMailer(), codeTTL), nil
	}
	m, err := mail.NewSMTPMailer(cfg)
	if err != nil {
		return nil, err
	}
	return mail.NewCodeSender(m, codeTTL), nil
}
