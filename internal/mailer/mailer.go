package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/servicehub/internal/config"
)

// Message is a single outbound HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the transport selected by MAIL_DRIVER.
func New(cfg *config.Config, logger *slog.Logger) (Mailer, error) {
	switch cfg.MailDriver {
	case config.MailDriverSMTP:
		return NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom, cfg.MailTimeout), nil
	case config.MailDriverMailgun:
		return NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailFrom, cfg.MailTimeout), nil
	case config.MailDriverLog:
		return NewLogMailer(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.MailDriver)
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
