package mailer

import (
	"context"
	"log/slog"
)

// LogMailer writes messages to the logger instead of delivering them.
// Used when MAIL_DRIVER=log in local development.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (l *LogMailer) Send(ctx context.Context, msg Message) error {
	l.logger.InfoContext(ctx, "Email not delivered (log driver)",
		"to", msg.To,
		"subject", msg.Subject,
		"html_bytes", len(msg.HTML),
	)
	return nil
}
