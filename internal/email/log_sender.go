package email

import (
	"context"

	"go.uber.org/zap"
)

// LogSender logs messages instead of delivering them. Development only: it
// writes recipient addresses and full message contents to the log.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a new LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("send email",
		zap.String("to", msg.To),
		zap.String("from", msg.FromEmail),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}
