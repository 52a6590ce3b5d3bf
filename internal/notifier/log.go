package notifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskforce-ops/sentinel/internal/domain"
)

// Log writes notifications to the logger instead of delivering them anywhere.
// It is the default backend when no webhook is configured, and handy in
// development.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(_ context.Context, n domain.Notification) error {
	l.logger.Info("notification",
		zap.String("channel", string(n.Channel)),
		zap.String("kind", n.Kind.String()),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
		zap.Strings("recipients", n.Recipients))

	return nil
}
