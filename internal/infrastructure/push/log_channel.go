package push

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/handyapp/gateway/internal/core/domain/notification"
	"github.com/handyapp/gateway/internal/core/ports"
)

// LogChannel only logs what it would send. Every handle counts as delivered.
type LogChannel struct {
	logger *logrus.Logger
}

func NewLogChannel(logger *logrus.Logger) *LogChannel {
	return &LogChannel{logger: logger}
}

func (l *LogChannel) Name() string { return "log" }

func (l *LogChannel) SendToMany(_ context.Context, tokens []string, msg notification.Message) ([]notification.DeliveryResult, error) {
	results := make([]notification.DeliveryResult, len(tokens))
	for i, tok := range tokens {
		results[i] = notification.DeliveryResult{Token: tok, OK: true}
	}
	if l.logger != nil {
		l.logger.WithFields(logrus.Fields{
			"title":      msg.Title,
			"body":       msg.Body,
			"recipients": len(tokens),
		}).Info("push message")
	}
	return results, nil
}

var _ ports.NotificationChannel = (*LogChannel)(nil)
