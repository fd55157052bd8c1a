package push

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/handyapp/gateway/internal/core/domain/notification"
	"github.com/handyapp/gateway/internal/core/ports"
)

// sendgridMaxPersonalizations is the per-request limit of the v3 mail API.
const sendgridMaxPersonalizations = 1000

// MailSender is the part of *sendgrid.Client the channel uses.
type MailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// SendGridChannel treats device handles as email addresses and delivers each
// broadcast as one v3 mail send with a personalization per address, so
// recipients never see each other.
type SendGridChannel struct {
	cfg    SendGridConfig
	client MailSender
	logger *logrus.Logger
}

func NewSendGridChannel(cfg SendGridConfig, logger *logrus.Logger) *SendGridChannel {
	return NewSendGridChannelWithSender(cfg, sendgrid.NewSendClient(cfg.APIKey), logger)
}

func NewSendGridChannelWithSender(cfg SendGridConfig, sender MailSender, logger *logrus.Logger) *SendGridChannel {
	return &SendGridChannel{cfg: cfg, client: sender, logger: logger}
}

func (s *SendGridChannel) Name() string { return "sendgrid" }

func (s *SendGridChannel) SendToMany(ctx context.Context, tokens []string, msg notification.Message) ([]notification.DeliveryResult, error) {
	results := make([]notification.DeliveryResult, 0, len(tokens))
	var firstErr error
	failedChunks, chunks := 0, 0

	for start := 0; start < len(tokens); start += sendgridMaxPersonalizations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + sendgridMaxPersonalizations
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := tokens[start:end]
		chunks++

		err := s.send(chunk, msg)
		if err != nil {
			failedChunks++
			if firstErr == nil {
				firstErr = err
			}
		}
		for _, addr := range chunk {
			r := notification.DeliveryResult{Token: addr, OK: err == nil}
			if err != nil {
				r.Error = err.Error()
			}
			results = append(results, r)
		}
	}

	if chunks > 0 && failedChunks == chunks {
		return nil, firstErr
	}
	return results, nil
}

func (s *SendGridChannel) send(addrs []string, msg notification.Message) error {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(s.cfg.FromName, s.cfg.FromEmail))
	m.Subject = msg.Title
	m.AddContent(mail.NewContent("text/plain", msg.Body))
	for _, addr := range addrs {
		p := mail.NewPersonalization()
		p.AddTos(mail.NewEmail("", addr))
		m.AddPersonalizations(p)
	}

	response, err := s.client.Send(m)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"recipients": len(addrs), "subject": msg.Title}).WithError(err).Error("Failed to send broadcast email")
		}
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 300 {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"recipients":  len(addrs),
				"status_code": response.StatusCode,
				"body":        response.Body,
			}).Error("SendGrid rejected broadcast email")
		}
		return fmt.Errorf("sendgrid returned %d", response.StatusCode)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"recipients":  len(addrs),
			"subject":     msg.Title,
			"status_code": response.StatusCode,
		}).Info("Broadcast email sent")
	}
	return nil
}

var _ ports.NotificationChannel = (*SendGridChannel)(nil)
