package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/handyapp/gateway/internal/core/domain/notification"
	"github.com/handyapp/gateway/internal/core/ports"
)

// fcmMaxRecipients is the registration_ids limit of one legacy FCM request.
const fcmMaxRecipients = 1000

type FCMConfig struct {
	ServerKey string
	Endpoint  string
}

// FCMChannel sends data messages through the FCM legacy HTTP API.
type FCMChannel struct {
	cfg    FCMConfig
	client *http.Client
	logger *logrus.Logger
}

func NewFCMChannel(cfg FCMConfig, client *http.Client, logger *logrus.Logger) *FCMChannel {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &FCMChannel{cfg: cfg, client: client, logger: logger}
}

func (f *FCMChannel) Name() string { return "fcm" }

type fcmRequest struct {
	RegistrationIDs []string             `json:"registration_ids"`
	Data            notification.Message `json:"data"`
}

type fcmResponse struct {
	MulticastID int64 `json:"multicast_id"`
	Success     int   `json:"success"`
	Failure     int   `json:"failure"`
	Results     []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

// SendToMany posts the message in chunks of at most 1000 tokens. A failed
// chunk marks its own tokens as failed; the error is returned only when no
// chunk could be delivered at all.
func (f *FCMChannel) SendToMany(ctx context.Context, tokens []string, msg notification.Message) ([]notification.DeliveryResult, error) {
	results := make([]notification.DeliveryResult, 0, len(tokens))
	var firstErr error
	failedChunks, chunks := 0, 0

	for start := 0; start < len(tokens); start += fcmMaxRecipients {
		end := start + fcmMaxRecipients
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := tokens[start:end]
		chunks++

		res, err := f.send(ctx, chunk, msg)
		if err != nil {
			failedChunks++
			if firstErr == nil {
				firstErr = err
			}
			if f.logger != nil {
				f.logger.WithFields(logrus.Fields{"recipients": len(chunk)}).WithError(err).Warn("fcm request failed")
			}
			for _, tok := range chunk {
				results = append(results, notification.DeliveryResult{Token: tok, Error: err.Error()})
			}
			continue
		}
		results = append(results, res...)
	}

	if chunks > 0 && failedChunks == chunks {
		return nil, firstErr
	}
	return results, nil
}

func (f *FCMChannel) send(ctx context.Context, tokens []string, msg notification.Message) ([]notification.DeliveryResult, error) {
	body, err := json.Marshal(fcmRequest{RegistrationIDs: tokens, Data: msg})
	if err != nil {
		return nil, fmt.Errorf("failed to encode fcm request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build fcm request: %w", err)
	}
	req.Header.Set("Authorization", "key="+f.cfg.ServerKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fcm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fcm returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var out fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode fcm response: %w", err)
	}

	// Results are positional; a short list leaves the remaining tokens unknown.
	results := make([]notification.DeliveryResult, len(tokens))
	for i, tok := range tokens {
		results[i] = notification.DeliveryResult{Token: tok}
		switch {
		case i >= len(out.Results):
			results[i].Error = "no result returned"
		case out.Results[i].Error != "":
			results[i].Error = out.Results[i].Error
		default:
			results[i].OK = true
		}
	}
	return results, nil
}

var _ ports.NotificationChannel = (*FCMChannel)(nil)
