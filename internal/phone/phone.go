package phone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// PhoneService relays text messages through an SMS gateway that accepts
// {"textMessage":{"text":...},"phoneNumbers":[...]} on POST /message.
type PhoneService struct {
	Host     string
	Port     string
	Username string
	Password string
	client   *http.Client
}

type smsPayload struct {
	TextMessage struct {
		Text string `json:"text"`
	} `json:"textMessage"`
	PhoneNumbers []string `json:"phoneNumbers"`
}

func NewPhoneService(host, port, username, password string) *PhoneService {
	return &PhoneService{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *PhoneService) SendSMS(ctx context.Context, title, content string, phoneNumbers []string) error {
	const op = "PhoneService.SendSMS"
	log := slog.With("operation", op)

	url := fmt.Sprintf("%s:%s/message", p.Host, p.Port)
	log.Info("Starting SMS delivery",
		"target_url", url,
		"recipients_count", len(phoneNumbers),
		"title", title,
	)

	payload := smsPayload{PhoneNumbers: phoneNumbers}
	payload.TextMessage.Text = content
	if title != "" {
		payload.TextMessage.Text = fmt.Sprintf("%s\n%s", title, content)
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal SMS payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Error("Failed to create HTTP request", "error", err)
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	if p.Username != "" {
		req.SetBasicAuth(p.Username, p.Password)
	}
	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		log.Error("Failed to send SMS request",
			"error", err,
			"elapsed_time", time.Since(startTime),
		)
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusCreated {
		responseBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			responseBody = fmt.Appendf(nil, "failed to read response body: %v", readErr)
		}

		log.Error("SMS gateway returned non-success status",
			"status_code", resp.StatusCode,
			"response_body", string(responseBody),
			"url", url,
		)
		return fmt.Errorf("sms gateway returned %s: %s", resp.Status, responseBody)
	}

	log.Info("SMS successfully sent",
		"status", resp.Status,
		"elapsed_time", time.Since(startTime),
	)
	return nil
}
