package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const sendGridAPIURL = "https://api.sendgrid.com/v3/mail/send"

// SendGridSender delivers mail through the SendGrid v3 API.
type SendGridSender struct {
	client *http.Client
	apiKey string
	apiURL string
}

// NewSendGridSender creates a new SendGrid-backed sender.
func NewSendGridSender(client *http.Client, apiKey string) *SendGridSender {
	return &SendGridSender{
		client: client,
		apiKey: apiKey,
		apiURL: sendGridAPIURL,
	}
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridRequest struct {
	Personalizations []struct {
		To []sendGridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendGridAddress   `json:"from"`
	Subject string            `json:"subject"`
	Content []sendGridContent `json:"content"`
}

// Send delivers one message via SendGrid.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if s.apiKey == "" {
		return fmt.Errorf("sendgrid api key not configured")
	}

	payload := sendGridRequest{
		From:    sendGridAddress{Email: msg.FromEmail, Name: msg.FromName},
		Subject: msg.Subject,
	}
	payload.Personalizations = []struct {
		To []sendGridAddress `json:"to"`
	}{
		{To: []sendGridAddress{{Email: msg.To}}},
	}

	// SendGrid requires text/plain before text/html.
	if msg.Text != "" {
		payload.Content = append(payload.Content, sendGridContent{Type: "text/plain", Value: msg.Text})
	}
	if msg.HTML != "" {
		payload.Content = append(payload.Content, sendGridContent{Type: "text/html", Value: msg.HTML})
	}

	var b bytes.Buffer
	if err := json.NewEncoder(&b).Encode(payload); err != nil {
		return fmt.Errorf("failed to encode sendgrid request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, &b)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid request failed with status %d", resp.StatusCode)
	}

	return nil
}
