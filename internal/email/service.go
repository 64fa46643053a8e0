package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/example/order-fulfillment/internal/apperr"
)

// Message is the payload accepted by the email sender endpoint.
type Message struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Service sends emails through an HTTP email sender endpoint
type Service struct {
	client    *http.Client
	senderURL string
}

// NewService creates a new email service. A nil client uses http.DefaultClient.
func NewService(client *http.Client, senderURL string) *Service {
	if client == nil {
		client = http.DefaultClient
	}
	return &Service{
		client:    client,
		senderURL: senderURL,
	}
}

// SendFailure posts a failure notification. The call is made once.
func (s *Service) SendFailure(ctx context.Context, subject, body string) error {
	return s.send(ctx, Message{Subject: subject, Body: body})
}

func (s *Service) send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.senderURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrEscalation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrEscalation, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: email sender responded %s", apperr.ErrEscalation, resp.Status)
	}
	return nil
}
