package brevo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"

	"github.com/lumichat/otp-api/internal/config"
	"github.com/lumichat/otp-api/internal/domain"
)

const (
	providerName = "brevo"
	maxErrorBody = 4 << 10
)

type contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      contact   `json:"sender"`
	To          []contact `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
	TextContent string    `json:"textContent,omitempty"`
}

// Client sends transactional email through the Brevo v3 API.
type Client struct {
	rest     *rest.Client
	endpoint string
	apiKey   string
	sender   contact
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		rest:     &rest.Client{HTTPClient: &http.Client{Timeout: cfg.EmailTimeout}},
		endpoint: cfg.BrevoEndpoint,
		apiKey:   cfg.BrevoAPIKey,
		sender:   contact{Name: cfg.SenderName, Email: cfg.SenderEmail},
	}
}

func (c *Client) Name() string { return providerName }

func (c *Client) Send(ctx context.Context, msg domain.Email) error {
	body, err := json.Marshal(sendRequest{
		Sender:      c.sender,
		To:          []contact{{Name: msg.ToName, Email: msg.ToEmail}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		TextContent: msg.Text,
	})
	if err != nil {
		return fmt.Errorf("encode brevo request: %w", err)
	}

	resp, err := c.rest.SendWithContext(ctx, rest.Request{
		Method:  rest.Post,
		BaseURL: c.endpoint,
		Headers: map[string]string{
			"accept":       "application/json",
			"content-type": "application/json",
			"api-key":      c.apiKey,
		},
		Body: body,
	})
	if err != nil {
		return fmt.Errorf("brevo request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b := resp.Body
		if len(b) > maxErrorBody {
			b = b[:maxErrorBody]
		}
		return &domain.ProviderStatusError{Provider: providerName, StatusCode: resp.StatusCode, Body: b}
	}
	return nil
}
