package sendgrid

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/lumichat/otp-api/internal/config"
	"github.com/lumichat/otp-api/internal/domain"
)

const providerName = "sendgrid"

type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Client sends transactional email through the SendGrid v3 API.
type Client struct {
	api  sender
	from *mail.Email
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		api:  sg.NewSendClient(cfg.SendGridAPIKey),
		from: mail.NewEmail(cfg.SenderName, cfg.SenderEmail),
	}
}

func (c *Client) Name() string { return providerName }

func (c *Client) Send(ctx context.Context, msg domain.Email) error {
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	message := mail.NewSingleEmail(c.from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := c.api.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.ProviderStatusError{Provider: providerName, StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return nil
}
