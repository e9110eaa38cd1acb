package smtp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"

	"github.com/lumichat/otp-api/internal/config"
	"github.com/lumichat/otp-api/internal/domain"
)

const providerName = "smtp"

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends multipart emails through an SMTP relay.
type Mailer struct {
	host     string
	port     string
	from     string
	fromName string
	username string
	password string
	send     sendFunc
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SenderEmail,
		fromName: cfg.SenderName,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		send:     smtp.SendMail,
	}
}

func (m *Mailer) Name() string { return providerName }

// Send delivers msg. net/smtp has no context support, so ctx is only checked before dialing.
func (m *Mailer) Send(ctx context.Context, msg domain.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := m.build(msg)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	if err := m.send(addr, auth, m.from, []string{msg.ToEmail}, body); err != nil {
		var tpErr *textproto.Error
		if errors.As(err, &tpErr) {
			return &domain.ProviderStatusError{Provider: providerName, StatusCode: tpErr.Code, Body: tpErr.Msg}
		}
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m *Mailer) build(msg domain.Email) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	from := m.from
	if m.fromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", m.fromName), m.from)
	}
	to := msg.ToEmail
	if msg.ToName != "" {
		to = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", msg.ToName), msg.ToEmail)
	}

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", w.Boundary())

	parts := []struct{ ctype, body string }{
		{"text/plain; charset=utf-8", msg.Text},
		{"text/html; charset=utf-8", msg.HTML},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		pw, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {p.ctype}})
		if err != nil {
			return nil, err
		}
		if _, err := pw.Write([]byte(p.body)); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
