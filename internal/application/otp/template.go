package otp

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/otp_email.html
var templateFS embed.FS

var emailTmpl = template.Must(template.ParseFS(templateFS, "templates/otp_email.html"))

type emailData struct {
	Brand        string
	Name         string
	Code         int
	ValidMinutes int
	Year         int
}

func renderEmail(d emailData) (string, error) {
	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render otp email: %w", err)
	}
	return buf.String(), nil
}

func plainText(d emailData) string {
	return fmt.Sprintf("Hello %s,\n\nYour %s verification code is %d. It is valid for %d minutes.\n"+
		"Never share this code with anyone. If you didn't request it, ignore this email.\n",
		d.Name, d.Brand, d.Code, d.ValidMinutes)
}

func validMinutes(ttl time.Duration) int {
	m := int(ttl / time.Minute)
	if m < 1 {
		return 1
	}
	return m
}
