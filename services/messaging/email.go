package messaging

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// EmailProvider delivers verification codes over SMTP.
type EmailProvider struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	// dial allows tests to intercept the SMTP send
	dial func(m *gomail.Message) error
}

// NewEmailProvider creates the SMTP adapter from environment config.
func NewEmailProvider() *EmailProvider {
	port := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if v, err := strconv.Atoi(portStr); err == nil {
			port = v
		}
	}
	p := &EmailProvider{
		Host:      os.Getenv("SMTP_HOST"),
		Port:      port,
		Username:  os.Getenv("SMTP_USER"),
		Password:  os.Getenv("SMTP_PASS"),
		FromEmail: os.Getenv("FROM_EMAIL"),
	}
	p.dial = func(m *gomail.Message) error {
		d := gomail.NewDialer(p.Host, p.Port, p.Username, p.Password)
		return d.DialAndSend(m)
	}
	return p
}

// Name implements Provider.
func (p *EmailProvider) Name() string {
	return "email"
}

// Send implements Provider. The recipient must be an email address; the
// message body is wrapped in the standard verification mail template.
func (p *EmailProvider) Send(ctx context.Context, recipient, message string) *SendResult {
	if p.Host == "" || p.Username == "" || p.Password == "" || p.FromEmail == "" {
		return &SendResult{Success: false, Error: "email: missing SMTP configuration"}
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>ScoutLink Verification</h2>
			<p>%s</p>
			<p>If you did not request this code, please ignore this email.</p>
			<p>Thank you,<br>The ScoutLink Team</p>
		</body>
		</html>
	`, message)

	m := gomail.NewMessage()
	m.SetHeader("From", p.FromEmail)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", "Your ScoutLink verification code")
	m.SetBody("text/html", body)

	done := make(chan error, 1)
	go func() {
		done <- p.dial(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return &SendResult{Success: false, Error: fmt.Sprintf("email: failed to send: %v", err)}
		}
		return &SendResult{Success: true, Message: "email sent to " + recipient}
	case <-ctx.Done():
		return &SendResult{Success: false, Error: "email: request timed out"}
	}
}
