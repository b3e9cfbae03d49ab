package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// Mailer sends the two verification emails: the password-reset link and the
// signup OTP code. Delivery is plain SMTP submission; template rendering
// stays in this package.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	baseURL  string
}

func NewMailer(host, port, username, password, from, baseURL string) *Mailer {
	return &Mailer{
		host:     strings.TrimSpace(host),
		port:     strings.TrimSpace(port),
		username: username,
		password: password,
		from:     strings.TrimSpace(from),
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

// CheckMX verifies the email's domain publishes at least one MX record.
func CheckMX(email string) error {
	at := strings.LastIndex(email, "@")
	if at < 1 || at == len(email)-1 {
		return errors.New("invalid email address")
	}
	records, err := net.LookupMX(email[at+1:])
	if err != nil || len(records) == 0 {
		return errors.New("email domain does not accept mail")
	}
	return nil
}

func (m *Mailer) SendPasswordReset(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/auth/reset-password/%s", m.baseURL, token)
	body := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif; color: #333;">
<h2>Reset your Campus Arena password</h2>
<p>Click the link below to choose a new password. The link is valid for one hour and can be used once.</p>
<p><a href="%s">%s</a></p>
<p>If you did not request this, you can ignore this email.</p>
</body></html>`, link, link)

	return m.send(ctx, email, "Reset your Campus Arena password", body)
}

func (m *Mailer) SendOTP(ctx context.Context, email, code string) error {
	body := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif; color: #333;">
<h2>Your Campus Arena verification code</h2>
<p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">%s</p>
<p>Enter this code to verify your email address. It expires in 10 minutes.</p>
<p>If you did not request this, you can ignore this email.</p>
</body></html>`, code)

	return m.send(ctx, email, "Your Campus Arena verification code", body)
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	if m == nil {
		return errors.New("mailer not configured")
	}
	if m.host == "" || m.port == "" || m.from == "" {
		return errors.New("mailer missing configuration")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	message := strings.Builder{}
	message.WriteString(fmt.Sprintf("From: %s\r\n", m.from))
	message.WriteString(fmt.Sprintf("To: %s\r\n", to))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	message.WriteString(htmlBody)
	message.WriteString("\r\n")

	addr := net.JoinHostPort(m.host, m.port)
	var auth smtp.Auth
	if m.username != "" || m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(message.String()))
}
