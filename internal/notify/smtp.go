package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/contactdir/contact-server-go/internal/errors"
)

type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// TLSMode is one of "starttls" (default), "tls" or "none".
	TLSMode string
}

// SMTPNotifier mails reset links through an SMTP relay.
type SMTPNotifier struct {
	settings SMTPSettings
	dialer   net.Dialer
}

func NewSMTPNotifier(settings SMTPSettings) *SMTPNotifier {
	return &SMTPNotifier{
		settings: settings,
		dialer:   net.Dialer{Timeout: 10 * time.Second},
	}
}

func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, toEmail, resetLink string, expiresAt time.Time) error {
	body := resetBody(resetLink, expiresAt)
	if err := n.send(ctx, toEmail, "Password reset request", body); err != nil {
		return apperrors.External("SMTP", err)
	}
	return nil
}

func (n *SMTPNotifier) send(ctx context.Context, to, subject, body string) error {
	client, err := n.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if n.settings.Username != "" {
		auth := smtp.PlainAuth("", n.settings.Username, n.settings.Password, n.settings.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(n.settings.From); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := writer.Write([]byte(buildMessage(n.settings.From, to, subject, body))); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	if err := client.Quit(); err != nil && !strings.Contains(err.Error(), "use of closed network connection") {
		return fmt.Errorf("smtp quit: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) connect(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(n.settings.Host, strconv.Itoa(n.settings.Port))
	tlsConfig := &tls.Config{ServerName: n.settings.Host, MinVersion: tls.VersionTLS12}

	conn, err := n.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("smtp dial: %w", err)
	}
	if n.settings.TLSMode == "tls" {
		conn = tls.Client(conn, tlsConfig)
	}

	client, err := smtp.NewClient(conn, n.settings.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	if n.settings.TLSMode == "" || n.settings.TLSMode == "starttls" {
		if err := client.StartTLS(tlsConfig); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("smtp starttls: %w", err)
		}
	}
	return client, nil
}

func resetBody(resetLink string, expiresAt time.Time) string {
	return strings.Join([]string{
		"A password reset was requested for your account.",
		"",
		"Open the link below to choose a new password:",
		resetLink,
		"",
		"The link expires at " + expiresAt.UTC().Format(time.RFC1123) + ".",
		"If you did not request a reset you can ignore this message.",
	}, "\r\n")
}

func buildMessage(from, to, subject, body string) string {
	lines := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}
	return strings.Join(lines, "\r\n")
}
