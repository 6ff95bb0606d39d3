// Package service contains long-lived helpers the handlers lean on, like
// the verification mailer and the token cleanup job
package service

import (
	"crypto/tls"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

var mailTmpl = template.Must(template.New("verify").Parse(`<html>
    <body>
        <h2>Welcome to HopperAI!</h2>
        <p>Please verify your email address by clicking the link below:</p>
        <p><a href="{{.}}">Verify Email</a></p>
        <p>This link will expire in 24 hours.</p>
        <p>If you didn't create an account, you can safely ignore this email.</p>
    </body>
</html>`))

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // Defaults to Username

	// Base of the verification link, e.g. http://localhost:8000
	PublicURL string
}

type Mailer struct {
	cfg MailConfig
}

func NewMailer(cfg MailConfig) *Mailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}

	return &Mailer{cfg: cfg}
}

// VerificationLink is the URL mailed to a user for the given raw token
func (m *Mailer) VerificationLink(token string) string {
	return strings.TrimRight(m.cfg.PublicURL, "/") + "/verify?token=" + url.QueryEscape(token)
}

// SendVerificationEmail mails the verification link to the recipient. The SMTP
// connection is opened, upgraded with STARTTLS, authenticated and closed within
// this call. Failures are logged and reported as false, callers decide whether
// to offer a resend.
func (m *Mailer) SendVerificationEmail(to, link string) bool {
	if err := m.send(to, link); err != nil {
		zap.L().Error("Failed to send verification email", zap.String("to", to), zap.Error(err))
		return false
	}

	zap.L().Debug("Verification email sent", zap.String("to", to))
	return true
}

// dialer uses implicit TLS on port 465 and STARTTLS whenever the server
// offers it otherwise. Credentials are never sent over an unencrypted
// connection, gomail refuses to authenticate without TLS.
func (m *Mailer) dialer() *gomail.Dialer {
	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}

	return d
}

func (m *Mailer) send(to, link string) error {
	if m.cfg.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}

	var body strings.Builder
	if err := mailTmpl.Execute(&body, link); err != nil {
		return fmt.Errorf("failed to render email, %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Verify Your Email Address")
	msg.SetBody("text/html", body.String())

	s, err := m.dialer().Dial()
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server, %w", err)
	}
	defer s.Close()

	if err := gomail.Send(s, msg); err != nil {
		return fmt.Errorf("failed to send mail, %w", err)
	}

	return nil
}
