package service

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const resetMailTemplate = `# Forgot your password?

Someone asked to reset the password of the account **%s**.
Follow [this link](%s) to choose a new one.

If that wasn't you, you can safely ignore this e-mail.
`

// Mailer delivers password reset links
type Mailer interface {
	SendReset(to, username, token string) error
}

// ResetLink builds the frontend link carrying the reset token
func ResetLink(base, token string) string {
	return base + "?token=" + url.QueryEscape(token)
}

// RenderResetMail renders the HTML body of the reset e-mail
func RenderResetMail(username, link string) (string, error) {
	var buf bytes.Buffer

	if err := goldmark.Convert(fmt.Appendf(nil, resetMailTemplate, username, link), &buf); err != nil {
		return "", fmt.Errorf("failed to render reset mail, %w", err)
	}

	return buf.String(), nil
}

// SMTPMailer sends mail through an SMTP relay
type SMTPMailer struct {
	Host     string
	Port     int
	From     string
	Password string
	LinkBase string
}

func (m *SMTPMailer) SendReset(to, username, token string) error {
	if to == m.From {
		return errors.New("invalid email address")
	}

	body, err := RenderResetMail(username, ResetLink(m.LinkBase, token))
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Forgot Password")
	msg.SetBody("text/html", body)

	return gomail.NewDialer(m.Host, m.Port, m.From, m.Password).DialAndSend(msg)
}

// LogMailer is used when no SMTP relay is configured. It only logs the link.
type LogMailer struct {
	LinkBase string
}

func (m *LogMailer) SendReset(to, username, token string) error {
	zap.L().Info("Mail disabled, password reset link not sent",
		zap.String("to", to),
		zap.String("username", username),
		zap.String("link", ResetLink(m.LinkBase, token)),
	)

	return nil
}
