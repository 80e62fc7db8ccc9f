// Package mail sends the service's outgoing email.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
	"time"

	"github.com/Ostech2/uhsms/internal/config"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer when SMTP_HOST is set and a log mailer otherwise.
func New(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return LogMailer{}
	}
	return &SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("mail to=%s subject=%q (smtp not configured)", msg.To, msg.Subject)
	return nil
}

type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	send := m.send
	if send == nil {
		send = smtp.SendMail
	}
	if err := send(addr, auth, envelopeAddress(m.From), []string{msg.To}, m.render(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (m *SMTPMailer) render(msg Message) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.HTML)
	return b.Bytes()
}

// envelopeAddress extracts the bare address from "Name <addr>".
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return from
}

var verificationTmpl = template.Must(template.New("verification").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #333; border-bottom: 2px solid #4F46E5; padding-bottom: 10px;">Password Change Verification</h1>
  <p style="font-size: 16px; color: #555;">You have requested to change your password.</p>
  <p style="font-size: 16px; color: #555;">Please use the verification code below to proceed:</p>
  <div style="background-color: #f4f4f4; border: 2px solid #4F46E5; border-radius: 8px; padding: 20px; margin: 20px 0; text-align: center;">
    <p style="font-size: 14px; color: #666; margin: 0 0 10px 0;">Your Verification Code:</p>
    <h2 style="color: #4F46E5; font-size: 32px; letter-spacing: 8px; margin: 0; font-weight: bold;">{{.Code}}</h2>
  </div>
  <p style="font-size: 14px; color: #666;">This code will expire in {{.Minutes}} minutes.</p>
  <p style="font-size: 14px; color: #666;">If you did not request this password change, please ignore this email or contact support immediately.</p>
  <hr style="border: none; border-top: 1px solid #ddd; margin: 30px 0;" />
  <p style="font-size: 12px; color: #999; text-align: center;">
    Uganda Christian University - Bishop Barham University College Kabale<br/>
    Hostel Management System
  </p>
</div>`))

// VerificationMessage builds the password-change code email.
func VerificationMessage(to, code string, ttl time.Duration) (Message, error) {
	minutes := int(ttl.Minutes())
	if minutes <= 0 {
		minutes = 10
	}
	var b bytes.Buffer
	if err := verificationTmpl.Execute(&b, struct {
		Code    string
		Minutes int
	}{code, minutes}); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Password Change Verification Code", HTML: b.String()}, nil
}
