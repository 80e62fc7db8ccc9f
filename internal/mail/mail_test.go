package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ostech2/uhsms/internal/config"
)

func TestNewPicksMailer(t *testing.T) {
	_, ok := New(&config.Config{}).(LogMailer)
	assert.True(t, ok)

	m, ok := New(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 2525, MailFrom: "Hostels <no-reply@example.com>"}).(*SMTPMailer)
	require.True(t, ok)
	assert.Equal(t, 2525, m.Port)
}

func TestVerificationMessage(t *testing.T) {
	msg, err := VerificationMessage("warden@ucu.ac.ug", "483920", 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "warden@ucu.ac.ug", msg.To)
	assert.Equal(t, "Password Change Verification Code", msg.Subject)
	assert.Contains(t, msg.HTML, "483920")
	assert.Contains(t, msg.HTML, "expire in 10 minutes")
}

func TestSMTPMailerSend(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte
	m := &SMTPMailer{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "user",
		Password: "pass",
		From:     "UCU Hostel System <no-reply@example.com>",
		send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
			return nil
		},
	}
	err := m.Send(context.Background(), Message{To: "a@b.co", Subject: "Hi", HTML: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "no-reply@example.com", gotFrom)
	assert.Equal(t, []string{"a@b.co"}, gotTo)
	assert.True(t, strings.Contains(string(gotBody), "Content-Type: text/html"))

	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("boom") }
	assert.Error(t, m.Send(context.Background(), Message{To: "a@b.co"}))
}
