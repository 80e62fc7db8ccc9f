package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/mail"
	"github.com/Ostech2/uhsms/internal/models"
)

func createProfile(t *testing.T, db *gorm.DB, name, email, role string) models.UserProfile {
	t.Helper()
	p := models.UserProfile{FullName: name, Email: email, Role: role, Status: models.StatusActive}
	require.NoError(t, db.Create(&p).Error)
	return p
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) ApprovalChanged(event string, _ models.WardenApproval) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}
