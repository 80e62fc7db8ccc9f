package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/models"
)

// SessionResolver maps an authenticated email to the active profile that
// decides which dashboard is mounted.
type SessionResolver struct {
	DB *gorm.DB
}

// Resolve returns the active profile for email. Lookup failures are logged
// and reported as ErrNotFound so callers treat the session as logged out.
func (r *SessionResolver) Resolve(ctx context.Context, email string) (models.UserProfile, error) {
	var p models.UserProfile
	err := r.DB.WithContext(ctx).
		Where("LOWER(email) = ? AND status = ?", strings.ToLower(strings.TrimSpace(email)), models.StatusActive).
		First(&p).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("resolve session for %s: %v", email, err)
		}
		return models.UserProfile{}, ErrNotFound
	}
	return p, nil
}

// DashboardFor names the dashboard a role lands on. Unknown roles get the
// login screen.
func DashboardFor(role string) string {
	switch role {
	case models.RoleAdmin, models.RoleMaleWarden, models.RoleFemaleWarden:
		return role
	default:
		return "login"
	}
}
