package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin        = "admin"
	RoleMaleWarden   = "male-warden"
	RoleFemaleWarden = "female-warden"
)

const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// UserProfile is the application-level user record. It is distinct from the
// AuthIdentity that holds credentials.
type UserProfile struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	FullName       string     `gorm:"size:100;not null" json:"full_name"`
	Email          string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role           string     `gorm:"size:32;index;not null" json:"role"`
	Status         string     `gorm:"size:16;index;not null;default:active" json:"status"`
	AssignedHostel *string    `gorm:"size:100" json:"assigned_hostel"`
	LastLogin      *time.Time `json:"last_login"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (u *UserProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u UserProfile) IsWarden() bool {
	return u.Role == RoleMaleWarden || u.Role == RoleFemaleWarden
}

// AuthIdentity holds login credentials. Its ID equals the linked profile ID.
type AuthIdentity struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRole stores the role enum used for authorization of callable
// procedures. Values use underscores: admin, male_warden, female_warden.
type UserRole struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *UserRole) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// AppRole converts a profile role into its user_roles enum value.
func AppRole(role string) string {
	return strings.ReplaceAll(role, "-", "_")
}
