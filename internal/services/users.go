package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/utils"
	"github.com/Ostech2/uhsms/internal/validation"
)

type UserService struct {
	DB *gorm.DB
}

type CreateUserInput struct {
	FullName       string `json:"full_name" validate:"required,min=2,max=100,personname"`
	Email          string `json:"email" validate:"required,email,max=255"`
	Password       string `json:"password" validate:"required,min=8,strongpassword"`
	Role           string `json:"role" validate:"required,oneof=admin male-warden female-warden"`
	AssignedHostel string `json:"assigned_hostel" validate:"max=100"`
}

func (in *CreateUserInput) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.AssignedHostel = strings.TrimSpace(in.AssignedHostel)
}

// Create inserts the profile and provisions its login in one transaction.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (models.UserProfile, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return models.UserProfile{}, err
	}
	var profile models.UserProfile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.UserProfile{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		profile = models.UserProfile{
			FullName:       in.FullName,
			Email:          in.Email,
			Role:           in.Role,
			Status:         models.StatusActive,
			AssignedHostel: optional(in.AssignedHostel),
		}
		if err := tx.Create(&profile).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrEmailTaken
			}
			return err
		}
		_, err := provisionIdentity(tx, in)
		return err
	})
	if err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

// Provision creates the login identity for an existing profile and records
// its role. It backs the create-user procedure.
func (s *UserService) Provision(ctx context.Context, in CreateUserInput) (models.AuthIdentity, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return models.AuthIdentity{}, err
	}
	var identity models.AuthIdentity
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		identity, err = provisionIdentity(tx, in)
		return err
	})
	return identity, err
}

func provisionIdentity(tx *gorm.DB, in CreateUserInput) (models.AuthIdentity, error) {
	var existing int64
	if err := tx.Model(&models.AuthIdentity{}).Where("email = ?", in.Email).Count(&existing).Error; err != nil {
		return models.AuthIdentity{}, err
	}
	if existing > 0 {
		return models.AuthIdentity{}, ErrEmailTaken
	}

	var profile models.UserProfile
	if err := tx.Where("email = ?", in.Email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.AuthIdentity{}, fmt.Errorf("%w: no profile for %s", ErrNotFound, in.Email)
		}
		return models.AuthIdentity{}, err
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return models.AuthIdentity{}, fmt.Errorf("hash password: %w", err)
	}
	identity := models.AuthIdentity{ID: profile.ID, Email: in.Email, PasswordHash: hashed}
	if err := tx.Create(&identity).Error; err != nil {
		if isDuplicateKey(err) {
			return models.AuthIdentity{}, ErrEmailTaken
		}
		return models.AuthIdentity{}, err
	}
	if err := setAppRole(tx, profile.ID, in.Role); err != nil {
		return models.AuthIdentity{}, err
	}
	return identity, nil
}

func setAppRole(tx *gorm.DB, userID, role string) error {
	var ur models.UserRole
	err := tx.Where("user_id = ?", userID).First(&ur).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.UserRole{UserID: userID, Role: models.AppRole(role)}).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&ur).Update("role", models.AppRole(role)).Error
}

// HasAppRole checks the user_roles table, which is what authorises the
// callable procedures.
func (s *UserService) HasAppRole(ctx context.Context, userID, role string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", userID, models.AppRole(role)).
		Count(&count).Error
	return count > 0, err
}

type UpdateUserInput struct {
	Role           *string `json:"role" validate:"omitempty,oneof=admin male-warden female-warden"`
	AssignedHostel *string `json:"assigned_hostel" validate:"omitempty,max=100"`
	FullName       *string `json:"full_name" validate:"omitempty,min=2,max=100,personname"`
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (models.UserProfile, error) {
	if err := validation.Struct(in); err != nil {
		return models.UserProfile{}, err
	}
	var p models.UserProfile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		updates := map[string]interface{}{}
		if in.Role != nil {
			updates["role"] = *in.Role
		}
		if in.AssignedHostel != nil {
			updates["assigned_hostel"] = optional(*in.AssignedHostel)
		}
		if in.FullName != nil {
			updates["full_name"] = strings.TrimSpace(*in.FullName)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&p).Updates(updates).Error; err != nil {
			return err
		}
		if in.Role != nil {
			if err := setAppRole(tx, p.ID, *in.Role); err != nil {
				return err
			}
		}
		return tx.First(&p, "id = ?", id).Error
	})
	return p, err
}

// ToggleStatus flips a profile between active and suspended. Inactive
// profiles become active.
func (s *UserService) ToggleStatus(ctx context.Context, id string) (models.UserProfile, error) {
	var p models.UserProfile
	db := s.DB.WithContext(ctx)
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		return p, notFound(err)
	}
	next := models.StatusSuspended
	if p.Status != models.StatusActive {
		next = models.StatusActive
	}
	if err := db.Model(&p).Update("status", next).Error; err != nil {
		return p, err
	}
	p.Status = next
	return p, nil
}

// Delete removes the profile together with its identity, role row and
// refresh tokens.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.UserProfile
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("user_id_ref = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.AuthIdentity{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.UserProfile{}).Error
	})
}
