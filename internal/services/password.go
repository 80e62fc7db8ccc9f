package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/codes"
	"github.com/Ostech2/uhsms/internal/mail"
	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/utils"
	"github.com/Ostech2/uhsms/internal/validation"
)

const verificationCodeDigits = 6

// PasswordService runs the two-step password change: a code is mailed to the
// user, then the change is accepted only with that code and the current
// password.
type PasswordService struct {
	DB     *gorm.DB
	Codes  codes.Store
	Mailer mail.Mailer
	TTL    time.Duration
}

func (s *PasswordService) ttl() time.Duration {
	if s.TTL <= 0 {
		return 10 * time.Minute
	}
	return s.TTL
}

// RequestCode issues a fresh code for the profile, replacing any earlier one,
// and mails it.
func (s *PasswordService) RequestCode(ctx context.Context, p models.UserProfile) error {
	code, err := utils.GenerateNumericCode(verificationCodeDigits)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	if err := s.Codes.Save(ctx, p.ID, utils.SHA256Hex(code), s.ttl()); err != nil {
		return err
	}
	return s.SendCode(ctx, p.Email, code)
}

// SendCode mails a verification code without storing anything.
func (s *PasswordService) SendCode(ctx context.Context, email, code string) error {
	msg, err := mail.VerificationMessage(email, code, s.ttl())
	if err != nil {
		return err
	}
	return s.Mailer.Send(ctx, msg)
}

type ChangePasswordInput struct {
	VerificationCode string `json:"verification_code"`
	CurrentPassword  string `json:"current_password" validate:"required"`
	NewPassword      string `json:"new_password" validate:"required,min=8,hasupper,haslower,hasdigit"`
	ConfirmPassword  string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// ChangePassword verifies the code first; a wrong or expired code leaves the
// stored credentials untouched.
func (s *PasswordService) ChangePassword(ctx context.Context, p models.UserProfile, in ChangePasswordInput) error {
	stored, err := s.Codes.Get(ctx, p.ID)
	if err != nil && !errors.Is(err, codes.ErrNotFound) {
		return err
	}
	submitted := utils.SHA256Hex(strings.TrimSpace(in.VerificationCode))
	if err != nil || !utils.EqualHash(stored, submitted) {
		return validation.Field("verification_code", "Invalid verification code")
	}

	if err := validation.Struct(in); err != nil {
		return err
	}

	db := s.DB.WithContext(ctx)
	var identity models.AuthIdentity
	if err := db.First(&identity, "id = ?", p.ID).Error; err != nil {
		return notFound(err)
	}
	if !utils.CheckPassword(identity.PasswordHash, in.CurrentPassword) {
		return validation.Field("current_password", "Current password is incorrect")
	}

	hashed, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&identity).Update("password_hash", hashed).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		return tx.Model(&models.RefreshToken{}).
			Where("user_id_ref = ? AND revoked_at IS NULL", p.ID).
			Update("revoked_at", &now).Error
	})
	if err != nil {
		return err
	}
	return s.Codes.Delete(ctx, p.ID)
}
