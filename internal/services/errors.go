package services

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("forbidden")
	ErrAlreadyDecided        = errors.New("approval has already been decided")
	ErrInvalidDecision       = errors.New("decision must be approved or rejected")
	ErrInvalidItemDetails    = errors.New("invalid item details")
	ErrDuplicateRegistration = errors.New("This registration number is already registered. Each registration number can only be used once.")
	ErrRoomFull              = errors.New("room is at full capacity")
	ErrRoomUnavailable       = errors.New("room is not accepting occupants")
	ErrAlreadyCheckedOut     = errors.New("occupant has already checked out")
	ErrEmailTaken            = errors.New("email is already registered")
	ErrInvalidCredentials    = errors.New("invalid credentials")
)

// isDuplicateKey recognises unique violations from GORM's translated error,
// the PostgreSQL error code, or the driver message.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
