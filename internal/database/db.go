package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/config"
	"github.com/Ostech2/uhsms/internal/models"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
	)
	return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
}

// Migrate creates or updates every table the service owns. The partial unique
// index on active occupants comes from the RoomOccupant struct tags.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.UserProfile{},
		&models.AuthIdentity{},
		&models.UserRole{},
		&models.RefreshToken{},
		&models.Hostel{},
		&models.Room{},
		&models.RoomOccupant{},
		&models.InventoryCategory{},
		&models.InventoryItem{},
		&models.WardenApproval{},
	)
}
