package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/config"
	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/utils"
)

// SeedAdmin creates the first administrator (profile, identity and role row)
// when no admin profile exists yet.
func SeedAdmin(db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&models.UserProfile{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := cfg.AdminEmail
	if email == "" {
		email = "admin@example.com"
	}
	fullName := cfg.AdminFullName
	if fullName == "" {
		fullName = "Administrator"
	}
	password := cfg.AdminPassword
	if password == "" {
		password = "Admin12345"
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		profile := models.UserProfile{
			FullName: fullName,
			Email:    email,
			Role:     models.RoleAdmin,
			Status:   models.StatusActive,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		identity := models.AuthIdentity{ID: profile.ID, Email: email, PasswordHash: hashed}
		if err := tx.Create(&identity).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserRole{UserID: profile.ID, Role: models.AppRole(models.RoleAdmin)}).Error
	})
	if err != nil {
		return err
	}
	log.Println("Seeded initial admin:", email)
	return nil
}

var defaultCategories = []struct {
	Name        string
	Description string
}{
	{"Furniture", "Beds, desks, chairs and wardrobes"},
	{"Electronics", "Lighting, sockets and appliances"},
	{"Plumbing", "Taps, showers and fittings"},
	{"Bedding", "Mattresses, sheets and blankets"},
	{"Cleaning Supplies", "Detergents, mops and brooms"},
	{"Safety Equipment", "Fire extinguishers, first aid kits and alarms"},
}

// SeedCategories inserts the inventory category lookup rows that are missing.
func SeedCategories(db *gorm.DB) error {
	created := 0
	for _, def := range defaultCategories {
		var count int64
		if err := db.Model(&models.InventoryCategory{}).Where("name = ?", def.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		desc := def.Description
		if err := db.Create(&models.InventoryCategory{Name: def.Name, Description: &desc}).Error; err != nil {
			return err
		}
		created++
	}
	if created > 0 {
		log.Printf("Seeded %d inventory categories", created)
	}
	return nil
}
