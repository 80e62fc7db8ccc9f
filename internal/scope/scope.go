// Package scope restricts queries to the rows a profile may see. Admins see
// everything. A warden sees hostels of their own type and every room,
// occupant and inventory item hanging off those hostels, plus their own
// approval requests.
package scope

import (
	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/models"
)

type Scope struct {
	Role       string
	UserID     string
	HostelType string
}

// For derives the scope of a profile.
func For(p models.UserProfile) Scope {
	s := Scope{Role: p.Role, UserID: p.ID}
	switch p.Role {
	case models.RoleMaleWarden:
		s.HostelType = models.HostelMale
	case models.RoleFemaleWarden:
		s.HostelType = models.HostelFemale
	}
	return s
}

func (s Scope) IsAdmin() bool { return s.Role == models.RoleAdmin }

// CanSeeHostelType reports whether hostels of type t are visible. Mixed
// hostels are administered centrally.
func (s Scope) CanSeeHostelType(t string) bool {
	return s.IsAdmin() || (s.HostelType != "" && s.HostelType == t)
}

func (s Scope) none(tx *gorm.DB) *gorm.DB {
	return tx.Where("1 = 0")
}

func (s Scope) hostelIDs(tx *gorm.DB) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.Hostel{}).
		Select("id").
		Where("type = ?", s.HostelType)
}

func (s Scope) Hostels() func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if s.IsAdmin() {
			return tx
		}
		if s.HostelType == "" {
			return s.none(tx)
		}
		return tx.Where("hostels.type = ?", s.HostelType)
	}
}

func (s Scope) Rooms() func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if s.IsAdmin() {
			return tx
		}
		if s.HostelType == "" {
			return s.none(tx)
		}
		return tx.Where("rooms.hostel_id IN (?)", s.hostelIDs(tx))
	}
}

func (s Scope) Inventory() func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if s.IsAdmin() {
			return tx
		}
		if s.HostelType == "" {
			return s.none(tx)
		}
		return tx.Where("inventory_items.hostel_id IN (?)", s.hostelIDs(tx))
	}
}

func (s Scope) Occupants() func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if s.IsAdmin() {
			return tx
		}
		if s.HostelType == "" {
			return s.none(tx)
		}
		rooms := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.Room{}).
			Select("id").
			Where("hostel_id IN (?)", s.hostelIDs(tx))
		return tx.Where("room_occupants.room_id IN (?)", rooms)
	}
}

func (s Scope) Approvals() func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if s.IsAdmin() {
			return tx
		}
		return tx.Where("warden_approvals.warden_id = ?", s.UserID)
	}
}
