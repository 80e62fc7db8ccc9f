package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ItemAvailable   = "available"
	ItemAssigned    = "assigned"
	ItemMaintenance = "maintenance"
	ItemDamaged     = "damaged"
)

const ConditionDamaged = "damaged"

type InventoryCategory struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *InventoryCategory) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type InventoryItem struct {
	ID              string     `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string     `gorm:"size:120;not null" json:"name"`
	CategoryID      string     `gorm:"type:uuid;index;not null" json:"category_id"`
	HostelID        *string    `gorm:"type:uuid;index" json:"hostel_id"`
	RoomID          *string    `gorm:"type:uuid;index" json:"room_id"`
	Quantity        int        `gorm:"not null" json:"quantity"`
	Condition       string     `gorm:"size:32;not null;default:good" json:"condition"`
	Status          string     `gorm:"size:16;index;not null;default:available" json:"status"`
	AssignedBy      *string    `gorm:"type:uuid;index" json:"assigned_by"`
	Notes           *string    `gorm:"type:text" json:"notes"`
	PurchaseDate    *time.Time `json:"purchase_date"`
	LastMaintenance *time.Time `json:"last_maintenance"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (i *InventoryItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// NeedsMaintenance reports whether the item counts towards a warden's
// maintenance backlog.
func (i InventoryItem) NeedsMaintenance() bool {
	return i.Status == ItemMaintenance || i.Condition == ConditionDamaged
}
