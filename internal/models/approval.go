package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

const (
	RequestInventoryAdd   = "inventory_add"
	RequestMaintenance    = "maintenance_request"
	RequestRoomAssignment = "room_assignment"
)

// WardenApproval is a warden-originated request awaiting an admin decision.
// Status moves from pending to approved or rejected exactly once.
type WardenApproval struct {
	ID           string         `gorm:"type:uuid;primaryKey" json:"id"`
	WardenID     string         `gorm:"type:uuid;index;not null" json:"warden_id"`
	RequestType  string         `gorm:"size:32;not null" json:"request_type"`
	ItemDetails  datatypes.JSON `json:"item_details"`
	Description  string         `gorm:"type:text" json:"description"`
	Status       string         `gorm:"size:16;index;not null;default:pending" json:"status"`
	RequestDate  time.Time      `gorm:"not null" json:"request_date"`
	ApprovalDate *time.Time     `json:"approval_date"`
	ApprovedBy   *string        `gorm:"type:uuid" json:"approved_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (a *WardenApproval) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.RequestDate.IsZero() {
		a.RequestDate = time.Now()
	}
	return nil
}

func (a WardenApproval) HasItemDetails() bool {
	s := string(a.ItemDetails)
	return len(a.ItemDetails) > 0 && s != "null" && s != "{}"
}

var requestTypeLabels = map[string]string{
	RequestInventoryAdd:   "Add Inventory",
	RequestMaintenance:    "Maintenance",
	RequestRoomAssignment: "Room Assignment",
}

func IsValidRequestType(t string) bool {
	_, ok := requestTypeLabels[t]
	return ok
}

// RequestTypeLabel returns the display label, or the raw type when unknown.
func RequestTypeLabel(t string) string {
	if label, ok := requestTypeLabels[t]; ok {
		return label
	}
	return t
}
