package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	HostelMale   = "male"
	HostelFemale = "female"
	HostelMixed  = "mixed"
)

const (
	RoomAvailable   = "available"
	RoomOccupied    = "occupied"
	RoomMaintenance = "maintenance"
	RoomClosed      = "closed"
)

type Hostel struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"size:120;not null" json:"name"`
	Type       string    `gorm:"size:16;index;not null" json:"type"`
	TotalRooms int       `gorm:"not null;default:0" json:"total_rooms"`
	WardenID   *string   `gorm:"type:uuid" json:"warden_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (h *Hostel) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// Room belongs to a hostel. CurrentOccupants counts occupants without a
// check-out date.
type Room struct {
	ID               string    `gorm:"type:uuid;primaryKey" json:"id"`
	HostelID         string    `gorm:"type:uuid;not null;uniqueIndex:idx_room_hostel_number,priority:1" json:"hostel_id"`
	RoomNumber       string    `gorm:"size:32;not null;uniqueIndex:idx_room_hostel_number,priority:2" json:"room_number"`
	Capacity         int       `gorm:"not null;default:1" json:"capacity"`
	CurrentOccupants int       `gorm:"not null;default:0" json:"current_occupants"`
	Status           string    `gorm:"size:16;not null;default:available" json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// RoomOccupant is a student placed in a room. The partial unique index keeps
// registration numbers unique among occupants that have not checked out.
type RoomOccupant struct {
	ID                 string     `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID             string     `gorm:"type:uuid;index;not null" json:"room_id"`
	StudentName        string     `gorm:"size:100;not null" json:"student_name"`
	RegistrationNumber string     `gorm:"size:64;not null;uniqueIndex:idx_occupant_active_registration,where:check_out_date IS NULL" json:"registration_number"`
	AccessNumber       string     `gorm:"size:64;not null" json:"access_number"`
	YearOfStudy        int        `gorm:"not null" json:"year_of_study"`
	Semester           int        `gorm:"not null" json:"semester"`
	CheckInDate        *time.Time `json:"check_in_date"`
	CheckOutDate       *time.Time `gorm:"index" json:"check_out_date"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (o *RoomOccupant) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

func (o RoomOccupant) Active() bool {
	return o.CheckOutDate == nil
}
