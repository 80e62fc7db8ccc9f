package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/scope"
	"github.com/Ostech2/uhsms/internal/validation"
)

// optionalUUID trims raw and returns nil for an empty value. Anything else
// must parse as a UUID and comes back in canonical form.
func optionalUUID(raw string) (*string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	val, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	out := val.String()
	return &out, nil
}

// Placement resolves the hostel and room an inventory item is stored in.
// A room implies its hostel and must agree with an explicit hostel id. Both
// have to be visible to sc, and wardens must name a hostel. Problems come
// back as field errors.
func Placement(db *gorm.DB, sc scope.Scope, hostelRaw, roomRaw string) (hostelID, roomID *string, err error) {
	hostelID, err = optionalUUID(hostelRaw)
	if err != nil {
		return nil, nil, validation.Field("hostel_id", "Invalid identifier")
	}
	roomID, err = optionalUUID(roomRaw)
	if err != nil {
		return nil, nil, validation.Field("room_id", "Invalid identifier")
	}
	if roomID != nil {
		var room models.Room
		if err := db.Scopes(sc.Rooms()).First(&room, "rooms.id = ?", *roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, validation.Field("room_id", "Room not found")
			}
			return nil, nil, err
		}
		if hostelID != nil && *hostelID != room.HostelID {
			return nil, nil, validation.Field("room_id", "Room does not belong to the selected hostel")
		}
		hostelID = &room.HostelID
	}
	if hostelID == nil {
		if !sc.IsAdmin() {
			return nil, nil, validation.Field("hostel_id", "Select a hostel")
		}
		return nil, nil, nil
	}
	if err := db.Scopes(sc.Hostels()).First(&models.Hostel{}, "hostels.id = ?", *hostelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, validation.Field("hostel_id", "Hostel not found")
		}
		return nil, nil, err
	}
	return hostelID, roomID, nil
}
