package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/validation"
)

type RoomController struct {
	DB *gorm.DB
}

// room_number accepts "101" or 101
type createRoomRequest struct {
	HostelID   string         `json:"hostel_id" validate:"required,uuid"`
	RoomNumber FlexibleString `json:"room_number" validate:"required,max=32"`
	Capacity   *int           `json:"capacity" validate:"omitempty,gte=1"`
	Status     string         `json:"status" validate:"omitempty,oneof=available occupied maintenance closed"`
}

type updateRoomRequest struct {
	RoomNumber *FlexibleString `json:"room_number" validate:"omitempty,min=1,max=32"`
	Capacity   *int            `json:"capacity" validate:"omitempty,gte=1"`
	Status     *string         `json:"status" validate:"omitempty,oneof=available occupied maintenance closed"`
}

var roomSorts = map[string]string{
	"created_at":        "created_at",
	"room_number":       "room_number",
	"capacity":          "capacity",
	"current_occupants": "current_occupants",
	"status":            "status",
}

var errDuplicateRoom = errors.New("room number already exists in this hostel")

func (rc *RoomController) List(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	lq := parseListQuery(c, roomSorts, "created_at")
	hostelID := strings.TrimSpace(c.Query("hostel_id"))
	status := strings.TrimSpace(strings.ToLower(c.Query("status")))
	if hostelID != "" && !isUUID(hostelID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hostel_id"})
		return
	}

	filters := func(db *gorm.DB) *gorm.DB {
		if hostelID != "" {
			db = db.Where("rooms.hostel_id = ?", hostelID)
		}
		if status != "" {
			db = db.Where("rooms.status = ?", status)
		}
		return db
	}

	db := rc.DB.WithContext(c.Request.Context())
	var total int64
	if err := db.Model(&models.Room{}).Scopes(sc.Rooms(), filters).Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	var rooms []models.Room
	if err := lq.apply(db.Scopes(sc.Rooms(), filters)).Find(&rooms).Error; err != nil {
		respondError(c, err)
		return
	}
	meta := lq.meta(total)
	if hostelID != "" {
		meta["hostel_id"] = hostelID
	}
	if status != "" {
		meta["status"] = status
	}
	c.JSON(http.StatusOK, gin.H{"data": rooms, "meta": meta})
}

func (rc *RoomController) Get(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var room models.Room
	if err := rc.DB.WithContext(c.Request.Context()).Scopes(sc.Rooms()).First(&room, "rooms.id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// Create adds a room to a visible hostel and bumps the hostel's room count.
func (rc *RoomController) Create(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	var req createRoomRequest
	if !bindJSON(c, &req) {
		return
	}
	req.HostelID = strings.TrimSpace(req.HostelID)
	if err := validation.Struct(req); err != nil {
		respondError(c, err)
		return
	}
	room := models.Room{
		HostelID:   req.HostelID,
		RoomNumber: req.RoomNumber.String(),
		Capacity:   1,
		Status:     models.RoomAvailable,
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.Status != "" {
		room.Status = req.Status
	}

	err := rc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var hostel models.Hostel
		if err := tx.Scopes(sc.Hostels()).First(&hostel, "hostels.id = ?", room.HostelID).Error; err != nil {
			return err
		}
		var dup int64
		if err := tx.Model(&models.Room{}).Where("hostel_id = ? AND room_number = ?", room.HostelID, room.RoomNumber).Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return errDuplicateRoom
		}
		if err := tx.Create(&room).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errDuplicateRoom
			}
			return err
		}
		return tx.Model(&hostel).UpdateColumn("total_rooms", gorm.Expr("total_rooms + 1")).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "hostel not found"})
		return
	case errors.Is(err, errDuplicateRoom):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (rc *RoomController) Update(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req updateRoomRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		respondError(c, err)
		return
	}
	db := rc.DB.WithContext(c.Request.Context())
	var room models.Room
	if err := db.Scopes(sc.Rooms()).First(&room, "rooms.id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.RoomNumber != nil {
		number := req.RoomNumber.String()
		if number != room.RoomNumber {
			var dup int64
			if err := db.Model(&models.Room{}).Where("hostel_id = ? AND room_number = ? AND id <> ?", room.HostelID, number, room.ID).Count(&dup).Error; err != nil {
				respondError(c, err)
				return
			}
			if dup > 0 {
				c.JSON(http.StatusConflict, gin.H{"error": errDuplicateRoom.Error()})
				return
			}
			updates["room_number"] = number
		}
	}
	if req.Capacity != nil {
		if *req.Capacity < room.CurrentOccupants {
			respondError(c, validation.Field("capacity", "Capacity cannot be lower than the current number of occupants"))
			return
		}
		updates["capacity"] = *req.Capacity
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) > 0 {
		if err := db.Model(&room).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": errDuplicateRoom.Error()})
				return
			}
			respondError(c, err)
			return
		}
	}
	if err := db.First(&room, "id = ?", id).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// Delete refuses rooms that still have occupants who have not checked out.
func (rc *RoomController) Delete(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	db := rc.DB.WithContext(c.Request.Context())
	var room models.Room
	if err := db.Scopes(sc.Rooms()).First(&room, "rooms.id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	var active int64
	if err := db.Model(&models.RoomOccupant{}).Where("room_id = ? AND check_out_date IS NULL", room.ID).Count(&active).Error; err != nil {
		respondError(c, err)
		return
	}
	if active > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "room still has active occupants"})
		return
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", room.ID).Delete(&models.RoomOccupant{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.InventoryItem{}).Where("room_id = ?", room.ID).Update("room_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&room).Error; err != nil {
			return err
		}
		return tx.Model(&models.Hostel{}).
			Where("id = ? AND total_rooms > 0", room.HostelID).
			UpdateColumn("total_rooms", gorm.Expr("total_rooms - 1")).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
