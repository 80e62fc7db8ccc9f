package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/validation"
)

type HostelController struct {
	DB *gorm.DB
}

type createHostelRequest struct {
	Name string `json:"name" validate:"required,max=120"`
	Type string `json:"type" validate:"required,oneof=male female mixed"`
}

type updateHostelRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=120"`
	Type *string `json:"type" validate:"omitempty,oneof=male female mixed"`
}

var hostelSorts = map[string]string{
	"created_at":  "created_at",
	"name":        "name",
	"type":        "type",
	"total_rooms": "total_rooms",
}

func (hc *HostelController) List(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	lq := parseListQuery(c, hostelSorts, "created_at")
	hostelType := strings.TrimSpace(strings.ToLower(c.Query("type")))

	filters := func(db *gorm.DB) *gorm.DB {
		if hostelType != "" {
			db = db.Where("hostels.type = ?", hostelType)
		}
		return db
	}

	db := hc.DB.WithContext(c.Request.Context())
	var total int64
	if err := db.Model(&models.Hostel{}).Scopes(sc.Hostels(), filters).Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	var hostels []models.Hostel
	if err := lq.apply(db.Scopes(sc.Hostels(), filters)).Find(&hostels).Error; err != nil {
		respondError(c, err)
		return
	}
	meta := lq.meta(total)
	if hostelType != "" {
		meta["type"] = hostelType
	}
	c.JSON(http.StatusOK, gin.H{"data": hostels, "meta": meta})
}

func (hc *HostelController) Get(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var h models.Hostel
	if err := hc.DB.WithContext(c.Request.Context()).Scopes(sc.Hostels()).First(&h, "hostels.id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "hostel not found"})
		return
	}
	c.JSON(http.StatusOK, h)
}

// Create records the caller as the hostel's warden. Wardens may only add
// hostels of their own type.
func (hc *HostelController) Create(c *gin.Context) {
	profile, sc, ok := caller(c)
	if !ok {
		return
	}
	var req createHostelRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	if err := validation.Struct(req); err != nil {
		respondError(c, err)
		return
	}
	if !sc.CanSeeHostelType(req.Type) {
		c.JSON(http.StatusForbidden, gin.H{"error": "you cannot manage hostels of this type"})
		return
	}
	wardenID := profile.ID
	h := models.Hostel{Name: req.Name, Type: req.Type, WardenID: &wardenID}
	if err := hc.DB.WithContext(c.Request.Context()).Create(&h).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h)
}

func (hc *HostelController) Update(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req updateHostelRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := validation.Struct(req); err != nil {
		respondError(c, err)
		return
	}
	db := hc.DB.WithContext(c.Request.Context())
	var h models.Hostel
	if err := db.Scopes(sc.Hostels()).First(&h, "hostels.id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "hostel not found"})
		return
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Type != nil {
		t := strings.ToLower(*req.Type)
		if !sc.CanSeeHostelType(t) {
			c.JSON(http.StatusForbidden, gin.H{"error": "you cannot manage hostels of this type"})
			return
		}
		updates["type"] = t
	}
	if len(updates) > 0 {
		if err := db.Model(&h).Updates(updates).Error; err != nil {
			respondError(c, err)
			return
		}
	}
	if err := db.First(&h, "id = ?", id).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h)
}

// Delete refuses to remove a hostel that still has rooms.
func (hc *HostelController) Delete(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	db := hc.DB.WithContext(c.Request.Context())
	var h models.Hostel
	if err := db.Scopes(sc.Hostels()).First(&h, "hostels.id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "hostel not found"})
		return
	}
	var rooms int64
	if err := db.Model(&models.Room{}).Where("hostel_id = ?", h.ID).Count(&rooms).Error; err != nil {
		respondError(c, err)
		return
	}
	if rooms > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "hostel still has rooms"})
		return
	}
	if err := db.Delete(&h).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
