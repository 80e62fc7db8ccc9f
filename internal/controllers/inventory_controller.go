package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/services"
	"github.com/Ostech2/uhsms/internal/validation"
)

type InventoryController struct {
	DB *gorm.DB
}

type createItemRequest struct {
	Name         string     `json:"name" validate:"required,max=120"`
	CategoryID   string     `json:"category_id" validate:"required,uuid"`
	HostelID     string     `json:"hostel_id"`
	RoomID       string     `json:"room_id"`
	Quantity     *int       `json:"quantity" validate:"omitempty,gte=0"`
	Condition    string     `json:"condition" validate:"max=32"`
	Notes        string     `json:"notes"`
	PurchaseDate *time.Time `json:"purchase_date"`
}

type updateItemRequest struct {
	Name         *string    `json:"name" validate:"omitempty,min=1,max=120"`
	CategoryID   *string    `json:"category_id" validate:"omitempty,uuid"`
	HostelID     *string    `json:"hostel_id"`
	RoomID       *string    `json:"room_id"`
	Quantity     *int       `json:"quantity" validate:"omitempty,gte=0"`
	Condition    *string    `json:"condition" validate:"omitempty,max=32"`
	Status       *string    `json:"status" validate:"omitempty,oneof=available assigned maintenance damaged"`
	Notes        *string    `json:"notes"`
	PurchaseDate *time.Time `json:"purchase_date"`
}

type createCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

var itemSorts = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
	"quantity":   "quantity",
	"status":     "status",
}

func (ic *InventoryController) ListItems(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	lq := parseListQuery(c, itemSorts, "created_at")
	hostelID := strings.TrimSpace(c.Query("hostel_id"))
	categoryID := strings.TrimSpace(c.Query("category_id"))
	status := strings.TrimSpace(strings.ToLower(c.Query("status")))
	qText := strings.TrimSpace(c.Query("q"))
	if (hostelID != "" && !isUUID(hostelID)) || (categoryID != "" && !isUUID(categoryID)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter id"})
		return
	}

	filters := func(db *gorm.DB) *gorm.DB {
		if hostelID != "" {
			db = db.Where("inventory_items.hostel_id = ?", hostelID)
		}
		if categoryID != "" {
			db = db.Where("inventory_items.category_id = ?", categoryID)
		}
		if status != "" {
			db = db.Where("inventory_items.status = ?", status)
		}
		if qText != "" {
			db = db.Where("LOWER(inventory_items.name) LIKE ?", likePattern(qText))
		}
		return db
	}

	db := ic.DB.WithContext(c.Request.Context())
	var total int64
	if err := db.Model(&models.InventoryItem{}).Scopes(sc.Inventory(), filters).Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	var items []models.InventoryItem
	if err := lq.apply(db.Scopes(sc.Inventory(), filters)).Find(&items).Error; err != nil {
		respondError(c, err)
		return
	}
	meta := lq.meta(total)
	if hostelID != "" {
		meta["hostel_id"] = hostelID
	}
	if categoryID != "" {
		meta["category_id"] = categoryID
	}
	if status != "" {
		meta["status"] = status
	}
	if qText != "" {
		meta["q"] = qText
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "meta": meta})
}

func (ic *InventoryController) GetItem(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var item models.InventoryItem
	if err := ic.DB.WithContext(c.Request.Context()).Scopes(sc.Inventory()).First(&item, "inventory_items.id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateItem adds stock recorded against the caller. New items start
// available.
func (ic *InventoryController) CreateItem(c *gin.Context) {
	profile, sc, ok := caller(c)
	if !ok {
		return
	}
	var req createItemRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.CategoryID = strings.TrimSpace(req.CategoryID)
	if err := validation.Struct(req); err != nil {
		respondError(c, err)
		return
	}
	db := ic.DB.WithContext(c.Request.Context())
	if err := db.First(&models.InventoryCategory{}, "id = ?", req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, validation.Field("category_id", "Category not found"))
			return
		}
		respondError(c, err)
		return
	}
	hostelID, roomID, err := services.Placement(db, sc, req.HostelID, req.RoomID)
	if err != nil {
		respondError(c, err)
		return
	}

	assignedBy := profile.ID
	item := models.InventoryItem{
		Name:         req.Name,
		CategoryID:   req.CategoryID,
		HostelID:     hostelID,
		RoomID:       roomID,
		Quantity:     1,
		Condition:    "good",
		Status:       models.ItemAvailable,
		AssignedBy:   &assignedBy,
		PurchaseDate: req.PurchaseDate,
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if cond := strings.TrimSpace(req.Condition); cond != "" {
		item.Condition = cond
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		item.Notes = &notes
	}
	if err := db.Create(&item).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (ic *InventoryController) UpdateItem(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req updateItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		respondError(c, err)
		return
	}
	db := ic.DB.WithContext(c.Request.Context())
	var item models.InventoryItem
	if err := db.Scopes(sc.Inventory()).First(&item, "inventory_items.id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.CategoryID != nil {
		if err := db.First(&models.InventoryCategory{}, "id = ?", *req.CategoryID).Error; err != nil {
			respondError(c, validation.Field("category_id", "Category not found"))
			return
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.HostelID != nil || req.RoomID != nil {
		hostelRaw, roomRaw := deref(item.HostelID), deref(item.RoomID)
		if req.HostelID != nil {
			hostelRaw = *req.HostelID
			if req.RoomID == nil {
				roomRaw = ""
			}
		}
		if req.RoomID != nil {
			roomRaw = *req.RoomID
		}
		hostelID, roomID, err := services.Placement(db, sc, hostelRaw, roomRaw)
		if err != nil {
			respondError(c, err)
			return
		}
		updates["hostel_id"] = hostelID
		updates["room_id"] = roomID
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.Condition != nil {
		updates["condition"] = strings.TrimSpace(*req.Condition)
	}
	if req.Status != nil {
		updates["status"] = *req.Status
		// leaving maintenance counts as a completed service
		if item.Status == models.ItemMaintenance && *req.Status != models.ItemMaintenance {
			updates["last_maintenance"] = time.Now().UTC()
		}
	}
	if req.Notes != nil {
		updates["notes"] = optionalString(*req.Notes)
	}
	if req.PurchaseDate != nil {
		updates["purchase_date"] = req.PurchaseDate
	}
	if len(updates) > 0 {
		if err := db.Model(&item).Updates(updates).Error; err != nil {
			respondError(c, err)
			return
		}
	}
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (ic *InventoryController) DeleteItem(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	db := ic.DB.WithContext(c.Request.Context())
	var item models.InventoryItem
	if err := db.Scopes(sc.Inventory()).First(&item, "inventory_items.id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	if err := db.Delete(&item).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (ic *InventoryController) ListCategories(c *gin.Context) {
	var categories []models.InventoryCategory
	if err := ic.DB.WithContext(c.Request.Context()).Order("name ASC").Find(&categories).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories, "meta": gin.H{"total": len(categories)}})
}

func (ic *InventoryController) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		respondError(c, err)
		return
	}
	cat := models.InventoryCategory{Name: req.Name, Description: optionalString(req.Description)}
	if err := ic.DB.WithContext(c.Request.Context()).Create(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "category already exists"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
