package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/services"
)

type UserController struct {
	DB    *gorm.DB
	Users *services.UserService
}

var userSorts = map[string]string{
	"created_at": "created_at",
	"full_name":  "full_name",
	"email":      "email",
	"role":       "role",
	"status":     "status",
	"last_login": "last_login",
}

func (uc *UserController) List(c *gin.Context) {
	// Query params: limit, page, all, sort_by, sort_dir, q, role, status
	lq := parseListQuery(c, userSorts, "created_at")

	qText := strings.TrimSpace(c.Query("q"))
	role := strings.TrimSpace(strings.ToLower(c.Query("role")))
	status := strings.TrimSpace(strings.ToLower(c.Query("status")))
	if role != "" && !IsValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}
	if status != "" && !IsValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	filters := func(db *gorm.DB) *gorm.DB {
		if qText != "" {
			like := likePattern(qText)
			db = db.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
		}
		if role != "" {
			db = db.Where("role = ?", role)
		}
		if status != "" {
			db = db.Where("status = ?", status)
		}
		return db
	}

	db := uc.DB.WithContext(c.Request.Context())
	var total int64
	if err := db.Model(&models.UserProfile{}).Scopes(filters).Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	var users []models.UserProfile
	if err := lq.apply(db.Scopes(filters)).Find(&users).Error; err != nil {
		respondError(c, err)
		return
	}

	meta := lq.meta(total)
	if qText != "" {
		meta["q"] = qText
	}
	if role != "" {
		meta["role"] = role
	}
	if status != "" {
		meta["status"] = status
	}
	c.JSON(http.StatusOK, gin.H{"data": users, "meta": meta})
}

func (uc *UserController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var u models.UserProfile
	if err := uc.DB.WithContext(c.Request.Context()).First(&u, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (uc *UserController) Create(c *gin.Context) {
	var req services.CreateUserInput
	if !bindJSON(c, &req) {
		return
	}
	profile, err := uc.Users.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (uc *UserController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateUserInput
	if !bindJSON(c, &req) {
		return
	}
	profile, err := uc.Users.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ToggleStatus suspends an active user or reactivates a suspended one.
func (uc *UserController) ToggleStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if self, _, ok := caller(c); !ok {
		return
	} else if self.ID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot change your own status"})
		return
	}
	profile, err := uc.Users.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (uc *UserController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if self, _, ok := caller(c); !ok {
		return
	} else if self.ID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}
	if err := uc.Users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
