package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/middleware"
	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/scope"
	"github.com/Ostech2/uhsms/internal/services"
	"github.com/Ostech2/uhsms/internal/validation"
)

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	if verr, ok := validation.As(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error(), "fields": verr.Fields})
		return
	}
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, services.ErrAlreadyDecided),
		errors.Is(err, services.ErrDuplicateRegistration),
		errors.Is(err, services.ErrRoomFull),
		errors.Is(err, services.ErrRoomUnavailable),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAlreadyCheckedOut),
		errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidItemDetails),
		errors.Is(err, services.ErrInvalidDecision):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCSV):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON decodes the body into v, answering 400 on malformed input.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// idParam reads a UUID path parameter, answering 400 when malformed.
func idParam(c *gin.Context, name string) (string, bool) {
	id := strings.TrimSpace(c.Param(name))
	if !isUUID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return "", false
	}
	return id, true
}

// caller returns the authenticated profile and its data scope.
func caller(c *gin.Context) (models.UserProfile, scope.Scope, bool) {
	profile, ok := middleware.CurrentProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return models.UserProfile{}, scope.Scope{}, false
	}
	return profile, scope.For(profile), true
}

// listQuery holds the limit/page/sort query parameters shared by list
// endpoints.
type listQuery struct {
	All     bool
	Limit   int
	Page    int
	SortCol string
	SortDir string
}

func parseListQuery(c *gin.Context, allowedSorts map[string]string, defaultSort string) listQuery {
	q := listQuery{
		All:   strings.EqualFold(c.Query("all"), "true") || c.Query("all") == "1",
		Limit: 50,
		Page:  1,
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Limit = n
		}
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Page = n
		}
	}
	sortBy := strings.ToLower(c.DefaultQuery("sort_by", defaultSort))
	q.SortDir = strings.ToUpper(c.DefaultQuery("sort_dir", "DESC"))
	if q.SortDir != "ASC" && q.SortDir != "DESC" {
		q.SortDir = "DESC"
	}
	col, ok := allowedSorts[sortBy]
	if !ok {
		col = allowedSorts[defaultSort]
	}
	q.SortCol = col
	return q
}

func (q listQuery) apply(db *gorm.DB) *gorm.DB {
	db = db.Order(fmt.Sprintf("%s %s", q.SortCol, q.SortDir))
	if !q.All {
		db = db.Offset((q.Page - 1) * q.Limit).Limit(q.Limit)
	}
	return db
}

func (q listQuery) meta(total int64) gin.H {
	meta := gin.H{"total": total, "all": q.All}
	if !q.All {
		meta["limit"] = q.Limit
		meta["page"] = q.Page
		meta["sort_by"] = q.SortCol
		meta["sort_dir"] = q.SortDir
	}
	return meta
}

// likePattern builds a case-insensitive LIKE argument for use with LOWER(col).
func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
