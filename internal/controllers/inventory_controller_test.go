package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ostech2/uhsms/internal/models"
)

func TestInventoryItems(t *testing.T) {
	e := newEnv(t)
	s := newStaff(t, e)
	category := models.InventoryCategory{Name: "Bedding"}
	require.NoError(t, e.db.Create(&category).Error)
	male := createHostel(t, e, s.maleTok, "Nkrumah", models.HostelMale)
	female := createHostel(t, e, s.femaleTok, "Mary Stuart", models.HostelFemale)
	room := createRoom(t, e, s.maleTok, male.ID, "101", 2)

	w := e.do(t, http.MethodPost, "/api/v1/inventory/items", s.maleTok, gin.H{"name": "Mattress", "category_id": category.ID})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	_, fields := errorBody(t, w)
	assert.Equal(t, "Select a hostel", fields["hostel_id"])

	w = e.do(t, http.MethodPost, "/api/v1/inventory/items", s.maleTok, gin.H{"name": "Mattress", "category_id": category.ID, "hostel_id": female.ID})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// the room implies its hostel; blank ids are ignored
	w = e.do(t, http.MethodPost, "/api/v1/inventory/items", s.maleTok, gin.H{
		"name":        "Mattress",
		"category_id": category.ID,
		"hostel_id":   "",
		"room_id":     room.ID,
		"quantity":    3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item models.InventoryItem
	decode(t, w, &item)
	assert.Equal(t, models.ItemAvailable, item.Status)
	assert.Equal(t, "good", item.Condition)
	assert.Equal(t, 3, item.Quantity)
	require.NotNil(t, item.HostelID)
	assert.Equal(t, male.ID, *item.HostelID)
	require.NotNil(t, item.AssignedBy)
	assert.Equal(t, s.male.ID, *item.AssignedBy)

	w = e.do(t, http.MethodPost, "/api/v1/inventory/items", s.adminTok, gin.H{"name": "Spare Pillow", "category_id": category.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var list struct {
		Data []models.InventoryItem `json:"data"`
	}
	w = e.do(t, http.MethodGet, "/api/v1/inventory/items", s.maleTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Len(t, list.Data, 1)
	w = e.do(t, http.MethodGet, "/api/v1/inventory/items?q=pillow", s.adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Spare Pillow", list.Data[0].Name)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/v1/inventory/items/"+item.ID, s.femaleTok, nil).Code)

	w = e.do(t, http.MethodPut, "/api/v1/inventory/items/"+item.ID, s.maleTok, gin.H{"status": models.ItemMaintenance})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = e.do(t, http.MethodPut, "/api/v1/inventory/items/"+item.ID, s.maleTok, gin.H{"status": models.ItemAvailable, "quantity": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &item)
	assert.Equal(t, 5, item.Quantity)
	assert.NotNil(t, item.LastMaintenance)

	w = e.do(t, http.MethodPut, "/api/v1/inventory/items/"+item.ID, s.maleTok, gin.H{"status": "lost"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, "/api/v1/inventory/items/"+item.ID, s.femaleTok, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodDelete, "/api/v1/inventory/items/"+item.ID, s.maleTok, nil).Code)
}

func TestInventoryCategories(t *testing.T) {
	e := newEnv(t)
	s := newStaff(t, e)

	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPost, "/api/v1/admin/inventory/categories", s.maleTok, gin.H{"name": "Kitchen"}).Code)
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/v1/admin/inventory/categories", s.adminTok, gin.H{"name": "Kitchen"}).Code)
	assert.Equal(t, http.StatusConflict, e.do(t, http.MethodPost, "/api/v1/admin/inventory/categories", s.adminTok, gin.H{"name": "Kitchen"}).Code)

	var list struct {
		Data []models.InventoryCategory `json:"data"`
	}
	w := e.do(t, http.MethodGet, "/api/v1/inventory/categories", s.femaleTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Kitchen", list.Data[0].Name)
}
