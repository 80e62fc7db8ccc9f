package controllers

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ostech2/uhsms/internal/services"
)

// maxImportSize caps occupant sheet uploads at 10MB.
const maxImportSize = 10 << 20

type OccupantController struct {
	Occupants *services.OccupantService
}

func (oc *OccupantController) List(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	f := services.OccupantFilter{
		RoomID:     strings.TrimSpace(c.Query("room_id")),
		ActiveOnly: strings.EqualFold(c.Query("active"), "true") || c.Query("active") == "1",
	}
	if f.RoomID != "" && !isUUID(f.RoomID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room_id"})
		return
	}
	rows, err := oc.Occupants.List(c.Request.Context(), sc, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "meta": gin.H{"total": len(rows)}})
}

func (oc *OccupantController) Register(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	var req services.RegisterOccupantInput
	if !bindJSON(c, &req) {
		return
	}
	occ, err := oc.Occupants.Register(c.Request.Context(), sc, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, occ)
}

func (oc *OccupantController) CheckOut(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	occ, err := oc.Occupants.CheckOut(c.Request.Context(), sc, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, occ)
}

func (oc *OccupantController) Delete(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := oc.Occupants.Delete(c.Request.Context(), sc, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// Import registers occupants from an uploaded CSV sheet (form field "file").
func (oc *OccupantController) Import(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	if err := c.Request.ParseMultipartForm(maxImportSize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse form"})
		return
	}
	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	if fileHeader == nil || fileHeader.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file name"})
		return
	}
	filename := strings.ToLower(strings.TrimSpace(fileHeader.Filename))
	if !strings.HasSuffix(filename, ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .csv files are allowed"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	if len(bytes.TrimSpace(data)) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is empty"})
		return
	}

	result, err := oc.Occupants.Import(c.Request.Context(), sc, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
