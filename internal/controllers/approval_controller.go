package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/services"
)

type ApprovalController struct {
	Approvals *services.ApprovalService
}

func (ac *ApprovalController) List(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	status := strings.TrimSpace(strings.ToLower(c.Query("status")))
	switch status {
	case "", models.ApprovalPending, models.ApprovalApproved, models.ApprovalRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	rows, err := ac.Approvals.List(c.Request.Context(), sc, status)
	if err != nil {
		respondError(c, err)
		return
	}
	meta := gin.H{"total": len(rows)}
	if status != "" {
		meta["status"] = status
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "meta": meta})
}

func (ac *ApprovalController) Get(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	view, err := ac.Approvals.Get(c.Request.Context(), sc, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Submit files a request for the calling warden.
func (ac *ApprovalController) Submit(c *gin.Context) {
	_, sc, ok := caller(c)
	if !ok {
		return
	}
	var req services.SubmitApprovalInput
	if !bindJSON(c, &req) {
		return
	}
	a, err := ac.Approvals.Submit(c.Request.Context(), sc, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

type decideRequest struct {
	Decision string `json:"decision" binding:"required"`
}

func (ac *ApprovalController) Decide(c *gin.Context) {
	profile, _, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	decision := strings.ToLower(strings.TrimSpace(req.Decision))
	result, err := ac.Approvals.Decide(c.Request.Context(), profile.ID, id, decision)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
