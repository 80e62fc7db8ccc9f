package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/services"
)

// FunctionsController serves the callable procedures used by the admin UI
// and the password flow.
type FunctionsController struct {
	Users     *services.UserService
	Passwords *services.PasswordService
}

// CreateUser provisions the login identity for an existing profile. Only
// callers holding the admin role in user_roles may call it.
func (fc *FunctionsController) CreateUser(c *gin.Context) {
	profile, _, ok := caller(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	isAdmin, err := fc.Users.HasAppRole(ctx, profile.ID, models.RoleAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	if !isAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden - Admin access required"})
		return
	}

	var req services.CreateUserInput
	if !bindJSON(c, &req) {
		return
	}
	identity, err := fc.Users.Provision(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    gin.H{"id": identity.ID, "email": identity.Email},
	})
}

type sendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Token string `json:"token" binding:"required"`
}

// SendVerificationToken mails a code to the caller's own address. Nothing is
// stored.
func (fc *FunctionsController) SendVerificationToken(c *gin.Context) {
	profile, _, ok := caller(c)
	if !ok {
		return
	}
	var req sendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !strings.EqualFold(strings.TrimSpace(req.Email), profile.Email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "email does not belong to the caller"})
		return
	}
	if err := fc.Passwords.SendCode(c.Request.Context(), profile.Email, strings.TrimSpace(req.Token)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification code sent"})
}
