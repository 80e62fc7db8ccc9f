package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ostech2/uhsms/internal/services"
)

type PasswordController struct {
	Passwords *services.PasswordService
}

// RequestCode mails a fresh verification code to the caller.
func (pc *PasswordController) RequestCode(c *gin.Context) {
	profile, _, ok := caller(c)
	if !ok {
		return
	}
	if err := pc.Passwords.RequestCode(c.Request.Context(), profile); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent to your email"})
}

func (pc *PasswordController) Change(c *gin.Context) {
	profile, _, ok := caller(c)
	if !ok {
		return
	}
	var req services.ChangePasswordInput
	if !bindJSON(c, &req) {
		return
	}
	if err := pc.Passwords.ChangePassword(c.Request.Context(), profile, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
