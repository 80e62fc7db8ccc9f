package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/middleware"
	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/services"
	"github.com/Ostech2/uhsms/internal/utils"
)

const tokenIssuer = "uhsms"

type AuthController struct {
	DB            *gorm.DB
	Sessions      *services.SessionResolver
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (a *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	ctx := c.Request.Context()

	var identity models.AuthIdentity
	if err := a.DB.WithContext(ctx).Where("LOWER(email) = ?", email).First(&identity).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !utils.CheckPassword(identity.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	profile, err := a.Sessions.Resolve(ctx, email)
	if err != nil || profile.ID != identity.ID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	now := time.Now().UTC()
	if err := a.DB.WithContext(ctx).Model(&profile).Update("last_login", &now).Error; err != nil {
		respondError(c, err)
		return
	}
	profile.LastLogin = &now

	access, refresh, err := a.issueTokens(profile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":       access.Token,
		"token_type":         "Bearer",
		"expires_in":         int(a.AccessTTL.Seconds()),
		"refresh_token":      refresh.Token,
		"refresh_expires_in": int(a.RefreshTTL.Seconds()),
		"profile":            profile,
		"dashboard":          services.DashboardFor(profile.Role),
	})
}

func (a *AuthController) Me(c *gin.Context) {
	profile, ok := middleware.CurrentProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Session tells the client which dashboard to mount for the caller.
func (a *AuthController) Session(c *gin.Context) {
	profile, ok := middleware.CurrentProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profile":   profile,
		"dashboard": services.DashboardFor(profile.Role),
	})
}

type tokenPair struct {
	Token string
	JTI   string
}

func (a *AuthController) issueTokens(profile models.UserProfile) (access tokenPair, refresh tokenPair, err error) {
	now := time.Now().UTC()
	acl := middleware.Claims{
		UserID: profile.ID,
		Role:   profile.Role,
		Email:  profile.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.AccessTTL)),
			Subject:   profile.ID,
		},
	}
	atStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, acl).SignedString([]byte(a.AccessSecret))
	if err != nil {
		return
	}
	access = tokenPair{Token: atStr}

	jti := uuid.NewString()
	rcl := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.RefreshTTL)),
		Subject:   profile.ID,
		ID:        jti,
	}
	rtStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, rcl).SignedString([]byte(a.RefreshSecret))
	if err != nil {
		return
	}
	refresh = tokenPair{Token: rtStr, JTI: jti}

	// only the hash is persisted
	rec := models.RefreshToken{
		TokenID:   jti,
		UserIDRef: profile.ID,
		TokenHash: utils.SHA256Hex(rtStr),
		ExpiresAt: now.Add(a.RefreshTTL),
	}
	err = a.DB.Create(&rec).Error
	return
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

var errRefreshReused = errors.New("refresh token already used")

// Refresh rotates the refresh token. The old token is revoked with a
// conditional update so a replayed token cannot be rotated twice.
func (a *AuthController) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	tok, err := jwt.ParseWithClaims(req.RefreshToken, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(a.RefreshSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	var rec models.RefreshToken
	if err := a.DB.WithContext(ctx).Where("token_hash = ?", utils.SHA256Hex(req.RefreshToken)).First(&rec).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token not found"})
		return
	}
	if rec.RevokedAt != nil || time.Now().UTC().After(rec.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token expired or revoked"})
		return
	}

	var profile models.UserProfile
	if err := a.DB.WithContext(ctx).Where("id = ? AND status = ?", rec.UserIDRef, models.StatusActive).First(&profile).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found or inactive"})
		return
	}

	now := time.Now().UTC()
	res := a.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", rec.ID).
		Update("revoked_at", &now)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errRefreshReused.Error()})
		return
	}

	access, newRefresh, err := a.issueTokens(profile)
	if err != nil {
		respondError(c, err)
		return
	}
	a.DB.WithContext(ctx).Model(&rec).Update("replaced_by_token_id", newRefresh.JTI)

	c.JSON(http.StatusOK, gin.H{
		"access_token":       access.Token,
		"token_type":         "Bearer",
		"expires_in":         int(a.AccessTTL.Seconds()),
		"refresh_token":      newRefresh.Token,
		"refresh_expires_in": int(a.RefreshTTL.Seconds()),
	})
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
	All          bool   `json:"all"`
}

// Logout revokes one refresh token, or all of the caller's tokens. Access
// tokens stay valid until they expire.
func (a *AuthController) Logout(c *gin.Context) {
	var req logoutRequest
	_ = c.ShouldBindJSON(&req)
	profile, _ := middleware.CurrentProfile(c)
	now := time.Now().UTC()
	ctx := c.Request.Context()

	if req.RefreshToken != "" {
		a.DB.WithContext(ctx).Model(&models.RefreshToken{}).
			Where("token_hash = ? AND user_id_ref = ? AND revoked_at IS NULL", utils.SHA256Hex(req.RefreshToken), profile.ID).
			Update("revoked_at", &now)
	}
	if req.All {
		a.DB.WithContext(ctx).Model(&models.RefreshToken{}).
			Where("user_id_ref = ? AND revoked_at IS NULL", profile.ID).
			Update("revoked_at", &now)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
