package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Ostech2/uhsms/internal/models"
)

const profileKey = "profile"

type AuthConfig struct {
	JWTSecret string
}

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// ProfileResolver returns the active profile for an email.
type ProfileResolver interface {
	Resolve(ctx context.Context, email string) (models.UserProfile, error)
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth != "" && strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	// browsers cannot set headers on websocket upgrades
	return strings.TrimSpace(c.Query("access_token"))
}

// ParseToken validates an HS256 access token.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// AuthMiddleware authenticates the bearer token and loads the caller's
// active profile. A profile that is no longer active is treated as logged
// out.
func AuthMiddleware(resolver ProfileResolver, cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
			return
		}

		claims, err := ParseToken(tokenStr, cfg.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		profile, err := resolver.Resolve(c.Request.Context(), claims.Email)
		if err != nil || profile.ID != claims.UserID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found or inactive"})
			return
		}

		c.Set(profileKey, profile)
		c.Next()
	}
}

func CurrentProfile(c *gin.Context) (models.UserProfile, bool) {
	v, ok := c.Get(profileKey)
	if !ok {
		return models.UserProfile{}, false
	}
	p, ok := v.(models.UserProfile)
	return p, ok
}

// SetProfile stores p as the authenticated caller.
func SetProfile(c *gin.Context, p models.UserProfile) {
	c.Set(profileKey, p)
}

func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		profile, ok := CurrentProfile(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if _, ok := allowed[profile.Role]; !ok {
			// allow admin to pass any role-gate
			if profile.Role != models.RoleAdmin {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		}
		c.Next()
	}
}
