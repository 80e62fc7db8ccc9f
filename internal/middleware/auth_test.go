package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ostech2/uhsms/internal/models"
)

const testSecret = "test-secret"

type fakeResolver map[string]models.UserProfile

func (f fakeResolver) Resolve(_ context.Context, email string) (models.UserProfile, error) {
	p, ok := f[email]
	if !ok {
		return models.UserProfile{}, errors.New("not found")
	}
	return p, nil
}

func sign(t *testing.T, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func claimsFor(p models.UserProfile, ttl time.Duration) Claims {
	return Claims{
		UserID: p.ID,
		Role:   p.Role,
		Email:  p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
}

func newRouter(resolver ProfileResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := r.Group("/", AuthMiddleware(resolver, AuthConfig{JWTSecret: testSecret}))
	auth.GET("/me", func(c *gin.Context) {
		p, _ := CurrentProfile(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID})
	})
	auth.GET("/wardens", RequireRoles(models.RoleMaleWarden, models.RoleFemaleWarden), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	auth.GET("/admins", RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, token string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware(t *testing.T) {
	admin := models.UserProfile{ID: "a1", Email: "admin@ucu.ac.ug", Role: models.RoleAdmin}
	warden := models.UserProfile{ID: "w1", Email: "john@ucu.ac.ug", Role: models.RoleMaleWarden}
	r := newRouter(fakeResolver{admin.Email: admin, warden.Email: warden})

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", ""))
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "garbage"))
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", sign(t, jwt.SigningMethodHS256, claimsFor(warden, -time.Minute))))
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", sign(t, jwt.SigningMethodHS512, claimsFor(warden, time.Minute))))

	inactive := models.UserProfile{ID: "x1", Email: "gone@ucu.ac.ug", Role: models.RoleMaleWarden}
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", sign(t, jwt.SigningMethodHS256, claimsFor(inactive, time.Minute))))

	wardenToken := sign(t, jwt.SigningMethodHS256, claimsFor(warden, time.Minute))
	assert.Equal(t, http.StatusOK, do(r, "/me", wardenToken))
	assert.Equal(t, http.StatusNoContent, do(r, "/wardens", wardenToken))
	assert.Equal(t, http.StatusForbidden, do(r, "/admins", wardenToken))

	adminToken := sign(t, jwt.SigningMethodHS256, claimsFor(admin, time.Minute))
	assert.Equal(t, http.StatusNoContent, do(r, "/wardens", adminToken))
	assert.Equal(t, http.StatusNoContent, do(r, "/admins", adminToken))

	assert.Equal(t, http.StatusOK, do(r, "/me?access_token="+wardenToken, ""))
}
