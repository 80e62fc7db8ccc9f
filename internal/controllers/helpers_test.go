package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/codes"
	"github.com/Ostech2/uhsms/internal/config"
	"github.com/Ostech2/uhsms/internal/mail"
	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/routes"
	"github.com/Ostech2/uhsms/internal/services"
	"github.com/Ostech2/uhsms/internal/testutil"
)

const testPassword = "Secret123"

type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

var codePattern = regexp.MustCompile(`<h2[^>]*>(\d{6})</h2>`)

// lastCode extracts the verification code from the most recent email.
func (o *outbox) lastCode(t *testing.T) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.sent)
	m := codePattern.FindStringSubmatch(o.sent[len(o.sent)-1].HTML)
	require.Len(t, m, 2)
	return m[1]
}

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	mail   *outbox
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	cfg := &config.Config{
		JWTSecret:           "access-secret",
		RefreshJWTSecret:    "refresh-secret",
		AccessTokenTTL:      15 * time.Minute,
		RefreshTokenTTL:     24 * time.Hour,
		VerificationCodeTTL: 10 * time.Minute,
	}
	box := &outbox{}
	r := gin.New()
	routes.Register(r, db, cfg, routes.Deps{Codes: codes.NewMemoryStore(), Mailer: box})
	return &testEnv{db: db, router: r, mail: box}
}

// user creates a profile with a login.
func (e *testEnv) user(t *testing.T, name, email, role string) models.UserProfile {
	t.Helper()
	users := &services.UserService{DB: e.db}
	p, err := users.Create(context.Background(), services.CreateUserInput{
		FullName: name,
		Email:    email,
		Password: testPassword,
		Role:     role,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type tokens struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

func (e *testEnv) login(t *testing.T, email, password string) tokens {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out tokens
	decode(t, w, &out)
	return out
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) (string, map[string]string) {
	t.Helper()
	var out struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decode(t, w, &out)
	return out.Error, out.Fields
}

// staff is a ready-made cast: one admin and one warden of each type, all
// logged in.
type staff struct {
	admin, male, female          models.UserProfile
	adminTok, maleTok, femaleTok string
}

func newStaff(t *testing.T, e *testEnv) staff {
	s := staff{
		admin:  e.user(t, "Grace Admin", "admin@uni.test", models.RoleAdmin),
		male:   e.user(t, "John Okello", "john@uni.test", models.RoleMaleWarden),
		female: e.user(t, "Mary Wanjiku", "mary@uni.test", models.RoleFemaleWarden),
	}
	s.adminTok = e.login(t, "admin@uni.test", testPassword).Access
	s.maleTok = e.login(t, "john@uni.test", testPassword).Access
	s.femaleTok = e.login(t, "mary@uni.test", testPassword).Access
	return s
}
