package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phoneshop_back_end/internal/cache"
	"phoneshop_back_end/internal/models"
	"phoneshop_back_end/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuth(t *testing.T) {
	jwtm := utils.NewJWTManager("secret", time.Hour)
	r := gin.New()
	r.GET("/me", Auth(jwtm, discard()), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c)+"|"+string(Role(c)))
	})

	token, _, err := jwtm.Generate(models.User{ID: "u1", Email: "a@b.c", Role: models.RoleNormalAdmin})
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, ""},
		{"bad scheme", "Basic " + token, http.StatusUnauthorized, ""},
		{"bad token", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid", "Bearer " + token, http.StatusOK, "u1|NORMAL_ADMIN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, w.Body.String())
			}
		})
	}
}

func TestRoleGuards(t *testing.T) {
	withRole := func(role models.Role) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set(ContextRole, role) }
	}
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	cases := []struct {
		guard gin.HandlerFunc
		role  models.Role
		want  int
	}{
		{RequireAdmin(), models.RoleAdmin, http.StatusNoContent},
		{RequireAdmin(), models.RoleNormalAdmin, http.StatusNoContent},
		{RequireAdmin(), models.RoleUser, http.StatusForbidden},
		{RequireSuperAdmin(), models.RoleAdmin, http.StatusNoContent},
		{RequireSuperAdmin(), models.RoleNormalAdmin, http.StatusForbidden},
		{RequireCustomer(), models.RoleUser, http.StatusNoContent},
		{RequireCustomer(), models.RoleAdmin, http.StatusForbidden},
		{RequireCustomer(), "", http.StatusForbidden},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/", withRole(tc.role), tc.guard, ok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, tc.want, w.Code, "role %q", tc.role)
	}
}

func newLimiter(t *testing.T) (*RateLimit, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRateLimit(cache.NewRateLimiter(rdb), discard()), mr
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginRateLimit(t *testing.T) {
	rl, _ := newLimiter(t)
	password := "wrong"
	r := gin.New()
	r.POST("/login", rl.Login(), func(c *gin.Context) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, c.ShouldBindJSON(&in))
		if in.Password != password {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.Status(http.StatusOK)
	})

	body := `{"email":"Alice@Example.com","password":"bad"}`
	for i := 0; i < LoginMaxAttempts; i++ {
		assert.Equal(t, http.StatusUnauthorized, post(r, "/login", body).Code)
	}
	w := post(r, "/login", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Un autre e-mail n'est pas concerné.
	assert.Equal(t, http.StatusUnauthorized, post(r, "/login", `{"email":"bob@example.com","password":"bad"}`).Code)
}

func TestLoginSuccessResetsAttempts(t *testing.T) {
	rl, mr := newLimiter(t)
	r := gin.New()
	r.POST("/login", rl.Login(), func(c *gin.Context) {
		if strings.Contains(c.GetHeader("X-Ok"), "1") {
			c.Status(http.StatusOK)
			return
		}
		c.Status(http.StatusUnauthorized)
	})

	post(r, "/login", `{"email":"a@b.c"}`)
	assert.True(t, mr.Exists("attempts:login:a@b.c"))

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":"a@b.c"}`))
	req.Header.Set("X-Ok", "1")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, mr.Exists("attempts:login:a@b.c"))
}

func TestForgotPasswordRateLimit(t *testing.T) {
	rl, _ := newLimiter(t)
	r := gin.New()
	r.POST("/forgot", rl.ForgotPassword(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusBadRequest, post(r, "/forgot", `{}`).Code)
	for i := 0; i < ForgotPasswordMaxAttempts; i++ {
		assert.Equal(t, http.StatusOK, post(r, "/forgot", `{"email":"a@b.c"}`).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, post(r, "/forgot", `{"email":"a@b.c"}`).Code)
}

func TestRegisterRateLimit(t *testing.T) {
	rl, _ := newLimiter(t)
	r := gin.New()
	r.POST("/register", rl.Register(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < RegisterMaxAttempts; i++ {
		assert.Equal(t, http.StatusOK, post(r, "/register", `{}`).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, post(r, "/register", `{}`).Code)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://front.test"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://front.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://front.test", w.Header().Get("Access-Control-Allow-Origin"))
}
