package routes

import (
	"context"
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
	"phoneshop_back_end/internal/handlers"
	"phoneshop_back_end/internal/middleware"
	"phoneshop_back_end/internal/models"
	"phoneshop_back_end/internal/utils"
)

type stubCatalog struct{ handlers.Catalog }

func (stubCatalog) ListCategories(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: "c1", Name: "Smartphones"}}, nil
}

func (stubCatalog) CreateCategory(_ context.Context, name string) (*models.Category, error) {
	return &models.Category{ID: "c2", Name: name}, nil
}

type stubUsers struct{ handlers.Users }

func (stubUsers) GetAllAdmins(context.Context) ([]models.User, error) {
	return []models.User{{ID: "a1", Role: models.RoleAdmin}}, nil
}

func newRouter(t *testing.T) (*gin.Engine, *utils.JWTManager) {
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	jwtm := utils.NewJWTManager("secret", time.Hour)
	r := gin.New()
	RegisterRoutes(r, Deps{
		JWT:        jwtm,
		RateLimit:  middleware.NewRateLimit(cache.NewRateLimiter(rdb), log),
		Upgrader:   handlers.NewUpgrader(nil),
		Log:        log,
		Auth:       handlers.NewAuthHandler(stubUsers{}, log),
		Users:      handlers.NewUserHandler(stubUsers{}, log),
		Categories: handlers.NewCategoryHandler(stubCatalog{}, log),
		Products:   handlers.NewProductHandler(stubCatalog{}, log),
		Carts:      handlers.NewCartHandler(nil, nil, log),
		Orders:     handlers.NewOrderHandler(nil, log),
		Payments:   handlers.NewPaymentHandler(nil, log),
	})
	return r, jwtm
}

func bearer(t *testing.T, jwtm *utils.JWTManager, role models.Role) string {
	t.Helper()
	token, _, err := jwtm.Generate(models.User{ID: "u-" + string(role), Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func do(r http.Handler, method, path, auth, body string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestPublicRoutes(t *testing.T) {
	r, _ := newRouter(t)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", "", ""))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/category/get-all", "", ""))
}

func TestGuards(t *testing.T) {
	r, jwtm := newRouter(t)
	user := bearer(t, jwtm, models.RoleUser)
	normal := bearer(t, jwtm, models.RoleNormalAdmin)
	super := bearer(t, jwtm, models.RoleAdmin)
	body := `{"name":"Tablettes"}`

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/category/create", "", body))
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/category/create", user, body))
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/category/create", normal, body))

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/user/admin/get-all", user, ""))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/user/admin/get-all", normal, ""))
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/user/admin/create-normal-admin", normal, `{}`))
	// Le super admin passe les guards ; le corps invalide est refusé par le handler.
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/user/admin/create-normal-admin", super, `{}`))

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/cart", super, ""))
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/order/create", normal, `{}`))
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/payment/revenue-stats", user, ""))
}
