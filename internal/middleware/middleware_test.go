package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecommerce_backend/internal/domain"
	"ecommerce_backend/internal/metrics"
	"ecommerce_backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return db
}

func newRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.GET("/me", RequireSignIn(secret), func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	r.GET("/admin", RequireSignIn(secret), RequireAdmin(db), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/admin-no-guard", RequireAdmin(db), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func do(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error
}

func TestRequireSignIn(t *testing.T) {
	r := newRouter(newDB(t))
	tok, err := utils.GenerateJWT(5, secret)
	require.NoError(t, err)

	w := do(r, "/me", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":5}`, w.Body.String())

	w = do(r, "/me", tok)
	assert.Equal(t, http.StatusOK, w.Code, "raw token accepted")

	for name, header := range map[string]string{
		"missing":      "",
		"empty bearer": "Bearer ",
		"garbage":      "Bearer nope",
		"wrong secret": "Bearer " + mustToken(t, 5, "other"),
	} {
		w := do(r, "/me", header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
		assert.Equal(t, utils.CodeUnauthorized, errorCode(t, w), name)
	}
}

func TestRequireAdmin(t *testing.T) {
	db := newDB(t)
	admin := domain.User{Name: "A", Email: "a@x.io", Password: "h", Role: domain.RoleAdmin}
	user := domain.User{Name: "U", Email: "u@x.io", Password: "h", Role: domain.RoleUser}
	require.NoError(t, db.Create(&admin).Error)
	require.NoError(t, db.Create(&user).Error)
	r := newRouter(db)

	w := do(r, "/admin", "Bearer "+mustToken(t, admin.ID, secret))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, "/admin", "Bearer "+mustToken(t, user.ID, secret))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, utils.CodeForbidden, errorCode(t, w))

	w = do(r, "/admin", "Bearer "+mustToken(t, 9999, secret))
	assert.Equal(t, http.StatusForbidden, w.Code, "unknown user")

	w = do(r, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "unauthenticated admin request")

	w = do(r, "/admin-no-guard", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "no identity in context")
}

func TestRequireAdmin_LookupFailure(t *testing.T) {
	db := newDB(t)
	require.NoError(t, db.Migrator().DropTable(&domain.User{}))
	r := newRouter(db)

	w := do(r, "/admin", "Bearer "+mustToken(t, 1, secret))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, utils.CodeInternal, errorCode(t, w))
}

func TestRequestLoggerAndMetrics(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(RequestLogger(), Metrics(m))
	r.GET("/ping/:id", func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c))
	})

	w := do(r, "/ping/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	rid := w.Header().Get(RequestIDHeader)
	assert.Len(t, rid, 36)
	assert.Equal(t, rid, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping/2", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "client-id", w.Header().Get(RequestIDHeader))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", "/ping/:id", "200")))
}

func mustToken(t *testing.T, id uint, key string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(id, key)
	require.NoError(t, err)
	return tok
}
