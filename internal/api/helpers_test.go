package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"sync"
	"testing"

	"ecommerce_backend/internal/checkout"
	"ecommerce_backend/internal/db"
	"ecommerce_backend/internal/domain"
	"ecommerce_backend/internal/metrics"
	"ecommerce_backend/internal/payment"
	"ecommerce_backend/internal/storage"
	"ecommerce_backend/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGateway struct {
	mu       sync.Mutex
	sales    []decimal.Decimal
	tokenErr error
	saleErr  error
}

func (g *fakeGateway) IssueClientToken(context.Context) (string, error) {
	if g.tokenErr != nil {
		return "", g.tokenErr
	}
	return "client-token", nil
}

func (g *fakeGateway) SubmitSale(_ context.Context, amount decimal.Decimal, _, _ string) (*payment.SaleResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sales = append(g.sales, amount)
	if g.saleErr != nil {
		return nil, g.saleErr
	}
	return &payment.SaleResult{Success: true, TransactionID: "tx-1", Status: "submitted_for_settlement", Amount: amount.String()}, nil
}

type testServer struct {
	r     *gin.Engine
	db    *gorm.DB
	rdb   *redis.Client
	gw    *fakeGateway
	admin string // Admin token
	user  string // Ordinary user token
	uid   uint   // Ordinary user ID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithPhotos(t, nil)
}

// newTestServerWithPhotos uses photos instead of the database photo store when non-nil
func newTestServerWithPhotos(t *testing.T, photos storage.PhotoStore) *testServer {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	gw := &fakeGateway{}
	m := metrics.New()
	svc := checkout.NewService(gw, checkout.NewGormRecorder(gdb), checkout.NewRedisNonceGuard(rdb), m)

	if photos == nil {
		photos = storage.NewDBStore(gdb)
	}
	r := gin.New()
	RegisterRoutes(r, Deps{
		DB:        gdb,
		Redis:     rdb,
		Photos:    photos,
		Gateway:   gw,
		Checkout:  svc,
		Metrics:   m,
		JWTSecret: testSecret,
	})

	s := &testServer{r: r, db: gdb, rdb: rdb, gw: gw}
	adminID := s.seedUser(t, "admin@shop.io", domain.RoleAdmin)
	s.uid = s.seedUser(t, "user@shop.io", domain.RoleUser)
	s.admin = token(t, adminID)
	s.user = token(t, s.uid)
	return s
}

// seedUser inserts a user directly with password "secret1" and answer "blue"
func (s *testServer) seedUser(t *testing.T, email, role string) uint {
	t.Helper()
	pw, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	ans, err := bcrypt.GenerateFromPassword([]byte("blue"), bcrypt.MinCost)
	require.NoError(t, err)
	u := domain.User{Name: "Seed", Email: email, Password: string(pw), Phone: "1", Address: "A", Answer: string(ans), Role: role}
	require.NoError(t, s.db.Create(&u).Error)
	return u.ID
}

func token(t *testing.T, id uint) string {
	t.Helper()
	tok, err := utils.GenerateJWT(id, testSecret)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path string, body any, tok string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

type upload struct {
	name        string
	contentType string
	data        []byte
}

func (s *testServer) multipart(t *testing.T, method, path string, fields map[string]string, photo *upload, tok string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if photo != nil {
		h := make(textproto.MIMEHeader)
		h["Content-Disposition"] = []string{`form-data; name="photo"; filename="` + photo.name + `"`}
		h["Content-Type"] = []string{photo.contentType}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(photo.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) createCategory(t *testing.T, name string) uint {
	t.Helper()
	w := s.do(http.MethodPost, "/api/v1/category/create-category", map[string]string{"name": name}, s.admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cat := decode(t, w)["category"].(map[string]any)
	return uint(cat["id"].(float64))
}

func (s *testServer) createProduct(t *testing.T, name, price string, categoryID uint) uint {
	t.Helper()
	w := s.multipart(t, http.MethodPost, "/api/v1/product/create-product", map[string]string{
		"name":        name,
		"description": name + " description",
		"price":       price,
		"category":    itoa(categoryID),
		"quantity":    "5",
	}, nil, s.admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode(t, w)["products"].(map[string]any)
	return uint(p["id"].(float64))
}

func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
