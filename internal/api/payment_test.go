package api

import (
	"net/http"
	"testing"

	"ecommerce_backend/internal/domain"
	"ecommerce_backend/internal/payment"
	"ecommerce_backend/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartBody(nonce string, prices ...string) string {
	body := `{"nonce":"` + nonce + `","cart":[`
	for i, p := range prices {
		if i > 0 {
			body += ","
		}
		body += `{"product_id":` + itoa(uint(i+1)) + `,"name":"item","price":` + p + `}`
	}
	return body + `]}`
}

func (s *testServer) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&domain.Order{}).Count(&n).Error)
	return n
}

func TestClientToken(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/v1/product/braintree/token", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "client-token", decode(t, w)["clientToken"])

	s.gw.tokenErr = payment.ErrGatewayUnavailable
	w = s.do(http.MethodGet, "/api/v1/product/braintree/token", nil, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, utils.CodeGateway, decode(t, w)["error"])
}

func TestPayment_RecordsOneOrderWithSum(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/product/braintree/payment", cartBody("nonce-1", "10", "25"), s.user)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["ok"])

	require.Len(t, s.gw.sales, 1)
	assert.True(t, s.gw.sales[0].Equal(decimal.NewFromInt(35)))
	assert.Equal(t, int64(1), s.orderCount(t))

	var order domain.Order
	require.NoError(t, s.db.First(&order).Error)
	assert.Equal(t, s.uid, order.BuyerID)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(35)))
	assert.Len(t, order.Items, 2)
	assert.Equal(t, domain.OrderStatusNotProcessed, order.Status)
}

func TestPayment_GatewayFailures(t *testing.T) {
	for gwErr, status := range map[error]int{
		payment.ErrDeclined:           http.StatusPaymentRequired,
		payment.ErrInvalidNonce:       http.StatusBadRequest,
		payment.ErrInvalidAmount:      http.StatusBadRequest,
		payment.ErrRejected:           http.StatusBadRequest,
		payment.ErrGatewayUnavailable: http.StatusBadGateway,
	} {
		s := newTestServer(t)
		s.gw.saleErr = gwErr

		w := s.do(http.MethodPost, "/api/v1/product/braintree/payment", cartBody("n", "10", "25"), s.user)
		assert.Equal(t, status, w.Code, gwErr.Error())
		assert.Zero(t, s.orderCount(t), gwErr.Error())
		if gwErr != payment.ErrInvalidNonce {
			assert.NotEqual(t, utils.CodeInvalidNonce, decode(t, w)["error"], gwErr.Error())
		}
	}
}

func TestPayment_Rejections(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/product/braintree/payment", cartBody("n", "10"), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/product/braintree/payment", `{"nonce":"n","cart":[]}`, s.user)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/product/braintree/payment", cartBody("n", "10", "-5"), s.user)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/product/braintree/payment", cartBody("", "10"), s.user)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A line without a price is not free
	w = s.do(http.MethodPost, "/api/v1/product/braintree/payment", `{"nonce":"n","cart":[{"product_id":1,"price":10},{"product_id":2}]}`, s.user)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, utils.CodeValidation, decode(t, w)["error"])
	w = s.do(http.MethodPost, "/api/v1/product/braintree/payment", `{"nonce":"n","cart":[{"product_id":1,"price":null}]}`, s.user)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/product/braintree/payment", cartBody("n", "0"), s.user)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, s.gw.sales)
	assert.Zero(t, s.orderCount(t))
}

func TestPayment_NonceCannotBeReused(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/product/braintree/payment", cartBody("once", "5"), s.user)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodPost, "/api/v1/product/braintree/payment", cartBody("once", "5"), s.user)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Len(t, s.gw.sales, 1)
	assert.Equal(t, int64(1), s.orderCount(t))
}

func TestOrders(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/v1/product/braintree/payment", cartBody("a", "5"), s.user).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/v1/product/braintree/payment", cartBody("b", "7"), s.admin).Code)

	w := s.do(http.MethodGet, "/api/v1/auth/orders", nil, s.user)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode(t, w)["orders"].([]any)
	require.Len(t, mine, 1)
	order := mine[0].(map[string]any)
	assert.Equal(t, "Seed", order["buyer"].(map[string]any)["name"])
	orderID := uint(order["id"].(float64))

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/v1/auth/all-orders", nil, s.user).Code)
	w = s.do(http.MethodGet, "/api/v1/auth/all-orders", nil, s.admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, decode(t, w)["total"])

	path := "/api/v1/auth/order-status/" + itoa(orderID)
	w = s.do(http.MethodPut, path, map[string]string{"status": "Teleported"}, s.admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, path, map[string]string{"status": domain.OrderStatusShipped}, s.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.OrderStatusShipped, decode(t, w)["order"].(map[string]any)["status"])

	w = s.do(http.MethodGet, "/api/v1/auth/all-orders?status=Shipped", nil, s.admin)
	assert.Equal(t, 1.0, decode(t, w)["total"])

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/v1/auth/order-status/9999", map[string]string{"status": domain.OrderStatusShipped}, s.admin).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, path, map[string]string{"status": domain.OrderStatusShipped}, s.user).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", nil, "").Code)
	w := s.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
