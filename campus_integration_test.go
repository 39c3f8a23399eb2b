package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campushub/campus-services/router"
	"github.com/campushub/campus-services/services"
	"github.com/campushub/campus-services/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	os.Exit(m.Run())
}

type nullGateway struct{}

func (nullGateway) CreateCheckoutSession(services.CheckoutParams) (*services.CheckoutSession, error) {
	return &services.CheckoutSession{ID: "cs_test", URL: "https://checkout.test/cs_test"}, nil
}

func (nullGateway) RetrieveSession(id string) (*services.SessionDetails, error) {
	return &services.SessionDetails{ID: id, PaymentStatus: "paid"}, nil
}

func newIntegrationApp(t *testing.T) *gin.Engine {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	autoMigrate(db)
	return router.SetupRouter(db, nullGateway{})
}

func request(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest(method, path, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, r *gin.Engine, name, email, role string) string {
	t.Helper()
	w := request(r, "POST", "/auth/register", "", gin.H{
		"name": name, "email": email, "password": "secret123", "role": role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = request(r, "POST", "/auth/login", "", gin.H{
		"email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

// Full journey: accounts, a COD order, admin progression, and the
// access-control fences between the roles.
func TestOrderJourney(t *testing.T) {
	r := newIntegrationApp(t)

	studentToken := registerAndLogin(t, r, "Asha", "asha@campus.test", "student")
	adminToken := registerAndLogin(t, r, "Ops", "ops@campus.test", "admin")

	// No token, wrong token.
	w := request(r, "GET", "/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = request(r, "GET", "/orders", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Student places a COD order.
	w = request(r, "POST", "/orders/cod", studentToken, gin.H{
		"items": []gin.H{
			{"name": "Veg Thali", "quantity": 1, "unit_price": 350},
		},
		"total_amount": 350,
		"address":      "Block C, Room 12",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			ID          uint   `json:"id"`
			OrderStatus string `json:"order_status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "placed", created.Data.OrderStatus)
	orderID := created.Data.ID

	// Role fences: student cannot see the admin listing or progress orders;
	// admin cannot place student orders.
	w = request(r, "GET", "/admin/orders", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = request(r, "POST", fmt.Sprintf("/orders/%d/simulate", orderID), studentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = request(r, "POST", "/orders/cod", adminToken, gin.H{})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin walks the order to delivered.
	for _, want := range []string{"packing", "shipped", "out_for_delivery", "delivered"} {
		w = request(r, "POST", fmt.Sprintf("/orders/%d/simulate", orderID), adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), want)
	}

	// Delivered is terminal: no further progression, no cancellation.
	w = request(r, "POST", fmt.Sprintf("/orders/%d/simulate", orderID), adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = request(r, "POST", fmt.Sprintf("/orders/%d/cancel", orderID), studentToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The student still sees the delivered order in their history.
	w = request(r, "GET", "/orders", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "delivered")
}
