package services

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campushub/campus-services/models"
	"github.com/campushub/campus-services/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

func testService(t *testing.T, handler http.HandlerFunc) *StripeService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewStripeService(StripeConfig{
		SecretKey:  "sk_test_123",
		SuccessURL: "http://localhost/success",
		CancelURL:  "http://localhost/cancel",
	})
	svc.baseURL = server.URL
	return svc
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotForm url.Values
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		assert.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Write([]byte(`{"id": "cs_test_abc", "url": "https://checkout.stripe.com/pay/cs_test_abc"}`))
	})

	session, err := svc.CreateCheckoutSession(CheckoutParams{
		StudentID: 7,
		Items: []models.FoodOrderItem{
			{FoodItemID: 1, Name: "Burger", Quantity: 2, UnitPrice: 500},
		},
		TotalAmount:    1000,
		Address:        "Hostel B, Room 12",
		IdempotencyKey: "key-123",
	})

	assert.NoError(t, err)
	assert.Equal(t, "cs_test_abc", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_abc", session.URL)

	assert.Equal(t, "Burger", gotForm.Get("line_items[0][price_data][product_data][name]"))
	assert.Equal(t, "50000", gotForm.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "key-123", gotForm.Get("metadata[idempotency_key]"))
	assert.Equal(t, "Hostel B, Room 12", gotForm.Get("metadata[delivery_address]"))
	assert.Equal(t, `[{"id":1,"qty":2}]`, gotForm.Get("metadata[cart]"))
}

func TestCreateCheckoutSessionProviderError(t *testing.T) {
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Amount must be at least 50 cents"}}`))
	})

	_, err := svc.CreateCheckoutSession(CheckoutParams{
		Items:       []models.FoodOrderItem{{Name: "x", Quantity: 1}},
		TotalAmount: 1,
	})

	var provErr *ProviderError
	assert.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusBadRequest, provErr.StatusCode)
	assert.Contains(t, provErr.Message, "at least 50 cents")
}

func TestCreateCheckoutSessionNotConfigured(t *testing.T) {
	svc := NewStripeService(StripeConfig{})
	_, err := svc.CreateCheckoutSession(CheckoutParams{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestRetrieveSession(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		wantPaid     bool
		wantAmount   float64
		wantMetaAddr string
	}{
		{
			name:         "paid session",
			response:     `{"id":"cs_1","payment_status":"paid","amount_total":120000,"metadata":{"delivery_address":"Annex 4"}}`,
			wantPaid:     true,
			wantAmount:   1200,
			wantMetaAddr: "Annex 4",
		},
		{
			name:       "unpaid session",
			response:   `{"id":"cs_2","payment_status":"unpaid","amount_total":5000}`,
			wantPaid:   false,
			wantAmount: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "GET", r.Method)
				w.Write([]byte(tt.response))
			})

			details, err := svc.RetrieveSession("cs_any")
			assert.NoError(t, err)
			assert.Equal(t, tt.wantPaid, details.Paid())
			assert.Equal(t, tt.wantAmount, details.AmountTotal)
			if tt.wantMetaAddr != "" {
				assert.Equal(t, tt.wantMetaAddr, details.Metadata["delivery_address"])
			}
		})
	}
}

func TestRetrieveSessionProviderError(t *testing.T) {
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"message": "No such checkout session"}}`))
	})

	_, err := svc.RetrieveSession("cs_missing")
	var provErr *ProviderError
	assert.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusNotFound, provErr.StatusCode)
}

func TestDescribeGatewayError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "not configured",
			err:  ErrNotConfigured,
			want: "payment service is not configured",
		},
		{
			name: "dns failure",
			err:  &url.Error{Op: "Post", URL: "https://api.stripe.com", Err: &net.DNSError{Name: "api.stripe.com", Err: "no such host"}},
			want: "payment service could not be resolved, please try again later",
		},
		{
			name: "connection failure",
			err:  &url.Error{Op: "Post", URL: "https://api.stripe.com", Err: errors.New("connection refused")},
			want: "could not reach the payment service, please try again later",
		},
		{
			name: "provider api error",
			err:  &ProviderError{StatusCode: 400, Message: "bad request"},
			want: "payment provider rejected the request: bad request",
		},
		{
			name: "anything else",
			err:  errors.New("boom"),
			want: "payment service is unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescribeGatewayError(tt.err))
		})
	}
}
