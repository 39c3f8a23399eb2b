package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campushub/campus-services/models"
	"github.com/campushub/campus-services/utils"
)

const stripeBaseURL = "https://api.stripe.com"

// ErrNotConfigured is returned when no secret key was supplied at
// construction time. The client never falls back to a baked-in key.
var ErrNotConfigured = errors.New("payment service is not configured")

// ProviderError is a non-2xx answer from the payment provider's API.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider error (HTTP %d): %s", e.StatusCode, e.Message)
}

// CheckoutSession is the hosted checkout handle returned to the caller.
type CheckoutSession struct {
	ID  string `json:"session_id"`
	URL string `json:"url"`
}

// SessionDetails is what can be recovered from the provider about an
// existing session during order confirmation.
type SessionDetails struct {
	ID            string
	PaymentStatus string // "paid", "unpaid", "no_payment_required"
	AmountTotal   float64
	Metadata      map[string]string
}

// Paid reports whether the provider considers the session settled.
func (s *SessionDetails) Paid() bool {
	return s.PaymentStatus == "paid" || s.PaymentStatus == "no_payment_required"
}

// CheckoutParams carries everything a hosted checkout session needs. The
// cart and address travel as session metadata so confirmation can rebuild
// the order even when the redirect arrives with an empty payload.
type CheckoutParams struct {
	StudentID      uint
	Items          []models.FoodOrderItem
	TotalAmount    float64
	Address        string
	IdempotencyKey string
}

// PaymentGateway abstracts the hosted checkout provider.
type PaymentGateway interface {
	CreateCheckoutSession(params CheckoutParams) (*CheckoutSession, error)
	RetrieveSession(sessionID string) (*SessionDetails, error)
}

// StripeConfig holds the provider configuration, read from the environment
// at composition time.
type StripeConfig struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
}

// StripeService talks to the Stripe checkout API. Construct it once in main
// and inject it; there is no package-level singleton.
type StripeService struct {
	config     StripeConfig
	baseURL    string
	httpClient *http.Client
}

func NewStripeService(config StripeConfig) *StripeService {
	return &StripeService{
		config:  config,
		baseURL: stripeBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// metadataCartEntry is the compact line-item form stored in session
// metadata (metadata values have a hard length limit).
type metadataCartEntry struct {
	ItemID   uint `json:"id"`
	Quantity int  `json:"qty"`
}

// CreateCheckoutSession creates a hosted checkout session carrying the line
// items, total, address and idempotency key. No order record is created here.
func (s *StripeService) CreateCheckoutSession(params CheckoutParams) (*CheckoutSession, error) {
	if s.config.SecretKey == "" {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", uuid.NewString())
	form.Set("success_url", s.config.SuccessURL)
	form.Set("cancel_url", s.config.CancelURL)

	for i, item := range params.Items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", "lkr")
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(int64(item.UnitPrice*100), 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	cart := make([]metadataCartEntry, 0, len(params.Items))
	for _, item := range params.Items {
		cart = append(cart, metadataCartEntry{ItemID: item.FoodItemID, Quantity: item.Quantity})
	}
	cartJSON, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("error encoding cart metadata: %v", err)
	}

	form.Set("metadata[student_id]", strconv.FormatUint(uint64(params.StudentID), 10))
	form.Set("metadata[cart]", string(cartJSON))
	form.Set("metadata[delivery_address]", params.Address)
	form.Set("metadata[total_amount]", strconv.FormatFloat(params.TotalAmount, 'f', 2, 64))
	if params.IdempotencyKey != "" {
		form.Set("metadata[idempotency_key]", params.IdempotencyKey)
	}

	body, err := s.do("POST", "/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	var resp struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("error unmarshaling session response: %v", err)
	}

	utils.InfoLogger.Printf("Created checkout session %s for student %d", resp.ID, params.StudentID)

	return &CheckoutSession{ID: resp.ID, URL: resp.URL}, nil
}

// RetrieveSession fetches a session's payment status and metadata. Callers
// treat failures here as degraded verification, not fatal errors.
func (s *StripeService) RetrieveSession(sessionID string) (*SessionDetails, error) {
	if s.config.SecretKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := s.do("GET", "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		ID            string            `json:"id"`
		PaymentStatus string            `json:"payment_status"`
		AmountTotal   int64             `json:"amount_total"`
		Metadata      map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("error unmarshaling session response: %v", err)
	}

	return &SessionDetails{
		ID:            resp.ID,
		PaymentStatus: resp.PaymentStatus,
		AmountTotal:   float64(resp.AmountTotal) / 100,
		Metadata:      resp.Metadata,
	}, nil
}

func (s *StripeService) do(method, path string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, s.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.SecretKey)
	if method == "POST" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(body)
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: msg}
	}

	return body, nil
}

// DescribeGatewayError turns a gateway failure into the caller-facing
// message, distinguishing configuration, DNS, connection and provider-API
// failures.
func DescribeGatewayError(err error) string {
	var dnsErr *net.DNSError
	var provErr *ProviderError

	switch {
	case errors.Is(err, ErrNotConfigured):
		return "payment service is not configured"
	case errors.As(err, &dnsErr):
		return "payment service could not be resolved, please try again later"
	case errors.As(err, &provErr):
		return "payment provider rejected the request: " + provErr.Message
	default:
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return "could not reach the payment service, please try again later"
		}
		return "payment service is unavailable"
	}
}
