package models

import "time"

// OrderStatus is the delivery-progress state of a food order.
type OrderStatus string

const (
	StatusPlaced         OrderStatus = "placed"
	StatusPacking        OrderStatus = "packing"
	StatusShipped        OrderStatus = "shipped"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// Payment status values.
const (
	PaymentPending       = "pending"
	PaymentPaid          = "paid"
	PaymentFailed        = "failed"
	PaymentRefundPending = "refund_pending"
	PaymentRefunded      = "refunded"
)

// Payment methods.
const (
	MethodCashOnDelivery = "cash_on_delivery"
	MethodOnline         = "online"
)

// Cancellation sub-status values.
const (
	CancelRequested = "requested"
	CancelApproved  = "approved"
	CancelRejected  = "rejected"
)

// Cancellation is the request/approve/reject axis layered on top of the
// order status. Requested is true only while a request is unresolved.
type Cancellation struct {
	Requested   bool       `json:"requested"`
	Reason      *string    `gorm:"type:text" json:"reason,omitempty"`
	SubStatus   *string    `gorm:"type:varchar(20)" json:"sub_status,omitempty"`
	RequestedAt *time.Time `json:"requested_at,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// SoftDeleteMarks hides an order from one actor's listings without removing
// it from storage.
type SoftDeleteMarks struct {
	DeletedByStudent   bool       `json:"deleted_by_student"`
	DeletedByStudentAt *time.Time `json:"deleted_by_student_at,omitempty"`
	DeletedByAdmin     bool       `json:"deleted_by_admin"`
	DeletedByAdminAt   *time.Time `json:"deleted_by_admin_at,omitempty"`
}

// ShippingInfo is populated once a vendor marks the order shipped.
type ShippingInfo struct {
	ShippedAt             *time.Time `json:"shipped_at,omitempty"`
	TrackingNumber        string     `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`
	EstimatedDeliveryTime string     `gorm:"type:varchar(100)" json:"estimated_delivery_time,omitempty"`
	Notes                 string     `gorm:"type:text" json:"notes,omitempty"`
	ShippedByVendorID     *uint      `json:"shipped_by_vendor_id,omitempty"`
}

type FoodOrder struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	StudentID       uint            `gorm:"not null;index" json:"student_id"`
	Student         User            `gorm:"foreignKey:StudentID" json:"-"`
	Items           []FoodOrderItem `gorm:"foreignKey:OrderID" json:"items"`
	TotalAmount     float64         `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	DeliveryAddress string          `gorm:"type:text;not null" json:"delivery_address"`
	PaymentMethod   string          `gorm:"type:varchar(30);not null" json:"payment_method"`
	PaymentStatus   string          `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	OrderStatus     OrderStatus     `gorm:"type:varchar(20);not null;default:'placed'" json:"order_status"`

	// StripeSessionID references the provider's checkout session, set only
	// for online orders.
	StripeSessionID *string `gorm:"type:varchar(255)" json:"stripe_session_id,omitempty"`

	// IdempotencyKey dedupes retried creation requests. The unique index is
	// what arbitrates concurrent duplicate creations; NULLs never collide.
	IdempotencyKey *string `gorm:"type:varchar(255);uniqueIndex" json:"idempotency_key,omitempty"`

	Cancellation Cancellation    `gorm:"embedded;embeddedPrefix:cancellation_" json:"cancellation"`
	SoftDelete   SoftDeleteMarks `gorm:"embedded;embeddedPrefix:soft_delete_" json:"soft_delete"`
	Shipping     ShippingInfo    `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

type FoodOrderItem struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	OrderID    uint    `gorm:"not null;index" json:"order_id"`
	FoodItemID uint    `json:"food_item_id"`
	Name       string  `gorm:"type:varchar(255);not null" json:"name"`
	Quantity   int     `gorm:"not null" json:"quantity"`
	UnitPrice  float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
}

// IsTerminal reports whether the order can no longer change delivery state.
func (o *FoodOrder) IsTerminal() bool {
	return o.OrderStatus == StatusDelivered || o.OrderStatus == StatusCancelled
}
