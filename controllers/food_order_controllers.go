package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campushub/campus-services/config"
	"github.com/campushub/campus-services/models"
	"github.com/campushub/campus-services/services"
	"github.com/campushub/campus-services/statemachine"
	"github.com/campushub/campus-services/utils"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmptyCart       = errors.New("order must contain at least one item")
	ErrMissingTotal    = errors.New("total amount is required")
	ErrMissingAddress  = errors.New("delivery address is required")
	ErrBadLineItem     = errors.New("every item needs a positive quantity and a non-negative price")
	ErrBelowMinimum    = errors.New("amount below minimum for online payment")
	ErrVendorNotOwner  = errors.New("none of the items in this order belong to you")
	ErrUnknownStatus   = errors.New("unknown status value")
	ErrUnknownAction   = errors.New("action must be approve or reject")
	ErrAlreadyResolved = errors.New("order is already completed or cancelled")
	ErrMissingSession  = errors.New("session reference is required")
	ErrInvalidOrderID  = errors.New("invalid order id")
)

type FoodOrderController struct {
	DB       *gorm.DB
	Gateway  services.PaymentGateway
	Notifier *services.NotificationService
}

func NewFoodOrderController(db *gorm.DB, gateway services.PaymentGateway, notifier *services.NotificationService) *FoodOrderController {
	return &FoodOrderController{DB: db, Gateway: gateway, Notifier: notifier}
}

type lineItemReq struct {
	FoodItemID uint    `json:"food_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
}

type createOrderReq struct {
	Items          []lineItemReq `json:"items"`
	TotalAmount    *float64      `json:"total_amount"`
	Address        string        `json:"address"`
	IdempotencyKey string        `json:"idempotency_key"`
}

func (r *createOrderReq) validate() error {
	if len(r.Items) == 0 {
		return ErrEmptyCart
	}
	for _, item := range r.Items {
		if item.Quantity < 1 || item.UnitPrice < 0 {
			return ErrBadLineItem
		}
	}
	if r.TotalAmount == nil || *r.TotalAmount < 0 {
		return ErrMissingTotal
	}
	if r.Address == "" {
		return ErrMissingAddress
	}
	return nil
}

func (r *createOrderReq) orderItems() []models.FoodOrderItem {
	items := make([]models.FoodOrderItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, models.FoodOrderItem{
			FoodItemID: item.FoodItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
		})
	}
	return items
}

// findByIdempotencyKey returns the already-created order for a key, if any.
func (fc *FoodOrderController) findByIdempotencyKey(key string) *models.FoodOrder {
	if key == "" {
		return nil
	}
	var order models.FoodOrder
	if err := fc.DB.Preload("Items").Where("idempotency_key = ?", key).First(&order).Error; err != nil {
		return nil
	}
	return &order
}

// insertOrder persists a new order. If the idempotency key collided with a
// concurrent creation, the winning record is returned instead of an error.
func (fc *FoodOrderController) insertOrder(order *models.FoodOrder) (*models.FoodOrder, bool, error) {
	if err := fc.DB.Create(order).Error; err != nil {
		if order.IdempotencyKey != nil {
			if existing := fc.findByIdempotencyKey(*order.IdempotencyKey); existing != nil {
				return existing, true, nil
			}
		}
		return nil, false, err
	}
	return order, false, nil
}

// CreateCODOrder -> student checkout with cash on delivery.
func (fc *FoodOrderController) CreateCODOrder(c *gin.Context) {
	studentID := actorID(c)

	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Idempotent replay: same key, same order, no duplicate.
	if existing := fc.findByIdempotencyKey(req.IdempotencyKey); existing != nil {
		utils.RespondJSON(c, http.StatusOK, "Order already created", existing)
		return
	}

	order := &models.FoodOrder{
		StudentID:       studentID,
		Items:           req.orderItems(),
		TotalAmount:     *req.TotalAmount,
		DeliveryAddress: req.Address,
		PaymentMethod:   models.MethodCashOnDelivery,
		PaymentStatus:   models.PaymentPending,
		OrderStatus:     models.StatusPlaced,
	}
	if req.IdempotencyKey != "" {
		order.IdempotencyKey = &req.IdempotencyKey
	}

	created, replayed, err := fc.insertOrder(order)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if replayed {
		utils.RespondJSON(c, http.StatusOK, "Order already created", created)
		return
	}

	utils.InfoLogger.Printf("COD order %d placed by student %d (total %.2f)", created.ID, studentID, created.TotalAmount)
	utils.RespondJSON(c, http.StatusCreated, "Order placed", created)
}

// CreateCheckoutSession -> create a hosted checkout session for an online
// payment. No order record is created on this path.
func (fc *FoodOrderController) CreateCheckoutSession(c *gin.Context) {
	studentID := actorID(c)

	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if *req.TotalAmount < config.OnlineMinimumAmount() {
		utils.RespondError(c, http.StatusBadRequest, ErrBelowMinimum)
		return
	}

	session, err := fc.Gateway.CreateCheckoutSession(services.CheckoutParams{
		StudentID:      studentID,
		Items:          req.orderItems(),
		TotalAmount:    *req.TotalAmount,
		Address:        req.Address,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		utils.ErrorLogger.Printf("Checkout session creation failed for student %d: %v", studentID, err)
		utils.RespondErrorDetail(c, http.StatusServiceUnavailable, services.DescribeGatewayError(err), err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Checkout session created", session)
}

type confirmOrderReq struct {
	SessionRef     string        `json:"session_ref" binding:"required"`
	Items          []lineItemReq `json:"items"`
	TotalAmount    *float64      `json:"total_amount"`
	Address        string        `json:"address"`
	IdempotencyKey string        `json:"idempotency_key"`
}

// ConfirmOnlineOrder -> create the order after the checkout redirect. The
// redirect payload may be partial or empty, so missing data is backfilled
// from the session metadata and, failing that, synthesized. An order is
// always created; only payment verification is allowed to degrade.
func (fc *FoodOrderController) ConfirmOnlineOrder(c *gin.Context) {
	studentID := actorID(c)

	var req confirmOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.SessionRef == "" {
		utils.RespondError(c, http.StatusBadRequest, ErrMissingSession)
		return
	}

	if existing := fc.findByIdempotencyKey(req.IdempotencyKey); existing != nil {
		utils.RespondJSON(c, http.StatusOK, "Order already created", existing)
		return
	}

	// Best-effort verification. Retrieval failure degrades the payment
	// status to pending but never aborts the confirmation.
	verification := services.Unreachable
	var session *services.SessionDetails
	retrieved, err := fc.Gateway.RetrieveSession(req.SessionRef)
	if err != nil {
		utils.ErrorLogger.Printf("Session retrieval failed for %s: %v", req.SessionRef, err)
	} else {
		session = retrieved
		if session.Paid() {
			verification = services.Verified
		} else {
			verification = services.Unverified
		}
	}

	draft := services.OrderDraft{
		Items:   nil,
		Address: req.Address,
	}
	if req.TotalAmount != nil {
		draft.TotalAmount = *req.TotalAmount
	}
	for _, item := range req.Items {
		draft.Items = append(draft.Items, models.FoodOrderItem{
			FoodItemID: item.FoodItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
		})
	}

	services.CompleteDraft(&draft, services.FillContext{Session: session, DB: fc.DB}, services.DefaultFillChain())

	paymentStatus := models.PaymentPending
	if verification == services.Verified {
		paymentStatus = models.PaymentPaid
	}

	sessionRef := req.SessionRef
	order := &models.FoodOrder{
		StudentID:       studentID,
		Items:           draft.Items,
		TotalAmount:     draft.TotalAmount,
		DeliveryAddress: draft.Address,
		PaymentMethod:   models.MethodOnline,
		PaymentStatus:   paymentStatus,
		OrderStatus:     models.StatusPlaced,
		StripeSessionID: &sessionRef,
	}
	if req.IdempotencyKey != "" {
		order.IdempotencyKey = &req.IdempotencyKey
	}

	created, replayed, err := fc.insertOrder(order)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if replayed {
		utils.RespondJSON(c, http.StatusOK, "Order already created", created)
		return
	}

	utils.InfoLogger.Printf("Online order %d confirmed for student %d (session %s, verified=%v)",
		created.ID, studentID, req.SessionRef, verification == services.Verified)
	utils.RespondJSON(c, http.StatusCreated, "Order confirmed", created)
}

// GetStudentOrders -> the caller's own orders, newest first, excluding
// ones the student soft-deleted.
func (fc *FoodOrderController) GetStudentOrders(c *gin.Context) {
	studentID := actorID(c)

	var orders []models.FoodOrder
	if err := fc.DB.Preload("Items").
		Where("student_id = ? AND soft_delete_deleted_by_student = ?", studentID, false).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Your orders", orders)
}

// GetVendorOrders -> orders containing at least one of the vendor's items.
func (fc *FoodOrderController) GetVendorOrders(c *gin.Context) {
	vendorID := actorID(c)

	itemIDs := fc.vendorItemIDs(vendorID)
	if len(itemIDs) == 0 {
		utils.RespondJSON(c, http.StatusOK, "Orders for your items", []models.FoodOrder{})
		return
	}

	var orders []models.FoodOrder
	if err := fc.DB.Preload("Items").
		Where("id IN (?)", fc.DB.Model(&models.FoodOrderItem{}).
			Select("order_id").
			Where("food_item_id IN ?", itemIDs)).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders for your items", orders)
}

// GetAllOrders -> admin listing, excluding admin-soft-deleted orders.
func (fc *FoodOrderController) GetAllOrders(c *gin.Context) {
	var orders []models.FoodOrder
	if err := fc.DB.Preload("Items").
		Where("soft_delete_deleted_by_admin = ?", false).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All orders", orders)
}

// GetOrderByID -> detail of a single order.
func (fc *FoodOrderController) GetOrderByID(c *gin.Context) {
	order, ok := fc.loadOrder(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

type updateStatusReq struct {
	OrderStatus   *string `json:"order_status"`
	PaymentStatus *string `json:"payment_status"`
}

// UpdateOrderStatus -> direct admin/vendor override. Any recognised status
// may be set; no transition table is applied on this path.
func (fc *FoodOrderController) UpdateOrderStatus(c *gin.Context) {
	order, ok := fc.loadOrder(c)
	if !ok {
		return
	}

	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.OrderStatus != nil {
		status := models.OrderStatus(*req.OrderStatus)
		if !statemachine.IsKnown(status) {
			utils.RespondError(c, http.StatusBadRequest, ErrUnknownStatus)
			return
		}
		order.OrderStatus = status
	}
	if req.PaymentStatus != nil {
		if !validPaymentStatus(*req.PaymentStatus) {
			utils.RespondError(c, http.StatusBadRequest, ErrUnknownStatus)
			return
		}
		order.PaymentStatus = *req.PaymentStatus
	}

	if err := fc.DB.Save(order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	role, _ := c.Get("role")
	utils.InfoLogger.Printf("Order %d status updated by %v -> %s/%s", order.ID, role, order.OrderStatus, order.PaymentStatus)
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

type markShippedReq struct {
	TrackingNumber        string `json:"tracking_number"`
	EstimatedDeliveryTime string `json:"estimated_delivery_time"`
	Notes                 string `json:"notes"`
}

// MarkShipped -> vendor hands the order to delivery. The vendor must own at
// least one line item in the order.
func (fc *FoodOrderController) MarkShipped(c *gin.Context) {
	vendorID := actorID(c)

	order, ok := fc.loadOrder(c)
	if !ok {
		return
	}

	if !fc.vendorOwnsAnyItem(vendorID, order) {
		utils.RespondError(c, http.StatusForbidden, ErrVendorNotOwner)
		return
	}

	// Shipping details are all optional; an empty body is fine.
	var req markShippedReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	now := time.Now()
	order.OrderStatus = models.StatusOutForDelivery
	order.Shipping = models.ShippingInfo{
		ShippedAt:             &now,
		TrackingNumber:        req.TrackingNumber,
		EstimatedDeliveryTime: req.EstimatedDeliveryTime,
		Notes:                 req.Notes,
		ShippedByVendorID:     &vendorID,
	}

	if err := fc.DB.Save(order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	fc.Notifier.NotifyOrderEvent(order, "Order shipped",
		fmt.Sprintf("Order #%d is out for delivery (tracking: %s)", order.ID, req.TrackingNumber))

	utils.RespondJSON(c, http.StatusOK, "Order marked as shipped", order)
}

type cancelReq struct {
	Reason string `json:"reason"`
}

// RequestCancellation -> student asks to cancel. Does not itself change the
// order status; an admin resolves the request.
func (fc *FoodOrderController) RequestCancellation(c *gin.Context) {
	studentID := actorID(c)

	id, err := orderParam(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.FoodOrder
	if err := fc.DB.Preload("Items").
		Where("id = ? AND student_id = ?", id, studentID).
		First(&order).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, ErrOrderNotFound)
		return
	}

	if err := statemachine.CanCancel(order.OrderStatus); err != nil {
		utils.RespondError(c, http.StatusConflict, ErrAlreadyResolved)
		return
	}

	var req cancelReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	now := time.Now()
	subStatus := models.CancelRequested
	order.Cancellation = models.Cancellation{
		Requested:   true,
		SubStatus:   &subStatus,
		RequestedAt: &now,
	}
	if req.Reason != "" {
		order.Cancellation.Reason = &req.Reason
	}

	if err := fc.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Cancellation requested for order %d by student %d", order.ID, studentID)
	utils.RespondJSON(c, http.StatusOK, "Cancellation requested", order)
}

type resolveCancelReq struct {
	Action string `json:"action" binding:"required"`
}

// ResolveCancellation -> admin approves or rejects. Approval cancels the
// order; an approved online payment moves to refund-pending (the refund
// itself is an external process).
func (fc *FoodOrderController) ResolveCancellation(c *gin.Context) {
	order, ok := fc.loadOrder(c)
	if !ok {
		return
	}

	var req resolveCancelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		utils.RespondError(c, http.StatusBadRequest, ErrUnknownAction)
		return
	}

	if !order.Cancellation.Requested {
		// Admin force-resolution without a pending request. Allowed, but
		// called out so the audit trail can tell the two apart.
		utils.ErrorLogger.Printf("Force-resolving cancellation on order %d with no pending request", order.ID)
	}

	now := time.Now()
	outcome := "approved"
	switch req.Action {
	case "approve":
		subStatus := models.CancelApproved
		order.OrderStatus = models.StatusCancelled
		order.Cancellation.SubStatus = &subStatus
		if order.PaymentMethod == models.MethodOnline {
			order.PaymentStatus = models.PaymentRefundPending
		}
	case "reject":
		outcome = "rejected"
		subStatus := models.CancelRejected
		order.Cancellation.SubStatus = &subStatus
	}
	order.Cancellation.Requested = false
	order.Cancellation.ResolvedAt = &now

	if err := fc.DB.Save(order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	fc.Notifier.NotifyOrderEvent(order, "Cancellation "+outcome,
		fmt.Sprintf("Cancellation request for order #%d was %s", order.ID, outcome))

	utils.RespondJSON(c, http.StatusOK, "Cancellation "+outcome, order)
}

// SoftDeleteByStudent -> hide the order from the student's own listings.
// The record stays in the store and remains visible to admins.
func (fc *FoodOrderController) SoftDeleteByStudent(c *gin.Context) {
	studentID := actorID(c)

	id, err := orderParam(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result := fc.DB.Model(&models.FoodOrder{}).
		Where("id = ? AND student_id = ?", id, studentID).
		Updates(map[string]interface{}{
			"soft_delete_deleted_by_student":    true,
			"soft_delete_deleted_by_student_at": time.Now(),
		})
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, ErrOrderNotFound)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order removed from your history", gin.H{"order_id": id})
}

// HardDeleteByAdmin -> permanently remove the record. Irreversible; no
// status precondition is enforced.
func (fc *FoodOrderController) HardDeleteByAdmin(c *gin.Context) {
	id, err := orderParam(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.FoodOrder
	if err := fc.DB.First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, ErrOrderNotFound)
		return
	}

	tx := fc.DB.Begin()
	if err := tx.Where("order_id = ?", order.ID).Delete(&models.FoodOrderItem{}).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := tx.Delete(&order).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Order %d permanently deleted by admin", order.ID)
	utils.RespondJSON(c, http.StatusOK, "Order deleted", gin.H{"order_id": order.ID})
}

// SimulateProgression -> advance the order exactly one step along the
// forward delivery sequence. Demo helper for environments without real
// vendor/delivery actors.
func (fc *FoodOrderController) SimulateProgression(c *gin.Context) {
	order, ok := fc.loadOrder(c)
	if !ok {
		return
	}

	next, err := statemachine.NextStatus(order.OrderStatus)
	if err != nil {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}

	order.OrderStatus = next
	if err := fc.DB.Save(order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order progressed to "+string(next), order)
}

// ----- helpers -----

func (fc *FoodOrderController) loadOrder(c *gin.Context) (*models.FoodOrder, bool) {
	id, err := orderParam(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return nil, false
	}

	var order models.FoodOrder
	if err := fc.DB.Preload("Items").First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, ErrOrderNotFound)
		return nil, false
	}
	return &order, true
}

func (fc *FoodOrderController) vendorItemIDs(vendorID uint) []uint {
	var ids []uint
	fc.DB.Model(&models.FoodItem{}).Where("vendor_id = ?", vendorID).Pluck("id", &ids)
	return ids
}

func (fc *FoodOrderController) vendorOwnsAnyItem(vendorID uint, order *models.FoodOrder) bool {
	itemIDs := fc.vendorItemIDs(vendorID)
	owned := make(map[uint]bool, len(itemIDs))
	for _, id := range itemIDs {
		owned[id] = true
	}
	for _, item := range order.Items {
		if owned[item.FoodItemID] {
			return true
		}
	}
	return false
}

func orderParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidOrderID
	}
	return uint(id), nil
}

func actorID(c *gin.Context) uint {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func validPaymentStatus(s string) bool {
	switch s {
	case models.PaymentPending, models.PaymentPaid, models.PaymentFailed,
		models.PaymentRefundPending, models.PaymentRefunded:
		return true
	}
	return false
}
