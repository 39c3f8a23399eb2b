package services

import (
	"encoding/json"
	"strconv"

	"gorm.io/gorm"

	"github.com/campushub/campus-services/models"
	"github.com/campushub/campus-services/utils"
)

// VerificationResult is the outcome of the best-effort payment-session
// check during online order confirmation.
type VerificationResult int

const (
	// Verified: the session was retrieved and the provider reports it paid.
	Verified VerificationResult = iota
	// Unverified: the session was retrieved but is not settled.
	Unverified
	// Unreachable: the session could not be retrieved at all. Confirmation
	// proceeds anyway; the order just stays payment-pending.
	Unreachable
)

// Placeholder values used when confirmation data cannot be recovered.
// Order creation is never blocked on ambiguous confirmation data.
const (
	PlaceholderItemName = "Stripe Order Item"
	UnknownItemName     = "Unknown Item"
	PlaceholderAddress  = "Address not provided"
)

// OrderDraft is the partially-assembled order state a fill strategy
// completes. A draft is complete when it has items, a total and an address.
type OrderDraft struct {
	Items       []models.FoodOrderItem
	TotalAmount float64
	Address     string
}

func (d *OrderDraft) complete() bool {
	return len(d.Items) > 0 && d.TotalAmount > 0 && d.Address != ""
}

// FillContext is what strategies may draw on: the retrieved session (nil
// when retrieval failed) and the catalog for item-ref resolution.
type FillContext struct {
	Session *SessionDetails
	DB      *gorm.DB
}

// FillStrategy fills whatever fields of the draft it can. Strategies are
// applied in order until the draft is complete.
type FillStrategy func(draft *OrderDraft, ctx FillContext)

// FillFromSessionMetadata backfills missing fields from the session's
// stored metadata, re-resolving each line item's current name and price
// from the catalog. A missing catalog row yields a placeholder entry, not
// a failure.
func FillFromSessionMetadata(draft *OrderDraft, ctx FillContext) {
	if ctx.Session == nil {
		return
	}
	meta := ctx.Session.Metadata

	if draft.Address == "" {
		draft.Address = meta["delivery_address"]
	}

	if draft.TotalAmount <= 0 {
		if raw, ok := meta["total_amount"]; ok {
			if amount, err := strconv.ParseFloat(raw, 64); err == nil {
				draft.TotalAmount = amount
			}
		}
	}
	if draft.TotalAmount <= 0 && ctx.Session.AmountTotal > 0 {
		draft.TotalAmount = ctx.Session.AmountTotal
	}

	if len(draft.Items) == 0 {
		var cart []metadataCartEntry
		if err := json.Unmarshal([]byte(meta["cart"]), &cart); err != nil {
			return
		}
		for _, entry := range cart {
			item := models.FoodOrderItem{
				FoodItemID: entry.ItemID,
				Quantity:   entry.Quantity,
				Name:       UnknownItemName,
			}
			var catalog models.FoodItem
			if err := ctx.DB.First(&catalog, entry.ItemID).Error; err == nil {
				item.Name = catalog.Name
				item.UnitPrice = catalog.Price
			} else {
				utils.ErrorLogger.Printf("Catalog lookup failed for item %d during confirmation: %v", entry.ItemID, err)
			}
			draft.Items = append(draft.Items, item)
		}
	}
}

// FillPlaceholder is the last-resort strategy: it synthesizes a minimal
// single-line order so the caller always receives a created record.
func FillPlaceholder(draft *OrderDraft, ctx FillContext) {
	if len(draft.Items) == 0 {
		draft.Items = []models.FoodOrderItem{{
			Name:      PlaceholderItemName,
			Quantity:  1,
			UnitPrice: draft.TotalAmount,
		}}
	}
	if draft.Address == "" {
		draft.Address = PlaceholderAddress
	}
}

// DefaultFillChain is the ordered reconciliation applied during online
// confirmation: caller payload (already in the draft) -> session metadata
// -> synthesized placeholder.
func DefaultFillChain() []FillStrategy {
	return []FillStrategy{
		FillFromSessionMetadata,
		FillPlaceholder,
	}
}

// CompleteDraft runs the fill chain until the draft is complete or the
// strategies are exhausted. The placeholder strategy guarantees the result
// is usable either way.
func CompleteDraft(draft *OrderDraft, ctx FillContext, chain []FillStrategy) {
	for _, fill := range chain {
		if draft.complete() {
			return
		}
		fill(draft, ctx)
	}
}
