package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campushub/campus-services/models"
)

func assemblerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.FoodItem{}))
	return db
}

func TestFillFromSessionMetadataBackfillsEverything(t *testing.T) {
	db := assemblerTestDB(t)
	db.Create(&models.FoodItem{VendorID: 1, Name: "Kottu", Price: 650})

	draft := OrderDraft{}
	ctx := FillContext{
		DB: db,
		Session: &SessionDetails{
			Metadata: map[string]string{
				"cart":             `[{"id":1,"qty":3},{"id":999,"qty":1}]`,
				"delivery_address": "Faculty of Science canteen",
				"total_amount":     "1950.00",
			},
		},
	}

	FillFromSessionMetadata(&draft, ctx)

	assert.Equal(t, "Faculty of Science canteen", draft.Address)
	assert.Equal(t, 1950.0, draft.TotalAmount)
	require.Len(t, draft.Items, 2)

	assert.Equal(t, "Kottu", draft.Items[0].Name)
	assert.Equal(t, 650.0, draft.Items[0].UnitPrice)
	assert.Equal(t, 3, draft.Items[0].Quantity)

	// Missing catalog rows become placeholders, never failures.
	assert.Equal(t, UnknownItemName, draft.Items[1].Name)
	assert.Equal(t, 0.0, draft.Items[1].UnitPrice)
}

func TestFillFromSessionMetadataKeepsCallerData(t *testing.T) {
	db := assemblerTestDB(t)

	draft := OrderDraft{
		Items:       []models.FoodOrderItem{{Name: "Caller Burger", Quantity: 1, UnitPrice: 700}},
		TotalAmount: 700,
		Address:     "Caller address",
	}
	ctx := FillContext{
		DB: db,
		Session: &SessionDetails{
			Metadata: map[string]string{
				"cart":             `[{"id":1,"qty":9}]`,
				"delivery_address": "Session address",
				"total_amount":     "9999",
			},
		},
	}

	FillFromSessionMetadata(&draft, ctx)

	// Caller-supplied fields win over session metadata.
	assert.Equal(t, "Caller address", draft.Address)
	assert.Equal(t, 700.0, draft.TotalAmount)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, "Caller Burger", draft.Items[0].Name)
}

func TestFillFromSessionMetadataNilSession(t *testing.T) {
	draft := OrderDraft{}
	FillFromSessionMetadata(&draft, FillContext{DB: assemblerTestDB(t)})
	assert.Empty(t, draft.Items)
	assert.Empty(t, draft.Address)
}

func TestFillFromSessionMetadataAmountTotalFallback(t *testing.T) {
	draft := OrderDraft{}
	FillFromSessionMetadata(&draft, FillContext{
		DB:      assemblerTestDB(t),
		Session: &SessionDetails{AmountTotal: 840, Metadata: map[string]string{}},
	})
	assert.Equal(t, 840.0, draft.TotalAmount)
}

func TestFillPlaceholderSynthesizesMinimalOrder(t *testing.T) {
	draft := OrderDraft{TotalAmount: 500}
	FillPlaceholder(&draft, FillContext{})

	require.Len(t, draft.Items, 1)
	assert.Equal(t, PlaceholderItemName, draft.Items[0].Name)
	assert.Equal(t, 1, draft.Items[0].Quantity)
	assert.Equal(t, 500.0, draft.Items[0].UnitPrice)
	assert.Equal(t, PlaceholderAddress, draft.Address)
}

func TestCompleteDraftStopsWhenComplete(t *testing.T) {
	draft := OrderDraft{
		Items:       []models.FoodOrderItem{{Name: "Done", Quantity: 1, UnitPrice: 100}},
		TotalAmount: 100,
		Address:     "somewhere",
	}

	called := false
	CompleteDraft(&draft, FillContext{}, []FillStrategy{
		func(d *OrderDraft, ctx FillContext) { called = true },
	})
	assert.False(t, called)
}

func TestCompleteDraftRunsFullChain(t *testing.T) {
	draft := OrderDraft{}
	CompleteDraft(&draft, FillContext{DB: assemblerTestDB(t)}, DefaultFillChain())

	// No session, no caller data: the placeholder strategy still yields a
	// usable order.
	require.Len(t, draft.Items, 1)
	assert.Equal(t, PlaceholderItemName, draft.Items[0].Name)
	assert.Equal(t, PlaceholderAddress, draft.Address)
}
