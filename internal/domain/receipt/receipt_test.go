package receipt

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillage/internal/core/types"
)

func sampleData() *Data {
	received := types.MustMoney("500")
	change := types.MustMoney("140")
	return &Data{
		TransactionID: "0198f2a4-demo",
		CashierName:   "Anna",
		Timestamp:     time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
		Lines: []Line{
			{Name: "Whole Milk 1L", Quantity: types.NewQuantityFromInt(2), UnitPrice: types.MustMoney("85"), Total: types.MustMoney("170")},
			{Name: "Rye Bread", Quantity: types.NewQuantityFromInt(1), UnitPrice: types.MustMoney("190"), Total: types.MustMoney("190")},
		},
		Subtotal:       types.MustMoney("360"),
		DiscountAmount: types.Zero(),
		Total:          types.MustMoney("360"),
		PaymentMethod:  "cash",
		AmountReceived: &received,
		Change:         &change,
	}
}

func TestRenderWritesFile(t *testing.T) {
	r := NewTextRenderer(t.TempDir(), "Corner Market")

	path, err := r.Render(context.Background(), sampleData())
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)

	assert.Contains(t, text, "Corner Market")
	assert.Contains(t, text, "Whole Milk 1L")
	assert.Contains(t, text, "2 x 85.00")
	assert.Contains(t, text, "360.00")
	assert.Contains(t, text, "Change:")
	assert.Contains(t, text, "140.00")
	assert.NotContains(t, text, "Discount:", "zero discount is not printed")
}

func TestRenderRefundAndReward(t *testing.T) {
	r := NewTextRenderer(t.TempDir(), "Corner Market")

	data := sampleData()
	data.Lines = append(data.Lines, Line{
		Name:      "Rye Bread",
		Quantity:  types.NewQuantityFromInt(1),
		UnitPrice: types.MustMoney("190"),
		Total:     types.MustMoney("-190"),
		IsRefund:  true,
	})
	data.RewardCode = "AB12CD34"

	path, err := r.Render(context.Background(), data)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)

	assert.Contains(t, text, "REFUND Rye Bread")
	assert.Contains(t, text, "Code: AB12CD34")
}
