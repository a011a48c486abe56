package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillage/internal/core/apperror"
	"tillage/internal/core/types"
)

func validProduct() *Product {
	p := New("P-001", "Whole Milk 1L")
	p.CostPrice = types.MustMoney("60")
	p.SellingPrice = types.MustMoney("85")
	p.LowStockLevel = types.NewQuantityFromInt(10)
	return p
}

func TestProductValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validProduct().Validate(ctx))
	})

	t.Run("selling below cost", func(t *testing.T) {
		p := validProduct()
		p.SellingPrice = types.MustMoney("50")
		err := p.Validate(ctx)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("negative cost", func(t *testing.T) {
		p := validProduct()
		p.CostPrice = types.MustMoney("-1")
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("barcode required when flagged", func(t *testing.T) {
		p := validProduct()
		p.HasBarcode = true
		assert.Error(t, p.Validate(ctx))

		barcode := "4810151021245"
		p.Barcode = &barcode
		assert.NoError(t, p.Validate(ctx))
	})

	t.Run("barcode forbidden when not flagged", func(t *testing.T) {
		p := validProduct()
		barcode := "4810151021245"
		p.Barcode = &barcode
		assert.Error(t, p.Validate(ctx))
	})
}

func TestValidBarcode(t *testing.T) {
	assert.True(t, ValidBarcode("12345678"))      // EAN-8
	assert.True(t, ValidBarcode("4810151021245")) // EAN-13
	assert.False(t, ValidBarcode("1234567"))      // too short
	assert.False(t, ValidBarcode("12345678901234"))
	assert.False(t, ValidBarcode("48101510212A5"))
	assert.False(t, ValidBarcode(""))
}

func TestProductMargin(t *testing.T) {
	p := validProduct()
	assert.True(t, p.Margin().Equal(types.MustMoney("25")))
}
