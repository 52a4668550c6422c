package order

import (
	"testing"
	"time"

	"foodbooking_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippingFee(t *testing.T) {
	tiers := defaultShippingTiers

	assert.Equal(t, 30000.0, shippingFee(1, tiers))
	assert.Equal(t, 30000.0, shippingFee(3, tiers))
	assert.Equal(t, 15000.0, shippingFee(4, tiers))
	assert.Equal(t, 15000.0, shippingFee(6, tiers))
	assert.Equal(t, 0.0, shippingFee(7, tiers))
	assert.Equal(t, 0.0, shippingFee(50, tiers))
}

func TestShippingFeeNeverIncreases(t *testing.T) {
	tiers := defaultShippingTiers
	prev := shippingFee(1, tiers)
	for count := 2; count <= 20; count++ {
		fee := shippingFee(count, tiers)
		assert.LessOrEqual(t, fee, prev, "frais en hausse à %d articles", count)
		prev = fee
	}
}

func TestUnitPrice(t *testing.T) {
	menu := models.Menu{
		Name:     "Phở bò",
		Price:    50000,
		Variants: map[string]float64{"L": 65000, "XL": 80000},
	}

	price, err := unitPrice(menu, "")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, price)

	price, err = unitPrice(menu, "L")
	require.NoError(t, err)
	assert.Equal(t, 65000.0, price)

	_, err = unitPrice(menu, "XXL")
	assert.ErrorIs(t, err, errVariantUnknown)
}

func TestUnitPriceNoBasePrice(t *testing.T) {
	_, err := unitPrice(models.Menu{Name: "Combo"}, "")
	assert.ErrorIs(t, err, errNoPrice)
}

func voucherFixture() models.Voucher {
	return models.Voucher{
		Code:            "SAVE10",
		Name:            "Promo dix pourcent",
		DiscountPercent: 10,
		MinPrice:        100000,
		Start:           time.Now().Add(-24 * time.Hour),
		End:             time.Now().Add(24 * time.Hour),
		Limit:           5,
	}
}

func TestEvaluateVoucher(t *testing.T) {
	v := voucherFixture()

	// 130000 × 10% = 13000, 4 utilisations sur 5
	discount, err := evaluateVoucher(v, 130000, 4, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 13000.0, discount)

	// 5e utilisation consommée : refus
	_, err = evaluateVoucher(v, 130000, 5, time.Now())
	assert.ErrorIs(t, err, errVoucherLimit)
}

func TestEvaluateVoucherWindow(t *testing.T) {
	v := voucherFixture()

	_, err := evaluateVoucher(v, 130000, 0, v.Start.Add(-time.Hour))
	assert.ErrorIs(t, err, errVoucherInvalid)

	_, err = evaluateVoucher(v, 130000, 0, v.End.Add(time.Hour))
	assert.ErrorIs(t, err, errVoucherInvalid)
}

func TestEvaluateVoucherThreshold(t *testing.T) {
	v := voucherFixture()

	_, err := evaluateVoucher(v, 99999, 0, time.Now())
	assert.ErrorIs(t, err, errVoucherThreshold)

	// Exactement le minimum : accepté
	discount, err := evaluateVoucher(v, 100000, 0, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 10000.0, discount)
}

func TestEvaluateVoucherCap(t *testing.T) {
	v := voucherFixture()
	maxDiscount := 5000.0
	v.MaxDiscount = &maxDiscount

	discount, err := evaluateVoucher(v, 200000, 0, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 5000.0, discount)
}

func TestEvaluateVoucherUnlimited(t *testing.T) {
	v := voucherFixture()
	v.Limit = 0

	discount, err := evaluateVoucher(v, 150000, 9999, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 15000.0, discount)
}

// Le total facturé est sous-total − réduction + livraison et la
// réduction ne peut jamais rendre la part articles négative.
func TestOrderTotalComposition(t *testing.T) {
	v := voucherFixture()
	subtotal := 130000.0
	itemCount := 4

	discount, err := evaluateVoucher(v, subtotal, 0, time.Now())
	require.NoError(t, err)

	fee := shippingFee(itemCount, defaultShippingTiers)
	total := subtotal - discount + fee

	assert.Equal(t, 130000.0-13000.0+15000.0, total)
	assert.GreaterOrEqual(t, subtotal-discount, 0.0)
}
