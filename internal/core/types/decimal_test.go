package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"10.004", "10"},
		{"10.005", "10.01"},
		{"10.995", "11"},
		{"-10.005", "-10.01"},
		{"135.00", "135"},
	}

	for _, tc := range cases {
		got := RoundMoney(MustMoney(tc.in))
		assert.Equal(t, tc.want, got.String(), "round %s", tc.in)
	}
}

func TestApplyPercentDiscount(t *testing.T) {
	// 150 minus 10% = 135.00
	got := ApplyPercentDiscount(MustMoney("150"), 10)
	assert.True(t, got.Equal(MustMoney("135")), "got %s", got)

	// Half-cent results round half up.
	got = ApplyPercentDiscount(MustMoney("0.05"), 10)
	assert.True(t, got.Equal(MustMoney("0.05")), "got %s", got)
}

func TestQuantityRoundTrip(t *testing.T) {
	q := NewQuantityFromFloat64(2.5)
	assert.Equal(t, "2.5000", q.String())
	assert.Equal(t, int64(25000), q.Int64Scaled())
	assert.Equal(t, 2.5, q.Float64())

	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Equal(t, "2.5000", string(data))

	var back Quantity
	require.NoError(t, json.Unmarshal([]byte(`"3.25"`), &back))
	assert.Equal(t, NewQuantityFromFloat64(3.25), back)

	require.NoError(t, json.Unmarshal([]byte(`4`), &back))
	assert.Equal(t, NewQuantityFromInt(4), back)
}

func TestQuantityDecimal(t *testing.T) {
	q := NewQuantityFromInt(4)
	price := MustMoney("150")
	total := price.Mul(q.Decimal())
	assert.True(t, total.Equal(MustMoney("600")), "got %s", total)
}

func TestQuantityMin(t *testing.T) {
	a := NewQuantityFromInt(3)
	b := NewQuantityFromInt(5)
	assert.Equal(t, a, a.Min(b))
	assert.Equal(t, a, b.Min(a))
}
