package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-lot-api/internal/config"
)

func defaultTariff() Tariff {
	return NewTariff(config.Tariff{
		First15:  decimal.RequireFromString("5.00"),
		First60:  decimal.RequireFromString("9.25"),
		Extra15:  decimal.RequireFromString("1.75"),
		Discount: decimal.RequireFromString("0.30"),
	})
}

func TestComputeCostTiers(t *testing.T) {
	entry := time.Date(2025, 3, 13, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		dur  time.Duration
		want string
	}{
		{"zero minutes", 0, "5.00"},
		{"one minute", time.Minute, "5.00"},
		{"exactly 15", 15 * time.Minute, "5.00"},
		{"15m59s truncates to 15", 15*time.Minute + 59*time.Second, "5.00"},
		{"16 minutes", 16 * time.Minute, "9.25"},
		{"exactly 60", 60 * time.Minute, "9.25"},
		{"61 minutes starts one block", 61 * time.Minute, "11.00"},
		{"exactly 75 is one full block", 75 * time.Minute, "11.00"},
		{"76 minutes starts a second block", 76 * time.Minute, "12.75"},
		{"90 minutes two exact blocks", 90 * time.Minute, "12.75"},
		{"two hours", 2 * time.Hour, "16.25"},
		{"135 minutes past 60 is five blocks", 135 * time.Minute, "18.00"},
	}
	tariff := defaultTariff()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tariff.ComputeCost(entry, entry.Add(tc.dur))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.StringFixed(2))
		})
	}
}

func TestComputeCostInvalidInterval(t *testing.T) {
	tariff := defaultTariff()
	entry := time.Date(2025, 3, 13, 10, 0, 0, 0, time.UTC)
	_, err := tariff.ComputeCost(entry, entry.Add(-time.Second))
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestComputeCostHalfEvenRounding(t *testing.T) {
	// A tariff with sub-cent increments exercises banker's rounding:
	// 9.25 + 3 x 0.125 = 9.625, which rounds to the even 9.62.
	tariff := NewTariff(config.Tariff{
		First15:  decimal.RequireFromString("5.00"),
		First60:  decimal.RequireFromString("9.25"),
		Extra15:  decimal.RequireFromString("0.125"),
		Discount: decimal.RequireFromString("0.30"),
	})
	entry := time.Date(2025, 3, 13, 10, 0, 0, 0, time.UTC)
	got, err := tariff.ComputeCost(entry, entry.Add(105*time.Minute)) // 3 blocks
	require.NoError(t, err)
	assert.Equal(t, "9.62", got.StringFixed(2))
}

func TestComputeDiscount(t *testing.T) {
	tariff := defaultTariff()
	cost := decimal.RequireFromString("11.00")

	for _, visits := range []int64{0, 1, 5, 9, 11, 15, 21, 99} {
		got := tariff.ComputeDiscount(cost, visits)
		assert.True(t, got.IsZero(), "visits=%d should earn no discount, got %s", visits, got)
	}
	for _, visits := range []int64{10, 20, 30, 100} {
		got := tariff.ComputeDiscount(cost, visits)
		assert.Equal(t, "3.30", got.StringFixed(2), "visits=%d", visits)
	}
}

func TestComputeDiscountHalfEvenRounding(t *testing.T) {
	tariff := defaultTariff()
	// 9.25 * 0.30 = 2.775 -> banker's rounding to the even 2.78.
	got := tariff.ComputeDiscount(decimal.RequireFromString("9.25"), 10)
	assert.Equal(t, "2.78", got.StringFixed(2))

	// 10.75 * 0.30 = 3.225 -> rounds down to the even 3.22.
	got = tariff.ComputeDiscount(decimal.RequireFromString("10.75"), 20)
	assert.Equal(t, "3.22", got.StringFixed(2))
}

func TestDiscountNeverExceedsCost(t *testing.T) {
	tariff := defaultTariff()
	entry := time.Date(2025, 3, 13, 8, 0, 0, 0, time.UTC)
	for _, dur := range []time.Duration{5 * time.Minute, time.Hour, 3 * time.Hour} {
		cost, err := tariff.ComputeCost(entry, entry.Add(dur))
		require.NoError(t, err)
		discount := tariff.ComputeDiscount(cost, 10)
		assert.True(t, discount.LessThanOrEqual(cost))
		assert.True(t, discount.GreaterThanOrEqual(decimal.Zero))
	}
}
