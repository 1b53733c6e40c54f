package helpers_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeteoraAg/cp-amm-go/helpers"
	"github.com/MeteoraAg/cp-amm-go/types"
)

func TestTransferFeeExcludedAmount(t *testing.T) {
	t.Run("no fee schedule", func(t *testing.T) {
		var tf *helpers.TransferFee
		result, err := helpers.CalculateTransferFeeExcludedAmount(tf, 1_000_000)
		require.NoError(t, err)
		assert.Equal(t, uint64(1_000_000), result.Amount)
		assert.Zero(t, result.TransferFee)
	})

	t.Run("one percent fee", func(t *testing.T) {
		tf := &helpers.TransferFee{BasisPoints: 100, MaximumFee: ^uint64(0)}
		result, err := helpers.CalculateTransferFeeExcludedAmount(tf, 1_000_000)
		require.NoError(t, err)
		assert.Equal(t, uint64(990_000), result.Amount)
		assert.Equal(t, uint64(10_000), result.TransferFee)
	})

	t.Run("fee capped at maximum", func(t *testing.T) {
		tf := &helpers.TransferFee{BasisPoints: 100, MaximumFee: 5_000}
		result, err := helpers.CalculateTransferFeeExcludedAmount(tf, 1_000_000)
		require.NoError(t, err)
		assert.Equal(t, uint64(995_000), result.Amount)
		assert.Equal(t, uint64(5_000), result.TransferFee)
	})

	t.Run("zero amount", func(t *testing.T) {
		tf := &helpers.TransferFee{BasisPoints: 100, MaximumFee: 5_000}
		result, err := helpers.CalculateTransferFeeExcludedAmount(tf, 0)
		require.NoError(t, err)
		assert.Zero(t, result.Amount)
		assert.Zero(t, result.TransferFee)
	})
}

func TestTransferFeeIncludedAmount(t *testing.T) {
	t.Run("round trip covers the net", func(t *testing.T) {
		tf := &helpers.TransferFee{BasisPoints: 250, MaximumFee: ^uint64(0)}
		included, err := helpers.CalculateTransferFeeIncludedAmount(tf, 1_000_000)
		require.NoError(t, err)
		assert.Greater(t, included.Amount, uint64(1_000_000))

		excluded, err := helpers.CalculateTransferFeeExcludedAmount(tf, included.Amount)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, excluded.Amount, uint64(1_000_000))
	})

	t.Run("hundred percent rate charges the maximum", func(t *testing.T) {
		tf := &helpers.TransferFee{BasisPoints: 10_000, MaximumFee: 7_777}
		included, err := helpers.CalculateTransferFeeIncludedAmount(tf, 1_000)
		require.NoError(t, err)
		assert.Equal(t, uint64(7_777), included.TransferFee)
		assert.Equal(t, uint64(8_777), included.Amount)
	})

	t.Run("maximum fee short-circuits the inversion", func(t *testing.T) {
		tf := &helpers.TransferFee{BasisPoints: 5_000, MaximumFee: 100}
		included, err := helpers.CalculateTransferFeeIncludedAmount(tf, 1_000_000)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), included.TransferFee)
		assert.Equal(t, uint64(1_000_100), included.Amount)
	})

	t.Run("zero net amount", func(t *testing.T) {
		tf := &helpers.TransferFee{BasisPoints: 100, MaximumFee: 5_000}
		included, err := helpers.CalculateTransferFeeIncludedAmount(tf, 0)
		require.NoError(t, err)
		assert.Zero(t, included.Amount)
	})
}

func TestBigIntToUint128(t *testing.T) {
	v, err := helpers.BigIntToUint128(new(big.Int).SetUint64(123_456_789))
	require.NoError(t, err)
	assert.Equal(t, uint64(123_456_789), v.BigInt().Uint64())

	big128 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	v, err = helpers.BigIntToUint128(big128)
	require.NoError(t, err)
	assert.Equal(t, big128, v.BigInt())

	_, err = helpers.BigIntToUint128(new(big.Int).Lsh(big.NewInt(1), 128))
	assert.ErrorIs(t, err, types.ErrTypeCastFailed)

	_, err = helpers.BigIntToUint128(big.NewInt(-1))
	assert.ErrorIs(t, err, types.ErrTypeCastFailed)
}

func TestU256RoundTrip(t *testing.T) {
	want := new(big.Int).Lsh(big.NewInt(987_654_321), 130)
	le, err := helpers.U256ToLE(want)
	require.NoError(t, err)
	assert.Equal(t, want, helpers.U256FromLE(le))

	_, err = helpers.U256ToLE(new(big.Int).Lsh(big.NewInt(1), 256))
	assert.ErrorIs(t, err, types.ErrTypeCastFailed)
}

func TestGetMinAmountWithSlippage(t *testing.T) {
	assert.Equal(t, uint64(995_000), helpers.GetMinAmountWithSlippage(1_000_000, 0.5))
	assert.Equal(t, uint64(1_000_000), helpers.GetMinAmountWithSlippage(1_000_000, 0))
}

func TestGetSqrtPriceFromAmounts(t *testing.T) {
	// equal deposits price at exactly 1.0
	price, err := helpers.GetSqrtPriceFromAmounts(1_000_000, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(1), 64), price)

	// four times as much B doubles the sqrt price
	price, err = helpers.GetSqrtPriceFromAmounts(1_000_000, 4_000_000)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(2), 64), price)

	_, err = helpers.GetSqrtPriceFromAmounts(0, 1)
	assert.ErrorIs(t, err, types.ErrAmountIsZero)
}

func TestGetPriceImpact(t *testing.T) {
	current := new(big.Int).Lsh(big.NewInt(1), 64)
	same := new(big.Int).Set(current)
	assert.InDelta(t, 0, helpers.GetPriceImpact(same, current), 1e-9)

	// sqrt price down 1% in price terms is roughly 0.5% in sqrt terms
	next := new(big.Int).Mul(current, big.NewInt(995))
	next.Div(next, big.NewInt(1000))
	assert.InDelta(t, 1.0, helpers.GetPriceImpact(next, current), 0.01)
}
