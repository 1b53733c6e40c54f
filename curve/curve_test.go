package curve_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeteoraAg/cp-amm-go/constants"
	"github.com/MeteoraAg/cp-amm-go/curve"
	"github.com/MeteoraAg/cp-amm-go/types"
)

func q64(v uint64) *big.Int {
	return new(big.Int).Lsh(new(big.Int).SetUint64(v), constants.ScaleOffset)
}

func TestGetDeltaAmountB(t *testing.T) {
	// Δb = L * (√Pu - √Pl) >> 128
	liquidity := q64(1000) // 1000 in liquidity units at 2^64 scale
	lower, upper := q64(1), q64(2)

	amount, err := curve.GetDeltaAmountBUnsigned(lower, upper, liquidity, types.RoundingDown)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), amount)

	// inverted bounds are rejected
	_, err = curve.GetDeltaAmountBUnsigned(upper, lower, liquidity, types.RoundingDown)
	assert.ErrorIs(t, err, types.ErrInvalidPriceRange)
}

func TestGetDeltaAmountA(t *testing.T) {
	// Δa = L * (√Pu - √Pl) / (√Pu * √Pl)
	liquidity := q64(1000)
	lower, upper := q64(1), q64(2)

	amount, err := curve.GetDeltaAmountAUnsigned(lower, upper, liquidity, types.RoundingDown)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), amount)

	up, err := curve.GetDeltaAmountAUnsigned(lower, upper, liquidity, types.RoundingUp)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, up, amount)
}

func TestGetNextSqrtPriceFromInputB(t *testing.T) {
	// √P' = √P + (Δy << 128) / L
	liquidity := q64(1000)
	sqrtPrice := q64(1)

	next, err := curve.GetNextSqrtPriceFromInput(sqrtPrice, liquidity, 1000, false)
	require.NoError(t, err)
	assert.Equal(t, q64(2), next)
}

func TestGetNextSqrtPriceFromInputA(t *testing.T) {
	// √P' = ⌈L * √P / (L + Δx * √P)⌉
	liquidity := q64(1000)
	sqrtPrice := q64(1)

	next, err := curve.GetNextSqrtPriceFromInput(sqrtPrice, liquidity, 1000, true)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Rsh(q64(1), 1), next)

	// input A always moves the price down
	assert.Negative(t, next.Cmp(sqrtPrice))
}

func TestGetNextSqrtPriceZeroLiquidity(t *testing.T) {
	_, err := curve.GetNextSqrtPriceFromInput(q64(1), big.NewInt(0), 1, true)
	assert.ErrorIs(t, err, types.ErrInsufficientLiquidity)

	_, err = curve.GetNextSqrtPriceFromOutput(q64(1), big.NewInt(0), 1, true)
	assert.ErrorIs(t, err, types.ErrInsufficientLiquidity)
}

func TestNextSqrtPriceFromOutputB(t *testing.T) {
	// paying out token B moves the price down by exactly ⌈Δy << 128 / L⌉
	liquidity := q64(1000)
	sqrtPrice := q64(2)

	next, err := curve.GetNextSqrtPriceFromOutput(sqrtPrice, liquidity, 1000, true)
	require.NoError(t, err)
	assert.Equal(t, q64(1), next)
}

func TestNextSqrtPriceFromOutputA(t *testing.T) {
	liquidity := q64(1000)
	sqrtPrice := q64(1)

	// paying out token A moves the price up
	next, err := curve.GetNextSqrtPriceFromOutput(sqrtPrice, liquidity, 500, false)
	require.NoError(t, err)
	assert.Positive(t, next.Cmp(sqrtPrice))

	// an output equal to the whole virtual reserve is unpayable
	_, err = curve.GetNextSqrtPriceFromOutput(sqrtPrice, liquidity, 1000, false)
	assert.Error(t, err)
}

func TestSwapRoundTripNeverCreatesValue(t *testing.T) {
	liquidity := q64(1_000_000)
	sqrtPrice := q64(1)
	amountIn := uint64(10_000)

	// A in, B out
	next, err := curve.GetNextSqrtPriceFromInput(sqrtPrice, liquidity, amountIn, true)
	require.NoError(t, err)
	outB, err := curve.GetDeltaAmountBUnsigned(next, sqrtPrice, liquidity, types.RoundingDown)
	require.NoError(t, err)

	// feed the output back: B in, A out
	back, err := curve.GetNextSqrtPriceFromInput(next, liquidity, outB, false)
	require.NoError(t, err)
	outA, err := curve.GetDeltaAmountAUnsigned(next, back, liquidity, types.RoundingDown)
	require.NoError(t, err)

	assert.LessOrEqual(t, outA, amountIn)
}

func TestGetInitializeAmounts(t *testing.T) {
	liquidity := q64(1000)
	minPrice, maxPrice := q64(1), q64(4)

	// price at the lower bound: all token A
	amountA, amountB, err := curve.GetInitializeAmounts(minPrice, maxPrice, minPrice, liquidity)
	require.NoError(t, err)
	assert.Zero(t, amountB)
	assert.NotZero(t, amountA)

	// price at the upper bound: all token B
	amountA, amountB, err = curve.GetInitializeAmounts(minPrice, maxPrice, maxPrice, liquidity)
	require.NoError(t, err)
	assert.Zero(t, amountA)
	assert.NotZero(t, amountB)

	// in between: both sides funded
	amountA, amountB, err = curve.GetInitializeAmounts(minPrice, maxPrice, q64(2), liquidity)
	require.NoError(t, err)
	assert.NotZero(t, amountA)
	assert.NotZero(t, amountB)
}

func TestLiquidityDeltaFromAmounts(t *testing.T) {
	maxPrice := q64(4)
	sqrtPrice := q64(2)
	minPrice := q64(1)

	liquidityFromA, err := curve.GetLiquidityDeltaFromAmountA(big.NewInt(1_000_000), sqrtPrice, maxPrice)
	require.NoError(t, err)
	assert.Positive(t, liquidityFromA.Sign())

	liquidityFromB, err := curve.GetLiquidityDeltaFromAmountB(big.NewInt(1_000_000), minPrice, sqrtPrice)
	require.NoError(t, err)
	assert.Positive(t, liquidityFromB.Sign())

	// the amount the liquidity prices back out never exceeds the deposit
	amountA, err := curve.GetDeltaAmountAUnsigned(sqrtPrice, maxPrice, liquidityFromA, types.RoundingDown)
	require.NoError(t, err)
	assert.LessOrEqual(t, amountA, uint64(1_000_000))

	amountB, err := curve.GetDeltaAmountBUnsigned(minPrice, sqrtPrice, liquidityFromB, types.RoundingDown)
	require.NoError(t, err)
	assert.LessOrEqual(t, amountB, uint64(1_000_000))
}
