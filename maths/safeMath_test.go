package maths_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeteoraAg/cp-amm-go/maths"
	"github.com/MeteoraAg/cp-amm-go/types"
)

func u64Max() *big.Int { return new(big.Int).SetUint64(^uint64(0)) }

func TestCheckedAdd(t *testing.T) {
	sum, err := maths.CheckedAdd(big.NewInt(1), big.NewInt(2), maths.Width64)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sum.Int64())

	_, err = maths.CheckedAdd(u64Max(), big.NewInt(1), maths.Width64)
	assert.ErrorIs(t, err, types.ErrMathOverflow)

	// the same value fits at the next width up
	sum, err = maths.CheckedAdd(u64Max(), big.NewInt(1), maths.Width128)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(1), 64), sum)
}

func TestCheckedSubUnderflow(t *testing.T) {
	_, err := maths.CheckedSub(big.NewInt(1), big.NewInt(2))
	assert.ErrorIs(t, err, types.ErrMathOverflow)
}

func TestCheckedMulWidths(t *testing.T) {
	prod, err := maths.CheckedMul(u64Max(), u64Max(), maths.Width128)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(u64Max(), u64Max()), prod)

	_, err = maths.CheckedMul(u64Max(), u64Max(), maths.Width64)
	assert.ErrorIs(t, err, types.ErrMathOverflow)
}

func TestCheckedDivByZero(t *testing.T) {
	_, err := maths.CheckedDiv(big.NewInt(1), big.NewInt(0))
	assert.ErrorIs(t, err, types.ErrMathOverflow)
}

func TestSafeU64Arithmetic(t *testing.T) {
	sum, err := maths.SafeAddU64(^uint64(0)-1, 1)
	require.NoError(t, err)
	assert.Equal(t, ^uint64(0), sum)

	_, err = maths.SafeAddU64(^uint64(0), 1)
	assert.ErrorIs(t, err, types.ErrMathOverflow)

	_, err = maths.SafeSubU64(0, 1)
	assert.ErrorIs(t, err, types.ErrMathOverflow)

	_, err = maths.SafeMulU64(1<<33, 1<<33)
	assert.ErrorIs(t, err, types.ErrMathOverflow)
}

func TestCastU64(t *testing.T) {
	v, err := maths.CastU64(u64Max())
	require.NoError(t, err)
	assert.Equal(t, ^uint64(0), v)

	_, err = maths.CastU64(new(big.Int).Add(u64Max(), big.NewInt(1)))
	assert.ErrorIs(t, err, types.ErrTypeCastFailed)
}

func TestMulDivRounding(t *testing.T) {
	down, err := maths.MulDiv(big.NewInt(10), big.NewInt(10), big.NewInt(3), types.RoundingDown, maths.Width128)
	require.NoError(t, err)
	assert.Equal(t, int64(33), down.Int64())

	up, err := maths.MulDiv(big.NewInt(10), big.NewInt(10), big.NewInt(3), types.RoundingUp, maths.Width128)
	require.NoError(t, err)
	assert.Equal(t, int64(34), up.Int64())

	exact, err := maths.MulDiv(big.NewInt(10), big.NewInt(9), big.NewInt(3), types.RoundingUp, maths.Width128)
	require.NoError(t, err)
	assert.Equal(t, int64(30), exact.Int64())
}

func TestMulDivZeroDenominator(t *testing.T) {
	_, err := maths.MulDiv(big.NewInt(1), big.NewInt(1), big.NewInt(0), types.RoundingDown, maths.Width128)
	assert.ErrorIs(t, err, types.ErrMathOverflow)
}

func TestMulShrRounding(t *testing.T) {
	// 3 * 1 >> 1 = 1.5
	down, err := maths.MulShr(big.NewInt(3), big.NewInt(1), 1, types.RoundingDown, maths.Width128)
	require.NoError(t, err)
	assert.Equal(t, int64(1), down.Int64())

	up, err := maths.MulShr(big.NewInt(3), big.NewInt(1), 1, types.RoundingUp, maths.Width128)
	require.NoError(t, err)
	assert.Equal(t, int64(2), up.Int64())
}

func TestShlDiv(t *testing.T) {
	// (3 << 64) / 2
	v, err := maths.ShlDiv(big.NewInt(3), big.NewInt(2), 64, types.RoundingDown, maths.Width128)
	require.NoError(t, err)
	want := new(big.Int).Rsh(new(big.Int).Lsh(big.NewInt(3), 64), 1)
	assert.Equal(t, want, v)

	_, err = maths.ShlDiv(big.NewInt(3), big.NewInt(0), 64, types.RoundingDown, maths.Width128)
	assert.ErrorIs(t, err, types.ErrMathOverflow)
}

func TestPow(t *testing.T) {
	one := new(big.Int).Lsh(big.NewInt(1), 64)

	// x^0 == 1
	assert.Equal(t, one, maths.Pow(new(big.Int).Rsh(one, 1), big.NewInt(0)))

	// (0.5)^2 == 0.25
	half := new(big.Int).Rsh(one, 1)
	quarter := new(big.Int).Rsh(one, 2)
	assert.Equal(t, quarter, maths.Pow(half, big.NewInt(2)))

	// 1^n == 1
	assert.Equal(t, one, maths.Pow(one, big.NewInt(100)))
}
