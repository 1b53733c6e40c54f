package state_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeteoraAg/cp-amm-go/constants"
	"github.com/MeteoraAg/cp-amm-go/fees"
	"github.com/MeteoraAg/cp-amm-go/helpers"
	"github.com/MeteoraAg/cp-amm-go/internal/testutil"
	"github.com/MeteoraAg/cp-amm-go/state"
	"github.com/MeteoraAg/cp-amm-go/types"
)

func midRangePool(poolFees fees.PoolFeesStruct) *state.Pool {
	return testutil.NewPool(testutil.PoolParams{
		Fees:      poolFees,
		SqrtPrice: new(big.Int).Rsh(constants.MaxSqrtPrice, 1),
		Liquidity: testutil.MustBig("100000000000000000000"), // 10^20
	})
}

func TestSwapExactInAToB(t *testing.T) {
	pool := midRangePool(fees.PoolFeesStruct{})
	sqrtPriceBefore := pool.SqrtPrice.BigInt()

	feeMode, err := fees.GetFeeMode(types.CollectFeeModeBothToken, types.TradeDirectionAtoB, false)
	require.NoError(t, err)

	result, err := pool.GetSwapResult(100_000_000, feeMode, types.TradeDirectionAtoB, 0, false)
	require.NoError(t, err)

	assert.Positive(t, result.OutputAmount)
	assert.Negative(t, result.NextSqrtPrice.Cmp(sqrtPriceBefore))

	// swapping the output back returns no more than the original input
	require.NoError(t, pool.ApplySwapResult(&result, feeMode, 0))

	reverseMode, err := fees.GetFeeMode(types.CollectFeeModeBothToken, types.TradeDirectionBtoA, false)
	require.NoError(t, err)
	reverse, err := pool.GetSwapResult(result.OutputAmount, reverseMode, types.TradeDirectionBtoA, 0, false)
	require.NoError(t, err)
	assert.LessOrEqual(t, reverse.OutputAmount, uint64(100_000_000))
}

func TestSwapComputationIsPure(t *testing.T) {
	pool := midRangePool(testutil.FlatFees(10_000_000, 20, 0, 0))
	feeMode, err := fees.GetFeeMode(types.CollectFeeModeBothToken, types.TradeDirectionAtoB, false)
	require.NoError(t, err)

	first, err := pool.GetSwapResult(5_000_000, feeMode, types.TradeDirectionAtoB, 0, false)
	require.NoError(t, err)
	second, err := pool.GetSwapResult(5_000_000, feeMode, types.TradeDirectionAtoB, 0, false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSwapFeeSplitLandsOnPool(t *testing.T) {
	pool := midRangePool(testutil.FlatFees(10_000_000, 20, 0, 0)) // 1% fee, 20% protocol
	feeMode, err := fees.GetFeeMode(types.CollectFeeModeBothToken, types.TradeDirectionAtoB, false)
	require.NoError(t, err)

	result, err := pool.GetSwapResult(1_000_000, feeMode, types.TradeDirectionAtoB, 0, false)
	require.NoError(t, err)
	require.Positive(t, result.LpFee)
	require.Positive(t, result.ProtocolFee)

	require.NoError(t, pool.ApplySwapResult(&result, feeMode, 0))

	// fee charged on output (token B) for A-to-B in both-token mode
	assert.Equal(t, result.ProtocolFee, pool.ProtocolBFee)
	assert.Zero(t, pool.ProtocolAFee)
	assert.Positive(t, pool.FeeBPerLiquidityBig().Sign())
	assert.Zero(t, pool.FeeAPerLiquidityBig().Sign())
	assert.Equal(t, result.NextSqrtPrice, pool.SqrtPrice.BigInt())
}

func TestSwapExactOut(t *testing.T) {
	pool := midRangePool(testutil.FlatFees(10_000_000, 20, 0, 0))
	feeMode, err := fees.GetFeeMode(types.CollectFeeModeBothToken, types.TradeDirectionAtoB, false)
	require.NoError(t, err)

	wantOut := uint64(1_000_000)
	result, err := pool.GetSwapResult(wantOut, feeMode, types.TradeDirectionAtoB, 0, true)
	require.NoError(t, err)

	assert.Equal(t, wantOut, result.OutputAmount)
	// the required input must cover the same output when swapped exact-in
	fresh := midRangePool(testutil.FlatFees(10_000_000, 20, 0, 0))
	forward, err := fresh.GetSwapResult(result.InputAmount, feeMode, types.TradeDirectionAtoB, 0, false)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, forward.OutputAmount, wantOut)
}

func TestSwapPriceRangeViolation(t *testing.T) {
	// a tiny pool cannot absorb a huge trade without leaving its range
	pool := testutil.NewPool(testutil.PoolParams{
		SqrtPrice:    testutil.Q64(1),
		SqrtMinPrice: new(big.Int).Rsh(testutil.Q64(1), 1),
		SqrtMaxPrice: testutil.Q64(2),
		Liquidity:    testutil.Q64(1_000),
	})

	feeMode, err := fees.GetFeeMode(types.CollectFeeModeBothToken, types.TradeDirectionAtoB, false)
	require.NoError(t, err)

	_, err = pool.GetSwapResult(1_000_000_000, feeMode, types.TradeDirectionAtoB, 0, false)
	assert.ErrorIs(t, err, types.ErrPriceRangeViolation)
}

func TestGetMaxAmountIn(t *testing.T) {
	pool := testutil.NewPool(testutil.PoolParams{
		SqrtPrice:    testutil.Q64(1),
		SqrtMinPrice: new(big.Int).Rsh(testutil.Q64(1), 1),
		SqrtMaxPrice: testutil.Q64(2),
		Liquidity:    testutil.Q64(1_000_000),
	})

	maxIn, err := pool.GetMaxAmountIn(types.TradeDirectionAtoB)
	require.NoError(t, err)
	assert.Positive(t, maxIn)

	feeMode, err := fees.GetFeeMode(types.CollectFeeModeBothToken, types.TradeDirectionAtoB, false)
	require.NoError(t, err)

	// the bound itself is swappable
	_, err = pool.GetSwapResult(maxIn, feeMode, types.TradeDirectionAtoB, 0, false)
	assert.NoError(t, err)
}

func TestAddRemoveLiquidityRoundTrip(t *testing.T) {
	pool := testutil.NewPool(testutil.PoolParams{
		SqrtPrice:    testutil.Q64(1),
		SqrtMinPrice: new(big.Int).Rsh(testutil.Q64(1), 1),
		SqrtMaxPrice: testutil.Q64(2),
		Liquidity:    testutil.Q64(1_000_000),
	})
	position := state.NewPosition(pool, pool.TokenAMint, pool.TokenBMint)

	delta := testutil.Q64(500)
	deposit, err := pool.GetAmountsForModifyLiquidity(delta, types.RoundingUp)
	require.NoError(t, err)

	liquidityBefore := pool.Liquidity.BigInt()
	require.NoError(t, pool.ApplyAddLiquidity(position, delta))
	assert.Equal(t, new(big.Int).Add(liquidityBefore, delta), pool.Liquidity.BigInt())
	assert.Equal(t, delta, position.UnlockedLiquidity.BigInt())

	withdraw, err := pool.GetAmountsForModifyLiquidity(delta, types.RoundingDown)
	require.NoError(t, err)
	require.NoError(t, pool.ApplyRemoveLiquidity(position, delta))
	assert.Equal(t, liquidityBefore, pool.Liquidity.BigInt())
	assert.Zero(t, position.UnlockedLiquidity.BigInt().Sign())

	// rounding always favors the pool
	assert.GreaterOrEqual(t, deposit.TokenAAmount, withdraw.TokenAAmount)
	assert.GreaterOrEqual(t, deposit.TokenBAmount, withdraw.TokenBAmount)
}

func TestRemoveMoreThanUnlockedFails(t *testing.T) {
	pool := testutil.NewPool(testutil.PoolParams{})
	position := state.NewPosition(pool, pool.TokenAMint, pool.TokenBMint)

	err := pool.ApplyRemoveLiquidity(position, big.NewInt(1))
	assert.ErrorIs(t, err, types.ErrMathOverflow)
}

func TestClaimProtocolFeeZeroes(t *testing.T) {
	pool := testutil.NewPool(testutil.PoolParams{})
	pool.ProtocolAFee, pool.ProtocolBFee = 123, 456

	a, b := pool.ClaimProtocolFee()
	assert.Equal(t, uint64(123), a)
	assert.Equal(t, uint64(456), b)
	assert.Zero(t, pool.ProtocolAFee)
	assert.Zero(t, pool.ProtocolBFee)

	// a second claim yields nothing
	a, b = pool.ClaimProtocolFee()
	assert.Zero(t, a)
	assert.Zero(t, b)
}

func TestClaimPartnerFeeCapped(t *testing.T) {
	pool := testutil.NewPool(testutil.PoolParams{})
	pool.PartnerAFee, pool.PartnerBFee = 100, 200

	a, b, err := pool.ClaimPartnerFee(40, 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), a)
	assert.Equal(t, uint64(200), b)
	assert.Equal(t, uint64(60), pool.PartnerAFee)
	assert.Zero(t, pool.PartnerBFee)
}

func TestPermanentLock(t *testing.T) {
	pool := testutil.NewPool(testutil.PoolParams{})
	position := state.NewPosition(pool, pool.TokenAMint, pool.TokenBMint)
	require.NoError(t, position.AddLiquidity(big.NewInt(1_000)))

	require.NoError(t, position.LockPermanently(big.NewInt(400)))
	require.NoError(t, pool.AccumulatePermanentLockedLiquidity(big.NewInt(400)))

	assert.Equal(t, int64(600), position.UnlockedLiquidity.BigInt().Int64())
	assert.Equal(t, int64(400), position.PermanentLockedLiquidity.BigInt().Int64())
	assert.Equal(t, int64(1_000), position.GetTotalLiquidity().Int64())
	assert.Equal(t, int64(400), pool.PermanentLockLiquidity.BigInt().Int64())
}

func TestDynamicFeeBinCrossingRestampsWindow(t *testing.T) {
	poolFees := fees.PoolFeesStruct{
		BaseFee: fees.BaseFeeStruct{CliffFeeNumerator: 2_500_000},
		DynamicFee: fees.DynamicFeeStruct{
			Initialized:              1,
			MaxVolatilityAccumulator: 10_000_000,
			VariableFeeControl:       10_000,
			BinStep:                  1,
			FilterPeriod:             10,
			DecayPeriod:              120,
			ReductionFactor:          5_000,
			BinStepU128:              helpers.MustBigIntToUint128(constants.BinStepBpsU128Default),
		},
	}
	pool := testutil.NewPool(testutil.PoolParams{
		Fees:      poolFees,
		SqrtPrice: testutil.Q64(1),
		Liquidity: testutil.Q64(1_000),
	})

	require.NoError(t, pool.UpdatePreSwap(100))
	assert.Equal(t, testutil.Q64(1), pool.PoolFees.DynamicFee.SqrtPriceReference.BigInt())

	feeMode, err := fees.GetFeeMode(types.CollectFeeModeBothToken, types.TradeDirectionAtoB, false)
	require.NoError(t, err)

	// a swap big enough to cross bins updates the volatility clock
	result, err := pool.GetSwapResult(500, feeMode, types.TradeDirectionAtoB, 100, false)
	require.NoError(t, err)
	require.NoError(t, pool.ApplySwapResult(&result, feeMode, 100))

	assert.Equal(t, uint64(100), pool.PoolFees.DynamicFee.LastUpdateTimestamp)
	assert.Positive(t, pool.PoolFees.DynamicFee.VolatilityAccumulator.BigInt().Sign())
}
