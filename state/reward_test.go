package state_test

import (
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeteoraAg/cp-amm-go/constants"
	"github.com/MeteoraAg/cp-amm-go/internal/testutil"
	"github.com/MeteoraAg/cp-amm-go/state"
)

func fundReward(t *testing.T, pool *state.Pool, index int, amount, duration, now uint64) {
	t.Helper()
	rewardInfo := &pool.RewardInfos[index]
	rewardInfo.InitReward(
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
		duration,
		0,
	)
	require.NoError(t, pool.UpdateRewards(now))
	require.NoError(t, rewardInfo.UpdateRateAfterFunding(now, amount))
}

func TestRewardEmptyLiquidityCarry(t *testing.T) {
	pool := testutil.NewPool(testutil.PoolParams{Liquidity: big.NewInt(0)})
	fundReward(t, pool, 0, 1_000_000, 100, 1_000)

	// the whole window elapses with nobody staked
	require.NoError(t, pool.UpdateRewards(1_100))

	rewardInfo := &pool.RewardInfos[0]
	assert.Equal(t, uint64(100), rewardInfo.CumulativeSecondsWithEmptyLiquidityReward)
	assert.Zero(t, rewardInfo.RewardPerTokenStoredBig().Sign())

	// banked seconds convert back into the full funded amount
	amount, err := pool.ClaimIneligibleReward(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), amount)
	assert.Zero(t, rewardInfo.CumulativeSecondsWithEmptyLiquidityReward)
}

func TestRewardAccrualWithLiquidity(t *testing.T) {
	liquidity := testutil.Q64(1_000)
	pool := testutil.NewPool(testutil.PoolParams{Liquidity: liquidity})
	fundReward(t, pool, 0, 1_000_000, 100, 1_000)

	require.NoError(t, pool.UpdateRewards(1_050))

	rewardInfo := &pool.RewardInfos[0]
	assert.Zero(t, rewardInfo.CumulativeSecondsWithEmptyLiquidityReward)
	assert.Positive(t, rewardInfo.RewardPerTokenStoredBig().Sign())
	assert.Equal(t, uint64(1_050), rewardInfo.LastUpdateTime)

	// accrued per-token times liquidity recovers about half the funding
	accrued := new(big.Int).Mul(rewardInfo.RewardPerTokenStoredBig(), liquidity)
	accrued.Rsh(accrued, constants.TotalRewardScale)
	assert.InDelta(t, 500_000, float64(accrued.Uint64()), 2)
}

func TestRewardAccrualClampsToWindowEnd(t *testing.T) {
	pool := testutil.NewPool(testutil.PoolParams{Liquidity: testutil.Q64(1_000)})
	fundReward(t, pool, 0, 1_000_000, 100, 1_000)

	// far past the window end only 100 seconds count
	require.NoError(t, pool.UpdateRewards(5_000))
	rewardInfo := &pool.RewardInfos[0]
	assert.Equal(t, uint64(1_100), rewardInfo.LastUpdateTime)

	accrued := new(big.Int).Mul(rewardInfo.RewardPerTokenStoredBig(), testutil.Q64(1_000))
	accrued.Rsh(accrued, constants.TotalRewardScale)
	assert.LessOrEqual(t, accrued.Uint64(), uint64(1_000_000))
	assert.InDelta(t, 1_000_000, float64(accrued.Uint64()), 2)
}

func TestRewardUpdateIsIdempotentAtSameTime(t *testing.T) {
	pool := testutil.NewPool(testutil.PoolParams{Liquidity: testutil.Q64(1_000)})
	fundReward(t, pool, 0, 1_000_000, 100, 1_000)

	require.NoError(t, pool.UpdateRewards(1_050))
	snapshot := pool.RewardInfos[0].RewardPerTokenStoredBig()

	require.NoError(t, pool.UpdateRewards(1_050))
	assert.Equal(t, snapshot, pool.RewardInfos[0].RewardPerTokenStoredBig())
}

func TestRefundingFoldsLeftover(t *testing.T) {
	pool := testutil.NewPool(testutil.PoolParams{Liquidity: testutil.Q64(1_000)})
	fundReward(t, pool, 0, 1_000_000, 100, 1_000)

	// halfway through, fund again: the unemitted half folds into the new rate
	require.NoError(t, pool.UpdateRewards(1_050))
	rewardInfo := &pool.RewardInfos[0]
	require.NoError(t, rewardInfo.UpdateRateAfterFunding(1_050, 1_000_000))

	assert.Equal(t, uint64(1_050+100), rewardInfo.RewardDurationEnd)

	// new rate carries ~1_500_000 over 100 seconds
	rate := rewardInfo.RewardRate.BigInt()
	perSecond := new(big.Int).Rsh(rate, constants.RewardRateScale)
	assert.InDelta(t, 15_000, float64(perSecond.Uint64()), 1)
}

func TestUninitializedRewardSlotIsInert(t *testing.T) {
	pool := testutil.NewPool(testutil.PoolParams{})
	require.NoError(t, pool.UpdateRewards(10_000))

	assert.Zero(t, pool.RewardInfos[0].LastUpdateTime)
	assert.Zero(t, pool.RewardInfos[1].LastUpdateTime)
}
