package state

import (
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/MeteoraAg/cp-amm-go/constants"
	"github.com/MeteoraAg/cp-amm-go/helpers"
	"github.com/MeteoraAg/cp-amm-go/maths"
	"github.com/MeteoraAg/cp-amm-go/types"
)

// UserRewardInfo is a position's view of one pool reward slot.
type UserRewardInfo struct {
	// RewardPerTokenCheckpoint is the pool accumulator at last sync.
	RewardPerTokenCheckpoint [32]uint8
	RewardPendings           uint64
	TotalClaimedRewards      uint64
}

func (u *UserRewardInfo) RewardPerTokenCheckpointBig() *big.Int {
	return helpers.U256FromLE(u.RewardPerTokenCheckpoint)
}

// Position is one liquidity provider stake in a pool.
type Position struct {
	Pool    solana.PublicKey
	NftMint solana.PublicKey
	// FeeAPerTokenCheckpoint is the pool fee accumulator at last sync.
	FeeAPerTokenCheckpoint   [32]uint8
	FeeBPerTokenCheckpoint   [32]uint8
	FeeAPending              uint64
	FeeBPending              uint64
	UnlockedLiquidity        bin.Uint128
	VestedLiquidity          bin.Uint128
	PermanentLockedLiquidity bin.Uint128
	Metrics                  PositionMetrics
	RewardInfos              [constants.NumRewards]UserRewardInfo
	Padding                  [6]bin.Uint128
}

// NewPosition opens an empty position checkpointed against the pool's
// current fee accumulators.
func NewPosition(pool *Pool, poolAddress, nftMint solana.PublicKey) *Position {
	position := &Position{
		Pool:                   poolAddress,
		NftMint:                nftMint,
		FeeAPerTokenCheckpoint: pool.FeeAPerLiquidity,
		FeeBPerTokenCheckpoint: pool.FeeBPerLiquidity,
	}
	for i := range position.RewardInfos {
		position.RewardInfos[i].RewardPerTokenCheckpoint = pool.RewardInfos[i].RewardPerTokenStored
	}
	return position
}

// GetTotalLiquidity is the stake across all lock states.
func (p *Position) GetTotalLiquidity() *big.Int {
	total := new(big.Int).Add(p.UnlockedLiquidity.BigInt(), p.VestedLiquidity.BigInt())
	return total.Add(total, p.PermanentLockedLiquidity.BigInt())
}

// UpdateFee credits fees earned since the last checkpoint and re-syncs the
// checkpoints to the pool's current accumulators. Must run before any
// liquidity change.
func (p *Position) UpdateFee(feeAPerLiquidity, feeBPerLiquidity *big.Int) error {
	liquidity := p.GetTotalLiquidity()
	if liquidity.Sign() > 0 {
		deltaA, err := maths.CheckedSub(feeAPerLiquidity, p.FeeAPerTokenCheckpointBig())
		if err != nil {
			return err
		}
		newFeeA, err := maths.SafeMulShrCastU64(liquidity, deltaA, constants.LiquidityScale, types.RoundingDown)
		if err != nil {
			return err
		}
		if p.FeeAPending, err = maths.SafeAddU64(p.FeeAPending, newFeeA); err != nil {
			return err
		}

		deltaB, err := maths.CheckedSub(feeBPerLiquidity, p.FeeBPerTokenCheckpointBig())
		if err != nil {
			return err
		}
		newFeeB, err := maths.SafeMulShrCastU64(liquidity, deltaB, constants.LiquidityScale, types.RoundingDown)
		if err != nil {
			return err
		}
		if p.FeeBPending, err = maths.SafeAddU64(p.FeeBPending, newFeeB); err != nil {
			return err
		}
	}

	checkpointA, err := helpers.U256ToLE(feeAPerLiquidity)
	if err != nil {
		return err
	}
	checkpointB, err := helpers.U256ToLE(feeBPerLiquidity)
	if err != nil {
		return err
	}
	p.FeeAPerTokenCheckpoint = checkpointA
	p.FeeBPerTokenCheckpoint = checkpointB
	return nil
}

func (p *Position) FeeAPerTokenCheckpointBig() *big.Int {
	return helpers.U256FromLE(p.FeeAPerTokenCheckpoint)
}

func (p *Position) FeeBPerTokenCheckpointBig() *big.Int {
	return helpers.U256FromLE(p.FeeBPerTokenCheckpoint)
}

func (p *Position) AddLiquidity(liquidityDelta *big.Int) error {
	unlocked, err := addU128Big(p.UnlockedLiquidity, liquidityDelta)
	if err != nil {
		return err
	}
	p.UnlockedLiquidity = unlocked
	return nil
}

func (p *Position) RemoveUnlockedLiquidity(liquidityDelta *big.Int) error {
	unlocked, err := subU128Big(p.UnlockedLiquidity, liquidityDelta)
	if err != nil {
		return err
	}
	p.UnlockedLiquidity = unlocked
	return nil
}

// LockPermanently moves unlocked liquidity into the permanent bucket.
func (p *Position) LockPermanently(liquidityDelta *big.Int) error {
	unlocked, err := subU128Big(p.UnlockedLiquidity, liquidityDelta)
	if err != nil {
		return err
	}
	locked, err := addU128Big(p.PermanentLockedLiquidity, liquidityDelta)
	if err != nil {
		return err
	}
	p.UnlockedLiquidity, p.PermanentLockedLiquidity = unlocked, locked
	return nil
}

// UpdateRewards refreshes the pool's reward accumulators, then credits this
// position's pending rewards and re-syncs its checkpoints.
func (p *Position) UpdateRewards(pool *Pool, currentTime uint64) error {
	if err := pool.UpdateRewards(currentTime); err != nil {
		return err
	}

	totalLiquidity := p.GetTotalLiquidity()
	for i := range p.RewardInfos {
		poolReward := &pool.RewardInfos[i]
		if !poolReward.IsInitialized() {
			continue
		}

		userReward := &p.RewardInfos[i]
		delta, err := maths.CheckedSub(poolReward.RewardPerTokenStoredBig(), userReward.RewardPerTokenCheckpointBig())
		if err != nil {
			return err
		}
		newReward, err := maths.SafeMulShrCastU64(totalLiquidity, delta, constants.TotalRewardScale, types.RoundingDown)
		if err != nil {
			return err
		}
		if userReward.RewardPendings, err = maths.SafeAddU64(userReward.RewardPendings, newReward); err != nil {
			return err
		}
		if userReward.RewardPerTokenCheckpoint, err = helpers.U256ToLE(poolReward.RewardPerTokenStoredBig()); err != nil {
			return err
		}
	}
	return nil
}

// ClaimReward drains the pending reward for one slot.
func (p *Position) ClaimReward(rewardIndex int) (uint64, error) {
	if rewardIndex < 0 || rewardIndex >= constants.NumRewards {
		return 0, types.ErrInvalidRewardIndex
	}

	userReward := &p.RewardInfos[rewardIndex]
	totalReward := userReward.RewardPendings

	claimed, err := maths.SafeAddU64(userReward.TotalClaimedRewards, totalReward)
	if err != nil {
		return 0, err
	}
	userReward.TotalClaimedRewards = claimed
	userReward.RewardPendings = 0
	return totalReward, nil
}

// ClaimFee drains both pending fee balances.
func (p *Position) ClaimFee() (feeA, feeB uint64, err error) {
	feeA, feeB = p.FeeAPending, p.FeeBPending

	claimedA, err := maths.SafeAddU64(p.Metrics.TotalClaimedAFee, feeA)
	if err != nil {
		return 0, 0, err
	}
	claimedB, err := maths.SafeAddU64(p.Metrics.TotalClaimedBFee, feeB)
	if err != nil {
		return 0, 0, err
	}
	p.Metrics.TotalClaimedAFee, p.Metrics.TotalClaimedBFee = claimedA, claimedB
	p.FeeAPending, p.FeeBPending = 0, 0
	return feeA, feeB, nil
}
