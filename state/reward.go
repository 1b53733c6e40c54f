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

// RewardInfo stores the state relevant for tracking one liquidity mining
// reward campaign slot.
type RewardInfo struct {
	// Initialized is a one-way flag; once set it never reverts.
	Initialized     uint8
	RewardTokenFlag uint8
	Padding0        [6]uint8
	// Padding1 keeps RewardRate 16-byte aligned in the account layout.
	Padding1 [8]uint8
	Mint     solana.PublicKey
	Vault    solana.PublicKey
	// Funder is the authority allowed to fund this slot.
	Funder            solana.PublicKey
	RewardDuration    uint64
	RewardDurationEnd uint64
	// RewardRate is reward units per second, Q64-scaled.
	RewardRate bin.Uint128
	// RewardPerTokenStored is the cumulative reward per liquidity unit,
	// 256-bit little-endian, scaled by LiquidityScale.
	RewardPerTokenStored [32]uint8
	LastUpdateTime       uint64
	// CumulativeSecondsWithEmptyLiquidityReward carries seconds during
	// which rewards were emitted with no liquidity to earn them; the time
	// converts into an ineligible-reward amount the funder may reclaim.
	CumulativeSecondsWithEmptyLiquidityReward uint64
}

func (r *RewardInfo) IsInitialized() bool {
	return r.Initialized != 0
}

func (r *RewardInfo) IsValidFunder(funder solana.PublicKey) bool {
	return funder.Equals(r.Funder)
}

func (r *RewardInfo) InitReward(
	mint, vault, funder solana.PublicKey,
	rewardDuration uint64,
	rewardTokenFlag uint8,
) {
	r.Initialized = 1
	r.Mint = mint
	r.Vault = vault
	r.Funder = funder
	r.RewardDuration = rewardDuration
	r.RewardTokenFlag = rewardTokenFlag
}

func (r *RewardInfo) RewardPerTokenStoredBig() *big.Int {
	return helpers.U256FromLE(r.RewardPerTokenStored)
}

// UpdateRewards accrues the slot up to currentTime. Elapsed time with zero
// liquidity is banked instead of lost.
func (r *RewardInfo) UpdateRewards(liquiditySupply *big.Int, currentTime uint64) error {
	if !r.IsInitialized() {
		return nil
	}

	if liquiditySupply.Sign() > 0 {
		delta, err := r.rewardPerTokenStoredSinceLastUpdate(currentTime, liquiditySupply)
		if err != nil {
			return err
		}
		if err := r.accumulateRewardPerTokenStored(delta); err != nil {
			return err
		}
	} else {
		timePeriod, err := r.SecondsElapsedSinceLastUpdate(currentTime)
		if err != nil {
			return err
		}
		banked, err := maths.SafeAddU64(r.CumulativeSecondsWithEmptyLiquidityReward, timePeriod)
		if err != nil {
			return err
		}
		r.CumulativeSecondsWithEmptyLiquidityReward = banked
	}

	r.updateLastUpdateTime(currentTime)
	return nil
}

func (r *RewardInfo) updateLastUpdateTime(currentTime uint64) {
	r.LastUpdateTime = min(currentTime, r.RewardDurationEnd)
}

func (r *RewardInfo) SecondsElapsedSinceLastUpdate(currentTime uint64) (uint64, error) {
	lastTimeRewardApplicable := min(currentTime, r.RewardDurationEnd)
	return maths.SafeSubU64(lastTimeRewardApplicable, r.LastUpdateTime)
}

// rewardPerTokenStoredSinceLastUpdate truncates decimals of the liquidity
// supply for the calculation, matching the accrual model.
func (r *RewardInfo) rewardPerTokenStoredSinceLastUpdate(currentTime uint64, liquiditySupply *big.Int) (*big.Int, error) {
	timePeriod, err := r.SecondsElapsedSinceLastUpdate(currentTime)
	if err != nil {
		return nil, err
	}
	totalReward, err := maths.CheckedMul(
		new(big.Int).SetUint64(timePeriod),
		r.RewardRate.BigInt(),
		maths.Width128,
	)
	if err != nil {
		return nil, err
	}
	return maths.ShlDiv(totalReward, liquiditySupply, constants.LiquidityScale, types.RoundingDown, maths.Width256)
}

func (r *RewardInfo) accumulateRewardPerTokenStored(delta *big.Int) error {
	sum, err := maths.CheckedAdd(r.RewardPerTokenStoredBig(), delta, maths.Width256)
	if err != nil {
		return err
	}
	le, err := helpers.U256ToLE(sum)
	if err != nil {
		return err
	}
	r.RewardPerTokenStored = le
	return nil
}

// UpdateRateAfterFunding recomputes the farming rate after a funding event.
// Reward not yet emitted in the current window is folded into the new
// funding amount, then the window restarts at currentTime.
func (r *RewardInfo) UpdateRateAfterFunding(currentTime uint64, fundingAmount uint64) error {
	totalAmount := fundingAmount
	if currentTime < r.RewardDurationEnd {
		remainingSeconds := r.RewardDurationEnd - currentTime
		leftover, err := maths.SafeMulShrCastU64(
			r.RewardRate.BigInt(),
			new(big.Int).SetUint64(remainingSeconds),
			constants.RewardRateScale,
			types.RoundingDown,
		)
		if err != nil {
			return err
		}
		if totalAmount, err = maths.SafeAddU64(fundingAmount, leftover); err != nil {
			return err
		}
	}

	rate, err := maths.ShlDiv(
		new(big.Int).SetUint64(totalAmount),
		new(big.Int).SetUint64(r.RewardDuration),
		constants.RewardRateScale,
		types.RoundingDown,
		maths.Width128,
	)
	if err != nil {
		return err
	}
	if r.RewardRate, err = helpers.BigIntToUint128(rate); err != nil {
		return err
	}

	r.LastUpdateTime = currentTime
	durationEnd, err := maths.SafeAddU64(currentTime, r.RewardDuration)
	if err != nil {
		return err
	}
	r.RewardDurationEnd = durationEnd
	return nil
}
