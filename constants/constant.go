package constants

import "math/big"

const (
	// Resolution is the number of fractional bits in a Q64.64 sqrt price.
	Resolution = 64
	// LiquidityScale is the number of fractional bits in per-liquidity
	// fee/reward accumulators.
	LiquidityScale = 128
	// RewardRateScale is the number of fractional bits in a reward rate.
	RewardRateScale = 64
	// TotalRewardScale converts liquidity times reward-per-liquidity back
	// into raw token units (LiquidityScale + RewardRateScale).
	TotalRewardScale = LiquidityScale + RewardRateScale
	ScaleOffset      = 64

	BasisPointMax   = 10_000
	MaxFeeNumerator = 500_000_000   // 50%
	FeeDenominator  = 1_000_000_000 // 100%

	NumRewards = 2
	// MinRewardDuration is the shortest fundable reward window, in seconds.
	MinRewardDuration = 1
	// MaxRewardDuration is one year in seconds.
	MaxRewardDuration = 31_536_000

	DynamicFeeFilterPeriod    = 10
	DynamicFeeDecayPeriod     = 120
	DynamicFeeReductionFactor = 5_000 // 50%
	BinStepBpsDefault         = 1
	MaxPriceChangeBpsDefault  = 1_500 // 15%

	// DynamicFeeScalingFactor divides variable-fee products back into fee
	// numerator units.
	DynamicFeeScalingFactor = 100_000_000_000
)

var (
	// MinSqrtPrice
	//  MinSqrtPrice = new(big.Int).SetUint64(4295048016)
	MinSqrtPrice = new(big.Int).SetUint64(4295048016)

	// MaxSqrtPrice
	//  MaxSqrtPrice = new(big.Int).SetString("79226673521066979257578248091", 10)
	MaxSqrtPrice, _ = new(big.Int).SetString("79226673521066979257578248091", 10)

	// BinStepBpsU128Default
	//  BinStepBpsU128Default = new(big.Int).SetString("1844674407370955", 10)
	BinStepBpsU128Default, _ = new(big.Int).SetString("1844674407370955", 10)

	// OneQ64 is 1.0 in Q64.64.
	OneQ64 = new(big.Int).Lsh(big.NewInt(1), ScaleOffset)

	// U64Max is the largest value a token amount may take.
	U64Max = new(big.Int).SetUint64(^uint64(0))
)
