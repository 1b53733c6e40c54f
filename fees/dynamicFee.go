package fees

import (
	"math/big"

	bin "github.com/gagliardetto/binary"

	"github.com/MeteoraAg/cp-amm-go/constants"
	"github.com/MeteoraAg/cp-amm-go/helpers"
	"github.com/MeteoraAg/cp-amm-go/maths"
	"github.com/MeteoraAg/cp-amm-go/types"
)

// DynamicFeeStruct tracks recent price volatility against a reference
// price. The accumulator feeds an additional fee numerator on top of the
// base fee.
type DynamicFeeStruct struct {
	Initialized              uint8
	Padding                  [7]uint8
	MaxVolatilityAccumulator uint32
	VariableFeeControl       uint32
	BinStep                  uint16
	FilterPeriod             uint16
	DecayPeriod              uint16
	ReductionFactor          uint16
	LastUpdateTimestamp      uint64
	BinStepU128              bin.Uint128
	SqrtPriceReference       bin.Uint128
	VolatilityAccumulator    bin.Uint128
	VolatilityReference      bin.Uint128
}

func (df *DynamicFeeStruct) IsDynamicFeeEnabled() bool {
	return df.Initialized != 0
}

// UpdateReferences opens a new volatility window once the filter period has
// elapsed: the reference price snaps to the current price and the
// accumulator decays (or fully resets after the decay period).
func (df *DynamicFeeStruct) UpdateReferences(sqrtPriceCurrent *big.Int, currentTimestamp uint64) error {
	elapsed, err := maths.SafeSubU64(currentTimestamp, df.LastUpdateTimestamp)
	if err != nil {
		return err
	}

	if elapsed >= uint64(df.FilterPeriod) {
		ref, err := helpers.BigIntToUint128(sqrtPriceCurrent)
		if err != nil {
			return err
		}
		df.SqrtPriceReference = ref

		if elapsed < uint64(df.DecayPeriod) {
			decayed, err := maths.MulDiv(
				df.VolatilityAccumulator.BigInt(),
				new(big.Int).SetUint64(uint64(df.ReductionFactor)),
				big.NewInt(constants.BasisPointMax),
				types.RoundingDown,
				maths.Width128,
			)
			if err != nil {
				return err
			}
			if df.VolatilityReference, err = helpers.BigIntToUint128(decayed); err != nil {
				return err
			}
		} else {
			df.VolatilityReference = bin.Uint128{}
		}
	}
	return nil
}

// UpdateVolatilityAccumulator folds the bins crossed since the reference
// price into the accumulator, capped at the configured maximum.
func (df *DynamicFeeStruct) UpdateVolatilityAccumulator(sqrtPrice *big.Int) error {
	deltaPrice, err := GetDeltaBinID(df.BinStepU128.BigInt(), df.SqrtPriceReference.BigInt(), sqrtPrice)
	if err != nil {
		return err
	}

	accumulator, err := maths.CheckedAdd(
		df.VolatilityReference.BigInt(),
		new(big.Int).Mul(deltaPrice, big.NewInt(constants.BasisPointMax)),
		maths.Width128,
	)
	if err != nil {
		return err
	}

	max := new(big.Int).SetUint64(uint64(df.MaxVolatilityAccumulator))
	if accumulator.Cmp(max) > 0 {
		accumulator = max
	}
	df.VolatilityAccumulator, err = helpers.BigIntToUint128(accumulator)
	return err
}

// GetDeltaBinID counts the discretization bins between two sqrt prices.
// One price-ratio step of binStep counts as two bins.
func GetDeltaBinID(binStepU128, sqrtPriceA, sqrtPriceB *big.Int) (*big.Int, error) {
	upper, lower := sqrtPriceA, sqrtPriceB
	if upper.Cmp(lower) < 0 {
		upper, lower = lower, upper
	}

	priceRatio, err := maths.ShlDiv(upper, lower, constants.Resolution, types.RoundingDown, maths.Width128)
	if err != nil {
		return nil, err
	}
	ratioExcess, err := maths.CheckedSub(priceRatio, constants.OneQ64)
	if err != nil {
		return nil, err
	}
	deltaBin, err := maths.CheckedDiv(ratioExcess, binStepU128)
	if err != nil {
		return nil, err
	}
	return deltaBin.Mul(deltaBin, big.NewInt(2)), nil
}

// GetVariableFeeNumerator converts the accumulated volatility into a fee
// numerator, rounded up against the trader.
func (df *DynamicFeeStruct) GetVariableFeeNumerator() (*big.Int, error) {
	if !df.IsDynamicFeeEnabled() || df.VariableFeeControl == 0 {
		return big.NewInt(0), nil
	}

	// (volatility * binStep)^2 * control, scaled back down to numerator units
	vfaBin, err := maths.CheckedMul(
		df.VolatilityAccumulator.BigInt(),
		new(big.Int).SetUint64(uint64(df.BinStep)),
		maths.Width256,
	)
	if err != nil {
		return nil, err
	}
	squareVfaBin, err := maths.CheckedMul(vfaBin, vfaBin, maths.Width256)
	if err != nil {
		return nil, err
	}
	vFee, err := maths.CheckedMul(
		squareVfaBin,
		new(big.Int).SetUint64(uint64(df.VariableFeeControl)),
		maths.Width256,
	)
	if err != nil {
		return nil, err
	}

	return maths.CheckedDiv(
		new(big.Int).Add(vFee, big.NewInt(constants.DynamicFeeScalingFactor-1)),
		big.NewInt(constants.DynamicFeeScalingFactor),
	)
}
