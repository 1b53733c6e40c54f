// Package fees implements the trade fee model: the static fee scheduler,
// the volatility-sensitive dynamic fee, and the LP/protocol/partner/referral
// split.
package fees

import (
	"math/big"

	"github.com/MeteoraAg/cp-amm-go/constants"
	"github.com/MeteoraAg/cp-amm-go/maths"
	"github.com/MeteoraAg/cp-amm-go/types"
)

// BaseFeeStruct is the static fee schedule: a cliff numerator optionally
// decaying per period, linearly or exponentially.
type BaseFeeStruct struct {
	CliffFeeNumerator uint64
	FeeSchedulerMode  uint8
	Padding0          [5]uint8
	NumberOfPeriod    uint16
	PeriodFrequency   uint64
	ReductionFactor   uint64
	Padding1          uint64
}

func (bf *BaseFeeStruct) Validate() error {
	feeNumerator, err := bf.GetMinBaseFeeNumerator()
	if err != nil {
		return err
	}
	if bf.CliffFeeNumerator > constants.MaxFeeNumerator || feeNumerator > constants.MaxFeeNumerator {
		return types.ErrInvalidFeeNumerator
	}
	return nil
}

// GetMinBaseFeeNumerator is the numerator after the full schedule has
// elapsed.
func (bf *BaseFeeStruct) GetMinBaseFeeNumerator() (uint64, error) {
	return bf.getBaseFeeNumeratorByPeriod(uint64(bf.NumberOfPeriod))
}

// GetCurrentBaseFeeNumerator evaluates the schedule at currentPoint.
func (bf *BaseFeeStruct) GetCurrentBaseFeeNumerator(currentPoint, activationPoint uint64) (uint64, error) {
	if bf.PeriodFrequency == 0 {
		return bf.CliffFeeNumerator, nil
	}

	var period uint64
	if currentPoint > activationPoint {
		period = (currentPoint - activationPoint) / bf.PeriodFrequency
	}
	if period > uint64(bf.NumberOfPeriod) {
		period = uint64(bf.NumberOfPeriod)
	}
	return bf.getBaseFeeNumeratorByPeriod(period)
}

// Fee scheduler
//
// Linear: cliffFeeNumerator - period * reductionFactor
//
// Exponential: cliffFeeNumerator * (1 - reductionFactor/BASIS_POINT_MAX)^period
func (bf *BaseFeeStruct) getBaseFeeNumeratorByPeriod(period uint64) (uint64, error) {
	switch types.FeeSchedulerMode(bf.FeeSchedulerMode) {
	case types.FeeSchedulerModeLinear:
		reduction, err := maths.SafeMulU64(period, bf.ReductionFactor)
		if err != nil {
			return 0, err
		}
		return maths.SafeSubU64(bf.CliffFeeNumerator, reduction)

	case types.FeeSchedulerModeExponential:
		bps, err := maths.ShlDiv(
			new(big.Int).SetUint64(bf.ReductionFactor),
			big.NewInt(constants.BasisPointMax),
			constants.ScaleOffset,
			types.RoundingDown,
			maths.Width128,
		)
		if err != nil {
			return 0, err
		}
		base, err := maths.CheckedSub(constants.OneQ64, bps)
		if err != nil {
			return 0, err
		}

		result := maths.Pow(base, new(big.Int).SetUint64(period))
		fee := new(big.Int).Rsh(
			new(big.Int).Mul(new(big.Int).SetUint64(bf.CliffFeeNumerator), result),
			constants.ScaleOffset,
		)
		return maths.CastU64(fee)

	default:
		return 0, types.ErrInvalidParameters
	}
}
