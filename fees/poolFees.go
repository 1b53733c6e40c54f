package fees

import (
	"math/big"

	"github.com/MeteoraAg/cp-amm-go/constants"
	"github.com/MeteoraAg/cp-amm-go/maths"
	"github.com/MeteoraAg/cp-amm-go/types"
)

// PoolFeesStruct bundles a pool's whole fee configuration and the dynamic
// fee state.
type PoolFeesStruct struct {
	BaseFee            BaseFeeStruct
	ProtocolFeePercent uint8
	PartnerFeePercent  uint8
	ReferralFeePercent uint8
	Padding0           [5]uint8
	DynamicFee         DynamicFeeStruct
	Padding1           [2]uint64
}

// GetTotalTradingFeeNumerator is the static schedule fee plus the variable
// fee, capped at the protocol maximum.
func (pf *PoolFeesStruct) GetTotalTradingFeeNumerator(currentPoint, activationPoint uint64) (uint64, error) {
	baseFee, err := pf.BaseFee.GetCurrentBaseFeeNumerator(currentPoint, activationPoint)
	if err != nil {
		return 0, err
	}
	variableFee, err := pf.DynamicFee.GetVariableFeeNumerator()
	if err != nil {
		return 0, err
	}

	total := new(big.Int).Add(new(big.Int).SetUint64(baseFee), variableFee)
	if total.Cmp(big.NewInt(constants.MaxFeeNumerator)) > 0 {
		return constants.MaxFeeNumerator, nil
	}
	return maths.CastU64(total)
}

// GetFeeOnAmount splits a trade fee off amount.
//
// For exact-in, amount is gross and the returned Amount is what reaches the
// curve. For exact-out, amount is the required net amount and the returned
// Amount is the fee-inclusive gross the user must provide.
//
// Extraction order is fixed: total fee, protocol share, referral carved from
// protocol, partner carved from the remainder; the LP keeps
// total - original protocol share.
func (pf *PoolFeesStruct) GetFeeOnAmount(
	amount uint64,
	hasReferral bool,
	currentPoint, activationPoint uint64,
	isExactOut bool,
) (types.FeeOnAmountResult, error) {
	feeNumerator, err := pf.GetTotalTradingFeeNumerator(currentPoint, activationPoint)
	if err != nil {
		return types.FeeOnAmountResult{}, err
	}

	var resultAmount, tradeFee uint64
	if isExactOut {
		included, err := GetIncludedFeeAmount(feeNumerator, amount)
		if err != nil {
			return types.FeeOnAmountResult{}, err
		}
		resultAmount = included
		if tradeFee, err = maths.SafeSubU64(included, amount); err != nil {
			return types.FeeOnAmountResult{}, err
		}
	} else {
		if tradeFee, err = maths.SafeMulDivCastU64(amount, feeNumerator, constants.FeeDenominator, types.RoundingUp); err != nil {
			return types.FeeOnAmountResult{}, err
		}
		if resultAmount, err = maths.SafeSubU64(amount, tradeFee); err != nil {
			return types.FeeOnAmountResult{}, err
		}
	}

	protocolFee, err := maths.SafeMulDivCastU64(tradeFee, uint64(pf.ProtocolFeePercent), 100, types.RoundingDown)
	if err != nil {
		return types.FeeOnAmountResult{}, err
	}
	lpFee, err := maths.SafeSubU64(tradeFee, protocolFee)
	if err != nil {
		return types.FeeOnAmountResult{}, err
	}

	var referralFee uint64
	if hasReferral {
		if referralFee, err = maths.SafeMulDivCastU64(protocolFee, uint64(pf.ReferralFeePercent), 100, types.RoundingDown); err != nil {
			return types.FeeOnAmountResult{}, err
		}
	}
	protocolFeeAfterReferral, err := maths.SafeSubU64(protocolFee, referralFee)
	if err != nil {
		return types.FeeOnAmountResult{}, err
	}

	var partnerFee uint64
	if pf.PartnerFeePercent > 0 {
		if partnerFee, err = maths.SafeMulDivCastU64(protocolFeeAfterReferral, uint64(pf.PartnerFeePercent), 100, types.RoundingDown); err != nil {
			return types.FeeOnAmountResult{}, err
		}
	}
	finalProtocolFee, err := maths.SafeSubU64(protocolFeeAfterReferral, partnerFee)
	if err != nil {
		return types.FeeOnAmountResult{}, err
	}

	return types.FeeOnAmountResult{
		Amount:      resultAmount,
		LpFee:       lpFee,
		ProtocolFee: finalProtocolFee,
		PartnerFee:  partnerFee,
		ReferralFee: referralFee,
	}, nil
}

// GetExcludedFeeAmount deducts the trade fee from a fee-inclusive amount.
func GetExcludedFeeAmount(feeNumerator, includedFeeAmount uint64) (excluded, tradeFee uint64, err error) {
	if tradeFee, err = maths.SafeMulDivCastU64(includedFeeAmount, feeNumerator, constants.FeeDenominator, types.RoundingUp); err != nil {
		return 0, 0, err
	}
	if excluded, err = maths.SafeSubU64(includedFeeAmount, tradeFee); err != nil {
		return 0, 0, err
	}
	return excluded, tradeFee, nil
}

// GetIncludedFeeAmount inverts GetExcludedFeeAmount: the smallest gross
// amount whose post-fee remainder covers excludedFeeAmount.
func GetIncludedFeeAmount(feeNumerator, excludedFeeAmount uint64) (uint64, error) {
	if feeNumerator >= constants.FeeDenominator {
		return 0, types.ErrInvalidFeeNumerator
	}

	included, err := maths.SafeMulDivCastU64(
		excludedFeeAmount,
		constants.FeeDenominator,
		constants.FeeDenominator-feeNumerator,
		types.RoundingUp,
	)
	if err != nil {
		return 0, err
	}

	// the round-trip must never pay out less than requested
	inverse, _, err := GetExcludedFeeAmount(feeNumerator, included)
	if err != nil {
		return 0, err
	}
	if inverse < excludedFeeAmount {
		return 0, types.ErrMathOverflow
	}
	return included, nil
}

// GetFeeMode determines where fees are charged for a swap.
//
// Fees land on the output token, except in OnlyB mode for B-to-A trades
// where the input token (B) is charged so fees stay in token B.
func GetFeeMode(collectFeeMode types.CollectFeeMode, tradeDirection types.TradeDirection, hasReferral bool) (types.FeeMode, error) {
	if !collectFeeMode.Valid() {
		return types.FeeMode{}, types.ErrInvalidCollectFeeMode
	}

	feeMode := types.FeeMode{HasReferral: hasReferral}
	if tradeDirection == types.TradeDirectionBtoA {
		if collectFeeMode == types.CollectFeeModeOnlyB {
			feeMode.FeesOnInput = true
		} else {
			feeMode.FeesOnTokenA = true
		}
	}
	return feeMode, nil
}
