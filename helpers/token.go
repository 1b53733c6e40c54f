package helpers

import (
	"github.com/MeteoraAg/cp-amm-go/maths"
	"github.com/MeteoraAg/cp-amm-go/types"
)

// MaxTransferFeeBasisPoints is the ceiling the token-2022 transfer fee
// extension allows.
const MaxTransferFeeBasisPoints = 10_000

// TokenProgramFlag marks which token program owns a mint.
type TokenProgramFlag uint8

const (
	TokenProgramFlagToken TokenProgramFlag = iota
	TokenProgramFlagToken2022
)

// TransferFee is one epoch's transfer fee schedule of a token-2022 mint. A
// nil *TransferFee means the mint takes no transfer fee.
type TransferFee struct {
	BasisPoints uint16
	MaximumFee  uint64
}

// TransferFeeResult pairs a net or gross amount with the fee charged to
// reach it.
type TransferFeeResult struct {
	Amount      uint64
	TransferFee uint64
}

// CalculateFee is the fee charged on a gross transfer of amount, capped at
// MaximumFee.
func (tf *TransferFee) CalculateFee(amount uint64) (uint64, error) {
	if tf == nil || tf.BasisPoints == 0 || amount == 0 {
		return 0, nil
	}

	fee, err := maths.SafeMulDivCastU64(amount, uint64(tf.BasisPoints), MaxTransferFeeBasisPoints, types.RoundingUp)
	if err != nil {
		return 0, err
	}
	if fee > tf.MaximumFee {
		fee = tf.MaximumFee
	}
	return fee, nil
}

// CalculateTransferFeeExcludedAmount strips the transfer fee from a gross
// amount: the pool only ever credits what actually arrives in the vault.
func CalculateTransferFeeExcludedAmount(tf *TransferFee, transferFeeIncludedAmount uint64) (TransferFeeResult, error) {
	fee, err := tf.CalculateFee(transferFeeIncludedAmount)
	if err != nil {
		return TransferFeeResult{}, err
	}
	if fee > transferFeeIncludedAmount {
		return TransferFeeResult{}, types.ErrMathOverflow
	}
	return TransferFeeResult{
		Amount:      transferFeeIncludedAmount - fee,
		TransferFee: fee,
	}, nil
}

// CalculateTransferFeeIncludedAmount grosses up a net amount so that the
// recipient receives at least the net after the mint's transfer fee.
func CalculateTransferFeeIncludedAmount(tf *TransferFee, transferFeeExcludedAmount uint64) (TransferFeeResult, error) {
	if transferFeeExcludedAmount == 0 {
		return TransferFeeResult{}, nil
	}
	if tf == nil || tf.BasisPoints == 0 {
		return TransferFeeResult{Amount: transferFeeExcludedAmount}, nil
	}

	var fee uint64
	if tf.BasisPoints == MaxTransferFeeBasisPoints {
		// a 100% fee rate inverts to zero, so charge the maximum instead
		fee = tf.MaximumFee
	} else {
		preFee, err := calculatePreFeeAmount(tf, transferFeeExcludedAmount)
		if err != nil {
			return TransferFeeResult{}, err
		}
		fee, err = tf.CalculateFee(preFee)
		if err != nil {
			return TransferFeeResult{}, err
		}
	}

	included := transferFeeExcludedAmount + fee
	if included < transferFeeExcludedAmount {
		return TransferFeeResult{}, types.ErrMathOverflow
	}
	return TransferFeeResult{Amount: included, TransferFee: fee}, nil
}

// calculatePreFeeAmount inverts the fee: the smallest gross amount whose
// post-fee remainder is at least postFeeAmount.
func calculatePreFeeAmount(tf *TransferFee, postFeeAmount uint64) (uint64, error) {
	if postFeeAmount == 0 {
		return 0, nil
	}
	bps := uint64(tf.BasisPoints)
	switch bps {
	case 0:
		return postFeeAmount, nil
	case MaxTransferFeeBasisPoints:
		preFee := postFeeAmount + tf.MaximumFee
		if preFee < postFeeAmount {
			return 0, types.ErrMathOverflow
		}
		return preFee, nil
	}

	raw, err := maths.SafeMulDivCastU64(postFeeAmount, MaxTransferFeeBasisPoints, MaxTransferFeeBasisPoints-bps, types.RoundingUp)
	if err != nil {
		return 0, err
	}

	if raw-postFeeAmount >= tf.MaximumFee {
		preFee := postFeeAmount + tf.MaximumFee
		if preFee < postFeeAmount {
			return 0, types.ErrMathOverflow
		}
		return preFee, nil
	}
	return raw, nil
}
