package types

import "errors"

// Pool program error set. Every core function fails with exactly one of
// these; callers discard all partial effects on any failure.
var (
	ErrMathOverflow          = errors.New("math operation overflow")
	ErrTypeCastFailed        = errors.New("type cast failed")
	ErrPriceRangeViolation   = errors.New("price range violated")
	ErrInvalidCollectFeeMode = errors.New("invalid collect fee mode")
	ErrInvalidFeeNumerator   = errors.New("invalid fee numerator")
	ErrInvalidRewardIndex    = errors.New("invalid reward index")
	ErrInvalidRewardDuration = errors.New("invalid reward duration")
	ErrRewardUninitialized   = errors.New("reward not initialized")
	ErrRewardInitialized     = errors.New("reward already initialized")
	ErrExceededSlippage      = errors.New("exceeded slippage tolerance")
	ErrPoolDisabled          = errors.New("pool disabled")
	ErrAmountIsZero          = errors.New("amount is zero")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrInvalidRewardVault    = errors.New("invalid reward vault")
	ErrInvalidFunder         = errors.New("invalid funder")
	ErrInvalidPriceRange     = errors.New("invalid price range")
	ErrInvalidParameters     = errors.New("invalid parameters")
)
