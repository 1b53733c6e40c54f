// Package curve converts between liquidity, square-root price and token
// amounts on the bounded-range constant-product curve.
//
// Prices are Q64.64 square roots. Intermediates are taken at 256 or 512
// bits so the narrowing to a 64-bit token amount is the only place a result
// can fail to fit.
package curve

import (
	"math/big"

	"github.com/MeteoraAg/cp-amm-go/constants"
	"github.com/MeteoraAg/cp-amm-go/maths"
	"github.com/MeteoraAg/cp-amm-go/types"
)

// GetInitializeAmounts returns the token amounts backing a fresh pool at
// the given price, rounded up so the pool is never under-funded.
func GetInitializeAmounts(
	sqrtMinPrice, sqrtMaxPrice, sqrtPrice, liquidity *big.Int,
) (uint64, uint64, error) {
	amountA, err := GetDeltaAmountAUnsigned(sqrtPrice, sqrtMaxPrice, liquidity, types.RoundingUp)
	if err != nil {
		return 0, 0, err
	}
	amountB, err := GetDeltaAmountBUnsigned(sqrtMinPrice, sqrtPrice, liquidity, types.RoundingUp)
	if err != nil {
		return 0, 0, err
	}
	return amountA, amountB, nil
}

// GetDeltaAmountAUnsigned gets the delta amount_a for given liquidity and
// price range.
//
// Δa = L * (1 / √P_lower - 1 / √P_upper)
//
// i.e. L * (√P_upper - √P_lower) / (√P_upper * √P_lower)
func GetDeltaAmountAUnsigned(
	lowerSqrtPrice, upperSqrtPrice, liquidity *big.Int,
	round types.Rounding,
) (uint64, error) {
	result, err := GetDeltaAmountAUnsignedUnchecked(lowerSqrtPrice, upperSqrtPrice, liquidity, round)
	if err != nil {
		return 0, err
	}
	if result.Cmp(constants.U64Max) > 0 {
		return 0, types.ErrMathOverflow
	}
	return maths.CastU64(result)
}

// GetDeltaAmountAUnsignedUnchecked returns the 256-bit wide Δa before the
// 64-bit narrowing.
func GetDeltaAmountAUnsignedUnchecked(
	lowerSqrtPrice, upperSqrtPrice, liquidity *big.Int,
	round types.Rounding,
) (*big.Int, error) {
	if lowerSqrtPrice.Sign() <= 0 || upperSqrtPrice.Cmp(lowerSqrtPrice) < 0 {
		return nil, types.ErrInvalidPriceRange
	}

	deltaPrice := new(big.Int).Sub(upperSqrtPrice, lowerSqrtPrice)
	denominator, err := maths.CheckedMul(lowerSqrtPrice, upperSqrtPrice, maths.Width256)
	if err != nil {
		return nil, err
	}
	return maths.MulDiv(liquidity, deltaPrice, denominator, round, maths.Width256)
}

// GetDeltaAmountBUnsigned gets the delta amount_b for given liquidity and
// price range.
//
// Δb = L * (√P_upper - √P_lower)
func GetDeltaAmountBUnsigned(
	lowerSqrtPrice, upperSqrtPrice, liquidity *big.Int,
	round types.Rounding,
) (uint64, error) {
	result, err := GetDeltaAmountBUnsignedUnchecked(lowerSqrtPrice, upperSqrtPrice, liquidity, round)
	if err != nil {
		return 0, err
	}
	if result.Cmp(constants.U64Max) > 0 {
		return 0, types.ErrMathOverflow
	}
	return maths.CastU64(result)
}

// GetDeltaAmountBUnsignedUnchecked computes L * Δ√P at 512-bit width and
// strips the 128 fractional bits.
func GetDeltaAmountBUnsignedUnchecked(
	lowerSqrtPrice, upperSqrtPrice, liquidity *big.Int,
	round types.Rounding,
) (*big.Int, error) {
	if upperSqrtPrice.Cmp(lowerSqrtPrice) < 0 {
		return nil, types.ErrInvalidPriceRange
	}

	deltaPrice := new(big.Int).Sub(upperSqrtPrice, lowerSqrtPrice)
	prod, err := maths.CheckedMul(liquidity, deltaPrice, maths.Width512)
	if err != nil {
		return nil, err
	}

	result, err := maths.MulShr(prod, big.NewInt(1), constants.Resolution*2, round, maths.Width512)
	if err != nil {
		return nil, err
	}
	return maths.CastU256(result)
}

// GetNextSqrtPriceFromInput gets the next sqrt price given an input amount
// of token A or token B. Fails when price or liquidity are zero.
func GetNextSqrtPriceFromInput(
	sqrtPrice, liquidity *big.Int,
	amountIn uint64,
	aForB bool,
) (*big.Int, error) {
	if sqrtPrice.Sign() == 0 || liquidity.Sign() == 0 {
		return nil, types.ErrInsufficientLiquidity
	}

	// round against the swapper so the target price is never overshot
	if aForB {
		return getNextSqrtPriceFromAmountARoundingUp(sqrtPrice, liquidity, amountIn)
	}
	return getNextSqrtPriceFromAmountBRoundingDown(sqrtPrice, liquidity, amountIn)
}

// GetNextSqrtPriceFromOutput gets the next sqrt price given an output
// amount, with rounding inverted so the pool never pays out more than
// computed.
func GetNextSqrtPriceFromOutput(
	sqrtPrice, liquidity *big.Int,
	outAmount uint64,
	isB bool,
) (*big.Int, error) {
	if sqrtPrice.Sign() == 0 || liquidity.Sign() == 0 {
		return nil, types.ErrInsufficientLiquidity
	}

	if isB {
		return getNextSqrtPriceFromAmountBOutput(sqrtPrice, liquidity, outAmount)
	}
	return getNextSqrtPriceFromAmountAOutput(sqrtPrice, liquidity, outAmount)
}

// √P' = √P * L / (L + Δx * √P), rounded up.
//
// Rounding up biases the price move in the pool's favor: this path only has
// to meet the input amount, not guarantee an exact output.
func getNextSqrtPriceFromAmountARoundingUp(
	sqrtPrice, liquidity *big.Int,
	amount uint64,
) (*big.Int, error) {
	if amount == 0 {
		return new(big.Int).Set(sqrtPrice), nil
	}

	product, err := maths.CheckedMul(new(big.Int).SetUint64(amount), sqrtPrice, maths.Width256)
	if err != nil {
		return nil, err
	}
	denominator, err := maths.CheckedAdd(liquidity, product, maths.Width256)
	if err != nil {
		return nil, err
	}
	result, err := maths.MulDiv(liquidity, sqrtPrice, denominator, types.RoundingUp, maths.Width256)
	if err != nil {
		return nil, err
	}
	return maths.CastU128(result)
}

// √P' = √P + Δy / L, rounded down, for the symmetric reason.
func getNextSqrtPriceFromAmountBRoundingDown(
	sqrtPrice, liquidity *big.Int,
	amount uint64,
) (*big.Int, error) {
	quotient, err := maths.ShlDiv(
		new(big.Int).SetUint64(amount),
		liquidity,
		constants.Resolution*2,
		types.RoundingDown,
		maths.Width512,
	)
	if err != nil {
		return nil, err
	}

	result, err := maths.CheckedAdd(sqrtPrice, quotient, maths.Width256)
	if err != nil {
		return nil, err
	}
	return maths.CastU128(result)
}

// √P' = √P - ⌈Δy / L⌉. Rounding the quotient up moves the price far enough
// down that the exact token B output is always covered.
func getNextSqrtPriceFromAmountBOutput(
	sqrtPrice, liquidity *big.Int,
	amount uint64,
) (*big.Int, error) {
	quotient, err := maths.ShlDiv(
		new(big.Int).SetUint64(amount),
		liquidity,
		constants.Resolution*2,
		types.RoundingUp,
		maths.Width512,
	)
	if err != nil {
		return nil, err
	}

	result, err := maths.CheckedSub(sqrtPrice, quotient)
	if err != nil {
		return nil, err
	}
	return maths.CastU128(result)
}

// √P' = ⌈√P * L / (L - Δx * √P)⌉. Rounding up over-moves the price so the
// required input estimate never undershoots the exact token A output.
func getNextSqrtPriceFromAmountAOutput(
	sqrtPrice, liquidity *big.Int,
	amount uint64,
) (*big.Int, error) {
	if amount == 0 {
		return new(big.Int).Set(sqrtPrice), nil
	}

	product, err := maths.CheckedMul(new(big.Int).SetUint64(amount), sqrtPrice, maths.Width256)
	if err != nil {
		return nil, err
	}
	denominator, err := maths.CheckedSub(liquidity, product)
	if err != nil || denominator.Sign() == 0 {
		return nil, types.ErrInsufficientLiquidity
	}
	result, err := maths.MulDiv(liquidity, sqrtPrice, denominator, types.RoundingUp, maths.Width256)
	if err != nil {
		return nil, err
	}
	return maths.CastU128(result)
}

// GetLiquidityDeltaFromAmountA solves the Δa formula for L:
//
// L = Δa * √P_upper * √P_lower / (√P_upper - √P_lower)
func GetLiquidityDeltaFromAmountA(
	amountA, lowerSqrtPrice, upperSqrtPrice *big.Int,
) (*big.Int, error) {
	if upperSqrtPrice.Cmp(lowerSqrtPrice) <= 0 {
		return nil, types.ErrInvalidPriceRange
	}

	product, err := maths.CheckedMul(
		new(big.Int).Mul(lowerSqrtPrice, amountA),
		upperSqrtPrice,
		maths.Width512,
	)
	if err != nil {
		return nil, err
	}
	denominator := new(big.Int).Sub(upperSqrtPrice, lowerSqrtPrice)
	return maths.CheckedDiv(product, denominator)
}

// GetLiquidityDeltaFromAmountB solves the Δb formula for L:
//
// L = (Δb << 128) / (√P_upper - √P_lower)
func GetLiquidityDeltaFromAmountB(
	amountB, lowerSqrtPrice, upperSqrtPrice *big.Int,
) (*big.Int, error) {
	if upperSqrtPrice.Cmp(lowerSqrtPrice) <= 0 {
		return nil, types.ErrInvalidPriceRange
	}

	denominator := new(big.Int).Sub(upperSqrtPrice, lowerSqrtPrice)
	return maths.ShlDiv(amountB, denominator, constants.LiquidityScale, types.RoundingDown, maths.Width512)
}
