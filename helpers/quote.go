package helpers

import (
	"math/big"

	"github.com/MeteoraAg/cp-amm-go/constants"
	"github.com/MeteoraAg/cp-amm-go/types"
)

// GetMinAmountWithSlippage applies a slippage tolerance to a quoted amount.
// rate is a percentage, e.g. 0.5 for 0.5%.
func GetMinAmountWithSlippage(amount uint64, rate float64) uint64 {
	slippage := new(big.Int).SetUint64(uint64((100 - rate) / 100 * constants.BasisPointMax))
	out := new(big.Int).Div(
		new(big.Int).Mul(new(big.Int).SetUint64(amount), slippage),
		big.NewInt(constants.BasisPointMax),
	)
	return out.Uint64()
}

// GetPriceImpact is the percentage move between two sqrt prices.
//
// price scales with sqrtPrice^2, so the decimal factor cancels:
// impact = |next^2 - current^2| * 100 / current^2
func GetPriceImpact(nextSqrtPrice, currentSqrtPrice *big.Int) float64 {
	currentSquared := new(big.Float).Mul(
		new(big.Float).SetInt(currentSqrtPrice),
		new(big.Float).SetInt(currentSqrtPrice),
	)

	diff := new(big.Float).Sub(
		new(big.Float).Mul(new(big.Float).SetInt(nextSqrtPrice), new(big.Float).SetInt(nextSqrtPrice)),
		currentSquared,
	)
	diff.Abs(diff)

	r, _ := new(big.Float).Mul(
		new(big.Float).Quo(diff, currentSquared),
		big.NewFloat(100),
	).Float64()

	return r
}

// GetSqrtPriceFromAmounts derives the initial Q64.64 sqrt price implied by
// depositing both tokens at once: sqrt(amountB / amountA) << 64.
func GetSqrtPriceFromAmounts(tokenAAmount, tokenBAmount uint64) (*big.Int, error) {
	if tokenAAmount == 0 || tokenBAmount == 0 {
		return nil, types.ErrAmountIsZero
	}
	ratio := new(big.Int).Lsh(new(big.Int).SetUint64(tokenBAmount), 128)
	ratio.Quo(ratio, new(big.Int).SetUint64(tokenAAmount))
	return ratio.Sqrt(ratio), nil
}

// GetPriceFromSqrtPrice converts a Q64.64 sqrt price into a human price,
// adjusted for the two mints' decimals.
func GetPriceFromSqrtPrice(sqrtPrice *big.Int, tokenADecimal, tokenBDecimal uint8) *big.Float {
	price := new(big.Float).Mul(
		new(big.Float).SetInt(sqrtPrice),
		new(big.Float).SetInt(sqrtPrice),
	)
	price.Quo(price, new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 128)))

	price.Mul(price, new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(tokenADecimal)), nil)))
	price.Quo(price, new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(tokenBDecimal)), nil)))
	return price
}
