package maths

import (
	"math/big"

	"github.com/MeteoraAg/cp-amm-go/constants"
	"github.com/MeteoraAg/cp-amm-go/types"
)

// MulDiv computes x * y / denominator with the requested rounding. The
// product is taken at double width so the multiply itself never overflows;
// the result must fit resultWidth bits.
//
// Rounding is always explicit at the call site: round up when the protocol
// bears the error, down when the user does.
func MulDiv(x, y, denominator *big.Int, rounding types.Rounding, resultWidth int) (*big.Int, error) {
	if denominator.Sign() == 0 {
		return nil, types.ErrMathOverflow
	}

	div, mod := new(big.Int).QuoRem(
		new(big.Int).Mul(x, y),
		denominator,
		new(big.Int),
	)
	if rounding == types.RoundingUp && mod.Sign() != 0 {
		div.Add(div, big.NewInt(1))
	}

	if !fits(div, resultWidth) {
		return nil, types.ErrMathOverflow
	}
	return div, nil
}

// MulShr computes x * y >> offset.
func MulShr(x, y *big.Int, offset uint, rounding types.Rounding, resultWidth int) (*big.Int, error) {
	product := new(big.Int).Mul(x, y)

	result := new(big.Int).Rsh(product, offset)
	if rounding == types.RoundingUp && anyLowBitSet(product, offset) {
		result.Add(result, big.NewInt(1))
	}

	if !fits(result, resultWidth) {
		return nil, types.ErrMathOverflow
	}
	return result, nil
}

// ShlDiv computes (x << offset) / y.
func ShlDiv(x, y *big.Int, offset uint, rounding types.Rounding, resultWidth int) (*big.Int, error) {
	if y.Sign() == 0 {
		return nil, types.ErrMathOverflow
	}

	div, mod := new(big.Int).QuoRem(
		new(big.Int).Lsh(x, offset),
		y,
		new(big.Int),
	)
	if rounding == types.RoundingUp && mod.Sign() != 0 {
		div.Add(div, big.NewInt(1))
	}

	if !fits(div, resultWidth) {
		return nil, types.ErrMathOverflow
	}
	return div, nil
}

// SafeMulDivCastU64 is the uint64 convenience form of MulDiv.
func SafeMulDivCastU64(x, y, denominator uint64, rounding types.Rounding) (uint64, error) {
	result, err := MulDiv(
		new(big.Int).SetUint64(x),
		new(big.Int).SetUint64(y),
		new(big.Int).SetUint64(denominator),
		rounding,
		Width128,
	)
	if err != nil {
		return 0, err
	}
	return CastU64(result)
}

// SafeMulShrCastU64 computes x * y >> offset as a uint64.
func SafeMulShrCastU64(x, y *big.Int, offset uint, rounding types.Rounding) (uint64, error) {
	result, err := MulShr(x, y, offset, rounding, Width256)
	if err != nil {
		return 0, err
	}
	return CastU64(result)
}

func anyLowBitSet(x *big.Int, bits uint) bool {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits), big.NewInt(1))
	return new(big.Int).And(x, mask).Sign() != 0
}

// Pow raises a Q64.64 base to an integer exponent by square and multiply,
// truncating back to Q64.64 after every multiplication.
func Pow(base *big.Int, exp *big.Int) *big.Int {
	result := new(big.Int).Set(constants.OneQ64)
	b := new(big.Int).Set(base)
	e := new(big.Int).Set(exp)

	for e.Sign() > 0 {
		if e.Bit(0) == 1 {
			result.Mul(result, b)
			result.Rsh(result, constants.ScaleOffset)
		}
		b.Mul(b, b)
		b.Rsh(b, constants.ScaleOffset)
		e.Rsh(e, 1)
	}
	return result
}
