// Package maths is the fixed-point math kernel of the pool engine.
//
// All arithmetic is performed on non-negative big integers and checked
// against an explicit bit width; any overflow, underflow, division by zero
// or narrowing failure is reported as an error instead of wrapping.
package maths

import (
	"math/big"

	"github.com/MeteoraAg/cp-amm-go/types"
)

// Widths the kernel operates at.
const (
	Width64  = 64
	Width128 = 128
	Width256 = 256
	Width512 = 512
)

func fits(x *big.Int, width int) bool {
	return x.Sign() >= 0 && x.BitLen() <= width
}

// CheckedAdd returns x + y, failing if the sum exceeds width bits.
func CheckedAdd(x, y *big.Int, width int) (*big.Int, error) {
	sum := new(big.Int).Add(x, y)
	if !fits(sum, width) {
		return nil, types.ErrMathOverflow
	}
	return sum, nil
}

// CheckedSub returns x - y, failing on underflow.
func CheckedSub(x, y *big.Int) (*big.Int, error) {
	if x.Cmp(y) < 0 {
		return nil, types.ErrMathOverflow
	}
	return new(big.Int).Sub(x, y), nil
}

// CheckedMul returns x * y, failing if the product exceeds width bits.
func CheckedMul(x, y *big.Int, width int) (*big.Int, error) {
	product := new(big.Int).Mul(x, y)
	if !fits(product, width) {
		return nil, types.ErrMathOverflow
	}
	return product, nil
}

// CheckedDiv returns ⌊x / y⌋, failing on division by zero.
func CheckedDiv(x, y *big.Int) (*big.Int, error) {
	if y.Sign() == 0 {
		return nil, types.ErrMathOverflow
	}
	return new(big.Int).Quo(x, y), nil
}

// CheckedShl returns x << shift, failing if the result exceeds width bits.
func CheckedShl(x *big.Int, shift uint, width int) (*big.Int, error) {
	shifted := new(big.Int).Lsh(x, shift)
	if !fits(shifted, width) {
		return nil, types.ErrMathOverflow
	}
	return shifted, nil
}

// CheckedShr returns x >> shift.
func CheckedShr(x *big.Int, shift uint) *big.Int {
	return new(big.Int).Rsh(x, shift)
}

// SafeAddU64 returns x + y, failing if the sum does not fit a uint64.
func SafeAddU64(x, y uint64) (uint64, error) {
	sum := x + y
	if sum < x {
		return 0, types.ErrMathOverflow
	}
	return sum, nil
}

// SafeSubU64 returns x - y, failing on underflow.
func SafeSubU64(x, y uint64) (uint64, error) {
	if y > x {
		return 0, types.ErrMathOverflow
	}
	return x - y, nil
}

// SafeMulU64 returns x * y as a uint64, failing on overflow.
func SafeMulU64(x, y uint64) (uint64, error) {
	if x == 0 || y == 0 {
		return 0, nil
	}
	product := x * y
	if product/x != y {
		return 0, types.ErrMathOverflow
	}
	return product, nil
}

// CastU64 narrows x to a uint64, failing with ErrTypeCastFailed when the
// mathematical value does not fit.
func CastU64(x *big.Int) (uint64, error) {
	if x.Sign() < 0 || !x.IsUint64() {
		return 0, types.ErrTypeCastFailed
	}
	return x.Uint64(), nil
}

// CastU128 fails when x does not fit 128 bits.
func CastU128(x *big.Int) (*big.Int, error) {
	if !fits(x, Width128) {
		return nil, types.ErrTypeCastFailed
	}
	return x, nil
}

// CastU256 fails when x does not fit 256 bits.
func CastU256(x *big.Int) (*big.Int, error) {
	if !fits(x, Width256) {
		return nil, types.ErrTypeCastFailed
	}
	return x, nil
}
