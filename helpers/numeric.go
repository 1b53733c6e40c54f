// Package helpers holds conversion and convenience utilities shared by the
// engine's state layer and its callers.
package helpers

import (
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"

	"github.com/MeteoraAg/cp-amm-go/types"
)

// BigIntToUint128 packs a non-negative big integer into a little-endian
// Uint128 state field.
func BigIntToUint128(b *big.Int) (bin.Uint128, error) {
	if b.Sign() < 0 || b.BitLen() > 128 {
		return bin.Uint128{}, fmt.Errorf("%w: %s does not fit u128", types.ErrTypeCastFailed, b)
	}

	var buf [16]byte
	b.FillBytes(buf[:]) // zero-pads on the left

	bin.ReverseBytes(buf[:])

	var u bin.Uint128
	if err := u.UnmarshalWithDecoder(bin.NewBinDecoder(buf[:])); err != nil {
		return bin.Uint128{}, err
	}
	return u, nil
}

// MustBigIntToUint128 panics on values that do not fit. For constants and
// tests only.
func MustBigIntToUint128(b *big.Int) bin.Uint128 {
	v, err := BigIntToUint128(b)
	if err != nil {
		panic(err)
	}
	return v
}

// Uint64ToUint128 lifts a uint64 into a Uint128 field.
func Uint64ToUint128(v uint64) bin.Uint128 {
	return MustBigIntToUint128(new(big.Int).SetUint64(v))
}

// U256FromLE decodes a 32-byte little-endian accumulator into a big integer.
func U256FromLE(b [32]uint8) *big.Int {
	var be [32]byte
	for i := range b {
		be[31-i] = b[i]
	}
	return new(big.Int).SetBytes(be[:])
}

// U256ToLE encodes a non-negative big integer into a 32-byte little-endian
// accumulator, failing when it does not fit 256 bits.
func U256ToLE(x *big.Int) ([32]uint8, error) {
	var out [32]uint8
	if x.Sign() < 0 || x.BitLen() > 256 {
		return out, fmt.Errorf("%w: %s does not fit u256", types.ErrTypeCastFailed, x)
	}

	var be [32]byte
	x.FillBytes(be[:])
	for i := range be {
		out[31-i] = be[i]
	}
	return out, nil
}
