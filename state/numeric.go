package state

import (
	"math/big"

	bin "github.com/gagliardetto/binary"

	"github.com/MeteoraAg/cp-amm-go/helpers"
	"github.com/MeteoraAg/cp-amm-go/maths"
)

// addU128U64 adds a token amount into a 128-bit counter field.
func addU128U64(x bin.Uint128, y uint64) (bin.Uint128, error) {
	sum, err := maths.CheckedAdd(x.BigInt(), new(big.Int).SetUint64(y), maths.Width128)
	if err != nil {
		return bin.Uint128{}, err
	}
	return helpers.BigIntToUint128(sum)
}

func addU128Big(x bin.Uint128, y *big.Int) (bin.Uint128, error) {
	sum, err := maths.CheckedAdd(x.BigInt(), y, maths.Width128)
	if err != nil {
		return bin.Uint128{}, err
	}
	return helpers.BigIntToUint128(sum)
}

func subU128Big(x bin.Uint128, y *big.Int) (bin.Uint128, error) {
	diff, err := maths.CheckedSub(x.BigInt(), y)
	if err != nil {
		return bin.Uint128{}, err
	}
	return helpers.BigIntToUint128(diff)
}
