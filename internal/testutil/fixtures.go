// Package testutil provides shared fixtures for engine tests.
package testutil

import (
	"math/big"

	"github.com/gagliardetto/solana-go"

	"github.com/MeteoraAg/cp-amm-go/constants"
	"github.com/MeteoraAg/cp-amm-go/fees"
	"github.com/MeteoraAg/cp-amm-go/helpers"
	"github.com/MeteoraAg/cp-amm-go/state"
	"github.com/MeteoraAg/cp-amm-go/types"
)

// Q64 converts an integer price ratio into its Q64.64 representation.
func Q64(v uint64) *big.Int {
	return new(big.Int).Lsh(new(big.Int).SetUint64(v), constants.ScaleOffset)
}

// MustBig parses a base-10 integer literal.
func MustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid big int literal: " + s)
	}
	return v
}

// FlatFees builds a fee config with a flat base fee and the given split
// percentages, no scheduler and no dynamic fee.
func FlatFees(cliffFeeNumerator uint64, protocolPct, partnerPct, referralPct uint8) fees.PoolFeesStruct {
	return fees.PoolFeesStruct{
		BaseFee: fees.BaseFeeStruct{
			CliffFeeNumerator: cliffFeeNumerator,
		},
		ProtocolFeePercent: protocolPct,
		PartnerFeePercent:  partnerPct,
		ReferralFeePercent: referralPct,
	}
}

// PoolParams configures NewPool. Zero values fall back to a full-range pool
// at price 1.0.
type PoolParams struct {
	Fees           fees.PoolFeesStruct
	SqrtPrice      *big.Int
	SqrtMinPrice   *big.Int
	SqrtMaxPrice   *big.Int
	Liquidity      *big.Int
	CollectFeeMode types.CollectFeeMode
	ActivationType types.ActivationType
}

// NewPool builds an initialized, enabled pool for tests.
func NewPool(params PoolParams) *state.Pool {
	if params.SqrtPrice == nil {
		params.SqrtPrice = Q64(1)
	}
	if params.SqrtMinPrice == nil {
		params.SqrtMinPrice = new(big.Int).Set(constants.MinSqrtPrice)
	}
	if params.SqrtMaxPrice == nil {
		params.SqrtMaxPrice = new(big.Int).Set(constants.MaxSqrtPrice)
	}
	if params.Liquidity == nil {
		params.Liquidity = MustBig("100000000000000000000") // 10^20
	}

	pool := new(state.Pool)
	pool.Initialize(
		params.Fees,
		solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(),
		solana.PublicKey{}, solana.NewWallet().PublicKey(),
		helpers.MustBigIntToUint128(params.SqrtMinPrice),
		helpers.MustBigIntToUint128(params.SqrtMaxPrice),
		helpers.MustBigIntToUint128(params.SqrtPrice),
		helpers.MustBigIntToUint128(params.Liquidity),
		0,
		params.ActivationType,
		0, 0,
		params.CollectFeeMode,
		types.PoolTypePermissionless,
	)
	return pool
}
