package types

import (
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// FeeMode resolves where a swap's fee is charged.
type FeeMode struct {
	// FeesOnInput is true when the fee is deducted from the input amount
	// before it reaches the curve.
	FeesOnInput bool
	// FeesOnTokenA is true when the charged token is token A.
	FeesOnTokenA bool
	HasReferral  bool
}

// SwapResult encodes all results of swapping. It is produced by the pure
// computation path and folded into pool state by ApplySwapResult.
type SwapResult struct {
	InputAmount   uint64
	OutputAmount  uint64
	NextSqrtPrice *big.Int
	LpFee         uint64
	ProtocolFee   uint64
	PartnerFee    uint64
	ReferralFee   uint64
}

// SwapAmount is the curve-facing portion of a swap computation.
type SwapAmount struct {
	OutputAmount  uint64
	NextSqrtPrice *big.Int
}

// ModifyLiquidityResult holds the token amounts matching a liquidity delta
// at the pool's current price.
type ModifyLiquidityResult struct {
	TokenAAmount uint64
	TokenBAmount uint64
}

// FeeOnAmountResult is the outcome of splitting a trade fee.
type FeeOnAmountResult struct {
	// Amount is the post-fee amount for exact-in, or the fee-inclusive
	// amount for exact-out.
	Amount      uint64
	LpFee       uint64
	ProtocolFee uint64
	PartnerFee  uint64
	ReferralFee uint64
}

// SwapParams is the request for one swap operation.
type SwapParams struct {
	Payer            solana.PublicKey
	AmountIn         uint64
	MinimumAmountOut uint64
	TradeDirection   TradeDirection
	HasReferral      bool
}

// SwapExactOutParams is the request for one exact-out swap operation.
type SwapExactOutParams struct {
	Payer           solana.PublicKey
	AmountOut       uint64
	MaximumAmountIn uint64
	TradeDirection  TradeDirection
	HasReferral     bool
}

type AddLiquidityParams struct {
	LiquidityDelta        bin.Uint128
	TokenAAmountThreshold uint64
	TokenBAmountThreshold uint64
}

type RemoveLiquidityParams struct {
	LiquidityDelta        bin.Uint128
	TokenAAmountThreshold uint64
	TokenBAmountThreshold uint64
}

type InitializeRewardParams struct {
	Index          uint8
	RewardDuration uint64
	Funder         solana.PublicKey
	Mint           solana.PublicKey
	Vault          solana.PublicKey
}

type FundRewardParams struct {
	Index  uint8
	Amount uint64
	// CarryForward folds the accumulated empty-liquidity reward into this
	// funding round instead of leaving it claimable by the funder.
	CarryForward bool
}

type InitializePoolParams struct {
	TokenAMint       solana.PublicKey
	TokenBMint       solana.PublicKey
	TokenAVault      solana.PublicKey
	TokenBVault      solana.PublicKey
	WhitelistedVault solana.PublicKey
	Partner          solana.PublicKey
	SqrtMinPrice     *big.Int
	SqrtMaxPrice     *big.Int
	SqrtPrice        *big.Int
	Liquidity        *big.Int
	ActivationPoint  uint64
	ActivationType   ActivationType
	CollectFeeMode   CollectFeeMode
	PoolType         PoolType
}
