package cpamm

import (
	"github.com/gagliardetto/solana-go"

	"github.com/MeteoraAg/cp-amm-go/types"
)

// Events mirror the on-chain program's emitted events, one per completed
// operation. Hosts can forward them to whatever sink they run.

type EvtSwap struct {
	Pool                        solana.PublicKey
	TradeDirection              types.TradeDirection
	HasReferral                 bool
	AmountIn                    uint64
	TransferFeeExcludedAmountIn uint64
	CurrentTimestamp            uint64
	SwapResult                  types.SwapResult
}

type EvtInitializePool struct {
	Pool            solana.PublicKey
	TokenAMint      solana.PublicKey
	TokenBMint      solana.PublicKey
	Liquidity       string
	TokenAAmount    uint64
	TokenBAmount    uint64
	ActivationPoint uint64
}

type EvtCreatePosition struct {
	Pool    solana.PublicKey
	Owner   solana.PublicKey
	NftMint solana.PublicKey
}

type EvtAddLiquidity struct {
	Pool           solana.PublicKey
	Position       solana.PublicKey
	Owner          solana.PublicKey
	LiquidityDelta string
	TokenAAmount   uint64
	TokenBAmount   uint64
}

type EvtRemoveLiquidity struct {
	Pool           solana.PublicKey
	Position       solana.PublicKey
	Owner          solana.PublicKey
	LiquidityDelta string
	TokenAAmount   uint64
	TokenBAmount   uint64
}

type EvtPermanentLockPosition struct {
	Pool                    solana.PublicKey
	Position                solana.PublicKey
	LockedLiquidityDelta    string
	TotalPermanentLiquidity string
}

type EvtClaimPositionFee struct {
	Pool        solana.PublicKey
	Position    solana.PublicKey
	Owner       solana.PublicKey
	FeeAClaimed uint64
	FeeBClaimed uint64
}

type EvtClaimProtocolFee struct {
	Pool         solana.PublicKey
	TokenAAmount uint64
	TokenBAmount uint64
}

type EvtClaimPartnerFee struct {
	Pool         solana.PublicKey
	Partner      solana.PublicKey
	TokenAAmount uint64
	TokenBAmount uint64
}

type EvtInitializeReward struct {
	Pool           solana.PublicKey
	RewardMint     solana.PublicKey
	Funder         solana.PublicKey
	RewardIndex    uint8
	RewardDuration uint64
}

type EvtFundReward struct {
	Pool        solana.PublicKey
	Funder      solana.PublicKey
	RewardIndex uint8
	Amount      uint64
	// TotalAmount includes any carried-forward ineligible reward.
	TotalAmount uint64
}

type EvtClaimReward struct {
	Pool        solana.PublicKey
	Position    solana.PublicKey
	Owner       solana.PublicKey
	RewardIndex uint8
	TotalReward uint64
}

type EvtClaimIneligibleReward struct {
	Pool        solana.PublicKey
	RewardMint  solana.PublicKey
	RewardIndex uint8
	Amount      uint64
}
