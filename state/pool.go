// Package state owns the persisted pool, position and reward accounts and
// the accounting state machine over them.
//
// Every mutating entry point computes first and commits second: a failed
// computation leaves the account untouched, so a host can discard the whole
// operation on any error.
package state

import (
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/MeteoraAg/cp-amm-go/constants"
	"github.com/MeteoraAg/cp-amm-go/curve"
	"github.com/MeteoraAg/cp-amm-go/fees"
	"github.com/MeteoraAg/cp-amm-go/helpers"
	"github.com/MeteoraAg/cp-amm-go/maths"
	"github.com/MeteoraAg/cp-amm-go/types"
)

// Pool is the central account: one per trading pair and configuration.
// Reserves are implicit in (liquidity, sqrt price) on the bounded range
// [SqrtMinPrice, SqrtMaxPrice].
type Pool struct {
	PoolFees         fees.PoolFeesStruct
	TokenAMint       solana.PublicKey
	TokenBMint       solana.PublicKey
	TokenAVault      solana.PublicKey
	TokenBVault      solana.PublicKey
	// WhitelistedVault may buy before the activation point.
	WhitelistedVault solana.PublicKey
	Partner          solana.PublicKey
	// Liquidity is the virtual constant-product liquidity share.
	Liquidity bin.Uint128
	// Padding previously held the reserve amount.
	Padding      bin.Uint128
	ProtocolAFee uint64
	ProtocolBFee uint64
	PartnerAFee  uint64
	PartnerBFee  uint64
	SqrtMinPrice bin.Uint128
	SqrtMaxPrice bin.Uint128
	// SqrtPrice is the current price, Q64.64.
	SqrtPrice bin.Uint128
	// ActivationPoint is a slot or timestamp per ActivationType.
	ActivationPoint uint64
	ActivationType  uint8
	PoolStatus      uint8
	TokenAFlag      uint8
	TokenBFlag      uint8
	CollectFeeMode  uint8
	PoolType        uint8
	Padding0        [2]uint8
	// FeeAPerLiquidity is the cumulative fee per liquidity unit, 256-bit
	// little-endian, scaled by LiquidityScale.
	FeeAPerLiquidity       [32]uint8
	FeeBPerLiquidity       [32]uint8
	PermanentLockLiquidity bin.Uint128
	Metrics                PoolMetrics
	Padding1               [10]uint64
	RewardInfos            [constants.NumRewards]RewardInfo
}

// Initialize fills a freshly created pool account.
func (p *Pool) Initialize(
	poolFees fees.PoolFeesStruct,
	tokenAMint, tokenBMint, tokenAVault, tokenBVault solana.PublicKey,
	whitelistedVault, partner solana.PublicKey,
	sqrtMinPrice, sqrtMaxPrice, sqrtPrice, liquidity bin.Uint128,
	activationPoint uint64,
	activationType types.ActivationType,
	tokenAFlag, tokenBFlag uint8,
	collectFeeMode types.CollectFeeMode,
	poolType types.PoolType,
) {
	p.PoolFees = poolFees
	p.TokenAMint = tokenAMint
	p.TokenBMint = tokenBMint
	p.TokenAVault = tokenAVault
	p.TokenBVault = tokenBVault
	p.WhitelistedVault = whitelistedVault
	p.Partner = partner
	p.SqrtMinPrice = sqrtMinPrice
	p.SqrtMaxPrice = sqrtMaxPrice
	p.SqrtPrice = sqrtPrice
	p.Liquidity = liquidity
	p.ActivationPoint = activationPoint
	p.ActivationType = uint8(activationType)
	p.TokenAFlag = tokenAFlag
	p.TokenBFlag = tokenBFlag
	p.CollectFeeMode = uint8(collectFeeMode)
	p.PoolType = uint8(poolType)
}

func (p *Pool) FeeAPerLiquidityBig() *big.Int {
	return helpers.U256FromLE(p.FeeAPerLiquidity)
}

func (p *Pool) FeeBPerLiquidityBig() *big.Int {
	return helpers.U256FromLE(p.FeeBPerLiquidity)
}

func (p *Pool) PoolRewardInitialized() bool {
	return p.RewardInfos[0].IsInitialized() || p.RewardInfos[1].IsInitialized()
}

// GetSwapResult computes a full swap without mutating the pool. amount is
// the gross amount for exact-in, or the required output for exact-out.
func (p *Pool) GetSwapResult(
	amount uint64,
	feeMode types.FeeMode,
	tradeDirection types.TradeDirection,
	currentPoint uint64,
	isSwapExactOut bool,
) (types.SwapResult, error) {
	var (
		actualProtocolFee uint64
		actualLpFee       uint64
		actualReferralFee uint64
		actualPartnerFee  uint64
	)

	// fee on the amount entering the curve: exact-in pays it on input when
	// the fee token is the input token; exact-out resolves the
	// fee-inclusive output first when the fee token is the output token.
	actualAmount := amount
	applyFeeBeforeCurve := (isSwapExactOut && !feeMode.FeesOnInput) ||
		(!isSwapExactOut && feeMode.FeesOnInput)
	if applyFeeBeforeCurve {
		feeResult, err := p.PoolFees.GetFeeOnAmount(
			amount,
			feeMode.HasReferral,
			currentPoint,
			p.ActivationPoint,
			isSwapExactOut,
		)
		if err != nil {
			return types.SwapResult{}, err
		}
		actualProtocolFee = feeResult.ProtocolFee
		actualLpFee = feeResult.LpFee
		actualReferralFee = feeResult.ReferralFee
		actualPartnerFee = feeResult.PartnerFee
		actualAmount = feeResult.Amount
	}

	var (
		swapAmount types.SwapAmount
		err        error
	)
	switch tradeDirection {
	case types.TradeDirectionAtoB:
		swapAmount, err = p.getSwapResultFromAToB(actualAmount, isSwapExactOut)
	case types.TradeDirectionBtoA:
		swapAmount, err = p.getSwapResultFromBToA(actualAmount, isSwapExactOut)
	}
	if err != nil {
		return types.SwapResult{}, err
	}

	inputAmount, outputAmount := amount, swapAmount.OutputAmount
	if isSwapExactOut {
		inputAmount, outputAmount = swapAmount.OutputAmount, amount
		if feeMode.FeesOnInput {
			feeResult, ferr := p.PoolFees.GetFeeOnAmount(
				swapAmount.OutputAmount,
				feeMode.HasReferral,
				currentPoint,
				p.ActivationPoint,
				isSwapExactOut,
			)
			if ferr != nil {
				return types.SwapResult{}, ferr
			}
			actualProtocolFee = feeResult.ProtocolFee
			actualLpFee = feeResult.LpFee
			actualReferralFee = feeResult.ReferralFee
			actualPartnerFee = feeResult.PartnerFee
			inputAmount = feeResult.Amount
		}
	} else if !feeMode.FeesOnInput {
		feeResult, ferr := p.PoolFees.GetFeeOnAmount(
			swapAmount.OutputAmount,
			feeMode.HasReferral,
			currentPoint,
			p.ActivationPoint,
			isSwapExactOut,
		)
		if ferr != nil {
			return types.SwapResult{}, ferr
		}
		actualProtocolFee = feeResult.ProtocolFee
		actualLpFee = feeResult.LpFee
		actualReferralFee = feeResult.ReferralFee
		actualPartnerFee = feeResult.PartnerFee
		outputAmount = feeResult.Amount
	}

	return types.SwapResult{
		InputAmount:   inputAmount,
		OutputAmount:  outputAmount,
		NextSqrtPrice: swapAmount.NextSqrtPrice,
		LpFee:         actualLpFee,
		ProtocolFee:   actualProtocolFee,
		PartnerFee:    actualPartnerFee,
		ReferralFee:   actualReferralFee,
	}, nil
}

func (p *Pool) getSwapResultFromAToB(amount uint64, isSwapExactOut bool) (types.SwapAmount, error) {
	sqrtPrice, liquidity := p.SqrtPrice.BigInt(), p.Liquidity.BigInt()

	var (
		nextSqrtPrice *big.Int
		err           error
	)
	if isSwapExactOut {
		// output is token B, price moves down far enough to cover it
		nextSqrtPrice, err = curve.GetNextSqrtPriceFromOutput(sqrtPrice, liquidity, amount, true)
	} else {
		nextSqrtPrice, err = curve.GetNextSqrtPriceFromInput(sqrtPrice, liquidity, amount, true)
	}
	if err != nil {
		return types.SwapAmount{}, err
	}

	if nextSqrtPrice.Cmp(p.SqrtMinPrice.BigInt()) < 0 {
		return types.SwapAmount{}, types.ErrPriceRangeViolation
	}

	var outputAmount uint64
	if isSwapExactOut {
		// required input, rounded against the swapper
		outputAmount, err = curve.GetDeltaAmountAUnsigned(nextSqrtPrice, sqrtPrice, liquidity, types.RoundingUp)
	} else {
		outputAmount, err = curve.GetDeltaAmountBUnsigned(nextSqrtPrice, sqrtPrice, liquidity, types.RoundingDown)
	}
	if err != nil {
		return types.SwapAmount{}, err
	}

	return types.SwapAmount{OutputAmount: outputAmount, NextSqrtPrice: nextSqrtPrice}, nil
}

func (p *Pool) getSwapResultFromBToA(amount uint64, isSwapExactOut bool) (types.SwapAmount, error) {
	sqrtPrice, liquidity := p.SqrtPrice.BigInt(), p.Liquidity.BigInt()

	var (
		nextSqrtPrice *big.Int
		err           error
	)
	if isSwapExactOut {
		// output is token A, price moves up
		nextSqrtPrice, err = curve.GetNextSqrtPriceFromOutput(sqrtPrice, liquidity, amount, false)
	} else {
		nextSqrtPrice, err = curve.GetNextSqrtPriceFromInput(sqrtPrice, liquidity, amount, false)
	}
	if err != nil {
		return types.SwapAmount{}, err
	}

	if nextSqrtPrice.Cmp(p.SqrtMaxPrice.BigInt()) > 0 {
		return types.SwapAmount{}, types.ErrPriceRangeViolation
	}

	var outputAmount uint64
	if isSwapExactOut {
		outputAmount, err = curve.GetDeltaAmountBUnsigned(sqrtPrice, nextSqrtPrice, liquidity, types.RoundingUp)
	} else {
		outputAmount, err = curve.GetDeltaAmountAUnsigned(sqrtPrice, nextSqrtPrice, liquidity, types.RoundingDown)
	}
	if err != nil {
		return types.SwapAmount{}, err
	}

	return types.SwapAmount{OutputAmount: outputAmount, NextSqrtPrice: nextSqrtPrice}, nil
}

// ApplySwapResult commits a computed swap: price, fee balances, the
// per-liquidity fee accumulator, metrics and post-swap dynamic fee state.
// Call at most once per result; a second call double-counts.
func (p *Pool) ApplySwapResult(
	swapResult *types.SwapResult,
	feeMode types.FeeMode,
	currentTimestamp uint64,
) error {
	oldSqrtPrice := p.SqrtPrice.BigInt()

	nextSqrtPrice, err := helpers.BigIntToUint128(swapResult.NextSqrtPrice)
	if err != nil {
		return err
	}

	feePerTokenStored, err := maths.ShlDiv(
		new(big.Int).SetUint64(swapResult.LpFee),
		p.Liquidity.BigInt(),
		constants.LiquidityScale,
		types.RoundingDown,
		maths.Width256,
	)
	if err != nil {
		return err
	}

	if feeMode.FeesOnTokenA {
		partnerFee, err := maths.SafeAddU64(p.PartnerAFee, swapResult.PartnerFee)
		if err != nil {
			return err
		}
		protocolFee, err := maths.SafeAddU64(p.ProtocolAFee, swapResult.ProtocolFee)
		if err != nil {
			return err
		}
		accumulator, err := maths.CheckedAdd(p.FeeAPerLiquidityBig(), feePerTokenStored, maths.Width256)
		if err != nil {
			return err
		}
		le, err := helpers.U256ToLE(accumulator)
		if err != nil {
			return err
		}
		if err := p.Metrics.AccumulateFee(swapResult.LpFee, swapResult.ProtocolFee, swapResult.PartnerFee, true); err != nil {
			return err
		}
		p.PartnerAFee, p.ProtocolAFee, p.FeeAPerLiquidity = partnerFee, protocolFee, le
	} else {
		partnerFee, err := maths.SafeAddU64(p.PartnerBFee, swapResult.PartnerFee)
		if err != nil {
			return err
		}
		protocolFee, err := maths.SafeAddU64(p.ProtocolBFee, swapResult.ProtocolFee)
		if err != nil {
			return err
		}
		accumulator, err := maths.CheckedAdd(p.FeeBPerLiquidityBig(), feePerTokenStored, maths.Width256)
		if err != nil {
			return err
		}
		le, err := helpers.U256ToLE(accumulator)
		if err != nil {
			return err
		}
		if err := p.Metrics.AccumulateFee(swapResult.LpFee, swapResult.ProtocolFee, swapResult.PartnerFee, false); err != nil {
			return err
		}
		p.PartnerBFee, p.ProtocolBFee, p.FeeBPerLiquidity = partnerFee, protocolFee, le
	}

	p.SqrtPrice = nextSqrtPrice
	return p.UpdatePostSwap(oldSqrtPrice, currentTimestamp)
}

// UpdatePreSwap opens the dynamic fee reference window before the swap
// computation reads the fee numerator.
func (p *Pool) UpdatePreSwap(currentTimestamp uint64) error {
	if p.PoolFees.DynamicFee.IsDynamicFeeEnabled() {
		return p.PoolFees.DynamicFee.UpdateReferences(p.SqrtPrice.BigInt(), currentTimestamp)
	}
	return nil
}

// UpdatePostSwap accumulates volatility and, only when the price crossed a
// bin, restamps the reference window so micro-moves are not over-counted.
func (p *Pool) UpdatePostSwap(oldSqrtPrice *big.Int, currentTimestamp uint64) error {
	if !p.PoolFees.DynamicFee.IsDynamicFeeEnabled() {
		return nil
	}

	if err := p.PoolFees.DynamicFee.UpdateVolatilityAccumulator(p.SqrtPrice.BigInt()); err != nil {
		return err
	}

	deltaPrice, err := fees.GetDeltaBinID(
		p.PoolFees.DynamicFee.BinStepU128.BigInt(),
		oldSqrtPrice,
		p.SqrtPrice.BigInt(),
	)
	if err != nil {
		return err
	}
	if deltaPrice.Sign() > 0 {
		p.PoolFees.DynamicFee.LastUpdateTimestamp = currentTimestamp
	}
	return nil
}

// GetAmountsForModifyLiquidity prices a liquidity delta against the pool's
// full range at the current price. Deposits round up, withdrawals down.
func (p *Pool) GetAmountsForModifyLiquidity(
	liquidityDelta *big.Int,
	round types.Rounding,
) (types.ModifyLiquidityResult, error) {
	tokenAAmount, err := curve.GetDeltaAmountAUnsigned(
		p.SqrtPrice.BigInt(),
		p.SqrtMaxPrice.BigInt(),
		liquidityDelta,
		round,
	)
	if err != nil {
		return types.ModifyLiquidityResult{}, err
	}

	tokenBAmount, err := curve.GetDeltaAmountBUnsigned(
		p.SqrtMinPrice.BigInt(),
		p.SqrtPrice.BigInt(),
		liquidityDelta,
		round,
	)
	if err != nil {
		return types.ModifyLiquidityResult{}, err
	}

	return types.ModifyLiquidityResult{TokenAAmount: tokenAAmount, TokenBAmount: tokenBAmount}, nil
}

// ApplyAddLiquidity credits pending fees to the position, then grows both
// liquidity totals.
func (p *Pool) ApplyAddLiquidity(position *Position, liquidityDelta *big.Int) error {
	if err := position.UpdateFee(p.FeeAPerLiquidityBig(), p.FeeBPerLiquidityBig()); err != nil {
		return err
	}

	if err := position.AddLiquidity(liquidityDelta); err != nil {
		return err
	}

	liquidity, err := addU128Big(p.Liquidity, liquidityDelta)
	if err != nil {
		return err
	}
	p.Liquidity = liquidity
	return nil
}

// ApplyRemoveLiquidity credits pending fees to the position, then shrinks
// both liquidity totals.
func (p *Pool) ApplyRemoveLiquidity(position *Position, liquidityDelta *big.Int) error {
	if err := position.UpdateFee(p.FeeAPerLiquidityBig(), p.FeeBPerLiquidityBig()); err != nil {
		return err
	}

	if err := position.RemoveUnlockedLiquidity(liquidityDelta); err != nil {
		return err
	}

	liquidity, err := subU128Big(p.Liquidity, liquidityDelta)
	if err != nil {
		return err
	}
	p.Liquidity = liquidity
	return nil
}

// GetMaxAmountIn is the largest input that keeps the price inside the
// pool's bounds, saturating at the 64-bit ceiling.
func (p *Pool) GetMaxAmountIn(tradeDirection types.TradeDirection) (uint64, error) {
	var (
		amount *big.Int
		err    error
	)
	switch tradeDirection {
	case types.TradeDirectionAtoB:
		amount, err = curve.GetDeltaAmountAUnsignedUnchecked(
			p.SqrtMinPrice.BigInt(),
			p.SqrtPrice.BigInt(),
			p.Liquidity.BigInt(),
			types.RoundingDown,
		)
	case types.TradeDirectionBtoA:
		amount, err = curve.GetDeltaAmountBUnsignedUnchecked(
			p.SqrtPrice.BigInt(),
			p.SqrtMaxPrice.BigInt(),
			p.Liquidity.BigInt(),
			types.RoundingDown,
		)
	}
	if err != nil {
		return 0, err
	}

	if amount.Cmp(constants.U64Max) > 0 {
		return ^uint64(0), nil
	}
	return maths.CastU64(amount)
}

// AccumulatePermanentLockedLiquidity tracks liquidity locked forever.
func (p *Pool) AccumulatePermanentLockedLiquidity(permanentLockedLiquidity *big.Int) error {
	locked, err := addU128Big(p.PermanentLockLiquidity, permanentLockedLiquidity)
	if err != nil {
		return err
	}
	p.PermanentLockLiquidity = locked
	return nil
}

// ClaimProtocolFee zeroes and returns both protocol fee balances. Claiming
// zero is a no-op yielding zero amounts.
func (p *Pool) ClaimProtocolFee() (tokenAAmount, tokenBAmount uint64) {
	tokenAAmount, tokenBAmount = p.ProtocolAFee, p.ProtocolBFee
	p.ProtocolAFee, p.ProtocolBFee = 0, 0
	return tokenAAmount, tokenBAmount
}

// ClaimPartnerFee drains up to the requested maxima from the partner fee
// balances.
func (p *Pool) ClaimPartnerFee(maxAmountA, maxAmountB uint64) (tokenAAmount, tokenBAmount uint64, err error) {
	tokenAAmount = min(p.PartnerAFee, maxAmountA)
	tokenBAmount = min(p.PartnerBFee, maxAmountB)

	remainingA, err := maths.SafeSubU64(p.PartnerAFee, tokenAAmount)
	if err != nil {
		return 0, 0, err
	}
	remainingB, err := maths.SafeSubU64(p.PartnerBFee, tokenBAmount)
	if err != nil {
		return 0, 0, err
	}
	p.PartnerAFee, p.PartnerBFee = remainingA, remainingB
	return tokenAAmount, tokenBAmount, nil
}

// UpdateRewards accrues every initialized reward slot up to currentTime.
func (p *Pool) UpdateRewards(currentTime uint64) error {
	for i := range p.RewardInfos {
		if err := p.RewardInfos[i].UpdateRewards(p.Liquidity.BigInt(), currentTime); err != nil {
			return err
		}
	}
	return nil
}

// ClaimIneligibleReward converts the banked empty-liquidity seconds of one
// slot into a reward amount and resets the bank.
func (p *Pool) ClaimIneligibleReward(rewardIndex int) (uint64, error) {
	if rewardIndex < 0 || rewardIndex >= constants.NumRewards {
		return 0, types.ErrInvalidRewardIndex
	}

	rewardInfo := &p.RewardInfos[rewardIndex]
	ineligibleReward, err := maths.SafeMulShrCastU64(
		new(big.Int).SetUint64(rewardInfo.CumulativeSecondsWithEmptyLiquidityReward),
		rewardInfo.RewardRate.BigInt(),
		constants.RewardRateScale,
		types.RoundingDown,
	)
	if err != nil {
		return 0, err
	}

	rewardInfo.CumulativeSecondsWithEmptyLiquidityReward = 0
	return ineligibleReward, nil
}
