// Package cpamm is the host-facing operation layer over the pool engine.
// Each Engine method mirrors one program instruction: it validates access,
// runs the pure computation, commits the state transition, drives token
// movement through the configured TokenTransferor and returns the emitted
// event.
package cpamm

import (
	"context"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/MeteoraAg/cp-amm-go/constants"
	"github.com/MeteoraAg/cp-amm-go/curve"
	"github.com/MeteoraAg/cp-amm-go/fees"
	"github.com/MeteoraAg/cp-amm-go/helpers"
	"github.com/MeteoraAg/cp-amm-go/maths"
	"github.com/MeteoraAg/cp-amm-go/state"
	"github.com/MeteoraAg/cp-amm-go/types"
)

// Clock supplies the activation point sources. Pools gate on slots or on
// unix timestamps depending on their activation type.
type Clock interface {
	CurrentSlot() uint64
	CurrentTimestamp() uint64
}

// FixedClock is a Clock pinned to explicit values. Hosts replaying history
// and tests both use it.
type FixedClock struct {
	Slot      uint64
	Timestamp uint64
}

func (c FixedClock) CurrentSlot() uint64      { return c.Slot }
func (c FixedClock) CurrentTimestamp() uint64 { return c.Timestamp }

// TokenTransferor moves tokens between the pool's vaults and user accounts.
// The engine computes amounts; the transferor settles them.
type TokenTransferor interface {
	TransferFromUser(ctx context.Context, mint, from, to solana.PublicKey, amount uint64) error
	TransferFromPool(ctx context.Context, mint, vault, to solana.PublicKey, amount uint64) error
}

// NopTransferor satisfies TokenTransferor without moving anything, for
// hosts that only simulate.
type NopTransferor struct{}

func (NopTransferor) TransferFromUser(context.Context, solana.PublicKey, solana.PublicKey, solana.PublicKey, uint64) error {
	return nil
}

func (NopTransferor) TransferFromPool(context.Context, solana.PublicKey, solana.PublicKey, solana.PublicKey, uint64) error {
	return nil
}

// Engine executes pool operations against in-memory account state.
type Engine struct {
	clock      Clock
	transferor TokenTransferor
	logger     *zap.Logger
}

type EngineOption func(*Engine)

func WithClock(clock Clock) EngineOption {
	return func(e *Engine) { e.clock = clock }
}

func WithTransferor(transferor TokenTransferor) EngineOption {
	return func(e *Engine) { e.transferor = transferor }
}

func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		clock:      FixedClock{},
		transferor: NopTransferor{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// currentPoint reads the clock through the pool's activation type.
func (e *Engine) currentPoint(pool *state.Pool) uint64 {
	if types.ActivationType(pool.ActivationType) == types.ActivationTypeSlot {
		return e.clock.CurrentSlot()
	}
	return e.clock.CurrentTimestamp()
}

// InitializePool validates the requested parameters, fills the pool account
// and returns the token amounts the creator must deposit.
func (e *Engine) InitializePool(
	ctx context.Context,
	pool *state.Pool,
	poolAddress solana.PublicKey,
	poolFees fees.PoolFeesStruct,
	params types.InitializePoolParams,
) (*EvtInitializePool, error) {
	if err := poolFees.BaseFee.Validate(); err != nil {
		return nil, err
	}
	if !params.CollectFeeMode.Valid() {
		return nil, types.ErrInvalidCollectFeeMode
	}
	if params.SqrtMinPrice.Cmp(constants.MinSqrtPrice) < 0 ||
		params.SqrtMaxPrice.Cmp(constants.MaxSqrtPrice) > 0 ||
		params.SqrtMinPrice.Cmp(params.SqrtMaxPrice) >= 0 {
		return nil, types.ErrInvalidPriceRange
	}
	if params.SqrtPrice.Cmp(params.SqrtMinPrice) < 0 || params.SqrtPrice.Cmp(params.SqrtMaxPrice) > 0 {
		return nil, types.ErrInvalidPriceRange
	}
	if params.Liquidity.Sign() <= 0 {
		return nil, types.ErrAmountIsZero
	}

	tokenAAmount, tokenBAmount, err := curve.GetInitializeAmounts(
		params.SqrtMinPrice, params.SqrtMaxPrice, params.SqrtPrice, params.Liquidity,
	)
	if err != nil {
		return nil, err
	}

	sqrtMinPrice, err := helpers.BigIntToUint128(params.SqrtMinPrice)
	if err != nil {
		return nil, err
	}
	sqrtMaxPrice, err := helpers.BigIntToUint128(params.SqrtMaxPrice)
	if err != nil {
		return nil, err
	}
	sqrtPrice, err := helpers.BigIntToUint128(params.SqrtPrice)
	if err != nil {
		return nil, err
	}
	liquidity, err := helpers.BigIntToUint128(params.Liquidity)
	if err != nil {
		return nil, err
	}

	pool.Initialize(
		poolFees,
		params.TokenAMint, params.TokenBMint,
		params.TokenAVault, params.TokenBVault,
		params.WhitelistedVault, params.Partner,
		sqrtMinPrice, sqrtMaxPrice, sqrtPrice, liquidity,
		params.ActivationPoint, params.ActivationType,
		uint8(helpers.TokenProgramFlagToken), uint8(helpers.TokenProgramFlagToken),
		params.CollectFeeMode, params.PoolType,
	)

	if err := e.transferor.TransferFromUser(ctx, params.TokenAMint, params.Partner, params.TokenAVault, tokenAAmount); err != nil {
		return nil, err
	}
	if err := e.transferor.TransferFromUser(ctx, params.TokenBMint, params.Partner, params.TokenBVault, tokenBAmount); err != nil {
		return nil, err
	}

	e.logger.Info("pool initialized",
		zap.Stringer("pool", poolAddress),
		zap.String("liquidity", params.Liquidity.String()),
		zap.Uint64("token_a_amount", tokenAAmount),
		zap.Uint64("token_b_amount", tokenBAmount),
	)

	return &EvtInitializePool{
		Pool:            poolAddress,
		TokenAMint:      params.TokenAMint,
		TokenBMint:      params.TokenBMint,
		Liquidity:       params.Liquidity.String(),
		TokenAAmount:    tokenAAmount,
		TokenBAmount:    tokenBAmount,
		ActivationPoint: params.ActivationPoint,
	}, nil
}

// Swap executes an exact-in swap.
func (e *Engine) Swap(
	ctx context.Context,
	pool *state.Pool,
	poolAddress solana.PublicKey,
	params types.SwapParams,
	inputTransferFee *helpers.TransferFee,
) (*EvtSwap, error) {
	currentPoint := e.currentPoint(pool)
	access := state.GetPoolAccessValidator(pool, currentPoint)
	if !access.CanSwap(params.Payer) {
		return nil, types.ErrPoolDisabled
	}

	transferFeeExcluded, err := helpers.CalculateTransferFeeExcludedAmount(inputTransferFee, params.AmountIn)
	if err != nil {
		return nil, err
	}
	if transferFeeExcluded.Amount == 0 {
		return nil, types.ErrAmountIsZero
	}

	currentTimestamp := e.clock.CurrentTimestamp()
	if err := pool.UpdatePreSwap(currentTimestamp); err != nil {
		return nil, err
	}

	feeMode, err := fees.GetFeeMode(
		types.CollectFeeMode(pool.CollectFeeMode), params.TradeDirection, params.HasReferral,
	)
	if err != nil {
		return nil, err
	}

	swapResult, err := pool.GetSwapResult(
		transferFeeExcluded.Amount, feeMode, params.TradeDirection, currentPoint, false,
	)
	if err != nil {
		return nil, err
	}
	if swapResult.OutputAmount < params.MinimumAmountOut {
		return nil, types.ErrExceededSlippage
	}

	if err := pool.ApplySwapResult(&swapResult, feeMode, currentTimestamp); err != nil {
		return nil, err
	}

	if err := e.settleSwap(ctx, pool, params.Payer, params.TradeDirection, params.AmountIn, &swapResult, feeMode); err != nil {
		return nil, err
	}

	e.logger.Info("swap",
		zap.Stringer("pool", poolAddress),
		zap.Stringer("direction", params.TradeDirection),
		zap.Uint64("amount_in", swapResult.InputAmount),
		zap.Uint64("amount_out", swapResult.OutputAmount),
		zap.Uint64("lp_fee", swapResult.LpFee),
	)

	return &EvtSwap{
		Pool:                        poolAddress,
		TradeDirection:              params.TradeDirection,
		HasReferral:                 params.HasReferral,
		AmountIn:                    params.AmountIn,
		TransferFeeExcludedAmountIn: transferFeeExcluded.Amount,
		CurrentTimestamp:            currentTimestamp,
		SwapResult:                  swapResult,
	}, nil
}

// SwapExactOut executes a swap that must deliver exactly the requested
// output, bounding the input instead of the output.
func (e *Engine) SwapExactOut(
	ctx context.Context,
	pool *state.Pool,
	poolAddress solana.PublicKey,
	params types.SwapExactOutParams,
) (*EvtSwap, error) {
	currentPoint := e.currentPoint(pool)
	access := state.GetPoolAccessValidator(pool, currentPoint)
	if !access.CanSwap(params.Payer) {
		return nil, types.ErrPoolDisabled
	}
	if params.AmountOut == 0 {
		return nil, types.ErrAmountIsZero
	}

	currentTimestamp := e.clock.CurrentTimestamp()
	if err := pool.UpdatePreSwap(currentTimestamp); err != nil {
		return nil, err
	}

	feeMode, err := fees.GetFeeMode(
		types.CollectFeeMode(pool.CollectFeeMode), params.TradeDirection, params.HasReferral,
	)
	if err != nil {
		return nil, err
	}

	swapResult, err := pool.GetSwapResult(
		params.AmountOut, feeMode, params.TradeDirection, currentPoint, true,
	)
	if err != nil {
		return nil, err
	}
	if swapResult.InputAmount > params.MaximumAmountIn {
		return nil, types.ErrExceededSlippage
	}

	if err := pool.ApplySwapResult(&swapResult, feeMode, currentTimestamp); err != nil {
		return nil, err
	}

	if err := e.settleSwap(ctx, pool, params.Payer, params.TradeDirection, swapResult.InputAmount, &swapResult, feeMode); err != nil {
		return nil, err
	}

	e.logger.Info("swap exact out",
		zap.Stringer("pool", poolAddress),
		zap.Stringer("direction", params.TradeDirection),
		zap.Uint64("amount_in", swapResult.InputAmount),
		zap.Uint64("amount_out", swapResult.OutputAmount),
	)

	return &EvtSwap{
		Pool:                        poolAddress,
		TradeDirection:              params.TradeDirection,
		HasReferral:                 params.HasReferral,
		AmountIn:                    swapResult.InputAmount,
		TransferFeeExcludedAmountIn: swapResult.InputAmount,
		CurrentTimestamp:            currentTimestamp,
		SwapResult:                  swapResult,
	}, nil
}

// settleSwap moves the input to its vault, the output to the payer, and the
// referral fee to the payer-designated account. The referral fee leaves the
// vault of whichever token the fee was charged in.
func (e *Engine) settleSwap(
	ctx context.Context,
	pool *state.Pool,
	payer solana.PublicKey,
	tradeDirection types.TradeDirection,
	grossAmountIn uint64,
	swapResult *types.SwapResult,
	feeMode types.FeeMode,
) error {
	inputMint, outputMint := pool.TokenAMint, pool.TokenBMint
	inputVault, outputVault := pool.TokenAVault, pool.TokenBVault
	if tradeDirection == types.TradeDirectionBtoA {
		inputMint, outputMint = pool.TokenBMint, pool.TokenAMint
		inputVault, outputVault = pool.TokenBVault, pool.TokenAVault
	}

	if err := e.transferor.TransferFromUser(ctx, inputMint, payer, inputVault, grossAmountIn); err != nil {
		return err
	}
	if err := e.transferor.TransferFromPool(ctx, outputMint, outputVault, payer, swapResult.OutputAmount); err != nil {
		return err
	}

	if feeMode.HasReferral && swapResult.ReferralFee > 0 {
		feeMint, feeVault := pool.TokenBMint, pool.TokenBVault
		if feeMode.FeesOnTokenA {
			feeMint, feeVault = pool.TokenAMint, pool.TokenAVault
		}
		if err := e.transferor.TransferFromPool(ctx, feeMint, feeVault, payer, swapResult.ReferralFee); err != nil {
			return err
		}
	}
	return nil
}

// CreatePosition opens an empty position for owner.
func (e *Engine) CreatePosition(
	pool *state.Pool,
	poolAddress, owner, nftMint solana.PublicKey,
) (*state.Position, *EvtCreatePosition, error) {
	access := state.GetPoolAccessValidator(pool, e.currentPoint(pool))
	if !access.CanCreatePosition() {
		return nil, nil, types.ErrPoolDisabled
	}

	position := state.NewPosition(pool, poolAddress, nftMint)
	if err := pool.Metrics.IncPosition(); err != nil {
		return nil, nil, err
	}

	e.logger.Debug("position created",
		zap.Stringer("pool", poolAddress),
		zap.Stringer("owner", owner),
	)

	return position, &EvtCreatePosition{Pool: poolAddress, Owner: owner, NftMint: nftMint}, nil
}

// AddLiquidity deposits into a position. Thresholds cap the deposit
// amounts the owner is willing to pay for the liquidity delta.
func (e *Engine) AddLiquidity(
	ctx context.Context,
	pool *state.Pool,
	position *state.Position,
	owner solana.PublicKey,
	params types.AddLiquidityParams,
) (*EvtAddLiquidity, error) {
	access := state.GetPoolAccessValidator(pool, e.currentPoint(pool))
	if !access.CanAddLiquidity() {
		return nil, types.ErrPoolDisabled
	}

	liquidityDelta := params.LiquidityDelta.BigInt()
	if liquidityDelta.Sign() == 0 {
		return nil, types.ErrAmountIsZero
	}

	amounts, err := pool.GetAmountsForModifyLiquidity(liquidityDelta, types.RoundingUp)
	if err != nil {
		return nil, err
	}
	if amounts.TokenAAmount > params.TokenAAmountThreshold ||
		amounts.TokenBAmount > params.TokenBAmountThreshold {
		return nil, types.ErrExceededSlippage
	}

	// rewards accrue against the pre-change stake
	if err := position.UpdateRewards(pool, e.clock.CurrentTimestamp()); err != nil {
		return nil, err
	}
	if err := pool.ApplyAddLiquidity(position, liquidityDelta); err != nil {
		return nil, err
	}

	if err := e.transferor.TransferFromUser(ctx, pool.TokenAMint, owner, pool.TokenAVault, amounts.TokenAAmount); err != nil {
		return nil, err
	}
	if err := e.transferor.TransferFromUser(ctx, pool.TokenBMint, owner, pool.TokenBVault, amounts.TokenBAmount); err != nil {
		return nil, err
	}

	e.logger.Info("liquidity added",
		zap.Stringer("pool", position.Pool),
		zap.String("liquidity_delta", liquidityDelta.String()),
		zap.Uint64("token_a_amount", amounts.TokenAAmount),
		zap.Uint64("token_b_amount", amounts.TokenBAmount),
	)

	return &EvtAddLiquidity{
		Pool:           position.Pool,
		Position:       DerivePositionAddress(position.NftMint),
		Owner:          owner,
		LiquidityDelta: liquidityDelta.String(),
		TokenAAmount:   amounts.TokenAAmount,
		TokenBAmount:   amounts.TokenBAmount,
	}, nil
}

// RemoveLiquidity withdraws from a position. Thresholds are the minimum
// amounts the owner accepts for the liquidity delta.
func (e *Engine) RemoveLiquidity(
	ctx context.Context,
	pool *state.Pool,
	position *state.Position,
	owner solana.PublicKey,
	params types.RemoveLiquidityParams,
) (*EvtRemoveLiquidity, error) {
	access := state.GetPoolAccessValidator(pool, e.currentPoint(pool))
	if !access.CanRemoveLiquidity() {
		return nil, types.ErrPoolDisabled
	}

	liquidityDelta := params.LiquidityDelta.BigInt()
	if liquidityDelta.Sign() == 0 {
		return nil, types.ErrAmountIsZero
	}

	amounts, err := pool.GetAmountsForModifyLiquidity(liquidityDelta, types.RoundingDown)
	if err != nil {
		return nil, err
	}
	if amounts.TokenAAmount < params.TokenAAmountThreshold ||
		amounts.TokenBAmount < params.TokenBAmountThreshold {
		return nil, types.ErrExceededSlippage
	}

	if err := position.UpdateRewards(pool, e.clock.CurrentTimestamp()); err != nil {
		return nil, err
	}
	if err := pool.ApplyRemoveLiquidity(position, liquidityDelta); err != nil {
		return nil, err
	}

	if err := e.transferor.TransferFromPool(ctx, pool.TokenAMint, pool.TokenAVault, owner, amounts.TokenAAmount); err != nil {
		return nil, err
	}
	if err := e.transferor.TransferFromPool(ctx, pool.TokenBMint, pool.TokenBVault, owner, amounts.TokenBAmount); err != nil {
		return nil, err
	}

	e.logger.Info("liquidity removed",
		zap.Stringer("pool", position.Pool),
		zap.String("liquidity_delta", liquidityDelta.String()),
		zap.Uint64("token_a_amount", amounts.TokenAAmount),
		zap.Uint64("token_b_amount", amounts.TokenBAmount),
	)

	return &EvtRemoveLiquidity{
		Pool:           position.Pool,
		Position:       DerivePositionAddress(position.NftMint),
		Owner:          owner,
		LiquidityDelta: liquidityDelta.String(),
		TokenAAmount:   amounts.TokenAAmount,
		TokenBAmount:   amounts.TokenBAmount,
	}, nil
}

// PermanentLockPosition moves unlocked liquidity into the permanent bucket.
// The stake keeps earning fees and rewards but can never be withdrawn.
func (e *Engine) PermanentLockPosition(
	pool *state.Pool,
	position *state.Position,
	liquidityDelta *big.Int,
) (*EvtPermanentLockPosition, error) {
	if liquidityDelta.Sign() == 0 {
		return nil, types.ErrAmountIsZero
	}

	if err := position.LockPermanently(liquidityDelta); err != nil {
		return nil, err
	}
	if err := pool.AccumulatePermanentLockedLiquidity(liquidityDelta); err != nil {
		return nil, err
	}

	return &EvtPermanentLockPosition{
		Pool:                    position.Pool,
		Position:                DerivePositionAddress(position.NftMint),
		LockedLiquidityDelta:    liquidityDelta.String(),
		TotalPermanentLiquidity: pool.PermanentLockLiquidity.BigInt().String(),
	}, nil
}

// ClaimPositionFee pays out a position's accumulated trading fees.
func (e *Engine) ClaimPositionFee(
	ctx context.Context,
	pool *state.Pool,
	position *state.Position,
	owner solana.PublicKey,
) (*EvtClaimPositionFee, error) {
	if err := position.UpdateFee(pool.FeeAPerLiquidityBig(), pool.FeeBPerLiquidityBig()); err != nil {
		return nil, err
	}

	feeA, feeB, err := position.ClaimFee()
	if err != nil {
		return nil, err
	}

	if feeA > 0 {
		if err := e.transferor.TransferFromPool(ctx, pool.TokenAMint, pool.TokenAVault, owner, feeA); err != nil {
			return nil, err
		}
	}
	if feeB > 0 {
		if err := e.transferor.TransferFromPool(ctx, pool.TokenBMint, pool.TokenBVault, owner, feeB); err != nil {
			return nil, err
		}
	}

	e.logger.Info("position fee claimed",
		zap.Stringer("pool", position.Pool),
		zap.Uint64("fee_a", feeA),
		zap.Uint64("fee_b", feeB),
	)

	return &EvtClaimPositionFee{
		Pool:        position.Pool,
		Position:    DerivePositionAddress(position.NftMint),
		Owner:       owner,
		FeeAClaimed: feeA,
		FeeBClaimed: feeB,
	}, nil
}

// ClaimProtocolFee sweeps the protocol's fee balances to the treasury.
func (e *Engine) ClaimProtocolFee(
	ctx context.Context,
	pool *state.Pool,
	poolAddress, treasuryA, treasuryB solana.PublicKey,
) (*EvtClaimProtocolFee, error) {
	tokenAAmount, tokenBAmount := pool.ClaimProtocolFee()

	if tokenAAmount > 0 {
		if err := e.transferor.TransferFromPool(ctx, pool.TokenAMint, pool.TokenAVault, treasuryA, tokenAAmount); err != nil {
			return nil, err
		}
	}
	if tokenBAmount > 0 {
		if err := e.transferor.TransferFromPool(ctx, pool.TokenBMint, pool.TokenBVault, treasuryB, tokenBAmount); err != nil {
			return nil, err
		}
	}

	e.logger.Info("protocol fee claimed",
		zap.Stringer("pool", poolAddress),
		zap.Uint64("token_a_amount", tokenAAmount),
		zap.Uint64("token_b_amount", tokenBAmount),
	)

	return &EvtClaimProtocolFee{
		Pool:         poolAddress,
		TokenAAmount: tokenAAmount,
		TokenBAmount: tokenBAmount,
	}, nil
}

// ClaimPartnerFee pays the pool's partner up to the requested maxima.
func (e *Engine) ClaimPartnerFee(
	ctx context.Context,
	pool *state.Pool,
	poolAddress solana.PublicKey,
	maxAmountA, maxAmountB uint64,
) (*EvtClaimPartnerFee, error) {
	tokenAAmount, tokenBAmount, err := pool.ClaimPartnerFee(maxAmountA, maxAmountB)
	if err != nil {
		return nil, err
	}

	if tokenAAmount > 0 {
		if err := e.transferor.TransferFromPool(ctx, pool.TokenAMint, pool.TokenAVault, pool.Partner, tokenAAmount); err != nil {
			return nil, err
		}
	}
	if tokenBAmount > 0 {
		if err := e.transferor.TransferFromPool(ctx, pool.TokenBMint, pool.TokenBVault, pool.Partner, tokenBAmount); err != nil {
			return nil, err
		}
	}

	return &EvtClaimPartnerFee{
		Pool:         poolAddress,
		Partner:      pool.Partner,
		TokenAAmount: tokenAAmount,
		TokenBAmount: tokenBAmount,
	}, nil
}

// InitializeReward opens one of the pool's reward slots.
func (e *Engine) InitializeReward(
	pool *state.Pool,
	poolAddress solana.PublicKey,
	params types.InitializeRewardParams,
) (*EvtInitializeReward, error) {
	if int(params.Index) >= constants.NumRewards {
		return nil, types.ErrInvalidRewardIndex
	}
	if params.RewardDuration < constants.MinRewardDuration ||
		params.RewardDuration > constants.MaxRewardDuration {
		return nil, types.ErrInvalidRewardDuration
	}

	rewardInfo := &pool.RewardInfos[params.Index]
	if rewardInfo.IsInitialized() {
		return nil, types.ErrRewardInitialized
	}

	rewardInfo.InitReward(
		params.Mint, params.Vault, params.Funder,
		params.RewardDuration,
		uint8(helpers.TokenProgramFlagToken),
	)

	e.logger.Info("reward initialized",
		zap.Stringer("pool", poolAddress),
		zap.Uint8("reward_index", params.Index),
		zap.Uint64("reward_duration", params.RewardDuration),
	)

	return &EvtInitializeReward{
		Pool:           poolAddress,
		RewardMint:     params.Mint,
		Funder:         params.Funder,
		RewardIndex:    params.Index,
		RewardDuration: params.RewardDuration,
	}, nil
}

// FundReward tops up a reward slot and restarts its emission window. With
// CarryForward the banked empty-liquidity reward is folded into the new
// window instead of staying claimable by the funder.
func (e *Engine) FundReward(
	ctx context.Context,
	pool *state.Pool,
	poolAddress solana.PublicKey,
	funder solana.PublicKey,
	params types.FundRewardParams,
) (*EvtFundReward, error) {
	if int(params.Index) >= constants.NumRewards {
		return nil, types.ErrInvalidRewardIndex
	}
	rewardInfo := &pool.RewardInfos[params.Index]
	if !rewardInfo.IsInitialized() {
		return nil, types.ErrRewardUninitialized
	}
	if !rewardInfo.IsValidFunder(funder) {
		return nil, types.ErrInvalidFunder
	}
	if params.Amount == 0 {
		return nil, types.ErrAmountIsZero
	}

	currentTime := e.clock.CurrentTimestamp()
	if err := pool.UpdateRewards(currentTime); err != nil {
		return nil, err
	}

	totalAmount := params.Amount
	if params.CarryForward {
		carried, err := pool.ClaimIneligibleReward(int(params.Index))
		if err != nil {
			return nil, err
		}
		if carried > 0 {
			var aerr error
			if totalAmount, aerr = maths.SafeAddU64(params.Amount, carried); aerr != nil {
				return nil, aerr
			}
		}
	}

	if err := rewardInfo.UpdateRateAfterFunding(currentTime, totalAmount); err != nil {
		return nil, err
	}

	if err := e.transferor.TransferFromUser(ctx, rewardInfo.Mint, funder, rewardInfo.Vault, params.Amount); err != nil {
		return nil, err
	}

	e.logger.Info("reward funded",
		zap.Stringer("pool", poolAddress),
		zap.Uint8("reward_index", params.Index),
		zap.Uint64("amount", params.Amount),
		zap.Uint64("total_amount", totalAmount),
	)

	return &EvtFundReward{
		Pool:        poolAddress,
		Funder:      funder,
		RewardIndex: params.Index,
		Amount:      params.Amount,
		TotalAmount: totalAmount,
	}, nil
}

// ClaimReward pays out a position's pending reward for one slot.
func (e *Engine) ClaimReward(
	ctx context.Context,
	pool *state.Pool,
	position *state.Position,
	owner solana.PublicKey,
	rewardIndex uint8,
	rewardVault solana.PublicKey,
) (*EvtClaimReward, error) {
	if int(rewardIndex) >= constants.NumRewards {
		return nil, types.ErrInvalidRewardIndex
	}
	rewardInfo := &pool.RewardInfos[rewardIndex]
	if !rewardInfo.IsInitialized() {
		return nil, types.ErrRewardUninitialized
	}
	if !rewardInfo.Vault.Equals(rewardVault) {
		return nil, types.ErrInvalidRewardVault
	}

	if err := position.UpdateRewards(pool, e.clock.CurrentTimestamp()); err != nil {
		return nil, err
	}

	totalReward, err := position.ClaimReward(int(rewardIndex))
	if err != nil {
		return nil, err
	}

	if totalReward > 0 {
		if err := e.transferor.TransferFromPool(ctx, rewardInfo.Mint, rewardInfo.Vault, owner, totalReward); err != nil {
			return nil, err
		}
	}

	e.logger.Info("reward claimed",
		zap.Stringer("pool", position.Pool),
		zap.Uint8("reward_index", rewardIndex),
		zap.Uint64("total_reward", totalReward),
	)

	return &EvtClaimReward{
		Pool:        position.Pool,
		Position:    DerivePositionAddress(position.NftMint),
		Owner:       owner,
		RewardIndex: rewardIndex,
		TotalReward: totalReward,
	}, nil
}

// ClaimIneligibleReward returns reward emitted while the pool had no
// liquidity back to the funder.
func (e *Engine) ClaimIneligibleReward(
	ctx context.Context,
	pool *state.Pool,
	poolAddress solana.PublicKey,
	funder solana.PublicKey,
	rewardIndex uint8,
) (*EvtClaimIneligibleReward, error) {
	if int(rewardIndex) >= constants.NumRewards {
		return nil, types.ErrInvalidRewardIndex
	}
	rewardInfo := &pool.RewardInfos[rewardIndex]
	if !rewardInfo.IsInitialized() {
		return nil, types.ErrRewardUninitialized
	}
	if !rewardInfo.IsValidFunder(funder) {
		return nil, types.ErrInvalidFunder
	}

	if err := pool.UpdateRewards(e.clock.CurrentTimestamp()); err != nil {
		return nil, err
	}

	amount, err := pool.ClaimIneligibleReward(int(rewardIndex))
	if err != nil {
		return nil, err
	}

	if amount > 0 {
		if err := e.transferor.TransferFromPool(ctx, rewardInfo.Mint, rewardInfo.Vault, funder, amount); err != nil {
			return nil, err
		}
	}

	return &EvtClaimIneligibleReward{
		Pool:        poolAddress,
		RewardMint:  rewardInfo.Mint,
		RewardIndex: rewardIndex,
		Amount:      amount,
	}, nil
}
