// Command cpamm quotes swaps and liquidity deposits against pool parameters
// supplied by flags, environment, or a config file. It runs the same engine
// code a host embeds, with no chain access.
package main

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/MeteoraAg/cp-amm-go/constants"
	"github.com/MeteoraAg/cp-amm-go/fees"
	"github.com/MeteoraAg/cp-amm-go/helpers"
	"github.com/MeteoraAg/cp-amm-go/maths"
	"github.com/MeteoraAg/cp-amm-go/state"
	"github.com/MeteoraAg/cp-amm-go/types"
)

func main() {
	root := &cobra.Command{
		Use:          "cpamm",
		Short:        "Constant-product AMM quote simulator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap against pool parameters",
		RunE:  runQuote,
	}
	addPoolFlags(quoteCmd)
	quoteCmd.Flags().Uint64("amount-in", 0, "input amount")
	quoteCmd.Flags().Uint64("amount-out", 0, "exact output amount (quotes the required input instead)")
	quoteCmd.Flags().String("direction", "atob", "trade direction (atob, btoa)")
	quoteCmd.Flags().Float64("slippage", 0.5, "slippage tolerance percent")

	root.AddCommand(quoteCmd)

	depositCmd := &cobra.Command{
		Use:   "deposit",
		Short: "Quote token amounts for a liquidity deposit",
		RunE:  runDeposit,
	}
	addPoolFlags(depositCmd)
	depositCmd.Flags().String("liquidity-delta", "", "liquidity delta to deposit")

	root.AddCommand(depositCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPoolFlags(cmd *cobra.Command) {
	cmd.Flags().String("sqrt-price", "", "current sqrt price (Q64.64)")
	cmd.Flags().String("sqrt-min-price", constants.MinSqrtPrice.String(), "minimum sqrt price")
	cmd.Flags().String("sqrt-max-price", constants.MaxSqrtPrice.String(), "maximum sqrt price")
	cmd.Flags().String("liquidity", "", "pool liquidity")
	cmd.Flags().Uint64("fee-bps", 25, "base fee in basis points")
	cmd.Flags().Uint("protocol-fee-percent", 20, "protocol share of the trade fee")
	cmd.Flags().Uint("partner-fee-percent", 0, "partner share of the protocol fee")
	cmd.Flags().Uint("referral-fee-percent", 0, "referral share of the protocol fee")
	cmd.Flags().Uint("collect-fee-mode", 0, "collect fee mode (0 both tokens, 1 only B)")
	cmd.Flags().Uint("token-a-decimal", 9, "token A decimals")
	cmd.Flags().Uint("token-b-decimal", 9, "token B decimals")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	pool, err := buildPool(cfg)
	if err != nil {
		return err
	}

	if cfg.AmountIn == 0 && cfg.AmountOut == 0 {
		return fmt.Errorf("amount-in or amount-out is required")
	}
	direction, err := parseDirection(cfg.Direction)
	if err != nil {
		return err
	}

	feeMode, err := fees.GetFeeMode(types.CollectFeeMode(pool.CollectFeeMode), direction, false)
	if err != nil {
		return err
	}

	amount, isExactOut := cfg.AmountIn, false
	if cfg.AmountOut > 0 {
		amount, isExactOut = cfg.AmountOut, true
	}
	result, err := pool.GetSwapResult(amount, feeMode, direction, 0, isExactOut)
	if err != nil {
		return err
	}

	minAmountOut := helpers.GetMinAmountWithSlippage(result.OutputAmount, cfg.Slippage)
	priceImpact := helpers.GetPriceImpact(result.NextSqrtPrice, pool.SqrtPrice.BigInt())

	logger.Info("swap quote",
		zap.String("direction", direction.String()),
		zap.Uint64("amount_in", result.InputAmount),
		zap.Uint64("amount_out", result.OutputAmount),
		zap.Uint64("min_amount_out", minAmountOut),
		zap.Uint64("lp_fee", result.LpFee),
		zap.Uint64("protocol_fee", result.ProtocolFee),
		zap.Uint64("partner_fee", result.PartnerFee),
		zap.String("next_sqrt_price", result.NextSqrtPrice.String()),
		zap.Float64("price_impact_pct", priceImpact),
	)

	price := helpers.GetPriceFromSqrtPrice(result.NextSqrtPrice, cfg.TokenADecimal, cfg.TokenBDecimal)
	fmt.Printf("amount_out=%d min_amount_out=%d next_price=%s\n", result.OutputAmount, minAmountOut, price.Text('f', 12))
	return nil
}

func runDeposit(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	pool, err := buildPool(cfg)
	if err != nil {
		return err
	}

	deltaStr, _ := cmd.Flags().GetString("liquidity-delta")
	liquidityDelta, err := parseBigInt(deltaStr, "liquidity-delta")
	if err != nil {
		return err
	}

	amounts, err := pool.GetAmountsForModifyLiquidity(liquidityDelta, types.RoundingUp)
	if err != nil {
		return err
	}

	logger.Info("deposit quote",
		zap.String("liquidity_delta", liquidityDelta.String()),
		zap.Uint64("token_a_amount", amounts.TokenAAmount),
		zap.Uint64("token_b_amount", amounts.TokenBAmount),
	)

	fmt.Printf("token_a_amount=%d token_b_amount=%d\n", amounts.TokenAAmount, amounts.TokenBAmount)
	return nil
}

func buildPool(cfg QuoteConfig) (*state.Pool, error) {
	sqrtPrice, err := parseBigInt(cfg.SqrtPrice, "sqrt-price")
	if err != nil {
		return nil, err
	}
	sqrtMinPrice, err := parseBigInt(cfg.SqrtMinPrice, "sqrt-min-price")
	if err != nil {
		return nil, err
	}
	sqrtMaxPrice, err := parseBigInt(cfg.SqrtMaxPrice, "sqrt-max-price")
	if err != nil {
		return nil, err
	}
	liquidity, err := parseBigInt(cfg.Liquidity, "liquidity")
	if err != nil {
		return nil, err
	}

	cliffFeeNumerator, err := maths.SafeMulU64(cfg.FeeBps, constants.FeeDenominator/constants.BasisPointMax)
	if err != nil {
		return nil, err
	}

	poolFees := fees.PoolFeesStruct{
		BaseFee: fees.BaseFeeStruct{
			CliffFeeNumerator: cliffFeeNumerator,
		},
		ProtocolFeePercent: cfg.ProtocolFeePercent,
		PartnerFeePercent:  cfg.PartnerFeePercent,
		ReferralFeePercent: cfg.ReferralFeePercent,
	}
	if err := poolFees.BaseFee.Validate(); err != nil {
		return nil, err
	}

	sqrtMinPriceU, err := helpers.BigIntToUint128(sqrtMinPrice)
	if err != nil {
		return nil, err
	}
	sqrtMaxPriceU, err := helpers.BigIntToUint128(sqrtMaxPrice)
	if err != nil {
		return nil, err
	}
	sqrtPriceU, err := helpers.BigIntToUint128(sqrtPrice)
	if err != nil {
		return nil, err
	}
	liquidityU, err := helpers.BigIntToUint128(liquidity)
	if err != nil {
		return nil, err
	}

	pool := new(state.Pool)
	pool.Initialize(
		poolFees,
		solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{},
		solana.PublicKey{}, solana.PublicKey{},
		sqrtMinPriceU,
		sqrtMaxPriceU,
		sqrtPriceU,
		liquidityU,
		0,
		types.ActivationTypeTimestamp,
		0, 0,
		types.CollectFeeMode(cfg.CollectFeeMode),
		types.PoolTypePermissionless,
	)
	return pool, nil
}

func parseBigInt(input, name string) (*big.Int, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	v, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s: %q", name, input)
	}
	return v, nil
}

func parseDirection(input string) (types.TradeDirection, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "atob", "a2b", "ab":
		return types.TradeDirectionAtoB, nil
	case "btoa", "b2a", "ba":
		return types.TradeDirectionBtoA, nil
	}
	return 0, fmt.Errorf("invalid direction: %q", input)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
