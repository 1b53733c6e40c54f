package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// QuoteConfig holds the pool and trade parameters for a quote run.
type QuoteConfig struct {
	SqrtPrice          string
	SqrtMinPrice       string
	SqrtMaxPrice       string
	Liquidity          string
	FeeBps             uint64
	ProtocolFeePercent uint8
	PartnerFeePercent  uint8
	ReferralFeePercent uint8
	CollectFeeMode     uint8
	AmountIn           uint64
	AmountOut          uint64
	Direction          string
	Slippage           float64
	TokenADecimal      uint8
	TokenBDecimal      uint8
	LogLevel           string
}

// LoadQuote merges config file, environment variables, and flags.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("CPAMM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("fee-bps", 25)
	v.SetDefault("direction", "atob")
	v.SetDefault("slippage", 0.5)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return QuoteConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return QuoteConfig{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return QuoteConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := QuoteConfig{
		SqrtPrice:          v.GetString("sqrt-price"),
		SqrtMinPrice:       v.GetString("sqrt-min-price"),
		SqrtMaxPrice:       v.GetString("sqrt-max-price"),
		Liquidity:          v.GetString("liquidity"),
		FeeBps:             v.GetUint64("fee-bps"),
		ProtocolFeePercent: uint8(v.GetUint("protocol-fee-percent")),
		PartnerFeePercent:  uint8(v.GetUint("partner-fee-percent")),
		ReferralFeePercent: uint8(v.GetUint("referral-fee-percent")),
		CollectFeeMode:     uint8(v.GetUint("collect-fee-mode")),
		AmountIn:           v.GetUint64("amount-in"),
		AmountOut:          v.GetUint64("amount-out"),
		Direction:          v.GetString("direction"),
		Slippage:           v.GetFloat64("slippage"),
		TokenADecimal:      uint8(v.GetUint("token-a-decimal")),
		TokenBDecimal:      uint8(v.GetUint("token-b-decimal")),
		LogLevel:           v.GetString("log-level"),
	}

	return cfg, nil
}
