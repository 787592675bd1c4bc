// Package config loads the declarative pool configuration a host process
// needs to construct a types.Pool: the token list, decimals, initial rates,
// amplification coefficient, and fee schedule. Grounded on the teacher's app
// config layer (viper-backed TOML/env loading of x/dex module parameters);
// this package plays the same role for a host binary that embeds the
// stableswap library outside of a chain's genesis/params flow.
package config

import (
	"fmt"
	"strings"

	"cosmossdk.io/math"
	"github.com/spf13/viper"

	"github.com/lumen-amm/stableswap/x/stableswap/types"
)

// TokenConfig is one constituent token's declarative setup.
type TokenConfig struct {
	ID             string `mapstructure:"id"`
	Decimals       uint32 `mapstructure:"decimals"`
	RateKind       string `mapstructure:"rate_kind"` // "constant" or "external"
	ConstantRate   string `mapstructure:"constant_rate"`
	OracleID       string `mapstructure:"oracle_id"`
	RateTTLMs      int64  `mapstructure:"rate_ttl_ms"`
}

// PoolConfig is the full declarative description of a pool, as loaded from
// file or environment.
type PoolConfig struct {
	Tokens      []TokenConfig `mapstructure:"tokens"`
	AmpCoef     uint64        `mapstructure:"amp_coef"`
	TradeFee    string        `mapstructure:"trade_fee"`
	ProtocolFee string        `mapstructure:"protocol_fee"`
	Owner       string        `mapstructure:"owner"`
	FeeReceiver string        `mapstructure:"fee_receiver"`
}

// Load reads a PoolConfig from the given file path (any format viper
// supports: yaml, toml, json) overlaid with STABLESWAP_-prefixed
// environment variables, matching the teacher's app config precedence.
func Load(path string) (PoolConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("STABLESWAP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return PoolConfig{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg PoolConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return PoolConfig{}, fmt.Errorf("config: unmarshaling: %w", err)
	}
	return cfg, nil
}

// Fees converts the string-encoded fee fields into math.Int, at FeeDenom
// precision.
func (c PoolConfig) Fees() (types.Fees, error) {
	tradeFee, ok := math.NewIntFromString(c.TradeFee)
	if !ok {
		return types.Fees{}, fmt.Errorf("config: invalid trade_fee %q", c.TradeFee)
	}
	protocolFee, ok := math.NewIntFromString(c.ProtocolFee)
	if !ok {
		return types.Fees{}, fmt.Errorf("config: invalid protocol_fee %q", c.ProtocolFee)
	}
	return types.Fees{TradeFee: tradeFee, ProtocolFee: protocolFee}, nil
}

// TokenIDs returns the configured token identifiers in order.
func (c PoolConfig) TokenIDs() []string {
	ids := make([]string, len(c.Tokens))
	for i, t := range c.Tokens {
		ids[i] = t.ID
	}
	return ids
}

// Decimals returns the configured per-token decimal counts in order.
func (c PoolConfig) Decimals() []uint32 {
	decimals := make([]uint32, len(c.Tokens))
	for i, t := range c.Tokens {
		decimals[i] = t.Decimals
	}
	return decimals
}

// RateSpecs builds the TokenRateSpec slice NewPool expects, resolving each
// token's external rate source by oracle ID through the supplied lookup
// (the config file can only name an oracle, not construct a live
// RateSource).
func (c PoolConfig) RateSpecs(sources map[string]types.RateSource) ([]types.TokenRateSpec, error) {
	specs := make([]types.TokenRateSpec, len(c.Tokens))
	for i, t := range c.Tokens {
		switch t.RateKind {
		case "", "constant":
			rate, ok := math.NewIntFromString(t.ConstantRate)
			if !ok {
				return nil, fmt.Errorf("config: token %q has invalid constant_rate %q", t.ID, t.ConstantRate)
			}
			specs[i] = types.TokenRateSpec{Constant: rate}
		case "external":
			source, ok := sources[t.OracleID]
			if !ok {
				return nil, fmt.Errorf("config: token %q references unknown oracle_id %q", t.ID, t.OracleID)
			}
			specs[i] = types.TokenRateSpec{
				OracleID: t.OracleID,
				Source:   source,
				TTLMs:    t.RateTTLMs,
			}
		default:
			return nil, fmt.Errorf("config: token %q has unknown rate_kind %q", t.ID, t.RateKind)
		}
	}
	return specs, nil
}
