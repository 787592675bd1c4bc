package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumen-amm/stableswap/config"
	"github.com/lumen-amm/stableswap/x/stableswap/types"
)

const sampleConfig = `
amp_coef: 100
trade_fee: "3000000"
protocol_fee: "500000000"
owner: "cosmos1owneraddressxxxxxxxxxxxxxxxxxxxxxxxxxxx"
tokens:
  - id: usdc
    decimals: 6
    rate_kind: constant
    constant_rate: "1000000000000"
  - id: usdt
    decimals: 6
    rate_kind: constant
    constant_rate: "1000000000000"
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))
	return path
}

func TestLoadParsesTokensAndFees(t *testing.T) {
	path := writeSample(t)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, uint64(100), cfg.AmpCoef)
	require.Equal(t, []string{"usdc", "usdt"}, cfg.TokenIDs())
	require.Equal(t, []uint32{6, 6}, cfg.Decimals())

	fees, err := cfg.Fees()
	require.NoError(t, err)
	require.Equal(t, "3000000", fees.TradeFee.String())
	require.Equal(t, "500000000", fees.ProtocolFee.String())
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRateSpecsBuildsConstantEntries(t *testing.T) {
	path := writeSample(t)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	specs, err := cfg.RateSpecs(nil)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	require.Nil(t, specs[0].Source)
	require.Equal(t, "1000000000000", specs[0].Constant.String())
}

func TestRateSpecsRejectsUnknownOracle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
amp_coef: 50
trade_fee: "0"
protocol_fee: "0"
tokens:
  - id: dai
    decimals: 18
    rate_kind: external
    oracle_id: dai-usd
    rate_ttl_ms: 5000
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	_, err = cfg.RateSpecs(map[string]types.RateSource{})
	require.Error(t, err)
}
