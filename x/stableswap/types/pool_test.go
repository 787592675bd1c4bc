package types_test

import (
	"context"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/lumen-amm/stableswap/x/stableswap/types"
)

func twoTokenSpecs() []types.TokenRateSpec {
	return []types.TokenRateSpec{
		{Constant: math.NewInt(types.RatePrecision)},
		{Constant: math.NewInt(types.RatePrecision)},
	}
}

func TestNewPoolValidatesTokenCount(t *testing.T) {
	owner := types.TestAddr()
	_, err := types.NewPool(context.Background(), []string{"usdc"}, []uint32{6}, []types.TokenRateSpec{{Constant: math.NewInt(types.RatePrecision)}}, 1000, owner, types.Fees{TradeFee: math.NewInt(600_000), ProtocolFee: math.NewInt(200_000_000)}, nil, types.FixedClock{})
	require.ErrorIs(t, err, types.ErrIncorrectTokenCount)
}

func TestNewPoolRejectsDuplicateTokens(t *testing.T) {
	owner := types.TestAddr()
	_, err := types.NewPool(context.Background(), []string{"usdc", "usdc"}, []uint32{6, 6}, twoTokenSpecs(), 1000, owner, types.Fees{TradeFee: math.NewInt(600_000), ProtocolFee: math.NewInt(200_000_000)}, nil, types.FixedClock{})
	require.ErrorIs(t, err, types.ErrIdenticalTokenId)
}

func TestNewPoolRejectsExcessiveDecimals(t *testing.T) {
	owner := types.TestAddr()
	_, err := types.NewPool(context.Background(), []string{"a", "b"}, []uint32{19, 6}, twoTokenSpecs(), 1000, owner, types.Fees{TradeFee: math.NewInt(600_000), ProtocolFee: math.NewInt(200_000_000)}, nil, types.FixedClock{})
	require.ErrorIs(t, err, types.ErrTooLargeTokenDecimal)
}

func TestNewPoolRejectsAmpOutOfRange(t *testing.T) {
	owner := types.TestAddr()
	_, err := types.NewPool(context.Background(), []string{"a", "b"}, []uint32{6, 6}, twoTokenSpecs(), 0, owner, types.Fees{TradeFee: math.NewInt(600_000), ProtocolFee: math.NewInt(200_000_000)}, nil, types.FixedClock{})
	require.ErrorIs(t, err, types.ErrInvalidAmpCoef)
}

func TestNewPoolRejectsInvalidFee(t *testing.T) {
	owner := types.TestAddr()
	_, err := types.NewPool(context.Background(), []string{"a", "b"}, []uint32{6, 6}, twoTokenSpecs(), 1000, owner, types.Fees{TradeFee: math.NewInt(types.MaxTradeFee + 1), ProtocolFee: math.ZeroInt()}, nil, types.FixedClock{})
	require.ErrorIs(t, err, types.ErrInvalidFee)
}

func TestNewPoolComputesPrecisions(t *testing.T) {
	owner := types.TestAddr()
	pool, err := types.NewPool(context.Background(), []string{"usdc", "dai"}, []uint32{6, 18}, twoTokenSpecs(), 1000, owner, types.Fees{TradeFee: math.NewInt(600_000), ProtocolFee: math.NewInt(200_000_000)}, nil, types.FixedClock{})
	require.NoError(t, err)
	require.True(t, pool.Precisions[0].Equal(math.NewInt(1_000_000_000_000)))
	require.True(t, pool.Precisions[1].Equal(math.OneInt()))
	require.True(t, pool.TotalShares.IsZero())
	require.False(t, pool.HasFeeReceiver())
}

func TestPoolIndexOf(t *testing.T) {
	owner := types.TestAddr()
	pool, err := types.NewPool(context.Background(), []string{"usdc", "dai"}, []uint32{6, 18}, twoTokenSpecs(), 1000, owner, types.Fees{TradeFee: math.NewInt(600_000), ProtocolFee: math.NewInt(200_000_000)}, nil, types.FixedClock{})
	require.NoError(t, err)

	idx, err := pool.IndexOf("dai")
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	_, err = pool.IndexOf("frax")
	require.ErrorIs(t, err, types.ErrInvalidTokenId)
}
