package keeper_test

import (
	"context"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/lumen-amm/stableswap/x/stableswap/types"
)

func seedBalancedPool(t *testing.T, h *testHarness) {
	t.Helper()
	lp := types.TestAddr()
	h.fund(lp, "usdc", wad(1_000_000))
	h.fund(lp, "usdt", wad(1_000_000))
	_, _, err := h.keeper.AddLiquidity(context.Background(), lp, []math.Int{wad(1_000_000), wad(1_000_000)}, math.ZeroInt(), lp)
	require.NoError(t, err)
}

func TestSwapExactInNearPegReturnsAlmostEqualAmount(t *testing.T) {
	h := newTestHarness([]string{"usdc", "usdt"}, 100)
	seedBalancedPool(t, h)
	trader := types.TestAddr()
	h.fund(trader, "usdc", wad(100))

	out, err := h.keeper.SwapExactIn(context.Background(), trader, "usdc", "usdt", wad(100), math.ZeroInt(), trader)
	require.NoError(t, err)
	require.True(t, out.LT(wad(100)), "trade fee must shave a positive amount off the output")
	diff := wad(100).Sub(out)
	require.True(t, diff.LT(wad(1)), "near-peg balanced swap should be very close to 1:1")
}

func TestSwapExactInRejectsSameToken(t *testing.T) {
	h := newTestHarness([]string{"usdc", "usdt"}, 100)
	seedBalancedPool(t, h)
	trader := types.TestAddr()
	h.fund(trader, "usdc", wad(100))

	_, err := h.keeper.SwapExactIn(context.Background(), trader, "usdc", "usdc", wad(100), math.ZeroInt(), trader)
	require.ErrorIs(t, err, types.ErrIdenticalTokenId)
}

func TestSwapExactInRejectsSlippage(t *testing.T) {
	h := newTestHarness([]string{"usdc", "usdt"}, 100)
	seedBalancedPool(t, h)
	trader := types.TestAddr()
	h.fund(trader, "usdc", wad(100))

	_, err := h.keeper.SwapExactIn(context.Background(), trader, "usdc", "usdt", wad(100), wad(100), trader)
	require.ErrorIs(t, err, types.ErrInsufficientOutputAmount)
}

func TestSwapExactOutAgreesWithGetSwapAmountIn(t *testing.T) {
	h := newTestHarness([]string{"usdc", "usdt"}, 100)
	seedBalancedPool(t, h)
	trader := types.TestAddr()
	h.fund(trader, "usdc", wad(1000))

	quotedIn, err := h.keeper.GetSwapAmountIn(context.Background(), "usdc", "usdt", wad(100))
	require.NoError(t, err)

	amountIn, err := h.keeper.SwapExactOut(context.Background(), trader, "usdc", "usdt", wad(100), wad(1000), trader)
	require.NoError(t, err)
	require.Equal(t, quotedIn, amountIn)
	require.Equal(t, wad(100), h.tokens["usdt"].balanceOrZero(trader))
}

func TestSwapExactOutRejectsExceedingMaxIn(t *testing.T) {
	h := newTestHarness([]string{"usdc", "usdt"}, 100)
	seedBalancedPool(t, h)
	trader := types.TestAddr()
	h.fund(trader, "usdc", wad(1000))

	_, err := h.keeper.SwapExactOut(context.Background(), trader, "usdc", "usdt", wad(100), wad(1), trader)
	require.ErrorIs(t, err, types.ErrTooLargeInputAmount)
}

func TestSwapReceivedPricesTheExcessBalance(t *testing.T) {
	h := newTestHarness([]string{"usdc", "usdt"}, 100)
	seedBalancedPool(t, h)

	h.tokens["usdc"].fund(h.poolAddress, wad(100))

	amountIn, amountOut, err := h.keeper.SwapReceived(context.Background(), "usdc", "usdt", math.ZeroInt(), types.TestAddr())
	require.NoError(t, err)
	require.Equal(t, wad(100), amountIn)
	require.True(t, amountOut.IsPositive())
}

func TestSwapReceivedRejectsWhenNothingWasSent(t *testing.T) {
	h := newTestHarness([]string{"usdc", "usdt"}, 100)
	seedBalancedPool(t, h)

	_, _, err := h.keeper.SwapReceived(context.Background(), "usdc", "usdt", math.ZeroInt(), types.TestAddr())
	require.ErrorIs(t, err, types.ErrInsufficientInputAmount)
}

func TestGetSwapAmountOutAgreesWithSwapExactIn(t *testing.T) {
	h := newTestHarness([]string{"usdc", "usdt"}, 100)
	seedBalancedPool(t, h)
	trader := types.TestAddr()
	h.fund(trader, "usdc", wad(500))

	quoted, err := h.keeper.GetSwapAmountOut(context.Background(), "usdc", "usdt", wad(250))
	require.NoError(t, err)

	actual, err := h.keeper.SwapExactIn(context.Background(), trader, "usdc", "usdt", wad(250), math.ZeroInt(), trader)
	require.NoError(t, err)
	require.Equal(t, quoted, actual)
}

func TestForceUpdateRateNoopForConstantRates(t *testing.T) {
	h := newTestHarness([]string{"usdc", "usdt"}, 100)
	err := h.keeper.ForceUpdateRate(context.Background())
	require.NoError(t, err)
}
