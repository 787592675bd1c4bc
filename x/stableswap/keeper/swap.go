package keeper

import (
	"context"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lumen-amm/stableswap/internal/bigmath"
	"github.com/lumen-amm/stableswap/internal/curve"
	"github.com/lumen-amm/stableswap/internal/feepolicy"
	"github.com/lumen-amm/stableswap/x/stableswap/types"
)

const (
	siteSwapAdjust = iota + 200
	siteSwapFee
)

// SwapExactIn implements §4.6.5: the caller hands over an exact amountIn of
// tokenIn, the invariant solver prices the corresponding output, the trade
// fee is taken off the gross output, and the net amount is paid to `to`.
func (k *Keeper) SwapExactIn(ctx context.Context, caller sdk.AccAddress, tokenIn, tokenOut string, amountIn, minAmountOut math.Int, to sdk.AccAddress) (math.Int, error) {
	if err := k.guard.Acquire(); err != nil {
		return math.Int{}, err
	}
	defer k.guard.Release()
	start := time.Now()

	amountOut, xIdx, yIdx, rates, err := k.quoteSwapExactIn(ctx, tokenIn, tokenOut, amountIn)
	if err != nil {
		k.metrics.RecordSwapFailure("quote")
		return math.Int{}, err
	}
	if amountOut.LT(minAmountOut) {
		k.metrics.RecordSwapFailure("slippage")
		return math.Int{}, types.ErrInsufficientOutputAmount.Wrapf("got %s, required at least %s", amountOut, minAmountOut)
	}

	if err := k.tokens[tokenIn].Transfer(ctx, caller, k.poolAddress, amountIn); err != nil {
		return math.Int{}, err
	}

	if err := k.settleSwapFee(ctx, xIdx, yIdx, rates, amountIn, amountOut); err != nil {
		return math.Int{}, err
	}

	if err := k.tokens[tokenOut].Transfer(ctx, k.poolAddress, to, amountOut); err != nil {
		return math.Int{}, err
	}

	k.emitSwap(caller, tokenIn, tokenOut, amountIn, amountOut, to)
	k.emitSync()
	k.metrics.RecordSwap(tokenIn, tokenOut, k.timeSince(start))

	return amountOut, nil
}

// SwapExactOut implements §4.6.6: the caller specifies the exact amountOut
// they want delivered; the solver inverts the invariant to find the
// required input, grosses it up by the trade fee, and checks it against the
// caller's maxAmountIn bound.
func (k *Keeper) SwapExactOut(ctx context.Context, caller sdk.AccAddress, tokenIn, tokenOut string, amountOut, maxAmountIn math.Int, to sdk.AccAddress) (math.Int, error) {
	if err := k.guard.Acquire(); err != nil {
		return math.Int{}, err
	}
	defer k.guard.Release()
	start := time.Now()

	amountIn, xIdx, yIdx, rates, err := k.quoteSwapExactOut(ctx, tokenIn, tokenOut, amountOut)
	if err != nil {
		k.metrics.RecordSwapFailure("quote")
		return math.Int{}, err
	}
	if amountIn.GT(maxAmountIn) {
		k.metrics.RecordSwapFailure("slippage")
		return math.Int{}, types.ErrTooLargeInputAmount.Wrapf("requires %s, maximum is %s", amountIn, maxAmountIn)
	}

	if err := k.tokens[tokenIn].Transfer(ctx, caller, k.poolAddress, amountIn); err != nil {
		return math.Int{}, err
	}

	if err := k.settleSwapFee(ctx, xIdx, yIdx, rates, amountIn, amountOut); err != nil {
		return math.Int{}, err
	}

	if err := k.tokens[tokenOut].Transfer(ctx, k.poolAddress, to, amountOut); err != nil {
		return math.Int{}, err
	}

	k.emitSwap(caller, tokenIn, tokenOut, amountIn, amountOut, to)
	k.emitSync()
	k.metrics.RecordSwap(tokenIn, tokenOut, k.timeSince(start))

	return amountIn, nil
}

// SwapReceived implements §4.6.7: rather than pulling funds from the
// caller, the pool treats any tokenIn balance already sitting at its own
// address in excess of its last-known reserve as the input amount. Used by
// collaborators that push funds to the pool ahead of calling it.
func (k *Keeper) SwapReceived(ctx context.Context, tokenIn, tokenOut string, minAmountOut math.Int, to sdk.AccAddress) (math.Int, math.Int, error) {
	if err := k.guard.Acquire(); err != nil {
		return math.Int{}, math.Int{}, err
	}
	defer k.guard.Release()
	start := time.Now()

	xIdx, err := k.pool.IndexOf(tokenIn)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	balance, err := k.tokens[tokenIn].BalanceOf(ctx, k.poolAddress)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	amountIn := balance.Sub(k.pool.Reserves[xIdx])
	if !amountIn.IsPositive() {
		k.metrics.RecordSwapFailure("no_received_amount")
		return math.Int{}, math.Int{}, types.ErrInsufficientInputAmount.Wrap("no tokens received in excess of reserve")
	}

	amountOut, xIdx2, yIdx, rates, err := k.quoteSwapExactIn(ctx, tokenIn, tokenOut, amountIn)
	if err != nil {
		k.metrics.RecordSwapFailure("quote")
		return math.Int{}, math.Int{}, err
	}
	if amountOut.LT(minAmountOut) {
		k.metrics.RecordSwapFailure("slippage")
		return math.Int{}, math.Int{}, types.ErrInsufficientOutputAmount.Wrapf("got %s, required at least %s", amountOut, minAmountOut)
	}

	if err := k.settleSwapFee(ctx, xIdx2, yIdx, rates, amountIn, amountOut); err != nil {
		return math.Int{}, math.Int{}, err
	}

	if err := k.tokens[tokenOut].Transfer(ctx, k.poolAddress, to, amountOut); err != nil {
		return math.Int{}, math.Int{}, err
	}

	k.emitSwap(k.poolAddress, tokenIn, tokenOut, amountIn, amountOut, to)
	k.emitSync()
	k.metrics.RecordSwap(tokenIn, tokenOut, k.timeSince(start))

	return amountIn, amountOut, nil
}

// ForceUpdateRate implements §4.6.8: unconditionally refreshes every
// External token rate, bypassing its TTL.
func (k *Keeper) ForceUpdateRate(ctx context.Context) error {
	if err := k.guard.Acquire(); err != nil {
		return err
	}
	defer k.guard.Release()
	return k.forceUpdateRate(ctx)
}

// quoteSwapExactIn prices the output of a given input without performing
// any transfers, mints, or events, but does refresh the rate cache (every
// mutating operation's mandatory prologue, per §5).
func (k *Keeper) quoteSwapExactIn(ctx context.Context, tokenIn, tokenOut string, amountIn math.Int) (math.Int, int, int, []math.Int, error) {
	xIdx, yIdx, rates, err := k.prepareSwap(ctx, tokenIn, tokenOut)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	if !amountIn.IsPositive() {
		return math.Int{}, 0, 0, nil, types.ErrInsufficientInputAmount.Wrap("amount_in must be positive")
	}

	reserves, err := k.ratedReserves(rates)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	ratedIn, err := k.ratedAmount(xIdx, amountIn, rates[xIdx])
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	newX, err := bigmath.Add(reserves[xIdx], ratedIn, siteSwapAdjust)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}

	newY, err := curve.ComputeY(newX, reserves, xIdx, yIdx, k.pool.AmpCoef)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	// reserves[out] - y - 1: the extra unit is Curve's reference anti-rounding
	// margin, kept here in the pool's favor per §4.5's rounding discipline.
	dy, err := bigmath.Sub(reserves[yIdx], newY, siteSwapAdjust)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	ratedOutGross, err := bigmath.Sub(dy, bigmath.FromUint64(1), siteSwapAdjust)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}

	tradeFeeU, err := bigmath.FromMathInt(k.pool.PoolFees.TradeFee, siteSwapFee)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	feeDenomU := bigmath.FromUint64(types.FeeDenom)
	fee, err := feepolicy.TradeFeeFromGross(ratedOutGross, tradeFeeU, feeDenomU)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	ratedOutNet, err := bigmath.Sub(ratedOutGross, fee, siteSwapFee)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}

	amountOut, err := k.fromRatedAmount(yIdx, ratedOutNet, rates[yIdx])
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	if !amountOut.IsPositive() {
		return math.Int{}, 0, 0, nil, types.ErrInsufficientOutputAmount.Wrap("computed output rounds to zero")
	}
	return amountOut, xIdx, yIdx, rates, nil
}

// quoteSwapExactOut prices the input required for a given output, inverting
// the fee first (the requested output is net of fee) before inverting the
// invariant.
func (k *Keeper) quoteSwapExactOut(ctx context.Context, tokenIn, tokenOut string, amountOut math.Int) (math.Int, int, int, []math.Int, error) {
	xIdx, yIdx, rates, err := k.prepareSwap(ctx, tokenIn, tokenOut)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	if !amountOut.IsPositive() {
		return math.Int{}, 0, 0, nil, types.ErrInsufficientOutputAmount.Wrap("amount_out must be positive")
	}

	reserves, err := k.ratedReserves(rates)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	ratedOutNet, err := k.ratedAmount(yIdx, amountOut, rates[yIdx])
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	if ratedOutNet.Cmp(reserves[yIdx]) >= 0 {
		return math.Int{}, 0, 0, nil, types.ErrTooLargeInputAmount.Wrap("amount_out exceeds available reserve")
	}

	tradeFeeU, err := bigmath.FromMathInt(k.pool.PoolFees.TradeFee, siteSwapFee)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	feeDenomU := bigmath.FromUint64(types.FeeDenom)
	fee, err := feepolicy.TradeFeeFromNet(ratedOutNet, tradeFeeU, feeDenomU)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	ratedOutGross, err := bigmath.Add(ratedOutNet, fee, siteSwapFee)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	if ratedOutGross.Cmp(reserves[yIdx]) >= 0 {
		return math.Int{}, 0, 0, nil, types.ErrTooLargeInputAmount.Wrap("amount_out plus fee exceeds available reserve")
	}

	newY, err := bigmath.Sub(reserves[yIdx], ratedOutGross, siteSwapAdjust)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	newX, err := curve.ComputeY(newY, reserves, yIdx, xIdx, k.pool.AmpCoef)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	dx, err := bigmath.Sub(newX, reserves[xIdx], siteSwapAdjust)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	// +1: the symmetric anti-rounding margin to dy's -1 in swap_exact_in,
	// keeping the required input in the pool's favor.
	ratedIn, err := bigmath.Add(dx, bigmath.FromUint64(1), siteSwapAdjust)
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}

	amountIn, err := k.fromRatedAmount(xIdx, ratedIn, rates[xIdx])
	if err != nil {
		return math.Int{}, 0, 0, nil, err
	}
	if !amountIn.IsPositive() {
		return math.Int{}, 0, 0, nil, types.ErrInsufficientInputAmount.Wrap("computed input rounds to zero")
	}
	return amountIn, xIdx, yIdx, rates, nil
}

// prepareSwap validates the token pair and refreshes the rate cache, the
// shared prologue of all three swap variants' quote paths.
func (k *Keeper) prepareSwap(ctx context.Context, tokenIn, tokenOut string) (int, int, []math.Int, error) {
	if tokenIn == tokenOut {
		return 0, 0, nil, types.ErrIdenticalTokenId.Wrap("token_in and token_out must differ")
	}
	xIdx, err := k.pool.IndexOf(tokenIn)
	if err != nil {
		return 0, 0, nil, err
	}
	yIdx, err := k.pool.IndexOf(tokenOut)
	if err != nil {
		return 0, 0, nil, err
	}
	if err := k.refreshRates(ctx); err != nil {
		return 0, 0, nil, err
	}
	return xIdx, yIdx, k.currentRates(), nil
}

// settleSwapFee applies the reserve deltas of a completed swap and mints
// the protocol's slice of the collected trade fee as LP shares, per the
// teacher's fees.go split-and-route pattern generalized to the rated
// (invariant-space) accounting of §4.5.
func (k *Keeper) settleSwapFee(ctx context.Context, xIdx, yIdx int, rates []math.Int, amountIn, amountOut math.Int) error {
	k.pool.Reserves[xIdx] = k.pool.Reserves[xIdx].Add(amountIn)
	k.pool.Reserves[yIdx] = k.pool.Reserves[yIdx].Sub(amountOut)
	k.metrics.RecordReserve(k.pool.Tokens[xIdx], intToFloat64(k.pool.Reserves[xIdx]))
	k.metrics.RecordReserve(k.pool.Tokens[yIdx], intToFloat64(k.pool.Reserves[yIdx]))

	if !k.pool.HasFeeReceiver() {
		return nil
	}

	ratedIn, err := k.ratedAmount(xIdx, amountIn, rates[xIdx])
	if err != nil {
		return err
	}
	ratedOut, err := k.ratedAmount(yIdx, amountOut, rates[yIdx])
	if err != nil {
		return err
	}
	reserves, err := k.ratedReserves(rates)
	if err != nil {
		return err
	}
	before := make([]bigmath.Uint256, len(reserves))
	copy(before, reserves)
	before[xIdx], err = bigmath.Sub(before[xIdx], ratedIn, siteSwapFee)
	if err != nil {
		return err
	}
	before[yIdx], err = bigmath.Add(before[yIdx], ratedOut, siteSwapFee)
	if err != nil {
		return err
	}

	tradeFeeU, err := bigmath.FromMathInt(k.pool.PoolFees.TradeFee, siteSwapFee)
	if err != nil {
		return err
	}
	feeDenomU := bigmath.FromUint64(types.FeeDenom)
	// amountOut is what was paid out, already net of the trade fee, so the
	// fee is recovered from it with TradeFeeFromNet.
	netOut, err := bigmath.Sub(before[yIdx], reserves[yIdx], siteSwapFee)
	if err != nil {
		return err
	}
	fee, err := feepolicy.TradeFeeFromNet(netOut, tradeFeeU, feeDenomU)
	if err != nil {
		return err
	}
	protocolFeeU, err := bigmath.FromMathInt(k.pool.PoolFees.ProtocolFee, siteSwapFee)
	if err != nil {
		return err
	}
	portion, err := feepolicy.ProtocolFeePortion(fee, protocolFeeU, feeDenomU)
	if err != nil {
		return err
	}
	if portion.IsZero() {
		return nil
	}

	// Protocol fee portion is minted as LP shares valued at the current
	// D/totalShares ratio, per §4.3's "protocol fee is minted, not paid out
	// of reserves" rule.
	d, err := k.computeD(reserves)
	if err != nil {
		return err
	}
	if d.IsZero() || k.pool.TotalShares.IsZero() {
		return nil
	}
	totalSharesU, err := bigmath.FromMathInt(k.pool.TotalShares, siteSwapFee)
	if err != nil {
		return err
	}
	sharesU, err := bigmath.MulDiv(portion, totalSharesU, d, siteSwapFee)
	if err != nil {
		return err
	}
	if sharesU.IsZero() {
		return nil
	}
	if !sharesU.Fits128() {
		return &bigmath.Error{Kind: bigmath.KindCastOverflow, Tag: siteSwapFee}
	}
	shares := sharesU.ToMathInt()
	if err := k.shares.Mint(ctx, k.pool.FeeReceiver, shares); err != nil {
		return err
	}
	k.pool.TotalShares = k.pool.TotalShares.Add(shares)
	k.metrics.RecordProtocolFeeMinted(intToFloat64(shares))
	k.metrics.RecordTotalShares(intToFloat64(k.pool.TotalShares))
	return nil
}
