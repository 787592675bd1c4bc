package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/lumen-amm/stableswap/internal/bigmath"
	"github.com/lumen-amm/stableswap/internal/curve"
	"github.com/lumen-amm/stableswap/internal/feepolicy"
	"github.com/lumen-amm/stableswap/x/stableswap/types"
)

const (
	siteViewAdjust = iota + 300
	siteViewFee
	siteViewShares
)

// The view surface of §4.6.9: pure quotes that must agree with whatever a
// mutating call made immediately afterward (same rates, same reserves)
// would produce, but never refresh the rate cache, transfer tokens, mint or
// burn shares, or emit events.

// GetSwapAmountOut quotes the output swap_exact_in would pay for amountIn.
func (k *Keeper) GetSwapAmountOut(ctx context.Context, tokenIn, tokenOut string, amountIn math.Int) (math.Int, error) {
	if tokenIn == tokenOut {
		return math.Int{}, types.ErrIdenticalTokenId.Wrap("token_in and token_out must differ")
	}
	xIdx, err := k.pool.IndexOf(tokenIn)
	if err != nil {
		return math.Int{}, err
	}
	yIdx, err := k.pool.IndexOf(tokenOut)
	if err != nil {
		return math.Int{}, err
	}
	if !amountIn.IsPositive() {
		return math.Int{}, types.ErrInsufficientInputAmount.Wrap("amount_in must be positive")
	}

	rates, err := k.quoteRates(ctx)
	if err != nil {
		return math.Int{}, err
	}
	reserves, err := k.ratedReserves(rates)
	if err != nil {
		return math.Int{}, err
	}
	ratedIn, err := k.ratedAmount(xIdx, amountIn, rates[xIdx])
	if err != nil {
		return math.Int{}, err
	}
	newX, err := bigmath.Add(reserves[xIdx], ratedIn, siteViewAdjust)
	if err != nil {
		return math.Int{}, err
	}
	newY, err := curve.ComputeY(newX, reserves, xIdx, yIdx, k.pool.AmpCoef)
	if err != nil {
		return math.Int{}, err
	}
	dy, err := bigmath.Sub(reserves[yIdx], newY, siteViewAdjust)
	if err != nil {
		return math.Int{}, err
	}
	ratedOutGross, err := bigmath.Sub(dy, bigmath.FromUint64(1), siteViewAdjust)
	if err != nil {
		return math.Int{}, err
	}

	tradeFeeU, err := bigmath.FromMathInt(k.pool.PoolFees.TradeFee, siteViewFee)
	if err != nil {
		return math.Int{}, err
	}
	feeDenomU := bigmath.FromUint64(types.FeeDenom)
	fee, err := feepolicy.TradeFeeFromGross(ratedOutGross, tradeFeeU, feeDenomU)
	if err != nil {
		return math.Int{}, err
	}
	ratedOutNet, err := bigmath.Sub(ratedOutGross, fee, siteViewFee)
	if err != nil {
		return math.Int{}, err
	}
	return k.fromRatedAmount(yIdx, ratedOutNet, rates[yIdx])
}

// GetSwapAmountIn quotes the input swap_exact_out would require to deliver
// amountOut.
func (k *Keeper) GetSwapAmountIn(ctx context.Context, tokenIn, tokenOut string, amountOut math.Int) (math.Int, error) {
	if tokenIn == tokenOut {
		return math.Int{}, types.ErrIdenticalTokenId.Wrap("token_in and token_out must differ")
	}
	xIdx, err := k.pool.IndexOf(tokenIn)
	if err != nil {
		return math.Int{}, err
	}
	yIdx, err := k.pool.IndexOf(tokenOut)
	if err != nil {
		return math.Int{}, err
	}
	if !amountOut.IsPositive() {
		return math.Int{}, types.ErrInsufficientOutputAmount.Wrap("amount_out must be positive")
	}

	rates, err := k.quoteRates(ctx)
	if err != nil {
		return math.Int{}, err
	}
	reserves, err := k.ratedReserves(rates)
	if err != nil {
		return math.Int{}, err
	}
	ratedOutNet, err := k.ratedAmount(yIdx, amountOut, rates[yIdx])
	if err != nil {
		return math.Int{}, err
	}
	if ratedOutNet.Cmp(reserves[yIdx]) >= 0 {
		return math.Int{}, types.ErrTooLargeInputAmount.Wrap("amount_out exceeds available reserve")
	}

	tradeFeeU, err := bigmath.FromMathInt(k.pool.PoolFees.TradeFee, siteViewFee)
	if err != nil {
		return math.Int{}, err
	}
	feeDenomU := bigmath.FromUint64(types.FeeDenom)
	fee, err := feepolicy.TradeFeeFromNet(ratedOutNet, tradeFeeU, feeDenomU)
	if err != nil {
		return math.Int{}, err
	}
	ratedOutGross, err := bigmath.Add(ratedOutNet, fee, siteViewFee)
	if err != nil {
		return math.Int{}, err
	}
	if ratedOutGross.Cmp(reserves[yIdx]) >= 0 {
		return math.Int{}, types.ErrTooLargeInputAmount.Wrap("amount_out plus fee exceeds available reserve")
	}

	newY, err := bigmath.Sub(reserves[yIdx], ratedOutGross, siteViewAdjust)
	if err != nil {
		return math.Int{}, err
	}
	newX, err := curve.ComputeY(newY, reserves, yIdx, xIdx, k.pool.AmpCoef)
	if err != nil {
		return math.Int{}, err
	}
	dx, err := bigmath.Sub(newX, reserves[xIdx], siteViewAdjust)
	if err != nil {
		return math.Int{}, err
	}
	ratedIn, err := bigmath.Add(dx, bigmath.FromUint64(1), siteViewAdjust)
	if err != nil {
		return math.Int{}, err
	}
	return k.fromRatedAmount(xIdx, ratedIn, rates[xIdx])
}

// GetAmountsForLiquidityMint is the supplemented inverse view of
// add_liquidity: given a desired share count, returns the balanced deposit
// amounts that would mint at least that many shares, ignoring the imbalance
// fee (an exact inverse is not generally solvable in closed form once the
// imbalance fee is involved — see SPEC_FULL.md's SUPPLEMENTED FEATURES).
func (k *Keeper) GetAmountsForLiquidityMint(ctx context.Context, shares math.Int) ([]math.Int, error) {
	if !shares.IsPositive() {
		return nil, types.ErrInsufficientLiquidityMinted.Wrap("shares must be positive")
	}
	n := k.pool.N()
	amounts := make([]math.Int, n)

	if k.pool.TotalShares.IsZero() {
		return nil, types.ErrInsufficientLiquidityMinted.Wrap("amounts_for_mint requires an existing pool; use compute_d directly for the first deposit")
	}

	for i := 0; i < n; i++ {
		amounts[i] = ceilDiv(k.pool.Reserves[i].Mul(shares), k.pool.TotalShares)
	}
	return amounts, nil
}

// ceilDiv computes ceil(a/b) for non-negative a, b with b > 0.
func ceilDiv(a, b math.Int) math.Int {
	q := a.Quo(b)
	if a.Mod(b).IsZero() {
		return q
	}
	return q.Add(math.OneInt())
}

// GetAmountsForLiquidityBurn is the supplemented inverse view of
// remove_liquidity_by_shares: the exact amounts that many shares would
// return, identical to the mutating call's own computation so it can be
// quoted ahead of time.
func (k *Keeper) GetAmountsForLiquidityBurn(ctx context.Context, shares math.Int) ([]math.Int, error) {
	if !shares.IsPositive() {
		return nil, types.ErrInsufficientLiquidityBurned.Wrap("shares must be positive")
	}
	if k.pool.TotalShares.IsZero() || shares.GT(k.pool.TotalShares) {
		return nil, types.ErrInsufficientLiquidityBurned.Wrap("shares exceed total supply")
	}
	n := k.pool.N()
	amounts := make([]math.Int, n)
	for i := 0; i < n; i++ {
		amounts[i] = k.pool.Reserves[i].Mul(shares).Quo(k.pool.TotalShares)
	}
	return amounts, nil
}

// GetMintLiquidityForAmounts quotes the shares add_liquidity would mint for
// the given deposit amounts, without mutating any state.
func (k *Keeper) GetMintLiquidityForAmounts(ctx context.Context, amounts []math.Int) (math.Int, math.Int, error) {
	n := k.pool.N()
	if len(amounts) != n {
		return math.Int{}, math.Int{}, types.ErrIncorrectAmountsCount
	}

	rates, err := k.quoteRates(ctx)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	oldRatedReserves, err := k.ratedReserves(rates)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	ratedDeposits := make([]bigmath.Uint256, n)
	for i := 0; i < n; i++ {
		ratedDeposits[i], err = k.ratedAmount(i, amounts[i], rates[i])
		if err != nil {
			return math.Int{}, math.Int{}, err
		}
	}

	if k.pool.TotalShares.IsZero() {
		d, err := k.computeD(ratedDeposits)
		if err != nil {
			return math.Int{}, math.Int{}, err
		}
		if !d.Fits128() {
			return math.Int{}, math.Int{}, &bigmath.Error{Kind: bigmath.KindCastOverflow, Tag: siteViewShares}
		}
		return d.ToMathInt(), math.ZeroInt(), nil
	}

	d0, err := k.computeD(oldRatedReserves)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	newRatedReserves := make([]bigmath.Uint256, n)
	for i := range newRatedReserves {
		newRatedReserves[i], err = bigmath.Add(oldRatedReserves[i], ratedDeposits[i], siteViewAdjust)
		if err != nil {
			return math.Int{}, math.Int{}, err
		}
	}
	d1, err := k.computeD(newRatedReserves)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	adjustedReserves, err := k.applyImbalanceFee(n, oldRatedReserves, newRatedReserves, d0, d1)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	d2, err := k.computeD(adjustedReserves)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	totalSharesU, err := bigmath.FromMathInt(k.pool.TotalShares, siteViewShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	d2MinusD0, err := bigmath.Sub(d2, d0, siteViewShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	sharesU, err := bigmath.MulDiv(totalSharesU, d2MinusD0, d0, siteViewShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	d1MinusD0, err := bigmath.Sub(d1, d0, siteViewShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	feePartGross, err := bigmath.MulDiv(totalSharesU, d1MinusD0, d0, siteViewShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	feePartU, err := bigmath.Sub(feePartGross, sharesU, siteViewShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if !sharesU.Fits128() {
		return math.Int{}, math.Int{}, &bigmath.Error{Kind: bigmath.KindCastOverflow, Tag: siteViewShares}
	}
	return sharesU.ToMathInt(), feePartU.ToMathInt(), nil
}

// GetBurnLiquidityForAmounts quotes the shares remove_liquidity_by_amounts
// would burn for the given withdrawal amounts.
func (k *Keeper) GetBurnLiquidityForAmounts(ctx context.Context, amounts []math.Int) (math.Int, math.Int, error) {
	n := k.pool.N()
	if len(amounts) != n {
		return math.Int{}, math.Int{}, types.ErrIncorrectAmountsCount
	}
	if k.pool.TotalShares.IsZero() {
		return math.Int{}, math.Int{}, types.ErrInsufficientLiquidityBurned.Wrap("pool has no outstanding shares")
	}

	rates, err := k.quoteRates(ctx)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	oldRatedReserves, err := k.ratedReserves(rates)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	ratedWithdrawals := make([]bigmath.Uint256, n)
	for i := 0; i < n; i++ {
		ratedWithdrawals[i], err = k.ratedAmount(i, amounts[i], rates[i])
		if err != nil {
			return math.Int{}, math.Int{}, err
		}
	}
	d0, err := k.computeD(oldRatedReserves)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	newRatedReserves := make([]bigmath.Uint256, n)
	for i := range newRatedReserves {
		newRatedReserves[i], err = bigmath.Sub(oldRatedReserves[i], ratedWithdrawals[i], siteViewAdjust)
		if err != nil {
			return math.Int{}, math.Int{}, err
		}
	}
	d1, err := k.computeD(newRatedReserves)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	adjustedReserves, err := k.applyImbalanceFee(n, oldRatedReserves, newRatedReserves, d0, d1)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	d2, err := k.computeD(adjustedReserves)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	totalSharesU, err := bigmath.FromMathInt(k.pool.TotalShares, siteViewShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	d0MinusD2, err := bigmath.Sub(d0, d2, siteViewShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	sharesBurnedU, err := bigmath.MulDiv(totalSharesU, d0MinusD2, d0, siteViewShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	d0MinusD1, err := bigmath.Sub(d0, d1, siteViewShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	sharesBurnedGross, err := bigmath.MulDiv(totalSharesU, d0MinusD1, d0, siteViewShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	feePartU, err := bigmath.Sub(sharesBurnedU, sharesBurnedGross, siteViewShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if !sharesBurnedU.Fits128() {
		return math.Int{}, math.Int{}, &bigmath.Error{Kind: bigmath.KindCastOverflow, Tag: siteViewShares}
	}
	return sharesBurnedU.ToMathInt(), feePartU.ToMathInt(), nil
}

