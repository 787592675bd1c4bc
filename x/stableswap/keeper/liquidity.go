package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lumen-amm/stableswap/internal/bigmath"
	"github.com/lumen-amm/stableswap/internal/feepolicy"
	"github.com/lumen-amm/stableswap/x/stableswap/types"
)

const (
	siteLiquidityAdjust = iota + 100
	siteLiquidityShares
	siteLiquidityFee
)

// AddLiquidity implements §4.6.2: refresh rates, compute the invariant
// before and after the deposit (charging an imbalance fee on any
// asymmetric portion), mint shares proportional to the resulting growth of
// D, transfer the deposited tokens in, and mint protocol-fee shares.
func (k *Keeper) AddLiquidity(ctx context.Context, caller sdk.AccAddress, amounts []math.Int, minShares math.Int, to sdk.AccAddress) (math.Int, math.Int, error) {
	if err := k.guard.Acquire(); err != nil {
		return math.Int{}, math.Int{}, err
	}
	defer k.guard.Release()

	n := k.pool.N()
	if len(amounts) != n {
		return math.Int{}, math.Int{}, types.ErrIncorrectAmountsCount
	}

	if err := k.refreshRates(ctx); err != nil {
		return math.Int{}, math.Int{}, err
	}
	rates := k.currentRates()

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

	var sharesU, feePartU bigmath.Uint256

	if k.pool.TotalShares.IsZero() {
		for i, a := range amounts {
			if !a.IsPositive() {
				return math.Int{}, math.Int{}, types.ErrInsufficientLiquidityMinted.Wrapf("amount[%d] must be positive on first deposit", i)
			}
		}
		d, err := k.computeD(ratedDeposits)
		if err != nil {
			return math.Int{}, math.Int{}, err
		}
		sharesU = d
		feePartU = bigmath.Zero()
	} else {
		d0, err := k.computeD(oldRatedReserves)
		if err != nil {
			return math.Int{}, math.Int{}, err
		}

		newRatedReserves := make([]bigmath.Uint256, n)
		for i := range newRatedReserves {
			newRatedReserves[i], err = bigmath.Add(oldRatedReserves[i], ratedDeposits[i], siteLiquidityAdjust)
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

		totalSharesU, err := bigmath.FromMathInt(k.pool.TotalShares, siteLiquidityShares)
		if err != nil {
			return math.Int{}, math.Int{}, err
		}

		d2MinusD0, err := bigmath.Sub(d2, d0, siteLiquidityShares)
		if err != nil {
			return math.Int{}, math.Int{}, err
		}
		sharesU, err = bigmath.MulDiv(totalSharesU, d2MinusD0, d0, siteLiquidityShares)
		if err != nil {
			return math.Int{}, math.Int{}, err
		}

		d1MinusD0, err := bigmath.Sub(d1, d0, siteLiquidityFee)
		if err != nil {
			return math.Int{}, math.Int{}, err
		}
		feePartGross, err := bigmath.MulDiv(totalSharesU, d1MinusD0, d0, siteLiquidityFee)
		if err != nil {
			return math.Int{}, math.Int{}, err
		}
		feePartU, err = bigmath.Sub(feePartGross, sharesU, siteLiquidityFee)
		if err != nil {
			return math.Int{}, math.Int{}, err
		}
	}

	if !sharesU.Fits128() {
		return math.Int{}, math.Int{}, &bigmath.Error{Kind: bigmath.KindCastOverflow, Tag: siteLiquidityShares}
	}
	shares := sharesU.ToMathInt()
	if shares.LT(minShares) {
		return math.Int{}, math.Int{}, types.ErrInsufficientLiquidityMinted.Wrapf("minted %s, required at least %s", shares, minShares)
	}

	for i, amount := range amounts {
		if amount.IsZero() {
			continue
		}
		if err := k.tokens[k.pool.Tokens[i]].Transfer(ctx, caller, k.poolAddress, amount); err != nil {
			return math.Int{}, math.Int{}, err
		}
		k.pool.Reserves[i] = k.pool.Reserves[i].Add(amount)
		k.metrics.RecordReserve(k.pool.Tokens[i], intToFloat64(k.pool.Reserves[i]))
	}

	if err := k.shares.Mint(ctx, to, shares); err != nil {
		return math.Int{}, math.Int{}, err
	}
	k.pool.TotalShares = k.pool.TotalShares.Add(shares)
	k.metrics.RecordSharesMinted(intToFloat64(shares))
	k.metrics.RecordTotalShares(intToFloat64(k.pool.TotalShares))

	feePart := feePartU.ToMathInt()
	if k.pool.HasFeeReceiver() {
		if err := k.mintProtocolFeeShares(ctx, feePart); err != nil {
			return math.Int{}, math.Int{}, err
		}
	}

	k.emitAddLiquidity(caller, amounts, shares, to)
	k.emitSync()

	return shares, feePart, nil
}

// RemoveLiquidityByShares implements §4.6.3: burns shares for a
// proportional slice of every reserve. Does not refresh rates and does not
// consult the invariant solver — the safe escape hatch when the rate
// provider is down (P9).
func (k *Keeper) RemoveLiquidityByShares(ctx context.Context, caller sdk.AccAddress, shares math.Int, minAmounts []math.Int, to sdk.AccAddress) ([]math.Int, error) {
	if err := k.guard.Acquire(); err != nil {
		return nil, err
	}
	defer k.guard.Release()

	n := k.pool.N()
	if len(minAmounts) != n {
		return nil, types.ErrIncorrectAmountsCount
	}
	if k.pool.TotalShares.IsZero() {
		return nil, types.ErrInsufficientLiquidityBurned.Wrap("pool has no outstanding shares")
	}

	amounts := make([]math.Int, n)
	for i := 0; i < n; i++ {
		amounts[i] = k.pool.Reserves[i].Mul(shares).Quo(k.pool.TotalShares)
		if amounts[i].LT(minAmounts[i]) {
			return nil, types.ErrInsufficientLiquidityBurned.Wrapf("amount[%d] %s below minimum %s", i, amounts[i], minAmounts[i])
		}
	}

	if err := k.shares.Burn(ctx, caller, shares); err != nil {
		return nil, err
	}
	k.pool.TotalShares = k.pool.TotalShares.Sub(shares)
	k.metrics.RecordSharesBurned(intToFloat64(shares))
	k.metrics.RecordTotalShares(intToFloat64(k.pool.TotalShares))

	for i, amount := range amounts {
		if amount.IsZero() {
			continue
		}
		k.pool.Reserves[i] = k.pool.Reserves[i].Sub(amount)
		k.metrics.RecordReserve(k.pool.Tokens[i], intToFloat64(k.pool.Reserves[i]))
	}
	for i, amount := range amounts {
		if amount.IsZero() {
			continue
		}
		if err := k.tokens[k.pool.Tokens[i]].Transfer(ctx, k.poolAddress, to, amount); err != nil {
			return nil, err
		}
	}

	k.emitRemoveLiquidity(caller, amounts, shares, to)
	k.emitSync()

	return amounts, nil
}

// RemoveLiquidityByAmounts implements §4.6.4: the withdrawal mirror of
// AddLiquidity, charging the imbalance fee on the asymmetric portion of the
// requested withdrawal amounts.
func (k *Keeper) RemoveLiquidityByAmounts(ctx context.Context, caller sdk.AccAddress, amounts []math.Int, maxShares math.Int, to sdk.AccAddress) (math.Int, math.Int, error) {
	if err := k.guard.Acquire(); err != nil {
		return math.Int{}, math.Int{}, err
	}
	defer k.guard.Release()

	n := k.pool.N()
	if len(amounts) != n {
		return math.Int{}, math.Int{}, types.ErrIncorrectAmountsCount
	}
	if k.pool.TotalShares.IsZero() {
		return math.Int{}, math.Int{}, types.ErrInsufficientLiquidityBurned.Wrap("pool has no outstanding shares")
	}

	if err := k.refreshRates(ctx); err != nil {
		return math.Int{}, math.Int{}, err
	}
	rates := k.currentRates()

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
		newRatedReserves[i], err = bigmath.Sub(oldRatedReserves[i], ratedWithdrawals[i], siteLiquidityAdjust)
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

	totalSharesU, err := bigmath.FromMathInt(k.pool.TotalShares, siteLiquidityShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	d0MinusD2, err := bigmath.Sub(d0, d2, siteLiquidityShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	sharesBurnedU, err := bigmath.MulDiv(totalSharesU, d0MinusD2, d0, siteLiquidityShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	d0MinusD1, err := bigmath.Sub(d0, d1, siteLiquidityFee)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	sharesBurnedGross, err := bigmath.MulDiv(totalSharesU, d0MinusD1, d0, siteLiquidityFee)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	feePartU, err := bigmath.Sub(sharesBurnedU, sharesBurnedGross, siteLiquidityFee)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	if !sharesBurnedU.Fits128() {
		return math.Int{}, math.Int{}, &bigmath.Error{Kind: bigmath.KindCastOverflow, Tag: siteLiquidityShares}
	}
	sharesBurned := sharesBurnedU.ToMathInt()
	if sharesBurned.GT(maxShares) {
		return math.Int{}, math.Int{}, types.ErrInsufficientLiquidityBurned.Wrapf("burn of %s exceeds maximum %s", sharesBurned, maxShares)
	}

	if err := k.shares.Burn(ctx, caller, sharesBurned); err != nil {
		return math.Int{}, math.Int{}, err
	}
	k.pool.TotalShares = k.pool.TotalShares.Sub(sharesBurned)
	k.metrics.RecordSharesBurned(intToFloat64(sharesBurned))
	k.metrics.RecordTotalShares(intToFloat64(k.pool.TotalShares))

	for i, amount := range amounts {
		if amount.IsZero() {
			continue
		}
		k.pool.Reserves[i] = k.pool.Reserves[i].Sub(amount)
		k.metrics.RecordReserve(k.pool.Tokens[i], intToFloat64(k.pool.Reserves[i]))
	}

	feePart := feePartU.ToMathInt()
	if k.pool.HasFeeReceiver() {
		if err := k.mintProtocolFeeShares(ctx, feePart); err != nil {
			return math.Int{}, math.Int{}, err
		}
	}

	for i, amount := range amounts {
		if amount.IsZero() {
			continue
		}
		if err := k.tokens[k.pool.Tokens[i]].Transfer(ctx, k.poolAddress, to, amount); err != nil {
			return math.Int{}, math.Int{}, err
		}
	}

	k.emitRemoveLiquidity(caller, amounts, sharesBurned, to)
	k.emitSync()

	return sharesBurned, feePart, nil
}

// applyImbalanceFee subtracts the normalized imbalance fee (§4.3) from each
// token's new rated reserve, measured against the ideal balanced reserve
// old_i * D1/D0.
func (k *Keeper) applyImbalanceFee(n int, oldRated, newRated []bigmath.Uint256, d0, d1 bigmath.Uint256) ([]bigmath.Uint256, error) {
	tradeFeeU, err := bigmath.FromMathInt(k.pool.PoolFees.TradeFee, siteLiquidityFee)
	if err != nil {
		return nil, err
	}
	feeDenomU := bigmath.FromUint64(types.FeeDenom)

	adjusted := make([]bigmath.Uint256, n)
	for i := 0; i < n; i++ {
		ideal, err := bigmath.MulDiv(oldRated[i], d1, d0, siteLiquidityAdjust)
		if err != nil {
			return nil, err
		}
		diff := bigmath.AbsDiff(newRated[i], ideal)
		imbalanceFee, err := feepolicy.NormalizedTradeFee(n, diff, tradeFeeU, feeDenomU)
		if err != nil {
			return nil, err
		}
		adjusted[i], err = bigmath.Sub(newRated[i], imbalanceFee, siteLiquidityAdjust)
		if err != nil {
			return nil, err
		}
	}
	return adjusted, nil
}

// mintProtocolFeeShares mints the protocol's slice of feePart to the fee
// receiver, per §4.6.2 step 7 / §4.6.4's mirrored rule.
func (k *Keeper) mintProtocolFeeShares(ctx context.Context, feePart math.Int) error {
	if !feePart.IsPositive() {
		return nil
	}
	feePartU, err := bigmath.FromMathInt(feePart, siteLiquidityFee)
	if err != nil {
		return err
	}
	protocolFeeU, err := bigmath.FromMathInt(k.pool.PoolFees.ProtocolFee, siteLiquidityFee)
	if err != nil {
		return err
	}
	portion, err := feepolicy.ProtocolFeePortion(feePartU, protocolFeeU, bigmath.FromUint64(types.FeeDenom))
	if err != nil {
		return err
	}
	if portion.IsZero() {
		return nil
	}
	portionInt := portion.ToMathInt()
	if err := k.shares.Mint(ctx, k.pool.FeeReceiver, portionInt); err != nil {
		return err
	}
	k.pool.TotalShares = k.pool.TotalShares.Add(portionInt)
	k.metrics.RecordProtocolFeeMinted(intToFloat64(portionInt))
	k.metrics.RecordTotalShares(intToFloat64(k.pool.TotalShares))
	return nil
}

func (k *Keeper) currentRates() []math.Int {
	out := make([]math.Int, k.pool.N())
	for i, r := range k.pool.Rates {
		out[i] = r.GetRate()
	}
	return out
}
