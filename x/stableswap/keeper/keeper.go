// Package keeper implements the pool operations of §4.6 (add/remove
// liquidity, the three swap variants, force_update_rate, the view quote
// methods) and the administration setters of §4.7, atop the data model in
// x/stableswap/types. Grounded on the teacher's x/dex/keeper package: the
// {validate → refresh → compute → mutate reserves → transfer → emit}
// ordering in pool.go/swap.go/liquidity.go/fees.go, pivoted from a
// multi-pool KVStore-indexed registry to the spec's singleton-per-instance
// Pool (§3.1).
package keeper

import (
	"context"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lumen-amm/stableswap/internal/bigmath"
	"github.com/lumen-amm/stableswap/internal/curve"
	"github.com/lumen-amm/stableswap/internal/scale"
	"github.com/lumen-amm/stableswap/x/stableswap/types"
)

const (
	siteReserve = iota
	siteRate
	siteAmount
)

// Keeper wires a Pool together with its external collaborators: the
// constituent tokens' fungible-token interfaces, the pool's own LP share
// ledger, event emission, the clock driving rate TTLs, structured logging,
// and metrics. It is the sole owner of the Pool's mutable state.
type Keeper struct {
	pool        *types.Pool
	tokens      map[string]types.FungibleToken
	shares      types.ShareLedger
	poolAddress sdk.AccAddress
	events      types.EventManager
	clock       types.Clock
	logger      log.Logger
	metrics     *Metrics
	guard       ReentrancyGuard
}

// NewKeeper constructs a Keeper around an already-built Pool. tokens must
// have an entry for every pool.Tokens[i]. poolAddress is the custodial
// address the pool's reserves are actually held at; token transfers in
// every operation move funds to/from this address, matching the teacher's
// module-account pattern (GetModuleAddress in x/dex/keeper/pool.go).
func NewKeeper(pool *types.Pool, tokens map[string]types.FungibleToken, shares types.ShareLedger, poolAddress sdk.AccAddress, events types.EventManager, clock types.Clock, logger log.Logger, metrics *Metrics) *Keeper {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Keeper{
		pool:        pool,
		tokens:      tokens,
		shares:      shares,
		poolAddress: poolAddress,
		events:      events,
		clock:       clock,
		logger:      logger.With("module", types.ModuleName),
		metrics:     metrics,
	}
}

// These accessors expose the read-only view surface of §6.1: tokens,
// reserves, amp_coef, fees.
func (k *Keeper) Tokens() []string        { return append([]string(nil), k.pool.Tokens...) }
func (k *Keeper) AmpCoef() uint64         { return k.pool.AmpCoef }
func (k *Keeper) PoolFees() types.Fees    { return k.pool.PoolFees }
func (k *Keeper) Owner() sdk.AccAddress   { return k.pool.Owner }
func (k *Keeper) TotalShares() math.Int   { return k.pool.TotalShares }
func (k *Keeper) FeeReceiver() sdk.AccAddress {
	return k.pool.FeeReceiver
}
func (k *Keeper) Reserves() []math.Int {
	out := make([]math.Int, len(k.pool.Reserves))
	copy(out, k.pool.Reserves)
	return out
}

// refreshRates is the mandatory prologue of every mutating operation: every
// token_rate entry is refreshed at most once, before any math, per §4.4/§5.
// Emits RatesUpdated iff any cached value changed.
func (k *Keeper) refreshRates(ctx context.Context) error {
	now := k.clock.NowMillis()
	anyChanged := false
	for i, rate := range k.pool.Rates {
		changed, err := rate.UpdateRate(ctx, now)
		if err != nil {
			return err
		}
		k.pool.Rates[i] = rate
		if changed {
			anyChanged = true
			k.metrics.RecordRateRefreshed(k.pool.Tokens[i])
		}
	}
	if anyChanged {
		k.emitRatesUpdated()
	}
	return nil
}

// quoteRates returns what refreshRates would compute for each token's rate,
// without mutating any cached value or timestamp — the pure half of the
// rate-refresh split resolved in DESIGN.md for the view methods of §4.6.9.
func (k *Keeper) quoteRates(ctx context.Context) ([]math.Int, error) {
	now := k.clock.NowMillis()
	out := make([]math.Int, len(k.pool.Rates))
	for i, rate := range k.pool.Rates {
		q, err := rate.QuoteRate(ctx, now)
		if err != nil {
			return nil, err
		}
		out[i] = q
	}
	return out, nil
}

// forceUpdateRate is the implementation backing the exported
// ForceUpdateRate operation (§4.6.8): unconditionally refreshes every
// External rate.
func (k *Keeper) forceUpdateRate(ctx context.Context) error {
	now := k.clock.NowMillis()
	anyChanged := false
	for i, rate := range k.pool.Rates {
		changed, err := rate.UpdateRateNoCache(ctx, now)
		if err != nil {
			return err
		}
		k.pool.Rates[i] = rate
		if changed {
			anyChanged = true
			k.metrics.RecordRateRefreshed(k.pool.Tokens[i])
		}
	}
	if anyChanged {
		k.emitRatesUpdated()
	}
	return nil
}

// ratedReserves converts the pool's current native-precision reserves into
// rated (invariant-space) amounts using the supplied per-token rates.
func (k *Keeper) ratedReserves(rates []math.Int) ([]bigmath.Uint256, error) {
	out := make([]bigmath.Uint256, k.pool.N())
	for i := range out {
		r, err := k.ratedAmount(i, k.pool.Reserves[i], rates[i])
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// ratedAmount converts a single token-native amount at index i into rated
// (invariant-space) form using the given rate.
func (k *Keeper) ratedAmount(i int, amount, rate math.Int) (bigmath.Uint256, error) {
	amt, err := bigmath.FromMathInt(amount, siteAmount)
	if err != nil {
		return bigmath.Uint256{}, err
	}
	precision, err := bigmath.FromMathInt(k.pool.Precisions[i], siteAmount)
	if err != nil {
		return bigmath.Uint256{}, err
	}
	rateU, err := bigmath.FromMathInt(rate, siteRate)
	if err != nil {
		return bigmath.Uint256{}, err
	}
	if _, err := scale.ScaledRate(rateU, precision); err != nil {
		return bigmath.Uint256{}, err
	}
	common, err := scale.ToCommon(amt, precision)
	if err != nil {
		return bigmath.Uint256{}, err
	}
	return scale.ToRated(common, rateU, bigmath.FromUint64(types.RatePrecision))
}

// fromRatedAmount is the inverse of ratedAmount: converts a rated
// (invariant-space) amount back to token-native units at index i, flooring
// per §4.5.
func (k *Keeper) fromRatedAmount(i int, rated bigmath.Uint256, rate math.Int) (math.Int, error) {
	precision, err := bigmath.FromMathInt(k.pool.Precisions[i], siteAmount)
	if err != nil {
		return math.Int{}, err
	}
	rateU, err := bigmath.FromMathInt(rate, siteRate)
	if err != nil {
		return math.Int{}, err
	}
	if _, err := scale.ScaledRate(rateU, precision); err != nil {
		return math.Int{}, err
	}
	back, err := scale.FromRatedAmount(rated, precision, rateU, bigmath.FromUint64(types.RatePrecision))
	if err != nil {
		return math.Int{}, err
	}
	return back.ToMathInt(), nil
}

func (k *Keeper) computeD(rated []bigmath.Uint256) (bigmath.Uint256, error) {
	return curve.ComputeD(rated, k.pool.AmpCoef)
}

func (k *Keeper) emitRatesUpdated() {
	if k.events == nil {
		return
	}
	attrs := make([]sdk.Attribute, 0, len(k.pool.Rates))
	for i, r := range k.pool.Rates {
		attrs = append(attrs, sdk.NewAttribute(k.pool.Tokens[i], r.GetRate().String()))
	}
	k.events.EmitEvent(sdk.NewEvent(types.EventTypeRatesUpdated, attrs...))
}

func (k *Keeper) timeSince(start time.Time) float64 {
	return float64(time.Since(start).Milliseconds())
}
