package types

import (
	"context"

	"cosmossdk.io/math"
)

// RateKind discriminates the two TokenRate variants of §4.4. Modeled as a
// sum type via an enum field rather than polymorphic dispatch, per the
// design note in §9: this keeps the rate-refresh loop branch-predictable
// and lets internal/scale receive a single scalar.
type RateKind int

const (
	RateKindConstant RateKind = iota
	RateKindExternal
)

// TokenRate is a per-token exchange rate entry: either a fixed Constant
// value, or an External value backed by an oracle and cached with a TTL.
// Grounded on the teacher's oracle_integration.go OracleKeeper interface
// shape (external collaborator + staleness check against an injected
// clock), retargeted from USD pricing to per-token exchange-rate scaling.
type TokenRate struct {
	kind         RateKind
	oracleID     string
	source       RateSource
	cached       math.Int
	lastUpdateMs int64
	ttlMs        int64
}

// NewConstantRate builds a Constant TokenRate. get_rate always returns rate;
// update_rate is a no-op.
func NewConstantRate(rate math.Int) TokenRate {
	return TokenRate{kind: RateKindConstant, cached: rate}
}

// NewExternalRate builds an External TokenRate backed by source, seeded
// with initial (the rate fetched once at construction per §4.6.1) at time
// nowMs, expiring after ttlMs milliseconds.
func NewExternalRate(oracleID string, source RateSource, ttlMs int64, initial math.Int, nowMs int64) TokenRate {
	return TokenRate{
		kind:         RateKindExternal,
		oracleID:     oracleID,
		source:       source,
		cached:       initial,
		lastUpdateMs: nowMs,
		ttlMs:        ttlMs,
	}
}

// Kind reports which variant this entry is.
func (r TokenRate) Kind() RateKind { return r.kind }

// OracleID returns the diagnostic oracle identifier for an External entry.
func (r TokenRate) OracleID() string { return r.oracleID }

// GetRate returns the currently cached rate, RATE_DECIMALS precision.
func (r TokenRate) GetRate() math.Int { return r.cached }

// UpdateRate refreshes the cache iff this is an External entry whose TTL
// has elapsed as of nowMs, returning whether the cached value changed.
// Constant entries are always a no-op returning false. This is the
// "mutating" half of the Open Question resolved in DESIGN.md: only this
// method, called from an operation's prologue, persists lastUpdateMs.
func (r *TokenRate) UpdateRate(ctx context.Context, nowMs int64) (bool, error) {
	if r.kind == RateKindConstant {
		return false, nil
	}
	if nowMs-r.lastUpdateMs < r.ttlMs {
		return false, nil
	}
	return r.updateNoCache(ctx, nowMs)
}

// UpdateRateNoCache unconditionally queries the oracle and updates the
// cache, used by force_update_rate (§4.6.8).
func (r *TokenRate) UpdateRateNoCache(ctx context.Context, nowMs int64) (bool, error) {
	if r.kind == RateKindConstant {
		return false, nil
	}
	return r.updateNoCache(ctx, nowMs)
}

func (r *TokenRate) updateNoCache(ctx context.Context, nowMs int64) (bool, error) {
	fresh, err := r.source.GetRate(ctx)
	if err != nil {
		return false, err
	}
	changed := !fresh.Equal(r.cached)
	r.cached = fresh
	r.lastUpdateMs = nowMs
	return changed, nil
}

// QuoteRate returns what UpdateRate would produce without mutating the
// entry: the pure half of the Open Question on view methods and rate
// refresh (§9). A view operation calls QuoteRate; a mutating operation
// calls UpdateRate. Both agree on the value they'd return at the same nowMs.
func (r TokenRate) QuoteRate(ctx context.Context, nowMs int64) (math.Int, error) {
	if r.kind == RateKindConstant {
		return r.cached, nil
	}
	if nowMs-r.lastUpdateMs < r.ttlMs {
		return r.cached, nil
	}
	return r.source.GetRate(ctx)
}
