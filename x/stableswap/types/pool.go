package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Fees holds the pool's fee parameters, per §3.1. TradeFee and ProtocolFee
// are expressed against FeeDenom.
type Fees struct {
	TradeFee    math.Int
	ProtocolFee math.Int
}

// Validate checks TradeFee ≤ MaxTradeFee and ProtocolFee ≤ MaxProtocolFee.
func (f Fees) Validate() error {
	if f.TradeFee.IsNegative() || f.TradeFee.GT(math.NewInt(MaxTradeFee)) {
		return ErrInvalidFee.Wrapf("trade_fee %s exceeds MAX_TRADE_FEE %d", f.TradeFee, MaxTradeFee)
	}
	if f.ProtocolFee.IsNegative() || f.ProtocolFee.GT(math.NewInt(MaxProtocolFee)) {
		return ErrInvalidFee.Wrapf("protocol_fee %s exceeds MAX_PROTOCOL_FEE %d", f.ProtocolFee, MaxProtocolFee)
	}
	return nil
}

// Pool is the process-wide singleton-per-instance AMM state of §3.1. Token
// ordering is immutable after construction and defines every index position
// used elsewhere (reserves, rates, precisions).
type Pool struct {
	Tokens      []string
	Decimals    []uint32
	Precisions  []math.Int
	Reserves    []math.Int
	Rates       []TokenRate
	AmpCoef     uint64
	PoolFees    Fees
	FeeReceiver sdk.AccAddress // nil means "no fee receiver" (disables protocol fees)
	Owner       sdk.AccAddress
	TotalShares math.Int
}

// TokenRateSpec is the constructor-time description of a token's rate
// source: either a fixed rate, or an oracle-backed entry with a TTL.
type TokenRateSpec struct {
	OracleID string // empty for Constant
	Source   RateSource
	TTLMs    int64
	Constant math.Int // used when Source == nil
}

// NewPool constructs a Pool, validating per §4.6.1: all tokens distinct; N
// matches decimals and rates; each decimal ≤ TargetDecimals; amp in
// [MinAmp, MaxAmp]; fee parameters within limits; External rates are
// fetched once.
func NewPool(ctx context.Context, tokens []string, decimals []uint32, rateSpecs []TokenRateSpec, amp uint64, owner sdk.AccAddress, fees Fees, feeReceiver sdk.AccAddress, clock Clock) (*Pool, error) {
	n := len(tokens)
	if n < MinCoins || n > MaxCoins {
		return nil, ErrIncorrectTokenCount.Wrapf("got %d tokens, want between %d and %d", n, MinCoins, MaxCoins)
	}
	if len(decimals) != n || len(rateSpecs) != n {
		return nil, ErrIncorrectAmountsCount.Wrapf("tokens=%d decimals=%d rates=%d", n, len(decimals), len(rateSpecs))
	}

	seen := make(map[string]struct{}, n)
	for _, t := range tokens {
		if _, dup := seen[t]; dup {
			return nil, ErrIdenticalTokenId.Wrapf("token %q appears more than once", t)
		}
		seen[t] = struct{}{}
	}

	if amp < MinAmp || amp > MaxAmp {
		return nil, ErrInvalidAmpCoef.Wrapf("amp %d out of range [%d, %d]", amp, MinAmp, MaxAmp)
	}
	if err := fees.Validate(); err != nil {
		return nil, err
	}

	precisions := make([]math.Int, n)
	rates := make([]TokenRate, n)
	reserves := make([]math.Int, n)
	now := clock.NowMillis()

	for i := 0; i < n; i++ {
		if decimals[i] > TargetDecimals {
			return nil, ErrTooLargeTokenDecimal.Wrapf("token %q has %d decimals, target is %d", tokens[i], decimals[i], TargetDecimals)
		}
		precisions[i] = math.NewInt(10).Power(uint64(TargetDecimals - decimals[i]))
		reserves[i] = math.ZeroInt()

		spec := rateSpecs[i]
		if spec.Source == nil {
			rates[i] = NewConstantRate(spec.Constant)
			continue
		}
		initial, err := spec.Source.GetRate(ctx)
		if err != nil {
			return nil, err
		}
		rates[i] = NewExternalRate(spec.OracleID, spec.Source, spec.TTLMs, initial, now)
	}

	return &Pool{
		Tokens:      append([]string(nil), tokens...),
		Decimals:    append([]uint32(nil), decimals...),
		Precisions:  precisions,
		Reserves:    reserves,
		Rates:       rates,
		AmpCoef:     amp,
		PoolFees:    fees,
		FeeReceiver: feeReceiver,
		Owner:       owner,
		TotalShares: math.ZeroInt(),
	}, nil
}

// IndexOf returns the position of token in p.Tokens, or -1 and
// ErrInvalidTokenId if it is not a constituent of the pool.
func (p *Pool) IndexOf(token string) (int, error) {
	for i, t := range p.Tokens {
		if t == token {
			return i, nil
		}
	}
	return -1, ErrInvalidTokenId.Wrapf("token %q is not part of this pool", token)
}

// HasFeeReceiver reports whether protocol fees are enabled.
func (p *Pool) HasFeeReceiver() bool {
	return p.FeeReceiver != nil && !p.FeeReceiver.Empty()
}

// N returns the number of constituent tokens.
func (p *Pool) N() int { return len(p.Tokens) }
