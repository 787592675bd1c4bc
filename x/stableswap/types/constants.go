package types

// Fixed-point and bound constants shared by every component of the pool.
// Values and names follow §6.5 of the specification this module implements;
// cross-checked against original_source/helpers/constants.rs, which defines
// the same bounds for the reference stableswap math this was distilled from.
const (
	// TargetDecimals is the common precision in which all invariant math is
	// performed, regardless of any constituent token's native decimals.
	TargetDecimals = 18

	// RateDecimals is the fixed-point precision of a per-token exchange
	// rate; RatePrecision is 10^RateDecimals.
	RateDecimals  = 12
	RatePrecision = 1_000_000_000_000

	// MinAmp and MaxAmp bound the amplification coefficient A.
	MinAmp = 1
	MaxAmp = 1_000_000

	// FeeDenom is the denominator against which trade_fee and
	// protocol_fee are expressed.
	FeeDenom = 1_000_000_000

	// MaxTradeFee is 1% of FeeDenom.
	MaxTradeFee = 10_000_000

	// MaxProtocolFee is 50% of FeeDenom.
	MaxProtocolFee = 500_000_000

	// MaxIterations bounds the Newton-Raphson solver in compute_d and
	// compute_y. Exhausting it is not treated as an error; valid inputs
	// converge in under ~20 iterations.
	MaxIterations = 255

	// MaxCoins is the largest number of distinct tokens a single pool may
	// hold.
	MaxCoins = 8

	// MinCoins is the smallest number of distinct tokens a pool may hold.
	MinCoins = 2
)
