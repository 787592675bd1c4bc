// Package scale implements the conversions between a token's native
// precision, the pool's common TARGET_DECIMALS precision, and the rated
// (exchange-rate-adjusted) amount the invariant solver operates on, per
// §4.5. There is no teacher equivalent (the teacher's pools are
// same-decimal pairs); this is built directly from the specification and
// original_source's stable_swap_math scaling helpers, in the checked-
// arithmetic idiom established by internal/bigmath.
package scale

import (
	"github.com/lumen-amm/stableswap/internal/bigmath"
)

const (
	siteCommon = iota
	siteRated
	siteInverseRated
	siteInverseCommon
	siteScaledRate
)

// maxUint128 is the ceiling a scaled rate (rate * precision) must stay
// under per §3.2.
var maxUint128 = func() bigmath.Uint256 {
	one := bigmath.One()
	shifted := one
	for i := 0; i < 128; i++ {
		shifted, _ = bigmath.Add(shifted, shifted, -1)
	}
	return shifted
}()

// ScaledRate computes rate*precision, rejecting configurations where the
// result does not fit in 128 bits.
func ScaledRate(rate, precision bigmath.Uint256) (bigmath.Uint256, error) {
	scaled, err := bigmath.Mul(rate, precision, siteScaledRate)
	if err != nil {
		return bigmath.Uint256{}, err
	}
	if scaled.Cmp(maxUint128) >= 0 {
		return bigmath.Uint256{}, &bigmath.Error{Kind: bigmath.KindMulOverflow, Tag: siteScaledRate}
	}
	return scaled, nil
}

// ToCommon converts a token-native amount to the pool's common-precision
// representation: amount * precision.
func ToCommon(amount, precision bigmath.Uint256) (bigmath.Uint256, error) {
	return bigmath.Mul(amount, precision, siteCommon)
}

// ToRated converts a common-precision amount into the rated (invariant
// space) amount: common * rate / RATE_PRECISION. rate is the token's plain
// exchange rate; the precision was already applied by ToCommon.
func ToRated(common, rate, ratePrecision bigmath.Uint256) (bigmath.Uint256, error) {
	return bigmath.MulDiv(common, rate, ratePrecision, siteRated)
}

// FromRated is the inverse of ToRated, floor-dividing: rated *
// RATE_PRECISION / rate.
func FromRated(rated, rate, ratePrecision bigmath.Uint256) (bigmath.Uint256, error) {
	return bigmath.MulDiv(rated, ratePrecision, rate, siteInverseRated)
}

// FromCommon is the inverse of ToCommon, floor-dividing: common /
// precision.
func FromCommon(common, precision bigmath.Uint256) (bigmath.Uint256, error) {
	return bigmath.Div(common, precision, siteInverseCommon)
}

// ToRatedAmount composes ToCommon and ToRated: token-native amount directly
// to rated (invariant-space) amount.
func ToRatedAmount(amount, precision, rate, ratePrecision bigmath.Uint256) (bigmath.Uint256, error) {
	common, err := ToCommon(amount, precision)
	if err != nil {
		return bigmath.Uint256{}, err
	}
	return ToRated(common, rate, ratePrecision)
}

// FromRatedAmount composes FromRated and FromCommon: rated (invariant-space)
// amount back to token-native units, floor-rounded. Per §4.5 this rounding
// always favors the pool: the caller receives/deposits no more than the
// rated amount implies.
func FromRatedAmount(rated, precision, rate, ratePrecision bigmath.Uint256) (bigmath.Uint256, error) {
	common, err := FromRated(rated, rate, ratePrecision)
	if err != nil {
		return bigmath.Uint256{}, err
	}
	return FromCommon(common, precision)
}
