// Package curve implements the stableswap invariant solver: compute_d and
// compute_y, the two Newton-Raphson routines at the heart of the pool's
// pricing. The numerical method is grounded on
// original_source/helpers/stable_swap_math (the Cardinal-Cryptography
// common-amm-stable-swap reference this specification was distilled from);
// the Go idiom (checked arithmetic via internal/bigmath, named error
// returns) follows the teacher's safemath.go checked-composition style.
package curve

import (
	"github.com/lumen-amm/stableswap/internal/bigmath"
	"github.com/lumen-amm/stableswap/x/stableswap/types"
)

// siteTag values identify failure sites for MathError diagnostics. They are
// opaque to callers.
const (
	siteDSum = iota
	siteDProd
	siteDNumerator
	siteDDenominator
	siteDAnn
	siteYAnn
	siteYB
	siteYC
	siteYIter
)

// ComputeD finds the invariant D for the given rated reserves and
// amplification coefficient A, per §4.2 of the specification. Returns 0
// immediately if every reserve is zero.
func ComputeD(amounts []bigmath.Uint256, amp uint64) (bigmath.Uint256, error) {
	n := len(amounts)

	sum := bigmath.Zero()
	var err error
	for _, a := range amounts {
		sum, err = bigmath.Add(sum, a, siteDSum)
		if err != nil {
			return bigmath.Uint256{}, err
		}
	}
	if sum.IsZero() {
		return bigmath.Zero(), nil
	}

	ann, err := ann(amp, n, siteDAnn)
	if err != nil {
		return bigmath.Uint256{}, err
	}
	nU := bigmath.FromUint64(uint64(n))
	nPlus1 := bigmath.FromUint64(uint64(n + 1))
	annMinus1, err := bigmath.Sub(ann, bigmath.One(), siteDAnn)
	if err != nil {
		return bigmath.Uint256{}, err
	}

	d := sum
	for i := 0; i < types.MaxIterations; i++ {
		dProd := d
		for _, x := range amounts {
			denom, err := bigmath.Mul(nU, x, siteDProd)
			if err != nil {
				return bigmath.Uint256{}, err
			}
			dProd, err = bigmath.MulDiv(dProd, d, denom, siteDProd)
			if err != nil {
				return bigmath.Uint256{}, err
			}
		}

		annS, err := bigmath.Mul(ann, sum, siteDNumerator)
		if err != nil {
			return bigmath.Uint256{}, err
		}
		dProdN, err := bigmath.Mul(dProd, nU, siteDNumerator)
		if err != nil {
			return bigmath.Uint256{}, err
		}
		numeratorInner, err := bigmath.Add(annS, dProdN, siteDNumerator)
		if err != nil {
			return bigmath.Uint256{}, err
		}
		numerator, err := bigmath.Mul(d, numeratorInner, siteDNumerator)
		if err != nil {
			return bigmath.Uint256{}, err
		}

		dAnnMinus1, err := bigmath.Mul(d, annMinus1, siteDDenominator)
		if err != nil {
			return bigmath.Uint256{}, err
		}
		dProdNPlus1, err := bigmath.Mul(dProd, nPlus1, siteDDenominator)
		if err != nil {
			return bigmath.Uint256{}, err
		}
		denominator, err := bigmath.Add(dAnnMinus1, dProdNPlus1, siteDDenominator)
		if err != nil {
			return bigmath.Uint256{}, err
		}

		dNew, err := bigmath.Div(numerator, denominator, siteDDenominator)
		if err != nil {
			return bigmath.Uint256{}, err
		}

		if bigmath.AbsDiff(dNew, d).Cmp(bigmath.One()) <= 0 {
			// Per §4.2: return the prior iterate, not the newly computed one.
			return d, nil
		}
		d = dNew
	}
	// MAX_ITERATIONS exhausted: not an error, return the last value computed.
	return d, nil
}

// ComputeY returns the new reserve of token yIdx that preserves the
// invariant D (computed from the current reserves) after token xIdx's
// reserve becomes newReserveX, per §4.2.
func ComputeY(newReserveX bigmath.Uint256, reserves []bigmath.Uint256, xIdx, yIdx int, amp uint64) (bigmath.Uint256, error) {
	n := len(reserves)
	if xIdx == yIdx {
		return bigmath.Uint256{}, &bigmath.Error{Kind: bigmath.KindDivByZero, Tag: siteYIter}
	}

	d, err := ComputeD(reserves, amp)
	if err != nil {
		return bigmath.Uint256{}, err
	}

	xs := make([]bigmath.Uint256, n)
	copy(xs, reserves)
	xs[xIdx] = newReserveX

	ann, err := ann(amp, n, siteYAnn)
	if err != nil {
		return bigmath.Uint256{}, err
	}
	nU := bigmath.FromUint64(uint64(n))

	// c = D^(n+1) / (n^n * Ann * Prod_{i != yIdx} x_i')
	c := d
	s := bigmath.Zero()
	for i, x := range xs {
		if i == yIdx {
			continue
		}
		denom, err := bigmath.Mul(nU, x, siteYC)
		if err != nil {
			return bigmath.Uint256{}, err
		}
		c, err = bigmath.MulDiv(c, d, denom, siteYC)
		if err != nil {
			return bigmath.Uint256{}, err
		}
		s, err = bigmath.Add(s, x, siteYB)
		if err != nil {
			return bigmath.Uint256{}, err
		}
	}
	annN, err := bigmath.Mul(ann, nU, siteYC)
	if err != nil {
		return bigmath.Uint256{}, err
	}
	c, err = bigmath.MulDiv(c, d, annN, siteYC)
	if err != nil {
		return bigmath.Uint256{}, err
	}

	// b = D/Ann + S_
	dOverAnn, err := bigmath.Div(d, ann, siteYB)
	if err != nil {
		return bigmath.Uint256{}, err
	}
	b, err := bigmath.Add(dOverAnn, s, siteYB)
	if err != nil {
		return bigmath.Uint256{}, err
	}

	y := d
	for i := 0; i < types.MaxIterations; i++ {
		yPrev := y

		ySquared, err := bigmath.Mul(y, y, siteYIter)
		if err != nil {
			return bigmath.Uint256{}, err
		}
		numerator, err := bigmath.Add(ySquared, c, siteYIter)
		if err != nil {
			return bigmath.Uint256{}, err
		}

		twoY, err := bigmath.Mul(y, bigmath.FromUint64(2), siteYIter)
		if err != nil {
			return bigmath.Uint256{}, err
		}
		denomPlusB, err := bigmath.Add(twoY, b, siteYIter)
		if err != nil {
			return bigmath.Uint256{}, err
		}
		denominator, err := bigmath.Sub(denomPlusB, d, siteYIter)
		if err != nil {
			return bigmath.Uint256{}, err
		}

		y, err = bigmath.Div(numerator, denominator, siteYIter)
		if err != nil {
			return bigmath.Uint256{}, err
		}

		if bigmath.AbsDiff(y, yPrev).Cmp(bigmath.One()) <= 0 {
			return y, nil
		}
	}
	return y, nil
}

// ann computes A*n^n as a Uint256. n ≤ types.MaxCoins = 8 and
// A ≤ types.MaxAmp = 10^6, so A*n^n ≤ ~1.68e13 and always fits in a uint64
// before conversion.
func ann(amp uint64, n int, tag int) (bigmath.Uint256, error) {
	nn := uint64(1)
	for i := 0; i < n; i++ {
		nn *= uint64(n)
	}
	return bigmath.Mul(bigmath.FromUint64(amp), bigmath.FromUint64(nn), tag)
}
