// Package feepolicy implements the gross/net trade-fee split, the
// normalized imbalance fee for multi-token deposits/withdrawals, and the
// protocol-fee extraction formula of §4.3. Grounded on the teacher's
// x/dex/keeper/fees.go for the split-and-route shape (fee divided into an
// LP-retained portion and a protocol portion routed to a designated
// receiver) and on original_source/amm/contracts/stable_pool/fees.rs for
// the exact normalized-imbalance-fee formula, which the teacher's
// constant-product fee code has no equivalent of.
package feepolicy

import (
	"github.com/lumen-amm/stableswap/internal/bigmath"
)

const (
	siteGross = iota
	siteNet
	siteImbalance
	siteProtocol
)

// TradeFeeFromGross returns amount * tradeFee / feeDenom: the fee owed when
// amount already includes it (the output-side dy of a swap).
func TradeFeeFromGross(amount, tradeFee, feeDenom bigmath.Uint256) (bigmath.Uint256, error) {
	return bigmath.MulDiv(amount, tradeFee, feeDenom, siteGross)
}

// TradeFeeFromNet returns amount * tradeFee / (feeDenom - tradeFee): the fee
// implied when amount is already net of fee and the gross value must be
// recovered (used by swap_exact_out).
func TradeFeeFromNet(amount, tradeFee, feeDenom bigmath.Uint256) (bigmath.Uint256, error) {
	denom, err := bigmath.Sub(feeDenom, tradeFee, siteNet)
	if err != nil {
		return bigmath.Uint256{}, err
	}
	return bigmath.MulDiv(amount, tradeFee, denom, siteNet)
}

// NormalizedTradeFee computes the imbalance fee charged on a single token's
// deviation from its ideal balanced reserve during a multi-token deposit or
// withdrawal: diff * (tradeFee * n / (4*(n-1))) / feeDenom. n is the number
// of tokens in the pool and must be ≥ 2.
func NormalizedTradeFee(n int, diff, tradeFee, feeDenom bigmath.Uint256) (bigmath.Uint256, error) {
	nU := bigmath.FromUint64(uint64(n))
	nMinus1 := bigmath.FromUint64(uint64(n - 1))
	four := bigmath.FromUint64(4)

	numerator, err := bigmath.Mul(tradeFee, nU, siteImbalance)
	if err != nil {
		return bigmath.Uint256{}, err
	}
	denominator, err := bigmath.Mul(four, nMinus1, siteImbalance)
	if err != nil {
		return bigmath.Uint256{}, err
	}
	scaledFee, err := bigmath.Div(numerator, denominator, siteImbalance)
	if err != nil {
		return bigmath.Uint256{}, err
	}
	return bigmath.MulDiv(diff, scaledFee, feeDenom, siteImbalance)
}

// ProtocolFeePortion returns fee * protocolFee / feeDenom: the slice of an
// already-collected fee that is converted into freshly minted LP shares for
// the fee receiver.
func ProtocolFeePortion(fee, protocolFee, feeDenom bigmath.Uint256) (bigmath.Uint256, error) {
	return bigmath.MulDiv(fee, protocolFee, feeDenom, siteProtocol)
}
