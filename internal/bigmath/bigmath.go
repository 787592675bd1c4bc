// Package bigmath provides the 256-bit unsigned checked-arithmetic shim
// used by the invariant solver and scaling layer to avoid silent overflow
// on intermediate products. Every operation fails with a tagged MathError
// instead of panicking or wrapping.
package bigmath

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"
	"github.com/holiman/uint256"
)

// Kind identifies the class of arithmetic failure.
type Kind int

const (
	KindAddOverflow Kind = iota
	KindSubUnderflow
	KindMulOverflow
	KindDivByZero
	KindCastOverflow
)

func (k Kind) String() string {
	switch k {
	case KindAddOverflow:
		return "AddOverflow"
	case KindSubUnderflow:
		return "SubUnderflow"
	case KindMulOverflow:
		return "MulOverflow"
	case KindDivByZero:
		return "DivByZero"
	case KindCastOverflow:
		return "CastOverflow"
	default:
		return "Unknown"
	}
}

// Error is a MathError: a kind plus an opaque site tag for postmortem
// diagnosis. Tags carry no meaning to callers beyond identifying the call
// site that produced the failure.
type Error struct {
	Kind Kind
	Tag  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("bigmath: %s (site %d)", e.Kind, e.Tag)
}

func newErr(k Kind, tag int) error { return &Error{Kind: k, Tag: tag} }

// Uint256 is a 256-bit unsigned integer value. The zero value is 0.
type Uint256 struct {
	v uint256.Int
}

// Zero returns the additive identity.
func Zero() Uint256 { return Uint256{} }

// One returns the multiplicative identity.
func One() Uint256 { return FromUint64(1) }

// FromUint64 constructs a Uint256 from a uint64.
func FromUint64(x uint64) Uint256 {
	return Uint256{v: *uint256.NewInt(x)}
}

// FromBigInt narrows an arbitrary-precision integer into 256 bits, failing
// with CastOverflow if it does not fit or is negative.
func FromBigInt(b *big.Int, tag int) (Uint256, error) {
	if b.Sign() < 0 {
		return Uint256{}, newErr(KindCastOverflow, tag)
	}
	z, overflow := uint256.FromBig(b)
	if overflow {
		return Uint256{}, newErr(KindCastOverflow, tag)
	}
	return Uint256{v: *z}, nil
}

// FromMathInt narrows a cosmossdk.io/math.Int into 256 bits.
func FromMathInt(i math.Int, tag int) (Uint256, error) {
	return FromBigInt(i.BigInt(), tag)
}

// ToMathInt widens back to an arbitrary-precision math.Int. Never fails:
// 256 bits always fits.
func (u Uint256) ToMathInt() math.Int {
	return math.NewIntFromBigInt(u.v.ToBig())
}

// ToBig returns the big.Int representation.
func (u Uint256) ToBig() *big.Int {
	return u.v.ToBig()
}

// Uint64 narrows to a uint64, failing with CastOverflow if the value does
// not fit.
func (u Uint256) Uint64(tag int) (uint64, error) {
	if !u.v.IsUint64() {
		return 0, newErr(KindCastOverflow, tag)
	}
	return u.v.Uint64(), nil
}

// IsZero reports whether u is zero.
func (u Uint256) IsZero() bool { return u.v.IsZero() }

// Fits128 reports whether u fits in 128 bits, the narrowing check applied
// to minted/burned share amounts and to any value crossing back out of the
// 256-bit invariant domain.
func (u Uint256) Fits128() bool { return u.v.BitLen() <= 128 }

// Cmp compares u to o: -1, 0, 1.
func (u Uint256) Cmp(o Uint256) int { return u.v.Cmp(&o.v) }

// LT reports u < o.
func (u Uint256) LT(o Uint256) bool { return u.Cmp(o) < 0 }

// GT reports u > o.
func (u Uint256) GT(o Uint256) bool { return u.Cmp(o) > 0 }

// String renders the decimal form.
func (u Uint256) String() string { return u.v.String() }

// Add computes a+b, failing with AddOverflow if the sum exceeds 2^256-1.
func Add(a, b Uint256, tag int) (Uint256, error) {
	var z Uint256
	_, overflow := z.v.AddOverflow(&a.v, &b.v)
	if overflow {
		return Uint256{}, newErr(KindAddOverflow, tag)
	}
	return z, nil
}

// Sub computes a-b, failing with SubUnderflow if b > a.
func Sub(a, b Uint256, tag int) (Uint256, error) {
	var z Uint256
	_, underflow := z.v.SubOverflow(&a.v, &b.v)
	if underflow {
		return Uint256{}, newErr(KindSubUnderflow, tag)
	}
	return z, nil
}

// Mul computes a*b, failing with MulOverflow if the product exceeds
// 2^256-1.
func Mul(a, b Uint256, tag int) (Uint256, error) {
	var z Uint256
	_, overflow := z.v.MulOverflow(&a.v, &b.v)
	if overflow {
		return Uint256{}, newErr(KindMulOverflow, tag)
	}
	return z, nil
}

// Div computes the floor of a/b, failing with DivByZero if b is zero.
func Div(a, b Uint256, tag int) (Uint256, error) {
	if b.IsZero() {
		return Uint256{}, newErr(KindDivByZero, tag)
	}
	var z Uint256
	z.v.Div(&a.v, &b.v)
	return z, nil
}

// MulDiv computes floor(a*b/c) as a single checked composition, failing
// with MulOverflow if the intermediate product overflows or DivByZero if c
// is zero.
func MulDiv(a, b, c Uint256, tag int) (Uint256, error) {
	p, err := Mul(a, b, tag)
	if err != nil {
		return Uint256{}, err
	}
	return Div(p, c, tag)
}

// AbsDiff returns |a-b| without failing regardless of ordering.
func AbsDiff(a, b Uint256) Uint256 {
	if a.GT(b) {
		d, _ := Sub(a, b, -1)
		return d
	}
	d, _ := Sub(b, a, -1)
	return d
}

// Min returns the smaller of a and b.
func Min(a, b Uint256) Uint256 {
	if a.LT(b) {
		return a
	}
	return b
}
