package bigmath_test

import (
	"math/big"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/lumen-amm/stableswap/internal/bigmath"
)

func TestAddOverflow(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	a, err := bigmath.FromBigInt(max, 1)
	require.NoError(t, err)

	_, err = bigmath.Add(a, bigmath.One(), 1)
	require.Error(t, err)
	var mathErr *bigmath.Error
	require.ErrorAs(t, err, &mathErr)
	require.Equal(t, bigmath.KindAddOverflow, mathErr.Kind)
	require.Equal(t, 1, mathErr.Tag)
}

func TestSubUnderflow(t *testing.T) {
	_, err := bigmath.Sub(bigmath.One(), bigmath.FromUint64(2), 7)
	require.Error(t, err)
	var mathErr *bigmath.Error
	require.ErrorAs(t, err, &mathErr)
	require.Equal(t, bigmath.KindSubUnderflow, mathErr.Kind)
}

func TestMulOverflow(t *testing.T) {
	half := new(big.Int).Lsh(big.NewInt(1), 129)
	a, err := bigmath.FromBigInt(half, 3)
	require.NoError(t, err)

	_, err = bigmath.Mul(a, a, 3)
	require.Error(t, err)
	var mathErr *bigmath.Error
	require.ErrorAs(t, err, &mathErr)
	require.Equal(t, bigmath.KindMulOverflow, mathErr.Kind)
}

func TestDivByZero(t *testing.T) {
	_, err := bigmath.Div(bigmath.FromUint64(10), bigmath.Zero(), 9)
	require.Error(t, err)
	var mathErr *bigmath.Error
	require.ErrorAs(t, err, &mathErr)
	require.Equal(t, bigmath.KindDivByZero, mathErr.Kind)
}

func TestMulDivFloors(t *testing.T) {
	// 10 * 3 / 4 = 7.5 -> floors to 7
	result, err := bigmath.MulDiv(bigmath.FromUint64(10), bigmath.FromUint64(3), bigmath.FromUint64(4), 0)
	require.NoError(t, err)
	require.Equal(t, uint64(7), mustUint64(t, result))
}

func TestFromMathIntRejectsNegative(t *testing.T) {
	_, err := bigmath.FromMathInt(math.NewInt(-1), 2)
	require.Error(t, err)
	var mathErr *bigmath.Error
	require.ErrorAs(t, err, &mathErr)
	require.Equal(t, bigmath.KindCastOverflow, mathErr.Kind)
}

func TestRoundTripMathInt(t *testing.T) {
	orig := math.NewInt(123456789012345)
	u, err := bigmath.FromMathInt(orig, 0)
	require.NoError(t, err)
	require.True(t, orig.Equal(u.ToMathInt()))
}

func TestAbsDiff(t *testing.T) {
	a := bigmath.FromUint64(10)
	b := bigmath.FromUint64(3)
	require.Equal(t, uint64(7), mustUint64(t, bigmath.AbsDiff(a, b)))
	require.Equal(t, uint64(7), mustUint64(t, bigmath.AbsDiff(b, a)))
}

func TestUint64CastOverflow(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 100)
	u, err := bigmath.FromBigInt(huge, 4)
	require.NoError(t, err)

	_, err = u.Uint64(4)
	require.Error(t, err)
	var mathErr *bigmath.Error
	require.ErrorAs(t, err, &mathErr)
	require.Equal(t, bigmath.KindCastOverflow, mathErr.Kind)
}

func mustUint64(t *testing.T, u bigmath.Uint256) uint64 {
	t.Helper()
	v, err := u.Uint64(0)
	require.NoError(t, err)
	return v
}
