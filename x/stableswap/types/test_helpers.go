package types

import (
	"context"

	"cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// TestAddr generates a fresh valid address for use in tests.
func TestAddr() sdk.AccAddress {
	privKey := secp256k1.GenPrivKey()
	return sdk.AccAddress(privKey.PubKey().Address())
}

// FixedClock is a Clock that always reports the same instant, for
// deterministic TTL tests.
type FixedClock struct {
	MillisValue int64
}

func (c FixedClock) NowMillis() int64 { return c.MillisValue }

// ConstantRateSource is a RateSource that always returns the same rate, or
// the configured error, regardless of how many times it is queried. Used to
// simulate an External rate entry's backing oracle in tests.
type ConstantRateSource struct {
	Rate math.Int
	Err  error
}

func (s ConstantRateSource) GetRate(_ context.Context) (math.Int, error) {
	if s.Err != nil {
		return math.Int{}, s.Err
	}
	return s.Rate, nil
}
