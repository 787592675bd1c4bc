package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// FungibleToken is the external collaborator contract of §6.2, required for
// each constituent token and for the pool's own LP shares. Any call may
// fail; failure propagates as an error and aborts the enclosing operation.
type FungibleToken interface {
	TotalSupply(ctx context.Context) (math.Int, error)
	BalanceOf(ctx context.Context, owner sdk.AccAddress) (math.Int, error)
	Allowance(ctx context.Context, owner, spender sdk.AccAddress) (math.Int, error)
	Transfer(ctx context.Context, from, to sdk.AccAddress, value math.Int) error
	TransferFrom(ctx context.Context, spender, from, to sdk.AccAddress, value math.Int) error
	Approve(ctx context.Context, owner, spender sdk.AccAddress, value math.Int) error
	IncreaseAllowance(ctx context.Context, owner, spender sdk.AccAddress, delta math.Int) error
	DecreaseAllowance(ctx context.Context, owner, spender sdk.AccAddress, delta math.Int) error
}

// ShareLedger is the pool's own LP share token: a FungibleToken the pool is
// additionally the sole minter and burner of (C8).
type ShareLedger interface {
	FungibleToken
	Mint(ctx context.Context, to sdk.AccAddress, value math.Int) error
	Burn(ctx context.Context, from sdk.AccAddress, value math.Int) error
}

// RateSource is the rate provider collaborator contract of §6.3: a single
// method returning the current exchange rate at RATE_DECIMALS precision.
// Implementations are trusted only to return within a gas/time budget; the
// pool caches the value per External token_rate entry for ttl_ms.
type RateSource interface {
	GetRate(ctx context.Context) (math.Int, error)
}

// Clock abstracts the timestamp source referenced by §4.4/§5 so TTL expiry
// is deterministic and testable rather than reading a wall clock directly.
type Clock interface {
	NowMillis() int64
}

// EventManager abstracts event emission (§6.4), matching the subset of
// cosmos-sdk's sdk.Context EventManager the teacher's keeper methods use
// directly (EmitEvent / sdk.NewEvent / sdk.NewAttribute), kept as an
// interface here so the pool is not hard-wired to a live sdk.Context.
type EventManager interface {
	EmitEvent(event sdk.Event)
}
