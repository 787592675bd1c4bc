package keeper_test

import (
	"context"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lumen-amm/stableswap/x/stableswap/keeper"
	"github.com/lumen-amm/stableswap/x/stableswap/types"
)

// fakeToken is a minimal in-memory FungibleToken sufficient for exercising
// the keeper's transfer call sites, mirroring the teacher's
// expected_keepers.go mock style.
type fakeToken struct {
	balances map[string]math.Int
}

func newFakeToken() *fakeToken {
	return &fakeToken{balances: make(map[string]math.Int)}
}

func (t *fakeToken) fund(addr sdk.AccAddress, amount math.Int) {
	t.balances[addr.String()] = t.balanceOrZero(addr).Add(amount)
}

func (t *fakeToken) balanceOrZero(addr sdk.AccAddress) math.Int {
	if v, ok := t.balances[addr.String()]; ok {
		return v
	}
	return math.ZeroInt()
}

func (t *fakeToken) TotalSupply(ctx context.Context) (math.Int, error) { return math.ZeroInt(), nil }

func (t *fakeToken) BalanceOf(ctx context.Context, owner sdk.AccAddress) (math.Int, error) {
	return t.balanceOrZero(owner), nil
}

func (t *fakeToken) Allowance(ctx context.Context, owner, spender sdk.AccAddress) (math.Int, error) {
	return math.ZeroInt(), nil
}

func (t *fakeToken) Transfer(ctx context.Context, from, to sdk.AccAddress, value math.Int) error {
	bal := t.balanceOrZero(from)
	if bal.LT(value) {
		return types.ErrInsufficientInputAmount.Wrapf("balance %s below transfer amount %s", bal, value)
	}
	t.balances[from.String()] = bal.Sub(value)
	t.balances[to.String()] = t.balanceOrZero(to).Add(value)
	return nil
}

func (t *fakeToken) TransferFrom(ctx context.Context, spender, from, to sdk.AccAddress, value math.Int) error {
	return t.Transfer(ctx, from, to, value)
}

func (t *fakeToken) Approve(ctx context.Context, owner, spender sdk.AccAddress, value math.Int) error {
	return nil
}

func (t *fakeToken) IncreaseAllowance(ctx context.Context, owner, spender sdk.AccAddress, delta math.Int) error {
	return nil
}

func (t *fakeToken) DecreaseAllowance(ctx context.Context, owner, spender sdk.AccAddress, delta math.Int) error {
	return nil
}

// fakeShareLedger adds Mint/Burn over a fakeToken, implementing ShareLedger.
type fakeShareLedger struct {
	*fakeToken
}

func newFakeShareLedger() *fakeShareLedger {
	return &fakeShareLedger{fakeToken: newFakeToken()}
}

func (s *fakeShareLedger) Mint(ctx context.Context, to sdk.AccAddress, value math.Int) error {
	s.balances[to.String()] = s.balanceOrZero(to).Add(value)
	return nil
}

func (s *fakeShareLedger) Burn(ctx context.Context, from sdk.AccAddress, value math.Int) error {
	bal := s.balanceOrZero(from)
	if bal.LT(value) {
		return types.ErrInsufficientLiquidityBurned.Wrapf("balance %s below burn amount %s", bal, value)
	}
	s.balances[from.String()] = bal.Sub(value)
	return nil
}

// fakeEventManager records emitted events for assertions.
type fakeEventManager struct {
	events sdk.Events
}

func (m *fakeEventManager) EmitEvent(event sdk.Event) {
	m.events = append(m.events, event)
}

// testHarness bundles a constructed pool, keeper, and its collaborators for
// a fixed two- or three-token setup used across the keeper test files.
type testHarness struct {
	keeper      *keeper.Keeper
	pool        *types.Pool
	tokens      map[string]*fakeToken
	shares      *fakeShareLedger
	events      *fakeEventManager
	clock       types.FixedClock
	poolAddress sdk.AccAddress
	owner       sdk.AccAddress
}

// newTestHarness builds a pool with len(tokenNames) Constant-rate tokens at
// 1e18 precision (18 decimals each, rate 1:1), zero fees unless overridden
// by the caller afterward.
func newTestHarness(tokenNames []string, amp uint64) *testHarness {
	ctx := context.Background()
	owner := types.TestAddr()
	poolAddr := types.TestAddr()

	decimals := make([]uint32, len(tokenNames))
	rateSpecs := make([]types.TokenRateSpec, len(tokenNames))
	for i := range tokenNames {
		decimals[i] = 18
		rateSpecs[i] = types.TokenRateSpec{Constant: math.NewInt(types.RatePrecision)}
	}
	clock := types.FixedClock{MillisValue: 1_000_000}

	fees := types.Fees{TradeFee: math.NewInt(3_000_000), ProtocolFee: math.NewInt(0)}
	pool, err := types.NewPool(ctx, tokenNames, decimals, rateSpecs, amp, owner, fees, nil, clock)
	if err != nil {
		panic(err)
	}

	tokens := make(map[string]*fakeToken, len(tokenNames))
	tokenIfaces := make(map[string]types.FungibleToken, len(tokenNames))
	for _, name := range tokenNames {
		ft := newFakeToken()
		tokens[name] = ft
		tokenIfaces[name] = ft
	}
	shares := newFakeShareLedger()
	events := &fakeEventManager{}

	kp := keeper.NewKeeper(pool, tokenIfaces, shares, poolAddr, events, clock, log.NewNopLogger(), nil)

	return &testHarness{
		keeper:      kp,
		pool:        pool,
		tokens:      tokens,
		shares:      shares,
		events:      events,
		clock:       clock,
		poolAddress: poolAddr,
		owner:       owner,
	}
}

func (h *testHarness) fund(caller sdk.AccAddress, tokenName string, amount math.Int) {
	h.tokens[tokenName].fund(caller, amount)
}

func amt(v int64) math.Int { return math.NewInt(v) }

func wad(v int64) math.Int { return math.NewInt(v).MulRaw(1_000_000_000_000_000_000) }
