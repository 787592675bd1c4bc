package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lumen-amm/stableswap/x/stableswap/types"
)

// emitAddLiquidity and its siblings translate a completed operation into the
// sdk.Event shapes of §6.4, matching the teacher's
// ctx.EventManager().EmitEvent(sdk.NewEvent(...)) idiom in x/dex/keeper.

func (k *Keeper) emitAddLiquidity(provider sdk.AccAddress, amounts []math.Int, shares math.Int, to sdk.AccAddress) {
	if k.events == nil {
		return
	}
	k.events.EmitEvent(sdk.NewEvent(
		types.EventTypeAddLiquidity,
		sdk.NewAttribute(types.AttributeKeyProvider, provider.String()),
		sdk.NewAttribute(types.AttributeKeyTo, to.String()),
		sdk.NewAttribute(types.AttributeKeyTokenAmounts, intSliceString(amounts)),
		sdk.NewAttribute(types.AttributeKeyShares, shares.String()),
	))
}

func (k *Keeper) emitRemoveLiquidity(provider sdk.AccAddress, amounts []math.Int, shares math.Int, to sdk.AccAddress) {
	if k.events == nil {
		return
	}
	k.events.EmitEvent(sdk.NewEvent(
		types.EventTypeRemoveLiquidity,
		sdk.NewAttribute(types.AttributeKeyProvider, provider.String()),
		sdk.NewAttribute(types.AttributeKeyTo, to.String()),
		sdk.NewAttribute(types.AttributeKeyTokenAmounts, intSliceString(amounts)),
		sdk.NewAttribute(types.AttributeKeyShares, shares.String()),
	))
}

func (k *Keeper) emitSwap(sender sdk.AccAddress, tokenIn, tokenOut string, amountIn, amountOut math.Int, to sdk.AccAddress) {
	if k.events == nil {
		return
	}
	k.events.EmitEvent(sdk.NewEvent(
		types.EventTypeSwap,
		sdk.NewAttribute(types.AttributeKeySender, sender.String()),
		sdk.NewAttribute(types.AttributeKeyTo, to.String()),
		sdk.NewAttribute(types.AttributeKeyTokenIn, tokenIn),
		sdk.NewAttribute(types.AttributeKeyTokenOut, tokenOut),
		sdk.NewAttribute(types.AttributeKeyAmountIn, amountIn.String()),
		sdk.NewAttribute(types.AttributeKeyAmountOut, amountOut.String()),
	))
}

func (k *Keeper) emitSync() {
	if k.events == nil {
		return
	}
	k.events.EmitEvent(sdk.NewEvent(
		types.EventTypeSync,
		sdk.NewAttribute(types.AttributeKeyReserves, intSliceString(k.pool.Reserves)),
	))
}

func intSliceString(amounts []math.Int) string {
	out := make([]byte, 0, len(amounts)*8)
	for i, a := range amounts {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, []byte(a.String())...)
	}
	return string(out)
}
