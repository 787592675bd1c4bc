package types

import (
	"cosmossdk.io/errors"
)

// ModuleName identifies this module's sentinel error registry and event
// type namespace.
const ModuleName = "stableswap"

// Sentinel errors, per the flat taxonomy of §7. MathError is not in this
// registry: it is carried by internal/bigmath.Error, which wraps a stable
// Kind/Tag pair instead of a single registered code, since each kind
// (AddOverflow/SubUnderflow/MulOverflow/DivByZero/CastOverflow) is itself
// observable by callers via errors.As.
var (
	// Input validation
	ErrIdenticalTokenId      = errors.Register(ModuleName, 1, "identical token id")
	ErrInvalidTokenId        = errors.Register(ModuleName, 2, "invalid token id")
	ErrIncorrectAmountsCount = errors.Register(ModuleName, 3, "incorrect amounts count")
	ErrIncorrectTokenCount   = errors.Register(ModuleName, 4, "incorrect token count")
	ErrTooLargeTokenDecimal  = errors.Register(ModuleName, 5, "token decimal exceeds target decimals")
	ErrInvalidAmpCoef        = errors.Register(ModuleName, 6, "amplification coefficient out of range")
	ErrInvalidFee            = errors.Register(ModuleName, 7, "fee parameter out of range")

	// Slippage / constraint
	ErrInsufficientLiquidityMinted = errors.Register(ModuleName, 8, "insufficient liquidity minted")
	ErrInsufficientLiquidityBurned = errors.Register(ModuleName, 9, "insufficient liquidity burned")
	ErrInsufficientOutputAmount    = errors.Register(ModuleName, 10, "insufficient output amount")
	ErrTooLargeInputAmount         = errors.Register(ModuleName, 11, "input amount exceeds maximum")
	ErrInsufficientInputAmount     = errors.Register(ModuleName, 12, "insufficient input amount")

	// Authorization
	ErrOnlyOwner = errors.Register(ModuleName, 13, "caller is not the pool owner")

	// Concurrency
	ErrReentrantCall = errors.Register(ModuleName, 14, "reentrant call rejected")

	// Rate provider
	ErrRateUnavailable = errors.Register(ModuleName, 15, "token rate unavailable")
)
