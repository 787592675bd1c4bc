package keeper

import (
	"sync"

	"github.com/lumen-amm/stableswap/x/stableswap/types"
)

// ReentrancyGuard is the in-memory mutual-exclusion primitive backing §5's
// re-entrancy requirement. Grounded on the teacher's
// x/dex/keeper/security.go ReentrancyGuard (sync.Mutex + locked flag);
// unlike the teacher's KVStore-backed, block-height-expiring variant, this
// one guards a single in-process Pool for the duration of exactly one
// operation and has no notion of block height or persistent storage to
// expire against.
type ReentrancyGuard struct {
	mu     sync.Mutex
	locked bool
}

// Acquire takes the lock, failing with ErrReentrantCall if it is already
// held — i.e. if a nested call re-enters the pool while an outer operation
// is still in flight.
func (g *ReentrancyGuard) Acquire() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.locked {
		return types.ErrReentrantCall
	}
	g.locked = true
	return nil
}

// Release frees the lock. Safe to call even if Acquire was never called
// (releasing an unlocked guard is a no-op), so it can always be deferred
// immediately after a successful Acquire.
func (g *ReentrancyGuard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.locked = false
}
