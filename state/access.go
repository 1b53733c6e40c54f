package state

import (
	"github.com/gagliardetto/solana-go"

	"github.com/MeteoraAg/cp-amm-go/types"
)

// PoolActionAccess answers whether a given action is currently allowed on a
// pool. Implementations are snapshots: build one per operation with the
// caller's current point (slot or timestamp per the pool's activation type).
type PoolActionAccess interface {
	CanAddLiquidity() bool
	CanRemoveLiquidity() bool
	CanSwap(sender solana.PublicKey) bool
	CanCreatePosition() bool
}

// permissionlessAccess is the access policy shared by permissionless and
// customizable pools: everything is open once the pool is enabled and
// activated, and only the whitelisted vault may buy before activation.
type permissionlessAccess struct {
	isEnabled        bool
	whitelistedVault solana.PublicKey
	activationPoint  uint64
	currentPoint     uint64
}

// GetPoolAccessValidator snapshots the pool's access state at currentPoint.
func GetPoolAccessValidator(pool *Pool, currentPoint uint64) PoolActionAccess {
	return &permissionlessAccess{
		isEnabled:        pool.PoolStatus == uint8(types.PoolStatusEnable),
		whitelistedVault: pool.WhitelistedVault,
		activationPoint:  pool.ActivationPoint,
		currentPoint:     currentPoint,
	}
}

func (a *permissionlessAccess) CanAddLiquidity() bool {
	return a.isEnabled
}

// CanRemoveLiquidity always holds: funds stay withdrawable even when the
// pool is disabled.
func (a *permissionlessAccess) CanRemoveLiquidity() bool {
	return true
}

func (a *permissionlessAccess) CanSwap(sender solana.PublicKey) bool {
	if !a.isEnabled {
		return false
	}
	if a.currentPoint >= a.activationPoint {
		return true
	}
	// pre-activation window is reserved for the whitelisted vault
	return !a.whitelistedVault.IsZero() && sender.Equals(a.whitelistedVault)
}

func (a *permissionlessAccess) CanCreatePosition() bool {
	return a.isEnabled
}
