package types

// CollectFeeMode governs which token a swap's trade fee is charged against.
type CollectFeeMode uint8

const (
	// CollectFeeModeBothToken charges the fee on whichever token is the
	// output of the swap.
	CollectFeeModeBothToken CollectFeeMode = iota
	// CollectFeeModeOnlyB always charges the fee in token B.
	CollectFeeModeOnlyB
)

func (m CollectFeeMode) Valid() bool {
	return m == CollectFeeModeBothToken || m == CollectFeeModeOnlyB
}

type FeeSchedulerMode uint8

const (
	FeeSchedulerModeLinear FeeSchedulerMode = iota
	FeeSchedulerModeExponential
)

// Rounding selects who bears the rounding error of a division.
type Rounding uint8

const (
	RoundingDown Rounding = iota
	RoundingUp
)

type TradeDirection uint8

const (
	TradeDirectionAtoB TradeDirection = iota
	TradeDirectionBtoA
)

func (d TradeDirection) String() string {
	if d == TradeDirectionAtoB {
		return "AtoB"
	}
	return "BtoA"
}

// ActivationType selects the unit of a pool's activation point.
type ActivationType uint8

const (
	ActivationTypeSlot ActivationType = iota
	ActivationTypeTimestamp
)

type PoolStatus uint8

const (
	PoolStatusEnable PoolStatus = iota
	PoolStatusDisable
)

type PoolType uint8

const (
	PoolTypePermissionless PoolType = iota
	PoolTypeCustomizable
)
