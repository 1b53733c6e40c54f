package state

import (
	bin "github.com/gagliardetto/binary"

	"github.com/MeteoraAg/cp-amm-go/maths"
)

// PoolMetrics aggregates lifetime fee and position counters for a pool.
type PoolMetrics struct {
	TotalLpAFee       bin.Uint128
	TotalLpBFee       bin.Uint128
	TotalProtocolAFee uint64
	TotalProtocolBFee uint64
	TotalPartnerAFee  uint64
	TotalPartnerBFee  uint64
	TotalPosition     uint64
	Padding           uint64
}

func (m *PoolMetrics) IncPosition() error {
	total, err := maths.SafeAddU64(m.TotalPosition, 1)
	if err != nil {
		return err
	}
	m.TotalPosition = total
	return nil
}

func (m *PoolMetrics) DecPosition() error {
	total, err := maths.SafeSubU64(m.TotalPosition, 1)
	if err != nil {
		return err
	}
	m.TotalPosition = total
	return nil
}

// AccumulateFee folds one swap's fee split into the counters.
func (m *PoolMetrics) AccumulateFee(lpFee, protocolFee, partnerFee uint64, isTokenA bool) error {
	if isTokenA {
		lp, err := addU128U64(m.TotalLpAFee, lpFee)
		if err != nil {
			return err
		}
		protocol, err := maths.SafeAddU64(m.TotalProtocolAFee, protocolFee)
		if err != nil {
			return err
		}
		partner, err := maths.SafeAddU64(m.TotalPartnerAFee, partnerFee)
		if err != nil {
			return err
		}
		m.TotalLpAFee, m.TotalProtocolAFee, m.TotalPartnerAFee = lp, protocol, partner
		return nil
	}

	lp, err := addU128U64(m.TotalLpBFee, lpFee)
	if err != nil {
		return err
	}
	protocol, err := maths.SafeAddU64(m.TotalProtocolBFee, protocolFee)
	if err != nil {
		return err
	}
	partner, err := maths.SafeAddU64(m.TotalPartnerBFee, partnerFee)
	if err != nil {
		return err
	}
	m.TotalLpBFee, m.TotalProtocolBFee, m.TotalPartnerBFee = lp, protocol, partner
	return nil
}

// PositionMetrics aggregates lifetime claimed fees for a position.
type PositionMetrics struct {
	TotalClaimedAFee uint64
	TotalClaimedBFee uint64
}
