package coordination

import (
	"math"

	"github.com/kilianp07/relaycoord/core/device"
	"github.com/kilianp07/relaycoord/core/shortcircuit"
)

// CheckBreakers compares every breaker with the duty at its bus. For ground
// studies the larger of the three-phase and ground currents is used.
func CheckBreakers(cbs []device.CircuitBreaker, duty shortcircuit.Duty, ft device.FaultType) []BreakerCheck {
	out := make([]BreakerCheck, 0, len(cbs))
	for _, cb := range cbs {
		chk := BreakerCheck{
			CB:       cb.Label(),
			Bus:      cb.Bus,
			RatingKA: cb.InterruptingRatingKASym,
			MakingKA: cb.MakingCapacityKAPeak,
		}
		if chk.MakingKA == 0 {
			chk.MakingKA = device.DefaultMakingFactor * cb.InterruptingRatingKASym
		}
		bd, ok := duty.Bus(cb.Bus)
		switch {
		case !ok:
			chk.Status = BreakerIndeterminate
			chk.Reason = "bus not in short-circuit result"
		case bd.Err != nil:
			chk.BusName = bd.Name
			chk.Status = BreakerIndeterminate
			chk.Reason = bd.Err.Error()
		default:
			chk.BusName = bd.Name
			chk.FaultKA = bd.Ik3KA
			if ft == device.Ground && bd.GroundErr == nil {
				chk.FaultKA = math.Max(bd.Ik3KA, bd.Ik1KA)
			}
			chk.PeakKA = bd.IpKA
			chk.Overduty = !cb.CanInterrupt(chk.FaultKA)
			chk.MakingOverduty = !cb.CanMake(chk.PeakKA)
			switch {
			case chk.Overduty:
				chk.Status = BreakerOverduty
			case chk.MakingOverduty:
				chk.Status = BreakerMakingOverduty
			default:
				chk.Status = BreakerOK
			}
		}
		out = append(out, chk)
	}
	return out
}
