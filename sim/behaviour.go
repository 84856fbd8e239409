// Driver acceptance behaviours. A behaviour decides whether a driver
// takes a proposed offer; it is a pure function of the driver, the
// resolved request, the offer, and the clock, with no side effects.

package sim

import "fmt"

// Default parameters applied when a behaviour is created by a mutation
// rule or by the factory with no explicit value.
const (
	DefaultLazyMinWait       = int64(5)
	DefaultGreedyMaxDistance = 10.0
	DefaultEarningMinRatio   = 1.0
	DefaultEscalationRate    = 0.0005
)

// DriverBehaviour decides whether a driver accepts an offer.
// Implementations MUST NOT modify the driver or the request.
type DriverBehaviour interface {
	Decide(d *Driver, req *Request, offer Offer, now int64) bool
	Name() string
}

// LazyBehaviour accepts an offer only when the request has already
// waited at least MinWaitTime ticks and the driver is idle. The idle
// check is always true for offers built from the engine's IDLE-only
// proposal stage; it matters when the behaviour is invoked directly.
type LazyBehaviour struct {
	MinWaitTime int64
}

func (b *LazyBehaviour) Decide(d *Driver, req *Request, _ Offer, _ int64) bool {
	return d.Status == DriverIdle && req.WaitTime >= b.MinWaitTime
}

func (b *LazyBehaviour) Name() string { return "lazy" }

// GreedyDistanceBehaviour accepts an offer when the pickup is strictly
// closer than MaxDistance. A pickup exactly at MaxDistance is rejected.
type GreedyDistanceBehaviour struct {
	MaxDistance float64
}

func (b *GreedyDistanceBehaviour) Decide(d *Driver, req *Request, _ Offer, _ int64) bool {
	return d.Position.DistanceTo(req.Pickup) < b.MaxDistance
}

func (b *GreedyDistanceBehaviour) Name() string { return "greedy-distance" }

// EarningMaxBehaviour accepts an offer when the reward-to-travel-time
// ratio clears a threshold. The threshold escalates with simulation time
// as MinRatio * (1 + EscalationRate*now), modeling drivers that become
// progressively pickier as demand accumulates. Set EscalationRate to 0
// for a flat threshold.
type EarningMaxBehaviour struct {
	MinRatio       float64
	EscalationRate float64
}

func (b *EarningMaxBehaviour) Decide(_ *Driver, _ *Request, offer Offer, now int64) bool {
	if !offer.HasReward || offer.EstimatedTravelTime <= 0 {
		return false
	}
	threshold := b.MinRatio * (1 + b.EscalationRate*float64(now))
	return offer.EstimatedReward/offer.EstimatedTravelTime >= threshold
}

func (b *EarningMaxBehaviour) Name() string { return "earning-max" }

// BehaviourParams carries the per-behaviour tunables for the factory.
// Pointer fields mean "not set"; unset values fall back to defaults.
type BehaviourParams struct {
	MinWaitTime    *int64
	MaxDistance    *float64
	MinRatio       *float64
	EscalationRate *float64
}

// validBehaviours maps accepted behaviour names.
var validBehaviours = map[string]bool{
	"":                true, // empty defaults to lazy
	"lazy":            true,
	"greedy-distance": true,
	"earning-max":     true,
}

// IsValidBehaviour returns true if name is a recognized behaviour.
func IsValidBehaviour(name string) bool {
	return validBehaviours[name]
}

// NewBehaviour creates a driver behaviour by name.
// Empty string defaults to lazy. Unset params take the package defaults.
func NewBehaviour(name string, params BehaviourParams) (DriverBehaviour, error) {
	if !IsValidBehaviour(name) {
		return nil, fmt.Errorf("unknown behaviour %q", name)
	}
	switch name {
	case "", "lazy":
		minWait := DefaultLazyMinWait
		if params.MinWaitTime != nil {
			minWait = *params.MinWaitTime
		}
		return &LazyBehaviour{MinWaitTime: minWait}, nil
	case "greedy-distance":
		maxDist := DefaultGreedyMaxDistance
		if params.MaxDistance != nil {
			maxDist = *params.MaxDistance
		}
		return &GreedyDistanceBehaviour{MaxDistance: maxDist}, nil
	case "earning-max":
		minRatio := DefaultEarningMinRatio
		if params.MinRatio != nil {
			minRatio = *params.MinRatio
		}
		escalation := DefaultEscalationRate
		if params.EscalationRate != nil {
			escalation = *params.EscalationRate
		}
		return &EarningMaxBehaviour{MinRatio: minRatio, EscalationRate: escalation}, nil
	default:
		return nil, fmt.Errorf("unhandled behaviour %q", name)
	}
}
