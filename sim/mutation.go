// Mutation rules adaptively swap a driver's behaviour over time,
// modeling drivers that adjust how selective they are as the simulation
// evolves. Rules are applied to every driver at the end of each tick.

package sim

import (
	"fmt"
	"math/rand"
)

// MutationRule may replace a driver's behaviour in place.
type MutationRule interface {
	MaybeMutate(d *Driver, now int64)
	Name() string
}

// ExplorationMutationRule rotates a driver through the three behaviours
// at random. The trigger probability grows slightly with time,
// min(1, Probability * (1 + 0.0005*now)), encouraging late-stage
// exploration. The rotation is cyclic:
// lazy → greedy-distance → earning-max → lazy.
type ExplorationMutationRule struct {
	Probability float64
	rng         *rand.Rand
}

// NewExplorationMutationRule creates the rule with its own RNG stream.
// The rng must come from the engine-level PartitionedRNG so runs stay
// reproducible.
func NewExplorationMutationRule(probability float64, rng *rand.Rand) *ExplorationMutationRule {
	return &ExplorationMutationRule{Probability: probability, rng: rng}
}

func (m *ExplorationMutationRule) MaybeMutate(d *Driver, now int64) {
	p := m.Probability * (1 + float64(now)*0.0005)
	if p > 1 {
		p = 1
	}
	if m.rng.Float64() >= p {
		return
	}

	switch d.Behaviour.(type) {
	case *LazyBehaviour:
		d.Behaviour = &GreedyDistanceBehaviour{MaxDistance: DefaultGreedyMaxDistance}
	case *GreedyDistanceBehaviour:
		d.Behaviour = &EarningMaxBehaviour{MinRatio: DefaultEarningMinRatio, EscalationRate: DefaultEscalationRate}
	default:
		d.Behaviour = &LazyBehaviour{MinWaitTime: DefaultLazyMinWait}
	}
}

func (m *ExplorationMutationRule) Name() string { return "exploration" }

// PerformanceBasedMutation watches a driver's recent earnings. Once the
// driver has at least Window completed trips, the rule computes the mean
// earnings per trip over the last Window records; below Threshold the
// driver is forced onto greedy-distance. The rule never reverts the
// change; reversion only happens when an exploration rule is composed
// alongside it.
type PerformanceBasedMutation struct {
	Threshold float64
	Window    int
}

func (m *PerformanceBasedMutation) MaybeMutate(d *Driver, _ int64) {
	if m.Window <= 0 || len(d.History) < m.Window {
		return
	}
	recent := d.History[len(d.History)-m.Window:]
	var total float64
	for _, trip := range recent {
		total += trip.Earnings
	}
	if total/float64(m.Window) < m.Threshold {
		d.Behaviour = &GreedyDistanceBehaviour{MaxDistance: DefaultGreedyMaxDistance}
	}
}

func (m *PerformanceBasedMutation) Name() string { return "performance" }

// MutationParams carries the per-rule tunables for the factory.
type MutationParams struct {
	Probability *float64
	Threshold   *float64
	Window      *int
}

// validMutationRules maps accepted mutation rule names.
var validMutationRules = map[string]bool{
	"":            true, // empty means no mutation
	"none":        true,
	"exploration": true,
	"performance": true,
}

// IsValidMutationRule returns true if name is a recognized rule.
func IsValidMutationRule(name string) bool {
	return validMutationRules[name]
}

// NewMutationRule creates a mutation rule by name. Empty string and
// "none" return nil (no rule). The rng is only consumed by exploration.
func NewMutationRule(name string, params MutationParams, rng *rand.Rand) (MutationRule, error) {
	if !IsValidMutationRule(name) {
		return nil, fmt.Errorf("unknown mutation rule %q", name)
	}
	switch name {
	case "", "none":
		return nil, nil
	case "exploration":
		probability := 0.01
		if params.Probability != nil {
			probability = *params.Probability
		}
		return NewExplorationMutationRule(probability, rng), nil
	case "performance":
		threshold := 1.0
		if params.Threshold != nil {
			threshold = *params.Threshold
		}
		window := 5
		if params.Window != nil {
			window = *params.Window
		}
		return &PerformanceBasedMutation{Threshold: threshold, Window: window}, nil
	default:
		return nil, fmt.Errorf("unhandled mutation rule %q", name)
	}
}
